package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frederic-klein/gather/internal/config"
	"github.com/frederic-klein/gather/internal/downloader"
	"github.com/frederic-klein/gather/internal/gather"
	"github.com/frederic-klein/gather/internal/manifest"
	"github.com/frederic-klein/gather/internal/repo"
	"github.com/frederic-klein/gather/internal/rpm"
	"github.com/frederic-klein/gather/internal/snapshot"
	"github.com/frederic-klein/gather/internal/universe"
)

// repoSource is a repository together with its package filters.
type repoSource struct {
	repo    *repo.Repo
	cost    int
	include []string
	exclude []string
}

func runCompose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlags(cmd, cfg)

	log.Info("Parsing kickstart", "path", kickstartPath)
	m, err := manifest.NewParser().Parse(kickstartPath)
	if err != nil {
		return fmt.Errorf("parsing kickstart: %w", err)
	}

	sources := repoSources(cfg, m)
	if len(sources) == 0 {
		return fmt.Errorf("no repositories configured")
	}

	sack, err := loadUniverse(ctx, log, cfg.Arch, sources)
	if err != nil {
		return err
	}

	g := gather.New(sack, gather.Options{
		SelfHosting: cfg.SelfHosting,
		FullTree:    cfg.FullTree,
		Debuginfo:   cfg.Debuginfo,
	}, log)
	res, err := g.Gather(m)
	if err != nil {
		return fmt.Errorf("gathering packages: %w", err)
	}
	for _, w := range res.Warnings {
		log.Warn(w.Error())
	}

	layout := downloader.NewLayout(cfg.DestDir, cfg.Version, cfg.Flavor, cfg.Arch)
	listPath := snapshotPath
	if listPath == "" {
		listPath = filepath.Join(layout.Root, "logs", cfg.Arch+".packages")
	}
	if err := writeList(listPath, res); err != nil {
		return err
	}

	fmt.Printf("Gathered %d binaries, %d sources, %d debuginfo into %s\n",
		len(res.Binaries), len(res.Sources), len(res.Debuginfo), listPath)

	if noDownload {
		return nil
	}
	return download(ctx, log, cfg, layout, res, sources)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	strs := map[string]struct {
		dst *string
		val string
	}{
		"name":     {&cfg.Name, flagName},
		"ver":      {&cfg.Version, flagVersion},
		"flavor":   {&cfg.Flavor, flagFlavor},
		"arch":     {&cfg.Arch, flagArch},
		"destdir":  {&cfg.DestDir, flagDestDir},
		"cachedir": {&cfg.CacheDir, flagCacheDir},
	}
	for name, f := range strs {
		if flags.Changed(name) {
			*f.dst = f.val
		}
	}
	if flags.Changed("workers") && flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if selfHosting {
		cfg.SelfHosting = true
	}
	if fullTree {
		cfg.FullTree = true
	}
	if debuginfo {
		cfg.Debuginfo = true
	}
	if noSource {
		cfg.Sources = false
	}
	if forceRefresh {
		cfg.CacheTTL = 0
	}
}

func repoSources(cfg *config.Config, m *manifest.Manifest) []repoSource {
	vars := map[string]string{
		"releasever": cfg.Version,
		"basearch":   baseArch(cfg.Arch),
		"arch":       cfg.Arch,
	}

	var sources []repoSource
	for _, r := range cfg.Repos {
		sources = append(sources, repoSource{
			repo:    repo.New(r.Name, repo.ExpandVars(r.BaseURL, vars), repo.ExpandVars(r.Mirrorlist, vars), cfg.CacheDir, cfg.CacheTTL),
			exclude: r.ExcludePkgs,
		})
	}
	for _, r := range m.Repos {
		sources = append(sources, repoSource{
			repo:    repo.New(r.Name, repo.ExpandVars(r.BaseURL, vars), repo.ExpandVars(r.Mirrorlist, vars), cfg.CacheDir, cfg.CacheTTL),
			cost:    r.Cost,
			include: r.IncludePkgs,
			exclude: r.ExcludePkgs,
		})
	}
	slices.SortStableFunc(sources, func(a, b repoSource) int { return a.cost - b.cost })
	return sources
}

func loadUniverse(ctx context.Context, log *slog.Logger, arch string, sources []repoSource) (*universe.Sack, error) {
	loaded := make([]struct {
		pkgs   []*rpm.Package
		groups []*rpm.Group
	}, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			log.Info("Loading repository", "repo", src.repo.ID)
			md, err := src.repo.Load(ctx)
			if err != nil {
				return fmt.Errorf("loading repo %s: %w", src.repo.ID, err)
			}
			pkgs, err := md.Records(src.repo.ID)
			if err != nil {
				return fmt.Errorf("loading repo %s: %w", src.repo.ID, err)
			}
			loaded[i].pkgs = repo.Filter(pkgs, src.include, src.exclude)
			loaded[i].groups = md.GroupDefinitions()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sack := universe.New(arch)
	for i, l := range loaded {
		n := sack.Add(l.pkgs, l.groups)
		log.Debug("Indexed repository", "repo", sources[i].repo.ID, "packages", n)
	}
	sack.Freeze()
	log.Info("Loaded package universe", "arch", arch, "packages", sack.Len())
	return sack, nil
}

func writeList(path string, res *gather.Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating list directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating compose list: %w", err)
	}

	if err := snapshot.NewEmitter(out).Emit(snapshot.FromResult(res)); err != nil {
		out.Close()
		return fmt.Errorf("writing compose list: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing compose list: %w", err)
	}
	return nil
}

func download(ctx context.Context, log *slog.Logger, cfg *config.Config, layout downloader.Layout, res *gather.Result, sources []repoSource) error {
	repos := make(map[string]*repo.Repo, len(sources))
	for _, src := range sources {
		repos[src.repo.ID] = src.repo
	}
	url := func(p *rpm.Package) (string, error) {
		r, ok := repos[p.RepoID]
		if !ok {
			return "", fmt.Errorf("no repository %q for %s", p.RepoID, p.NEVRA())
		}
		return r.PackageURL(p.Location), nil
	}

	type packageSet struct {
		pkgs []*rpm.Package
		dir  string
	}
	sets := []packageSet{
		{res.Binaries, layout.PackagesDir()},
		{res.Debuginfo, layout.DebugDir()},
	}
	if cfg.Sources {
		sets = append(sets, packageSet{res.Sources, layout.SourceDir()})
	}

	var jobs []downloader.Job
	for _, set := range sets {
		j, err := downloader.Jobs(set.pkgs, set.dir, url)
		if err != nil {
			return fmt.Errorf("planning downloads: %w", err)
		}
		jobs = append(jobs, j...)
	}

	results := downloader.NewDownloader(cfg.Workers, log).Download(ctx, jobs)
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			log.Error("Download failed", "path", r.Job.DestPath, "error", r.Error)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(jobs))
	}
	log.Info("Downloaded packages", "count", len(jobs), "root", layout.Root)
	return nil
}

// baseArch maps an architecture to the $basearch used in repository URLs.
func baseArch(arch string) string {
	switch arch {
	case "i386", "i486", "i586", "i686", "athlon":
		return "i386"
	case "ppc64iseries", "ppc64pseries":
		return "ppc64"
	case "sparc64v", "sparcv9":
		return "sparc64"
	default:
		return arch
	}
}
