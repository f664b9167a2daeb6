// Package repo fetches and caches repository metadata.
package repo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/frederic-klein/gather/internal/metadata"
	"github.com/frederic-klein/gather/internal/rpm"
	"go.trai.ch/zerr"
)

const (
	primaryPath = "repodata/primary.yaml.gz"
	compsPath   = "repodata/comps.yaml"
)

// Repo is a package repository reachable by base URL or mirrorlist.
type Repo struct {
	ID         string
	BaseURL    string
	Mirrorlist string

	cacheDir string
	ttl      time.Duration
	client   *http.Client
}

// New creates a repository whose metadata is cached under cacheDir/id.
// A zero ttl refetches metadata on every Load.
func New(id, baseURL, mirrorlist, cacheDir string, ttl time.Duration) *Repo {
	return &Repo{
		ID:         id,
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Mirrorlist: mirrorlist,
		cacheDir:   filepath.Join(cacheDir, id),
		ttl:        ttl,
		client:     &http.Client{},
	}
}

// Load returns the repository's metadata, downloading it unless the
// cached copy is younger than the TTL. Local repositories, and local
// .tar.gz metadata bundles, are read in place.
func (r *Repo) Load(ctx context.Context) (*metadata.Repodata, error) {
	if r.BaseURL == "" && r.Mirrorlist != "" {
		mirrors, err := FetchMirrorlist(ctx, r.client, r.Mirrorlist)
		if err != nil {
			return nil, zerr.With(err, "repo", r.ID)
		}
		r.BaseURL = strings.TrimSuffix(mirrors[0], "/")
	}
	if r.BaseURL == "" {
		return nil, zerr.With(zerr.New("repository has no baseurl or mirrorlist"), "repo", r.ID)
	}

	if dir, ok := localDir(r.BaseURL); ok {
		return r.loadLocal(dir)
	}

	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return nil, zerr.Wrap(err, "creating cache dir")
	}

	primary := filepath.Join(r.cacheDir, filepath.Base(primaryPath))
	if !r.isCacheValid(primary) {
		if err := r.download(ctx, primaryPath, primary, true); err != nil {
			return nil, zerr.With(err, "repo", r.ID)
		}
	}
	md, err := metadata.ReadFile(primary)
	if err != nil {
		return nil, zerr.With(err, "repo", r.ID)
	}

	comps := filepath.Join(r.cacheDir, filepath.Base(compsPath))
	if !r.isCacheValid(comps) {
		if err := r.download(ctx, compsPath, comps, false); err != nil {
			return nil, zerr.With(err, "repo", r.ID)
		}
	}
	if _, err := os.Stat(comps); err == nil {
		groups, err := metadata.ReadFile(comps)
		if err != nil {
			return nil, zerr.With(err, "repo", r.ID)
		}
		md.Merge(groups)
	}

	return md, nil
}

// PackageURL returns the download URL of a package location.
func (r *Repo) PackageURL(location string) string {
	return r.BaseURL + "/" + strings.TrimPrefix(location, "/")
}

func (r *Repo) loadLocal(dir string) (*metadata.Repodata, error) {
	if strings.HasSuffix(dir, ".tar.gz") || strings.HasSuffix(dir, ".tgz") {
		md, err := metadata.ReadBundle(dir)
		if err != nil {
			return nil, zerr.With(err, "repo", r.ID)
		}
		return md, nil
	}
	md, err := metadata.ReadFile(filepath.Join(dir, filepath.FromSlash(primaryPath)))
	if err != nil {
		return nil, zerr.With(err, "repo", r.ID)
	}
	comps := filepath.Join(dir, filepath.FromSlash(compsPath))
	if _, err := os.Stat(comps); err == nil {
		groups, err := metadata.ReadFile(comps)
		if err != nil {
			return nil, zerr.With(err, "repo", r.ID)
		}
		md.Merge(groups)
	}
	return md, nil
}

func (r *Repo) isCacheValid(p string) bool {
	if r.ttl <= 0 {
		return false
	}
	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < r.ttl
}

func (r *Repo) download(ctx context.Context, rel, dest string, required bool) error {
	u := r.BaseURL + "/" + rel

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return zerr.Wrap(err, "creating request")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "downloading metadata"), "url", u)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && !required {
		_ = os.Remove(dest)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		return zerr.With(zerr.With(zerr.New("downloading metadata"), "url", u), "status", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return zerr.Wrap(err, "creating cache file")
	}
	_, err = io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmp)
		return zerr.Wrap(err, "writing cache file")
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return zerr.Wrap(err, "renaming cache file")
	}
	return nil
}

// localDir reports whether baseURL names a directory on this machine.
func localDir(baseURL string) (string, bool) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "file":
		return u.Path, true
	case "":
		return baseURL, true
	default:
		return "", false
	}
}

// ExpandVars substitutes $releasever and $basearch style variables.
func ExpandVars(s string, vars map[string]string) string {
	return os.Expand(s, func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return "$" + key
	})
}

// Filter drops the packages matching any exclude pattern and, when include
// is not empty, keeps only those matching an include pattern.
func Filter(pkgs []*rpm.Package, include, exclude []string) []*rpm.Package {
	if len(include) == 0 && len(exclude) == 0 {
		return pkgs
	}
	matchAny := func(p *rpm.Package, patterns []string) bool {
		for _, pattern := range patterns {
			if rpm.Match(p, pattern) {
				return true
			}
		}
		return false
	}

	out := make([]*rpm.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if matchAny(p, exclude) {
			continue
		}
		if len(include) > 0 && !matchAny(p, include) {
			continue
		}
		out = append(out, p)
	}
	return out
}
