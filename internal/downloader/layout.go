package downloader

import (
	"path"
	"path/filepath"

	"github.com/frederic-klein/gather/internal/rpm"
)

// Layout is the directory structure of a compose tree:
//
//	<destdir>/<version>/<flavor>/<arch>/os/Packages
//	<destdir>/<version>/<flavor>/<arch>/debug
//	<destdir>/<version>/<flavor>/source/SRPMS
type Layout struct {
	Root string
	Arch string
}

// NewLayout returns the layout of one compose.
func NewLayout(destdir, version, flavor, arch string) Layout {
	return Layout{Root: filepath.Join(destdir, version, flavor), Arch: arch}
}

// PackagesDir holds binary packages.
func (l Layout) PackagesDir() string {
	return filepath.Join(l.Root, l.Arch, "os", "Packages")
}

// DebugDir holds debuginfo packages.
func (l Layout) DebugDir() string {
	return filepath.Join(l.Root, l.Arch, "debug")
}

// SourceDir holds source packages.
func (l Layout) SourceDir() string {
	return filepath.Join(l.Root, "source", "SRPMS")
}

// URLFunc returns the download URL of a package.
type URLFunc func(p *rpm.Package) (string, error)

// Jobs creates one job per package, placing each file in dir.
func Jobs(pkgs []*rpm.Package, dir string, url URLFunc) ([]Job, error) {
	jobs := make([]Job, 0, len(pkgs))
	for _, p := range pkgs {
		u, err := url(p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, Job{
			URL:      u,
			DestPath: filepath.Join(dir, fileName(p)),
			Checksum: p.Checksum,
		})
	}
	return jobs, nil
}

func fileName(p *rpm.Package) string {
	if p.Location != "" {
		return path.Base(p.Location)
	}
	return p.Name + "-" + p.Version + "-" + p.Release + "." + p.Arch + ".rpm"
}
