// Package snapshot reads and writes compose package lists.
package snapshot

import (
	"slices"
	"strings"

	"github.com/frederic-klein/gather/internal/gather"
	"github.com/frederic-klein/gather/internal/rpm"
)

// Section names in the order they are written.
const (
	SectionBinaries  = "BINARIES"
	SectionSources   = "SOURCES"
	SectionDebuginfo = "DEBUGINFO"
)

// Entry is one package of a compose list.
type Entry struct {
	NEVRA    string
	Source   string // NEVRA of the source package; binaries only
	Location string
	Checksum string
	Repo     string
}

// Snapshot is the package list of one compose.
type Snapshot struct {
	Binaries  []Entry
	Sources   []Entry
	Debuginfo []Entry
}

// FromResult builds a snapshot from a gather result.
func FromResult(res *gather.Result) *Snapshot {
	s := &Snapshot{
		Sources:   entries(res.Sources, nil),
		Debuginfo: entries(res.Debuginfo, nil),
	}
	s.Binaries = entries(res.Binaries, res.BinaryToSource)
	return s
}

func entries(pkgs []*rpm.Package, sources map[rpm.Ident]*rpm.Package) []Entry {
	out := make([]Entry, 0, len(pkgs))
	for _, p := range pkgs {
		e := Entry{
			NEVRA:    p.NEVRA(),
			Location: p.Location,
			Checksum: p.Checksum,
			Repo:     p.RepoID,
		}
		if src, ok := sources[p.Ident()]; ok {
			e.Source = src.NEVRA()
		}
		out = append(out, e)
	}
	return out
}

func sorted(entries []Entry) []Entry {
	out := slices.Clone(entries)
	slices.SortFunc(out, func(a, b Entry) int {
		return strings.Compare(a.NEVRA, b.NEVRA)
	})
	return out
}
