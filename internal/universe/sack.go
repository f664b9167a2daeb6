// Package universe indexes package metadata for lookups during resolution.
//
// A Sack is filled with Add and then frozen; after Freeze it is read-only
// and may be shared by concurrent resolution runs.
package universe

import (
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/frederic-klein/gather/internal/rpm"
)

const globCacheSize = 1024

// Sack is an in-memory package universe for one compose architecture.
type Sack struct {
	arch    string
	allowed map[string]bool

	packages   []*rpm.Package
	byName     map[string][]*rpm.Package
	provides   map[string][]*rpm.Package // capability name -> providers
	files      map[string][]*rpm.Package
	bySource   map[string][]*rpm.Package // source rpm filename -> binaries
	groups     map[string]*rpm.Group
	groupOrder []string

	globs  *lru.Cache[string, []*rpm.Package]
	frozen bool
}

// New creates an empty sack accepting packages installable on arch.
func New(arch string) *Sack {
	allowed := make(map[string]bool)
	for _, a := range rpm.CompatArches(arch) {
		allowed[a] = true
	}
	globs, _ := lru.New[string, []*rpm.Package](globCacheSize)
	return &Sack{
		arch:     arch,
		allowed:  allowed,
		byName:   make(map[string][]*rpm.Package),
		provides: make(map[string][]*rpm.Package),
		files:    make(map[string][]*rpm.Package),
		bySource: make(map[string][]*rpm.Package),
		groups:   make(map[string]*rpm.Group),
		globs:    globs,
	}
}

// Arch returns the compose architecture of the sack.
func (s *Sack) Arch() string {
	return s.arch
}

// Add indexes packages and groups. Packages for architectures that cannot
// be installed on the sack's arch are skipped. Add panics after Freeze.
func (s *Sack) Add(pkgs []*rpm.Package, groups []*rpm.Group) int {
	if s.frozen {
		panic("universe: Add called on frozen sack")
	}

	added := 0
	for _, p := range pkgs {
		if !s.allowed[p.Arch] {
			continue
		}
		s.index(p)
		added++
	}

	for _, g := range groups {
		if existing, ok := s.groups[g.ID]; ok {
			s.groups[g.ID] = mergeGroups(existing, g)
			continue
		}
		s.groups[g.ID] = g
		s.groupOrder = append(s.groupOrder, g.ID)
	}
	return added
}

func (s *Sack) index(p *rpm.Package) {
	s.packages = append(s.packages, p)
	s.byName[p.Name] = append(s.byName[p.Name], p)

	if p.IsSource() {
		return
	}

	seen := make(map[string]bool)
	for _, prov := range append([]rpm.Requirement{p.SelfProvide()}, p.Provides...) {
		if seen[prov.Name] {
			continue
		}
		seen[prov.Name] = true
		s.provides[prov.Name] = append(s.provides[prov.Name], p)
	}
	for _, f := range p.Files {
		s.files[f] = append(s.files[f], p)
	}
	if p.SourceRPM != "" {
		s.bySource[p.SourceRPM] = append(s.bySource[p.SourceRPM], p)
	}
}

// Freeze marks the sack read-only.
func (s *Sack) Freeze() {
	s.frozen = true
}

// Len returns the number of indexed packages.
func (s *Sack) Len() int {
	return len(s.packages)
}

// Packages returns every indexed package.
func (s *Sack) Packages() []*rpm.Package {
	return s.packages
}

func mergeGroups(a, b *rpm.Group) *rpm.Group {
	merged := &rpm.Group{
		ID:          a.ID,
		IsDefault:   a.IsDefault || b.IsDefault,
		Mandatory:   appendUnique(a.Mandatory, b.Mandatory),
		Default:     appendUnique(a.Default, b.Default),
		Optional:    appendUnique(a.Optional, b.Optional),
		Conditional: make(map[string][]string),
	}
	for trigger, names := range a.Conditional {
		merged.Conditional[trigger] = appendUnique(nil, names)
	}
	for trigger, names := range b.Conditional {
		merged.Conditional[trigger] = appendUnique(merged.Conditional[trigger], names)
	}
	return merged
}

func appendUnique(dst, src []string) []string {
	out := slices.Clone(dst)
	for _, s := range src {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
