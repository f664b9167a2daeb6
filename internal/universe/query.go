package universe

import (
	"github.com/frederic-klein/gather/internal/rpm"
)

// LookupByNameOrGlob returns every package named by pattern. Exact names
// are answered from the name index; globs scan the sack once and are cached.
func (s *Sack) LookupByNameOrGlob(pattern string) []*rpm.Package {
	if !rpm.IsGlob(pattern) {
		if pkgs, ok := s.byName[pattern]; ok {
			return pkgs
		}
	}
	if cached, ok := s.globs.Get(pattern); ok {
		return cached
	}

	var matches []*rpm.Package
	for _, p := range s.packages {
		if rpm.Match(p, pattern) {
			matches = append(matches, p)
		}
	}
	s.globs.Add(pattern, matches)
	return matches
}

// NewestByNameArch keeps the newest record per name.arch. Groups keep the
// order in which their name.arch was first seen.
func (s *Sack) NewestByNameArch(pkgs []*rpm.Package) []*rpm.Package {
	return NewestByNameArch(pkgs)
}

// NewestByNameArch keeps the newest record per name.arch.
func NewestByNameArch(pkgs []*rpm.Package) []*rpm.Package {
	index := make(map[string]int)
	var out []*rpm.Package
	for _, p := range pkgs {
		key := p.NameArch()
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, p)
			continue
		}
		if rpm.CompareEVR(p.EVR(), out[i].EVR()) > 0 {
			out[i] = p
		}
	}
	return out
}

// WhatProvides returns the binary packages providing req. File
// requirements are also answered from package file lists.
func (s *Sack) WhatProvides(req rpm.Requirement) []*rpm.Package {
	var out []*rpm.Package
	seen := make(map[*rpm.Package]bool)

	for _, p := range s.provides[req.Name] {
		if seen[p] {
			continue
		}
		if req.SatisfiedBy(p.SelfProvide()) || req.SatisfiedByAny(p.Provides) {
			seen[p] = true
			out = append(out, p)
		}
	}

	if req.IsFile() {
		for _, p := range s.files[req.Name] {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// SourceRecord returns the source package with the given name, version and release.
func (s *Sack) SourceRecord(name, version, release string) (*rpm.Package, bool) {
	var best *rpm.Package
	for _, p := range s.byName[name] {
		if !p.IsSource() || p.Version != version || p.Release != release {
			continue
		}
		if best == nil || p.Epoch > best.Epoch {
			best = p
		}
	}
	return best, best != nil
}

// SearchNVRA returns the packages matching name, version, release and arch.
func (s *Sack) SearchNVRA(name, version, release, arch string) []*rpm.Package {
	var out []*rpm.Package
	for _, p := range s.byName[name] {
		if p.Version == version && p.Release == release && p.Arch == arch {
			out = append(out, p)
		}
	}
	return out
}

// Binaries returns every binary package built from the source record.
func (s *Sack) Binaries(src *rpm.Package) []*rpm.Package {
	return s.bySource[sourceRPMName(src)]
}

// Group returns the group definition with the given id.
func (s *Sack) Group(id string) (*rpm.Group, bool) {
	g, ok := s.groups[id]
	return g, ok
}

// DefaultGroups returns the ids of groups marked default, in load order.
func (s *Sack) DefaultGroups() []string {
	var ids []string
	for _, id := range s.groupOrder {
		if s.groups[id].IsDefault {
			ids = append(ids, id)
		}
	}
	return ids
}

func sourceRPMName(src *rpm.Package) string {
	return src.Name + "-" + src.Version + "-" + src.Release + ".src.rpm"
}
