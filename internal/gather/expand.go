package gather

import (
	"slices"

	"github.com/frederic-klein/gather/internal/manifest"
	"github.com/frederic-klein/gather/internal/rpm"
)

// OriginManifest marks candidates listed directly in the manifest.
const OriginManifest = "manifest"

// Candidate is a package name or glob to be matched against the universe,
// with the group reference or manifest that asked for it.
type Candidate struct {
	Pattern string
	Origin  string
}

// Expand turns the manifest into candidate names. The core group is always
// included, default groups when the manifest asks for them, and the base
// group unless disabled. Group conditionals are registered on st.
func (g *Gatherer) Expand(st *State, m *manifest.Manifest) []Candidate {
	requests := []manifest.GroupRequest{{Name: manifest.CoreGroup, Include: manifest.IncludeDefault}}
	add := func(name string, include manifest.IncludeLevel) {
		for _, r := range requests {
			if r.Name == name {
				return
			}
		}
		requests = append(requests, manifest.GroupRequest{Name: name, Include: include})
	}
	for _, r := range m.Groups {
		add(r.Name, r.Include)
	}
	if m.Default {
		for _, id := range g.universe.DefaultGroups() {
			add(id, manifest.IncludeDefault)
		}
	}
	if !m.NoBase {
		add(manifest.BaseGroup, manifest.IncludeDefault)
	}

	var candidates []Candidate
	index := make(map[string]int)
	addCandidate := func(pattern, origin string) {
		if i, ok := index[pattern]; ok {
			candidates[i].Origin = origin
			return
		}
		index[pattern] = len(candidates)
		candidates = append(candidates, Candidate{Pattern: pattern, Origin: origin})
	}

	for _, r := range requests {
		grp, ok := g.universe.Group(r.Name)
		if !ok {
			st.warn(&UnknownGroupError{Group: r.Name})
			g.log.Warn("Group not found in comps", "group", r.Name)
			continue
		}
		names := slices.Clone(grp.Mandatory)
		if r.Include >= manifest.IncludeDefault {
			names = append(names, grp.Default...)
		}
		if r.Include >= manifest.IncludeOptional {
			names = append(names, grp.Optional...)
		}
		for _, name := range names {
			addCandidate(name, "@"+r.Name)
		}
		g.registerConditionals(st, grp)
	}

	for _, name := range m.Packages {
		addCandidate(name, OriginManifest)
	}
	return candidates
}

func (g *Gatherer) registerConditionals(st *State, grp *rpm.Group) {
	triggers := make([]string, 0, len(grp.Conditional))
	for trigger := range grp.Conditional {
		triggers = append(triggers, trigger)
	}
	slices.Sort(triggers)

	for _, trigger := range triggers {
		var adds []*rpm.Package
		for _, name := range grp.Conditional[trigger] {
			adds = append(adds, g.newestBinaries(name)...)
		}
		if len(adds) == 0 {
			continue
		}
		for _, t := range g.newestBinaries(trigger) {
			st.RegisterConditional(t, adds)
			g.log.Debug("Registered conditional", "trigger", t.NameArch(), "group", grp.ID)
		}
	}
}

func (g *Gatherer) newestBinaries(name string) []*rpm.Package {
	var pkgs []*rpm.Package
	for _, p := range g.universe.LookupByNameOrGlob(name) {
		if !p.IsSource() && !p.IsDebuginfo() {
			pkgs = append(pkgs, p)
		}
	}
	return g.universe.NewestByNameArch(pkgs)
}

// Match resolves candidates to the newest binary record per name.arch.
// A candidate matching nothing is an error unless it is also excluded.
func (g *Gatherer) Match(candidates []Candidate, excludes []string) ([]*rpm.Package, error) {
	var matched []*rpm.Package
	for _, c := range candidates {
		found := g.universe.LookupByNameOrGlob(c.Pattern)
		if len(found) == 0 {
			if slices.Contains(excludes, c.Pattern) {
				continue
			}
			return nil, &MissingPackageError{Name: c.Pattern, Origin: c.Origin}
		}
		for _, p := range found {
			if !p.IsSource() && !p.IsDebuginfo() {
				matched = append(matched, p)
			}
		}
	}

	newest := g.universe.NewestByNameArch(matched)
	if len(newest) == 0 {
		return nil, &MissingPackageError{}
	}
	return newest, nil
}
