package gather

import (
	"slices"

	"github.com/frederic-klein/gather/internal/rpm"
)

// Resolve adds the dependency closure of roots to st. Roots are admitted
// if not yet resolved; source records have their requirements walked but
// are never admitted. Packages whose requirements were already walked are
// skipped, so calling Resolve again with the same roots changes nothing.
func (g *Gatherer) Resolve(st *State, roots ...*rpm.Package) {
	var queue []*rpm.Package

	admit := func(p *rpm.Package) bool {
		id := p.Ident()
		if st.processed[id] {
			return false
		}
		if !st.Has(id) && !st.add(p) {
			return false
		}
		st.processed[id] = true
		queue = append(queue, p)
		return true
	}

	for _, p := range roots {
		if p.IsSource() {
			queue = append(queue, p)
			continue
		}
		admit(p)
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		g.log.Debug("Checking deps", "package", p.NameArch())

		for _, req := range p.Requires {
			if req.IsVirtual() {
				continue
			}
			key := req.Key()
			if st.satisfied[key] {
				continue
			}
			if provides(p, req) {
				continue
			}
			st.satisfied[key] = true

			var providers []*rpm.Package
			for _, dep := range g.universe.WhatProvides(req) {
				if !st.isExcluded(dep) {
					providers = append(providers, dep)
				}
			}

			met := false
			for _, dep := range g.universe.NewestByNameArch(providers) {
				if admit(dep) {
					g.log.Info("Added dependency", "package", dep.NEVRA(), "for", p.NameArch())
				}
				if st.Has(dep.Ident()) {
					met = true
				} else if held, ok := st.byNameArch[dep.NameArch()]; ok && provides(held, req) {
					met = true
				}
			}
			if !met {
				st.warn(&UnresolvableRequirementError{Requirement: req, Package: p.Ident()})
				g.log.Warn("Unresolvable dependency", "requirement", req.String(), "package", p.NameArch())
			}
		}

		for _, cond := range st.conditionals[p.Ident()] {
			if admit(cond) {
				g.log.Info("Added conditional", "package", cond.NEVRA(), "trigger", p.NameArch())
			}
		}
	}
}

// provides reports whether p itself satisfies req, through its own name,
// an explicit provide, or a file it ships.
func provides(p *rpm.Package, req rpm.Requirement) bool {
	if req.SatisfiedBy(p.SelfProvide()) || req.SatisfiedByAny(p.Provides) {
		return true
	}
	return req.IsFile() && slices.Contains(p.Files, req.Name)
}
