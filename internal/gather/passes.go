package gather

import (
	"slices"

	"github.com/frederic-klein/gather/internal/rpm"
)

// SelfHost resolves the build requirements of every resolved source,
// repeating until a pass discovers no new source.
func (g *Gatherer) SelfHost(st *State) error {
	for pass := 1; ; pass++ {
		var pending []*rpm.Package
		for _, src := range st.sources {
			if !st.hosted[src.Ident()] {
				pending = append(pending, src)
			}
		}
		if len(pending) == 0 {
			return nil
		}

		g.log.Info("Resolving build dependencies", "pass", pass, "sources", len(pending))
		for _, src := range pending {
			st.hosted[src.Ident()] = true
		}
		g.Resolve(st, pending...)
		if err := g.MapSources(st); err != nil {
			return err
		}
	}
}

// Complete adds every binary built from a resolved source, together with
// its dependency closure, repeating until a pass discovers no new source.
// Debuginfo and excluded siblings are skipped.
func (g *Gatherer) Complete(st *State) error {
	for pass := 1; ; pass++ {
		var pending []*rpm.Package
		for _, src := range st.sources {
			if !st.completed[src.Ident()] {
				pending = append(pending, src)
			}
		}
		if len(pending) == 0 {
			return nil
		}

		g.log.Info("Completing package set", "pass", pass, "sources", len(pending))
		var siblings []*rpm.Package
		for _, src := range pending {
			st.completed[src.Ident()] = true
			for _, p := range g.universe.Binaries(src) {
				if p.IsDebuginfo() || st.isExcluded(p) || slices.Contains(siblings, p) {
					continue
				}
				siblings = append(siblings, p)
			}
		}

		for _, p := range g.universe.NewestByNameArch(siblings) {
			if st.Has(p.Ident()) {
				continue
			}
			g.Resolve(st, p)
			if st.Has(p.Ident()) {
				g.log.Debug("Added sibling", "package", p.NEVRA())
			}
		}
		if err := g.MapSources(st); err != nil {
			return err
		}
	}
}
