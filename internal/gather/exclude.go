package gather

import (
	"slices"

	"github.com/frederic-klein/gather/internal/rpm"
)

// Exclude removes the resolved binaries matching any of patterns and
// returns how many were removed. Matching packages are also dropped from
// conditional registrations, and the patterns stay in force so later
// passes never admit a match again.
func (g *Gatherer) Exclude(st *State, patterns []string) int {
	removed := 0
	for _, pattern := range patterns {
		if !slices.Contains(st.excludes, pattern) {
			st.excludes = append(st.excludes, pattern)
		}

		n := 0
		for _, p := range st.Binaries() {
			if rpm.Match(p, pattern) {
				st.remove(p)
				g.log.Info("Excluding package", "package", p.NEVRA())
				n++
			}
		}

		for trigger, adds := range st.conditionals {
			pruned := slices.DeleteFunc(adds, func(p *rpm.Package) bool { return rpm.Match(p, pattern) })
			if len(pruned) == 0 {
				delete(st.conditionals, trigger)
				continue
			}
			st.conditionals[trigger] = pruned
		}

		if n == 0 {
			g.log.Debug("No such package to exclude", "pattern", pattern)
		}
		removed += n
	}
	return removed
}
