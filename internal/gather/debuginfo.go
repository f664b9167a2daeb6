package gather

import (
	"github.com/frederic-klein/gather/internal/rpm"
)

// Packages that also ship a shared -debuginfo-common package.
var debugCommon = map[string]bool{
	"kernel": true,
	"glibc":  true,
}

// MatchDebuginfo returns the debuginfo packages of binaries. A binary's
// own <name>-debuginfo is preferred; otherwise the debuginfo named after
// its source package is used.
func (g *Gatherer) MatchDebuginfo(binaries []*rpm.Package) []*rpm.Package {
	var out []*rpm.Package
	seen := make(map[rpm.Ident]bool)
	add := func(p *rpm.Package) bool {
		if p == nil || seen[p.Ident()] {
			return false
		}
		seen[p.Ident()] = true
		out = append(out, p)
		g.log.Debug("Added debuginfo", "package", p.NEVRA())
		return true
	}

	for _, b := range binaries {
		if dbg := g.sameEVR(b.Name+"-debuginfo", b); dbg != nil {
			add(dbg)
		} else if name, version, release, err := rpm.ParseSourceRPM(b.SourceRPM); err == nil {
			if found := g.universe.SearchNVRA(name+"-debuginfo", version, release, b.Arch); len(found) > 0 {
				add(found[0])
			}
		}

		if debugCommon[b.Name] {
			add(g.sameEVR(b.Name+"-debuginfo-common", b))
		}
	}
	return out
}

func (g *Gatherer) sameEVR(name string, b *rpm.Package) *rpm.Package {
	for _, p := range g.universe.SearchNVRA(name, b.Version, b.Release, b.Arch) {
		if p.Epoch == b.Epoch {
			return p
		}
	}
	return nil
}
