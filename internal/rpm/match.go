package rpm

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// IsGlob reports whether pattern contains glob metacharacters.
func IsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

// MatchNames returns the spellings a package can be requested by.
func MatchNames(p *Package) []string {
	nv := p.Name + "-" + p.Version
	nvr := nv + "-" + p.Release
	return []string{
		p.Name,
		p.NameArch(),
		nv,
		nvr,
		nvr + "." + p.Arch,
		fmt.Sprintf("%d:%s.%s", p.Epoch, nvr, p.Arch),
		fmt.Sprintf("%s-%d:%s-%s.%s", p.Name, p.Epoch, p.Version, p.Release, p.Arch),
	}
}

// Match reports whether the package is named by pattern, either exactly or
// as a case-sensitive glob.
func Match(p *Package, pattern string) bool {
	glob := IsGlob(pattern)
	for _, name := range MatchNames(p) {
		if name == pattern {
			return true
		}
		if glob {
			if ok, err := doublestar.Match(pattern, name); err == nil && ok {
				return true
			}
		}
	}
	return false
}
