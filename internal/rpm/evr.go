package rpm

import (
	"fmt"
	"strconv"
	"strings"

	version "github.com/knqyf263/go-rpm-version"
)

// EVR is an epoch/version/release triple.
type EVR struct {
	Epoch   int
	Version string
	Release string
}

// ParseEVR parses "[epoch:]version[-release]".
func ParseEVR(s string) EVR {
	var evr EVR
	if i := strings.Index(s, ":"); i != -1 {
		if n, err := strconv.Atoi(s[:i]); err == nil {
			evr.Epoch = n
		}
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "-"); i != -1 {
		evr.Release = s[i+1:]
		s = s[:i]
	}
	evr.Version = s
	return evr
}

func (e EVR) String() string {
	if e.Release == "" {
		return fmt.Sprintf("%d:%s", e.Epoch, e.Version)
	}
	return fmt.Sprintf("%d:%s-%s", e.Epoch, e.Version, e.Release)
}

// CompareEVR orders two EVRs: epoch first, then version, then release.
func CompareEVR(a, b EVR) int {
	if a.Epoch != b.Epoch {
		if a.Epoch < b.Epoch {
			return -1
		}
		return 1
	}
	if c := Vercmp(a.Version, b.Version); c != 0 {
		return c
	}
	return Vercmp(a.Release, b.Release)
}

// compareRange is CompareEVR for dependency ranges: a release missing on
// either side matches any release.
func compareRange(a, b EVR) int {
	if a.Epoch != b.Epoch {
		if a.Epoch < b.Epoch {
			return -1
		}
		return 1
	}
	if c := Vercmp(a.Version, b.Version); c != 0 {
		return c
	}
	if a.Release == "" || b.Release == "" {
		return 0
	}
	return Vercmp(a.Release, b.Release)
}

// Vercmp compares two version or release strings the way rpm does.
// Segments of digits compare numerically, segments of letters lexically,
// and a digit segment is always newer than a letter segment. '~' sorts
// before anything, '^' sorts after the base version but before any
// further segment.
func Vercmp(a, b string) int {
	if a == b {
		return 0
	}
	// go-rpm-version does not know '^' and drops it as a separator.
	if !strings.ContainsRune(a, '^') && !strings.ContainsRune(b, '^') {
		return version.NewVersion("0:" + a).Compare(version.NewVersion("0:" + b))
	}
	return vercmpSegments(a, b)
}

// vercmpSegments walks both strings segment by segment, as rpmvercmp does.
func vercmpSegments(a, b string) int {
	for len(a) > 0 || len(b) > 0 {
		a = strings.TrimLeftFunc(a, isSeparator)
		b = strings.TrimLeftFunc(b, isSeparator)

		if strings.HasPrefix(a, "~") || strings.HasPrefix(b, "~") {
			if !strings.HasPrefix(a, "~") {
				return 1
			}
			if !strings.HasPrefix(b, "~") {
				return -1
			}
			a, b = a[1:], b[1:]
			continue
		}

		if strings.HasPrefix(a, "^") || strings.HasPrefix(b, "^") {
			if a == "" {
				return -1
			}
			if b == "" {
				return 1
			}
			if !strings.HasPrefix(a, "^") {
				return 1
			}
			if !strings.HasPrefix(b, "^") {
				return -1
			}
			a, b = a[1:], b[1:]
			continue
		}

		if a == "" || b == "" {
			break
		}

		numeric := isDigit(a[0])
		var segA, segB string
		if numeric {
			segA, a = splitWhile(a, isDigit)
			segB, b = splitWhile(b, isDigit)
		} else {
			segA, a = splitWhile(a, isAlpha)
			segB, b = splitWhile(b, isAlpha)
		}

		if segB == "" {
			if numeric {
				return 1
			}
			return -1
		}

		if numeric {
			segA = strings.TrimLeft(segA, "0")
			segB = strings.TrimLeft(segB, "0")
			if len(segA) != len(segB) {
				if len(segA) > len(segB) {
					return 1
				}
				return -1
			}
		}

		if c := strings.Compare(segA, segB); c != 0 {
			return c
		}
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func splitWhile(s string, pred func(byte) bool) (string, string) {
	i := 0
	for i < len(s) && pred(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSeparator(r rune) bool {
	if r > 127 {
		return true
	}
	c := byte(r)
	return !isDigit(c) && !isAlpha(c) && c != '~' && c != '^'
}
