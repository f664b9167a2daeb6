package rpm

import (
	"fmt"
	"strings"
)

// Flags is the comparison of a versioned requirement, as RPMSENSE bits.
type Flags int

const (
	FlagAny Flags = 0
	FlagLT  Flags = 1 << 1
	FlagGT  Flags = 1 << 2
	FlagEQ  Flags = 1 << 3
	FlagLE  Flags = FlagLT | FlagEQ
	FlagGE  Flags = FlagGT | FlagEQ
)

const flagSenseMask = FlagLT | FlagGT | FlagEQ

var flagOps = map[string]Flags{
	"<": FlagLT, "LT": FlagLT,
	">": FlagGT, "GT": FlagGT,
	"=": FlagEQ, "==": FlagEQ, "EQ": FlagEQ,
	"<=": FlagLE, "LE": FlagLE,
	">=": FlagGE, "GE": FlagGE,
}

// ParseFlags parses an operator such as ">=" or "GE".
func ParseFlags(op string) (Flags, error) {
	if op == "" {
		return FlagAny, nil
	}
	f, ok := flagOps[op]
	if !ok {
		return FlagAny, fmt.Errorf("unknown comparison %q", op)
	}
	return f, nil
}

func (f Flags) String() string {
	switch f & flagSenseMask {
	case FlagLT:
		return "<"
	case FlagGT:
		return ">"
	case FlagEQ:
		return "="
	case FlagLE:
		return "<="
	case FlagGE:
		return ">="
	default:
		return ""
	}
}

// Requirement is a (name, flags, version) capability triple.
type Requirement struct {
	Name    string
	Flags   Flags
	Version string // "[epoch:]version[-release]"
}

// ParseRequirement parses "name", "name >= 1.0" or "name = 1:2.3-4".
func ParseRequirement(s string) (Requirement, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return Requirement{Name: fields[0]}, nil
	case 3:
		flags, err := ParseFlags(fields[1])
		if err != nil {
			return Requirement{}, fmt.Errorf("parsing requirement %q: %w", s, err)
		}
		return Requirement{Name: fields[0], Flags: flags, Version: fields[2]}, nil
	default:
		return Requirement{}, fmt.Errorf("invalid requirement %q", s)
	}
}

// Key is the memoization key of the requirement.
func (r Requirement) Key() string {
	return r.Name + "\x00" + r.Flags.String() + "\x00" + r.Version
}

func (r Requirement) String() string {
	if r.Flags&flagSenseMask == FlagAny || r.Version == "" {
		return r.Name
	}
	return fmt.Sprintf("%s %s %s", r.Name, r.Flags, r.Version)
}

// IsVirtual reports whether the requirement names a capability internal to
// the packaging system that is never looked up in repositories.
func (r Requirement) IsVirtual() bool {
	return strings.HasPrefix(r.Name, "rpmlib(") || strings.HasPrefix(r.Name, "config(")
}

// IsFile reports whether the requirement is a file path.
func (r Requirement) IsFile() bool {
	return strings.HasPrefix(r.Name, "/")
}

// SatisfiedBy reports whether the provided capability overlaps the requirement.
func (r Requirement) SatisfiedBy(p Requirement) bool {
	if r.Name != p.Name {
		return false
	}
	return rangesOverlap(r, p)
}

// SatisfiedByAny reports whether any of provides overlaps the requirement.
func (r Requirement) SatisfiedByAny(provides []Requirement) bool {
	for _, p := range provides {
		if r.SatisfiedBy(p) {
			return true
		}
	}
	return false
}

func rangesOverlap(a, b Requirement) bool {
	af := a.Flags & flagSenseMask
	bf := b.Flags & flagSenseMask
	if af == FlagAny || bf == FlagAny || a.Version == "" || b.Version == "" {
		return true
	}

	sense := compareRange(ParseEVR(a.Version), ParseEVR(b.Version))
	switch {
	case sense < 0:
		return af&FlagGT != 0 || bf&FlagLT != 0
	case sense > 0:
		return af&FlagLT != 0 || bf&FlagGT != 0
	default:
		return (af&FlagEQ != 0 && bf&FlagEQ != 0) ||
			(af&FlagLT != 0 && bf&FlagLT != 0) ||
			(af&FlagGT != 0 && bf&FlagGT != 0)
	}
}
