package gather

import (
	"fmt"

	"github.com/frederic-klein/gather/internal/rpm"
)

// MissingPackageError is returned when a requested name matches nothing in
// the configured repositories, or when nothing at all was matched.
type MissingPackageError struct {
	Name   string // empty when the whole request matched nothing
	Origin string // group reference or "manifest"
}

func (e *MissingPackageError) Error() string {
	if e.Name == "" {
		return "no packages found to gather"
	}
	return fmt.Sprintf("could not find a match for %q in any configured repo (requested by %s)", e.Name, e.Origin)
}

// SourceNotFoundError is returned when a resolved binary's source package
// is not in the repositories.
type SourceNotFoundError struct {
	Package   rpm.Ident
	SourceRPM string
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("cannot find source rpm %q for %s", e.SourceRPM, e.Package)
}

// UnknownGroupError is reported when a requested group is not in comps.
// It is a warning: the group contributes nothing.
type UnknownGroupError struct {
	Group string
}

func (e *UnknownGroupError) Error() string {
	return fmt.Sprintf("group %s not found in comps", e.Group)
}

// UnresolvableRequirementError is reported when nothing provides a
// requirement. It is a warning: the requiring package stays resolved.
type UnresolvableRequirementError struct {
	Requirement rpm.Requirement
	Package     rpm.Ident
}

func (e *UnresolvableRequirementError) Error() string {
	return fmt.Sprintf("unresolvable dependency %s in %s.%s", e.Requirement, e.Package.Name, e.Package.Arch)
}
