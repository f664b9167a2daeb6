package gather

import "github.com/frederic-klein/gather/internal/rpm"

// Universe is the read-only package catalog a compose is resolved against.
// Implementations must not change while a resolution is running.
type Universe interface {
	// LookupByNameOrGlob returns every record named by pattern.
	LookupByNameOrGlob(pattern string) []*rpm.Package
	// NewestByNameArch keeps the newest record per name.arch.
	NewestByNameArch(pkgs []*rpm.Package) []*rpm.Package
	// WhatProvides returns the binary records providing req.
	WhatProvides(req rpm.Requirement) []*rpm.Package
	// SourceRecord finds a source package by name, version and release.
	SourceRecord(name, version, release string) (*rpm.Package, bool)
	// Group returns a group definition by id.
	Group(id string) (*rpm.Group, bool)
	// DefaultGroups lists the groups marked default.
	DefaultGroups() []string
	// Binaries returns every binary built from a source record.
	Binaries(src *rpm.Package) []*rpm.Package
	// SearchNVRA returns records matching name, version, release and arch.
	SearchNVRA(name, version, release, arch string) []*rpm.Package
}
