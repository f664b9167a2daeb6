package rpm

import (
	"fmt"
	"strconv"
	"strings"
)

// ArchSource is the architecture carried by source package records.
const ArchSource = "src"

// Package represents a package record from repository metadata.
type Package struct {
	Name    string
	Epoch   int
	Version string
	Release string
	Arch    string

	Requires  []Requirement // ordered as in metadata
	Provides  []Requirement
	Files     []string
	SourceRPM string // e.g., "bash-5.1-1.src.rpm"; empty for source records

	Location string // relative path inside the repository
	Checksum string // "sha256:<hex>"
	RepoID   string
}

// Ident is the identity of a package record, usable as a map key.
type Ident struct {
	Name    string
	Epoch   int
	Version string
	Release string
	Arch    string
}

// Ident returns the record's identity.
func (p *Package) Ident() Ident {
	return Ident{Name: p.Name, Epoch: p.Epoch, Version: p.Version, Release: p.Release, Arch: p.Arch}
}

// EVR returns the package's epoch/version/release.
func (p *Package) EVR() EVR {
	return EVR{Epoch: p.Epoch, Version: p.Version, Release: p.Release}
}

// NameArch returns "name.arch".
func (p *Package) NameArch() string {
	return p.Name + "." + p.Arch
}

// IsSource reports whether the record is a source package.
func (p *Package) IsSource() bool {
	return p.Arch == ArchSource
}

// IsDebuginfo reports whether the record carries debug symbols.
func (p *Package) IsDebuginfo() bool {
	return strings.Contains(p.Name, "debuginfo")
}

// NEVRA returns "name-epoch:version-release.arch".
func (p *Package) NEVRA() string {
	return p.Ident().String()
}

func (p *Package) String() string {
	return p.NEVRA()
}

// SelfProvide returns the implicit "name = evr" capability of the record.
func (p *Package) SelfProvide() Requirement {
	return Requirement{Name: p.Name, Flags: FlagEQ, Version: p.EVR().String()}
}

func (id Ident) String() string {
	return fmt.Sprintf("%s-%d:%s-%s.%s", id.Name, id.Epoch, id.Version, id.Release, id.Arch)
}

// ParseNEVRA parses "name-[epoch:]version-release.arch".
func ParseNEVRA(s string) (Ident, error) {
	dot := strings.LastIndex(s, ".")
	if dot <= 0 {
		return Ident{}, fmt.Errorf("invalid NEVRA %q: missing arch", s)
	}
	id := Ident{Arch: s[dot+1:]}
	rest := s[:dot]

	parts := strings.Split(rest, "-")
	if len(parts) < 3 {
		return Ident{}, fmt.Errorf("invalid NEVRA %q", s)
	}
	id.Release = parts[len(parts)-1]
	version := parts[len(parts)-2]
	id.Name = strings.Join(parts[:len(parts)-2], "-")

	if i := strings.Index(version, ":"); i != -1 {
		epoch, err := strconv.Atoi(version[:i])
		if err != nil {
			return Ident{}, fmt.Errorf("invalid epoch in %q: %w", s, err)
		}
		id.Epoch = epoch
		version = version[i+1:]
	}
	id.Version = version

	if id.Name == "" || id.Version == "" || id.Release == "" {
		return Ident{}, fmt.Errorf("invalid NEVRA %q", s)
	}
	return id, nil
}

// ParseSourceRPM splits a source package filename into name, version and release.
// "bash-5.1-1.src.rpm" -> "bash", "5.1", "1"
func ParseSourceRPM(filename string) (name, version, release string, err error) {
	base := strings.TrimSuffix(filename, ".rpm")
	base = strings.TrimSuffix(base, ".src")
	base = strings.TrimSuffix(base, ".nosrc")

	parts := strings.Split(base, "-")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("invalid source rpm name %q", filename)
	}
	release = parts[len(parts)-1]
	version = parts[len(parts)-2]
	name = strings.Join(parts[:len(parts)-2], "-")
	if name == "" || version == "" || release == "" {
		return "", "", "", fmt.Errorf("invalid source rpm name %q", filename)
	}
	return name, version, release, nil
}

// Group represents a package group from comps metadata.
type Group struct {
	ID        string
	IsDefault bool
	Mandatory []string
	Default   []string
	Optional  []string

	// Conditional maps a trigger package name to the packages it pulls in.
	Conditional map[string][]string
}
