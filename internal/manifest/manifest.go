// Package manifest describes what a compose asks for and parses it from
// kickstart files.
package manifest

// IncludeLevel selects which packages of a group are requested.
type IncludeLevel int

const (
	IncludeMandatory IncludeLevel = iota // mandatory only
	IncludeDefault                       // mandatory + default
	IncludeOptional                      // mandatory + default + optional
)

// CoreGroup is always part of a compose.
const CoreGroup = "core"

// BaseGroup is added unless the manifest opts out.
const BaseGroup = "base"

// GroupRequest is a group reference with its include level.
type GroupRequest struct {
	Name    string
	Include IncludeLevel
}

// Repo is a repository declared by the manifest.
type Repo struct {
	Name        string
	BaseURL     string
	Mirrorlist  string
	Cost        int
	ExcludePkgs []string
	IncludePkgs []string
}

// Manifest is a compose request.
type Manifest struct {
	Groups   []GroupRequest
	Packages []string // names or globs
	Excludes []string // names or globs

	Default bool // also request every group marked default
	NoBase  bool // do not add the base group

	Repos []Repo
}

// AddGroup requests a group unless it is already requested.
func (m *Manifest) AddGroup(name string, include IncludeLevel) {
	if m.HasGroup(name) {
		return
	}
	m.Groups = append(m.Groups, GroupRequest{Name: name, Include: include})
}

// HasGroup reports whether the group is requested.
func (m *Manifest) HasGroup(name string) bool {
	for _, g := range m.Groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
