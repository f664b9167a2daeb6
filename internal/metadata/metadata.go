// Package metadata decodes repository metadata documents into package
// records and group definitions.
package metadata

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/frederic-klein/gather/internal/rpm"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FlexVersion handles JSON/YAML values that can be string or number.
// The literal text is kept so "5.10" is not read back as 5.1.
type FlexVersion string

func (v *FlexVersion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FlexVersion(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = FlexVersion(n.String())
		return nil
	}
	*v = ""
	return nil
}

func (v *FlexVersion) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*v = FlexVersion(node.Value)
		return nil
	}
	*v = ""
	return nil
}

// Dep is a requirement or provide. It is written either as a string
// ("glibc >= 2.31") or as a mapping with name, flags and version.
type Dep rpm.Requirement

type depFields struct {
	Name    string      `json:"name" yaml:"name"`
	Flags   string      `json:"flags" yaml:"flags"`
	Version FlexVersion `json:"version" yaml:"version"`
}

func (d *Dep) fromFields(f depFields) error {
	flags, err := rpm.ParseFlags(f.Flags)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "invalid dependency"), "name", f.Name)
	}
	*d = Dep{Name: f.Name, Flags: flags, Version: string(f.Version)}
	return nil
}

func (d *Dep) fromString(s string) error {
	req, err := rpm.ParseRequirement(s)
	if err != nil {
		return zerr.Wrap(err, "invalid dependency")
	}
	*d = Dep(req)
	return nil
}

func (d *Dep) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.fromString(s)
	}
	var f depFields
	if err := json.Unmarshal(data, &f); err != nil {
		return zerr.Wrap(err, "invalid dependency")
	}
	return d.fromFields(f)
}

func (d *Dep) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		return d.fromString(node.Value)
	}
	var f depFields
	if err := node.Decode(&f); err != nil {
		return zerr.Wrap(err, "invalid dependency")
	}
	return d.fromFields(f)
}

// PackageEntry is one package in a primary metadata document.
type PackageEntry struct {
	Name      string      `json:"name" yaml:"name"`
	Epoch     FlexVersion `json:"epoch" yaml:"epoch"`
	Version   FlexVersion `json:"version" yaml:"version"`
	Release   FlexVersion `json:"release" yaml:"release"`
	Arch      string      `json:"arch" yaml:"arch"`
	SourceRPM string      `json:"sourcerpm" yaml:"sourcerpm"`
	Location  string      `json:"location" yaml:"location"`
	Checksum  string      `json:"checksum" yaml:"checksum"`
	Requires  []Dep       `json:"requires" yaml:"requires"`
	Provides  []Dep       `json:"provides" yaml:"provides"`
	Files     []string    `json:"files" yaml:"files"`
}

// GroupEntry is one group in a comps document.
type GroupEntry struct {
	ID          string              `json:"id" yaml:"id"`
	Default     bool                `json:"default" yaml:"default"`
	Mandatory   []string            `json:"mandatory" yaml:"mandatory"`
	Defaults    []string            `json:"default_packages" yaml:"default_packages"`
	Optional    []string            `json:"optional" yaml:"optional"`
	Conditional map[string][]string `json:"conditional" yaml:"conditional"`
}

// Repodata is the decoded content of a repository's metadata.
type Repodata struct {
	Packages []PackageEntry `json:"packages" yaml:"packages"`
	Groups   []GroupEntry   `json:"groups" yaml:"groups"`
}

// Merge appends the packages and groups of other.
func (r *Repodata) Merge(other *Repodata) {
	if other == nil {
		return
	}
	r.Packages = append(r.Packages, other.Packages...)
	r.Groups = append(r.Groups, other.Groups...)
}

// Records converts the package entries into records tagged with repoID.
func (r *Repodata) Records(repoID string) ([]*rpm.Package, error) {
	pkgs := make([]*rpm.Package, 0, len(r.Packages))
	for _, e := range r.Packages {
		p, err := e.record(repoID)
		if err != nil {
			return nil, err
		}
		pkgs = append(pkgs, p)
	}
	return pkgs, nil
}

func (e PackageEntry) record(repoID string) (*rpm.Package, error) {
	if e.Name == "" || e.Version == "" || e.Arch == "" {
		return nil, zerr.With(zerr.New("package entry missing name, version or arch"), "name", e.Name)
	}

	epoch := 0
	if s := strings.TrimSpace(string(e.Epoch)); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "invalid epoch"), "package", e.Name)
		}
		epoch = n
	}

	p := &rpm.Package{
		Name:      e.Name,
		Epoch:     epoch,
		Version:   string(e.Version),
		Release:   string(e.Release),
		Arch:      e.Arch,
		SourceRPM: e.SourceRPM,
		Location:  e.Location,
		Checksum:  e.Checksum,
		Files:     e.Files,
		RepoID:    repoID,
	}
	for _, d := range e.Requires {
		p.Requires = append(p.Requires, rpm.Requirement(d))
	}
	for _, d := range e.Provides {
		p.Provides = append(p.Provides, rpm.Requirement(d))
	}
	return p, nil
}

// GroupDefinitions converts the group entries into group definitions.
func (r *Repodata) GroupDefinitions() []*rpm.Group {
	groups := make([]*rpm.Group, 0, len(r.Groups))
	for _, g := range r.Groups {
		groups = append(groups, &rpm.Group{
			ID:          g.ID,
			IsDefault:   g.Default,
			Mandatory:   g.Mandatory,
			Default:     g.Defaults,
			Optional:    g.Optional,
			Conditional: g.Conditional,
		})
	}
	return groups
}
