package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/gather/internal/rpm"
)

func testSack(t *testing.T) (*Sack, map[string]*rpm.Package) {
	t.Helper()
	pkgs := map[string]*rpm.Package{
		"bash": {Name: "bash", Version: "5.1", Release: "1", Arch: "x86_64", SourceRPM: "bash-5.1-1.src.rpm",
			Files: []string{"/bin/bash"}, Provides: []rpm.Requirement{{Name: "/bin/sh"}}},
		"bash-old":  {Name: "bash", Version: "5.0", Release: "3", Arch: "x86_64", SourceRPM: "bash-5.0-3.src.rpm"},
		"bash-doc":  {Name: "bash-doc", Version: "5.1", Release: "1", Arch: "noarch", SourceRPM: "bash-5.1-1.src.rpm"},
		"bash-src":  {Name: "bash", Version: "5.1", Release: "1", Arch: "src"},
		"glibc":     {Name: "glibc", Epoch: 0, Version: "2.31", Release: "1", Arch: "x86_64", SourceRPM: "glibc-2.31-1.src.rpm"},
		"glibc-32":  {Name: "glibc", Version: "2.31", Release: "1", Arch: "i686", SourceRPM: "glibc-2.31-1.src.rpm"},
		"glibc-ppc": {Name: "glibc", Version: "2.31", Release: "1", Arch: "ppc64", SourceRPM: "glibc-2.31-1.src.rpm"},
		"libfoo": {Name: "libfoo", Version: "2.0", Release: "1", Arch: "x86_64", SourceRPM: "foo-2.0-1.src.rpm",
			Provides: []rpm.Requirement{{Name: "libfoo.so.2", Flags: rpm.FlagEQ, Version: "2.0"}}},
	}

	s := New("x86_64")
	added := s.Add([]*rpm.Package{
		pkgs["bash"], pkgs["bash-old"], pkgs["bash-doc"], pkgs["bash-src"],
		pkgs["glibc"], pkgs["glibc-32"], pkgs["glibc-ppc"], pkgs["libfoo"],
	}, []*rpm.Group{
		{ID: "core", Mandatory: []string{"bash"}},
		{ID: "desktop", IsDefault: true, Default: []string{"gdm"}, Conditional: map[string][]string{"gdm": {"gdm-l10n"}}},
	})
	require.Equal(t, 7, added)

	s.Add(nil, []*rpm.Group{
		{ID: "core", Mandatory: []string{"bash", "glibc"}, Optional: []string{"vim"}},
		{ID: "server", IsDefault: true},
		{ID: "desktop", Conditional: map[string][]string{"gdm": {"gdm-fonts"}}},
	})
	s.Freeze()
	return s, pkgs
}

func TestSack_ArchFilter(t *testing.T) {
	s, pkgs := testSack(t)

	assert.Equal(t, "x86_64", s.Arch())
	assert.Equal(t, 7, s.Len())
	assert.NotContains(t, s.Packages(), pkgs["glibc-ppc"])
	assert.Contains(t, s.Packages(), pkgs["glibc-32"])
}

func TestSack_Freeze(t *testing.T) {
	s, _ := testSack(t)
	assert.Panics(t, func() { s.Add(nil, nil) })
}

func TestSack_LookupByNameOrGlob(t *testing.T) {
	s, pkgs := testSack(t)

	tests := []struct {
		pattern string
		want    []*rpm.Package
	}{
		{"bash", []*rpm.Package{pkgs["bash"], pkgs["bash-old"], pkgs["bash-src"]}},
		{"bash-doc", []*rpm.Package{pkgs["bash-doc"]}},
		{"bash*", []*rpm.Package{pkgs["bash"], pkgs["bash-old"], pkgs["bash-doc"], pkgs["bash-src"]}},
		{"glibc.i686", []*rpm.Package{pkgs["glibc-32"]}},
		{"bash-5.0-3", []*rpm.Package{pkgs["bash-old"]}},
		{"nothing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, s.LookupByNameOrGlob(tt.pattern))
			// second lookup is answered from the cache
			assert.Equal(t, tt.want, s.LookupByNameOrGlob(tt.pattern))
		})
	}
}

func TestNewestByNameArch(t *testing.T) {
	s, pkgs := testSack(t)

	got := s.NewestByNameArch([]*rpm.Package{pkgs["bash-old"], pkgs["glibc"], pkgs["bash"], pkgs["glibc-32"]})
	assert.Equal(t, []*rpm.Package{pkgs["bash"], pkgs["glibc"], pkgs["glibc-32"]}, got)

	epoch := &rpm.Package{Name: "bash", Epoch: 1, Version: "4.0", Release: "1", Arch: "x86_64"}
	got = NewestByNameArch([]*rpm.Package{pkgs["bash"], epoch})
	assert.Equal(t, []*rpm.Package{epoch}, got)
}

func TestSack_WhatProvides(t *testing.T) {
	s, pkgs := testSack(t)

	tests := []struct {
		name string
		req  rpm.Requirement
		want []*rpm.Package
	}{
		{"self provide", rpm.Requirement{Name: "bash-doc"}, []*rpm.Package{pkgs["bash-doc"]}},
		{"versioned self provide", rpm.Requirement{Name: "bash", Flags: rpm.FlagGE, Version: "5.1"}, []*rpm.Package{pkgs["bash"]}},
		{"explicit provide", rpm.Requirement{Name: "libfoo.so.2"}, []*rpm.Package{pkgs["libfoo"]}},
		{"versioned provide too new", rpm.Requirement{Name: "libfoo.so.2", Flags: rpm.FlagGE, Version: "3"}, nil},
		{"file from provides", rpm.Requirement{Name: "/bin/sh"}, []*rpm.Package{pkgs["bash"]}},
		{"file from file list", rpm.Requirement{Name: "/bin/bash"}, []*rpm.Package{pkgs["bash"]}},
		{"nothing", rpm.Requirement{Name: "missing"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.WhatProvides(tt.req))
		})
	}
}

func TestSack_SourceRecord(t *testing.T) {
	s, pkgs := testSack(t)

	src, ok := s.SourceRecord("bash", "5.1", "1")
	require.True(t, ok)
	assert.Same(t, pkgs["bash-src"], src)

	_, ok = s.SourceRecord("bash", "5.0", "3")
	assert.False(t, ok)

	assert.Equal(t, []*rpm.Package{pkgs["bash"], pkgs["bash-doc"]}, s.Binaries(src))
	assert.Equal(t, []*rpm.Package{pkgs["glibc-32"]}, s.SearchNVRA("glibc", "2.31", "1", "i686"))
	assert.Empty(t, s.SearchNVRA("glibc", "2.31", "1", "ppc64"))
}

func TestSack_Groups(t *testing.T) {
	s, _ := testSack(t)

	core, ok := s.Group("core")
	require.True(t, ok)
	assert.Equal(t, []string{"bash", "glibc"}, core.Mandatory)
	assert.Equal(t, []string{"vim"}, core.Optional)

	desktop, ok := s.Group("desktop")
	require.True(t, ok)
	assert.True(t, desktop.IsDefault)
	assert.Equal(t, []string{"gdm-l10n", "gdm-fonts"}, desktop.Conditional["gdm"])

	_, ok = s.Group("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"desktop", "server"}, s.DefaultGroups())
}
