package rpm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequirement(t *testing.T) {
	r, err := ParseRequirement("glibc >= 2.31")
	require.NoError(t, err)
	assert.Equal(t, Requirement{Name: "glibc", Flags: FlagGE, Version: "2.31"}, r)

	r, err = ParseRequirement("libc.so.6()(64bit)")
	require.NoError(t, err)
	assert.Equal(t, Requirement{Name: "libc.so.6()(64bit)"}, r)

	r, err = ParseRequirement("kernel EQ 1:5.10-1")
	require.NoError(t, err)
	assert.Equal(t, FlagEQ, r.Flags)

	_, err = ParseRequirement("glibc ~> 2")
	assert.Error(t, err)

	_, err = ParseRequirement("a b")
	assert.Error(t, err)
}

func TestRequirement_SatisfiedBy(t *testing.T) {
	tests := []struct {
		req  string
		prov string
		ok   bool
	}{
		{"glibc", "glibc = 2.31-1", true},
		{"glibc >= 2.31", "glibc = 2.31-1", true},
		{"glibc >= 2.32", "glibc = 2.31-1", false},
		{"glibc < 2.32", "glibc = 2.31-1", true},
		{"glibc > 2.31", "glibc = 2.31-1", false},
		{"glibc = 2.31", "glibc = 2.31-1", true}, // release omitted matches any
		{"glibc = 2.31-2", "glibc = 2.31-1", false},
		{"glibc >= 2.0", "glibc", true},
		{"glibc >= 2.0", "glibc >= 3.0", true},
		{"glibc <= 1.0", "glibc >= 3.0", false},
		{"glibc", "musl", false},
	}

	for _, tt := range tests {
		t.Run(tt.req+"_"+tt.prov, func(t *testing.T) {
			req, err := ParseRequirement(tt.req)
			require.NoError(t, err)
			prov, err := ParseRequirement(tt.prov)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, req.SatisfiedBy(prov))
		})
	}
}

func TestRequirement_IsVirtual(t *testing.T) {
	virtual := []string{"rpmlib(CompressedFileNames)", "config(bash)"}
	for _, name := range virtual {
		if !(Requirement{Name: name}).IsVirtual() {
			t.Errorf("IsVirtual(%q) = false, want true", name)
		}
	}

	regular := []string{"glibc", "/bin/sh", "libc.so.6()(64bit)"}
	for _, name := range regular {
		if (Requirement{Name: name}).IsVirtual() {
			t.Errorf("IsVirtual(%q) = true, want false", name)
		}
	}
}

func TestRequirement_Key(t *testing.T) {
	a := Requirement{Name: "glibc", Flags: FlagGE, Version: "2.31"}
	b := Requirement{Name: "glibc", Flags: FlagGE, Version: "2.31"}
	c := Requirement{Name: "glibc", Flags: FlagGT, Version: "2.31"}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, "glibc >= 2.31", a.String())
}
