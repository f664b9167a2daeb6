package metadata

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/frederic-klein/gather/internal/rpm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const primaryYAML = `
packages:
  - name: bash
    version: 5.10
    release: 1
    arch: x86_64
    sourcerpm: bash-5.10-1.src.rpm
    location: Packages/b/bash-5.10-1.x86_64.rpm
    requires:
      - glibc >= 2.31
      - rpmlib(CompressedFileNames) <= 3.0.4-1
      - name: /bin/sh
    provides:
      - bash = 5.10-1
  - name: bash
    epoch: 1
    version: "5.10"
    release: "1"
    arch: src
groups:
  - id: core
    default: true
    mandatory: [bash]
    conditional:
      bash: [bash-completion]
`

func TestDecode_YAML(t *testing.T) {
	md, err := Decode([]byte(primaryYAML), FormatYAML)
	require.NoError(t, err)
	require.Len(t, md.Packages, 2)

	pkgs, err := md.Records("base")
	require.NoError(t, err)

	bash := pkgs[0]
	assert.Equal(t, "5.10", bash.Version)
	assert.Equal(t, "1", bash.Release)
	assert.Equal(t, "base", bash.RepoID)
	assert.Equal(t, []rpm.Requirement{
		{Name: "glibc", Flags: rpm.FlagGE, Version: "2.31"},
		{Name: "rpmlib(CompressedFileNames)", Flags: rpm.FlagLE, Version: "3.0.4-1"},
		{Name: "/bin/sh"},
	}, bash.Requires)
	assert.Equal(t, 1, pkgs[1].Epoch)
	assert.True(t, pkgs[1].IsSource())

	groups := md.GroupDefinitions()
	require.Len(t, groups, 1)
	assert.True(t, groups[0].IsDefault)
	assert.Equal(t, []string{"bash-completion"}, groups[0].Conditional["bash"])
}

func TestDecode_JSON(t *testing.T) {
	doc := `{"packages":[{"name":"glibc","version":2.31,"release":"1","arch":"x86_64",
	  "provides":[{"name":"glibc","flags":"EQ","version":"2.31-1"}]}]}`

	md, err := Decode([]byte(doc), FormatJSON)
	require.NoError(t, err)

	pkgs, err := md.Records("base")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "2.31", pkgs[0].Version)
	assert.Equal(t, rpm.FlagEQ, pkgs[0].Provides[0].Flags)
}

func TestDecode_InvalidDependency(t *testing.T) {
	doc := `
packages:
  - name: bash
    version: "1"
    arch: x86_64
    requires: ["glibc ~> 2"]
`
	_, err := Decode([]byte(doc), FormatYAML)
	assert.Error(t, err)
}

func TestRecords_MissingFields(t *testing.T) {
	md := &Repodata{Packages: []PackageEntry{{Name: "bash"}}}
	_, err := md.Records("base")
	assert.Error(t, err)
}

func TestReadFile_Gzip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "primary.yaml.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(primaryYAML))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))

	md, err := ReadFile(p)
	require.NoError(t, err)
	assert.Len(t, md.Packages, 2)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func writeBundle(t *testing.T, files map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	p := filepath.Join(t.TempDir(), "repo.tar.gz")
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0644))
	return p
}

func TestReadBundle(t *testing.T) {
	p := writeBundle(t, map[string]string{
		"base/repodata/primary.yaml": "packages:\n  - {name: bash, version: \"5.1\", release: \"1\", arch: x86_64}\n",
		"base/repodata/comps.json":   `{"groups":[{"id":"core","mandatory":["bash"]}]}`,
		"base/README":                "ignored",
	})

	md, err := ReadBundle(p)
	require.NoError(t, err)
	assert.Len(t, md.Packages, 1)
	assert.Len(t, md.Groups, 1)
}

func TestReadBundle_Empty(t *testing.T) {
	p := writeBundle(t, map[string]string{"base/README": "nothing here"})

	_, err := ReadBundle(p)
	assert.Error(t, err)
}
