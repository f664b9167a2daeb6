package metadata

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path"
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a metadata document.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// FormatOf guesses the format from a file name, ignoring a ".gz" suffix.
func FormatOf(name string) Format {
	name = strings.TrimSuffix(name, ".gz")
	if strings.HasSuffix(name, ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a metadata document.
func Decode(data []byte, format Format) (*Repodata, error) {
	var md Repodata
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &md); err != nil {
			return nil, zerr.Wrap(err, "parsing JSON metadata")
		}
	default:
		if err := yaml.Unmarshal(data, &md); err != nil {
			return nil, zerr.Wrap(err, "parsing YAML metadata")
		}
	}
	return &md, nil
}

// ReadFile reads a metadata document, decompressing it if the name ends in ".gz".
func ReadFile(p string) (*Repodata, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "opening metadata"), "path", p)
	}
	defer f.Close()

	data, err := readMaybeGzip(f, strings.HasSuffix(p, ".gz"))
	if err != nil {
		return nil, zerr.With(err, "path", p)
	}
	return Decode(data, FormatOf(p))
}

func readMaybeGzip(r io.Reader, gz bool) ([]byte, error) {
	if !gz {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, zerr.Wrap(err, "reading metadata")
		}
		return data, nil
	}

	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, zerr.Wrap(err, "decompressing metadata")
	}
	defer gzReader.Close()

	data, err := io.ReadAll(gzReader)
	if err != nil {
		return nil, zerr.Wrap(err, "reading metadata")
	}
	return data, nil
}

// bundleMembers are the documents picked out of a metadata bundle.
var bundleMembers = map[string]bool{
	"primary.yaml": true, "primary.yml": true, "primary.json": true,
	"comps.yaml": true, "comps.yml": true, "comps.json": true,
}

// ReadBundle reads a gzipped tarball holding repodata/primary.* and
// repodata/comps.* documents and merges them.
func ReadBundle(p string) (*Repodata, error) {
	file, err := os.Open(p)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "opening bundle"), "path", p)
	}
	defer file.Close()

	md, err := decodeBundle(file)
	if err != nil {
		return nil, zerr.With(err, "path", p)
	}
	return md, nil
}

func decodeBundle(r io.Reader) (*Repodata, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, zerr.Wrap(err, "decompressing bundle")
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	merged := &Repodata{}
	found := 0

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, zerr.Wrap(err, "reading bundle")
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		dir, name := path.Split(header.Name)
		if path.Base(strings.TrimSuffix(dir, "/")) != "repodata" {
			continue
		}
		if !bundleMembers[strings.TrimSuffix(name, ".gz")] {
			continue
		}

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, tarReader); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "reading bundle member"), "member", header.Name)
		}
		data, err := readMaybeGzip(&buf, strings.HasSuffix(name, ".gz"))
		if err != nil {
			return nil, zerr.With(err, "member", header.Name)
		}
		md, err := Decode(data, FormatOf(name))
		if err != nil {
			return nil, zerr.With(err, "member", header.Name)
		}
		merged.Merge(md)
		found++
	}

	if found == 0 {
		return nil, zerr.New("no repodata documents found in bundle")
	}
	return merged, nil
}
