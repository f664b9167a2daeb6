package downloader

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"strings"

	"go.trai.ch/zerr"
)

// verify checks the file against a "<algo>:<hex>" checksum.
func verify(path, checksum string) error {
	if checksum == "" {
		return nil
	}
	algo, want, ok := strings.Cut(checksum, ":")
	if !ok {
		return zerr.With(zerr.New("malformed checksum"), "checksum", checksum)
	}

	var h hash.Hash
	switch algo {
	case "sha256":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	case "sha1", "sha":
		h = sha1.New()
	default:
		return zerr.With(zerr.New("unsupported checksum type"), "type", algo)
	}

	f, err := os.Open(path)
	if err != nil {
		return zerr.Wrap(err, "opening file")
	}
	defer f.Close()
	if _, err := io.Copy(h, f); err != nil {
		return zerr.Wrap(err, "hashing file")
	}

	if got := hex.EncodeToString(h.Sum(nil)); !strings.EqualFold(got, want) {
		return zerr.With(zerr.With(zerr.New("checksum mismatch"), "want", want), "got", got)
	}
	return nil
}
