package snapshot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

const header = "# gather compose list: version 1.0\n"

const digestPrefix = "# digest: "

// Emitter writes compose lists.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new compose list emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes the snapshot. Entries are sorted by NEVRA within each
// section, and the body is covered by an xxhash digest line.
func (e *Emitter) Emit(s *Snapshot) error {
	var body bytes.Buffer
	emitSection(&body, SectionBinaries, s.Binaries)
	emitSection(&body, SectionSources, s.Sources)
	emitSection(&body, SectionDebuginfo, s.Debuginfo)

	if _, err := fmt.Fprint(e.w, header); err != nil {
		return zerr.Wrap(err, "writing compose list")
	}
	if _, err := fmt.Fprintf(e.w, "%s%016x\n", digestPrefix, xxhash.Sum64(body.Bytes())); err != nil {
		return zerr.Wrap(err, "writing compose list")
	}
	if _, err := body.WriteTo(e.w); err != nil {
		return zerr.Wrap(err, "writing compose list")
	}
	return nil
}

func emitSection(buf *bytes.Buffer, name string, entries []Entry) {
	buf.WriteString(name + "\n")
	for _, entry := range sorted(entries) {
		fmt.Fprintf(buf, "  %s\n", entry.NEVRA)
		if entry.Source != "" {
			fmt.Fprintf(buf, "    source: %s\n", entry.Source)
		}
		if entry.Location != "" {
			fmt.Fprintf(buf, "    location: %s\n", entry.Location)
		}
		if entry.Checksum != "" {
			fmt.Fprintf(buf, "    checksum: %s\n", entry.Checksum)
		}
		if entry.Repo != "" {
			fmt.Fprintf(buf, "    repo: %s\n", entry.Repo)
		}
	}
}
