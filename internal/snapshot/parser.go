package snapshot

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

var (
	sectionRe = regexp.MustCompile(`^(BINARIES|SOURCES|DEBUGINFO)$`)
	entryRe   = regexp.MustCompile(`^  (\S+)$`)
	fieldRe   = regexp.MustCompile(`^    (source|location|checksum|repo): (.+)$`)
)

// Parser reads compose lists.
type Parser struct {
	r io.Reader
}

// NewParser creates a new compose list parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse reads a compose list and verifies its digest.
func (p *Parser) Parse() (*Snapshot, error) {
	s := &Snapshot{}
	var section *[]Entry
	var current *Entry
	var digest string
	hasher := xxhash.New()

	flush := func() {
		if current != nil && section != nil {
			*section = append(*section, *current)
		}
		current = nil
	}

	lineNo := 0
	scanner := bufio.NewScanner(p.r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.HasPrefix(line, "#") {
			if d, ok := strings.CutPrefix(line, digestPrefix); ok {
				digest = strings.TrimSpace(d)
			}
			continue
		}
		hasher.WriteString(line + "\n")

		if line == "" {
			continue
		}

		if matches := sectionRe.FindStringSubmatch(line); matches != nil {
			flush()
			switch matches[1] {
			case SectionBinaries:
				section = &s.Binaries
			case SectionSources:
				section = &s.Sources
			case SectionDebuginfo:
				section = &s.Debuginfo
			}
			continue
		}

		if matches := entryRe.FindStringSubmatch(line); matches != nil {
			if section == nil {
				return nil, zerr.With(zerr.New("entry outside of a section"), "line", lineNo)
			}
			flush()
			current = &Entry{NEVRA: matches[1]}
			continue
		}

		if matches := fieldRe.FindStringSubmatch(line); matches != nil && current != nil {
			switch matches[1] {
			case "source":
				current.Source = matches[2]
			case "location":
				current.Location = matches[2]
			case "checksum":
				current.Checksum = matches[2]
			case "repo":
				current.Repo = matches[2]
			}
			continue
		}

		return nil, zerr.With(zerr.New("unexpected line in compose list"), "line", lineNo)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, "reading compose list")
	}

	if digest == "" {
		return nil, zerr.New("compose list has no digest")
	}
	if got := fmt.Sprintf("%016x", hasher.Sum64()); got != digest {
		return nil, zerr.With(zerr.With(zerr.New("compose list digest mismatch"), "want", digest), "got", got)
	}

	return s, nil
}
