package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Parser parses the repo lines and %packages section of a kickstart file.
type Parser struct{}

// NewParser creates a new kickstart parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	repoRe     = regexp.MustCompile(`^\s*repo\s+(.*)$`)
	packagesRe = regexp.MustCompile(`^\s*%packages\b(.*)$`)
	endRe      = regexp.MustCompile(`^\s*%end\b`)
	sectionRe  = regexp.MustCompile(`^\s*%\w+`)
	optionRe   = regexp.MustCompile(`--([\w-]+)(?:=("[^"]*"|\S+))?`)
)

// Parse parses a kickstart file.
func (p *Parser) Parse(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening kickstart: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file)
}

// ParseReader parses kickstart content.
func (p *Parser) ParseReader(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	inPackages := false
	lineNo := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if inPackages {
			if endRe.MatchString(line) {
				inPackages = false
				continue
			}
			if sectionRe.MatchString(line) {
				// a new section implicitly ends %packages
				inPackages = false
			} else {
				if err := parsePackageLine(m, trimmed); err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				continue
			}
		}

		if matches := packagesRe.FindStringSubmatch(line); matches != nil {
			opts := parseOptions(matches[1])
			_, m.Default = opts["default"]
			_, m.NoBase = opts["nobase"]
			inPackages = true
			continue
		}

		if matches := repoRe.FindStringSubmatch(line); matches != nil {
			repo, err := parseRepo(matches[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Repos = append(m.Repos, repo)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading kickstart: %w", err)
	}

	return m, nil
}

func parsePackageLine(m *Manifest, line string) error {
	if i := strings.Index(line, "#"); i != -1 {
		line = strings.TrimSpace(line[:i])
	}

	switch {
	case strings.HasPrefix(line, "@"):
		fields := strings.Fields(line[1:])
		if len(fields) == 0 {
			return fmt.Errorf("empty group reference")
		}
		include := IncludeDefault
		opts := parseOptions(strings.Join(fields[1:], " "))
		if _, ok := opts["nodefaults"]; ok {
			include = IncludeMandatory
		}
		if _, ok := opts["optional"]; ok {
			include = IncludeOptional
		}
		m.AddGroup(fields[0], include)
	case strings.HasPrefix(line, "-"):
		name := strings.TrimSpace(line[1:])
		if name == "" {
			return fmt.Errorf("empty exclusion")
		}
		m.Excludes = append(m.Excludes, name)
	default:
		m.Packages = append(m.Packages, line)
	}
	return nil
}

func parseRepo(args string) (Repo, error) {
	opts := parseOptions(args)

	repo := Repo{
		Name:       opts["name"],
		BaseURL:    opts["baseurl"],
		Mirrorlist: opts["mirrorlist"],
	}
	if repo.Name == "" {
		return Repo{}, fmt.Errorf("repo without --name")
	}
	if repo.BaseURL == "" && repo.Mirrorlist == "" {
		return Repo{}, fmt.Errorf("repo %s needs --baseurl or --mirrorlist", repo.Name)
	}
	if cost, ok := opts["cost"]; ok {
		n, err := strconv.Atoi(cost)
		if err != nil {
			return Repo{}, fmt.Errorf("repo %s: invalid cost %q", repo.Name, cost)
		}
		repo.Cost = n
	}
	repo.ExcludePkgs = splitList(opts["excludepkgs"])
	repo.IncludePkgs = splitList(opts["includepkgs"])
	return repo, nil
}

func parseOptions(s string) map[string]string {
	opts := make(map[string]string)
	for _, m := range optionRe.FindAllStringSubmatch(s, -1) {
		opts[m[1]] = strings.Trim(m[2], `"`)
	}
	return opts
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
