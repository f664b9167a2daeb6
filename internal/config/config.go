// Package config loads the compose configuration.
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment variables that override file values.
const EnvPrefix = "GATHER_"

// Config is the compose configuration.
type Config struct {
	Name     string        `yaml:"name"`
	Version  string        `yaml:"version"`
	Flavor   string        `yaml:"flavor"`
	Arch     string        `yaml:"arch"`
	DestDir  string        `yaml:"destdir"`
	CacheDir string        `yaml:"cachedir"`
	Workers  int           `yaml:"workers"`
	CacheTTL time.Duration `yaml:"cache_ttl"`

	SelfHosting bool `yaml:"selfhosting"`
	FullTree    bool `yaml:"fulltree"`
	Debuginfo   bool `yaml:"debuginfo"`
	Sources     bool `yaml:"sources"` // download source packages

	Repos []Repo `yaml:"repos"`
}

// Repo is a repository declared in the configuration file.
type Repo struct {
	Name        string   `yaml:"name"`
	BaseURL     string   `yaml:"baseurl"`
	Mirrorlist  string   `yaml:"mirrorlist"`
	ExcludePkgs []string `yaml:"exclude"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Name:     "Fedora",
		Version:  "development",
		Arch:     HostArch(),
		DestDir:  ".",
		CacheDir: "/var/cache/gather",
		Workers:  4,
		CacheTTL: time.Hour,
		Sources:  true,
	}
}

// Load reads the configuration file at path, if any, over the defaults and
// applies GATHER_* environment overrides.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "reading config"), "path", path)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "parsing config"), "path", path)
		}
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"NAME":     &c.Name,
		"VERSION":  &c.Version,
		"FLAVOR":   &c.Flavor,
		"ARCH":     &c.Arch,
		"DESTDIR":  &c.DestDir,
		"CACHEDIR": &c.CacheDir,
	}
	for key, field := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*field = v
		}
	}

	bools := map[string]*bool{
		"SELFHOSTING": &c.SelfHosting,
		"FULLTREE":    &c.FullTree,
		"DEBUGINFO":   &c.Debuginfo,
		"SOURCES":     &c.Sources,
	}
	for key, field := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid boolean"), "variable", EnvPrefix+key)
		}
		*field = b
	}

	if v, ok := lookup(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid worker count"), "variable", EnvPrefix+"WORKERS")
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvPrefix + "CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "invalid cache ttl"), "variable", EnvPrefix+"CACHE_TTL")
		}
		c.CacheTTL = d
	}
	return nil
}

// Validate checks that the configuration can drive a compose.
func (c *Config) Validate() error {
	if c.Arch == "" {
		return zerr.New("arch must be set")
	}
	if c.Workers < 1 {
		return zerr.With(zerr.New("workers must be at least 1"), "workers", c.Workers)
	}
	for i, r := range c.Repos {
		if r.Name == "" {
			return zerr.With(zerr.New("repo without name"), "index", i)
		}
		if r.BaseURL == "" && r.Mirrorlist == "" {
			return zerr.With(zerr.New("repo needs baseurl or mirrorlist"), "repo", r.Name)
		}
	}
	return nil
}

// HostArch returns the package architecture of the running machine.
func HostArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x86_64"
	case "386":
		return "i686"
	case "arm64":
		return "aarch64"
	default:
		return runtime.GOARCH
	}
}
