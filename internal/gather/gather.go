// Package gather computes the package set of a distribution compose: the
// dependency closure of a manifest over a package universe, the source
// packages of that closure, and optionally its build dependencies, sibling
// binaries and debuginfo packages.
package gather

import (
	"io"
	"log/slog"

	"github.com/frederic-klein/gather/internal/manifest"
	"github.com/frederic-klein/gather/internal/rpm"
)

// Options selects the optional passes of a run.
type Options struct {
	SelfHosting bool // also resolve build requirements of every source
	FullTree    bool // also add every sibling binary of every source
	Debuginfo   bool // collect debuginfo packages for the result
}

// Result is the outcome of a gather run.
type Result struct {
	Binaries       []*rpm.Package
	Sources        []*rpm.Package
	Debuginfo      []*rpm.Package
	Warnings       []error
	BinaryToSource map[rpm.Ident]*rpm.Package
}

// Gatherer resolves manifests against one universe.
type Gatherer struct {
	universe Universe
	opts     Options
	log      *slog.Logger
}

// New creates a gatherer. A nil logger discards all output.
func New(u Universe, opts Options, logger *slog.Logger) *Gatherer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gatherer{
		universe: u,
		opts:     opts,
		log:      logger,
	}
}

// Gather runs a full compose resolution for m.
func (g *Gatherer) Gather(m *manifest.Manifest) (*Result, error) {
	st := NewState()

	candidates := g.Expand(st, m)
	initial, err := g.Match(candidates, m.Excludes)
	if err != nil {
		return nil, err
	}
	g.Seed(st, initial)
	g.Exclude(st, m.Excludes)

	g.Resolve(st, st.Binaries()...)
	g.log.Info("Finished gathering package objects", "binaries", st.Len())

	if err := g.MapSources(st); err != nil {
		return nil, err
	}
	if g.opts.SelfHosting {
		if err := g.SelfHost(st); err != nil {
			return nil, err
		}
	}
	if g.opts.FullTree {
		if err := g.Complete(st); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Binaries:       st.Binaries(),
		Sources:        st.Sources(),
		Warnings:       st.Warnings(),
		BinaryToSource: st.BinaryToSource(),
	}
	if g.opts.Debuginfo {
		res.Debuginfo = g.MatchDebuginfo(res.Binaries)
	}
	return res, nil
}

// Seed records the initial package set without walking its requirements.
func (g *Gatherer) Seed(st *State, pkgs []*rpm.Package) {
	for _, p := range pkgs {
		if st.add(p) {
			g.log.Debug("Found package", "package", p.NEVRA())
		}
	}
}
