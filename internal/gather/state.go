package gather

import (
	"maps"
	"slices"

	"github.com/frederic-klein/gather/internal/rpm"
)

// State is the mutable state of one compose resolution. It is not safe for
// concurrent use and must not be shared between runs.
type State struct {
	resolved   map[rpm.Ident]*rpm.Package
	order      []*rpm.Package
	byNameArch map[string]*rpm.Package
	processed  map[rpm.Ident]bool // requirements already walked

	sources   []*rpm.Package
	sourceSet map[rpm.Ident]bool

	satisfied map[string]bool // requirement keys already looked up

	binToSrc map[rpm.Ident]*rpm.Package
	srcToBin map[rpm.Ident][]*rpm.Package

	hosted    map[rpm.Ident]bool // sources whose build deps were resolved
	completed map[rpm.Ident]bool // sources whose siblings were added

	conditionals map[rpm.Ident][]*rpm.Package
	excludes     []string

	warnings []error
}

// NewState creates an empty resolution state.
func NewState() *State {
	return &State{
		resolved:     make(map[rpm.Ident]*rpm.Package),
		byNameArch:   make(map[string]*rpm.Package),
		processed:    make(map[rpm.Ident]bool),
		sourceSet:    make(map[rpm.Ident]bool),
		satisfied:    make(map[string]bool),
		binToSrc:     make(map[rpm.Ident]*rpm.Package),
		srcToBin:     make(map[rpm.Ident][]*rpm.Package),
		hosted:       make(map[rpm.Ident]bool),
		completed:    make(map[rpm.Ident]bool),
		conditionals: make(map[rpm.Ident][]*rpm.Package),
	}
}

// Len returns the number of resolved binaries.
func (s *State) Len() int {
	return len(s.order)
}

// Has reports whether the identity is resolved.
func (s *State) Has(id rpm.Ident) bool {
	_, ok := s.resolved[id]
	return ok
}

// Binaries returns the resolved binaries in insertion order.
func (s *State) Binaries() []*rpm.Package {
	return slices.Clone(s.order)
}

// Sources returns the resolved source packages in discovery order.
func (s *State) Sources() []*rpm.Package {
	return slices.Clone(s.sources)
}

// SourceOf returns the source package a resolved binary was built from.
func (s *State) SourceOf(id rpm.Ident) (*rpm.Package, bool) {
	src, ok := s.binToSrc[id]
	return src, ok
}

// BinariesOf returns the resolved binaries built from a source package.
func (s *State) BinariesOf(src rpm.Ident) []*rpm.Package {
	return slices.Clone(s.srcToBin[src])
}

// BinaryToSource returns a copy of the binary to source mapping.
func (s *State) BinaryToSource() map[rpm.Ident]*rpm.Package {
	return maps.Clone(s.binToSrc)
}

// SourceToBinaries returns a copy of the source to binaries mapping.
func (s *State) SourceToBinaries() map[rpm.Ident][]*rpm.Package {
	out := make(map[rpm.Ident][]*rpm.Package, len(s.srcToBin))
	for id, bins := range s.srcToBin {
		out[id] = slices.Clone(bins)
	}
	return out
}

// Warnings returns the non-fatal problems met so far, in discovery order.
func (s *State) Warnings() []error {
	return slices.Clone(s.warnings)
}

// RegisterConditional arranges for adds to be resolved whenever trigger is.
func (s *State) RegisterConditional(trigger *rpm.Package, adds []*rpm.Package) {
	id := trigger.Ident()
	for _, p := range adds {
		if !slices.Contains(s.conditionals[id], p) {
			s.conditionals[id] = append(s.conditionals[id], p)
		}
	}
}

// Conditional returns the packages registered against trigger.
func (s *State) Conditional(trigger rpm.Ident) []*rpm.Package {
	return slices.Clone(s.conditionals[trigger])
}

func (s *State) warn(err error) {
	s.warnings = append(s.warnings, err)
}

func (s *State) isExcluded(p *rpm.Package) bool {
	for _, pattern := range s.excludes {
		if rpm.Match(p, pattern) {
			return true
		}
	}
	return false
}

// add records p as resolved. Source records, excluded records and a
// second version of an already resolved name.arch are refused.
func (s *State) add(p *rpm.Package) bool {
	if p.IsSource() || s.isExcluded(p) {
		return false
	}
	id := p.Ident()
	if _, ok := s.resolved[id]; ok {
		return false
	}
	if _, ok := s.byNameArch[p.NameArch()]; ok {
		return false
	}
	s.resolved[id] = p
	s.byNameArch[p.NameArch()] = p
	s.order = append(s.order, p)
	return true
}

func (s *State) remove(p *rpm.Package) {
	id := p.Ident()
	if _, ok := s.resolved[id]; !ok {
		return
	}
	delete(s.resolved, id)
	delete(s.byNameArch, p.NameArch())
	delete(s.processed, id)
	s.order = slices.DeleteFunc(s.order, func(q *rpm.Package) bool { return q == p })

	src, ok := s.binToSrc[id]
	if !ok {
		return
	}
	delete(s.binToSrc, id)
	srcID := src.Ident()
	bins := slices.DeleteFunc(s.srcToBin[srcID], func(q *rpm.Package) bool { return q == p })
	if len(bins) > 0 {
		s.srcToBin[srcID] = bins
		return
	}
	delete(s.srcToBin, srcID)
	delete(s.sourceSet, srcID)
	s.sources = slices.DeleteFunc(s.sources, func(q *rpm.Package) bool { return q == src })
}
