package gather

import (
	"github.com/frederic-klein/gather/internal/rpm"
)

// MapSources maps each binary to its source record. Every binary must have
// one; the first missing source aborts the mapping.
func MapSources(u Universe, binaries []*rpm.Package) (map[rpm.Ident]*rpm.Package, map[rpm.Ident][]*rpm.Package, error) {
	binToSrc := make(map[rpm.Ident]*rpm.Package, len(binaries))
	srcToBin := make(map[rpm.Ident][]*rpm.Package)
	for _, p := range binaries {
		src, err := sourceOf(u, p)
		if err != nil {
			return nil, nil, err
		}
		binToSrc[p.Ident()] = src
		srcToBin[src.Ident()] = append(srcToBin[src.Ident()], p)
	}
	return binToSrc, srcToBin, nil
}

// MapSources records the source of every resolved binary that does not
// have one yet and adds newly seen sources to the resolved sources.
func (g *Gatherer) MapSources(st *State) error {
	for _, p := range st.order {
		id := p.Ident()
		if _, ok := st.binToSrc[id]; ok {
			continue
		}
		src, err := sourceOf(g.universe, p)
		if err != nil {
			return err
		}
		st.binToSrc[id] = src
		srcID := src.Ident()
		st.srcToBin[srcID] = append(st.srcToBin[srcID], p)
		if !st.sourceSet[srcID] {
			st.sourceSet[srcID] = true
			st.sources = append(st.sources, src)
			g.log.Info("Adding source package", "package", src.NEVRA())
		}
	}
	return nil
}

func sourceOf(u Universe, p *rpm.Package) (*rpm.Package, error) {
	name, version, release, err := rpm.ParseSourceRPM(p.SourceRPM)
	if err != nil {
		return nil, &SourceNotFoundError{Package: p.Ident(), SourceRPM: p.SourceRPM}
	}
	src, ok := u.SourceRecord(name, version, release)
	if !ok {
		return nil, &SourceNotFoundError{Package: p.Ident(), SourceRPM: p.SourceRPM}
	}
	return src, nil
}
