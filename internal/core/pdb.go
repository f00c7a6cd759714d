package core

// Remark is one numbered free-text REMARK entry.
type Remark struct {
	Number int
	Text   string
}

// NCSTransform is one non-crystallographic symmetry matrix, tagged with its
// in-file serial and whether the file states its generated coordinates are
// already present ("given").
type NCSTransform struct {
	Serial int
	Given  bool
	Matrix TransformationMatrix
}

// DisulfideBond is one PDB SSBOND record: a cystine bridge between two
// residue positions, each identified the way every other cross-reference in
// this package is, by (chain, serial, insertion code).
type DisulfideBond struct {
	SerialNumber    int
	ChainID1        string
	SeqNum1         int64
	InsertionCode1  *byte
	ChainID2        string
	SeqNum2         int64
	InsertionCode2  *byte
}

// PDB is the root container: an optional identifier, free-text remarks, the
// crystallographic frame (unit cell / symmetry / scale / origx), any
// non-crystallographic symmetry operators, and an ordered sequence of
// Models.
type PDB struct {
	Identifier      *string
	Classification  string
	DepositionDate  string
	Remarks         []Remark

	UnitCell *UnitCell
	Symmetry *Symmetry

	// Scale is the orthogonal-to-fractional matrix (PDB SCALEn records).
	Scale *TransformationMatrix
	// OrigX is the coordinate-frame matrix (PDB ORIGXn records).
	OrigX *TransformationMatrix

	NCSTransforms []NCSTransform
	SSBonds       []DisulfideBond

	models []*Model
}

// NewPDB constructs an empty container.
func NewPDB() *PDB { return &PDB{} }

// ModelCount returns the number of direct models.
func (p *PDB) ModelCount() int { return len(p.models) }

// ChainCount returns the total chain count across all models.
func (p *PDB) ChainCount() int {
	n := 0
	for _, m := range p.models {
		n += m.ChainCount()
	}
	return n
}

// ResidueCount returns the total residue count across all models.
func (p *PDB) ResidueCount() int {
	n := 0
	for _, m := range p.models {
		n += m.ResidueCount()
	}
	return n
}

// ConformerCount returns the total conformer count across all models.
func (p *PDB) ConformerCount() int {
	n := 0
	for _, m := range p.models {
		n += m.ConformerCount()
	}
	return n
}

// AtomCount returns the total atom count across all models.
func (p *PDB) AtomCount() int {
	n := 0
	for _, m := range p.models {
		n += m.AtomCount()
	}
	return n
}

// Model returns the model at index i, or nil if out of range.
func (p *PDB) Model(i int) *Model {
	if i < 0 || i >= len(p.models) {
		return nil
	}
	return p.models[i]
}

// Models returns the direct models in insertion order. Must not be mutated
// by the caller.
func (p *PDB) Models() []*Model { return p.models }

// AddModel appends a model.
func (p *PDB) AddModel(m *Model) { p.models = append(p.models, m) }

// InsertModel inserts a model at index i.
func (p *PDB) InsertModel(i int, m *Model) {
	p.models = append(p.models, nil)
	copy(p.models[i+1:], p.models[i:])
	p.models[i] = m
}

// RemoveModel removes the model at index i. Panics if out of range.
func (p *PDB) RemoveModel(i int) {
	p.models = append(p.models[:i], p.models[i+1:]...)
}

// RemoveModelsWhere removes every model for which predicate returns true.
func (p *PDB) RemoveModelsWhere(predicate func(*Model) bool) {
	kept := p.models[:0]
	for _, m := range p.models {
		if !predicate(m) {
			kept = append(kept, m)
		}
	}
	p.models = kept
}

// RemoveModelBySerial removes the first model with the given serial number.
// Returns whether a removal happened.
func (p *PDB) RemoveModelBySerial(serial uint32) bool {
	for i, m := range p.models {
		if m.SerialNumber() == serial {
			p.RemoveModel(i)
			return true
		}
	}
	return false
}

// FindModelBySerial returns the first model with the given serial number, or
// nil. It creates none: use EnsureModel to locate-or-create.
func (p *PDB) FindModelBySerial(serial uint32) *Model {
	for _, m := range p.models {
		if m.SerialNumber() == serial {
			return m
		}
	}
	return nil
}

// EnsureModel locates the model with the given serial, creating and
// appending it at the end if absent.
func (p *PDB) EnsureModel(serial uint32) *Model {
	if m := p.FindModelBySerial(serial); m != nil {
		return m
	}
	m := NewModel(serial)
	p.AddModel(m)
	return m
}

// RemoveAtomsWhere cascades predicate down through every model.
func (p *PDB) RemoveAtomsWhere(predicate func(*Atom) bool) {
	for _, m := range p.models {
		m.RemoveAtomsWhere(predicate)
	}
}

// RemoveEmpty cascades emptiness-removal down through every model, then
// removes models left with zero chains.
func (p *PDB) RemoveEmpty() {
	for _, m := range p.models {
		m.RemoveEmpty()
	}
	p.RemoveModelsWhere(func(m *Model) bool { return m.ChainCount() == 0 })
}

// Sort orders direct models by serial number, ascending.
func (p *PDB) Sort() {
	stableSortBy(p.models, func(a, b *Model) bool { return a.SerialNumber() < b.SerialNumber() })
}

// FullSort cascades Sort down through every model's chains, residues,
// conformers, and atoms.
func (p *PDB) FullSort() {
	p.Sort()
	for _, m := range p.models {
		m.FullSort()
	}
}

// ApplyTransform applies an affine transform to every atom in the
// container.
func (p *PDB) ApplyTransform(t TransformationMatrix) {
	for _, m := range p.models {
		for _, c := range m.Chains() {
			for _, r := range c.Residues() {
				for _, conf := range r.Conformers() {
					for _, a := range conf.Atoms() {
						x, y, z := a.Pos()
						nx, ny, nz := t.Apply(x, y, z)
						_ = a.SetPos(nx, ny, nz)
					}
				}
			}
		}
	}
}

// AllAtoms returns a flattened slice of every atom in the container, in
// hierarchy traversal order.
func (p *PDB) AllAtoms() []*Atom {
	var out []*Atom
	for _, m := range p.models {
		for _, c := range m.Chains() {
			for _, r := range c.Residues() {
				for _, conf := range r.Conformers() {
					out = append(out, conf.Atoms()...)
				}
			}
		}
	}
	return out
}

// BinaryFindAtom performs the sorted-lookup algorithm described in §4.1:
// a binary search at each level using that level's serial envelope, then a
// delegation to the next level down. Requires a prior FullSort. Returns nil
// if no match exists at any level.
func (p *PDB) BinaryFindAtom(serial uint64, altLoc *byte) *Atom {
	for _, m := range p.models {
		lo, hi := 0, len(m.Chains())-1
		for lo <= hi {
			mid := (lo + hi) / 2
			chain := m.Chain(mid)
			min, max, ok := chain.SerialRange()
			if !ok {
				// empty chain shouldn't normally exist after FullSort but
				// guard against it rather than mis-binary-search.
				hi = mid - 1
				continue
			}
			switch {
			case serial < min:
				hi = mid - 1
			case serial > max:
				lo = mid + 1
			default:
				if a := binaryFindAtomInChain(chain, serial, altLoc); a != nil {
					return a
				}
				lo = hi + 1 // envelope matched but atom absent; stop here
			}
		}
	}
	return nil
}

func binaryFindAtomInChain(chain *Chain, serial uint64, altLoc *byte) *Atom {
	residues := chain.Residues()
	lo, hi := 0, len(residues)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		residue := residues[mid]
		min, max, ok := residueSerialRange(residue)
		if !ok {
			hi = mid - 1
			continue
		}
		switch {
		case serial < min:
			hi = mid - 1
		case serial > max:
			lo = mid + 1
		default:
			for _, conf := range residue.Conformers() {
				confAlt, confHas := conf.AltLoc()
				if altLoc != nil {
					if !confHas || confAlt != *altLoc {
						continue
					}
				} else if confHas {
					continue
				}
				if a := conf.FindAtomBySerial(serial); a != nil {
					return a
				}
			}
			return nil
		}
	}
	return nil
}

func residueSerialRange(r *Residue) (min, max uint64, ok bool) {
	first := true
	for _, conf := range r.Conformers() {
		lo, hi, has := conf.SerialRange()
		if !has {
			continue
		}
		if first {
			min, max = lo, hi
			first = false
			continue
		}
		if lo < min {
			min = lo
		}
		if hi > max {
			max = hi
		}
	}
	return min, max, !first
}
