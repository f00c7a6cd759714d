package core

import "fmt"

// Model is a single structural model, holding an ordered set of Chains.
type Model struct {
	serialNumber uint32
	chains       []*Chain
}

// NewModel constructs an empty Model with the given serial number.
func NewModel(serial uint32) *Model {
	return &Model{serialNumber: serial}
}

// SerialNumber returns the model's serial number.
func (m *Model) SerialNumber() uint32 { return m.serialNumber }

// SetSerialNumber sets the serial number.
func (m *Model) SetSerialNumber(n uint32) { m.serialNumber = n }

// ChainCount returns the number of direct chains.
func (m *Model) ChainCount() int { return len(m.chains) }

// ResidueCount returns the total residue count across all chains.
func (m *Model) ResidueCount() int {
	n := 0
	for _, c := range m.chains {
		n += c.ResidueCount()
	}
	return n
}

// ConformerCount returns the total conformer count across all chains.
func (m *Model) ConformerCount() int {
	n := 0
	for _, c := range m.chains {
		n += c.ConformerCount()
	}
	return n
}

// AtomCount returns the total atom count across all chains.
func (m *Model) AtomCount() int {
	n := 0
	for _, c := range m.chains {
		n += c.AtomCount()
	}
	return n
}

// Chain returns the chain at index i, or nil if out of range.
func (m *Model) Chain(i int) *Chain {
	if i < 0 || i >= len(m.chains) {
		return nil
	}
	return m.chains[i]
}

// Chains returns the direct chains in insertion order. Must not be mutated
// by the caller.
func (m *Model) Chains() []*Chain { return m.chains }

// AddChain appends a chain.
func (m *Model) AddChain(c *Chain) { m.chains = append(m.chains, c) }

// InsertChain inserts a chain at index i.
func (m *Model) InsertChain(i int, c *Chain) {
	m.chains = append(m.chains, nil)
	copy(m.chains[i+1:], m.chains[i:])
	m.chains[i] = c
}

// RemoveChain removes the chain at index i. Panics if out of range.
func (m *Model) RemoveChain(i int) {
	m.chains = append(m.chains[:i], m.chains[i+1:]...)
}

// RemoveChainsWhere removes every chain for which predicate returns true.
func (m *Model) RemoveChainsWhere(predicate func(*Chain) bool) {
	kept := m.chains[:0]
	for _, c := range m.chains {
		if !predicate(c) {
			kept = append(kept, c)
		}
	}
	m.chains = kept
}

// RemoveChainByID removes the first chain with the given identifier.
// Returns whether a removal happened.
func (m *Model) RemoveChainByID(id string) bool {
	for i, c := range m.chains {
		if c.ID() == id {
			m.RemoveChain(i)
			return true
		}
	}
	return false
}

// FindChainByID returns the first chain with the given identifier, or nil.
func (m *Model) FindChainByID(id string) *Chain {
	for _, c := range m.chains {
		if c.ID() == id {
			return c
		}
	}
	return nil
}

// RemoveAtomsWhere cascades predicate down to every atom in the model,
// removing matches, then cascades RemoveEmpty to clean up any conformer,
// residue, or chain left empty as a result.
func (m *Model) RemoveAtomsWhere(predicate func(*Atom) bool) {
	for _, c := range m.chains {
		for _, r := range c.Residues() {
			for _, conf := range r.Conformers() {
				conf.RemoveAtomsWhere(predicate)
			}
		}
	}
	m.RemoveEmpty()
}

// RemoveEmpty cascades: empty conformers removed from residues, empty
// residues from chains, empty chains from this model.
func (m *Model) RemoveEmpty() {
	for _, c := range m.chains {
		c.RemoveEmpty()
	}
	m.RemoveChainsWhere(func(c *Chain) bool { return c.ResidueCount() == 0 })
}

// Sort orders direct chains by identifier, ascending, lexicographically.
func (m *Model) Sort() {
	stableSortBy(m.chains, func(a, b *Chain) bool { return a.ID() < b.ID() })
}

// FullSort cascades Sort down through every chain's residues, conformers,
// and atoms.
func (m *Model) FullSort() {
	m.Sort()
	for _, c := range m.chains {
		c.FullSort()
	}
}

// Join appends other's chains to m.
func (m *Model) Join(other *Model) {
	m.chains = append(m.chains, other.chains...)
}

// AddAtomOptions carries the (chain, residue, conformer) identifiers AddAtom
// needs to locate or create the atom's ancestors.
type AddAtomOptions struct {
	ChainID         string
	ResidueSerial   int64
	InsertionCode   *byte
	ConformerName   string
	AltLoc          *byte
}

// AddAtom inserts atom into the model, locating or creating the chain,
// residue, and conformer identified by opts. It is the single entry point
// through which both the parser and direct API callers build up a Model.
func (m *Model) AddAtom(atom *Atom, opts AddAtomOptions) error {
	chain := m.FindChainByID(opts.ChainID)
	if chain == nil {
		var err error
		chain, err = NewChain(opts.ChainID)
		if err != nil {
			return fmt.Errorf("add atom: %w", err)
		}
		m.AddChain(chain)
	}

	residue := chain.FindResidueByID(opts.ResidueSerial, opts.InsertionCode)
	if residue == nil {
		var err error
		residue, err = NewResidue(opts.ResidueSerial, opts.InsertionCode)
		if err != nil {
			return fmt.Errorf("add atom: %w", err)
		}
		chain.AddResidue(residue)
	}

	conformer := residue.FindConformerByID(opts.ConformerName, opts.AltLoc)
	if conformer == nil {
		var err error
		conformer, err = NewConformer(opts.ConformerName, opts.AltLoc)
		if err != nil {
			return fmt.Errorf("add atom: %w", err)
		}
		residue.AddConformer(conformer)
	}

	conformer.AddAtom(atom)
	return nil
}

// Clone returns a deep copy of the model and its chains.
func (m *Model) Clone() *Model {
	clone := &Model{serialNumber: m.serialNumber}
	clone.chains = make([]*Chain, len(m.chains))
	for i, c := range m.chains {
		clone.chains[i] = c.Clone()
	}
	return clone
}
