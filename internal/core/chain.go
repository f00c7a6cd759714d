package core

import "fmt"

// Chain is identified by an identifier of one or more printable characters,
// stored uppercase.
type Chain struct {
	id        string
	dbRef     *DatabaseReference
	residues  []*Residue
}

// NewChain validates the identifier (printable chars, stored uppercase, no
// fixed max at this level — PDB-format width limits are enforced by
// internal/validate, not by the core invariant) and constructs an empty
// Chain. An empty identifier is accepted: it is the on-disk convention for
// an unlabelled chain (a blank PDB chain-ID column).
func NewChain(id string) (*Chain, error) {
	norm, err := normalizeShortIdentifier(id, maxInt(len(id), 1), true)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	return &Chain{id: norm}, nil
}

// ID returns the chain's (uppercase) identifier.
func (c *Chain) ID() string { return c.id }

// SetID validates and normalizes a new identifier.
func (c *Chain) SetID(id string) error {
	norm, err := normalizeShortIdentifier(id, maxInt(len(id), 1), true)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	c.id = norm
	return nil
}

// DatabaseReference returns the chain's database cross-reference, if any.
func (c *Chain) DatabaseReference() *DatabaseReference { return c.dbRef }

// SetDatabaseReference attaches (or replaces) the database cross-reference.
func (c *Chain) SetDatabaseReference(ref *DatabaseReference) { c.dbRef = ref }

// ResidueCount returns the number of direct residues.
func (c *Chain) ResidueCount() int { return len(c.residues) }

// ConformerCount returns the total number of conformers across all
// residues.
func (c *Chain) ConformerCount() int {
	n := 0
	for _, r := range c.residues {
		n += r.ConformerCount()
	}
	return n
}

// AtomCount returns the total number of atoms across all residues.
func (c *Chain) AtomCount() int {
	n := 0
	for _, r := range c.residues {
		n += r.AtomCount()
	}
	return n
}

// Residue returns the residue at index i, or nil if out of range.
func (c *Chain) Residue(i int) *Residue {
	if i < 0 || i >= len(c.residues) {
		return nil
	}
	return c.residues[i]
}

// Residues returns the direct residues in insertion order. Must not be
// mutated by the caller.
func (c *Chain) Residues() []*Residue { return c.residues }

// AddResidue appends a residue.
func (c *Chain) AddResidue(r *Residue) { c.residues = append(c.residues, r) }

// InsertResidue inserts a residue at index i.
func (c *Chain) InsertResidue(i int, r *Residue) {
	c.residues = append(c.residues, nil)
	copy(c.residues[i+1:], c.residues[i:])
	c.residues[i] = r
}

// RemoveResidue removes the residue at index i. Panics if out of range.
func (c *Chain) RemoveResidue(i int) {
	c.residues = append(c.residues[:i], c.residues[i+1:]...)
}

// RemoveResiduesWhere removes every residue for which predicate returns
// true.
func (c *Chain) RemoveResiduesWhere(predicate func(*Residue) bool) {
	kept := c.residues[:0]
	for _, r := range c.residues {
		if !predicate(r) {
			kept = append(kept, r)
		}
	}
	c.residues = kept
}

// RemoveResidueByID removes the first residue matching (serial, insertion).
// Returns whether a removal happened.
func (c *Chain) RemoveResidueByID(serial int64, insertion *byte) bool {
	for i, r := range c.residues {
		if residueMatches(r, serial, insertion) {
			c.RemoveResidue(i)
			return true
		}
	}
	return false
}

// FindResidueByID returns the first residue matching (serial, insertion),
// or nil.
func (c *Chain) FindResidueByID(serial int64, insertion *byte) *Residue {
	for _, r := range c.residues {
		if residueMatches(r, serial, insertion) {
			return r
		}
	}
	return nil
}

func residueMatches(r *Residue, serial int64, insertion *byte) bool {
	if r.SerialNumber() != serial {
		return false
	}
	rIns, rHas := r.InsertionCode()
	if insertion == nil {
		return !rHas
	}
	return rHas && rIns == *insertion
}

// RemoveEmpty cascades: removes empty conformers, then residues left with
// zero conformers.
func (c *Chain) RemoveEmpty() {
	for _, r := range c.residues {
		r.RemoveEmpty()
	}
	c.RemoveResiduesWhere(func(r *Residue) bool { return r.ConformerCount() == 0 })
}

// Sort orders direct residues by (serial, insertion), ascending.
func (c *Chain) Sort() {
	stableSortBy(c.residues, func(a, b *Residue) bool {
		if a.SerialNumber() != b.SerialNumber() {
			return a.SerialNumber() < b.SerialNumber()
		}
		aIns, aHas := a.InsertionCode()
		bIns, bHas := b.InsertionCode()
		if aHas != bHas {
			return !aHas
		}
		if !aHas {
			return false
		}
		return aIns < bIns
	})
}

// FullSort cascades Sort down through every residue's conformers and atoms.
func (c *Chain) FullSort() {
	c.Sort()
	for _, r := range c.residues {
		r.FullSort()
	}
}

// Join appends other's residues to c.
func (c *Chain) Join(other *Chain) {
	c.residues = append(c.residues, other.residues...)
}

// SerialRange returns the [min,max] atom-serial envelope across all
// residues (assumes FullSort has been called and the invariant that
// per-chain atom-serial ranges are monotone holds).
func (c *Chain) SerialRange() (min, max uint64, ok bool) {
	first := true
	for _, r := range c.residues {
		for _, conf := range r.Conformers() {
			if lo, hi, has := conf.SerialRange(); has {
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
		}
	}
	return min, max, !first
}

// Clone returns a deep copy of the chain and its residues.
func (c *Chain) Clone() *Chain {
	clone := &Chain{id: c.id}
	if c.dbRef != nil {
		ref := *c.dbRef
		clone.dbRef = &ref
	}
	clone.residues = make([]*Residue, len(c.residues))
	for i, r := range c.residues {
		clone.residues[i] = r.Clone()
	}
	return clone
}
