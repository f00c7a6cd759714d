package core

import "fmt"

// Residue is a chain position identified by (SerialNumber, InsertionCode).
type Residue struct {
	serialNumber int64
	insertion    *byte
	conformers   []*Conformer
}

// NewResidue validates the optional insertion code and constructs an empty
// Residue. SerialNumber may be negative in some files.
func NewResidue(serial int64, insertion *byte) (*Residue, error) {
	if err := validateOptionalChar(insertion); err != nil {
		return nil, fmt.Errorf("insertion code: %w", err)
	}
	return &Residue{serialNumber: serial, insertion: clonePtr(insertion)}, nil
}

// SerialNumber returns the residue's serial number.
func (r *Residue) SerialNumber() int64 { return r.serialNumber }

// SetSerialNumber sets the serial number.
func (r *Residue) SetSerialNumber(n int64) { r.serialNumber = n }

// InsertionCode returns the insertion code, or (0, false) if unset.
func (r *Residue) InsertionCode() (byte, bool) {
	if r.insertion == nil {
		return 0, false
	}
	return *r.insertion, true
}

// SetInsertionCode sets or clears the insertion code.
func (r *Residue) SetInsertionCode(c *byte) error {
	if err := validateOptionalChar(c); err != nil {
		return fmt.Errorf("insertion code: %w", err)
	}
	r.insertion = clonePtr(c)
	return nil
}

// ID returns the residue's identity tuple (serial, insertion code).
func (r *Residue) ID() (int64, *byte) { return r.serialNumber, r.insertion }

// ConformerCount returns the number of direct conformers.
func (r *Residue) ConformerCount() int { return len(r.conformers) }

// AtomCount returns the total number of atoms across all conformers.
func (r *Residue) AtomCount() int {
	n := 0
	for _, c := range r.conformers {
		n += c.AtomCount()
	}
	return n
}

// Conformer returns the conformer at index i, or nil if out of range.
func (r *Residue) Conformer(i int) *Conformer {
	if i < 0 || i >= len(r.conformers) {
		return nil
	}
	return r.conformers[i]
}

// Conformers returns the direct conformers in insertion order. Must not be
// mutated by the caller.
func (r *Residue) Conformers() []*Conformer { return r.conformers }

// AddConformer appends a conformer.
func (r *Residue) AddConformer(c *Conformer) { r.conformers = append(r.conformers, c) }

// InsertConformer inserts a conformer at index i.
func (r *Residue) InsertConformer(i int, c *Conformer) {
	r.conformers = append(r.conformers, nil)
	copy(r.conformers[i+1:], r.conformers[i:])
	r.conformers[i] = c
}

// RemoveConformer removes the conformer at index i. Panics if out of range.
func (r *Residue) RemoveConformer(i int) {
	r.conformers = append(r.conformers[:i], r.conformers[i+1:]...)
}

// RemoveConformersWhere removes every conformer for which predicate returns
// true.
func (r *Residue) RemoveConformersWhere(predicate func(*Conformer) bool) {
	kept := r.conformers[:0]
	for _, c := range r.conformers {
		if !predicate(c) {
			kept = append(kept, c)
		}
	}
	r.conformers = kept
}

// RemoveConformerByID removes the first conformer matching (name, altLoc).
// Returns whether a removal happened.
func (r *Residue) RemoveConformerByID(name string, altLoc *byte) bool {
	for i, c := range r.conformers {
		if conformerMatches(c, name, altLoc) {
			r.RemoveConformer(i)
			return true
		}
	}
	return false
}

// FindConformerByID returns the first conformer matching (name, altLoc), or
// nil.
func (r *Residue) FindConformerByID(name string, altLoc *byte) *Conformer {
	for _, c := range r.conformers {
		if conformerMatches(c, name, altLoc) {
			return c
		}
	}
	return nil
}

func conformerMatches(c *Conformer, name string, altLoc *byte) bool {
	if c.Name() != name {
		return false
	}
	cAlt, cHas := c.AltLoc()
	if altLoc == nil {
		return !cHas
	}
	return cHas && cAlt == *altLoc
}

// RemoveEmpty removes conformers with zero atoms.
func (r *Residue) RemoveEmpty() {
	r.RemoveConformersWhere(func(c *Conformer) bool { return c.AtomCount() == 0 })
}

// Sort orders direct conformers: blank alt-loc first, then lexicographically
// by alt-loc, matching the on-disk convention that the shared/blank
// conformer (if any survives reshuffling) sorts before labelled ones.
func (r *Residue) Sort() {
	stableSortBy(r.conformers, func(a, b *Conformer) bool {
		aAlt, aHas := a.AltLoc()
		bAlt, bHas := b.AltLoc()
		if aHas != bHas {
			return !aHas
		}
		if !aHas {
			return false
		}
		return aAlt < bAlt
	})
}

// FullSort cascades Sort down through every conformer's atoms.
func (r *Residue) FullSort() {
	r.Sort()
	for _, c := range r.conformers {
		c.Sort()
	}
}

// Join appends other's conformers to r.
func (r *Residue) Join(other *Residue) {
	r.conformers = append(r.conformers, other.conformers...)
}

// Clone returns a deep copy of the residue and its conformers.
func (r *Residue) Clone() *Residue {
	clone := &Residue{serialNumber: r.serialNumber, insertion: clonePtr(r.insertion)}
	clone.conformers = make([]*Conformer, len(r.conformers))
	for i, c := range r.conformers {
		clone.conformers[i] = c.Clone()
	}
	return clone
}
