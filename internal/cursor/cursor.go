// Package cursor exposes an atom alongside borrowed references to its
// ancestors, without requiring parent back-pointers on the hierarchy types
// themselves (see §4.3 and DESIGN.md's note on parent back-pointers). A
// cursor's ancestor references live in the stack frame of whatever
// traversal produced it; they are never stored back into the hierarchy.
package cursor

import "pdbtbx/internal/core"

// AtomWithConformer bundles an atom with its owning conformer.
type AtomWithConformer struct {
	Atom      *core.Atom
	Conformer *core.Conformer
}

// AtomWithResidue bundles an atom with its conformer and residue.
type AtomWithResidue struct {
	Atom      *core.Atom
	Conformer *core.Conformer
	Residue   *core.Residue
}

// AtomWithChain bundles an atom with its conformer, residue, and chain.
type AtomWithChain struct {
	Atom      *core.Atom
	Conformer *core.Conformer
	Residue   *core.Residue
	Chain     *core.Chain
}

// AtomWithModel bundles an atom with its conformer, residue, chain, and
// model — the full ancestor path.
type AtomWithModel struct {
	Atom      *core.Atom
	Conformer *core.Conformer
	Residue   *core.Residue
	Chain     *core.Chain
	Model     *core.Model
}

// key is the equality/ordering primary key shared by every cursor variant:
// (atom.serial_number, conformer.alternative_location).
func key(a *core.Atom, c *core.Conformer) (uint64, byte, bool) {
	altLoc, has := c.AltLoc()
	return a.SerialNumber(), altLoc, has
}

// Equal reports whether two cursors refer to the same (serial, alt-loc)
// identity, per §4.3's equality rule.
func (c AtomWithConformer) Equal(other AtomWithConformer) bool {
	s1, a1, h1 := key(c.Atom, c.Conformer)
	s2, a2, h2 := key(other.Atom, other.Conformer)
	return s1 == s2 && h1 == h2 && (!h1 || a1 == a2)
}

// Equal reports whether two cursors refer to the same (serial, alt-loc)
// identity.
func (c AtomWithResidue) Equal(other AtomWithResidue) bool {
	s1, a1, h1 := key(c.Atom, c.Conformer)
	s2, a2, h2 := key(other.Atom, other.Conformer)
	return s1 == s2 && h1 == h2 && (!h1 || a1 == a2)
}

// Equal reports whether two cursors refer to the same (serial, alt-loc)
// identity.
func (c AtomWithChain) Equal(other AtomWithChain) bool {
	s1, a1, h1 := key(c.Atom, c.Conformer)
	s2, a2, h2 := key(other.Atom, other.Conformer)
	return s1 == s2 && h1 == h2 && (!h1 || a1 == a2)
}

// Equal reports whether two cursors refer to the same (serial, alt-loc)
// identity.
func (c AtomWithModel) Equal(other AtomWithModel) bool {
	s1, a1, h1 := key(c.Atom, c.Conformer)
	s2, a2, h2 := key(other.Atom, other.Conformer)
	return s1 == s2 && h1 == h2 && (!h1 || a1 == a2)
}

// WalkModel visits every AtomWithModel cursor in pdb in hierarchy traversal
// order.
func WalkModel(pdb *core.PDB, visit func(AtomWithModel)) {
	for _, m := range pdb.Models() {
		for _, ch := range m.Chains() {
			for _, r := range ch.Residues() {
				for _, conf := range r.Conformers() {
					for _, a := range conf.Atoms() {
						visit(AtomWithModel{Atom: a, Conformer: conf, Residue: r, Chain: ch, Model: m})
					}
				}
			}
		}
	}
}

// WalkChain visits every AtomWithChain cursor within a single chain.
func WalkChain(ch *core.Chain, visit func(AtomWithChain)) {
	for _, r := range ch.Residues() {
		for _, conf := range r.Conformers() {
			for _, a := range conf.Atoms() {
				visit(AtomWithChain{Atom: a, Conformer: conf, Residue: r, Chain: ch})
			}
		}
	}
}

// WalkResidue visits every AtomWithResidue cursor within a single residue.
func WalkResidue(r *core.Residue, visit func(AtomWithResidue)) {
	for _, conf := range r.Conformers() {
		for _, a := range conf.Atoms() {
			visit(AtomWithResidue{Atom: a, Conformer: conf, Residue: r})
		}
	}
}

// AtomWithConformerMut, AtomWithResidueMut, AtomWithChainMut, and
// AtomWithModelMut are the mutable counterparts. In Go, pointer fields are
// already independent mutable references bounded by the cursor's own
// lifetime (there is no borrow checker to satisfy), so the mutable variants
// carry exactly the same fields as their immutable counterparts; the
// distinction that matters in an ownership language collapses to "the
// fields are pointers" here. They are type aliases, not distinct types; the
// names only let call sites document read-only traversal vs. in-place
// mutation the same way the two-variant split does in the source this was
// ported from.
type (
	AtomWithConformerMut = AtomWithConformer
	AtomWithResidueMut   = AtomWithResidue
	AtomWithChainMut     = AtomWithChain
	AtomWithModelMut     = AtomWithModel
)
