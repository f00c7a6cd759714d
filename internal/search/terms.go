package search

import "pdbtbx/internal/core"

// valueOrRange is shared plumbing for the "value or inclusive range" leaves
// spec §4.4 lists repeatedly (model-serial, chain-id, residue-serial,
// atom-serial, b-factor, occupancy). Exactly one of value/range applies.
type valueOrRange[T any] struct {
	hasValue bool
	value    T
	hasRange bool
	lo, hi   T
}

func matchOrdered[T interface {
	comparable
}](v valueOrRange[T], got T, less func(a, b T) bool) bool {
	if v.hasValue {
		return got == v.value
	}
	if v.hasRange {
		return !less(got, v.lo) && !less(v.hi, got)
	}
	return true
}

// ModelSerial matches a model's serial number, by value or inclusive range.
type ModelSerial struct{ v valueOrRange[uint32] }

func NewModelSerial(value uint32) ModelSerial { return ModelSerial{valueOrRange[uint32]{hasValue: true, value: value}} }
func NewModelSerialRange(lo, hi uint32) ModelSerial {
	return ModelSerial{valueOrRange[uint32]{hasRange: true, lo: lo, hi: hi}}
}

func (t ModelSerial) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelModel || ctx.Model == nil {
		return false, false
	}
	return matchOrdered(t.v, ctx.Model.SerialNumber(), func(a, b uint32) bool { return a < b }), true
}

// ChainID matches a chain identifier, by value or inclusive (lexicographic)
// range.
type ChainID struct{ v valueOrRange[string] }

func NewChainID(value string) ChainID { return ChainID{valueOrRange[string]{hasValue: true, value: value}} }
func NewChainIDRange(lo, hi string) ChainID {
	return ChainID{valueOrRange[string]{hasRange: true, lo: lo, hi: hi}}
}

func (t ChainID) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelChain || ctx.Chain == nil {
		return false, false
	}
	return matchOrdered(t.v, ctx.Chain.ID(), func(a, b string) bool { return a < b }), true
}

// ResidueSerial matches a residue serial number, by value or inclusive
// range.
type ResidueSerial struct{ v valueOrRange[int64] }

func NewResidueSerial(value int64) ResidueSerial {
	return ResidueSerial{valueOrRange[int64]{hasValue: true, value: value}}
}
func NewResidueSerialRange(lo, hi int64) ResidueSerial {
	return ResidueSerial{valueOrRange[int64]{hasRange: true, lo: lo, hi: hi}}
}

func (t ResidueSerial) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelResidue || ctx.Residue == nil {
		return false, false
	}
	return matchOrdered(t.v, ctx.Residue.SerialNumber(), func(a, b int64) bool { return a < b }), true
}

// InsertionCode matches a residue's (optional) insertion code.
type InsertionCode struct{ Value *byte }

func (t InsertionCode) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelResidue || ctx.Residue == nil {
		return false, false
	}
	got, has := ctx.Residue.InsertionCode()
	if t.Value == nil {
		return !has, true
	}
	return has && got == *t.Value, true
}

// ResidueIDTerm matches the combined (serial, insertion) residue identity.
type ResidueIDTerm struct {
	Serial    int64
	Insertion *byte
}

func (t ResidueIDTerm) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelResidue || ctx.Residue == nil {
		return false, false
	}
	if ctx.Residue.SerialNumber() != t.Serial {
		return false, true
	}
	got, has := ctx.Residue.InsertionCode()
	if t.Insertion == nil {
		return !has, true
	}
	return has && got == *t.Insertion, true
}

// ConformerName matches a conformer's residue name.
type ConformerName struct{ Value string }

func (t ConformerName) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelConformer || ctx.Conformer == nil {
		return false, false
	}
	return ctx.Conformer.Name() == t.Value, true
}

// AltLoc matches a conformer's (optional) alternative-location tag.
type AltLoc struct{ Value *byte }

func (t AltLoc) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelConformer || ctx.Conformer == nil {
		return false, false
	}
	got, has := ctx.Conformer.AltLoc()
	if t.Value == nil {
		return !has, true
	}
	return has && got == *t.Value, true
}

// ConformerIDTerm matches the combined (name, alt-loc) conformer identity.
type ConformerIDTerm struct {
	Name   string
	AltLoc *byte
}

func (t ConformerIDTerm) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelConformer || ctx.Conformer == nil {
		return false, false
	}
	if ctx.Conformer.Name() != t.Name {
		return false, true
	}
	got, has := ctx.Conformer.AltLoc()
	if t.AltLoc == nil {
		return !has, true
	}
	return has && got == *t.AltLoc, true
}

// AtomSerial matches an atom serial number, by value or inclusive range.
type AtomSerial struct{ v valueOrRange[uint64] }

func NewAtomSerial(value uint64) AtomSerial {
	return AtomSerial{valueOrRange[uint64]{hasValue: true, value: value}}
}
func NewAtomSerialRange(lo, hi uint64) AtomSerial {
	return AtomSerial{valueOrRange[uint64]{hasRange: true, lo: lo, hi: hi}}
}

func (t AtomSerial) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	return matchOrdered(t.v, ctx.Atom.SerialNumber(), func(a, b uint64) bool { return a < b }), true
}

// AtomName matches an atom's (uppercase) name.
type AtomName struct{ Value string }

func (t AtomName) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	return ctx.Atom.Name() == t.Value, true
}

// ElementTerm matches an atom's element.
type ElementTerm struct{ Value core.Element }

func (t ElementTerm) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	got, has := ctx.Atom.Element()
	return has && got == t.Value, true
}

// BFactor matches an atom's isotropic B-factor, by value or inclusive
// range.
type BFactor struct{ v valueOrRange[float64] }

func NewBFactor(value float64) BFactor { return BFactor{valueOrRange[float64]{hasValue: true, value: value}} }
func NewBFactorRange(lo, hi float64) BFactor {
	return BFactor{valueOrRange[float64]{hasRange: true, lo: lo, hi: hi}}
}

func (t BFactor) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	return matchOrdered(t.v, ctx.Atom.BFactor(), func(a, b float64) bool { return a < b }), true
}

// Occupancy matches an atom's occupancy, by value or inclusive range.
type Occupancy struct{ v valueOrRange[float64] }

func NewOccupancy(value float64) Occupancy {
	return Occupancy{valueOrRange[float64]{hasValue: true, value: value}}
}
func NewOccupancyRange(lo, hi float64) Occupancy {
	return Occupancy{valueOrRange[float64]{hasRange: true, lo: lo, hi: hi}}
}

func (t Occupancy) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	return matchOrdered(t.v, ctx.Atom.Occupancy(), func(a, b float64) bool { return a < b }), true
}

var backboneNames = map[string]bool{"N": true, "CA": true, "C": true, "O": true, "OXT": true}

// Backbone matches atoms whose name is one of the canonical polypeptide
// backbone atoms.
type Backbone struct{}

func (Backbone) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	return backboneNames[ctx.Atom.Name()], true
}

// SideChain matches atoms that are neither backbone atoms nor hetero.
type SideChain struct{}

func (SideChain) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	return !backboneNames[ctx.Atom.Name()] && !ctx.Atom.Hetero(), true
}

// Hetero matches hetero atoms.
type Hetero struct{}

func (Hetero) OptionalMatch(ctx LevelContext) (bool, bool) {
	if ctx.Level != LevelAtom || ctx.Atom == nil {
		return false, false
	}
	return ctx.Atom.Hetero(), true
}
