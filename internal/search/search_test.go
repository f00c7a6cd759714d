package search

import (
	"testing"

	"pdbtbx/internal/core"
)

func buildSearchFixture(t *testing.T) *core.PDB {
	t.Helper()
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)

	mkAtom := func(serial uint64, name, chainID string, resSeq int64, conf string, hetero bool) {
		a, err := core.NewAtom(hetero, serial, name, float64(serial), 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.AddAtom(a, core.AddAtomOptions{ChainID: chainID, ResidueSerial: resSeq, ConformerName: conf}); err != nil {
			t.Fatal(err)
		}
	}
	mkAtom(1, "N", "A", 1, "ALA", false)
	mkAtom(2, "CA", "A", 1, "ALA", false)
	mkAtom(3, "CB", "A", 1, "ALA", false)
	mkAtom(4, "OW", "B", 1, "HOH", true)
	return pdb
}

func TestFindByChainID(t *testing.T) {
	pdb := buildSearchFixture(t)
	results := Find(pdb, TermExpr{T: NewChainID("A")})
	if len(results) != 3 {
		t.Fatalf("got %d atoms, want 3", len(results))
	}
}

func TestFindByAtomSerialRange(t *testing.T) {
	pdb := buildSearchFixture(t)
	results := Find(pdb, TermExpr{T: NewAtomSerialRange(2, 3)})
	if len(results) != 2 {
		t.Fatalf("got %d atoms, want 2", len(results))
	}
}

func TestFindAndCombinesChainAndBackbone(t *testing.T) {
	pdb := buildSearchFixture(t)
	expr := And{TermExpr{T: NewChainID("A")}, TermExpr{T: Backbone{}}}
	results := Find(pdb, expr)
	if len(results) != 2 {
		t.Fatalf("got %d atoms (N, CA), want 2", len(results))
	}
}

func TestFindOrCombinesHeteroAndAtomSerial(t *testing.T) {
	pdb := buildSearchFixture(t)
	expr := Or{TermExpr{T: Hetero{}}, TermExpr{T: NewAtomSerial(1)}}
	results := Find(pdb, expr)
	if len(results) != 2 {
		t.Fatalf("got %d atoms (hetero OW, serial 1 N), want 2", len(results))
	}
}

func TestFindNotNegatesHetero(t *testing.T) {
	pdb := buildSearchFixture(t)
	expr := Not{Child: TermExpr{T: Hetero{}}}
	results := Find(pdb, expr)
	if len(results) != 3 {
		t.Fatalf("got %d non-hetero atoms, want 3", len(results))
	}
}

func TestFindXorBetweenBackboneAndChainB(t *testing.T) {
	pdb := buildSearchFixture(t)
	// exactly one of (backbone, chain B) should hold: N/CA (backbone, not
	// chain B), OW (chain B's only atom, not backbone) all satisfy XOR; CB
	// satisfies neither and is excluded.
	expr := Xor{TermExpr{T: Backbone{}}, TermExpr{T: NewChainID("B")}}
	results := Find(pdb, expr)
	if len(results) != 3 {
		t.Fatalf("got %d atoms, want 3", len(results))
	}
}

func TestFindPrunesAtModelLevelWithKnownFalse(t *testing.T) {
	pdb := buildSearchFixture(t)
	expr := And{Known(false), TermExpr{T: Backbone{}}}
	results := Find(pdb, expr)
	if len(results) != 0 {
		t.Fatalf("got %d atoms, want 0 (Known(false) should prune everything)", len(results))
	}
}

func TestSideChainExcludesBackboneAndHetero(t *testing.T) {
	pdb := buildSearchFixture(t)
	results := Find(pdb, TermExpr{T: SideChain{}})
	if len(results) != 1 {
		t.Fatalf("got %d side-chain atoms, want 1 (CB)", len(results))
	}
	if results[0].Atom.Name() != "CB" {
		t.Fatalf("side-chain atom = %q, want CB", results[0].Atom.Name())
	}
}
