package core

import "testing"

func mustAtom(t *testing.T, serial uint64, name string, x, y, z float64) *Atom {
	t.Helper()
	a, err := NewAtom(false, serial, name, x, y, z)
	if err != nil {
		t.Fatalf("NewAtom(%q): %v", name, err)
	}
	return a
}

func TestModelAddAtomBuildsHierarchy(t *testing.T) {
	m := NewModel(1)
	a1 := mustAtom(t, 1, "CA", 1, 2, 3)
	a2 := mustAtom(t, 2, "CB", 4, 5, 6)

	opts := AddAtomOptions{ChainID: "A", ResidueSerial: 10, ConformerName: "ALA"}
	if err := m.AddAtom(a1, opts); err != nil {
		t.Fatalf("AddAtom 1: %v", err)
	}
	if err := m.AddAtom(a2, opts); err != nil {
		t.Fatalf("AddAtom 2: %v", err)
	}

	if m.ChainCount() != 1 {
		t.Fatalf("ChainCount = %d, want 1", m.ChainCount())
	}
	chain := m.FindChainByID("A")
	if chain == nil {
		t.Fatal("FindChainByID(\"A\") = nil")
	}
	if chain.AtomCount() != 2 {
		t.Fatalf("chain AtomCount = %d, want 2", chain.AtomCount())
	}
	if m.AtomCount() != 2 {
		t.Fatalf("model AtomCount = %d, want 2", m.AtomCount())
	}
}

func TestModelAddAtomBlankChainID(t *testing.T) {
	m := NewModel(1)
	a := mustAtom(t, 1, "CA", 0, 0, 0)
	opts := AddAtomOptions{ChainID: "", ResidueSerial: 1, ConformerName: "HOH"}

	if err := m.AddAtom(a, opts); err != nil {
		t.Fatalf("AddAtom with blank chain id: %v", err)
	}
	a2 := mustAtom(t, 2, "O", 0, 0, 0)
	if err := m.AddAtom(a2, opts); err != nil {
		t.Fatalf("AddAtom second atom on blank chain: %v", err)
	}

	if m.ChainCount() != 1 {
		t.Fatalf("ChainCount = %d, want 1 (both atoms must land on the same blank chain)", m.ChainCount())
	}
	if got := m.Chain(0).ID(); got != "" {
		t.Fatalf("chain id = %q, want empty string", got)
	}
}

func TestFindChainByIDAfterRepeatedBlankLookup(t *testing.T) {
	m := NewModel(1)
	for i := 0; i < 5; i++ {
		a := mustAtom(t, uint64(i+1), "CA", 0, 0, 0)
		opts := AddAtomOptions{ChainID: "", ResidueSerial: int64(i), ConformerName: "GLY"}
		if err := m.AddAtom(a, opts); err != nil {
			t.Fatalf("AddAtom %d: %v", i, err)
		}
	}
	if m.ChainCount() != 1 {
		t.Fatalf("ChainCount = %d, want 1 after repeated blank-chain inserts", m.ChainCount())
	}
	if m.ResidueCount() != 5 {
		t.Fatalf("ResidueCount = %d, want 5", m.ResidueCount())
	}
}

func TestModelRemoveAtomsWhereCascades(t *testing.T) {
	m := NewModel(1)
	opts := AddAtomOptions{ChainID: "A", ResidueSerial: 1, ConformerName: "ALA"}
	a1 := mustAtom(t, 1, "CA", 0, 0, 0)
	a2 := mustAtom(t, 2, "H", 0, 0, 0)
	a2.SetHetero(false)
	if err := m.AddAtom(a1, opts); err != nil {
		t.Fatal(err)
	}
	if err := m.AddAtom(a2, opts); err != nil {
		t.Fatal(err)
	}

	m.RemoveAtomsWhere(func(a *Atom) bool { return a.Name() == "H" })

	if m.AtomCount() != 1 {
		t.Fatalf("AtomCount = %d, want 1", m.AtomCount())
	}

	m.RemoveAtomsWhere(func(a *Atom) bool { return true })
	if m.ChainCount() != 0 {
		t.Fatalf("ChainCount = %d, want 0 after removing every atom", m.ChainCount())
	}
}

func TestModelFullSortOrdersChainsResiduesConformers(t *testing.T) {
	m := NewModel(1)
	for _, cid := range []string{"B", "A"} {
		for _, serial := range []int64{2, 1} {
			a := mustAtom(t, uint64(serial), "CA", 0, 0, 0)
			opts := AddAtomOptions{ChainID: cid, ResidueSerial: serial, ConformerName: "ALA"}
			if err := m.AddAtom(a, opts); err != nil {
				t.Fatal(err)
			}
		}
	}
	m.FullSort()
	if m.Chain(0).ID() != "A" || m.Chain(1).ID() != "B" {
		t.Fatalf("chains not sorted: %q, %q", m.Chain(0).ID(), m.Chain(1).ID())
	}
	c := m.Chain(0)
	if c.Residue(0).SerialNumber() != 1 || c.Residue(1).SerialNumber() != 2 {
		t.Fatalf("residues not sorted within chain A")
	}
}

func TestAtomSetPosRejectsNonFinite(t *testing.T) {
	a := mustAtom(t, 1, "CA", 0, 0, 0)
	if err := a.SetPos(1, 2, posInf()); err == nil {
		t.Fatal("SetPos with +Inf should fail")
	}
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}

func TestResidueFindConformerByAltLoc(t *testing.T) {
	r, err := NewResidue(5, nil)
	if err != nil {
		t.Fatal(err)
	}
	altA := byte('A')
	cBlank, err := NewConformer("ALA", nil)
	if err != nil {
		t.Fatal(err)
	}
	cAlt, err := NewConformer("ALA", &altA)
	if err != nil {
		t.Fatal(err)
	}
	r.AddConformer(cBlank)
	r.AddConformer(cAlt)

	if got := r.FindConformerByID("ALA", nil); got != cBlank {
		t.Fatal("FindConformerByID(nil) did not return the blank-alt-loc conformer")
	}
	if got := r.FindConformerByID("ALA", &altA); got != cAlt {
		t.Fatal("FindConformerByID(&'A') did not return the labelled conformer")
	}
}
