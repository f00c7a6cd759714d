package core

import "testing"

func addModelWithOneAtom(t *testing.T, pdb *PDB, modelSerial uint32, atomSerial uint64, chainID string) *Model {
	t.Helper()
	m := NewModel(modelSerial)
	pdb.AddModel(m)
	a, err := NewAtom(false, atomSerial, "CA", float64(atomSerial), 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddAtom(a, AddAtomOptions{ChainID: chainID, ResidueSerial: 1, ConformerName: "ALA"}); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestPDBEnsureModelReturnsExistingOnSecondCall(t *testing.T) {
	pdb := NewPDB()
	m1 := pdb.EnsureModel(5)
	m2 := pdb.EnsureModel(5)
	if m1 != m2 {
		t.Fatal("EnsureModel should return the same *Model for a repeated serial")
	}
	if pdb.ModelCount() != 1 {
		t.Fatalf("ModelCount = %d, want 1", pdb.ModelCount())
	}
}

func TestPDBRemoveModelBySerial(t *testing.T) {
	pdb := NewPDB()
	addModelWithOneAtom(t, pdb, 1, 1, "A")
	addModelWithOneAtom(t, pdb, 2, 2, "A")

	if !pdb.RemoveModelBySerial(1) {
		t.Fatal("RemoveModelBySerial(1) should report a removal")
	}
	if pdb.ModelCount() != 1 {
		t.Fatalf("ModelCount = %d, want 1", pdb.ModelCount())
	}
	if pdb.FindModelBySerial(1) != nil {
		t.Fatal("model 1 should be gone")
	}
	if pdb.RemoveModelBySerial(99) {
		t.Fatal("RemoveModelBySerial for a missing serial should report no removal")
	}
}

func TestPDBRemoveAtomsWhereCascadesThroughAllModels(t *testing.T) {
	pdb := NewPDB()
	addModelWithOneAtom(t, pdb, 1, 1, "A")
	addModelWithOneAtom(t, pdb, 2, 2, "A")

	pdb.RemoveAtomsWhere(func(a *Atom) bool { return a.SerialNumber() == 1 })
	if pdb.AtomCount() != 1 {
		t.Fatalf("AtomCount = %d, want 1 after removing serial 1", pdb.AtomCount())
	}
}

func TestPDBRemoveEmptyDropsEmptyModels(t *testing.T) {
	pdb := NewPDB()
	addModelWithOneAtom(t, pdb, 1, 1, "A")
	pdb.AddModel(NewModel(2)) // empty model, no chains

	pdb.RemoveEmpty()
	if pdb.ModelCount() != 1 {
		t.Fatalf("ModelCount = %d, want 1 after RemoveEmpty drops the empty model", pdb.ModelCount())
	}
}

func TestPDBSortOrdersModelsBySerial(t *testing.T) {
	pdb := NewPDB()
	addModelWithOneAtom(t, pdb, 3, 1, "A")
	addModelWithOneAtom(t, pdb, 1, 2, "A")
	addModelWithOneAtom(t, pdb, 2, 3, "A")

	pdb.Sort()
	got := []uint32{pdb.Model(0).SerialNumber(), pdb.Model(1).SerialNumber(), pdb.Model(2).SerialNumber()}
	want := []uint32{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sort order = %v, want %v", got, want)
		}
	}
}

func TestPDBApplyTransformTranslatesEveryAtom(t *testing.T) {
	pdb := NewPDB()
	addModelWithOneAtom(t, pdb, 1, 1, "A")

	tr, err := Translation(10, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	pdb.ApplyTransform(tr)

	x, _, _ := pdb.AllAtoms()[0].Pos()
	if x != 11 {
		t.Fatalf("transformed x = %v, want 11 (original 1 + translation 10)", x)
	}
}

func TestPDBAllAtomsFlattensInTraversalOrder(t *testing.T) {
	pdb := NewPDB()
	addModelWithOneAtom(t, pdb, 1, 1, "A")
	addModelWithOneAtom(t, pdb, 2, 2, "A")

	atoms := pdb.AllAtoms()
	if len(atoms) != 2 {
		t.Fatalf("got %d atoms, want 2", len(atoms))
	}
	if atoms[0].SerialNumber() != 1 || atoms[1].SerialNumber() != 2 {
		t.Fatalf("traversal order = [%d, %d], want [1, 2]", atoms[0].SerialNumber(), atoms[1].SerialNumber())
	}
}

func TestPDBBinaryFindAtomRequiresFullSort(t *testing.T) {
	pdb := NewPDB()
	m := NewModel(1)
	pdb.AddModel(m)
	for _, serial := range []uint64{5, 1, 3} {
		a, err := NewAtom(false, serial, "CA", 0, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.AddAtom(a, AddAtomOptions{ChainID: "A", ResidueSerial: int64(serial), ConformerName: "ALA"}); err != nil {
			t.Fatal(err)
		}
	}
	pdb.FullSort()

	found := pdb.BinaryFindAtom(3, nil)
	if found == nil || found.SerialNumber() != 3 {
		t.Fatalf("BinaryFindAtom(3) = %v, want serial 3", found)
	}
	if pdb.BinaryFindAtom(99, nil) != nil {
		t.Fatal("BinaryFindAtom for a missing serial should return nil")
	}
}
