package validate

import (
	"strings"
	"testing"

	"pdbtbx/internal/core"
)

func addAtom(t *testing.T, m *core.Model, serial uint64, name, chainID string, resSeq int64, confName string, x, y, z float64) *core.Atom {
	t.Helper()
	a, err := core.NewAtom(false, serial, name, x, y, z)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddAtom(a, core.AddAtomOptions{ChainID: chainID, ResidueSerial: resSeq, ConformerName: confName}); err != nil {
		t.Fatal(err)
	}
	return a
}

func containsKind(diags core.Diagnostics, kind core.ErrorKind) bool {
	for _, d := range diags {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

func TestStructureFlagsDuplicateAtomSerials(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)
	addAtom(t, m, 1, "CA", "A", 1, "ALA", 0, 0, 0)
	addAtom(t, m, 1, "CB", "A", 2, "ALA", 1, 0, 0)

	diags := Structure(pdb)
	if !containsKind(diags, core.AtomCorrespondenceMismatch) {
		t.Fatalf("expected a duplicate-serial diagnostic, got %v", diags)
	}
}

func TestNonFiniteCoordinateRejectedBeforeStructureCheck(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)
	a := addAtom(t, m, 1, "CA", "A", 1, "ALA", 0, 0, 0)
	var zero float64
	if err := a.SetPos(1/zero, 0, 0); err == nil {
		t.Fatal("SetPos should reject a non-finite coordinate directly")
	}

	diags := Structure(pdb)
	if containsKind(diags, core.InvalidValue) {
		t.Fatalf("a valid atom should not trip InvalidValue: %v", diags)
	}
}

func TestStructureFlagsEmptyChain(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)

	c, err := core.NewChain("A")
	if err != nil {
		t.Fatal(err)
	}
	m.AddChain(c)

	diags := Structure(pdb)
	found := false
	for _, d := range diags {
		if d.Kind == core.InvalidValue && strings.Contains(d.Message, "no residues") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an empty-chain diagnostic, got %v", diags)
	}
}

func TestStructureFlagsNonPositiveAnisotropicTensor(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)
	a := addAtom(t, m, 1, "CA", "A", 1, "ALA", 0, 0, 0)
	if err := a.SetAnisotropic(core.AnisotropicFactors{U11: -0.1, U22: 0.2, U33: 0.3}); err != nil {
		t.Fatal(err)
	}

	diags := Structure(pdb)
	if !containsKind(diags, core.InvalidValue) {
		t.Fatalf("expected a non-positive-definite tensor diagnostic, got %v", diags)
	}
}

func TestPDBFormatFlagsOverlongChainID(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)
	addAtom(t, m, 1, "CA", "AB", 1, "ALA", 0, 0, 0)

	diags := PDBFormat(pdb)
	if !containsKind(diags, core.InvalidValue) {
		t.Fatalf("expected a chain-id-width diagnostic, got %v", diags)
	}
}

func TestPDBFormatFlagsOverlongAtomSerial(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)
	addAtom(t, m, 100000, "CA", "A", 1, "ALA", 0, 0, 0)

	diags := PDBFormat(pdb)
	if !containsKind(diags, core.InvalidValue) {
		t.Fatalf("expected an atom-serial-width diagnostic, got %v", diags)
	}
}

func TestPDBFormatFlagsOutOfRangeCharge(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)
	a := addAtom(t, m, 1, "CA", "A", 1, "ALA", 0, 0, 0)
	a.SetCharge(12)

	diags := PDBFormat(pdb)
	if !containsKind(diags, core.InvalidCharge) {
		t.Fatalf("expected an out-of-range charge diagnostic, got %v", diags)
	}
}

func TestPDBFormatAcceptsWellFormedStructure(t *testing.T) {
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)
	addAtom(t, m, 1, "CA", "A", 1, "ALA", 0, 0, 0)

	diags := PDBFormat(pdb)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics for a well-formed structure, got %v", diags)
	}
}
