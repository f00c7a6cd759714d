package pdb

import (
	"bytes"
	"strings"
	"testing"

	"pdbtbx/internal/core"
	"pdbtbx/internal/options"
	inpdb "pdbtbx/internal/parser/pdb"
)

func buildSamplePDB(t *testing.T) *core.PDB {
	t.Helper()
	pdb := core.NewPDB()
	m := core.NewModel(1)
	pdb.AddModel(m)

	a, err := core.NewAtom(false, 1, "CA", 1.5, 2.5, 3.5)
	if err != nil {
		t.Fatal(err)
	}
	a.SetElement(mustElement(t, "C"))
	if err := m.AddAtom(a, core.AddAtomOptions{ChainID: "A", ResidueSerial: 10, ConformerName: "ALA"}); err != nil {
		t.Fatal(err)
	}
	return pdb
}

func mustElement(t *testing.T, symbol string) core.Element {
	t.Helper()
	e, ok := core.ElementBySymbol(symbol)
	if !ok {
		t.Fatalf("element %q not found", symbol)
	}
	return e
}

func TestWriteProducesFixedColumnAtomRecord(t *testing.T) {
	pdb := buildSamplePDB(t)
	var buf bytes.Buffer
	if err := Write(&buf, pdb, options.NewWriteOptions()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ATOM") {
		t.Fatalf("expected an ATOM record in output:\n%s", out)
	}
	if !strings.Contains(out, "MASTER") {
		t.Fatalf("expected a MASTER record in output:\n%s", out)
	}
	if !strings.Contains(out, "END\n") {
		t.Fatalf("expected a terminating END record:\n%s", out)
	}
}

func TestWriteThenParseRoundTripsCoordinates(t *testing.T) {
	pdb := buildSamplePDB(t)
	var buf bytes.Buffer
	if err := Write(&buf, pdb, options.NewWriteOptions()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	reParsed, diags, err := inpdb.Parse(strings.NewReader(buf.String()), options.NewReadOptions())
	if err != nil {
		t.Fatalf("re-parse: %v (diags: %v)\n%s", err, diags, buf.String())
	}
	if len(reParsed.Models()) != 1 {
		t.Fatalf("got %d models, want 1", len(reParsed.Models()))
	}
	chain := reParsed.Models()[0].FindChainByID("A")
	if chain == nil {
		t.Fatal("chain A missing after round trip")
	}
	atoms := chain.Residue(0).Conformer(0).Atoms()
	if len(atoms) != 1 {
		t.Fatalf("got %d atoms after round trip, want 1", len(atoms))
	}
	x, y, z := atoms[0].Pos()
	if x != 1.5 || y != 2.5 || z != 3.5 {
		t.Fatalf("round-tripped position = (%v,%v,%v), want (1.5,2.5,3.5)", x, y, z)
	}
	if atoms[0].Name() != "CA" {
		t.Fatalf("round-tripped name = %q, want CA", atoms[0].Name())
	}
}

func TestPadAtomNameLeftPadsShortNames(t *testing.T) {
	if got := padAtomName("CA"); got != " CA " {
		t.Fatalf("padAtomName(\"CA\") = %q, want \" CA \"", got)
	}
	if got := padAtomName("HB12"); got != "HB12" {
		t.Fatalf("padAtomName(\"HB12\") = %q, want \"HB12\"", got)
	}
}

func TestWriteMultiModelEmitsModelEndmdl(t *testing.T) {
	pdb := core.NewPDB()
	for serial := uint32(1); serial <= 2; serial++ {
		m := core.NewModel(serial)
		a, err := core.NewAtom(false, 1, "CA", 0, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.AddAtom(a, core.AddAtomOptions{ChainID: "A", ResidueSerial: 1, ConformerName: "ALA"}); err != nil {
			t.Fatal(err)
		}
		pdb.AddModel(m)
	}
	var buf bytes.Buffer
	if err := Write(&buf, pdb, options.NewWriteOptions()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "MODEL") != 2 || strings.Count(out, "ENDMDL") != 2 {
		t.Fatalf("expected 2 MODEL/ENDMDL pairs for a multi-model structure:\n%s", out)
	}
}
