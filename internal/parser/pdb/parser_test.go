package pdb

import (
	"strings"
	"testing"

	"pdbtbx/internal/core"
	"pdbtbx/internal/options"
)

// lineBuilder places text into 1-based inclusive columns [start, end] of a
// space-filled line buffer that grows as needed, the same convention the
// fixed-column records being tested use.
type lineBuilder struct {
	buf []byte
}

func newLineBuilder(width int) *lineBuilder {
	b := make([]byte, width)
	for i := range b {
		b[i] = ' '
	}
	return &lineBuilder{buf: b}
}

func (b *lineBuilder) put(start, end int, text string) *lineBuilder {
	if end > len(b.buf) {
		grown := make([]byte, end)
		for i := range grown {
			grown[i] = ' '
		}
		copy(grown, b.buf)
		b.buf = grown
	}
	if len(text) > end-start+1 {
		text = text[:end-start+1]
	}
	copy(b.buf[start-1:], text)
	return b
}

func (b *lineBuilder) String() string { return string(b.buf) }

func atomLine(serial, name, resName, chainID, resSeq string, x, y, z, occ, bfac, elem string) string {
	return newLineBuilder(78).
		put(1, 6, "ATOM").
		put(7, 11, serial).
		put(13, 16, name).
		put(18, 20, resName).
		put(22, 22, chainID).
		put(23, 26, resSeq).
		put(31, 38, x).
		put(39, 46, y).
		put(47, 54, z).
		put(55, 60, occ).
		put(61, 66, bfac).
		put(77, 78, elem).
		String()
}

func TestParseSingleAtomRecord(t *testing.T) {
	line := atomLine("    1", " CA ", "ALA", "A", "   1", "   1.000", "   2.000", "   3.000", "  1.00", " 20.00", "C ")
	r := strings.NewReader(line + "\n")
	pdb, diags, err := Parse(r, options.NewReadOptions())
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	if len(pdb.Models()) != 1 {
		t.Fatalf("got %d models, want 1", len(pdb.Models()))
	}
	m := pdb.Models()[0]
	chain := m.FindChainByID("A")
	if chain == nil {
		t.Fatal("chain A not found")
	}
	atoms := chain.Residue(0).Conformer(0).Atoms()
	if len(atoms) != 1 {
		t.Fatalf("got %d atoms, want 1", len(atoms))
	}
	a := atoms[0]
	x, y, z := a.Pos()
	if x != 1 || y != 2 || z != 3 {
		t.Fatalf("position = (%v,%v,%v), want (1,2,3)", x, y, z)
	}
	if a.Name() != "CA" {
		t.Fatalf("name = %q, want CA", a.Name())
	}
	elem, ok := a.Element()
	if !ok || elem.Symbol() != "C" {
		t.Fatalf("element = %v,%v, want C,true", elem, ok)
	}
}

func TestParseBlankChainIDSharesOneChain(t *testing.T) {
	l1 := atomLine("    1", " O  ", "HOH", "", "   1", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "O ")
	l2 := atomLine("    2", " O  ", "HOH", "", "   2", "   1.000", "   0.000", "   0.000", "  1.00", "  0.00", "O ")
	r := strings.NewReader(l1 + "\n" + l2 + "\n")
	pdb, diags, err := Parse(r, options.NewReadOptions())
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	m := pdb.Models()[0]
	if m.ChainCount() != 1 {
		t.Fatalf("ChainCount = %d, want 1 (both waters must land on the single blank chain)", m.ChainCount())
	}
	if got := m.Chain(0).ID(); got != "" {
		t.Fatalf("chain id = %q, want empty", got)
	}
	if m.ResidueCount() != 2 {
		t.Fatalf("ResidueCount = %d, want 2", m.ResidueCount())
	}
}

func TestParseAtomSerialOverflowWraparound(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(atomLine("99998", " CA ", "ALA", "A", "   1", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "C "))
	sb.WriteString("\n")
	sb.WriteString(atomLine("99999", " CA ", "ALA", "A", "   2", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "C "))
	sb.WriteString("\n")
	// wraps back to 0 after 99999: descending transition triggers +100000.
	sb.WriteString(atomLine("    0", " CA ", "ALA", "A", "   3", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "C "))
	sb.WriteString("\n")

	pdb, diags, err := Parse(strings.NewReader(sb.String()), options.NewReadOptions())
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	chain := pdb.Models()[0].FindChainByID("A")
	atoms := []*core.Atom{}
	for _, r := range chain.Residues() {
		for _, c := range r.Conformers() {
			atoms = append(atoms, c.Atoms()...)
		}
	}
	if len(atoms) != 3 {
		t.Fatalf("got %d atoms, want 3", len(atoms))
	}
	if atoms[2].SerialNumber() != 100000 {
		t.Fatalf("wrapped serial = %d, want 100000", atoms[2].SerialNumber())
	}
}

func TestParseChargeDigitThenSign(t *testing.T) {
	line := atomLine("    1", "CA  ", " CA", "A", "   1", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "CA")
	line = newLineBuilder(80).put(1, len(line), line).put(79, 80, "2+").String()
	pdb, diags, err := Parse(strings.NewReader(line+"\n"), options.NewReadOptions())
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	atoms := pdb.Models()[0].FindChainByID("A").Residue(0).Conformer(0).Atoms()
	if atoms[0].Charge() != 2 {
		t.Fatalf("charge = %d, want 2", atoms[0].Charge())
	}
}

func TestParseDiscardHydrogens(t *testing.T) {
	l1 := atomLine("    1", " CA ", "ALA", "A", "   1", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "C ")
	l2 := atomLine("    2", " H  ", "ALA", "A", "   1", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "H ")
	opts := options.NewReadOptions()
	opts.DiscardHydrogens = true
	pdb, diags, err := Parse(strings.NewReader(l1+"\n"+l2+"\n"), opts)
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	if pdb.Models()[0].AtomCount() != 1 {
		t.Fatalf("AtomCount = %d, want 1 with DiscardHydrogens", pdb.Models()[0].AtomCount())
	}
}

func TestParseAnisouAttachesToPrecedingAtom(t *testing.T) {
	atomL := atomLine("    1", " CA ", "ALA", "A", "   1", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "C ")
	anisouL := newLineBuilder(70).
		put(1, 6, "ANISOU").
		put(7, 11, "    1").
		put(13, 16, " CA ").
		put(18, 20, "ALA").
		put(22, 22, "A").
		put(23, 26, "   1").
		put(29, 35, "   1000").
		put(36, 42, "   2000").
		put(43, 49, "   3000").
		put(50, 56, "      0").
		put(57, 63, "      0").
		put(64, 70, "      0").
		String()

	pdb, diags, err := Parse(strings.NewReader(atomL+"\n"+anisouL+"\n"), options.NewReadOptions())
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	a := pdb.Models()[0].FindChainByID("A").Residue(0).Conformer(0).Atoms()[0]
	u, ok := a.Anisotropic()
	if !ok {
		t.Fatal("expected anisotropic factors to be set")
	}
	if u.U11 != 0.1 || u.U22 != 0.2 || u.U33 != 0.3 {
		t.Fatalf("U = %+v, want U11=0.1,U22=0.2,U33=0.3", u)
	}
}

func TestParseCryst1SetsUnitCellAndSymmetry(t *testing.T) {
	line := newLineBuilder(66).
		put(1, 6, "CRYST1").
		put(7, 15, "   10.000").
		put(16, 24, "   20.000").
		put(25, 33, "   30.000").
		put(34, 40, "  90.00").
		put(41, 47, "  90.00").
		put(48, 54, "  90.00").
		put(56, 66, "P 21 21 21").
		String()

	pdb, diags, err := Parse(strings.NewReader(line+"\n"), options.NewReadOptions())
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	if pdb.UnitCell == nil {
		t.Fatal("expected UnitCell to be set")
	}
	if pdb.UnitCell.A != 10 || pdb.UnitCell.B != 20 || pdb.UnitCell.C != 30 {
		t.Fatalf("unit cell = %+v", pdb.UnitCell)
	}
	if pdb.Symmetry == nil || pdb.Symmetry.Number() != 19 {
		t.Fatalf("expected space group 19, got %+v", pdb.Symmetry)
	}
}

func TestParseDbrefAttachesDatabaseReferenceToChain(t *testing.T) {
	line := newLineBuilder(68).
		put(1, 6, "DBREF ").
		put(13, 13, "A").
		put(15, 18, "   1").
		put(21, 24, " 100").
		put(27, 32, "UNP   ").
		put(34, 41, "P12345  ").
		put(43, 54, "SOMEPROT    ").
		put(56, 60, "    1").
		put(63, 67, "  100").
		String()
	atomL := atomLine("    1", " CA ", "ALA", "A", "   1", "   0.000", "   0.000", "   0.000", "  1.00", "  0.00", "C ")

	pdb, diags, err := Parse(strings.NewReader(line+"\n"+atomL+"\n"), options.NewReadOptions())
	if err != nil {
		t.Fatalf("Parse: %v (diags: %v)", err, diags)
	}
	chain := pdb.Models()[0].FindChainByID("A")
	if chain == nil {
		t.Fatal("chain A not found")
	}
	ref := chain.DatabaseReference()
	if ref == nil {
		t.Fatal("expected a database reference on chain A")
	}
	if ref.DatabaseAccession != "P12345" {
		t.Fatalf("DatabaseAccession = %q, want P12345", ref.DatabaseAccession)
	}
	if ref.SeqInFile.Start != 1 || ref.SeqInFile.End != 100 {
		t.Fatalf("SeqInFile = %+v, want Start=1, End=100", ref.SeqInFile)
	}
}

func TestParseUnknownRecordIsNonFatalOnlyBelowStrict(t *testing.T) {
	opts := options.NewReadOptions()
	opts.Level = core.Loose
	_, diags, err := Parse(strings.NewReader("FOOBAR some junk\n"), opts)
	if err != nil {
		t.Fatalf("an unknown-record GeneralWarning should not abort a Loose parse: %v", err)
	}
	found := false
	for _, d := range diags {
		if d.Kind == core.UnknownRecord {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an UnknownRecord diagnostic")
	}

	_, _, err = Parse(strings.NewReader("FOOBAR some junk\n"), options.NewReadOptions())
	if err == nil {
		t.Fatal("the same diagnostic should abort a Strict parse, since Strict treats every diagnostic as fatal")
	}
}
