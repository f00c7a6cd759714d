// Package pdb implements the fixed-column PDB-format writer described in
// spec §4.5/§4.7: record emission order, field packing and clipping, and
// the MASTER checksum record.
package pdb

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pdbtbx/internal/core"
	"pdbtbx/internal/options"
)

// Write serializes pdb as fixed-column PDB text to w, in the canonical
// record order: HEADER, REMARK, CRYST1, ORIGXn, SCALEn, MTRIXn, per model
// (MODEL/ATOM/HETATM/ANISOU/TER/ENDMDL), SSBOND, MASTER, END.
func Write(w io.Writer, pdb *core.PDB, opts options.WriteOptions) error {
	bw := bufio.NewWriter(w)
	counts := masterCounts{}

	if pdb.Classification != "" || pdb.DepositionDate != "" || pdb.Identifier != nil {
		writeHeader(bw, pdb)
	}
	for _, r := range pdb.Remarks {
		writeRemark(bw, r)
		counts.NumRemark++
	}
	if pdb.UnitCell != nil {
		writeCryst1(bw, pdb)
	}
	if pdb.OrigX != nil {
		writeMatrix(bw, "ORIGX", *pdb.OrigX, 0, false)
		counts.NumXform += 3
	}
	if pdb.Scale != nil {
		writeMatrix(bw, "SCALE", *pdb.Scale, 0, false)
		counts.NumXform += 3
	}
	for _, ncs := range pdb.NCSTransforms {
		writeMatrix(bw, "MTRIX", ncs.Matrix, ncs.Serial, ncs.Given)
		counts.NumXform += 3
	}

	multiModel := len(pdb.Models()) > 1
	for _, m := range pdb.Models() {
		if multiModel {
			fmt.Fprintf(bw, "MODEL     %4d\n", m.SerialNumber())
		}
		writeModelAtoms(bw, m, &counts)
		if multiModel {
			bw.WriteString("ENDMDL\n")
		}
	}

	for _, b := range pdb.SSBonds {
		writeSsbond(bw, b)
	}

	writeMaster(bw, counts)
	bw.WriteString("END\n")

	return bw.Flush()
}

func clip(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func clipRight(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s
}

func writeHeader(bw *bufio.Writer, pdb *core.PDB) {
	id := ""
	if pdb.Identifier != nil {
		id = *pdb.Identifier
	}
	fmt.Fprintf(bw, "HEADER    %-40s%-9s   %-4s\n",
		clipRight(pdb.Classification, 40), clipRight(pdb.DepositionDate, 9), clipRight(id, 4))
}

func writeRemark(bw *bufio.Writer, r core.Remark) {
	fmt.Fprintf(bw, "REMARK%4d %s\n", r.Number, r.Text)
}

func writeCryst1(bw *bufio.Writer, pdb *core.PDB) {
	cell := pdb.UnitCell
	sGroup := ""
	z := 0
	if pdb.Symmetry != nil && pdb.Symmetry.IsSet() {
		sGroup = pdb.Symmetry.HermannMauguin()
		z = pdb.Symmetry.Z()
	}
	fmt.Fprintf(bw, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f %-11s%4d\n",
		cell.A, cell.B, cell.C, cell.Alpha, cell.Beta, cell.Gamma, clip(sGroup, 11), z)
}

func writeMatrix(bw *bufio.Writer, prefix string, m core.TransformationMatrix, serial int, given bool) {
	g := ""
	if given {
		g = "1"
	}
	for i := 0; i < 3; i++ {
		row := m.Row(i)
		if prefix == "MTRIX" {
			fmt.Fprintf(bw, "%s%d %3d%10.6f%10.6f%10.6f     %10.5f    %1s\n",
				prefix, i+1, serial, row[0], row[1], row[2], row[3], g)
		} else {
			fmt.Fprintf(bw, "%s%d    %10.6f%10.6f%10.6f     %10.5f\n",
				prefix, i+1, row[0], row[1], row[2], row[3])
		}
	}
}

type masterCounts struct {
	NumRemark int
	NumHet    int
	NumXform  int
	NumCoord  int
	NumTer    int
	NumSeq    int
}

func writeModelAtoms(bw *bufio.Writer, m *core.Model, counts *masterCounts) {
	for _, c := range m.Chains() {
		wroteAny := false
		for _, r := range c.Residues() {
			for _, conf := range r.Conformers() {
				for _, a := range conf.Atoms() {
					writeAtomRecord(bw, c, r, conf, a)
					counts.NumCoord++
					if a.Hetero() {
						counts.NumHet++
					}
					if anisou, ok := a.Anisotropic(); ok {
						writeAnisouRecord(bw, c, r, conf, a, anisou)
					}
					wroteAny = true
				}
			}
		}
		if wroteAny {
			counts.NumTer++
			bw.WriteString("TER\n")
		}
	}
}

func writeAtomRecord(bw *bufio.Writer, c *core.Chain, r *core.Residue, conf *core.Conformer, a *core.Atom) {
	record := "ATOM  "
	if a.Hetero() {
		record = "HETATM"
	}
	altLoc := byte(' ')
	if v, has := conf.AltLoc(); has {
		altLoc = v
	}
	iCode := byte(' ')
	if v, has := r.InsertionCode(); has {
		iCode = v
	}
	elemSym := ""
	if e, ok := a.Element(); ok {
		elemSym = e.Symbol()
	}
	chargeStr := ""
	if a.Charge() != 0 {
		sign := byte('+')
		v := a.Charge()
		if v < 0 {
			sign = '-'
			v = -v
		}
		chargeStr = fmt.Sprintf("%d%c", v, sign)
	}
	x, y, z := a.Pos()
	fmt.Fprintf(bw, "%s%5d %-4s%c%-3s %s%4d%c   %8.3f%8.3f%8.3f%6.2f%6.2f          %2s%2s\n",
		record, a.SerialNumber()%100000, padAtomName(a.Name()), altLoc, clip(conf.Name(), 3),
		clip(c.ID(), 1), r.SerialNumber()%10000, iCode, x, y, z, a.Occupancy(), a.BFactor(),
		clip(elemSym, 2), clip(chargeStr, 2))
}

// padAtomName applies the PDB convention that one- and two-letter element
// names left-align starting at column 14 while others (hydrogens with a
// leading digit, four-character names) occupy all four columns.
func padAtomName(name string) string {
	if len(name) >= 4 {
		return name[:4]
	}
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		return clip(name, 4)
	}
	return " " + clip(name, 3)
}

func writeAnisouRecord(bw *bufio.Writer, c *core.Chain, r *core.Residue, conf *core.Conformer, a *core.Atom, u core.AnisotropicFactors) {
	altLoc := byte(' ')
	if v, has := conf.AltLoc(); has {
		altLoc = v
	}
	iCode := byte(' ')
	if v, has := r.InsertionCode(); has {
		iCode = v
	}
	scaled := func(v float64) int { return int(v * 10000) }
	fmt.Fprintf(bw, "ANISOU%5d %-4s%c%-3s %s%4d%c %7d%7d%7d%7d%7d%7d\n",
		a.SerialNumber()%100000, padAtomName(a.Name()), altLoc, clip(conf.Name(), 3), clip(c.ID(), 1),
		r.SerialNumber()%10000, iCode,
		scaled(u.U11), scaled(u.U22), scaled(u.U33), scaled(u.U12), scaled(u.U13), scaled(u.U23))
}

func writeSsbond(bw *bufio.Writer, b core.DisulfideBond) {
	ic1, ic2 := byte(' '), byte(' ')
	if b.InsertionCode1 != nil {
		ic1 = *b.InsertionCode1
	}
	if b.InsertionCode2 != nil {
		ic2 = *b.InsertionCode2
	}
	fmt.Fprintf(bw, "SSBOND%4d CYS %s%5d%c   CYS %s%5d%c\n",
		b.SerialNumber, clip(b.ChainID1, 1), b.SeqNum1, ic1, clip(b.ChainID2, 1), b.SeqNum2, ic2)
}

func writeMaster(bw *bufio.Writer, c masterCounts) {
	fmt.Fprintf(bw, "MASTER    %5d    0%5d    0    0    0    0%5d%5d%5d    0%5d\n",
		c.NumRemark, c.NumHet, c.NumXform, c.NumCoord, c.NumTer, c.NumSeq)
}
