// Package mmcif implements the mmCIF/STAR serializer described in spec
// §4.6/§4.7: single data-block emission with a column-aligned atom_site
// loop. Anisotropic displacement factors are not written: the atom_site
// loop has no aniso columns and no separate aniso loop is emitted.
package mmcif

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pdbtbx/internal/core"
	"pdbtbx/internal/options"
)

// Write serializes pdb as a single mmCIF data block to w.
func Write(w io.Writer, pdb *core.PDB, opts options.WriteOptions) error {
	bw := bufio.NewWriter(w)

	id := "XXXX"
	if pdb.Identifier != nil && *pdb.Identifier != "" {
		id = *pdb.Identifier
	}
	fmt.Fprintf(bw, "data_%s\n#\n", strings.ToUpper(id))

	if pdb.UnitCell != nil {
		writeCell(bw, pdb, id)
	}
	if pdb.Symmetry != nil && pdb.Symmetry.IsSet() {
		writeSymmetry(bw, pdb)
	}

	writeAtomSite(bw, pdb)

	return bw.Flush()
}

func writeCell(bw *bufio.Writer, pdb *core.PDB, id string) {
	c := pdb.UnitCell
	fmt.Fprintf(bw, "_cell.entry_id      %s\n", id)
	fmt.Fprintf(bw, "_cell.length_a       %.3f\n", c.A)
	fmt.Fprintf(bw, "_cell.length_b       %.3f\n", c.B)
	fmt.Fprintf(bw, "_cell.length_c       %.3f\n", c.C)
	fmt.Fprintf(bw, "_cell.angle_alpha    %.2f\n", c.Alpha)
	fmt.Fprintf(bw, "_cell.angle_beta     %.2f\n", c.Beta)
	fmt.Fprintf(bw, "_cell.angle_gamma    %.2f\n", c.Gamma)
	bw.WriteString("#\n")
}

func writeSymmetry(bw *bufio.Writer, pdb *core.PDB) {
	fmt.Fprintf(bw, "_symmetry.space_group_name_H-M   '%s'\n", pdb.Symmetry.HermannMauguin())
	bw.WriteString("#\n")
}

var atomSiteTags = []string{
	"group_PDB", "id", "type_symbol", "label_atom_id", "label_alt_id",
	"label_comp_id", "label_asym_id", "label_seq_id", "pdbx_PDB_ins_code",
	"Cartn_x", "Cartn_y", "Cartn_z", "occupancy", "B_iso_or_equiv",
	"pdbx_formal_charge", "pdbx_PDB_model_num",
}

func writeAtomSite(bw *bufio.Writer, pdb *core.PDB) {
	if pdb.AtomCount() == 0 {
		return
	}
	bw.WriteString("loop_\n")
	for _, t := range atomSiteTags {
		fmt.Fprintf(bw, "_atom_site.%s\n", t)
	}
	for _, m := range pdb.Models() {
		for _, c := range m.Chains() {
			for _, r := range c.Residues() {
				for _, conf := range r.Conformers() {
					for _, a := range conf.Atoms() {
						writeAtomSiteRow(bw, m, c, r, conf, a)
					}
				}
			}
		}
	}
	bw.WriteString("#\n")
}

func writeAtomSiteRow(bw *bufio.Writer, m *core.Model, c *core.Chain, r *core.Residue, conf *core.Conformer, a *core.Atom) {
	group := "ATOM"
	if a.Hetero() {
		group = "HETATM"
	}
	altLoc := "."
	if v, has := conf.AltLoc(); has {
		altLoc = string(v)
	}
	insCode := "?"
	if v, has := r.InsertionCode(); has {
		insCode = string(v)
	}
	elem := "?"
	if e, ok := a.Element(); ok {
		elem = e.Symbol()
	}
	charge := "?"
	if a.Charge() != 0 {
		charge = fmt.Sprintf("%d", a.Charge())
	}
	chainID := c.ID()
	if chainID == "" {
		chainID = "."
	}
	x, y, z := a.Pos()
	fmt.Fprintf(bw, "%-8s %6d %-2s %-4s %-4s %-4s %-3s %-6d %-2s %9.3f %9.3f %9.3f %6.2f %6.2f %-3s %d\n",
		group, a.SerialNumber(), elemQuote(elem), cifQuote(a.Name()), altLoc, cifQuote(conf.Name()),
		chainID, r.SerialNumber(), insCode, x, y, z, a.Occupancy(), a.BFactor(), charge, m.SerialNumber())
}

// cifQuote wraps a value in single quotes if it contains a space, tab or
// quote character (e.g. "O5'"), and writes an empty value as "?". Reserved
// words are not detected.
func cifQuote(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return "'" + s + "'"
	}
	if s == "" {
		return "?"
	}
	return s
}

func elemQuote(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
