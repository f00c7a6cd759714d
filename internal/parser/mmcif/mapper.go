package mmcif

import (
	"strconv"
	"strings"

	"pdbtbx/internal/core"
	"pdbtbx/internal/options"
)

// Parse tokenizes, parses, and maps an mmCIF source string into a *core.PDB.
// Only the first data block is mapped; a multi-block file is unusual for
// macromolecular mmCIF and §4.6 treats every block beyond the first as
// diagnostic-only context.
func Parse(src string, opts options.ReadOptions) (*core.PDB, core.Diagnostics, error) {
	doc, diags, err := ParseDocument(src)
	if err != nil {
		return core.NewPDB(), diags, err
	}
	pdb := core.NewPDB()
	if len(doc.Blocks) == 0 {
		return pdb, diags, nil
	}
	block := doc.Blocks[0]

	if id, ok := block.Value("_entry.id"); ok && id != "" {
		idCopy := id
		pdb.Identifier = &idCopy
	} else if block.Name != "" {
		name := block.Name
		pdb.Identifier = &name
	}

	mapCell(&block, pdb, &diags)
	mapSymmetry(&block, pdb, &diags)
	mapAtomSite(&block, pdb, opts, &diags)

	if diags.HasErrors(opts.Level) {
		return pdb, diags, errParseFailed
	}
	return pdb, diags, nil
}

var errParseFailed = parseFailedError{}

type parseFailedError struct{}

func (parseFailedError) Error() string { return "mmcif parse produced diagnostics at or above the configured strictness" }

func mapCell(b *Block, pdb *core.PDB, diags *core.Diagnostics) {
	a, aok := numericValue(b, "_cell.length_a")
	bb, bok := numericValue(b, "_cell.length_b")
	c, cok := numericValue(b, "_cell.length_c")
	alpha, alphaok := numericValue(b, "_cell.angle_alpha")
	beta, betaok := numericValue(b, "_cell.angle_beta")
	gamma, gammaok := numericValue(b, "_cell.angle_gamma")
	if !(aok && bok && cok && alphaok && betaok && gammaok) {
		return
	}
	cell, err := core.NewUnitCell(a, bb, c, alpha, beta, gamma)
	if err != nil {
		diags.Push(core.NewDiagnostic(core.InvalidatingError, core.InvalidValue,
			"_cell.*: "+err.Error(), core.ContextNone))
		return
	}
	pdb.UnitCell = &cell
}

func mapSymmetry(b *Block, pdb *core.PDB, diags *core.Diagnostics) {
	symbol, ok := b.Value("_symmetry.space_group_name_H-M")
	if !ok {
		return
	}
	symbol = strings.Trim(symbol, "'\"")
	sym, found := core.SymmetryFromHermannMauguin(symbol)
	if !found {
		diags.Push(core.NewDiagnostic(core.LooseWarning, core.InvalidValue,
			"_symmetry.space_group_name_H-M: unrecognized space group "+strconv.Quote(symbol), core.ContextNone))
		return
	}
	pdb.Symmetry = &sym
}

// atomSiteColumns names the atom_site loop columns this mapper understands.
// auth_* columns are preferred over label_* for chain/residue identity,
// matching the convention that auth_* reflects the original deposited
// numbering while label_* is the mmCIF-canonical renumbering.
const (
	colGroupPDB   = "_atom_site.group_PDB"
	colID         = "_atom_site.id"
	colTypeSymbol = "_atom_site.type_symbol"
	colAtomID     = "_atom_site.label_atom_id"
	colAltID      = "_atom_site.label_alt_id"
	colCompID     = "_atom_site.auth_comp_id"
	colCompIDFall = "_atom_site.label_comp_id"
	colAsymID     = "_atom_site.auth_asym_id"
	colAsymIDFall = "_atom_site.label_asym_id"
	colSeqID      = "_atom_site.auth_seq_id"
	colSeqIDFall  = "_atom_site.label_seq_id"
	colInsCode    = "_atom_site.pdbx_PDB_ins_code"
	colX          = "_atom_site.Cartn_x"
	colY          = "_atom_site.Cartn_y"
	colZ          = "_atom_site.Cartn_z"
	colOcc        = "_atom_site.occupancy"
	colBIso       = "_atom_site.B_iso_or_equiv"
	colCharge     = "_atom_site.pdbx_formal_charge"
	colModelNum   = "_atom_site.pdbx_PDB_model_num"
)

func mapAtomSite(b *Block, pdb *core.PDB, opts options.ReadOptions, diags *core.Diagnostics) {
	lp, ok := b.LoopFor(colID)
	if !ok {
		return
	}
	col := func(primary, fallback string) []string {
		if v := lp.Column(primary); v != nil {
			return v
		}
		if fallback != "" {
			return lp.Column(fallback)
		}
		return nil
	}

	groupPDB := col(colGroupPDB, "")
	typeSymbol := col(colTypeSymbol, "")
	atomID := col(colAtomID, "")
	altID := col(colAltID, "")
	compID := col(colCompID, colCompIDFall)
	asymID := col(colAsymID, colAsymIDFall)
	seqID := col(colSeqID, colSeqIDFall)
	insCode := col(colInsCode, "")
	xs := col(colX, "")
	ys := col(colY, "")
	zs := col(colZ, "")
	occ := col(colOcc, "")
	bIso := col(colBIso, "")
	charge := col(colCharge, "")
	modelNum := col(colModelNum, "")
	idCol := lp.Column(colID)

	n := len(lp.Rows)
	overflowByChain := map[string]*serialOverflowMmcif{}

	for i := 0; i < n; i++ {
		if opts.OnlyFirstModel && i > 0 && atIndex(modelNum, i) != atIndex(modelNum, 0) {
			break
		}
		hetero := strings.EqualFold(atIndex(groupPDB, i), "HETATM")
		if opts.OnlyAtomicCoords && hetero {
			continue
		}

		name := atIndex(atomID, i)
		if opts.DiscardHydrogens {
			sym := atIndex(typeSymbol, i)
			elem, ok := resolveElementMmcif(sym, name)
			if ok && elem.Symbol() == "H" {
				continue
			}
		}

		x, xok := parseF(atIndex(xs, i))
		y, yok := parseF(atIndex(ys, i))
		z, zok := parseF(atIndex(zs, i))
		if !xok || !yok || !zok {
			diags.Push(core.NewDiagnostic(core.BreakingError, core.InvalidValue,
				"atom_site row has non-numeric coordinate", core.ContextNone))
			continue
		}

		serialRaw, _ := strconv.ParseUint(strings.TrimSpace(atIndex(idCol, i)), 10, 64)
		chainID := atIndex(asymID, i)
		ov, okOv := overflowByChain[chainID]
		if !okOv {
			ov = &serialOverflowMmcif{}
			overflowByChain[chainID] = ov
		}
		serial := ov.corrected(serialRaw)

		resSeq, _ := strconv.ParseInt(strings.TrimSpace(atIndex(seqID, i)), 10, 64)

		atom, err := core.NewAtom(hetero, serial, name, x, y, z)
		if err != nil {
			diags.Push(core.NewDiagnostic(core.InvalidatingError, core.InvalidValue,
				"atom_site row: "+err.Error(), core.ContextNone))
			continue
		}
		if v, ok := parseF(atIndex(occ, i)); ok {
			_ = atom.SetOccupancy(v)
		}
		if v, ok := parseF(atIndex(bIso, i)); ok {
			_ = atom.SetBFactor(v)
		}
		if v, err := strconv.ParseInt(strings.TrimSpace(atIndex(charge, i)), 10, 8); err == nil {
			atom.SetCharge(int8(v))
		}
		if elem, ok := resolveElementMmcif(atIndex(typeSymbol, i), name); ok {
			atom.SetElement(elem)
		}

		modelSerial := uint32(1)
		if v, err := strconv.ParseUint(strings.TrimSpace(atIndex(modelNum, i)), 10, 32); err == nil {
			modelSerial = uint32(v)
		}
		model := pdb.EnsureModel(modelSerial)

		var altLoc *byte
		if a := atIndex(altID, i); a != "" && a != "." && a != "?" {
			v := a[0]
			altLoc = &v
		}
		var ic *byte
		if s := atIndex(insCode, i); s != "" && s != "." && s != "?" {
			v := s[0]
			ic = &v
		}

		err = model.AddAtom(atom, core.AddAtomOptions{
			ChainID:       chainID,
			ResidueSerial: resSeq,
			InsertionCode: ic,
			ConformerName: atIndex(compID, i),
			AltLoc:        altLoc,
		})
		if err != nil {
			diags.Push(core.NewDiagnostic(core.InvalidatingError, core.InvalidValue,
				"could not place atom_site row: "+err.Error(), core.ContextNone))
		}
	}
}

// serialOverflowMmcif mirrors the PDB-format atom-serial overflow tracker;
// mmCIF's _atom_site.id is an arbitrary-width integer so true overflow is
// rare, but files transcoded from legacy PDB input can still carry the same
// wraparound artifact.
type serialOverflowMmcif struct {
	lastRaw uint64
	offset  uint64
	seen    bool
}

func (o *serialOverflowMmcif) corrected(raw uint64) uint64 {
	if o.seen && raw < o.lastRaw {
		o.offset += 100000
	}
	o.lastRaw = raw
	o.seen = true
	return raw + o.offset
}

func atIndex(col []string, i int) string {
	if col == nil || i >= len(col) {
		return ""
	}
	return col[i]
}

func parseF(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == "?" {
		return 0, false
	}
	// numeric-with-uncertainty, e.g. "12.345(6)": strip a trailing
	// parenthesized esd before parsing the float itself.
	if idx := strings.IndexByte(s, '('); idx >= 0 {
		s = s[:idx]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func numericValue(b *Block, tag string) (float64, bool) {
	v, ok := b.Value(tag)
	if !ok {
		return 0, false
	}
	return parseF(v)
}

func resolveElementMmcif(symbol, atomName string) (core.Element, bool) {
	if symbol != "" && symbol != "." && symbol != "?" {
		if e, ok := core.ElementBySymbol(symbol); ok {
			return e, true
		}
	}
	return core.InferElementFromAtomName(atomName)
}
