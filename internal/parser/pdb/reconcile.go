package pdb

import (
	"fmt"

	"pdbtbx/internal/core"
)

// masterCounts is the parsed MASTER record's bookkeeping row (§4.5); it is
// compared against the counts actually reconstructed in the parsed PDB
// after every other record has been processed.
type masterCounts struct {
	NumRemark int
	NumHet    int
	NumHelix  int
	NumSheet  int
	NumTurn   int
	NumSite   int
	NumXform  int
	NumCoord  int
	NumTer    int
	NumConect int
	NumSeq    int
}

// verifyMaster recomputes the countable quantities from the parsed PDB and
// pushes a MasterChecksumMismatch diagnostic for every count that disagrees.
// Helix/sheet/turn/site/conect records are not modeled by this package (they
// carry no hierarchy-level meaning), so those five counts are not checked;
// numTer and numSeq are not checked either.
func verifyMaster(pdb *core.PDB, want masterCounts, lineno int, line string, diags *core.Diagnostics) {
	gotRemark := len(pdb.Remarks)
	gotHet := 0
	gotCoord := 0
	for _, m := range pdb.Models() {
		for _, c := range m.Chains() {
			for _, r := range c.Residues() {
				for _, conf := range r.Conformers() {
					for _, a := range conf.Atoms() {
						gotCoord++
						if a.Hetero() {
							gotHet++
						}
					}
				}
			}
		}
	}
	gotXform := 0
	if pdb.Scale != nil {
		gotXform += 3
	}
	if pdb.OrigX != nil {
		gotXform += 3
	}
	gotXform += 3 * len(pdb.NCSTransforms)

	mismatches := map[string][2]int{}
	if want.NumRemark != gotRemark {
		mismatches["numRemark"] = [2]int{want.NumRemark, gotRemark}
	}
	if want.NumHet != gotHet {
		mismatches["numHet"] = [2]int{want.NumHet, gotHet}
	}
	if want.NumXform != gotXform {
		mismatches["numXform"] = [2]int{want.NumXform, gotXform}
	}
	if want.NumCoord != gotCoord {
		mismatches["numCoord"] = [2]int{want.NumCoord, gotCoord}
	}
	if want.NumSeq != 0 {
		// numSeq is not compared with the number of SEQRES records;
		// reconcileSeqres compares SEQRES residue names with the observed
		// residues, not the record count.
	}

	for field, pair := range mismatches {
		diags.Push(core.NewDiagnostic(core.StrictWarning, core.MasterChecksumMismatch,
			fmt.Sprintf("MASTER record disagrees with reconstructed %s: file says %d, found %d", field, pair[0], pair[1]),
			core.ContextFullLine(lineno, line)))
	}
}

// reconcileSeqres compares each chain's declared SEQRES sequence against the
// residue names actually observed (in order) on that chain, reporting a
// SeqresInconsistent diagnostic that highlights every differing residue
// position across the declaring SEQRES lines.
func reconcileSeqres(pdb *core.PDB, entries []seqresEntry, diags *core.Diagnostics) {
	if len(entries) == 0 {
		return
	}
	byChain := map[string][]seqresEntry{}
	order := []string{}
	for _, e := range entries {
		if _, ok := byChain[e.ChainID]; !ok {
			order = append(order, e.ChainID)
		}
		byChain[e.ChainID] = append(byChain[e.ChainID], e)
	}

	for _, chainID := range order {
		group := byChain[chainID]
		var declared []string
		for _, e := range group {
			declared = append(declared, e.ResNames...)
		}
		if len(group) > 0 && group[0].NumRes != len(declared) {
			diags.Push(core.NewDiagnostic(core.StrictWarning, core.SeqresSerialInvalid,
				fmt.Sprintf("SEQRES chain %s declares %d residues but lists %d", chainID, group[0].NumRes, len(declared)),
				core.ContextFullLine(group[0].Lineno, group[0].Line)))
		}

		var observed []string
		for _, m := range pdb.Models() {
			chain := m.FindChainByID(chainID)
			if chain == nil {
				continue
			}
			for _, r := range chain.Residues() {
				for _, conf := range r.Conformers() {
					observed = append(observed, conf.Name())
				}
			}
			break // SEQRES declares the polymer sequence once, not per model
		}

		mismatchLen := len(declared)
		if len(observed) < mismatchLen {
			mismatchLen = len(observed)
		}
		var highlights []core.Highlight
		lineOffset := 0
		col := 19
		for i := 0; i < mismatchLen; i++ {
			if declared[i] != observed[i] {
				highlights = append(highlights, core.Highlight{LineOffset: lineOffset, Offset: col - 1, Length: 3})
			}
			col += 4
			if col > 19+4*12 {
				col = 19
				lineOffset++
			}
		}
		if len(highlights) > 0 {
			var lines []string
			for _, e := range group {
				lines = append(lines, e.Line)
			}
			diags.Push(core.NewDiagnostic(core.GeneralWarning, core.SeqresInconsistent,
				fmt.Sprintf("SEQRES chain %s disagrees with the observed residue sequence at %d position(s)", chainID, len(highlights)),
				core.ContextRangeHighlights(group[0].Lineno, lines, highlights)))
		}
	}
}

// applyModres rewrites the Modification on every conformer named by a
// MODRES record. This runs after every atom has been read, since the target
// residue/conformer must already exist.
func applyModres(pdb *core.PDB, entries []modresEntry, diags *core.Diagnostics) {
	for _, e := range entries {
		found := false
		for _, m := range pdb.Models() {
			chain := m.FindChainByID(e.ChainID)
			if chain == nil {
				continue
			}
			residue := chain.FindResidueByID(e.SeqNum, e.InsertionCode)
			if residue == nil {
				continue
			}
			conformer := residue.FindConformerByID(e.ResName, nil)
			if conformer == nil {
				for _, c := range residue.Conformers() {
					conformer = c
					break
				}
			}
			if conformer == nil {
				continue
			}
			conformer.SetModification(e.StdRes, e.Comment)
			found = true
		}
		if !found {
			diags.Push(core.NewDiagnostic(core.LooseWarning, core.ModresTargetMissing,
				fmt.Sprintf("MODRES target chain %s residue %d not found", e.ChainID, e.SeqNum), core.ContextNone))
		}
	}
}

// reshuffleBlankAltLoc implements the documented blank-alt-loc post pass:
// when a residue holds both a blank-alt-loc conformer and one or more
// labelled alternatives (the common case of a shared backbone recorded
// without an alt-loc tag), a clone of every atom of the first blank
// conformer is added to every labelled conformer with its occupancy divided
// by the number of labelled conformers, and the blank conformer is removed.
func reshuffleBlankAltLoc(pdb *core.PDB) {
	for _, m := range pdb.Models() {
		for _, c := range m.Chains() {
			for _, r := range c.Residues() {
				reshuffleResidue(r)
			}
		}
	}
}

func reshuffleResidue(r *core.Residue) {
	var blank *core.Conformer
	var labelled []*core.Conformer
	for _, conf := range r.Conformers() {
		if _, has := conf.AltLoc(); has {
			labelled = append(labelled, conf)
		} else if blank == nil {
			blank = conf
		}
	}
	if blank == nil || len(labelled) == 0 {
		return
	}

	blankAtoms := blank.Atoms()
	n := float64(len(labelled))
	for _, dest := range labelled {
		for _, atom := range blankAtoms {
			clone := atom.Clone()
			_ = clone.SetOccupancy(atom.Occupancy() / n)
			dest.AddAtom(clone)
		}
	}
	r.RemoveConformerByID(blank.Name(), nil)
}
