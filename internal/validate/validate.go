// Package validate implements the format-independent structural checks
// (§5) plus, in validate_pdb.go, the additional checks only a PDB-format
// round-trip needs (fixed-column width limits that mmCIF does not share).
package validate

import (
	"fmt"
	"math"

	"pdbtbx/internal/core"
)

// Structure runs every format-independent check against pdb, accumulating
// Diagnostics rather than stopping at the first failure.
func Structure(pdb *core.PDB) core.Diagnostics {
	var diags core.Diagnostics
	checkUniqueAtomSerials(pdb, &diags)
	checkFiniteCoordinates(pdb, &diags)
	checkNonEmptyContainers(pdb, &diags)
	checkAnisotropicPositiveDefinite(pdb, &diags)
	return diags
}

func checkUniqueAtomSerials(pdb *core.PDB, diags *core.Diagnostics) {
	for _, m := range pdb.Models() {
		seen := map[uint64]bool{}
		for _, c := range m.Chains() {
			for _, r := range c.Residues() {
				for _, conf := range r.Conformers() {
					for _, a := range conf.Atoms() {
						if seen[a.SerialNumber()] {
							diags.Push(core.NewDiagnostic(core.InvalidatingError, core.AtomCorrespondenceMismatch,
								fmt.Sprintf("duplicate atom serial %d in model %d", a.SerialNumber(), m.SerialNumber()),
								core.ContextNone))
						}
						seen[a.SerialNumber()] = true
					}
				}
			}
		}
	}
}

func checkFiniteCoordinates(pdb *core.PDB, diags *core.Diagnostics) {
	for _, a := range pdb.AllAtoms() {
		x, y, z := a.Pos()
		if !isFinite(x) || !isFinite(y) || !isFinite(z) {
			diags.Push(core.NewDiagnostic(core.BreakingError, core.InvalidValue,
				fmt.Sprintf("atom %d has a non-finite coordinate", a.SerialNumber()), core.ContextNone))
		}
	}
}

func checkNonEmptyContainers(pdb *core.PDB, diags *core.Diagnostics) {
	for _, m := range pdb.Models() {
		for _, c := range m.Chains() {
			if c.ResidueCount() == 0 {
				diags.Push(core.NewDiagnostic(core.GeneralWarning, core.InvalidValue,
					fmt.Sprintf("chain %s in model %d has no residues", c.ID(), m.SerialNumber()), core.ContextNone))
			}
			for _, r := range c.Residues() {
				if r.ConformerCount() == 0 {
					diags.Push(core.NewDiagnostic(core.GeneralWarning, core.InvalidValue,
						fmt.Sprintf("residue %d in chain %s has no conformers", r.SerialNumber(), c.ID()), core.ContextNone))
				}
			}
		}
	}
}

// checkAnisotropicPositiveDefinite flags anisotropic tensors whose diagonal
// entries are non-positive, which cannot correspond to a physical thermal
// ellipsoid.
func checkAnisotropicPositiveDefinite(pdb *core.PDB, diags *core.Diagnostics) {
	for _, a := range pdb.AllAtoms() {
		u, ok := a.Anisotropic()
		if !ok {
			continue
		}
		if u.U11 <= 0 || u.U22 <= 0 || u.U33 <= 0 {
			diags.Push(core.NewDiagnostic(core.LooseWarning, core.InvalidValue,
				fmt.Sprintf("atom %d has a non-positive-definite anisotropic tensor", a.SerialNumber()), core.ContextNone))
		}
	}
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
