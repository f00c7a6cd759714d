package validate

import (
	"fmt"

	"pdbtbx/internal/core"
)

// PDBFormat runs the additional checks a PDB-format write needs beyond
// Structure: every identifier and numeric field must fit the fixed-column
// widths §4.5 documents, since (unlike mmCIF) there is no escape mechanism
// for an overlong value.
func PDBFormat(pdb *core.PDB) core.Diagnostics {
	var diags core.Diagnostics
	for _, m := range pdb.Models() {
		if m.SerialNumber() > 9999 {
			diags.Push(core.NewDiagnostic(core.StrictWarning, core.InvalidValue,
				fmt.Sprintf("model serial %d exceeds the 4-column PDB field width", m.SerialNumber()), core.ContextNone))
		}
		for _, c := range m.Chains() {
			if len(c.ID()) > 1 {
				diags.Push(core.NewDiagnostic(core.StrictWarning, core.InvalidValue,
					fmt.Sprintf("chain id %q exceeds the 1-column PDB field width", c.ID()), core.ContextNone))
			}
			for _, r := range c.Residues() {
				if r.SerialNumber() < -999 || r.SerialNumber() > 9999 {
					diags.Push(core.NewDiagnostic(core.StrictWarning, core.InvalidValue,
						fmt.Sprintf("residue serial %d exceeds the 4-column PDB field width", r.SerialNumber()), core.ContextNone))
				}
				for _, conf := range r.Conformers() {
					if len(conf.Name()) > 3 {
						diags.Push(core.NewDiagnostic(core.StrictWarning, core.InvalidValue,
							fmt.Sprintf("residue name %q exceeds the 3-column PDB field width", conf.Name()), core.ContextNone))
					}
					for _, a := range conf.Atoms() {
						if a.SerialNumber() > 99999 {
							diags.Push(core.NewDiagnostic(core.StrictWarning, core.InvalidValue,
								fmt.Sprintf("atom serial %d exceeds the 5-column PDB field width (without overflow wraparound)", a.SerialNumber()), core.ContextNone))
						}
						if len(a.Name()) > 4 {
							diags.Push(core.NewDiagnostic(core.StrictWarning, core.InvalidValue,
								fmt.Sprintf("atom name %q exceeds the 4-column PDB field width", a.Name()), core.ContextNone))
						}
						if c := a.Charge(); c < -9 || c > 9 {
							diags.Push(core.NewDiagnostic(core.StrictWarning, core.InvalidCharge,
								fmt.Sprintf("charge %d exceeds the single-digit PDB charge field", c), core.ContextNone))
						}
					}
				}
			}
		}
	}
	return diags
}
