package options

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"pdbtbx/internal/core"
)

// profileFile is the on-disk shape of a TOML read/write options profile,
// the same role BurntSushi/toml plays for the teacher's own schema-input
// format (internal/parser/toml): a structured, named file replacing a long
// repeated flag list.
type profileFile struct {
	Format            string `toml:"format"`
	Level             string `toml:"level"`
	Decompress        bool   `toml:"decompress"`
	DiscardHydrogens  bool   `toml:"discard_hydrogens"`
	OnlyFirstModel    bool   `toml:"only_first_model"`
	OnlyAtomicCoords  bool   `toml:"only_atomic_coords"`
	CapitaliseChains  bool   `toml:"capitalise_chains"`
	WrapResidueSerial bool   `toml:"wrap_residue_serial"`

	ParsingLevel struct {
		Header   *bool `toml:"header"`
		Remark   *bool `toml:"remark"`
		Atoms    *bool `toml:"atoms"`
		Hetatm   *bool `toml:"hetatm"`
		Anisou   *bool `toml:"anisou"`
		Cryst    *bool `toml:"cryst"`
		Matrices *bool `toml:"matrices"`
		Model    *bool `toml:"model"`
		Dbref    *bool `toml:"dbref"`
		Seqres   *bool `toml:"seqres"`
		Seqadv   *bool `toml:"seqadv"`
		Modres   *bool `toml:"modres"`
		Ssbond   *bool `toml:"ssbond"`
		Master   *bool `toml:"master"`
	} `toml:"parsing_level"`
}

// LoadReadOptions parses a TOML profile file (as raw text, e.g. already
// read from disk by the caller) into a ReadOptions, starting from
// NewReadOptions() defaults and overriding only the keys present in the
// file.
func LoadReadOptions(tomlText string) (ReadOptions, error) {
	var pf profileFile
	if _, err := toml.Decode(tomlText, &pf); err != nil {
		return ReadOptions{}, fmt.Errorf("decode options profile: %w", err)
	}

	opts := NewReadOptions()
	if pf.Format != "" {
		f, err := parseFormatName(pf.Format)
		if err != nil {
			return ReadOptions{}, err
		}
		opts.Format = f
	}
	if pf.Level != "" {
		lvl, err := parseStrictnessName(pf.Level)
		if err != nil {
			return ReadOptions{}, err
		}
		opts.Level = lvl
	}
	opts.Decompress = pf.Decompress
	opts.DiscardHydrogens = pf.DiscardHydrogens
	opts.OnlyFirstModel = pf.OnlyFirstModel
	opts.OnlyAtomicCoords = pf.OnlyAtomicCoords
	opts.CapitaliseChains = pf.CapitaliseChains
	opts.WrapResidueSerial = pf.WrapResidueSerial

	applyBool(&opts.ParsingLevel.Header, pf.ParsingLevel.Header)
	applyBool(&opts.ParsingLevel.Remark, pf.ParsingLevel.Remark)
	applyBool(&opts.ParsingLevel.Atoms, pf.ParsingLevel.Atoms)
	applyBool(&opts.ParsingLevel.Hetatm, pf.ParsingLevel.Hetatm)
	applyBool(&opts.ParsingLevel.Anisou, pf.ParsingLevel.Anisou)
	applyBool(&opts.ParsingLevel.Cryst, pf.ParsingLevel.Cryst)
	applyBool(&opts.ParsingLevel.Matrices, pf.ParsingLevel.Matrices)
	applyBool(&opts.ParsingLevel.Model, pf.ParsingLevel.Model)
	applyBool(&opts.ParsingLevel.Dbref, pf.ParsingLevel.Dbref)
	applyBool(&opts.ParsingLevel.Seqres, pf.ParsingLevel.Seqres)
	applyBool(&opts.ParsingLevel.Seqadv, pf.ParsingLevel.Seqadv)
	applyBool(&opts.ParsingLevel.Modres, pf.ParsingLevel.Modres)
	applyBool(&opts.ParsingLevel.Ssbond, pf.ParsingLevel.Ssbond)
	applyBool(&opts.ParsingLevel.Master, pf.ParsingLevel.Master)

	return opts, nil
}

func applyBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func parseFormatName(s string) (Format, error) {
	switch s {
	case "pdb":
		return PDB, nil
	case "mmcif":
		return Mmcif, nil
	case "auto":
		return Auto, nil
	default:
		return Auto, fmt.Errorf("unrecognized format %q (want pdb, mmcif, or auto)", s)
	}
}

func parseStrictnessName(s string) (core.StrictnessLevel, error) {
	switch s {
	case "strict":
		return core.Strict, nil
	case "medium":
		return core.Medium, nil
	case "loose":
		return core.Loose, nil
	default:
		return core.Strict, fmt.Errorf("unrecognized strictness level %q (want strict, medium, or loose)", s)
	}
}
