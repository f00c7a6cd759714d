// Package options implements the Read/Write configuration layer (§6.3), the
// format-family auto-detection (§6.4), and an optional TOML-backed
// configuration profile, grounded on the teacher's internal/parser/toml
// package for the file format and on cmd/smf/main.go's per-command flag
// struct for the in-code shape.
package options

import (
	"path/filepath"
	"strings"

	"pdbtbx/internal/core"
)

// Format is the on-disk format family.
type Format int

const (
	Auto Format = iota
	PDB
	Mmcif
)

// ParsingLevel toggles which PDB record families are parsed at all (§6.3's
// "parsing_level" option). Every field defaults to true (parse everything)
// via NewParsingLevel.
type ParsingLevel struct {
	Header  bool
	Remark  bool
	Atoms   bool
	Hetatm  bool
	Anisou  bool
	Cryst   bool
	Matrices bool
	Model   bool
	Dbref   bool
	Seqres  bool
	Seqadv  bool
	Modres  bool
	Ssbond  bool
	Master  bool
}

// NewParsingLevel returns a ParsingLevel with every record family enabled.
func NewParsingLevel() ParsingLevel {
	return ParsingLevel{
		Header: true, Remark: true, Atoms: true, Hetatm: true, Anisou: true,
		Cryst: true, Matrices: true, Model: true, Dbref: true, Seqres: true,
		Seqadv: true, Modres: true, Ssbond: true, Master: true,
	}
}

// ReadOptions is the recognized-options table of §6.3 for parse operations.
type ReadOptions struct {
	Format            Format
	Level             core.StrictnessLevel
	Decompress        bool
	DiscardHydrogens  bool
	OnlyFirstModel    bool
	OnlyAtomicCoords  bool
	ParsingLevel      ParsingLevel
	CapitaliseChains  bool
	WrapResidueSerial bool // §9 open question: off by default
}

// NewReadOptions returns the default recognized options: Auto format,
// Strict level, every record family parsed, no hydrogen discarding.
func NewReadOptions() ReadOptions {
	return ReadOptions{
		Format:       Auto,
		Level:        core.Strict,
		ParsingLevel: NewParsingLevel(),
	}
}

// WriteOptions is the recognized-options table of §6.3 for serialize
// operations.
type WriteOptions struct {
	Format Format
	Level  core.StrictnessLevel
}

// NewWriteOptions returns the default recognized options: Auto format
// (resolved from the target filename by DetectFormat), Strict level.
func NewWriteOptions() WriteOptions {
	return WriteOptions{Format: Auto, Level: core.Strict}
}

// DetectFormat implements §6.4: recognize by extension, unwrapping one
// level of ".gz" first, defaulting to PDB when ambiguous.
func DetectFormat(filename string) (format Format, gzipped bool) {
	name := filename
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		gzipped = true
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".cif", ".mmcif":
		return Mmcif, gzipped
	case ".pdb", ".pdb1", ".pdbqt":
		return PDB, gzipped
	default:
		return PDB, gzipped
	}
}
