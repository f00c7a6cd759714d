// Package core holds the value primitives and hierarchy entities shared by
// every reader, writer, and validator: Atom, Conformer, Residue, Chain,
// Model, PDB, plus the small value types (Element, TransformationMatrix,
// UnitCell, Symmetry, DatabaseReference) and the diagnostic/strictness
// machinery used to report problems found while parsing or serializing.
package core

import (
	"fmt"
	"strings"
)

// ErrorLevel ranks how serious a Diagnostic is. Levels are ordered from
// most to least severe; StrictnessLevel decides which ones are fatal.
type ErrorLevel int

const (
	BreakingError ErrorLevel = iota
	InvalidatingError
	StrictWarning
	LooseWarning
	GeneralWarning
)

func (l ErrorLevel) String() string {
	switch l {
	case BreakingError:
		return "breaking error"
	case InvalidatingError:
		return "invalidating error"
	case StrictWarning:
		return "strict warning"
	case LooseWarning:
		return "loose warning"
	case GeneralWarning:
		return "general warning"
	default:
		return "unknown level"
	}
}

// StrictnessLevel decides which ErrorLevels abort a parse or serialize
// operation.
type StrictnessLevel int

const (
	Strict StrictnessLevel = iota
	Medium
	Loose
)

func (s StrictnessLevel) String() string {
	switch s {
	case Strict:
		return "strict"
	case Medium:
		return "medium"
	case Loose:
		return "loose"
	default:
		return "unknown strictness"
	}
}

// IsError reports whether a diagnostic at level l aborts an operation run at
// strictness s.
func (s StrictnessLevel) IsError(l ErrorLevel) bool {
	switch s {
	case Strict:
		return true
	case Medium:
		return l != GeneralWarning
	case Loose:
		return l != GeneralWarning && l != LooseWarning
	default:
		return true
	}
}

// ErrorKind classifies the condition a Diagnostic reports.
type ErrorKind int

const (
	FileOpenFailed ErrorKind = iota
	ReadFailed
	LineTooShort
	UnknownRecord
	InvalidField
	InvalidIdentifier
	InvalidValue
	InvalidCharge
	RemarkTypeUnknown
	DanglingAnisotropic
	IncompleteMatrix
	MissingColumn
	LoopWidthMismatch
	UnclosedQuote
	UnterminatedTextField
	DataBlockNotOpened
	ReservedWord
	SeqresInconsistent
	SeqresSerialInvalid
	MasterChecksumMismatch
	ModresTargetMissing
	ModelMismatch
	AtomCorrespondenceMismatch
	TruncatedInput
)

func (k ErrorKind) String() string {
	names := [...]string{
		"FileOpenFailed", "ReadFailed", "LineTooShort", "UnknownRecord",
		"InvalidField", "InvalidIdentifier", "InvalidValue", "InvalidCharge",
		"RemarkTypeUnknown", "DanglingAnisotropic", "IncompleteMatrix",
		"MissingColumn", "LoopWidthMismatch", "UnclosedQuote",
		"UnterminatedTextField", "DataBlockNotOpened", "ReservedWord",
		"SeqresInconsistent", "SeqresSerialInvalid", "MasterChecksumMismatch",
		"ModresTargetMissing", "ModelMismatch", "AtomCorrespondenceMismatch",
		"TruncatedInput",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "UnknownErrorKind"
	}
	return names[k]
}

// Highlight marks one highlighted span within a RangeHighlights context:
// offset and length are byte offsets into the corresponding line.
type Highlight struct {
	LineOffset int
	Offset     int
	Length     int
}

// Context describes where in the source a Diagnostic occurred. The zero
// value is ContextNone.
type Context struct {
	kind contextKind

	line          string
	startLineno   int
	lines         []string
	offset        int
	length        int
	highlights    []Highlight
	subcontexts   []Context
}

type contextKind int

const (
	contextNone contextKind = iota
	contextShow
	contextFullLine
	contextLine
	contextRange
	contextRangeHighlights
	contextMultiple
)

// ContextNone is the empty Context.
var ContextNone = Context{kind: contextNone}

// ContextShow describes a context that is just a free-form line of text,
// with no associated line number (e.g. a single AST node in an mmCIF file).
func ContextShow(line string) Context {
	return Context{kind: contextShow, line: line}
}

// ContextFullLine attaches a whole source line with no highlighted span.
func ContextFullLine(lineno int, line string) Context {
	return Context{kind: contextFullLine, startLineno: lineno, line: line}
}

// ContextLine highlights a byte span within a single source line.
func ContextLine(lineno int, line string, offset, length int) Context {
	return Context{kind: contextLine, startLineno: lineno, line: line, offset: offset, length: length}
}

// ContextRange spans several consecutive source lines with a single
// highlighted column offset applied to all of them.
func ContextRange(startLineno int, lines []string, offset int) Context {
	return Context{kind: contextRange, startLineno: startLineno, lines: lines, offset: offset}
}

// ContextRangeHighlights spans several source lines, each with its own
// highlighted span (used by SEQRES-vs-observed mismatch reporting).
func ContextRangeHighlights(startLineno int, lines []string, highlights []Highlight) Context {
	return Context{kind: contextRangeHighlights, startLineno: startLineno, lines: lines, highlights: highlights}
}

// ContextMultiple bundles several independent contexts into one diagnostic.
func ContextMultiple(contexts []Context) Context {
	return Context{kind: contextMultiple, subcontexts: contexts}
}

// String renders the canonical three-line compiler-style diagnostic format.
func (c Context) String() string {
	var sb strings.Builder
	c.render(&sb)
	return sb.String()
}

func (c Context) render(sb *strings.Builder) {
	switch c.kind {
	case contextNone:
		return
	case contextShow:
		sb.WriteString(c.line)
		sb.WriteByte('\n')
	case contextFullLine:
		fmt.Fprintf(sb, "%6d | %s\n", c.startLineno, c.line)
	case contextLine:
		fmt.Fprintf(sb, "%6d | %s\n", c.startLineno, c.line)
		sb.WriteString("       | ")
		writeCarets(sb, c.offset, c.length)
		sb.WriteByte('\n')
	case contextRange:
		for i, line := range c.lines {
			fmt.Fprintf(sb, "%6d | %s\n", c.startLineno+i, line)
		}
		sb.WriteString("       | ")
		writeCarets(sb, c.offset, 1)
		sb.WriteByte('\n')
	case contextRangeHighlights:
		byLine := make(map[int][]Highlight)
		for _, h := range c.highlights {
			byLine[h.LineOffset] = append(byLine[h.LineOffset], h)
		}
		for i, line := range c.lines {
			fmt.Fprintf(sb, "%6d | %s\n", c.startLineno+i, line)
			if hs, ok := byLine[i]; ok {
				sb.WriteString("       | ")
				writeMultiCarets(sb, hs)
				sb.WriteByte('\n')
			}
		}
	case contextMultiple:
		for _, sub := range c.subcontexts {
			sub.render(sb)
		}
	}
}

func writeCarets(sb *strings.Builder, offset, length int) {
	if length < 1 {
		length = 1
	}
	sb.WriteString(strings.Repeat(" ", maxInt(offset, 0)))
	sb.WriteString(strings.Repeat("^", length))
}

func writeMultiCarets(sb *strings.Builder, hs []Highlight) {
	// hs is rendered left to right; positions must not overlap.
	pos := 0
	for _, h := range hs {
		if h.Offset > pos {
			sb.WriteString(strings.Repeat(" ", h.Offset-pos))
			pos = h.Offset
		}
		length := h.Length
		if length < 1 {
			length = 1
		}
		sb.WriteString(strings.Repeat("^", length))
		pos += length
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Diagnostic is a single accumulated problem report. It implements error so
// it can be returned, wrapped, or collected alongside ordinary Go errors.
type Diagnostic struct {
	Level   ErrorLevel
	Kind    ErrorKind
	Message string
	Ctx     Context
}

// NewDiagnostic builds a Diagnostic at the given level and kind.
func NewDiagnostic(level ErrorLevel, kind ErrorKind, message string, ctx Context) Diagnostic {
	return Diagnostic{Level: level, Kind: kind, Message: message, Ctx: ctx}
}

func (d Diagnostic) Error() string {
	ctx := d.Ctx.String()
	if ctx == "" {
		return fmt.Sprintf("%s: %s (%s)", d.Level, d.Message, d.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)\n%s", d.Level, d.Message, d.Kind, ctx)
}

// IsError reports whether this diagnostic aborts an operation at strictness
// s.
func (d Diagnostic) IsError(s StrictnessLevel) bool {
	return s.IsError(d.Level)
}

// Diagnostics is an accumulated, ordered (file order / AST-traversal order)
// set of Diagnostic values.
type Diagnostics []Diagnostic

// Push appends a diagnostic.
func (ds *Diagnostics) Push(d Diagnostic) {
	*ds = append(*ds, d)
}

// HasErrors reports whether any diagnostic aborts an operation at strictness
// s.
func (ds Diagnostics) HasErrors(s StrictnessLevel) bool {
	for _, d := range ds {
		if d.IsError(s) {
			return true
		}
	}
	return false
}
