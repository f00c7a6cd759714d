// Package pdb implements the column-exact PDB record lexer and the
// incremental tree-building parser described in spec §4.5.
package pdb

import "strings"

// field extracts 1-based inclusive columns [start, end] from line, the way
// every PDB record layout is documented. Short lines return "" rather than
// panicking; this is what lets "short lines accept trailing fields as their
// documented defaults" (§4.5) happen for free at the call site.
func field(line string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if len(line) < start {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start-1 : end]
}

// trimmedField is field() with surrounding ASCII whitespace trimmed, the
// normalization every numeric/text field parse starts from (§4.5 "Field
// parsing").
func trimmedField(line string, start, end int) string {
	return strings.TrimSpace(field(line, start, end))
}

// recordKind is the first six columns, the record type discriminator.
func recordKind(line string) string {
	return field(line, 1, 6)
}
