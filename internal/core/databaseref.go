package core

// SequencePosition is a residue position in some numbering scheme, with an
// optional insertion code, used both for in-file and database coordinates.
type SequencePosition struct {
	Start        int
	StartInsert  *byte
	End          int
	EndInsert    *byte
}

// SequenceDifference records one SEQADV-style discrepancy between the
// observed sequence and the external database sequence.
type SequenceDifference struct {
	DatabaseResidueName string
	SeqNum              int
	InsertionCode       *byte
	DatabaseSeqNum      int
	Comment             string
}

// DatabaseReference cross-references a chain to an external sequence
// database (e.g. UniProt, GenBank).
type DatabaseReference struct {
	Database       string
	DatabaseAccession string
	DatabaseIDCode string
	SeqInFile      SequencePosition
	SeqInDatabase  SequencePosition
	Differences    []SequenceDifference
}

// AddDifference appends a SequenceDifference.
func (d *DatabaseReference) AddDifference(diff SequenceDifference) {
	d.Differences = append(d.Differences, diff)
}
