package pdb

// serialOverflow tracks the running atom-serial overflow correction for one
// chain: real PDB files wrap atom serials past 99999 back to 0 (or to a
// small number) within the same file. §4.5 mandates detecting the
// descending transition and adding 100000 to every subsequent atom's serial
// within the same chain; §9's open question makes the analogous residue
// wrap optional and, per this module's choice, off by default.
type serialOverflow struct {
	lastRaw uint64
	offset  uint64
	seen    bool
}

// corrected returns the corrected serial for a newly read raw atom serial
// on this chain, updating internal state for the next call.
func (o *serialOverflow) corrected(raw uint64) uint64 {
	if o.seen && raw < o.lastRaw {
		o.offset += 100000
	}
	o.lastRaw = raw
	o.seen = true
	return raw + o.offset
}

// residueOverflow is the optional, off-by-default residue-serial analogue.
type residueOverflow struct {
	lastRaw int64
	offset  int64
	seen    bool
}

func (o *residueOverflow) corrected(raw int64, enabled bool) int64 {
	if !enabled {
		return raw
	}
	if o.seen && raw < o.lastRaw {
		o.offset += 10000
	}
	o.lastRaw = raw
	o.seen = true
	return raw + o.offset
}
