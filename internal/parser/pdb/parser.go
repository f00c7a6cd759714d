package pdb

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"pdbtbx/internal/core"
	"pdbtbx/internal/options"
)

// Parse reads a PDB-format stream and builds a *core.PDB, dispatching each
// line by its six-column record name per §4.5.
func Parse(r io.Reader, opts options.ReadOptions) (*core.PDB, core.Diagnostics, error) {
	st := newParseState(opts)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if st.opts.OnlyFirstModel && st.sawEndOfFirstModel {
			break
		}
		st.dispatch(lineno, line)
	}
	if err := scanner.Err(); err != nil {
		return st.pdb, st.diags, fmt.Errorf("read pdb stream: %w", err)
	}

	st.finish()

	if st.diags.HasErrors(opts.Level) {
		return st.pdb, st.diags, fmt.Errorf("pdb parse produced diagnostics at or above strictness %s", opts.Level)
	}
	return st.pdb, st.diags, nil
}

type parseState struct {
	opts  options.ReadOptions
	pdb   *core.PDB
	diags core.Diagnostics

	curModel           *core.Model
	sawModelRecord     bool
	sawEndOfFirstModel bool

	atomOverflow    map[string]*serialOverflow
	residueOverflow map[string]*residueOverflow

	lastAtom *core.Atom

	scale matrixBuilder
	origx matrixBuilder
	ncs   map[int]*ncsBuilder
	ncsOrder []int

	seqres []seqresEntry
	modres []modresEntry
	seqadv []seqadvEntry
	dbrefHalf *dbref1Half

	master     *masterCounts
	masterLine int
	masterText string
	terCount   int
}

func newParseState(opts options.ReadOptions) *parseState {
	return &parseState{
		opts:            opts,
		pdb:             core.NewPDB(),
		atomOverflow:    make(map[string]*serialOverflow),
		residueOverflow: make(map[string]*residueOverflow),
		ncs:             make(map[int]*ncsBuilder),
	}
}

func (st *parseState) warn(level core.ErrorLevel, kind core.ErrorKind, lineno int, line string, msg string) {
	st.diags.Push(core.NewDiagnostic(level, kind, msg, core.ContextFullLine(lineno, line)))
}

func (st *parseState) ensureModel() *core.Model {
	if st.curModel == nil {
		st.curModel = core.NewModel(0)
		st.pdb.AddModel(st.curModel)
	}
	return st.curModel
}

func (st *parseState) dispatch(lineno int, line string) {
	kind := strings.TrimRight(recordKind(line), " ")
	level := &st.opts.ParsingLevel

	switch kind {
	case "ATOM", "HETATM":
		if level.Atoms && (kind == "ATOM" || level.Hetatm) {
			st.parseAtomLine(lineno, line, kind == "HETATM")
		}
	case "ANISOU":
		if level.Anisou {
			st.parseAnisouLine(lineno, line)
		}
	case "HEADER":
		if level.Header {
			st.parseHeaderLine(line)
		}
	case "REMARK":
		if level.Remark {
			st.parseRemarkLine(lineno, line)
		}
	case "CRYST1":
		if level.Cryst {
			st.parseCryst1Line(lineno, line)
		}
	case "SCALE1", "SCALE2", "SCALE3":
		if level.Matrices {
			st.parseScaleLine(lineno, line, kind)
		}
	case "ORIGX1", "ORIGX2", "ORIGX3":
		if level.Matrices {
			st.parseOrigxLine(lineno, line, kind)
		}
	case "MTRIX1", "MTRIX2", "MTRIX3":
		if level.Matrices {
			st.parseMtrixLine(lineno, line, kind)
		}
	case "MODEL":
		if level.Model {
			st.parseModelLine(lineno, line)
		}
	case "ENDMDL":
		if level.Model {
			st.curModel = nil
			st.sawEndOfFirstModel = true
		}
	case "TER":
		// no hierarchy effect: chain boundaries are already derived from
		// chain identifiers, not from TER placement.
		st.terCount++
	case "END":
		// no-op: EOF already ends the stream.
	case "MASTER":
		if level.Master {
			st.parseMasterLine(lineno, line)
		}
	case "DBREF":
		if level.Dbref {
			st.parseDbrefLine(lineno, line)
		}
	case "DBREF1":
		if level.Dbref {
			st.parseDbref1Line(lineno, line)
		}
	case "DBREF2":
		if level.Dbref {
			st.parseDbref2Line(lineno, line)
		}
	case "SEQRES":
		if level.Seqres {
			st.parseSeqresLine(lineno, line)
		}
	case "SEQADV":
		if level.Seqadv {
			st.parseSeqadvLine(lineno, line)
		}
	case "MODRES":
		if level.Modres {
			st.parseModresLine(lineno, line)
		}
	case "SSBOND":
		if level.Ssbond {
			st.parseSsbondLine(lineno, line)
		}
	case "":
		// blank line, ignored
	default:
		st.warn(core.GeneralWarning, core.UnknownRecord, lineno, line, "unrecognized record type "+kind)
	}
}

func (st *parseState) finish() {
	if st.scale.complete() {
		if m, err := st.scale.build(); err == nil {
			st.pdb.Scale = &m
		} else {
			st.warn(core.StrictWarning, core.IncompleteMatrix, 0, "", "SCALEn matrix: "+err.Error())
		}
	} else if st.scale.set[0] || st.scale.set[1] || st.scale.set[2] {
		st.diags.Push(core.NewDiagnostic(core.StrictWarning, core.IncompleteMatrix,
			"SCALEn records present but incomplete", core.ContextNone))
	}
	if st.origx.complete() {
		if m, err := st.origx.build(); err == nil {
			st.pdb.OrigX = &m
		} else {
			st.warn(core.StrictWarning, core.IncompleteMatrix, 0, "", "ORIGXn matrix: "+err.Error())
		}
	} else if st.origx.set[0] || st.origx.set[1] || st.origx.set[2] {
		st.diags.Push(core.NewDiagnostic(core.StrictWarning, core.IncompleteMatrix,
			"ORIGXn records present but incomplete", core.ContextNone))
	}
	for _, serial := range st.ncsOrder {
		b := st.ncs[serial]
		if !b.complete() {
			st.diags.Push(core.NewDiagnostic(core.StrictWarning, core.IncompleteMatrix,
				fmt.Sprintf("MTRIXn serial %d incomplete", serial), core.ContextNone))
			continue
		}
		m, err := b.build()
		if err != nil {
			st.diags.Push(core.NewDiagnostic(core.StrictWarning, core.IncompleteMatrix,
				fmt.Sprintf("MTRIXn serial %d: %s", serial, err), core.ContextNone))
			continue
		}
		st.pdb.NCSTransforms = append(st.pdb.NCSTransforms, core.NCSTransform{
			Serial: b.serial, Given: b.given, Matrix: m,
		})
	}

	applyModres(st.pdb, st.modres, &st.diags)
	reconcileSeqres(st.pdb, st.seqres, &st.diags)
	reshuffleBlankAltLoc(st.pdb)
	if st.master != nil {
		verifyMaster(st.pdb, *st.master, st.masterLine, st.masterText, &st.diags)
	}
}

func (st *parseState) parseAtomLine(lineno int, line string, hetero bool) {
	if len(line) < 54 {
		st.warn(core.BreakingError, core.LineTooShort, lineno, line, "ATOM/HETATM record shorter than required coordinate columns")
		return
	}
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}

	rawSerial := lc.parseUint(7, 11, 0)
	name := trimmedField(line, 13, 16)
	altLoc := lc.parseOptionalChar(17, 17)
	resName := trimmedField(line, 18, 20)
	chainID := trimmedField(line, 22, 22)
	rawResSeq := lc.parseInt(23, 26, 0)
	iCode := lc.parseOptionalChar(27, 27)
	x := lc.parseFloat(31, 38, 0)
	y := lc.parseFloat(39, 46, 0)
	z := lc.parseFloat(47, 54, 0)
	occupancy := lc.parseFloat(55, 60, 1.0)
	bFactor := lc.parseFloat(61, 66, 0.0)
	elementSym := trimmedField(line, 77, 78)
	charge := lc.parseCharge(79, 80)

	if st.opts.DiscardHydrogens {
		elem, ok := resolveElement(elementSym, name)
		if ok && elem.Symbol() == "H" {
			return
		}
	}
	if st.opts.OnlyAtomicCoords && hetero {
		return
	}

	serialTrk := st.overflowFor(chainID)
	serial := serialTrk.corrected(rawSerial)

	residueTrk := st.residueOverflowFor(chainID)
	resSeq := residueTrk.corrected(rawResSeq, st.opts.WrapResidueSerial)

	atom, err := core.NewAtom(hetero, serial, name, x, y, z)
	if err != nil {
		st.warn(core.InvalidatingError, core.InvalidValue, lineno, line, "invalid atom: "+err.Error())
		return
	}
	_ = atom.SetOccupancy(occupancy)
	_ = atom.SetBFactor(bFactor)
	atom.SetCharge(charge)
	if elem, ok := resolveElement(elementSym, name); ok {
		atom.SetElement(elem)
	}

	effectiveChainID := chainID
	if st.opts.CapitaliseChains {
		effectiveChainID = strings.ToUpper(chainID)
	}

	model := st.ensureModel()
	err = model.AddAtom(atom, core.AddAtomOptions{
		ChainID:       effectiveChainID,
		ResidueSerial: resSeq,
		InsertionCode: iCode,
		ConformerName: resName,
		AltLoc:        altLoc,
	})
	if err != nil {
		st.warn(core.InvalidatingError, core.InvalidValue, lineno, line, "could not place atom: "+err.Error())
		return
	}
	st.lastAtom = atom
}

func resolveElement(symbol, atomName string) (core.Element, bool) {
	if symbol != "" {
		if e, ok := core.ElementBySymbol(symbol); ok {
			return e, true
		}
	}
	return core.InferElementFromAtomName(atomName)
}

func (st *parseState) overflowFor(chainID string) *serialOverflow {
	o, ok := st.atomOverflow[chainID]
	if !ok {
		o = &serialOverflow{}
		st.atomOverflow[chainID] = o
	}
	return o
}

func (st *parseState) residueOverflowFor(chainID string) *residueOverflow {
	o, ok := st.residueOverflow[chainID]
	if !ok {
		o = &residueOverflow{}
		st.residueOverflow[chainID] = o
	}
	return o
}

func (st *parseState) parseAnisouLine(lineno int, line string) {
	if len(line) < 70 {
		st.warn(core.StrictWarning, core.LineTooShort, lineno, line, "ANISOU record shorter than required columns")
		return
	}
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	rawSerial := lc.parseUint(7, 11, 0)
	chainID := trimmedField(line, 22, 22)
	serial := st.overflowFor(chainID).lastRawMapped(rawSerial)

	atom := st.lastAtom
	if atom == nil || atom.SerialNumber() != serial {
		st.warn(core.StrictWarning, core.DanglingAnisotropic, lineno, line,
			"ANISOU does not immediately follow the ATOM/HETATM record with the same serial number")
		return
	}
	u := func(start, end int) float64 { return lc.parseFloat(start, end, 0) / 10000.0 }
	_ = atom.SetAnisotropic(core.AnisotropicFactors{
		U11: u(29, 35), U22: u(36, 42), U33: u(43, 49),
		U12: u(50, 56), U13: u(57, 63), U23: u(64, 70),
	})
}

func (st *parseState) parseHeaderLine(line string) {
	if len(line) >= 50 {
		st.pdb.Classification = strings.TrimSpace(field(line, 11, 50))
	}
	if len(line) >= 59 {
		st.pdb.DepositionDate = strings.TrimSpace(field(line, 51, 59))
	}
	if len(line) >= 66 {
		id := strings.TrimSpace(field(line, 63, 66))
		if id != "" {
			st.pdb.Identifier = &id
		}
	}
}

func (st *parseState) parseRemarkLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	num := int(lc.parseUint(8, 10, 0))
	text := ""
	if len(line) > 11 {
		text = strings.TrimRight(line[11:], " ")
	}
	st.pdb.Remarks = append(st.pdb.Remarks, core.Remark{Number: num, Text: text})
}

func (st *parseState) parseCryst1Line(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	a := lc.parseFloat(7, 15, 1)
	b := lc.parseFloat(16, 24, 1)
	c := lc.parseFloat(25, 33, 1)
	alpha := lc.parseFloat(34, 40, 90)
	beta := lc.parseFloat(41, 47, 90)
	gamma := lc.parseFloat(48, 54, 90)
	sGroup := trimmedField(line, 56, 66)

	cell, err := core.NewUnitCell(a, b, c, alpha, beta, gamma)
	if err != nil {
		st.warn(core.InvalidatingError, core.InvalidValue, lineno, line, "CRYST1: "+err.Error())
		return
	}
	st.pdb.UnitCell = &cell

	if sGroup != "" {
		if sym, ok := core.SymmetryFromHermannMauguin(sGroup); ok {
			st.pdb.Symmetry = &sym
		} else {
			st.warn(core.LooseWarning, core.InvalidValue, lineno, line, "CRYST1: unrecognized space group symbol "+strings.TrimSpace(sGroup))
		}
	}
}

func (st *parseState) parseScaleLine(lineno int, line string, kind string) {
	st.accumulateMatrixRow(&st.scale, lineno, line, kind[len(kind)-1]-'0')
}

func (st *parseState) parseOrigxLine(lineno int, line string, kind string) {
	st.accumulateMatrixRow(&st.origx, lineno, line, kind[len(kind)-1]-'0')
}

func (st *parseState) accumulateMatrixRow(b *matrixBuilder, lineno int, line string, n byte) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	row := [4]float64{
		lc.parseFloat(11, 20, 0),
		lc.parseFloat(21, 30, 0),
		lc.parseFloat(31, 40, 0),
		lc.parseFloat(46, 55, 0),
	}
	b.setRow(int(n), row)
}

func (st *parseState) parseMtrixLine(lineno int, line string, kind string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	n := int(kind[len(kind)-1] - '0')
	serial := int(lc.parseUint(8, 10, 0))
	row := [4]float64{
		lc.parseFloat(11, 20, 0),
		lc.parseFloat(21, 30, 0),
		lc.parseFloat(31, 40, 0),
		lc.parseFloat(46, 55, 0),
	}
	given := trimmedField(line, 60, 60) == "1"

	b, ok := st.ncs[serial]
	if !ok {
		b = &ncsBuilder{serial: serial}
		st.ncs[serial] = b
		st.ncsOrder = append(st.ncsOrder, serial)
	}
	b.setRow(n, row)
	if given {
		b.given = true
	}
}

func (st *parseState) parseModelLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	serial := uint32(lc.parseUint(11, 14, 0))
	st.curModel = st.pdb.EnsureModel(serial)
	st.sawModelRecord = true
}

func (st *parseState) parseMasterLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	st.master = &masterCounts{
		NumRemark: int(lc.parseUint(11, 15, 0)),
		NumHet:    int(lc.parseUint(21, 25, 0)),
		NumHelix:  int(lc.parseUint(26, 30, 0)),
		NumSheet:  int(lc.parseUint(31, 35, 0)),
		NumTurn:   int(lc.parseUint(36, 40, 0)),
		NumSite:   int(lc.parseUint(41, 45, 0)),
		NumXform:  int(lc.parseUint(46, 50, 0)),
		NumCoord:  int(lc.parseUint(51, 55, 0)),
		NumTer:    int(lc.parseUint(56, 60, 0)),
		NumConect: int(lc.parseUint(61, 65, 0)),
		NumSeq:    int(lc.parseUint(66, 70, 0)),
	}
	st.masterLine = lineno
	st.masterText = line
}

func (st *parseState) parseDbrefLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	chainID := trimmedField(line, 13, 13)
	ref := &core.DatabaseReference{
		Database:          trimmedField(line, 27, 32),
		DatabaseAccession: trimmedField(line, 34, 41),
		DatabaseIDCode:    trimmedField(line, 43, 54),
		SeqInFile: core.SequencePosition{
			Start:       int(lc.parseInt(15, 18, 0)),
			StartInsert: lc.parseOptionalChar(19, 19),
			End:         int(lc.parseInt(21, 24, 0)),
			EndInsert:   lc.parseOptionalChar(25, 25),
		},
		SeqInDatabase: core.SequencePosition{
			Start:       int(lc.parseInt(56, 60, 0)),
			StartInsert: lc.parseOptionalChar(61, 61),
			End:         int(lc.parseInt(63, 67, 0)),
			EndInsert:   lc.parseOptionalChar(68, 68),
		},
	}
	st.attachDatabaseReference(chainID, ref)
}

// dbref1Half buffers a DBREF1 record until its paired DBREF2 arrives.
type dbref1Half struct {
	chainID  string
	seqBegin int
	insBegin *byte
	seqEnd   int
	insEnd   *byte
	database string
	dbIDCode string
}

func (st *parseState) parseDbref1Line(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	st.dbrefHalf = &dbref1Half{
		chainID:  trimmedField(line, 13, 13),
		seqBegin: int(lc.parseInt(15, 18, 0)),
		insBegin: lc.parseOptionalChar(19, 19),
		seqEnd:   int(lc.parseInt(21, 24, 0)),
		insEnd:   lc.parseOptionalChar(25, 25),
		database: trimmedField(line, 27, 32),
		dbIDCode: trimmedField(line, 48, 67),
	}
}

func (st *parseState) parseDbref2Line(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	if st.dbrefHalf == nil {
		st.warn(core.StrictWarning, core.InvalidValue, lineno, line, "DBREF2 record with no preceding DBREF1")
		return
	}
	half := st.dbrefHalf
	st.dbrefHalf = nil
	ref := &core.DatabaseReference{
		Database:          half.database,
		DatabaseAccession: trimmedField(line, 19, 40),
		DatabaseIDCode:    half.dbIDCode,
		SeqInFile: core.SequencePosition{
			Start:       half.seqBegin,
			StartInsert: half.insBegin,
			End:         half.seqEnd,
			EndInsert:   half.insEnd,
		},
		SeqInDatabase: core.SequencePosition{
			Start: int(lc.parseInt(46, 55, 0)),
			End:   int(lc.parseInt(58, 67, 0)),
		},
	}
	st.attachDatabaseReference(half.chainID, ref)
}

func (st *parseState) attachDatabaseReference(chainID string, ref *core.DatabaseReference) {
	for _, m := range st.pdb.Models() {
		chain := m.FindChainByID(chainID)
		if chain == nil {
			var err error
			chain, err = core.NewChain(chainID)
			if err != nil {
				continue
			}
			m.AddChain(chain)
		}
		chain.SetDatabaseReference(ref)
	}
	if len(st.pdb.Models()) == 0 {
		model := st.ensureModel()
		chain, err := core.NewChain(chainID)
		if err == nil {
			chain.SetDatabaseReference(ref)
			model.AddChain(chain)
		}
	}
}

type seqresEntry struct {
	Lineno   int
	Line     string
	ChainID  string
	Serial   int
	NumRes   int
	ResNames []string
}

func (st *parseState) parseSeqresLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	entry := seqresEntry{
		Lineno:  lineno,
		Line:    line,
		Serial:  int(lc.parseUint(8, 10, 0)),
		ChainID: trimmedField(line, 12, 12),
		NumRes:  int(lc.parseUint(14, 17, 0)),
	}
	col := 19
	for i := 0; i < 13; i++ {
		name := trimmedField(line, col, col+2)
		if name != "" {
			entry.ResNames = append(entry.ResNames, name)
		}
		col += 4
	}
	st.seqres = append(st.seqres, entry)
}

type seqadvEntry struct {
	ChainID       string
	SeqNum        int64
	InsertionCode *byte
	ResName       string
	Database      string
	DbAccession   string
	DbRes         string
	DbSeq         int
	Comment       string
}

func (st *parseState) parseSeqadvLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	entry := seqadvEntry{
		ResName:       trimmedField(line, 13, 15),
		ChainID:       trimmedField(line, 17, 17),
		SeqNum:        lc.parseInt(19, 22, 0),
		InsertionCode: lc.parseOptionalChar(23, 23),
		Database:      trimmedField(line, 25, 28),
		DbAccession:   trimmedField(line, 30, 38),
		DbRes:         trimmedField(line, 40, 42),
		DbSeq:         int(lc.parseInt(44, 48, 0)),
		Comment:       strings.TrimRight(field(line, 50, 70), " "),
	}
	st.seqadv = append(st.seqadv, entry)

	for _, m := range st.pdb.Models() {
		chain := m.FindChainByID(entry.ChainID)
		if chain == nil || chain.DatabaseReference() == nil {
			continue
		}
		chain.DatabaseReference().AddDifference(core.SequenceDifference{
			DatabaseResidueName: entry.DbRes,
			SeqNum:              int(entry.SeqNum),
			InsertionCode:       entry.InsertionCode,
			DatabaseSeqNum:      entry.DbSeq,
			Comment:             entry.Comment,
		})
	}
}

type modresEntry struct {
	ChainID       string
	SeqNum        int64
	InsertionCode *byte
	ResName       string
	StdRes        string
	Comment       string
}

func (st *parseState) parseModresLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	st.modres = append(st.modres, modresEntry{
		ResName:       trimmedField(line, 13, 15),
		ChainID:       trimmedField(line, 17, 17),
		SeqNum:        lc.parseInt(19, 22, 0),
		InsertionCode: lc.parseOptionalChar(23, 23),
		StdRes:        trimmedField(line, 25, 27),
		Comment:       strings.TrimRight(field(line, 30, 70), " "),
	})
}

func (st *parseState) parseSsbondLine(lineno int, line string) {
	lc := &lineCtx{lineno: lineno, line: line, diags: &st.diags}
	st.pdb.SSBonds = append(st.pdb.SSBonds, core.DisulfideBond{
		SerialNumber:   int(lc.parseUint(8, 10, 0)),
		ChainID1:       trimmedField(line, 16, 16),
		SeqNum1:        lc.parseInt(18, 21, 0),
		InsertionCode1: lc.parseOptionalChar(22, 22),
		ChainID2:       trimmedField(line, 30, 30),
		SeqNum2:        lc.parseInt(32, 35, 0),
		InsertionCode2: lc.parseOptionalChar(36, 36),
	})
}

// lastRawMapped maps a raw (uncorrected) serial observed on an ANISOU record
// to the corrected serial assigned to the ATOM record with the same raw
// value, without itself advancing the overflow tracker (ANISOU must reuse,
// never re-derive, the correction already applied to its ATOM).
func (o *serialOverflow) lastRawMapped(raw uint64) uint64 {
	return raw + o.offset
}
