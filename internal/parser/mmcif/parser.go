package mmcif

import (
	"fmt"

	"pdbtbx/internal/core"
)

// tokenStream buffers one token of lookahead over a Lexer.
type tokenStream struct {
	lex     *Lexer
	peeked  *Token
	diags   *core.Diagnostics
}

func (ts *tokenStream) peek() Token {
	if ts.peeked == nil {
		tok, err := ts.lex.Next()
		if err != nil {
			line := 0
			if le, ok := err.(*LexError); ok {
				line = le.Pos.Line
			}
			ts.diags.Push(core.NewDiagnostic(core.BreakingError, lexErrorKind(err),
				err.Error(), core.ContextShow(fmt.Sprintf("line %d", line))))
			tok = Token{Kind: TokEOF}
		}
		ts.peeked = &tok
	}
	return *ts.peeked
}

func (ts *tokenStream) take() Token {
	t := ts.peek()
	ts.peeked = nil
	return t
}

func lexErrorKind(err error) core.ErrorKind {
	if _, ok := err.(*LexError); ok {
		return core.UnterminatedTextField
	}
	return core.ReadFailed
}

// ParseDocument tokenizes and parses a full mmCIF source string into a
// Document, per the grammar of §4.6: zero or more data blocks, each holding
// an interleaved sequence of key-value pairs, loops, and save frames.
func ParseDocument(src string) (*Document, core.Diagnostics, error) {
	var diags core.Diagnostics
	ts := &tokenStream{lex: NewLexer(src), diags: &diags}

	doc := &Document{}
	for {
		tok := ts.peek()
		if tok.Kind == TokEOF {
			break
		}
		if tok.Kind != TokDataBlock {
			diags.Push(core.NewDiagnostic(core.BreakingError, core.DataBlockNotOpened,
				"expected a data_ block before any other content",
				core.ContextShow(fmt.Sprintf("line %d: %q", tok.Pos.Line, tok.Text))))
			ts.take()
			continue
		}
		ts.take()
		block := parseBlockBody(ts, tok.Text, false, &diags)
		doc.Blocks = append(doc.Blocks, block)
	}

	if diags.HasErrors(core.Strict) {
		return doc, diags, fmt.Errorf("mmcif parse produced diagnostics")
	}
	return doc, diags, nil
}

// parseBlockBody consumes pairs, loops, and (for data blocks only) nested
// save frames until the next data_ block, the matching save_ terminator (if
// isSaveFrame), or EOF.
func parseBlockBody(ts *tokenStream, name string, isSaveFrame bool, diags *core.Diagnostics) Block {
	b := Block{Name: name, IsSaveFrame: isSaveFrame}
	for {
		tok := ts.peek()
		switch tok.Kind {
		case TokEOF, TokDataBlock:
			return b
		case TokSaveEnd:
			if isSaveFrame {
				ts.take()
				return b
			}
			diags.Push(core.NewDiagnostic(core.StrictWarning, core.ReservedWord,
				"unexpected save_ terminator outside a save frame",
				core.ContextShow(fmt.Sprintf("line %d", tok.Pos.Line))))
			ts.take()
		case TokSaveBegin:
			if isSaveFrame {
				// Save frames do not nest: close this frame and let the
				// enclosing data block read the new one as a sibling.
				diags.Push(core.NewDiagnostic(core.StrictWarning, core.ReservedWord,
					"save_ frame opened inside another save frame",
					core.ContextShow(fmt.Sprintf("line %d", tok.Pos.Line))))
				return b
			}
			ts.take()
			nested := parseBlockBody(ts, tok.Text, true, diags)
			b.SaveFrames = append(b.SaveFrames, nested)
		case TokLoop:
			ts.take()
			lp := parseLoop(ts, tok.Pos, diags)
			b.Loops = append(b.Loops, lp)
		case TokTag:
			ts.take()
			val := ts.take()
			if val.Kind != TokValue {
				diags.Push(core.NewDiagnostic(core.BreakingError, core.MissingColumn,
					fmt.Sprintf("tag %s has no value", tok.Text),
					core.ContextShow(fmt.Sprintf("line %d", tok.Pos.Line))))
				continue
			}
			b.Pairs = append(b.Pairs, keyValueOf(tok.Text, val))
		default:
			diags.Push(core.NewDiagnostic(core.StrictWarning, core.ReservedWord,
				fmt.Sprintf("unexpected token %q", tok.Text),
				core.ContextShow(fmt.Sprintf("line %d", tok.Pos.Line))))
			ts.take()
		}
	}
}

func parseLoop(ts *tokenStream, pos FilePosition, diags *core.Diagnostics) Loop {
	lp := Loop{Pos: pos}
	for ts.peek().Kind == TokTag {
		lp.Tags = append(lp.Tags, ts.take().Text)
	}
	if len(lp.Tags) == 0 {
		diags.Push(core.NewDiagnostic(core.BreakingError, core.MissingColumn,
			"loop_ declares no tags", core.ContextShow(fmt.Sprintf("line %d", pos.Line))))
		return lp
	}
	var cur []KeyValue
	for ts.peek().Kind == TokValue {
		tok := ts.take()
		cur = append(cur, keyValueOf(lp.Tags[len(cur)], tok))
		if len(cur) == len(lp.Tags) {
			lp.Rows = append(lp.Rows, cur)
			cur = nil
		}
	}
	if len(cur) != 0 {
		diags.Push(core.NewDiagnostic(core.BreakingError, core.LoopWidthMismatch,
			fmt.Sprintf("loop_ row has %d value(s), expected a multiple of %d", len(cur), len(lp.Tags)),
			core.ContextShow(fmt.Sprintf("line %d", pos.Line))))
	}
	return lp
}

func keyValueOf(tag string, tok Token) KeyValue {
	kv := KeyValue{Tag: tag, Value: tok.Text, Pos: tok.Pos}
	if tok.Text == "." {
		kv.IsDot = true
	} else if tok.Text == "?" {
		kv.IsQuestion = true
	}
	return kv
}
