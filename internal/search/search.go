// Package search implements the composable predicate tree (§4.4) pushed
// down the hierarchy during traversal: leaves are Terms, decidable at some
// subset of hierarchy levels; nodes are {And, Or, Xor, Not}. Evaluation
// rewrites the whole tree at each level using each Term's OptionalMatch,
// then algebraically simplifies, pruning branches that resolve to
// Known(false) before any deeper traversal happens.
package search

import (
	"pdbtbx/internal/core"
	"pdbtbx/internal/cursor"
)

// Level identifies which hierarchy level is currently being evaluated.
type Level int

const (
	LevelModel Level = iota
	LevelChain
	LevelResidue
	LevelConformer
	LevelAtom
)

// LevelContext carries whatever ancestors are known at the current level of
// traversal; fields beyond the current level are nil.
type LevelContext struct {
	Level     Level
	Model     *core.Model
	Chain     *core.Chain
	Residue   *core.Residue
	Conformer *core.Conformer
	Atom      *core.Atom
}

// Term is a leaf predicate. OptionalMatch returns (true|false, true) if the
// term is decidable using only the ancestors present at ctx.Level, or
// (_, false) if it needs a deeper level.
type Term interface {
	OptionalMatch(ctx LevelContext) (matched bool, decided bool)
}

// Expr is a node in the search expression tree.
type Expr interface {
	// reduce rewrites the expression using each term's OptionalMatch at
	// ctx.Level, then algebraically simplifies away any subtree that
	// becomes fully decided.
	reduce(ctx LevelContext) Expr
}

// known is a fully decided boolean literal; it is the fixed point of
// reduce.
type known bool

func (k known) reduce(LevelContext) Expr { return k }

// Known builds an already-decided expression. Exposed so callers can build
// trivial always-match / never-match expressions.
func Known(b bool) Expr { return known(b) }

// TermExpr wraps a single Term as a leaf expression node.
type TermExpr struct{ T Term }

func (e TermExpr) reduce(ctx LevelContext) Expr {
	if b, ok := e.T.OptionalMatch(ctx); ok {
		return known(b)
	}
	return e
}

// And is the conjunction of its children.
type And []Expr

func (e And) reduce(ctx LevelContext) Expr {
	out := make(And, 0, len(e))
	for _, child := range e {
		r := child.reduce(ctx)
		if k, ok := r.(known); ok {
			if !bool(k) {
				return known(false) // Known(false) is absorbing for And
			}
			continue // Known(true) drops out of a conjunction
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return known(true)
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// Or is the disjunction of its children.
type Or []Expr

func (e Or) reduce(ctx LevelContext) Expr {
	out := make(Or, 0, len(e))
	for _, child := range e {
		r := child.reduce(ctx)
		if k, ok := r.(known); ok {
			if bool(k) {
				return known(true) // Known(true) is absorbing for Or
			}
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return known(false)
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// Xor is the exclusive-or of its two children.
type Xor [2]Expr

func (e Xor) reduce(ctx LevelContext) Expr {
	l := e[0].reduce(ctx)
	r := e[1].reduce(ctx)
	lk, lok := l.(known)
	rk, rok := r.(known)
	switch {
	case lok && rok:
		return known(bool(lk) != bool(rk))
	default:
		return Xor{l, r}
	}
}

// Not negates its single child.
type Not struct{ Child Expr }

func (e Not) reduce(ctx LevelContext) Expr {
	r := e.Child.reduce(ctx)
	if k, ok := r.(known); ok {
		return known(!bool(k))
	}
	return Not{Child: r}
}

// Find returns every atom (as a full-ancestry cursor) for which expr
// evaluates true, pruning non-matching branches as early as the tree
// allows.
func Find(pdb *core.PDB, expr Expr) []cursor.AtomWithModel {
	var out []cursor.AtomWithModel
	for _, m := range pdb.Models() {
		modelExpr := expr.reduce(LevelContext{Level: LevelModel, Model: m})
		if k, ok := modelExpr.(known); ok && !bool(k) {
			continue
		}
		for _, ch := range m.Chains() {
			chainExpr := modelExpr.reduce(LevelContext{Level: LevelChain, Model: m, Chain: ch})
			if k, ok := chainExpr.(known); ok && !bool(k) {
				continue
			}
			for _, r := range ch.Residues() {
				residueExpr := chainExpr.reduce(LevelContext{Level: LevelResidue, Model: m, Chain: ch, Residue: r})
				if k, ok := residueExpr.(known); ok && !bool(k) {
					continue
				}
				for _, conf := range r.Conformers() {
					conformerExpr := residueExpr.reduce(LevelContext{Level: LevelConformer, Model: m, Chain: ch, Residue: r, Conformer: conf})
					if k, ok := conformerExpr.(known); ok && !bool(k) {
						continue
					}
					for _, a := range conf.Atoms() {
						atomExpr := conformerExpr.reduce(LevelContext{Level: LevelAtom, Model: m, Chain: ch, Residue: r, Conformer: conf, Atom: a})
						if k, ok := atomExpr.(known); ok && bool(k) {
							out = append(out, cursor.AtomWithModel{Atom: a, Conformer: conf, Residue: r, Chain: ch, Model: m})
						}
					}
				}
			}
		}
	}
	return out
}
