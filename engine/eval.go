/*
Package engine implements the evaluator (spec.md §4.2), the unordered
combinators (§4.3), the rule dispatcher (§4.4), the result-processor
pipeline wiring, and the top-level driver (§4.8).

The recursive-descent shape follows the teacher's own term evaluator in
terex/eval.go (Eval/evalList/evalAtom dispatch on a tagged Element), adapted
from "evaluate a Lisp form against an Environment" to "evaluate a parsing
expression against a Position".

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package engine

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/mrossini-ethz/parser/dynctx"
	"github.com/mrossini-ethz/parser/expr"
	"github.com/mrossini-ethz/parser/position"
	"github.com/mrossini-ethz/parser/registry"
	"github.com/mrossini-ethz/parser/value"
)

func tracer() tracing.Trace {
	return tracing.Select("parser.engine")
}

// ErrUsage collects the "grammar/usage error" fatal class of spec.md §7:
// arity mismatches, non-sequence input to Descend, and the like. Wrapped
// with more specific context via fmt.Errorf("...: %w", ErrUsage).
var ErrUsage = fmt.Errorf("grammar usage error")

// Eval evaluates expression e at position pos under context ctx against the
// rule registry reg (needed to resolve Call). It returns the advanced
// position and result value on success, ok=false on ordinary parse
// failure, or a non-nil err for the two fatal classes of spec.md §7 (left
// recursion, grammar/usage errors), which must abort the whole parse.
func Eval(e expr.Expr, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	switch n := e.(type) {
	case *expr.Literal:
		return evalLiteral(n, pos)
	case *expr.ItemClass:
		return evalItemClass(n, pos)
	case *expr.And:
		return evalAnd(n, pos, ctx, reg)
	case *expr.Or:
		return evalOr(n, pos, ctx, reg)
	case *expr.Star:
		return evalRepeat(n.Child, pos, ctx, reg, 0, -1)
	case *expr.Plus:
		return evalRepeat(n.Child, pos, ctx, reg, 1, -1)
	case *expr.Opt:
		return evalOpt(n, pos, ctx, reg)
	case *expr.Rep:
		return evalRep(n, pos, ctx, reg)
	case *expr.AndPred:
		return evalAndPred(n, pos, ctx, reg)
	case *expr.NotPred:
		return evalNotPred(n, pos, ctx, reg)
	case *expr.Not:
		return evalNot(n, pos, ctx, reg)
	case *expr.Descend:
		return evalDescend(n, pos, ctx, reg)
	case *expr.AndTilde:
		return evalAndTilde(n, pos, ctx, reg)
	case *expr.AndTildeTilde:
		return evalAndTildeTilde(n, pos, ctx, reg)
	case *expr.Call:
		return Dispatch(reg, ctx, n.Rule, n.Args, pos)
	case *expr.ParamRef:
		return evalParamRef(n, pos, ctx, reg)
	case *expr.External:
		return evalExternal(n, pos, ctx, reg)
	}
	return pos, value.Nil, false, fmt.Errorf("%w: unknown expression node %T", ErrUsage, e)
}

func evalLiteral(n *expr.Literal, pos position.Position) (position.Position, value.Value, bool, error) {
	lit := n.Value
	if lit.Kind() == value.KindString || lit.Kind() == value.KindVector {
		seq, ok := value.AsSequence(pos.Sequence())
		if !ok {
			return pos, value.Nil, false, nil
		}
		var items []value.Value
		switch lit.Kind() {
		case value.KindString:
			s, _ := lit.AsString()
			for _, r := range s {
				items = append(items, value.Char(r))
			}
		case value.KindVector:
			items, _ = lit.AsVector()
		}
		if !value.SubsequenceEqual(seq, pos.Index(), items) {
			return pos, value.Nil, false, nil
		}
		return pos.Advance(len(items)), lit, true, nil
	}
	item, ok := pos.Peek()
	if !ok || !value.Equal(item, lit) {
		return pos, value.Nil, false, nil
	}
	return pos.AdvanceOne(), lit, true, nil
}

func evalItemClass(n *expr.ItemClass, pos position.Position) (position.Position, value.Value, bool, error) {
	item, ok := pos.Peek()
	if !ok {
		if n.Kind == expr.OnlyNil {
			// an exhausted frame has no item to match against; Nil only
			// matches an explicit nil/empty-list item, not "no item".
			return pos, value.Nil, false, nil
		}
		return pos, value.Nil, false, nil
	}
	switch n.Kind {
	case expr.AnySymbol:
		ok = item.Kind() == value.KindSymbol
	case expr.AnyChar:
		ok = item.Kind() == value.KindCharacter
	case expr.AnyByte:
		ok = item.Kind() == value.KindByte
	case expr.AnyNumber:
		ok = item.Kind() == value.KindNumber
	case expr.AnyList:
		ok = item.Kind() == value.KindList
	case expr.AnyVector:
		ok = item.Kind() == value.KindVector
	case expr.AnyString:
		ok = item.Kind() == value.KindString
	case expr.AnyForm:
		ok = item.Kind() == value.KindForm
	case expr.AnyNonNil:
		ok = !item.IsNil()
	case expr.OnlyNil:
		ok = item.IsNil()
		if ok {
			return pos.AdvanceOne(), value.Nil, true, nil
		}
		return pos, value.Nil, false, nil
	default:
		return pos, value.Nil, false, fmt.Errorf("%w: unknown item class %v", ErrUsage, n.Kind)
	}
	if !ok {
		return pos, value.Nil, false, nil
	}
	return pos.AdvanceOne(), item, true, nil
}

func evalAnd(n *expr.And, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	cur := pos
	results := make([]value.Value, 0, len(n.Children))
	for _, child := range n.Children {
		next, v, ok, err := Eval(child, cur, ctx, reg)
		if err != nil {
			return pos, value.Nil, false, err
		}
		if !ok {
			return pos, value.Nil, false, nil
		}
		cur = next
		results = append(results, v)
	}
	return cur, value.List(results...), true, nil
}

func evalOr(n *expr.Or, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	for _, child := range n.Children {
		next, v, ok, err := Eval(child, pos, ctx, reg)
		if err != nil {
			return pos, value.Nil, false, err
		}
		if ok {
			return next, v, true, nil
		}
	}
	return pos, value.Nil, false, nil
}

// evalRepeat implements Star (min=0) and Plus (min=1): greedy, no
// backtracking into the last attempt, unbounded above (max=-1).
func evalRepeat(child expr.Expr, pos position.Position, ctx *dynctx.Context, reg *registry.Registry, min, max int) (position.Position, value.Value, bool, error) {
	cur := pos
	var results []value.Value
	for max < 0 || len(results) < max {
		next, v, ok, err := Eval(child, cur, ctx, reg)
		if err != nil {
			return pos, value.Nil, false, err
		}
		if !ok {
			break
		}
		if position.Equal(next, cur) {
			// child matched without consuming input; stop to avoid an
			// infinite loop, keeping what was already accumulated.
			tracer().Debugf("repeat: child matched empty, stopping")
			break
		}
		cur = next
		results = append(results, v)
	}
	if len(results) < min {
		return pos, value.Nil, false, nil
	}
	return cur, value.List(results...), true, nil
}

func evalOpt(n *expr.Opt, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	next, v, ok, err := Eval(n.Child, pos, ctx, reg)
	if err != nil {
		return pos, value.Nil, false, err
	}
	if ok {
		return next, v, true, nil
	}
	return pos, value.Nil, true, nil
}

func evalRep(n *expr.Rep, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	min, err := resolveCount(ctx, n.Min)
	if err != nil {
		return pos, value.Nil, false, err
	}
	max, err := resolveCount(ctx, n.Max)
	if err != nil {
		return pos, value.Nil, false, err
	}
	return evalRepeat(n.Child, pos, ctx, reg, min, max)
}

func evalAndPred(n *expr.AndPred, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	_, v, ok, err := Eval(n.Child, pos, ctx, reg)
	if err != nil {
		return pos, value.Nil, false, err
	}
	if !ok {
		return pos, value.Nil, false, nil
	}
	return pos, v, true, nil
}

func evalNotPred(n *expr.NotPred, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	_, _, ok, err := Eval(n.Child, pos, ctx, reg)
	if err != nil {
		return pos, value.Nil, false, err
	}
	if ok {
		return pos, value.Nil, false, nil
	}
	item, _ := pos.Peek()
	return pos, item, true, nil
}

func evalNot(n *expr.Not, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	_, _, ok, err := Eval(n.Child, pos, ctx, reg)
	if err != nil {
		return pos, value.Nil, false, err
	}
	if ok {
		return pos, value.Nil, false, nil
	}
	item, hasItem := pos.Peek()
	if !hasItem {
		return pos, value.Nil, false, nil
	}
	return pos.AdvanceOne(), item, true, nil
}

func evalDescend(n *expr.Descend, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	item, ok := pos.Peek()
	if !ok {
		return pos, value.Nil, false, nil
	}
	wantKind := map[expr.DescendKind]value.Kind{
		expr.IntoList:   value.KindList,
		expr.IntoString: value.KindString,
		expr.IntoVector: value.KindVector,
	}[n.Kind]
	if item.Kind() != wantKind {
		return pos, value.Nil, false, nil
	}
	inner, ok := pos.Descend(item)
	if !ok {
		return pos, value.Nil, false, fmt.Errorf("%w: Descend target is not a sequence", ErrUsage)
	}
	innerNext, v, ok, err := Eval(n.Child, inner, ctx, reg)
	if err != nil {
		return pos, value.Nil, false, err
	}
	if !ok || !innerNext.FrameAtEnd() {
		return pos, value.Nil, false, nil
	}
	outer, ok := innerNext.Ascend()
	if !ok {
		return pos, value.Nil, false, fmt.Errorf("%w: Descend could not ascend", ErrUsage)
	}
	return outer, value.List(v), true, nil
}

// evalExternal matches Child, then writes its result into the nearest
// ancestor's `let`-declared cell named n.Name (spec.md §4.6). Failing to
// find such a cell is a fatal grammar/usage error, not an ordinary mismatch.
func evalExternal(n *expr.External, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	next, v, ok, err := Eval(n.Child, pos, ctx, reg)
	if err != nil {
		return pos, value.Nil, false, err
	}
	if !ok {
		return pos, value.Nil, false, nil
	}
	cell, err := ctx.External(n.Name)
	if err != nil {
		return pos, value.Nil, false, fmt.Errorf("%w: external %q: %v", ErrUsage, n.Name, err)
	}
	cell.Value = v
	return next, v, true, nil
}

func evalParamRef(n *expr.ParamRef, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	argExpr, callerFrame, ok := ctx.ParamAt(n.Index)
	if !ok {
		return pos, value.Nil, false, fmt.Errorf("%w: reference to unbound parameter #%d", ErrUsage, n.Index)
	}
	var next position.Position
	var v value.Value
	var success bool
	var evalErr error
	ctx.WithCallerParams(callerFrame, func() {
		next, v, success, evalErr = Eval(argExpr, pos, ctx, reg)
	})
	return next, v, success, evalErr
}
