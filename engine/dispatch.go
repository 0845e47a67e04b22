package engine

import (
	"fmt"

	"github.com/mrossini-ethz/parser/dynctx"
	"github.com/mrossini-ethz/parser/position"
	"github.com/mrossini-ethz/parser/processor"
	"github.com/mrossini-ethz/parser/registry"
	"github.com/mrossini-ethz/parser/trace"
	"github.com/mrossini-ethz/parser/value"

	"github.com/mrossini-ethz/parser/expr"
)

// Dispatch resolves name in reg, checks for left recursion at the current
// position, binds args as the callee's parameters, evaluates the rule
// body, and threads the result through the rule's processor pipeline
// (spec.md §4.4). It is the sole entry point through which expr.Call and
// the top-level driver invoke a named rule.
func Dispatch(reg *registry.Registry, ctx *dynctx.Context, name string, args []expr.Expr, pos position.Position) (position.Position, value.Value, bool, error) {
	rule, err := reg.MustLookup(name)
	if err != nil {
		return pos, value.Nil, false, err
	}

	exit, err := ctx.Enter(name, pos)
	if err != nil {
		return pos, value.Nil, false, err
	}
	defer exit()

	if len(args) < len(rule.Formals) || (!rule.HasRest && len(args) > len(rule.Formals)) {
		return pos, value.Nil, false, fmt.Errorf("%w: rule %q expects %d argument(s), got %d", ErrUsage, name, len(rule.Formals), len(args))
	}

	popParams := ctx.PushParams(rule.Formals, args)
	defer popParams()

	letNames := make([]string, len(rule.Lets))
	initial := make(map[string]value.Value, len(rule.Lets))
	for i, ld := range rule.Lets {
		letNames[i] = ld.Name
		initial[ld.Name] = ld.Init
	}
	popBindings := ctx.PushBindings(letNames, initial)
	defer popBindings()

	popTraceScope := ctx.EnterTraceScope(rule.Traced && rule.Recursive)
	defer popTraceScope()
	traced := ctx.TraceActive(rule.Traced)

	depth := ctx.Depth() - 1 // enclosing calls only; this one is already entered
	if traced {
		trace.Enter(depth, name, pos.String())
	}

	next, v, ok, evalErr := Eval(rule.Body, pos, ctx, reg)

	if evalErr != nil {
		if traced {
			trace.Fatal(depth, name, evalErr)
		}
		return pos, value.Nil, false, evalErr
	}
	if !ok {
		if traced {
			trace.Fail(depth, name, pos.String())
		}
		return pos, value.Nil, false, nil
	}

	result, ok := processor.Pipeline(rule.Processors, v)
	if !ok {
		if traced {
			trace.Fail(depth, name, pos.String())
		}
		return pos, value.Nil, false, nil
	}

	if traced {
		trace.Succeed(depth, name, next.String(), result)
	}

	return next, result, true, nil
}
