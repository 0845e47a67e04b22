// This file is the package's external interface (spec.md §6's five
// operations), tying the subpackages together the way terex.go ties
// together GCons/Environment for the teacher's own term-rewriting engine.
package parser

import (
	"github.com/mrossini-ethz/parser/dynctx"
	"github.com/mrossini-ethz/parser/engine"
	"github.com/mrossini-ethz/parser/expr"
	"github.com/mrossini-ethz/parser/position"
	"github.com/mrossini-ethz/parser/processor"
	"github.com/mrossini-ethz/parser/registry"
	"github.com/mrossini-ethz/parser/trace"
	"github.com/mrossini-ethz/parser/value"
)

// Grammar bundles a Registry with the context machinery parses against it
// need; it is the unit a caller defines rules into and parses against.
type Grammar struct {
	reg *registry.Registry
}

// NewGrammar returns an empty Grammar.
func NewGrammar() *Grammar {
	return &Grammar{reg: registry.New()}
}

// DefineRule registers (or replaces) a rule: its formal parameters, body
// expression and processor pipeline (spec.md §6). hasRest/restName declare
// a trailing rest-parameter collecting any extra call arguments. lets
// declares the rule's own `let`-bound dynamic cells (spec.md §4.6),
// visible to descendant calls as `external` references; pass nil when the
// rule declares none.
func (g *Grammar) DefineRule(name string, formals []string, hasRest bool, restName string, lets []registry.LetDecl, body expr.Expr, processors ...processor.Processor) {
	g.reg.Define(&registry.Rule{
		Name:       name,
		Formals:    formals,
		HasRest:    hasRest,
		RestName:   restName,
		Lets:       lets,
		Body:       body,
		Processors: processors,
	})
}

// UndefineRule removes a rule.
func (g *Grammar) UndefineRule(name string) {
	g.reg.Undefine(name)
}

// WithIsolatedRules runs body against a fresh, empty overlay of the rule
// table: existing rules are invisible to it. Definitions body makes do not
// survive past the call.
func WithIsolatedRules[T any](g *Grammar, body func() T) T {
	return registry.WithIsolated(g.reg, body)
}

// WithInheritedRules runs body against a snapshot of the current rule
// table: existing rules are visible and callable, but redefinitions body
// makes do not survive past the call.
func WithInheritedRules[T any](g *Grammar, body func() T) T {
	return registry.WithInherited(g.reg, body)
}

// Trace turns on tracing for rule name: every entry and exit logs depth,
// rule name, position summary and outcome to the active trace.Sink.
// recursive additionally traces every rule called (directly or
// transitively) while name's invocation is on the stack.
func (g *Grammar) Trace(name string, recursive bool) {
	if rule, ok := g.reg.Lookup(name); ok {
		rule.Traced = true
		rule.Recursive = recursive
	}
}

// Untrace turns tracing back off for rule name.
func (g *Grammar) Untrace(name string) {
	if rule, ok := g.reg.Lookup(name); ok {
		rule.Traced = false
		rule.Recursive = false
	}
}

// SetTraceSink installs sink as the destination for trace events produced
// by any Grammar, returning the previously installed one.
func SetTraceSink(sink trace.Sink) trace.Sink {
	return trace.SetSink(sink)
}

// Parse drives rootRule against input (spec.md §4.8). junkAllowed
// controls whether leftover input after a successful match is tolerated.
// The returned bool reports whether the parse succeeded; ordinary failure
// (no match, or unconsumed trailing input when junkAllowed is false) comes
// back as (nil, false, nil) — a value, never an error. A non-nil error is
// always one of the two fatal classes of spec.md §7 (left recursion, a
// grammar/usage error) and implies ok=false.
func (g *Grammar) Parse(rootRule string, input value.Value, junkAllowed bool) (value.Value, bool, error) {
	return engine.Parse(g.reg, rootRule, input, junkAllowed)
}

// CallRule invokes rule with caller-evaluated argument values — a
// convenience for tests and the REPL that bypasses the expression-level
// Call node by wrapping each value as a Literal argument expression.
func (g *Grammar) CallRule(name string, input value.Value, args ...value.Value) (value.Value, bool, error) {
	pos, ok := position.New(input)
	if !ok {
		pos, ok = position.New(value.List(input))
		if !ok {
			return value.Nil, false, engine.ErrUsage
		}
	}
	exprArgs := make([]expr.Expr, len(args))
	for i, a := range args {
		exprArgs[i] = expr.Lit(a)
	}
	ctx := dynctx.New()
	_, result, ok, err := engine.Dispatch(g.reg, ctx, name, exprArgs, pos)
	if err != nil {
		return value.Nil, false, err
	}
	return result, ok, nil
}
