/*
Package registry implements the rule registry: a name→compiled-rule
mapping with isolated and inheriting overlay scopes (spec.md §3, §4.7).

The overlay discipline mirrors the teacher's runtime.ScopeTree push/pop of
lexical scopes (runtime/symtable.go): isolated overlays swap in a fresh,
empty map (outer rules become invisible); inheriting overlays swap in a
clone of the current map (via golang.org/x/exp/maps.Clone, the way a
snapshot-and-restore would be done against a shared map without aliasing
the original) so definitions inside the scope never leak outward.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package registry

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/npillmayer/schuko/tracing"

	"github.com/mrossini-ethz/parser/expr"
	"github.com/mrossini-ethz/parser/processor"
	"github.com/mrossini-ethz/parser/value"
)

func tracer() tracing.Trace {
	return tracing.Select("parser.registry")
}

// LetDecl introduces one dynamically scoped variable cell on rule entry,
// initialized to Init (spec.md §4.6: "let x y (z v)" introduces cells with
// initial values nil, nil, v). The cell is visible, by name, to any
// descendant call that reads or writes it via an `external` reference for
// the duration of this rule's invocation.
type LetDecl struct {
	Name string
	Init value.Value
}

// Rule is a compiled rule: its name, formal parameter list (ordinary
// positional plus an optional rest-tail), the `let`-cells it introduces,
// its compiled expression tree, its ordered processor pipeline, and trace
// metadata.
type Rule struct {
	Name       string
	Formals    []string
	HasRest    bool
	RestName   string
	Lets       []LetDecl
	Body       expr.Expr
	Processors []processor.Processor

	Traced    bool
	Recursive bool // when Traced, whether descendant calls are traced too
}

// Registry maps rule names to compiled Rules, with an overlay stack for
// isolated/inheriting scopes.
type Registry struct {
	rules map[string]*Rule
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{rules: make(map[string]*Rule)}
}

// Define registers (or replaces) a rule.
func (r *Registry) Define(rule *Rule) {
	rule.Formals = slices.Clone(rule.Formals)
	rule.Lets = slices.Clone(rule.Lets)
	tracer().Debugf("define rule %q (%d formals, rest=%v)", rule.Name, len(rule.Formals), rule.HasRest)
	r.rules[rule.Name] = rule
}

// Undefine removes a rule; undefining an absent rule is a no-op.
func (r *Registry) Undefine(name string) {
	tracer().Debugf("undefine rule %q", name)
	delete(r.rules, name)
}

// Lookup resolves name in the active registry.
func (r *Registry) Lookup(name string) (*Rule, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// ErrUndefinedRule is the fatal grammar error for a Call to an unknown rule.
var ErrUndefinedRule = fmt.Errorf("call to undefined rule")

// MustLookup resolves name or returns ErrUndefinedRule — the fatal,
// non-recoverable error of spec.md §4.4 item 1.
func (r *Registry) MustLookup(name string) (*Rule, error) {
	rule, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUndefinedRule, name)
	}
	return rule, nil
}

// WithIsolated runs body against a fresh, empty registry: outer rules are
// invisible and cannot be called. On return the outer registry is restored
// verbatim, regardless of what body defined.
func WithIsolated[T any](r *Registry, body func() T) T {
	outer := r.rules
	r.rules = make(map[string]*Rule)
	tracer().Debugf("enter isolated overlay")
	defer func() {
		r.rules = outer
		tracer().Debugf("exit isolated overlay")
	}()
	return body()
}

// WithInherited runs body against a snapshot (shallow clone) of the current
// registry: definitions inside body mutate only the snapshot. On return the
// pre-snapshot registry is restored, discarding the overlay's definitions.
func WithInherited[T any](r *Registry, body func() T) T {
	outer := r.rules
	r.rules = maps.Clone(outer)
	tracer().Debugf("enter inheriting overlay (%d rules inherited)", len(outer))
	defer func() {
		r.rules = outer
		tracer().Debugf("exit inheriting overlay")
	}()
	return body()
}

// Names returns the currently visible rule names, for diagnostics.
func (r *Registry) Names() []string {
	return maps.Keys(r.rules)
}
