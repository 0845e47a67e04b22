/*
Package expr defines the compiled expression tree for a rule body — the
tagged variant over terminals, combinators and rule references described in
spec.md §3 and §4.2. Compilation of the (out-of-scope) surface DSL down to
this tree is the identity: a grammar author builds the tree directly with
the constructor functions below, the way the teacher's term-rewriting rules
in terex/termr build *terex.GCons patterns directly, and the way the
retrieved hucsmn/peg library builds a Pattern tree via combinator functions
(Seq, Alt, Q0, Q1, ...).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package expr

import "github.com/mrossini-ethz/parser/value"

// Expr is any node of a compiled rule body.
type Expr interface {
	exprNode()
}

// ItemKind enumerates the "any value of kind K" terminal classes.
type ItemKind int8

const (
	AnySymbol ItemKind = iota
	AnyChar
	AnyByte
	AnyNumber
	AnyList
	AnyVector
	AnyString
	AnyForm
	AnyNonNil // "T": matches any non-nil item
	OnlyNil   // "Nil": matches nil or the empty list
)

// DescendKind enumerates the container kinds Descend may push into.
type DescendKind int8

const (
	IntoList DescendKind = iota
	IntoString
	IntoVector
)

// Literal matches an exact item or, for String/Vector-kinded Values, an
// exact subsequence.
type Literal struct{ Value value.Value }

// ItemClass matches any single item whose kind is Kind.
type ItemClass struct{ Kind ItemKind }

// And succeeds when every child succeeds in sequence.
type And struct{ Children []Expr }

// Or succeeds on the first child that succeeds (ordered choice).
type Or struct{ Children []Expr }

// Star matches Child zero or more times, greedily, never backtracking.
type Star struct{ Child Expr }

// Plus matches Child one or more times, greedily.
type Plus struct{ Child Expr }

// Opt matches Child zero or one time.
type Opt struct{ Child Expr }

// CountSpec is either a literal bound, a reference to a bound parameter, or
// a read of an ancestor's `external` cell — any of which supplies the bound
// at dispatch time (spec.md §4.4 item 4, §4.6). Unbounded is only
// meaningful as a Max.
type CountSpec struct {
	Literal   int
	Param     *ParamRef
	External  *ExternalRef
	Unbounded bool
}

// Const builds a literal CountSpec.
func Const(n int) CountSpec { return CountSpec{Literal: n} }

// NoBound builds the "no upper bound" CountSpec, valid only as a Max.
func NoBound() CountSpec { return CountSpec{Unbounded: true} }

// FromParam builds a CountSpec resolved from the i-th formal parameter.
func FromParam(i int) CountSpec { return CountSpec{Param: &ParamRef{Index: i}} }

// FromExternal builds a CountSpec resolved by reading the nearest
// ancestor's external cell named name at dispatch time.
func FromExternal(name string) CountSpec { return CountSpec{External: &ExternalRef{Name: name}} }

// Rep matches Child between Min and Max times (Max.Unbounded means no
// ceiling), greedily and without backtracking below Max.
type Rep struct {
	Min, Max CountSpec
	Child    Expr
}

// AndPred succeeds iff Child succeeds; consumes nothing (positive lookahead).
type AndPred struct{ Child Expr }

// NotPred succeeds iff Child fails; consumes nothing (negative lookahead).
type NotPred struct{ Child Expr }

// Not is the consuming negation: succeeds iff Child fails AND an item
// remains to consume.
type Not struct{ Child Expr }

// Descend requires the current item to be a container of Kind and matches
// Child against its contents, requiring Child to fully consume them.
type Descend struct {
	Kind  DescendKind
	Child Expr
}

// AndTilde is the unordered-sequence combinator: children match in some
// permutation, each exactly once.
type AndTilde struct{ Children []Expr }

// RepCount is a per-child repetition specifier for AndTildeTilde.
type RepCount struct {
	Min, Max CountSpec
}

// AndTildeTilde is the counted unordered-sequence combinator.
type AndTildeTilde struct {
	Children []Expr
	Counts   []RepCount
}

// Call invokes a named rule with argument expressions (passed as
// expressions, not pre-evaluated values — spec.md §4.4 item 4).
type Call struct {
	Rule string
	Args []Expr
}

// ParamRef refers to the current rule's i-th formal argument, evaluated as
// an expression in its own right (or, where a value is demanded, as its
// pre-evaluated value — see dynctx.Context.ResolveIntParam).
type ParamRef struct{ Index int }

// ExternalRef names an ancestor's `let`-declared cell a CountSpec reads its
// bound value from (spec.md §4.6).
type ExternalRef struct{ Name string }

// External evaluates Child and, on success, writes its result into the
// nearest ancestor's external cell named Name before returning — the
// write-access half of spec.md §4.6 ("a descendant rule that declares
// `external x` obtains read/write access to the nearest ancestor's cell").
// Reading the cell elsewhere (e.g. as a Rep bound) goes through
// CountSpec.External, not this node.
type External struct {
	Name  string
	Child Expr
}

func (*Literal) exprNode()       {}
func (*ItemClass) exprNode()     {}
func (*And) exprNode()           {}
func (*Or) exprNode()            {}
func (*Star) exprNode()          {}
func (*Plus) exprNode()          {}
func (*Opt) exprNode()           {}
func (*Rep) exprNode()           {}
func (*AndPred) exprNode()       {}
func (*NotPred) exprNode()       {}
func (*Not) exprNode()           {}
func (*Descend) exprNode()       {}
func (*AndTilde) exprNode()      {}
func (*AndTildeTilde) exprNode() {}
func (*Call) exprNode()          {}
func (*ParamRef) exprNode()      {}
func (*External) exprNode()      {}

// --- combinator-style constructors, grounded on the other_examples PEG
// libraries' functional builder API (Seq/Alt/Q0/Q1/...) -----------------

func Lit(v value.Value) Expr         { return &Literal{Value: v} }
func Class(k ItemKind) Expr          { return &ItemClass{Kind: k} }
func Seq(children ...Expr) Expr      { return &And{Children: children} }
func Choice(children ...Expr) Expr   { return &Or{Children: children} }
func ZeroOrMore(c Expr) Expr         { return &Star{Child: c} }
func OneOrMore(c Expr) Expr          { return &Plus{Child: c} }
func Optional(c Expr) Expr           { return &Opt{Child: c} }
func Lookahead(c Expr) Expr          { return &AndPred{Child: c} }
func NegLookahead(c Expr) Expr       { return &NotPred{Child: c} }
func NegConsume(c Expr) Expr         { return &Not{Child: c} }
func Into(k DescendKind, c Expr) Expr { return &Descend{Kind: k, Child: c} }
func Unordered(children ...Expr) Expr {
	return &AndTilde{Children: children}
}
func UnorderedCounted(counts []RepCount, children ...Expr) Expr {
	return &AndTildeTilde{Children: children, Counts: counts}
}
func CallRule(name string, args ...Expr) Expr { return &Call{Rule: name, Args: args} }
func Param(i int) Expr                        { return &ParamRef{Index: i} }

// WriteExternal builds an External node: match child, then write its
// result into the named ancestor cell.
func WriteExternal(name string, child Expr) Expr { return &External{Name: name, Child: child} }

// RepOf builds a Rep node from two CountSpecs and a child expression.
func RepOf(min, max CountSpec, child Expr) Expr {
	return &Rep{Min: min, Max: max, Child: child}
}
