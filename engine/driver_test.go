package engine

import (
	"errors"
	"testing"

	"github.com/mrossini-ethz/parser/dynctx"
	"github.com/mrossini-ethz/parser/expr"
	"github.com/mrossini-ethz/parser/registry"
	"github.com/mrossini-ethz/parser/value"
)

// threeSymbolGrammar defines "top" = And('a, 'b, 'c).
func threeSymbolGrammar() *registry.Registry {
	reg := registry.New()
	reg.Define(&registry.Rule{
		Name: "top",
		Body: expr.Seq(litSym("a"), litSym("b"), litSym("c")),
	})
	return reg
}

func TestParseSuccessFullyConsumed(t *testing.T) {
	reg := threeSymbolGrammar()
	v, ok, err := Parse(reg, "top", value.List(sym("a"), sym("b"), sym("c")), false)
	if err != nil || !ok {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}
	if !value.Equal(v, value.List(sym("a"), sym("b"), sym("c"))) {
		t.Fatalf("result = %v, want the matched triple", v)
	}
}

// TestParseOrdinaryFailureIsAValue pins spec.md §4.8/§7: an ordinary
// non-match must come back as (nil, false, nil), never a Go error.
func TestParseOrdinaryFailureIsAValue(t *testing.T) {
	reg := threeSymbolGrammar()
	v, ok, err := Parse(reg, "top", value.List(sym("a"), sym("x"), sym("c")), false)
	if err != nil {
		t.Fatalf("ordinary parse failure must not be a Go error, got %v", err)
	}
	if ok {
		t.Fatal("expected failure")
	}
	if !v.IsNil() {
		t.Fatalf("expected a nil value on failure, got %v", v)
	}
}

// TestParseTrailingInputRejectedAsValue pins the same distinction for
// unconsumed trailing input when junkAllowed is false.
func TestParseTrailingInputRejectedAsValue(t *testing.T) {
	reg := threeSymbolGrammar()
	v, ok, err := Parse(reg, "top", value.List(sym("a"), sym("b"), sym("c"), sym("d")), false)
	if err != nil {
		t.Fatalf("trailing input must not be a Go error, got %v", err)
	}
	if ok {
		t.Fatal("expected rejection of unconsumed trailing input")
	}
	if !v.IsNil() {
		t.Fatalf("expected a nil value on failure, got %v", v)
	}
}

// TestParseTrailingInputAllowedWhenJunkAllowed shows the other side: the
// same trailing input succeeds once junkAllowed is true.
func TestParseTrailingInputAllowedWhenJunkAllowed(t *testing.T) {
	reg := threeSymbolGrammar()
	v, ok, err := Parse(reg, "top", value.List(sym("a"), sym("b"), sym("c"), sym("d")), true)
	if err != nil || !ok {
		t.Fatalf("expected success with trailing input tolerated, got ok=%v err=%v", ok, err)
	}
	if !value.Equal(v, value.List(sym("a"), sym("b"), sym("c"))) {
		t.Fatalf("result = %v, want the matched triple ignoring trailing input", v)
	}
}

// TestParseFatalErrorIsDistinctFromFailure pins the other half of the
// spec.md §7 distinction: a fatal grammar/usage error (here, a call to an
// undefined rule) is reported via the error return, with ok=false.
func TestParseFatalErrorIsDistinctFromFailure(t *testing.T) {
	reg := registry.New()
	reg.Define(&registry.Rule{Name: "top", Body: expr.CallRule("missing")})
	_, ok, err := Parse(reg, "top", value.List(sym("a")), false)
	if ok {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, registry.ErrUndefinedRule) {
		t.Fatalf("expected ErrUndefinedRule, got %v", err)
	}
}

// TestParseLeftRecursionIsFatal confirms left recursion surfaces through
// Parse the same way it does through Dispatch directly.
func TestParseLeftRecursionIsFatal(t *testing.T) {
	reg := registry.New()
	reg.Define(&registry.Rule{
		Name: "R",
		Body: expr.Choice(
			expr.Seq(expr.CallRule("R"), litSym("a")),
			litSym("a"),
		),
	})
	_, ok, err := Parse(reg, "R", value.List(sym("a"), sym("a")), false)
	if ok {
		t.Fatal("expected failure")
	}
	if !errors.Is(err, dynctx.ErrLeftRecursion) {
		t.Fatalf("expected ErrLeftRecursion, got %v", err)
	}
}
