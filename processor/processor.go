/*
Package processor implements the ordered result-processor pipeline attached
to a rule (spec.md §4.5): constant, destructure/lambda, function, identity,
flatten, string, vector, test and not. The success value of a rule body is
threaded left to right through the pipeline; any processor may turn success
into failure.

Grounded on the teacher's term-rewriting pipeline in terex/termr/rewrite.go
(a RewriteRule is a pattern plus a rewriting function run over a matched
node) and the tree-flattening walk in terex/fp/lists.go.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package processor

import (
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/mrossini-ethz/parser/value"
)

func tracer() tracing.Trace {
	return tracing.Select("parser.processor")
}

// Processor is one stage of the pipeline: given the previous stage's
// output, produce the next stage's input, or fail (ok=false), which fails
// the whole rule.
type Processor interface {
	Apply(in value.Value) (value.Value, bool)
}

type processorFunc func(value.Value) (value.Value, bool)

func (f processorFunc) Apply(in value.Value) (value.Value, bool) { return f(in) }

// Pipeline runs a sequence of Processors left to right; the output of step
// i is the input of step i+1. This is the composition law of spec.md §8:
// parsing with [p, q] equals parsing with [p] then applying q to the
// result.
func Pipeline(procs []Processor, in value.Value) (value.Value, bool) {
	v := in
	for i, p := range procs {
		var ok bool
		v, ok = p.Apply(v)
		if !ok {
			tracer().Debugf("processor %d failed pipeline", i)
			return value.Nil, false
		}
	}
	return v, true
}

// Constant discards the input and always outputs v.
func Constant(v value.Value) Processor {
	return processorFunc(func(value.Value) (value.Value, bool) { return v, true })
}

// Destructure destructures the input against pattern and evaluates body
// with those bindings; its result is the stage's output. Lambda and
// destructure processors are identical in contract (spec.md §4.5).
func Destructure(pattern Pattern, body func(map[string]value.Value) value.Value) Processor {
	return processorFunc(func(in value.Value) (value.Value, bool) {
		bound, ok := Bind(pattern, in)
		if !ok {
			return value.Nil, false
		}
		return body(bound), true
	})
}

// Lambda is an alias for Destructure: lambda(formals, body) and
// destructure(pattern, body) are the same processor under different names.
func Lambda(pattern Pattern, body func(map[string]value.Value) value.Value) Processor {
	return Destructure(pattern, body)
}

// Function invokes f with the input's elements as positional arguments
// when the input is a list (spread); otherwise f is called with the input
// as a single argument — the resolution of the open question in spec.md §9.
func Function(f func(args []value.Value) value.Value) Processor {
	return processorFunc(func(in value.Value) (value.Value, bool) {
		if in.Kind() == value.KindList {
			cons, _ := in.AsCons()
			return f(cons.Slice()), true
		}
		return f([]value.Value{in}), true
	})
}

// Identity passes the input through unchanged when flag is true, else
// outputs Nil.
func Identity(flag bool) Processor {
	return processorFunc(func(in value.Value) (value.Value, bool) {
		if flag {
			return in, true
		}
		return value.Nil, true
	})
}

// Flatten replaces a tree of lists with the depth-first list of its
// non-list leaves, grounded on fp/lists.go's tree-walk flattening.
func Flatten() Processor {
	return processorFunc(func(in value.Value) (value.Value, bool) {
		return value.List(flattenLeaves(in)...), true
	})
}

func flattenLeaves(v value.Value) []value.Value {
	if v.Kind() != value.KindList {
		return []value.Value{v}
	}
	cons, _ := v.AsCons()
	var out []value.Value
	for c := cons; c != nil; c = c.Cdr {
		out = append(out, flattenLeaves(c.Car)...)
	}
	return out
}

// StringJoin flattens, then concatenates the leaves into a single string.
// Characters and strings are appended as-is, bytes as the character with
// that code, symbols as their printable name.
func StringJoin() Processor {
	return processorFunc(func(in value.Value) (value.Value, bool) {
		leaves := flattenLeaves(in)
		var b strings.Builder
		for _, leaf := range leaves {
			switch leaf.Kind() {
			case value.KindCharacter:
				r, _ := leaf.AsCharacter()
				b.WriteRune(r)
			case value.KindString:
				s, _ := leaf.AsString()
				b.WriteString(s)
			case value.KindByte:
				by, _ := leaf.AsByte()
				b.WriteRune(rune(by))
			case value.KindSymbol:
				b.WriteString(leaf.AsSymbol().Name)
			default:
				b.WriteString(leaf.String())
			}
		}
		return value.Str(b.String()), true
	})
}

// Vectorize flattens, then converts the result to a Vector.
func Vectorize() Processor {
	return processorFunc(func(in value.Value) (value.Value, bool) {
		return value.Vec(flattenLeaves(in)...), true
	})
}

// Test destructures the input against pattern and evaluates predicate; on
// true it passes the original input through unchanged, on false it fails
// the rule.
func Test(pattern Pattern, predicate func(map[string]value.Value) bool) Processor {
	return processorFunc(func(in value.Value) (value.Value, bool) {
		bound, ok := Bind(pattern, in)
		if !ok {
			return value.Nil, false
		}
		if predicate(bound) {
			return in, true
		}
		return value.Nil, false
	})
}

// Not is Test with the predicate negated.
func Not(pattern Pattern, predicate func(map[string]value.Value) bool) Processor {
	return Test(pattern, func(b map[string]value.Value) bool { return !predicate(b) })
}
