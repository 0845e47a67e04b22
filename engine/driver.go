package engine

import (
	"fmt"

	"github.com/mrossini-ethz/parser/dynctx"
	"github.com/mrossini-ethz/parser/position"
	"github.com/mrossini-ethz/parser/registry"
	"github.com/mrossini-ethz/parser/value"
)

// Parse drives a complete parse of input against rootRule in reg. input is
// wrapped as the initial Position; if it is not itself a Sequence it is
// wrapped in a synthetic one-element list first, matching the convention
// that a single atom is "a list of one form" to a root rule. junkAllowed
// controls whether leftover, unconsumed input after a successful parse of
// rootRule is tolerated (true) or turned into ordinary failure (false).
//
// Returns (result, true, nil) on success; (nil, false, nil) on ordinary
// parse failure — rootRule did not match, or junkAllowed is false and
// input remains unconsumed (spec.md §4.8 steps 3-4); and (nil, false, err)
// only for the two fatal classes of spec.md §7 (left recursion, a
// grammar/usage error). Parse failure is a value, never a Go error.
func Parse(reg *registry.Registry, rootRule string, input value.Value, junkAllowed bool) (value.Value, bool, error) {
	pos, ok := position.New(input)
	if !ok {
		pos, ok = position.New(value.List(input))
		if !ok {
			return value.Nil, false, fmt.Errorf("%w: input is neither a sequence nor wrappable as one", ErrUsage)
		}
	}

	ctx := dynctx.New()
	final, result, ok, err := Dispatch(reg, ctx, rootRule, nil, pos)
	if err != nil {
		return value.Nil, false, err
	}
	if !ok {
		return value.Nil, false, nil
	}
	if !junkAllowed && !final.AtEnd() {
		return value.Nil, false, nil
	}
	return result, true, nil
}
