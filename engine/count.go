package engine

import (
	"fmt"

	"github.com/mrossini-ethz/parser/dynctx"
	"github.com/mrossini-ethz/parser/expr"
)

// ErrBadCount is the fatal grammar/usage error for a Rep/And~~ bound that
// does not resolve to a non-negative integer (spec.md §7).
var ErrBadCount = fmt.Errorf("count argument is not a non-negative integer")

// resolveCount turns a CountSpec into a concrete bound. For the "unbounded"
// Max case it returns -1 (the caller treats negative as infinite).
func resolveCount(ctx *dynctx.Context, spec expr.CountSpec) (int, error) {
	if spec.Unbounded {
		return -1, nil
	}
	if spec.Param != nil {
		n, ok := ctx.ResolveIntParam(spec.Param.Index)
		if !ok || n < 0 {
			return 0, fmt.Errorf("%w: parameter #%d", ErrBadCount, spec.Param.Index)
		}
		return n, nil
	}
	if spec.External != nil {
		cell, err := ctx.External(spec.External.Name)
		if err != nil {
			return 0, fmt.Errorf("%w: external %q: %v", ErrUsage, spec.External.Name, err)
		}
		n, ok := cell.Value.AsNumber()
		if !ok || n.Float() < 0 {
			return 0, fmt.Errorf("%w: external %q is not a non-negative number", ErrBadCount, spec.External.Name)
		}
		return int(n.Float()), nil
	}
	if spec.Literal < 0 {
		return 0, fmt.Errorf("%w: literal %d", ErrBadCount, spec.Literal)
	}
	return spec.Literal, nil
}
