package engine

import (
	"github.com/emirpasic/gods/lists/arraylist"

	"github.com/mrossini-ethz/parser/dynctx"
	"github.com/mrossini-ethz/parser/expr"
	"github.com/mrossini-ethz/parser/position"
	"github.com/mrossini-ethz/parser/registry"
	"github.com/mrossini-ethz/parser/value"
)

// evalAndTilde implements And~ (spec.md §4.3): children match in some
// permutation, each exactly once. The incremental algorithm keeps a pool of
// children not yet satisfied and, at each step, tries every still-open
// child against the current position, committing to the first one that
// succeeds and removing it from the pool — an O(n·L) greedy permutation
// search rather than trying all n! orderings, grounded on the bookkeeping
// style of emirpasic/gods' ordered containers (used here to track which
// slots remain open without repeated slice surgery).
func evalAndTilde(n *expr.AndTilde, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	open := arraylist.New()
	for i := range n.Children {
		open.Add(i)
	}
	cur := pos
	results := make([]value.Value, len(n.Children))
	for !open.Empty() {
		matched := false
		for idx := 0; idx < open.Size(); idx++ {
			childIdxIface, _ := open.Get(idx)
			childIdx := childIdxIface.(int)
			next, v, ok, err := Eval(n.Children[childIdx], cur, ctx, reg)
			if err != nil {
				return pos, value.Nil, false, err
			}
			if ok {
				results[childIdx] = v
				cur = next
				open.Remove(idx)
				matched = true
				break
			}
		}
		if !matched {
			return pos, value.Nil, false, nil
		}
	}
	return cur, value.List(results...), true, nil
}

// evalAndTildeTilde implements And~~: like And~, but each child carries a
// [min,max] repetition count instead of matching exactly once. At each
// step, children whose minimum is still unmet are tried first, left to
// right; only once every minimum is satisfied does a step consider
// children merely below their maximum, again left to right. A child drops
// out once it reaches Max (or matches without consuming). The combinator
// succeeds when every child has reached at least its Min and no further
// child can make progress.
func evalAndTildeTilde(n *expr.AndTildeTilde, pos position.Position, ctx *dynctx.Context, reg *registry.Registry) (position.Position, value.Value, bool, error) {
	counts := make([]int, len(n.Children))
	mins := make([]int, len(n.Children))
	maxs := make([]int, len(n.Children))
	results := make([][]value.Value, len(n.Children))

	for i, rc := range n.Counts {
		mn, err := resolveCount(ctx, rc.Min)
		if err != nil {
			return pos, value.Nil, false, err
		}
		mx, err := resolveCount(ctx, rc.Max)
		if err != nil {
			return pos, value.Nil, false, err
		}
		mins[i] = mn
		maxs[i] = mx
	}

	cur := pos
	try := func(i int) (bool, error) {
		next, v, ok, err := Eval(n.Children[i], cur, ctx, reg)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
		counts[i]++
		results[i] = append(results[i], v)
		if position.Equal(next, cur) {
			// matched without consuming: treat as exhausted to avoid
			// spinning forever, having already counted it once.
			maxs[i] = counts[i]
			return true, nil
		}
		cur = next
		return true, nil
	}

	for {
		progressed := false

		// children whose minimum is still unmet take priority, left to
		// right, over children that are merely below their maximum.
		for i := range n.Children {
			if counts[i] >= mins[i] {
				continue
			}
			ok, err := try(i)
			if err != nil {
				return pos, value.Nil, false, err
			}
			if ok {
				progressed = true
				break
			}
		}
		if progressed {
			continue
		}

		for i := range n.Children {
			if maxs[i] >= 0 && counts[i] >= maxs[i] {
				continue
			}
			ok, err := try(i)
			if err != nil {
				return pos, value.Nil, false, err
			}
			if ok {
				progressed = true
				break
			}
		}
		if !progressed {
			break
		}
	}

	combined := make([]value.Value, 0, len(n.Children))
	for i := range n.Children {
		if counts[i] < mins[i] {
			return pos, value.Nil, false, nil
		}
		combined = append(combined, value.List(results[i]...))
	}
	return cur, value.List(combined...), true, nil
}
