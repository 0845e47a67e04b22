/*
Package position implements the cursor into a heterogeneous, possibly
nested sequence. A Position is a non-empty, immutable stack of frames;
the top frame names the current sequence and index. Advancing produces a
new Position — the frame chain is a persistent linked structure, so
backtracking (discarding a successor Position) is free and the underlying
sequence data is never copied, in the spirit of the teacher's tree-walk
types in terex/fp/lists.go.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package position

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/mrossini-ethz/parser/value"
)

func tracer() tracing.Trace {
	return tracing.Select("parser.position")
}

// frame pairs a sequence with the index of the "current" item within it.
type frame struct {
	seq    value.Sequence
	raw    value.Value // the sequence Value itself, for Descend/Ascend bookkeeping
	index  int
	parent *frame
}

// Position is an immutable cursor. The zero value is not valid; construct
// one with New.
type Position struct {
	top *frame
}

// New wraps v (which must be a Sequence; String, Vector, or List) as the
// initial, single-frame Position at index 0.
func New(v value.Value) (Position, bool) {
	seq, ok := value.AsSequence(v)
	if !ok {
		return Position{}, false
	}
	return Position{top: &frame{seq: seq, raw: v, index: 0}}, true
}

// Depth returns the number of frames on the stack (≥1 for a valid Position).
func (p Position) Depth() int {
	n := 0
	for f := p.top; f != nil; f = f.parent {
		n++
	}
	return n
}

// Index returns the top frame's index.
func (p Position) Index() int { return p.top.index }

// Sequence returns the top frame's sequence value.
func (p Position) Sequence() value.Value { return p.top.raw }

// Peek returns the item at the current position, or ok=false if the index
// is out of range (at or past the end of the current frame's sequence).
func (p Position) Peek() (value.Value, bool) {
	f := p.top
	if f.index >= f.seq.SeqLen() {
		return value.Nil, false
	}
	return f.seq.SeqAt(f.index), true
}

// Advance moves k items forward within the current frame (k defaults to 1
// via AdvanceOne). It never raises — moving past the end merely produces a
// Position for which Peek fails and AtEnd may become true.
func (p Position) Advance(k int) Position {
	f := p.top
	next := &frame{seq: f.seq, raw: f.raw, index: f.index + k, parent: f.parent}
	tracer().Debugf("advance(%d) -> index %d", k, next.index)
	return Position{top: next}
}

// AdvanceOne moves one item forward; shorthand for Advance(1).
func (p Position) AdvanceOne() Position { return p.Advance(1) }

// Descend pushes a new frame for child (which must be a Sequence) on top of
// p, at index 0. ok is false if child is not a Sequence.
func (p Position) Descend(child value.Value) (Position, bool) {
	seq, ok := value.AsSequence(child)
	if !ok {
		return p, false
	}
	tracer().Debugf("descend into %s", child.Kind())
	return Position{top: &frame{seq: seq, raw: child, index: 0, parent: p.top}}, true
}

// Ascend pops the top frame, returning control to the parent sequence
// advanced by one (past the container just exited). ok is false if p has
// no parent frame (depth 1).
func (p Position) Ascend() (Position, bool) {
	if p.top.parent == nil {
		return p, false
	}
	parent := p.top.parent
	advanced := &frame{seq: parent.seq, raw: parent.raw, index: parent.index + 1, parent: parent.parent}
	return Position{top: advanced}, true
}

// AtEnd reports whether p is a single-frame position whose index equals the
// sequence length — the canonical "fully consumed" position.
func (p Position) AtEnd() bool {
	return p.top.parent == nil && p.top.index == p.top.seq.SeqLen()
}

// FrameAtEnd reports whether the current (possibly nested) frame has been
// fully consumed, regardless of stack depth — used by Descend to check
// that a rule fully consumed a container's contents.
func (p Position) FrameAtEnd() bool {
	return p.top.index == p.top.seq.SeqLen()
}

// Equal reports structural equality: same frame stack depth, and every
// frame's (sequence, index) pair equal pairwise.
func Equal(a, b Position) bool {
	fa, fb := a.top, b.top
	for fa != nil && fb != nil {
		if fa.index != fb.index || !value.Equal(fa.raw, fb.raw) {
			return false
		}
		fa, fb = fa.parent, fb.parent
	}
	return fa == nil && fb == nil
}

func (p Position) String() string {
	return fmt.Sprintf("@%d/%d(depth=%d)", p.top.index, p.top.seq.SeqLen(), p.Depth())
}

// Signature returns a deterministic string encoding of the full frame
// stack (index/length pairs, outermost first). The sequences themselves are
// not encoded, so for positions over the same root input, equal Signature
// means Equal and vice versa; used as the hashable key for
// left-recursion detection (see dynctx.Context).
func (p Position) Signature() string {
	// collect innermost-first, then print outermost-first
	var chain []*frame
	for f := p.top; f != nil; f = f.parent {
		chain = append(chain, f)
	}
	out := ""
	for i := len(chain) - 1; i >= 0; i-- {
		out += fmt.Sprintf("%d/%d>", chain[i].index, chain[i].seq.SeqLen())
	}
	return out
}
