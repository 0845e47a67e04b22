/*
Package dynctx implements the Context threaded through every evaluation
step: dynamically scoped variable bindings (the `let`/`external` frames of
spec.md §4.6), the current rule's bound formal parameters, and the
in-progress call set used for left-recursion detection (spec.md §4.4).

Bindings are modeled as a stack of frames, mirroring the teacher's
runtime.MemoryFrameStack push/pop discipline (runtime/memframe.go), except
the frames here carry named variable cells rather than symbol tables.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package dynctx

import (
	"fmt"

	"github.com/cnf/structhash"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/tracing"

	"github.com/mrossini-ethz/parser/expr"
	"github.com/mrossini-ethz/parser/position"
	"github.com/mrossini-ethz/parser/value"
)

func tracer() tracing.Trace {
	return tracing.Select("parser.dynctx")
}

// Cell is a mutable variable cell introduced by a `let`-option.
type Cell struct {
	Name  string
	Value value.Value
}

// bindingFrame is one rule invocation's let-introduced cells.
type bindingFrame struct {
	cells  map[string]*Cell
	parent *bindingFrame
}

// paramBinding is one formal argument: the expression the caller supplied,
// plus the caller's own parameter frame — needed because the argument
// expression may itself reference the caller's parameters (ParamRef is
// resolved dynamically, not lexically pre-substituted).
type paramBinding struct {
	expr   expr.Expr
	caller *paramFrame
}

// paramFrame is one rule invocation's bound formal parameters.
type paramFrame struct {
	byIndex []*paramBinding
	byName  map[string]*paramBinding
	parent  *paramFrame
}

// inProgressKey is hashed with structhash to produce a stable, comparable
// fingerprint for a (rule-name, position) pair, grounded on
// lr/earley/earley.go's use of structhash for Earley-item dedup.
type inProgressKey struct {
	Rule string
	Pos  string
}

// Context is the dynamically scoped state threaded through a parse.
type Context struct {
	bindings   *bindingFrame
	params     *paramFrame
	inProgress *treeset.Set // of hashed inProgressKey strings
	depth      int
	forcedTrace bool
}

// New creates an empty Context for a fresh parse.
func New() *Context {
	return &Context{
		inProgress: treeset.NewWith(utils.StringComparator),
	}
}

// --- Bindings (let / external) ---------------------------------------------

// PushBindings introduces a new let-frame with the given cell names,
// initialized to Nil except for any name present in initial.
func (c *Context) PushBindings(names []string, initial map[string]value.Value) func() {
	frame := &bindingFrame{cells: make(map[string]*Cell, len(names)), parent: c.bindings}
	for _, nm := range names {
		v := value.Nil
		if iv, ok := initial[nm]; ok {
			v = iv
		}
		frame.cells[nm] = &Cell{Name: nm, Value: v}
	}
	c.bindings = frame
	tracer().Debugf("push binding frame with %d cells", len(names))
	return func() {
		tracer().Debugf("pop binding frame with %d cells", len(names))
		c.bindings = frame.parent
	}
}

// ErrUnboundExternal is returned when `external` names a variable no
// ancestor rule has declared.
var ErrUnboundExternal = fmt.Errorf("external variable not bound by any ancestor rule")

// External resolves name by walking the binding-frame stack from the
// nearest ancestor outward, returning its cell for read/write access.
func (c *Context) External(name string) (*Cell, error) {
	for f := c.bindings; f != nil; f = f.parent {
		if cell, ok := f.cells[name]; ok {
			return cell, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnboundExternal, name)
}

// --- Parameters --------------------------------------------------------

// PushParams binds formals (by position and name) to the argument
// expressions args, remembering the caller's own parameter frame so nested
// ParamRefs inside args resolve correctly.
func (c *Context) PushParams(formals []string, args []expr.Expr) func() {
	caller := c.params
	frame := &paramFrame{
		byIndex: make([]*paramBinding, len(args)),
		byName:  make(map[string]*paramBinding, len(formals)),
		parent:  caller,
	}
	for i, a := range args {
		b := &paramBinding{expr: a, caller: caller}
		frame.byIndex[i] = b
		if i < len(formals) {
			frame.byName[formals[i]] = b
		}
	}
	c.params = frame
	return func() { c.params = caller }
}

// ParamAt returns the expression bound to the i-th formal of the current
// rule invocation, and the caller's parameter frame active when that
// expression should itself be evaluated (for nested ParamRefs).
func (c *Context) ParamAt(i int) (e expr.Expr, callerFrameToken interface{}, ok bool) {
	if c.params == nil || i < 0 || i >= len(c.params.byIndex) {
		return nil, nil, false
	}
	b := c.params.byIndex[i]
	return b.expr, b.caller, true
}

// WithCallerParams temporarily switches the active parameter frame to the
// one captured alongside a paramBinding (callerFrameToken from ParamAt),
// runs fn, then restores. Used by the evaluator to give an argument
// expression the caller's parameter scope while it is being evaluated.
func (c *Context) WithCallerParams(callerFrameToken interface{}, fn func()) {
	saved := c.params
	if callerFrameToken == nil {
		c.params = nil
	} else {
		c.params = callerFrameToken.(*paramFrame)
	}
	fn()
	c.params = saved
}

// ResolveIntParam resolves the i-th formal of the current rule to an
// integer when its argument expression is (transitively, through forwarded
// ParamRefs) a Literal number — the "pre-evaluated value" case of spec.md
// §4.4 item 4, used where a parameter supplies a count (e.g. Rep's bound).
// ok is false if the chain does not bottom out in a Literal number.
func (c *Context) ResolveIntParam(i int) (int, bool) {
	frame := c.params
	for frame != nil {
		if i < 0 || i >= len(frame.byIndex) {
			return 0, false
		}
		b := frame.byIndex[i]
		switch e := b.expr.(type) {
		case *expr.Literal:
			n, ok := e.Value.AsNumber()
			if !ok {
				return 0, false
			}
			return int(n.Float()), true
		case *expr.ParamRef:
			frame = b.caller
			i = e.Index
			continue
		default:
			return 0, false
		}
	}
	return 0, false
}

// --- Left recursion guard -----------------------------------------------

func keyFor(rule string, pos position.Position) string {
	h, err := structhash.Hash(inProgressKey{Rule: rule, Pos: pos.Signature()}, 1)
	if err != nil {
		// structhash only fails on unsupported types; our key is two
		// strings, so fall back to plain concatenation defensively.
		return rule + "@" + pos.Signature()
	}
	return h
}

// ErrLeftRecursion is returned by Enter when (rule, pos) is already active.
var ErrLeftRecursion = fmt.Errorf("left recursion detected")

// Enter records (rule, pos) as in-progress, or fails if it already is.
// On success it returns a func to remove the entry again; callers must
// call it on every exit path (success, failure, or fatal error).
func (c *Context) Enter(rule string, pos position.Position) (func(), error) {
	key := keyFor(rule, pos)
	if c.inProgress.Contains(key) {
		return nil, fmt.Errorf("%w: rule %q at %s", ErrLeftRecursion, rule, pos)
	}
	c.inProgress.Add(key)
	c.depth++
	tracer().Debugf("enter %s at %s (depth %d)", rule, pos, c.depth)
	return func() {
		tracer().Debugf("exit %s at %s (depth %d)", rule, pos, c.depth)
		c.inProgress.Remove(key)
		c.depth--
	}, nil
}

// Depth returns the number of rule invocations currently on the call
// stack, for trace indentation.
func (c *Context) Depth() int {
	return c.depth
}

// TraceActive reports whether the current call is traced either directly
// (own is true) or because an ancestor rule was traced with Recursive set.
func (c *Context) TraceActive(own bool) bool {
	return own || c.forcedTrace
}

// EnterTraceScope marks descendant calls as traced (for a rule traced with
// Recursive=true); the returned func restores the prior state. recursive
// controls whether the scope actually forces descendants; when false this
// is a no-op push so callers can call it unconditionally.
func (c *Context) EnterTraceScope(recursive bool) func() {
	saved := c.forcedTrace
	if recursive {
		c.forcedTrace = true
	}
	return func() { c.forcedTrace = saved }
}
