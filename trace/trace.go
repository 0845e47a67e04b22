/*
Package trace implements the tracing hooks used by `trace`/`untrace`
(spec.md §4.5): a fixed-format event stream (depth | rule name | position
summary | outcome) fed to a pluggable Sink, with two built-in sinks — a
line-oriented one backed by the teacher's tracing facility
(github.com/npillmayer/schuko/tracing, selected the way the teacher does it
via tracing.Select), and a tree-shaped pretty-printer built on pterm's
LeveledList/Tree API, grounded on terex/terexlang/trepl/repl.go's use of
pterm.LeveledList + pterm.NewTreeFromLeveledList + pterm.DefaultTree to
render indented structures.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package trace

import (
	"fmt"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"

	"github.com/mrossini-ethz/parser/value"
)

func tracer() tracing.Trace {
	return tracing.Select("parser.trace")
}

// Sink receives the four event kinds a rule invocation can produce.
// Depth is the number of enclosing rule calls (0 for a top-level call).
type Sink interface {
	Enter(depth int, rule, posSummary string)
	Succeed(depth int, rule, posSummary string, result value.Value)
	Fail(depth int, rule, posSummary string)
	Fatal(depth int, rule string, err error)
}

var (
	mu      sync.Mutex
	current Sink = LineSink{}
)

// SetSink installs sink as the destination for all future trace events,
// returning the previous one so it can be restored.
func SetSink(sink Sink) Sink {
	mu.Lock()
	defer mu.Unlock()
	prev := current
	current = sink
	return prev
}

func Enter(depth int, rule, posSummary string) {
	mu.Lock()
	sink := current
	mu.Unlock()
	sink.Enter(depth, rule, posSummary)
}

func Succeed(depth int, rule, posSummary string, result value.Value) {
	mu.Lock()
	sink := current
	mu.Unlock()
	sink.Succeed(depth, rule, posSummary, result)
}

func Fail(depth int, rule, posSummary string) {
	mu.Lock()
	sink := current
	mu.Unlock()
	sink.Fail(depth, rule, posSummary)
}

func Fatal(depth int, rule string, err error) {
	mu.Lock()
	sink := current
	mu.Unlock()
	sink.Fatal(depth, rule, err)
}

// LineSink renders each event as a single "depth | rule | position |
// outcome" line through the teacher's tracing.Trace facility.
type LineSink struct{}

func (LineSink) Enter(depth int, rule, posSummary string) {
	tracer().Infof("%d | %s | %s | enter", depth, rule, posSummary)
}

func (LineSink) Succeed(depth int, rule, posSummary string, result value.Value) {
	tracer().Infof("%d | %s | %s | ok -> %s", depth, rule, posSummary, result.String())
}

func (LineSink) Fail(depth int, rule, posSummary string) {
	tracer().Infof("%d | %s | %s | fail", depth, rule, posSummary)
}

func (LineSink) Fatal(depth int, rule string, err error) {
	tracer().Errorf("%d | %s | - | fatal: %s", depth, rule, err.Error())
}

// TreeSink accumulates events into a pterm.LeveledList and renders a tree
// on demand (Render), the way trepl's "pp" command renders a parsed form.
type TreeSink struct {
	items []pterm.LeveledListItem
}

func (t *TreeSink) Enter(depth int, rule, posSummary string) {
	t.items = append(t.items, pterm.LeveledListItem{
		Level: depth,
		Text:  fmt.Sprintf("%s @ %s", rule, posSummary),
	})
}

func (t *TreeSink) Succeed(depth int, rule, posSummary string, result value.Value) {
	t.items = append(t.items, pterm.LeveledListItem{
		Level: depth + 1,
		Text:  fmt.Sprintf("ok -> %s", result.String()),
	})
}

func (t *TreeSink) Fail(depth int, rule, posSummary string) {
	t.items = append(t.items, pterm.LeveledListItem{
		Level: depth + 1,
		Text:  "fail",
	})
}

func (t *TreeSink) Fatal(depth int, rule string, err error) {
	t.items = append(t.items, pterm.LeveledListItem{
		Level: depth + 1,
		Text:  fmt.Sprintf("fatal: %s", err.Error()),
	})
}

// Render prints the accumulated trace as an indented tree and clears it.
func (t *TreeSink) Render() {
	root := pterm.NewTreeFromLeveledList(t.items)
	pterm.DefaultTree.WithRoot(root).Render()
	t.items = nil
}
