/*
pegrepl is a small interactive shell around the parser engine, grounded
closely on terex/terexlang/trepl/repl.go: readline for line editing, pterm
for colored status messages and tree rendering, and schuko/tracing's
gologadapter as the log backend.

Usage: enter an s-expression input form (e.g. "(a b c)" or "\"hello\"") and
it is parsed against a small demo grammar pre-loaded at startup. Commands:

	:trace RULE     turn on tracing for RULE
	:untrace RULE   turn it back off
	:quit           exit

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/mrossini-ethz/parser"
	"github.com/mrossini-ethz/parser/dsl"
	"github.com/mrossini-ethz/parser/expr"
	"github.com/mrossini-ethz/parser/processor"
	"github.com/mrossini-ethz/parser/trace"
)

func tracer() tracing.Trace {
	return tracing.Select("parser.repl")
}

func main() {
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	flag.Parse()
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel))

	pterm.Info.Println("Welcome to pegrepl")
	g := demoGrammar()

	rl, err := readline.New("pegrepl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(1)
	}
	defer rl.Close()

	tracer().Infof("Quit with <ctrl>D or :quit")
	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := handleLine(g, line); quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func handleLine(g *parser.Grammar, line string) (quit bool) {
	switch {
	case line == ":quit":
		return true
	case strings.HasPrefix(line, ":trace "):
		g.Trace(strings.TrimSpace(strings.TrimPrefix(line, ":trace ")), true)
		return false
	case strings.HasPrefix(line, ":untrace "):
		g.Untrace(strings.TrimSpace(strings.TrimPrefix(line, ":untrace ")))
		return false
	}

	input, err := dsl.Read(line)
	if err != nil {
		pterm.Error.Println(err.Error())
		return false
	}
	sink := &trace.TreeSink{}
	prev := parser.SetTraceSink(sink)
	result, ok, err := g.Parse("top", input, true)
	parser.SetTraceSink(prev)
	sink.Render()
	if err != nil {
		pterm.Error.Println(err.Error())
		return false
	}
	if !ok {
		pterm.Info.Println("no match")
		return false
	}
	pterm.Info.Println(result.String())
	return false
}

// demoGrammar pre-loads a couple of rules so the REPL has something to try
// against out of the box: `top` matches a run of symbols, numbers and/or
// strings, such as the elements of "(a 1 b 2)".
func demoGrammar() *parser.Grammar {
	g := parser.NewGrammar()
	g.DefineRule("atom", nil, false, "", nil,
		expr.Choice(expr.Class(expr.AnySymbol), expr.Class(expr.AnyNumber), expr.Class(expr.AnyString)),
	)
	g.DefineRule("top", nil, false, "", nil,
		expr.ZeroOrMore(expr.CallRule("atom")),
		processor.Identity(true),
	)
	return g
}
