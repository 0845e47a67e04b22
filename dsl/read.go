/*
Package dsl is a small, optional front end: a reader that turns a literal
Lisp-like surface syntax — "(a b c)", "#(1 2 3)", "\"abc\"", "#\\x" — into
value.Value trees the engine can parse over. It sits outside the engine's
public interface (spec.md §1 names the compiled expr.Expr tree, not any
surface syntax, as the contract surface) and exists purely so cmd/pegrepl
has something to read.

Tokenizing follows the teacher's terexlang/scan.go: a timtadh/lexmachine
lexer built from a handful of regexes. Unlike scan.go, this package talks
to lexmachine directly rather than through the teacher's internal
lr/scanner adapter, since that adapter exists to feed the teacher's own
Earley engine (lr/earley) — machinery this reader has no use for, given
the surface grammar here is four productions deep and a hand-written
recursive-descent reader over the token stream is the idiomatic fit, the
way terexlang/parse.go's own QuoteOrAtom/Atom/List productions are a
handful of rules despite being run through Earley.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package dsl

import (
	"fmt"
	"strconv"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/mrossini-ethz/parser/value"
)

const (
	tokLParen = iota
	tokRParen
	tokVecOpen
	tokQuote
	tokSymbol
	tokNumber
	tokString
	tokChar
)

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func keep(kind int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(kind, string(m.Bytes), m), nil
	}
}

func newLexer() (*lexmachine.Lexer, error) {
	lx := lexmachine.NewLexer()
	lx.Add([]byte(`#\(`), keep(tokVecOpen))
	lx.Add([]byte(`\(`), keep(tokLParen))
	lx.Add([]byte(`\)`), keep(tokRParen))
	lx.Add([]byte("'"), keep(tokQuote))
	lx.Add([]byte(`#\\.`), keep(tokChar))
	lx.Add([]byte(`"[^"]*"`), keep(tokString))
	lx.Add([]byte(`[+-]?[0-9]+(\.[0-9]+)?`), keep(tokNumber))
	lx.Add([]byte(`[a-zA-Z!$%&*/:<=>?^_~+-][a-zA-Z0-9!$%&*/:<=>?^_~+-]*`), keep(tokSymbol))
	lx.Add([]byte(`;[^\n]*`), skip)
	lx.Add([]byte(`[ \t\r\n]+`), skip)
	if err := lx.Compile(); err != nil {
		return nil, err
	}
	return lx, nil
}

// reader wraps a lexmachine.Scanner with one token of lookahead.
type reader struct {
	scanner *lexmachine.Scanner
	peeked  *lexmachine.Token
	atEOF   bool
}

func newReader(src string) (*reader, error) {
	lx, err := newLexer()
	if err != nil {
		return nil, err
	}
	sc, err := lx.Scanner([]byte(src))
	if err != nil {
		return nil, err
	}
	return &reader{scanner: sc}, nil
}

func (r *reader) next() (*lexmachine.Token, error) {
	if r.peeked != nil {
		tok := r.peeked
		r.peeked = nil
		return tok, nil
	}
	if r.atEOF {
		return nil, nil
	}
	raw, err, eof := r.scanner.Next()
	if eof {
		r.atEOF = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw.(*lexmachine.Token), nil
}

func (r *reader) peek() (*lexmachine.Token, error) {
	if r.peeked == nil {
		tok, err := r.next()
		if err != nil {
			return nil, err
		}
		r.peeked = tok
	}
	return r.peeked, nil
}

// ErrUnexpectedEOF is returned when input ends mid-form.
var ErrUnexpectedEOF = fmt.Errorf("unexpected end of input")

// Read parses a single form from src and returns it as a value.Value.
func Read(src string) (value.Value, error) {
	r, err := newReader(src)
	if err != nil {
		return value.Nil, err
	}
	v, err := r.readForm()
	if err != nil {
		return value.Nil, err
	}
	return v, nil
}

// ReadAll parses every top-level form in src.
func ReadAll(src string) ([]value.Value, error) {
	r, err := newReader(src)
	if err != nil {
		return nil, err
	}
	var out []value.Value
	for {
		tok, err := r.peek()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return out, nil
		}
		v, err := r.readForm()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func (r *reader) readForm() (value.Value, error) {
	tok, err := r.next()
	if err != nil {
		return value.Nil, err
	}
	if tok == nil {
		return value.Nil, ErrUnexpectedEOF
	}
	switch tok.Type {
	case tokLParen:
		return r.readSeq(tokRParen, false)
	case tokVecOpen:
		return r.readSeq(tokRParen, true)
	case tokQuote:
		inner, err := r.readForm()
		if err != nil {
			return value.Nil, err
		}
		return value.List(value.SymName("", "quote"), inner), nil
	case tokSymbol:
		lexeme := string(tok.Lexeme)
		if lexeme == "nil" {
			return value.Nil, nil
		}
		return value.SymName("", lexeme), nil
	case tokNumber:
		return readNumber(string(tok.Lexeme))
	case tokString:
		s := string(tok.Lexeme)
		return value.Str(s[1 : len(s)-1]), nil
	case tokChar:
		lexeme := string(tok.Lexeme)
		return value.Char(rune(lexeme[len(lexeme)-1])), nil
	case tokRParen:
		return value.Nil, fmt.Errorf("unexpected )")
	}
	return value.Nil, fmt.Errorf("unrecognized token %q", string(tok.Lexeme))
}

func (r *reader) readSeq(closer int, vector bool) (value.Value, error) {
	var items []value.Value
	for {
		tok, err := r.peek()
		if err != nil {
			return value.Nil, err
		}
		if tok == nil {
			return value.Nil, ErrUnexpectedEOF
		}
		if tok.Type == closer {
			r.next()
			if vector {
				return value.Vec(items...), nil
			}
			return value.List(items...), nil
		}
		v, err := r.readForm()
		if err != nil {
			return value.Nil, err
		}
		items = append(items, v)
	}
}

func readNumber(lexeme string) (value.Value, error) {
	if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
		return value.Int(i), nil
	}
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return value.Nil, fmt.Errorf("bad number literal %q: %w", lexeme, err)
	}
	return value.Float(f), nil
}
