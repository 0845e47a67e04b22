/*
Package value implements the tagged-union Value domain the engine parses
over: symbols, characters, bytes, numbers, strings, vectors, lists, nil and
opaque "form" values. Strings, vectors and lists double as Sequences the
position cursor can walk or descend into.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package value

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parser.value'.
func tracer() tracing.Trace {
	return tracing.Select("parser.value")
}

// Kind discriminates the cases of a Value.
type Kind int8

const (
	KindNil Kind = iota
	KindSymbol
	KindCharacter
	KindByte
	KindNumber
	KindString
	KindVector
	KindList
	KindForm
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "Nil"
	case KindSymbol:
		return "Symbol"
	case KindCharacter:
		return "Character"
	case KindByte:
		return "Byte"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindVector:
		return "Vector"
	case KindList:
		return "List"
	case KindForm:
		return "Form"
	}
	return "?"
}

// Symbol is an interned name with an optional package qualifier.
type Symbol struct {
	Package string
	Name    string
}

var internTable = make(map[Symbol]*Symbol)

// Intern returns the canonical Symbol for (pkg, name); two calls with the
// same qualifier and name yield the identical *Symbol.
func Intern(pkg, name string) *Symbol {
	key := Symbol{Package: pkg, Name: name}
	if sym, ok := internTable[key]; ok {
		return sym
	}
	sym := &Symbol{Package: pkg, Name: name}
	internTable[key] = sym
	tracer().Debugf("interned symbol %s", sym)
	return sym
}

func (s *Symbol) String() string {
	if s == nil {
		return "nil"
	}
	if s.Package == "" {
		return s.Name
	}
	return s.Package + ":" + s.Name
}

// Number is either an integer or a real; IsInt distinguishes the two for
// printing, arithmetic promotes freely to float64.
type Number struct {
	IsInt bool
	I     int64
	F     float64
}

func (n Number) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}

func (n Number) String() string {
	if n.IsInt {
		return fmt.Sprintf("%d", n.I)
	}
	return fmt.Sprintf("%g", n.F)
}

// Value is a tagged variant over the parser's data domain. Zero value is Nil.
type Value struct {
	kind Kind
	data interface{}
}

// Nil is the empty/absent value; it also represents the empty list.
var Nil = Value{kind: KindNil}

// Sym wraps an interned symbol as a Value.
func Sym(sym *Symbol) Value { return Value{kind: KindSymbol, data: sym} }

// SymName interns (pkg, name) and wraps it.
func SymName(pkg, name string) Value { return Sym(Intern(pkg, name)) }

// Char wraps a character.
func Char(r rune) Value { return Value{kind: KindCharacter, data: r} }

// Byte wraps a byte (0..=255).
func Byte(b byte) Value { return Value{kind: KindByte, data: b} }

// Int wraps an integer number.
func Int(i int64) Value { return Value{kind: KindNumber, data: Number{IsInt: true, I: i}} }

// Float wraps a real number.
func Float(f float64) Value { return Value{kind: KindNumber, data: Number{F: f}} }

// Str wraps a string as a Value (and as a Sequence of characters).
func Str(s string) Value { return Value{kind: KindString, data: s} }

// Vec wraps a slice of Values as a Vector Value.
func Vec(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindVector, data: cp}
}

// List builds a cons-list Value from a slice of elements, in order.
func List(items ...Value) Value {
	return Value{kind: KindList, data: newCons(items)}
}

// Form wraps an arbitrary, unrestricted value.
func Form(v interface{}) Value { return Value{kind: KindForm, data: v} }

// Kind reports which case this Value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is the Nil value or the empty list.
func (v Value) IsNil() bool {
	if v.kind == KindNil {
		return true
	}
	if v.kind == KindList {
		return v.data.(*Cons) == nil
	}
	return false
}

// Data returns the underlying payload, typed per Kind:
// *Symbol, rune, byte, Number, string, []Value, *Cons, or interface{} (Form).
func (v Value) Data() interface{} { return v.data }

// AsSymbol returns the wrapped symbol, or nil if v is not a Symbol.
func (v Value) AsSymbol() *Symbol {
	if v.kind != KindSymbol {
		return nil
	}
	return v.data.(*Symbol)
}

// AsCharacter returns the wrapped rune and whether v held one.
func (v Value) AsCharacter() (rune, bool) {
	if v.kind != KindCharacter {
		return 0, false
	}
	return v.data.(rune), true
}

// AsByte returns the wrapped byte and whether v held one.
func (v Value) AsByte() (byte, bool) {
	if v.kind != KindByte {
		return 0, false
	}
	return v.data.(byte), true
}

// AsNumber returns the wrapped Number and whether v held one.
func (v Value) AsNumber() (Number, bool) {
	if v.kind != KindNumber {
		return Number{}, false
	}
	return v.data.(Number), true
}

// AsString returns the wrapped string and whether v held one.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.data.(string), true
}

// AsVector returns the wrapped slice and whether v held one.
func (v Value) AsVector() ([]Value, bool) {
	if v.kind != KindVector {
		return nil, false
	}
	return v.data.([]Value), true
}

// AsCons returns the wrapped list head (nil for the empty list) and whether
// v held a list.
func (v Value) AsCons() (*Cons, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.data.(*Cons), true
}

// Equal reports structural equality between two Values.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindSymbol:
		return a.data.(*Symbol) == b.data.(*Symbol)
	case KindCharacter:
		return a.data.(rune) == b.data.(rune)
	case KindByte:
		return a.data.(byte) == b.data.(byte)
	case KindNumber:
		na, nb := a.data.(Number), b.data.(Number)
		return na.Float() == nb.Float()
	case KindString:
		return a.data.(string) == b.data.(string)
	case KindVector:
		va, vb := a.data.([]Value), b.data.([]Value)
		if len(va) != len(vb) {
			return false
		}
		for i := range va {
			if !Equal(va[i], vb[i]) {
				return false
			}
		}
		return true
	case KindList:
		return consEqual(a.data.(*Cons), b.data.(*Cons))
	case KindForm:
		return a.data == b.data
	}
	return false
}

func consEqual(a, b *Cons) bool {
	for a != nil && b != nil {
		if !Equal(a.Car, b.Car) {
			return false
		}
		a, b = a.Cdr, b.Cdr
	}
	return a == nil && b == nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindSymbol:
		return v.data.(*Symbol).String()
	case KindCharacter:
		return fmt.Sprintf("#\\%c", v.data.(rune))
	case KindByte:
		return fmt.Sprintf("#x%02x", v.data.(byte))
	case KindNumber:
		return v.data.(Number).String()
	case KindString:
		return fmt.Sprintf("%q", v.data.(string))
	case KindVector:
		items := v.data.([]Value)
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.String()
		}
		return "#(" + strings.Join(parts, " ") + ")"
	case KindList:
		return v.data.(*Cons).String()
	case KindForm:
		return fmt.Sprintf("<form %v>", v.data)
	}
	return "?"
}
