package processor

import "github.com/mrossini-ethz/parser/value"

// PatternElem is one position of a destructuring Pattern: either a plain
// binding (Name) or a nested sub-pattern destructuring that position's own
// list contents.
type PatternElem struct {
	Name string
	Sub  *Pattern
}

// Pattern describes how to destructure a list Value into named bindings —
// positional elements, optionally nested, plus an optional rest-tail name
// collecting whatever remains as a list. Matches spec.md §4.5's "positional,
// nested, and rest-tail forms".
type Pattern struct {
	Elems []PatternElem
	Rest  string
}

// Bind attempts to destructure v (which must be a List) against p,
// returning the flattened name→value bindings. ok is false if v is not a
// list, is too short for p's elements, or (when p has no Rest) is longer.
func Bind(p Pattern, v value.Value) (map[string]value.Value, bool) {
	cons, ok := v.AsCons()
	if !ok {
		return nil, false
	}
	out := make(map[string]value.Value)
	cur := cons
	for _, el := range p.Elems {
		if cur == nil {
			return nil, false
		}
		item := cur.Car
		if el.Sub != nil {
			sub, ok := Bind(*el.Sub, item)
			if !ok {
				return nil, false
			}
			for k, v := range sub {
				out[k] = v
			}
		} else if el.Name != "" {
			out[el.Name] = item
		}
		cur = cur.Cdr
	}
	if p.Rest != "" {
		out[p.Rest] = value.List(restSlice(cur)...)
	} else if cur != nil {
		return nil, false
	}
	return out, true
}

func restSlice(c *value.Cons) []value.Value {
	if c == nil {
		return nil
	}
	return c.Slice()
}
