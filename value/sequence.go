package value

// Sequence is the subset of Kinds a Position can walk or descend into:
// String, Vector, List. A Value outside these kinds is not a Sequence.
type Sequence interface {
	// SeqLen returns the number of elements.
	SeqLen() int
	// SeqAt returns the i-th element (0-based).
	SeqAt(i int) Value
	// SeqKind reports which of String/Vector/List this sequence is.
	SeqKind() Kind
}

// AsSequence returns v as a Sequence if its Kind is one of
// String/Vector/List, and ok=false otherwise.
func AsSequence(v Value) (Sequence, bool) {
	switch v.kind {
	case KindString:
		return stringSeq(v.data.(string)), true
	case KindVector:
		return vectorSeq(v.data.([]Value)), true
	case KindList:
		return listSeq{head: v.data.(*Cons)}, true
	}
	return nil, false
}

// IsSequence reports whether v's Kind is one of String/Vector/List.
func IsSequence(v Value) bool {
	_, ok := AsSequence(v)
	return ok
}

type stringSeq string

func (s stringSeq) SeqLen() int       { return len([]rune(string(s))) }
func (s stringSeq) SeqAt(i int) Value { return Char([]rune(string(s))[i]) }
func (s stringSeq) SeqKind() Kind     { return KindString }

type vectorSeq []Value

func (s vectorSeq) SeqLen() int       { return len(s) }
func (s vectorSeq) SeqAt(i int) Value { return s[i] }
func (s vectorSeq) SeqKind() Kind     { return KindVector }

type listSeq struct {
	head *Cons
}

func (s listSeq) SeqLen() int       { return s.head.Len() }
func (s listSeq) SeqAt(i int) Value { return s.head.At(i) }
func (s listSeq) SeqKind() Kind     { return KindList }

// SubsequenceEqual reports whether seq[from:from+len(items)] equals items
// element-wise; used for matching literal subsequences (strings, vectors).
func SubsequenceEqual(seq Sequence, from int, items []Value) bool {
	if from+len(items) > seq.SeqLen() {
		return false
	}
	for i, it := range items {
		if !Equal(seq.SeqAt(from+i), it) {
			return false
		}
	}
	return true
}
