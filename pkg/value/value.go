// Package value implements the dynamic, heterogeneous attribute values
// that make up fmf node data: null, bool, int, float, string, ordered
// list and ordered mapping. It is a closed sum type rather than a bare
// interface{}: the sealed() method restricts the implementing set to
// the types declared here, so merge and filter code can exhaustively
// switch over them.
package value

import "fmt"

// Value is any fmf attribute value. The set of implementing types is
// closed: Null, Bool, Int, Float, String, *List and *Map. All merge,
// comparison and filter algebra operates structurally on this sum.
type Value interface {
	fmt.Stringer
	Kind() Kind
	sealed()
}

// Kind tags a Value's concrete type, used by merge and filter code that
// needs to branch on type without a full type switch.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Null is the explicit null/nil value, distinct from a Go nil interface
// so that "key present with null value" and "key absent" stay separate.
type Null struct{}

func (Null) sealed()       {}
func (Null) Kind() Kind    { return KindNull }
func (Null) String() string { return "null" }

// Bool wraps a boolean attribute value.
type Bool bool

func (Bool) sealed()    {}
func (Bool) Kind() Kind { return KindBool }
func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Int wraps an integer attribute value.
type Int int64

func (Int) sealed()          {}
func (Int) Kind() Kind       { return KindInt }
func (i Int) String() string { return fmt.Sprintf("%d", int64(i)) }

// Float wraps a floating point attribute value.
type Float float64

func (Float) sealed()          {}
func (Float) Kind() Kind       { return KindFloat }
func (f Float) String() string { return fmt.Sprintf("%g", float64(f)) }

// String wraps a string attribute value.
type String string

func (String) sealed()          {}
func (String) Kind() Kind       { return KindString }
func (s String) String() string { return string(s) }

// Equal reports whether two Values are structurally equal. List and Map
// equality recurse; Map equality for this purpose considers only the
// set of key/value pairs, not insertion order (see (*Map).OrderedEqual
// for the round-trip notion of equality used by invariant 4).
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		return av == b.(Float)
	case String:
		return av == b.(String)
	case *List:
		return av.equal(b.(*List))
	case *Map:
		return av.SetEqual(b.(*Map))
	default:
		return false
	}
}
