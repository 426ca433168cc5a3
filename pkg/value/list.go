package value

// List is an ordered sequence of Value. It is used both for list
// attribute values and for list(s)-of-patterns accepted by the '~' and
// '-~' merge operators.
type List struct {
	Items []Value
}

func NewList(items ...Value) *List {
	return &List{Items: append([]Value(nil), items...)}
}

func (*List) sealed()    {}
func (*List) Kind() Kind { return KindList }

func (l *List) String() string {
	out := "["
	for i, item := range l.Items {
		if i > 0 {
			out += ", "
		}
		out += item.String()
	}
	return out + "]"
}

// Len returns the number of items.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// Append returns a new List with v appended; the receiver is untouched.
func (l *List) Append(v Value) *List {
	out := l.Clone()
	out.Items = append(out.Items, v)
	return out
}

// Prepend returns a new List with v prepended; the receiver is untouched.
func (l *List) Prepend(v Value) *List {
	out := &List{Items: make([]Value, 0, l.Len()+1)}
	out.Items = append(out.Items, v)
	out.Items = append(out.Items, l.Items...)
	return out
}

// Concat returns a new List containing the receiver's items followed by
// other's items (used by the '+' operator on two lists).
func (l *List) Concat(other *List) *List {
	out := &List{Items: make([]Value, 0, l.Len()+other.Len())}
	out.Items = append(out.Items, l.Items...)
	out.Items = append(out.Items, other.Items...)
	return out
}

// ConcatPrepend returns other's items followed by the receiver's items
// (used by the '+<' operator on two lists).
func (l *List) ConcatPrepend(other *List) *List {
	return other.Concat(l)
}

// Clone performs a deep copy of the list and its items.
func (l *List) Clone() *List {
	if l == nil {
		return &List{}
	}
	out := &List{Items: make([]Value, len(l.Items))}
	for i, item := range l.Items {
		out.Items[i] = DeepCopy(item)
	}
	return out
}

func (l *List) equal(other *List) bool {
	if l.Len() != other.Len() {
		return false
	}
	for i := range l.Items {
		if !Equal(l.Items[i], other.Items[i]) {
			return false
		}
	}
	return true
}

// Contains reports whether v is present among the list's items using
// structural equality (used by the '-' list-removal operator).
func (l *List) Contains(v Value) bool {
	for _, item := range l.Items {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

// Without returns a new List with every item that appears (structurally)
// in remove dropped, preserving the original relative order.
func (l *List) Without(remove *List) *List {
	out := &List{}
	for _, item := range l.Items {
		if !remove.Contains(item) {
			out.Items = append(out.Items, item)
		}
	}
	return out
}
