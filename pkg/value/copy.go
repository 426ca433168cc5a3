package value

// DeepCopy returns an independent clone of v sharing no mutable state,
// the value-level building block behind Node.Copy().
func DeepCopy(v Value) Value {
	switch tv := v.(type) {
	case nil:
		return nil
	case *List:
		return tv.Clone()
	case *Map:
		return tv.Clone()
	default:
		// Null, Bool, Int, Float, String are immutable value types.
		return v
	}
}
