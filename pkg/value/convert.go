package value

import "fmt"

// FromGo converts a plain Go value (as produced by encoding/json,
// text/template data, or hand-written test fixtures) into a Value.
// map[string]interface{} has no defined order, so the resulting Map's
// key order follows Go's map iteration order and is unspecified;
// callers that need ordering preserved from YAML source should go
// through the loader package's node-based decoder instead, which
// builds *Map directly from a yaml.Node's Content slice.
func FromGo(v interface{}) Value {
	switch tv := v.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(tv)
	case int:
		return Int(tv)
	case int64:
		return Int(tv)
	case float64:
		// YAML/JSON decode integers into float64 sometimes; keep
		// integral floats as Int so round-tripping stays stable.
		if tv == float64(int64(tv)) {
			return Int(int64(tv))
		}
		return Float(tv)
	case string:
		return String(tv)
	case []interface{}:
		items := make([]Value, len(tv))
		for i, item := range tv {
			items[i] = FromGo(item)
		}
		return &List{Items: items}
	case map[string]interface{}:
		m := NewMap()
		for k, val := range tv {
			m.Set(k, FromGo(val))
		}
		return m
	case Value:
		return tv
	default:
		return String(fmt.Sprintf("%v", tv))
	}
}

// ToGo converts a Value back into plain Go types (map[string]interface{},
// []interface{}, string, int64, float64, bool, nil) for consumers that
// work on plain Go values, such as JSON encoding. The format package
// does not use it; it converts to Starlark values itself.
func ToGo(v Value) interface{} {
	switch tv := v.(type) {
	case nil:
		return nil
	case Null:
		return nil
	case Bool:
		return bool(tv)
	case Int:
		return int64(tv)
	case Float:
		return float64(tv)
	case String:
		return string(tv)
	case *List:
		out := make([]interface{}, tv.Len())
		for i, item := range tv.Items {
			out[i] = ToGo(item)
		}
		return out
	case *Map:
		out := make(map[string]interface{}, tv.Len())
		tv.Iterate(func(k string, val Value) {
			out[k] = ToGo(val)
		})
		return out
	default:
		return nil
	}
}
