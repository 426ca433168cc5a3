// Package merge implements the typed merge-operator algebra applied
// to key suffixes ("tag+", "require-", "summary~") during tree
// assembly (pkg/tree) and adjust-rule application (pkg/adjust). A
// single Apply entry point dispatches on the left-hand value's
// runtime type, so both callers share one set of per-type rules.
package merge

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/value"
)

// Operator identifies one of the five recognized key suffixes.
type Operator string

const (
	Append       Operator = "+"
	Prepend      Operator = "+<"
	Remove       Operator = "-"
	RegexReplace Operator = "~"
	RegexRemove  Operator = "-~"
)

// Suffixes lists every recognized suffix, longest first so that a
// caller stripping a key's trailing operator tries "-~" before "-" and
// "+<" before "+".
var Suffixes = []Operator{RegexRemove, Prepend, Append, Remove, RegexReplace}

// SplitKey separates a raw mapping key into its base name and
// operator, if any. A key with no recognized suffix returns op == "".
func SplitKey(key string) (base string, op Operator) {
	for _, suffix := range Suffixes {
		if strings.HasSuffix(key, string(suffix)) {
			return strings.TrimSuffix(key, string(suffix)), suffix
		}
	}
	return key, ""
}

// MergeInto folds source's keys into target in place, following the
// declared-order and collision rules: an unsuffixed occurrence
// of a base key replaces target's value outright; a suffixed
// occurrence then operates on whatever target now holds for that base
// key, so multiple variants of the same base key are applied in their
// declared insertion order. This single function is the operator
// algebra's one true entry point: it is used both by the Assembler
// merging a file's data into a node, and (via Apply's own Map-on-Map
// case) recursively, when '+' combines two nested mappings.
func MergeInto(target *value.Map, source *value.Map) error {
	for _, key := range source.Keys() {
		raw, _ := source.Get(key)
		base, op := SplitKey(key)

		if op == "" {
			target.Set(base, value.DeepCopy(raw))
			continue
		}

		existing, _ := target.Get(base)
		merged, err := Apply(op, base, existing, raw)
		if err != nil {
			return err
		}
		if merged == nil {
			// '-', '~' and '-~' silently no-op when there is nothing to
			// operate on; leave the base key (still) absent.
			continue
		}
		target.Set(base, merged)
	}
	return nil
}

// Apply combines existing (the inherited value, nil if the key has no
// prior value) with incoming (the right-hand side of the suffixed
// key) according to op, returning the value that should be stored
// under base. A nil, nil result means "no-op, leave unset". node is
// used only for error messages.
func Apply(op Operator, node string, existing, incoming value.Value) (value.Value, error) {
	if existing == nil {
		switch op {
		case Append, Prepend:
			return value.DeepCopy(incoming), nil
		default:
			// '-', '~' and '-~' all require an existing value to
			// operate on; with none, they silently no-op.
			return nil, nil
		}
	}

	switch op {
	case Append:
		return applyAppend(node, existing, incoming)
	case Prepend:
		return applyPrepend(node, existing, incoming)
	case Remove:
		return applyRemove(node, existing, incoming)
	case RegexReplace:
		return applyRegexReplace(node, existing, incoming)
	case RegexRemove:
		return applyRegexRemove(node, existing, incoming)
	default:
		return nil, fmferrors.NewMerge(node, "unknown merge operator '%s'", op)
	}
}

func applyAppend(node string, existing, incoming value.Value) (value.Value, error) {
	switch e := existing.(type) {
	case *value.List:
		if m, ok := incoming.(*value.Map); ok {
			return mergeMappingIntoEachListElement(node, e, m)
		}
		in, ok := incoming.(*value.List)
		if !ok {
			in = value.NewList(incoming)
		}
		return e.Concat(in), nil
	case *value.Map:
		if l, ok := incoming.(*value.List); ok {
			return mergeMappingIntoEachListElement(node, l, e)
		}
		in, ok := incoming.(*value.Map)
		if !ok {
			return nil, fmferrors.NewMerge(node, "'+' on a mapping requires a mapping or list, got %s", incoming.Kind())
		}
		merged := e.Clone()
		if err := MergeInto(merged, in); err != nil {
			return nil, err
		}
		return merged, nil
	case value.String:
		in, ok := incoming.(value.String)
		if !ok {
			return nil, fmferrors.NewMerge(node, "'+' on a string requires a string, got %s", incoming.Kind())
		}
		return value.String(string(e) + string(in)), nil
	case value.Int, value.Float:
		return applyNumericAdd(node, e, incoming)
	default:
		return nil, fmferrors.NewMerge(node, "'+' is not defined for %s", existing.Kind())
	}
}

// mergeMappingIntoEachListElement implements "mapping + list" / "list +
// mapping": the mapping is merged, as an update, into every element of
// the list. Every element must itself be a mapping.
func mergeMappingIntoEachListElement(node string, list *value.List, mapping *value.Map) (value.Value, error) {
	out := make([]value.Value, list.Len())
	for i, item := range list.Items {
		m, ok := item.(*value.Map)
		if !ok {
			return nil, fmferrors.NewMerge(node, "'+' combining a mapping with a list requires mapping list elements, got %s", item.Kind())
		}
		clone := m.Clone()
		if err := MergeInto(clone, mapping); err != nil {
			return nil, err
		}
		out[i] = clone
	}
	return value.NewList(out...), nil
}

func applyNumericAdd(node string, existing value.Value, incoming value.Value) (value.Value, error) {
	n, ok := numeric(incoming)
	if !ok {
		return nil, fmferrors.NewMerge(node, "'+' on a number requires a number, got %s", incoming.Kind())
	}
	if i, ok := existing.(value.Int); ok {
		if _, isFloat := incoming.(value.Float); isFloat {
			return value.Float(float64(i) + n), nil
		}
		return value.Int(int64(i) + int64(n)), nil
	}
	f := existing.(value.Float)
	return value.Float(float64(f) + n), nil
}

func numeric(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), true
	case value.Float:
		return float64(n), true
	default:
		return 0, false
	}
}

func applyPrepend(node string, existing, incoming value.Value) (value.Value, error) {
	switch e := existing.(type) {
	case *value.List:
		if m, ok := incoming.(*value.Map); ok {
			return mergeMappingIntoEachListElement(node, e, m)
		}
		in, ok := incoming.(*value.List)
		if !ok {
			in = value.NewList(incoming)
		}
		return e.ConcatPrepend(in), nil
	case value.String:
		in, ok := incoming.(value.String)
		if !ok {
			return nil, fmferrors.NewMerge(node, "'+<' on a string requires a string, got %s", incoming.Kind())
		}
		return value.String(string(in) + string(e)), nil
	default:
		return nil, fmferrors.NewMerge(node, "'+<' is not defined for %s", existing.Kind())
	}
}

func applyRemove(node string, existing, incoming value.Value) (value.Value, error) {
	switch e := existing.(type) {
	case *value.List:
		in, ok := incoming.(*value.List)
		if !ok {
			in = value.NewList(incoming)
		}
		return e.Without(in), nil
	case *value.Map:
		names, err := stringList(node, incoming)
		if err != nil {
			return nil, err
		}
		clone := e.Clone()
		for _, name := range names {
			clone.Delete(name)
		}
		return clone, nil
	case value.Int, value.Float:
		n, ok := numeric(incoming)
		if !ok {
			return nil, fmferrors.NewMerge(node, "'-' on a number requires a number, got %s", incoming.Kind())
		}
		if i, ok := e.(value.Int); ok {
			if _, isFloat := incoming.(value.Float); !isFloat {
				return value.Int(int64(i) - int64(n)), nil
			}
		}
		ef, _ := numeric(e)
		return value.Float(ef - n), nil
	case value.String:
		patterns, err := stringOrStringList(node, incoming, "-")
		if err != nil {
			return nil, err
		}
		out := string(e)
		for _, pattern := range patterns {
			re, err := regexp2.Compile(pattern, regexp2.None)
			if err != nil {
				return nil, fmferrors.NewMerge(node, "invalid '-' pattern '%s': %s", pattern, err)
			}
			out, err = re.Replace(out, "", -1, -1)
			if err != nil {
				return nil, fmferrors.NewMerge(node, "evaluating '-' pattern: %s", err)
			}
		}
		return value.String(out), nil
	default:
		return nil, fmferrors.NewMerge(node, "'-' is not defined for %s", existing.Kind())
	}
}

func stringList(node string, v value.Value) ([]string, error) {
	list, ok := v.(*value.List)
	if !ok {
		if s, ok := v.(value.String); ok {
			return []string{string(s)}, nil
		}
		return nil, fmferrors.NewMerge(node, "expected a list of key names, got %s", v.Kind())
	}
	out := make([]string, 0, list.Len())
	for _, item := range list.Items {
		s, ok := item.(value.String)
		if !ok {
			return nil, fmferrors.NewMerge(node, "expected a list of key names, got %s item", item.Kind())
		}
		out = append(out, string(s))
	}
	return out, nil
}

// applyRegexReplace implements the '~' operator: incoming is either a
// single "dPATTERNdREPLACEMENTd" directive (delimiter d is whatever
// character starts the string) or a list of such directives, applied
// in order, to every string existing holds (the scalar itself, or
// every string item of a list).
func applyRegexReplace(node string, existing, incoming value.Value) (value.Value, error) {
	directives, err := stringOrStringList(node, incoming, "~")
	if err != nil {
		return nil, err
	}

	switch e := existing.(type) {
	case value.String:
		out := string(e)
		for _, d := range directives {
			out, err = applyOneRegexReplace(node, d, out)
			if err != nil {
				return nil, err
			}
		}
		return value.String(out), nil
	case *value.List:
		items := make([]value.Value, e.Len())
		for i, item := range e.Items {
			s, ok := item.(value.String)
			if !ok {
				items[i] = item
				continue
			}
			out := string(s)
			for _, d := range directives {
				out, err = applyOneRegexReplace(node, d, out)
				if err != nil {
					return nil, err
				}
			}
			items[i] = value.String(out)
		}
		return value.NewList(items...), nil
	default:
		return nil, fmferrors.NewMerge(node, "'~' is not defined for %s", existing.Kind())
	}
}

func applyOneRegexReplace(node, directive, input string) (string, error) {
	pattern, replacement, err := parseRegexDirective(node, directive)
	if err != nil {
		return "", err
	}
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return "", fmferrors.NewMerge(node, "invalid '~' pattern '%s': %s", pattern, err)
	}
	out, err := re.Replace(input, replacement, -1, -1)
	if err != nil {
		return "", fmferrors.NewMerge(node, "evaluating '~' replacement: %s", err)
	}
	return out, nil
}

// applyRegexRemove implements the '-~' operator: incoming is a
// pattern, or list of patterns; a list element / mapping key / scalar
// string matching any one of them is dropped (list, mapping) or
// blanked (string).
func applyRegexRemove(node string, existing, incoming value.Value) (value.Value, error) {
	patterns, err := stringOrStringList(node, incoming, "-~")
	if err != nil {
		return nil, err
	}
	matchers := make([]*regexp2.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, fmferrors.NewMerge(node, "invalid '-~' pattern '%s': %s", p, err)
		}
		matchers = append(matchers, re)
	}
	matchesAny := func(s string) (bool, error) {
		for _, re := range matchers {
			ok, err := re.MatchString(s)
			if err != nil {
				return false, fmferrors.NewMerge(node, "evaluating '-~' pattern: %s", err)
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}

	switch e := existing.(type) {
	case *value.List:
		kept := make([]value.Value, 0, e.Len())
		for _, item := range e.Items {
			if s, ok := item.(value.String); ok {
				matched, err := matchesAny(string(s))
				if err != nil {
					return nil, err
				}
				if matched {
					continue
				}
			}
			kept = append(kept, item)
		}
		return value.NewList(kept...), nil
	case value.String:
		matched, err := matchesAny(string(e))
		if err != nil {
			return nil, err
		}
		if matched {
			return value.String(""), nil
		}
		return e, nil
	case *value.Map:
		clone := value.NewMap()
		for _, key := range e.Keys() {
			matched, err := matchesAny(key)
			if err != nil {
				return nil, err
			}
			if matched {
				continue
			}
			v, _ := e.Get(key)
			clone.Set(key, v)
		}
		return clone, nil
	default:
		return nil, fmferrors.NewMerge(node, "'-~' is not defined for %s", existing.Kind())
	}
}

func stringOrStringList(node string, v value.Value, op string) ([]string, error) {
	if s, ok := v.(value.String); ok {
		return []string{string(s)}, nil
	}
	list, ok := v.(*value.List)
	if !ok {
		return nil, fmferrors.NewMerge(node, "'%s' requires a string or list of strings, got %s", op, v.Kind())
	}
	out := make([]string, 0, list.Len())
	for _, item := range list.Items {
		s, ok := item.(value.String)
		if !ok {
			return nil, fmferrors.NewMerge(node, "'%s' requires a string or list of strings, got %s item", op, item.Kind())
		}
		out = append(out, string(s))
	}
	return out, nil
}

// parseRegexDirective splits a "dPATTERNdREPLACEMENTd" string on its
// leading delimiter character, honoring backslash-escaped delimiters
// inside pattern/replacement. A trailing delimiter is optional.
func parseRegexDirective(node, directive string) (pattern, replacement string, err error) {
	if len(directive) < 2 {
		return "", "", fmferrors.NewMerge(node, "'~' directive too short: %q", directive)
	}
	delim := directive[0]
	parts := splitUnescaped(directive[1:], delim)
	if len(parts) < 2 {
		return "", "", fmferrors.NewMerge(node, "'~' directive must look like '%cPATTERN%cREPLACEMENT%c', got %q", delim, delim, delim, directive)
	}
	return parts[0], parts[1], nil
}

func splitUnescaped(s string, delim byte) []string {
	var out []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == delim {
			cur.WriteByte(delim)
			i++
			continue
		}
		if s[i] == delim {
			out = append(out, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	out = append(out, cur.String())
	return out
}
