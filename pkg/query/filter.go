package query

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/tree"
	"github.com/teemtee/fmf/pkg/value"
)

// Filter is a compiled filter expression: a disjunction of
// conjunctions of atoms.
//
//	tag: Tier1 | tag: Tier2 & category: Sanity
//
// An atom is 'key: pattern' (pattern matched anchored against the
// string form of the value, any element for lists) or a bare regex
// with no colon, matched against the node's name. Comma-separated
// patterns are syntactic sugar for per-pattern alternatives, and a
// '-' prefix negates a pattern. '|' and '&' are escaped with a
// backslash inside patterns.
type Filter struct {
	source  string
	clauses [][]atom
}

type atom struct {
	key      string
	nameOnly bool
	patterns []pattern
}

type pattern struct {
	re     *regexp2.Regexp
	negate bool
}

// ParseFilter compiles a filter expression with case-sensitive
// matching. Malformed expressions fail with FilterError.
func ParseFilter(expression string) (*Filter, error) {
	return ParseFilterInsensitive(expression, false)
}

// ParseFilterInsensitive compiles a filter expression, optionally
// folding patterns and values to a case-insensitive comparison.
func ParseFilterInsensitive(expression string, insensitive bool) (*Filter, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmferrors.NewFilter("empty filter expression")
	}

	opts := regexp2.None
	if insensitive {
		opts = regexp2.IgnoreCase
	}

	f := &Filter{source: expression}
	for _, clause := range splitUnescaped(expression, '|') {
		var atoms []atom
		for _, literal := range splitUnescaped(clause, '&') {
			a, err := parseAtom(literal, expression, opts)
			if err != nil {
				return nil, err
			}
			atoms = append(atoms, a)
		}
		f.clauses = append(f.clauses, atoms)
	}
	return f, nil
}

func parseAtom(literal, expression string, opts regexp2.RegexOptions) (atom, error) {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return atom{}, fmferrors.NewFilter("empty atom in filter '%s'", expression)
	}

	key, rawPattern, hasColon := strings.Cut(literal, ":")
	a := atom{}
	if hasColon {
		a.key = strings.TrimSpace(key)
		if a.key == "" {
			return atom{}, fmferrors.NewFilter("missing key in filter atom '%s'", literal)
		}
	} else {
		// No colon: the whole atom is a regex over the node name.
		a.nameOnly = true
		rawPattern = literal
	}

	for _, raw := range strings.Split(rawPattern, ",") {
		raw = strings.TrimSpace(raw)
		negate := false
		if strings.HasPrefix(raw, "-") {
			negate = true
			raw = raw[1:]
		}
		if raw == "" {
			return atom{}, fmferrors.NewFilter("missing pattern in filter atom '%s'", literal)
		}
		raw = unescapeOperators(raw)

		// Name regexes search, they do not anchor, matching the
		// name-selection behavior of Prune; value patterns must
		// match the whole string form.
		anchored := raw
		if !a.nameOnly {
			anchored = "^(?:" + raw + ")$"
		}
		re, err := regexp2.Compile(anchored, opts)
		if err != nil {
			return atom{}, fmferrors.NewFilter("invalid pattern %q in filter '%s': %s", raw, expression, err)
		}
		a.patterns = append(a.patterns, pattern{re: re, negate: negate})
	}
	return a, nil
}

// Match evaluates the filter against a node: at least one clause must
// hold, and a clause holds when all its atoms do.
func (f *Filter) Match(n *tree.Node) (bool, error) {
	for _, clause := range f.clauses {
		ok, err := matchClause(clause, n)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func matchClause(clause []atom, n *tree.Node) (bool, error) {
	for _, a := range clause {
		ok, err := matchAtom(a, n)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchAtom(a atom, n *tree.Node) (bool, error) {
	var texts []string
	if a.nameOnly {
		texts = []string{n.Name}
	} else {
		v, ok := n.Data.Get(a.key)
		if !ok {
			// Unknown key: the atom is false, it does not abort the
			// query.
			return false, nil
		}
		texts = valueStrings(v)
	}

	// Comma alternatives: at least one pattern must succeed.
	for _, p := range a.patterns {
		matched := false
		for _, text := range texts {
			m, err := p.re.MatchString(text)
			if err != nil {
				return false, fmferrors.NewFilter("pattern failed on %q: %s", text, err)
			}
			if m {
				matched = true
				break
			}
		}
		if p.negate {
			matched = !matched
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// valueStrings renders a value for filter matching: list values match
// per element, everything else by its string form.
func valueStrings(v value.Value) []string {
	if list, ok := v.(*value.List); ok {
		out := make([]string, 0, list.Len())
		for _, item := range list.Items {
			out = append(out, item.String())
		}
		return out
	}
	return []string{v.String()}
}

// splitUnescaped splits s on sep, honoring backslash escapes: '\|'
// and '\&' stay inside a single piece (the backslash is preserved
// for unescapeOperators to strip later).
func splitUnescaped(s string, sep byte) []string {
	var out []string
	var cur strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte('\\')
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == sep:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if escaped {
		cur.WriteByte('\\')
	}
	out = append(out, cur.String())
	return out
}

// unescapeOperators strips the backslash from escaped '|' and '&',
// leaving every other escape sequence for the regex engine.
func unescapeOperators(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '|' || s[i+1] == '&') {
			out.WriteByte(s[i+1])
			i++
			continue
		}
		out.WriteByte(s[i])
	}
	return out.String()
}
