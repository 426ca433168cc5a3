package fmfcontext

import "strings"

// Context maps a dimension name to the ordered Version values it
// currently holds. Most dimensions carry exactly one value; a
// dimension may legitimately carry several (e.g. a multi-arch build).
type Context map[string][]Version

// New builds a Context from raw dimension -> version-string values,
// the shape callers typically have on hand (API input, CLI
// convenience flags).
func New(raw map[string][]string) Context {
	ctx := make(Context, len(raw))
	for dim, values := range raw {
		versions := make([]Version, len(values))
		for i, v := range values {
			versions[i] = ParseVersion(v)
		}
		ctx[dim] = versions
	}
	return ctx
}

// Folded returns a copy of the context with every dimension name and
// value folded to lower case, the left half of a case-insensitive
// evaluation (see EvalFolded for the right half).
func (c Context) Folded() Context {
	out := make(Context, len(c))
	for dim, versions := range c {
		folded := make([]Version, len(versions))
		for i, v := range versions {
			parts := make([]string, len(v.Parts))
			for j, p := range v.Parts {
				parts[j] = strings.ToLower(p)
			}
			folded[i] = Version{Name: strings.ToLower(v.Name), Parts: parts}
		}
		out[strings.ToLower(dim)] = folded
	}
	return out
}

// Defined reports whether dimension has any value in the context.
func (c Context) Defined(dimension string) bool {
	_, ok := c[dimension]
	return ok
}

// Op identifies one of the twelve binary comparison operators.
type Op string

const (
	OpEqual       Op = "=="
	OpNotEqual    Op = "!="
	OpLess        Op = "<"
	OpLessEqual   Op = "<="
	OpGreater     Op = ">"
	OpGreaterEqual Op = ">="
	OpMinorEqual       Op = "~="
	OpMinorNotEqual    Op = "~!="
	OpMinorLess        Op = "~<"
	OpMinorLessEqual   Op = "~<="
	OpMinorGreater     Op = "~>"
	OpMinorGreaterEqual Op = "~>="
)

// Evaluate implements the binary-op crossing rule: the op is
// checked against every left value crossed with every right value;
// the result is True if any pairing succeeds, CannotDecide if none
// succeed but at least one pairing is undefined, and False otherwise.
func Evaluate(op Op, lefts, rights []Version) Tri {
	sawUndefined := false
	for _, l := range lefts {
		for _, r := range rights {
			switch comparePair(op, l, r) {
			case True:
				return True
			case CannotDecide:
				sawUndefined = true
			}
		}
	}
	if sawUndefined {
		return CannotDecide
	}
	return False
}

func comparePair(op Op, l, r Version) Tri {
	minor := false
	base := op
	switch op {
	case OpMinorEqual:
		minor, base = true, OpEqual
	case OpMinorNotEqual:
		minor, base = true, OpNotEqual
	case OpMinorLess:
		minor, base = true, OpLess
	case OpMinorLessEqual:
		minor, base = true, OpLessEqual
	case OpMinorGreater:
		minor, base = true, OpGreater
	case OpMinorGreaterEqual:
		minor, base = true, OpGreaterEqual
	}

	if !minor {
		return comparePlain(base, l, r)
	}

	// Minor-scoped: only defined when the major (first) version part
	// matches; comparison then proceeds over the remaining parts.
	if len(l.Parts) == 0 || len(r.Parts) == 0 || !partsEqual(l.Parts[0], r.Parts[0]) {
		return CannotDecide
	}
	sub := func(v Version) Version {
		return Version{Name: v.Name, Parts: v.Parts[1:]}
	}
	return comparePlain(base, sub(l), sub(r))
}

func comparePlain(op Op, l, r Version) Tri {
	switch op {
	case OpEqual:
		return FromBool(equalVersions(l, r))
	case OpNotEqual:
		return FromBool(!equalVersions(l, r))
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return orderCompare(op, l, r)
	default:
		return CannotDecide
	}
}

// equalVersions implements version equality: names match, and every
// version part on the right equals the corresponding left part (the
// left may carry more parts than the right).
func equalVersions(l, r Version) bool {
	if l.Name != r.Name {
		return false
	}
	if len(r.Parts) > len(l.Parts) {
		return false
	}
	for i, rp := range r.Parts {
		if !partsEqual(l.Parts[i], rp) {
			return false
		}
	}
	return true
}

// orderCompare implements version ordering: defined only when names
// match and the left has at least one version part; a missing left
// part is treated as smaller than any corresponding right part.
func orderCompare(op Op, l, r Version) Tri {
	if l.Name != r.Name || len(l.Parts) == 0 {
		return CannotDecide
	}

	n := len(l.Parts)
	if len(r.Parts) > n {
		n = len(r.Parts)
	}

	result := equalOrder
	for i := 0; i < n; i++ {
		switch {
		case i >= len(l.Parts):
			result = less
		case i >= len(r.Parts):
			result = greater
		default:
			result = comparePart(l.Parts[i], r.Parts[i])
		}
		if result != equalOrder {
			break
		}
	}

	switch op {
	case OpLess:
		return FromBool(result == less)
	case OpLessEqual:
		return FromBool(result != greater)
	case OpGreater:
		return FromBool(result == greater)
	case OpGreaterEqual:
		return FromBool(result != less)
	default:
		return CannotDecide
	}
}
