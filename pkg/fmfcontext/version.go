// Package fmfcontext implements the version-aware context expression
// language: Context/Version value parsing, three-valued Kleene logic,
// and the 'when' expression grammar evaluated by pkg/adjust. The
// grammar is small enough that a hand-written tokenizer and
// recursive-descent parser carry it without a parser generator.
package fmfcontext

import (
	"strings"

	hashiversion "github.com/hashicorp/go-version"
)

// Version is a single context value split into a name and its ordered
// version parts. "centos-7.9" parses to Name: "centos",
// Parts: ["7", "9"]. A bare "fedora" parses to Name: "fedora",
// Parts: nil.
type Version struct {
	Name  string
	Parts []string
}

// ParseVersion splits raw on '.', ':' and '-' into a Version.
func ParseVersion(raw string) Version {
	tokens := splitAny(raw, ".:-")
	if len(tokens) == 0 {
		return Version{}
	}
	return Version{Name: tokens[0], Parts: tokens[1:]}
}

func splitAny(s, seps string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
}

// numericPart parses a version-part token as a dotted numeric version
// via hashicorp/go-version, which is how this module gets "compare
// numerically when both sides are pure integers" without hand-rolling
// integer parsing and comparison itself: a plain part like "7" or
// "10" parses cleanly, and a non-numeric part like "rawhide" or "rc1"
// fails to parse, falling back to lexical comparison.
func numericPart(s string) (*hashiversion.Version, bool) {
	v, err := hashiversion.NewVersion(s)
	if err != nil {
		return nil, false
	}
	return v, true
}

// partsEqual compares two version-part tokens: numerically if both
// are pure integers, lexically otherwise.
func partsEqual(a, b string) bool {
	av, aok := numericPart(a)
	bv, bok := numericPart(b)
	if aok && bok {
		return av.Compare(bv) == 0
	}
	return a == b
}

// order is the result of comparePart, which compares two version-part
// tokens, honoring the rule that the literal "rawhide" outranks any
// numeric part.
type order int

const (
	less order = iota
	equalOrder
	greater
)

func comparePart(a, b string) order {
	if a == b {
		return equalOrder
	}
	aRawhide, bRawhide := a == "rawhide", b == "rawhide"
	if aRawhide && bRawhide {
		return equalOrder
	}
	if aRawhide {
		return greater
	}
	if bRawhide {
		return less
	}

	av, aok := numericPart(a)
	bv, bok := numericPart(b)
	if aok && bok {
		switch {
		case av.Compare(bv) < 0:
			return less
		case av.Compare(bv) > 0:
			return greater
		default:
			return equalOrder
		}
	}
	if a < b {
		return less
	}
	return greater
}
