// Package query implements tree traversal and node selection: Climb
// (leaf/whole iteration with the 'select' directive override), Prune
// (AND-combined name/key/filter/predicate selection) and the filter
// expression grammar over node attributes.
package query

import (
	"sort"

	"github.com/dlclark/regexp2"

	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/tree"
)

// ClimbOptions controls traversal.
type ClimbOptions struct {
	// Whole yields branch nodes alongside leaves.
	Whole bool

	// Sort yields children in lexicographic name order instead of
	// insertion (document) order.
	Sort bool
}

// Climb returns n and its descendants that pass the selection rule, in
// traversal order. A node's 'select' directive overrides the default:
// a leaf with 'select: false' is suppressed, a branch with
// 'select: true' is included regardless of Whole.
func Climb(n *tree.Node, opts ClimbOptions) []*tree.Node {
	var out []*tree.Node
	climb(n, opts, &out)
	return out
}

func climb(n *tree.Node, opts ClimbOptions, out *[]*tree.Node) {
	if selected(n, opts.Whole) {
		*out = append(*out, n)
	}
	children := n.Children()
	if opts.Sort {
		sort.Slice(children, func(i, j int) bool {
			return children[i].Name < children[j].Name
		})
	}
	for _, child := range children {
		climb(child, opts, out)
	}
}

func selected(n *tree.Node, whole bool) bool {
	if n.Select != nil {
		return *n.Select
	}
	return whole || n.IsLeaf()
}

// Predicate is an arbitrary selection callback over a node.
type Predicate func(*tree.Node) bool

// PruneOptions combines the selection criteria; a node must satisfy
// all of them (logical AND) to be yielded.
type PruneOptions struct {
	ClimbOptions

	// Names holds regular expressions; a node matches when any of
	// them finds a match in its name.
	Names []string

	// Keys lists attribute names that must all be present in a
	// node's data.
	Keys []string

	// Filters holds filter-expression strings; all must match.
	Filters []string

	// CaseInsensitive folds filter patterns and values to a
	// case-insensitive comparison.
	CaseInsensitive bool

	// Conditions holds arbitrary predicates; all must return true.
	Conditions []Predicate

	// Sources, when non-empty, selects only nodes at least one of
	// whose contributing files is listed.
	Sources []string
}

// Prune walks n's subtree and returns the nodes matching every
// criterion in opts, in traversal order. A malformed name regex or
// filter expression aborts the query with FilterError.
func Prune(n *tree.Node, opts PruneOptions) ([]*tree.Node, error) {
	nameRes := make([]*regexp2.Regexp, len(opts.Names))
	for i, expr := range opts.Names {
		re, err := regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, fmferrors.NewFilter("invalid name regex %q: %s", expr, err)
		}
		nameRes[i] = re
	}

	filters := make([]*Filter, len(opts.Filters))
	for i, expr := range opts.Filters {
		f, err := ParseFilterInsensitive(expr, opts.CaseInsensitive)
		if err != nil {
			return nil, err
		}
		filters[i] = f
	}

	sources := map[string]bool{}
	for _, src := range opts.Sources {
		sources[src] = true
	}

	var out []*tree.Node
	for _, node := range Climb(n, opts.ClimbOptions) {
		ok, err := matches(node, nameRes, filters, opts, sources)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, node)
		}
	}
	return out, nil
}

func matches(node *tree.Node, nameRes []*regexp2.Regexp, filters []*Filter,
	opts PruneOptions, sources map[string]bool) (bool, error) {

	for _, key := range opts.Keys {
		if !node.Data.Has(key) {
			return false, nil
		}
	}

	if len(nameRes) > 0 {
		found := false
		for _, re := range nameRes {
			m, err := re.MatchString(node.Name)
			if err != nil {
				return false, fmferrors.NewFilter("name regex failed on '%s': %s", node.Name, err)
			}
			if m {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}

	if len(sources) > 0 {
		found := false
		for _, src := range node.Sources {
			if sources[src] {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}

	for _, f := range filters {
		m, err := f.Match(node)
		if err != nil {
			return false, err
		}
		if !m {
			return false, nil
		}
	}

	for _, cond := range opts.Conditions {
		if !cond(node) {
			return false, nil
		}
	}

	return true, nil
}

// Find locates the node with the given name anywhere in n's subtree,
// or nil.
func Find(n *tree.Node, name string) *tree.Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children() {
		if found := Find(child, name); found != nil {
			return found
		}
	}
	return nil
}
