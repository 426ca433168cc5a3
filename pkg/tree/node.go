// Package tree builds the hierarchical metadata tree: Node is the
// in-memory representation of one named point in the tree, and
// Assembler (assembler.go) walks discovered files and folds their
// data into nodes following the inheritance and directive rules.
// Ownership runs top-down from the root; the parent back-reference is
// a plain non-owning pointer.
package tree

import "github.com/teemtee/fmf/pkg/value"

// Node is one point in the metadata tree.
type Node struct {
	Name string

	// Data is the merge-normalized, post-adjust view: no operator
	// suffixes remain on any key.
	Data *value.Map

	// OriginalData is the pre-merge, pre-adjust accumulation of what
	// this node's own contributing files literally declared (operator
	// suffixes intact), used for round-trip writes.
	OriginalData *value.Map

	// Sources lists every file that contributed to this node, in the
	// order they were merged.
	Sources []string

	Parent *Node
	root   string

	Adjusted bool

	// Select mirrors the '/' directive's 'select' key; nil means no
	// directive set it, so Query applies the branch/leaf default.
	Select *bool

	children   []*Node
	childIndex map[string]*Node
}

func newNode(name, root string, parent *Node) *Node {
	return &Node{
		Name:         name,
		Data:         value.NewMap(),
		OriginalData: value.NewMap(),
		Parent:       parent,
		root:         root,
		childIndex:   map[string]*Node{},
	}
}

// Root returns the absolute filesystem path of this node's tree root.
func (n *Node) Root() string { return n.root }

// Children returns this node's direct children in insertion (document)
// order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Child looks up a direct child by its last name segment.
func (n *Node) Child(segment string) (*Node, bool) {
	c, ok := n.childIndex[segment]
	return c, ok
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

func (n *Node) addChild(c *Node, segment string) {
	n.children = append(n.children, c)
	n.childIndex[segment] = c
}

// addSource records that file contributed to n, if it is not already
// the most recently recorded source.
func (n *Node) addSource(file string) {
	if len(n.Sources) > 0 && n.Sources[len(n.Sources)-1] == file {
		return
	}
	n.Sources = append(n.Sources, file)
}

// Copy returns an independent deep clone of the subtree rooted at n.
// The clone's Parent is nil; callers re-parent it as needed.
func (n *Node) Copy() *Node {
	clone := n.copyNode(nil)
	return clone
}

func (n *Node) copyNode(parent *Node) *Node {
	c := &Node{
		Name:         n.Name,
		Data:         n.Data.Clone(),
		OriginalData: n.OriginalData.Clone(),
		Sources:      append([]string(nil), n.Sources...),
		Parent:       parent,
		root:         n.root,
		Adjusted:     n.Adjusted,
		childIndex:   map[string]*Node{},
	}
	if n.Select != nil {
		s := *n.Select
		c.Select = &s
	}
	for _, child := range n.children {
		childClone := child.copyNode(c)
		segment := lastSegment(childClone.Name)
		c.addChild(childClone, segment)
	}
	return c
}
