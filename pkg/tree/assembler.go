package tree

import (
	"strings"

	"github.com/teemtee/fmf/pkg/discovery"
	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/loader"
	"github.com/teemtee/fmf/pkg/merge"
	"github.com/teemtee/fmf/pkg/value"
)

// directiveKey is the reserved mapping key ("/") holding a node's
// inherit/select directive.
const directiveKey = "/"

// Assembler walks an ordered stream of discovered files and folds
// their parsed content into a tree of Nodes.
type Assembler struct {
	root  *Node
	nodes map[string]*Node
}

// NewAssembler creates an Assembler for a tree rooted at rootPath (the
// absolute filesystem path discovery.Root returned).
func NewAssembler(rootPath string) *Assembler {
	root := newNode("/", rootPath, nil)
	return &Assembler{root: root, nodes: map[string]*Node{"/": root}}
}

// Root returns the tree's root node.
func (a *Assembler) Root() *Node { return a.root }

// Assemble loads and merges every discovered file, in order, and
// returns the resulting root node.
func (a *Assembler) Assemble(files []discovery.File) (*Node, error) {
	for _, f := range files {
		content, err := f.Source.Bytes()
		if err != nil {
			return nil, fmferrors.NewFile(f.Path, err, "failed to read file")
		}

		data, err := loader.Load(f.Path, content)
		if err != nil {
			return nil, err
		}

		target, err := a.resolveNode(f.NodeName)
		if err != nil {
			return nil, err
		}

		if err := a.mergeFileInto(target, data, f.Path); err != nil {
			return nil, err
		}
	}
	return a.root, nil
}

// resolveNode returns the node for name, auto-vivifying any missing
// ancestors (inheriting from their own parent by default, since an
// ancestor materialised this way never carries a directive of its
// own).
func (a *Assembler) resolveNode(name string) (*Node, error) {
	if n, ok := a.nodes[name]; ok {
		return n, nil
	}
	if name == "/" {
		return a.root, nil
	}

	segments := splitName(name)
	parent := a.root
	path := ""
	for _, seg := range segments {
		path = joinName(path, seg)
		if n, ok := a.nodes[path]; ok {
			parent = n
			continue
		}
		n := newNode(path, a.root.root, parent)
		n.Data = parent.Data.Clone()
		parent.addChild(n, seg)
		a.nodes[path] = n
		parent = n
	}
	return parent, nil
}

// mergeFileInto merges one file's top-level mapping into target,
// handling the '/' directive, '/segment' scope keys (including
// compound '/a/b/c' forms), and the operator algebra for every
// remaining key. Regular keys are merged into the node before any
// scope key is resolved: a child materialized by a scope key clones
// its parent's data at that moment, so the parent must already carry
// everything this document declares for it.
func (a *Assembler) mergeFileInto(target *Node, data *value.Map, source string) error {
	if err := applyDirective(target, data, source, true); err != nil {
		return err
	}

	regular := value.NewMap()
	var scopeKeys []string
	for _, key := range data.Keys() {
		if key == directiveKey {
			continue
		}
		if strings.HasPrefix(key, "/") {
			scopeKeys = append(scopeKeys, key)
			continue
		}
		v, _ := data.Get(key)
		regular.Set(key, v)
	}

	if regular.Len() > 0 || data.Len() == 0 {
		target.addSource(source)
	}
	target.OriginalData.Merge(regular)
	if err := merge.MergeInto(target.Data, regular); err != nil {
		return err
	}

	for _, key := range scopeKeys {
		v, _ := data.Get(key)
		if err := a.mergeScopeKey(target, key, v, source); err != nil {
			return err
		}
	}
	return nil
}

// mergeScopeKey handles a '/segment' or compound '/a/b/c' key found
// inside a mapping being merged into parent: it resolves (creating as
// needed) the addressed descendant and merges value into it.
func (a *Assembler) mergeScopeKey(parent *Node, key string, val value.Value, source string) error {
	segments := splitName(strings.TrimPrefix(key, "/"))
	if len(segments) == 0 {
		return fmferrors.NewInvalidDirective(parent.Name, "scope key '%s' names no child", key)
	}

	childData, ok := val.(*value.Map)
	if !ok {
		return fmferrors.NewInvalidDirective(parent.Name, "scope key '%s' must map to a mapping", key)
	}

	cur := parent
	path := parent.Name
	for i, seg := range segments {
		path = joinName(path, seg)
		if n, ok := a.nodes[path]; ok {
			cur = n
			continue
		}

		var inheritFalse bool
		if i == len(segments)-1 {
			inheritFalse = directiveSaysNoInherit(childData)
		}
		n := newNode(path, a.root.root, cur)
		if !inheritFalse {
			n.Data = cur.Data.Clone()
		}
		cur.addChild(n, seg)
		a.nodes[path] = n
		cur = n
	}

	return a.mergeFileInto(cur, childData, source)
}

// applyDirective reads the '/' key of data, if present, validating its
// shape and applying 'select' immediately. 'inherit' only has an
// effect at a node's first materialization (handled by the caller
// before Data is populated); when allowReinherit is true and the node
// has no sources yet (i.e. this is effectively still its first
// contributing file), an 'inherit: false' directive clears any
// data the node picked up purely from auto-vivification.
func applyDirective(n *Node, data *value.Map, source string, allowReinherit bool) error {
	raw, ok := data.Get(directiveKey)
	if !ok {
		return nil
	}
	dirMap, ok := raw.(*value.Map)
	if !ok {
		return fmferrors.NewInvalidDirective(n.Name, "'/' directive must be a mapping")
	}

	for _, key := range dirMap.Keys() {
		v, _ := dirMap.Get(key)
		switch key {
		case "inherit":
			b, ok := v.(value.Bool)
			if !ok {
				return fmferrors.NewInvalidDirective(n.Name, "'inherit' must be a boolean")
			}
			if !bool(b) && allowReinherit && len(n.Sources) == 0 {
				n.Data = value.NewMap()
			}
		case "select":
			b, ok := v.(value.Bool)
			if !ok {
				return fmferrors.NewInvalidDirective(n.Name, "'select' must be a boolean")
			}
			sel := bool(b)
			n.Select = &sel
		default:
			return fmferrors.NewInvalidDirective(n.Name, "unknown directive key '%s'", key)
		}
	}
	return nil
}

func directiveSaysNoInherit(data *value.Map) bool {
	raw, ok := data.Get(directiveKey)
	if !ok {
		return false
	}
	dirMap, ok := raw.(*value.Map)
	if !ok {
		return false
	}
	v, ok := dirMap.Get("inherit")
	if !ok {
		return false
	}
	b, ok := v.(value.Bool)
	return ok && !bool(b)
}

func splitName(name string) []string {
	name = strings.Trim(name, "/")
	if name == "" {
		return nil
	}
	return strings.Split(name, "/")
}

func joinName(parent, seg string) string {
	if parent == "/" || parent == "" {
		return "/" + seg
	}
	return parent + "/" + seg
}

func lastSegment(name string) string {
	segs := splitName(name)
	if len(segs) == 0 {
		return "/"
	}
	return segs[len(segs)-1]
}
