// Package fmf materializes a hierarchical metadata tree from YAML
// files laid out on a filesystem, applying inheritance, typed merge
// operators, directives and context-conditional adjustments, and
// exposes querying and filtering over the resulting nodes. This
// package is the facade; the machinery lives under pkg/ (discovery,
// loader, tree, merge, fmfcontext, adjust, query, roundtrip, fetch).
package fmf

import (
	"context"
	"os"
	"path/filepath"

	"github.com/teemtee/fmf/pkg/adjust"
	"github.com/teemtee/fmf/pkg/discovery"
	"github.com/teemtee/fmf/pkg/fetch"
	"github.com/teemtee/fmf/pkg/fmfcontext"
	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/query"
	"github.com/teemtee/fmf/pkg/tree"
)

// TreeVersion is the format version written by Init into the
// .fmf/version marker.
const TreeVersion = 1

// Tree is a fully assembled metadata tree.
type Tree struct {
	root *tree.Node
	path string
}

// NewTree discovers the tree root above path, enumerates its .fmf
// files and assembles them into a tree.
func NewTree(path string) (*Tree, error) {
	rootPath, err := discovery.Root(path)
	if err != nil {
		return nil, err
	}

	cfg, err := discovery.LoadConfig(rootPath)
	if err != nil {
		return nil, err
	}

	files, err := discovery.Walk(rootPath, cfg)
	if err != nil {
		return nil, err
	}

	root, err := tree.NewAssembler(rootPath).Assemble(files)
	if err != nil {
		return nil, err
	}

	return &Tree{root: root, path: rootPath}, nil
}

// Root returns the tree's root node.
func (t *Tree) Root() *tree.Node { return t.root }

// Path returns the absolute filesystem path of the tree root.
func (t *Tree) Path() string { return t.path }

// Find returns the node with the given name, or nil.
func (t *Tree) Find(name string) *tree.Node {
	return query.Find(t.root, name)
}

// Adjust applies every node's adjust rules against ctx.
func (t *Tree) Adjust(ctx fmfcontext.Context, opts adjust.Options) error {
	return adjust.Adjust(t.root, ctx, opts)
}

// Climb traverses the tree per the selection rules of query.Climb.
func (t *Tree) Climb(opts query.ClimbOptions) []*tree.Node {
	return query.Climb(t.root, opts)
}

// Prune traverses the tree yielding only nodes that satisfy every
// criterion in opts.
func (t *Tree) Prune(opts query.PruneOptions) ([]*tree.Node, error) {
	return query.Prune(t.root, opts)
}

// Copy returns an independent deep clone of the tree.
func (t *Tree) Copy() *Tree {
	return &Tree{root: t.root.Copy(), path: t.path}
}

// Node resolves a reference: a local one (URL empty) looks the name
// up in this tree, a remote one fetches the referenced tree through
// the locked fetcher first and looks the name up there.
func (t *Tree) Node(ctx context.Context, ref fetch.Reference, locked fetch.Locked) (*tree.Node, error) {
	if ref.URL == "" {
		n := t.Find(ref.Name)
		if n == nil {
			return nil, fmferrors.NewGeneral("node '%s' not found", ref.Name)
		}
		return n, nil
	}

	dir, err := locked.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	remote, err := NewTree(filepath.Join(dir, ref.Path))
	if err != nil {
		return nil, err
	}
	name := ref.Name
	if name == "" {
		name = "/"
	}
	n := remote.Find(name)
	if n == nil {
		return nil, fmferrors.NewGeneral("node '%s' not found in '%s'", name, ref)
	}
	return n, nil
}

// Init creates the .fmf/version marker in path, establishing a new
// tree root. It fails if the marker already exists.
func Init(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmferrors.NewGeneral("resolving '%s': %s", path, err)
	}

	marker := filepath.Join(abs, ".fmf", "version")
	if _, err := os.Stat(marker); err == nil {
		return "", fmferrors.NewFile(marker, nil, "tree root already initialized")
	}

	if err := os.MkdirAll(filepath.Dir(marker), 0o755); err != nil {
		return "", fmferrors.NewFile(marker, err, "failed to create marker directory")
	}
	if err := os.WriteFile(marker, []byte("1\n"), 0o644); err != nil {
		return "", fmferrors.NewFile(marker, err, "failed to write version marker")
	}
	return abs, nil
}
