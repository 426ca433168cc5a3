package fmf_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fmf "github.com/teemtee/fmf"
	"github.com/teemtee/fmf/pkg/adjust"
	"github.com/teemtee/fmf/pkg/fetch"
	"github.com/teemtee/fmf/pkg/fmfcontext"
	"github.com/teemtee/fmf/pkg/fmferrors"
	"github.com/teemtee/fmf/pkg/query"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".fmf"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".fmf", "version"), []byte("1\n"), 0o644))
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestNewTreeEndToEnd(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.fmf":          "tag:\n  - a\ntest: run.sh\n",
		"child/main.fmf":    "tag+:\n  - b\n",
		"child/extra.fmf":   "test: extra.sh\n",
		"ignored/notes.txt": "not metadata\n",
	})

	tr, err := fmf.NewTree(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, tr.Path())

	child := tr.Find("/child")
	require.NotNil(t, child)
	tag, _ := child.Data.Get("tag")
	assert.Equal(t, "[a, b]", tag.String())

	extra := tr.Find("/child/extra")
	require.NotNil(t, extra)
	test, _ := extra.Data.Get("test")
	assert.Equal(t, "extra.sh", test.String())
}

func TestNewTreeFromSubdirectoryFindsRoot(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"deep/nested/main.fmf": "x: 1\n",
	})

	tr, err := fmf.NewTree(filepath.Join(dir, "deep", "nested"))
	require.NoError(t, err)
	assert.Equal(t, dir, tr.Path())
}

func TestNewTreeWithoutRootFails(t *testing.T) {
	_, err := fmf.NewTree(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, fmferrors.RootMissing)
}

func TestTreeAdjustAndPrune(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.fmf": "enabled: true\n" +
			"/a:\n  tag:\n    - Tier1\n" +
			"/b:\n  tag:\n    - Tier2\n  adjust:\n    - when: distro == fedora\n      enabled: false\n",
	})

	tr, err := fmf.NewTree(dir)
	require.NoError(t, err)

	ctx := fmfcontext.New(map[string][]string{"distro": {"fedora"}})
	require.NoError(t, tr.Adjust(ctx, adjust.Options{}))

	b := tr.Find("/b")
	require.NotNil(t, b)
	enabled, _ := b.Data.Get("enabled")
	assert.Equal(t, "false", enabled.String())

	nodes, err := tr.Prune(query.PruneOptions{Filters: []string{"tag: Tier1"}})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "/a", nodes[0].Name)
}

func TestTreeCopyIsIndependent(t *testing.T) {
	dir := writeTree(t, map[string]string{"main.fmf": "x: 1\n"})

	tr, err := fmf.NewTree(dir)
	require.NoError(t, err)

	clone := tr.Copy()
	clone.Root().Data.Set("x", nil)

	x, ok := tr.Root().Data.Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", x.String())
}

func TestInitCreatesMarkerOnce(t *testing.T) {
	dir := t.TempDir()

	abs, err := fmf.Init(dir)
	require.NoError(t, err)
	content, err := os.ReadFile(filepath.Join(abs, ".fmf", "version"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(content))

	_, err = fmf.Init(dir)
	require.Error(t, err)
}

func TestNodeResolvesLocalReference(t *testing.T) {
	dir := writeTree(t, map[string]string{"main.fmf": "/a:\n  x: 1\n"})

	tr, err := fmf.NewTree(dir)
	require.NoError(t, err)

	n, err := tr.Node(context.Background(), fetch.Reference{Name: "/a"}, fetch.Locked{})
	require.NoError(t, err)
	assert.Equal(t, "/a", n.Name)

	_, err = tr.Node(context.Background(), fetch.Reference{Name: "/nope"}, fetch.Locked{})
	require.Error(t, err)
}

func TestNodeResolvesRemoteReferenceThroughFetcher(t *testing.T) {
	remote := writeTree(t, map[string]string{"main.fmf": "/r:\n  x: 1\n"})

	// The fake fetcher "clones" by symlinking the prepared tree into
	// the cache destination.
	fetcher := fetch.FetcherFunc(func(ctx context.Context, ref fetch.Reference, destination string) error {
		return os.Symlink(remote, destination)
	})

	local := writeTree(t, map[string]string{"main.fmf": "x: 1\n"})
	tr, err := fmf.NewTree(local)
	require.NoError(t, err)

	n, err := tr.Node(context.Background(),
		fetch.Reference{URL: "https://example.com/repo.git", Name: "/r"},
		fetch.Locked{Fetcher: fetcher, CacheDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "/r", n.Name)
}
