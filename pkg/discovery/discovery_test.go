package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teemtee/fmf/pkg/discovery"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestRootFindsAncestorMarker(t *testing.T) {
	top := t.TempDir()
	writeTree(t, top, map[string]string{
		".fmf/version": "1\n",
		"a/b/main.fmf": "tag: []\n",
	})

	root, err := discovery.Root(filepath.Join(top, "a", "b"))
	require.NoError(t, err)

	abs, _ := filepath.Abs(top)
	require.Equal(t, abs, root)
}

func TestRootMissingIsAnError(t *testing.T) {
	top := t.TempDir()
	_, err := discovery.Root(top)
	require.Error(t, err)
}

func TestWalkOrdersMainFirstThenLexicographicThenSubdirs(t *testing.T) {
	top := t.TempDir()
	writeTree(t, top, map[string]string{
		".fmf/version":     "1\n",
		"main.fmf":         "tag: []\n",
		"zeta.fmf":         "tag: []\n",
		"alpha.fmf":        "tag: []\n",
		"sub/main.fmf":     "tag: []\n",
		"sub/extra.fmf":    "tag: []\n",
	})

	cfg, err := discovery.LoadConfig(top)
	require.NoError(t, err)

	files, err := discovery.Walk(top, cfg)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.NodeName)
	}
	require.Equal(t, []string{"/", "/alpha", "/zeta", "/sub", "/sub/extra"}, names)
}

func TestWalkSkipsHiddenDirectoriesUnlessIncluded(t *testing.T) {
	top := t.TempDir()
	writeTree(t, top, map[string]string{
		".fmf/version":      "1\n",
		".fmf/config":       "explore:\n  include:\n  - .visible\n",
		"main.fmf":          "tag: []\n",
		".hidden/main.fmf":  "tag: []\n",
		".visible/main.fmf": "tag: []\n",
	})

	cfg, err := discovery.LoadConfig(top)
	require.NoError(t, err)
	require.True(t, cfg.Include[".visible"])

	files, err := discovery.Walk(top, cfg)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.NodeName)
	}
	require.Equal(t, []string{"/", "/.visible"}, names)
}

func TestWalkTerminatesOnSymlinkLoop(t *testing.T) {
	top := t.TempDir()
	writeTree(t, top, map[string]string{
		".fmf/version": "1\n",
		"main.fmf":     "tag: []\n",
	})
	loop := filepath.Join(top, "loop")
	require.NoError(t, os.Symlink(top, loop))

	cfg, err := discovery.LoadConfig(top)
	require.NoError(t, err)

	files, err := discovery.Walk(top, cfg)
	require.NoError(t, err)

	// The loop's own root is visited once; descending back into top
	// through the symlink is skipped because top is already on the
	// current descent path.
	var names []string
	for _, f := range files {
		names = append(names, f.NodeName)
	}
	require.Equal(t, []string{"/"}, names)
}
