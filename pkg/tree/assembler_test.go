package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemtee/fmf/pkg/discovery"
	"github.com/teemtee/fmf/pkg/tree"
)

func file(nodeName, path, content string) discovery.File {
	return discovery.File{
		NodeName: nodeName,
		Path:     path,
		Source:   discovery.NewBytesSource(path, []byte(content)),
	}
}

// Scenario A — simple inheritance: root main.fmf sets tag:[a],
// test:run.sh; child 'c' appends to tag.
func TestAssembleScenarioASimpleInheritance(t *testing.T) {
	a := tree.NewAssembler("/tmp/tree")
	root, err := a.Assemble([]discovery.File{
		file("/", "main.fmf", "tag:\n  - a\ntest: run.sh\n"),
		file("/c", "c/main.fmf", "tag+:\n  - b\n"),
	})
	require.NoError(t, err)

	tag, _ := root.Data.Get("tag")
	assert.Equal(t, "[a]", tag.String())

	child, ok := root.Child("c")
	require.True(t, ok)
	childTag, _ := child.Data.Get("tag")
	assert.Equal(t, "[a, b]", childTag.String())
	test, _ := child.Data.Get("test")
	assert.Equal(t, "run.sh", test.String())
}

// Scenario B — directive inherit false via a scope key.
func TestAssembleScenarioBInheritFalse(t *testing.T) {
	a := tree.NewAssembler("/tmp/tree")
	root, err := a.Assemble([]discovery.File{
		file("/", "main.fmf", "x: 1\n/child:\n  \"/\":\n    inherit: false\n  y: 2\n"),
	})
	require.NoError(t, err)

	x, ok := root.Data.Get("x")
	require.True(t, ok)
	assert.Equal(t, "1", x.String())

	child, ok := root.Child("child")
	require.True(t, ok)
	assert.False(t, child.Data.Has("x"))
	y, ok := child.Data.Get("y")
	require.True(t, ok)
	assert.Equal(t, "2", y.String())
}

// Scenario C — regex substitute via scope key.
func TestAssembleScenarioCRegexSubstitute(t *testing.T) {
	a := tree.NewAssembler("/tmp/tree")
	root, err := a.Assemble([]discovery.File{
		file("/", "main.fmf", "require:\n  - python2-foo\n  - bar\n/c:\n  \"require~\": \"/python2-/python3-/\"\n"),
	})
	require.NoError(t, err)

	child, ok := root.Child("c")
	require.True(t, ok)
	require_, _ := child.Data.Get("require")
	assert.Equal(t, "[python3-foo, bar]", require_.String())
}

func TestAssembleSeparateFileCreatesChildNode(t *testing.T) {
	a := tree.NewAssembler("/tmp/tree")
	root, err := a.Assemble([]discovery.File{
		file("/", "main.fmf", "tag:\n  - a\n"),
		file("/child", "child.fmf", "tag+:\n  - b\n"),
	})
	require.NoError(t, err)

	child, ok := root.Child("child")
	require.True(t, ok)
	tag, _ := child.Data.Get("tag")
	assert.Equal(t, "[a, b]", tag.String())
	assert.Equal(t, []string{"child.fmf"}, child.Sources)
}

func TestAssembleCompoundScopeKeyCreatesChain(t *testing.T) {
	a := tree.NewAssembler("/tmp/tree")
	root, err := a.Assemble([]discovery.File{
		file("/", "main.fmf", "/a/b/c:\n  key: value\n"),
	})
	require.NoError(t, err)

	a1, ok := root.Child("a")
	require.True(t, ok)
	b1, ok := a1.Child("b")
	require.True(t, ok)
	c1, ok := b1.Child("c")
	require.True(t, ok)
	key, ok := c1.Data.Get("key")
	require.True(t, ok)
	assert.Equal(t, "value", key.String())
}

func TestAssembleRejectsUnknownDirectiveKey(t *testing.T) {
	a := tree.NewAssembler("/tmp/tree")
	_, err := a.Assemble([]discovery.File{
		file("/", "main.fmf", "\"/\":\n  bogus: true\n"),
	})
	require.Error(t, err)
}

// A child declared by a scope key in the same document as a plain
// attribute must inherit that attribute: regular keys merge into the
// node before any scope key clones its data.
func TestAssembleScopeKeyChildSeesSameDocumentAttributes(t *testing.T) {
	a := tree.NewAssembler("/tmp/tree")
	root, err := a.Assemble([]discovery.File{
		file("/", "main.fmf", "tag:\n  - a\n/c:\n  tag+:\n    - b\n"),
	})
	require.NoError(t, err)

	child, ok := root.Child("c")
	require.True(t, ok)
	tag, ok := child.Data.Get("tag")
	require.True(t, ok)
	assert.Equal(t, "[a, b]", tag.String())
}
