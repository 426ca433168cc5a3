package format_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemtee/fmf/pkg/discovery"
	"github.com/teemtee/fmf/pkg/format"
	"github.com/teemtee/fmf/pkg/tree"
)

func testNode(t *testing.T) *tree.Node {
	t.Helper()
	root, err := tree.NewAssembler("/srv/tree").Assemble([]discovery.File{{
		NodeName: "/",
		Path:     "main.fmf",
		Source: discovery.NewBytesSource("main.fmf",
			[]byte("test: run.sh\ntier: 1\ntag:\n  - Tier1\n")),
	}})
	require.NoError(t, err)
	return root
}

func TestEvalValueExposesNodeAttributes(t *testing.T) {
	n := testNode(t)

	got, err := format.EvalValue("name", n)
	require.NoError(t, err)
	assert.Equal(t, "/", got)

	got, err = format.EvalValue("root", n)
	require.NoError(t, err)
	assert.Equal(t, "/srv/tree", got)

	got, err = format.EvalValue(`data["test"]`, n)
	require.NoError(t, err)
	assert.Equal(t, "run.sh", got)
}

func TestEvalValuePathHelpers(t *testing.T) {
	n := testNode(t)

	got, err := format.EvalValue(`basename(data["test"])`, n)
	require.NoError(t, err)
	assert.Equal(t, "run.sh", got)

	got, err = format.EvalValue(`dirname(root)`, n)
	require.NoError(t, err)
	assert.Equal(t, "/srv", got)
}

func TestEvalCondition(t *testing.T) {
	n := testNode(t)

	ok, err := format.EvalCondition(`data["tier"] == 1`, n)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = format.EvalCondition(`"Tier2" in data["tag"]`, n)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalConditionMissingKeyFails(t *testing.T) {
	n := testNode(t)

	_, err := format.EvalCondition(`data["bogus"] == 1`, n)
	require.Error(t, err)
}

func TestExpandReplacesIndexedPlaceholders(t *testing.T) {
	n := testNode(t)

	out, err := format.Expand("{0}: {1}", []string{"name", `data["test"]`}, n)
	require.NoError(t, err)
	assert.Equal(t, "/: run.sh", out)
}

func TestSandboxHasNoAmbientBuiltins(t *testing.T) {
	n := testNode(t)

	// Nothing resembling file or process access is reachable.
	for _, expr := range []string{`open("/etc/passwd")`, `os.environ`} {
		_, err := format.EvalValue(expr, n)
		require.Error(t, err, expr)
	}
}
