package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemtee/fmf/pkg/discovery"
	"github.com/teemtee/fmf/pkg/query"
	"github.com/teemtee/fmf/pkg/tree"
)

func buildTree(t *testing.T, files ...discovery.File) *tree.Node {
	t.Helper()
	root, err := tree.NewAssembler("/tmp/tree").Assemble(files)
	require.NoError(t, err)
	return root
}

func file(nodeName, path, content string) discovery.File {
	return discovery.File{
		NodeName: nodeName,
		Path:     path,
		Source:   discovery.NewBytesSource(path, []byte(content)),
	}
}

func names(nodes []*tree.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestClimbYieldsLeavesByDefault(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf", "/b:\n  x: 1\n/a:\n  x: 2\n"),
	)

	got := query.Climb(root, query.ClimbOptions{})
	assert.Equal(t, []string{"/b", "/a"}, names(got))

	got = query.Climb(root, query.ClimbOptions{Whole: true})
	assert.Equal(t, []string{"/", "/b", "/a"}, names(got))
}

func TestClimbSortOrdersChildrenByName(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf", "/b:\n  x: 1\n/a:\n  x: 2\n"),
	)

	got := query.Climb(root, query.ClimbOptions{Sort: true})
	assert.Equal(t, []string{"/a", "/b"}, names(got))
}

func TestClimbSelectDirectiveOverridesDefaults(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf",
			"/branch:\n  \"/\":\n    select: true\n  /leaf:\n    x: 1\n"+
				"/hidden:\n  \"/\":\n    select: false\n  x: 2\n"),
	)

	// /branch has a child, yet select: true includes it even without
	// whole; /hidden is a leaf, yet select: false suppresses it.
	got := query.Climb(root, query.ClimbOptions{})
	assert.Equal(t, []string{"/branch", "/branch/leaf"}, names(got))
}

func TestClimbDeterminism(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf", "/c:\n  x: 1\n/a:\n  x: 2\n/b:\n  x: 3\n"),
	)

	first := names(query.Climb(root, query.ClimbOptions{Whole: true}))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, names(query.Climb(root, query.ClimbOptions{Whole: true})))
	}
}

func TestPruneByNameAndKey(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf",
			"/tests/smoke:\n  test: smoke.sh\n/tests/deep:\n  test: deep.sh\n/plans/all:\n  plan: full\n"),
	)

	got, err := query.Prune(root, query.PruneOptions{
		Names: []string{"/tests/"},
		Keys:  []string{"test"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/tests/smoke", "/tests/deep"}, names(got))
}

func TestPruneConditionPredicate(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf", "/a:\n  tier: 1\n/b:\n  tier: 2\n"),
	)

	got, err := query.Prune(root, query.PruneOptions{
		Conditions: []query.Predicate{func(n *tree.Node) bool {
			v, ok := n.Data.Get("tier")
			return ok && v.String() == "2"
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/b"}, names(got))
}

func TestPruneInvalidNameRegexFails(t *testing.T) {
	root := buildTree(t, file("/", "main.fmf", "x: 1\n"))

	_, err := query.Prune(root, query.PruneOptions{Names: []string{"("}})
	require.Error(t, err)
}

// Scenario F — filter with escaped operator.
func TestFilterEscapedAlternation(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf", "/one:\n  tag:\n    - Tier1\n/three:\n  tag:\n    - Tier3\n"),
	)

	got, err := query.Prune(root, query.PruneOptions{
		Filters: []string{`tag: Tier(1\|2)`},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/one"}, names(got))
}

func TestFilterOrAndCombination(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf",
			"/a:\n  tag:\n    - Tier1\n  category: Sanity\n"+
				"/b:\n  tag:\n    - Tier2\n  category: Security\n"+
				"/c:\n  tag:\n    - Tier3\n  category: Sanity\n"),
	)

	got, err := query.Prune(root, query.PruneOptions{
		Filters: []string{"tag: Tier1 & category: Sanity | tag: Tier2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, names(got))
}

func TestFilterCommaAlternativesAndNegation(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf",
			"/a:\n  tag:\n    - Tier1\n/b:\n  tag:\n    - Tier2\n/c:\n  tag:\n    - destructive\n"),
	)

	got, err := query.Prune(root, query.PruneOptions{
		Filters: []string{"tag: Tier1, Tier2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, names(got))

	got, err = query.Prune(root, query.PruneOptions{
		Filters: []string{"tag: -destructive"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, names(got))
}

func TestFilterUnknownKeyIsFalseNotError(t *testing.T) {
	root := buildTree(t, file("/", "main.fmf", "/a:\n  tag:\n    - Tier1\n"))

	got, err := query.Prune(root, query.PruneOptions{
		Filters: []string{"bogus: anything"},
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterNameRegexAtom(t *testing.T) {
	root := buildTree(t,
		file("/", "main.fmf", "/tests/smoke:\n  test: s.sh\n/plans/all:\n  test: p.sh\n"),
	)

	got, err := query.Prune(root, query.PruneOptions{
		Filters: []string{"/tests/ & test: s.sh"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/tests/smoke"}, names(got))
}

func TestFilterMalformedExpressionFails(t *testing.T) {
	root := buildTree(t, file("/", "main.fmf", "x: 1\n"))

	for _, expr := range []string{"", "tag: ", " : value", "tag: (", "tag: a & | b"} {
		_, err := query.Prune(root, query.PruneOptions{Filters: []string{expr}})
		require.Error(t, err, expr)
	}
}

func TestFindLocatesNodeByName(t *testing.T) {
	root := buildTree(t, file("/", "main.fmf", "/a/b:\n  x: 1\n"))

	n := query.Find(root, "/a/b")
	require.NotNil(t, n)
	assert.Equal(t, "/a/b", n.Name)

	assert.Nil(t, query.Find(root, "/nope"))
}

func TestFilterCaseInsensitiveOption(t *testing.T) {
	root := buildTree(t, file("/", "main.fmf", "/a:\n  tag:\n    - Tier1\n"))

	got, err := query.Prune(root, query.PruneOptions{Filters: []string{"tag: tier1"}})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = query.Prune(root, query.PruneOptions{
		Filters:         []string{"tag: tier1"},
		CaseInsensitive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/a"}, names(got))
}
