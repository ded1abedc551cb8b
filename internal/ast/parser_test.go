package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PlainSelector(t *testing.T) {
	tree, err := Parse(`"a"`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	require.Len(t, root.Children, 1)

	stmt := tree.Get(root.Children[0])
	require.Len(t, stmt.Verbs, 1)
	assert.Equal(t, "select", stmt.Verbs[0].Name)
	name, ok := stmt.Verbs[0].Positional(0)
	require.True(t, ok)
	assert.Equal(t, "a", name)
	assert.Empty(t, stmt.Children)
}

func TestParse_ChildScope(t *testing.T) {
	tree, err := Parse(`"a"{}`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	require.Len(t, root.Children, 1)
	stmt := tree.Get(root.Children[0])
	require.Len(t, stmt.Children, 1)
	assert.Empty(t, tree.Get(stmt.Children[0]).Verbs)
}

func TestParse_ParentScope(t *testing.T) {
	tree, err := Parse(`{"a"}`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	require.Len(t, root.Children, 1)
	outer := tree.Get(root.Children[0])
	assert.Empty(t, outer.Verbs)
	require.Len(t, outer.Children, 1)

	inner := tree.Get(outer.Children[0])
	assert.Equal(t, "select", inner.Verbs[0].Name)
	assert.Equal(t, outer.ID, inner.Parent)
}

func TestParse_NestedParentScope(t *testing.T) {
	tree, err := Parse(`{{"b"}}`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	outer := tree.Get(root.Children[0])
	require.Len(t, outer.Children, 1)
	middle := tree.Get(outer.Children[0])
	require.Len(t, middle.Children, 1)
	inner := tree.Get(middle.Children[0])
	assert.Equal(t, "select", inner.Verbs[0].Name)
}

func TestParse_ForcedSelectorInScope(t *testing.T) {
	tree, err := Parse(`"b"{!"a"}`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	outer := tree.Get(root.Children[0])
	require.Len(t, outer.Children, 1)
	inner := tree.Get(outer.Children[0])
	assert.Equal(t, "forced", inner.Verbs[0].Name)
	name, ok := inner.Verbs[0].Positional(0)
	require.True(t, ok)
	assert.Equal(t, "a", name)
}

func TestParse_LabelAndUse(t *testing.T) {
	tree, err := Parse(`@label("foo") "a"; @use("foo"){}`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	require.Len(t, root.Children, 2)

	first := tree.Get(root.Children[0])
	require.Len(t, first.Verbs, 2)
	assert.Equal(t, "label", first.Verbs[0].Name)
	label, _ := first.Verbs[0].Positional(0)
	assert.Equal(t, "foo", label)
	assert.Equal(t, "select", first.Verbs[1].Name)

	second := tree.Get(root.Children[1])
	require.Len(t, second.Verbs, 1)
	assert.Equal(t, "use", second.Verbs[0].Name)
	useLabel, _ := second.Verbs[0].Positional(0)
	assert.Equal(t, "foo", useLabel)
}

func TestParse_UseWithForcedNamedArg(t *testing.T) {
	tree, err := Parse(`"a" @label("x") @use("x", forced="true")`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	stmt := tree.Get(root.Children[0])
	require.Len(t, stmt.Verbs, 3)
	use := stmt.Verbs[2]
	assert.Equal(t, "use", use.Name)
	forced, ok := use.Named("forced")
	require.True(t, ok)
	assert.Equal(t, "true", forced)
}

func TestParse_IgnoreWithPositionalArg(t *testing.T) {
	tree, err := Parse(`"a"{@ignore("b")}`)
	require.NoError(t, err)

	root := tree.Get(tree.Root)
	outer := tree.Get(root.Children[0])
	inner := tree.Get(outer.Children[0])
	require.Len(t, inner.Verbs, 1)
	assert.Equal(t, "ignore", inner.Verbs[0].Name)
	name, ok := inner.Verbs[0].Positional(0)
	require.True(t, ok)
	assert.Equal(t, "b", name)
}

func TestParse_PreambleFirstVerbIsLegal(t *testing.T) {
	tree, err := Parse(`@preamble "a"`)
	require.NoError(t, err)
	assert.True(t, tree.HasPreamble)
}

func TestParse_PreambleNotFirstVerbIsError(t *testing.T) {
	_, err := Parse(`"a" @preamble`)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, "ERR_PREAMBLE_NOT_FIRST", perr.Code)
}

func TestParse_PreambleNotFirstStatementIsError(t *testing.T) {
	_, err := Parse(`"a"; @preamble "b"`)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, "ERR_PREAMBLE_NOT_FIRST", perr.Code)
}

func TestParse_UnknownVerb(t *testing.T) {
	_, err := Parse(`@bogus("a")`)
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	assert.Equal(t, "ERR_UNKNOWN_VERB", perr.Code)
}

func TestParse_UnterminatedString(t *testing.T) {
	_, err := Parse(`"a`)
	require.Error(t, err)
	_, ok := err.(*LexError)
	assert.True(t, ok)
}

func TestParse_EmptyStatementIsLegal(t *testing.T) {
	tree, err := Parse(`;;"a";;`)
	require.NoError(t, err)
	root := tree.Get(tree.Root)
	require.Len(t, root.Children, 1)
}

func TestToQueryError_AttachesPath(t *testing.T) {
	_, err := Parse(`@bogus("a")`)
	require.Error(t, err)
	qerr := ToQueryError(err, "query.askl")
	assert.Equal(t, "query.askl", qerr.Path)
}

func TestTreeStats(t *testing.T) {
	tree, err := Parse(`{{"b"}}`)
	require.NoError(t, err)
	stats := tree.Stats()
	assert.Equal(t, 4, stats.StatementCount)
	assert.Equal(t, 3, stats.MaxDepth)
}
