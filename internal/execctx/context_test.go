package execctx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/askl/internal/ast"
	"github.com/oxhq/askl/internal/verb"
)

func build(t *testing.T, src string) (*ast.Tree, map[ast.StatementID]*verb.Command) {
	t.Helper()
	tree, err := ast.Parse(src)
	require.NoError(t, err)
	commands, err := verb.BuildCommands(tree, "<test>")
	require.NoError(t, err)
	return tree, commands
}

func TestBuild_DuplicateLabel(t *testing.T) {
	tree, commands := build(t, `@label("x") "a"; @label("x") "b"`)
	_, err := Build(tree, commands, "<test>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate label")
}

func TestBuild_UnknownLabel(t *testing.T) {
	tree, commands := build(t, `@use("missing")`)
	_, err := Build(tree, commands, "<test>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown label")
}

func TestBuild_SelfLoopUserCycle(t *testing.T) {
	tree, commands := build(t, `"a" @label("x") @use("x")`)
	ctx, err := Build(tree, commands, "<test>")
	require.NoError(t, err)
	assert.True(t, ctx.Cyclic)
}

func TestBuild_NoCycleForSimpleUse(t *testing.T) {
	tree, commands := build(t, `@label("foo") "a"; @use("foo"){}`)
	ctx, err := Build(tree, commands, "<test>")
	require.NoError(t, err)
	assert.False(t, ctx.Cyclic)
}

func TestBuild_RootExcludedFromDependents(t *testing.T) {
	tree, commands := build(t, `"a"{}`)
	ctx, err := Build(tree, commands, "<test>")
	require.NoError(t, err)

	for _, deps := range ctx.Dependents {
		for _, d := range deps {
			assert.NotEqual(t, tree.Root, d.Statement)
		}
	}
	_, rootHasDependents := ctx.Dependents[tree.Root]
	assert.False(t, rootHasDependents)
}

func TestBuild_SiblingsNotWired(t *testing.T) {
	tree, commands := build(t, `"a"; "b"`)
	ctx, err := Build(tree, commands, "<test>")
	require.NoError(t, err)

	assert.Empty(t, ctx.Dependents, "top-level siblings must not be wired to each other")
}
