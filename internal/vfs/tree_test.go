package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryNames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestFacadeCreateListRemove(t *testing.T) {
	tree := NewTree()

	require.NoError(t, tree.CreateFile("docs", KindDir))
	require.NoError(t, tree.CreateFile("readme.txt", KindFile))

	entries, err := tree.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"docs", "readme.txt"}, entryNames(entries))

	require.NoError(t, tree.RemoveFile("readme.txt"))
	entries, err = tree.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, entryNames(entries))
}

func TestFacadeCreateRejectsDuplicateName(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("a", KindFile))
	err := tree.CreateFile("a", KindDir)
	require.ErrorIs(t, err, ErrNameConflict)
}

func TestFacadeWriteReadRoundTrip(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("f", KindFile))
	require.NoError(t, tree.WriteFile("f", "hello"))

	content, err := tree.ReadFile("f")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
}

func TestFacadeChangeDirectoryAndAscend(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("sub", KindDir))
	require.NoError(t, tree.ChangeDirectory("sub"))
	assert.Equal(t, "sub", tree.CurrentName())

	require.NoError(t, tree.ChangeDirectory(""))
	assert.Equal(t, "/", tree.CurrentName())
}

func TestFacadeAscendAtRootFails(t *testing.T) {
	tree := NewTree()
	err := tree.ChangeDirectory("")
	require.ErrorIs(t, err, ErrRootAscent)
}

func TestCelvInitActivatesEngineAtCurrentDirectory(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("versioned", KindDir))
	require.NoError(t, tree.ChangeDirectory("versioned"))

	assert.False(t, tree.CelvActive())
	require.NoError(t, tree.CelvInit())
	assert.True(t, tree.CelvActive())

	require.NoError(t, tree.CreateFile("f", KindFile))
	entries, err := tree.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, entryNames(entries))
}

func TestCelvInitRejectsDoubleActivation(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CelvInit())
	err := tree.CelvInit()
	require.Error(t, err)
}

func TestCelvInitRejectsActivationOverActiveDescendant(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("sub", KindDir))
	require.NoError(t, tree.ChangeDirectory("sub"))
	require.NoError(t, tree.CelvInit())
	require.NoError(t, tree.ChangeDirectory("")) // back out to facade root

	err := tree.CelvInit()
	require.Error(t, err)
}

func TestAscendingOutOfCelvRootExitsBackToFacade(t *testing.T) {
	tree := NewTree()
	require.NoError(t, tree.CreateFile("versioned", KindDir))
	require.NoError(t, tree.ChangeDirectory("versioned"))
	require.NoError(t, tree.CelvInit())

	require.True(t, tree.CelvActive())
	require.NoError(t, tree.ChangeDirectory(""))
	assert.False(t, tree.CelvActive())
	assert.Equal(t, "/", tree.CurrentName())
}

func TestEngineReturnsActiveEngine(t *testing.T) {
	tree := NewTree()
	_, active := tree.Engine()
	assert.False(t, active)

	require.NoError(t, tree.CelvInit())
	e, active := tree.Engine()
	assert.True(t, active)
	assert.NotNil(t, e)
}
