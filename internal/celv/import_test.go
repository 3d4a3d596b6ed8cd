package celv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportLocalPathMirrorsHostTree(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("world"), 0o644))

	e := New()
	require.NoError(t, e.ImportLocalPath(root))

	assert.ElementsMatch(t, []string{"a.txt", "sub"}, names(e.List()))

	content, err := e.ReadFile("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)

	require.NoError(t, e.ChangeDirectory("sub"))
	assert.Equal(t, []string{"b.txt"}, names(e.List()))
	content, err = e.ReadFile("b.txt")
	require.NoError(t, err)
	assert.Equal(t, "world", content)
}

func TestImportLocalPathSkipsUnreadableEntries(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "locked.txt"), []byte("secret"), 0o000))
	require.NoError(t, os.WriteFile(filepath.Join(root, "open.txt"), []byte("ok"), 0o644))

	e := New()
	require.NoError(t, e.ImportLocalPath(root))

	assert.Equal(t, []string{"open.txt"}, names(e.List()))
}

func TestImportLocalPathRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	e := New()
	err := e.ImportLocalPath(file)
	require.Error(t, err)
}

func TestImportLocalPathAppendsOneImportHistoryEntry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	e := New()
	require.NoError(t, e.ImportLocalPath(root))

	history := e.GetHistory()
	last := history[len(history)-1]
	assert.Equal(t, ActionImport, last.Type)
	assert.Equal(t, []string{root}, last.Args)
}

func TestAccessibleRespectsOwnerOrOtherReadWrite(t *testing.T) {
	tests := []struct {
		mode os.FileMode
		want bool
	}{
		{0o600, true},
		{0o006, true},
		{0o644, true},
		{0o400, false},
		{0o000, false},
	}
	for _, tt := range tests {
		if got := accessible(tt.mode); got != tt.want {
			t.Errorf("accessible(%v) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}
