package mount

import (
	"context"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"celv/internal/celv"
	"celv/internal/vfs"
)

func newTestFS() *FS {
	return newFS(vfs.NewTree())
}

func TestRootReturnsDirAtEmptyPath(t *testing.T) {
	fsys := newTestFS()
	node, err := fsys.Root()
	require.NoError(t, err)

	dir, ok := node.(*Dir)
	require.True(t, ok)
	assert.Empty(t, dir.path)
}

func TestMkdirThenLookupFindsChildDir(t *testing.T) {
	fsys := newTestFS()
	root := &Dir{fs: fsys, path: nil}

	node, err := root.Mkdir(context.Background(), &fuse.MkdirRequest{Name: "docs"})
	require.NoError(t, err)
	child := node.(*Dir)
	assert.Equal(t, []string{"docs"}, child.path)

	found, err := root.Lookup(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, found.(*Dir).path)
}

func TestCreateThenReadWriteRoundTrips(t *testing.T) {
	fsys := newTestFS()
	root := &Dir{fs: fsys, path: nil}

	node, handle, err := root.Create(context.Background(), &fuse.CreateRequest{Name: "f.txt"}, &fuse.CreateResponse{})
	require.NoError(t, err)
	file := node.(*File)
	assert.Same(t, file, handle.(*File))

	req := &fuse.WriteRequest{Offset: 0, Data: []byte("hello")}
	resp := &fuse.WriteResponse{}
	require.NoError(t, file.Write(context.Background(), req, resp))
	assert.Equal(t, 5, resp.Size)

	content, err := file.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestWritePastEndGrowsFile(t *testing.T) {
	fsys := newTestFS()
	root := &Dir{fs: fsys, path: nil}
	node, _, err := root.Create(context.Background(), &fuse.CreateRequest{Name: "f.txt"}, &fuse.CreateResponse{})
	require.NoError(t, err)
	file := node.(*File)

	require.NoError(t, file.Write(context.Background(), &fuse.WriteRequest{Offset: 0, Data: []byte("ab")}, &fuse.WriteResponse{}))
	require.NoError(t, file.Write(context.Background(), &fuse.WriteRequest{Offset: 5, Data: []byte("z")}, &fuse.WriteResponse{}))

	content, err := file.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ab\x00\x00\x00z", string(content))
}

func TestReadDirAllListsCreatedEntries(t *testing.T) {
	fsys := newTestFS()
	root := &Dir{fs: fsys, path: nil}
	_, err := root.Mkdir(context.Background(), &fuse.MkdirRequest{Name: "sub"})
	require.NoError(t, err)
	_, _, err = root.Create(context.Background(), &fuse.CreateRequest{Name: "a.txt"}, &fuse.CreateResponse{})
	require.NoError(t, err)

	entries, err := root.ReadDirAll(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := map[string]fuse.DirentType{}
	for _, e := range entries {
		names[e.Name] = e.Type
	}
	assert.Equal(t, fuse.DT_Dir, names["sub"])
	assert.Equal(t, fuse.DT_File, names["a.txt"])
}

func TestLookupMissingReturnsENOENT(t *testing.T) {
	fsys := newTestFS()
	root := &Dir{fs: fsys, path: nil}
	_, err := root.Lookup(context.Background(), "nope")
	require.Equal(t, syscall.ENOENT, err)
}

func TestRemoveDeletesEntry(t *testing.T) {
	fsys := newTestFS()
	root := &Dir{fs: fsys, path: nil}
	_, _, err := root.Create(context.Background(), &fuse.CreateRequest{Name: "f.txt"}, &fuse.CreateResponse{})
	require.NoError(t, err)

	require.NoError(t, root.Remove(context.Background(), &fuse.RemoveRequest{Name: "f.txt"}))
	_, err = root.Lookup(context.Background(), "f.txt")
	require.Equal(t, syscall.ENOENT, err)
}

func TestRenameMovesEntryBetweenDirectories(t *testing.T) {
	fsys := newTestFS()
	root := &Dir{fs: fsys, path: nil}
	destNode, err := root.Mkdir(context.Background(), &fuse.MkdirRequest{Name: "dest"})
	require.NoError(t, err)
	_, _, err = root.Create(context.Background(), &fuse.CreateRequest{Name: "f.txt"}, &fuse.CreateResponse{})
	require.NoError(t, err)

	req := &fuse.RenameRequest{OldName: "f.txt", NewName: "g.txt"}
	require.NoError(t, root.Rename(context.Background(), req, destNode))

	_, err = root.Lookup(context.Background(), "f.txt")
	require.Equal(t, syscall.ENOENT, err)

	dest := destNode.(*Dir)
	found, err := dest.Lookup(context.Background(), "g.txt")
	require.NoError(t, err)
	assert.IsType(t, &File{}, found)
}

func TestMountAndShellSeeTheSameTree(t *testing.T) {
	tree := vfs.NewTree()
	fsys := newFS(tree)
	root := &Dir{fs: fsys, path: nil}

	require.NoError(t, tree.CreateFile("via_shell.txt", vfs.KindFile))
	_, err := root.Lookup(context.Background(), "via_shell.txt")
	require.NoError(t, err)

	_, _, err = root.Create(context.Background(), &fuse.CreateRequest{Name: "via_mount.txt"}, &fuse.CreateResponse{})
	require.NoError(t, err)
	entries, err := tree.List()
	require.NoError(t, err)
	var sawMountFile bool
	for _, e := range entries {
		if e.Name == "via_mount.txt" {
			sawMountFile = true
		}
	}
	assert.True(t, sawMountFile)
}

func TestCelvActiveSubtreeReachableThroughMount(t *testing.T) {
	tree := vfs.NewTree()
	fsys := newFS(tree)
	root := &Dir{fs: fsys, path: nil}

	require.NoError(t, tree.CreateFile("versioned", vfs.KindDir))
	require.NoError(t, tree.ChangeDirectory("versioned"))
	require.NoError(t, tree.CelvInit())
	require.NoError(t, tree.ChangeDirectory(""))

	versionedNode, err := root.Lookup(context.Background(), "versioned")
	require.NoError(t, err)
	versioned := versionedNode.(*Dir)

	_, _, err = versioned.Create(context.Background(), &fuse.CreateRequest{Name: "f.txt"}, &fuse.CreateResponse{})
	require.NoError(t, err)

	require.NoError(t, tree.ChangeDirectory("versioned"))
	entries, err := tree.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.txt", entries[0].Name)
}

func TestToErrnoMapsFacadeSentinels(t *testing.T) {
	assert.Equal(t, syscall.Errno(0), toErrno(nil))
	assert.Equal(t, syscall.ENOENT, toErrno(vfs.ErrNotFound))
	assert.Equal(t, syscall.EEXIST, toErrno(vfs.ErrNameConflict))
	assert.Equal(t, syscall.ENOTDIR, toErrno(vfs.ErrNotDirectory))
	assert.Equal(t, syscall.EINVAL, toErrno(vfs.ErrRootAscent))
	assert.Equal(t, syscall.EISDIR, toErrno(celv.ErrNotDocumentRead))
}
