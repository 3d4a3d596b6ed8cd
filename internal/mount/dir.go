package mount

import (
	"context"
	"os"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"celv/internal/logging"
	"celv/internal/vfs"
)

var dirLogger = logging.GetLogger().WithPrefix("mount.dir")

// Dir represents a directory in the mounted facade tree, addressed by
// its absolute path from the tree root rather than holding a pointer
// into it — every operation below goes through internal/vfs's
// path-addressed *At methods, the same facade a celv shell session
// reaches through its cursor.
type Dir struct {
	fs   *FS
	path []string
}

// Attr implements the Node interface, returning directory attributes.
func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0755
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid
	return nil
}

// Lookup implements the NodeStringLookuper interface, finding a child node.
func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	entries, err := d.fs.tree.ListAt(d.path)
	if err != nil {
		return nil, toErrno(err)
	}
	for _, e := range entries {
		if e.Name != name {
			continue
		}
		if e.Kind == vfs.KindDir {
			return &Dir{fs: d.fs, path: childPath(d.path, name)}, nil
		}
		return &File{fs: d.fs, dirPath: d.path, name: name}, nil
	}
	return nil, toErrno(vfs.ErrNotFound)
}

// ReadDirAll implements the HandleReadDirAller interface, listing directory contents.
func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	entries, err := d.fs.tree.ListAt(d.path)
	if err != nil {
		return nil, toErrno(err)
	}
	out := make([]fuse.Dirent, len(entries))
	for i, e := range entries {
		if e.Kind == vfs.KindDir {
			out[i] = fuse.Dirent{Name: e.Name, Type: fuse.DT_Dir}
		} else {
			out[i] = fuse.Dirent{Name: e.Name, Type: fuse.DT_File}
		}
	}
	return out, nil
}

// Mkdir implements the NodeMkdirer interface, creating a new subdirectory.
func (d *Dir) Mkdir(_ context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	if err := d.fs.tree.CreateFileAt(d.path, req.Name, vfs.KindDir); err != nil {
		return nil, toErrno(err)
	}
	dirLogger.Debug("mkdir %q", req.Name)
	return &Dir{fs: d.fs, path: childPath(d.path, req.Name)}, nil
}

// Create implements the NodeCreater interface, creating a new empty file
// and opening it in one step.
func (d *Dir) Create(_ context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefs.Node, fusefs.Handle, error) {
	if err := d.fs.tree.CreateFileAt(d.path, req.Name, vfs.KindFile); err != nil {
		return nil, nil, toErrno(err)
	}
	dirLogger.Debug("create %q", req.Name)
	f := &File{fs: d.fs, dirPath: d.path, name: req.Name}
	return f, f, nil
}

// Remove implements the NodeRemover interface, removing a file or
// directory.
func (d *Dir) Remove(_ context.Context, req *fuse.RemoveRequest) error {
	if err := d.fs.tree.RemoveFileAt(d.path, req.Name); err != nil {
		return toErrno(err)
	}
	dirLogger.Debug("remove %q (dir=%v)", req.Name, req.Dir)
	return nil
}

// Rename implements the NodeRenamer interface, moving or renaming a
// file or directory within the mounted tree.
func (d *Dir) Rename(_ context.Context, req *fuse.RenameRequest, newDir fusefs.Node) error {
	target, ok := newDir.(*Dir)
	if !ok {
		return toErrno(vfs.ErrNotDirectory)
	}
	if err := d.fs.tree.RenameAt(d.path, req.OldName, target.path, req.NewName); err != nil {
		return toErrno(err)
	}
	return nil
}
