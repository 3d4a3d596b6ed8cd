package mount

import (
	"context"

	"bazil.org/fuse"

	"celv/internal/logging"
)

var fileLogger = logging.GetLogger().WithPrefix("mount.file")

// File represents a document in the mounted facade tree. It doubles as
// its own fuse.Handle — bazil.org/fuse uses the Node itself as the
// Handle when the Node has no NodeOpener, which a facade document has
// no need for. dirPath is the path of the directory that contains it;
// name is its entry name within that directory.
type File struct {
	fs      *FS
	dirPath []string
	name    string
}

// Attr implements the Node interface, returning file attributes.
func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	content, err := f.fs.tree.ReadFileAt(f.dirPath, f.name)
	if err != nil {
		return toErrno(err)
	}
	a.Mode = 0644
	a.Size = uint64(len(content))
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	return nil
}

// ReadAll implements the HandleReadAller interface.
func (f *File) ReadAll(_ context.Context) ([]byte, error) {
	content, err := f.fs.tree.ReadFileAt(f.dirPath, f.name)
	if err != nil {
		return nil, toErrno(err)
	}
	return []byte(content), nil
}

// Write implements the HandleWriter interface, growing the file as
// needed to accommodate writes past the current end. Facade documents
// hold their content as a single string, so a write is a read-splice-
// write round trip through internal/vfs rather than an in-place byte
// mutation.
func (f *File) Write(_ context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	current, err := f.fs.tree.ReadFileAt(f.dirPath, f.name)
	if err != nil {
		return toErrno(err)
	}

	content := []byte(current)
	end := int(req.Offset) + len(req.Data)
	if end > len(content) {
		grown := make([]byte, end)
		copy(grown, content)
		content = grown
	}
	copy(content[req.Offset:], req.Data)

	if err := f.fs.tree.WriteFileAt(f.dirPath, f.name, string(content)); err != nil {
		return toErrno(err)
	}
	resp.Size = len(req.Data)
	fileLogger.Trace("wrote %d bytes to %q at offset %d", len(req.Data), f.name, req.Offset)
	return nil
}

// Fsync implements the NodeFsyncer interface. There is nothing to flush
// to secondary storage: the tree is purely in-memory for the life of
// the mount, so this is a no-op.
func (f *File) Fsync(_ context.Context, _ *fuse.FsyncRequest) error {
	return nil
}
