// Package mount exposes an internal/vfs facade tree as a real OS mount
// through bazil.org/fuse, the teacher's core domain dependency,
// grounded on internal/fs's VMapFS shape. Every FUSE call translates
// 1:1 onto the same facade operations the shell uses
// (List/CreateFile/WriteFile/RemoveFile/ReadFile), addressed by
// absolute path rather than a cursor, so the mounted tree is the same
// one a celv_iniciar call can upgrade to a versioned subtree — there is
// no separate, disconnected mount-only tree.
//
// This does not add durability: the tree lives only as long as the
// mount does, the same non-goal internal/vfs and internal/celv already
// carry.
package mount

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"celv/internal/logging"
	"celv/internal/vfs"
)

var mountLogger = logging.GetLogger().WithPrefix("mount")

// FS is the root of one mounted facade tree.
type FS struct {
	tree *vfs.Tree
	uid  uint32
	gid  uint32
	conn *fuse.Conn
}

func newFS(tree *vfs.Tree) *FS {
	return &FS{
		tree: tree,
		uid:  safeIntToUint32(os.Getuid()),
		gid:  safeIntToUint32(os.Getgid()),
	}
}

// Root implements fusefs.FS, returning the facade root directory node.
func (f *FS) Root() (fusefs.Node, error) {
	mountLogger.Trace("getting root directory node")
	return &Dir{fs: f, path: nil}, nil
}

func waitForMount(mountpoint string) error {
	for i := 0; i < 30; i++ {
		info, err := os.Stat(mountpoint)
		if err == nil && info.IsDir() {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("mount point not available after 3 seconds")
}

// Serve mounts a brand-new facade tree named name at mountpoint and
// blocks, serving FUSE requests against it until the mount is torn down
// (by unmount, or Ctrl-C, which this also handles). The tree and
// everything written to it live only as long as this call runs.
func Serve(name, mountpoint string) error {
	fsys := newFS(vfs.NewTree())

	mountLogger.Info("mounting %q at %q", name, mountpoint)
	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("celv"),
		fuse.Subtype(name),
		fuse.AllowOther(),
		fuse.DefaultPermissions(),
		fuse.AsyncRead(),
		fuse.AllowNonEmptyMount(),
	)
	if err != nil {
		return fmt.Errorf("mount failed: %w", err)
	}
	fsys.conn = c
	defer c.Close()

	serveErr := make(chan error, 1)
	go func() { serveErr <- fusefs.Serve(c, fsys) }()

	if err := waitForMount(mountpoint); err != nil {
		mountLogger.Error("mount point not ready: %v", err)
		return err
	}
	mountLogger.Info("mounted successfully; press Ctrl-C to unmount")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
		mountLogger.Info("received interrupt, unmounting %q", mountpoint)
		if err := fuse.Unmount(mountpoint); err != nil {
			mountLogger.Error("unmount failed: %v", err)
			return err
		}
		return <-serveErr
	case err := <-serveErr:
		if err != nil {
			mountLogger.Error("fuse server error: %v", err)
		}
		return err
	}
}

func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// childPath returns a fresh slice — never aliasing the parent's backing
// array — for a child of a directory at path.
func childPath(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}
