package mount

import (
	"errors"
	"syscall"

	"celv/internal/celv"
	"celv/internal/vfs"
)

// toErrno is internal/mount's translation from the facade's *vfs.Error
// (itself wrapping either a vfs sentinel or a pass-through *celv.Error)
// to the surface convention FUSE callers expect: a syscall.Errno,
// mirroring the teacher's internal/fs/errors.go ToFuseError table.
func toErrno(err error) syscall.Errno {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, vfs.ErrNotFound), errors.Is(err, celv.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrNameConflict), errors.Is(err, celv.ErrNameConflict),
		errors.Is(err, celv.ErrCelvAlreadyInitialized):
		return syscall.EEXIST
	case errors.Is(err, vfs.ErrNotDirectory), errors.Is(err, celv.ErrNotDirectory):
		return syscall.ENOTDIR
	case errors.Is(err, celv.ErrNotDocumentRead), errors.Is(err, celv.ErrNotDocumentWrite):
		return syscall.EISDIR
	case errors.Is(err, vfs.ErrRootAscent), errors.Is(err, celv.ErrRootAscent):
		return syscall.EINVAL
	default:
		mountLogger.Error("unmapped error surfaced to FUSE: %v", err)
		return syscall.EIO
	}
}
