// Package vfs implements the outer, non-versioned filesystem facade: a
// plain in-memory tree that any directory can, once, be upgraded to a
// CELV-versioned subtree via CelvInit. Directories without an active
// engine behave like an ordinary ordered-map tree; directories under
// an active engine delegate every operation to it.
package vfs

import (
	"errors"
	"fmt"

	"celv/internal/logging"
)

var vfsLogger = logging.GetLogger().WithPrefix("vfs")

// Sentinel errors for the facade layer itself, mirroring the teacher's
// internal/fs/errors.go convention of small wrapped sentinels.
var (
	ErrNotFound     = errors.New("No such file or directory")
	ErrNotDirectory = errors.New("Specified file is not a directory")
	ErrNameConflict = errors.New("File already exists")
	ErrRootAscent   = errors.New("Can't go up from filesystem root")
)

// Error wraps a failed facade operation with the operation name and
// path, the same shape as internal/fs.Error and internal/celv.Error.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("vfs: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("vfs: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

const (
	opList   = "list"
	opChdir  = "chdir"
	opCreate = "create"
	opRemove = "remove"
	opRead   = "read"
	opWrite  = "write"
	opInit   = "celv_iniciar"
	opRename = "rename"
)
