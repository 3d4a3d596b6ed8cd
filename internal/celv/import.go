package celv

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"celv/internal/store"
)

const (
	permOwnerRW = 0o600
	permOtherRW = 0o006
)

// accessible reports whether mode grants both read and write, either to
// the owner or to others — the same owner-or-other read+write test
// original_source/fs.cpp ran against std::filesystem::perms before
// importing an entry.
func accessible(mode fs.FileMode) bool {
	perm := mode.Perm()
	return perm&permOwnerRW == permOwnerRW || perm&permOtherRW == permOtherRW
}

// ImportLocalPath recreates the contents of the host directory at
// hostPath — not hostPath itself — under the working directory,
// walking depth-first and descending/restoring the working directory
// around each subdirectory. Entries that are neither regular files nor
// directories, entries lacking read+write permission, and entries that
// cannot be stat'ed or read are skipped with a logged warning rather
// than aborting the whole import. A failure to stat or list hostPath
// itself, or a name collision with an existing entry, aborts and
// returns the error.
//
// The whole walk is one logical action: every constituent CreateFile
// and WriteFile call still bumps the version and appends its own
// history entry, and a single trailing Import entry is appended
// referencing hostPath.
func (e *Engine) ImportLocalPath(hostPath string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return newError(OpImport, hostPath, err)
	}
	if !info.IsDir() {
		return newError(OpImport, hostPath, fmt.Errorf("not a directory"))
	}

	entries, err := os.ReadDir(hostPath)
	if err != nil {
		return newError(OpImport, hostPath, err)
	}

	origin := e.current
	if err := e.importEntries(hostPath, entries); err != nil {
		return newError(OpImport, hostPath, err)
	}

	e.history = append(e.history, Action{
		Type:          ActionImport,
		Args:          []string{hostPath},
		OriginVersion: origin,
		NewVersion:    e.current,
	})
	engineLogger.Info("imported %q up to v%d", hostPath, e.current)
	return nil
}

func (e *Engine) importEntries(hostDir string, entries []os.DirEntry) error {
	for _, entry := range entries {
		hostChild := filepath.Join(hostDir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			engineLogger.Warn("import: skipping %q, stat failed: %v", hostChild, err)
			continue
		}

		if !accessible(info.Mode()) {
			engineLogger.Warn("import: skipping %q, insufficient permissions", hostChild)
			continue
		}

		switch {
		case info.IsDir():
			if err := e.importDir(hostChild, entry.Name()); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := e.importFile(hostChild, entry.Name()); err != nil {
				return err
			}
		default:
			engineLogger.Warn("import: skipping %q, not a regular file or directory", hostChild)
		}
	}
	return nil
}

func (e *Engine) importDir(hostChild, name string) error {
	if _, err := e.CreateFile(name, store.Directory); err != nil {
		return err
	}

	original := e.workingDir
	if err := e.ChangeDirectory(name); err != nil {
		return err
	}

	children, err := os.ReadDir(hostChild)
	if err != nil {
		e.workingDir = original
		engineLogger.Warn("import: skipping contents of %q, read failed: %v", hostChild, err)
		return nil
	}

	if err := e.importEntries(hostChild, children); err != nil {
		return err
	}

	e.workingDir = original
	return nil
}

func (e *Engine) importFile(hostChild, name string) error {
	content, err := os.ReadFile(hostChild)
	if err != nil {
		engineLogger.Warn("import: skipping %q, read failed: %v", hostChild, err)
		return nil
	}

	if _, err := e.CreateFile(name, store.Document); err != nil {
		return err
	}
	return e.WriteFile(name, string(content))
}
