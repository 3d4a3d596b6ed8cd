package vfs

import (
	"errors"
	"sync"

	"celv/internal/celv"
	"celv/internal/store"
)

// Kind distinguishes a facade file from a facade directory, mirroring
// store.Type but for the outer, non-versioned tree.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

// Entry is a name/kind pair returned by List, uniform across facade
// directories and CELV-active ones.
type Entry struct {
	Name string
	Kind Kind
}

// file is a leaf in the non-versioned facade tree.
type file struct {
	name    string
	content string
}

// Dir is a directory in the non-versioned facade tree. Children are
// held in an ordered map — insertion order preserved, unlike a bare Go
// map — so ls output is deterministic without a name sort, matching
// the teacher's insistence on deterministic ReadDirAll listings.
type Dir struct {
	name   string
	parent *Dir
	order  []string
	files  map[string]*file
	dirs   map[string]*Dir

	// engine is non-nil when celv_iniciar has been run in this exact
	// directory. Once set, this directory and everything below it is
	// governed entirely by the engine; the dirs/files maps recorded
	// here before activation are no longer reachable through Tree.
	engine *celv.Engine
}

func newDir(name string, parent *Dir) *Dir {
	return &Dir{
		name:   name,
		parent: parent,
		files:  map[string]*file{},
		dirs:   map[string]*Dir{},
	}
}

func (d *Dir) insertOrder(name string) {
	d.order = append(d.order, name)
}

func (d *Dir) removeOrder(name string) {
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			return
		}
	}
}

// Tree is the client's entry point: one facade root directory plus a
// current-directory cursor, optionally delegating into a CELV engine
// when the cursor has descended into an active subtree.
//
// Every public method below locks mu for its own duration: cursor-based
// callers (the shell) call them directly, one at a time. The mount
// adapter addresses nodes by absolute path instead of holding a
// cursor — its *At methods take the lock once, walk the path using the
// same unexported navigation the cursor-based methods use, run the
// requested operation, and restore the cursor before returning, so a
// FUSE request never observes (or disturbs) the shell's own position.
type Tree struct {
	mu   sync.Mutex
	root *Dir

	cwd *Dir // facade-level cursor; frozen at the CELV anchor while active

	// activeAnchor is the facade Dir that owns the engine currently
	// governing navigation, or nil when the cursor is purely in the
	// non-versioned tree.
	activeAnchor *Dir
}

// NewTree returns an empty facade tree, cursor at its root.
func NewTree() *Tree {
	root := newDir("/", nil)
	return &Tree{root: root, cwd: root}
}

// engine returns the engine governing the current location, or nil.
func (t *Tree) engine() *celv.Engine {
	if t.activeAnchor == nil {
		return nil
	}
	return t.activeAnchor.engine
}

// CurrentName returns the display name of wherever the cursor is,
// for the shell prompt.
func (t *Tree) CurrentName() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e := t.engine(); e != nil {
		return e.CurrentDirName()
	}
	return t.cwd.name
}

// CelvActive reports whether the cursor is currently inside an active
// CELV subtree.
func (t *Tree) CelvActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.engine() != nil
}

// CelvInit activates version control in the current directory. It
// fails if an ancestor or the current directory itself already has an
// active engine.
func (t *Tree) CelvInit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.celvInitLocked()
}

func (t *Tree) celvInitLocked() error {
	if t.activeAnchor != nil {
		return newError(opInit, "", celv.ErrCelvAlreadyInitialized)
	}
	for a := t.cwd.parent; a != nil; a = a.parent {
		if a.engine != nil {
			return newError(opInit, "", celv.ErrCelvAlreadyInitialized)
		}
	}
	if hasActiveDescendant(t.cwd) {
		return newError(opInit, "", celv.ErrCelvAlreadyInitialized)
	}

	t.cwd.engine = celv.New()
	t.activeAnchor = t.cwd
	vfsLogger.Info("CELV activated at %q", t.cwd.name)
	return nil
}

func hasActiveDescendant(d *Dir) bool {
	for _, child := range d.dirs {
		if child.engine != nil || hasActiveDescendant(child) {
			return true
		}
	}
	return false
}

// List returns the entries of the current directory, ordered
// deterministically (insertion order in the facade; documents before
// directories, then by name, inside an active CELV subtree).
func (t *Tree) List() ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.listLocked()
}

func (t *Tree) listLocked() ([]Entry, error) {
	if e := t.engine(); e != nil {
		files := e.List()
		entries := make([]Entry, len(files))
		for i, f := range files {
			entries[i] = fileToEntry(f)
		}
		return entries, nil
	}

	entries := make([]Entry, 0, len(t.cwd.order))
	for _, name := range t.cwd.order {
		if _, ok := t.cwd.dirs[name]; ok {
			entries = append(entries, Entry{Name: name, Kind: KindDir})
		} else {
			entries = append(entries, Entry{Name: name, Kind: KindFile})
		}
	}
	return entries, nil
}

// ChangeDirectory enters name, or ascends to the parent when name is
// empty. Ascending out of an active engine's root exits CELV mode and
// lands back in the facade directory that owns it.
func (t *Tree) ChangeDirectory(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.changeDirectoryLocked(name)
}

func (t *Tree) changeDirectoryLocked(name string) error {
	if e := t.engine(); e != nil {
		if err := e.ChangeDirectory(name); err != nil {
			if name == "" && isRootAscent(err) {
				t.cwd = t.activeAnchor.parent
				t.activeAnchor = nil
				if t.cwd == nil {
					t.cwd = t.root
				}
				return nil
			}
			return newError(opChdir, name, err)
		}
		return nil
	}

	if name == "" {
		if t.cwd.parent == nil {
			return newError(opChdir, "", ErrRootAscent)
		}
		t.cwd = t.cwd.parent
		return nil
	}

	child, ok := t.cwd.dirs[name]
	if !ok {
		if _, isFile := t.cwd.files[name]; isFile {
			return newError(opChdir, name, ErrNotDirectory)
		}
		return newError(opChdir, name, ErrNotFound)
	}
	t.cwd = child
	if child.engine != nil {
		t.activeAnchor = child
	}
	return nil
}

// CreateFile creates a document or directory in the current location.
func (t *Tree) CreateFile(name string, kind Kind) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.createFileLocked(name, kind)
}

func (t *Tree) createFileLocked(name string, kind Kind) error {
	if e := t.engine(); e != nil {
		typ := entryStoreType(kind)
		_, err := e.CreateFile(name, typ)
		if err != nil {
			return newError(opCreate, name, err)
		}
		return nil
	}

	if _, exists := t.cwd.files[name]; exists {
		return newError(opCreate, name, ErrNameConflict)
	}
	if _, exists := t.cwd.dirs[name]; exists {
		return newError(opCreate, name, ErrNameConflict)
	}

	switch kind {
	case KindDir:
		t.cwd.dirs[name] = newDir(name, t.cwd)
	default:
		t.cwd.files[name] = &file{name: name}
	}
	t.cwd.insertOrder(name)
	return nil
}

// RemoveFile removes the named entry from the current location.
func (t *Tree) RemoveFile(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removeFileLocked(name)
}

func (t *Tree) removeFileLocked(name string) error {
	if e := t.engine(); e != nil {
		if err := e.RemoveFile(name); err != nil {
			return newError(opRemove, name, err)
		}
		return nil
	}

	if _, ok := t.cwd.files[name]; ok {
		delete(t.cwd.files, name)
		t.cwd.removeOrder(name)
		return nil
	}
	if _, ok := t.cwd.dirs[name]; ok {
		delete(t.cwd.dirs, name)
		t.cwd.removeOrder(name)
		return nil
	}
	return newError(opRemove, name, ErrNotFound)
}

// ReadFile returns the content of the named document.
func (t *Tree) ReadFile(name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.readFileLocked(name)
}

func (t *Tree) readFileLocked(name string) (string, error) {
	if e := t.engine(); e != nil {
		content, err := e.ReadFile(name)
		if err != nil {
			return "", newError(opRead, name, err)
		}
		return content, nil
	}

	f, ok := t.cwd.files[name]
	if !ok {
		if _, isDir := t.cwd.dirs[name]; isDir {
			return "", newError(opRead, name, celv.ErrNotDocumentRead)
		}
		return "", newError(opRead, name, ErrNotFound)
	}
	return f.content, nil
}

// WriteFile replaces the content of the named document.
func (t *Tree) WriteFile(name, content string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.writeFileLocked(name, content)
}

func (t *Tree) writeFileLocked(name, content string) error {
	if e := t.engine(); e != nil {
		if err := e.WriteFile(name, content); err != nil {
			return newError(opWrite, name, err)
		}
		return nil
	}

	f, ok := t.cwd.files[name]
	if !ok {
		if _, isDir := t.cwd.dirs[name]; isDir {
			return newError(opWrite, name, celv.ErrNotDocumentWrite)
		}
		return newError(opWrite, name, ErrNotFound)
	}
	f.content = content
	return nil
}

// Engine returns the engine governing the current location, and
// whether one is active — used by the shell for celv_historia,
// celv_vamos, celv_fusion, celv_version, and celv_importar.
func (t *Tree) Engine() (*celv.Engine, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e := t.engine()
	return e, e != nil
}

// descendLocked walks path from the root, entering each name via
// changeDirectoryLocked. It assumes mu is already held and restores
// nothing itself — callers save/restore the cursor around it.
func (t *Tree) descendLocked(path []string) error {
	t.cwd = t.root
	t.activeAnchor = nil
	for _, name := range path {
		if err := t.changeDirectoryLocked(name); err != nil {
			return err
		}
	}
	return nil
}

// withPath runs fn with the cursor positioned at path (relative to
// root), restoring the cursor's prior position before returning. This
// is how the mount adapter — which addresses nodes by absolute path,
// not a persistent cursor — reuses every cursor-based operation above
// without the two front doors interfering with each other.
func (t *Tree) withPath(path []string, fn func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	savedCwd, savedAnchor := t.cwd, t.activeAnchor
	defer func() { t.cwd, t.activeAnchor = savedCwd, savedAnchor }()

	if err := t.descendLocked(path); err != nil {
		return err
	}
	return fn()
}

// ListAt, CreateFileAt, RemoveFileAt, ReadFileAt, and WriteFileAt are
// the path-addressed counterparts of the cursor-based methods above,
// used by internal/mount. Each is a single critical section: navigate
// to path, perform the operation, restore the cursor.

func (t *Tree) ListAt(path []string) ([]Entry, error) {
	var entries []Entry
	err := t.withPath(path, func() error {
		var err error
		entries, err = t.listLocked()
		return err
	})
	return entries, err
}

func (t *Tree) CreateFileAt(path []string, name string, kind Kind) error {
	return t.withPath(path, func() error {
		return t.createFileLocked(name, kind)
	})
}

func (t *Tree) RemoveFileAt(path []string, name string) error {
	return t.withPath(path, func() error {
		return t.removeFileLocked(name)
	})
}

func (t *Tree) ReadFileAt(path []string, name string) (string, error) {
	var content string
	err := t.withPath(path, func() error {
		var err error
		content, err = t.readFileLocked(name)
		return err
	})
	return content, err
}

func (t *Tree) WriteFileAt(path []string, name, content string) error {
	return t.withPath(path, func() error {
		return t.writeFileLocked(name, content)
	})
}

// RenameAt moves/renames the entry named oldName at oldPath to newName
// under newPath. Implemented as remove-then-recreate rather than an
// in-place splice — CELV-active subtrees have no "move" primitive
// (spec.md's explicit Non-goal), so a rename straddling an active
// engine boundary is handled the same way a plain copy would be: read
// the old entry's content (or recurse for a directory), delete it, and
// create it again at the destination. Renaming a non-empty directory
// across an engine boundary is out of scope for the same reason moves
// are a Non-goal inside CELV itself; it returns ErrNameConflict's
// sibling, ErrNotFound, rather than silently losing data.
func (t *Tree) RenameAt(oldPath []string, oldName string, newPath []string, newName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	savedCwd, savedAnchor := t.cwd, t.activeAnchor
	defer func() { t.cwd, t.activeAnchor = savedCwd, savedAnchor }()

	if err := t.descendLocked(oldPath); err != nil {
		return err
	}
	entries, err := t.listLocked()
	if err != nil {
		return err
	}
	var kind Kind
	var found bool
	for _, e := range entries {
		if e.Name == oldName {
			kind, found = e.Kind, true
			break
		}
	}
	if !found {
		return newError(opRename, oldName, ErrNotFound)
	}

	var content string
	if kind == KindFile {
		content, err = t.readFileLocked(oldName)
		if err != nil {
			return err
		}
	}
	if err := t.removeFileLocked(oldName); err != nil {
		return err
	}

	if err := t.descendLocked(newPath); err != nil {
		return err
	}
	if err := t.createFileLocked(newName, kind); err != nil {
		return err
	}
	if kind == KindFile {
		return t.writeFileLocked(newName, content)
	}
	return nil
}

func fileToEntry(f store.File) Entry {
	if f.Type == store.Directory {
		return Entry{Name: f.Name, Kind: KindDir}
	}
	return Entry{Name: f.Name, Kind: KindFile}
}

func entryStoreType(k Kind) store.Type {
	if k == KindDir {
		return store.Directory
	}
	return store.Document
}

func isRootAscent(err error) bool {
	return errors.Is(err, celv.ErrRootAscent)
}
