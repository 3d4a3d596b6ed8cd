package celv

import (
	"github.com/google/uuid"

	"celv/internal/diff"
	"celv/internal/filetree"
	"celv/internal/logging"
	"celv/internal/store"
)

var engineLogger = logging.GetLogger().WithPrefix("celv")

// rootFileID is the file id of the "/" record every engine's tree hangs
// off of. It never changes: only children change.
const rootFileID store.ID = 0

// Engine owns the file store, the version registry, the working
// directory pointer, and the history log for one CELV-versioned
// subtree. It is not safe for concurrent use.
type Engine struct {
	id uuid.UUID

	files *store.Store

	root    *filetree.Node   // absolute root of the current version
	versions []*filetree.Node // versions[v] is the root that answers version v

	workingDir *filetree.Node

	current filetree.Version
	next    filetree.Version

	history []Action

	diffCache *diff.Cache
}

// New constructs a fresh engine: root "/" at version 0, current=0,
// next=1, working directory at root, empty history.
func New() *Engine {
	id := uuid.New()
	files := store.New()
	files.Push("/", store.Directory, "")

	root := filetree.NewRoot(rootFileID)

	e := &Engine{
		id:         id,
		files:      files,
		root:       root,
		versions:   []*filetree.Node{root},
		workingDir: root,
		current:    0,
		next:       1,
		diffCache:  diff.NewCache(256),
	}
	engineLogger.Debug("engine %s constructed", id)
	return e
}

// ID returns the engine's instance identifier, used only for log
// correlation across independently constructed engines.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// commit finalizes one mutation: updates the absolute root if the
// mutation cloned all the way up, appends the (possibly repeated) root
// to the version registry, and advances current/next.
func (e *Engine) commit(newRoot *filetree.Node) filetree.Version {
	if newRoot != nil {
		e.root = newRoot
	}
	e.versions = append(e.versions, e.root)
	e.current = e.next
	e.next++
	return e.current
}

func (e *Engine) findChild(dir *filetree.Node, v filetree.Version, name string) (*filetree.Node, store.File, bool) {
	for _, child := range dir.SortedChildrenAt(v) {
		f := e.files.Get(child.FileIDAt(v))
		if f.Name == name {
			return child, f, true
		}
	}
	return nil, store.File{}, false
}

// List returns the File records contained in the working directory as
// of the current version, documents before directories and
// lexicographic by name within each — the same display convention
// Merge's cursor walk uses, and the one the end-to-end `ls` examples
// assume. Internal tree operations never rely on this order; they use
// SortedChildrenAt's id order instead.
func (e *Engine) List() []store.File {
	entries := sortedEntries(e.files, e.workingDir, e.current)
	files := make([]store.File, len(entries))
	for i, entry := range entries {
		files[i] = entry.file
	}
	return files
}

// ChangeDirectory enters the subdirectory named name, or ascends to the
// parent when name is empty.
func (e *Engine) ChangeDirectory(name string) error {
	if name == "" {
		if e.workingDir.Parent() == nil {
			return newError(OpChdir, "", ErrRootAscent)
		}
		e.workingDir = e.workingDir.Parent()
		return nil
	}

	child, file, ok := e.findChild(e.workingDir, e.current, name)
	if !ok {
		return newError(OpChdir, name, ErrNotFound)
	}
	if file.Type != store.Directory {
		return newError(OpChdir, name, ErrNotDirectory)
	}
	e.workingDir = child
	return nil
}

// CreateFile creates a new, empty (for documents) or childless (for
// directories) file named name of the given type in the working
// directory, bumping the version.
func (e *Engine) CreateFile(name string, typ store.Type) (store.ID, error) {
	if _, _, exists := e.findChild(e.workingDir, e.current, name); exists {
		return 0, newError(OpCreate, name, ErrNameConflict)
	}

	fileID := e.files.Push(name, typ, "")
	child := filetree.New(fileID, e.workingDir, e.next)

	origin := e.current
	newSelf, newRoot := e.workingDir.AddFile(child, e.next)
	if newSelf != nil {
		e.workingDir = newSelf
	}
	newVersion := e.commit(newRoot)

	actionType := ActionCreateDoc
	if typ == store.Directory {
		actionType = ActionCreateDir
	}
	e.history = append(e.history, Action{Type: actionType, Args: []string{name}, OriginVersion: origin, NewVersion: newVersion})

	engineLogger.Info("created %s %q (id=%d) at v%d", typ, name, fileID, newVersion)
	return fileID, nil
}

// RemoveFile removes the named entry from the working directory. The
// underlying file record is retained for history; only the tree
// reference to it is dropped.
func (e *Engine) RemoveFile(name string) error {
	child, _, ok := e.findChild(e.workingDir, e.current, name)
	if !ok {
		return newError(OpRemove, name, ErrNotFound)
	}

	origin := e.current
	newSelf, newRoot, removed := e.workingDir.RemoveFile(child.FileIDAt(e.current), e.next)
	if !removed {
		return newError(OpRemove, name, ErrNotFound)
	}
	if newSelf != nil {
		e.workingDir = newSelf
	}
	newVersion := e.commit(newRoot)

	e.history = append(e.history, Action{Type: ActionRemove, Args: []string{name}, OriginVersion: origin, NewVersion: newVersion})
	engineLogger.Info("removed %q at v%d", name, newVersion)
	return nil
}

// ReadFile returns the content of the named document.
func (e *Engine) ReadFile(name string) (string, error) {
	_, file, ok := e.findChild(e.workingDir, e.current, name)
	if !ok {
		return "", newError(OpRead, name, ErrNotFound)
	}
	if file.Type != store.Document {
		return "", newError(OpRead, name, ErrNotDocumentRead)
	}
	return file.Content, nil
}

// WriteFile replaces the content of the named document with content,
// producing a new file record and bumping the version.
func (e *Engine) WriteFile(name, content string) error {
	child, file, ok := e.findChild(e.workingDir, e.current, name)
	if !ok {
		return newError(OpWrite, name, ErrNotFound)
	}
	if file.Type != store.Document {
		return newError(OpWrite, name, ErrNotDocumentWrite)
	}

	newFileID := e.files.Push(name, store.Document, content)
	oldFileID := child.FileIDAt(e.current)

	origin := e.current
	newSelf, newRoot, ok := e.workingDir.ReplaceFileID(oldFileID, newFileID, e.next)
	if !ok {
		return newError(OpWrite, name, ErrNotFound)
	}
	if newSelf != nil {
		e.workingDir = newSelf
	}
	newVersion := e.commit(newRoot)

	e.history = append(e.history, Action{Type: ActionWrite, Args: []string{name, content}, OriginVersion: origin, NewVersion: newVersion})
	engineLogger.Info("wrote %q (id=%d -> %d) at v%d", name, oldFileID, newFileID, newVersion)
	return nil
}

// SetVersion re-anchors the working directory to the corresponding node
// in version v's tree, gracefully stopping at the first path segment
// that never existed there.
func (e *Engine) SetVersion(v filetree.Version) error {
	if v >= e.next {
		return newError(OpSetVer, "", ErrInvalidVersion)
	}

	path := filetree.PathToRoot(e.workingDir)
	target := e.versions[v]
	node, _ := filetree.Walk(target, v, path)

	e.current = v
	e.root = target
	e.workingDir = node
	return nil
}

// GetVersion returns the currently presented version.
func (e *Engine) GetVersion() filetree.Version {
	return e.current
}

// CurrentDirName returns the name of the working directory itself, as
// recorded in its own file record — "/" at the engine's root.
func (e *Engine) CurrentDirName() string {
	return e.files.Get(e.workingDir.FileIDAt(e.current)).Name
}

// GetHistory returns the append-only action log.
func (e *Engine) GetHistory() []Action {
	return e.history
}
