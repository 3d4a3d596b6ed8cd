package celv

import (
	"fmt"
	"sort"

	"celv/internal/filetree"
	"celv/internal/store"
)

// mergeQueueItem pairs a src-tree node and a dst-tree node (queried at
// their own fixed versions) with the live directory in the
// in-progress merged tree that their union is being written into.
//
// A "solo" step — content present on only one side — is represented by
// setting both sides to the same node at the same version: the
// two-cursor walk below then trivially matches every entry with itself
// (ids always equal), which reproduces a verbatim copy of that
// subtree. This lets one code path handle both real merging and
// wholesale copying.
type mergeQueueItem struct {
	srcNode *filetree.Node
	dstNode *filetree.Node
	srcV    filetree.Version
	dstV    filetree.Version
	dir     *filetree.Node
}

type mergeEntry struct {
	node *filetree.Node
	file store.File
}

// sortedEntries orders a directory's children the way the merge cursor
// walk requires: documents before directories, then lexicographically
// by name. This is a different ordering than SortedChildrenAt's
// id-based order, which exists purely for deterministic map iteration.
func sortedEntries(files *store.Store, dir *filetree.Node, v filetree.Version) []mergeEntry {
	children := dir.SortedChildrenAt(v)
	entries := make([]mergeEntry, len(children))
	for i, child := range children {
		entries[i] = mergeEntry{node: child, file: files.Get(child.FileIDAt(v))}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].file.Type != entries[j].file.Type {
			return entries[i].file.Type == store.Document
		}
		return entries[i].file.Name < entries[j].file.Name
	})
	return entries
}

// Merge produces a new version whose tree is the structural union of
// the trees presented at srcV and dstV. Every emitted creation and
// write goes through CreateFile/WriteFile, so each step also generates
// its own version bump and history entry; the tracking version
// (max(srcV, dstV)) is recorded only as the Merge action's origin.
//
// The union is built into a freshly seeded, disconnected root rather
// than grown forward from whatever the engine's current tree happens
// to contain — otherwise names already present in the pre-merge
// working tree, unrelated to either side of the merge, would collide
// with entries the merge is trying to emit. The fresh root becomes the
// engine's live root before the walk starts, so every emitted
// CreateFile/WriteFile commits into it. Once the union is complete,
// the working directory is re-anchored into it along the same path it
// occupied before the merge (Walk stops early if a segment doesn't
// exist on the merged side).
func (e *Engine) Merge(srcV, dstV filetree.Version) (filetree.Version, error) {
	if srcV == dstV {
		return 0, newError(OpMerge, "", ErrMergeDegenerate)
	}
	if srcV >= e.next || dstV >= e.next {
		return 0, newError(OpMerge, "", ErrInvalidVersion)
	}

	tracking := srcV
	if dstV > tracking {
		tracking = dstV
	}

	pathBack := filetree.PathToRoot(e.workingDir)

	mergedRoot := filetree.NewRoot(rootFileID)
	e.root = mergedRoot
	e.workingDir = mergedRoot

	queue := []mergeQueueItem{{
		srcNode: e.versions[srcV],
		dstNode: e.versions[dstV],
		srcV:    srcV,
		dstV:    dstV,
		dir:     mergedRoot,
	}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		grown, err := e.mergeStep(item)
		if err != nil {
			return 0, newError(OpMerge, "", err)
		}
		queue = append(queue, grown...)
	}

	mergedVersion := e.current

	node, _ := filetree.Walk(e.root, mergedVersion, pathBack)
	e.workingDir = node

	e.history = append(e.history, Action{
		Type:          ActionMerge,
		Args:          []string{fmt.Sprintf("%d::%d", srcV, dstV)},
		OriginVersion: tracking,
		NewVersion:    mergedVersion,
	})

	engineLogger.Info("merged v%d and v%d into v%d", srcV, dstV, mergedVersion)
	return mergedVersion, nil
}

// mergeCursor accumulates the queue items discovered while walking one
// directory pair, and tracks the live merged directory node as it gets
// promoted across successive CreateFile/WriteFile calls.
type mergeCursor struct {
	e    *Engine
	dir  *filetree.Node
	next []mergeQueueItem
}

func (c *mergeCursor) emitDoc(name, content string) error {
	c.e.workingDir = c.dir
	if _, err := c.e.CreateFile(name, store.Document); err != nil {
		return err
	}
	c.dir = c.e.workingDir
	c.e.workingDir = c.dir
	if err := c.e.WriteFile(name, content); err != nil {
		return err
	}
	c.dir = c.e.workingDir
	return nil
}

func (c *mergeCursor) emitDir(name string, srcNode, dstNode *filetree.Node, srcV, dstV filetree.Version) error {
	c.e.workingDir = c.dir
	if _, err := c.e.CreateFile(name, store.Directory); err != nil {
		return err
	}
	c.dir = c.e.workingDir
	child, _, ok := c.e.findChild(c.dir, c.e.current, name)
	if !ok {
		return fmt.Errorf("merge: directory %q vanished immediately after creation", name)
	}
	c.next = append(c.next, mergeQueueItem{srcNode: srcNode, dstNode: dstNode, srcV: srcV, dstV: dstV, dir: child})
	return nil
}

// mergeStep processes one directory pair, emitting the union of its
// entries into item.dir via CreateFile/WriteFile, and returns further
// queue items for any directory entries it descended into.
func (e *Engine) mergeStep(item mergeQueueItem) ([]mergeQueueItem, error) {
	src := sortedEntries(e.files, item.srcNode, item.srcV)
	dst := sortedEntries(e.files, item.dstNode, item.dstV)
	c := &mergeCursor{e: e, dir: item.dir}

	emitSolo := func(entry mergeEntry, v filetree.Version) error {
		if entry.file.Type == store.Document {
			return c.emitDoc(entry.file.Name, entry.file.Content)
		}
		return c.emitDir(entry.file.Name, entry.node, entry.node, v, v)
	}

	emitPair := func(s, d mergeEntry) error {
		if s.file.Type == store.Document {
			content := s.file.Content
			if s.file.ID != d.file.ID {
				content = e.diffCache.Diff(s.file.ID, s.file.Content, d.file.ID, d.file.Content)
			}
			return c.emitDoc(s.file.Name, content)
		}
		return c.emitDir(s.file.Name, s.node, d.node, item.srcV, item.dstV)
	}

	i, j := 0, 0
	for i < len(src) && j < len(dst) {
		s, d := src[i], dst[j]
		var err error
		switch {
		case s.file.Name == d.file.Name && s.file.Type == d.file.Type:
			err = emitPair(s, d)
			i++
			j++
		case s.file.Name == d.file.Name:
			// Same name, different type: a genuine conflict. The document
			// side wins outright; the directory side is dropped, not
			// deferred, since deferring it would collide with the name
			// the winner just claimed.
			if s.file.Type == store.Document {
				err = emitSolo(s, item.srcV)
			} else {
				err = emitSolo(d, item.dstV)
			}
			i++
			j++
		case s.file.Name < d.file.Name:
			err = emitSolo(s, item.srcV)
			i++
		default:
			err = emitSolo(d, item.dstV)
			j++
		}
		if err != nil {
			return nil, err
		}
	}
	for ; i < len(src); i++ {
		if err := emitSolo(src[i], item.srcV); err != nil {
			return nil, err
		}
	}
	for ; j < len(dst); j++ {
		if err := emitSolo(dst[j], item.dstV); err != nil {
			return nil, err
		}
	}

	return c.next, nil
}
