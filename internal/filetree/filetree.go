// Package filetree implements the persistent, partially-persistent
// directory node at the heart of CELV: the "change box" protocol that
// gives every node one amortized free copy-on-write before a mutation
// has to clone and cascade up to a new version root.
//
// A Node never mutates data visible to an existing version. The two
// update primitives, UpdateFileID and UpdateChildren, either fill an
// empty change box in place, or — once the change box is full — clone
// the node and recurse into the parent, splicing the new parent back in
// once the recursion returns.
package filetree

import (
	"sort"

	"celv/internal/logging"
	"celv/internal/store"
)

var treeLogger = logging.GetLogger().WithPrefix("filetree")

// Version identifies a snapshot of the tree. Lower numbers are older.
type Version uint64

// Node is a versioned directory-tree node. It represents either a
// directory or a document File record; document nodes are leaves
// referenced by their parent's Children map and are never themselves
// queried for children.
type Node struct {
	fileID   store.ID
	parent   *Node
	children map[store.ID]*Node
	changeBox *Node
	version  Version
}

// NewRoot creates the version-0 root node, representing file id fileID
// with no parent.
func NewRoot(fileID store.ID) *Node {
	return &Node{fileID: fileID, children: map[store.ID]*Node{}, version: 0}
}

// New creates a plain child node, not yet attached to any parent's
// children map (the caller is expected to fold it into a new children
// map and drive it through UpdateChildren on the parent).
func New(fileID store.ID, parent *Node, version Version) *Node {
	return &Node{fileID: fileID, parent: parent, children: map[store.ID]*Node{}, version: version}
}

// Parent returns this node's parent, or nil at the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// FileIDAt returns the file id this node represents as of version v.
func (n *Node) FileIDAt(v Version) store.ID {
	if n.changeBox != nil && n.changeBox.version <= v {
		return n.changeBox.fileID
	}
	return n.fileID
}

// ChildrenAt returns the child-id -> Node map as of version v. The
// returned map must not be mutated by the caller; treat it as read-only.
func (n *Node) ChildrenAt(v Version) map[store.ID]*Node {
	if n.changeBox != nil && n.changeBox.version <= v {
		return n.changeBox.children
	}
	return n.children
}

// SortedChildrenAt returns the same children as ChildrenAt but as a
// slice ordered deterministically by file id, for iteration order that
// doesn't depend on Go's randomized map iteration.
func (n *Node) SortedChildrenAt(v Version) []*Node {
	m := n.ChildrenAt(v)
	ids := make([]store.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = m[id]
	}
	return out
}

func cloneChildren(m map[store.ID]*Node) map[store.ID]*Node {
	out := make(map[store.ID]*Node, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// UpdateFileID implements the change-box protocol for replacing this
// node's file id (used by ReplaceFileId, i.e. writing a document). It
// returns the node's own next version (nil if the change box absorbed
// the edit) and, when the clone cascaded all the way up to the root,
// the new version root (nil otherwise).
func (n *Node) UpdateFileID(newFileID store.ID, newV Version) (newSelf, newRoot *Node) {
	if n.changeBox == nil {
		treeLogger.Trace("filling change box on node %d for new file id %d at v%d", n.fileID, newFileID, newV)
		n.changeBox = &Node{
			fileID:   newFileID,
			parent:   n.parent,
			children: n.children,
			version:  newV,
		}
		return nil, nil
	}

	treeLogger.Trace("change box full on node %d, cloning at v%d", n.fileID, newV)
	newNode := &Node{fileID: newFileID, version: newV, children: n.changeBox.children}

	if n.parent == nil {
		newNode.parent = nil
		return newNode, newNode
	}

	parentChildren := cloneChildren(n.parent.ChildrenAt(newV))
	delete(parentChildren, n.fileID)
	parentChildren[newFileID] = newNode
	newParentSelf, newParentRoot := n.parent.UpdateChildren(parentChildren, newV)

	if newParentSelf != nil {
		newNode.parent = newParentSelf
	} else {
		newNode.parent = n.parent
	}
	return newNode, newParentRoot
}

// UpdateChildren implements the change-box protocol for replacing this
// node's children map (used by AddFile, RemoveFile, and the child-map
// splice inside ReplaceFileId's ancestor recursion).
func (n *Node) UpdateChildren(newChildren map[store.ID]*Node, newV Version) (newSelf, newRoot *Node) {
	if n.changeBox == nil {
		treeLogger.Trace("filling change box on node %d with new children at v%d", n.fileID, newV)
		n.changeBox = &Node{
			fileID:   n.fileID,
			parent:   n.parent,
			children: newChildren,
			version:  newV,
		}
		return nil, nil
	}

	treeLogger.Trace("change box full on node %d, cloning children at v%d", n.fileID, newV)
	newNode := &Node{fileID: n.fileID, version: newV, children: newChildren}

	if n.parent == nil {
		newNode.parent = nil
		return newNode, newNode
	}

	parentChildren := cloneChildren(n.parent.ChildrenAt(newV))
	parentChildren[n.fileID] = newNode
	newParentSelf, newParentRoot := n.parent.UpdateChildren(parentChildren, newV)

	if newParentSelf != nil {
		newNode.parent = newParentSelf
	} else {
		newNode.parent = n.parent
	}
	return newNode, newParentRoot
}

// AddFile inserts child under its own file id into this node's children
// as of newV, and drives the change-box protocol.
func (n *Node) AddFile(child *Node, newV Version) (newSelf, newRoot *Node) {
	newChildren := cloneChildren(n.ChildrenAt(newV))
	newChildren[child.fileID] = child
	return n.UpdateChildren(newChildren, newV)
}

// RemoveFile erases id from this node's children as of newV. If id is
// not present, it is a no-op: both returns are nil and no version is
// consumed by the caller.
func (n *Node) RemoveFile(id store.ID, newV Version) (newSelf, newRoot *Node, removed bool) {
	current := n.ChildrenAt(newV)
	if _, ok := current[id]; !ok {
		return nil, nil, false
	}
	newChildren := cloneChildren(current)
	delete(newChildren, id)
	newSelf, newRoot = n.UpdateChildren(newChildren, newV)
	return newSelf, newRoot, true
}

// ReplaceFileID re-keys the child previously stored under oldID to
// newID, updating that child node's own file id at the same time. This
// is how a document write produces a new, versioned content pointer
// while the surrounding tree structure is otherwise unaffected.
func (n *Node) ReplaceFileID(oldID, newID store.ID, newV Version) (newSelf, newRoot *Node, ok bool) {
	current := n.ChildrenAt(newV)
	child, exists := current[oldID]
	if !exists {
		return nil, nil, false
	}

	childNewSelf, childNewRoot := child.UpdateFileID(newID, newV)
	effectiveChild := child
	if childNewSelf != nil {
		effectiveChild = childNewSelf
	}

	newChildren := cloneChildren(current)
	delete(newChildren, oldID)
	newChildren[newID] = effectiveChild

	// If replacing the child's file id already produced a new version
	// root by itself (child was root — impossible for a File record
	// under a parent, but kept for symmetry with UpdateFileID's return
	// contract), propagate it; otherwise fold the new child map into
	// this node via the usual protocol.
	if childNewRoot != nil {
		return nil, childNewRoot, true
	}

	newSelf, newRoot = n.UpdateChildren(newChildren, newV)
	return newSelf, newRoot, true
}

// Walk descends from n at query version v by successively looking up
// each id in path. It stops at the first missing segment and returns
// the deepest node reached along with how many segments were consumed.
func Walk(n *Node, v Version, path []store.ID) (*Node, int) {
	cur := n
	for i, id := range path {
		children := cur.ChildrenAt(v)
		child, ok := children[id]
		if !ok {
			return cur, i
		}
		cur = child
	}
	return cur, len(path)
}

// PathToRoot returns the sequence of file ids from just below the root
// down to n (inclusive), i.e. the ids Walk would need, in order, to
// redescend from the root to n.
func PathToRoot(n *Node) []store.ID {
	var ids []store.ID
	for cur := n; cur.parent != nil; cur = cur.parent {
		ids = append(ids, cur.fileID)
	}
	// reverse
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}
