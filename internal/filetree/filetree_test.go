package filetree

import (
	"testing"

	"celv/internal/store"
)

func TestAddFileFillsChangeBoxInPlace(t *testing.T) {
	root := NewRoot(0)
	child := New(1, root, 1)

	newSelf, newRoot := root.AddFile(child, 1)
	if newSelf != nil {
		t.Fatal("expected the change box to absorb the first mutation, not clone")
	}
	if newRoot != nil {
		t.Fatal("expected no new root when the change box absorbs the mutation")
	}

	children := root.ChildrenAt(1)
	if _, ok := children[1]; !ok {
		t.Fatal("expected child id 1 to be visible at version 1")
	}
	if _, ok := root.ChildrenAt(0)[1]; ok {
		t.Fatal("child should not be visible at version 0, before the mutation")
	}
}

func TestSecondMutationClonesOnceChangeBoxIsFull(t *testing.T) {
	root := NewRoot(0)
	childA := New(1, root, 1)
	childB := New(2, root, 2)

	root.AddFile(childA, 1)
	newSelf, newRoot := root.AddFile(childB, 2)

	if newSelf == nil || newRoot == nil {
		t.Fatal("expected the second mutation on a full change box to clone and become a new root")
	}
	if newSelf != newRoot {
		t.Fatal("expected the root's own clone to equal the new version root")
	}

	if _, ok := root.ChildrenAt(2)[1]; !ok {
		t.Fatal("original root node's change box should still answer queries at version 2, just without the cloned-off mutation")
	}
	if _, ok := newRoot.ChildrenAt(2)[1]; !ok {
		t.Fatal("cloned root should carry over the child added at version 1")
	}
	if _, ok := newRoot.ChildrenAt(2)[2]; !ok {
		t.Fatal("cloned root should carry the child added at version 2")
	}
}

func TestRemoveFileIsNoOpWhenAbsent(t *testing.T) {
	root := NewRoot(0)
	newSelf, newRoot, removed := root.RemoveFile(99, 1)
	if removed {
		t.Fatal("expected RemoveFile to report false for an absent id")
	}
	if newSelf != nil || newRoot != nil {
		t.Fatal("expected nil/nil when nothing was removed")
	}
}

func TestReplaceFileIDRekeysChild(t *testing.T) {
	root := NewRoot(0)
	child := New(1, root, 1)
	root.AddFile(child, 1)

	newSelf, newRoot, ok := root.ReplaceFileID(1, 2, 2)
	if !ok {
		t.Fatal("expected ReplaceFileID to succeed for an existing child")
	}
	_ = newSelf
	effectiveRoot := root
	if newRoot != nil {
		effectiveRoot = newRoot
	}

	children := effectiveRoot.ChildrenAt(2)
	if _, stillOld := children[1]; stillOld {
		t.Error("old file id should no longer be present after replacement")
	}
	if _, hasNew := children[2]; !hasNew {
		t.Error("new file id should be present after replacement")
	}
}

func TestWalkStopsAtFirstMissingSegment(t *testing.T) {
	root := NewRoot(0)
	a := New(1, root, 1)
	root.AddFile(a, 1)

	node, consumed := Walk(root, 1, []store.ID{1, 42, 7})
	if consumed != 1 {
		t.Fatalf("expected Walk to stop after 1 segment, consumed %d", consumed)
	}
	if node != a {
		t.Fatal("expected Walk to return the last node reached")
	}
}

func TestPathToRootRoundTripsWithWalk(t *testing.T) {
	root := NewRoot(0)
	a := New(1, root, 1)
	root.AddFile(a, 1)
	b := New(2, a, 2)
	_, newRoot := a.AddFile(b, 2)
	if newRoot != nil {
		root = newRoot
	}

	leaf, _ := Walk(root, 2, PathToRoot(b))
	if leaf.fileID != b.fileID {
		t.Errorf("expected to redescend to the same node, got file id %d want %d", leaf.fileID, b.fileID)
	}
}

func TestSortedChildrenAtIsDeterministic(t *testing.T) {
	root := NewRoot(0)
	for _, id := range []store.ID{5, 1, 3} {
		if _, newRoot := root.AddFile(New(id, root, 1), 1); newRoot != nil {
			root = newRoot
		}
	}

	sorted := root.SortedChildrenAt(1)
	var prev store.ID = 0
	for i, n := range sorted {
		if i > 0 && n.fileID <= prev {
			t.Fatalf("expected ascending file id order, got %v", sorted)
		}
		prev = n.fileID
	}
}
