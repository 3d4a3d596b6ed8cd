// Package store implements the append-only file record table backing a
// CELV engine. Records are immutable once pushed; writing new content to
// a document means pushing a new record and pointing the tree at its id.
package store

import (
	"fmt"

	"celv/internal/logging"
)

var storeLogger = logging.GetLogger().WithPrefix("store")

// Type distinguishes a document (has content) from a directory (doesn't).
type Type int

const (
	// Document is a regular, content-bearing file.
	Document Type = iota
	// Directory is a container with no content of its own.
	Directory
)

func (t Type) String() string {
	if t == Directory {
		return "directory"
	}
	return "document"
}

// ID identifies a File record within a single Store. IDs are dense,
// non-negative, and assigned in insertion order; they are never reused.
type ID uint64

// File is the immutable payload a FileTree node refers to by ID.
type File struct {
	ID      ID
	Name    string
	Type    Type
	Content string // empty for directories
}

// Store is the append-only table of File records owned by one CELV
// engine. It never mutates or removes a record in place: WriteFile at
// the CELV layer always pushes a brand-new record.
type Store struct {
	records []File
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Push appends a new record and returns the ID assigned to it, which is
// always equal to the store's length before the push.
func (s *Store) Push(name string, typ Type, content string) ID {
	id := ID(len(s.records))
	if typ == Directory {
		content = ""
	}
	s.records = append(s.records, File{ID: id, Name: name, Type: typ, Content: content})
	storeLogger.Trace("pushed record %d: name=%q type=%s", id, name, typ)
	return id
}

// Get returns the record for id. It panics if id is out of range: a
// FileTree should never reference an id the store doesn't hold, so an
// out-of-range id is a programmer error, not a recoverable one.
func (s *Store) Get(id ID) File {
	if int(id) < 0 || int(id) >= len(s.records) {
		panic(fmt.Sprintf("store: id %d out of range (len=%d)", id, len(s.records)))
	}
	return s.records[id]
}

// Len returns the number of records ever pushed.
func (s *Store) Len() int {
	return len(s.records)
}
