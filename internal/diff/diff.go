// Package diff computes a minimum edit script between two byte strings
// via Levenshtein dynamic programming, and renders it as an annotated
// string using bracket markers for inserted, deleted, and modified runs.
//
// Grounded on original_source/src/Diff.cpp's DIFF class: the same table
// shape, the same tie-break precedence, and the same tail-first script
// recovery (accumulate in reverse, then reverse once at the end).
package diff

import (
	"strings"

	"celv/internal/logging"
)

var diffLogger = logging.GetLogger().WithPrefix("diff")

// Markers used to annotate a rendered diff script.
const (
	OpenDeleted  = "[["
	CloseDeleted = "]]"
	OpenInserted = "{{"
	CloseInserted = "}}"
)

type op int

const (
	opNone op = iota
	opInsert
	opDelete
	opModify
)

type cell struct {
	i, j int
	best int
	op   op
}

// table holds the (|a|+1) x (|b|+1) edit-distance memo.
type table struct {
	a, b string
	memo [][]cell
}

func build(a, b string) *table {
	t := &table{a: a, b: b, memo: make([][]cell, len(a)+1)}
	for i := range t.memo {
		t.memo[i] = make([]cell, len(b)+1)
	}
	return t
}

// compute fills the memo table following the recurrence in spec.md §4.4.
func (t *table) compute() {
	t.memo[0][0] = cell{0, 0, 0, opNone}

	for i := 1; i <= len(t.a); i++ {
		t.memo[i][0] = cell{i - 1, 0, i, opDelete}
	}
	for j := 1; j <= len(t.b); j++ {
		t.memo[0][j] = cell{0, j - 1, j, opInsert}
	}

	for i := 1; i <= len(t.a); i++ {
		for j := 1; j <= len(t.b); j++ {
			if t.a[i-1] == t.b[j-1] {
				t.memo[i][j] = cell{i - 1, j - 1, t.memo[i-1][j-1].best, opNone}
				continue
			}

			horiz := t.memo[i][j-1].best   // insert
			vert := t.memo[i-1][j].best    // delete
			diag := t.memo[i-1][j-1].best  // modify

			if horiz < vert {
				if horiz < diag {
					t.memo[i][j] = cell{i, j - 1, 1 + horiz, opInsert}
				} else {
					t.memo[i][j] = cell{i - 1, j - 1, 1 + diag, opModify}
				}
			} else {
				if vert < diag {
					t.memo[i][j] = cell{i - 1, j, 1 + vert, opDelete}
				} else {
					t.memo[i][j] = cell{i - 1, j - 1, 1 + diag, opModify}
				}
			}
		}
	}
}

// Distance returns the Levenshtein edit distance between a and b.
func Distance(a, b string) int {
	t := build(a, b)
	t.compute()
	return t.memo[len(a)][len(b)].best
}

// Diff renders the annotated minimum edit script transforming a into b.
// If a == b, it short-circuits and returns a with no markers.
func Diff(a, b string) string {
	if a == b {
		return a
	}

	diffLogger.Trace("computing diff between %d and %d byte strings", len(a), len(b))
	t := build(a, b)
	t.compute()
	return t.produce()
}

// produce walks the memo table tail-first, following the same table
// shape and tail-first recovery as original_source/src/Diff.cpp's
// produce_diff: each run is appended in the order a backward walk
// would see it (closing marker, then the run's characters
// back-to-front, then the opening marker), and the whole accumulated
// string is reversed exactly once at the end. Doing the reversal once
// — not per block — is what turns the tail-first walk into a
// left-to-right rendering with correctly-ordered blocks.
//
// Unlike the C++ original, a modified run renders insert-before-delete
// ({{new}}[[old]]), not the other way around — spec.md's worked
// examples pin this ordering explicitly, overriding the source's own
// old-first output.
func (t *table) produce() string {
	u, v := len(t.a), len(t.b)
	current := t.memo[u][v].op

	var out strings.Builder

	for t.memo[u][v].i != u || t.memo[u][v].j != v {
		switch current {
		case opInsert:
			out.WriteString(CloseInserted)
			for t.memo[u][v].op == current && (t.memo[u][v].i != u || t.memo[u][v].j != v) {
				out.WriteByte(t.b[v-1])
				u, v = t.memo[u][v].i, t.memo[u][v].j
			}
			out.WriteString(OpenInserted)

		case opDelete:
			out.WriteString(CloseDeleted)
			for t.memo[u][v].op == current && (t.memo[u][v].i != u || t.memo[u][v].j != v) {
				out.WriteByte(t.a[u-1])
				u, v = t.memo[u][v].i, t.memo[u][v].j
			}
			out.WriteString(OpenDeleted)

		case opModify:
			out.WriteString(CloseDeleted)
			var inserted strings.Builder
			inserted.WriteString(CloseInserted)
			for t.memo[u][v].op == current && (t.memo[u][v].i != u || t.memo[u][v].j != v) {
				out.WriteByte(t.a[u-1])
				inserted.WriteByte(t.b[v-1])
				u, v = t.memo[u][v].i, t.memo[u][v].j
			}
			inserted.WriteString(OpenInserted)
			out.WriteString(OpenDeleted)
			out.WriteString(inserted.String())

		case opNone:
			for t.memo[u][v].op == current && (t.memo[u][v].i != u || t.memo[u][v].j != v) {
				out.WriteByte(t.a[u-1])
				u, v = t.memo[u][v].i, t.memo[u][v].j
			}
		}

		current = t.memo[u][v].op
	}

	return reverse(out.String())
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
