package diff

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"celv/internal/store"
)

// pairKey identifies a diff between two immutable file records. Since
// store.ID never gets reused or mutated in place, the diff between any
// two ids is a pure function of those ids alone — safe to memoize for
// the lifetime of the process.
type pairKey struct {
	a, b store.ID
}

// Cache memoizes Diff results across repeated (a, b) file id pairs, the
// way merges can revisit the same document pair (e.g. the same two
// versions of a file meeting again in a later merge). Diff itself
// stays a pure function; Cache is purely an
// optimization layered in front of it.
type Cache struct {
	lru *lru.Cache[pairKey, string]
}

// NewCache returns a Cache holding at most size entries, evicting least
// recently used pairs once full.
func NewCache(size int) *Cache {
	c, err := lru.New[pairKey, string](size)
	if err != nil {
		// Only returns an error for a non-positive size, which is a
		// programmer error in this codebase, not a runtime condition.
		panic(err)
	}
	return &Cache{lru: c}
}

// Diff returns Diff(contentA, contentB), memoized by (idA, idB).
func (c *Cache) Diff(idA store.ID, contentA string, idB store.ID, contentB string) string {
	key := pairKey{idA, idB}
	if v, ok := c.lru.Get(key); ok {
		diffLogger.Trace("diff cache hit for (%d, %d)", idA, idB)
		return v
	}
	result := Diff(contentA, contentB)
	c.lru.Add(key, result)
	return result
}
