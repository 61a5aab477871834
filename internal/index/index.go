// Package index implements the in-memory key → command position mapping
// (spec C4): a concurrent ordered map from key to (generation, offset,
// length), with iteration in key order used only by compaction.
//
// The teacher's internal/index package modeled this as a plain
// map[string]*RecordPointer behind a sync.RWMutex, which is safe but gives
// compaction no way to scan without holding the lock for the whole walk.
// original_source/kvs4 solves this with crossbeam_skiplist::SkipMap, a
// lock-free ordered map. The closest Go equivalent available in this pack
// is tidwall/btree's Map — already an indirect dependency of
// Jipok-go-persist's own benchmark module via buntdb — whose Copy() gives
// an O(1) copy-on-write snapshot. Wrapping it in a mutex for point
// operations and taking a Copy() before an iteration satisfies spec
// §4.4's "iteration sees a consistent per-entry snapshot" without
// holding the index lock for the duration of a compaction scan.
package index

import (
	"sync"

	"github.com/tidwall/btree"
)

// Pos locates a single record on disk: generation, byte offset, and byte
// length, per spec §3's command position.
type Pos struct {
	Gen uint64
	Off int64
	Len int64
}

// Index is the concurrent ordered key → Pos map. The zero value is not
// ready for use; call New.
type Index struct {
	mu   sync.RWMutex
	tree *btree.Map[string, Pos]
}

// New returns an empty Index.
func New() *Index {
	return &Index{tree: btree.NewMap[string, Pos](0)}
}

// Insert records key at pos, replacing any prior entry, and returns the
// position it displaced, if any — the caller uses this to charge the
// displaced record's length to the uncompacted counter.
func (idx *Index) Insert(key string, pos Pos) (old Pos, hadOld bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	old, hadOld = idx.tree.Set(key, pos)
	return old, hadOld
}

// Get returns the position currently indexed for key.
func (idx *Index) Get(key string) (Pos, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Get(key)
}

// Remove drops key from the index, returning its prior position if it was
// present.
func (idx *Index) Remove(key string) (Pos, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.tree.Delete(key)
}

// Len returns the number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.tree.Len()
}

// Entry is a single (key, position) pair produced by Snapshot.
type Entry struct {
	Key string
	Pos Pos
}

// Snapshot returns every live entry in key order, as of a single instant.
// It is used only by the compactor (spec §4.4): the underlying Copy() is
// O(1) thanks to copy-on-write sharing, so compaction never holds the
// index lock for the duration of the rewrite — concurrent Get calls and
// the compactor's own Update calls proceed against the live tree while
// compaction walks its frozen copy. (Writer Set/Remove calls wait on the
// writer lock, which compaction holds throughout.)
func (idx *Index) Snapshot() []Entry {
	idx.mu.RLock()
	cp := idx.tree.Copy()
	idx.mu.RUnlock()

	entries := make([]Entry, 0, cp.Len())
	cp.Scan(func(key string, pos Pos) bool {
		entries = append(entries, Entry{Key: key, Pos: pos})
		return true
	})
	return entries
}

// Update sets key's position unconditionally, used by the compactor to
// rewrite an entry's location in place after copying its bytes forward.
// It is identical to Insert but named separately to make compaction call
// sites read as "relocate", not "displace-and-charge".
func (idx *Index) Update(key string, pos Pos) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.tree.Set(key, pos)
}
