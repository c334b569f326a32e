// Package enrich implements the UTXO index and undo-ring machinery of
// spec §4.3: the stage that records produced outputs, resolves consumed
// ones by reference, and keeps enough undo data to invert any single
// block exactly. It generalizes the teacher's internal/chain apply/undo
// shape (internal/chain/reorg.go's applyBlockWithUndo/revertBlock) from
// "one chain's canonical history" to "a stage that replays undo for a
// RollBack stream".
package enrich

import (
	"encoding/binary"
	"fmt"

	"github.com/scrollchain/scrolls/internal/storage"
)

var (
	ringByRefPrefix = []byte("r/")
	ringBySeqPrefix = []byte("s/")
	ringSeqKey      = []byte("meta/seq")
	ringCountKey    = []byte("meta/count")
)

var errRingStop = fmt.Errorf("ring: stop iteration")

type ringStore interface {
	storage.DB
	storage.Batcher
}

// ring is a bounded, insertion-ordered undo namespace keyed by OutputRef.
// The produced ring (presence-only values) and the consumed ring (prior
// UTXO values) are two instances of this same shape, each backed by its
// own namespace (spec §9: "either is acceptable" so long as the two
// namespaces stay logically distinct).
type ring struct {
	db  ringStore
	cap int
}

func newRing(db ringStore, cap int) *ring {
	return &ring{db: db, cap: cap}
}

func refKey(ref string) []byte {
	return append(append([]byte{}, ringByRefPrefix...), []byte(ref)...)
}

func seqEntryKey(seq uint64) []byte {
	k := make([]byte, len(ringBySeqPrefix)+8)
	copy(k, ringBySeqPrefix)
	binary.BigEndian.PutUint64(k[len(ringBySeqPrefix):], seq)
	return k
}

func (r *ring) readCounter(key []byte) uint64 {
	v, err := r.db.Get(key)
	if err != nil || len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func encodeU64(n uint64) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, n)
	return v
}

// Get returns the value stored for ref, if present.
func (r *ring) Get(ref string) ([]byte, bool) {
	v, err := r.db.Get(refKey(ref))
	if err != nil {
		return nil, false
	}
	return v, true
}

// Begin starts a session over batch, seeding seq/count from the
// committed state exactly once. A batch isn't readable until it
// commits, so a block that calls Put/Delete more than once against the
// same batch must track seq/count locally across those calls instead of
// re-reading the DB each time — the same problem internal/sink/kv.go's
// applyDelta solves with a per-block numCache, and
// internal/blockbuffer/buffer.go's EnqueueRollbackBatch solves with a
// local seq/count threaded through its loop.
func (r *ring) Begin(batch storage.Batch) *ringSession {
	return &ringSession{
		r:     r,
		batch: batch,
		seq:   r.readCounter(ringSeqKey),
		count: r.readCounter(ringCountKey),
	}
}

// ringSession accumulates the seq/count effects of every Put/Delete
// issued against one in-flight batch, flushing the running totals to
// the batch on every call so the final Commit always sees the last
// write regardless of how many calls came before it.
type ringSession struct {
	r       *ring
	batch   storage.Batch
	seq     uint64
	count   uint64
	evicted uint64 // entries already staged for eviction this session
}

// Put stages ref -> value and its ordering entry, pruning the oldest
// entries (in the same batch) if this push would exceed cap. The caller
// commits batch together with the UTXO index mutation for the same
// block so both apply atomically or not at all.
func (s *ringSession) Put(ref string, value []byte) {
	s.batch.Put(refKey(ref), value)
	s.batch.Put(seqEntryKey(s.seq), []byte(ref))
	s.seq++
	s.count++

	if s.r.cap > 0 && s.count > uint64(s.r.cap) {
		toEvict := s.count - uint64(s.r.cap)
		var skipped, evicted uint64
		s.r.db.ForEach(ringBySeqPrefix, func(key, val []byte) error {
			// Entries this session already staged for deletion are
			// still visible here (the batch isn't committed yet), so
			// skip past them before evicting further ones.
			if skipped < s.evicted {
				skipped++
				return nil
			}
			if evicted >= toEvict {
				return errRingStop
			}
			s.batch.Delete(append([]byte{}, key...))
			s.batch.Delete(refKey(string(val)))
			evicted++
			return nil
		})
		s.count -= evicted
		s.evicted += evicted
	}

	s.batch.Put(ringSeqKey, encodeU64(s.seq))
	s.batch.Put(ringCountKey, encodeU64(s.count))
}

// Delete stages removal of ref's value entry. The seq-ordered index
// entry is left in place deliberately: it still points at a
// since-deleted byref key and is harmlessly skipped (and eventually
// pruned) the next time Put evicts past it.
func (s *ringSession) Delete(ref string) {
	s.batch.Delete(refKey(ref))
	if s.count > 0 {
		s.count--
	}
	s.batch.Put(ringCountKey, encodeU64(s.count))
}

func (r *ring) Len() int {
	return int(r.readCounter(ringCountKey))
}

func (r *ring) NewBatch() storage.Batch {
	return r.db.NewBatch()
}
