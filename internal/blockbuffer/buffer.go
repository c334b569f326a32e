// Package blockbuffer implements the durable, slot-ordered store of
// recent raw blocks plus the FIFO rollback-pending queue described in
// spec §4.2. It is owned exclusively by the Source stage.
package blockbuffer

import (
	"encoding/binary"
	"fmt"

	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/internal/storage"
	"github.com/scrollchain/scrolls/pkg/chain"
)

var (
	blkPrefix  = []byte("b/")
	protPrefix = []byte("p/")
	queuePrefix = []byte("q/")
	seqKey     = []byte("meta/seq")
	countKey   = []byte("meta/count")
	queueCountKey = []byte("meta/qcount")
)

// store is the slice of storage.DB this package actually needs: atomic
// batches over the usual key-value operations.
type store interface {
	storage.DB
	storage.Batcher
}

// BlockBuffer is the durable ring of recent raw blocks described in
// spec §4.2, bounded by Cap and never evicting an entry still sitting
// in the rollback-pending queue.
type BlockBuffer struct {
	db  store
	cap int
}

// New wraps db (which must support atomic batches) as a BlockBuffer
// enforcing at most cap retained entries outside the rollback queue.
func New(db store, cap int) *BlockBuffer {
	return &BlockBuffer{db: db, cap: cap}
}

func slotKey(slot uint64) []byte {
	k := make([]byte, len(blkPrefix)+8)
	copy(k, blkPrefix)
	binary.BigEndian.PutUint64(k[len(blkPrefix):], slot)
	return k
}

func protKey(slot uint64) []byte {
	k := make([]byte, len(protPrefix)+8)
	copy(k, protPrefix)
	binary.BigEndian.PutUint64(k[len(protPrefix):], slot)
	return k
}

func seqEntryKey(seq uint64) []byte {
	k := make([]byte, len(queuePrefix)+8)
	copy(k, queuePrefix)
	binary.BigEndian.PutUint64(k[len(queuePrefix):], seq)
	return k
}

func slotFromKey(prefix, key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(prefix):])
}

func (b *BlockBuffer) readCounter(key []byte) uint64 {
	v, err := b.db.Get(key)
	if err != nil || len(v) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(v)
}

func encodeCounter(n uint64) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, n)
	return v
}

// Insert writes slot -> bytes, evicting the oldest non-protected entries
// (in one atomic batch with the insert) if this pushes the buffer over
// cap. Entries still in the rollback queue are never evicted.
func (b *BlockBuffer) Insert(p chain.Point, raw []byte) error {
	batch := b.db.NewBatch()
	batch.Put(slotKey(p.Slot), raw)

	count := b.readCounter(countKey) + 1

	if b.cap > 0 && count > uint64(b.cap) {
		toEvict := count - uint64(b.cap)
		var evicted uint64
		err := b.db.ForEach(blkPrefix, func(key, _ []byte) error {
			if evicted >= toEvict {
				return errStopIteration
			}
			slot := slotFromKey(blkPrefix, key)
			protected, _ := b.db.Has(protKey(slot))
			if protected {
				return nil
			}
			batch.Delete(key)
			evicted++
			return nil
		})
		if err != nil && err != errStopIteration {
			return fmt.Errorf("blockbuffer: scan for eviction: %w", err)
		}
		count -= evicted
	}

	batch.Put(countKey, encodeCounter(count))

	if err := batch.Commit(); err != nil {
		return perr.Storage(fmt.Errorf("blockbuffer: insert slot %d: %w", p.Slot, err))
	}
	log.BlockBuffer.Debug().Uint64("slot", p.Slot).Uint64("count", count).Msg("inserted block")
	return nil
}

var errStopIteration = fmt.Errorf("blockbuffer: stop iteration")

// Get returns the raw bytes stored for p's slot, if any.
func (b *BlockBuffer) Get(p chain.Point) ([]byte, bool, error) {
	v, err := b.db.Get(slotKey(p.Slot))
	if err != nil {
		return nil, false, nil
	}
	return v, true, nil
}

// Tip returns the highest-slot entry currently retained.
func (b *BlockBuffer) Tip() (chain.Point, []byte, bool, error) {
	var (
		found   bool
		topSlot uint64
		topVal  []byte
	)
	err := b.db.ForEach(blkPrefix, func(key, value []byte) error {
		slot := slotFromKey(blkPrefix, key)
		if !found || slot > topSlot {
			found = true
			topSlot = slot
			topVal = append([]byte(nil), value...)
		}
		return nil
	})
	if err != nil {
		return chain.Point{}, nil, false, fmt.Errorf("blockbuffer: tip scan: %w", err)
	}
	if !found {
		return chain.Point{}, nil, false, nil
	}
	return chain.Point{Slot: topSlot}, topVal, true, nil
}

// EnqueueRollbackBatch finds every entry with slot > target.Slot, marks
// each protected from cap eviction, and appends them to the FIFO
// rollback queue in descending slot order. It returns the raw bytes in
// the same descending order for a caller that wants to act on them
// immediately, though the normal drain path is RollbackPop.
func (b *BlockBuffer) EnqueueRollbackBatch(target chain.Point) ([][]byte, error) {
	type entry struct {
		slot uint64
		raw  []byte
	}
	var entries []entry
	err := b.db.ForEach(blkPrefix, func(key, value []byte) error {
		slot := slotFromKey(blkPrefix, key)
		if slot > target.Slot {
			entries = append(entries, entry{slot: slot, raw: append([]byte(nil), value...)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("blockbuffer: enqueue scan: %w", err)
	}

	// Descending slot order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if len(entries) == 0 {
		return nil, nil
	}

	batch := b.db.NewBatch()
	seq := b.readCounter(seqKey)
	qcount := b.readCounter(queueCountKey)
	out := make([][]byte, 0, len(entries))
	for _, e := range entries {
		batch.Put(seqEntryKey(seq), slotKey(e.slot)[len(blkPrefix):])
		batch.Put(protKey(e.slot), []byte{})
		seq++
		qcount++
		out = append(out, e.raw)
	}
	batch.Put(seqKey, encodeCounter(seq))
	batch.Put(queueCountKey, encodeCounter(qcount))

	if err := batch.Commit(); err != nil {
		return nil, perr.Storage(fmt.Errorf("blockbuffer: enqueue rollback batch: %w", err))
	}
	log.BlockBuffer.Warn().Uint64("target_slot", target.Slot).Int("count", len(entries)).Msg("enqueued rollback batch")
	return out, nil
}

// RollbackPop dequeues the oldest pending rollback entry and atomically
// removes the corresponding block bytes from the buffer, returning the
// slot it belonged to alongside the raw bytes.
func (b *BlockBuffer) RollbackPop() (slot uint64, raw []byte, ok bool, err error) {
	var (
		found    bool
		entryKey []byte
		slotRaw  []byte
	)
	scanErr := b.db.ForEach(queuePrefix, func(key, value []byte) error {
		found = true
		entryKey = append([]byte(nil), key...)
		slotRaw = append([]byte(nil), value...)
		return errStopIteration
	})
	if scanErr != nil && scanErr != errStopIteration {
		return 0, nil, false, fmt.Errorf("blockbuffer: rollback pop scan: %w", scanErr)
	}
	if !found {
		return 0, nil, false, nil
	}

	slot = binary.BigEndian.Uint64(slotRaw)
	bk := slotKey(slot)

	raw, err = b.db.Get(bk)
	if err != nil {
		raw = nil
	}

	batch := b.db.NewBatch()
	batch.Delete(entryKey)
	batch.Delete(protKey(slot))
	batch.Delete(bk)

	qcount := b.readCounter(queueCountKey)
	if qcount > 0 {
		qcount--
	}
	batch.Put(queueCountKey, encodeCounter(qcount))

	count := b.readCounter(countKey)
	if count > 0 {
		count--
	}
	batch.Put(countKey, encodeCounter(count))

	if err := batch.Commit(); err != nil {
		return 0, nil, false, perr.Storage(fmt.Errorf("blockbuffer: rollback pop commit: %w", err))
	}
	log.BlockBuffer.Debug().Uint64("slot", slot).Msg("rollback popped")
	return slot, raw, true, nil
}

// RollbackQueueDepth reports how many entries are still pending rollback.
func (b *BlockBuffer) RollbackQueueDepth() int {
	return int(b.readCounter(queueCountKey))
}
