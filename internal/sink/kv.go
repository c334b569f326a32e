package sink

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/internal/storage"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/codec"
	"github.com/scrollchain/scrolls/pkg/command"
)

type kvStore interface {
	storage.DB
	storage.Batcher
}

var (
	nsPlain       = []byte("w/")
	nsPlainTS     = []byte("wt/")
	nsSet         = []byte("s/")
	nsSortedSet   = []byte("z/")
	nsHashField   = []byte("hf/")
	nsHashCounter = []byte("hc/")
	nsPNCounter   = []byte("p/")
	cursorKey     = []byte("meta/cursor")
)

// KV is the reference Sink of spec §4.5: every Command variant applied
// to a single Badger-or-memory-backed store, batched per block and
// committed atomically on BlockFinished, which is also when the cursor
// advances (spec §5 commit-on-advance).
type KV struct {
	db kvStore

	batch   storage.Batch
	point   chain.Point
	tsCache map[string]int64
	numCache map[string]int64
}

// New builds a KV sink over db, which must support atomic batches.
func New(db kvStore) *KV {
	return &KV{db: db}
}

func (k *KV) Apply(ctx context.Context, cmd command.Command) error {
	switch cmd.Kind {
	case command.KindBlockStarting:
		k.beginBlock(cmd.Point)
		return nil
	case command.KindBlockFinished:
		return k.commitBlock(cmd.Point)
	}

	if k.batch == nil {
		k.beginBlock(cmd.Point)
	}

	switch cmd.Kind {
	case command.KindAnyWriteWins:
		k.batch.Put(plainKey(cmd.Key), cmd.Value)
	case command.KindLastWriteWins:
		k.applyLastWriteWins(cmd)
	case command.KindSetAdd:
		k.batch.Put(setKey(cmd.Key, cmd.Field), []byte{})
	case command.KindSetRemove:
		k.batch.Delete(setKey(cmd.Key, cmd.Field))
	case command.KindSortedSetAdd:
		k.applyDelta(nsSortedSet, cmd.Key, cmd.Field, cmd.Delta)
	case command.KindHashSetValue:
		k.batch.Put(hashFieldKey(cmd.Key, cmd.Field), cmd.Value)
	case command.KindHashSetMulti:
		for i, field := range cmd.Fields {
			var v []byte
			if i < len(cmd.Values) {
				v = cmd.Values[i]
			}
			k.batch.Put(hashFieldKey(cmd.Key, field), v)
		}
	case command.KindHashCounter:
		k.applyDelta(nsHashCounter, cmd.Key, cmd.Field, cmd.Delta)
	case command.KindPNCounter:
		k.applyDelta(nsPNCounter, cmd.Key, "", cmd.Delta)
	case command.KindUnsetKey:
		k.applyUnsetKey(cmd.Key)
	}
	return nil
}

func (k *KV) beginBlock(p chain.Point) {
	k.batch = k.db.NewBatch()
	k.point = p
	k.tsCache = make(map[string]int64)
	k.numCache = make(map[string]int64)
}

func (k *KV) commitBlock(p chain.Point) error {
	if k.batch == nil {
		k.beginBlock(p)
	}
	cursorVal, err := codec.EncodeCursor(p)
	if err != nil {
		return fmt.Errorf("sink: encode cursor: %w", err)
	}
	k.batch.Put(cursorKey, cursorVal)

	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, k.batch.Commit); err != nil {
		return err
	}
	log.Sink.Debug().Uint64("slot", p.Slot).Msg("committed block, cursor advanced")
	k.batch = nil
	k.tsCache = nil
	k.numCache = nil
	return nil
}

func (k *KV) applyLastWriteWins(cmd command.Command) {
	existing, cached := k.tsCache[cmd.Key]
	if !cached {
		existing = k.readInt64(tsKeyBytes(cmd.Key))
	}
	if cmd.Timestamp < existing {
		log.Sink.Debug().Str("key", cmd.Key).Int64("ts", cmd.Timestamp).Int64("existing", existing).
			Msg("discarding out-of-order LastWriteWins")
		k.tsCache[cmd.Key] = existing
		return
	}
	k.batch.Put(plainKey(cmd.Key), cmd.Value)
	k.batch.Put(tsKeyBytes(cmd.Key), encodeI64(cmd.Timestamp))
	k.tsCache[cmd.Key] = cmd.Timestamp
}

// applyDelta accumulates delta onto the numeric value at ns/key[/field],
// seeding from the underlying store the first time this block touches
// the key so repeated deltas within one block sum correctly even though
// the batch isn't readable until commit.
func (k *KV) applyDelta(ns []byte, key, field string, delta int64) {
	full := string(counterKey(ns, key, field))
	cur, cached := k.numCache[full]
	if !cached {
		cur = k.readInt64(counterKey(ns, key, field))
	}
	cur += delta
	k.numCache[full] = cur
	k.batch.Put(counterKey(ns, key, field), encodeI64(cur))
}

// applyUnsetKey wipes every namespace a key could have been written
// under: the plain value, its LWW timestamp, and any hash/set/sorted-set
// members recorded under that key (spec §5's metadata reducer relies on
// this to unset a whole per-transaction hash in one command).
func (k *KV) applyUnsetKey(key string) {
	k.batch.Delete(plainKey(key))
	k.batch.Delete(tsKeyBytes(key))
	k.batch.Delete(counterKey(nsPNCounter, key, ""))

	for _, ns := range [][]byte{nsSet, nsSortedSet, nsHashField, nsHashCounter} {
		prefix := append(append([]byte{}, ns...), []byte(key+"/")...)
		_ = k.db.ForEach(prefix, func(fullKey, _ []byte) error {
			k.batch.Delete(append([]byte{}, fullKey...))
			return nil
		})
	}
}

func (k *KV) readInt64(key []byte) int64 {
	v, err := k.db.Get(key)
	if err != nil || len(v) != 8 {
		return 0
	}
	return decodeI64(v)
}

// Cursor returns the persisted point, or chain.Origin if none yet.
func (k *KV) Cursor() (chain.Point, error) {
	v, err := k.db.Get(cursorKey)
	if err != nil {
		return chain.Origin, nil
	}
	return codec.DecodeCursor(v)
}

func (k *KV) Close() error {
	return k.db.Close()
}

func plainKey(key string) []byte       { return append(append([]byte{}, nsPlain...), []byte(key)...) }
func tsKeyBytes(key string) []byte     { return append(append([]byte{}, nsPlainTS...), []byte(key)...) }
func setKey(key, member string) []byte { return append(append([]byte{}, nsSet...), []byte(key+"/"+member)...) }

func hashFieldKey(key, field string) []byte {
	return append(append([]byte{}, nsHashField...), []byte(key+"/"+field)...)
}

func counterKey(ns []byte, key, field string) []byte {
	suffix := key
	if field != "" {
		suffix = key + "/" + field
	}
	return append(append([]byte{}, ns...), []byte(suffix)...)
}

func encodeI64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func decodeI64(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}
