package enrich

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/internal/storage"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/codec"
)

type indexStore interface {
	storage.DB
	storage.Batcher
}

// ErrSkippedBlock is returned by Process when the decode policy is
// "skip" or "warn" and the block could not be decoded; the caller
// should drop the block and continue rather than treat this as fatal.
var ErrSkippedBlock = fmt.Errorf("enrich: block skipped per decode policy")

// Config parameterizes the Enrich stage.
type Config struct {
	// RingCap bounds the produced and consumed rings. It must exceed the
	// deepest rollback the source will ever emit or rollbacks of very
	// old blocks become lossy (spec §4.3's one documented degradation
	// mode).
	RingCap int
	// DecodePolicy governs what happens when a RawBlock fails to decode.
	DecodePolicy perr.Policy
	// Parallelism bounds the input-resolution worker pool (spec §9
	// "a worker pool with a fixed degree configurable per stage").
	Parallelism int
}

// Enrich owns the UTXO index and its two undo rings exclusively; no
// other stage reads or writes them (spec §5).
type Enrich struct {
	utxo     indexStore
	produced *ring
	consumed *ring
	cfg      Config
}

// New builds an Enrich stage. utxo, producedDB and consumedDB must each
// support atomic batches — three logically distinct namespaces, however
// they're physically laid out (spec §9).
func New(utxo indexStore, producedDB ringStore, consumedDB ringStore, cfg Config) *Enrich {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 8
	}
	if cfg.DecodePolicy == "" {
		cfg.DecodePolicy = perr.PolicyFail
	}
	return &Enrich{
		utxo:     utxo,
		produced: newRing(producedDB, cfg.RingCap),
		consumed: newRing(consumedDB, cfg.RingCap),
		cfg:      cfg,
	}
}

// Process decodes one RawBlockPayload and applies its direction-specific
// mutation to the UTXO index and rings, returning the enriched payload
// reducers consume next.
func (e *Enrich) Process(payload chain.RawBlockPayload) (chain.EnrichedBlockPayload, error) {
	block, err := codec.DecodeBlock(payload.Raw)
	if err != nil {
		switch e.cfg.DecodePolicy {
		case perr.PolicySkip:
			log.Enrich.Error().Err(err).Uint64("slot", payload.Point.Slot).Msg("decode failed, skipping block")
			return chain.EnrichedBlockPayload{}, ErrSkippedBlock
		case perr.PolicyWarn:
			log.Enrich.Warn().Err(err).Uint64("slot", payload.Point.Slot).Msg("decode failed, skipping block (warn policy)")
			return chain.EnrichedBlockPayload{}, ErrSkippedBlock
		default:
			return chain.EnrichedBlockPayload{}, perr.Decode(err)
		}
	}

	switch payload.Direction {
	case chain.Undo:
		return e.rollBack(block)
	default:
		return e.rollForward(block)
	}
}

func (e *Enrich) rollForward(block chain.Block) (chain.EnrichedBlockPayload, error) {
	utxoBatch := e.utxo.NewBatch()
	prodBatch := e.produced.NewBatch()
	prodSession := e.produced.Begin(prodBatch)

	for _, tx := range block.Transactions {
		for _, po := range tx.Produces {
			ref := chain.OutputRef{TxHash: tx.Hash, Index: po.Index}
			val, err := codec.EncodeUTXOValue(po.Output.Era, po.Output)
			if err != nil {
				return chain.EnrichedBlockPayload{}, perr.Decode(err)
			}
			utxoBatch.Put([]byte(ref.Key()), val)
			prodSession.Put(ref.Key(), []byte{})
		}
	}

	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, utxoBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, prodBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}

	consumedRefs := collectConsumed(block)

	ctxOut, err := e.resolveInputs(consumedRefs)
	if err != nil {
		return chain.EnrichedBlockPayload{}, err
	}

	removeBatch := e.utxo.NewBatch()
	consumedBatch := e.consumed.NewBatch()
	consumedSession := e.consumed.Begin(consumedBatch)
	for _, ref := range consumedRefs {
		raw, err := e.utxo.Get([]byte(ref.Key()))
		if err != nil {
			continue // not in the index: forward reference or genesis UTXO, not fatal
		}
		removeBatch.Delete([]byte(ref.Key()))
		consumedSession.Put(ref.Key(), raw)
	}
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, removeBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, consumedBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}

	log.Enrich.Debug().Uint64("slot", block.Slot).Int("txs", len(block.Transactions)).Msg("applied block forward")
	return chain.EnrichedBlockPayload{Direction: chain.Forward, Block: block, Context: ctxOut}, nil
}

func (e *Enrich) rollBack(block chain.Block) (chain.EnrichedBlockPayload, error) {
	removeBatch := e.utxo.NewBatch()
	prodDelBatch := e.produced.NewBatch()
	prodDelSession := e.produced.Begin(prodDelBatch)
	for _, tx := range block.Transactions {
		for _, po := range tx.Produces {
			ref := chain.OutputRef{TxHash: tx.Hash, Index: po.Index}
			removeBatch.Delete([]byte(ref.Key()))
			prodDelSession.Delete(ref.Key())
		}
	}
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, removeBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, prodDelBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}

	consumedRefs := collectConsumed(block)

	restoreBatch := e.utxo.NewBatch()
	consumedDelBatch := e.consumed.NewBatch()
	consumedDelSession := e.consumed.Begin(consumedDelBatch)
	for _, ref := range consumedRefs {
		val, ok := e.consumed.Get(ref.Key())
		if !ok {
			log.Enrich.Debug().Str("ref", ref.Key()).Msg("missing consumed-ring entry on rollback, skipping restore")
			continue
		}
		restoreBatch.Put([]byte(ref.Key()), val)
		consumedDelSession.Delete(ref.Key())
	}
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, restoreBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, consumedDelBatch.Commit); err != nil {
		return chain.EnrichedBlockPayload{}, err
	}

	ctxOut, err := e.resolveInputs(consumedRefs)
	if err != nil {
		return chain.EnrichedBlockPayload{}, err
	}

	log.Enrich.Debug().Uint64("slot", block.Slot).Msg("rolled back block")
	return chain.EnrichedBlockPayload{Direction: chain.Undo, Block: block, Context: ctxOut}, nil
}

func collectConsumed(block chain.Block) []chain.OutputRef {
	var refs []chain.OutputRef
	for _, tx := range block.Transactions {
		refs = append(refs, tx.Consumes...)
	}
	return refs
}

// resolveInputs is the embarrassingly-parallel lookup step (spec §4.3
// step 5, §9 "worker pool with a fixed degree"): every input is resolved
// against the UTXO index concurrently, then joined into a BlockContext
// before the caller proceeds to the atomic batch write. A missing
// reference is counted but not fatal.
func (e *Enrich) resolveInputs(refs []chain.OutputRef) (*chain.BlockContext, error) {
	ctxOut := chain.NewBlockContext()
	var mu sync.Mutex
	var mismatches int64

	g := new(errgroup.Group)
	g.SetLimit(e.cfg.Parallelism)

	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			raw, err := e.utxo.Get([]byte(ref.Key()))
			if err != nil {
				atomic.AddInt64(&mismatches, 1)
				return nil
			}
			era, out, err := codec.DecodeUTXOValue(raw)
			if err != nil {
				return perr.Decode(err)
			}
			mu.Lock()
			ctxOut.Put(ref, era, out)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if mismatches > 0 {
		log.Enrich.Debug().Int64("mismatches", mismatches).Msg("unresolved inputs (forward references or genesis UTXOs)")
	}
	return ctxOut, nil
}
