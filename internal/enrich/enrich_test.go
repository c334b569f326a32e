package enrich

import (
	"testing"

	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/internal/storage"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/codec"
)

func newTestEnrich() *Enrich {
	return New(storage.NewMemory(), storage.NewMemory(), storage.NewMemory(), Config{
		RingCap:      1000,
		DecodePolicy: perr.PolicyFail,
		Parallelism:  4,
	})
}

func blockPayload(t *testing.T, b chain.Block, dir chain.Direction) chain.RawBlockPayload {
	t.Helper()
	raw, err := codec.EncodeBlock(b)
	if err != nil {
		t.Fatalf("encode block: %v", err)
	}
	if dir == chain.Undo {
		return chain.RollBack(b.Point(), raw)
	}
	return chain.RollForward(b.Point(), raw)
}

func TestEnrichResolvesConsumedInputFromPriorBlock(t *testing.T) {
	e := newTestEnrich()

	genesis := chain.Block{
		Slot: 1,
		Hash: chain.Hash{1},
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{0xA},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: []byte("addr1"), LovelaceAmount: 500}},
				},
			},
		},
	}
	if _, err := e.Process(blockPayload(t, genesis, chain.Forward)); err != nil {
		t.Fatalf("process genesis: %v", err)
	}

	spend := chain.Block{
		Slot: 2,
		Hash: chain.Hash{2},
		Transactions: []chain.Transaction{
			{
				Hash:     chain.Hash{0xB},
				Consumes: []chain.OutputRef{{TxHash: chain.Hash{0xA}, Index: 0}},
			},
		},
	}
	out, err := e.Process(blockPayload(t, spend, chain.Forward))
	if err != nil {
		t.Fatalf("process spend: %v", err)
	}
	resolved, ok := out.Context.FindUTXO(chain.OutputRef{TxHash: chain.Hash{0xA}, Index: 0})
	if !ok {
		t.Fatalf("expected the spent output to resolve")
	}
	if resolved.Output.LovelaceAmount != 500 {
		t.Fatalf("expected resolved lovelace 500, got %d", resolved.Output.LovelaceAmount)
	}
}

func TestEnrichRollBackReversesUTXOIndex(t *testing.T) {
	e := newTestEnrich()

	b1 := chain.Block{
		Slot: 1,
		Hash: chain.Hash{1},
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{0xA},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: []byte("addr1"), LovelaceAmount: 500}},
				},
			},
		},
	}
	if _, err := e.Process(blockPayload(t, b1, chain.Forward)); err != nil {
		t.Fatalf("forward: %v", err)
	}
	ref := chain.OutputRef{TxHash: chain.Hash{0xA}, Index: 0}
	if _, err := e.utxo.Get([]byte(ref.Key())); err != nil {
		t.Fatalf("expected produced output present in UTXO index: %v", err)
	}

	if _, err := e.Process(blockPayload(t, b1, chain.Undo)); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if has, _ := e.utxo.Has([]byte(ref.Key())); has {
		t.Fatalf("expected produced output removed from UTXO index after rollback")
	}
}

func TestEnrichRollBackRestoresConsumedOutput(t *testing.T) {
	e := newTestEnrich()

	genesis := chain.Block{
		Slot: 1,
		Hash: chain.Hash{1},
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{0xA},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: []byte("addr1"), LovelaceAmount: 500}},
				},
			},
		},
	}
	if _, err := e.Process(blockPayload(t, genesis, chain.Forward)); err != nil {
		t.Fatalf("genesis forward: %v", err)
	}

	spend := chain.Block{
		Slot: 2,
		Hash: chain.Hash{2},
		Transactions: []chain.Transaction{
			{Hash: chain.Hash{0xB}, Consumes: []chain.OutputRef{{TxHash: chain.Hash{0xA}, Index: 0}}},
		},
	}
	if _, err := e.Process(blockPayload(t, spend, chain.Forward)); err != nil {
		t.Fatalf("spend forward: %v", err)
	}
	ref := chain.OutputRef{TxHash: chain.Hash{0xA}, Index: 0}
	if has, _ := e.utxo.Has([]byte(ref.Key())); has {
		t.Fatalf("expected the consumed output removed from the index after the spend")
	}

	if _, err := e.Process(blockPayload(t, spend, chain.Undo)); err != nil {
		t.Fatalf("spend undo: %v", err)
	}
	if has, _ := e.utxo.Has([]byte(ref.Key())); !has {
		t.Fatalf("expected the consumed output restored to the index after undoing the spend")
	}
	raw, err := e.utxo.Get([]byte(ref.Key()))
	if err != nil {
		t.Fatalf("get restored: %v", err)
	}
	_, out, err := codec.DecodeUTXOValue(raw)
	if err != nil {
		t.Fatalf("decode restored: %v", err)
	}
	if out.LovelaceAmount != 500 {
		t.Fatalf("expected restored output to keep its original value, got %d", out.LovelaceAmount)
	}
}

func TestEnrichDecodePolicySkipReturnsErrSkippedBlock(t *testing.T) {
	e := New(storage.NewMemory(), storage.NewMemory(), storage.NewMemory(), Config{
		RingCap:      1000,
		DecodePolicy: perr.PolicySkip,
		Parallelism:  4,
	})
	bad := chain.RawBlockPayload{Direction: chain.Forward, Point: chain.Point{Slot: 1}, Raw: []byte{0xFF, 0xFF, 0xFF}}
	_, err := e.Process(bad)
	if err != ErrSkippedBlock {
		t.Fatalf("expected ErrSkippedBlock, got %v", err)
	}
}

// TestEnrichProducedRingCountsEveryEntryInABlock guards against the
// ring's seq/count bookkeeping collapsing multiple same-block Put calls
// into one: a single block producing several outputs must grow the
// ring's Len() by that many entries, not by one.
func TestEnrichProducedRingCountsEveryEntryInABlock(t *testing.T) {
	e := newTestEnrich()
	b := chain.Block{
		Slot: 1,
		Hash: chain.Hash{1},
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{0xA},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: []byte("addr"), LovelaceAmount: 1}},
					{Index: 1, Output: chain.Output{Address: []byte("addr"), LovelaceAmount: 2}},
					{Index: 2, Output: chain.Output{Address: []byte("addr"), LovelaceAmount: 3}},
				},
			},
		},
	}
	if _, err := e.Process(blockPayload(t, b, chain.Forward)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := e.produced.Len(); got != 3 {
		t.Fatalf("expected produced ring len 3 after one block with 3 outputs, got %d", got)
	}
	for i := uint32(0); i < 3; i++ {
		ref := chain.OutputRef{TxHash: chain.Hash{0xA}, Index: i}
		if _, ok := e.produced.Get(ref.Key()); !ok {
			t.Fatalf("expected ref %s present in the produced ring", ref.Key())
		}
	}
}

// TestEnrichProducedRingPrunesToCap exercises the produced ring's cap
// eviction (spec §4.3 "ring pruning") across many blocks, each
// contributing one entry, and checks the ring settles at exactly cap
// entries with only the newest refs resolvable — guarding against the
// ring's seq/count bookkeeping collapsing to one entry per block.
func TestEnrichProducedRingPrunesToCap(t *testing.T) {
	const (
		ringCap   = 5
		numBlocks = 12
	)
	e := New(storage.NewMemory(), storage.NewMemory(), storage.NewMemory(), Config{
		RingCap:      ringCap,
		DecodePolicy: perr.PolicyFail,
		Parallelism:  4,
	})

	refs := make([]chain.OutputRef, 0, numBlocks)
	for i := uint64(1); i <= numBlocks; i++ {
		b := chain.Block{
			Slot: i,
			Hash: chain.Hash{byte(i)},
			Transactions: []chain.Transaction{
				{
					Hash: chain.Hash{byte(0x80 + i)},
					Produces: []chain.ProducedOutput{
						{Index: 0, Output: chain.Output{Address: []byte("addr"), LovelaceAmount: i}},
					},
				},
			},
		}
		if _, err := e.Process(blockPayload(t, b, chain.Forward)); err != nil {
			t.Fatalf("process block %d: %v", i, err)
		}
		refs = append(refs, chain.OutputRef{TxHash: chain.Hash{byte(0x80 + i)}, Index: 0})
	}

	if got := e.produced.Len(); got != ringCap {
		t.Fatalf("expected produced ring to settle at cap %d entries, got %d", ringCap, got)
	}
	for i, ref := range refs {
		_, ok := e.produced.Get(ref.Key())
		wantPresent := i >= numBlocks-ringCap
		if ok != wantPresent {
			t.Fatalf("ref for block %d: expected present=%v, got %v", i+1, wantPresent, ok)
		}
	}
}

func TestEnrichDecodePolicyFailReturnsDecodeError(t *testing.T) {
	e := newTestEnrich()
	bad := chain.RawBlockPayload{Direction: chain.Forward, Point: chain.Point{Slot: 1}, Raw: []byte{0xFF, 0xFF, 0xFF}}
	_, err := e.Process(bad)
	if !perr.Is(err, perr.KindDecode) {
		t.Fatalf("expected a decode-kind error, got %v", err)
	}
}
