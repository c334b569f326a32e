package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/scrollchain/scrolls/internal/blockbuffer"
	"github.com/scrollchain/scrolls/internal/chainclient"
	"github.com/scrollchain/scrolls/internal/enrich"
	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/internal/reducer"
	"github.com/scrollchain/scrolls/internal/sink"
	"github.com/scrollchain/scrolls/internal/storage"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/codec"
)

// TestPipelineDeliversSingleBlockEndToEnd runs the full Source -> Enrich
// -> Reducer -> Sink graph over a one-block fake chain and checks the
// chaintip reducer's AnyWriteWins command lands in the sink and the
// cursor advances past the block once BlockFinished commits.
func TestPipelineDeliversSingleBlockEndToEnd(t *testing.T) {
	block := chain.Block{
		Slot: 1,
		Hash: chain.Hash{0x01},
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{0xA},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: []byte("addr1"), LovelaceAmount: 500}},
				},
			},
		},
	}
	raw, err := codec.EncodeBlock(block)
	if err != nil {
		t.Fatalf("encode block: %v", err)
	}

	fake := chainclient.NewFake().
		WithScript(chainclient.Response{Kind: chainclient.RollForward, Point: block.Point()}).
		WithBlock(1, raw)

	buffer := blockbuffer.New(storage.NewMemory(), 100)
	enr := enrich.New(storage.NewMemory(), storage.NewMemory(), storage.NewMemory(), enrich.Config{
		RingCap:      1000,
		DecodePolicy: perr.PolicyFail,
		Parallelism:  2,
	})
	registry := reducer.NewRegistry(reducer.NewChainTip("chaintip"))
	kv := sink.New(storage.NewMemory())

	finalize := func(p chain.Point) bool { return p.Slot >= 1 }

	p := New(fake, buffer, 0, chainclient.Intersect{Origin: true}, finalize, enr, registry, kv, Config{QueueCapacity: 4})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.Run(ctx); err != nil {
		t.Fatalf("pipeline run: %v", err)
	}

	cursor, err := kv.Cursor()
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if !cursor.Equal(block.Point()) {
		t.Fatalf("expected cursor to advance to %v, got %v", block.Point(), cursor)
	}
}
