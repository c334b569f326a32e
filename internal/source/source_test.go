package source

import (
	"context"
	"testing"

	"github.com/scrollchain/scrolls/internal/blockbuffer"
	"github.com/scrollchain/scrolls/internal/chainclient"
	"github.com/scrollchain/scrolls/internal/storage"
	"github.com/scrollchain/scrolls/pkg/chain"
)

func TestSourceDeliversBlocksOncePastMinDepth(t *testing.T) {
	fake := chainclient.NewFake().
		WithScript(
			chainclient.Response{Kind: chainclient.RollForward, Point: chain.Point{Slot: 1}},
			chainclient.Response{Kind: chainclient.RollForward, Point: chain.Point{Slot: 2}},
			chainclient.Response{Kind: chainclient.RollForward, Point: chain.Point{Slot: 3}},
		).
		WithBlock(1, []byte("b1")).
		WithBlock(2, []byte("b2")).
		WithBlock(3, []byte("b3"))

	buffer := blockbuffer.New(storage.NewMemory(), 100)
	out := make(chan chain.RawBlockPayload, 10)
	src := New(fake, buffer, 1, chainclient.Intersect{Origin: true}, nil, out)

	ctx := context.Background()
	if _, err := src.Bootstrap(ctx, chain.Origin); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// Three pump/drain cycles: minDepth=1 means a point is only released
	// once one newer point exists behind it in the window.
	for i := 0; i < 3; i++ {
		if _, err := src.Work(ctx); err != nil {
			t.Fatalf("work iteration %d: %v", i, err)
		}
	}
	close(out)

	var got []uint64
	for payload := range out {
		got = append(got, payload.Point.Slot)
		if payload.Direction != chain.Forward {
			t.Fatalf("expected forward direction, got %v", payload.Direction)
		}
	}
	want := []uint64{1, 2}
	if len(got) != len(want) {
		t.Fatalf("expected slots %v delivered after 3 iterations, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSourceRollbackWithinWindowIsAbsorbed(t *testing.T) {
	fake := chainclient.NewFake().
		WithScript(
			chainclient.Response{Kind: chainclient.RollForward, Point: chain.Point{Slot: 1}},
			chainclient.Response{Kind: chainclient.RollForward, Point: chain.Point{Slot: 2}},
			chainclient.Response{Kind: chainclient.RollForward, Point: chain.Point{Slot: 3}},
			chainclient.Response{Kind: chainclient.RollBackward, Point: chain.Point{Slot: 2}},
		).
		WithBlock(1, []byte("b1")).
		WithBlock(2, []byte("b2")).
		WithBlock(3, []byte("b3"))

	buffer := blockbuffer.New(storage.NewMemory(), 100)
	out := make(chan chain.RawBlockPayload, 10)
	src := New(fake, buffer, 2, chainclient.Intersect{Origin: true}, nil, out)

	ctx := context.Background()
	if _, err := src.Bootstrap(ctx, chain.Origin); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := src.Work(ctx); err != nil {
			t.Fatalf("work iteration %d: %v", i, err)
		}
	}
	if depth := buffer.RollbackQueueDepth(); depth != 0 {
		t.Fatalf("expected an in-window rollback to never touch the durable queue, got depth %d", depth)
	}
	if got := src.win.len(); got != 1 {
		t.Fatalf("expected window truncated to 1 entry (slot 2) after in-window rollback, got %d", got)
	}
}
