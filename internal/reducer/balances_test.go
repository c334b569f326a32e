package reducer

import (
	"testing"

	"github.com/scrollchain/scrolls/pkg/bech32"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

func addr(b byte) []byte { return []byte{b, b, b} }

func TestBalancesForwardEmitsPositiveDelta(t *testing.T) {
	b := NewBalances("")
	block := chain.Block{
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{1},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: addr(9), LovelaceAmount: 1000}},
				},
			},
		},
	}
	cmds := b.Reduce(block, chain.NewBlockContext(), chain.Forward)
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	if cmds[0].Kind != command.KindHashCounter || cmds[0].Delta != 1000 {
		t.Fatalf("expected HashCounter delta 1000, got %+v", cmds[0])
	}
}

func TestBalancesUndoIsExactInverse(t *testing.T) {
	b := NewBalances("")
	block := chain.Block{
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{1},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: addr(9), LovelaceAmount: 1000}},
				},
			},
		},
	}
	fwd := b.Reduce(block, chain.NewBlockContext(), chain.Forward)
	undo := b.Reduce(block, chain.NewBlockContext(), chain.Undo)
	if len(fwd) != len(undo) {
		t.Fatalf("forward/undo command count mismatch: %d vs %d", len(fwd), len(undo))
	}
	for i := range fwd {
		if fwd[i].Key != undo[i].Key || fwd[i].Field != undo[i].Field {
			t.Fatalf("key/field mismatch at %d: %+v vs %+v", i, fwd[i], undo[i])
		}
		if fwd[i].Delta != -undo[i].Delta {
			t.Fatalf("delta not sign-flipped at %d: %d vs %d", i, fwd[i].Delta, undo[i].Delta)
		}
	}
}

func TestBalancesConsumedOutputFlipsSign(t *testing.T) {
	b := NewBalances("")
	ref := chain.OutputRef{TxHash: chain.Hash{2}, Index: 0}
	ctx := chain.NewBlockContext()
	ctx.Put(ref, 0, chain.Output{Address: addr(5), LovelaceAmount: 500})

	block := chain.Block{
		Transactions: []chain.Transaction{
			{Hash: chain.Hash{3}, Consumes: []chain.OutputRef{ref}},
		},
	}
	cmds := b.Reduce(block, ctx, chain.Forward)
	if len(cmds) != 1 || cmds[0].Delta != -500 {
		t.Fatalf("expected a -500 delta for a consumed output, got %+v", cmds)
	}
}

func TestBalancesPrefersStakeKey(t *testing.T) {
	b := NewBalances("bal")
	block := chain.Block{
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{1},
				Produces: []chain.ProducedOutput{
					{Index: 0, Output: chain.Output{Address: addr(1), StakeKey: addr(2), LovelaceAmount: 10}},
				},
			},
		},
	}
	cmds := b.Reduce(block, chain.NewBlockContext(), chain.Forward)
	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(cmds))
	}
	stakeBech32, err := bech32.Encode("stake", addr(2))
	if err != nil {
		t.Fatalf("encode stake bech32: %v", err)
	}
	wantKey := "bal." + stakeBech32
	if cmds[0].Key != wantKey {
		t.Fatalf("expected key %q (stake key projection), got %q", wantKey, cmds[0].Key)
	}
}
