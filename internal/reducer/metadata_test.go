package reducer

import (
	"testing"

	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

func TestMetadataForwardEmitsOnePerLabel(t *testing.T) {
	m := NewMetadata("")
	block := chain.Block{
		Transactions: []chain.Transaction{
			{
				Hash: chain.Hash{1},
				Metadata: map[uint64][]byte{
					674: []byte("hello"),
					721: []byte("world"),
				},
			},
		},
	}
	cmds := m.Reduce(block, nil, chain.Forward)
	if len(cmds) != 2 {
		t.Fatalf("expected 2 HashSetValue commands, got %d", len(cmds))
	}
	for _, c := range cmds {
		if c.Kind != command.KindHashSetValue {
			t.Fatalf("expected HashSetValue, got %v", c.Kind)
		}
	}
}

func TestMetadataUndoUnsetsWholeKey(t *testing.T) {
	m := NewMetadata("")
	block := chain.Block{
		Transactions: []chain.Transaction{
			{Hash: chain.Hash{1}, Metadata: map[uint64][]byte{674: []byte("x")}},
		},
	}
	cmds := m.Reduce(block, nil, chain.Undo)
	if len(cmds) != 1 || cmds[0].Kind != command.KindUnsetKey {
		t.Fatalf("expected a single UnsetKey on undo, got %+v", cmds)
	}
}

func TestMetadataSkipsTransactionsWithoutMetadata(t *testing.T) {
	m := NewMetadata("")
	block := chain.Block{Transactions: []chain.Transaction{{Hash: chain.Hash{1}}}}
	if cmds := m.Reduce(block, nil, chain.Forward); len(cmds) != 0 {
		t.Fatalf("expected no commands for a tx without metadata, got %+v", cmds)
	}
}
