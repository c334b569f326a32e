package reducer

import (
	"sort"
	"strconv"

	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

// Metadata projects a transaction's metadata map to per-label hash
// fields, generalizing the Rust original's CIP-25-specific asset
// metadata reducer to any metadata label. Undo unsets the whole
// transaction's key rather than replaying per-field removals, since
// metadata has no natural signed delta (spec §5).
type Metadata struct {
	KeyPrefix string
}

// NewMetadata builds the reducer. keyPrefix defaults to "meta".
func NewMetadata(keyPrefix string) *Metadata {
	if keyPrefix == "" {
		keyPrefix = "meta"
	}
	return &Metadata{KeyPrefix: keyPrefix}
}

func (m *Metadata) Name() string { return "metadata" }

func (m *Metadata) Reduce(block chain.Block, _ *chain.BlockContext, dir chain.Direction) []command.Command {
	var cmds []command.Command

	for _, tx := range block.Transactions {
		if len(tx.Metadata) == 0 {
			continue
		}
		key := m.KeyPrefix + "." + tx.Hash.String()

		if dir == chain.Undo {
			cmds = append(cmds, command.UnsetKey(key))
			continue
		}

		labels := make([]uint64, 0, len(tx.Metadata))
		for label := range tx.Metadata {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

		for _, label := range labels {
			field := strconv.FormatUint(label, 10)
			cmds = append(cmds, command.HashSetValue(key, field, tx.Metadata[label]))
		}
	}
	return cmds
}
