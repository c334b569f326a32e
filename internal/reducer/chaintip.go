package reducer

import (
	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/codec"
	"github.com/scrollchain/scrolls/pkg/command"
)

// ChainTip emits the latest indexed point on every block so a downstream
// consumer has a cheap "what's the latest indexed point" read without
// scanning the cursor store directly. Generalizes the Rust original's
// last_block_parameters reducer, which exposed a richer per-block field
// set (epoch, height, tx count, first/last tx hash); this pipeline's
// Block already carries that shape for anyone who wants it, so the
// reducer itself only needs to publish the point.
type ChainTip struct {
	Key string
}

// NewChainTip builds the reducer. key defaults to "chaintip".
func NewChainTip(key string) *ChainTip {
	if key == "" {
		key = "chaintip"
	}
	return &ChainTip{Key: key}
}

func (c *ChainTip) Name() string { return "chaintip" }

func (c *ChainTip) Reduce(block chain.Block, _ *chain.BlockContext, _ chain.Direction) []command.Command {
	// On Undo the point genuinely regresses to this block, so AnyWriteWins
	// still applies unconditionally in either direction.
	value, err := codec.EncodeCursor(block.Point())
	if err != nil {
		log.Reducer.Warn().Err(err).Msg("chaintip: encode point failed, skipping")
		return nil
	}
	return []command.Command{command.AnyWriteWins(c.Key, value)}
}
