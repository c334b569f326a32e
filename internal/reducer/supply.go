package reducer

import (
	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/pkg/bech32"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

// Supply tallies total minted/burned quantity per asset via a PNCounter.
// Per the Open Question resolved in SPEC_FULL.md §6, supply does NOT
// revert on Undo: mint/burn history is treated as a monotonic ledger
// fact worth preserving across the shallow reorgs this indexer replays,
// unlike balances which does flip sign.
type Supply struct {
	KeyPrefix string
}

// NewSupply builds the reducer. keyPrefix defaults to "supply".
func NewSupply(keyPrefix string) *Supply {
	if keyPrefix == "" {
		keyPrefix = "supply"
	}
	return &Supply{KeyPrefix: keyPrefix}
}

func (s *Supply) Name() string { return "supply" }

func (s *Supply) Reduce(block chain.Block, _ *chain.BlockContext, dir chain.Direction) []command.Command {
	if dir == chain.Undo {
		return nil
	}

	var cmds []command.Command
	for _, tx := range block.Transactions {
		for _, mint := range tx.Mint {
			for _, asset := range mint.Assets {
				if asset.Quantity == 0 {
					continue
				}
				fp, err := bech32.AssetFingerprint(mint.Policy, asset.AssetName)
				if err != nil {
					log.Reducer.Warn().Err(err).Msg("supply: asset fingerprint failed, skipping")
					continue
				}
				key := s.KeyPrefix + "." + fp
				cmds = append(cmds, command.PNCounter(key, asset.Quantity))
			}
		}
	}
	return cmds
}
