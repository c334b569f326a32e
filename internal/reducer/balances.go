package reducer

import (
	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/pkg/bech32"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

// lovelaceFingerprint is the hash-counter field for an account's plain
// ADA balance, distinguishing it from any native-asset fingerprint.
const lovelaceFingerprint = "lovelace"

// Balances is the worked-example reducer of spec §4.4: it tracks, per
// account (stake-or-address projection), a signed running balance for
// lovelace and every native asset it has touched.
type Balances struct {
	KeyPrefix string
}

// NewBalances builds the balances reducer. keyPrefix defaults to "bal"
// when empty, matching spec §4.4's "bal." + addr key shape.
func NewBalances(keyPrefix string) *Balances {
	if keyPrefix == "" {
		keyPrefix = "bal"
	}
	return &Balances{KeyPrefix: keyPrefix}
}

func (b *Balances) Name() string { return "balances" }

func (b *Balances) Reduce(block chain.Block, ctx *chain.BlockContext, dir chain.Direction) []command.Command {
	sign := dir.Sign()
	var cmds []command.Command

	for _, tx := range block.Transactions {
		for _, ref := range tx.Consumes {
			resolved, ok := ctx.FindUTXO(ref)
			if !ok {
				continue
			}
			cmds = append(cmds, b.emit(resolved.Output, -sign)...)
		}
		for _, po := range tx.Produces {
			cmds = append(cmds, b.emit(po.Output, sign)...)
		}
	}
	return cmds
}

// emit builds the HashCounter commands for one output, with delta scaled
// by mult (already folded with direction sign and spend-vs-produce
// polarity by the caller).
func (b *Balances) emit(out chain.Output, mult int64) []command.Command {
	acct, ok := accountID(out)
	if !ok {
		return nil
	}
	key := b.KeyPrefix + "." + acct

	cmds := make([]command.Command, 0, 1+len(out.Assets))
	if out.LovelaceAmount > 0 {
		delta := int64(out.LovelaceAmount) * mult
		cmds = append(cmds, command.HashCounter(key, lovelaceFingerprint, delta))
	}
	for _, a := range out.Assets {
		if a.Quantity == 0 {
			continue
		}
		fp, err := bech32.AssetFingerprint(a.Policy, a.AssetName)
		if err != nil {
			log.Reducer.Warn().Err(err).Msg("balances: asset fingerprint failed, skipping")
			continue
		}
		delta := int64(a.Quantity) * mult
		cmds = append(cmds, command.HashCounter(key, fp, delta))
	}
	return cmds
}
