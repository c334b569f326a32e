package reducer

import (
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

// UTXOByAddress indexes live UTXOs per account as a set, so a downstream
// consumer can answer "what does this address own" without scanning.
type UTXOByAddress struct {
	KeyPrefix string
}

// NewUTXOByAddress builds the reducer. keyPrefix defaults to "utxo".
func NewUTXOByAddress(keyPrefix string) *UTXOByAddress {
	if keyPrefix == "" {
		keyPrefix = "utxo"
	}
	return &UTXOByAddress{KeyPrefix: keyPrefix}
}

func (u *UTXOByAddress) Name() string { return "utxobyaddress" }

func (u *UTXOByAddress) Reduce(block chain.Block, ctx *chain.BlockContext, dir chain.Direction) []command.Command {
	var cmds []command.Command

	addAddr, removeAddr := command.SetAdd, command.SetRemove
	if dir == chain.Undo {
		addAddr, removeAddr = command.SetRemove, command.SetAdd
	}

	for _, tx := range block.Transactions {
		for _, ref := range tx.Consumes {
			resolved, ok := ctx.FindUTXO(ref)
			if !ok {
				continue
			}
			acct, ok := accountID(resolved.Output)
			if !ok {
				continue
			}
			key := u.KeyPrefix + "." + acct
			cmds = append(cmds, removeAddr(key, ref.Key()))
		}
		for _, po := range tx.Produces {
			acct, ok := accountID(po.Output)
			if !ok {
				continue
			}
			ref := chain.OutputRef{TxHash: tx.Hash, Index: po.Index}
			key := u.KeyPrefix + "." + acct
			cmds = append(cmds, addAddr(key, ref.Key()))
		}
	}
	return cmds
}
