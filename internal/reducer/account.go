package reducer

import (
	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/pkg/bech32"
	"github.com/scrollchain/scrolls/pkg/chain"
)

const (
	stakeHRP   = "stake"
	addressHRP = "addr"
)

// accountID renders an output's stake-or-address projection as bech32:
// the stake component under HRP "stake" when the output carries one,
// otherwise the raw address under HRP "addr" (spec §4.4's "sole
// normalisation rule").
func accountID(out chain.Output) (string, bool) {
	if len(out.StakeKey) > 0 {
		enc, err := bech32.Encode(stakeHRP, out.StakeKey)
		if err != nil {
			log.Reducer.Warn().Err(err).Msg("account: stake key bech32 encode failed, skipping")
			return "", false
		}
		return enc, true
	}
	if len(out.Address) == 0 {
		return "", false
	}
	enc, err := bech32.Encode(addressHRP, out.Address)
	if err != nil {
		log.Reducer.Warn().Err(err).Msg("account: address bech32 encode failed, skipping")
		return "", false
	}
	return enc, true
}
