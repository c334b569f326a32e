package chain

// AssetAmount is one native-asset quantity held by an output.
type AssetAmount struct {
	Policy    Hash
	AssetName []byte
	Quantity  uint64
}

// Output is one transaction output — a potential UTXO.
//
// StakeKey is the delegation/stake component of the address when the
// address carries one; reducers project it as the canonical account
// identifier in preference to the payment address itself (see the
// stake-or-address rule on the balances reducer). It is nil for
// addresses with no delegation part.
type Output struct {
	Address        []byte
	StakeKey       []byte
	LovelaceAmount uint64
	Assets         []AssetAmount
	Raw            []byte
	Era            uint16
}

// StakeOrAddress returns the canonical account identifier for this
// output: its stake key when present, otherwise its raw address.
func (o Output) StakeOrAddress() []byte {
	if len(o.StakeKey) > 0 {
		return o.StakeKey
	}
	return o.Address
}
