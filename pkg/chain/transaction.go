package chain

// MintAsset is one asset's minted (positive) or burned (negative)
// quantity within a transaction's mint field.
type MintAsset struct {
	AssetName []byte
	Quantity  int64
}

// Mint groups the minted/burned asset quantities for a single policy.
type Mint struct {
	Policy Hash
	Assets []MintAsset
}

// ProducedOutput pairs an output with its index within the producing
// transaction, which together form the OutputRef a consumer will cite.
type ProducedOutput struct {
	Index  uint32
	Output Output
}

// Transaction is the logical view of one on-chain transaction.
type Transaction struct {
	Hash     Hash
	Consumes []OutputRef
	Produces []ProducedOutput
	Mint     []Mint
	Metadata map[uint64][]byte
}

// OutputRefs returns the OutputRefs this transaction produces, in order.
func (t Transaction) OutputRefs() []OutputRef {
	refs := make([]OutputRef, len(t.Produces))
	for i, p := range t.Produces {
		refs[i] = OutputRef{TxHash: t.Hash, Index: p.Index}
	}
	return refs
}
