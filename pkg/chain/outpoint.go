package chain

import "fmt"

// OutputRef identifies one transaction output by the hash of the
// transaction that produced it and its index within that transaction's
// output list. It is the key of the UTXO index.
type OutputRef struct {
	TxHash Hash
	Index  uint32
}

// Key returns the canonical string form "{tx_hash}#{output_index}" used
// as the UTXO-index key on disk.
func (r OutputRef) Key() string {
	return fmt.Sprintf("%s#%d", r.TxHash.String(), r.Index)
}

func (r OutputRef) String() string {
	return r.Key()
}

func (r OutputRef) IsZero() bool {
	return len(r.TxHash) == 0
}
