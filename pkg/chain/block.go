package chain

// Block is the logical, decoded view of one RawBlock.
type Block struct {
	Slot         uint64
	Number       uint64
	Hash         Hash
	Era          uint16
	Transactions []Transaction
}

// Point returns the (slot, hash) pair identifying this block.
func (b Block) Point() Point {
	return Point{Slot: b.Slot, Hash: b.Hash}
}
