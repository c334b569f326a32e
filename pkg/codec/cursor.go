package codec

import (
	"fmt"

	"github.com/scrollchain/scrolls/pkg/chain"
)

// cursorValue is the CBOR (slot:u64, hash:bytes) cursor format of spec §6.
type cursorValue struct {
	_    struct{} `cbor:",toarray"`
	Slot uint64
	Hash []byte
}

// EncodeCursor encodes a point for the single-key cursor store.
func EncodeCursor(p chain.Point) ([]byte, error) {
	out, err := encMode.Marshal(cursorValue{Slot: p.Slot, Hash: p.Hash})
	if err != nil {
		return nil, fmt.Errorf("encode cursor: %w", err)
	}
	return out, nil
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(raw []byte) (chain.Point, error) {
	var v cursorValue
	if err := decMode.Unmarshal(raw, &v); err != nil {
		return chain.Point{}, fmt.Errorf("decode cursor: %w", err)
	}
	return chain.Point{Slot: v.Slot, Hash: chain.Hash(v.Hash)}, nil
}
