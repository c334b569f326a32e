// Package chain holds the logical chain data model: points, blocks,
// transactions and outputs. It has no knowledge of wire encoding or
// storage — those live in pkg/codec and internal/storage respectively.
package chain

import "fmt"

// Point identifies one position on the chain by slot and block hash.
// The zero value is Origin, the position before the first block.
type Point struct {
	Slot uint64
	Hash Hash
}

// Origin is the point preceding the first block of the chain.
var Origin = Point{}

// IsOrigin reports whether p is the Origin point.
func (p Point) IsOrigin() bool {
	return p.Slot == 0 && len(p.Hash) == 0
}

func (p Point) String() string {
	if p.IsOrigin() {
		return "origin"
	}
	return fmt.Sprintf("%d@%s", p.Slot, p.Hash)
}

// Before reports whether p is strictly earlier than other by slot.
func (p Point) Before(other Point) bool {
	return p.Slot < other.Slot
}

// Equal reports whether p and other name the same slot and hash.
func (p Point) Equal(other Point) bool {
	return p.Slot == other.Slot && p.Hash.Equal(other.Hash)
}
