package chain

// RawBlockPayload is what the Source stage emits: a block still in its
// wire encoding, tagged with the direction it should be applied in.
type RawBlockPayload struct {
	Direction Direction
	Point     Point
	Raw       []byte
}

// RollForward builds a forward RawBlockPayload.
func RollForward(p Point, raw []byte) RawBlockPayload {
	return RawBlockPayload{Direction: Forward, Point: p, Raw: raw}
}

// RollBack builds an undo RawBlockPayload.
func RollBack(p Point, raw []byte) RawBlockPayload {
	return RawBlockPayload{Direction: Undo, Point: p, Raw: raw}
}

// EnrichedBlockPayload is what the Enrich stage emits: the decoded block
// plus the resolved-input context, carrying forward the same direction
// as the RawBlockPayload it was derived from.
type EnrichedBlockPayload struct {
	Direction Direction
	Block     Block
	Context   *BlockContext
}
