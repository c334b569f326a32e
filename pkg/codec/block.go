package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/scrollchain/scrolls/pkg/chain"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: build cbor enc mode: %v", err))
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("codec: build cbor dec mode: %v", err))
	}
}

// EncodeBlock produces the canonical RawBlock bytes for b.
func EncodeBlock(b chain.Block) ([]byte, error) {
	out, err := encMode.Marshal(blockToWire(b))
	if err != nil {
		return nil, fmt.Errorf("encode block: %w", err)
	}
	return out, nil
}

// DecodeBlock is the only operation the core requires on a RawBlock:
// turning it back into the logical Block view.
func DecodeBlock(raw []byte) (chain.Block, error) {
	var w wireBlock
	if err := decMode.Unmarshal(raw, &w); err != nil {
		return chain.Block{}, fmt.Errorf("decode block: %w", err)
	}
	return wireToBlock(w), nil
}
