package codec

import (
	"fmt"

	"github.com/scrollchain/scrolls/pkg/chain"
)

// utxoValue is the on-disk value shape for the UTXO index and the
// consumed ring (which stores the prior UTXO-index value verbatim): CBOR
// (era:u16, output_bytes:bytes) exactly as spec §6 requires. The produced
// ring does not use this shape; its values are empty.
type utxoValue struct {
	_           struct{} `cbor:",toarray"`
	Era         uint16
	OutputBytes []byte
}

// EncodeUTXOValue encodes an output for storage in the UTXO index or in
// an undo ring's consumed-value slot.
func EncodeUTXOValue(era uint16, out chain.Output) ([]byte, error) {
	body, err := encMode.Marshal(outputToWire(out))
	if err != nil {
		return nil, fmt.Errorf("encode utxo output: %w", err)
	}
	v, err := encMode.Marshal(utxoValue{Era: era, OutputBytes: body})
	if err != nil {
		return nil, fmt.Errorf("encode utxo value: %w", err)
	}
	return v, nil
}

// DecodeUTXOValue reverses EncodeUTXOValue.
func DecodeUTXOValue(raw []byte) (era uint16, out chain.Output, err error) {
	var v utxoValue
	if err = decMode.Unmarshal(raw, &v); err != nil {
		return 0, chain.Output{}, fmt.Errorf("decode utxo value: %w", err)
	}
	var w wireOutput
	if err = decMode.Unmarshal(v.OutputBytes, &w); err != nil {
		return 0, chain.Output{}, fmt.Errorf("decode utxo output: %w", err)
	}
	return v.Era, wireToOutput(w), nil
}
