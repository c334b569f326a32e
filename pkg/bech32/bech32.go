// Package bech32 wraps github.com/decred/dcrd/bech32 for the two
// encodings this pipeline needs: stake-or-address projection and asset
// fingerprints. The teacher's own pkg/types/bech32.go hand-rolls BIP-173
// bech32 for its own fixed-length, fixed-HRP address case; this package
// instead uses the pack's dedicated bech32 codec because reducers need
// to encode arbitrary-length payloads (20-byte fingerprints, variable
// stake/address bytes) under more than one HRP.
package bech32

import (
	"fmt"

	dcrbech32 "github.com/decred/dcrd/bech32"
)

// Encode bech32-encodes data under the given human-readable part.
func Encode(hrp string, data []byte) (string, error) {
	converted, err := dcrbech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("bech32 convert bits: %w", err)
	}
	out, err := dcrbech32.Encode(hrp, converted)
	if err != nil {
		return "", fmt.Errorf("bech32 encode: %w", err)
	}
	return out, nil
}

// Decode reverses Encode, returning the HRP and original payload bytes.
func Decode(s string) (hrp string, data []byte, err error) {
	hrp, fiveBit, err := dcrbech32.Decode(s)
	if err != nil {
		return "", nil, fmt.Errorf("bech32 decode: %w", err)
	}
	data, err = dcrbech32.ConvertBits(fiveBit, 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("bech32 convert bits: %w", err)
	}
	return hrp, data, nil
}
