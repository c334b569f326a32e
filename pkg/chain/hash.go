package chain

import "encoding/hex"

// Hash is a chain-agnostic content hash: a block hash, a transaction hash,
// or a policy ID. Lengths vary by chain, so it is a slice rather than a
// fixed array.
type Hash []byte

// HashFromHex decodes a hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return Hash(b), nil
}

func (h Hash) String() string {
	return hex.EncodeToString(h)
}

func (h Hash) Equal(other Hash) bool {
	if len(h) != len(other) {
		return false
	}
	for i := range h {
		if h[i] != other[i] {
			return false
		}
	}
	return true
}
