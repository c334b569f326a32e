package bech32

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

const assetHRP = "asset"

// AssetFingerprint computes the canonical asset fingerprint: Blake2b-160
// of policy||assetName, bech32-encoded with HRP "asset" (spec §4.4,
// grounded on original_source/src/reducers/multi_asset_balances.rs's
// asset_fingerprint).
func AssetFingerprint(policy, assetName []byte) (string, error) {
	h, err := blake2b.New(20, nil)
	if err != nil {
		return "", fmt.Errorf("asset fingerprint: new hasher: %w", err)
	}
	h.Write(policy)
	h.Write(assetName)
	sum := h.Sum(nil)

	fp, err := Encode(assetHRP, sum)
	if err != nil {
		return "", fmt.Errorf("asset fingerprint: %w", err)
	}
	return fp, nil
}
