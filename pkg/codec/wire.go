// Package codec handles the canonical CBOR encoding this pipeline uses
// for RawBlock bytes, UTXO-index values, and the persisted cursor. The
// spec requires only that decode(encode(x)) == x; there is no external
// chain's wire format to match, so the wire shapes here are this
// pipeline's own, chosen to encode compactly via fxamacker/cbor's
// array-tuple struct mode (the same "(era, body)" tuple shape the
// original Rust implementation used for its UTXO values).
package codec

import "github.com/scrollchain/scrolls/pkg/chain"

type wireOutputRef struct {
	_      struct{} `cbor:",toarray"`
	TxHash []byte
	Index  uint32
}

type wireAssetAmount struct {
	_         struct{} `cbor:",toarray"`
	Policy    []byte
	AssetName []byte
	Quantity  uint64
}

type wireOutput struct {
	_        struct{} `cbor:",toarray"`
	Address  []byte
	StakeKey []byte
	Lovelace uint64
	Assets   []wireAssetAmount
	Raw      []byte
	Era      uint16
}

type wireMintAsset struct {
	_         struct{} `cbor:",toarray"`
	AssetName []byte
	Quantity  int64
}

type wireMint struct {
	_      struct{} `cbor:",toarray"`
	Policy []byte
	Assets []wireMintAsset
}

type wireProducedOutput struct {
	_      struct{} `cbor:",toarray"`
	Index  uint32
	Output wireOutput
}

type wireTransaction struct {
	_        struct{} `cbor:",toarray"`
	Hash     []byte
	Consumes []wireOutputRef
	Produces []wireProducedOutput
	Mint     []wireMint
	Metadata map[uint64][]byte
}

type wireBlock struct {
	_            struct{} `cbor:",toarray"`
	Slot         uint64
	Number       uint64
	Hash         []byte
	Era          uint16
	Transactions []wireTransaction
}

func outputToWire(o chain.Output) wireOutput {
	assets := make([]wireAssetAmount, len(o.Assets))
	for i, a := range o.Assets {
		assets[i] = wireAssetAmount{Policy: a.Policy, AssetName: a.AssetName, Quantity: a.Quantity}
	}
	return wireOutput{
		Address:  o.Address,
		StakeKey: o.StakeKey,
		Lovelace: o.LovelaceAmount,
		Assets:   assets,
		Raw:      o.Raw,
		Era:      o.Era,
	}
}

func wireToOutput(w wireOutput) chain.Output {
	assets := make([]chain.AssetAmount, len(w.Assets))
	for i, a := range w.Assets {
		assets[i] = chain.AssetAmount{Policy: chain.Hash(a.Policy), AssetName: a.AssetName, Quantity: a.Quantity}
	}
	return chain.Output{
		Address:        w.Address,
		StakeKey:       w.StakeKey,
		LovelaceAmount: w.Lovelace,
		Assets:         assets,
		Raw:            w.Raw,
		Era:            w.Era,
	}
}

func outputRefToWire(r chain.OutputRef) wireOutputRef {
	return wireOutputRef{TxHash: r.TxHash, Index: r.Index}
}

func wireToOutputRef(w wireOutputRef) chain.OutputRef {
	return chain.OutputRef{TxHash: chain.Hash(w.TxHash), Index: w.Index}
}

func txToWire(t chain.Transaction) wireTransaction {
	consumes := make([]wireOutputRef, len(t.Consumes))
	for i, r := range t.Consumes {
		consumes[i] = outputRefToWire(r)
	}
	produces := make([]wireProducedOutput, len(t.Produces))
	for i, p := range t.Produces {
		produces[i] = wireProducedOutput{Index: p.Index, Output: outputToWire(p.Output)}
	}
	mints := make([]wireMint, len(t.Mint))
	for i, m := range t.Mint {
		assets := make([]wireMintAsset, len(m.Assets))
		for j, a := range m.Assets {
			assets[j] = wireMintAsset{AssetName: a.AssetName, Quantity: a.Quantity}
		}
		mints[i] = wireMint{Policy: m.Policy, Assets: assets}
	}
	return wireTransaction{
		Hash:     t.Hash,
		Consumes: consumes,
		Produces: produces,
		Mint:     mints,
		Metadata: t.Metadata,
	}
}

func wireToTx(w wireTransaction) chain.Transaction {
	consumes := make([]chain.OutputRef, len(w.Consumes))
	for i, r := range w.Consumes {
		consumes[i] = wireToOutputRef(r)
	}
	produces := make([]chain.ProducedOutput, len(w.Produces))
	for i, p := range w.Produces {
		produces[i] = chain.ProducedOutput{Index: p.Index, Output: wireToOutput(p.Output)}
	}
	mints := make([]chain.Mint, len(w.Mint))
	for i, m := range w.Mint {
		assets := make([]chain.MintAsset, len(m.Assets))
		for j, a := range m.Assets {
			assets[j] = chain.MintAsset{AssetName: a.AssetName, Quantity: a.Quantity}
		}
		mints[i] = chain.Mint{Policy: chain.Hash(m.Policy), Assets: assets}
	}
	return chain.Transaction{
		Hash:     chain.Hash(w.Hash),
		Consumes: consumes,
		Produces: produces,
		Mint:     mints,
		Metadata: w.Metadata,
	}
}

func blockToWire(b chain.Block) wireBlock {
	txs := make([]wireTransaction, len(b.Transactions))
	for i, t := range b.Transactions {
		txs[i] = txToWire(t)
	}
	return wireBlock{
		Slot:         b.Slot,
		Number:       b.Number,
		Hash:         b.Hash,
		Era:          b.Era,
		Transactions: txs,
	}
}

func wireToBlock(w wireBlock) chain.Block {
	txs := make([]chain.Transaction, len(w.Transactions))
	for i, t := range w.Transactions {
		txs[i] = wireToTx(t)
	}
	return chain.Block{
		Slot:         w.Slot,
		Number:       w.Number,
		Hash:         chain.Hash(w.Hash),
		Era:          w.Era,
		Transactions: txs,
	}
}
