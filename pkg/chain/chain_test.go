package chain

import "testing"

func TestOutputRefKeyFormat(t *testing.T) {
	ref := OutputRef{TxHash: Hash{0xDE, 0xAD, 0xBE, 0xEF}, Index: 3}
	if got, want := ref.Key(), "deadbeef#3"; got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}
	if ref.String() != ref.Key() {
		t.Fatalf("expected String() to match Key()")
	}
}

func TestOutputRefIsZero(t *testing.T) {
	if !(OutputRef{}).IsZero() {
		t.Fatalf("expected zero-value OutputRef to report IsZero")
	}
	if (OutputRef{TxHash: Hash{0x01}}).IsZero() {
		t.Fatalf("expected a populated TxHash to not report IsZero")
	}
}

func TestPointOrderingAndOrigin(t *testing.T) {
	if !Origin.IsOrigin() {
		t.Fatalf("expected Origin to report IsOrigin")
	}
	p := Point{Slot: 10, Hash: Hash{1}}
	if p.IsOrigin() {
		t.Fatalf("expected a populated point to not report IsOrigin")
	}
	earlier := Point{Slot: 5}
	later := Point{Slot: 10}
	if !earlier.Before(later) {
		t.Fatalf("expected slot 5 to be before slot 10")
	}
	if later.Before(earlier) {
		t.Fatalf("expected slot 10 to not be before slot 5")
	}
}

func TestPointEqual(t *testing.T) {
	a := Point{Slot: 7, Hash: Hash{0x01, 0x02}}
	b := Point{Slot: 7, Hash: Hash{0x01, 0x02}}
	c := Point{Slot: 7, Hash: Hash{0x01, 0x03}}
	if !a.Equal(b) {
		t.Fatalf("expected equal points to compare equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected differing hash to break equality")
	}
}

func TestOutputStakeOrAddressPrefersStakeKey(t *testing.T) {
	withStake := Output{Address: []byte("addr"), StakeKey: []byte("stake")}
	if got := string(withStake.StakeOrAddress()); got != "stake" {
		t.Fatalf("expected stake key preferred, got %q", got)
	}
	withoutStake := Output{Address: []byte("addr")}
	if got := string(withoutStake.StakeOrAddress()); got != "addr" {
		t.Fatalf("expected address fallback, got %q", got)
	}
}

func TestBlockContextPutAndFindUTXO(t *testing.T) {
	ctx := NewBlockContext()
	ref := OutputRef{TxHash: Hash{0xAA}, Index: 1}
	if ctx.Len() != 0 {
		t.Fatalf("expected empty context to have len 0")
	}
	ctx.Put(ref, 4, Output{LovelaceAmount: 42})
	if ctx.Len() != 1 {
		t.Fatalf("expected len 1 after Put, got %d", ctx.Len())
	}
	resolved, ok := ctx.FindUTXO(ref)
	if !ok {
		t.Fatalf("expected ref to resolve")
	}
	if resolved.Output.LovelaceAmount != 42 || resolved.Era != 4 {
		t.Fatalf("unexpected resolved input: %+v", resolved)
	}
	if _, ok := ctx.FindUTXO(OutputRef{TxHash: Hash{0xBB}, Index: 0}); ok {
		t.Fatalf("expected an unresolved ref to miss")
	}
}

func TestDirectionSignAndString(t *testing.T) {
	if Forward.Sign() != 1 {
		t.Fatalf("expected Forward.Sign() == 1")
	}
	if Undo.Sign() != -1 {
		t.Fatalf("expected Undo.Sign() == -1")
	}
	if Forward.String() != "forward" || Undo.String() != "undo" {
		t.Fatalf("unexpected Direction.String(): forward=%q undo=%q", Forward.String(), Undo.String())
	}
}

func TestBlockContextNilIsSafe(t *testing.T) {
	var ctx *BlockContext
	if ctx.Len() != 0 {
		t.Fatalf("expected nil context Len() to return 0")
	}
}
