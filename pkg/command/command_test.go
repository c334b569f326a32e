package command

import (
	"bytes"
	"testing"

	"github.com/scrollchain/scrolls/pkg/chain"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindBlockStarting: "BlockStarting",
		KindHashCounter:   "HashCounter",
		KindUnsetKey:      "UnsetKey",
		Kind(999):         "Unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestConstructorsPopulateExpectedFields(t *testing.T) {
	p := chain.Point{Slot: 9}
	if c := BlockStarting(p); c.Kind != KindBlockStarting || !c.Point.Equal(p) {
		t.Fatalf("BlockStarting: unexpected command %+v", c)
	}
	if c := BlockFinished(p); c.Kind != KindBlockFinished || !c.Point.Equal(p) {
		t.Fatalf("BlockFinished: unexpected command %+v", c)
	}
	if c := AnyWriteWins("k", []byte("v")); c.Kind != KindAnyWriteWins || c.Key != "k" || !bytes.Equal(c.Value, []byte("v")) {
		t.Fatalf("AnyWriteWins: unexpected command %+v", c)
	}
	if c := LastWriteWins("k", []byte("v"), 42); c.Kind != KindLastWriteWins || c.Timestamp != 42 {
		t.Fatalf("LastWriteWins: unexpected command %+v", c)
	}
	if c := SetAdd("k", "m"); c.Kind != KindSetAdd || c.Key != "k" || c.Field != "m" {
		t.Fatalf("SetAdd: unexpected command %+v", c)
	}
	if c := SetRemove("k", "m"); c.Kind != KindSetRemove || c.Field != "m" {
		t.Fatalf("SetRemove: unexpected command %+v", c)
	}
	if c := SortedSetAdd("k", "m", -5); c.Kind != KindSortedSetAdd || c.Delta != -5 {
		t.Fatalf("SortedSetAdd: unexpected command %+v", c)
	}
	if c := HashSetValue("k", "f", []byte("v")); c.Kind != KindHashSetValue || c.Field != "f" {
		t.Fatalf("HashSetValue: unexpected command %+v", c)
	}
	if c := HashSetMulti("k", []string{"f1", "f2"}, [][]byte{[]byte("a"), []byte("b")}); c.Kind != KindHashSetMulti || len(c.Fields) != 2 || len(c.Values) != 2 {
		t.Fatalf("HashSetMulti: unexpected command %+v", c)
	}
	if c := HashCounter("k", "f", 3); c.Kind != KindHashCounter || c.Delta != 3 {
		t.Fatalf("HashCounter: unexpected command %+v", c)
	}
	if c := PNCounter("k", -7); c.Kind != KindPNCounter || c.Delta != -7 {
		t.Fatalf("PNCounter: unexpected command %+v", c)
	}
	if c := UnsetKey("k"); c.Kind != KindUnsetKey || c.Key != "k" {
		t.Fatalf("UnsetKey: unexpected command %+v", c)
	}
}
