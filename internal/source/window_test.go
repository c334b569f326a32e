package source

import (
	"testing"

	"github.com/scrollchain/scrolls/pkg/chain"
)

func TestWindowPopWithDepthHoldsBackMinDepth(t *testing.T) {
	w := newWindow()
	for slot := uint64(1); slot <= 5; slot++ {
		w.rollForward(chain.Point{Slot: slot})
	}
	ready := w.popWithDepth(2)
	if len(ready) != 3 {
		t.Fatalf("expected 3 points ready with minDepth 2 over 5 entries, got %d", len(ready))
	}
	for i, p := range ready {
		if p.Slot != uint64(i+1) {
			t.Fatalf("expected oldest-first order, got slot %d at position %d", p.Slot, i)
		}
	}
	if w.len() != 2 {
		t.Fatalf("expected 2 entries retained, got %d", w.len())
	}
}

func TestWindowRollBackAbsorbsInWindowTarget(t *testing.T) {
	w := newWindow()
	for slot := uint64(1); slot <= 5; slot++ {
		w.rollForward(chain.Point{Slot: slot})
	}
	ok := w.rollBack(chain.Point{Slot: 3})
	if !ok {
		t.Fatalf("expected rollback to slot 3 to be absorbed in-window")
	}
	if w.len() != 3 {
		t.Fatalf("expected window truncated to 3 entries (slots 1-3), got %d", w.len())
	}
}

func TestWindowRollBackFallsThroughWhenTargetNotPresent(t *testing.T) {
	w := newWindow()
	w.rollForward(chain.Point{Slot: 10})
	w.rollForward(chain.Point{Slot: 11})
	if w.rollBack(chain.Point{Slot: 3}) {
		t.Fatalf("expected rollback to an out-of-window point to fall through")
	}
	if w.len() != 2 {
		t.Fatalf("expected window unchanged when rollback falls through, got len %d", w.len())
	}
}
