package source

import "github.com/scrollchain/scrolls/pkg/chain"

// window is the small in-memory rollback buffer of spec §4.1: the most
// recent points seen from the chain client, oldest first. A rollback
// whose target is still in the window is absorbed by truncation; one
// that isn't falls through to the BlockBuffer's rollback queue.
type window struct {
	points []chain.Point
}

func newWindow() *window {
	return &window{}
}

// rollForward appends a newly seen point to the window.
func (w *window) rollForward(p chain.Point) {
	w.points = append(w.points, p)
}

// rollBack truncates the window to target if present and reports
// whether it was handled in-window.
func (w *window) rollBack(target chain.Point) bool {
	for i, p := range w.points {
		if p.Equal(target) {
			w.points = w.points[:i+1]
			return true
		}
	}
	return false
}

// popWithDepth removes and returns, oldest first, every point whose
// distance from the window's newest entry is at least minDepth.
func (w *window) popWithDepth(minDepth int) []chain.Point {
	var ready []chain.Point
	for len(w.points) > minDepth {
		ready = append(ready, w.points[0])
		w.points = w.points[1:]
	}
	return ready
}

func (w *window) len() int {
	return len(w.points)
}
