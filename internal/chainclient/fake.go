package chainclient

import (
	"context"
	"fmt"

	"github.com/scrollchain/scrolls/pkg/chain"
)

// Fake is an in-memory Client standing in for the out-of-scope real
// transport. Tests script a sequence of Responses and a table of raw
// block bytes keyed by slot; Fake plays the script back verbatim.
type Fake struct {
	Script    []Response
	Blocks    map[uint64][]byte
	Intersects []chain.Point

	pos int
}

// NewFake returns an empty Fake ready to be scripted.
func NewFake() *Fake {
	return &Fake{Blocks: make(map[uint64][]byte)}
}

// WithScript appends responses to play back in order.
func (f *Fake) WithScript(responses ...Response) *Fake {
	f.Script = append(f.Script, responses...)
	return f
}

// WithBlock registers the raw bytes FetchBlock should return for slot.
func (f *Fake) WithBlock(slot uint64, raw []byte) *Fake {
	f.Blocks[slot] = raw
	return f
}

func (f *Fake) Intersect(ctx context.Context, spec Intersect) (chain.Point, error) {
	if len(spec.Points) > 0 {
		return spec.Points[0], nil
	}
	return chain.Origin, nil
}

// HasAgency alternates between true (request) when the script still has
// entries and false once exhausted, matching the real protocol's
// tendency to need an await once caught up to the tip.
func (f *Fake) HasAgency() bool {
	return f.pos < len(f.Script)
}

func (f *Fake) RequestNext(ctx context.Context) (Response, error) {
	if f.pos >= len(f.Script) {
		return Response{Kind: Await}, nil
	}
	r := f.Script[f.pos]
	f.pos++
	return r, nil
}

func (f *Fake) AwaitNext(ctx context.Context) (Response, error) {
	return f.RequestNext(ctx)
}

func (f *Fake) FetchBlock(ctx context.Context, p chain.Point) ([]byte, error) {
	raw, ok := f.Blocks[p.Slot]
	if !ok {
		return nil, fmt.Errorf("chainclient fake: no block registered for slot %d", p.Slot)
	}
	return raw, nil
}
