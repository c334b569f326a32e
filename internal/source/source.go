// Package source implements the chain-follower stage of spec §4.1: it
// turns the chainclient's forward/backward protocol into an ordered
// stream of RawBlockPayload, absorbing shallow rollbacks in an
// in-memory window and replaying deeper ones from the BlockBuffer.
package source

import (
	"context"
	"fmt"

	"github.com/scrollchain/scrolls/internal/blockbuffer"
	"github.com/scrollchain/scrolls/internal/chainclient"
	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/pkg/chain"
)

// FinalizeFunc reports whether the pipeline should stop after observing
// point; nil means "run forever".
type FinalizeFunc func(chain.Point) bool

// Source is the chain-follower stage.
type Source struct {
	client   chainclient.Client
	buffer   *blockbuffer.BlockBuffer
	win      *window
	minDepth int
	intersect chainclient.Intersect
	finalize FinalizeFunc
	out      chan<- chain.RawBlockPayload
}

// New builds a Source. The cursor later passed to Bootstrap, if
// non-origin, takes precedence over intersect as the starting point
// (spec §4.1 step 1).
func New(client chainclient.Client, buffer *blockbuffer.BlockBuffer, minDepth int, intersect chainclient.Intersect, finalize FinalizeFunc, out chan<- chain.RawBlockPayload) *Source {
	return &Source{
		client:    client,
		buffer:    buffer,
		win:       newWindow(),
		minDepth:  minDepth,
		intersect: intersect,
		finalize:  finalize,
		out:       out,
	}
}

// Bootstrap negotiates the starting point: cursor if present, otherwise
// the configured intersect spec. Failure to intersect is fatal.
func (s *Source) Bootstrap(ctx context.Context, cursor chain.Point) (chain.Point, error) {
	spec := s.intersect
	if !cursor.IsOrigin() {
		spec = chainclient.Intersect{Points: []chain.Point{cursor}}
	}
	p, err := s.client.Intersect(ctx, spec)
	if err != nil {
		return chain.Point{}, fmt.Errorf("%w: %v", perr.ErrIntersectNotFound, err)
	}
	log.Source.Info().Uint64("slot", p.Slot).Msg("chain-sync intersected")
	return p, nil
}

// Run drives Work in a loop until ctx is cancelled, the finalize
// predicate fires, or a non-recoverable error occurs.
func (s *Source) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			log.Source.Info().Msg("source stage cancelled")
			return nil
		default:
		}

		done, err := s.Work(ctx)
		if err != nil {
			return err
		}
		if done {
			log.Source.Info().Msg("source stage finalized")
			return nil
		}
	}
}

// Work performs one unit of the pump/drain algorithm of spec §4.1. It
// drains any pending rollback queue entries first; only once that queue
// is empty does it pump the chain client and drain the ready window.
func (s *Source) Work(ctx context.Context) (done bool, err error) {
	drained, done, err := s.drainRollbackQueue(ctx)
	if err != nil || done {
		return done, err
	}
	if drained {
		return false, nil
	}

	if err := s.pump(ctx); err != nil {
		return false, err
	}

	return s.drainWindow(ctx)
}

func (s *Source) drainRollbackQueue(ctx context.Context) (drained bool, done bool, err error) {
	for {
		slot, raw, ok, err := s.buffer.RollbackPop()
		if err != nil {
			return drained, false, err
		}
		if !ok {
			return drained, false, nil
		}
		drained = true

		p := chain.Point{Slot: slot}
		if err := s.send(ctx, chain.RollBack(p, raw)); err != nil {
			return drained, false, err
		}
		if s.finalize != nil && s.finalize(p) {
			return drained, true, nil
		}
	}
}

func (s *Source) pump(ctx context.Context) error {
	var (
		resp chainclient.Response
		err  error
	)
	if s.client.HasAgency() {
		resp, err = s.client.RequestNext(ctx)
	} else {
		resp, err = s.client.AwaitNext(ctx)
	}
	if err != nil {
		return perr.ChainClient(err)
	}

	switch resp.Kind {
	case chainclient.RollForward:
		s.win.rollForward(resp.Point)
	case chainclient.RollBackward:
		if !s.win.rollBack(resp.Point) {
			if _, err := s.buffer.EnqueueRollbackBatch(resp.Point); err != nil {
				return err
			}
		}
	case chainclient.Await:
		// Caught up to the tip; nothing to do this tick.
	}
	return nil
}

func (s *Source) drainWindow(ctx context.Context) (done bool, err error) {
	ready := s.win.popWithDepth(s.minDepth)
	for _, p := range ready {
		raw, err := s.client.FetchBlock(ctx, p)
		if err != nil {
			return false, perr.ChainClient(err)
		}
		if err := s.buffer.Insert(p, raw); err != nil {
			return false, err
		}
		if err := s.send(ctx, chain.RollForward(p, raw)); err != nil {
			return false, err
		}
		if s.finalize != nil && s.finalize(p) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Source) send(ctx context.Context, payload chain.RawBlockPayload) error {
	select {
	case s.out <- payload:
		return nil
	case <-ctx.Done():
		return perr.ErrCancelled
	}
}
