package reducer

import (
	"context"

	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/pkg/chain"
	"github.com/scrollchain/scrolls/pkg/command"
)

// Sink is the narrow interface the reducer worker needs from the
// downstream stage: accept one command at a time, in order.
type Sink interface {
	Apply(ctx context.Context, cmd command.Command) error
}

// Worker drives the Registry over a stream of EnrichedBlockPayload,
// framing every block's command output with BlockStarting/BlockFinished
// (spec §4.4 "Framework behavior per block").
type Worker struct {
	registry *Registry
	sink     Sink
	in       <-chan chain.EnrichedBlockPayload
}

// NewWorker builds a reducer Worker reading from in and writing to sink.
func NewWorker(registry *Registry, sink Sink, in <-chan chain.EnrichedBlockPayload) *Worker {
	return &Worker{registry: registry, sink: sink, in: in}
}

// Run processes payloads until in is closed or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case payload, ok := <-w.in:
			if !ok {
				return nil
			}
			if err := w.processOne(ctx, payload); err != nil {
				return err
			}
		case <-ctx.Done():
			log.Reducer.Info().Msg("reducer stage cancelled")
			return nil
		}
	}
}

func (w *Worker) processOne(ctx context.Context, payload chain.EnrichedBlockPayload) error {
	point := payload.Block.Point()

	if err := w.apply(ctx, command.BlockStarting(point)); err != nil {
		return err
	}

	cmds := w.registry.Reduce(payload.Block, payload.Context, payload.Direction)
	for _, cmd := range cmds {
		if err := w.apply(ctx, cmd); err != nil {
			return err
		}
	}

	if err := w.apply(ctx, command.BlockFinished(point)); err != nil {
		return err
	}

	log.Reducer.Debug().Uint64("slot", point.Slot).Str("direction", payload.Direction.String()).
		Int("commands", len(cmds)).Msg("reduced block")
	return nil
}

func (w *Worker) apply(ctx context.Context, cmd command.Command) error {
	if err := perr.WithStorageRetry(perr.DefaultRetryBudget, func() error {
		return w.sink.Apply(ctx, cmd)
	}); err != nil {
		return err
	}
	return nil
}
