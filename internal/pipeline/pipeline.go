// Package pipeline wires the three stages — Source, Enrich, Reducer —
// with bounded channels and a shared cancellation context (spec §5):
// each stage is a single-threaded worker processing its queue in strict
// order, running concurrently with the others, blocking on a full
// downstream queue or an empty upstream one for backpressure.
package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/scrollchain/scrolls/internal/blockbuffer"
	"github.com/scrollchain/scrolls/internal/chainclient"
	"github.com/scrollchain/scrolls/internal/enrich"
	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/internal/reducer"
	"github.com/scrollchain/scrolls/internal/sink"
	"github.com/scrollchain/scrolls/internal/source"
	"github.com/scrollchain/scrolls/pkg/chain"
)

// Config parameterizes the bounded queues between stages.
type Config struct {
	// QueueCapacity bounds the raw-block and enriched-block channels.
	QueueCapacity int
}

// Pipeline owns the full stage graph and its wiring.
type Pipeline struct {
	client    chainclient.Client
	buffer    *blockbuffer.BlockBuffer
	minDepth  int
	intersect chainclient.Intersect
	finalize  source.FinalizeFunc

	enrich   *enrich.Enrich
	registry *reducer.Registry
	sink     sink.Sink

	cfg Config
}

// New builds a Pipeline. sink must already be open; Pipeline takes
// ownership of calling Cursor on it for Source bootstrap but not of
// closing it.
func New(
	client chainclient.Client,
	buffer *blockbuffer.BlockBuffer,
	minDepth int,
	intersect chainclient.Intersect,
	finalize source.FinalizeFunc,
	enr *enrich.Enrich,
	registry *reducer.Registry,
	snk sink.Sink,
	cfg Config,
) *Pipeline {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 64
	}
	return &Pipeline{
		client:    client,
		buffer:    buffer,
		minDepth:  minDepth,
		intersect: intersect,
		finalize:  finalize,
		enrich:    enr,
		registry:  registry,
		sink:      snk,
		cfg:       cfg,
	}
}

// Run bootstraps Source from the sink's persisted cursor and drives all
// three stages until ctx is cancelled, finalize fires, or a stage
// returns a fatal error — whichever comes first for any one stage
// cancels the others via the shared errgroup context.
func (p *Pipeline) Run(ctx context.Context) error {
	cursor, err := p.sink.Cursor()
	if err != nil {
		return err
	}

	raw := make(chan chain.RawBlockPayload, p.cfg.QueueCapacity)
	enriched := make(chan chain.EnrichedBlockPayload, p.cfg.QueueCapacity)

	src := source.New(p.client, p.buffer, p.minDepth, p.intersect, p.finalize, raw)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(raw)
		if _, err := src.Bootstrap(gctx, cursor); err != nil {
			return err
		}
		return src.Run(gctx)
	})

	g.Go(func() error {
		defer close(enriched)
		return p.runEnrich(gctx, raw, enriched)
	})

	g.Go(func() error {
		worker := reducer.NewWorker(p.registry, p.sink, enriched)
		return worker.Run(gctx)
	})

	log.Pipeline.Info().Uint64("cursor_slot", cursor.Slot).Msg("pipeline started")
	return g.Wait()
}

func (p *Pipeline) runEnrich(ctx context.Context, raw <-chan chain.RawBlockPayload, enriched chan<- chain.EnrichedBlockPayload) error {
	for {
		select {
		case payload, ok := <-raw:
			if !ok {
				return nil
			}
			out, err := p.enrich.Process(payload)
			if err != nil {
				if errors.Is(err, enrich.ErrSkippedBlock) {
					continue
				}
				return err
			}
			select {
			case enriched <- out:
			case <-ctx.Done():
				return nil
			}
		case <-ctx.Done():
			log.Enrich.Info().Msg("enrich stage cancelled")
			return nil
		}
	}
}
