// Command scrollsd is the sole CLI surface of the pipeline: the
// "daemon" subcommand reads a configuration and runs Source, Enrich,
// and the reducer set against a sink until cancelled or a configured
// finalize point is reached (spec §6).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/scrollchain/scrolls/config"
	"github.com/scrollchain/scrolls/internal/blockbuffer"
	"github.com/scrollchain/scrolls/internal/chainclient"
	"github.com/scrollchain/scrolls/internal/enrich"
	"github.com/scrollchain/scrolls/internal/log"
	"github.com/scrollchain/scrolls/internal/perr"
	"github.com/scrollchain/scrolls/internal/pipeline"
	"github.com/scrollchain/scrolls/internal/reducer"
	"github.com/scrollchain/scrolls/internal/sink"
	"github.com/scrollchain/scrolls/internal/source"
	"github.com/scrollchain/scrolls/internal/storage"
	"github.com/scrollchain/scrolls/pkg/chain"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 || os.Args[1] != "daemon" {
		fmt.Fprintln(os.Stderr, "usage: scrollsd daemon --config <path>")
		return 1
	}

	cfg, _, err := config.Load(os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newChainClient(cfg.Source)
	if err != nil {
		log.Pipeline.Error().Err(err).Msg("chain client setup failed")
		return 1
	}

	stores, err := openStores(cfg)
	if err != nil {
		log.Pipeline.Error().Err(err).Msg("opening stores")
		return 1
	}
	defer stores.closeAll()

	buffer := blockbuffer.New(stores.blockbuffer, cfg.BlockBuffer.Cap)

	enr := enrich.New(stores.utxo, stores.producedRing, stores.consumedRing, enrich.Config{
		RingCap:      cfg.Enrich.RingCap,
		DecodePolicy: perr.Policy(cfg.Runtime.DecodePolicy),
		Parallelism:  cfg.Enrich.Parallelism,
	})

	registry := buildRegistry(cfg.Reducers)

	snk := sink.New(stores.sink)

	intersectSpec, err := buildIntersect(cfg.Source)
	if err != nil {
		log.Pipeline.Error().Err(err).Msg("invalid intersect config")
		return 1
	}

	var finalize source.FinalizeFunc
	if cfg.Source.FinalizeSlot > 0 {
		target := cfg.Source.FinalizeSlot
		finalize = func(p chain.Point) bool { return p.Slot >= target }
	}

	pl := pipeline.New(client, buffer, cfg.Source.MinDepth, intersectSpec, finalize, enr, registry, snk, pipeline.Config{
		QueueCapacity: cfg.Runtime.QueueCapacity,
	})

	if err := pl.Run(ctx); err != nil {
		if perr.Is(err, perr.KindCancelled) {
			log.Pipeline.Info().Msg("shut down cleanly")
			return 0
		}
		log.Pipeline.Error().Err(err).Msg("pipeline exited with a fatal error")
		return 1
	}

	log.Pipeline.Info().Msg("finalize point reached, shutting down")
	return 0
}

// newChainClient resolves the configured transport. The real wire
// protocol is an external, pluggable collaborator (spec §6 "Wire-level
// boundary") — no transport ships in this repo, so every configured
// value fails fast with a message pointing at chainclient.Client as the
// integration point, rather than silently running against a fake.
func newChainClient(cfg config.SourceConfig) (chainclient.Client, error) {
	switch cfg.Transport {
	case "n2n", "grpc":
		return nil, fmt.Errorf("source.transport %q has no built-in implementation: the chain-client wire transport is an external collaborator (see internal/chainclient.Client) that must be wired in by the deployer", cfg.Transport)
	default:
		return nil, fmt.Errorf("unknown source.transport %q", cfg.Transport)
	}
}

func buildIntersect(cfg config.SourceConfig) (chainclient.Intersect, error) {
	switch cfg.Intersect {
	case "origin":
		return chainclient.Intersect{Origin: true}, nil
	case "tip":
		return chainclient.Intersect{Tip: true}, nil
	case "points":
		points := make([]chain.Point, 0, len(cfg.IntersectPoints))
		for _, raw := range cfg.IntersectPoints {
			p, err := parsePoint(raw)
			if err != nil {
				return chainclient.Intersect{}, err
			}
			points = append(points, p)
		}
		return chainclient.Intersect{Points: points}, nil
	default:
		return chainclient.Intersect{}, fmt.Errorf("unknown source.intersect %q", cfg.Intersect)
	}
}

func parsePoint(s string) (chain.Point, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return chain.Point{}, fmt.Errorf("intersect point %q: expected \"slot:hash_hex\"", s)
	}
	slot, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return chain.Point{}, fmt.Errorf("intersect point %q: %w", s, err)
	}
	hash, err := chain.HashFromHex(parts[1])
	if err != nil {
		return chain.Point{}, fmt.Errorf("intersect point %q: %w", s, err)
	}
	return chain.Point{Slot: slot, Hash: hash}, nil
}

func buildRegistry(cfg config.ReducersConfig) *reducer.Registry {
	reg := reducer.NewRegistry()
	for _, name := range cfg.Enabled {
		switch name {
		case "balances":
			reg.Register(reducer.NewBalances(cfg.BalancesPrefix))
		case "utxobyaddress":
			reg.Register(reducer.NewUTXOByAddress(cfg.UTXOByAddressPrefix))
		case "metadata":
			reg.Register(reducer.NewMetadata(cfg.MetadataPrefix))
		case "supply":
			reg.Register(reducer.NewSupply(cfg.SupplyPrefix))
		case "chaintip":
			reg.Register(reducer.NewChainTip(cfg.ChainTipKey))
		}
	}
	return reg
}

type openStoresResult struct {
	blockbuffer  *storage.BadgerDB
	utxo         *storage.BadgerDB
	producedRing *storage.BadgerDB
	consumedRing *storage.BadgerDB
	sink         *storage.BadgerDB
}

func (s *openStoresResult) closeAll() {
	for _, db := range []*storage.BadgerDB{s.blockbuffer, s.utxo, s.producedRing, s.consumedRing, s.sink} {
		if db != nil {
			db.Close()
		}
	}
}

func openStores(cfg *config.Config) (*openStoresResult, error) {
	var res openStoresResult
	var err error

	if res.blockbuffer, err = storage.NewBadger(cfg.BlockBufferDir()); err != nil {
		return nil, fmt.Errorf("blockbuffer store: %w", err)
	}
	if res.utxo, err = storage.NewBadger(cfg.UTXODir()); err != nil {
		res.closeAll()
		return nil, fmt.Errorf("utxo store: %w", err)
	}
	if res.producedRing, err = storage.NewBadger(cfg.ProducedRingDir()); err != nil {
		res.closeAll()
		return nil, fmt.Errorf("produced ring store: %w", err)
	}
	if res.consumedRing, err = storage.NewBadger(cfg.ConsumedRingDir()); err != nil {
		res.closeAll()
		return nil, fmt.Errorf("consumed ring store: %w", err)
	}
	if res.sink, err = storage.NewBadger(cfg.SinkDir()); err != nil {
		res.closeAll()
		return nil, fmt.Errorf("sink store: %w", err)
	}
	return &res, nil
}
