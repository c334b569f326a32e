// Package config handles application configuration.
//
// Configuration is loaded defaults -> file -> flags, the same layering
// and key=value .conf format the teacher repo's config package uses.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all runtime settings for the scrollsd daemon.
type Config struct {
	DataDir string `conf:"datadir"`

	Chain       ChainConfig
	Source      SourceConfig
	BlockBuffer BlockBufferConfig
	Enrich      EnrichConfig
	Reducers    ReducersConfig
	Sink        SinkConfig
	Log         LogConfig
	Runtime     RuntimeConfig
}

// ChainConfig carries slot->wallclock chain parameters, consumed only by
// reducers that want wallclock; never validated by the pipeline core.
type ChainConfig struct {
	NetworkMagic      uint32  `conf:"chain.network_magic"`
	SlotLengthSeconds float64 `conf:"chain.slot_length_seconds"`
	ShelleyEpochSlot  uint64  `conf:"chain.shelley_epoch_slot"`
}

// SourceConfig configures the chain-follower stage.
type SourceConfig struct {
	NodeAddr        string   `conf:"source.node_addr"`
	Transport       string   `conf:"source.transport"` // "n2n" or "grpc"
	Intersect       string   `conf:"source.intersect"` // "origin", "tip", or "points"
	IntersectPoints []string `conf:"source.intersect_points"`
	MinDepth        int      `conf:"source.min_depth"`
	FinalizeSlot    uint64   `conf:"source.finalize_slot"` // 0 means run forever
}

// BlockBufferConfig configures the durable recent-block store.
type BlockBufferConfig struct {
	Path string `conf:"blockbuffer.path"`
	Cap  int    `conf:"blockbuffer.cap"`
}

// EnrichConfig configures the UTXO index and its undo rings.
type EnrichConfig struct {
	UTXOPath     string `conf:"enrich.utxo_path"`
	ProducedPath string `conf:"enrich.produced_ring_path"`
	ConsumedPath string `conf:"enrich.consumed_ring_path"`
	RingCap      int    `conf:"enrich.ring_cap"`
	Parallelism  int    `conf:"enrich.parallelism"`
}

// ReducersConfig selects and configures the registered reducer set.
type ReducersConfig struct {
	Enabled             []string `conf:"reducers.enabled"`
	BalancesPrefix      string   `conf:"reducers.balances.key_prefix"`
	UTXOByAddressPrefix string   `conf:"reducers.utxobyaddress.key_prefix"`
	MetadataPrefix      string   `conf:"reducers.metadata.key_prefix"`
	SupplyPrefix        string   `conf:"reducers.supply.key_prefix"`
	ChainTipKey         string   `conf:"reducers.chaintip.key"`
}

// SinkConfig configures the downstream command sink.
type SinkConfig struct {
	Path string `conf:"sink.path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// RuntimeConfig holds pipeline-wide operational knobs.
type RuntimeConfig struct {
	QueueCapacity            int    `conf:"runtime.queue_capacity"`
	RetryMaxElapsedSeconds   int    `conf:"runtime.retry_max_elapsed_seconds"`
	RetryMaxRetries          int    `conf:"runtime.retry_max_retries"`
	CommitTickTimeoutSeconds int    `conf:"runtime.commit_tick_timeout_seconds"`
	DecodePolicy             string `conf:"runtime.decode_policy"` // "fail", "skip", or "warn"
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.scrolls
//	macOS:   ~/Library/Application Support/Scrolls
//	Windows: %APPDATA%\Scrolls
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".scrolls"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Scrolls")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Scrolls")
		}
		return filepath.Join(home, "AppData", "Roaming", "Scrolls")
	default:
		return filepath.Join(home, ".scrolls")
	}
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "scrolls.conf")
}

// BlockBufferDir, UTXODir, ProducedRingDir, ConsumedRingDir and SinkDir
// return the component-specific on-disk paths, honoring any explicit
// override while defaulting under DataDir.
func (c *Config) BlockBufferDir() string {
	if c.BlockBuffer.Path != "" {
		return c.BlockBuffer.Path
	}
	return filepath.Join(c.DataDir, "blockbuffer")
}

func (c *Config) UTXODir() string {
	if c.Enrich.UTXOPath != "" {
		return c.Enrich.UTXOPath
	}
	return filepath.Join(c.DataDir, "utxo")
}

func (c *Config) ProducedRingDir() string {
	if c.Enrich.ProducedPath != "" {
		return c.Enrich.ProducedPath
	}
	return filepath.Join(c.DataDir, "produced_ring")
}

func (c *Config) ConsumedRingDir() string {
	if c.Enrich.ConsumedPath != "" {
		return c.Enrich.ConsumedPath
	}
	return filepath.Join(c.DataDir, "consumed_ring")
}

func (c *Config) SinkDir() string {
	if c.Sink.Path != "" {
		return c.Sink.Path
	}
	return filepath.Join(c.DataDir, "sink")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
