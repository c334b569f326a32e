package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "datadir":
		cfg.DataDir = value

	// Chain
	case "chain.network_magic":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.Chain.NetworkMagic = uint32(n)
	case "chain.slot_length_seconds":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		cfg.Chain.SlotLengthSeconds = f
	case "chain.shelley_epoch_slot":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Chain.ShelleyEpochSlot = n

	// Source
	case "source.node_addr":
		cfg.Source.NodeAddr = value
	case "source.transport":
		cfg.Source.Transport = value
	case "source.intersect":
		cfg.Source.Intersect = value
	case "source.intersect_points":
		cfg.Source.IntersectPoints = parseStringList(value)
	case "source.min_depth":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Source.MinDepth = n
	case "source.finalize_slot":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Source.FinalizeSlot = n

	// BlockBuffer
	case "blockbuffer.path":
		cfg.BlockBuffer.Path = value
	case "blockbuffer.cap":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.BlockBuffer.Cap = n

	// Enrich
	case "enrich.utxo_path":
		cfg.Enrich.UTXOPath = value
	case "enrich.produced_ring_path":
		cfg.Enrich.ProducedPath = value
	case "enrich.consumed_ring_path":
		cfg.Enrich.ConsumedPath = value
	case "enrich.ring_cap":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Enrich.RingCap = n
	case "enrich.parallelism":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Enrich.Parallelism = n

	// Reducers
	case "reducers.enabled":
		cfg.Reducers.Enabled = parseStringList(value)
	case "reducers.balances.key_prefix":
		cfg.Reducers.BalancesPrefix = value
	case "reducers.utxobyaddress.key_prefix":
		cfg.Reducers.UTXOByAddressPrefix = value
	case "reducers.metadata.key_prefix":
		cfg.Reducers.MetadataPrefix = value
	case "reducers.supply.key_prefix":
		cfg.Reducers.SupplyPrefix = value
	case "reducers.chaintip.key":
		cfg.Reducers.ChainTipKey = value

	// Sink
	case "sink.path":
		cfg.Sink.Path = value

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	// Runtime
	case "runtime.queue_capacity":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Runtime.QueueCapacity = n
	case "runtime.retry_max_elapsed_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Runtime.RetryMaxElapsedSeconds = n
	case "runtime.retry_max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Runtime.RetryMaxRetries = n
	case "runtime.commit_tick_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Runtime.CommitTickTimeoutSeconds = n
	case "runtime.decode_policy":
		cfg.Runtime.DecodePolicy = value

	default:
		// Unknown keys are ignored.
	}
	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string) error {
	content := `# scrollsd configuration
#
# key = value, one per line, # for comments.

# datadir = ~/.scrolls

# ============================================================================
# Chain parameters (slot -> wallclock only; never validated by the core)
# ============================================================================

chain.network_magic = 0
chain.slot_length_seconds = 1
# chain.shelley_epoch_slot = 0

# ============================================================================
# Source (chain follower)
# ============================================================================

source.transport = n2n
# source.node_addr = 127.0.0.1:3001
source.intersect = tip
# source.intersect_points = 12345678:abcdef...
source.min_depth = 10
# source.finalize_slot = 0

# ============================================================================
# BlockBuffer
# ============================================================================

# blockbuffer.path = <datadir>/blockbuffer
blockbuffer.cap = 2160

# ============================================================================
# Enrich (UTXO index + undo rings)
# ============================================================================

# enrich.utxo_path = <datadir>/utxo
# enrich.produced_ring_path = <datadir>/produced_ring
# enrich.consumed_ring_path = <datadir>/consumed_ring
enrich.ring_cap = 500000
enrich.parallelism = 8

# ============================================================================
# Reducers
# ============================================================================

reducers.enabled = balances,utxobyaddress,metadata,supply,chaintip
reducers.balances.key_prefix = bal
reducers.utxobyaddress.key_prefix = utxo
reducers.metadata.key_prefix = meta
reducers.supply.key_prefix = supply
reducers.chaintip.key = chaintip

# ============================================================================
# Sink
# ============================================================================

# sink.path = <datadir>/sink

# ============================================================================
# Logging
# ============================================================================

log.level = info
# log.file =
log.json = false

# ============================================================================
# Runtime
# ============================================================================

runtime.queue_capacity = 64
runtime.retry_max_elapsed_seconds = 300
runtime.retry_max_retries = 8
runtime.commit_tick_timeout_seconds = 600
runtime.decode_policy = fail
`
	return os.WriteFile(path, []byte(content), 0644)
}
