package config

import "fmt"

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}

	switch cfg.Source.Transport {
	case "n2n", "grpc":
	default:
		return fmt.Errorf("source.transport must be \"n2n\" or \"grpc\", got %q", cfg.Source.Transport)
	}

	switch cfg.Source.Intersect {
	case "origin", "tip", "points":
	default:
		return fmt.Errorf("source.intersect must be \"origin\", \"tip\", or \"points\", got %q", cfg.Source.Intersect)
	}
	if cfg.Source.Intersect == "points" && len(cfg.Source.IntersectPoints) == 0 {
		return fmt.Errorf("source.intersect=points requires at least one source.intersect_points entry")
	}
	if cfg.Source.MinDepth < 0 {
		return fmt.Errorf("source.min_depth must be >= 0")
	}

	if cfg.BlockBuffer.Cap <= 0 {
		return fmt.Errorf("blockbuffer.cap must be > 0")
	}
	if cfg.Enrich.RingCap <= 0 {
		return fmt.Errorf("enrich.ring_cap must be > 0")
	}
	if cfg.Enrich.RingCap < cfg.BlockBuffer.Cap {
		return fmt.Errorf("enrich.ring_cap (%d) must be >= blockbuffer.cap (%d): the ring must outlive the deepest rollback the source can emit", cfg.Enrich.RingCap, cfg.BlockBuffer.Cap)
	}
	if cfg.Enrich.Parallelism <= 0 {
		return fmt.Errorf("enrich.parallelism must be > 0")
	}

	if len(cfg.Reducers.Enabled) == 0 {
		return fmt.Errorf("reducers.enabled must list at least one reducer")
	}
	known := map[string]bool{"balances": true, "utxobyaddress": true, "metadata": true, "supply": true, "chaintip": true}
	seen := make(map[string]bool, len(cfg.Reducers.Enabled))
	for _, name := range cfg.Reducers.Enabled {
		if !known[name] {
			return fmt.Errorf("reducers.enabled: unknown reducer %q", name)
		}
		if seen[name] {
			return fmt.Errorf("reducers.enabled: duplicate reducer %q", name)
		}
		seen[name] = true
	}

	switch cfg.Runtime.DecodePolicy {
	case "fail", "skip", "warn":
	default:
		return fmt.Errorf("runtime.decode_policy must be \"fail\", \"skip\", or \"warn\", got %q", cfg.Runtime.DecodePolicy)
	}
	if cfg.Runtime.QueueCapacity <= 0 {
		return fmt.Errorf("runtime.queue_capacity must be > 0")
	}
	if cfg.Runtime.CommitTickTimeoutSeconds <= 0 {
		return fmt.Errorf("runtime.commit_tick_timeout_seconds must be > 0")
	}

	return nil
}
