package config

// Default returns the default daemon configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Chain: ChainConfig{
			NetworkMagic:      0,
			SlotLengthSeconds: 1,
		},
		Source: SourceConfig{
			Transport: "n2n",
			Intersect: "tip",
			MinDepth:  10,
		},
		BlockBuffer: BlockBufferConfig{
			Cap: 2160, // roughly one epoch's worth of shallow-reorg headroom
		},
		Enrich: EnrichConfig{
			RingCap:     500000, // pending measurement, see DESIGN.md
			Parallelism: 8,
		},
		Reducers: ReducersConfig{
			Enabled:             []string{"balances", "utxobyaddress", "metadata", "supply", "chaintip"},
			BalancesPrefix:      "bal",
			UTXOByAddressPrefix: "utxo",
			MetadataPrefix:      "meta",
			SupplyPrefix:        "supply",
			ChainTipKey:         "chaintip",
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
		Runtime: RuntimeConfig{
			QueueCapacity:            64,
			RetryMaxElapsedSeconds:   300,
			RetryMaxRetries:          8,
			CommitTickTimeoutSeconds: 600,
			DecodePolicy:             "fail",
		},
	}
}
