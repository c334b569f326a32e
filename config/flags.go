package config

import (
	"flag"
	"fmt"
	"os"
)

// Flags holds parsed command-line flags for the daemon subcommand.
type Flags struct {
	Help    bool
	Version bool

	Config  string
	DataDir string

	SourceNodeAddr string
	SourceIntersect string
	LogLevel       string
	LogFile        string
	LogJSON        bool

	SetLogJSON bool
}

// ParseFlags parses command-line flags for `scrollsd daemon`.
func ParseFlags(args []string) *Flags {
	f := &Flags{}
	fs := flag.NewFlagSet("scrollsd", flag.ContinueOnError)

	fs.BoolVar(&f.Help, "help", false, "Show help message")
	fs.BoolVar(&f.Help, "h", false, "Show help message (shorthand)")
	fs.BoolVar(&f.Version, "version", false, "Show version information")

	fs.StringVar(&f.Config, "config", "", "Config file path")
	fs.StringVar(&f.Config, "c", "", "Config file path (shorthand)")
	fs.StringVar(&f.DataDir, "datadir", "", "Data directory path")

	fs.StringVar(&f.SourceNodeAddr, "source-node-addr", "", "Chain node address to follow")
	fs.StringVar(&f.SourceIntersect, "source-intersect", "", "Intersect spec: origin, tip, or points")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFile, "log-file", "", "Log file path")
	fs.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	fs.Usage = func() {
		printUsage()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	f.SetLogJSON = isFlagSet(fs, "log-json")
	return f
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}
	if f.SourceNodeAddr != "" {
		cfg.Source.NodeAddr = f.SourceNodeAddr
	}
	if f.SourceIntersect != "" {
		cfg.Source.Intersect = f.SourceIntersect
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.SetLogJSON {
		cfg.Log.JSON = f.LogJSON
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	usage := `scrollsd - rollback-safe streaming chain-indexing pipeline

Usage:
  scrollsd daemon --config <path>
  scrollsd daemon --help

The sole subcommand is "daemon", which reads a configuration describing
the chain parameters, source address, intersect spec, reducer set, sink
connection, and on-disk paths, then runs the pipeline until cancelled or
a configured finalize point is reached.

Options:
  --config, -c          Config file path (default: <datadir>/scrolls.conf)
  --datadir             Data directory path (default: ~/.scrolls)
  --source-node-addr    Chain node address to follow
  --source-intersect    Intersect spec: origin, tip, or points
  --log-level           Log level: debug, info, warn, error (default: info)
  --log-file            Log file path (default: stdout)
  --log-json            Output logs as JSON

Exit codes:
  0   normal termination (finalize reached or cancelled cleanly)
  1   fatal error (unrecoverable decode or storage)
`
	fmt.Print(usage)
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dir + default config (idempotent)
// 3. Config file
// 4. Command-line flags
func Load(args []string) (*Config, *Flags, error) {
	flags := ParseFlags(args)

	if flags.Help {
		printUsage()
		os.Exit(0)
	}
	if flags.Version {
		fmt.Println("scrollsd version 0.1.0")
		os.Exit(0)
	}

	cfg := Default()
	if flags.DataDir != "" {
		cfg.DataDir = flags.DataDir
	}

	if err := EnsureDataDir(cfg); err != nil {
		return nil, nil, fmt.Errorf("ensuring data dir: %w", err)
	}

	configPath := flags.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}

	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyFlags(cfg, flags)
	if err := Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, flags, nil
}

// EnsureDataDir creates the data directory and a default config file if
// they don't already exist. Idempotent.
func EnsureDataDir(cfg *Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", cfg.DataDir, err)
	}
	if err := os.MkdirAll(cfg.LogsDir(), 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", cfg.LogsDir(), err)
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
