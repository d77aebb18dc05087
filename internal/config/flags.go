package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagPickDistance = flag.Float64("pick-distance", 0, "Max ray distance for vertex and edge picks")
	flagEdgePicking  = flag.String("edge-picking", "", "Edge pick metric: midpoint or segment")
	flagLogFile      = flag.String("log-file", "", "Write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagPickDistance > 0 {
		cfg.Editor.PickDistance = float32(*flagPickDistance)
	}
	if *flagEdgePicking != "" {
		cfg.Editor.EdgePicking = *flagEdgePicking
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
