// Package config handles mesh editor configuration loading and management.
package config

// FileName is the config file looked up in the working directory and the config directory.
const FileName = "meshedit.yaml"

// Config holds all editor settings.
type Config struct {
	Editor  EditorConfig  `yaml:"editor"`
	Undo    UndoConfig    `yaml:"undo"`
	Logging LoggingConfig `yaml:"logging"`
}

// EditorConfig holds picking settings.
type EditorConfig struct {
	PickDistance float32 `yaml:"pick_distance"` // Max ray distance for vertex and edge picks
	EdgePicking  string  `yaml:"edge_picking"`  // "midpoint" or "segment"
}

// UndoConfig holds undo history settings.
type UndoConfig struct {
	Limit int `yaml:"limit"` // 0 = unlimited
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			PickDistance: 0.5,
			EdgePicking:  "midpoint",
		},
		Undo: UndoConfig{
			Limit: 100,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
