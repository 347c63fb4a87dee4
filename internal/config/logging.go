package config

// LoggingConfig configures logging. The logging package reads the same
// section of the file directly.
type LoggingConfig struct {
	Level      string          `yaml:"level"`                // debug, info, warn, error
	JSONFormat bool            `yaml:"json_format"`          // JSON lines instead of console text
	DebugMode  bool            `yaml:"debug_mode"`           // Master toggle - false = no logging
	Categories map[string]bool `yaml:"categories,omitempty"` // Per-category toggles
}
