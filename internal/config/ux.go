package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light", "dark" or "auto" (detect from the terminal).
	Theme string `yaml:"theme"`

	// AltScreen runs the form in the terminal's alternate screen.
	AltScreen bool `yaml:"alt_screen"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:     "auto",
		AltScreen: true,
	}
}
