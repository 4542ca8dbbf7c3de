// Package config loads palimpsest's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Theme holds the viewer's color names. Values are tcell color names
// ("white", "black", "darkcyan", ...); unknown names fall back to the
// terminal defaults at render time.
type Theme struct {
	SelectionFG string `toml:"selection_fg"`
	SelectionBG string `toml:"selection_bg"`
	StatusFG    string `toml:"status_fg"`
	StatusBG    string `toml:"status_bg"`
}

// Config is the full palimpsest configuration.
type Config struct {
	// TabWidth is the tab stop width used for rendering.
	TabWidth int `toml:"tab_width"`

	// Follow auto-advances to new deltas appended while viewing the
	// end of a log.
	Follow bool `toml:"follow"`

	// Theme configures viewer colors.
	Theme Theme `toml:"theme"`

	// Languages maps file extensions (without the dot) to display
	// language names for the status line.
	Languages map[string]string `toml:"languages"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TabWidth: 4,
		Follow:   true,
		Theme: Theme{
			SelectionFG: "black",
			SelectionBG: "darkcyan",
			StatusFG:    "black",
			StatusBG:    "silver",
		},
		Languages: map[string]string{
			"go":   "go",
			"md":   "markdown",
			"txt":  "text",
			"json": "json",
			"toml": "toml",
		},
	}
}

// Load reads the configuration at path, layered over Default. A missing
// file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = Default().TabWidth
	}
	return cfg, nil
}

// Language returns the display language for a file name based on its
// extension, defaulting to "text".
func (c Config) Language(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if lang, ok := c.Languages[strings.ToLower(ext)]; ok {
		return lang
	}
	return "text"
}
