// Package config handles loading and saving gtmdeck configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/gtmdeck/config.yaml
//   - State:   ~/.local/state/gtmdeck/ (debug logs, CPU profiles)
//
// Precedence for the deck path is CLI flag, then GTMDECK_DECK, then the
// config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvDeck overrides deck.path.
const EnvDeck = "GTMDECK_DECK"

// KeyConfig holds the letter keys for section navigation. Arrow keys always
// work in addition to these.
type KeyConfig struct {
	Next string `yaml:"next,omitempty"`
	Prev string `yaml:"prev,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	StartSection string    `yaml:"start_section,omitempty"` // Section id shown first
	AnimationMs  int       `yaml:"animation_ms,omitempty"`  // Counter run length
	FrameMs      int       `yaml:"frame_ms,omitempty"`      // Sampling interval while counters run
	RailWidth    int       `yaml:"rail_width,omitempty"`    // Navigation rail columns
	Mouse        *bool     `yaml:"mouse,omitempty"`         // Mouse support; nil means on
	Keys         KeyConfig `yaml:"keys,omitempty"`
}

// DeckConfig says where the deck comes from.
type DeckConfig struct {
	Path string `yaml:"path,omitempty"` // File or directory; empty searches cwd
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Dir     string   `yaml:"dir,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
}

// Config is the top-level configuration for gtmdeck.
type Config struct {
	UI     UIConfig     `yaml:"ui,omitempty"`
	Deck   DeckConfig   `yaml:"deck,omitempty"`
	Export ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			StartSection: "exec",
			AnimationMs:  2000,
			FrameMs:      16,
			RailWidth:    30,
			Keys: KeyConfig{
				Next: "j",
				Prev: "k",
			},
		},
		Export: ExportConfig{
			Dir:     "gtmdeck-export",
			Formats: []string{"markdown", "svg", "json"},
		},
	}
}

// MouseEnabled reports whether mouse input should be captured.
func (u UIConfig) MouseEnabled() bool {
	return u.Mouse == nil || *u.Mouse
}

// AnimationDuration returns the counter run length.
func (u UIConfig) AnimationDuration() time.Duration {
	return time.Duration(u.AnimationMs) * time.Millisecond
}

// FrameInterval returns the sampling interval.
func (u UIConfig) FrameInterval() time.Duration {
	return time.Duration(u.FrameMs) * time.Millisecond
}

// ConfigDir returns the XDG config directory for gtmdeck.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gtmdeck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gtmdeck")
}

// StateDir returns the XDG state directory for gtmdeck.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "gtmdeck")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "gtmdeck")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	cfg.Deck.Path = expandHome(cfg.Deck.Path)
	cfg.Export.Dir = expandHome(cfg.Export.Dir)

	return cfg, nil
}

// normalize replaces out-of-range values with defaults.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.UI.AnimationMs < 0 {
		c.UI.AnimationMs = def.UI.AnimationMs
	}
	if c.UI.FrameMs <= 0 {
		c.UI.FrameMs = def.UI.FrameMs
	}
	if c.UI.RailWidth < 16 {
		c.UI.RailWidth = def.UI.RailWidth
	}
	if len([]rune(c.UI.Keys.Next)) != 1 {
		c.UI.Keys.Next = def.UI.Keys.Next
	}
	if len([]rune(c.UI.Keys.Prev)) != 1 {
		c.UI.Keys.Prev = def.UI.Keys.Prev
	}
	if c.UI.Keys.Next == c.UI.Keys.Prev {
		c.UI.Keys = def.UI.Keys
	}
	if len(c.Export.Formats) == 0 {
		c.Export.Formats = def.Export.Formats
	}
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to path through a temp file and rename, so a
// crash never leaves a truncated config.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ResolveDeckPath applies flag > GTMDECK_DECK > config precedence. An empty
// result means "search the working directory".
func (c Config) ResolveDeckPath(flagValue string) string {
	if flagValue != "" {
		return expandHome(flagValue)
	}
	if env := strings.TrimSpace(os.Getenv(EnvDeck)); env != "" {
		return expandHome(env)
	}
	return c.Deck.Path
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
