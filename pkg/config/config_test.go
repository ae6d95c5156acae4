package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.UI.StartSection != "exec" {
		t.Errorf("expected start section 'exec', got %q", cfg.UI.StartSection)
	}
	if cfg.UI.AnimationDuration() != 2*time.Second {
		t.Errorf("expected 2s animation, got %v", cfg.UI.AnimationDuration())
	}
	if cfg.UI.FrameInterval() != 16*time.Millisecond {
		t.Errorf("expected 16ms frames, got %v", cfg.UI.FrameInterval())
	}
	if cfg.UI.Keys.Next != "j" || cfg.UI.Keys.Prev != "k" {
		t.Errorf("unexpected keys %+v", cfg.UI.Keys)
	}
	if !cfg.UI.MouseEnabled() {
		t.Error("mouse should default to on")
	}
	if !slices.Equal(cfg.Export.Formats, []string{"markdown", "svg", "json"}) {
		t.Errorf("unexpected export formats %v", cfg.Export.Formats)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.UI.StartSection != "exec" {
		t.Errorf("expected default config, got start section %q", cfg.UI.StartSection)
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
ui:
  start_section: cities
  animation_ms: 1200
  frame_ms: 33
  rail_width: 36
  mouse: false
  keys:
    next: n
    prev: p

deck:
  path: ~/decks/pitch.yaml

export:
  dir: /tmp/out
  formats: [png, sqlite]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.UI.StartSection != "cities" {
		t.Errorf("expected start section 'cities', got %q", cfg.UI.StartSection)
	}
	if cfg.UI.AnimationDuration() != 1200*time.Millisecond {
		t.Errorf("expected 1.2s, got %v", cfg.UI.AnimationDuration())
	}
	if cfg.UI.FrameMs != 33 || cfg.UI.RailWidth != 36 {
		t.Errorf("frame/rail = %d/%d", cfg.UI.FrameMs, cfg.UI.RailWidth)
	}
	if cfg.UI.MouseEnabled() {
		t.Error("mouse should be off")
	}
	if cfg.UI.Keys.Next != "n" || cfg.UI.Keys.Prev != "p" {
		t.Errorf("keys = %+v", cfg.UI.Keys)
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "decks/pitch.yaml"); cfg.Deck.Path != want {
		t.Errorf("expected expanded path %q, got %q", want, cfg.Deck.Path)
	}
	if cfg.Export.Dir != "/tmp/out" || !slices.Equal(cfg.Export.Formats, []string{"png", "sqlite"}) {
		t.Errorf("export = %+v", cfg.Export)
	}
}

func TestLoadFrom_NormalizesBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config)
	}{
		{"zero frame", "ui:\n  frame_ms: 0\n", func(t *testing.T, cfg Config) {
			if cfg.UI.FrameMs != 16 {
				t.Errorf("FrameMs = %d", cfg.UI.FrameMs)
			}
		}},
		{"negative animation", "ui:\n  animation_ms: -5\n", func(t *testing.T, cfg Config) {
			if cfg.UI.AnimationMs != 2000 {
				t.Errorf("AnimationMs = %d", cfg.UI.AnimationMs)
			}
		}},
		{"zero animation allowed", "ui:\n  animation_ms: 0\n", func(t *testing.T, cfg Config) {
			if cfg.UI.AnimationMs != 0 {
				t.Errorf("AnimationMs = %d, want 0 (static counters)", cfg.UI.AnimationMs)
			}
		}},
		{"narrow rail", "ui:\n  rail_width: 4\n", func(t *testing.T, cfg Config) {
			if cfg.UI.RailWidth != 30 {
				t.Errorf("RailWidth = %d", cfg.UI.RailWidth)
			}
		}},
		{"multi-letter key", "ui:\n  keys:\n    next: down\n", func(t *testing.T, cfg Config) {
			if cfg.UI.Keys.Next != "j" {
				t.Errorf("Next = %q", cfg.UI.Keys.Next)
			}
		}},
		{"same keys", "ui:\n  keys:\n    next: x\n    prev: x\n", func(t *testing.T, cfg Config) {
			if cfg.UI.Keys != DefaultConfig().UI.Keys {
				t.Errorf("Keys = %+v", cfg.UI.Keys)
			}
		}},
		{"empty formats", "export:\n  formats: []\n", func(t *testing.T, cfg Config) {
			if len(cfg.Export.Formats) != 3 {
				t.Errorf("Formats = %v", cfg.Export.Formats)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFrom(path)
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	off := false
	cfg := DefaultConfig()
	cfg.UI.StartSection = "risks"
	cfg.UI.Mouse = &off
	cfg.Deck.Path = "/decks/q3.yaml"
	cfg.Export.Formats = []string{"sqlite"}

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}

	if loaded.UI.StartSection != "risks" || loaded.UI.MouseEnabled() {
		t.Errorf("ui = %+v", loaded.UI)
	}
	if loaded.Deck.Path != "/decks/q3.yaml" {
		t.Errorf("deck path = %q", loaded.Deck.Path)
	}
	if !slices.Equal(loaded.Export.Formats, []string{"sqlite"}) {
		t.Errorf("formats = %v", loaded.Export.Formats)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".config-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestSave_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := Save(DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ConfigPath()); err != nil {
		t.Errorf("config not written to %s: %v", ConfigPath(), err)
	}
	cfg, err := Load()
	if err != nil || cfg.UI.StartSection != "exec" {
		t.Errorf("Load = %+v, %v", cfg, err)
	}
}

func TestResolveDeckPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Deck.Path = "/from/config.yaml"

	t.Setenv(EnvDeck, "")
	if got := cfg.ResolveDeckPath(""); got != "/from/config.yaml" {
		t.Errorf("config only = %q", got)
	}

	t.Setenv(EnvDeck, "/from/env.yaml")
	if got := cfg.ResolveDeckPath(""); got != "/from/env.yaml" {
		t.Errorf("env over config = %q", got)
	}
	if got := cfg.ResolveDeckPath("/from/flag.yaml"); got != "/from/flag.yaml" {
		t.Errorf("flag over env = %q", got)
	}

	t.Setenv(EnvDeck, "")
	if got := DefaultConfig().ResolveDeckPath(""); got != "" {
		t.Errorf("nothing set = %q, want empty", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigDir()
	expected := filepath.Join(dir, "gtmdeck")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestStateDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	got := StateDir()
	expected := filepath.Join(dir, "gtmdeck")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}
