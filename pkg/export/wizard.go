// This file implements the interactive export wizard for --export-wizard.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	json "github.com/goccy/go-json"
	"golang.org/x/term"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

// WizardConfig holds the answers collected by the wizard.
type WizardConfig struct {
	OutputDir string   `json:"output_dir"`
	Formats   []string `json:"formats"`
}

// Wizard handles the interactive export flow.
type Wizard struct {
	config *WizardConfig
	deck   *deck.Deck
	out    io.Writer
	// run drives the form; tests replace it.
	run func(*huh.Form) error
}

// NewWizard creates a wizard for d, seeded with the given defaults.
func NewWizard(d *deck.Deck, defaults WizardConfig) *Wizard {
	cfg := defaults
	if len(cfg.Formats) == 0 {
		cfg.Formats = append([]string(nil), DefaultFormats...)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "gtmdeck-export"
	}
	return &Wizard{
		config: &cfg,
		deck:   d,
		out:    os.Stdout,
		run:    func(f *huh.Form) error { return f.Run() },
	}
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// Run asks for the output directory and formats, then exports.
func (w *Wizard) Run(ctx context.Context) (Result, error) {
	saved, err := LoadWizardConfig()
	if err == nil && saved != nil && saved.OutputDir != "" {
		w.config = saved
	}

	w.printBanner()

	var confirmed bool
	options := make([]huh.Option[string], 0, len(Formats))
	for _, f := range Formats {
		options = append(options, huh.NewOption(formatLabel(f), f).Selected(contains(w.config.Formats, f)))
	}
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Value(&w.config.OutputDir).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("directory is required")
					}
					return nil
				}),
			huh.NewMultiSelect[string]().
				Title("Formats").
				Options(options...).
				Value(&w.config.Formats).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return errors.New("pick at least one format")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Export %d sections?", len(w.deck.Sections))).
				Value(&confirmed).
				Affirmative("Export").
				Negative("Cancel"),
		),
	)
	if err := w.run(form); err != nil {
		return Result{}, err
	}
	if !confirmed {
		return Result{}, huh.ErrUserAborted
	}

	if err := SaveWizardConfig(w.config); err != nil {
		fmt.Fprintf(w.out, "Warning: could not save wizard settings: %v\n", err)
	}

	res, err := All(ctx, w.deck, Options{Dir: w.config.OutputDir, Formats: w.config.Formats})
	if err != nil {
		return res, err
	}
	fmt.Fprintf(w.out, "✓ %s\n", res.Summary())
	return res, nil
}

// GetConfig returns the collected wizard configuration.
func (w *Wizard) GetConfig() *WizardConfig {
	return w.config
}

func (w *Wizard) printBanner() {
	fmt.Fprintln(w.out, "")
	fmt.Fprintln(w.out, "╔════════════════════════════════════════╗")
	fmt.Fprintf(w.out, "║  %-38s║\n", "gtmdeck → Export Wizard")
	fmt.Fprintln(w.out, "╚════════════════════════════════════════╝")
	fmt.Fprintln(w.out, "")
}

func formatLabel(f string) string {
	switch f {
	case FormatMarkdown:
		return "Markdown (deck.md)"
	case FormatJSON:
		return "JSON (deck.json)"
	case FormatYAML:
		return "YAML (deck.yaml)"
	case FormatSVG:
		return "SVG per section"
	case FormatPNG:
		return "PNG per section"
	case FormatSQLite:
		return "SQLite bundle (deck.sqlite3)"
	}
	return f
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// WizardConfigPath returns the path to the wizard config file.
func WizardConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "gtmdeck", "export-wizard.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gtmdeck", "export-wizard.json")
}

// LoadWizardConfig loads previously saved wizard configuration.
func LoadWizardConfig() (*WizardConfig, error) {
	path := WizardConfigPath()
	if path == "" {
		return nil, fmt.Errorf("could not determine config path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No saved config
		}
		return nil, err
	}

	var config WizardConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveWizardConfig saves wizard configuration for future runs.
func SaveWizardConfig(config *WizardConfig) error {
	path := WizardConfigPath()
	if path == "" {
		return fmt.Errorf("could not determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
