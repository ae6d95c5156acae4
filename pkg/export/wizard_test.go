package export

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"testing"

	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

func TestNewWizardDefaults(t *testing.T) {
	w := NewWizard(deck.Default(), WizardConfig{})
	cfg := w.GetConfig()
	if cfg.OutputDir != "gtmdeck-export" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if !slices.Equal(cfg.Formats, DefaultFormats) {
		t.Errorf("Formats = %v", cfg.Formats)
	}
	cfg.Formats[0] = "changed"
	if DefaultFormats[0] == "changed" {
		t.Error("wizard config aliases DefaultFormats")
	}
}

func TestWizardConfigRoundTrip(t *testing.T) {
	if got := WizardConfigPath(); filepath.Base(filepath.Dir(got)) != "gtmdeck" {
		t.Errorf("config path = %s", got)
	}

	want := &WizardConfig{OutputDir: "/tmp/pitch", Formats: []string{"png", "sqlite"}}
	if err := SaveWizardConfig(want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadWizardConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.OutputDir != want.OutputDir || !slices.Equal(got.Formats, want.Formats) {
		t.Errorf("loaded %+v, want %+v", got, want)
	}
}

func TestWizardRunPropagatesFormError(t *testing.T) {
	w := NewWizard(deck.Default(), WizardConfig{OutputDir: t.TempDir()})
	w.out = io.Discard
	boom := errors.New("boom")
	w.run = func(*huh.Form) error { return boom }

	if _, err := w.Run(context.Background()); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}

func TestWizardRunWithoutConfirmAborts(t *testing.T) {
	w := NewWizard(deck.Default(), WizardConfig{OutputDir: t.TempDir()})
	w.out = io.Discard
	w.run = func(*huh.Form) error { return nil }

	if _, err := w.Run(context.Background()); !errors.Is(err, huh.ErrUserAborted) {
		t.Errorf("err = %v, want ErrUserAborted", err)
	}
}

func TestFormatLabelCoversEveryFormat(t *testing.T) {
	for _, f := range Formats {
		if formatLabel(f) == f {
			t.Errorf("format %q has no label", f)
		}
	}
}
