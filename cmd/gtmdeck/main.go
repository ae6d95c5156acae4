package main

import (
	_ "github.com/vanderheijden86/gtmdeck/pkg/ttyguard"

	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/gtmdeck/internal/datasource"
	"github.com/vanderheijden86/gtmdeck/pkg/anim"
	"github.com/vanderheijden86/gtmdeck/pkg/config"
	"github.com/vanderheijden86/gtmdeck/pkg/debug"
	"github.com/vanderheijden86/gtmdeck/pkg/deck"
	"github.com/vanderheijden86/gtmdeck/pkg/export"
	"github.com/vanderheijden86/gtmdeck/pkg/metrics"
	"github.com/vanderheijden86/gtmdeck/pkg/stat"
	"github.com/vanderheijden86/gtmdeck/pkg/ui"
	"github.com/vanderheijden86/gtmdeck/pkg/version"
	"github.com/vanderheijden86/gtmdeck/pkg/watcher"
)

type options struct {
	cpuProfile   string
	help         bool
	version      bool
	deckPath     string
	section      string
	print        bool
	width        int
	json         bool
	list         bool
	count        string
	exportDir    string
	formats      string
	exportWizard bool
	watch        bool
	metrics      bool
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("gtmdeck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.StringVar(&o.deckPath, "deck", "", "Deck file or directory (default: search the working directory)")
	fs.StringVar(&o.section, "section", "", "Section id to open first")
	fs.BoolVar(&o.print, "print", false, "Render every section to stdout and exit")
	fs.IntVar(&o.width, "width", 0, "Render width for --print (default: terminal width)")
	fs.BoolVar(&o.json, "json", false, "Dump the deck as JSON and exit")
	fs.BoolVar(&o.list, "list", false, "List sections and exit")
	fs.StringVar(&o.count, "count", "", "Animate one stat value (e.g. \"$64.7B\") on a single line and exit")
	fs.StringVar(&o.exportDir, "export", "", "Export the deck into this directory and exit")
	fs.StringVar(&o.formats, "formats", "", "Comma-separated export formats (markdown,json,yaml,svg,png,sqlite)")
	fs.BoolVar(&o.exportWizard, "export-wizard", false, "Choose export directory and formats interactively")
	fs.BoolVar(&o.watch, "watch", false, "Reload the deck when its file changes")
	fs.BoolVar(&o.metrics, "metrics", false, "Print timing metrics as JSON to stderr at exit")
	err := fs.Parse(args)
	return o, fs, err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// CPU profiling support
	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if o.help {
		fmt.Fprintln(stdout, "Usage: gtmdeck [options]")
		fmt.Fprintln(stdout, "\nAn animated terminal viewer for go-to-market strategy decks.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if o.version {
		fmt.Fprintf(stdout, "gtmdeck %s\n", version.Version)
		return 0
	}

	if o.metrics {
		metrics.SetEnabled(true)
		defer func() {
			if err := metrics.WriteSummary(stderr); err != nil {
				fmt.Fprintf(stderr, "Error writing metrics: %v\n", err)
			}
		}()
	}

	if o.count != "" {
		return runCount(o.count, stdout)
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v, using defaults\n", cfgErr)
		cfg = config.DefaultConfig()
	}

	deckPath := cfg.ResolveDeckPath(o.deckPath)
	d, src, err := datasource.LoadDeck(deckPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading deck: %v\n", err)
		return 1
	}
	debug.Dump("source", src)

	switch {
	case o.json:
		data, err := deck.Encode(d, deck.FormatJSON)
		if err != nil {
			fmt.Fprintf(stderr, "Error encoding deck: %v\n", err)
			return 1
		}
		_, _ = stdout.Write(append(data, '\n'))
		return 0

	case o.list:
		for i, s := range d.Sections {
			fmt.Fprintf(stdout, "%2d  %-12s %s\n", i+1, s.ID, s.Label)
		}
		return 0

	case o.print:
		width := o.width
		if width <= 0 {
			width = terminalWidth()
		}
		if err := ui.PrintDeck(stdout, d, width); err != nil {
			fmt.Fprintf(stderr, "Error printing deck: %v\n", err)
			return 1
		}
		return 0

	case o.exportWizard:
		w := export.NewWizard(d, export.WizardConfig{OutputDir: cfg.Export.Dir, Formats: cfg.Export.Formats})
		if _, err := w.Run(context.Background()); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(stdout, "Export cancelled")
				return 0
			}
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return 1
		}
		return 0

	case o.exportDir != "":
		formats := cfg.Export.Formats
		if o.formats != "" {
			formats, err = export.ParseFormats(o.formats)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return 2
			}
		}
		res, err := export.All(context.Background(), d, export.Options{Dir: o.exportDir, Formats: formats})
		if err != nil {
			fmt.Fprintf(stderr, "Export failed: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, res.Summary())
		return 0
	}

	return runTUI(o, cfg, d, src, stderr)
}

// runCount animates a single stat on one line and prints the final value.
// A value that does not parse is printed as written.
func runCount(raw string, stdout io.Writer) int {
	v, ok := stat.Parse(raw)
	if !ok {
		debug.Log("count: %q is not numeric, printing as is", raw)
		fmt.Fprintln(stdout, raw)
		return 0
	}
	done := make(chan struct{})
	cancel := anim.Run(anim.TimerScheduler{}, time.Now(), v.Magnitude, config.DefaultConfig().UI.AnimationDuration(),
		func(value float64, last bool) {
			if last {
				fmt.Fprintf(stdout, "\r%s\n", v.Final())
				close(done)
				return
			}
			fmt.Fprintf(stdout, "\r%s", v.Format(value))
		})
	defer cancel()
	<-done
	return 0
}

// watchTarget is the deck file named by flag, env or config, or else the
// directory discovery searched.
func watchTarget(deckPath string) string {
	if deckPath == "" {
		return "."
	}
	return deckPath
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

// openDebugLog sends debug output to a file while the TUI owns the screen.
func openDebugLog() (func(), error) {
	dir := config.StateDir()
	if dir == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	debug.SetOutput(f)
	return func() { _ = f.Close() }, nil
}

func runTUI(o options, cfg config.Config, d *deck.Deck, src datasource.DataSource, stderr io.Writer) int {
	if debug.Enabled() {
		closeLog, err := openDebugLog()
		if err != nil {
			fmt.Fprintf(stderr, "Warning: debug log: %v\n", err)
		} else {
			defer closeLog()
		}
	}
	debug.Section("tui")

	opts := ui.Options{Config: cfg, Start: o.section, Source: src}
	if o.watch {
		target := watchTarget(cfg.ResolveDeckPath(o.deckPath))
		r, err := watcher.NewReloader(target, d, nil)
		if err == nil {
			err = r.Start()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Error watching %s: %v\n", target, err)
			return 1
		}
		defer r.Close()
		w := r.Watcher()
		debug.Log("watch: %s (discovery=%v, polling=%v)", w.Path(), w.Discovery(), w.IsPolling())
		opts.Reloader = r
	}

	m, err := ui.NewModel(d, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := runTUIProgram(m, cfg.UI.MouseEnabled()); err != nil {
		fmt.Fprintf(stderr, "Error running deck viewer: %v\n", err)
		return 1
	}
	return 0
}

func runTUIProgram(m ui.Model, mouse bool) error {
	defer debug.LogEnterExit("runTUIProgram")()

	popts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if mouse {
		popts = append(popts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, popts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	// Optional auto-quit for automated tests: set GTMDECK_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("GTMDECK_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted) {
		return nil
	}
	return err
}
