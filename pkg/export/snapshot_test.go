package export

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/gtmdeck/pkg/deck"
)

func TestSaveSectionSnapshotSVG(t *testing.T) {
	d := deck.Default()
	path := filepath.Join(t.TempDir(), "nested", "market.svg")

	if err := SaveSectionSnapshot(SnapshotOptions{Path: path, Deck: d, Section: d.Section("market")}); err != nil {
		t.Fatalf("SaveSectionSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Fatal("output is not an SVG document")
	}
	if !strings.Contains(svg, "Market Sizing") {
		t.Error("SVG should contain the section label")
	}
	if !strings.Contains(svg, "<polyline") {
		t.Error("line chart should render as a polyline")
	}
}

func TestSaveSectionSnapshotPNG(t *testing.T) {
	d := deck.Default()
	path := filepath.Join(t.TempDir(), "exec.png")

	if err := SaveSectionSnapshot(SnapshotOptions{Path: path, Deck: d, Section: d.Section("exec"), Width: 800}); err != nil {
		t.Fatalf("SaveSectionSnapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Error("output is not a PNG")
	}
}

func TestSaveSectionSnapshotErrors(t *testing.T) {
	d := deck.Default()
	dir := t.TempDir()

	tests := []struct {
		name string
		opts SnapshotOptions
	}{
		{"no section", SnapshotOptions{Path: filepath.Join(dir, "a.svg"), Deck: d}},
		{"bad format", SnapshotOptions{Path: filepath.Join(dir, "a.gif"), Format: "gif", Deck: d, Section: &d.Sections[0]}},
		{"no path", SnapshotOptions{Format: "svg", Deck: d, Section: &d.Sections[0]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SaveSectionSnapshot(tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildLayoutEverySection(t *testing.T) {
	d := deck.Default()
	for i := range d.Sections {
		s := &d.Sections[i]
		layout := buildLayout(SnapshotOptions{Deck: d, Section: s})
		if layout.Width != 1200 {
			t.Errorf("%s: width = %d, want 1200", s.ID, layout.Width)
		}
		if layout.Height <= 120 {
			t.Errorf("%s: height %d leaves no room for content", s.ID, layout.Height)
		}
		if len(layout.Ops) < 4 {
			t.Errorf("%s: only %d draw ops", s.ID, len(layout.Ops))
		}
		for _, op := range layout.Ops {
			if op.kind == opText && op.x > float64(layout.Width) {
				t.Errorf("%s: text %q starts outside the canvas", s.ID, op.text)
			}
		}
	}
}

func TestRenderSVGToWriterEscapesText(t *testing.T) {
	layout := layoutResult{Width: 100, Height: 50, Ops: []drawOp{
		{kind: opText, x: 1, y: 10, text: "A & B <C>", size: 12, fill: color.RGBA{A: 0xff}},
	}}
	var buf bytes.Buffer
	if err := renderSVGToWriter(&buf, layout); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "<C>") {
		t.Error("text should be escaped in SVG output")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  []string
	}{
		{"", 10, nil},
		{"one two three", 0, nil},
		{"one two three", 7, []string{"one two", "three"}},
		{"one two three", 100, []string{"one two three"}},
		{"supercalifragilistic word", 5, []string{"supercalifragilistic", "word"}},
	}
	for _, tt := range tests {
		got := wrap(tt.in, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#F97316", color.RGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}},
		{"0B0F1A", color.RGBA{R: 0x0b, G: 0x0f, B: 0x1a, A: 0xff}},
		{"#fff", color.RGBA{A: 0xff}},
		{"nothex", color.RGBA{A: 0xff}},
	}
	for _, tt := range tests {
		if got := hexColor(tt.in); got != tt.want {
			t.Errorf("hexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if got := css(hexColor(deck.ColorAccent)); got != "#f97316" {
		t.Errorf("css = %q", got)
	}
}

func TestToneColorFallback(t *testing.T) {
	if got := toneColor("", deck.ColorBlue); got != hexColor(deck.ColorBlue) {
		t.Errorf("empty tone should use fallback, got %v", got)
	}
	if got := toneColor("green", deck.ColorBlue); got != hexColor(deck.ColorGreen) {
		t.Errorf("green tone = %v", got)
	}
}
