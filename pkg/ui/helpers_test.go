package ui

import (
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "zero max", input: "hello", maxLen: 0, want: ""},
		{name: "fits", input: "hello", maxLen: 10, want: "hello"},
		{name: "ellipsis", input: "Executive Summary", maxLen: 8, want: "Executi…"},
		{name: "wide runes", input: "日本語タイトル", maxLen: 7, want: "日本語…"},
		{name: "only room for suffix", input: "abc", maxLen: 1, want: "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q; want %q", tt.input, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncate output is not valid UTF-8: %q", got)
			}
			if w := runewidth.StringWidth(got); w > tt.maxLen {
				t.Fatalf("truncate output is %d cells; max %d", w, tt.maxLen)
			}
		})
	}
}

func TestPadRightCountsCells(t *testing.T) {
	if got := padRight("日本", 6); got != "日本  " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("toolong", 3); got != "toolong" {
		t.Errorf("padRight should not cut, got %q", got)
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("the quick brown fox jumps", 10)
	want := []string{"the quick", "brown fox", "jumps"}
	if !slices.Equal(got, want) {
		t.Errorf("wrapText = %q, want %q", got, want)
	}

	for _, line := range wrapText("supercalifragilistic word", 8) {
		if runewidth.StringWidth(line) > 8 {
			t.Errorf("line %q exceeds width", line)
		}
	}

	if got := wrapText("a\n\nb", 5); !slices.Equal(got, []string{"a", "", "b"}) {
		t.Errorf("paragraphs = %q", got)
	}
	if got := wrapText("x", 0); got != nil {
		t.Errorf("zero width = %q", got)
	}
}

func TestColumnWidths(t *testing.T) {
	tests := []struct {
		total, n, gap int
		want          []int
	}{
		{10, 2, 0, []int{5, 5}},
		{11, 2, 1, []int{5, 5}},
		{12, 3, 1, []int{4, 3, 3}},
		{5, 0, 1, nil},
	}
	for _, tt := range tests {
		got := columnWidths(tt.total, tt.n, tt.gap)
		if !slices.Equal(got, tt.want) {
			t.Errorf("columnWidths(%d, %d, %d) = %v, want %v", tt.total, tt.n, tt.gap, got, tt.want)
		}
	}
}

func TestRenderMiniBar(t *testing.T) {
	theme := TestTheme()
	for _, v := range []float64{-1, 0, 0.5, 1, 2} {
		bar := RenderMiniBar(v, 10, theme, "accent")
		plain := stripANSI(bar)
		if n := utf8.RuneCountInString(plain); n != 10 {
			t.Errorf("RenderMiniBar(%v) has %d cells", v, n)
		}
	}
	if got := stripANSI(RenderMiniBar(0.5, 10, theme, "accent")); strings.Count(got, glyphFilled) != 5 {
		t.Errorf("half bar = %q", got)
	}
	if RenderMiniBar(1, 0, theme, "") != "" {
		t.Error("zero width should render nothing")
	}
}
