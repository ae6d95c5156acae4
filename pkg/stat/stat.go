// Package stat parses formatted headline numbers such as "$64.7B" or "~50K"
// and re-renders them at an arbitrary magnitude, keeping the original prefix
// and unit so animation frames look like the final value.
package stat

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// statPattern matches prefix, numeric literal and suffix end-to-end.
var statPattern = regexp.MustCompile(`(?i)^([~<>$-]*)([\d,.]+)([BMK%+]*)$`)

// Value is a parsed stat string.
type Value struct {
	Prefix    string  // Leading literal characters, kept verbatim ("$", "~", "<$")
	Magnitude float64 // Numeric value with thousands separators stripped
	Suffix    string  // Trailing unit letters, kept verbatim ("B", "M+", "%")
}

// Parse splits raw into prefix, magnitude and suffix. It returns false when
// raw does not have that shape or the literal is not a finite number.
func Parse(raw string) (Value, bool) {
	m := statPattern.FindStringSubmatch(raw)
	if m == nil {
		return Value{}, false
	}
	literal := m[2]
	if strings.Count(literal, ".") > 1 {
		return Value{}, false
	}
	num, err := strconv.ParseFloat(strings.ReplaceAll(literal, ",", ""), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return Value{}, false
	}
	return Value{Prefix: m[1], Magnitude: num, Suffix: m[3]}, true
}

// Format renders current using the precision rule selected by the suffix.
func (v Value) Format(current float64) string {
	return v.Prefix + formatNumber(v.Suffix, current) + v.Suffix
}

// Final renders the value at its own magnitude.
func (v Value) Final() string {
	return v.Format(v.Magnitude)
}

// Display formats raw at current when raw parses, and returns raw untouched
// otherwise.
func Display(raw string, current float64) string {
	v, ok := Parse(raw)
	if !ok {
		return raw
	}
	return v.Format(current)
}

func formatNumber(suffix string, n float64) string {
	upper := strings.ToUpper(suffix)
	switch {
	case strings.Contains(upper, "B"):
		return strconv.FormatFloat(n, 'f', 1, 64)
	case strings.Contains(upper, "M"), strings.Contains(upper, "K"):
		if n < 10 {
			return strconv.FormatFloat(n, 'f', 1, 64)
		}
		return strconv.FormatFloat(math.Round(n), 'f', 0, 64)
	case strings.Contains(upper, "%"):
		return strconv.FormatFloat(math.Round(n), 'f', 0, 64)
	default:
		rounded := math.Round(n)
		if rounded >= 100 {
			return humanize.Commaf(rounded)
		}
		return strconv.FormatFloat(rounded, 'f', 0, 64)
	}
}
