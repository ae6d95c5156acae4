package deck

// Palette colors as hex strings. Tones in deck files name the accent
// entries; the rest are surface and text colors shared by every renderer.
const (
	ColorBackground    = "#0B0F1A"
	ColorSurface       = "#111827"
	ColorCard          = "#1A2234"
	ColorCardHover     = "#1E2A40"
	ColorBorder        = "#2A3A52"
	ColorAccent        = "#F97316"
	ColorAccentDim     = "#EA580C"
	ColorGreen         = "#22C55E"
	ColorRed           = "#EF4444"
	ColorBlue          = "#3B82F6"
	ColorPurple        = "#A855F7"
	ColorYellow        = "#EAB308"
	ColorCyan          = "#06B6D4"
	ColorText          = "#F1F5F9"
	ColorTextSecondary = "#94A3B8"
	ColorTextDim       = "#64748B"
)

var tones = map[string]string{
	"accent": ColorAccent,
	"green":  ColorGreen,
	"red":    ColorRed,
	"blue":   ColorBlue,
	"purple": ColorPurple,
	"yellow": ColorYellow,
	"cyan":   ColorCyan,
	"muted":  ColorTextDim,
	"text":   ColorText,
}

// ToneColor returns the hex color for a tone name. Unknown and empty tones
// map to the accent color.
func ToneColor(tone string) string {
	if c, ok := tones[tone]; ok {
		return c
	}
	return ColorAccent
}
