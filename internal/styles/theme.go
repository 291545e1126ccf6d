package styles

import "strings"

// tailwind shades used by the preset gradient tokens
var palette = map[string]string{
	"purple-400": "#c084fc",
	"purple-500": "#a855f7",
	"purple-600": "#9333ea",
	"pink-400":   "#f472b6",
	"pink-500":   "#ec4899",
	"pink-600":   "#db2777",
	"red-600":    "#dc2626",
	"orange-600": "#ea580c",
	"blue-400":   "#60a5fa",
	"blue-500":   "#3b82f6",
	"blue-600":   "#2563eb",
	"green-600":  "#16a34a",
	"teal-600":   "#0d9488",
}

// FallbackStops is the gradient used when a theme token names fewer than two known shades.
var FallbackStops = []string{"#9333ea", "#db2777"}

// GradientStops converts a "from-x via-y to-z" theme token into hex color stops.
func GradientStops(theme string) []string {
	var stops []string
	for _, field := range strings.Fields(theme) {
		_, shade, ok := strings.Cut(field, "-")
		if !ok {
			continue
		}
		if hex, ok := palette[shade]; ok {
			stops = append(stops, hex)
		}
	}
	if len(stops) < 2 {
		return append([]string(nil), FallbackStops...)
	}
	return stops
}
