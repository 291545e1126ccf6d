package web

import (
	"strings"

	"github.com/desertthunder/vidstyle/internal/styles"
)

var fallbackGradient = gradient(styles.FallbackStops)

// GradientCSS converts a preset theme token into a CSS linear-gradient.
func GradientCSS(theme string) string {
	return gradient(styles.GradientStops(theme))
}

func gradient(stops []string) string {
	return "linear-gradient(90deg, " + strings.Join(stops, ", ") + ")"
}
