package renderer

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

// RGB is a palette colour.
type RGB struct{ R, G, B int32 }

var (
	Black    = RGB{0, 0, 0}
	Ink      = RGB{239, 246, 255} // blue-50
	Violet   = RGB{196, 181, 253} // violet-300
	Accent   = RGB{139, 92, 246}  // violet-500
	Muted    = RGB{120, 120, 140}
	Panel    = RGB{18, 12, 36}
	Danger   = RGB{248, 113, 113}
	Positive = RGB{134, 239, 172}
)

// Blend mixes c over bg with opacity a.
func Blend(bg, c RGB, a float64) RGB {
	a = math.Max(0, math.Min(1, a))
	mix := func(x, y int32) int32 { return x + int32(math.Round(float64(y-x)*a)) }
	return RGB{mix(bg.R, c.R), mix(bg.G, c.G), mix(bg.B, c.B)}
}

// Color converts to a tcell colour.
func (c RGB) Color() tcell.Color {
	return tcell.NewRGBColor(c.R, c.G, c.B)
}

// Style returns a style with fg over bg.
func Style(fg, bg RGB) tcell.Style {
	return tcell.StyleDefault.Foreground(fg.Color()).Background(bg.Color())
}
