package models

import (
	"fmt"
	"math"
)

// Color is an opaque display token stored as four normalized channels.
type Color struct {
	R float64 `json:"r" binding:"color_channel"`
	G float64 `json:"g" binding:"color_channel"`
	B float64 `json:"b" binding:"color_channel"`
	A float64 `json:"a" binding:"color_channel"`
}

// NewColor builds a Color, clamping every channel into [0, 1].
func NewColor(r, g, b, a float64) Color {
	return Color{R: clampUnit(r), G: clampUnit(g), B: clampUnit(b), A: clampUnit(a)}
}

// Hex renders the color as #RRGGBB, ignoring alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", toByte(c.R), toByte(c.G), toByte(c.B))
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func toByte(v float64) int {
	return int(math.Round(clampUnit(v) * 255))
}
