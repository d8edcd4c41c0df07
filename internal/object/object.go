package object

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/tomz197/gasbox/internal/physics"
)

// Renderer draws filled, outlined circles in enclosure coordinates.
// A nil Renderer means headless: nothing is drawn.
type Renderer interface {
	DrawCircle(center physics.Vec2, radius float64, fill, stroke color.Color, strokeWidth float64)
}

// Bounds is the size of the reflective enclosure. The origin is the top-left corner.
type Bounds struct {
	Width  float64
	Height float64
}

// Center returns the middle of the enclosure.
func (b Bounds) Center() physics.Vec2 {
	return physics.Vec2{X: b.Width / 2, Y: b.Height / 2}
}

// Appearance is how a particle is drawn. The physics never reads it.
type Appearance struct {
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
}

// Palette is the set of colours appearances are picked from.
type Palette [4]color.RGBA

// DefaultPalette is blue, light blue, cream and coral.
var DefaultPalette = Palette{
	{R: 0x21, G: 0x85, B: 0xC5, A: 0xFF},
	{R: 0x7E, G: 0xCE, B: 0xFD, A: 0xFF},
	{R: 0xFF, G: 0xF6, B: 0xE5, A: 0xFF},
	{R: 0xFF, G: 0x7F, B: 0x66, A: 0xFF},
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// HexColor formats c as "#RRGGBB".
func HexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8)
}

// UpdateContext provides everything a particle needs during its per-frame step.
type UpdateContext struct {
	Index     int                   // Position of the particle being stepped in Particles
	Particles []Particle            // Every particle in the enclosure, self included
	Neighbors physics.NeighborQuery // Candidate lookup rebuilt for this frame
	Bounds    Bounds
	Renderer  Renderer // nil when headless
}
