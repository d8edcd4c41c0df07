package draw

import (
	"image/color"

	"github.com/tomz197/gasbox/internal/object"
	"github.com/tomz197/gasbox/internal/physics"
)

// Circle is one recorded DrawCircle call.
type Circle struct {
	Center      physics.Vec2
	Radius      float64
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
}

// DrawList records circles so a frame drawn on one goroutine can be replayed
// onto any number of canvases elsewhere.
type DrawList struct {
	circles []Circle
}

// NewDrawList returns a list with room for n circles.
func NewDrawList(n int) *DrawList {
	return &DrawList{circles: make([]Circle, 0, n)}
}

// DrawCircle records a circle.
func (d *DrawList) DrawCircle(center physics.Vec2, radius float64, fill, stroke color.Color, strokeWidth float64) {
	d.circles = append(d.circles, Circle{
		Center:      center,
		Radius:      radius,
		Fill:        toRGBA(fill),
		Stroke:      toRGBA(stroke),
		StrokeWidth: strokeWidth,
	})
}

// Reset empties the list, keeping its capacity.
func (d *DrawList) Reset() {
	d.circles = d.circles[:0]
}

// Len returns the number of recorded circles.
func (d *DrawList) Len() int {
	return len(d.circles)
}

// Circles returns a copy of the recorded circles.
func (d *DrawList) Circles() []Circle {
	out := make([]Circle, len(d.circles))
	copy(out, d.circles)
	return out
}

// Replay draws circles onto r in recorded order.
func Replay(circles []Circle, r object.Renderer) {
	for _, c := range circles {
		r.DrawCircle(c.Center, c.Radius, c.Fill, c.Stroke, c.StrokeWidth)
	}
}
