package draw

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/gasbox/internal/physics"
)

var (
	red  = color.RGBA{R: 0xFF, A: 0xFF}
	blue = color.RGBA{B: 0xFF, A: 0xFF}
)

// newTestCanvas maps one logical unit to one pixel.
func newTestCanvas(width, height int) *Canvas {
	return NewScaledCanvas(width, height, float64(width), float64(height*2))
}

func paint(c *Canvas, x, y int, col color.Color) {
	c.setPixel(x, y, c.colorIndex(col))
}

func TestCanvas_DrawCircleFillsInterior(t *testing.T) {
	c := newTestCanvas(20, 10) // 20x20 pixels, 1:1

	c.DrawCircle(physics.Vec2{X: 10, Y: 10}, 5, red, blue, 1)

	assert.Equal(t, red, c.At(10, 10))
	assert.Equal(t, red, c.At(8, 11))
	assert.Equal(t, blue, c.At(15, 10), "outline on the rim")
	assert.Nil(t, c.At(0, 0))
	assert.Nil(t, c.At(19, 19))
	assert.Nil(t, c.At(-1, 3))
}

func TestCanvas_TinyCircleLightsCenter(t *testing.T) {
	c := NewScaledCanvas(50, 20, 500, 400) // 0.1 pixel per unit

	c.DrawCircle(physics.Vec2{X: 250, Y: 200}, 4, red, blue, 1)

	assert.Equal(t, red, c.At(25, 20))
}

func TestCanvas_ReusesColorIndices(t *testing.T) {
	c := newTestCanvas(10, 5)
	for i := 0; i < 5; i++ {
		c.DrawCircle(physics.Vec2{X: float64(i * 2), Y: 5}, 1, red, red, 1)
	}
	c.DrawCircle(physics.Vec2{X: 5, Y: 5}, 1, blue, nil, 0)

	assert.Len(t, c.palette, 2)
}

func TestCanvas_ClearAndResize(t *testing.T) {
	c := newTestCanvas(10, 5)
	paint(c, 3, 3, red)
	require.Equal(t, red, c.At(3, 3))

	c.Clear()
	assert.Nil(t, c.At(3, 3))

	c.Resize(4, 2)
	assert.Equal(t, 4, c.TerminalWidth())
	assert.Equal(t, 2, c.TerminalHeight())
	assert.Len(t, c.pixels, 4*2*2)
}

func TestCanvas_RenderHalfBlocks(t *testing.T) {
	c := newTestCanvas(3, 2) // 3x4 pixels
	paint(c, 0, 0, red)      // top half of cell (1,1)
	paint(c, 1, 1, red)      // bottom half of cell (2,1)
	paint(c, 2, 0, red)      // full cell (3,1)
	paint(c, 2, 1, red)
	paint(c, 0, 2, red) // two colours in cell (1,2)
	paint(c, 0, 3, blue)

	var buf bytes.Buffer
	c.Render(&buf)

	lines := strings.Split(buf.String(), "\033[")
	require.Len(t, lines, 3)
	assert.Equal(t, "1;1H"+BlockUpperHalf+BlockLowerHalf+BlockFull, lines[1])
	assert.Equal(t, "2;1H"+BlockUpperHalf+"  ", lines[2])
}

func TestCanvas_RenderAppliesOffset(t *testing.T) {
	c := newTestCanvas(2, 1)
	c.SetOffset(4, 2)

	var buf bytes.Buffer
	c.Render(&buf)
	assert.Equal(t, "\033[3;5H  ", buf.String())
}

func TestCanvas_RenderBorder(t *testing.T) {
	c := newTestCanvas(2, 1)
	c.SetOffset(1, 1)

	var buf bytes.Buffer
	c.RenderBorder(&buf)
	out := buf.String()

	assert.Contains(t, out, "\033[1;1H┌──┐")
	assert.Contains(t, out, "\033[3;1H└──┘")
	assert.Contains(t, out, "\033[2;1H│")
	assert.Contains(t, out, "\033[2;4H│")
}

func TestDrawList_RecordAndReplay(t *testing.T) {
	d := NewDrawList(4)
	d.DrawCircle(physics.Vec2{X: 10, Y: 10}, 5, red, blue, 1)
	d.DrawCircle(physics.Vec2{X: 2, Y: 2}, 1, blue, nil, 0)
	require.Equal(t, 2, d.Len())

	circles := d.Circles()
	assert.Equal(t, Circle{Center: physics.Vec2{X: 10, Y: 10}, Radius: 5, Fill: red, Stroke: blue, StrokeWidth: 1}, circles[0])
	assert.Equal(t, color.RGBA{}, circles[1].Stroke)

	d.Reset()
	assert.Zero(t, d.Len())
	assert.Len(t, circles, 2, "copies survive a reset")

	c := newTestCanvas(20, 10)
	Replay(circles, c)
	assert.Equal(t, red, c.At(10, 10))
	assert.Equal(t, blue, c.At(2, 2))
}

func TestChunkWriter_OffsetsAndFlushes(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 4, 2)

	cw.WriteAt(1, 1, "hi")
	assert.Zero(t, out.Len(), "nothing written before Flush")

	require.NoError(t, cw.Flush())
	assert.Equal(t, "\033[3;5Hhi", out.String())

	cw.SetOffset(0, 0)
	cw.WriteAt(2, 3, strings.Repeat("x", 3000))
	require.NoError(t, cw.Flush())
	assert.Equal(t, len("\033[3;5Hhi")+len("\033[3;2H")+3000, out.Len())
}
