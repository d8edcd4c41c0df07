package draw

import (
	"image/color"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/gasbox/internal/physics"
)

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = "█"
	BlockUpperHalf = "▀"
	BlockLowerHalf = "▄"
)

// maxColors is the number of distinct colours a canvas can hold; index 0 is empty.
const maxColors = 255

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Each pixel holds a colour index. Logical coordinates are scaled to terminal pixels.
type Canvas struct {
	termWidth      int     // Actual terminal columns
	termHeight     int     // Actual terminal rows
	subPixelHeight int     // termHeight * 2
	pixels         []uint8 // Flat slice: [y * termWidth + x], 0 = empty

	// Scaling from logical to pixel coordinates
	logicalWidth  float64
	logicalHeight float64
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offsets for centering the render area.
	offsetCol int
	offsetRow int

	palette  []color.RGBA // palette[i-1] is the colour of pixel value i
	renderer *lipgloss.Renderer
	cells    map[uint16]string // Styled cell strings keyed by top<<8 | bottom

	// Reusable buffers to reduce allocations
	renderBuf       strings.Builder
	scaledBuf       []Point
	intersectionBuf []float64
	polygonBuf      []Point
}

// NewScaledCanvas creates a canvas that maps a logicalWidth x logicalHeight
// area onto termWidth x termHeight terminal cells.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		cells:         make(map[uint16]string),
	}
	c.SetRenderer(lipgloss.NewRenderer(io.Discard))
	c.renderer.SetColorProfile(termenv.Ascii)
	c.Resize(termWidth, termHeight)
	return c
}

// SetRenderer sets the lipgloss renderer used to style cells. Each output
// (a local terminal or an SSH session) should have its own renderer.
func (c *Canvas) SetRenderer(r *lipgloss.Renderer) {
	c.renderer = r
	clear(c.cells)
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	if termWidth < 0 {
		termWidth = 0
	}
	if termHeight < 0 {
		termHeight = 0
	}
	subPixelHeight := termHeight * 2

	if termWidth != c.termWidth || termHeight != c.termHeight || c.pixels == nil {
		c.pixels = make([]uint8, subPixelHeight*termWidth)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
	}

	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// SetLogicalSize changes the logical area mapped onto the terminal.
func (c *Canvas) SetLogicalSize(width, height float64) {
	c.logicalWidth = width
	c.logicalHeight = height
	c.Resize(c.termWidth, c.termHeight)
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// colorIndex returns the pixel value for col, registering it if needed.
// When the table is full the closest registered colour is reused.
func (c *Canvas) colorIndex(col color.Color) uint8 {
	rgba := toRGBA(col)
	for i, p := range c.palette {
		if p == rgba {
			return uint8(i + 1)
		}
	}
	if len(c.palette) < maxColors {
		c.palette = append(c.palette, rgba)
		return uint8(len(c.palette))
	}

	best, bestDist := 0, math.MaxInt
	for i, p := range c.palette {
		dr, dg, db := int(p.R)-int(rgba.R), int(p.G)-int(rgba.G), int(p.B)-int(rgba.B)
		if d := dr*dr + dg*dg + db*db; d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best + 1)
}

func toRGBA(col color.Color) color.RGBA {
	if col == nil {
		return color.RGBA{}
	}
	if rgba, ok := col.(color.RGBA); ok {
		return rgba
	}
	r, g, b, a := col.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// setPixel sets a pixel at actual terminal coordinates (no scaling).
func (c *Canvas) setPixel(x, y int, v uint8) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = v
	}
}

// At returns the colour of the pixel at terminal pixel coordinates, or nil if empty.
func (c *Canvas) At(x, y int) color.Color {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight {
		return nil
	}
	v := c.pixels[y*c.termWidth+x]
	if v == 0 {
		return nil
	}
	return c.palette[v-1]
}

// DrawCircle draws a filled disc with an outline. Discs smaller than a pixel
// still light the pixel under their center.
func (c *Canvas) DrawCircle(center physics.Vec2, radius float64, fill, stroke color.Color, strokeWidth float64) {
	pixelR := radius * math.Max(c.scaleX, c.scaleY)
	segments := int(2 * math.Pi * pixelR)
	segments = max(8, min(segments, 48))

	points := c.BorrowPoints(segments)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		points[i] = Point{
			X: center.X + radius*math.Cos(angle),
			Y: center.Y + radius*math.Sin(angle),
		}
	}

	if fill != nil {
		fillIdx := c.colorIndex(fill)
		c.fillPolygon(points, fillIdx)
		c.setPixel(int(center.X*c.scaleX), int(center.Y*c.scaleY), fillIdx)
	}
	if stroke != nil && strokeWidth > 0 && pixelR >= 1.5 {
		strokeIdx := c.colorIndex(stroke)
		for i := range points {
			c.DrawLine(points[i], points[(i+1)%len(points)], strokeIdx)
		}
	}
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, v uint8) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, v)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// fillPolygon fills a polygon using scanline algorithm.
// Works in pixel space for proper scaling.
func (c *Canvas) fillPolygon(points []Point, v uint8) {
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	for i, p := range points {
		scaled[i] = Point{
			X: p.X * c.scaleX,
			Y: p.Y * c.scaleY,
		}
	}

	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	yStart := max(int(math.Floor(minY)), 0)
	yEnd := min(int(math.Ceil(maxY)), c.subPixelHeight-1)

	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5

		intersections := c.intersectionBuf[:0]

		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]

			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				x := p1.X + t*(p2.X-p1.X)
				intersections = append(intersections, x)
			}
		}

		// Store back in case it grew
		c.intersectionBuf = intersections

		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i] - 0.5))
			xEnd := int(math.Floor(intersections[i+1] - 0.5))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y, v)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1400 bytes stays under a typical MTU for smooth SSH/network transmission.
const maxChunkSize = 1400

// Render outputs the canvas to w. Every row is written in full, so the
// previous frame never needs clearing.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 4)

	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		writeCursor(&c.renderBuf, c.offsetCol+1, row+1+c.offsetRow)
		for col := 0; col < c.termWidth; col++ {
			c.renderBuf.WriteString(c.cell(c.pixels[topOffset+col], c.pixels[bottomOffset+col]))
		}
	}

	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// cell returns the styled string for a terminal cell from its two pixels.
func (c *Canvas) cell(top, bottom uint8) string {
	if top == 0 && bottom == 0 {
		return " "
	}

	key := uint16(top)<<8 | uint16(bottom)
	if s, ok := c.cells[key]; ok {
		return s
	}

	style := c.renderer.NewStyle()
	var glyph string
	switch {
	case top == bottom:
		glyph = BlockFull
		style = style.Foreground(lipglossColor(c.palette[top-1]))
	case bottom == 0:
		glyph = BlockUpperHalf
		style = style.Foreground(lipglossColor(c.palette[top-1]))
	case top == 0:
		glyph = BlockLowerHalf
		style = style.Foreground(lipglossColor(c.palette[bottom-1]))
	default:
		glyph = BlockUpperHalf
		style = style.
			Foreground(lipglossColor(c.palette[top-1])).
			Background(lipglossColor(c.palette[bottom-1]))
	}

	s := style.Render(glyph)
	c.cells[key] = s
	return s
}

func lipglossColor(col color.RGBA) lipgloss.Color {
	return lipgloss.Color(hexString(col))
}

func hexString(col color.RGBA) string {
	const digits = "0123456789ABCDEF"
	return string([]byte{'#',
		digits[col.R>>4], digits[col.R&0xF],
		digits[col.G>>4], digits[col.G&0xF],
		digits[col.B>>4], digits[col.B&0xF],
	})
}

// RenderBorder draws a box around the canvas area when there is room for it.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	line := strings.Repeat("─", c.termWidth)

	if hasV {
		if hasH {
			writeCursor(&buf, left, top)
			buf.WriteString("┌" + line + "┐")
			writeCursor(&buf, left, bottom)
			buf.WriteString("└" + line + "┘")
		} else {
			writeCursor(&buf, c.offsetCol+1, top)
			buf.WriteString(line)
			writeCursor(&buf, c.offsetCol+1, bottom)
			buf.WriteString(line)
		}
	}

	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			writeCursor(&buf, left, row)
			buf.WriteString("│")
			writeCursor(&buf, right, row)
			buf.WriteString("│")
		}
	}

	io.WriteString(w, buf.String())
}

// LogicalWidth returns the logical width.
func (c *Canvas) LogicalWidth() float64 {
	return c.logicalWidth
}

// LogicalHeight returns the logical height.
func (c *Canvas) LogicalHeight() float64 {
	return c.logicalHeight
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// BorrowPoints returns a reusable slice of Points with the given length.
// The returned slice is only valid until the next call to BorrowPoints.
func (c *Canvas) BorrowPoints(n int) []Point {
	if cap(c.polygonBuf) < n {
		c.polygonBuf = make([]Point, n)
	}
	return c.polygonBuf[:n]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
