package object

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/gasbox/internal/physics"
)

type recordedCircle struct {
	center physics.Vec2
	radius float64
	fill   color.Color
	stroke color.Color
	width  float64
}

type recordingRenderer struct {
	circles []recordedCircle
}

func (r *recordingRenderer) DrawCircle(center physics.Vec2, radius float64, fill, stroke color.Color, strokeWidth float64) {
	r.circles = append(r.circles, recordedCircle{center, radius, fill, stroke, strokeWidth})
}

var testLook = Appearance{Fill: DefaultPalette[0], Stroke: DefaultPalette[1], StrokeWidth: 1}

func particleAt(x, y, vx, vy float64) Particle {
	return NewParticle(physics.Vec2{X: x, Y: y}, physics.Vec2{X: vx, Y: vy}, 4, 1, testLook)
}

func stepAll(particles []Particle, bounds Bounds, r Renderer) int {
	q := physics.NewAllPairs()
	positions := make([]physics.Vec2, len(particles))
	for i := range particles {
		positions[i] = particles[i].Pos
	}
	q.Rebuild(positions, 0)

	total := 0
	for i := range particles {
		total += particles[i].Update(UpdateContext{
			Index:     i,
			Particles: particles,
			Neighbors: q,
			Bounds:    bounds,
			Renderer:  r,
		})
	}
	return total
}

func TestParticle_UpdateDrawsBeforeMoving(t *testing.T) {
	particles := []Particle{particleAt(50, 50, 1, 2)}
	r := &recordingRenderer{}

	stepAll(particles, Bounds{Width: 100, Height: 100}, r)

	require.Len(t, r.circles, 1)
	assert.Equal(t, physics.Vec2{X: 50, Y: 50}, r.circles[0].center)
	assert.Equal(t, 4.0, r.circles[0].radius)
	assert.Equal(t, color.Color(DefaultPalette[0]), r.circles[0].fill)
	assert.Equal(t, color.Color(DefaultPalette[1]), r.circles[0].stroke)
	assert.Equal(t, 1.0, r.circles[0].width)

	assert.Equal(t, physics.Vec2{X: 51, Y: 52}, particles[0].Pos)
}

func TestParticle_UpdateHeadlessWithNilRenderer(t *testing.T) {
	particles := []Particle{particleAt(50, 50, 1, 0)}
	assert.NotPanics(t, func() { stepAll(particles, Bounds{Width: 100, Height: 100}, nil) })
}

func TestParticle_OverlappingHeadOnPairExchanges(t *testing.T) {
	particles := []Particle{
		particleAt(10, 20, 1, 0),
		particleAt(17, 20, -1, 0),
	}

	n := stepAll(particles, Bounds{Width: 100, Height: 100}, nil)

	assert.Equal(t, 1, n, "the pair only touches once the first particle has moved")
	assert.InDelta(t, -1.0, particles[0].Vel.X, 1e-9)
	assert.InDelta(t, 1.0, particles[1].Vel.X, 1e-9)
	assert.InDelta(t, 9.0, particles[0].Pos.X, 1e-9)
	assert.InDelta(t, 18.0, particles[1].Pos.X, 1e-9)
}

func TestParticle_TouchingPairIsNotACollision(t *testing.T) {
	particles := []Particle{
		particleAt(10, 20, 0, 1),
		particleAt(18, 20, 0, -1),
	}

	n := stepAll(particles, Bounds{Width: 100, Height: 100}, nil)

	assert.Zero(t, n)
	assert.InDelta(t, 1.0, particles[0].Vel.Y, 1e-9)
	assert.InDelta(t, -1.0, particles[1].Vel.Y, 1e-9)
}

func TestParticle_UnequalRadiiUseSumOfRadii(t *testing.T) {
	big := NewParticle(physics.Vec2{X: 20, Y: 20}, physics.Vec2{X: 1}, 10, 1, testLook)
	small := NewParticle(physics.Vec2{X: 31, Y: 20}, physics.Vec2{X: -1}, 2, 1, testLook)
	particles := []Particle{big, small}

	assert.Equal(t, 1, stepAll(particles, Bounds{Width: 100, Height: 100}, nil))
}

func TestParticle_WallReflection(t *testing.T) {
	bounds := Bounds{Width: 100, Height: 80}

	tests := []struct {
		name    string
		p       Particle
		wantVel physics.Vec2
	}{
		{"left_wall", particleAt(4, 40, -1, 0.5), physics.Vec2{X: 1, Y: 0.5}},
		{"right_wall", particleAt(96, 40, 1, 0.5), physics.Vec2{X: -1, Y: 0.5}},
		{"top_wall", particleAt(50, 3.5, 0.2, -1), physics.Vec2{X: 0.2, Y: 1}},
		{"bottom_wall", particleAt(50, 76.5, 0.2, 1), physics.Vec2{X: 0.2, Y: -1}},
		{"corner_flips_both", particleAt(4, 4, -1, -1), physics.Vec2{X: 1, Y: 1}},
		{"already_leaving_wall", particleAt(3, 40, 1, 0), physics.Vec2{X: 1, Y: 0}},
		{"interior", particleAt(50, 40, -1, -1), physics.Vec2{X: -1, Y: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			particles := []Particle{tt.p}
			stepAll(particles, bounds, nil)
			assert.InDelta(t, tt.wantVel.X, particles[0].Vel.X, 1e-9)
			assert.InDelta(t, tt.wantVel.Y, particles[0].Vel.Y, 1e-9)
			assert.Equal(t, tt.p.Pos.Add(tt.wantVel), particles[0].Pos)
		})
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#2185C5")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette[0], c)

	c, err = ParseHexColor("ff7f66")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette[3], c)

	_, err = ParseHexColor("#12345")
	assert.Error(t, err)
	_, err = ParseHexColor("#GGGGGG")
	assert.Error(t, err)

	assert.Equal(t, "#7ECEFD", HexColor(DefaultPalette[1]))
}

func TestBounds_Center(t *testing.T) {
	assert.Equal(t, physics.Vec2{X: 250, Y: 200}, Bounds{Width: 500, Height: 400}.Center())
}
