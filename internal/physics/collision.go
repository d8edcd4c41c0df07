package physics

import "math"

// Body is the part of a particle the collision resolver reads and writes.
type Body struct {
	Pos  Vec2
	Vel  Vec2
	Mass float64
}

// Momentum returns m·v.
func (b Body) Momentum() Vec2 {
	return b.Vel.Scale(b.Mass)
}

// KineticEnergy returns ½·m·|v|².
func (b Body) KineticEnergy() float64 {
	return 0.5 * b.Mass * b.Vel.LenSquared()
}

// Approach measures how fast a and b close on each other along the line of
// centers: (a.Vel - b.Vel) · (b.Pos - a.Pos). Negative means separating.
func Approach(a, b *Body) float64 {
	return a.Vel.Sub(b.Vel).Dot(b.Pos.Sub(a.Pos))
}

// Resolve applies a perfectly elastic collision between a and b.
//
// Both velocities are rotated into the frame whose x-axis is the line from a
// to b, the x-components are exchanged with the 1-D elastic formula, and the
// results are rotated back. Tangential components are untouched. Separating
// pairs are left alone so a contact that spans several frames is resolved once.
//
// Returns true if the velocities were updated.
func Resolve(a, b *Body) bool {
	if Approach(a, b) < 0 {
		return false
	}

	// atan2(0, 0) is 0, so coincident centers resolve along the x-axis.
	angle := -math.Atan2(b.Pos.Y-a.Pos.Y, b.Pos.X-a.Pos.X)

	m1, m2 := a.Mass, b.Mass
	total := m1 + m2

	u1 := Rotate(a.Vel, angle)
	u2 := Rotate(b.Vel, angle)

	v1 := Vec2{X: u1.X*(m1-m2)/total + u2.X*2*m2/total, Y: u1.Y}
	v2 := Vec2{X: u2.X*(m2-m1)/total + u1.X*2*m1/total, Y: u2.Y}

	a.Vel = Rotate(v1, -angle)
	b.Vel = Rotate(v2, -angle)
	return true
}
