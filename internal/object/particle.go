package object

import (
	"github.com/tomz197/gasbox/internal/physics"
)

// Particle is a rigid disc in the gas.
type Particle struct {
	physics.Body
	Radius     float64
	Appearance Appearance
}

// NewParticle creates a particle at pos moving with vel.
func NewParticle(pos, vel physics.Vec2, radius, mass float64, look Appearance) Particle {
	return Particle{
		Body:       physics.Body{Pos: pos, Vel: vel, Mass: mass},
		Radius:     radius,
		Appearance: look,
	}
}

// Update advances the particle one frame: draw, resolve contacts, reflect off
// walls, then move. It must be called on &ctx.Particles[ctx.Index].
//
// Contacts mutate the other particle's velocity in place, so later particles in
// the same frame see the updated values. Returns the number of contacts resolved.
func (p *Particle) Update(ctx UpdateContext) int {
	if ctx.Renderer != nil {
		p.Draw(ctx.Renderer)
	}

	resolved := 0
	if ctx.Neighbors != nil {
		ctx.Neighbors.Candidates(p.Pos, func(j int) bool {
			if j == ctx.Index || j < 0 || j >= len(ctx.Particles) {
				return false
			}
			other := &ctx.Particles[j]
			if physics.CirclesOverlap(p.Pos, p.Radius, other.Pos, other.Radius) {
				if physics.Resolve(&p.Body, &other.Body) {
					resolved++
				}
			}
			return false
		})
	}

	p.reflect(ctx.Bounds)
	p.integrate()
	return resolved
}

// Draw renders the particle through r.
func (p *Particle) Draw(r Renderer) {
	r.DrawCircle(p.Pos, p.Radius, p.Appearance.Fill, p.Appearance.Stroke, p.Appearance.StrokeWidth)
}

// reflect flips a velocity component when the disc touches a wall while still
// moving into it. Both axes are checked, so a corner flips both.
//
// Unlike a plain flip on contact, a disc already heading away from the wall is
// left alone, so a collision kick cannot be flipped back out through the wall.
func (p *Particle) reflect(b Bounds) {
	if (p.Pos.X-p.Radius <= 0 && p.Vel.X < 0) || (p.Pos.X+p.Radius >= b.Width && p.Vel.X > 0) {
		p.Vel.X = -p.Vel.X
	}
	if (p.Pos.Y-p.Radius <= 0 && p.Vel.Y < 0) || (p.Pos.Y+p.Radius >= b.Height && p.Vel.Y > 0) {
		p.Vel.Y = -p.Vel.Y
	}
}

// integrate moves the particle by one frame of velocity.
func (p *Particle) integrate() {
	p.Pos = p.Pos.Add(p.Vel)
}
