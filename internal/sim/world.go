// Package sim owns the gas: placement, the per-frame step and the restart controls.
package sim

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/tomz197/gasbox/internal/object"
	"github.com/tomz197/gasbox/internal/physics"
)

// Launch selects how initial velocities are assigned.
type Launch int

const (
	// LaunchRandom gives every particle BaseSpeed in a uniformly random direction.
	LaunchRandom Launch = iota
	// LaunchExplode gives every particle ExplodeSpeed pointing away from the enclosure center.
	LaunchExplode
)

func (l Launch) String() string {
	switch l {
	case LaunchRandom:
		return "random"
	case LaunchExplode:
		return "explode"
	default:
		return fmt.Sprintf("Launch(%d)", int(l))
	}
}

// Stats summarizes the gas after the most recent frame.
type Stats struct {
	Frame         uint64
	Particles     int
	Collisions    int // Contacts resolved during the last frame
	KineticEnergy float64
	Momentum      physics.Vec2
}

// World holds the particle arena. It is not safe for concurrent use: exactly
// one goroutine may call its methods.
type World struct {
	cfg       Config
	bounds    object.Bounds
	particles []object.Particle
	positions []physics.Vec2
	neighbors physics.NeighborQuery

	rng    *rand.Rand
	logger *log.Logger

	frame      uint64
	collisions int
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(logger *log.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}

// WithRand replaces the random source. It takes precedence over Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(w *World) {
		w.rng = rng
	}
}

// New validates cfg and returns an empty world. Call Initialize to populate it.
func New(cfg Config, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		w.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}

	w.apply(cfg, nil)
	return w, nil
}

// Initialize replaces the arena with cfg.Count freshly placed particles.
//
// Positions are drawn uniformly from [r, dim-r] on each axis and redrawn while
// they overlap an already placed particle. If a particle cannot be placed within
// cfg.MaxPlacementAttempts draws the call fails with ErrCapacityExceeded and the
// previous arena and configuration are kept.
func (w *World) Initialize(cfg Config, launch Launch) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	look, err := cfg.Appearance()
	if err != nil {
		return err
	}

	bounds := object.Bounds{Width: cfg.Width, Height: cfg.Height}
	particles, err := place(w.rng, cfg, bounds, look, launch)
	if err != nil {
		w.logger.Warn("initialization failed", "launch", launch, "count", cfg.Count, "err", err)
		return err
	}

	w.apply(cfg, particles)
	w.logger.Debug("initialized", "launch", launch, "count", len(particles),
		"width", cfg.Width, "height", cfg.Height, "neighbors", cfg.Neighbors)
	return nil
}

// TriggerExplosion restarts the current configuration with an outward launch.
func (w *World) TriggerExplosion() error {
	return w.Initialize(w.cfg, LaunchExplode)
}

// Reset restarts the current configuration with a random launch.
func (w *World) Reset() error {
	return w.Initialize(w.cfg, LaunchRandom)
}

// AdvanceFrame steps every particle once against the whole arena, drawing each
// through r first. r may be nil.
//
// Particles are stepped in arena order and a contact updates both partners
// immediately, so in a dense cluster the outcome depends on that order.
func (w *World) AdvanceFrame(r object.Renderer) {
	for i := range w.particles {
		w.positions[i] = w.particles[i].Pos
	}
	w.neighbors.Rebuild(w.positions, w.reach())

	collisions := 0
	for i := range w.particles {
		collisions += w.particles[i].Update(object.UpdateContext{
			Index:     i,
			Particles: w.particles,
			Neighbors: w.neighbors,
			Bounds:    w.bounds,
			Renderer:  r,
		})
	}

	w.frame++
	w.collisions = collisions
}

// Draw renders the arena without stepping it.
func (w *World) Draw(r object.Renderer) {
	for i := range w.particles {
		w.particles[i].Draw(r)
	}
}

// Particles returns the live arena. Callers must not retain it across frames.
func (w *World) Particles() []object.Particle {
	return w.particles
}

// Bounds returns the enclosure size.
func (w *World) Bounds() object.Bounds {
	return w.bounds
}

// Config returns the configuration of the current arena.
func (w *World) Config() Config {
	return w.cfg
}

// Frame returns the number of frames advanced since the last initialization.
func (w *World) Frame() uint64 {
	return w.frame
}

// Stats returns totals over the current arena.
func (w *World) Stats() Stats {
	s := Stats{
		Frame:      w.frame,
		Particles:  len(w.particles),
		Collisions: w.collisions,
	}
	for i := range w.particles {
		s.KineticEnergy += w.particles[i].KineticEnergy()
		s.Momentum = s.Momentum.Add(w.particles[i].Momentum())
	}
	return s
}

// apply swaps in a new configuration and arena.
func (w *World) apply(cfg Config, particles []object.Particle) {
	bounds := object.Bounds{Width: cfg.Width, Height: cfg.Height}
	if w.neighbors == nil || cfg.Neighbors != w.cfg.Neighbors || bounds != w.bounds {
		w.neighbors = newNeighborQuery(cfg.Neighbors, bounds)
	}

	w.cfg = cfg
	w.bounds = bounds
	w.particles = particles
	w.positions = make([]physics.Vec2, len(particles))
	w.frame = 0
	w.collisions = 0
}

// reach is the widest center distance at which two particles can touch during
// this frame. Speed is included because a contact updates a partner's velocity
// before the partner has moved.
func (w *World) reach() float64 {
	var maxR, maxSpeed float64
	for i := range w.particles {
		maxR = math.Max(maxR, w.particles[i].Radius)
		maxSpeed = math.Max(maxSpeed, w.particles[i].Vel.Len())
	}
	return 2*maxR + 2*maxSpeed
}

func newNeighborQuery(mode string, bounds object.Bounds) physics.NeighborQuery {
	if mode == NeighborsGrid {
		return physics.NewGrid(bounds.Width, bounds.Height)
	}
	return physics.NewAllPairs()
}

// place builds a complete arena or fails without side effects.
func place(rng *rand.Rand, cfg Config, bounds object.Bounds, look object.Appearance, launch Launch) ([]object.Particle, error) {
	particles := make([]object.Particle, 0, cfg.Count)
	grid := physics.NewSpatialGrid(bounds.Width, bounds.Height, 2*cfg.Radius)
	center := bounds.Center()

	for i := 0; i < cfg.Count; i++ {
		pos, ok := samplePosition(rng, cfg, particles, grid)
		if !ok {
			return nil, fmt.Errorf("%w: particle %d of %d not placed after %d attempts",
				ErrCapacityExceeded, i+1, cfg.Count, cfg.MaxPlacementAttempts)
		}

		var vel physics.Vec2
		switch launch {
		case LaunchExplode:
			dir := pos.Sub(center).Normalize()
			if dir == (physics.Vec2{}) {
				vel = physics.FromAngle(0, cfg.ExplodeSpeed)
			} else {
				vel = dir.Scale(cfg.ExplodeSpeed)
			}
		default:
			vel = physics.FromAngle(rng.Float64()*2*math.Pi, cfg.BaseSpeed)
		}

		grid.Insert(pos, len(particles))
		particles = append(particles, object.NewParticle(pos, vel, cfg.Radius, cfg.Mass, look))
	}
	return particles, nil
}

func samplePosition(rng *rand.Rand, cfg Config, placed []object.Particle, grid *physics.SpatialGrid) (physics.Vec2, bool) {
	r := cfg.Radius
	for attempt := 0; attempt < cfg.MaxPlacementAttempts; attempt++ {
		pos := physics.Vec2{
			X: r + rng.Float64()*(cfg.Width-2*r),
			Y: r + rng.Float64()*(cfg.Height-2*r),
		}

		overlaps := false
		grid.QueryAround(pos, func(j int) bool {
			overlaps = physics.Distance(pos, placed[j].Pos)-(r+placed[j].Radius) < 0
			return overlaps
		})
		if !overlaps {
			return pos, true
		}
	}
	return physics.Vec2{}, false
}
