// Package window shows the gas in a desktop window using ebiten. Ebiten's
// update loop is the only goroutine that touches the World.
package window

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/tomz197/gasbox/internal/draw"
	"github.com/tomz197/gasbox/internal/physics"
	"github.com/tomz197/gasbox/internal/sim"
)

// Controls are the actions requested during one tick.
type Controls struct {
	Quit    bool
	Explode bool
	Reset   bool
	Pause   bool
}

// ControlsFunc polls input once per tick.
type ControlsFunc func() Controls

// KeyboardControls reads E/Space (explode), R (reset), P (pause), Q/Escape
// (quit) and a left click (explode).
func KeyboardControls() Controls {
	return Controls{
		Quit:    inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		Explode: inpututil.IsKeyJustPressed(ebiten.KeyE) || inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Reset:   inpututil.IsKeyJustPressed(ebiten.KeyR),
		Pause:   inpututil.IsKeyJustPressed(ebiten.KeyP),
	}
}

// Game implements ebiten.Game.
type Game struct {
	world    *sim.World
	logger   *log.Logger
	controls ControlsFunc
	list     *draw.DrawList
	paused   bool
}

var _ ebiten.Game = (*Game)(nil)

// Option configures a Game.
type Option func(*Game)

// WithLogger sets the logger used for restart failures.
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithControls replaces keyboard and mouse polling.
func WithControls(f ControlsFunc) Option {
	return func(g *Game) {
		g.controls = f
	}
}

// NewGame wraps world for display.
func NewGame(world *sim.World, opts ...Option) *Game {
	g := &Game{
		world:    world,
		logger:   log.New(io.Discard),
		controls: KeyboardControls,
		list:     draw.NewDrawList(len(world.Particles())),
	}
	for _, opt := range opts {
		opt(g)
	}
	world.Draw(g.list)
	return g
}

// Update applies controls and advances the world one frame, recording what
// each particle drew before it moved.
func (g *Game) Update() error {
	c := g.controls()
	if c.Quit {
		return ebiten.Termination
	}
	if c.Pause {
		g.paused = !g.paused
	}
	if c.Explode {
		g.restart(g.world.TriggerExplosion, "explode")
	}
	if c.Reset {
		g.restart(g.world.Reset, "reset")
	}

	g.list.Reset()
	if g.paused {
		g.world.Draw(g.list)
		return nil
	}
	g.world.AdvanceFrame(g.list)
	return nil
}

func (g *Game) restart(fn func() error, name string) {
	if err := fn(); err != nil {
		g.logger.Warn("restart failed", "command", name, "err", err)
	}
}

// Draw paints the last recorded frame and the stats line.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	draw.Replay(g.list.Circles(), screenRenderer{screen})
	ebitenutil.DebugPrint(screen, g.statusLine())
}

// Layout keeps the logical screen equal to the enclosure.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := g.world.Bounds()
	return int(math.Ceil(b.Width)), int(math.Ceil(b.Height))
}

// Paused reports whether stepping is suspended.
func (g *Game) Paused() bool {
	return g.paused
}

func (g *Game) statusLine() string {
	s := g.world.Stats()
	status := fmt.Sprintf("frame %d  collisions %d  energy %.2f  momentum (%+.2f, %+.2f)",
		s.Frame, s.Collisions, s.KineticEnergy, s.Momentum.X, s.Momentum.Y)
	if g.paused {
		status += "  PAUSED"
	}
	return status + "\n[e/click] explode  [r] reset  [p] pause  [q] quit"
}

// screenRenderer draws circles onto an ebiten image.
type screenRenderer struct {
	dst *ebiten.Image
}

func (r screenRenderer) DrawCircle(center physics.Vec2, radius float64, fill, stroke color.Color, strokeWidth float64) {
	x, y, rad := float32(center.X), float32(center.Y), float32(radius)
	if fill != nil {
		vector.DrawFilledCircle(r.dst, x, y, rad, fill, true)
	}
	if stroke != nil && strokeWidth > 0 {
		vector.StrokeCircle(r.dst, x, y, rad, float32(strokeWidth), stroke, true)
	}
}
