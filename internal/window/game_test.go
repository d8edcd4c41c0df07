package window

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/gasbox/internal/sim"
)

func newTestGame(t *testing.T, controls *Controls) *Game {
	t.Helper()
	cfg := sim.DefaultConfig()
	cfg.Count = 30
	cfg.Width, cfg.Height = 200, 100
	cfg.Seed = 5

	world, err := sim.New(cfg)
	require.NoError(t, err)
	return NewGame(world, WithControls(func() Controls {
		c := *controls
		*controls = Controls{}
		return c
	}))
}

func TestGame_UpdateAdvancesAndRecords(t *testing.T) {
	var controls Controls
	g := newTestGame(t, &controls)
	assert.Equal(t, 30, g.list.Len(), "initial frame recorded")

	require.NoError(t, g.Update())
	require.NoError(t, g.Update())
	assert.Equal(t, uint64(2), g.world.Frame())
	assert.Equal(t, 30, g.list.Len())
}

func TestGame_PauseFreezesWorld(t *testing.T) {
	var controls Controls
	g := newTestGame(t, &controls)

	controls.Pause = true
	require.NoError(t, g.Update())
	assert.True(t, g.Paused())
	require.NoError(t, g.Update())
	assert.Zero(t, g.world.Frame())
	assert.Equal(t, 30, g.list.Len(), "paused frames still draw")
	assert.Contains(t, g.statusLine(), "PAUSED")

	controls.Pause = true
	require.NoError(t, g.Update())
	assert.False(t, g.Paused())
	assert.Equal(t, uint64(1), g.world.Frame())
}

func TestGame_ExplodeLaunchesOutward(t *testing.T) {
	var controls Controls
	g := newTestGame(t, &controls)
	for range 5 {
		require.NoError(t, g.Update())
	}

	controls.Explode = true
	require.NoError(t, g.Update())
	assert.Equal(t, uint64(1), g.world.Frame(), "restart resets the frame count")

	center := g.world.Bounds().Center()
	outward := 0
	for _, p := range g.world.Particles() {
		if p.Vel.Dot(p.Pos.Sub(center)) > 0 {
			outward++
		}
	}
	assert.Greater(t, outward, 25)

	controls.Reset = true
	require.NoError(t, g.Update())
	assert.Equal(t, uint64(1), g.world.Frame())
}

func TestGame_QuitTerminates(t *testing.T) {
	controls := Controls{Quit: true}
	g := newTestGame(t, &controls)
	assert.ErrorIs(t, g.Update(), ebiten.Termination)
}

func TestGame_LayoutMatchesEnclosure(t *testing.T) {
	var controls Controls
	g := newTestGame(t, &controls)
	w, h := g.Layout(1920, 1080)
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestGame_LayoutRoundsUpFractionalEnclosure(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Count = 10
	cfg.Width, cfg.Height = 200.5, 100.25

	world, err := sim.New(cfg)
	require.NoError(t, err)
	w, h := NewGame(world).Layout(1920, 1080)
	assert.Equal(t, 201, w)
	assert.Equal(t, 101, h)
}

func TestGame_StatusLine(t *testing.T) {
	var controls Controls
	g := newTestGame(t, &controls)
	line := g.statusLine()
	assert.Contains(t, line, "frame 0")
	assert.Contains(t, line, "[q] quit")
	assert.NotContains(t, line, "PAUSED")
}
