package webview

import (
	"github.com/tomz197/gasbox/internal/loop/server"
	"github.com/tomz197/gasbox/internal/object"
)

// Frame is the JSON message pushed to browsers once per interval.
// Circles are [x, y, radius, fill, stroke, strokeWidth] with colours as
// indices into Colors.
type Frame struct {
	Tick       uint64       `json:"tick"`
	Epoch      uint64       `json:"epoch"`
	Frame      uint64       `json:"frame"`
	Collisions int          `json:"collisions"`
	Energy     float64      `json:"energy"`
	Momentum   [2]float64   `json:"momentum"`
	Particles  int          `json:"particles"`
	Viewers    int          `json:"viewers"`
	Paused     bool         `json:"paused"`
	Width      float64      `json:"width"`
	Height     float64      `json:"height"`
	Colors     []string     `json:"colors"`
	Circles    [][6]float64 `json:"circles"`
}

// NewFrame flattens a snapshot for the browser.
func NewFrame(s *server.Snapshot) Frame {
	f := Frame{
		Tick:       s.Tick,
		Epoch:      s.Epoch,
		Frame:      s.Stats.Frame,
		Collisions: s.Stats.Collisions,
		Energy:     s.Stats.KineticEnergy,
		Momentum:   [2]float64{s.Stats.Momentum.X, s.Stats.Momentum.Y},
		Particles:  s.Stats.Particles,
		Viewers:    s.Viewers,
		Paused:     s.Paused,
		Width:      s.Bounds.Width,
		Height:     s.Bounds.Height,
		Colors:     []string{},
		Circles:    make([][6]float64, len(s.Circles)),
	}

	index := make(map[string]int)
	colorIndex := func(hex string) float64 {
		i, ok := index[hex]
		if !ok {
			i = len(f.Colors)
			index[hex] = i
			f.Colors = append(f.Colors, hex)
		}
		return float64(i)
	}

	for i, c := range s.Circles {
		f.Circles[i] = [6]float64{
			c.Center.X, c.Center.Y, c.Radius,
			colorIndex(object.HexColor(c.Fill)),
			colorIndex(object.HexColor(c.Stroke)),
			c.StrokeWidth,
		}
	}
	return f
}
