package sim

import (
	"fmt"
	"image/color"
	"math"

	"github.com/tomz197/gasbox/internal/object"
)

// Neighbor search strategies.
const (
	NeighborsAll  = "all"
	NeighborsGrid = "grid"
)

// Config is the full set of simulation parameters. Field tags match the
// "simulation" section of the YAML config file.
type Config struct {
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`

	// BaseSpeed is the speed of every particle in a random launch.
	BaseSpeed float64 `yaml:"base_speed"`
	// ExplodeSpeed is the speed of every particle in an explosion launch.
	ExplodeSpeed float64 `yaml:"explode_speed"`
	// MaxPlacementAttempts caps the rejection sampler per particle.
	MaxPlacementAttempts int `yaml:"max_placement_attempts"`

	Neighbors string `yaml:"neighbors"`

	Palette     []string `yaml:"palette"`
	FillColor   int      `yaml:"fill_color"`
	StrokeColor int      `yaml:"stroke_color"`
	StrokeWidth float64  `yaml:"stroke_width"`

	// Seed makes runs reproducible. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`
}

// DefaultConfig returns the stock 400-particle gas in a 500x400 box.
func DefaultConfig() Config {
	palette := make([]string, len(object.DefaultPalette))
	for i, c := range object.DefaultPalette {
		palette[i] = object.HexColor(c)
	}

	return Config{
		Count:                400,
		Radius:               4,
		Mass:                 1,
		Width:                500,
		Height:               400,
		BaseSpeed:            0.8,
		ExplodeSpeed:         0.8,
		MaxPlacementAttempts: 10000,
		Neighbors:            NeighborsAll,
		Palette:              palette,
		FillColor:            0,
		StrokeColor:          1,
		StrokeWidth:          1,
	}
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfiguration.
func (c Config) Validate() error {
	switch {
	case c.Count <= 0:
		return invalid("count must be positive, got %d", c.Count)
	case !positive(c.Radius):
		return invalid("radius must be positive, got %v", c.Radius)
	case !positive(c.Mass):
		return invalid("mass must be positive, got %v", c.Mass)
	case !positive(c.Width) || !positive(c.Height):
		return invalid("enclosure must be positive, got %vx%v", c.Width, c.Height)
	case c.Width < 2*c.Radius || c.Height < 2*c.Radius:
		return invalid("enclosure %vx%v cannot hold a particle of radius %v", c.Width, c.Height, c.Radius)
	case !nonNegative(c.BaseSpeed):
		return invalid("base_speed must be a non-negative number, got %v", c.BaseSpeed)
	case !nonNegative(c.ExplodeSpeed):
		return invalid("explode_speed must be a non-negative number, got %v", c.ExplodeSpeed)
	case c.MaxPlacementAttempts <= 0:
		return invalid("max_placement_attempts must be positive, got %d", c.MaxPlacementAttempts)
	case c.Neighbors != NeighborsAll && c.Neighbors != NeighborsGrid:
		return invalid("neighbors must be %q or %q, got %q", NeighborsAll, NeighborsGrid, c.Neighbors)
	case !nonNegative(c.StrokeWidth):
		return invalid("stroke_width must be non-negative, got %v", c.StrokeWidth)
	}

	if _, err := c.palette(); err != nil {
		return err
	}
	return nil
}

// Appearance resolves the configured palette indices.
func (c Config) Appearance() (object.Appearance, error) {
	palette, err := c.palette()
	if err != nil {
		return object.Appearance{}, err
	}
	return object.Appearance{
		Fill:        palette[c.FillColor],
		Stroke:      palette[c.StrokeColor],
		StrokeWidth: c.StrokeWidth,
	}, nil
}

func (c Config) palette() ([]color.RGBA, error) {
	if len(c.Palette) != len(object.Palette{}) {
		return nil, invalid("palette has %d colours, want %d", len(c.Palette), len(object.Palette{}))
	}

	colors := make([]color.RGBA, len(c.Palette))
	for i, s := range c.Palette {
		col, err := object.ParseHexColor(s)
		if err != nil {
			return nil, fmt.Errorf("%w: palette[%d]: %w", ErrInvalidConfiguration, i, err)
		}
		colors[i] = col
	}

	if c.FillColor < 0 || c.FillColor >= len(colors) {
		return nil, invalid("fill_color index %d outside palette of %d", c.FillColor, len(colors))
	}
	if c.StrokeColor < 0 || c.StrokeColor >= len(colors) {
		return nil, invalid("stroke_color index %d outside palette of %d", c.StrokeColor, len(colors))
	}
	return colors, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfiguration}, args...)...)
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
