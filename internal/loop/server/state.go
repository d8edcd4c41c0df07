package server

import (
	"fmt"

	"github.com/tomz197/gasbox/internal/draw"
	"github.com/tomz197/gasbox/internal/object"
	"github.com/tomz197/gasbox/internal/sim"
)

// Command is a control request from a viewer, applied between frames.
type Command int

const (
	CommandExplode Command = iota // Restart with an outward launch
	CommandReset                  // Restart with a random launch
	CommandPause                  // Toggle pause
)

func (c Command) String() string {
	switch c {
	case CommandExplode:
		return "explode"
	case CommandReset:
		return "reset"
	case CommandPause:
		return "pause"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// ParseCommand maps a command name to its value.
func ParseCommand(name string) (Command, error) {
	switch name {
	case "explode":
		return CommandExplode, nil
	case "reset":
		return CommandReset, nil
	case "pause":
		return CommandPause, nil
	default:
		return 0, fmt.Errorf("unknown command %q", name)
	}
}

// Snapshot is an immutable view of one frame for rendering.
// Nothing in it is shared with the live World.
type Snapshot struct {
	Tick    uint64 // Server ticks since start, paused ticks included
	Epoch   uint64 // Incremented by every successful restart
	Stats   sim.Stats
	Bounds  object.Bounds
	Circles []draw.Circle
	Paused  bool
	Viewers int
}
