package client

import (
	"time"
)

// View is the current screen of a client.
type View int

const (
	ViewRunning  View = iota // Live simulation
	ViewShutdown             // Server is shutting down
)

// ClientState holds per-viewer state. Each client has its own instance.
type ClientState struct {
	View          View
	Running       bool          // Client loop running
	termWidth     int           // Last seen terminal width
	termHeight    int           // Last seen terminal height
	delta         time.Duration // Frame delta time (client-side)
	shutdownTimer float64       // Countdown before auto-disconnect on shutdown
	isInactive    bool          // Whether the client is in inactive warning state
}

// NewClientState creates a new initialized client state.
func NewClientState(termWidth, termHeight int) *ClientState {
	return &ClientState{
		View:       ViewRunning,
		Running:    true,
		termWidth:  termWidth,
		termHeight: termHeight,
	}
}
