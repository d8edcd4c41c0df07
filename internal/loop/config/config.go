// Package config centralizes the timing and layout constants of the viewers.
package config

import "time"

// Terminal render limits. Larger terminals get a centered, bordered canvas.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 80
	HUDRows       = 1 // Rows reserved below the canvas for the status line
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Shutdown
const (
	ShutdownDisplaySeconds = 3.0 // Seconds to show the shutdown message before disconnecting
)

// Client rendering
const (
	ClientTargetFPS       = 30
	ClientTargetFrameTime = time.Second / ClientTargetFPS
)

// Server tick rate
const (
	ServerTickRate = 60
	ServerTickTime = time.Second / ServerTickRate
)

// CommandBuffer is the number of queued viewer commands before new ones are dropped.
const CommandBuffer = 64
