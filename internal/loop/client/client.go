package client

import (
	"bufio"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/tomz197/gasbox/internal/draw"
	"github.com/tomz197/gasbox/internal/input"
	"github.com/tomz197/gasbox/internal/loop/config"
	"github.com/tomz197/gasbox/internal/loop/server"
	"github.com/tomz197/gasbox/internal/object"
)

// Client renders snapshots and forwards key presses for a single terminal.
type Client struct {
	host         server.Host
	handle       *server.ClientHandle
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter
	styles       styles
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	termSizeFunc draw.TermSizeFunc
	now          func() time.Time
}

// ClientOptions configures the client.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc
	Name         string
	// Renderer styles output for this terminal. Defaults to a 256-colour
	// renderer writing to the client's writer.
	Renderer *lipgloss.Renderer
}

// NewClient creates a new client connected to the given host.
func NewClient(host server.Host, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = lipgloss.NewRenderer(w)
		renderer.SetColorProfile(termenv.ANSI256)
	}

	bounds := object.Bounds{Width: 1, Height: 1}
	if snap := host.GetSnapshot(); snap != nil {
		bounds = snap.Bounds
	}

	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := fitTermSize(termWidth, termHeight, bounds)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, bounds.Width, bounds.Height)
	canvas.SetRenderer(renderer)
	canvas.SetOffset(offsetCol, offsetRow)

	return &Client{
		host:         host,
		handle:       host.RegisterClient(opts.Name),
		state:        NewClientState(termWidth, termHeight),
		canvas:       canvas,
		chunkWriter:  draw.NewChunkWriter(w, offsetCol, offsetRow),
		styles:       newStyles(renderer),
		writer:       w,
		lastInput:    time.Now(),
		inputStream:  input.StartStream(r),
		termSizeFunc: termSizeFunc,
		now:          time.Now,
	}
}

// Run starts the client loop. Blocks until the viewer quits or the server stops.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)

	lastTime := c.now()

	for c.state.Running {
		frameStart := c.now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		c.processInput()
		c.processServerEvents()
		c.updateScreen()

		if c.state.View == ViewShutdown {
			c.state.shutdownTimer -= c.state.delta.Seconds()
			if c.state.shutdownTimer <= 0 {
				c.state.Running = false
			}
		}

		if err := c.drawFrame(); err != nil {
			c.host.UnregisterClient(c.handle.ID)
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}

	c.host.UnregisterClient(c.handle.ID)

	draw.ResetStyle(c.writer)
	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads input and forwards commands to the host.
func (c *Client) processInput() {
	in := input.ReadInput(c.inputStream)

	idle := c.now().Sub(c.lastInput).Seconds()
	switch {
	case in.Any():
		c.lastInput = c.now()
		c.state.isInactive = false
	case idle > config.InactivityDisconnectUser:
		c.state.Running = false
	case idle > config.InactivityWarnUser:
		c.state.isInactive = true
	}

	if in.Quit {
		c.state.Running = false
		return
	}
	if c.state.View != ViewRunning {
		return
	}

	if in.Explode {
		c.host.Send(server.CommandExplode)
	}
	if in.Reset {
		c.host.Send(server.CommandReset)
	}
	if in.Pause {
		c.host.Send(server.CommandPause)
	}
}

// processServerEvents handles events from the server.
func (c *Client) processServerEvents() {
	for {
		select {
		case event, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			if event.Type == server.EventServerShutdown {
				c.state.View = ViewShutdown
				c.state.shutdownTimer = config.ShutdownDisplaySeconds
			}
		default:
			return
		}
	}
}

// updateScreen refits the canvas to the terminal and the enclosure.
// On any layout change the terminal is cleared to drop stale borders.
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}

	bounds := object.Bounds{Width: c.canvas.LogicalWidth(), Height: c.canvas.LogicalHeight()}
	if snap := c.host.GetSnapshot(); snap != nil {
		bounds = snap.Bounds
	}
	renderWidth, renderHeight, offsetCol, offsetRow := fitTermSize(termWidth, termHeight, bounds)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() ||
		termWidth != c.state.termWidth || termHeight != c.state.termHeight {
		draw.ClearScreen(c.chunkWriter)
	}

	c.state.termWidth, c.state.termHeight = termWidth, termHeight
	if bounds.Width != c.canvas.LogicalWidth() || bounds.Height != c.canvas.LogicalHeight() {
		c.canvas.SetLogicalSize(bounds.Width, bounds.Height)
	}
	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// fitTermSize picks the largest canvas with the enclosure's aspect ratio that
// fits the terminal above the HUD, clamped to the max render resolution, and
// the offset that centers it. Terminal cells are two pixels tall.
func fitTermSize(termWidth, termHeight int, bounds object.Bounds) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	availWidth := min(termWidth, config.MaxTermWidth)
	availHeight := min(termHeight-config.HUDRows, config.MaxTermHeight)
	if availWidth < 1 || availHeight < 1 || bounds.Width <= 0 || bounds.Height <= 0 {
		return 0, 0, 0, 0
	}

	aspect := bounds.Width / bounds.Height
	renderWidth, renderHeight = availWidth, availHeight
	if float64(availWidth) > float64(availHeight*2)*aspect {
		renderWidth = int(math.Round(float64(availHeight*2) * aspect))
	} else {
		renderHeight = int(math.Round(float64(availWidth) / aspect / 2))
	}
	renderWidth = max(1, min(renderWidth, availWidth))
	renderHeight = max(1, min(renderHeight, availHeight))

	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - config.HUDRows - renderHeight) / 2
	return
}
