package client

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/gasbox/internal/draw"
	"github.com/tomz197/gasbox/internal/loop/config"
	"github.com/tomz197/gasbox/internal/loop/server"
)

// styles are built once per renderer so colours match the viewer's terminal.
type styles struct {
	line   lipgloss.Style
	hud    lipgloss.Style
	paused lipgloss.Style
	keys   lipgloss.Style
	box    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		line:   r.NewStyle(),
		hud:    r.NewStyle().Foreground(lipgloss.Color("#7ECEFD")),
		paused: r.NewStyle().Foreground(lipgloss.Color("#FF7F66")).Bold(true),
		keys:   r.NewStyle().Foreground(lipgloss.Color("#FFF6E5")).Faint(true),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2185C5")).
			Padding(0, 2).
			Align(lipgloss.Center),
	}
}

// drawFrame draws the current snapshot, the HUD and any overlay, then flushes.
func (c *Client) drawFrame() error {
	snapshot := c.host.GetSnapshot()
	if snapshot == nil {
		return c.chunkWriter.Flush()
	}

	c.canvas.Clear()
	draw.Replay(snapshot.Circles, c.canvas)
	c.canvas.Render(c.chunkWriter)
	draw.ResetStyle(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawHUD(snapshot)

	switch {
	case c.state.View == ViewShutdown:
		c.drawOverlay(
			"SERVER SHUTTING DOWN",
			fmt.Sprintf("Disconnecting in %d seconds...", int(c.state.shutdownTimer)+1),
			"Press Q to disconnect now",
		)
	case c.state.isInactive:
		c.drawOverlay(
			"INACTIVITY WARNING",
			fmt.Sprintf("Disconnecting in %d seconds.",
				int(config.InactivityDisconnectUser-c.now().Sub(c.lastInput).Seconds())),
			"Press any key to stay",
		)
	}

	return c.chunkWriter.Flush()
}

// hudLine formats the status line.
func hudLine(s *server.Snapshot) string {
	return fmt.Sprintf("frame %-7d collisions %-4d energy %-9.2f momentum (%+.2f, %+.2f) particles %d viewers %d",
		s.Stats.Frame, s.Stats.Collisions, s.Stats.KineticEnergy,
		s.Stats.Momentum.X, s.Stats.Momentum.Y, s.Stats.Particles, s.Viewers)
}

// drawHUD writes the status line on the last terminal row. The line is cut or
// padded to the full width so shorter values overwrite longer ones.
func (c *Client) drawHUD(s *server.Snapshot) {
	width := c.state.termWidth
	if width < 1 || c.state.termHeight < 1 {
		return
	}

	var parts []string
	if s.Paused {
		parts = append(parts, c.styles.paused.Render("PAUSED"))
	}
	parts = append(parts, c.styles.hud.Render(hudLine(s)))
	parts = append(parts, c.styles.keys.Render("[e]xplode [r]eset [p]ause [q]uit"))

	line := c.styles.line.MaxWidth(width).Render(strings.Join(parts, "  "))
	if pad := width - lipgloss.Width(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	// Row and column are relative to the canvas offset.
	c.chunkWriter.WriteAt(1-c.canvas.OffsetCol(), c.state.termHeight-c.canvas.OffsetRow(), line)
}

// drawOverlay draws a bordered message box centered over the canvas.
func (c *Client) drawOverlay(lines ...string) {
	box := c.styles.box.Render(strings.Join(lines, "\n"))
	rows := strings.Split(box, "\n")

	width := lipgloss.Width(box)
	col := (c.canvas.TerminalWidth()-width)/2 + 1
	row := (c.canvas.TerminalHeight()-len(rows))/2 + 1
	for i, r := range rows {
		c.chunkWriter.WriteAt(max(col, 1), max(row+i, 1), r)
	}
	draw.ResetStyle(c.chunkWriter)
}
