// Package webview streams the shared gas to browsers over a websocket and
// serves the page that draws it.
package webview

import (
	_ "embed"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/gasbox/internal/loop/server"
)

//go:embed index.html
var htmlPage string

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler serves the page at "/" and the snapshot stream at "/ws".
type Handler struct {
	host     server.Host
	logger   *log.Logger
	interval time.Duration
	sshHint  string
	mux      *http.ServeMux
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger for connection events.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithInterval sets how often a frame is pushed to each browser.
func WithInterval(d time.Duration) Option {
	return func(h *Handler) {
		h.interval = d
	}
}

// WithSSHHint sets the ssh command shown on the page.
func WithSSHHint(cmd string) Option {
	return func(h *Handler) {
		h.sshHint = cmd
	}
}

// NewHandler returns a handler streaming snapshots from host.
func NewHandler(host server.Host, opts ...Option) *Handler {
	h := &Handler{
		host:     host,
		logger:   log.New(io.Discard),
		interval: time.Second / 30,
		sshHint:  "ssh -p 2222 localhost",
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("GET /{$}", h.servePage)
	h.mux.HandleFunc("GET /ws", h.serveStream)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := strings.ReplaceAll(htmlPage, "{{.SSHHint}}", h.sshHint)
	_, _ = io.WriteString(w, page)
}

// serveStream upgrades the connection, then pushes frames until the browser
// leaves or the server shuts down. Text messages are commands.
func (h *Handler) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	handle := h.host.RegisterClient("web:" + r.RemoteAddr)
	defer h.host.UnregisterClient(handle.ID)
	logger := h.logger.With("viewer", handle.ID)
	logger.Info("browser connected", "remote", r.RemoteAddr)
	defer logger.Info("browser disconnected")

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readCommands(conn, logger)
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var last *server.Snapshot
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event, ok := <-handle.EventsCh:
			if !ok || event.Type == server.EventServerShutdown {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
		case <-ticker.C:
			snap := h.host.GetSnapshot()
			if snap == nil || snap == last {
				continue
			}
			last = snap

			data, err := json.Marshal(NewFrame(snap))
			if err != nil {
				logger.Error("encode frame", "err", err)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debug("write failed", "err", err)
				return
			}
		}
	}
}

func (h *Handler) readCommands(conn *websocket.Conn, logger *log.Logger) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("read failed", "err", err)
			}
			return
		}

		cmd, err := server.ParseCommand(strings.TrimSpace(string(msg)))
		if err != nil {
			logger.Warn("ignoring message", "err", err)
			continue
		}
		if !h.host.Send(cmd) {
			logger.Warn("command dropped", "command", cmd)
		}
	}
}
