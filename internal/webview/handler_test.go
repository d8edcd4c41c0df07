package webview

import (
	"encoding/json"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomz197/gasbox/internal/draw"
	"github.com/tomz197/gasbox/internal/loop/server"
	"github.com/tomz197/gasbox/internal/object"
	"github.com/tomz197/gasbox/internal/physics"
	"github.com/tomz197/gasbox/internal/sim"
)

var (
	fill   = color.RGBA{R: 0x21, G: 0x85, B: 0xC5, A: 0xFF}
	stroke = color.RGBA{R: 0x7E, G: 0xCE, B: 0xFD, A: 0xFF}
)

type fakeHost struct {
	snapshot atomic.Pointer[server.Snapshot]

	mu           sync.Mutex
	handles      []*server.ClientHandle
	sent         []server.Command
	unregistered []string
}

func newFakeHost(frame uint64) *fakeHost {
	h := &fakeHost{}
	h.snapshot.Store(testSnapshot(frame))
	return h
}

func testSnapshot(frame uint64) *server.Snapshot {
	return &server.Snapshot{
		Tick:   frame,
		Stats:  sim.Stats{Frame: frame, Particles: 2, KineticEnergy: 0.64},
		Bounds: object.Bounds{Width: 500, Height: 400},
		Circles: []draw.Circle{
			{Center: physics.Vec2{X: 10, Y: 20}, Radius: 4, Fill: fill, Stroke: stroke, StrokeWidth: 1},
			{Center: physics.Vec2{X: 30, Y: 40}, Radius: 4, Fill: fill, Stroke: stroke, StrokeWidth: 1},
		},
	}
}

func (h *fakeHost) RegisterClient(name string) *server.ClientHandle {
	h.mu.Lock()
	defer h.mu.Unlock()
	handle := &server.ClientHandle{ID: name, Name: name, EventsCh: make(chan server.ClientEvent, 1)}
	h.handles = append(h.handles, handle)
	return handle
}

func (h *fakeHost) UnregisterClient(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregistered = append(h.unregistered, id)
}

func (h *fakeHost) Send(cmd server.Command) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, cmd)
	return true
}

func (h *fakeHost) GetSnapshot() *server.Snapshot { return h.snapshot.Load() }

func (h *fakeHost) state() (handles []*server.ClientHandle, sent []server.Command, unregistered []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append(handles, h.handles...), append(sent, h.sent...), append(unregistered, h.unregistered...)
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		resp.Body.Close()
		conn.Close()
	})
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var f Frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestHandler_ServesPage(t *testing.T) {
	ts := httptest.NewServer(NewHandler(newFakeHost(0), WithSSHHint("ssh -p 2200 gas.example")))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "<canvas")
	assert.Contains(t, string(body), "ssh -p 2200 gas.example")
	assert.NotContains(t, string(body), "{{.SSHHint}}")

	resp, err = http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_StreamsFrames(t *testing.T) {
	host := newFakeHost(7)
	ts := httptest.NewServer(NewHandler(host, WithInterval(10*time.Millisecond)))
	defer ts.Close()

	conn := dial(t, ts)
	f := readFrame(t, conn)

	assert.Equal(t, uint64(7), f.Frame)
	assert.Equal(t, 2, f.Particles)
	assert.Equal(t, 500.0, f.Width)
	assert.Equal(t, []string{"#2185C5", "#7ECEFD"}, f.Colors)
	require.Len(t, f.Circles, 2)
	assert.Equal(t, [6]float64{30, 40, 4, 0, 1, 1}, f.Circles[1])

	handles, _, _ := host.state()
	require.Len(t, handles, 1)
	assert.True(t, strings.HasPrefix(handles[0].Name, "web:"))

	// An unchanged snapshot is not sent again.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)

	host.snapshot.Store(testSnapshot(8))
	conn = dial(t, ts)
	assert.Equal(t, uint64(8), readFrame(t, conn).Frame)
}

func TestHandler_ForwardsCommands(t *testing.T) {
	host := newFakeHost(0)
	ts := httptest.NewServer(NewHandler(host))
	defer ts.Close()

	conn := dial(t, ts)
	for _, msg := range []string{"explode", "bogus", " pause\n", "reset"} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
	}

	want := []server.Command{server.CommandExplode, server.CommandPause, server.CommandReset}
	require.Eventually(t, func() bool {
		_, sent, _ := host.state()
		return len(sent) == len(want)
	}, 2*time.Second, 10*time.Millisecond)
	_, sent, _ := host.state()
	assert.Equal(t, want, sent)
}

func TestHandler_ClosesOnShutdown(t *testing.T) {
	host := newFakeHost(0)
	ts := httptest.NewServer(NewHandler(host, WithInterval(time.Hour)))
	defer ts.Close()

	conn := dial(t, ts)
	require.Eventually(t, func() bool {
		handles, _, _ := host.state()
		return len(handles) == 1
	}, 2*time.Second, 10*time.Millisecond)

	handles, _, _ := host.state()
	handles[0].EventsCh <- server.ClientEvent{Type: server.EventServerShutdown}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	require.Eventually(t, func() bool {
		_, _, unregistered := host.state()
		return len(unregistered) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewFrame(t *testing.T) {
	s := testSnapshot(3)
	s.Paused = true
	s.Viewers = 4
	s.Epoch = 2
	s.Stats.Momentum = physics.Vec2{X: 1, Y: -1}
	s.Circles = append(s.Circles, draw.Circle{Radius: 1, Fill: stroke})

	f := NewFrame(s)
	assert.True(t, f.Paused)
	assert.Equal(t, 4, f.Viewers)
	assert.Equal(t, uint64(2), f.Epoch)
	assert.Equal(t, [2]float64{1, -1}, f.Momentum)
	assert.Equal(t, []string{"#2185C5", "#7ECEFD", "#000000"}, f.Colors)
	assert.Equal(t, [6]float64{0, 0, 1, 1, 2, 0}, f.Circles[2])

	empty := NewFrame(&server.Snapshot{})
	assert.Empty(t, empty.Circles)
	assert.NotNil(t, empty.Colors)
}
