package server

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/gasbox/internal/draw"
	"github.com/tomz197/gasbox/internal/loop/config"
	"github.com/tomz197/gasbox/internal/sim"
)

// Host is the interface viewers use to talk to the simulation.
// Decouples viewers from the concrete Server, enabling testing.
type Host interface {
	RegisterClient(name string) *ClientHandle
	UnregisterClient(id string)
	Send(cmd Command) bool
	GetSnapshot() *Snapshot
}

// Server owns the World and is the only goroutine that mutates it.
// Viewers read published snapshots and send commands.
type Server struct {
	world    *sim.World
	logger   *log.Logger
	tickTime time.Duration

	snapshot     atomic.Pointer[Snapshot]
	commands     chan Command
	registerCh   chan *ClientHandle
	unregisterCh chan string

	clients map[string]*ClientHandle
	mu      sync.RWMutex

	list   *draw.DrawList
	paused bool
	tick   uint64
	epoch  uint64
}

// Compile-time check that Server implements Host.
var _ Host = (*Server)(nil)

// ClientHandle represents a viewer's connection to the server.
type ClientHandle struct {
	ID       string
	Name     string
	EventsCh chan ClientEvent
}

// ClientEvent is sent from the server to a viewer.
type ClientEvent struct {
	Type ClientEventType
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithTickTime overrides the frame period.
func WithTickTime(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.tickTime = d
		}
	}
}

// NewServer creates a server around an initialized world and publishes its first snapshot.
func NewServer(world *sim.World, opts ...Option) *Server {
	s := &Server{
		world:        world,
		tickTime:     config.ServerTickTime,
		commands:     make(chan Command, config.CommandBuffer),
		registerCh:   make(chan *ClientHandle, 16),
		unregisterCh: make(chan string, 16),
		clients:      make(map[string]*ClientHandle),
		list:         draw.NewDrawList(len(world.Particles())),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	world.Draw(s.list)
	s.publish()
	return s
}

// Run ticks the world until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickTime)
	defer ticker.Stop()

	s.logger.Info("simulation running", "particles", len(s.world.Particles()), "tick", s.tickTime)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("simulation stopped", "frames", s.tick)
			return nil
		case <-ticker.C:
			s.Step()
		}
	}
}

// Step runs one tick: registrations, queued commands, one frame, and a new snapshot.
// Run calls it; tests may call it directly instead of Run.
func (s *Server) Step() {
	s.processRegistrations()
	s.applyCommands()

	s.list.Reset()
	if s.paused {
		s.world.Draw(s.list)
	} else {
		s.world.AdvanceFrame(s.list)
	}
	s.tick++

	s.publish()
}

// Shutdown notifies all connected viewers and waits for them to disconnect,
// or for timeout. The caller should cancel the Run context afterwards.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			s.mu.RLock()
			remaining := len(s.clients)
			s.mu.RUnlock()
			if remaining == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a viewer and returns its handle.
// The viewer is counted from the next tick on.
func (s *Server) RegisterClient(name string) *ClientHandle {
	handle := &ClientHandle{
		ID:       uuid.NewString(),
		Name:     name,
		EventsCh: make(chan ClientEvent, 16),
	}
	s.registerCh <- handle
	return handle
}

// UnregisterClient removes a viewer.
func (s *Server) UnregisterClient(id string) {
	s.unregisterCh <- id
}

// Send queues a command for the next tick. Returns false if the queue is full.
func (s *Server) Send(cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

// GetSnapshot returns the most recently published snapshot.
func (s *Server) GetSnapshot() *Snapshot {
	return s.snapshot.Load()
}

// processRegistrations handles pending client registrations/unregistrations.
func (s *Server) processRegistrations() {
	for {
		select {
		case handle := <-s.registerCh:
			s.mu.Lock()
			s.clients[handle.ID] = handle
			s.mu.Unlock()
			s.logger.Debug("viewer joined", "id", handle.ID, "name", handle.Name)
		case id := <-s.unregisterCh:
			s.mu.Lock()
			if handle, ok := s.clients[id]; ok {
				close(handle.EventsCh)
				delete(s.clients, id)
			}
			s.mu.Unlock()
			s.logger.Debug("viewer left", "id", id)
		default:
			return
		}
	}
}

// applyCommands drains the command queue into the world.
func (s *Server) applyCommands() {
	for {
		select {
		case cmd := <-s.commands:
			s.apply(cmd)
		default:
			return
		}
	}
}

func (s *Server) apply(cmd Command) {
	var err error
	switch cmd {
	case CommandExplode:
		err = s.world.TriggerExplosion()
	case CommandReset:
		err = s.world.Reset()
	case CommandPause:
		s.paused = !s.paused
	default:
		s.logger.Warn("unknown command", "command", cmd)
		return
	}

	if err != nil {
		s.logger.Error("command failed", "command", cmd, "err", err)
		return
	}
	if cmd != CommandPause {
		s.epoch++
	}
	s.logger.Info("command applied", "command", cmd, "paused", s.paused)
}

// publish stores an immutable snapshot of the current frame.
func (s *Server) publish() {
	s.mu.RLock()
	viewers := len(s.clients)
	s.mu.RUnlock()

	s.snapshot.Store(&Snapshot{
		Tick:    s.tick,
		Epoch:   s.epoch,
		Stats:   s.world.Stats(),
		Bounds:  s.world.Bounds(),
		Circles: s.list.Circles(),
		Paused:  s.paused,
		Viewers: viewers,
	})
}
