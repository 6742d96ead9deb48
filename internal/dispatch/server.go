package dispatch

import (
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/config"
	"github.com/cubeworld/relay/internal/ext"
	"github.com/cubeworld/relay/internal/hub"
)

// Server accepts TCP connections and hands each one to its own ServeConn
// goroutine. Unlike a game server with a central simulation tick, a Cube
// World relay has no shared per-frame state to serialize connections
// through, so there is no handoff queue: each connection is independent
// from accept to teardown.
type Server struct {
	listener net.Listener
	hub      *hub.Hub
	hooks    ext.Hooks
	cfg      *config.Config
	log      *zap.Logger
	wg       sync.WaitGroup
}

// NewServer binds cfg.Network.BindAddress.
func NewServer(cfg *config.Config, h *hub.Hub, hooks ext.Hooks, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.Network.BindAddress)
	if err != nil {
		return nil, err
	}
	return &Server{listener: ln, hub: h, hooks: hooks, cfg: cfg, log: log}, nil
}

// Addr returns the listener's bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// AcceptLoop accepts connections until the listener is closed by Shutdown.
// It blocks the calling goroutine; run it in its own goroutine.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		s.log.Info("connection accepted", zap.String("remote", conn.RemoteAddr().String()))
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ServeConn(conn, s.hub, s.hooks, s.cfg, s.log)
		}()
	}
}

// Shutdown stops accepting new connections and blocks until every
// in-flight ServeConn goroutine has returned.
func (s *Server) Shutdown() {
	s.listener.Close()
	s.wg.Wait()
}
