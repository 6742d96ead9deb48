// Package session owns a single connected peer: its socket, its outbound
// send queue, and its authoritative Character snapshot.
package session

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/world"
)

// Session represents one connected client for the lifetime of its TCP
// connection. Network I/O runs in a dedicated writer goroutine plus the
// dispatcher's per-connection read loop; the Character snapshot is read and
// written under its own lock so peers' broadcasts can read it concurrently
// with this session's own delta merges.
type Session struct {
	ID   protocol.CreatureID
	Conn net.Conn
	IP   string

	writeTimeout time.Duration

	charMu       sync.RWMutex
	character    world.Character
	hasCharacter bool

	OutQueue chan []byte

	shouldDisconnect atomic.Bool

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	addonMu   sync.RWMutex
	addonData map[string]any

	Log *zap.Logger
}

// New wraps an accepted connection. The caller is responsible for calling
// Start to launch the writer goroutine.
func New(conn net.Conn, id protocol.CreatureID, outQueueSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		Conn:         conn,
		IP:           conn.RemoteAddr().String(),
		writeTimeout: writeTimeout,
		OutQueue:     make(chan []byte, outQueueSize),
		closeCh:      make(chan struct{}),
		addonData:    make(map[string]any),
		Log:          log.With(zap.Int64("session", int64(id))),
	}
}

// Start launches the writer goroutine. The caller drives the read side
// itself (the dispatch package runs the read loop) since decoding depends
// on packet-kind knowledge the dispatcher owns, not this package.
func (s *Session) Start() {
	go s.writeLoop()
}

// Character returns a copy of the session's current snapshot.
func (s *Session) Character() world.Character {
	s.charMu.RLock()
	defer s.charMu.RUnlock()
	return s.character
}

// HasCharacter reports whether the first post-handshake CreatureUpdate has
// been merged yet.
func (s *Session) HasCharacter() bool {
	s.charMu.RLock()
	defer s.charMu.RUnlock()
	return s.hasCharacter
}

// SetCharacter replaces the session's snapshot wholesale and marks it as
// present. The dispatcher does not call it: the first CreatureUpdate after
// handshake goes through MergeCharacter like every later one.
func (s *Session) SetCharacter(c world.Character) {
	s.charMu.Lock()
	defer s.charMu.Unlock()
	s.character = c
	s.hasCharacter = true
}

// MergeCharacter applies delta onto the current snapshot under the write
// lock and returns both the pre-merge and post-merge snapshots, so the
// caller can hand (previous, updated) to the validator without racing a
// concurrent broadcast read.
func (s *Session) MergeCharacter(delta *protocol.CreatureUpdate) (previous, updated world.Character) {
	s.charMu.Lock()
	defer s.charMu.Unlock()
	previous = s.character
	s.character = s.character.Merge(delta)
	s.hasCharacter = true
	return previous, s.character
}

// Send enqueues an already-framed packet for the writer goroutine.
// Non-blocking: a saturated OutQueue means this peer can't keep up, so it
// gets disconnected rather than stalling the sender.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.Log.Warn("send queue full, disconnecting slow peer")
		s.Close()
	}
}

// RequestDisconnect marks the session to be torn down at the next
// opportunity the read loop checks it (e.g. after a validator rejection).
func (s *Session) RequestDisconnect() {
	s.shouldDisconnect.Store(true)
}

// ShouldDisconnect reports whether RequestDisconnect has been called.
func (s *Session) ShouldDisconnect() bool {
	return s.shouldDisconnect.Load()
}

// Close idempotently tears down the connection and unblocks any goroutine
// selecting on Done().
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.Conn.Close()
	})
}

// Done returns a channel closed once the session has been torn down.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

// IsClosed reports whether Close has run.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// AddonData fetches a value a scripting hook previously stashed on this
// session (team assignment, admin flag, etc.).
func (s *Session) AddonData(key string) (any, bool) {
	s.addonMu.RLock()
	defer s.addonMu.RUnlock()
	v, ok := s.addonData[key]
	return v, ok
}

// SetAddonData stashes an arbitrary value under key for later retrieval by
// a scripting hook.
func (s *Session) SetAddonData(key string, value any) {
	s.addonMu.Lock()
	defer s.addonMu.Unlock()
	s.addonData[key] = value
}

// writeLoop drains OutQueue onto the socket until the session closes. The
// outbound path is single-threaded per connection: every write goes
// through this one goroutine, so partial writes from concurrent senders
// can never interleave.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			if s.writeTimeout > 0 {
				s.Conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			}
			if _, err := s.Conn.Write(data); err != nil {
				if !s.closed.Load() {
					s.Log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
