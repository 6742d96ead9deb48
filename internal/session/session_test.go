package session

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/world"
)

func newTestSession(t *testing.T, outQueueSize int) (*Session, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })
	s := New(server, protocol.CreatureID(1), outQueueSize, 0, zap.NewNop())
	s.Start()
	t.Cleanup(s.Close)
	return s, client
}

func TestSessionSendDeliversToConn(t *testing.T) {
	s, client := newTestSession(t, 4)

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 5)
		n, _ := client.Read(buf)
		done <- buf[:n]
	}()

	s.Send([]byte("hello"))

	select {
	case got := <-done:
		if string(got) != "hello" {
			t.Fatalf("got %q, want %q", got, "hello")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the peer to receive the send")
	}
}

func TestSessionSendAfterCloseIsNoOp(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.Close()
	// Must not panic or block on a closed OutQueue/connection.
	s.Send([]byte("ignored"))
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	s, _ := newTestSession(t, 4)
	s.Close()
	s.Close()
	if !s.IsClosed() {
		t.Fatal("IsClosed() = false after Close()")
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("Done() channel not closed after Close()")
	}
}

func TestSessionRequestDisconnect(t *testing.T) {
	s, _ := newTestSession(t, 4)
	if s.ShouldDisconnect() {
		t.Fatal("ShouldDisconnect() = true before RequestDisconnect()")
	}
	s.RequestDisconnect()
	if !s.ShouldDisconnect() {
		t.Fatal("ShouldDisconnect() = false after RequestDisconnect()")
	}
}

func TestSessionMergeCharacterReturnsPreviousAndUpdated(t *testing.T) {
	s, _ := newTestSession(t, 4)

	health := float32(50)
	previous, updated := s.MergeCharacter(&protocol.CreatureUpdate{ID: 1, Health: &health})
	if previous.Health != 0 {
		t.Fatalf("previous.Health = %v, want 0 (the zero-value starting snapshot)", previous.Health)
	}
	if updated.Health != 50 {
		t.Fatalf("updated.Health = %v, want 50", updated.Health)
	}
	if !s.HasCharacter() {
		t.Fatal("HasCharacter() = false after the first merge")
	}
	if s.Character().Health != 50 {
		t.Fatalf("Character().Health = %v, want 50", s.Character().Health)
	}
}

func TestSessionSetCharacter(t *testing.T) {
	s, _ := newTestSession(t, 4)
	c := world.Character{Name: "Scout", Level: 5}
	s.SetCharacter(c)
	if !s.HasCharacter() {
		t.Fatal("HasCharacter() = false after SetCharacter")
	}
	if got := s.Character(); got.Name != "Scout" || got.Level != 5 {
		t.Fatalf("Character() = %+v, want %+v", got, c)
	}
}

func TestSessionAddonData(t *testing.T) {
	s, _ := newTestSession(t, 4)
	if _, ok := s.AddonData("team"); ok {
		t.Fatal("AddonData returned ok=true before anything was set")
	}
	s.SetAddonData("team", "red")
	v, ok := s.AddonData("team")
	if !ok || v != "red" {
		t.Fatalf("AddonData(\"team\") = %v, %v, want \"red\", true", v, ok)
	}
}

func TestSessionSendQueueFullDisconnectsSlowPeer(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	s := New(server, protocol.CreatureID(2), 1, 0, zap.NewNop())
	// Intentionally never Start()ed: nothing drains OutQueue, so a second
	// Send must observe the queue full and disconnect the session.
	s.Send([]byte("first"))
	s.Send([]byte("second"))
	if !s.IsClosed() {
		t.Fatal("session was not closed after its outbound queue saturated")
	}
}
