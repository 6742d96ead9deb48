package hub

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/config"
	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/session"
	"github.com/cubeworld/relay/internal/world"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := New(config.Default(), zap.NewNop())
	t.Cleanup(h.Shutdown)
	return h
}

// newJoinedSession builds a session backed by a net.Pipe and registers it
// with h, without starting its writer goroutine — so outbound sends queue
// up in OutQueue for the test to inspect directly.
func newJoinedSession(t *testing.T, h *Hub, id protocol.CreatureID) *session.Session {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	s := session.New(server, id, 8, 0, zap.NewNop())
	h.Join(s)
	return s
}

func drainOne(t *testing.T, s *session.Session) []byte {
	t.Helper()
	select {
	case data := <-s.OutQueue:
		return data
	case <-time.After(time.Second):
		t.Fatalf("session %v received nothing", s.ID)
		return nil
	}
}

func assertEmpty(t *testing.T, s *session.Session) {
	t.Helper()
	select {
	case data := <-s.OutQueue:
		t.Fatalf("session %v unexpectedly received %v", s.ID, data)
	default:
	}
}

func TestJoinLeaveGetCount(t *testing.T) {
	h := newTestHub(t)
	s1 := newJoinedSession(t, h, 1)

	if h.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", h.Count())
	}
	if got, ok := h.Get(1); !ok || got != s1 {
		t.Fatalf("Get(1) = %v, %v, want %v, true", got, ok, s1)
	}

	h.Leave(1)
	if h.Count() != 0 {
		t.Fatalf("Count() after Leave = %d, want 0", h.Count())
	}
	if _, ok := h.Get(1); ok {
		t.Fatal("Get(1) still found the session after Leave")
	}
}

func TestBroadcastSkipsTheSender(t *testing.T) {
	h := newTestHub(t)
	sender := newJoinedSession(t, h, 1)
	other := newJoinedSession(t, h, 2)

	h.Broadcast([]byte("payload"), sender.ID)

	assertEmpty(t, sender)
	got := drainOne(t, other)
	if string(got) != "payload" {
		t.Fatalf("other session got %q, want %q", got, "payload")
	}
}

func TestBroadcastSkipZeroExcludesNobody(t *testing.T) {
	h := newTestHub(t)
	s1 := newJoinedSession(t, h, 1)
	s2 := newJoinedSession(t, h, 2)

	h.Broadcast([]byte("hi"), 0)

	drainOne(t, s1)
	drainOne(t, s2)
}

func TestBroadcastDoesNotReachALeftSession(t *testing.T) {
	h := newTestHub(t)
	left := newJoinedSession(t, h, 1)
	h.Leave(left.ID)

	h.Broadcast([]byte("payload"), 0)
	assertEmpty(t, left)
}

func TestAddDropAndPickupDrop(t *testing.T) {
	h := newTestHub(t)
	picker := newJoinedSession(t, h, 1)

	item := protocol.Item{TypeMajor: protocol.ItemTypeCoin}
	pos := protocol.Vec3I64{X: 1, Y: 1, Z: 0}
	h.AddDrop(item, pos, 0)

	// The broadcast for the new drop.
	drainOne(t, picker)

	zone := h.ZoneOf(pos)
	picked, ok := h.PickupDrop(picker.ID, zone, 0)
	if !ok {
		t.Fatal("PickupDrop reported not found for the drop just added")
	}
	if picked.TypeMajor != protocol.ItemTypeCoin {
		t.Fatalf("picked up item = %+v, want TypeMajor ItemTypeCoin", picked)
	}

	// The zone-update broadcast, then the picker's own pickup-sound send.
	drainOne(t, picker)
	drainOne(t, picker)

	if got := h.Drops().Snapshot(zone); len(got) != 0 {
		t.Fatalf("drop registry still has %d drops after pickup", len(got))
	}
}

func TestPickupDropMissingReturnsFalse(t *testing.T) {
	h := newTestHub(t)
	_, ok := h.PickupDrop(protocol.CreatureID(1), world.Zone{X: 0, Y: 0}, 0)
	if ok {
		t.Fatal("PickupDrop on an empty zone reported ok=true")
	}
}

func TestHitSoundByType(t *testing.T) {
	cases := []struct {
		typ      protocol.HitType
		wantKind protocol.SoundKind
		wantNil  bool
	}{
		{protocol.HitBlock, protocol.SoundBlock, false},
		{protocol.HitMiss, protocol.SoundBlock, false},
		{protocol.HitAbsorb, protocol.SoundAbsorb, false},
		{protocol.HitDodge, 0, true},
		{protocol.HitInvisible, 0, true},
	}
	for _, c := range cases {
		sounds := HitSound(protocol.Hit{Type: c.typ}, protocol.RaceHumanMale)
		if c.wantNil {
			if sounds != nil {
				t.Errorf("HitSound(%v) = %v, want nil", c.typ, sounds)
			}
			continue
		}
		if len(sounds) == 0 || sounds[0].Kind != c.wantKind {
			t.Errorf("HitSound(%v) = %+v, want first sound kind %v", c.typ, sounds, c.wantKind)
		}
	}
}
