// Package dispatch drives one connection's full lifecycle: handshake,
// character intake, the per-packet-kind read loop, and teardown. Decoding
// a packet body requires knowing its kind up front (most of the wire
// format has no generic length prefix), so this package — not session —
// owns the read loop and calls straight into the protocol package's
// stream decoders.
package dispatch

import (
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/config"
	"github.com/cubeworld/relay/internal/ext"
	"github.com/cubeworld/relay/internal/hub"
	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/session"
	"github.com/cubeworld/relay/internal/validate"
	"github.com/cubeworld/relay/internal/world"
)

const welcomeText = "Welcome to the relay."

// ServeConn runs the handshake, join flow, and read loop for one accepted
// connection, blocking until the peer disconnects or is kicked. It always
// tears the session down (releasing its CreatureID) before returning.
func ServeConn(conn net.Conn, h *hub.Hub, hooks ext.Hooks, cfg *config.Config, log *zap.Logger) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}
	defer conn.Close()

	s, ok := handshake(conn, h, cfg, log)
	if !ok {
		return
	}

	joined := false
	defer func() { teardown(s, h, hooks, joined) }()

	joined = joinFlow(s, h, hooks)
	if !joined {
		return
	}

	readLoop(s, h, hooks)
}

// handshake performs §4.2 steps 1-6: version negotiation, CreatureID
// allocation, ConnectionAcceptance, and the abnormal CreatureUpdate. It
// returns a started Session on success.
func handshake(conn net.Conn, h *hub.Hub, cfg *config.Config, log *zap.Logger) (*session.Session, bool) {
	pid, err := protocol.ReadPacketID(conn)
	if err != nil || pid != protocol.PacketProtocolVersion {
		return nil, false
	}
	pv, err := protocol.ReadProtocolVersionFrom(conn)
	if err != nil {
		return nil, false
	}
	if pv.Version != protocol.ProtocolVersion {
		frame := protocol.EncodeProtocolVersion(protocol.ProtocolVersionMsg{Version: protocol.ProtocolVersion})
		conn.Write(frame)
		return nil, false
	}

	id := h.IDs().Claim()
	s := session.New(conn, id, cfg.Network.OutQueueSize, cfg.Network.WriteTimeout, log)

	if _, err := conn.Write(protocol.EncodeConnectionAcceptance()); err != nil {
		h.IDs().Free(id)
		return nil, false
	}
	if err := protocol.WriteAbnormalCreatureUpdate(conn, int64(id)); err != nil {
		h.IDs().Free(id)
		return nil, false
	}

	s.Start()
	return s, true
}

// joinFlow performs §4.2 steps 7-9: read the client's first CreatureUpdate,
// run it through the normal merge/validate/broadcast path, and — if
// accepted — register the session and send the rest of the join payload.
// It reports whether the session ended up registered with the hub.
func joinFlow(s *session.Session, h *hub.Hub, hooks ext.Hooks) bool {
	cu, err := protocol.DecodeCreatureUpdate(s.Conn)
	if err != nil {
		return false
	}

	existing := h.Sessions()

	handleCreatureUpdate(s, h, hooks, cu)
	if s.ShouldDisconnect() {
		return false
	}

	h.Join(s)
	hooks.OnJoin(s)

	s.Send(protocol.EncodeMapSeed(protocol.MapSeed{Seed: h.MapSeed()}))
	s.Send(protocol.EncodeChatMessageFromServer(protocol.ChatMessageFromServer{Source: 0, Text: welcomeText}))

	for _, peer := range existing {
		peerChar := peer.Character()
		peerCU := peerChar.ToCreatureUpdate(peer.ID)
		flags := peerChar.Flags
		flags.Set(protocol.CreatureFriendlyFire)
		peerCU.Flags = &flags
		if data, err := protocol.EncodeCreatureUpdateBytes(peerCU); err == nil {
			s.Send(data)
		}
	}

	s.Send(protocol.EncodeWorldUpdate(protocol.WorldUpdate{Drops: h.Drops().AllZoneDrops()}))

	name := strings.TrimRight(s.Character().Name, "\x00")
	h.Announce(fmt.Sprintf("[+] %s", name))
	return true
}

// readLoop dispatches packets until the connection fails or the session is
// flagged for disconnect (kick).
func readLoop(s *session.Session, h *hub.Hub, hooks ext.Hooks) {
	for {
		if s.ShouldDisconnect() || s.IsClosed() {
			return
		}
		pid, err := protocol.ReadPacketID(s.Conn)
		if err != nil {
			return
		}
		if !dispatchOne(s, h, hooks, pid) {
			return
		}
	}
}

// dispatchOne decodes and handles exactly one packet body already
// identified by pid. A panic anywhere in a handler is recovered, logged,
// and treated like any other MalformedPacket: the connection closes.
func dispatchOne(s *session.Session, h *hub.Hub, hooks ext.Hooks, pid protocol.PacketID) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error("panic handling packet", zap.Any("recover", r), zap.String("packet", pid.String()))
			ok = false
		}
	}()

	switch pid {
	case protocol.PacketCreatureUpdate:
		cu, err := protocol.DecodeCreatureUpdate(s.Conn)
		if err != nil {
			return false
		}
		handleCreatureUpdate(s, h, hooks, cu)

	case protocol.PacketCreatureAction:
		a, err := protocol.ReadCreatureActionFrom(s.Conn)
		if err != nil {
			return false
		}
		handleCreatureAction(s, h, a)

	case protocol.PacketHit:
		hit, err := protocol.ReadHitFrom(s.Conn)
		if err != nil {
			return false
		}
		handleHit(s, h, hooks, hit)

	case protocol.PacketStatusEffect:
		se, err := protocol.ReadStatusEffectFrom(s.Conn)
		if err != nil {
			return false
		}
		handleStatusEffect(s, h, se)

	case protocol.PacketProjectile:
		p, err := protocol.ReadProjectileFrom(s.Conn)
		if err != nil {
			return false
		}
		h.Broadcast(protocol.EncodeProjectile(p), s.ID)

	case protocol.PacketChatMessageFromClient:
		cm, err := protocol.ReadChatMessageFromClientFrom(s.Conn)
		if err != nil {
			return false
		}
		handleChat(s, h, hooks, cm)

	case protocol.PacketZoneDiscovery:
		if _, err := protocol.ReadZoneDiscoveryFrom(s.Conn); err != nil {
			return false
		}

	case protocol.PacketRegionDiscovery:
		if _, err := protocol.ReadRegionDiscoveryFrom(s.Conn); err != nil {
			return false
		}

	default:
		// Unknown ID, or a kind the vanilla client never originates
		// (ConnectionAcceptance, WorldUpdate, IngameDatetime,
		// ChatMessageFromServer, MapSeed, a second ProtocolVersion):
		// MalformedPacket, close silently.
		return false
	}
	return true
}

// handleCreatureUpdate runs the merge/validate/broadcast pipeline for an
// inbound character delta. On acceptance it lets hooks.OnCreatureUpdate
// transform the delta in place before broadcasting the (possibly
// transformed) packet to every other session.
func handleCreatureUpdate(s *session.Session, h *hub.Hub, hooks ext.Hooks, cu *protocol.CreatureUpdate) {
	previous, updated := s.MergeCharacter(cu)
	if violations := validate.Character(cu, previous, updated); len(violations) > 0 {
		kick(s, violations)
		return
	}

	hooks.OnCreatureUpdate(s, cu)

	data, err := protocol.EncodeCreatureUpdateBytes(cu)
	if err != nil {
		s.Log.Error("encode creature update", zap.Error(err))
		return
	}
	h.Broadcast(data, s.ID)
}

// handleCreatureAction resolves the drop/pickup seam against the hub's
// ground-item registry; every other action kind (bomb, talk, object
// interaction, call pet) the core does not interpret and simply relays.
func handleCreatureAction(s *session.Session, h *hub.Hub, a protocol.CreatureAction) {
	switch a.Type {
	case protocol.CreatureActionDrop:
		pos := s.Character().Position
		h.AddDrop(a.Item, pos, 0)
	case protocol.CreatureActionPickUp:
		zone := world.Zone{X: a.Chunk.X, Y: a.Chunk.Y}
		h.PickupDrop(s.ID, zone, int(a.ItemIndex))
	default:
		h.Broadcast(protocol.EncodeCreatureAction(a), s.ID)
	}
}

// handleHit lets hooks.OnHit adjust the hit, then relays it plus its
// computed impact sound to the target only — never broadcast.
func handleHit(s *session.Session, h *hub.Hub, hooks ext.Hooks, hit protocol.Hit) {
	hooks.OnHit(s, &hit)
	target, ok := h.Get(hit.Target)
	if !ok {
		return
	}
	sounds := hub.HitSound(hit, target.Character().Race)
	target.Send(protocol.EncodeWorldUpdate(protocol.WorldUpdate{Hits: []protocol.Hit{hit}, Sounds: sounds}))
}

// handleStatusEffect relays the effect to every other peer and, for
// Poison, starts the hub's periodic damage tick against the target.
func handleStatusEffect(s *session.Session, h *hub.Hub, se protocol.StatusEffect) {
	h.Broadcast(protocol.EncodeStatusEffect(se), s.ID)
	if se.Type == protocol.StatusEffectPoison {
		h.PoisonTick(se.Target, se.Duration, se.Modifier)
	}
}

// handleChat lets an extension hook claim the message (slash-command
// style); otherwise it is relayed to everyone, source included, as a
// ChatMessageFromServer naming the speaker.
func handleChat(s *session.Session, h *hub.Hub, hooks ext.Hooks, cm protocol.ChatMessageFromClient) {
	if hooks.OnChat(s, cm.Text) {
		return
	}
	h.Broadcast(protocol.EncodeChatMessageFromServer(cm.IntoReverse(s.ID)), 0)
}

// kick sends the rejected-update's violations as a chat line and flags the
// session for disconnect; the read loop observes the flag and exits.
func kick(s *session.Session, violations []validate.Violation) {
	reasons := make([]string, len(violations))
	for i, v := range violations {
		reasons[i] = v.String()
	}
	s.Log.Warn("validator rejected update", zap.Strings("violations", reasons))
	msg := "disconnected: " + strings.Join(reasons, "; ")
	s.Send(protocol.EncodeChatMessageFromServer(protocol.ChatMessageFromServer{Source: 0, Text: msg}))
	s.RequestDisconnect()
}

// teardown implements §4.2 step 11. If the session was never actually
// registered (handshake failed, or the very first CreatureUpdate was
// rejected) there is nothing to announce or broadcast — only the
// CreatureID is released.
func teardown(s *session.Session, h *hub.Hub, hooks ext.Hooks, joined bool) {
	if !joined {
		h.IDs().Free(s.ID)
		s.Close()
		return
	}

	h.Leave(s.ID)

	removed := s.Character()
	removed.Health = 0
	removed.Affiliation = protocol.AffiliationNeutral
	if data, err := protocol.EncodeCreatureUpdateBytes(removed.ToCreatureUpdate(s.ID)); err == nil {
		h.Broadcast(data, 0)
	}
	h.Announce(fmt.Sprintf("[-] %s", strings.TrimRight(removed.Name, "\x00")))

	hooks.OnLeave(s)
	h.IDs().Free(s.ID)
	s.Close()
}
