package dispatch

import (
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/config"
	"github.com/cubeworld/relay/internal/ext"
	"github.com/cubeworld/relay/internal/hub"
	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/validate/data"
	"github.com/cubeworld/relay/internal/world"
)

// validJoinCharacter builds a Character that satisfies every validator
// check at once, so it can be sent as the very first CreatureUpdate
// without tripping the anti-cheat kick.
func validJoinCharacter() world.Character {
	race := protocol.RaceHumanMale
	profile := data.AppearanceByRace[race]

	return world.Character{
		Race:             race,
		Affiliation:      protocol.AffiliationPlayer,
		CombatClassMajor: protocol.CombatClassWarrior,
		CombatClassMinor: protocol.CombatClassMinorDefault,
		Name:             "Hero",
		Level:            10,
		Mana:             1,
		Multipliers: protocol.Multipliers{
			Health: 100, AttackSpeed: 1, Damage: 1, Armor: 1, Resi: 1,
		},
		Appearance: protocol.Appearance{
			HeadModel:      profile.HeadModel.Min,
			HairModel:      profile.HairModel.Min,
			HandModel:      profile.HandModel.Min,
			FootModel:      profile.FootModel,
			BodyModel:      profile.BodyModel,
			TailModel:      data.FixedTailModel,
			Shoulder2Model: data.FixedShoulder2Model,
			WingModel:      data.FixedWingModel,
			CreatureSize:   protocol.Vec3F32{X: profile.Hitbox.Width, Y: profile.Hitbox.Depth, Z: profile.Hitbox.Height},
			HeadSize:       profile.HeadSize,
			BodySize:       profile.BodySize,
			Shoulder1Size:  profile.Shoulder1Size,
			WeaponSize:     profile.WeaponSize,
			HandSize:       data.FixedHandSize,
			FootSize:       data.FixedFootSize,
			TailSize:       data.FixedTailSize,
			Shoulder2Size:  data.FixedShoulder2Size,
			WingSize:       data.FixedWingSize,
			BodyRotation:   data.FixedBodyRotation,
			FeetRotation:   data.FixedFeetRotation,
			WingRotation:   data.FixedWingRotation,
			TailRotation:   data.FixedTailRotation,
			BodyOffset:     data.FixedBodyOffset,
			HeadOffset:     data.HeadOffsetFor(race),
			HandOffset:     data.FixedHandOffset,
			FootOffset:     data.FixedFootOffset,
			TailOffset:     data.FixedTailOffset,
			WingOffset:     data.FixedWingOffset,
		},
	}
}

func newTestHub(t *testing.T) *hub.Hub {
	t.Helper()
	h := hub.New(config.Default(), zap.NewNop())
	t.Cleanup(h.Shutdown)
	return h
}

// serve starts ServeConn against a net.Pipe and returns the client end.
func serve(t *testing.T, h *hub.Hub, hooks ext.Hooks) net.Conn {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })
	go ServeConn(server, h, hooks, config.Default(), zap.NewNop())
	return client
}

func writeFrame(t *testing.T, conn net.Conn, pid protocol.PacketID, body []byte) {
	t.Helper()
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(pid))
	if _, err := conn.Write(append(hdr[:], body...)); err != nil {
		t.Fatalf("writing frame %v: %v", pid, err)
	}
}

// recvFrame reads one packet-ID header followed by whatever body bytes
// arrive from the same underlying Write within a short window. Safe
// because the session's writer issues exactly one conn.Write per queued
// frame, so a single Read after the header never crosses into the next
// frame; a frame with no body (or one already read to the end) simply
// times out with zero extra bytes.
func recvFrame(t *testing.T, conn net.Conn) (protocol.PacketID, *protocol.Reader) {
	t.Helper()
	var hdr [4]byte
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		t.Fatalf("reading packet id: %v", err)
	}
	pid := protocol.PacketID(binary.LittleEndian.Uint32(hdr[:]))

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 32*1024)
	n, err := conn.Read(buf)
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		return pid, protocol.NewReader(nil)
	}
	return pid, protocol.NewReader(buf[:n])
}

// doHandshake sends a matching ProtocolVersion and reads back the fixed
// ConnectionAcceptance + abnormal CreatureUpdate pair, returning the
// assigned CreatureID.
func doHandshake(t *testing.T, client net.Conn) protocol.CreatureID {
	t.Helper()
	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, protocol.ProtocolVersion)
	writeFrame(t, client, protocol.PacketProtocolVersion, body)

	var accept [4]byte
	if _, err := io.ReadFull(client, accept[:]); err != nil {
		t.Fatalf("reading ConnectionAcceptance: %v", err)
	}
	if got := protocol.PacketID(binary.LittleEndian.Uint32(accept[:])); got != protocol.PacketConnectionAcceptance {
		t.Fatalf("first frame = %v, want ConnectionAcceptance", got)
	}

	abnormal := make([]byte, 4+8+4456)
	if _, err := io.ReadFull(client, abnormal); err != nil {
		t.Fatalf("reading abnormal CreatureUpdate: %v", err)
	}
	if got := protocol.PacketID(binary.LittleEndian.Uint32(abnormal[:4])); got != protocol.PacketCreatureUpdate {
		t.Fatalf("second frame = %v, want CreatureUpdate", got)
	}
	id := int64(binary.LittleEndian.Uint64(abnormal[4:12]))
	return protocol.CreatureID(id)
}

// sendJoinUpdate writes c as the unframed first CreatureUpdate the join
// flow expects: a length-prefixed ZLIB body with no packet-ID header.
func sendJoinUpdate(t *testing.T, client net.Conn, c world.Character) {
	t.Helper()
	framed, err := protocol.EncodeCreatureUpdateBytes(c.ToCreatureUpdate(0))
	if err != nil {
		t.Fatalf("encoding join update: %v", err)
	}
	if _, err := client.Write(framed[4:]); err != nil {
		t.Fatalf("writing join update: %v", err)
	}
}

func sendCreatureUpdate(t *testing.T, client net.Conn, cu *protocol.CreatureUpdate) {
	t.Helper()
	framed, err := protocol.EncodeCreatureUpdateBytes(cu)
	if err != nil {
		t.Fatalf("encoding creature update: %v", err)
	}
	if _, err := client.Write(framed); err != nil {
		t.Fatalf("writing creature update: %v", err)
	}
}

func TestHandshakeRejectsMismatchedProtocolVersion(t *testing.T) {
	h := newTestHub(t)
	client := serve(t, h, ext.NoOp())

	body := make([]byte, 4)
	binary.LittleEndian.PutUint32(body, protocol.ProtocolVersion+1)
	writeFrame(t, client, protocol.PacketProtocolVersion, body)

	var hdr [4]byte
	if _, err := io.ReadFull(client, hdr[:]); err != nil {
		t.Fatalf("reading rejection header: %v", err)
	}
	if got := protocol.PacketID(binary.LittleEndian.Uint32(hdr[:])); got != protocol.PacketProtocolVersion {
		t.Fatalf("rejection frame id = %v, want ProtocolVersion", got)
	}
	var versionBody [4]byte
	if _, err := io.ReadFull(client, versionBody[:]); err != nil {
		t.Fatalf("reading rejection body: %v", err)
	}
	if got := binary.LittleEndian.Uint32(versionBody[:]); got != protocol.ProtocolVersion {
		t.Fatalf("rejection advertises version %d, want %d", got, protocol.ProtocolVersion)
	}

	// The connection is closed right after: no further bytes, no session
	// ever registered.
	one := make([]byte, 1)
	if _, err := client.Read(one); err == nil {
		t.Fatal("expected the connection to be closed after a version mismatch")
	}
	if h.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 after a rejected handshake", h.Count())
	}
}

func TestJoinFlowRegistersSessionAndSendsWelcomePayload(t *testing.T) {
	h := newTestHub(t)
	client := serve(t, h, ext.NoOp())

	id := doHandshake(t, client)
	sendJoinUpdate(t, client, validJoinCharacter())

	pid, _ := recvFrame(t, client)
	if pid != protocol.PacketMapSeed {
		t.Fatalf("first post-join frame = %v, want MapSeed", pid)
	}

	pid, r := recvFrame(t, client)
	if pid != protocol.PacketChatMessageFromServer {
		t.Fatalf("second post-join frame = %v, want ChatMessageFromServer", pid)
	}
	welcome, err := protocol.ReadChatMessageFromServer(r)
	if err != nil {
		t.Fatalf("decoding welcome chat: %v", err)
	}
	if welcome.Text != welcomeText {
		t.Fatalf("welcome text = %q, want %q", welcome.Text, welcomeText)
	}

	pid, _ = recvFrame(t, client)
	if pid != protocol.PacketWorldUpdate {
		t.Fatalf("third post-join frame = %v, want WorldUpdate (drops)", pid)
	}

	pid, r = recvFrame(t, client)
	if pid != protocol.PacketChatMessageFromServer {
		t.Fatalf("fourth post-join frame = %v, want ChatMessageFromServer (announce)", pid)
	}
	announce, err := protocol.ReadChatMessageFromServer(r)
	if err != nil {
		t.Fatalf("decoding announce chat: %v", err)
	}
	if announce.Text != "[+] Hero" {
		t.Fatalf("announce text = %q, want %q", announce.Text, "[+] Hero")
	}

	pid, _ = recvFrame(t, client)
	if pid != protocol.PacketWorldUpdate {
		t.Fatalf("fifth post-join frame = %v, want WorldUpdate (announce sound)", pid)
	}

	if h.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after join", h.Count())
	}
	joined, ok := h.Get(id)
	if !ok {
		t.Fatal("hub does not have the joined session")
	}
	if joined.Character().Name != "Hero" {
		t.Fatalf("joined character name = %q, want %q", joined.Character().Name, "Hero")
	}
}

func TestValidatorKickDisconnectsSession(t *testing.T) {
	h := newTestHub(t)
	client := serve(t, h, ext.NoOp())

	id := doHandshake(t, client)
	sendJoinUpdate(t, client, validJoinCharacter())
	for i := 0; i < 5; i++ {
		recvFrame(t, client) // drain the join payload
	}

	if _, ok := h.Get(id); !ok {
		t.Fatal("session did not join before the kick attempt")
	}

	badLevel := int32(9999)
	sendCreatureUpdate(t, client, &protocol.CreatureUpdate{ID: id, Level: &badLevel})

	pid, r := recvFrame(t, client)
	if pid != protocol.PacketChatMessageFromServer {
		t.Fatalf("kick frame = %v, want ChatMessageFromServer", pid)
	}
	msg, err := protocol.ReadChatMessageFromServer(r)
	if err != nil {
		t.Fatalf("decoding kick message: %v", err)
	}
	if len(msg.Text) == 0 {
		t.Fatal("kick message text is empty")
	}

	one := make([]byte, 1)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := client.Read(one); err == nil {
		t.Fatal("expected the connection to close after the validator kicked the session")
	}

	if _, ok := h.Get(id); ok {
		t.Fatal("kicked session is still registered with the hub")
	}
}

func TestDropAndPickupFlow(t *testing.T) {
	h := newTestHub(t)
	client := serve(t, h, ext.NoOp())

	doHandshake(t, client)
	sendJoinUpdate(t, client, validJoinCharacter())
	for i := 0; i < 5; i++ {
		recvFrame(t, client) // drain the join payload
	}

	drop := protocol.CreatureAction{
		Item: protocol.Item{TypeMajor: protocol.ItemTypeCoin},
		Type: protocol.CreatureActionDrop,
	}
	w := protocol.NewWriter()
	protocol.WriteCreatureAction(w, drop)
	writeFrame(t, client, protocol.PacketCreatureAction, w.Bytes())

	pid, r := recvFrame(t, client)
	if pid != protocol.PacketWorldUpdate {
		t.Fatalf("drop broadcast = %v, want WorldUpdate", pid)
	}
	wu, err := protocol.ReadWorldUpdate(r)
	if err != nil {
		t.Fatalf("decoding drop WorldUpdate: %v", err)
	}
	if len(wu.Drops) != 1 || len(wu.Drops[0].Drops) != 1 {
		t.Fatalf("WorldUpdate drops = %+v, want exactly one zone with one drop", wu.Drops)
	}
	if got := wu.Drops[0].Drops[0].Item.TypeMajor; got != protocol.ItemTypeCoin {
		t.Fatalf("dropped item type = %v, want ItemTypeCoin", got)
	}

	pickup := protocol.CreatureAction{
		Chunk:     protocol.Vec2I32{X: 0, Y: 0},
		ItemIndex: 0,
		Type:      protocol.CreatureActionPickUp,
	}
	w2 := protocol.NewWriter()
	protocol.WriteCreatureAction(w2, pickup)
	writeFrame(t, client, protocol.PacketCreatureAction, w2.Bytes())

	pid, r = recvFrame(t, client)
	if pid != protocol.PacketWorldUpdate {
		t.Fatalf("pickup zone broadcast = %v, want WorldUpdate", pid)
	}
	wu2, err := protocol.ReadWorldUpdate(r)
	if err != nil {
		t.Fatalf("decoding pickup WorldUpdate: %v", err)
	}
	if len(wu2.Drops) != 1 || len(wu2.Drops[0].Drops) != 0 {
		t.Fatalf("WorldUpdate after pickup = %+v, want the zone emptied", wu2.Drops)
	}

	pid, _ = recvFrame(t, client)
	if pid != protocol.PacketWorldUpdate {
		t.Fatalf("pickup sound frame = %v, want WorldUpdate", pid)
	}
}

func TestPoisonStatusEffectAppliesRepeatedHits(t *testing.T) {
	h := newTestHub(t)
	client := serve(t, h, ext.NoOp())

	id := doHandshake(t, client)
	sendJoinUpdate(t, client, validJoinCharacter())
	for i := 0; i < 5; i++ {
		recvFrame(t, client) // drain the join payload
	}

	se := protocol.StatusEffect{Target: id, Type: protocol.StatusEffectPoison, Duration: 500, Modifier: 5}
	w := protocol.NewWriter()
	protocol.WriteStatusEffect(w, se)
	writeFrame(t, client, protocol.PacketStatusEffect, w.Bytes())

	pid, r := recvFrame(t, client)
	if pid != protocol.PacketWorldUpdate {
		t.Fatalf("first poison tick = %v, want WorldUpdate", pid)
	}
	wu, err := protocol.ReadWorldUpdate(r)
	if err != nil {
		t.Fatalf("decoding first poison WorldUpdate: %v", err)
	}
	if len(wu.Hits) != 1 || wu.Hits[0].Target != id {
		t.Fatalf("first poison tick hits = %+v, want one hit against %v", wu.Hits, id)
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	pid2, r2 := recvFrame(t, client)
	client.SetReadDeadline(time.Time{})
	if pid2 != protocol.PacketWorldUpdate {
		t.Fatalf("second poison tick = %v, want WorldUpdate", pid2)
	}
	wu2, err := protocol.ReadWorldUpdate(r2)
	if err != nil {
		t.Fatalf("decoding second poison WorldUpdate: %v", err)
	}
	if len(wu2.Hits) != 1 || wu2.Hits[0].Target != id {
		t.Fatalf("second poison tick hits = %+v, want one hit against %v", wu2.Hits, id)
	}
}
