package protocol

import "fmt"

// Vec2I32 is a 2D point with 32-bit integer components (zone/region grid
// coordinates).
type Vec2I32 struct{ X, Y int32 }

func readVec2I32(r *Reader) (Vec2I32, error) {
	x, err := r.I32()
	if err != nil {
		return Vec2I32{}, err
	}
	y, err := r.I32()
	if err != nil {
		return Vec2I32{}, err
	}
	return Vec2I32{x, y}, nil
}

func writeVec2I32(w *Writer, v Vec2I32) {
	w.I32(v.X)
	w.I32(v.Y)
}

// ProtocolVersionMsg is the client's opening handshake message.
type ProtocolVersionMsg struct {
	Version uint32
}

func ReadProtocolVersion(r *Reader) (ProtocolVersionMsg, error) {
	v, err := r.U32()
	return ProtocolVersionMsg{Version: v}, err
}

func WriteProtocolVersion(w *Writer, m ProtocolVersionMsg) {
	w.U32(m.Version)
}

// ConnectionAcceptance is the empty packet the server sends once a
// connecting client's protocol version has been accepted.
type ConnectionAcceptance struct{}

// CreatureActionType names the kind of a CreatureAction packet.
type CreatureActionType uint8

const (
	CreatureActionBomb CreatureActionType = iota + 1
	CreatureActionTalk
	CreatureActionObjectInteraction
	_
	CreatureActionPickUp
	CreatureActionDrop
	_
	CreatureActionCallPet
)

// CreatureAction is a one-shot interaction a creature performs against the
// world: dropping or picking up an item, talking to an NPC, calling a pet.
type CreatureAction struct {
	Item       Item
	Chunk      Vec2I32
	ItemIndex  int32
	UnknownA   int32
	Type       CreatureActionType
}

func ReadCreatureAction(r *Reader) (CreatureAction, error) {
	var a CreatureAction
	var err error
	if a.Item, err = ReadItem(r); err != nil {
		return a, fmt.Errorf("creature action item: %w", err)
	}
	if a.Chunk, err = readVec2I32(r); err != nil {
		return a, err
	}
	if a.ItemIndex, err = r.I32(); err != nil {
		return a, err
	}
	if a.UnknownA, err = r.I32(); err != nil {
		return a, err
	}
	t, err := r.U8()
	if err != nil {
		return a, err
	}
	a.Type = CreatureActionType(t)
	if _, err := r.Bytes(3); err != nil { // pad
		return a, err
	}
	return a, nil
}

func WriteCreatureAction(w *Writer, a CreatureAction) {
	WriteItem(w, a.Item)
	writeVec2I32(w, a.Chunk)
	w.I32(a.ItemIndex)
	w.I32(a.UnknownA)
	w.U8(byte(a.Type))
	w.RawBytes([]byte{0, 0, 0})
}

// HitType classifies how a Hit landed.
type HitType uint8

const (
	HitNormal HitType = iota
	HitBlock
	HitMiss
	HitAbsorb
	HitDodge
	HitInvisible
)

// Hit is a single instance of damage (or a no-damage combat event such as
// a block or dodge) against a target creature.
type Hit struct {
	Attacker  CreatureID
	Target    CreatureID
	Damage    float32
	Critical  bool
	StunTime  int32
	Position  Vec3I64
	Direction Vec3F32
	IsYellow  bool
	Type      HitType
	Flash     bool
}

func ReadHit(r *Reader) (Hit, error) {
	var h Hit
	var err error
	attacker, err := r.I64()
	if err != nil {
		return h, err
	}
	h.Attacker = CreatureID(attacker)
	target, err := r.I64()
	if err != nil {
		return h, err
	}
	h.Target = CreatureID(target)
	if h.Damage, err = r.F32(); err != nil {
		return h, err
	}
	crit, err := r.U8()
	if err != nil {
		return h, err
	}
	h.Critical = crit != 0
	if h.StunTime, err = r.I32(); err != nil {
		return h, err
	}
	if h.Position, err = readVec3I64(r); err != nil {
		return h, err
	}
	if h.Direction, err = readVec3F32(r); err != nil {
		return h, err
	}
	yellow, err := r.U8()
	if err != nil {
		return h, err
	}
	h.IsYellow = yellow != 0
	typ, err := r.U8()
	if err != nil {
		return h, err
	}
	h.Type = HitType(typ)
	flash, err := r.U8()
	if err != nil {
		return h, err
	}
	h.Flash = flash != 0
	return h, nil
}

func WriteHit(w *Writer, h Hit) {
	w.I64(int64(h.Attacker))
	w.I64(int64(h.Target))
	w.F32(h.Damage)
	w.U8(boolByte(h.Critical))
	w.I32(h.StunTime)
	writeVec3I64(w, h.Position)
	writeVec3F32(w, h.Direction)
	w.U8(boolByte(h.IsYellow))
	w.U8(byte(h.Type))
	w.U8(boolByte(h.Flash))
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// StatusEffectType names the kind of a StatusEffect packet.
type StatusEffectType uint8

const (
	StatusEffectDodge StatusEffectType = iota
	StatusEffectStun
	StatusEffectFear
	StatusEffectChill
	StatusEffectWind
	StatusEffectPoison
	StatusEffectWarFrenzy
)

// StatusEffect applies a timed buff or debuff to a target creature.
// Poison is special-cased by the relay into a periodic damage tick rather
// than a single CreatureUpdate field.
type StatusEffect struct {
	Target   CreatureID
	Type     StatusEffectType
	Duration int32
	Modifier float32
}

func ReadStatusEffect(r *Reader) (StatusEffect, error) {
	var s StatusEffect
	target, err := r.I64()
	if err != nil {
		return s, err
	}
	s.Target = CreatureID(target)
	typ, err := r.U8()
	if err != nil {
		return s, err
	}
	s.Type = StatusEffectType(typ)
	if _, err := r.Bytes(3); err != nil { // pad
		return s, err
	}
	if s.Duration, err = r.I32(); err != nil {
		return s, err
	}
	if s.Modifier, err = r.F32(); err != nil {
		return s, err
	}
	return s, nil
}

func WriteStatusEffect(w *Writer, s StatusEffect) {
	w.I64(int64(s.Target))
	w.U8(byte(s.Type))
	w.RawBytes([]byte{0, 0, 0})
	w.I32(s.Duration)
	w.F32(s.Modifier)
}

// ProjectileKind names the kind of a Projectile packet.
type ProjectileKind uint32

const (
	ProjectileArrow ProjectileKind = iota
	ProjectileMagic
	ProjectileBoomerang
	ProjectileUnknown
	ProjectileBoulder
)

// Projectile announces a thrown or fired object in flight.
type Projectile struct {
	Owner     CreatureID
	Kind      ProjectileKind
	Position  Vec3I64
	Direction Vec3F32
}

func ReadProjectile(r *Reader) (Projectile, error) {
	var p Projectile
	owner, err := r.I64()
	if err != nil {
		return p, err
	}
	p.Owner = CreatureID(owner)
	kind, err := r.U32()
	if err != nil {
		return p, err
	}
	p.Kind = ProjectileKind(kind)
	if p.Position, err = readVec3I64(r); err != nil {
		return p, err
	}
	if p.Direction, err = readVec3F32(r); err != nil {
		return p, err
	}
	return p, nil
}

func WriteProjectile(w *Writer, p Projectile) {
	w.I64(int64(p.Owner))
	w.U32(uint32(p.Kind))
	writeVec3I64(w, p.Position)
	writeVec3F32(w, p.Direction)
}

// Drop is an item lying on the ground, pending pickup.
type Drop struct {
	Item      Item
	Position  Vec3I64
	Rotation  float32
	Scale     float32
	UnknownA  uint8
	DropTime  int32
	UnknownB  int32
}

func ReadDrop(r *Reader) (Drop, error) {
	var d Drop
	var err error
	if d.Item, err = ReadItem(r); err != nil {
		return d, fmt.Errorf("drop item: %w", err)
	}
	if d.Position, err = readVec3I64(r); err != nil {
		return d, err
	}
	if d.Rotation, err = r.F32(); err != nil {
		return d, err
	}
	if d.Scale, err = r.F32(); err != nil {
		return d, err
	}
	a, err := r.U8()
	if err != nil {
		return d, err
	}
	d.UnknownA = a
	if _, err := r.Bytes(3); err != nil { // pad
		return d, err
	}
	if d.DropTime, err = r.I32(); err != nil {
		return d, err
	}
	if d.UnknownB, err = r.I32(); err != nil {
		return d, err
	}
	if _, err := r.Bytes(4); err != nil { // pad
		return d, err
	}
	return d, nil
}

func WriteDrop(w *Writer, d Drop) {
	WriteItem(w, d.Item)
	writeVec3I64(w, d.Position)
	w.F32(d.Rotation)
	w.F32(d.Scale)
	w.U8(d.UnknownA)
	w.RawBytes([]byte{0, 0, 0})
	w.I32(d.DropTime)
	w.I32(d.UnknownB)
	w.RawBytes([]byte{0, 0, 0, 0})
}

// ZoneDrops pairs a zone coordinate with the drops currently lying in it.
type ZoneDrops struct {
	Zone  Vec2I32
	Drops []Drop
}

// WorldUpdate is the catch-all broadcast packet for world-state events
// that are not a single creature's own CreatureUpdate: drops appearing or
// vanishing per zone, hits landing, and sounds playing.
type WorldUpdate struct {
	Drops []ZoneDrops
	Hits  []Hit
	Sounds []Sound
}

func ReadWorldUpdate(r *Reader) (WorldUpdate, error) {
	var wu WorldUpdate
	n, err := r.I32()
	if err != nil {
		return wu, err
	}
	for i := int32(0); i < n; i++ {
		zone, err := readVec2I32(r)
		if err != nil {
			return wu, err
		}
		count, err := r.I32()
		if err != nil {
			return wu, err
		}
		drops := make([]Drop, 0, count)
		for j := int32(0); j < count; j++ {
			d, err := ReadDrop(r)
			if err != nil {
				return wu, fmt.Errorf("world update zone %d drop %d: %w", i, j, err)
			}
			drops = append(drops, d)
		}
		wu.Drops = append(wu.Drops, ZoneDrops{Zone: zone, Drops: drops})
	}

	hitCount, err := r.I32()
	if err != nil {
		return wu, err
	}
	for i := int32(0); i < hitCount; i++ {
		h, err := ReadHit(r)
		if err != nil {
			return wu, fmt.Errorf("world update hit %d: %w", i, err)
		}
		wu.Hits = append(wu.Hits, h)
	}

	soundCount, err := r.I32()
	if err != nil {
		return wu, err
	}
	for i := int32(0); i < soundCount; i++ {
		s, err := readSound(r)
		if err != nil {
			return wu, fmt.Errorf("world update sound %d: %w", i, err)
		}
		wu.Sounds = append(wu.Sounds, s)
	}

	return wu, nil
}

func WriteWorldUpdate(w *Writer, wu WorldUpdate) {
	w.I32(int32(len(wu.Drops)))
	for _, zd := range wu.Drops {
		writeVec2I32(w, zd.Zone)
		w.I32(int32(len(zd.Drops)))
		for _, d := range zd.Drops {
			WriteDrop(w, d)
		}
	}

	w.I32(int32(len(wu.Hits)))
	for _, h := range wu.Hits {
		WriteHit(w, h)
	}

	w.I32(int32(len(wu.Sounds)))
	for _, s := range wu.Sounds {
		writeSound(w, s)
	}
}

// IngameDatetime announces the world clock: the time of day in
// milliseconds, and the day count since world creation.
type IngameDatetime struct {
	Time float32
	Day  int32
}

func ReadIngameDatetime(r *Reader) (IngameDatetime, error) {
	var d IngameDatetime
	var err error
	if d.Time, err = r.F32(); err != nil {
		return d, err
	}
	if d.Day, err = r.I32(); err != nil {
		return d, err
	}
	return d, nil
}

func WriteIngameDatetime(w *Writer, d IngameDatetime) {
	w.F32(d.Time)
	w.I32(d.Day)
}

// ChatMessageFromClient is a chat line as a client sent it.
type ChatMessageFromClient struct {
	Text string
}

// ChatMessageFromServer is a chat line as relayed to every other client,
// naming who said it.
type ChatMessageFromServer struct {
	Source CreatureID
	Text   string
}

// IntoReverse turns a received client chat message into the broadcast form,
// attaching the speaker's creature id.
func (m ChatMessageFromClient) IntoReverse(source CreatureID) ChatMessageFromServer {
	return ChatMessageFromServer{Source: source, Text: m.Text}
}

func readChatText(r *Reader) (string, error) {
	n, err := r.I32()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeChatText(w *Writer, s string) {
	w.I32(int32(len(s)))
	w.RawBytes([]byte(s))
}

func ReadChatMessageFromClient(r *Reader) (ChatMessageFromClient, error) {
	text, err := readChatText(r)
	return ChatMessageFromClient{Text: text}, err
}

func WriteChatMessageFromClient(w *Writer, m ChatMessageFromClient) {
	writeChatText(w, m.Text)
}

func ReadChatMessageFromServer(r *Reader) (ChatMessageFromServer, error) {
	source, err := r.I64()
	if err != nil {
		return ChatMessageFromServer{}, err
	}
	text, err := readChatText(r)
	if err != nil {
		return ChatMessageFromServer{}, err
	}
	return ChatMessageFromServer{Source: CreatureID(source), Text: text}, nil
}

func WriteChatMessageFromServer(w *Writer, m ChatMessageFromServer) {
	w.I64(int64(m.Source))
	writeChatText(w, m.Text)
}

// ZoneDiscovery is sent by a client entering a previously-unexplored zone;
// the relay has nothing to validate or react to, only to acknowledge it
// was received (the vanilla server's handler is a deliberate no-op).
type ZoneDiscovery struct {
	Zone Vec2I32
}

func ReadZoneDiscovery(r *Reader) (ZoneDiscovery, error) {
	z, err := readVec2I32(r)
	return ZoneDiscovery{Zone: z}, err
}

func WriteZoneDiscovery(w *Writer, z ZoneDiscovery) {
	writeVec2I32(w, z.Zone)
}

// RegionDiscovery is the region-granularity counterpart of ZoneDiscovery.
type RegionDiscovery struct {
	Region Vec2I32
}

func ReadRegionDiscovery(r *Reader) (RegionDiscovery, error) {
	z, err := readVec2I32(r)
	return RegionDiscovery{Region: z}, err
}

func WriteRegionDiscovery(w *Writer, z RegionDiscovery) {
	writeVec2I32(w, z.Region)
}

// MapSeed tells a connecting client which seed to generate terrain from.
type MapSeed struct {
	Seed int32
}

func ReadMapSeed(r *Reader) (MapSeed, error) {
	v, err := r.I32()
	return MapSeed{Seed: v}, err
}

func WriteMapSeed(w *Writer, m MapSeed) {
	w.I32(m.Seed)
}
