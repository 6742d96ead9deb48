// Package hub holds the set of connected sessions and the broadcast
// primitive every packet handler fans work out through, plus the
// background tasks that are not tied to any one connection (time freeze,
// poison ticks, delayed drop-settle sounds).
package hub

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/config"
	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/session"
	"github.com/cubeworld/relay/internal/world"
)

// timeFreezeInterval is how often the in-game clock broadcast refires.
const timeFreezeInterval = 6 * time.Second

// noonFrozen is the IngameDatetime the world clock is pinned to (noon, in
// milliseconds of the day); the relay does not simulate a day/night cycle.
var noonFrozen = protocol.IngameDatetime{Time: 12 * 60 * 60 * 1000, Day: 0}

// Hub is the registry of connected sessions and the authority for
// everything that spans more than one of them.
type Hub struct {
	mu      sync.RWMutex
	players map[protocol.CreatureID]*session.Session

	drops *world.DropRegistry
	ids   *world.IDPool

	sizeZone int64
	mapSeed  int32

	log *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an empty Hub and starts its background tasks. Call Shutdown
// to stop them and release every session.
func New(cfg *config.Config, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		players:  make(map[protocol.CreatureID]*session.Session),
		drops:    world.NewDropRegistry(cfg.World.SizeZone),
		ids:      world.NewIDPool(),
		sizeZone: cfg.World.SizeZone,
		mapSeed:  cfg.World.MapSeed,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
	h.wg.Add(1)
	go h.timeFreezeLoop()
	return h
}

// Shutdown cancels every background task and blocks until they exit.
func (h *Hub) Shutdown() {
	h.cancel()
	h.wg.Wait()
}

// IDs exposes the creature-id allocator for the accept path.
func (h *Hub) IDs() *world.IDPool {
	return h.ids
}

// MapSeed returns the seed published to newly joined players.
func (h *Hub) MapSeed() int32 {
	return h.mapSeed
}

// Join registers s so it starts receiving broadcasts and appears in
// Sessions().
func (h *Hub) Join(s *session.Session) {
	h.mu.Lock()
	h.players[s.ID] = s
	h.mu.Unlock()
}

// Leave removes id from the registry. It is a no-op if id was never
// joined (or already left).
func (h *Hub) Leave(id protocol.CreatureID) {
	h.mu.Lock()
	delete(h.players, id)
	h.mu.Unlock()
}

// Get returns the session for id, if still connected.
func (h *Hub) Get(id protocol.CreatureID) (*session.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.players[id]
	return s, ok
}

// Sessions returns a snapshot of every currently joined session. Safe to
// range over after the lock is released; membership may change underneath
// a long-running caller but the slice itself is stable.
func (h *Hub) Sessions() []*session.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*session.Session, 0, len(h.players))
	for _, s := range h.players {
		out = append(out, s)
	}
	return out
}

// Count returns the number of currently joined sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.players)
}

// Broadcast enqueues data on every joined session's send queue except
// skip (if skip is 0, nothing is excluded — 0 is never a live creature
// id). The players read lock is held for the whole fan-out loop,
// including each session's Send; Send never blocks (a full queue
// disconnects that peer instead), so a saturated peer cannot stall this
// call or any other recipient.
func (h *Hub) Broadcast(data []byte, skip protocol.CreatureID) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.players {
		if id == skip {
			continue
		}
		s.Send(data)
	}
}

// Drops exposes the ground-item registry to packet handlers.
func (h *Hub) Drops() *world.DropRegistry {
	return h.drops
}

// ZoneOf is a convenience wrapper around world.ZoneOf using the hub's
// configured zone size.
func (h *Hub) ZoneOf(pos protocol.Vec3I64) world.Zone {
	return world.ZoneOf(pos, h.sizeZone)
}

// AddDrop registers a new ground item, broadcasts the owning zone's
// updated drop list plus a drop sound, and schedules the delayed
// "settled" sound the client plays once the item has landed.
func (h *Hub) AddDrop(item protocol.Item, pos protocol.Vec3I64, rotation float32) {
	zone, snapshot := h.drops.Add(item, pos, rotation)

	wu := protocol.WorldUpdate{
		Drops:  []protocol.ZoneDrops{{Zone: zone.ToVec2I32(), Drops: snapshot}},
		Sounds: []protocol.Sound{protocol.SoundAt(toVec3F32(pos), protocol.SoundDrop)},
	}
	h.Broadcast(protocol.EncodeWorldUpdate(wu), 0)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		t := time.NewTimer(500 * time.Millisecond)
		defer t.Stop()
		select {
		case <-t.C:
			settled := protocol.WorldUpdate{
				Sounds: []protocol.Sound{protocol.SoundAt(toVec3F32(pos), protocol.SoundDropItem)},
			}
			h.Broadcast(protocol.EncodeWorldUpdate(settled), 0)
		case <-h.ctx.Done():
		}
	}()
}

// PickupDrop removes the drop at (zone, index), broadcasts the resulting
// zone snapshot, and sends interactor a WorldUpdate holding only a pickup
// sound at the drop's position. No record of which item was picked up is
// sent on the wire; the removed item is returned to the caller.
func (h *Hub) PickupDrop(interactor protocol.CreatureID, zone world.Zone, index int) (protocol.Item, bool) {
	removed, snapshot, ok := h.drops.Remove(zone, index)
	if !ok {
		return protocol.Item{}, false
	}

	wu := protocol.WorldUpdate{
		Drops: []protocol.ZoneDrops{{Zone: zone.ToVec2I32(), Drops: snapshot}},
	}
	h.Broadcast(protocol.EncodeWorldUpdate(wu), 0)

	if s, found := h.Get(interactor); found {
		pickup := protocol.WorldUpdate{
			Sounds: []protocol.Sound{protocol.SoundAt(toVec3F32(removed.Position), protocol.SoundPickup)},
		}
		s.Send(protocol.EncodeWorldUpdate(pickup))
	}
	return removed.Item, true
}

// Announce broadcasts a server chat line and plays a positional menu-select
// sound for every recipient at their own location.
func (h *Hub) Announce(text string) {
	chat := protocol.EncodeChatMessageFromServer(protocol.ChatMessageFromServer{Source: 0, Text: text})
	h.Broadcast(chat, 0)
	for _, s := range h.Sessions() {
		pos := toVec3F32(s.Character().Position)
		sound := protocol.WorldUpdate{Sounds: []protocol.Sound{{Position: pos, Kind: protocol.SoundMenuSelect, Volume: 0.5, Pitch: 2}}}
		s.Send(protocol.EncodeWorldUpdate(sound))
	}
}

// PoisonTick starts the periodic damage-over-time task for a StatusEffect
// of type Poison: ⌊duration/500⌋+1 Hit packets 500ms apart, each sourced
// from the target's current position, stopping early if the target has
// disconnected or a send fails.
func (h *Hub) PoisonTick(target protocol.CreatureID, duration int32, modifier float32) {
	ticks := int(duration/500) + 1
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; i < ticks; i++ {
			s, ok := h.Get(target)
			if !ok || s.IsClosed() {
				return
			}
			pos := s.Character().Position
			hit := protocol.Hit{Attacker: 0, Target: target, Damage: modifier, Type: protocol.HitNormal}
			wu := protocol.WorldUpdate{
				Hits:   []protocol.Hit{hit},
				Sounds: []protocol.Sound{protocol.SoundAt(toVec3F32(pos), protocol.SoundAbsorb)},
			}
			s.Send(protocol.EncodeWorldUpdate(wu))

			if i == ticks-1 {
				return
			}
			select {
			case <-ticker.C:
			case <-h.ctx.Done():
				return
			}
		}
	}()
}

// HitSound returns the impact sound (if any) a forwarded Hit should carry,
// plus a race-appropriate groan for a normal hit on a recognized race.
func HitSound(h protocol.Hit, targetRace protocol.Race) []protocol.Sound {
	switch h.Type {
	case protocol.HitBlock, protocol.HitMiss:
		return []protocol.Sound{{Kind: protocol.SoundBlock, Volume: 1, Pitch: 1}}
	case protocol.HitAbsorb:
		return []protocol.Sound{{Kind: protocol.SoundAbsorb, Volume: 1, Pitch: 1}}
	case protocol.HitDodge, protocol.HitInvisible:
		return nil
	default:
		sounds := []protocol.Sound{{Kind: protocol.SoundHit, Volume: 1, Pitch: 1}}
		if groan, ok := protocol.GroanFor(targetRace); ok {
			sounds = append(sounds, protocol.Sound{Kind: groan, Volume: 1, Pitch: 1})
		}
		return sounds
	}
}

func (h *Hub) timeFreezeLoop() {
	defer h.wg.Done()
	ticker := time.NewTicker(timeFreezeInterval)
	defer ticker.Stop()
	frame := protocol.EncodeIngameDatetime(noonFrozen)
	for {
		select {
		case <-ticker.C:
			h.Broadcast(frame, 0)
		case <-h.ctx.Done():
			return
		}
	}
}

func toVec3F32(p protocol.Vec3I64) protocol.Vec3F32 {
	return protocol.Vec3F32{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
}
