package world

import (
	"sync"

	"github.com/cubeworld/relay/internal/protocol"
)

// settleDropTime is the droptime value broadcast for a just-added drop,
// matching the client's settle animation duration in milliseconds.
const settleDropTime = 500

// DropRegistry is the zone-sharded table of items currently lying on the
// ground. All access is guarded by a single RWMutex; critical sections are
// kept short and callers broadcast from a cloned snapshot taken after the
// lock is released.
type DropRegistry struct {
	mu       sync.RWMutex
	bySizeZ  int64
	zones    map[Zone][]protocol.Drop
}

// NewDropRegistry returns an empty registry sharding by sizeZone-wide zones.
func NewDropRegistry(sizeZone int64) *DropRegistry {
	return &DropRegistry{bySizeZ: sizeZone, zones: make(map[Zone][]protocol.Drop)}
}

// Add inserts item as a new ground drop at position/rotation and returns
// the zone it landed in together with a snapshot of that zone's drops
// (with the new drop's DropTime rewritten to the settle duration) for the
// caller to broadcast.
func (d *DropRegistry) Add(item protocol.Item, position protocol.Vec3I64, rotation float32) (Zone, []protocol.Drop) {
	zone := ZoneOf(position, d.bySizeZ)

	drop := protocol.Drop{
		Item:     item,
		Position: position,
		Rotation: rotation,
		Scale:    1,
	}

	d.mu.Lock()
	d.zones[zone] = append(d.zones[zone], drop)
	snapshot := cloneDrops(d.zones[zone])
	d.mu.Unlock()
	snapshot[len(snapshot)-1].DropTime = settleDropTime

	return zone, snapshot
}

// Remove swap-removes the drop at index within zone and returns the full
// removed record plus the remaining snapshot for broadcast. If the zone
// becomes empty its entry is deleted entirely. ok is false if the zone or
// index does not exist.
func (d *DropRegistry) Remove(zone Zone, index int) (removed protocol.Drop, snapshot []protocol.Drop, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	drops, found := d.zones[zone]
	if !found || index < 0 || index >= len(drops) {
		return protocol.Drop{}, nil, false
	}
	removed = drops[index]

	last := len(drops) - 1
	drops[index] = drops[last]
	drops = drops[:last]

	if len(drops) == 0 {
		delete(d.zones, zone)
		return removed, nil, true
	}
	d.zones[zone] = drops
	return removed, cloneDrops(drops), true
}

// Snapshot returns a copy of the drops currently registered in zone.
func (d *DropRegistry) Snapshot(zone Zone) []protocol.Drop {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneDrops(d.zones[zone])
}

// AllZoneDrops returns every zone's current drops, for the WorldUpdate a
// newly joined player receives describing the whole world's ground items.
func (d *DropRegistry) AllZoneDrops() []protocol.ZoneDrops {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]protocol.ZoneDrops, 0, len(d.zones))
	for zone, drops := range d.zones {
		out = append(out, protocol.ZoneDrops{Zone: zone.ToVec2I32(), Drops: cloneDrops(drops)})
	}
	return out
}

func cloneDrops(drops []protocol.Drop) []protocol.Drop {
	out := make([]protocol.Drop, len(drops))
	copy(out, drops)
	return out
}
