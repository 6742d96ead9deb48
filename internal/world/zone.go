package world

import "github.com/cubeworld/relay/internal/protocol"

// Zone is a 2D spatial bucket used to shard ground drops.
type Zone struct{ X, Y int32 }

// ZoneOf returns the zone a world position falls in: floor(pos.xy / sizeZone).
func ZoneOf(pos protocol.Vec3I64, sizeZone int64) Zone {
	return Zone{
		X: int32(floorDiv(pos.X, sizeZone)),
		Y: int32(floorDiv(pos.Y, sizeZone)),
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (z Zone) ToVec2I32() protocol.Vec2I32 {
	return protocol.Vec2I32{X: z.X, Y: z.Y}
}
