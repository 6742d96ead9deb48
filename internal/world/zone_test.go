package world

import (
	"testing"

	"github.com/cubeworld/relay/internal/protocol"
)

func TestZoneOfFloorDivision(t *testing.T) {
	const sizeZone = 32

	cases := []struct {
		pos  protocol.Vec3I64
		want Zone
	}{
		{protocol.Vec3I64{X: 0, Y: 0, Z: 0}, Zone{X: 0, Y: 0}},
		{protocol.Vec3I64{X: 31, Y: 31, Z: 0}, Zone{X: 0, Y: 0}},
		{protocol.Vec3I64{X: 32, Y: 32, Z: 0}, Zone{X: 1, Y: 1}},
		{protocol.Vec3I64{X: -1, Y: -1, Z: 0}, Zone{X: -1, Y: -1}},
		{protocol.Vec3I64{X: -32, Y: -32, Z: 0}, Zone{X: -1, Y: -1}},
		{protocol.Vec3I64{X: -33, Y: 0, Z: 0}, Zone{X: -2, Y: 0}},
	}

	for _, c := range cases {
		got := ZoneOf(c.pos, sizeZone)
		if got != c.want {
			t.Errorf("ZoneOf(%+v, %d) = %+v, want %+v", c.pos, sizeZone, got, c.want)
		}
	}
}

func TestZoneToVec2I32(t *testing.T) {
	z := Zone{X: 3, Y: -4}
	v := z.ToVec2I32()
	if v.X != 3 || v.Y != -4 {
		t.Fatalf("ToVec2I32() = %+v, want {3 -4}", v)
	}
}
