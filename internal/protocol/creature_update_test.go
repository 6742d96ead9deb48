package protocol

import (
	"bytes"
	"compress/zlib"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func TestCreatureUpdateRoundTripPartial(t *testing.T) {
	in := &CreatureUpdate{
		ID:       42,
		Position: ptr(Vec3I64{X: 1, Y: 2, Z: 3}),
		Health:   ptr(float32(75.5)),
		Name:     ptr("Scout"),
		Flags:    ptr(FlagSet16(1 << CreatureSprinting)),
	}

	var buf bytes.Buffer
	if err := EncodeCreatureUpdate(&buf, in); err != nil {
		t.Fatalf("EncodeCreatureUpdate: %v", err)
	}

	if _, err := ReadPacketID(&buf); err != nil {
		t.Fatalf("ReadPacketID: %v", err)
	}

	out, err := DecodeCreatureUpdate(&buf)
	if err != nil {
		t.Fatalf("DecodeCreatureUpdate: %v", err)
	}

	if out.ID != in.ID {
		t.Errorf("ID = %v, want %v", out.ID, in.ID)
	}
	if out.Position == nil || *out.Position != *in.Position {
		t.Errorf("Position = %v, want %v", out.Position, in.Position)
	}
	if out.Health == nil || *out.Health != *in.Health {
		t.Errorf("Health = %v, want %v", out.Health, in.Health)
	}
	if out.Name == nil || *out.Name != *in.Name {
		t.Errorf("Name = %v, want %v", out.Name, in.Name)
	}
	if out.Flags == nil || *out.Flags != *in.Flags {
		t.Errorf("Flags = %v, want %v", out.Flags, in.Flags)
	}

	// Every field not set on the way in must still be nil on the way out.
	if out.Rotation != nil || out.Velocity != nil || out.Mana != nil || out.Equipment != nil {
		t.Errorf("unset field came back non-nil: %+v", out)
	}
}

func TestCreatureUpdateRoundTripEmpty(t *testing.T) {
	in := &CreatureUpdate{ID: 7}

	var buf bytes.Buffer
	if err := EncodeCreatureUpdate(&buf, in); err != nil {
		t.Fatalf("EncodeCreatureUpdate: %v", err)
	}
	if _, err := ReadPacketID(&buf); err != nil {
		t.Fatalf("ReadPacketID: %v", err)
	}
	out, err := DecodeCreatureUpdate(&buf)
	if err != nil {
		t.Fatalf("DecodeCreatureUpdate: %v", err)
	}
	if out.ID != 7 {
		t.Errorf("ID = %v, want 7", out.ID)
	}
	if presenceBitfield(out) != 0 {
		t.Errorf("expected no fields present, got bitfield %#x", presenceBitfield(out))
	}
}

func TestCreatureUpdateTrailingBytesRejected(t *testing.T) {
	// Hand-build an inflated body that claims (via a zero bitfield) that no
	// fields are present, yet still has 4 extra bytes trailing behind the
	// id+bitfield header. DecodeCreatureUpdate must reject it.
	body := NewWriter()
	body.I64(1)
	body.U64(0)
	body.I32(0xDEAD)

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(body.Bytes()); err != nil {
		t.Fatalf("deflate: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("deflate close: %v", err)
	}

	var framed bytes.Buffer
	var lenBuf [4]byte
	putU32LE(lenBuf[:], uint32(compressed.Len()))
	framed.Write(lenBuf[:])
	framed.Write(compressed.Bytes())

	if _, err := DecodeCreatureUpdate(&framed); err == nil {
		t.Fatal("expected trailing-bytes error, got nil")
	}
}
