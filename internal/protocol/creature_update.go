package protocol

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
)

// CreatureID identifies a creature for the lifetime of a server process.
// Zero is reserved and never assigned to a live creature.
type CreatureID int64

// CreatureUpdate is the single packet carrying every mutable field of a
// creature: position, combat stats, appearance, equipment and more. Only
// the fields a sender actually changed are present; every field is a
// pointer so its zero value (nil) distinguishes "unchanged" from "set to
// the zero value". The wire encoding is an i32 length followed by a ZLIB
// stream containing the id, a 64-bit presence bitfield (bits 0..47 used,
// in the fixed order the bit constants below name), then each present
// field's bytes in ascending bit order.
type CreatureUpdate struct {
	ID CreatureID

	Position             *Vec3I64
	Rotation             *Vec3F32
	Velocity             *Vec3F32
	Acceleration         *Vec3F32
	VelocityExtra        *Vec3F32
	ClimbAnimationState  *float32
	FlagsPhysics         *FlagSet32
	Affiliation          *Affiliation
	Race                 *Race
	Animation            *Animation
	AnimationTime        *int32
	Combo                *int32
	HitTimeOut           *int32
	Appearance           *Appearance
	Flags                *FlagSet16
	EffectTimeDodge      *int32
	EffectTimeStun       *int32
	EffectTimeFear       *int32
	EffectTimeChill      *int32
	EffectTimeWind       *int32
	ShowPatchTime        *int32
	CombatClassMajor     *CombatClassMajor
	CombatClassMinor     *CombatClassMinor
	ManaCharge           *float32
	Unknown24            *Vec3F32
	Unknown25            *Vec3F32
	AimOffset            *Vec3F32
	Health               *float32
	Mana                 *float32
	BlockingGauge        *float32
	Multipliers          *Multipliers
	Unknown31            *int8
	Unknown32            *int8
	Level                *int32
	Experience           *int32
	Master               *CreatureID
	Unknown36            *int64
	PowerBase            *int8
	Unknown38            *int32
	HomeChunk            *Vec3I32
	Home                 *Vec3I64
	ChunkToReveal        *Vec3I32
	Unknown42            *int8
	Consumable           *Item
	Equipment            *Equipment
	Name                 *string
	SkillTree            *SkillTree
	ManaCubes            *int32
}

// Bit positions of each optional field within the 64-bit presence field.
const (
	bitPosition = iota
	bitRotation
	bitVelocity
	bitAcceleration
	bitVelocityExtra
	bitClimbAnimationState
	bitFlagsPhysics
	bitAffiliation
	bitRace
	bitAnimation
	bitAnimationTime
	bitCombo
	bitHitTimeOut
	bitAppearance
	bitFlags
	bitEffectTimeDodge
	bitEffectTimeStun
	bitEffectTimeFear
	bitEffectTimeChill
	bitEffectTimeWind
	bitShowPatchTime
	bitCombatClassMajor
	bitCombatClassMinor
	bitManaCharge
	bitUnknown24
	bitUnknown25
	bitAimOffset
	bitHealth
	bitMana
	bitBlockingGauge
	bitMultipliers
	bitUnknown31
	bitUnknown32
	bitLevel
	bitExperience
	bitMaster
	bitUnknown36
	bitPowerBase
	bitUnknown38
	bitHomeChunk
	bitHome
	bitChunkToReveal
	bitUnknown42
	bitConsumable
	bitEquipment
	bitName
	bitSkillTree
	bitManaCubes
)

func presenceBitfield(cu *CreatureUpdate) uint64 {
	var b uint64
	set := func(bit int, present bool) {
		if present {
			b |= 1 << uint(bit)
		}
	}
	set(bitPosition, cu.Position != nil)
	set(bitRotation, cu.Rotation != nil)
	set(bitVelocity, cu.Velocity != nil)
	set(bitAcceleration, cu.Acceleration != nil)
	set(bitVelocityExtra, cu.VelocityExtra != nil)
	set(bitClimbAnimationState, cu.ClimbAnimationState != nil)
	set(bitFlagsPhysics, cu.FlagsPhysics != nil)
	set(bitAffiliation, cu.Affiliation != nil)
	set(bitRace, cu.Race != nil)
	set(bitAnimation, cu.Animation != nil)
	set(bitAnimationTime, cu.AnimationTime != nil)
	set(bitCombo, cu.Combo != nil)
	set(bitHitTimeOut, cu.HitTimeOut != nil)
	set(bitAppearance, cu.Appearance != nil)
	set(bitFlags, cu.Flags != nil)
	set(bitEffectTimeDodge, cu.EffectTimeDodge != nil)
	set(bitEffectTimeStun, cu.EffectTimeStun != nil)
	set(bitEffectTimeFear, cu.EffectTimeFear != nil)
	set(bitEffectTimeChill, cu.EffectTimeChill != nil)
	set(bitEffectTimeWind, cu.EffectTimeWind != nil)
	set(bitShowPatchTime, cu.ShowPatchTime != nil)
	set(bitCombatClassMajor, cu.CombatClassMajor != nil)
	set(bitCombatClassMinor, cu.CombatClassMinor != nil)
	set(bitManaCharge, cu.ManaCharge != nil)
	set(bitUnknown24, cu.Unknown24 != nil)
	set(bitUnknown25, cu.Unknown25 != nil)
	set(bitAimOffset, cu.AimOffset != nil)
	set(bitHealth, cu.Health != nil)
	set(bitMana, cu.Mana != nil)
	set(bitBlockingGauge, cu.BlockingGauge != nil)
	set(bitMultipliers, cu.Multipliers != nil)
	set(bitUnknown31, cu.Unknown31 != nil)
	set(bitUnknown32, cu.Unknown32 != nil)
	set(bitLevel, cu.Level != nil)
	set(bitExperience, cu.Experience != nil)
	set(bitMaster, cu.Master != nil)
	set(bitUnknown36, cu.Unknown36 != nil)
	set(bitPowerBase, cu.PowerBase != nil)
	set(bitUnknown38, cu.Unknown38 != nil)
	set(bitHomeChunk, cu.HomeChunk != nil)
	set(bitHome, cu.Home != nil)
	set(bitChunkToReveal, cu.ChunkToReveal != nil)
	set(bitUnknown42, cu.Unknown42 != nil)
	set(bitConsumable, cu.Consumable != nil)
	set(bitEquipment, cu.Equipment != nil)
	set(bitName, cu.Name != nil)
	set(bitSkillTree, cu.SkillTree != nil)
	set(bitManaCubes, cu.ManaCubes != nil)
	return b
}

func has(bitfield uint64, bit int) bool {
	return bitfield&(1<<uint(bit)) != 0
}

// DecodeCreatureUpdate reads an i32 length prefix, inflates that many
// bytes of ZLIB stream, and decodes the id, presence bitfield and every
// present field from the inflated bytes in ascending bit order. It is an
// error for the inflated stream to contain any trailing bytes once every
// present field has been consumed.
func DecodeCreatureUpdate(r io.Reader) (*CreatureUpdate, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("creature update length: %w", err)
	}
	n := int32(binary.LittleEndian.Uint32(lenBuf[:]))
	if n < 0 {
		return nil, fmt.Errorf("creature update: negative length %d", n)
	}
	compressed, err := ReadExact(r, int(n))
	if err != nil {
		return nil, fmt.Errorf("creature update body: %w", err)
	}
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("creature update inflate: %w", err)
	}
	defer zr.Close()
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("creature update inflate: %w", err)
	}

	rd := NewReader(inflated)
	id, err := rd.I64()
	if err != nil {
		return nil, fmt.Errorf("creature update id: %w", err)
	}
	bitfield, err := rd.U64()
	if err != nil {
		return nil, fmt.Errorf("creature update bitfield: %w", err)
	}

	cu := &CreatureUpdate{ID: CreatureID(id)}

	if has(bitfield, bitPosition) {
		v, err := readVec3I64(rd)
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		cu.Position = &v
	}
	if has(bitfield, bitRotation) {
		v, err := readVec3F32(rd)
		if err != nil {
			return nil, fmt.Errorf("rotation: %w", err)
		}
		cu.Rotation = &v
	}
	if has(bitfield, bitVelocity) {
		v, err := readVec3F32(rd)
		if err != nil {
			return nil, fmt.Errorf("velocity: %w", err)
		}
		cu.Velocity = &v
	}
	if has(bitfield, bitAcceleration) {
		v, err := readVec3F32(rd)
		if err != nil {
			return nil, fmt.Errorf("acceleration: %w", err)
		}
		cu.Acceleration = &v
	}
	if has(bitfield, bitVelocityExtra) {
		v, err := readVec3F32(rd)
		if err != nil {
			return nil, fmt.Errorf("velocity_extra: %w", err)
		}
		cu.VelocityExtra = &v
	}
	if has(bitfield, bitClimbAnimationState) {
		v, err := rd.F32()
		if err != nil {
			return nil, fmt.Errorf("climb_animation_state: %w", err)
		}
		cu.ClimbAnimationState = &v
	}
	if has(bitfield, bitFlagsPhysics) {
		v, err := rd.U32()
		if err != nil {
			return nil, fmt.Errorf("flags_physics: %w", err)
		}
		fs := FlagSet32(v)
		cu.FlagsPhysics = &fs
	}
	if has(bitfield, bitAffiliation) {
		v, err := rd.U8()
		if err != nil {
			return nil, fmt.Errorf("affiliation: %w", err)
		}
		a := Affiliation(v)
		cu.Affiliation = &a
	}
	if has(bitfield, bitRace) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("race: %w", err)
		}
		race := Race(v)
		cu.Race = &race
	}
	if has(bitfield, bitAnimation) {
		v, err := rd.U8()
		if err != nil {
			return nil, fmt.Errorf("animation: %w", err)
		}
		anim := Animation(v)
		cu.Animation = &anim
	}
	if has(bitfield, bitAnimationTime) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("animation_time: %w", err)
		}
		cu.AnimationTime = &v
	}
	if has(bitfield, bitCombo) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("combo: %w", err)
		}
		cu.Combo = &v
	}
	if has(bitfield, bitHitTimeOut) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("hit_time_out: %w", err)
		}
		cu.HitTimeOut = &v
	}
	if has(bitfield, bitAppearance) {
		v, err := readAppearance(rd)
		if err != nil {
			return nil, fmt.Errorf("appearance: %w", err)
		}
		cu.Appearance = &v
	}
	if has(bitfield, bitFlags) {
		v, err := rd.U16()
		if err != nil {
			return nil, fmt.Errorf("flags: %w", err)
		}
		fs := FlagSet16(v)
		cu.Flags = &fs
	}
	if has(bitfield, bitEffectTimeDodge) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("effect_time_dodge: %w", err)
		}
		cu.EffectTimeDodge = &v
	}
	if has(bitfield, bitEffectTimeStun) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("effect_time_stun: %w", err)
		}
		cu.EffectTimeStun = &v
	}
	if has(bitfield, bitEffectTimeFear) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("effect_time_fear: %w", err)
		}
		cu.EffectTimeFear = &v
	}
	if has(bitfield, bitEffectTimeChill) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("effect_time_ice: %w", err)
		}
		cu.EffectTimeChill = &v
	}
	if has(bitfield, bitEffectTimeWind) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("effect_time_wind: %w", err)
		}
		cu.EffectTimeWind = &v
	}
	if has(bitfield, bitShowPatchTime) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("show_patch_time: %w", err)
		}
		cu.ShowPatchTime = &v
	}
	if has(bitfield, bitCombatClassMajor) {
		v, err := rd.I8()
		if err != nil {
			return nil, fmt.Errorf("combat_class_major: %w", err)
		}
		c := CombatClassMajor(v)
		cu.CombatClassMajor = &c
	}
	if has(bitfield, bitCombatClassMinor) {
		v, err := rd.U8()
		if err != nil {
			return nil, fmt.Errorf("combat_class_minor: %w", err)
		}
		c := CombatClassMinor(v)
		cu.CombatClassMinor = &c
	}
	if has(bitfield, bitManaCharge) {
		v, err := rd.F32()
		if err != nil {
			return nil, fmt.Errorf("mana_charge: %w", err)
		}
		cu.ManaCharge = &v
	}
	if has(bitfield, bitUnknown24) {
		v, err := readVec3F32(rd)
		if err != nil {
			return nil, fmt.Errorf("unknown24: %w", err)
		}
		cu.Unknown24 = &v
	}
	if has(bitfield, bitUnknown25) {
		v, err := readVec3F32(rd)
		if err != nil {
			return nil, fmt.Errorf("unknown25: %w", err)
		}
		cu.Unknown25 = &v
	}
	if has(bitfield, bitAimOffset) {
		v, err := readVec3F32(rd)
		if err != nil {
			return nil, fmt.Errorf("aim_offset: %w", err)
		}
		cu.AimOffset = &v
	}
	if has(bitfield, bitHealth) {
		v, err := rd.F32()
		if err != nil {
			return nil, fmt.Errorf("health: %w", err)
		}
		cu.Health = &v
	}
	if has(bitfield, bitMana) {
		v, err := rd.F32()
		if err != nil {
			return nil, fmt.Errorf("mana: %w", err)
		}
		cu.Mana = &v
	}
	if has(bitfield, bitBlockingGauge) {
		v, err := rd.F32()
		if err != nil {
			return nil, fmt.Errorf("blocking_gauge: %w", err)
		}
		cu.BlockingGauge = &v
	}
	if has(bitfield, bitMultipliers) {
		v, err := readMultipliers(rd)
		if err != nil {
			return nil, fmt.Errorf("multipliers: %w", err)
		}
		cu.Multipliers = &v
	}
	if has(bitfield, bitUnknown31) {
		v, err := rd.I8()
		if err != nil {
			return nil, fmt.Errorf("unknown31: %w", err)
		}
		cu.Unknown31 = &v
	}
	if has(bitfield, bitUnknown32) {
		v, err := rd.I8()
		if err != nil {
			return nil, fmt.Errorf("unknown32: %w", err)
		}
		cu.Unknown32 = &v
	}
	if has(bitfield, bitLevel) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("level: %w", err)
		}
		cu.Level = &v
	}
	if has(bitfield, bitExperience) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("experience: %w", err)
		}
		cu.Experience = &v
	}
	if has(bitfield, bitMaster) {
		v, err := rd.I64()
		if err != nil {
			return nil, fmt.Errorf("master: %w", err)
		}
		m := CreatureID(v)
		cu.Master = &m
	}
	if has(bitfield, bitUnknown36) {
		v, err := rd.I64()
		if err != nil {
			return nil, fmt.Errorf("unknown36: %w", err)
		}
		cu.Unknown36 = &v
	}
	if has(bitfield, bitPowerBase) {
		v, err := rd.I8()
		if err != nil {
			return nil, fmt.Errorf("power_base: %w", err)
		}
		cu.PowerBase = &v
	}
	if has(bitfield, bitUnknown38) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("unknown38: %w", err)
		}
		cu.Unknown38 = &v
	}
	if has(bitfield, bitHomeChunk) {
		v, err := readVec3I32(rd)
		if err != nil {
			return nil, fmt.Errorf("home_chunk: %w", err)
		}
		cu.HomeChunk = &v
	}
	if has(bitfield, bitHome) {
		v, err := readVec3I64(rd)
		if err != nil {
			return nil, fmt.Errorf("home: %w", err)
		}
		cu.Home = &v
	}
	if has(bitfield, bitChunkToReveal) {
		v, err := readVec3I32(rd)
		if err != nil {
			return nil, fmt.Errorf("chunk_to_reveal: %w", err)
		}
		cu.ChunkToReveal = &v
	}
	if has(bitfield, bitUnknown42) {
		v, err := rd.I8()
		if err != nil {
			return nil, fmt.Errorf("unknown42: %w", err)
		}
		cu.Unknown42 = &v
	}
	if has(bitfield, bitConsumable) {
		v, err := ReadItem(rd)
		if err != nil {
			return nil, fmt.Errorf("consumable: %w", err)
		}
		cu.Consumable = &v
	}
	if has(bitfield, bitEquipment) {
		v, err := readEquipment(rd)
		if err != nil {
			return nil, fmt.Errorf("equipment: %w", err)
		}
		cu.Equipment = &v
	}
	if has(bitfield, bitName) {
		v, err := rd.Name16()
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		cu.Name = &v
	}
	if has(bitfield, bitSkillTree) {
		v, err := readSkillTree(rd)
		if err != nil {
			return nil, fmt.Errorf("skill_tree: %w", err)
		}
		cu.SkillTree = &v
	}
	if has(bitfield, bitManaCubes) {
		v, err := rd.I32()
		if err != nil {
			return nil, fmt.Errorf("mana_cubes: %w", err)
		}
		cu.ManaCubes = &v
	}

	if rd.Remaining() != 0 {
		return nil, fmt.Errorf("creature update: %d trailing bytes after decode", rd.Remaining())
	}

	return cu, nil
}

// EncodeCreatureUpdate writes the packet-ID header, then the i32 length
// and ZLIB-compressed body: id, presence bitfield, and every present
// field in ascending bit order.
func EncodeCreatureUpdate(w io.Writer, cu *CreatureUpdate) error {
	if err := WritePacketID(w, PacketCreatureUpdate); err != nil {
		return err
	}

	body := NewWriter()
	body.I64(int64(cu.ID))
	body.U64(presenceBitfield(cu))

	if v := cu.Position; v != nil {
		writeVec3I64(body, *v)
	}
	if v := cu.Rotation; v != nil {
		writeVec3F32(body, *v)
	}
	if v := cu.Velocity; v != nil {
		writeVec3F32(body, *v)
	}
	if v := cu.Acceleration; v != nil {
		writeVec3F32(body, *v)
	}
	if v := cu.VelocityExtra; v != nil {
		writeVec3F32(body, *v)
	}
	if v := cu.ClimbAnimationState; v != nil {
		body.F32(*v)
	}
	if v := cu.FlagsPhysics; v != nil {
		body.U32(uint32(*v))
	}
	if v := cu.Affiliation; v != nil {
		body.U8(byte(*v))
	}
	if v := cu.Race; v != nil {
		body.I32(int32(*v))
	}
	if v := cu.Animation; v != nil {
		body.U8(byte(*v))
	}
	if v := cu.AnimationTime; v != nil {
		body.I32(*v)
	}
	if v := cu.Combo; v != nil {
		body.I32(*v)
	}
	if v := cu.HitTimeOut; v != nil {
		body.I32(*v)
	}
	if v := cu.Appearance; v != nil {
		writeAppearance(body, *v)
	}
	if v := cu.Flags; v != nil {
		body.U16(uint16(*v))
	}
	if v := cu.EffectTimeDodge; v != nil {
		body.I32(*v)
	}
	if v := cu.EffectTimeStun; v != nil {
		body.I32(*v)
	}
	if v := cu.EffectTimeFear; v != nil {
		body.I32(*v)
	}
	if v := cu.EffectTimeChill; v != nil {
		body.I32(*v)
	}
	if v := cu.EffectTimeWind; v != nil {
		body.I32(*v)
	}
	if v := cu.ShowPatchTime; v != nil {
		body.I32(*v)
	}
	if v := cu.CombatClassMajor; v != nil {
		body.I8(int8(*v))
	}
	if v := cu.CombatClassMinor; v != nil {
		body.U8(byte(*v))
	}
	if v := cu.ManaCharge; v != nil {
		body.F32(*v)
	}
	if v := cu.Unknown24; v != nil {
		writeVec3F32(body, *v)
	}
	if v := cu.Unknown25; v != nil {
		writeVec3F32(body, *v)
	}
	if v := cu.AimOffset; v != nil {
		writeVec3F32(body, *v)
	}
	if v := cu.Health; v != nil {
		body.F32(*v)
	}
	if v := cu.Mana; v != nil {
		body.F32(*v)
	}
	if v := cu.BlockingGauge; v != nil {
		body.F32(*v)
	}
	if v := cu.Multipliers; v != nil {
		writeMultipliers(body, *v)
	}
	if v := cu.Unknown31; v != nil {
		body.I8(*v)
	}
	if v := cu.Unknown32; v != nil {
		body.I8(*v)
	}
	if v := cu.Level; v != nil {
		body.I32(*v)
	}
	if v := cu.Experience; v != nil {
		body.I32(*v)
	}
	if v := cu.Master; v != nil {
		body.I64(int64(*v))
	}
	if v := cu.Unknown36; v != nil {
		body.I64(*v)
	}
	if v := cu.PowerBase; v != nil {
		body.I8(*v)
	}
	if v := cu.Unknown38; v != nil {
		body.I32(*v)
	}
	if v := cu.HomeChunk; v != nil {
		writeVec3I32(body, *v)
	}
	if v := cu.Home; v != nil {
		writeVec3I64(body, *v)
	}
	if v := cu.ChunkToReveal; v != nil {
		writeVec3I32(body, *v)
	}
	if v := cu.Unknown42; v != nil {
		body.I8(*v)
	}
	if v := cu.Consumable; v != nil {
		WriteItem(body, *v)
	}
	if v := cu.Equipment; v != nil {
		writeEquipment(body, *v)
	}
	if v := cu.Name; v != nil {
		body.Name16(*v)
	}
	if v := cu.SkillTree; v != nil {
		writeSkillTree(body, *v)
	}
	if v := cu.ManaCubes; v != nil {
		body.I32(*v)
	}

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(body.Bytes()); err != nil {
		return fmt.Errorf("creature update deflate: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("creature update deflate: %w", err)
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(compressed.Len()))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(compressed.Bytes())
	return err
}
