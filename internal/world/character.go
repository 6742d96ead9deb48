package world

import "github.com/cubeworld/relay/internal/protocol"

// Character is the full, non-optional snapshot of a creature assembled by
// merging successive CreatureUpdate deltas. A freshly joined player starts
// from the zero value; every field a delta omits simply keeps its last
// merged value.
type Character struct {
	Position             protocol.Vec3I64
	Rotation             protocol.Vec3F32
	Velocity             protocol.Vec3F32
	Acceleration         protocol.Vec3F32
	VelocityExtra        protocol.Vec3F32
	ClimbAnimationState  float32
	FlagsPhysics         protocol.FlagSet32
	Affiliation          protocol.Affiliation
	Race                 protocol.Race
	Animation            protocol.Animation
	AnimationTime        int32
	Combo                int32
	HitTimeOut           int32
	Appearance           protocol.Appearance
	Flags                protocol.FlagSet16
	EffectTimeDodge      int32
	EffectTimeStun       int32
	EffectTimeFear       int32
	EffectTimeChill      int32
	EffectTimeWind       int32
	ShowPatchTime        int32
	CombatClassMajor     protocol.CombatClassMajor
	CombatClassMinor     protocol.CombatClassMinor
	ManaCharge           float32
	Unknown24            protocol.Vec3F32
	Unknown25            protocol.Vec3F32
	AimOffset            protocol.Vec3F32
	Health               float32
	Mana                 float32
	BlockingGauge        float32
	Multipliers          protocol.Multipliers
	Unknown31            int8
	Unknown32            int8
	Level                int32
	Experience           int32
	Master               protocol.CreatureID
	Unknown36            int64
	PowerBase            int8
	Unknown38            int32
	HomeChunk            protocol.Vec3I32
	Home                 protocol.Vec3I64
	ChunkToReveal        protocol.Vec3I32
	Unknown42            int8
	Consumable           protocol.Item
	Equipment            protocol.Equipment
	Name                 string
	SkillTree            protocol.SkillTree
	ManaCubes            int32
}

// Merge applies every field present in delta onto a copy of c, returning
// the updated snapshot. c itself is left unmodified so callers can diff
// the previous and next snapshot (e.g. for anti-cheat validation).
func (c Character) Merge(delta *protocol.CreatureUpdate) Character {
	next := c
	if v := delta.Position; v != nil {
		next.Position = *v
	}
	if v := delta.Rotation; v != nil {
		next.Rotation = *v
	}
	if v := delta.Velocity; v != nil {
		next.Velocity = *v
	}
	if v := delta.Acceleration; v != nil {
		next.Acceleration = *v
	}
	if v := delta.VelocityExtra; v != nil {
		next.VelocityExtra = *v
	}
	if v := delta.ClimbAnimationState; v != nil {
		next.ClimbAnimationState = *v
	}
	if v := delta.FlagsPhysics; v != nil {
		next.FlagsPhysics = *v
	}
	if v := delta.Affiliation; v != nil {
		next.Affiliation = *v
	}
	if v := delta.Race; v != nil {
		next.Race = *v
	}
	if v := delta.Animation; v != nil {
		next.Animation = *v
	}
	if v := delta.AnimationTime; v != nil {
		next.AnimationTime = *v
	}
	if v := delta.Combo; v != nil {
		next.Combo = *v
	}
	if v := delta.HitTimeOut; v != nil {
		next.HitTimeOut = *v
	}
	if v := delta.Appearance; v != nil {
		next.Appearance = *v
	}
	if v := delta.Flags; v != nil {
		next.Flags = *v
	}
	if v := delta.EffectTimeDodge; v != nil {
		next.EffectTimeDodge = *v
	}
	if v := delta.EffectTimeStun; v != nil {
		next.EffectTimeStun = *v
	}
	if v := delta.EffectTimeFear; v != nil {
		next.EffectTimeFear = *v
	}
	if v := delta.EffectTimeChill; v != nil {
		next.EffectTimeChill = *v
	}
	if v := delta.EffectTimeWind; v != nil {
		next.EffectTimeWind = *v
	}
	if v := delta.ShowPatchTime; v != nil {
		next.ShowPatchTime = *v
	}
	if v := delta.CombatClassMajor; v != nil {
		next.CombatClassMajor = *v
	}
	if v := delta.CombatClassMinor; v != nil {
		next.CombatClassMinor = *v
	}
	if v := delta.ManaCharge; v != nil {
		next.ManaCharge = *v
	}
	if v := delta.Unknown24; v != nil {
		next.Unknown24 = *v
	}
	if v := delta.Unknown25; v != nil {
		next.Unknown25 = *v
	}
	if v := delta.AimOffset; v != nil {
		next.AimOffset = *v
	}
	if v := delta.Health; v != nil {
		next.Health = *v
	}
	if v := delta.Mana; v != nil {
		next.Mana = *v
	}
	if v := delta.BlockingGauge; v != nil {
		next.BlockingGauge = *v
	}
	if v := delta.Multipliers; v != nil {
		next.Multipliers = *v
	}
	if v := delta.Unknown31; v != nil {
		next.Unknown31 = *v
	}
	if v := delta.Unknown32; v != nil {
		next.Unknown32 = *v
	}
	if v := delta.Level; v != nil {
		next.Level = *v
	}
	if v := delta.Experience; v != nil {
		next.Experience = *v
	}
	if v := delta.Master; v != nil {
		next.Master = *v
	}
	if v := delta.Unknown36; v != nil {
		next.Unknown36 = *v
	}
	if v := delta.PowerBase; v != nil {
		next.PowerBase = *v
	}
	if v := delta.Unknown38; v != nil {
		next.Unknown38 = *v
	}
	if v := delta.HomeChunk; v != nil {
		next.HomeChunk = *v
	}
	if v := delta.Home; v != nil {
		next.Home = *v
	}
	if v := delta.ChunkToReveal; v != nil {
		next.ChunkToReveal = *v
	}
	if v := delta.Unknown42; v != nil {
		next.Unknown42 = *v
	}
	if v := delta.Consumable; v != nil {
		next.Consumable = *v
	}
	if v := delta.Equipment; v != nil {
		next.Equipment = *v
	}
	if v := delta.Name; v != nil {
		next.Name = *v
	}
	if v := delta.SkillTree; v != nil {
		next.SkillTree = *v
	}
	if v := delta.ManaCubes; v != nil {
		next.ManaCubes = *v
	}
	return next
}

// ToCreatureUpdate renders the full snapshot as a CreatureUpdate with every
// field present, for the cases that need a complete record rather than a
// delta: handing a new joiner every existing peer's current state, and the
// "remove creature" broadcast a departing session's teardown sends.
func (c Character) ToCreatureUpdate(id protocol.CreatureID) *protocol.CreatureUpdate {
	return &protocol.CreatureUpdate{
		ID:                  id,
		Position:            &c.Position,
		Rotation:            &c.Rotation,
		Velocity:            &c.Velocity,
		Acceleration:        &c.Acceleration,
		VelocityExtra:       &c.VelocityExtra,
		ClimbAnimationState: &c.ClimbAnimationState,
		FlagsPhysics:        &c.FlagsPhysics,
		Affiliation:         &c.Affiliation,
		Race:                &c.Race,
		Animation:           &c.Animation,
		AnimationTime:       &c.AnimationTime,
		Combo:               &c.Combo,
		HitTimeOut:          &c.HitTimeOut,
		Appearance:          &c.Appearance,
		Flags:               &c.Flags,
		EffectTimeDodge:     &c.EffectTimeDodge,
		EffectTimeStun:      &c.EffectTimeStun,
		EffectTimeFear:      &c.EffectTimeFear,
		EffectTimeChill:     &c.EffectTimeChill,
		EffectTimeWind:      &c.EffectTimeWind,
		ShowPatchTime:       &c.ShowPatchTime,
		CombatClassMajor:    &c.CombatClassMajor,
		CombatClassMinor:    &c.CombatClassMinor,
		ManaCharge:          &c.ManaCharge,
		Unknown24:           &c.Unknown24,
		Unknown25:           &c.Unknown25,
		AimOffset:           &c.AimOffset,
		Health:              &c.Health,
		Mana:                &c.Mana,
		BlockingGauge:       &c.BlockingGauge,
		Multipliers:         &c.Multipliers,
		Unknown31:           &c.Unknown31,
		Unknown32:           &c.Unknown32,
		Level:               &c.Level,
		Experience:          &c.Experience,
		Master:              &c.Master,
		Unknown36:           &c.Unknown36,
		PowerBase:           &c.PowerBase,
		Unknown38:           &c.Unknown38,
		HomeChunk:           &c.HomeChunk,
		Home:                &c.Home,
		ChunkToReveal:       &c.ChunkToReveal,
		Unknown42:           &c.Unknown42,
		Consumable:          &c.Consumable,
		Equipment:           &c.Equipment,
		Name:                &c.Name,
		SkillTree:           &c.SkillTree,
		ManaCubes:           &c.ManaCubes,
	}
}
