package validate

import (
	"testing"

	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/validate/data"
	"github.com/cubeworld/relay/internal/world"
)

const testCreatureID = protocol.CreatureID(1)

// validCharacter builds a Character that satisfies every check at once, so
// individual tests can start from it and break exactly one field.
func validCharacter() world.Character {
	race := protocol.RaceHumanMale
	profile := data.AppearanceByRace[race]

	return world.Character{
		Race:             race,
		Affiliation:      protocol.AffiliationPlayer,
		CombatClassMajor: protocol.CombatClassWarrior,
		CombatClassMinor: protocol.CombatClassMinorDefault,
		Name:             "Hero",
		Level:            10,
		Experience:       0,
		Mana:             1,
		ManaCharge:       0,
		BlockingGauge:    0,
		Multipliers: protocol.Multipliers{
			Health: 100, AttackSpeed: 1, Damage: 1, Armor: 1, Resi: 1,
		},
		Appearance: protocol.Appearance{
			HeadModel:     profile.HeadModel.Min,
			HairModel:     profile.HairModel.Min,
			HandModel:     profile.HandModel.Min,
			FootModel:     profile.FootModel,
			BodyModel:     profile.BodyModel,
			TailModel:     data.FixedTailModel,
			Shoulder2Model: data.FixedShoulder2Model,
			WingModel:     data.FixedWingModel,
			CreatureSize:  protocol.Vec3F32{X: profile.Hitbox.Width, Y: profile.Hitbox.Depth, Z: profile.Hitbox.Height},
			HeadSize:      profile.HeadSize,
			BodySize:      profile.BodySize,
			Shoulder1Size: profile.Shoulder1Size,
			WeaponSize:    profile.WeaponSize,
			HandSize:      data.FixedHandSize,
			FootSize:      data.FixedFootSize,
			TailSize:      data.FixedTailSize,
			Shoulder2Size: data.FixedShoulder2Size,
			WingSize:      data.FixedWingSize,
			BodyRotation:  data.FixedBodyRotation,
			FeetRotation:  data.FixedFeetRotation,
			WingRotation:  data.FixedWingRotation,
			TailRotation:  data.FixedTailRotation,
			BodyOffset:    data.FixedBodyOffset,
			HeadOffset:    data.HeadOffsetFor(race),
			HandOffset:    data.FixedHandOffset,
			FootOffset:    data.FixedFootOffset,
			TailOffset:    data.FixedTailOffset,
			WingOffset:    data.FixedWingOffset,
		},
	}
}

// fullDelta returns a CreatureUpdate with every field present, so tests
// that exercise a check's logic against a fully-formed Character don't
// also have to reason about field-presence gating: every check in the
// table is eligible to run.
func fullDelta(id protocol.CreatureID) *protocol.CreatureUpdate {
	var (
		pos             protocol.Vec3I64
		rot, vel, acc   protocol.Vec3F32
		velExtra        protocol.Vec3F32
		climbAnim       float32
		flagsPhysics    protocol.FlagSet32
		affiliation     = protocol.AffiliationPlayer
		race            = protocol.RaceHumanMale
		animation       protocol.Animation
		animationTime   int32
		combo           int32
		hitTimeOut      int32
		appearance      protocol.Appearance
		flags           protocol.FlagSet16
		effectDodge     int32
		effectStun      int32
		effectFear      int32
		effectChill     int32
		effectWind      int32
		showPatchTime   int32
		classMajor      protocol.CombatClassMajor
		classMinor      protocol.CombatClassMinor
		manaCharge      float32
		unk24, unk25    protocol.Vec3F32
		aimOffset       protocol.Vec3F32
		health          float32 = 1
		mana            float32 = 1
		blockingGauge   float32
		multipliers     = protocol.Multipliers{Health: 100, AttackSpeed: 1, Damage: 1, Armor: 1, Resi: 1}
		unk31, unk32    int8
		level           int32 = 10
		experience      int32
		master          protocol.CreatureID
		unk36           int64
		powerBase       int8
		unk38           int32
		homeChunk       protocol.Vec3I32
		home            protocol.Vec3I64
		chunkToReveal   protocol.Vec3I32
		unk42           int8
		consumable      protocol.Item
		equipment       protocol.Equipment
		name            = "Hero"
		skillTree       protocol.SkillTree
		manaCubes       int32
	)
	return &protocol.CreatureUpdate{
		ID:                  id,
		Position:            &pos,
		Rotation:            &rot,
		Velocity:            &vel,
		Acceleration:        &acc,
		VelocityExtra:       &velExtra,
		ClimbAnimationState: &climbAnim,
		FlagsPhysics:        &flagsPhysics,
		Affiliation:         &affiliation,
		Race:                &race,
		Animation:           &animation,
		AnimationTime:       &animationTime,
		Combo:               &combo,
		HitTimeOut:          &hitTimeOut,
		Appearance:          &appearance,
		Flags:               &flags,
		EffectTimeDodge:     &effectDodge,
		EffectTimeStun:      &effectStun,
		EffectTimeFear:      &effectFear,
		EffectTimeChill:     &effectChill,
		EffectTimeWind:      &effectWind,
		ShowPatchTime:       &showPatchTime,
		CombatClassMajor:    &classMajor,
		CombatClassMinor:    &classMinor,
		ManaCharge:          &manaCharge,
		Unknown24:           &unk24,
		Unknown25:           &unk25,
		AimOffset:           &aimOffset,
		Health:              &health,
		Mana:                &mana,
		BlockingGauge:       &blockingGauge,
		Multipliers:         &multipliers,
		Unknown31:           &unk31,
		Unknown32:           &unk32,
		Level:               &level,
		Experience:          &experience,
		Master:              &master,
		Unknown36:           &unk36,
		PowerBase:           &powerBase,
		Unknown38:           &unk38,
		HomeChunk:           &homeChunk,
		Home:                &home,
		ChunkToReveal:       &chunkToReveal,
		Unknown42:           &unk42,
		Consumable:          &consumable,
		Equipment:           &equipment,
		Name:                &name,
		SkillTree:           &skillTree,
		ManaCubes:           &manaCubes,
	}
}

func TestValidCharacterHasNoViolations(t *testing.T) {
	c := validCharacter()
	if v := Character(fullDelta(testCreatureID), c, c); len(v) != 0 {
		t.Fatalf("baseline valid character has violations: %+v", v)
	}
}

func TestUnplayableRaceIsRejected(t *testing.T) {
	c := validCharacter()
	c.Race = protocol.Race(99999)
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "race") {
		t.Fatalf("expected a race violation, got %+v", v)
	}
}

func TestUnplayableCombatClassMajorIsRejected(t *testing.T) {
	c := validCharacter()
	c.CombatClassMajor = protocol.CombatClassMajor(-1)
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "combat_class_major") {
		t.Fatalf("expected a combat_class_major violation, got %+v", v)
	}
}

func TestLevelOutOfRangeIsRejected(t *testing.T) {
	c := validCharacter()
	c.Level = 0
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "level") {
		t.Fatalf("expected a level violation for level 0, got %+v", v)
	}

	c2 := validCharacter()
	c2.Level = 501
	v2 := Character(fullDelta(testCreatureID), c2, c2)
	if !hasViolation(v2, "level") {
		t.Fatalf("expected a level violation for level 501, got %+v", v2)
	}
}

func TestSkillTreeOverBudgetIsRejected(t *testing.T) {
	c := validCharacter()
	c.Level = 2 // budget = (2-1)*2 = 2
	c.SkillTree.Ability1 = 3
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "skill_tree") {
		t.Fatalf("expected a skill_tree violation, got %+v", v)
	}
}

func TestSkillTreeNegativeAllocationIsRejected(t *testing.T) {
	c := validCharacter()
	c.SkillTree.Swimming = -1
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "skill_tree") {
		t.Fatalf("expected a skill_tree violation for a negative allocation, got %+v", v)
	}
}

func TestNonPlayerAffiliationIsRejected(t *testing.T) {
	c := validCharacter()
	c.Affiliation = protocol.AffiliationNeutral
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "affiliation") {
		t.Fatalf("expected an affiliation violation, got %+v", v)
	}
}

func TestManaOutOfRangeIsRejected(t *testing.T) {
	c := validCharacter()
	c.Mana = 1.5
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "mana") {
		t.Fatalf("expected a mana violation, got %+v", v)
	}
}

func TestManaChargeExceedingManaIsRejected(t *testing.T) {
	c := validCharacter()
	c.Mana = 0.2
	c.ManaCharge = 0.5
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "mana_charge") {
		t.Fatalf("expected a mana_charge violation, got %+v", v)
	}
}

func TestMultipliersMustBeExact(t *testing.T) {
	c := validCharacter()
	c.Multipliers.Damage = 2
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "multipliers") {
		t.Fatalf("expected a multipliers violation, got %+v", v)
	}
}

func TestNameLengthIsRejected(t *testing.T) {
	c := validCharacter()
	c.Name = ""
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "name") {
		t.Fatalf("expected a name violation for an empty name, got %+v", v)
	}

	c2 := validCharacter()
	c2.Name = "waytoolongnameforthisgame"
	v2 := Character(fullDelta(testCreatureID), c2, c2)
	if !hasViolation(v2, "name") {
		t.Fatalf("expected a name violation for an overlong name, got %+v", v2)
	}
}

func TestEquipmentSlotWrongItemKindIsRejected(t *testing.T) {
	c := validCharacter()
	c.Equipment.Slots[protocol.SlotChest] = protocol.Item{TypeMajor: protocol.ItemTypeWeapon}
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "equipment") {
		t.Fatalf("expected an equipment violation, got %+v", v)
	}
}

func TestConsumableWrongKindIsRejected(t *testing.T) {
	c := validCharacter()
	c.Consumable = protocol.Item{TypeMajor: protocol.ItemTypeWeapon}
	v := Character(fullDelta(testCreatureID), c, c)
	if !hasViolation(v, "consumable") {
		t.Fatalf("expected a consumable violation, got %+v", v)
	}
}

func TestFieldAbsentFromDeltaSkipsItsCheck(t *testing.T) {
	// A delta that never touches mana_charge or mana must not trigger
	// mana_charge even though the carried-forward ManaCharge would exceed
	// the carried-forward Mana once merged with an unrelated field change.
	c := validCharacter()
	c.Mana = 0.2
	c.ManaCharge = 0.5

	delta := &protocol.CreatureUpdate{ID: testCreatureID, Combo: new(int32)}
	v := Character(delta, c, c)
	if hasViolation(v, "mana_charge") {
		t.Fatalf("mana_charge check ran on a delta that set neither mana nor mana_charge: %+v", v)
	}
}

func TestManaOnlyDeltaDoesNotSpuriouslyTriggerManaCharge(t *testing.T) {
	// Mirrors a client that lowers its mana without resending mana_charge:
	// the merge correctly carries the prior mana_charge forward, and that
	// carried-forward value must not be re-validated against the new mana
	// since the delta never touched mana_charge.
	previous := validCharacter()
	previous.Mana = 1
	previous.ManaCharge = 0.9

	newMana := float32(0.5)
	delta := &protocol.CreatureUpdate{ID: testCreatureID, Mana: &newMana}
	updated := previous.Merge(delta)

	v := Character(delta, previous, updated)
	if hasViolation(v, "mana_charge") {
		t.Fatalf("mana_charge check ran on a delta that never set mana_charge: %+v", v)
	}
	if len(v) != 0 {
		t.Fatalf("expected no violations for an in-range mana-only delta, got %+v", v)
	}
}

func hasViolation(violations []Violation, field string) bool {
	for _, v := range violations {
		if v.Field == field {
			return true
		}
	}
	return false
}
