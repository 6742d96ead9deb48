// Package validate checks that a CreatureUpdate a client sent about its
// own character is physically and mechanically plausible before it is
// merged into the authoritative Character snapshot and rebroadcast to
// everyone else. Every check compares the proposed next Character against
// the previous one it is replacing, but only runs when the delta actually
// touched the field(s) it examines; most fields have no meaningful
// constraint and are accepted unconditionally.
package validate

import (
	"fmt"
	"math"

	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/world"
)

// Violation names one field that failed validation and why.
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string { return fmt.Sprintf("%s: %s", v.Field, v.Reason) }

type check struct {
	field   string
	present func(delta *protocol.CreatureUpdate) bool
	fn      func(previous, updated world.Character) error
}

// Character runs every applicable check against the transition from
// previous to updated and returns every violation found. delta is the
// CreatureUpdate the client actually sent: a check only runs when the field
// (or, for cross-field checks, at least one of the fields) it examines was
// present in delta. A field the client left untouched was carried forward
// unchanged by the merge and re-validating it would reject snapshots the
// client never had a chance to correct. An empty result means the update is
// safe to merge and broadcast.
func Character(delta *protocol.CreatureUpdate, previous, updated world.Character) []Violation {
	var out []Violation
	for _, c := range checks {
		if !c.present(delta) {
			continue
		}
		if err := c.fn(previous, updated); err != nil {
			out = append(out, Violation{Field: c.field, Reason: err.Error()})
		}
	}
	return out
}

var checks = []check{
	{"rotation", func(d *protocol.CreatureUpdate) bool { return d.Rotation != nil }, checkRotation},
	{"acceleration", func(d *protocol.CreatureUpdate) bool { return d.Acceleration != nil }, checkAcceleration},
	{"velocity_extra", func(d *protocol.CreatureUpdate) bool { return d.VelocityExtra != nil }, checkVelocityExtra},
	{"affiliation", func(d *protocol.CreatureUpdate) bool { return d.Affiliation != nil }, checkAffiliation},
	{"race", func(d *protocol.CreatureUpdate) bool { return d.Race != nil }, checkRace},
	{"animation", func(d *protocol.CreatureUpdate) bool { return d.Animation != nil }, checkAnimation},
	{"animation_time", func(d *protocol.CreatureUpdate) bool { return d.AnimationTime != nil }, checkAnimationTime},
	{"combo", func(d *protocol.CreatureUpdate) bool { return d.Combo != nil }, checkCombo},
	{"hit_time_out", func(d *protocol.CreatureUpdate) bool { return d.HitTimeOut != nil }, checkHitTimeOut},
	{"appearance", func(d *protocol.CreatureUpdate) bool { return d.Appearance != nil }, checkAppearance},
	{"effect_time_dodge", func(d *protocol.CreatureUpdate) bool { return d.EffectTimeDodge != nil }, checkEffectTimeDodge},
	{"effect_time_fear", func(d *protocol.CreatureUpdate) bool { return d.EffectTimeFear != nil }, checkEffectTimeFear},
	{"effect_time_chill", func(d *protocol.CreatureUpdate) bool { return d.EffectTimeChill != nil }, checkEffectTimeChill},
	{"effect_time_wind", func(d *protocol.CreatureUpdate) bool { return d.EffectTimeWind != nil }, checkEffectTimeWind},
	{"combat_class_major", func(d *protocol.CreatureUpdate) bool { return d.CombatClassMajor != nil }, checkCombatClassMajor},
	{"combat_class_minor", func(d *protocol.CreatureUpdate) bool { return d.CombatClassMinor != nil }, checkCombatClassMinor},
	// mana_charge compares ManaCharge against Mana, so it must run whenever
	// either contributing field was actually sent.
	{"mana_charge", func(d *protocol.CreatureUpdate) bool { return d.ManaCharge != nil || d.Mana != nil }, checkManaCharge},
	{"mana", func(d *protocol.CreatureUpdate) bool { return d.Mana != nil }, checkMana},
	{"blocking_gauge", func(d *protocol.CreatureUpdate) bool { return d.BlockingGauge != nil }, checkBlockingGauge},
	{"multipliers", func(d *protocol.CreatureUpdate) bool { return d.Multipliers != nil }, checkMultipliers},
	{"level", func(d *protocol.CreatureUpdate) bool { return d.Level != nil }, checkLevel},
	{"experience", func(d *protocol.CreatureUpdate) bool { return d.Experience != nil }, checkExperience},
	{"master", func(d *protocol.CreatureUpdate) bool { return d.Master != nil }, checkMaster},
	{"power_base", func(d *protocol.CreatureUpdate) bool { return d.PowerBase != nil }, checkPowerBase},
	{"consumable", func(d *protocol.CreatureUpdate) bool { return d.Consumable != nil }, checkConsumable},
	{"equipment", func(d *protocol.CreatureUpdate) bool { return d.Equipment != nil }, checkEquipment},
	{"name", func(d *protocol.CreatureUpdate) bool { return d.Name != nil }, checkName},
	{"skill_tree", func(d *protocol.CreatureUpdate) bool { return d.SkillTree != nil }, checkSkillTree},
	{"mana_cubes", func(d *protocol.CreatureUpdate) bool { return d.ManaCubes != nil }, checkManaCubes},
}

func notNegative(v int32, field string) error {
	if v < 0 {
		return fmt.Errorf("%s is negative (%d)", field, v)
	}
	return nil
}

func withinI32(v, lo, hi int32) error {
	if v < lo || v > hi {
		return fmt.Errorf("out of range [%d, %d]: %d", lo, hi, v)
	}
	return nil
}

func withinF32(v, lo, hi float32) error {
	if v < lo || v > hi {
		return fmt.Errorf("out of range [%v, %v]: %v", lo, hi, v)
	}
	return nil
}

func exactF32(v, want float32) error {
	if v != want {
		return fmt.Errorf("expected %v, got %v", want, v)
	}
	return nil
}

func exactI16(v, want int16) error {
	if v != want {
		return fmt.Errorf("expected %d, got %d", want, v)
	}
	return nil
}

// checkRotation enforces the pitch/roll/yaw triple the client stores as a
// Vec3F32 (X=pitch, Y=roll, Z=yaw): pitch and yaw legitimately overflow
// past their usual range while attacking, so only finiteness is checked;
// roll is bounded because the client never tilts a character past level.
func checkRotation(previous, updated world.Character) error {
	r := updated.Rotation
	if math.IsNaN(float64(r.X)) || math.IsInf(float64(r.X), 0) {
		return fmt.Errorf("pitch is not finite")
	}
	if r.Y < -90 || r.Y > 90 {
		return fmt.Errorf("roll out of range [-90, 90]: %v", r.Y)
	}
	if math.IsNaN(float64(r.Z)) || math.IsInf(float64(r.Z), 0) {
		return fmt.Errorf("yaw is not finite")
	}
	return nil
}

func magnitudeXY(v protocol.Vec3F32) float64 {
	return math.Hypot(float64(v.X), float64(v.Y))
}

// checkAcceleration allows unbounded horizontal acceleration while
// gliding, otherwise caps it at the diagonal double-jump impulse; the
// vertical component is bounded by whatever locomotion mode is active.
func checkAcceleration(previous, updated world.Character) error {
	const limitXY = 113.13709 // magnitude of (80, 80) plus a small epsilon
	a := updated.Acceleration

	if !updated.Flags.Has(protocol.CreatureGliding) {
		if mag := magnitudeXY(a); mag > limitXY {
			return fmt.Errorf("horizontal acceleration too large: %v", mag)
		}
	}

	switch {
	case updated.FlagsPhysics.Has(protocol.PhysicsSwimming):
		if a.Z < -80 || a.Z > 80 {
			return fmt.Errorf("vertical acceleration out of range while swimming: %v", a.Z)
		}
	case updated.Flags.Has(protocol.CreatureClimbing):
		if a.Z != -16 && a.Z != 0 && a.Z != 16 {
			return fmt.Errorf("vertical acceleration not a climb step: %v", a.Z)
		}
	default:
		if a.Z != 0 {
			return fmt.Errorf("vertical acceleration must be 0 while grounded/airborne: %v", a.Z)
		}
	}
	return nil
}

// checkVelocityExtra bounds the "retreat" ability's extra velocity
// component. Rangers get a real dodge-roll speed; every other class is
// allowed only the ~0.1 residue the client leaves behind as it resets.
func checkVelocityExtra(previous, updated world.Character) error {
	maxXY, maxZ := 0.1, 0.0
	if updated.CombatClassMajor == protocol.CombatClassRanger {
		maxXY, maxZ = 35.0, 17.0
	}
	v := updated.VelocityExtra
	if mag := magnitudeXY(v); mag > maxXY {
		return fmt.Errorf("retreat_horizontal_speed exceeds %v: %v", maxXY, mag)
	}
	if float64(v.Z) < 0 || float64(v.Z) > maxZ {
		return fmt.Errorf("retreat_vertical_speed out of range [0, %v]: %v", maxZ, v.Z)
	}
	return nil
}

func checkAffiliation(previous, updated world.Character) error {
	if updated.Affiliation != protocol.AffiliationPlayer {
		return fmt.Errorf("player characters must have affiliation Player, got %v", updated.Affiliation)
	}
	return nil
}

func checkRace(previous, updated world.Character) error {
	if !updated.Race.Playable() {
		return fmt.Errorf("race %v is not a playable race", updated.Race)
	}
	return nil
}

// checkAnimation defers to the allow-set for the character's current
// class/equipment combination. The client tables this depends on
// (per-class animation lists, per-weapon-type overrides) were not part of
// the retrieved source, so this accepts any animation value; see
// DESIGN.md.
func checkAnimation(previous, updated world.Character) error {
	return nil
}

// timelessAnimations never time out; every other animation caps
// animation_time so a frozen pose can't be held indefinitely.
var timelessAnimations = map[protocol.Animation]bool{
	protocol.AnimationIdle:           true,
	protocol.AnimationStealth:        true,
	protocol.AnimationSitting:        true,
	protocol.AnimationPetFoodPresent: true,
	protocol.AnimationSleeping:       true,
}

func checkAnimationTime(previous, updated world.Character) error {
	if err := notNegative(updated.AnimationTime, "animation_time"); err != nil {
		return err
	}
	if !timelessAnimations[updated.Animation] && updated.AnimationTime > 10_000 {
		return fmt.Errorf("animation_time exceeds 10000: %d", updated.AnimationTime)
	}
	return nil
}

func checkCombo(previous, updated world.Character) error {
	return notNegative(updated.Combo, "combo")
}

func checkHitTimeOut(previous, updated world.Character) error {
	return notNegative(updated.HitTimeOut, "hit_time_out")
}

func checkEffectTimeDodge(previous, updated world.Character) error {
	return withinI32(updated.EffectTimeDodge, 0, 600)
}

func checkEffectTimeFear(previous, updated world.Character) error {
	return notNegative(updated.EffectTimeFear, "effect_time_fear")
}

func checkEffectTimeChill(previous, updated world.Character) error {
	return notNegative(updated.EffectTimeChill, "effect_time_chill")
}

func checkEffectTimeWind(previous, updated world.Character) error {
	return withinI32(updated.EffectTimeWind, 0, 5000)
}

func checkCombatClassMajor(previous, updated world.Character) error {
	for _, c := range protocol.PlayableCombatClasses {
		if updated.CombatClassMajor == c {
			return nil
		}
	}
	return fmt.Errorf("combat_class_major %v is not playable", updated.CombatClassMajor)
}

func checkCombatClassMinor(previous, updated world.Character) error {
	for _, c := range protocol.PlayableCombatClassMinors {
		if updated.CombatClassMinor == c {
			return nil
		}
	}
	return fmt.Errorf("combat_class_minor %v is not playable", updated.CombatClassMinor)
}

func checkManaCharge(previous, updated world.Character) error {
	if updated.ManaCharge > updated.Mana {
		return fmt.Errorf("mana_charge (%v) exceeds mana (%v)", updated.ManaCharge, updated.Mana)
	}
	return nil
}

func checkMana(previous, updated world.Character) error {
	return withinF32(updated.Mana, 0, 1)
}

// guardianBlocking reports whether the former animation/class combination
// was holding a block pose; the blocking gauge update lags one frame
// behind the animation that produced it, so this checks previous, not
// updated. "Guardian" is the Warrior/Alternative minor-class combination;
// the client's named-subclass table was not part of the retrieved source.
func guardianBlocking(previous world.Character) bool {
	if previous.CombatClassMajor != protocol.CombatClassWarrior || previous.CombatClassMinor != protocol.CombatClassMinorAlternative {
		return false
	}
	switch previous.Animation {
	case protocol.AnimationDualWieldM2Charging, protocol.AnimationGreatweaponM2Charging, protocol.AnimationUnarmedM2Charging:
		return true
	default:
		return false
	}
}

func checkBlockingGauge(previous, updated world.Character) error {
	blocking := previous.Animation == protocol.AnimationShieldM2Charging || guardianBlocking(previous)
	max := float32(1.0)
	if blocking {
		max = previous.BlockingGauge
	}
	return withinF32(updated.BlockingGauge, 0, max)
}

func checkMultipliers(previous, updated world.Character) error {
	m := updated.Multipliers
	switch {
	case m.Health != 100:
		return fmt.Errorf("multipliers.health must be 100, got %v", m.Health)
	case m.AttackSpeed != 1:
		return fmt.Errorf("multipliers.attack_speed must be 1, got %v", m.AttackSpeed)
	case m.Damage != 1:
		return fmt.Errorf("multipliers.damage must be 1, got %v", m.Damage)
	case m.Armor != 1:
		return fmt.Errorf("multipliers.armor must be 1, got %v", m.Armor)
	case m.Resi != 1:
		return fmt.Errorf("multipliers.resi must be 1, got %v", m.Resi)
	}
	return nil
}

func checkLevel(previous, updated world.Character) error {
	return withinI32(updated.Level, 1, 500)
}

func checkExperience(previous, updated world.Character) error {
	return withinI32(updated.Experience, 0, 9999)
}

func checkMaster(previous, updated world.Character) error {
	if updated.Master != 0 {
		return fmt.Errorf("master must be 0 on a player character, got %d", updated.Master)
	}
	return nil
}

func checkPowerBase(previous, updated world.Character) error {
	if updated.PowerBase != 0 {
		return fmt.Errorf("power_base must be 0 on a player character, got %d", updated.PowerBase)
	}
	return nil
}

func checkName(previous, updated world.Character) error {
	n := len(updated.Name)
	if n < 1 || n > 15 {
		return fmt.Errorf("name length out of range [1, 15]: %d", n)
	}
	return nil
}

func checkSkillTree(previous, updated world.Character) error {
	s := updated.SkillTree
	fields := []int32{
		s.PetMaster, s.PetRiding, s.Sailing, s.Climbing, s.HangGliding,
		s.Swimming, s.Ability1, s.Ability2, s.Ability3, s.Ability4, s.Ability5,
	}
	for _, f := range fields {
		if f < 0 {
			return fmt.Errorf("skill point allocation is negative: %d", f)
		}
	}
	if max := (updated.Level - 1) * 2; s.Sum() > max {
		return fmt.Errorf("total skill points %d exceed budget %d", s.Sum(), max)
	}
	return nil
}

func checkManaCubes(previous, updated world.Character) error {
	return notNegative(updated.ManaCubes, "mana_cubes")
}
