package validate

import (
	"fmt"

	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/validate/data"
	"github.com/cubeworld/relay/internal/world"
)

// checkAppearance enforces every appearance field the vanilla client only
// ever sends one way: the universal constants (flags, unused model slots,
// fixed sizes/offsets/rotations) plus the per-race exact/range table for
// the fields that do vary by race.
func checkAppearance(previous, updated world.Character) error {
	a := updated.Appearance

	if a.Flags != 0 {
		return fmt.Errorf("appearance.flags must be 0, got %v", a.Flags)
	}
	if err := exactI16(a.TailModel, data.FixedTailModel); err != nil {
		return fmt.Errorf("appearance.tail_model: %w", err)
	}
	if err := exactI16(a.Shoulder2Model, data.FixedShoulder2Model); err != nil {
		return fmt.Errorf("appearance.shoulder2_model: %w", err)
	}
	if err := exactI16(a.WingModel, data.FixedWingModel); err != nil {
		return fmt.Errorf("appearance.wing_model: %w", err)
	}
	if err := exactF32(a.HandSize, data.FixedHandSize); err != nil {
		return fmt.Errorf("appearance.hand_size: %w", err)
	}
	if err := exactF32(a.FootSize, data.FixedFootSize); err != nil {
		return fmt.Errorf("appearance.foot_size: %w", err)
	}
	if err := exactF32(a.TailSize, data.FixedTailSize); err != nil {
		return fmt.Errorf("appearance.tail_size: %w", err)
	}
	if err := exactF32(a.Shoulder2Size, data.FixedShoulder2Size); err != nil {
		return fmt.Errorf("appearance.shoulder2_size: %w", err)
	}
	if err := exactF32(a.WingSize, data.FixedWingSize); err != nil {
		return fmt.Errorf("appearance.wing_size: %w", err)
	}
	if err := exactF32(a.BodyRotation, data.FixedBodyRotation); err != nil {
		return fmt.Errorf("appearance.body_rotation: %w", err)
	}
	if a.HandRotation != (protocol.Vec3F32{}) {
		return fmt.Errorf("appearance.hand_rotation must be zero, got %v", a.HandRotation)
	}
	if err := exactF32(a.FeetRotation, data.FixedFeetRotation); err != nil {
		return fmt.Errorf("appearance.feet_rotation: %w", err)
	}
	if err := exactF32(a.WingRotation, data.FixedWingRotation); err != nil {
		return fmt.Errorf("appearance.wing_rotation: %w", err)
	}
	if err := exactF32(a.TailRotation, data.FixedTailRotation); err != nil {
		return fmt.Errorf("appearance.tail_rotation: %w", err)
	}

	if a.BodyOffset != data.FixedBodyOffset {
		return fmt.Errorf("appearance.body_offset must be %v, got %v", data.FixedBodyOffset, a.BodyOffset)
	}
	if want := data.HeadOffsetFor(updated.Race); a.HeadOffset != want {
		return fmt.Errorf("appearance.head_offset must be %v, got %v", want, a.HeadOffset)
	}
	if a.HandOffset != data.FixedHandOffset {
		return fmt.Errorf("appearance.hand_offset must be %v, got %v", data.FixedHandOffset, a.HandOffset)
	}
	if a.FootOffset != data.FixedFootOffset {
		return fmt.Errorf("appearance.foot_offset must be %v, got %v", data.FixedFootOffset, a.FootOffset)
	}
	if a.TailOffset != data.FixedTailOffset {
		return fmt.Errorf("appearance.tail_offset must be %v, got %v", data.FixedTailOffset, a.TailOffset)
	}
	if a.WingOffset != data.FixedWingOffset {
		return fmt.Errorf("appearance.wing_offset must be %v, got %v", data.FixedWingOffset, a.WingOffset)
	}

	profile, ok := data.AppearanceByRace[updated.Race]
	if !ok {
		return fmt.Errorf("no appearance profile for race %v", updated.Race)
	}

	wantHitbox := protocol.Vec3F32{X: profile.Hitbox.Width, Y: profile.Hitbox.Depth, Z: profile.Hitbox.Height}
	if a.CreatureSize != wantHitbox {
		return fmt.Errorf("appearance.creature_size must be %v, got %v", wantHitbox, a.CreatureSize)
	}
	if !profile.HeadModel.Contains(a.HeadModel) {
		return fmt.Errorf("appearance.head_model %d not in range for race", a.HeadModel)
	}
	if !profile.HairModel.Contains(a.HairModel) {
		return fmt.Errorf("appearance.hair_model %d not in range for race", a.HairModel)
	}
	if !profile.HandModel.Contains(a.HandModel) {
		return fmt.Errorf("appearance.hand_model %d not in range for race", a.HandModel)
	}
	if err := exactI16(a.FootModel, profile.FootModel); err != nil {
		return fmt.Errorf("appearance.foot_model: %w", err)
	}
	if err := exactI16(a.BodyModel, profile.BodyModel); err != nil {
		return fmt.Errorf("appearance.body_model: %w", err)
	}
	if err := exactF32(a.HeadSize, profile.HeadSize); err != nil {
		return fmt.Errorf("appearance.head_size: %w", err)
	}
	if err := exactF32(a.BodySize, profile.BodySize); err != nil {
		return fmt.Errorf("appearance.body_size: %w", err)
	}
	if err := exactF32(a.Shoulder1Size, profile.Shoulder1Size); err != nil {
		return fmt.Errorf("appearance.shoulder1_size: %w", err)
	}
	if err := exactF32(a.WeaponSize, profile.WeaponSize); err != nil {
		return fmt.Errorf("appearance.weapon_size: %w", err)
	}
	return nil
}
