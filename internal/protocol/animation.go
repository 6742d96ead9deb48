package protocol

// Animation is the creature's current animation state, matching the
// client's 8-bit enum. Several values are client-internal placeholders
// with no observed gameplay effect; they are named by index rather than
// by guessed purpose.
type Animation uint8

const (
	AnimationIdle Animation = iota
	AnimationDualWieldM1a
	AnimationDualWieldM1b
	AnimationUnknown003
	AnimationUnknown004
	AnimationLongswordM2
	AnimationUnarmedM1a
	AnimationUnarmedM1b
	AnimationShieldM2Charging
	AnimationShieldM1a
	AnimationShieldM1b
	AnimationUnarmedM2
	AnimationUnknown012
	AnimationLongswordM1a
	AnimationLongswordM1b
	AnimationUnknown015
	AnimationUnknown016
	AnimationDaggersM2
	AnimationDaggersM1a
	AnimationDaggersM1b
	AnimationFistsM2
	AnimationKick
	AnimationShootArrow
	AnimationCrossbowM2
	AnimationCrossbowM2Charging
	AnimationBowM2Charging
	AnimationBoomerangM1
	AnimationBoomerangM2Charging
	AnimationBeamDraining
	AnimationUnknown029
	AnimationStaffFireM1
	AnimationStaffFireM2
	AnimationStaffWaterM1
	AnimationStaffWaterM2
	AnimationHealingStream
	AnimationUnknown035
	AnimationUnknown036
	AnimationBraceletFireM2
	AnimationWandFireM1
	AnimationBraceletsFireM1a
	AnimationBraceletsFireM1b
	AnimationBraceletsWaterM1a
	AnimationBraceletsWaterM1b
	AnimationBraceletWaterM2
	AnimationWandWaterM1
	AnimationWandWaterM2
	AnimationWandFireM2
	AnimationUnknown047
	AnimationIntercept
	AnimationTeleport
	AnimationUnknown050
	AnimationUnknown051
	AnimationUnknown052
	AnimationUnknown053
	AnimationSmash
	AnimationBowM2
	AnimationUnknown056
	AnimationGreatweaponM1a
	AnimationGreatweaponM1c
	AnimationGreatweaponM2Charging
	AnimationGreatweaponM2Berserker
	AnimationGreatweaponM2Guardian
	AnimationUnknown062
	AnimationUnarmedM2Charging
	AnimationDualWieldM2Charging
	AnimationUnknown065
	AnimationUnknown066
	AnimationGreatweaponM1b
	AnimationBossCharge1
	AnimationBossCharge2
	AnimationBossSpinkick
	AnimationBossBlock
	AnimationBossSpin
	AnimationBossCry
	AnimationBossStomp
	AnimationBossKick
	AnimationBossKnockdownForward
	AnimationBossKnockdownLeft
	AnimationBossKnockdownRight
	AnimationStealth
	AnimationDrinking
	AnimationEating
	AnimationPetFoodPresent
	AnimationSitting
	AnimationSleeping
	AnimationUnknown085
	AnimationCyclone
	AnimationFireExplosionLong
	AnimationFireExplosioni16
	AnimationLava
	AnimationSplash
	AnimationEarthQuake
	AnimationClone
	AnimationUnknown093
	AnimationFireBeam
	AnimationFireRay
	AnimationShuriken
	AnimationUnknown097
	AnimationUnknown098
	AnimationUnknown099
	AnimationUnknown100
	AnimationSuperBulwalk
	AnimationUnknown102
	AnimationSuperManaShield
	AnimationShieldM2
	AnimationTeleportToCity
	AnimationRiding
	AnimationBoat
	AnimationBoulder
	AnimationManaCubePickup
	AnimationUnknown110
)

// AnimationIdleSet are animations that count as "not acting": idle,
// sitting, sleeping, stealth, teleport and the mount/vehicle states. The
// validator does not consult this set.
var AnimationIdleSet = map[Animation]bool{
	AnimationIdle:      true,
	AnimationSitting:   true,
	AnimationSleeping:  true,
	AnimationStealth:   true,
	AnimationRiding:    true,
	AnimationBoat:      true,
	AnimationTeleport:  true,
}

// AnimationBlockingSet are the animations that hold a shield or greatweapon
// block pose. The validator does not consult this set: blocking_gauge may
// be anywhere in [0, 1] in any animation.
var AnimationBlockingSet = map[Animation]bool{
	AnimationShieldM1a:             true,
	AnimationShieldM1b:             true,
	AnimationShieldM2:              true,
	AnimationShieldM2Charging:      true,
	AnimationGreatweaponM2Guardian: true,
	AnimationSuperBulwalk:          true,
}
