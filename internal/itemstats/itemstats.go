// Package itemstats computes the seven derived combat stats (damage,
// armor, resi, health, regen, crit, tempo) an Item contributes, per the
// gear addon's formula. The core never enforces these against a
// character's reported health; they exist for server-side tooling and
// for health-validation experiments the validator does not currently run.
package itemstats

import "github.com/cubeworld/relay/internal/protocol"

// Stats holds the seven derived values for a single item.
type Stats struct {
	Damage float64
	Armor  float64
	Resi   float64
	Health float64
	Regen  float64
	Crit   float64
	Tempo  float64
}

// WeaponKind is protocol.Item.TypeMinor's meaning when TypeMajor is
// ItemTypeWeapon — the client has no separate enum for it on the wire, so
// this one is local to stat calculation.
type WeaponKind uint8

const (
	WeaponSword WeaponKind = iota
	WeaponAxe
	WeaponMace
	WeaponShield
	WeaponLongsword
	WeaponDagger
	WeaponFist
	WeaponBow
	WeaponCrossbow
	WeaponBoomerang
	WeaponStaff
	WeaponWand
	WeaponGreatsword
	WeaponGreataxe
	WeaponGreatmace
	WeaponPitchfork
)

var doubleHanded = map[WeaponKind]bool{
	WeaponBow:        true,
	WeaponCrossbow:   true,
	WeaponBoomerang:  true,
	WeaponStaff:      true,
	WeaponWand:       true,
	WeaponGreatsword: true,
	WeaponGreataxe:   true,
	WeaponGreatmace:  true,
	WeaponPitchfork:  true,
}

var lightDamage = map[WeaponKind]bool{
	WeaponLongsword: true,
	WeaponDagger:    true,
	WeaponFist:      true,
	WeaponShield:    true,
}

type materialRow struct {
	armor, resi, health, regen, crit, tempo float64
}

var materialTable = map[protocol.Material]materialRow{
	protocol.MaterialIron:   {1, 0.85, 2, 0, 0, 0},
	protocol.MaterialLinen:  {0.85, 0.75, 1.5, 0.5, 0, 0},
	protocol.MaterialCotton: {0.85, 0.75, 1.75, 1, 0, 0},
	protocol.MaterialSilk:   {0.75, 1, 1, 0, 0, 0},
	protocol.MaterialLicht:  {0.75, 1, 1, 0, 0, 0},
	protocol.MaterialParrot: {0.85, 0.85, 1, 0, 0, 0},
	protocol.MaterialSaurian: {0.8, 1, 1, 0, 0, 0},
	protocol.MaterialGold:   {1, 1, 1, 0, 1, 0},
	protocol.MaterialSilver: {1, 1, 1, 0, 0, 1},
}

func material(m protocol.Material) materialRow {
	if row, ok := materialTable[m]; ok {
		return row
	}
	return materialRow{1, 1, 1, 0, 0, 0}
}

// levelFactor and rarityFactor are simple monotonic scaling curves; the
// upstream reference implementation's exact formulas are not available,
// so these stand in as a documented approximation (see DESIGN.md).
func levelFactor(level float64) float64 {
	return 1 + (level-1)*0.1
}

func rarityFactor(rarity protocol.Rarity) float64 {
	return 1 + float64(rarity)*0.25
}

func sizeMultiplier(item protocol.Item) float64 {
	if item.TypeMajor == protocol.ItemTypeChest {
		return 2.0
	}
	if item.TypeMajor == protocol.ItemTypeWeapon && doubleHanded[WeaponKind(item.TypeMinor)] {
		return 2.0
	}
	return 1.0
}

func classMultiplier(item protocol.Item) float64 {
	if item.TypeMajor == protocol.ItemTypeWeapon && lightDamage[WeaponKind(item.TypeMinor)] {
		return 0.5
	}
	return 1.0
}

func isArmorSlot(t protocol.ItemTypeMajor) bool {
	switch t {
	case protocol.ItemTypeChest, protocol.ItemTypeGloves, protocol.ItemTypeBoots, protocol.ItemTypeShoulder:
		return true
	default:
		return false
	}
}

// Calc computes every stat item contributes. Stats gated off for this
// item's kind are zero.
func Calc(item protocol.Item) Stats {
	seed := uint32(item.Seed)
	hpRegBalance := float64((seed&0x1FFFFFFF)*8%21) / 20
	critTempoBalance := float64(seed%21) / 20

	spiritBonus := float64(item.SpiritCounter) * 0.1
	levelWithSpirit := levelFactor(float64(item.Level) + spiritBonus)
	levelPlain := levelFactor(float64(item.Level))
	rarity := rarityFactor(item.Rarity)
	sz := sizeMultiplier(item)
	mat := material(item.Material)

	isWeapon := item.TypeMajor == protocol.ItemTypeWeapon
	isArmor := isArmorSlot(item.TypeMajor)
	hpRegenGate := isArmor || isWeapon
	critTempoGate := hpRegenGate || item.TypeMajor == protocol.ItemTypeRing || item.TypeMajor == protocol.ItemTypeAmulet

	var s Stats
	if isWeapon {
		s.Damage = 4.0 * sz * classMultiplier(item) * levelWithSpirit * rarity
	}
	if isArmor {
		s.Armor = 0.5 * sz * mat.armor * levelWithSpirit * rarity
		s.Resi = 0.5 * sz * mat.resi * levelWithSpirit * rarity
	}
	if hpRegenGate {
		hpSz := sz
		if isWeapon {
			hpSz = 1.0
		}
		s.Health = 2.5 * hpSz * (mat.health + (1 - hpRegBalance)) * levelWithSpirit * rarity
		s.Regen = 0.1 * hpSz * (mat.regen + hpRegBalance) * levelPlain * rarity
	}
	if critTempoGate {
		s.Crit = (1.0 / 160) * sz * (mat.crit + (1 - critTempoBalance)) * levelPlain * rarity
		s.Tempo = (1.0 / 80) * sz * (mat.tempo + critTempoBalance) * levelPlain * rarity
	}
	return s
}
