package itemstats

import (
	"testing"

	"github.com/cubeworld/relay/internal/protocol"
)

func TestCalcWeaponHasDamageOnly(t *testing.T) {
	s := Calc(protocol.Item{
		TypeMajor: protocol.ItemTypeWeapon,
		TypeMinor: byte(WeaponSword),
		Level:     10,
		Rarity:    protocol.RarityNormal,
	})
	if s.Damage <= 0 {
		t.Errorf("weapon Damage = %v, want > 0", s.Damage)
	}
	if s.Armor != 0 || s.Resi != 0 {
		t.Errorf("weapon should not carry armor/resi: %+v", s)
	}
}

func TestCalcArmorSlotHasArmorAndResi(t *testing.T) {
	s := Calc(protocol.Item{
		TypeMajor: protocol.ItemTypeChest,
		Material:  protocol.MaterialIron,
		Level:     10,
	})
	if s.Armor <= 0 || s.Resi <= 0 {
		t.Errorf("chest item should have positive armor/resi: %+v", s)
	}
	if s.Damage != 0 {
		t.Errorf("chest item should not carry damage: %+v", s)
	}
}

func TestCalcNonGatedSlotHasNoStats(t *testing.T) {
	s := Calc(protocol.Item{TypeMajor: protocol.ItemTypeCoin, Level: 10})
	if s != (Stats{}) {
		t.Errorf("a coin should contribute no stats, got %+v", s)
	}
}

func TestCalcRingIsCritTempoGatedOnly(t *testing.T) {
	s := Calc(protocol.Item{TypeMajor: protocol.ItemTypeRing, Level: 10})
	if s.Crit <= 0 && s.Tempo <= 0 {
		t.Errorf("a ring should have positive crit or tempo, got %+v", s)
	}
	if s.Armor != 0 || s.Damage != 0 || s.Health != 0 || s.Regen != 0 {
		t.Errorf("a ring should only carry crit/tempo, got %+v", s)
	}
}

func TestCalcDoubleHandedWeaponDoublesDamage(t *testing.T) {
	oneHanded := Calc(protocol.Item{TypeMajor: protocol.ItemTypeWeapon, TypeMinor: byte(WeaponSword), Level: 10})
	twoHanded := Calc(protocol.Item{TypeMajor: protocol.ItemTypeWeapon, TypeMinor: byte(WeaponGreatsword), Level: 10})
	if twoHanded.Damage <= oneHanded.Damage {
		t.Errorf("greatsword damage (%v) should exceed sword damage (%v)", twoHanded.Damage, oneHanded.Damage)
	}
}

func TestCalcHigherRarityIncreasesStats(t *testing.T) {
	normal := Calc(protocol.Item{TypeMajor: protocol.ItemTypeWeapon, Level: 10, Rarity: protocol.RarityNormal})
	legendary := Calc(protocol.Item{TypeMajor: protocol.ItemTypeWeapon, Level: 10, Rarity: protocol.RarityLegendary})
	if legendary.Damage <= normal.Damage {
		t.Errorf("legendary damage (%v) should exceed normal damage (%v)", legendary.Damage, normal.Damage)
	}
}

func TestCalcUnknownMaterialFallsBackToNeutralRow(t *testing.T) {
	known := Calc(protocol.Item{TypeMajor: protocol.ItemTypeChest, Material: protocol.MaterialUnknown, Level: 10})
	if known.Armor <= 0 {
		t.Errorf("an item with an untabulated material should still get a neutral armor value, got %+v", known)
	}
}
