package validate

import (
	"fmt"

	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/world"
)

// checkConsumable allows an empty consumable slot unconditionally; an
// occupied one must hold an actual consumable item.
func checkConsumable(previous, updated world.Character) error {
	c := updated.Consumable
	if c.TypeMajor == protocol.ItemTypeVoid {
		return nil
	}
	if c.TypeMajor != protocol.ItemTypeConsumable {
		return fmt.Errorf("consumable.type_major must be Consumable, got %v", c.TypeMajor)
	}
	return nil
}

// equipmentSlotKind is the item type major an occupied slot must hold, in
// the same order as protocol.Equipment.Slots.
var equipmentSlotKind = [...]protocol.ItemTypeMajor{
	protocol.ItemTypeVoid,    // SlotUnknown
	protocol.ItemTypeAmulet,  // SlotNeck
	protocol.ItemTypeChest,   // SlotChest
	protocol.ItemTypeBoots,   // SlotFeet
	protocol.ItemTypeGloves,  // SlotHands
	protocol.ItemTypeShoulder,// SlotShoulder
	protocol.ItemTypeWeapon,  // SlotLeftWeapon
	protocol.ItemTypeWeapon,  // SlotRightWeapon
	protocol.ItemTypeRing,    // SlotLeftRing
	protocol.ItemTypeRing,    // SlotRightRing
	protocol.ItemTypeLamp,    // SlotLamp
	protocol.ItemTypeSpecial, // SlotSpecial
	protocol.ItemTypePet,     // SlotPet
}

// checkEquipment walks every occupied equipment slot and enforces that it
// holds the right kind of item, carries no crafting recipe, and has a
// plausible spirit count. Rarity and material are not checked at all: the
// client's exact per-class/per-slot material allow-list lives in a module
// this repo's source pack did not include (see DESIGN.md), so this accepts
// any material rather than guess at the table.
func checkEquipment(previous, updated world.Character) error {
	for slot, item := range updated.Equipment.Slots {
		if item.TypeMajor == protocol.ItemTypeVoid {
			continue
		}
		want := equipmentSlotKind[slot]
		if item.TypeMajor != want {
			return fmt.Errorf("slot %d: expected item type %v, got %v", slot, want, item.TypeMajor)
		}
		if item.Recipe != protocol.ItemTypeVoid {
			return fmt.Errorf("slot %d: recipe must be empty, got %v", slot, item.Recipe)
		}
		if item.SpiritCounter < 0 || item.SpiritCounter > 32 {
			return fmt.Errorf("slot %d: spirit_counter out of range [0, 32]: %d", slot, item.SpiritCounter)
		}
	}
	return nil
}
