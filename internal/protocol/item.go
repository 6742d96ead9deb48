package protocol

import "fmt"

// ItemTypeMajor is the top-level discriminant of an item's kind. Several
// variants (Consumable, Weapon, Resource, Candle, Pet, PetFood, Quest,
// Special) carry a secondary discriminant in TypeMinor; for the rest
// TypeMinor is unused and must round-trip as whatever the client sent.
type ItemTypeMajor uint8

const (
	ItemTypeVoid ItemTypeMajor = iota
	ItemTypeConsumable
	ItemTypeFormula
	ItemTypeWeapon
	ItemTypeChest
	ItemTypeGloves
	ItemTypeBoots
	ItemTypeShoulder
	ItemTypeAmulet
	ItemTypeRing
	ItemTypeBlock
	ItemTypeResource
	ItemTypeCoin
	ItemTypePlatinumCoin
	ItemTypeLeftovers
	ItemTypeBeak
	ItemTypePainting
	ItemTypeVase
	ItemTypeCandle
	ItemTypePet
	ItemTypePetFood
	ItemTypeQuest
	ItemTypeUnknown
	ItemTypeSpecial
	ItemTypeLamp
	ItemTypeManaCube
)

// isItemSwapType reports whether t is a TypeMajor whose on-wire layout
// overlaps Recipe's minor portion with Kind's minor portion.
func isItemSwapType(t ItemTypeMajor) bool {
	return t == ItemTypeFormula || t == ItemTypeLeftovers
}

// Rarity is the item's quality tier.
type Rarity uint8

const (
	RarityNormal Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityMythic
)

// Material is the item's crafting material.
type Material int8

const (
	MaterialNone Material = iota
	MaterialIron
	MaterialWood
	_
	_
	MaterialObsidian
	MaterialUnknown
	MaterialBone
	_
	_
	MaterialCopper
	MaterialGold
	MaterialSilver
	MaterialEmerald
	MaterialSapphire
	MaterialRuby
	MaterialDiamond
	MaterialSandstone
	MaterialSaurian
	MaterialParrot
	MaterialMammoth
	MaterialPlant
	MaterialIce
	MaterialLicht
	MaterialGlass
	MaterialSilk
	MaterialLinen
	MaterialCotton
)

const (
	MaterialFire Material = -128 + iota
	MaterialUnholy
	MaterialIceSpirit
	MaterialWind
)

// Spirit is one socketed rune on an item.
type Spirit struct {
	Position [3]int8
	Material Material
	Level    int16
}

const spiritSize = 8 // 6 logical bytes, rounded up to the struct's align(4)

// Item is the 280-byte on-wire item record embedded in equipment slots,
// drops and actions.
type Item struct {
	TypeMajor     ItemTypeMajor
	TypeMinor     uint8
	Seed          int32
	Recipe        ItemTypeMajor
	MinusModifier int16
	Rarity        Rarity
	Material      Material
	Flags         FlagSet16 // only the low 8 bits are meaningful (FlagSet8 on the wire)
	Level         int16
	Spirits       [32]Spirit
	SpiritCounter int32
}

// ItemSize is the exact on-wire size of a packed Item record.
const ItemSize = 280

// ReadItem decodes a 280-byte Item record. Formula and Leftovers items
// store Recipe's minor portion in the byte that would otherwise pad
// Recipe to Recipe's own alignment (offset 9). ReadItem takes TypeMinor
// from offset 1 as-is and discards offset 9 for every item type, so
// whatever value that byte held is not recovered; WriteItem emits it as
// zero.
func ReadItem(r *Reader) (Item, error) {
	raw, err := r.Bytes(ItemSize)
	if err != nil {
		return Item{}, fmt.Errorf("read item: %w", err)
	}

	// raw[9] is Recipe's padding byte, raw[1] is TypeMinor; the client
	// mirrors TypeMinor into the padding byte unconditionally. We undo
	// nothing here, just decode fields from raw as-is.
	sub := NewReader(raw)

	var it Item
	typeMajor, _ := sub.U8()
	it.TypeMajor = ItemTypeMajor(typeMajor)
	typeMinor, _ := sub.U8()
	it.TypeMinor = typeMinor
	sub.Bytes(2) // pad
	seed, _ := sub.I32()
	it.Seed = seed
	recipe, _ := sub.U8()
	it.Recipe = ItemTypeMajor(recipe)
	sub.Bytes(1) // pad (holds a copy of TypeMinor; discarded)
	minusMod, _ := sub.I16()
	it.MinusModifier = minusMod
	rarity, _ := sub.U8()
	it.Rarity = Rarity(rarity)
	material, _ := sub.I8()
	it.Material = Material(material)
	flags, _ := sub.U8()
	it.Flags = FlagSet16(flags)
	sub.Bytes(1) // pad
	level, _ := sub.I16()
	it.Level = level
	sub.Bytes(2) // pad
	for i := range it.Spirits {
		pos, err := sub.Bytes(3)
		if err != nil {
			return Item{}, fmt.Errorf("read item spirit %d: %w", i, err)
		}
		it.Spirits[i].Position = [3]int8{int8(pos[0]), int8(pos[1]), int8(pos[2])}
		m, _ := sub.I8()
		it.Spirits[i].Material = Material(m)
		lvl, _ := sub.I16()
		it.Spirits[i].Level = lvl
		if _, err := sub.Bytes(spiritSize - 6); err != nil {
			return Item{}, fmt.Errorf("read item spirit %d pad: %w", i, err)
		}
	}
	counter, err := sub.I32()
	if err != nil {
		return Item{}, fmt.Errorf("read item spirit_counter: %w", err)
	}
	it.SpiritCounter = counter

	return it, nil
}

// WriteItem encodes an Item back to its 280-byte wire form. Recipe's
// padding byte (offset 9) always goes out as zero; for Formula and
// Leftovers items the client would instead restore it from TypeMinor,
// but since we never retain the pre-read value of that byte (see
// ReadItem), the zero we write is the best-effort reconstruction this
// ambiguity allows.
func WriteItem(w *Writer, it Item) {
	w.U8(byte(it.TypeMajor))
	w.U8(it.TypeMinor)
	w.RawBytes([]byte{0, 0})
	w.I32(it.Seed)
	w.U8(byte(it.Recipe))
	w.U8(0) // Recipe's padding byte
	w.I16(it.MinusModifier)
	w.U8(byte(it.Rarity))
	w.I8(int8(it.Material))
	w.U8(byte(it.Flags & 0xFF))
	w.U8(0)
	w.I16(it.Level)
	w.RawBytes([]byte{0, 0})
	for _, s := range it.Spirits {
		w.RawBytes([]byte{byte(s.Position[0]), byte(s.Position[1]), byte(s.Position[2])})
		w.I8(int8(s.Material))
		w.I16(s.Level)
		w.RawBytes(make([]byte, spiritSize-6))
	}
	w.I32(it.SpiritCounter)
}
