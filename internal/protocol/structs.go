package protocol

import "fmt"

// Appearance is a creature's full cosmetic configuration: body part models,
// sizes, rotations and offsets.
type Appearance struct {
	Unknown        int16
	HairColor      [3]uint8
	Flags          FlagSet16
	CreatureSize   Vec3F32
	HeadModel      int16
	HairModel      int16
	HandModel      int16
	FootModel      int16
	BodyModel      int16
	TailModel      int16
	Shoulder2Model int16
	WingModel      int16
	HeadSize       float32
	BodySize       float32
	HandSize       float32
	FootSize       float32
	Shoulder2Size  float32
	WeaponSize     float32
	TailSize       float32
	Shoulder1Size  float32
	WingSize       float32
	BodyRotation   float32
	HandRotation   Vec3F32
	FeetRotation   float32
	WingRotation   float32
	TailRotation   float32
	BodyOffset     Vec3F32
	HeadOffset     Vec3F32
	HandOffset     Vec3F32
	FootOffset     Vec3F32
	TailOffset     Vec3F32
	WingOffset     Vec3F32
}

func readAppearance(r *Reader) (Appearance, error) {
	var a Appearance
	var err error
	if a.Unknown, err = r.I16(); err != nil {
		return a, err
	}
	for i := range a.HairColor {
		b, err := r.U8()
		if err != nil {
			return a, err
		}
		a.HairColor[i] = b
	}
	if _, err := r.Bytes(1); err != nil { // pad
		return a, err
	}
	flags, err := r.U16()
	if err != nil {
		return a, err
	}
	a.Flags = FlagSet16(flags)
	if a.CreatureSize, err = readVec3F32(r); err != nil {
		return a, err
	}
	fields := []*int16{
		&a.HeadModel, &a.HairModel, &a.HandModel, &a.FootModel,
		&a.BodyModel, &a.TailModel, &a.Shoulder2Model, &a.WingModel,
	}
	for _, f := range fields {
		v, err := r.I16()
		if err != nil {
			return a, err
		}
		*f = v
	}
	floats := []*float32{
		&a.HeadSize, &a.BodySize, &a.HandSize, &a.FootSize,
		&a.Shoulder2Size, &a.WeaponSize, &a.TailSize, &a.Shoulder1Size,
		&a.WingSize, &a.BodyRotation,
	}
	for _, f := range floats {
		v, err := r.F32()
		if err != nil {
			return a, err
		}
		*f = v
	}
	if a.HandRotation, err = readVec3F32(r); err != nil {
		return a, err
	}
	trailing := []*float32{&a.FeetRotation, &a.WingRotation, &a.TailRotation}
	for _, f := range trailing {
		v, err := r.F32()
		if err != nil {
			return a, err
		}
		*f = v
	}
	offsets := []*Vec3F32{
		&a.BodyOffset, &a.HeadOffset, &a.HandOffset,
		&a.FootOffset, &a.TailOffset, &a.WingOffset,
	}
	for _, o := range offsets {
		v, err := readVec3F32(r)
		if err != nil {
			return a, err
		}
		*o = v
	}
	return a, nil
}

func writeAppearance(w *Writer, a Appearance) {
	w.I16(a.Unknown)
	w.RawBytes(a.HairColor[:])
	w.U8(0) // pad
	w.U16(uint16(a.Flags))
	writeVec3F32(w, a.CreatureSize)
	for _, v := range []int16{
		a.HeadModel, a.HairModel, a.HandModel, a.FootModel,
		a.BodyModel, a.TailModel, a.Shoulder2Model, a.WingModel,
	} {
		w.I16(v)
	}
	for _, v := range []float32{
		a.HeadSize, a.BodySize, a.HandSize, a.FootSize,
		a.Shoulder2Size, a.WeaponSize, a.TailSize, a.Shoulder1Size,
		a.WingSize, a.BodyRotation,
	} {
		w.F32(v)
	}
	writeVec3F32(w, a.HandRotation)
	for _, v := range []float32{a.FeetRotation, a.WingRotation, a.TailRotation} {
		w.F32(v)
	}
	for _, v := range []Vec3F32{
		a.BodyOffset, a.HeadOffset, a.HandOffset,
		a.FootOffset, a.TailOffset, a.WingOffset,
	} {
		writeVec3F32(w, v)
	}
}

// Multipliers are the five combat stat multipliers a CreatureUpdate can
// carry. Validation requires each field to equal its fixed baseline
// (Health=100, the rest=1) whenever the field is present at all — the
// vanilla client never sends anything else, and any deviation is treated
// as tampering rather than a legitimate buff/debuff channel.
type Multipliers struct {
	Health      float32
	AttackSpeed float32
	Damage      float32
	Armor       float32
	Resi        float32
}

func readMultipliers(r *Reader) (Multipliers, error) {
	var m Multipliers
	var err error
	if m.Health, err = r.F32(); err != nil {
		return m, err
	}
	if m.AttackSpeed, err = r.F32(); err != nil {
		return m, err
	}
	if m.Damage, err = r.F32(); err != nil {
		return m, err
	}
	if m.Armor, err = r.F32(); err != nil {
		return m, err
	}
	if m.Resi, err = r.F32(); err != nil {
		return m, err
	}
	return m, nil
}

func writeMultipliers(w *Writer, m Multipliers) {
	w.F32(m.Health)
	w.F32(m.AttackSpeed)
	w.F32(m.Damage)
	w.F32(m.Armor)
	w.F32(m.Resi)
}

// EquipmentSlot names the 13 equipment slots in on-wire order.
type EquipmentSlot int

const (
	SlotUnknown EquipmentSlot = iota
	SlotNeck
	SlotChest
	SlotFeet
	SlotHands
	SlotShoulder
	SlotLeftWeapon
	SlotRightWeapon
	SlotLeftRing
	SlotRightRing
	SlotLamp
	SlotSpecial
	SlotPet
	equipmentSlotCount
)

// Equipment is the 13-slot item loadout carried by a CreatureUpdate.
type Equipment struct {
	Slots [equipmentSlotCount]Item
}

func readEquipment(r *Reader) (Equipment, error) {
	var e Equipment
	for i := range e.Slots {
		it, err := ReadItem(r)
		if err != nil {
			return e, fmt.Errorf("read equipment slot %d: %w", i, err)
		}
		e.Slots[i] = it
	}
	return e, nil
}

func writeEquipment(w *Writer, e Equipment) {
	for _, it := range e.Slots {
		WriteItem(w, it)
	}
}

// SkillTree holds the point allocation across a character's non-combat
// skill lines.
type SkillTree struct {
	PetMaster    int32
	PetRiding    int32
	Sailing      int32
	Climbing     int32
	HangGliding  int32
	Swimming     int32
	Ability1     int32
	Ability2     int32
	Ability3     int32
	Ability4     int32
	Ability5     int32
}

// Sum returns the total points allocated across every skill line.
func (s SkillTree) Sum() int32 {
	return s.PetMaster + s.PetRiding + s.Sailing + s.Climbing + s.HangGliding +
		s.Swimming + s.Ability1 + s.Ability2 + s.Ability3 + s.Ability4 + s.Ability5
}

func readSkillTree(r *Reader) (SkillTree, error) {
	var s SkillTree
	fields := []*int32{
		&s.PetMaster, &s.PetRiding, &s.Sailing, &s.Climbing, &s.HangGliding,
		&s.Swimming, &s.Ability1, &s.Ability2, &s.Ability3, &s.Ability4, &s.Ability5,
	}
	for _, f := range fields {
		v, err := r.I32()
		if err != nil {
			return s, err
		}
		*f = v
	}
	return s, nil
}

func writeSkillTree(w *Writer, s SkillTree) {
	for _, v := range []int32{
		s.PetMaster, s.PetRiding, s.Sailing, s.Climbing, s.HangGliding,
		s.Swimming, s.Ability1, s.Ability2, s.Ability3, s.Ability4, s.Ability5,
	} {
		w.I32(v)
	}
}
