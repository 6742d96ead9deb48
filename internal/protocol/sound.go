package protocol

// SoundKind selects which sound effect clip a Sound packet triggers.
type SoundKind int32

const (
	SoundHit SoundKind = iota
	SoundBlade1
	SoundBlade2
	SoundLongBlade1
	SoundLongBlade2
	SoundHit1
	SoundHit2
	SoundPunch1
	SoundPunch2
	SoundHitArrow
	SoundHitArrowCritical
	SoundSmash1
	SoundSlamGround
	SoundSmashHit2
	SoundSmashJump
	SoundSwing
	SoundShieldSwing
	SoundSwingSlow
	SoundSwingSlow2
	SoundArrowDestroy
	SoundBlade3
	SoundPunch3
	SoundSalvo2
	SoundSwordHit03
	SoundBlock
	SoundShieldSlam
	SoundRoll
	SoundDestroy2
	SoundCry
	SoundLevelup2
	SoundMissioncomplete
	SoundWatersplash01
	SoundStep2
	SoundStepWater
	SoundStepWater2
	SoundStepWater3
	SoundChannel2
	SoundChannelHit
	SoundFireball
	SoundFireHit
	SoundMagic01
	SoundWatersplash
	SoundWatersplashHit
	SoundLichScream
	SoundDrink2
	SoundPickup
	SoundDisenchant2
	SoundUpgrade2
	SoundSwirl
	SoundHumanVoice01
	SoundHumanVoice02
	SoundGate
	SoundSpikeTrap
	SoundFireTrap
	SoundLever
	SoundCharge2
	SoundMagic02
	SoundDrop
	SoundDropCoin
	SoundDropItem
	SoundMaleGroan
	SoundFemaleGroan
	SoundMaleGroan2
	SoundFemaleGroan2
	SoundGoblinMaleGroan
	SoundGoblinFemaleGroan
	SoundLizardMaleGroan
	SoundLizardFemaleGroan
	SoundDwarfMaleGroan
	SoundDwarfFemaleGroan
	SoundOrcMaleGroan
	SoundOrcFemaleGroan
	SoundUndeadMaleGroan
	SoundUndeadFemaleGroan
	SoundFrogmanMaleGroan
	SoundFrogmanFemaleGroan
	SoundMonsterGroan
	SoundTrollGroan
	SoundMoleGroan
	SoundSlimeGroan
	SoundZombieGroan
	SoundExplosion
	SoundPunch4
	SoundMenuOpen2
	SoundMenuClose2
	SoundMenuSelect
	SoundMenuTab
	SoundMenuGrabItem
	SoundMenuDropItem
	SoundCraft
	SoundCraftProc
	SoundAbsorb
	SoundManashield
	SoundBulwark
	SoundBird1
	SoundBird2
	SoundBird3
	SoundCricket1
	SoundCricket2
	SoundOwl1
	SoundOwl2
)

// raceGroan maps a creature race to the groan sound played on a normal hit,
// for the races that have one.
var raceGroan = map[Race]SoundKind{
	RaceElfMale:         SoundMaleGroan,
	RaceElfFemale:       SoundFemaleGroan,
	RaceHumanMale:       SoundMaleGroan2,
	RaceHumanFemale:     SoundFemaleGroan2,
	RaceGoblinMale:      SoundGoblinMaleGroan,
	RaceGoblinFemale:    SoundGoblinFemaleGroan,
	RaceLizardmanMale:   SoundLizardMaleGroan,
	RaceLizardmanFemale: SoundLizardFemaleGroan,
	RaceDwarfMale:       SoundDwarfMaleGroan,
	RaceDwarfFemale:     SoundDwarfFemaleGroan,
	RaceOrcMale:         SoundOrcMaleGroan,
	RaceOrcFemale:       SoundOrcFemaleGroan,
	RaceFrogmanMale:     SoundFrogmanMaleGroan,
	RaceFrogmanFemale:   SoundFrogmanFemaleGroan,
	RaceUndeadMale:      SoundUndeadMaleGroan,
	RaceUndeadFemale:    SoundUndeadFemaleGroan,
}

// GroanFor returns the race-specific groan sound for race, if it has one.
func GroanFor(race Race) (SoundKind, bool) {
	k, ok := raceGroan[race]
	return k, ok
}

// Sound is a one-shot audio cue broadcast as part of a WorldUpdate.
type Sound struct {
	Position Vec3F32
	Kind     SoundKind
	Volume   float32
	Pitch    float32
}

// SoundAt builds a Sound at full volume and pitch, the common case.
func SoundAt(position Vec3F32, kind SoundKind) Sound {
	return Sound{Position: position, Kind: kind, Volume: 1, Pitch: 1}
}

func readSound(r *Reader) (Sound, error) {
	var s Sound
	var err error
	if s.Position, err = readVec3F32(r); err != nil {
		return s, err
	}
	kind, err := r.I32()
	if err != nil {
		return s, err
	}
	s.Kind = SoundKind(kind)
	if s.Volume, err = r.F32(); err != nil {
		return s, err
	}
	if s.Pitch, err = r.F32(); err != nil {
		return s, err
	}
	return s, nil
}

func writeSound(w *Writer, s Sound) {
	writeVec3F32(w, s.Position)
	w.I32(int32(s.Kind))
	w.F32(s.Volume)
	w.F32(s.Pitch)
}
