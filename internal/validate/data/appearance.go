// Package data holds the static per-race table and fixed constants the
// validator checks creature appearance against.
package data

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cubeworld/relay/internal/protocol"
)

//go:embed appearance.yaml
var appearanceYAML []byte

// IntRange is an inclusive range of model indices.
type IntRange struct{ Min, Max int16 }

func (r IntRange) Contains(v int16) bool { return v >= r.Min && v <= r.Max }

func (r *IntRange) UnmarshalYAML(value *yaml.Node) error {
	var pair [2]int16
	if err := value.Decode(&pair); err != nil {
		return err
	}
	r.Min, r.Max = pair[0], pair[1]
	return nil
}

// Hitbox is a creature's collision box, exposed on the wire as CreatureSize.
type Hitbox struct {
	Width  float32 `yaml:"width"`
	Depth  float32 `yaml:"depth"`
	Height float32 `yaml:"height"`
}

// AppearanceProfile is the set of allowed/exact appearance values for one
// playable race.
type AppearanceProfile struct {
	Hitbox        Hitbox   `yaml:"hitbox"`
	HeadModel     IntRange `yaml:"head_model"`
	HairModel     IntRange `yaml:"hair_model"`
	HandModel     IntRange `yaml:"hand_model"`
	FootModel     int16    `yaml:"foot_model"`
	BodyModel     int16    `yaml:"body_model"`
	HeadSize      float32  `yaml:"head_size"`
	BodySize      float32  `yaml:"body_size"`
	Shoulder1Size float32  `yaml:"shoulder1_size"`
	WeaponSize    float32  `yaml:"weapon_size"`
}

type appearanceFile struct {
	Races map[string]AppearanceProfile `yaml:"races"`
}

// raceNames maps the embedded YAML's string keys onto protocol.Race
// values; the YAML is keyed by name rather than by the enum's numeric
// value so the table reads and diffs like the client's own race list.
var raceNames = map[string]protocol.Race{
	"ElfMale": protocol.RaceElfMale, "ElfFemale": protocol.RaceElfFemale,
	"HumanMale": protocol.RaceHumanMale, "HumanFemale": protocol.RaceHumanFemale,
	"GoblinMale": protocol.RaceGoblinMale, "GoblinFemale": protocol.RaceGoblinFemale,
	"LizardmanMale": protocol.RaceLizardmanMale, "LizardmanFemale": protocol.RaceLizardmanFemale,
	"DwarfMale": protocol.RaceDwarfMale, "DwarfFemale": protocol.RaceDwarfFemale,
	"OrcMale": protocol.RaceOrcMale, "OrcFemale": protocol.RaceOrcFemale,
	"FrogmanMale": protocol.RaceFrogmanMale, "FrogmanFemale": protocol.RaceFrogmanFemale,
	"UndeadMale": protocol.RaceUndeadMale, "UndeadFemale": protocol.RaceUndeadFemale,
}

// AppearanceByRace is the exact table the vanilla client enforces per
// race, parsed once at package init from the embedded appearance.yaml.
var AppearanceByRace = mustLoadAppearance()

func mustLoadAppearance() map[protocol.Race]AppearanceProfile {
	var file appearanceFile
	if err := yaml.Unmarshal(appearanceYAML, &file); err != nil {
		panic(fmt.Sprintf("validate/data: parsing appearance.yaml: %v", err))
	}
	out := make(map[protocol.Race]AppearanceProfile, len(file.Races))
	for name, profile := range file.Races {
		race, ok := raceNames[name]
		if !ok {
			panic(fmt.Sprintf("validate/data: appearance.yaml names unknown race %q", name))
		}
		out[race] = profile
	}
	for name, race := range raceNames {
		if _, ok := out[race]; !ok {
			panic(fmt.Sprintf("validate/data: appearance.yaml is missing race %q", name))
		}
	}
	return out
}

// Fixed global appearance constants, identical across every race.
const (
	FixedTailModel      int16   = -1
	FixedShoulder2Model int16   = -1
	FixedWingModel      int16   = -1
	FixedHandSize       float32 = 1.0
	FixedFootSize       float32 = 0.98
	FixedTailSize       float32 = 0.8
	FixedShoulder2Size  float32 = 1.0
	FixedWingSize       float32 = 1.0
	FixedBodyRotation   float32 = 0.0
	FixedFeetRotation   float32 = 0.0
	FixedWingRotation   float32 = 0.0
	FixedTailRotation   float32 = 0.0
)

var (
	FixedBodyOffset = protocol.Vec3F32{X: 0, Y: 0, Z: -5}
	FixedHandOffset = protocol.Vec3F32{X: 6, Y: 0, Z: 0}
	FixedFootOffset = protocol.Vec3F32{X: 3, Y: 1, Z: -10.5}
	FixedTailOffset = protocol.Vec3F32{X: 0, Y: -8, Z: 2}
	FixedWingOffset = protocol.Vec3F32{X: 0, Y: 0, Z: 0}
)

// HeadOffsetFor returns the one appearance field that varies by race
// outside the AppearanceProfile table: Orc females hold their head
// higher and closer than every other race.
func HeadOffsetFor(race protocol.Race) protocol.Vec3F32 {
	if race == protocol.RaceOrcFemale {
		return protocol.Vec3F32{X: 0, Y: 1.5, Z: 4}
	}
	return protocol.Vec3F32{X: 0, Y: 0.5, Z: 5}
}
