package ext

import "github.com/cubeworld/relay/internal/protocol"

// ForceFriendlyFire is an example pure-transform addon: it forces the
// FriendlyFire bit on in a creature update's flags, if the update touches
// flags at all. Install it as (part of) OnCreatureUpdate to make every
// relayed update carry the flag, turning on PvP damage between the two
// creatures that exchange it.
//
// The upstream addon this is adapted from sends two variants of every
// update — an unmodified copy to the source's own teammates and a
// FriendlyFire-forced copy to everyone else — which requires a
// per-recipient broadcast the single-mutation OnCreatureUpdate seam does
// not expose. This simplified version always forces the flag; a team-aware
// variant belongs in a hub broadcast path that can vary the payload per
// recipient, not in this hook.
func ForceFriendlyFire(cu *protocol.CreatureUpdate) {
	if cu.Flags == nil {
		return
	}
	flags := *cu.Flags
	flags.Set(protocol.CreatureFriendlyFire)
	cu.Flags = &flags
}
