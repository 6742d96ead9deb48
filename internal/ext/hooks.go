// Package ext defines the core's hook seams (join, leave, chat,
// post-validation creature update, hit) as plain Go function values with
// safe no-op defaults, and an optional gopher-lua-backed adapter that
// routes them through an operator-supplied script directory.
package ext

import (
	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/session"
)

// Hooks is the full set of seams the core calls into. Every field is
// always non-nil — either a real hook or NoOp's no-op — so callers never
// need a nil check.
type Hooks struct {
	// OnJoin fires once a session has a live Character and has been
	// registered with the hub.
	OnJoin func(s *session.Session)

	// OnLeave fires during teardown, after the session has been removed
	// from the hub but before its CreatureId is released.
	OnLeave func(s *session.Session)

	// OnChat fires for every client chat message before it is relayed.
	// Returning true means the hook fully handled the message (e.g. a
	// slash command) and the core must not broadcast it.
	OnChat func(s *session.Session, text string) (handled bool)

	// OnCreatureUpdate fires after the anti-cheat validator has accepted
	// an update, before broadcast. It may mutate cu in place (the PvP
	// friendly-fire and traffic-filter transforms of §4.4 are examples).
	OnCreatureUpdate func(s *session.Session, cu *protocol.CreatureUpdate)

	// OnHit fires for every Hit before it is relayed to its target.
	OnHit func(s *session.Session, hit *protocol.Hit)
}

// NoOp returns a Hooks value where every seam is a harmless pass-through:
// OnChat never claims to have handled a message, OnCreatureUpdate and
// OnHit never mutate their argument, OnJoin/OnLeave do nothing. The core
// must behave correctly driven entirely by this value.
func NoOp() Hooks {
	return Hooks{
		OnJoin:           func(*session.Session) {},
		OnLeave:          func(*session.Session) {},
		OnChat:           func(*session.Session, string) bool { return false },
		OnCreatureUpdate: func(*session.Session, *protocol.CreatureUpdate) {},
		OnHit:            func(*session.Session, *protocol.Hit) {},
	}
}
