package ext

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cubeworld/relay/internal/protocol"
	"github.com/cubeworld/relay/internal/session"
)

// LuaAdapter loads a directory of .lua scripts and builds a Hooks value that
// routes each seam through the matching Lua global (on_join, on_leave,
// on_chat, on_creature_update, on_hit), falling back to NoOp's behavior for
// any global the scripts don't define or that errors at call time.
//
// Every hook call runs the same *lua.LState, which is not safe for
// concurrent use, while each connection's handlers run on that
// connection's own read loop; the hooks returned by one Hooks call are
// therefore serialized by a mutex.
type LuaAdapter struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewLuaAdapter creates a Lua VM and loads every *.lua file directly under
// dir. A missing directory is not an error: Hooks() then returns NoOp()
// behavior for every seam, since no globals will ever be defined.
func NewLuaAdapter(dir string, log *zap.Logger) (*LuaAdapter, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	a := &LuaAdapter{vm: vm, log: log}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return a, nil
		}
		vm.Close()
		return nil, fmt.Errorf("read script dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := vm.DoFile(path); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		log.Debug("loaded lua script", zap.String("file", path))
	}
	return a, nil
}

// Close releases the underlying Lua state.
func (a *LuaAdapter) Close() {
	a.vm.Close()
}

// Hooks returns the Hooks value backed by this adapter's scripts.
func (a *LuaAdapter) Hooks() Hooks {
	var mu sync.Mutex
	return Hooks{
		OnJoin:  func(s *session.Session) { mu.Lock(); defer mu.Unlock(); a.onJoin(s) },
		OnLeave: func(s *session.Session) { mu.Lock(); defer mu.Unlock(); a.onLeave(s) },
		OnChat:  func(s *session.Session, text string) bool { mu.Lock(); defer mu.Unlock(); return a.onChat(s, text) },
		OnCreatureUpdate: func(s *session.Session, cu *protocol.CreatureUpdate) {
			mu.Lock()
			defer mu.Unlock()
			a.onCreatureUpdate(s, cu)
		},
		OnHit: func(s *session.Session, hit *protocol.Hit) { mu.Lock(); defer mu.Unlock(); a.onHit(s, hit) },
	}
}

func (a *LuaAdapter) onJoin(s *session.Session) {
	fn := a.vm.GetGlobal("on_join")
	if fn == lua.LNil {
		return
	}
	if err := a.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, sessionTable(a.vm, s)); err != nil {
		a.log.Error("lua on_join error", zap.Error(err))
	}
}

func (a *LuaAdapter) onLeave(s *session.Session) {
	fn := a.vm.GetGlobal("on_leave")
	if fn == lua.LNil {
		return
	}
	if err := a.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, sessionTable(a.vm, s)); err != nil {
		a.log.Error("lua on_leave error", zap.Error(err))
	}
}

func (a *LuaAdapter) onChat(s *session.Session, text string) bool {
	fn := a.vm.GetGlobal("on_chat")
	if fn == lua.LNil {
		return false
	}
	if err := a.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, sessionTable(a.vm, s), lua.LString(text)); err != nil {
		a.log.Error("lua on_chat error", zap.Error(err))
		return false
	}
	result := a.vm.Get(-1)
	a.vm.Pop(1)
	return result == lua.LTrue
}

func (a *LuaAdapter) onCreatureUpdate(s *session.Session, cu *protocol.CreatureUpdate) {
	fn := a.vm.GetGlobal("on_creature_update")
	if fn == lua.LNil {
		return
	}
	flags := uint32(0)
	if cu.Flags != nil {
		flags = 1
		if cu.Flags.Has(protocol.CreatureFriendlyFire) {
			flags = 2
		}
	}
	t := a.vm.NewTable()
	t.RawSetString("has_flags", lua.LBool(cu.Flags != nil))
	t.RawSetString("friendly_fire", lua.LBool(flags == 2))
	if err := a.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, sessionTable(a.vm, s), t); err != nil {
		a.log.Error("lua on_creature_update error", zap.Error(err))
		return
	}
	result := a.vm.Get(-1)
	a.vm.Pop(1)
	rt, ok := result.(*lua.LTable)
	if !ok || cu.Flags == nil {
		return
	}
	if ff := rt.RawGetString("friendly_fire"); ff != lua.LNil {
		copyFlags := *cu.Flags
		if ff == lua.LTrue {
			copyFlags.Set(protocol.CreatureFriendlyFire)
		} else {
			copyFlags.Clear(protocol.CreatureFriendlyFire)
		}
		cu.Flags = &copyFlags
	}
}

func (a *LuaAdapter) onHit(s *session.Session, hit *protocol.Hit) {
	fn := a.vm.GetGlobal("on_hit")
	if fn == lua.LNil {
		return
	}
	t := a.vm.NewTable()
	t.RawSetString("attacker", lua.LNumber(hit.Attacker))
	t.RawSetString("target", lua.LNumber(hit.Target))
	t.RawSetString("damage", lua.LNumber(hit.Damage))
	t.RawSetString("critical", lua.LBool(hit.Critical))
	if err := a.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, sessionTable(a.vm, s), t); err != nil {
		a.log.Error("lua on_hit error", zap.Error(err))
		return
	}
	result := a.vm.Get(-1)
	a.vm.Pop(1)
	rt, ok := result.(*lua.LTable)
	if !ok {
		return
	}
	if dmg := rt.RawGetString("damage"); dmg != lua.LNil {
		hit.Damage = float32(lua.LVAsNumber(dmg))
	}
}

// sessionTable builds the read-only view of a session scripts receive: its
// creature id and current position, plus a getter/setter pair over its
// addon-data store so scripts can stash per-session state (team assignment,
// admin flag) across hook calls.
func sessionTable(vm *lua.LState, s *session.Session) *lua.LTable {
	t := vm.NewTable()
	t.RawSetString("id", lua.LNumber(s.ID))
	pos := s.Character().Position
	posT := vm.NewTable()
	posT.RawSetString("x", lua.LNumber(pos.X))
	posT.RawSetString("y", lua.LNumber(pos.Y))
	posT.RawSetString("z", lua.LNumber(pos.Z))
	t.RawSetString("position", posT)

	t.RawSetString("get_data", vm.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		v, ok := s.AddonData(key)
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		switch val := v.(type) {
		case string:
			L.Push(lua.LString(val))
		case bool:
			L.Push(lua.LBool(val))
		case float64:
			L.Push(lua.LNumber(val))
		case int:
			L.Push(lua.LNumber(val))
		default:
			L.Push(lua.LNil)
		}
		return 1
	}))
	t.RawSetString("set_data", vm.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(2)
		val := L.CheckAny(3)
		switch v := val.(type) {
		case lua.LString:
			s.SetAddonData(key, string(v))
		case lua.LBool:
			s.SetAddonData(key, bool(v))
		case lua.LNumber:
			s.SetAddonData(key, float64(v))
		}
		return 0
	}))
	return t
}
