package input

import (
	"time"

	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/memory"
)

// debounceDuration is the minimum time between two presses of a non game action.
const debounceDuration = 300 * time.Millisecond

// Target receives every action a Manager does not swallow.
type Target interface {
	HandleAction(act action.Action, pressed bool)
}

// Manager routes host input to the emulator and to registered callbacks.
// Game Boy buttons pass straight through; other actions are debounced.
type Manager struct {
	target        Target
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]time.Time
	now           func() time.Time
}

func NewManager(target Target) *Manager {
	return &Manager{
		target:        target,
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]time.Time),
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type.
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if action.GetInfo(act).Category == action.CategoryGameInput {
		if m.target != nil && evt != event.Hold {
			m.target.HandleAction(act, evt == event.Press)
		}
		m.dispatch(act, evt)
		return
	}

	if evt == event.Press {
		now := m.now()
		if last, ok := m.lastTriggered[act]; ok && now.Sub(last) < debounceDuration {
			return
		}
		m.lastTriggered[act] = now
		if m.target != nil {
			m.target.HandleAction(act, true)
		}
	}
	m.dispatch(act, evt)
}

func (m *Manager) dispatch(act action.Action, evt event.Type) {
	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

// JoypadKey maps Game Boy actions to joypad keys.
func JoypadKey(act action.Action) (memory.JoypadKey, bool) {
	switch act {
	case action.GBButtonA:
		return memory.JoypadA, true
	case action.GBButtonB:
		return memory.JoypadB, true
	case action.GBButtonStart:
		return memory.JoypadStart, true
	case action.GBButtonSelect:
		return memory.JoypadSelect, true
	case action.GBDPadUp:
		return memory.JoypadUp, true
	case action.GBDPadDown:
		return memory.JoypadDown, true
	case action.GBDPadLeft:
		return memory.JoypadLeft, true
	case action.GBDPadRight:
		return memory.JoypadRight, true
	default:
		return 0, false
	}
}
