// Package backend hosts a running machine: it presents frames and turns
// platform input into actions.
package backend

import (
	"context"
	"errors"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// Backend is a presentation platform (terminal, headless, ...).
type Backend interface {
	// Init prepares the backend. It must be called before Update.
	Init(config Config) error

	// Update presents frame and returns the input events gathered since the
	// previous call.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup releases platform resources.
	Cleanup() error
}

// ActionHandler is implemented by backends with actions of their own, such
// as toggling a debug pane.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// InputEvent is an action transition reported by a backend.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// DebugDataProvider supplies the state shown by debug panes.
type DebugDataProvider interface {
	ExtractDebugData() *debug.Data
}

// Config holds configuration for backends.
type Config struct {
	Title         string
	ShowDebug     bool
	DebugProvider DebugDataProvider
}

// Run drives emu one frame at a time, presenting every frame on b and
// routing its events through m, until a quit action, a stop or an error.
// A stop is not an error.
func Run(ctx context.Context, emu jeebie.Emulator, b Backend, m *input.Manager) error {
	handler, _ := b.(ActionHandler)

	for {
		if err := emu.RunUntilFrame(ctx); err != nil {
			if errors.Is(err, jeebie.ErrStopped) {
				slog.Info("emulation stopped")
				return nil
			}
			return err
		}

		events, err := b.Update(emu.GetCurrentFrame())
		if err != nil {
			return err
		}

		quit := false
		for _, evt := range events {
			m.Trigger(evt.Action, evt.Type)
			if handler != nil && evt.Type == event.Press {
				handler.HandleAction(evt.Action)
			}
			if evt.Action == action.EmulatorQuit && evt.Type == event.Press {
				quit = true
			}
		}
		if quit {
			slog.Info("quit requested")
			return nil
		}
	}
}
