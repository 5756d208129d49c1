package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

var _ backend.Backend = (*Backend)(nil)
var _ backend.ActionHandler = (*Backend)(nil)

type stubProvider struct {
	data *debug.Data
}

func (s stubProvider) ExtractDebugData() *debug.Data { return s.data }

func newTestBackend(t *testing.T, cfg backend.Config) (*Backend, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	sim := tcell.NewSimulationScreen("UTF-8")
	b := newBackend(func() (tcell.Screen, error) { return sim, nil })
	now := time.Unix(1000, 0)
	b.now = func() time.Time { return now }

	prev := slog.Default()
	require.NoError(t, b.Init(cfg))
	t.Cleanup(func() { slog.SetDefault(prev) })
	sim.SetSize(200, 60)
	t.Cleanup(func() { b.Cleanup() })
	return b, sim, &now
}

func screenText(sim tcell.SimulationScreen) string {
	cells, w, h := sim.GetContents()
	out := make([]rune, 0, w*h)
	for _, c := range cells {
		if len(c.Runes) > 0 {
			out = append(out, c.Runes[0])
		} else {
			out = append(out, ' ')
		}
	}
	return string(out)
}

func TestUpdate_GameButtonLifecycle(t *testing.T) {
	b, sim, now := newTestBackend(t, backend.Config{})
	frame := video.NewFrameBuffer()

	sim.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Press}}, events)

	*now = now.Add(50 * time.Millisecond)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Hold}}, events)

	*now = now.Add(keyTimeout)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []backend.InputEvent{{Action: action.GBButtonA, Type: event.Release}}, events)

	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestUpdate_DirectionsAreExclusive(t *testing.T) {
	b, sim, _ := newTestBackend(t, backend.Config{})
	frame := video.NewFrameBuffer()

	sim.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	_, err := b.Update(frame)
	require.NoError(t, err)

	sim.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.ElementsMatch(t, []backend.InputEvent{
		{Action: action.GBDPadLeft, Type: event.Press},
		{Action: action.GBDPadUp, Type: event.Release},
	}, events)
}

func TestUpdate_EmulatorKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		want action.Action
	}{
		{"space pauses", tcell.KeyRune, ' ', action.EmulatorPauseToggle},
		{"n steps", tcell.KeyRune, 'n', action.EmulatorStepInstruction},
		{"f10 toggles debug", tcell.KeyF10, 0, action.EmulatorDebugToggle},
		{"f5 saves state", tcell.KeyF5, 0, action.EmulatorSaveState},
		{"escape quits", tcell.KeyEscape, 0, action.EmulatorQuit},
		{"ctrl-c quits", tcell.KeyCtrlC, 0, action.EmulatorQuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, sim, _ := newTestBackend(t, backend.Config{})
			sim.InjectKey(tt.key, tt.r, tcell.ModNone)

			events, err := b.Update(video.NewFrameBuffer())
			require.NoError(t, err)
			assert.Equal(t, []backend.InputEvent{{Action: tt.want, Type: event.Press}}, events)
		})
	}
}

func TestRender_DebugPanes(t *testing.T) {
	data := &debug.Data{
		CPU:           &debug.CPUState{A: 0x12, PC: 0x0150, IME: true},
		DebuggerState: debug.DebuggerPaused,
		Mode:          "hblank",
	}
	b, sim, _ := newTestBackend(t, backend.Config{Title: "TETRIS", DebugProvider: stubProvider{data}})

	_, err := b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	assert.Contains(t, screenText(sim), "TETRIS")
	assert.NotContains(t, screenText(sim), "CPU Registers")

	b.HandleAction(action.EmulatorDebugToggle)
	_, err = b.Update(video.NewFrameBuffer())
	require.NoError(t, err)

	text := screenText(sim)
	assert.Contains(t, text, "CPU Registers")
	assert.Contains(t, text, "Status: PAUSED")
	assert.Contains(t, text, "A: 0x12")
	assert.Contains(t, text, "PC: 0x0150")
}

func TestRender_TooSmall(t *testing.T) {
	b, sim, _ := newTestBackend(t, backend.Config{})
	sim.SetSize(40, 10)

	_, err := b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	assert.Contains(t, screenText(sim), "Terminal too small")
}

func TestChangeLogLevel(t *testing.T) {
	b := newBackend(nil)

	b.HandleAction(action.DebugLogLevelIncrease)
	assert.Equal(t, "DEBUG", b.logLevel.String())
	b.HandleAction(action.DebugLogLevelIncrease)
	assert.Equal(t, "DEBUG", b.logLevel.String())

	for range 5 {
		b.HandleAction(action.DebugLogLevelDecrease)
	}
	assert.Equal(t, "ERROR", b.logLevel.String())
}

func TestSnapshotAction(t *testing.T) {
	b, _, _ := newTestBackend(t, backend.Config{})
	dir := t.TempDir()
	b.SetSnapshotDir(dir)

	_, err := b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	b.HandleAction(action.EmulatorSnapshot)

	entries := b.logBuffer.GetRecent(1)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "snapshot saved path="+dir)
}
