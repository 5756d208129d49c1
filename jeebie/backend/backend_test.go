package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie"
	"github.com/valerio/jeebie-core/jeebie/backend"
	"github.com/valerio/jeebie-core/jeebie/debug"
	"github.com/valerio/jeebie-core/jeebie/input"
	"github.com/valerio/jeebie-core/jeebie/input/action"
	"github.com/valerio/jeebie-core/jeebie/input/event"
	"github.com/valerio/jeebie-core/jeebie/video"
)

type pressed struct {
	act  action.Action
	down bool
}

// fakeEmulator counts frames and records actions.
type fakeEmulator struct {
	frames  int
	failAt  int
	err     error
	actions []pressed
	frame   *video.FrameBuffer
}

func (f *fakeEmulator) RunUntilFrame(context.Context) error {
	f.frames++
	if f.failAt > 0 && f.frames >= f.failAt {
		return f.err
	}
	return nil
}

func (f *fakeEmulator) GetCurrentFrame() *video.FrameBuffer { return f.frame }

func (f *fakeEmulator) HandleAction(act action.Action, down bool) {
	f.actions = append(f.actions, pressed{act, down})
}

func (f *fakeEmulator) ExtractDebugData() *debug.Data { return nil }

// mockBackend returns one batch of events per Update call.
type mockBackend struct {
	batches     [][]backend.InputEvent
	updateCalls int
	handled     []action.Action
}

func (m *mockBackend) Init(backend.Config) error { return nil }

func (m *mockBackend) Update(*video.FrameBuffer) ([]backend.InputEvent, error) {
	m.updateCalls++
	if m.updateCalls <= len(m.batches) {
		return m.batches[m.updateCalls-1], nil
	}
	return nil, nil
}

func (m *mockBackend) Cleanup() error { return nil }

func (m *mockBackend) HandleAction(act action.Action) {
	m.handled = append(m.handled, act)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name          string
		batches       [][]backend.InputEvent
		failAt        int
		err           error
		wantErr       error
		expectedCalls int
		expectedActs  []pressed
	}{
		{
			name: "quit event stops loop",
			batches: [][]backend.InputEvent{
				{{Action: action.EmulatorQuit, Type: event.Press}},
			},
			expectedCalls: 1,
			expectedActs:  []pressed{{action.EmulatorQuit, true}},
		},
		{
			name: "game boy buttons pass through",
			batches: [][]backend.InputEvent{
				{{Action: action.GBButtonA, Type: event.Press}},
				{{Action: action.GBButtonA, Type: event.Release}, {Action: action.EmulatorQuit, Type: event.Press}},
			},
			expectedCalls: 2,
			expectedActs: []pressed{
				{action.GBButtonA, true},
				{action.GBButtonA, false},
				{action.EmulatorQuit, true},
			},
		},
		{
			name:          "stop ends the loop without error",
			failAt:        4,
			err:           jeebie.ErrStopped,
			expectedCalls: 3,
		},
		{
			name:          "other errors are returned",
			failAt:        2,
			err:           errors.New("boom"),
			wantErr:       errors.New("boom"),
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emu := &fakeEmulator{failAt: tt.failAt, err: tt.err, frame: video.NewFrameBuffer()}
			b := &mockBackend{batches: tt.batches}

			err := backend.Run(context.Background(), emu, b, input.NewManager(emu))

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.expectedCalls, b.updateCalls)
			assert.Equal(t, tt.expectedActs, emu.actions)
		})
	}
}

func TestRun_BackendActions(t *testing.T) {
	emu := &fakeEmulator{frame: video.NewFrameBuffer()}
	b := &mockBackend{batches: [][]backend.InputEvent{
		{
			{Action: action.EmulatorDebugToggle, Type: event.Press},
			{Action: action.GBButtonB, Type: event.Release},
			{Action: action.EmulatorQuit, Type: event.Press},
		},
	}}

	require.NoError(t, backend.Run(context.Background(), emu, b, input.NewManager(emu)))
	assert.Equal(t, []action.Action{action.EmulatorDebugToggle, action.EmulatorQuit}, b.handled)
}

func TestRun_WithMachine(t *testing.T) {
	dmg := jeebie.New(nil, jeebie.Config{})
	b := &mockBackend{batches: [][]backend.InputEvent{
		nil,
		{{Action: action.EmulatorQuit, Type: event.Press}},
	}}

	require.NoError(t, backend.Run(context.Background(), dmg, b, input.NewManager(dmg)))
	assert.Equal(t, uint64(2), dmg.GPU().FrameCount())
	assert.True(t, dmg.Stopped())
}
