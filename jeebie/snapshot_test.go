package jeebie

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

// counterProgram increments a WRAM byte forever:
// LD HL,$C000; INC (HL); JR -3
var counterProgram = []byte{0x21, 0x00, 0xC0, 0x34, 0x18, 0xFD}

func TestSnapshotRestore_ResumesIdentically(t *testing.T) {
	ctx := context.Background()
	original := newTestMachine(t, counterProgram...)
	require.NoError(t, original.RunUntilFrame(ctx))

	var buf bytes.Buffer
	require.NoError(t, original.Snapshot().Encode(&buf))

	state, err := DecodeState(&buf)
	require.NoError(t, err)

	restored := newTestMachine(t, counterProgram...)
	require.NoError(t, restored.Restore(state))
	assert.Equal(t, original.Snapshot(), restored.Snapshot())

	for range 3 {
		require.NoError(t, original.RunUntilFrame(ctx))
		require.NoError(t, restored.RunUntilFrame(ctx))
	}

	assert.Equal(t, original.CPU().Snapshot(), restored.CPU().Snapshot())
	assert.Equal(t, original.MMU().Read(0xC000), restored.MMU().Read(0xC000))
	assert.Equal(t, original.GPU().FrameCount(), restored.GPU().FrameCount())
	assert.Equal(t, original.Frame().ToSlice(), restored.Frame().ToSlice())
}

func TestSnapshot_CapturesComponents(t *testing.T) {
	d := newTestMachine(t, counterProgram...)
	for range 10 {
		_, err := d.Step()
		require.NoError(t, err)
	}
	d.MMU().Write(addr.SCX, 0x33)
	d.MMU().Write(0xFF80, 0x77)

	s := d.Snapshot()

	assert.Equal(t, stateVersion, s.Version)
	assert.Equal(t, "MACHINE", s.Title)
	assert.False(t, s.Color)
	assert.Equal(t, uint8(0x33), s.GPU.SCX)
	assert.Equal(t, uint8(0x77), s.MMU.HRAM[0])
	assert.Equal(t, d.CPU().Cycles(), s.CPU.Cycles)
	assert.NotZero(t, s.MMU.WRAM[0][0])
}

func TestRestore_Mismatch(t *testing.T) {
	base := newTestMachine(t, counterProgram...)

	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"version", func(s *State) { s.Version = 99 }},
		{"color mode", func(s *State) { s.Color = true }},
		{"cartridge", func(s *State) { s.Title = "OTHER" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base.Snapshot()
			tt.mutate(s)
			assert.ErrorIs(t, base.Restore(s), ErrStateMismatch)
		})
	}
}

func TestDecodeState_Garbage(t *testing.T) {
	_, err := DecodeState(bytes.NewReader([]byte("not a state")))
	assert.Error(t, err)
}
