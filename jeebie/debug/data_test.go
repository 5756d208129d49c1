package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotAround(t *testing.T) {
	tests := []struct {
		name         string
		pc           uint16
		expectedAddr uint16
		expectedSize int
	}{
		{"middle of address space", 0x8000, 0x8000 - 50, 200},
		{"clamped at start", 0x0010, 0x0000, 200},
		{"truncated near end", 0xFFD0, 0xFF9E, 0x10000 - 0xFF9E},
		{"at very end", 0xFFFF, 0xFFCD, 0x10000 - 0xFFCD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := fakeMemory{tt.pc: 0xAB}
			snap := SnapshotAround(mem, tt.pc, 50, 200)

			assert.Equal(t, tt.expectedAddr, snap.StartAddr)
			assert.Len(t, snap.Bytes, tt.expectedSize)
			assert.True(t, snap.Contains(tt.pc))
			assert.Equal(t, uint8(0xAB), snap.Bytes[tt.pc-snap.StartAddr])
		})
	}
}

func TestCPUStateFormatting(t *testing.T) {
	cpu := CPUState{A: 0x01, F: 0xB0, B: 0x00, C: 0x13, D: 0x00, E: 0xD8, H: 0x01, L: 0x4D, SP: 0xFFFE, PC: 0x0100}

	assert.Equal(t, "Z-HC", cpu.Flags())
	assert.Equal(t, "AF=01B0 BC=0013 DE=00D8 HL=014D SP=FFFE PC=0100 [Z-HC]", cpu.String())
}

func TestDebuggerStateString(t *testing.T) {
	assert.Equal(t, "RUNNING", DebuggerRunning.String())
	assert.Equal(t, "PAUSED", DebuggerPaused.String())
}
