// Package debug extracts read-only views of machine state for debug
// displays and dumps.
package debug

import "fmt"

// MemoryReader is the read side of the bus.
type MemoryReader interface {
	Read(address uint16) byte
}

// CPUState contains all CPU register information for debugging.
type CPUState struct {
	A, F, B, C, D, E, H, L uint8

	SP     uint16
	PC     uint16
	IME    bool
	Halted bool
	Cycles uint64
}

// Flags renders F as ZNHC with dashes for clear bits.
func (c *CPUState) Flags() string {
	names := "ZNHC"
	out := []byte("----")
	for i := range 4 {
		if c.F&(0x80>>i) != 0 {
			out[i] = names[i]
		}
	}
	return string(out)
}

func (c *CPUState) String() string {
	return fmt.Sprintf("AF=%02X%02X BC=%02X%02X DE=%02X%02X HL=%02X%02X SP=%04X PC=%04X [%s]",
		c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L, c.SP, c.PC, c.Flags())
}

// MemorySnapshot is a copy of a window of the address space.
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// SnapshotAround copies up to size bytes starting before bytes before pc,
// clamped so the window never wraps past 0xFFFF.
func SnapshotAround(reader MemoryReader, pc uint16, before, size int) *MemorySnapshot {
	start := int(pc) - before
	if start < 0 {
		start = 0
	}
	if start+size > 0x10000 {
		size = 0x10000 - start
	}

	snap := &MemorySnapshot{StartAddr: uint16(start), Bytes: make([]uint8, size)}
	for i := range size {
		snap.Bytes[i] = reader.Read(uint16(start + i))
	}
	return snap
}

// Contains reports whether address falls inside the snapshot.
func (s *MemorySnapshot) Contains(address uint16) bool {
	return int(address) >= int(s.StartAddr) && int(address) < int(s.StartAddr)+len(s.Bytes)
}

// DebuggerState represents the current debugger state.
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
)

func (s DebuggerState) String() string {
	if s == DebuggerPaused {
		return "PAUSED"
	}
	return "RUNNING"
}

// Data contains everything the debug displays show for one frame.
type Data struct {
	OAM             *OAMData
	VRAM            *VRAMData
	CPU             *CPUState
	Memory          *MemorySnapshot
	DebuggerState   DebuggerState
	InterruptEnable uint8
	InterruptFlags  uint8
	Scanline        uint8
	Mode            string
	Frame           uint64
}
