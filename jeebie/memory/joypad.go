package memory

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// JoypadKey represents a key on the joypad.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

const (
	selectDpad    = 4
	selectButtons = 5
)

// Joypad models P1. Both key groups are active low.
type Joypad struct {
	buttons uint8
	dpad    uint8
	line    uint8
	irq     Interrupter
}

func NewJoypad(irq Interrupter) *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
		line:    0x30,
		irq:     irq,
	}
}

// Read returns P1: the select lines plus the low nibble of every selected group.
func (j *Joypad) Read() uint8 {
	low := uint8(0x0F)
	if !bit.IsSet(selectDpad, j.line) {
		low &= j.dpad
	}
	if !bit.IsSet(selectButtons, j.line) {
		low &= j.buttons
	}
	return 0xC0 | j.line | low
}

// Write sets the select lines, only bits 4 and 5 are writable.
func (j *Joypad) Write(value uint8) {
	j.line = value & 0x30
}

func (j *Joypad) group(key JoypadKey) (*uint8, uint8) {
	if key >= JoypadA {
		return &j.buttons, uint8(key - JoypadA)
	}
	return &j.dpad, uint8(key)
}

// Press marks a key as held, requesting the joypad interrupt on a
// released to pressed transition.
func (j *Joypad) Press(key JoypadKey) {
	g, idx := j.group(key)
	if bit.IsSet(idx, *g) && j.irq != nil {
		j.irq.RequestInterrupt(addr.JoypadInterrupt)
	}
	*g = bit.Clear(idx, *g)
}

// Release marks a key as not held.
func (j *Joypad) Release(key JoypadKey) {
	g, idx := j.group(key)
	*g = bit.Set(idx, *g)
}

// JoypadState is the joypad's part of a snapshot.
type JoypadState struct {
	Buttons, Dpad, Line uint8
}

func (j *Joypad) Snapshot() JoypadState {
	return JoypadState{Buttons: j.buttons, Dpad: j.dpad, Line: j.line}
}

func (j *Joypad) Restore(s JoypadState) {
	j.buttons, j.dpad, j.line = s.Buttons, s.Dpad, s.Line&0x30
}
