package cpu

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// Flag is one of the four condition bits held in the upper nibble of F.
type Flag = uint8

const (
	zeroFlag      Flag = 0x80
	subFlag       Flag = 0x40
	halfCarryFlag Flag = 0x20
	carryFlag     Flag = 0x10

	allFlags = zeroFlag | subFlag | halfCarryFlag | carryFlag
)

// idleRequestPattern is what IF reads as when nothing is requested.
const idleRequestPattern uint8 = 0xE0

// Registers is the register file: the eight 8 bit registers, PC and SP,
// plus the interrupt enable/request masks and the master enable flag.
// It also implements interrupt requesting for the peripherals.
type Registers struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16

	ie  uint8
	ifr uint8
	ime bool
	// imeJustSet marks that EI ran during the current step, which delays
	// servicing by one instruction.
	imeJustSet bool
}

// NewRegisters returns a register file holding the post boot ROM values.
func NewRegisters(color bool) *Registers {
	r := &Registers{}
	r.Reset(color)
	return r
}

// Reset loads the values the boot ROM leaves behind.
func (r *Registers) Reset(color bool) {
	*r = Registers{}
	r.SetAF(0x01B0)
	if color {
		r.A = 0x11
	}
	r.SetBC(0x0013)
	r.SetDE(0x00D8)
	r.SetHL(0x014D)
	r.SP = 0xFFFE
	r.PC = 0x0100
	r.ifr = 0x01
}

func (r *Registers) AF() uint16 { return bit.Combine(r.A, r.F) }
func (r *Registers) BC() uint16 { return bit.Combine(r.B, r.C) }
func (r *Registers) DE() uint16 { return bit.Combine(r.D, r.E) }
func (r *Registers) HL() uint16 { return bit.Combine(r.H, r.L) }

// SetAF sets A and F, the low nibble of F always reads as zero.
func (r *Registers) SetAF(v uint16) {
	r.A = bit.High(v)
	r.F = bit.Low(v) & allFlags
}

func (r *Registers) SetBC(v uint16) { r.B, r.C = bit.High(v), bit.Low(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = bit.High(v), bit.Low(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = bit.High(v), bit.Low(v) }

func (r *Registers) isSet(f Flag) bool {
	return r.F&f != 0
}

func (r *Registers) setFlag(f Flag, on bool) {
	if on {
		r.F |= f
	} else {
		r.F &^= f
	}
}

// flagValue returns 1 when the flag is set, used by carry chained ops.
func (r *Registers) flagValue(f Flag) int {
	if r.isSet(f) {
		return 1
	}
	return 0
}

// IE returns the interrupt enable mask.
func (r *Registers) IE() uint8 { return r.ie }

// SetIE stores the interrupt enable mask.
func (r *Registers) SetIE(v uint8) { r.ie = v }

// IF returns the interrupt request mask. Bits 5-7 always read as 1.
func (r *Registers) IF() uint8 { return r.ifr | idleRequestPattern }

// SetIF stores the request bits for the five sources.
func (r *Registers) SetIF(v uint8) { r.ifr = v & 0x1F }

// RequestInterrupt raises the request bit for the given source.
func (r *Registers) RequestInterrupt(i addr.Interrupt) {
	r.ifr |= uint8(i)
}

// IME reports whether the interrupt master enable is set.
func (r *Registers) IME() bool { return r.ime }

// RegisterState is a copy of the register file used by snapshots.
type RegisterState struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16
	IE, IF                 uint8
	IME, IMEJustSet        bool
}

func (r *Registers) Snapshot() RegisterState {
	return RegisterState{
		A: r.A, F: r.F, B: r.B, C: r.C, D: r.D, E: r.E, H: r.H, L: r.L,
		SP: r.SP, PC: r.PC,
		IE: r.ie, IF: r.ifr,
		IME: r.ime, IMEJustSet: r.imeJustSet,
	}
}

func (r *Registers) Restore(s RegisterState) {
	r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L = s.A, s.F&allFlags, s.B, s.C, s.D, s.E, s.H, s.L
	r.SP, r.PC = s.SP, s.PC
	r.ie = s.IE
	r.ifr = s.IF & 0x1F
	r.ime, r.imeJustSet = s.IME, s.IMEJustSet
}
