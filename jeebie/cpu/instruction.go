package cpu

import (
	"fmt"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/bit"
)

// extendedPrefix selects the second operation table.
const extendedPrefix = 0xCB

// Operation describes one opcode: its mnemonic, how many operand bytes
// follow it, and its cost in cycles. CyclesAlt is the cost of a
// conditional operation whose condition did not hold.
type Operation struct {
	Mnemonic  string
	Length    uint8
	Cycles    int
	CyclesAlt int

	cond func(c *CPU) bool
	exec func(c *CPU, in *Instruction)
}

// Conditional reports whether the operation has a not-taken cost.
func (op *Operation) Conditional() bool {
	return op.cond != nil
}

// Instruction is a decoded operation with its operand bytes and the
// address it was fetched from.
type Instruction struct {
	*Operation
	Opcode   uint8
	Extended bool
	Operands [2]uint8
	Offset   uint16
}

// Size is the total number of bytes the instruction occupies.
func (in *Instruction) Size() uint16 {
	size := 1 + uint16(in.Length)
	if in.Extended {
		size++
	}
	return size
}

func (in *Instruction) u8() uint8 {
	return in.Operands[0]
}

func (in *Instruction) s8() int8 {
	return int8(in.Operands[0])
}

func (in *Instruction) u16() uint16 {
	return bit.Combine(in.Operands[1], in.Operands[0])
}

// Reader is the read side of the bus, enough to decode instructions.
type Reader interface {
	Read(address uint16) byte
}

// DecodeError is returned when a fetched opcode has no table entry.
type DecodeError struct {
	Opcode   uint8
	Extended bool
	Offset   uint16
}

func (e *DecodeError) Error() string {
	if e.Extended {
		return fmt.Sprintf("cpu: undefined opcode 0xCB 0x%02X at 0x%04X", e.Opcode, e.Offset)
	}
	return fmt.Sprintf("cpu: undefined opcode 0x%02X at 0x%04X", e.Opcode, e.Offset)
}

// Decode reads the instruction at pc without executing it.
func Decode(bus Reader, pc uint16) (Instruction, error) {
	in := Instruction{Offset: pc}
	in.Opcode = bus.Read(pc)
	pc++

	table := &baseTable
	if in.Opcode == extendedPrefix {
		table = &extendedTable
		in.Extended = true
		in.Opcode = bus.Read(pc)
		pc++
	}

	op := table[in.Opcode]
	if op == nil {
		return Instruction{}, &DecodeError{Opcode: in.Opcode, Extended: in.Extended, Offset: in.Offset}
	}
	in.Operation = op

	for i := uint16(0); i < uint16(op.Length); i++ {
		in.Operands[i] = bus.Read(pc + i)
	}
	return in, nil
}

// Lookup returns the table entry for an opcode, nil if it is undefined.
func Lookup(opcode uint8, extended bool) *Operation {
	if extended {
		return extendedTable[opcode]
	}
	return baseTable[opcode]
}

// String renders the mnemonic with operand bytes substituted in.
func (in Instruction) String() string {
	if in.Operation == nil {
		return "???"
	}
	if in.Length == 0 {
		return in.Mnemonic
	}
	word := fmt.Sprintf("$%04X", in.u16())
	b := fmt.Sprintf("$%02X", in.u8())
	r := strings.NewReplacer(
		"d16", word,
		"a16", word,
		"d8", b,
		"a8", b,
		"r8", fmt.Sprintf("%d", in.s8()),
	)
	return r.Replace(in.Mnemonic)
}
