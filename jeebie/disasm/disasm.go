// Package disasm renders decoded instructions as text for traces and the
// debug views.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/cpu"
)

// Line is a single disassembled instruction.
type Line struct {
	Address     uint16
	Bytes       []byte
	Instruction string
	// Cycles is the cost, written taken/not-taken for conditional operations.
	Cycles string
	// Valid is false when the bytes did not decode; Instruction then holds
	// a data directive and the line covers one byte.
	Valid bool
}

// Length is the number of bytes the line covers.
func (l Line) Length() int {
	return len(l.Bytes)
}

func (l Line) String() string {
	hex := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("0x%04X: %-8s %s", l.Address, strings.Join(hex, " "), l.Instruction)
}

// Format renders a decoded instruction with its operands substituted.
func Format(in cpu.Instruction) string {
	return in.String()
}

// DisassembleAt decodes the instruction at pc.
func DisassembleAt(r cpu.Reader, pc uint16) Line {
	in, err := cpu.Decode(r, pc)
	if err != nil {
		b := r.Read(pc)
		return Line{
			Address:     pc,
			Bytes:       []byte{b},
			Instruction: fmt.Sprintf("DB $%02X", b),
		}
	}

	size := in.Size()
	raw := make([]byte, size)
	for i := range size {
		raw[i] = r.Read(pc + i)
	}
	return Line{
		Address:     pc,
		Bytes:       raw,
		Instruction: Format(in),
		Cycles:      timing(in),
		Valid:       true,
	}
}

func timing(in cpu.Instruction) string {
	if in.Conditional() {
		return fmt.Sprintf("%d/%d", in.Cycles, in.CyclesAlt)
	}
	return strconv.Itoa(in.Cycles)
}

// Range decodes up to count consecutive instructions starting at start. It
// stops early rather than wrap past the end of the address space.
func Range(r cpu.Reader, start uint16, count int) []Line {
	lines := make([]Line, 0, count)
	pc := uint32(start)
	for len(lines) < count && pc <= 0xFFFF {
		line := DisassembleAt(r, uint16(pc))
		lines = append(lines, line)
		pc += uint32(line.Length())
	}
	return lines
}

// sliceReader exposes a byte slice mapped at base. Reads outside it return 0.
type sliceReader struct {
	base uint16
	data []byte
}

func (s sliceReader) Read(address uint16) byte {
	offset := int(address) - int(s.base)
	if offset < 0 || offset >= len(s.data) {
		return 0
	}
	return s.data[offset]
}

// DisassembleBytes decodes the instruction at offset within data, treating
// data as mapped at base. It returns the text and the instruction length.
func DisassembleBytes(data []byte, base uint16, offset int) (string, int) {
	line := DisassembleAt(sliceReader{base: base, data: data}, base+uint16(offset))
	return line.Instruction, line.Length()
}
