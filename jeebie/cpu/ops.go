package cpu

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/bit"
)

// operand indexes used by the register-encoded opcode blocks
const (
	regB uint8 = iota
	regC
	regD
	regE
	regH
	regL
	regHLInd
	regA
)

var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

const (
	pairBC uint8 = iota
	pairDE
	pairHL
	pairSP
)

var (
	baseTable     [256]*Operation
	extendedTable [256]*Operation
)

func op(mnemonic string, length uint8, cycles int, exec func(c *CPU, in *Instruction)) *Operation {
	return &Operation{Mnemonic: mnemonic, Length: length, Cycles: cycles, CyclesAlt: cycles, exec: exec}
}

func condOp(mnemonic string, length uint8, cycles, alt int, cond func(c *CPU) bool, exec func(c *CPU, in *Instruction)) *Operation {
	return &Operation{Mnemonic: mnemonic, Length: length, Cycles: cycles, CyclesAlt: alt, cond: cond, exec: exec}
}

func init() {
	baseTable = [256]*Operation{
		0x00: op("NOP", 0, 4, func(*CPU, *Instruction) {}),
		0x01: op("LD BC,d16", 2, 12, ldPairImm(pairBC)),
		0x02: op("LD (BC),A", 0, 8, func(c *CPU, _ *Instruction) { c.bus.Write(c.reg.BC(), c.reg.A) }),
		0x03: op("INC BC", 0, 8, incPair(pairBC)),
		0x07: op("RLCA", 0, 4, func(c *CPU, _ *Instruction) { c.reg.A = c.alu.rlc(c.reg.A, false) }),
		0x08: op("LD (a16),SP", 2, 20, func(c *CPU, in *Instruction) {
			c.bus.Write(in.u16(), bit.Low(c.reg.SP))
			c.bus.Write(in.u16()+1, bit.High(c.reg.SP))
		}),
		0x09: op("ADD HL,BC", 0, 8, addHL(pairBC)),
		0x0A: op("LD A,(BC)", 0, 8, func(c *CPU, _ *Instruction) { c.reg.A = c.bus.Read(c.reg.BC()) }),
		0x0B: op("DEC BC", 0, 8, decPair(pairBC)),
		0x0F: op("RRCA", 0, 4, func(c *CPU, _ *Instruction) { c.reg.A = c.alu.rrc(c.reg.A, false) }),

		0x10: op("STOP", 1, 4, func(*CPU, *Instruction) {}),
		0x11: op("LD DE,d16", 2, 12, ldPairImm(pairDE)),
		0x12: op("LD (DE),A", 0, 8, func(c *CPU, _ *Instruction) { c.bus.Write(c.reg.DE(), c.reg.A) }),
		0x13: op("INC DE", 0, 8, incPair(pairDE)),
		0x17: op("RLA", 0, 4, func(c *CPU, _ *Instruction) { c.reg.A = c.alu.rl(c.reg.A, false) }),
		0x18: op("JR r8", 1, 12, jr),
		0x19: op("ADD HL,DE", 0, 8, addHL(pairDE)),
		0x1A: op("LD A,(DE)", 0, 8, func(c *CPU, _ *Instruction) { c.reg.A = c.bus.Read(c.reg.DE()) }),
		0x1B: op("DEC DE", 0, 8, decPair(pairDE)),
		0x1F: op("RRA", 0, 4, func(c *CPU, _ *Instruction) { c.reg.A = c.alu.rr(c.reg.A, false) }),

		0x20: condOp("JR NZ,r8", 1, 12, 8, condNZ, jr),
		0x21: op("LD HL,d16", 2, 12, ldPairImm(pairHL)),
		0x22: op("LD (HL+),A", 0, 8, func(c *CPU, _ *Instruction) {
			c.bus.Write(c.reg.HL(), c.reg.A)
			c.reg.SetHL(c.reg.HL() + 1)
		}),
		0x23: op("INC HL", 0, 8, incPair(pairHL)),
		0x27: op("DAA", 0, 4, func(c *CPU, _ *Instruction) { c.alu.daa() }),
		0x28: condOp("JR Z,r8", 1, 12, 8, condZ, jr),
		0x29: op("ADD HL,HL", 0, 8, addHL(pairHL)),
		0x2A: op("LD A,(HL+)", 0, 8, func(c *CPU, _ *Instruction) {
			c.reg.A = c.bus.Read(c.reg.HL())
			c.reg.SetHL(c.reg.HL() + 1)
		}),
		0x2B: op("DEC HL", 0, 8, decPair(pairHL)),
		0x2F: op("CPL", 0, 4, func(c *CPU, _ *Instruction) { c.alu.cpl() }),

		0x30: condOp("JR NC,r8", 1, 12, 8, condNC, jr),
		0x31: op("LD SP,d16", 2, 12, ldPairImm(pairSP)),
		0x32: op("LD (HL-),A", 0, 8, func(c *CPU, _ *Instruction) {
			c.bus.Write(c.reg.HL(), c.reg.A)
			c.reg.SetHL(c.reg.HL() - 1)
		}),
		0x33: op("INC SP", 0, 8, incPair(pairSP)),
		0x37: op("SCF", 0, 4, func(c *CPU, _ *Instruction) { c.alu.scf() }),
		0x38: condOp("JR C,r8", 1, 12, 8, condC, jr),
		0x39: op("ADD HL,SP", 0, 8, addHL(pairSP)),
		0x3A: op("LD A,(HL-)", 0, 8, func(c *CPU, _ *Instruction) {
			c.reg.A = c.bus.Read(c.reg.HL())
			c.reg.SetHL(c.reg.HL() - 1)
		}),
		0x3B: op("DEC SP", 0, 8, decPair(pairSP)),
		0x3F: op("CCF", 0, 4, func(c *CPU, _ *Instruction) { c.alu.ccf() }),

		0x76: op("HALT", 0, 4, func(c *CPU, _ *Instruction) { c.halted = true }),

		0xC0: condOp("RET NZ", 0, 20, 8, condNZ, ret),
		0xC1: op("POP BC", 0, 12, func(c *CPU, _ *Instruction) { c.reg.SetBC(c.pop()) }),
		0xC2: condOp("JP NZ,a16", 2, 16, 12, condNZ, jp),
		0xC3: op("JP a16", 2, 16, jp),
		0xC4: condOp("CALL NZ,a16", 2, 24, 12, condNZ, call),
		0xC5: op("PUSH BC", 0, 16, func(c *CPU, _ *Instruction) { c.push(c.reg.BC()) }),
		0xC8: condOp("RET Z", 0, 20, 8, condZ, ret),
		0xC9: op("RET", 0, 16, ret),
		0xCA: condOp("JP Z,a16", 2, 16, 12, condZ, jp),
		0xCC: condOp("CALL Z,a16", 2, 24, 12, condZ, call),
		0xCD: op("CALL a16", 2, 24, call),

		0xD0: condOp("RET NC", 0, 20, 8, condNC, ret),
		0xD1: op("POP DE", 0, 12, func(c *CPU, _ *Instruction) { c.reg.SetDE(c.pop()) }),
		0xD2: condOp("JP NC,a16", 2, 16, 12, condNC, jp),
		0xD4: condOp("CALL NC,a16", 2, 24, 12, condNC, call),
		0xD5: op("PUSH DE", 0, 16, func(c *CPU, _ *Instruction) { c.push(c.reg.DE()) }),
		0xD8: condOp("RET C", 0, 20, 8, condC, ret),
		0xD9: op("RETI", 0, 16, func(c *CPU, in *Instruction) {
			ret(c, in)
			c.reg.ime = true
		}),
		0xDA: condOp("JP C,a16", 2, 16, 12, condC, jp),
		0xDC: condOp("CALL C,a16", 2, 24, 12, condC, call),

		0xE0: op("LDH (a8),A", 1, 12, func(c *CPU, in *Instruction) { c.bus.Write(0xFF00|uint16(in.u8()), c.reg.A) }),
		0xE1: op("POP HL", 0, 12, func(c *CPU, _ *Instruction) { c.reg.SetHL(c.pop()) }),
		0xE2: op("LD (C),A", 0, 8, func(c *CPU, _ *Instruction) { c.bus.Write(0xFF00|uint16(c.reg.C), c.reg.A) }),
		0xE5: op("PUSH HL", 0, 16, func(c *CPU, _ *Instruction) { c.push(c.reg.HL()) }),
		0xE8: op("ADD SP,r8", 1, 16, func(c *CPU, in *Instruction) { c.reg.SP = c.alu.addSigned(c.reg.SP, in.s8()) }),
		0xE9: op("JP (HL)", 0, 4, func(c *CPU, _ *Instruction) { c.reg.PC = c.reg.HL() }),
		0xEA: op("LD (a16),A", 2, 16, func(c *CPU, in *Instruction) { c.bus.Write(in.u16(), c.reg.A) }),

		0xF0: op("LDH A,(a8)", 1, 12, func(c *CPU, in *Instruction) { c.reg.A = c.bus.Read(0xFF00 | uint16(in.u8())) }),
		0xF1: op("POP AF", 0, 12, func(c *CPU, _ *Instruction) { c.reg.SetAF(c.pop()) }),
		0xF2: op("LD A,(C)", 0, 8, func(c *CPU, _ *Instruction) { c.reg.A = c.bus.Read(0xFF00 | uint16(c.reg.C)) }),
		0xF3: op("DI", 0, 4, func(c *CPU, _ *Instruction) { c.reg.ime = false }),
		0xF5: op("PUSH AF", 0, 16, func(c *CPU, _ *Instruction) { c.push(c.reg.AF()) }),
		0xF8: op("LD HL,SP+r8", 1, 12, func(c *CPU, in *Instruction) { c.reg.SetHL(c.alu.addSigned(c.reg.SP, in.s8())) }),
		0xF9: op("LD SP,HL", 0, 8, func(c *CPU, _ *Instruction) { c.reg.SP = c.reg.HL() }),
		0xFA: op("LD A,(a16)", 2, 16, func(c *CPU, in *Instruction) { c.reg.A = c.bus.Read(in.u16()) }),
		0xFB: op("EI", 0, 4, func(c *CPU, _ *Instruction) {
			c.reg.ime = true
			c.reg.imeJustSet = true
		}),
	}

	// INC r, DEC r and LD r,d8 live in columns 4, 5 and 6 of rows 0-3.
	for r := uint8(0); r < 8; r++ {
		cost := 4
		if r == regHLInd {
			cost = 12
		}
		baseTable[r<<3|0x04] = op("INC "+reg8Names[r], 0, cost, inc8(r))
		baseTable[r<<3|0x05] = op("DEC "+reg8Names[r], 0, cost, dec8(r))
		ldCost := 8
		if r == regHLInd {
			ldCost = 12
		}
		baseTable[r<<3|0x06] = op("LD "+reg8Names[r]+",d8", 1, ldCost, ld8Imm(r))
	}

	// LD r,r' block, 0x76 is HALT.
	for code := 0x40; code < 0x80; code++ {
		if code == 0x76 {
			continue
		}
		dst, src := uint8(code>>3)&7, uint8(code)&7
		cost := 4
		if dst == regHLInd || src == regHLInd {
			cost = 8
		}
		baseTable[code] = op(fmt.Sprintf("LD %s,%s", reg8Names[dst], reg8Names[src]), 0, cost, ld8(dst, src))
	}

	// ALU block on A, plus the immediate forms in column 6 of rows C-F.
	for kind := uint8(0); kind < 8; kind++ {
		for src := uint8(0); src < 8; src++ {
			cost := 4
			if src == regHLInd {
				cost = 8
			}
			baseTable[0x80|kind<<3|src] = op(aluNames[kind]+reg8Names[src], 0, cost, aluReg(kind, src))
		}
		baseTable[0xC6|kind<<3] = op(aluNames[kind]+"d8", 1, 8, aluImm(kind))
		vector := uint16(kind) << 3
		baseTable[0xC7|kind<<3] = op(fmt.Sprintf("RST %02XH", vector), 0, 16, rst(vector))
	}

	buildExtendedTable()
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func condNZ(c *CPU) bool { return !c.reg.isSet(zeroFlag) }
func condZ(c *CPU) bool  { return c.reg.isSet(zeroFlag) }
func condNC(c *CPU) bool { return !c.reg.isSet(carryFlag) }
func condC(c *CPU) bool  { return c.reg.isSet(carryFlag) }

func jr(c *CPU, in *Instruction) {
	c.reg.PC = uint16(int32(c.reg.PC) + int32(in.s8()))
}

func jp(c *CPU, in *Instruction) {
	c.reg.PC = in.u16()
}

func call(c *CPU, in *Instruction) {
	c.push(c.reg.PC)
	c.reg.PC = in.u16()
}

func ret(c *CPU, _ *Instruction) {
	c.reg.PC = c.pop()
}

func rst(vector uint16) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) {
		c.push(c.reg.PC)
		c.reg.PC = vector
	}
}

func ldPairImm(p uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, in *Instruction) { c.set16(p, in.u16()) }
}

func incPair(p uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.set16(p, c.get16(p)+1) }
}

func decPair(p uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.set16(p, c.get16(p)-1) }
}

func addHL(p uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.reg.SetHL(c.alu.add16(c.reg.HL(), c.get16(p))) }
}

func inc8(r uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.set8(r, c.alu.inc(c.get8(r))) }
}

func dec8(r uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.set8(r, c.alu.dec(c.get8(r))) }
}

func ld8Imm(r uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, in *Instruction) { c.set8(r, in.u8()) }
}

func ld8(dst, src uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.set8(dst, c.get8(src)) }
}

func aluReg(kind, src uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.accumulate(kind, c.get8(src)) }
}

func aluImm(kind uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, in *Instruction) { c.accumulate(kind, in.u8()) }
}

// accumulate applies one of the eight A-register ALU operations.
func (c *CPU) accumulate(kind, v uint8) {
	const all = zeroFlag | halfCarryFlag | carryFlag
	a := c.reg.A
	switch kind {
	case 0:
		c.reg.A = c.alu.add(a, v, false, all)
	case 1:
		c.reg.A = c.alu.add(a, v, true, all)
	case 2:
		c.reg.A = c.alu.sub(a, v, false, all)
	case 3:
		c.reg.A = c.alu.sub(a, v, true, all)
	case 4:
		c.reg.A = c.alu.and(a, v)
	case 5:
		c.reg.A = c.alu.xor(a, v)
	case 6:
		c.reg.A = c.alu.or(a, v)
	case 7:
		c.alu.cp(a, v)
	}
}
