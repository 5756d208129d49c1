package cpu

import "fmt"

var shiftNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

// buildExtendedTable fills the 0xCB prefixed table. The layout is fully
// regular: bits 7-6 pick the group, bits 5-3 the operation or bit index
// and bits 2-0 the operand register.
func buildExtendedTable() {
	for code := 0; code < 0x100; code++ {
		group, y, r := uint8(code>>6), uint8(code>>3)&7, uint8(code)&7
		target := reg8Names[r]

		switch group {
		case 0:
			cost := 8
			if r == regHLInd {
				cost = 16
			}
			extendedTable[code] = op(shiftNames[y]+" "+target, 0, cost, shiftOp(y, r))
		case 1:
			cost := 8
			if r == regHLInd {
				cost = 12
			}
			extendedTable[code] = op(fmt.Sprintf("BIT %d,%s", y, target), 0, cost, bitOp(y, r))
		case 2, 3:
			cost := 8
			if r == regHLInd {
				cost = 16
			}
			name := "RES"
			if group == 3 {
				name = "SET"
			}
			extendedTable[code] = op(fmt.Sprintf("%s %d,%s", name, y, target), 0, cost, resSetOp(y, r, group == 3))
		}
	}
}

func shiftOp(kind, r uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) {
		v := c.get8(r)
		switch kind {
		case 0:
			v = c.alu.rlc(v, true)
		case 1:
			v = c.alu.rrc(v, true)
		case 2:
			v = c.alu.rl(v, true)
		case 3:
			v = c.alu.rr(v, true)
		case 4:
			v = c.alu.sla(v)
		case 5:
			v = c.alu.sra(v)
		case 6:
			v = c.alu.swap(v)
		case 7:
			v = c.alu.srl(v)
		}
		c.set8(r, v)
	}
}

func bitOp(n, r uint8) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) { c.alu.bit(n, c.get8(r)) }
}

func resSetOp(n, r uint8, set bool) func(c *CPU, in *Instruction) {
	return func(c *CPU, _ *Instruction) {
		v := c.get8(r)
		if set {
			v |= 1 << n
		} else {
			v &^= 1 << n
		}
		c.set8(r, v)
	}
}
