package cpu

// alu evaluates arithmetic and bitwise operations. Results are returned
// truncated; flags are written into the register file, and only the
// flags listed in the affected mask change unless an operation defines
// a fixed value for a flag.
type alu struct {
	r *Registers
}

// apply writes computed into F for the bits in affected.
func (a alu) apply(computed, affected Flag) {
	a.r.F = (a.r.F &^ affected) | (computed & affected)
}

// perform derives Z, H and C for an 8 bit operation from the operands
// and the untruncated intermediate result.
func (a alu) perform(x, y, raw int, affected Flag) uint8 {
	carryBits := x ^ y ^ raw
	var f Flag
	if raw&0xFF == 0 {
		f |= zeroFlag
	}
	if carryBits&0x10 != 0 {
		f |= halfCarryFlag
	}
	if carryBits&0x100 != 0 {
		f |= carryFlag
	}
	a.apply(f, affected)
	return uint8(raw)
}

// perform16 is perform for 16 bit operands, carries come out of bits 11 and 15.
func (a alu) perform16(x, y, raw int, affected Flag) uint16 {
	carryBits := x ^ y ^ raw
	var f Flag
	if raw&0xFFFF == 0 {
		f |= zeroFlag
	}
	if carryBits&0x1000 != 0 {
		f |= halfCarryFlag
	}
	if carryBits&0x10000 != 0 {
		f |= carryFlag
	}
	a.apply(f, affected)
	return uint16(raw)
}

func (a alu) add(x, y uint8, withCarry bool, affected Flag) uint8 {
	raw := int(x) + int(y)
	if withCarry {
		raw += a.r.flagValue(carryFlag)
	}
	a.r.setFlag(subFlag, false)
	return a.perform(int(x), int(y), raw, affected)
}

func (a alu) sub(x, y uint8, withCarry bool, affected Flag) uint8 {
	raw := int(x) - int(y)
	if withCarry {
		raw -= a.r.flagValue(carryFlag)
	}
	a.r.setFlag(subFlag, true)
	return a.perform(int(x), int(y), raw, affected)
}

func (a alu) inc(x uint8) uint8 {
	return a.add(x, 1, false, zeroFlag|halfCarryFlag)
}

func (a alu) dec(x uint8) uint8 {
	return a.sub(x, 1, false, zeroFlag|halfCarryFlag)
}

// cp compares by subtracting and discarding the result.
func (a alu) cp(x, y uint8) {
	a.sub(x, y, false, zeroFlag|halfCarryFlag|carryFlag)
}

func (a alu) and(x, y uint8) uint8 {
	v := x & y
	a.r.F = halfCarryFlag
	a.r.setFlag(zeroFlag, v == 0)
	return v
}

func (a alu) or(x, y uint8) uint8 {
	v := x | y
	a.r.F = 0
	a.r.setFlag(zeroFlag, v == 0)
	return v
}

func (a alu) xor(x, y uint8) uint8 {
	v := x ^ y
	a.r.F = 0
	a.r.setFlag(zeroFlag, v == 0)
	return v
}

// add16 is used by ADD HL,rr. Z is left alone.
func (a alu) add16(x, y uint16) uint16 {
	a.r.setFlag(subFlag, false)
	return a.perform16(int(x), int(y), int(x)+int(y), halfCarryFlag|carryFlag)
}

// addSigned adds a signed offset to SP style values. H and C come from the
// low byte, Z and N are cleared.
func (a alu) addSigned(x uint16, e int8) uint16 {
	y := int(uint16(int16(e)))
	raw := int(x) + y
	a.perform(int(x), y, raw, halfCarryFlag|carryFlag)
	a.r.setFlag(zeroFlag, false)
	a.r.setFlag(subFlag, false)
	return uint16(raw)
}

// shiftResult sets flags for the rotate/shift family. The accumulator
// forms (RLCA etc) always clear Z.
func (a alu) shiftResult(v uint8, carry, zeroAffected bool) uint8 {
	a.r.F = 0
	a.r.setFlag(carryFlag, carry)
	a.r.setFlag(zeroFlag, zeroAffected && v == 0)
	return v
}

func (a alu) rlc(x uint8, zeroAffected bool) uint8 {
	return a.shiftResult(x<<1|x>>7, x&0x80 != 0, zeroAffected)
}

func (a alu) rl(x uint8, zeroAffected bool) uint8 {
	return a.shiftResult(x<<1|uint8(a.r.flagValue(carryFlag)), x&0x80 != 0, zeroAffected)
}

func (a alu) rrc(x uint8, zeroAffected bool) uint8 {
	return a.shiftResult(x>>1|x<<7, x&0x01 != 0, zeroAffected)
}

func (a alu) rr(x uint8, zeroAffected bool) uint8 {
	return a.shiftResult(x>>1|uint8(a.r.flagValue(carryFlag))<<7, x&0x01 != 0, zeroAffected)
}

func (a alu) sla(x uint8) uint8 {
	return a.shiftResult(x<<1, x&0x80 != 0, true)
}

func (a alu) sra(x uint8) uint8 {
	return a.shiftResult(x>>1|x&0x80, x&0x01 != 0, true)
}

func (a alu) srl(x uint8) uint8 {
	return a.shiftResult(x>>1, x&0x01 != 0, true)
}

func (a alu) swap(x uint8) uint8 {
	return a.shiftResult(x<<4|x>>4, false, true)
}

// bit tests bit n of x: Z is set when the bit is clear, C is preserved.
func (a alu) bit(n, x uint8) {
	a.r.setFlag(zeroFlag, x&(1<<n) == 0)
	a.r.setFlag(subFlag, false)
	a.r.setFlag(halfCarryFlag, true)
}

// daa adjusts A to packed BCD after an addition or subtraction.
func (a alu) daa() {
	v := a.r.A
	var correction uint8
	carry := false
	subtract := a.r.isSet(subFlag)

	if a.r.isSet(halfCarryFlag) || (!subtract && v&0x0F > 0x09) {
		correction |= 0x06
	}
	if a.r.isSet(carryFlag) || (!subtract && v > 0x99) {
		correction |= 0x60
		carry = true
	}

	if subtract {
		v -= correction
	} else {
		v += correction
	}

	a.r.A = v
	a.r.setFlag(halfCarryFlag, false)
	a.r.setFlag(carryFlag, carry)
	a.r.setFlag(zeroFlag, v == 0)
}

func (a alu) cpl() {
	a.r.A = ^a.r.A
	a.r.setFlag(subFlag, true)
	a.r.setFlag(halfCarryFlag, true)
}

func (a alu) scf() {
	a.r.setFlag(subFlag, false)
	a.r.setFlag(halfCarryFlag, false)
	a.r.setFlag(carryFlag, true)
}

func (a alu) ccf() {
	a.r.setFlag(subFlag, false)
	a.r.setFlag(halfCarryFlag, false)
	a.r.setFlag(carryFlag, !a.r.isSet(carryFlag))
}
