package cpu

import "github.com/valerio/jeebie-core/jeebie/addr"

// interruptDispatchCycles is added to the step that redirects to a vector.
// 20 is the hardware cost of the push and jump, not the shorter 12 some
// emulators charge.
const interruptDispatchCycles = 20

// serviceInterrupts runs once per step, after the instruction. Sources are
// scanned in priority order and the first one that is both requested and
// enabled wakes a halted core; it is dispatched only if IME is set and was
// not set by the instruction that just ran. Returns the extra cycles spent.
func (c *CPU) serviceInterrupts() int {
	r := c.reg
	requested := r.IF()
	if r.ie&requested&0x1F == 0 || requested == idleRequestPattern {
		return 0
	}

	for _, irq := range addr.Interrupts {
		if r.ie&requested&uint8(irq) == 0 {
			continue
		}

		c.halted = false
		if !r.ime || r.imeJustSet {
			return 0
		}

		r.ifr &^= uint8(irq)
		r.ime = false
		c.push(r.PC)
		r.PC = irq.Vector()
		return interruptDispatchCycles
	}
	return 0
}
