package cpu

import (
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// haltCycles is the cost of a step taken while halted.
const haltCycles = 4

// Bus is the memory the CPU fetches from and executes against.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU executes one instruction per Step against the bus, servicing at most
// one interrupt afterwards.
type CPU struct {
	reg *Registers
	alu alu
	bus Bus

	halted bool
	cycles uint64

	// fault holds the decode error that stopped the core, if any.
	fault error
	trace func(Instruction)
}

// Option configures a CPU.
type Option func(*CPU)

// WithTrace installs a hook that sees every decoded instruction before it runs.
func WithTrace(fn func(Instruction)) Option {
	return func(c *CPU) { c.trace = fn }
}

// New creates a CPU using the given register file. The bus holds a
// reference to the same registers for IE/IF access.
func New(bus Bus, regs *Registers, opts ...Option) *CPU {
	c := &CPU{
		reg: regs,
		alu: alu{r: regs},
		bus: bus,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Step runs a single instruction (or a halted idle step) followed by
// interrupt servicing, and returns the total cycles consumed including
// interrupt dispatch. After a decode error the core stays stopped and
// every further Step returns the same error.
func (c *CPU) Step() (int, error) {
	if c.fault != nil {
		return 0, c.fault
	}

	c.reg.imeJustSet = false

	cycles := haltCycles
	if !c.halted {
		in, err := Decode(c.bus, c.reg.PC)
		if err != nil {
			c.fault = err
			return 0, err
		}
		c.reg.PC += in.Size()

		if c.trace != nil {
			c.trace(in)
		}
		cycles = c.execute(&in)
	}

	cycles += c.serviceInterrupts()
	c.cycles += uint64(cycles)
	return cycles, nil
}

func (c *CPU) execute(in *Instruction) int {
	if in.cond != nil && !in.cond(c) {
		return in.CyclesAlt
	}
	in.exec(c, in)
	return in.Cycles
}

// Halted reports whether the core is waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.halted
}

// Cycles returns the total cycles executed since creation.
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Fault returns the decode error that stopped the core, or nil.
func (c *CPU) Fault() error {
	return c.fault
}

// Registers exposes the register file, only safe between steps.
func (c *CPU) Registers() *Registers {
	return c.reg
}

func (c *CPU) push(v uint16) {
	c.reg.SP--
	c.bus.Write(c.reg.SP, bit.High(v))
	c.reg.SP--
	c.bus.Write(c.reg.SP, bit.Low(v))
}

func (c *CPU) pop() uint16 {
	low := c.bus.Read(c.reg.SP)
	c.reg.SP++
	high := c.bus.Read(c.reg.SP)
	c.reg.SP++
	return bit.Combine(high, low)
}

func (c *CPU) get8(r uint8) uint8 {
	switch r {
	case regB:
		return c.reg.B
	case regC:
		return c.reg.C
	case regD:
		return c.reg.D
	case regE:
		return c.reg.E
	case regH:
		return c.reg.H
	case regL:
		return c.reg.L
	case regHLInd:
		return c.bus.Read(c.reg.HL())
	default:
		return c.reg.A
	}
}

func (c *CPU) set8(r, v uint8) {
	switch r {
	case regB:
		c.reg.B = v
	case regC:
		c.reg.C = v
	case regD:
		c.reg.D = v
	case regE:
		c.reg.E = v
	case regH:
		c.reg.H = v
	case regL:
		c.reg.L = v
	case regHLInd:
		c.bus.Write(c.reg.HL(), v)
	default:
		c.reg.A = v
	}
}

func (c *CPU) get16(p uint8) uint16 {
	switch p {
	case pairBC:
		return c.reg.BC()
	case pairDE:
		return c.reg.DE()
	case pairHL:
		return c.reg.HL()
	default:
		return c.reg.SP
	}
}

func (c *CPU) set16(p uint8, v uint16) {
	switch p {
	case pairBC:
		c.reg.SetBC(v)
	case pairDE:
		c.reg.SetDE(v)
	case pairHL:
		c.reg.SetHL(v)
	default:
		c.reg.SP = v
	}
}

// State is the CPU's share of a machine snapshot.
type State struct {
	Registers RegisterState
	Halted    bool
	Cycles    uint64
}

func (c *CPU) Snapshot() State {
	return State{Registers: c.reg.Snapshot(), Halted: c.halted, Cycles: c.cycles}
}

// Restore loads a snapshot and clears any decode fault.
func (c *CPU) Restore(s State) {
	c.reg.Restore(s.Registers)
	c.halted = s.Halted
	c.cycles = s.Cycles
	c.fault = nil
}
