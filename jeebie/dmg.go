package jeebie

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/valerio/jeebie-core/jeebie/audio"
	"github.com/valerio/jeebie-core/jeebie/cpu"
	"github.com/valerio/jeebie-core/jeebie/disasm"
	"github.com/valerio/jeebie-core/jeebie/memory"
	"github.com/valerio/jeebie-core/jeebie/serial"
	"github.com/valerio/jeebie-core/jeebie/timing"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// ErrStopped is returned by RunUntilFrame when a stop was requested, either
// through Stop or by cancelling the context.
var ErrStopped = errors.New("jeebie: stopped")

// CycleConsumer is a component that advances by the cycle cost of each step.
type CycleConsumer interface {
	Tick(cycles int)
}

// Config controls how a machine is assembled.
type Config struct {
	// ForceColor runs the machine in color mode regardless of the header.
	ForceColor bool
	// Clock is the time source for cartridge real time clocks.
	Clock memory.Clock
	// SerialOutput receives every byte sent over the link port.
	SerialOutput io.Writer
	// Trace logs every executed instruction at debug level.
	Trace  bool
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// DMG is the complete machine. All of its state is owned by the goroutine
// calling Step or RunUntilFrame; the other methods are only safe between
// steps.
type DMG struct {
	color bool

	regs   *cpu.Registers
	cpu    *cpu.CPU
	mmu    *memory.MMU
	gpu    *video.GPU
	timer  *memory.Timer
	joypad *memory.Joypad
	serial *serial.Port
	apu    *audio.APU

	// consumers run in order after every step with the same cycle count.
	consumers []CycleConsumer

	limiter timing.Limiter
	logger  *slog.Logger

	stop   atomic.Bool
	paused bool
	// pending holds a frame or instruction step requested while paused.
	pending pendingStep
}

type pendingStep uint8

const (
	noPendingStep pendingStep = iota
	pendingFrame
	pendingInstruction
)

// New assembles a machine around cart. A nil cartridge runs an empty ROM.
func New(cart *memory.Cartridge, cfg Config) *DMG {
	if cart == nil {
		cart = memory.NewEmptyCartridge()
	}
	logger := cfg.logger()
	color := cfg.ForceColor || cart.Capabilities().Color

	d := &DMG{
		color:   color,
		limiter: timing.NewNoOpLimiter(),
		logger:  logger,
	}

	d.regs = cpu.NewRegisters(color)
	d.gpu = video.New(d.regs, color)
	d.timer = memory.NewTimer(d.regs)
	d.joypad = memory.NewJoypad(d.regs)
	d.apu = audio.New()

	serialOpts := []serial.Option{serial.WithLogger(logger)}
	if cfg.SerialOutput != nil {
		serialOpts = append(serialOpts, serial.WithOutput(cfg.SerialOutput))
	}
	d.serial = serial.New(d.regs, serialOpts...)

	d.mmu = memory.New(memory.Devices{
		Cartridge:  cart,
		GPU:        d.gpu,
		Timer:      d.timer,
		Joypad:     d.joypad,
		Serial:     d.serial,
		Audio:      d.apu,
		Interrupts: d.regs,
	}, color, memory.WithLogger(logger))

	var cpuOpts []cpu.Option
	if cfg.Trace {
		cpuOpts = append(cpuOpts, cpu.WithTrace(func(in cpu.Instruction) {
			logger.Debug("exec", "pc", fmt.Sprintf("0x%04X", in.Offset), "op", disasm.Format(in))
		}))
	}
	d.cpu = cpu.New(d.mmu, d.regs, cpuOpts...)

	// HDMA copies a block in the same step that entered HBlank.
	d.gpu.OnHBlank(d.mmu.DMA().HBlank)

	d.consumers = []CycleConsumer{d.timer, d.gpu, d.apu, d.serial}

	header := cart.Header()
	logger.Info("machine ready",
		"title", header.Title,
		"mbc", cart.Capabilities().MBC,
		"color", color)
	return d
}

// NewWithFile loads a ROM image from path and builds a machine for it.
func NewWithFile(path string, cfg Config) (*DMG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	opts := []memory.CartridgeOption{}
	if cfg.Clock != nil {
		opts = append(opts, memory.WithClock(cfg.Clock))
	}
	if cfg.ForceColor {
		opts = append(opts, memory.WithColorMode(true))
	}
	cart, err := memory.NewCartridge(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	cfg.logger().Info("loaded rom", "path", path, "bytes", len(data))
	return New(cart, cfg), nil
}

// AddConsumer appends c to the components advanced after every step. It
// runs after the built in peripherals.
func (d *DMG) AddConsumer(c CycleConsumer) {
	d.consumers = append(d.consumers, c)
}

// SetFrameLimiter sets the pacing applied after each frame. Nil disables
// pacing.
func (d *DMG) SetFrameLimiter(l timing.Limiter) {
	if l == nil {
		l = timing.NewNoOpLimiter()
	}
	d.limiter = l
}

// Step executes one instruction, services interrupts, then hands the total
// cycle cost to every consumer in order. A decode error stops the machine
// and is returned by every later call.
func (d *DMG) Step() (int, error) {
	cycles, err := d.cpu.Step()
	if err != nil {
		return 0, err
	}
	for _, c := range d.consumers {
		c.Tick(cycles)
	}
	return cycles, nil
}

// RunUntilFrame steps until the GPU completes a frame. With the display off
// it runs for one frame's worth of cycles instead. Stop requests and context
// cancellation are honoured between steps and reported as ErrStopped.
func (d *DMG) RunUntilFrame(ctx context.Context) error {
	if d.paused {
		switch d.pending {
		case pendingInstruction:
			d.pending = noPendingStep
			_, err := d.Step()
			return err
		case pendingFrame:
			d.pending = noPendingStep
		default:
			d.limiter.WaitForNextFrame()
			return nil
		}
	}

	start := d.gpu.FrameCount()
	budget := 0
	for d.gpu.FrameCount() == start && budget < video.FrameCycles {
		select {
		case <-ctx.Done():
			return ErrStopped
		default:
		}
		if d.stop.Load() {
			return ErrStopped
		}

		cycles, err := d.Step()
		if err != nil {
			return err
		}
		if !d.gpu.Enabled() {
			budget += cycles
		}
	}

	d.limiter.WaitForNextFrame()
	return nil
}

// Stop asks a running RunUntilFrame to return after the current step. It is
// safe to call from any goroutine.
func (d *DMG) Stop() {
	d.stop.Store(true)
}

// Stopped reports whether Stop has been called.
func (d *DMG) Stopped() bool {
	return d.stop.Load()
}

// Paused reports whether frame execution is suspended.
func (d *DMG) Paused() bool {
	return d.paused
}

// SetPaused suspends or resumes frame execution.
func (d *DMG) SetPaused(paused bool) {
	d.paused = paused
	d.pending = noPendingStep
	d.limiter.Reset()
}

// Frame returns the last completed frame.
func (d *DMG) Frame() *video.FrameBuffer {
	return d.gpu.Frame()
}

func (d *DMG) GetCurrentFrame() *video.FrameBuffer {
	return d.Frame()
}

// Color reports whether the machine runs in color mode.
func (d *DMG) Color() bool {
	return d.color
}

func (d *DMG) CPU() *cpu.CPU          { return d.cpu }
func (d *DMG) MMU() *memory.MMU       { return d.mmu }
func (d *DMG) GPU() *video.GPU        { return d.gpu }
func (d *DMG) APU() *audio.APU        { return d.apu }
func (d *DMG) Joypad() *memory.Joypad { return d.joypad }
func (d *DMG) Cartridge() *memory.Cartridge {
	return d.mmu.Cartridge()
}

// SaveRAM writes battery backed cartridge RAM to w.
func (d *DMG) SaveRAM(w io.Writer) error {
	return d.mmu.Cartridge().SaveRAM(w)
}

// LoadRAM fills cartridge RAM from r.
func (d *DMG) LoadRAM(r io.Reader) error {
	return d.mmu.Cartridge().LoadRAM(r)
}
