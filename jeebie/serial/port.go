package serial

import (
	"io"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// transferCycles is the length of one byte on the internal 8192Hz clock.
const transferCycles = 4096

// Interrupter receives the serial interrupt.
type Interrupter interface {
	RequestInterrupt(addr.Interrupt)
}

// Port is a serial link with nothing plugged in. Outgoing bytes are logged a
// line at a time and copied to an optional writer, which is how test ROMs
// report results. Incoming bytes always read 0xFF.
type Port struct {
	irq    Interrupter
	out    io.Writer
	logger *slog.Logger

	sb, sc    byte
	active    bool
	countdown int
	immediate bool

	line []byte
}

type Option func(*Port)

// WithFixedTiming completes transfers after 4096 cycles instead of at once.
func WithFixedTiming() Option { return func(p *Port) { p.immediate = false } }

// WithOutput copies every transmitted byte to w.
func WithOutput(w io.Writer) Option { return func(p *Port) { p.out = w } }

func WithLogger(l *slog.Logger) Option { return func(p *Port) { p.logger = l } }

func New(irq Interrupter, opts ...Option) *Port {
	p := &Port{
		irq:       irq,
		immediate: true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

func (p *Port) Reset() {
	p.sb = 0x00
	p.sc = 0x7E
	p.active = false
	p.countdown = 0
	p.line = p.line[:0]
}

func (p *Port) Read(address uint16) byte {
	switch address {
	case addr.SB:
		return p.sb
	case addr.SC:
		return p.sc | 0x7E
	}
	return 0xFF
}

func (p *Port) Write(address uint16, value byte) {
	switch address {
	case addr.SB:
		p.sb = value
	case addr.SC:
		p.sc = value
		p.maybeStart()
	}
}

// Tick counts down an in-flight transfer.
func (p *Port) Tick(cycles int) {
	if !p.active {
		return
	}
	p.countdown -= cycles
	if p.countdown <= 0 {
		p.complete()
	}
}

// maybeStart begins a transfer when SC has both the start and internal clock bits.
func (p *Port) maybeStart() {
	if p.active || !bit.IsSet(7, p.sc) || !bit.IsSet(0, p.sc) {
		return
	}

	b := p.sb
	if p.out != nil {
		if _, err := p.out.Write([]byte{b}); err != nil {
			p.logger.Warn("serial output failed", "error", err)
		}
	}
	if b == 0 || b == '\n' || b == '\r' {
		p.flush()
	} else {
		p.line = append(p.line, b)
	}

	if p.immediate {
		p.complete()
		return
	}
	p.active = true
	p.countdown = transferCycles
}

func (p *Port) flush() {
	if len(p.line) > 0 {
		p.logger.Info("serial", "line", string(p.line))
		p.line = p.line[:0]
	}
}

func (p *Port) complete() {
	p.sb = 0xFF
	p.sc = bit.Clear(7, p.sc)
	p.active = false
	p.countdown = 0
	if p.irq != nil {
		p.irq.RequestInterrupt(addr.SerialInterrupt)
	}
}

// State is the port's part of a snapshot.
type State struct {
	SB, SC    byte
	Active    bool
	Countdown int
}

func (p *Port) Snapshot() State {
	return State{SB: p.sb, SC: p.sc, Active: p.active, Countdown: p.countdown}
}

func (p *Port) Restore(s State) {
	p.sb, p.sc, p.active, p.countdown = s.SB, s.SC, s.Active, s.Countdown
}
