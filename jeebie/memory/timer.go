package memory

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
)

// divPeriod is the number of cycles per DIV increment (16384 Hz).
const divPeriod = 256

// timaPeriods maps the TAC rate field to cycles per TIMA increment.
var timaPeriods = [4]int{1024, 16, 64, 256}

// Interrupter raises interrupt requests.
type Interrupter interface {
	RequestInterrupt(i addr.Interrupt)
}

// Timer implements DIV and TIMA/TMA/TAC. Each counter has its own cycle
// accumulator so overshoot carries into the next tick.
type Timer struct {
	div  uint8
	tima uint8
	tma  uint8
	tac  uint8

	divClock   int
	timerClock int

	irq Interrupter
}

// NewTimer returns a timer in its post boot state.
func NewTimer(irq Interrupter) *Timer {
	t := &Timer{irq: irq}
	t.Reset()
	return t
}

func (t *Timer) Reset() {
	t.div = 0x1E
	t.tima = 0
	t.tma = 0
	t.tac = 0
	t.divClock = 0
	t.timerClock = 0
}

func (t *Timer) enabled() bool {
	return t.tac&0x04 != 0
}

// Tick advances both counters by the given cycles. TIMA overflow reloads
// from TMA and requests the timer interrupt in the same tick.
func (t *Timer) Tick(cycles int) {
	t.divClock += cycles
	for t.divClock >= divPeriod {
		t.divClock -= divPeriod
		t.div++
	}

	if !t.enabled() {
		return
	}

	period := timaPeriods[t.tac&0x03]
	t.timerClock += cycles
	for t.timerClock >= period {
		t.timerClock -= period
		if t.tima == 0xFF {
			t.tima = t.tma
			t.irq.RequestInterrupt(addr.TimerInterrupt)
		} else {
			t.tima++
		}
	}
}

func (t *Timer) Read(address uint16) byte {
	switch address {
	case addr.DIV:
		return t.div
	case addr.TIMA:
		return t.tima
	case addr.TMA:
		return t.tma
	case addr.TAC:
		return t.tac | 0xF8
	}
	return 0
}

// Write stores a timer register. Any write to DIV clears it and both
// accumulators.
func (t *Timer) Write(address uint16, value byte) {
	switch address {
	case addr.DIV:
		t.div = 0
		t.divClock = 0
		t.timerClock = 0
	case addr.TIMA:
		t.tima = value
	case addr.TMA:
		t.tma = value
	case addr.TAC:
		t.tac = value & 0x07
	}
}

// TimerState is the timer's part of a snapshot.
type TimerState struct {
	DIV, TIMA, TMA, TAC  uint8
	DivClock, TimerClock int
}

func (t *Timer) Snapshot() TimerState {
	return TimerState{
		DIV: t.div, TIMA: t.tima, TMA: t.tma, TAC: t.tac,
		DivClock: t.divClock, TimerClock: t.timerClock,
	}
}

func (t *Timer) Restore(s TimerState) {
	t.div, t.tima, t.tma, t.tac = s.DIV, s.TIMA, s.TMA, s.TAC&0x07
	t.divClock, t.timerClock = s.DivClock, s.TimerClock
}
