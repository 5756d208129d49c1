package audio

import (
	"sync"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

const (
	ch1 = iota
	ch2
	ch3
	ch4
)

// APU is the sound unit: the FF10-FF3F register file, four generators, the
// frame sequencer and a stereo mixer. It is stepped from the machine loop
// and drained by the host through Samples.
type APU struct {
	power     bool
	registers [0x20]uint8
	waveRAM   [waveRAMSize]uint8
	channels  [4]Channel

	sequencerClock int
	sequencerStep  int
	sampleClock    int

	mu      sync.Mutex
	samples []int16
}

func New() *APU {
	a := &APU{samples: make([]int16, 0, 4096)}
	a.Reset()
	return a
}

// Reset powers the unit up with the post boot register values.
func (a *APU) Reset() {
	a.registers = [0x20]uint8{}
	a.channels = [4]Channel{}
	a.waveRAM = [waveRAMSize]uint8{}
	a.sequencerClock = 0
	a.sequencerStep = 0
	a.sampleClock = 0
	a.power = true

	a.channels[ch4].LFSR = 0x7FFF
	for _, w := range []struct {
		address uint16
		value   uint8
	}{
		{addr.NR10, 0x80}, {addr.NR11, 0xBF}, {addr.NR12, 0xF3}, {addr.NR14, 0x3F},
		{addr.NR21, 0x3F}, {addr.NR24, 0x3F},
		{addr.NR30, 0x7F}, {addr.NR31, 0xFF}, {addr.NR32, 0x9F}, {addr.NR34, 0x3F},
		{addr.NR41, 0xFF}, {addr.NR44, 0x3F},
		{addr.NR50, 0x77}, {addr.NR51, 0xF3},
	} {
		a.WriteRegister(w.address, w.value)
	}
	// the boot sound leaves channel 1 running
	a.channels[ch1].Enabled = true

	a.mu.Lock()
	a.samples = a.samples[:0]
	a.mu.Unlock()
}

func (a *APU) reg(address uint16) uint8 {
	return a.registers[address-addr.AudioStart]
}

// ReadRegister returns the register at address with its unreadable bits set.
func (a *APU) ReadRegister(address uint16) uint8 {
	switch {
	case address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd:
		return a.waveRAM[address-addr.WaveRAMStart]
	case address == addr.NR52:
		v := uint8(0x70)
		if a.power {
			v |= 0x80
		}
		for i := range a.channels {
			if a.channels[i].Enabled {
				v |= 1 << i
			}
		}
		return v
	case address >= addr.AudioStart && address < addr.WaveRAMStart:
		i := address - addr.AudioStart
		return a.registers[i] | readMasks[i]
	}
	return 0xFF
}

// WriteRegister stores a register and applies its side effects. While the
// unit is powered off only NR52 and wave RAM accept writes.
func (a *APU) WriteRegister(address uint16, value uint8) {
	switch {
	case address >= addr.WaveRAMStart && address <= addr.WaveRAMEnd:
		a.waveRAM[address-addr.WaveRAMStart] = value
		return
	case address == addr.NR52:
		a.setPower(bit.IsSet(7, value))
		return
	case address < addr.AudioStart || address >= addr.WaveRAMStart:
		return
	case !a.power:
		return
	}

	a.registers[address-addr.AudioStart] = value

	switch address {
	case addr.NR11:
		a.channels[ch1].Duty = value >> 6
		a.channels[ch1].Length = 64 - uint16(value&0x3F)
	case addr.NR12:
		a.channels[ch1].loadEnvelope(value)
	case addr.NR13:
		a.setFrequencyLow(ch1, value)
	case addr.NR14:
		a.writeControl(ch1, value)

	case addr.NR21:
		a.channels[ch2].Duty = value >> 6
		a.channels[ch2].Length = 64 - uint16(value&0x3F)
	case addr.NR22:
		a.channels[ch2].loadEnvelope(value)
	case addr.NR23:
		a.setFrequencyLow(ch2, value)
	case addr.NR24:
		a.writeControl(ch2, value)

	case addr.NR30:
		a.channels[ch3].DAC = bit.IsSet(7, value)
		if !a.channels[ch3].DAC {
			a.channels[ch3].Enabled = false
		}
	case addr.NR31:
		a.channels[ch3].Length = 256 - uint16(value)
	case addr.NR33:
		a.setFrequencyLow(ch3, value)
	case addr.NR34:
		a.writeControl(ch3, value)

	case addr.NR41:
		a.channels[ch4].Length = 64 - uint16(value&0x3F)
	case addr.NR42:
		a.channels[ch4].loadEnvelope(value)
	case addr.NR44:
		a.writeControl(ch4, value)
	}
}

func (a *APU) setPower(on bool) {
	if on == a.power {
		return
	}
	a.power = on
	if on {
		a.sequencerStep = 0
		return
	}
	a.registers = [0x20]uint8{}
	for i := range a.channels {
		lfsr, muted := a.channels[i].LFSR, a.channels[i].Muted
		a.channels[i] = Channel{LFSR: lfsr, Muted: muted}
	}
}

func (a *APU) setFrequencyLow(ch int, value uint8) {
	c := &a.channels[ch]
	c.Frequency = c.Frequency&0x700 | uint16(value)
}

// writeControl handles NRx4: frequency high bits, length enable and trigger.
func (a *APU) writeControl(ch int, value uint8) {
	c := &a.channels[ch]
	if ch != ch4 {
		c.Frequency = c.Frequency&0xFF | uint16(value&0x07)<<8
	}
	c.LengthOn = bit.IsSet(6, value)
	if bit.IsSet(7, value) {
		a.trigger(ch)
	}
}

func (a *APU) trigger(ch int) {
	c := &a.channels[ch]
	c.Enabled = c.DAC
	c.Timer = a.period(ch)

	maxLength := uint16(64)
	if ch == ch3 {
		maxLength = 256
	}
	if c.Length == 0 {
		c.Length = maxLength
	}

	switch ch {
	case ch1, ch2:
		c.loadEnvelope(a.reg(addr.NR12 + uint16(ch)*5))
		c.Enabled = c.DAC
	case ch3:
		c.Position = 0
	case ch4:
		c.loadEnvelope(a.reg(addr.NR42))
		c.Enabled = c.DAC
		c.LFSR = 0x7FFF
	}

	if ch == ch1 {
		nr10 := a.reg(addr.NR10)
		period := (nr10 >> 4) & 0x07
		shift := nr10 & 0x07
		c.Shadow = c.Frequency
		c.SweepTimer = sweepReload(period)
		c.SweepOn = period != 0 || shift != 0
		if shift != 0 && a.sweepTarget() > 2047 {
			c.Enabled = false
		}
	}
}

func sweepReload(period uint8) uint8 {
	if period == 0 {
		return 8
	}
	return period
}

func (a *APU) sweepTarget() uint16 {
	nr10 := a.reg(addr.NR10)
	c := &a.channels[ch1]
	delta := c.Shadow >> (nr10 & 0x07)
	if bit.IsSet(3, nr10) {
		return c.Shadow - delta
	}
	return c.Shadow + delta
}

// period is the frequency timer reload of a channel, in cycles.
func (a *APU) period(ch int) int {
	switch ch {
	case ch1, ch2:
		return int(2048-a.channels[ch].Frequency) * 4
	case ch3:
		return int(2048-a.channels[ch].Frequency) * 2
	}
	nr43 := a.reg(addr.NR43)
	return noiseDivisors[nr43&0x07] << (nr43 >> 4)
}

// Tick advances generators, the frame sequencer and the sample clock.
func (a *APU) Tick(cycles int) {
	if !a.power {
		a.emitSamples(cycles)
		return
	}

	for ch := range a.channels {
		c := &a.channels[ch]
		if !c.Enabled {
			continue
		}
		for range c.advance(cycles, a.period(ch)) {
			a.stepGenerator(ch)
		}
	}

	a.sequencerClock += cycles
	for a.sequencerClock >= cyclesPerStep {
		a.sequencerClock -= cyclesPerStep
		a.stepSequencer()
	}

	a.emitSamples(cycles)
}

func (a *APU) stepGenerator(ch int) {
	c := &a.channels[ch]
	switch ch {
	case ch1, ch2:
		c.Position = (c.Position + 1) & 0x07
	case ch3:
		c.Position = (c.Position + 1) & 0x1F
	case ch4:
		feedback := (c.LFSR ^ c.LFSR>>1) & 1
		c.LFSR = c.LFSR>>1 | feedback<<14
		if bit.IsSet(3, a.reg(addr.NR43)) {
			c.LFSR = c.LFSR&^0x40 | feedback<<6
		}
	}
}

// stepSequencer runs one of the 8 frame sequencer steps: length on even
// steps, sweep on 2 and 6, envelopes on 7.
func (a *APU) stepSequencer() {
	step := a.sequencerStep
	a.sequencerStep = (a.sequencerStep + 1) & 0x07

	if step%2 == 0 {
		for i := range a.channels {
			a.channels[i].clockLength()
		}
	}
	if step == 2 || step == 6 {
		a.clockSweep()
	}
	if step == 7 {
		a.channels[ch1].clockEnvelope()
		a.channels[ch2].clockEnvelope()
		a.channels[ch4].clockEnvelope()
	}
}

func (a *APU) clockSweep() {
	c := &a.channels[ch1]
	if c.SweepTimer > 0 {
		c.SweepTimer--
	}
	if c.SweepTimer > 0 {
		return
	}

	nr10 := a.reg(addr.NR10)
	period := (nr10 >> 4) & 0x07
	c.SweepTimer = sweepReload(period)
	if !c.SweepOn || period == 0 {
		return
	}

	target := a.sweepTarget()
	if target > 2047 {
		c.Enabled = false
		return
	}
	if nr10&0x07 != 0 {
		c.Shadow = target
		c.Frequency = target
		if a.sweepTarget() > 2047 {
			c.Enabled = false
		}
	}
}

// output is the digital level (0-15) of a channel right now.
func (a *APU) output(ch int) uint8 {
	c := &a.channels[ch]
	if !c.Enabled || c.Muted {
		return 0
	}
	switch ch {
	case ch1, ch2:
		if dutyPatterns[c.Duty]>>(7-c.Position)&1 == 1 {
			return c.Volume
		}
		return 0
	case ch3:
		sample := a.waveRAM[c.Position/2]
		if c.Position%2 == 0 {
			sample >>= 4
		}
		return (sample & 0x0F) >> waveShifts[(a.reg(addr.NR32)>>5)&0x03]
	}
	if c.LFSR&1 == 0 {
		return c.Volume
	}
	return 0
}

// mix returns one stereo frame, panned by NR51 and scaled by NR50.
func (a *APU) mix() (left, right int16) {
	if !a.power {
		return 0, 0
	}
	nr50, nr51 := a.reg(addr.NR50), a.reg(addr.NR51)

	var l, r int
	for ch := range a.channels {
		v := a.channels[ch].analog(a.output(ch))
		if bit.IsSet(uint8(ch+4), nr51) {
			l += v
		}
		if bit.IsSet(uint8(ch), nr51) {
			r += v
		}
	}
	l *= int((nr50>>4)&0x07) + 1
	r *= int(nr50&0x07) + 1
	return int16(l * 64), int16(r * 64)
}

func (a *APU) emitSamples(cycles int) {
	a.sampleClock += cycles * SampleRate
	for a.sampleClock >= cpuClock {
		a.sampleClock -= cpuClock
		l, r := a.mix()

		a.mu.Lock()
		a.samples = append(a.samples, l, r)
		if len(a.samples) > maxBufferedFrames*2 {
			a.samples = a.samples[len(a.samples)-maxBufferedFrames*2:]
		}
		a.mu.Unlock()
	}
}

// Samples drains the buffered interleaved stereo samples. Safe to call from
// another goroutine than the one running Tick.
func (a *APU) Samples() []int16 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]int16, len(a.samples))
	copy(out, a.samples)
	a.samples = a.samples[:0]
	return out
}

// ToggleChannel mutes or unmutes channel 1-4.
func (a *APU) ToggleChannel(channel int) {
	if channel >= 1 && channel <= 4 {
		a.channels[channel-1].Muted = !a.channels[channel-1].Muted
	}
}

// ChannelStatus reports which channels are currently audible.
func (a *APU) ChannelStatus() [4]bool {
	var out [4]bool
	for i := range a.channels {
		out[i] = a.channels[i].Enabled && !a.channels[i].Muted
	}
	return out
}

// State is the sound unit's part of a snapshot. Buffered samples are not
// included.
type State struct {
	Power          bool
	Registers      [0x20]uint8
	WaveRAM        [waveRAMSize]uint8
	Channels       [4]Channel
	SequencerClock int
	SequencerStep  int
	SampleClock    int
}

func (a *APU) Snapshot() State {
	return State{
		Power:          a.power,
		Registers:      a.registers,
		WaveRAM:        a.waveRAM,
		Channels:       a.channels,
		SequencerClock: a.sequencerClock,
		SequencerStep:  a.sequencerStep,
		SampleClock:    a.sampleClock,
	}
}

func (a *APU) Restore(s State) {
	a.power = s.Power
	a.registers = s.Registers
	a.waveRAM = s.WaveRAM
	a.channels = s.Channels
	a.sequencerClock = s.SequencerClock
	a.sequencerStep = s.SequencerStep
	a.sampleClock = s.SampleClock
}
