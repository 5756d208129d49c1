package audio

// Channel is the state of one sound generator. Fields are exported so the
// whole unit can be snapshotted.
type Channel struct {
	Enabled    bool
	DAC        bool
	Muted      bool
	Frequency  uint16
	Timer      int
	Position   uint8
	Length     uint16
	LengthOn   bool
	Volume     uint8
	EnvPeriod  uint8
	EnvUp      bool
	EnvTimer   uint8
	Duty       uint8
	SweepTimer uint8
	SweepOn    bool
	Shadow     uint16
	LFSR       uint16
}

// clockLength decrements the length counter, disabling the channel at zero.
func (c *Channel) clockLength() {
	if !c.LengthOn || c.Length == 0 {
		return
	}
	c.Length--
	if c.Length == 0 {
		c.Enabled = false
	}
}

func (c *Channel) clockEnvelope() {
	if c.EnvPeriod == 0 {
		return
	}
	c.EnvTimer--
	if c.EnvTimer > 0 {
		return
	}
	c.EnvTimer = c.EnvPeriod
	switch {
	case c.EnvUp && c.Volume < 15:
		c.Volume++
	case !c.EnvUp && c.Volume > 0:
		c.Volume--
	}
}

// loadEnvelope reads an NRx2 value into the envelope state.
func (c *Channel) loadEnvelope(nrx2 uint8) {
	c.Volume = nrx2 >> 4
	c.EnvUp = nrx2&0x08 != 0
	c.EnvPeriod = nrx2 & 0x07
	c.EnvTimer = c.EnvPeriod
	c.DAC = nrx2&0xF8 != 0
	if !c.DAC {
		c.Enabled = false
	}
}

// advance runs the frequency timer for cycles and returns how many times it
// expired. period must be positive.
func (c *Channel) advance(cycles, period int) int {
	steps := 0
	c.Timer -= cycles
	for c.Timer <= 0 {
		c.Timer += period
		steps++
	}
	return steps
}

// analog converts a 0-15 digital level to -15..15, silent when the DAC is off.
func (c *Channel) analog(level uint8) int {
	if !c.DAC {
		return 0
	}
	return int(level)*2 - 15
}
