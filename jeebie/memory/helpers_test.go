package memory

import (
	"time"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// makeROM builds an image of banks 16KiB banks where every byte of a bank
// holds its bank number (low byte) and the header is filled in.
func makeROM(cartType, ramSize uint8, banks int) []byte {
	rom := make([]byte, banks*romBankSize)
	for i := range rom {
		rom[i] = uint8(i / romBankSize)
	}
	copy(rom[titleAddress:], "TESTCART")
	for i := titleAddress + len("TESTCART"); i < titleAddress+titleLength; i++ {
		rom[i] = 0
	}
	rom[cgbFlagAddress] = 0
	rom[cartridgeTypeAddress] = cartType
	rom[romSizeAddress] = 0
	rom[ramSizeAddress] = ramSize
	return rom
}

type fakeInterrupts struct {
	ie, flags uint8
}

func (f *fakeInterrupts) IE() uint8                         { return f.ie }
func (f *fakeInterrupts) SetIE(v uint8)                     { f.ie = v }
func (f *fakeInterrupts) IF() uint8                         { return f.flags | 0xE0 }
func (f *fakeInterrupts) SetIF(v uint8)                     { f.flags = v & 0x1F }
func (f *fakeInterrupts) RequestInterrupt(i addr.Interrupt) { f.flags |= uint8(i) }

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type testBus struct {
	*MMU
	irq   *fakeInterrupts
	gpu   *video.GPU
	timer *Timer
	pad   *Joypad
}

func newTestBus(cart *Cartridge, color bool) *testBus {
	irq := &fakeInterrupts{}
	gpu := video.New(irq, color)
	timer := NewTimer(irq)
	pad := NewJoypad(irq)
	m := New(Devices{
		Cartridge:  cart,
		GPU:        gpu,
		Timer:      timer,
		Joypad:     pad,
		Interrupts: irq,
	}, color)
	gpu.OnHBlank(m.DMA().HBlank)
	return &testBus{MMU: m, irq: irq, gpu: gpu, timer: timer, pad: pad}
}
