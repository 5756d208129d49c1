package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

type irqRecorder struct {
	requests map[addr.Interrupt]int
}

func newIRQRecorder() *irqRecorder {
	return &irqRecorder{requests: map[addr.Interrupt]int{}}
}

func (r *irqRecorder) RequestInterrupt(i addr.Interrupt) {
	r.requests[i]++
}

func newTestGPU(color bool) (*GPU, *irqRecorder) {
	irq := newIRQRecorder()
	return New(irq, color), irq
}

func TestGPU_InitialState(t *testing.T) {
	g, _ := newTestGPU(false)

	assert.Equal(t, OAMScanMode, g.Mode())
	assert.Equal(t, uint8(0), g.Scanline())
	assert.Equal(t, uint8(0x91), g.ReadRegister(addr.LCDC))
	assert.Equal(t, uint8(0x80|statCoincidence|uint8(OAMScanMode)), g.ReadRegister(addr.STAT))
}

func TestGPU_ScanlineTiming(t *testing.T) {
	g, _ := newTestGPU(false)
	hblanks := 0
	var lines []uint8
	g.OnHBlank(func(line uint8) {
		hblanks++
		lines = append(lines, line)
	})

	g.Tick(oamScanCycles)
	assert.Equal(t, TransferMode, g.Mode())
	g.Tick(transferCycles)
	assert.Equal(t, HBlankMode, g.Mode())
	g.Tick(hblankCycles)

	assert.Equal(t, 1, hblanks)
	assert.Equal(t, []uint8{0}, lines)
	assert.Equal(t, OAMScanMode, g.Mode())
	assert.Equal(t, uint8(1), g.Scanline())
}

func TestGPU_SingleTickCrossesModes(t *testing.T) {
	g, _ := newTestGPU(false)
	hblanks := 0
	g.OnHBlank(func(uint8) { hblanks++ })

	g.Tick(scanlineCycles)
	assert.Equal(t, 1, hblanks)
	assert.Equal(t, OAMScanMode, g.Mode())
	assert.Equal(t, uint8(1), g.Scanline())

	// overshoot carries into the next mode
	g.Tick(oamScanCycles + 10)
	assert.Equal(t, TransferMode, g.Mode())
	g.Tick(transferCycles - 10)
	assert.Equal(t, HBlankMode, g.Mode())
}

func TestGPU_FrameTiming(t *testing.T) {
	g, irq := newTestGPU(false)
	vblanks := 0
	g.OnVBlank(func() { vblanks++ })

	g.Tick(scanlineCycles * visibleLines)
	assert.Equal(t, VBlankMode, g.Mode())
	assert.Equal(t, uint8(144), g.Scanline())
	assert.Equal(t, 1, vblanks)
	assert.Equal(t, 1, irq.requests[addr.VBlankInterrupt])

	g.Tick(scanlineCycles * 9)
	assert.Equal(t, VBlankMode, g.Mode())
	assert.Equal(t, uint8(153), g.Scanline())

	g.Tick(scanlineCycles)
	assert.Equal(t, OAMScanMode, g.Mode())
	assert.Equal(t, uint8(0), g.Scanline())
	assert.Equal(t, 1, vblanks)
	assert.Equal(t, uint64(1), g.FrameCount())
}

func TestGPU_FrameTimingInSmallSteps(t *testing.T) {
	g, irq := newTestGPU(false)
	vblanks := 0
	g.OnVBlank(func() { vblanks++ })

	for elapsed := 0; elapsed < FrameCycles; elapsed += 4 {
		g.Tick(4)
	}

	assert.Equal(t, 1, vblanks)
	assert.Equal(t, 1, irq.requests[addr.VBlankInterrupt])
	assert.Equal(t, OAMScanMode, g.Mode())
	assert.Equal(t, uint8(0), g.Scanline())
}

func TestGPU_Coincidence(t *testing.T) {
	g, irq := newTestGPU(false)
	g.WriteRegister(addr.STAT, statCoincidentIRQ)
	g.WriteRegister(addr.LYC, 2)

	assert.Zero(t, g.ReadRegister(addr.STAT)&statCoincidence)
	g.Tick(scanlineCycles)
	assert.Zero(t, irq.requests[addr.LCDSTATInterrupt])

	g.Tick(scanlineCycles)
	assert.Equal(t, uint8(2), g.Scanline())
	assert.NotZero(t, g.ReadRegister(addr.STAT)&statCoincidence)
	assert.Equal(t, 1, irq.requests[addr.LCDSTATInterrupt])

	g.Tick(scanlineCycles)
	assert.Zero(t, g.ReadRegister(addr.STAT)&statCoincidence)
}

func TestGPU_CoincidenceRisingEdge(t *testing.T) {
	t.Run("rewriting LYC with the same value", func(t *testing.T) {
		g, irq := newTestGPU(false)
		g.WriteRegister(addr.STAT, statCoincidentIRQ)
		for range 3 {
			g.WriteRegister(addr.LYC, 0)
		}
		assert.NotZero(t, g.ReadRegister(addr.STAT)&statCoincidence)
		assert.Zero(t, irq.requests[addr.LCDSTATInterrupt])
	})

	t.Run("LYC moving onto LY", func(t *testing.T) {
		g, irq := newTestGPU(false)
		g.WriteRegister(addr.STAT, statCoincidentIRQ)
		g.WriteRegister(addr.LYC, 5)
		assert.Zero(t, g.ReadRegister(addr.STAT)&statCoincidence)

		g.WriteRegister(addr.LYC, 0)
		g.WriteRegister(addr.LYC, 0)
		assert.Equal(t, 1, irq.requests[addr.LCDSTATInterrupt])
	})

	t.Run("display turned back on", func(t *testing.T) {
		g, irq := newTestGPU(false)
		g.WriteRegister(addr.LCDC, 0x11)
		g.WriteRegister(addr.STAT, statCoincidentIRQ)
		g.WriteRegister(addr.LCDC, 0x91)
		assert.Equal(t, 1, irq.requests[addr.LCDSTATInterrupt])
	})
}

func TestGPU_ModeInterrupts(t *testing.T) {
	tests := []struct {
		name   string
		source uint8
		cycles int
		want   int
	}{
		{"hblank", statHBlankIRQ, oamScanCycles + transferCycles, 1},
		{"oam", statOAMIRQ, scanlineCycles, 1},
		{"vblank", statVBlankIRQ, scanlineCycles * visibleLines, 1},
		{"disabled", 0, scanlineCycles, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, irq := newTestGPU(false)
			g.WriteRegister(addr.LYC, 0xFF)
			g.WriteRegister(addr.STAT, tt.source)

			g.Tick(tt.cycles)
			assert.Equal(t, tt.want, irq.requests[addr.LCDSTATInterrupt])
		})
	}
}

func TestGPU_DisplayOff(t *testing.T) {
	g, _ := newTestGPU(false)
	g.Tick(scanlineCycles*5 + 100)
	require.Equal(t, uint8(5), g.Scanline())

	g.WriteRegister(addr.LCDC, 0x11)
	assert.Equal(t, uint8(0), g.Scanline())
	assert.Equal(t, HBlankMode, g.Mode())
	assert.Equal(t, WhiteColor, g.Frame().GetPixel(0, 0))

	g.Tick(FrameCycles)
	assert.Equal(t, uint8(0), g.Scanline())
	assert.Equal(t, uint8(0x80), g.ReadRegister(addr.STAT)&0x83)

	g.WriteRegister(addr.LCDC, 0x91)
	g.Tick(hblankCycles)
	assert.Equal(t, uint8(1), g.Scanline())
}

func TestGPU_Registers(t *testing.T) {
	g, _ := newTestGPU(false)

	t.Run("LY is read only", func(t *testing.T) {
		g.WriteRegister(addr.LY, 0x42)
		assert.Equal(t, uint8(0), g.ReadRegister(addr.LY))
	})

	t.Run("STAT keeps mode and coincidence bits", func(t *testing.T) {
		g.WriteRegister(addr.STAT, 0xFF)
		assert.Equal(t, uint8(0xFE), g.ReadRegister(addr.STAT))
	})

	t.Run("plain registers", func(t *testing.T) {
		for _, a := range []uint16{addr.SCY, addr.SCX, addr.BGP, addr.OBP0, addr.OBP1, addr.WY, addr.WX} {
			g.WriteRegister(a, 0x5A)
			assert.Equal(t, uint8(0x5A), g.ReadRegister(a), "register %#04x", a)
		}
	})

	t.Run("color registers absent in monochrome mode", func(t *testing.T) {
		g.WriteRegister(addr.VBK, 1)
		assert.Equal(t, uint8(0xFF), g.ReadRegister(addr.VBK))
	})
}

func TestGPU_VRAMBanks(t *testing.T) {
	g, _ := newTestGPU(true)

	g.WriteVRAM(0x8000, 0x11)
	g.WriteRegister(addr.VBK, 1)
	assert.Equal(t, uint8(0xFF), g.ReadRegister(addr.VBK))
	assert.Equal(t, uint8(0), g.ReadVRAM(0x8000))
	g.WriteVRAM(0x8000, 0x22)

	g.WriteRegister(addr.VBK, 0)
	assert.Equal(t, uint8(0x11), g.ReadVRAM(0x8000))
	g.WriteRegister(addr.VBK, 1)
	assert.Equal(t, uint8(0x22), g.ReadVRAM(0x8000))
}

func TestGPU_PaletteAutoIncrement(t *testing.T) {
	g, _ := newTestGPU(true)

	g.WriteRegister(addr.BCPS, 0x80)
	g.WriteRegister(addr.BCPD, 0x1F)
	g.WriteRegister(addr.BCPD, 0x00)
	assert.Equal(t, uint8(0xC2), g.ReadRegister(addr.BCPS))

	g.WriteRegister(addr.BCPS, 0x00)
	assert.Equal(t, uint8(0x1F), g.ReadRegister(addr.BCPD))
	assert.Equal(t, GBColor(0xFF0000FF), g.bgPalettes.color(0, 0))

	g.WriteRegister(addr.BCPD, 0xE0)
	assert.Equal(t, uint8(0x40), g.ReadRegister(addr.BCPS))
}

func TestGPU_SnapshotRestore(t *testing.T) {
	g, _ := newTestGPU(false)
	g.WriteVRAM(0x8010, 0xAB)
	g.WriteOAM(0xFE04, 0x30)
	g.WriteRegister(addr.SCX, 7)
	g.Tick(scanlineCycles*3 + 90)

	state := g.Snapshot()

	other, _ := newTestGPU(false)
	other.Restore(state)
	assert.Equal(t, state, other.Snapshot())
	assert.Equal(t, uint8(0xAB), other.ReadVRAM(0x8010))
	assert.Equal(t, uint8(0x30), other.ReadOAM(0xFE04))
	assert.Equal(t, TransferMode, other.Mode())
	assert.Equal(t, uint8(3), other.Scanline())
}
