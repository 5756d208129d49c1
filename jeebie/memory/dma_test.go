package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

func TestDMA_OAMTransfer(t *testing.T) {
	m := newTestBus(nil, false)
	for i := uint16(0); i < oamTransferLength; i++ {
		m.Write(0xC100+i, uint8(i)+1)
	}

	m.Write(addr.DMA, 0xC1)

	assert.Equal(t, uint8(0xC1), m.Read(addr.DMA))
	for i := uint16(0); i < oamTransferLength; i++ {
		assert.Equal(t, uint8(i)+1, m.Read(addr.OAMStart+i), "OAM byte %d", i)
	}
}

func fillSource(m *testBus, src uint16, n int) {
	for i := range n {
		m.Write(src+uint16(i), uint8(i)+1)
	}
}

func setupVRAMTransfer(m *testBus, src, dst uint16) {
	m.Write(addr.HDMA1, uint8(src>>8))
	m.Write(addr.HDMA2, uint8(src))
	m.Write(addr.HDMA3, uint8(dst>>8))
	m.Write(addr.HDMA4, uint8(dst))
}

func TestDMA_GeneralPurpose(t *testing.T) {
	m := newTestBus(nil, true)
	fillSource(m, 0xC000, 0x40)
	setupVRAMTransfer(m, 0xC000, 0x8100)

	m.Write(addr.HDMA5, 0x02)

	for i := range 0x30 {
		assert.Equal(t, uint8(i)+1, m.gpu.ReadVRAM(0x8100+uint16(i)), "byte %d", i)
	}
	assert.Equal(t, uint8(0), m.gpu.ReadVRAM(0x8130))
	assert.Equal(t, hdmaDone, m.Read(addr.HDMA5))
	assert.False(t, m.DMA().Active())
}

func TestDMA_HBlankTransfer(t *testing.T) {
	m := newTestBus(nil, true)
	fillSource(m, 0xC000, 0x40)
	setupVRAMTransfer(m, 0xC000, 0x8000)

	m.Write(addr.HDMA5, 0x81)
	require.True(t, m.DMA().Active())
	assert.Equal(t, uint8(0x01), m.Read(addr.HDMA5))
	assert.Equal(t, uint8(0), m.gpu.ReadVRAM(0x8000), "nothing copied before HBlank")

	m.DMA().HBlank(0)
	assert.Equal(t, uint8(1), m.gpu.ReadVRAM(0x8000))
	assert.Equal(t, uint8(0), m.gpu.ReadVRAM(0x8010))
	assert.Equal(t, uint8(0x00), m.Read(addr.HDMA5))

	m.DMA().HBlank(1)
	assert.Equal(t, uint8(0x20), m.gpu.ReadVRAM(0x801F))
	assert.Equal(t, uint8(0), m.gpu.ReadVRAM(0x8020))
	assert.Equal(t, hdmaDone, m.Read(addr.HDMA5))
	assert.False(t, m.DMA().Active())

	m.DMA().HBlank(2)
	assert.Equal(t, uint8(0), m.gpu.ReadVRAM(0x8020), "finished transfers copy nothing")
}

func TestDMA_HBlankDrivenByGPU(t *testing.T) {
	m := newTestBus(nil, true)
	fillSource(m, 0xC000, 0x20)
	setupVRAMTransfer(m, 0xC000, 0x9000)

	m.Write(addr.HDMA5, 0x81)
	// two full scanlines produce two HBlank events
	m.gpu.Tick(456 * 2)

	assert.Equal(t, uint8(0x20), m.gpu.ReadVRAM(0x901F))
	assert.Equal(t, hdmaDone, m.Read(addr.HDMA5))
}

func TestDMA_Abort(t *testing.T) {
	m := newTestBus(nil, true)
	fillSource(m, 0xC000, 0x40)
	setupVRAMTransfer(m, 0xC000, 0x8000)

	m.Write(addr.HDMA5, 0x83)
	m.DMA().HBlank(0)
	m.Write(addr.HDMA5, 0x00)

	assert.False(t, m.DMA().Active())
	assert.Equal(t, uint8(0x82), m.Read(addr.HDMA5))

	m.DMA().HBlank(1)
	assert.Equal(t, uint8(0), m.gpu.ReadVRAM(0x8010))
}

func TestDMA_AddressMasking(t *testing.T) {
	m := newTestBus(nil, true)
	fillSource(m, 0xC000, 0x10)
	// low source nibble and upper destination bits are ignored
	setupVRAMTransfer(m, 0xC00F, 0xE20F)

	m.Write(addr.HDMA5, 0x00)

	assert.Equal(t, uint8(1), m.gpu.ReadVRAM(0x8200))
	assert.Equal(t, uint8(0x10), m.gpu.ReadVRAM(0x820F))
}

func TestDMA_VRAMRegistersMonochrome(t *testing.T) {
	m := newTestBus(nil, false)
	m.Write(addr.HDMA5, 0x80)
	assert.False(t, m.DMA().Active())
	assert.Equal(t, uint8(0), m.Read(addr.HDMA5))
}
