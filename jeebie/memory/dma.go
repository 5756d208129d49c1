package memory

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	oamTransferLength = 0xA0
	hdmaBlockSize     = 0x10
	// hdmaDone is what HDMA5 reads once a transfer has finished.
	hdmaDone uint8 = 0xFF
)

type byteReader interface {
	Read(address uint16) byte
}

// DMA runs OAM transfers and VRAM transfers. OAM DMA and general purpose
// VRAM DMA complete inside the triggering write; HBlank VRAM DMA copies one
// block per HBlank event.
type DMA struct {
	bus byteReader
	gpu *video.GPU

	oamSource uint8

	srcHigh, srcLow uint8
	dstHigh, dstLow uint8
	// length is the HDMA5 value: remaining blocks minus one while active,
	// hdmaDone when finished, bit 7 set after an abort.
	length uint8
	active bool
	block  int
}

func newDMA(bus byteReader, gpu *video.GPU) *DMA {
	return &DMA{bus: bus, gpu: gpu, length: hdmaDone}
}

func (d *DMA) source() uint16 {
	return uint16(d.srcHigh)<<8 | uint16(d.srcLow&0xF0)
}

func (d *DMA) destination() uint16 {
	return 0x8000 | uint16(d.dstHigh&0x1F)<<8 | uint16(d.dstLow&0xF0)
}

// Active reports whether an HBlank transfer is in progress.
func (d *DMA) Active() bool {
	return d.active
}

func (d *DMA) Read(address uint16) byte {
	switch address {
	case addr.DMA:
		return d.oamSource
	case addr.HDMA1:
		return d.srcHigh
	case addr.HDMA2:
		return d.srcLow
	case addr.HDMA3:
		return d.dstHigh
	case addr.HDMA4:
		return d.dstLow
	case addr.HDMA5:
		return d.length
	}
	return 0
}

func (d *DMA) Write(address uint16, value byte) {
	switch address {
	case addr.DMA:
		d.oamSource = value
		d.transferOAM(value)
	case addr.HDMA1:
		d.srcHigh = value
	case addr.HDMA2:
		d.srcLow = value
	case addr.HDMA3:
		d.dstHigh = value
	case addr.HDMA4:
		d.dstLow = value
	case addr.HDMA5:
		d.startVRAM(value)
	}
}

// transferOAM copies 160 bytes from value*0x100 into OAM.
func (d *DMA) transferOAM(value byte) {
	src := uint16(value) << 8
	for i := uint16(0); i < oamTransferLength; i++ {
		d.gpu.WriteOAM(addr.OAMStart+i, d.bus.Read(src+i))
	}
}

// startVRAM handles an HDMA5 write. Bit 7 clear while a transfer is active
// aborts it; otherwise bit 7 picks HBlank (set) or immediate (clear) mode.
func (d *DMA) startVRAM(value byte) {
	if d.active && value&0x80 == 0 {
		d.active = false
		d.length |= 0x80
		return
	}

	blocks := int(value&0x7F) + 1
	if value&0x80 == 0 {
		for i := 0; i < blocks; i++ {
			d.copyBlock(i)
		}
		d.length = hdmaDone
		return
	}

	d.length = value & 0x7F
	d.block = 0
	d.active = true
}

// HBlank copies the next block of an active transfer. Wired to the GPU's
// HBlank event.
func (d *DMA) HBlank(scanline uint8) {
	if !d.active || scanline >= 144 {
		return
	}

	d.copyBlock(d.block)
	d.block++
	if d.length == 0 {
		d.length = hdmaDone
		d.active = false
		return
	}
	d.length--
}

func (d *DMA) copyBlock(index int) {
	offset := uint16(index * hdmaBlockSize)
	src := d.source() + offset
	dst := d.destination() + offset
	for i := uint16(0); i < hdmaBlockSize; i++ {
		d.gpu.WriteVRAM(0x8000|(dst+i)&0x1FFF, d.bus.Read(src+i))
	}
}

// DMAState is the DMA engine's part of a snapshot.
type DMAState struct {
	OAMSource                        uint8
	SrcHigh, SrcLow, DstHigh, DstLow uint8
	Length                           uint8
	Active                           bool
	Block                            int
}

func (d *DMA) snapshot() DMAState {
	return DMAState{
		OAMSource: d.oamSource,
		SrcHigh:   d.srcHigh, SrcLow: d.srcLow, DstHigh: d.dstHigh, DstLow: d.dstLow,
		Length: d.length, Active: d.active, Block: d.block,
	}
}

func (d *DMA) restore(s DMAState) {
	d.oamSource = s.OAMSource
	d.srcHigh, d.srcLow, d.dstHigh, d.dstLow = s.SrcHigh, s.SrcLow, s.DstHigh, s.DstLow
	d.length, d.active, d.block = s.Length, s.Active, s.Block
}
