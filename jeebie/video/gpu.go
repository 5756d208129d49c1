package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// GpuMode is the value reported in the two low bits of STAT.
type GpuMode uint8

const (
	HBlankMode GpuMode = iota
	VBlankMode
	OAMScanMode
	TransferMode
)

func (m GpuMode) String() string {
	switch m {
	case HBlankMode:
		return "hblank"
	case VBlankMode:
		return "vblank"
	case OAMScanMode:
		return "oam-scan"
	case TransferMode:
		return "transfer"
	}
	return "unknown"
}

const (
	oamScanCycles  = 80
	transferCycles = 172
	hblankCycles   = 204
	scanlineCycles = oamScanCycles + transferCycles + hblankCycles

	visibleLines = 144
	totalLines   = 154

	// FrameCycles is the length of one full frame.
	FrameCycles = scanlineCycles * totalLines
)

// STAT bits
const (
	statCoincidence   = 0x04
	statHBlankIRQ     = 0x08
	statVBlankIRQ     = 0x10
	statOAMIRQ        = 0x20
	statCoincidentIRQ = 0x40
	statWritable      = 0x78
)

// Interrupter receives the interrupt requests raised by the GPU.
type Interrupter interface {
	RequestInterrupt(addr.Interrupt)
}

const vramBankSize = 0x2000

// GPU owns video memory and the LCD registers, advances the scanline state
// machine and renders each visible line into a framebuffer.
type GPU struct {
	irq   Interrupter
	color bool

	vram     [2][vramBankSize]byte
	vramBank int
	oam      OAM

	lcdc, stat   uint8
	scy, scx     uint8
	ly, lyc      uint8
	bgp          uint8
	obp0, obp1   uint8
	wy, wx       uint8
	bgPalettes   colorPalettes
	objPalettes  colorPalettes
	mode         GpuMode
	modeClock    int
	windowLine   int
	frameCount   uint64
	back, front  *FrameBuffer
	bgIndex      [FramebufferWidth]uint8
	bgPriority   [FramebufferWidth]bool
	hblankEvents []func(scanline uint8)
	vblankEvents []func()
}

func New(irq Interrupter, color bool) *GPU {
	g := &GPU{
		irq:   irq,
		color: color,
		back:  NewFrameBuffer(),
		front: NewFrameBuffer(),
	}
	g.Reset()
	return g
}

// Reset restores the post boot register values, starting in OAM scan on line 0.
func (g *GPU) Reset() {
	g.vram = [2][vramBankSize]byte{}
	g.vramBank = 0
	g.oam = OAM{}
	g.lcdc = 0x91
	g.stat = 0
	g.scy, g.scx = 0, 0
	g.ly, g.lyc = 0, 0
	g.bgp = 0xFC
	g.obp0, g.obp1 = 0xFF, 0xFF
	g.wy, g.wx = 0, 0
	g.bgPalettes.reset()
	g.objPalettes.reset()
	g.modeClock = 0
	g.windowLine = 0
	g.frameCount = 0
	g.setMode(OAMScanMode)
	g.checkCoincidence()
}

// OnHBlank registers fn to run each time a visible line enters HBlank.
func (g *GPU) OnHBlank(fn func(scanline uint8)) {
	g.hblankEvents = append(g.hblankEvents, fn)
}

// OnVBlank registers fn to run once per completed frame.
func (g *GPU) OnVBlank(fn func()) {
	g.vblankEvents = append(g.vblankEvents, fn)
}

// Enabled reports whether the display is switched on (LCDC bit 7).
func (g *GPU) Enabled() bool {
	return bit.IsSet(7, g.lcdc)
}

// Tick advances the state machine by cycles. A single call may cross several
// mode boundaries; cycles past a boundary carry into the next mode.
func (g *GPU) Tick(cycles int) {
	if !g.Enabled() {
		return
	}

	g.modeClock += cycles
	for {
		budget := g.modeBudget()
		if g.modeClock < budget {
			return
		}
		g.modeClock -= budget
		g.advance()
	}
}

func (g *GPU) modeBudget() int {
	switch g.mode {
	case OAMScanMode:
		return oamScanCycles
	case TransferMode:
		return transferCycles
	case HBlankMode:
		return hblankCycles
	}
	return scanlineCycles
}

func (g *GPU) advance() {
	switch g.mode {
	case OAMScanMode:
		g.setMode(TransferMode)

	case TransferMode:
		g.setMode(HBlankMode)
		g.statInterrupt(statHBlankIRQ)
		g.renderScanline()
		for _, fn := range g.hblankEvents {
			fn(g.ly)
		}

	case HBlankMode:
		g.SetScanline(g.ly + 1)
		if g.ly < visibleLines {
			g.setMode(OAMScanMode)
			g.statInterrupt(statOAMIRQ)
			return
		}
		g.setMode(VBlankMode)
		g.completeFrame()
		g.irq.RequestInterrupt(addr.VBlankInterrupt)
		g.statInterrupt(statVBlankIRQ)

	case VBlankMode:
		if g.ly < totalLines-1 {
			g.SetScanline(g.ly + 1)
			return
		}
		g.windowLine = 0
		g.SetScanline(0)
		g.setMode(OAMScanMode)
		g.statInterrupt(statOAMIRQ)
	}
}

func (g *GPU) completeFrame() {
	g.back, g.front = g.front, g.back
	g.frameCount++
	for _, fn := range g.vblankEvents {
		fn()
	}
}

func (g *GPU) setMode(m GpuMode) {
	g.mode = m
	g.stat = g.stat&^0x03 | uint8(m)
}

func (g *GPU) statInterrupt(source uint8) {
	if g.stat&source != 0 {
		g.irq.RequestInterrupt(addr.LCDSTATInterrupt)
	}
}

// SetScanline stores LY and reruns the LY/LYC comparison.
func (g *GPU) SetScanline(line uint8) {
	g.ly = line
	g.checkCoincidence()
}

// checkCoincidence raises STAT only when LY==LYC becomes true, so rewriting
// an equal LY or LYC does not request the interrupt again.
func (g *GPU) checkCoincidence() {
	if g.ly != g.lyc {
		g.stat &^= statCoincidence
		return
	}
	if g.stat&statCoincidence != 0 {
		return
	}
	g.stat |= statCoincidence
	g.statInterrupt(statCoincidentIRQ)
}

// SetControl writes LCDC. Turning the display off blanks the frame and parks
// the machine on line 0 in HBlank; turning it on restarts the mode clock.
func (g *GPU) SetControl(v uint8) {
	wasOn := g.Enabled()
	g.lcdc = v

	switch {
	case wasOn && !g.Enabled():
		g.back.Fill(WhiteColor)
		g.front.Fill(WhiteColor)
		g.windowLine = 0
		g.SetScanline(0)
		g.setMode(HBlankMode)
		g.modeClock = 0
	case !wasOn && g.Enabled():
		g.modeClock = 0
		g.stat &^= statCoincidence
		g.checkCoincidence()
	}
}

// ReadRegister reads one of the LCD registers in FF40-FF4B, VBK or the color
// palette ports.
func (g *GPU) ReadRegister(address uint16) uint8 {
	switch address {
	case addr.LCDC:
		return g.lcdc
	case addr.STAT:
		return g.stat | 0x80
	case addr.SCY:
		return g.scy
	case addr.SCX:
		return g.scx
	case addr.LY:
		return g.ly
	case addr.LYC:
		return g.lyc
	case addr.BGP:
		return g.bgp
	case addr.OBP0:
		return g.obp0
	case addr.OBP1:
		return g.obp1
	case addr.WY:
		return g.wy
	case addr.WX:
		return g.wx
	}

	if !g.color {
		return 0xFF
	}
	switch address {
	case addr.VBK:
		return uint8(g.vramBank) | 0xFE
	case addr.BCPS:
		return g.bgPalettes.readIndex()
	case addr.BCPD:
		return g.bgPalettes.readData()
	case addr.OCPS:
		return g.objPalettes.readIndex()
	case addr.OCPD:
		return g.objPalettes.readData()
	}
	return 0xFF
}

func (g *GPU) WriteRegister(address uint16, v uint8) {
	switch address {
	case addr.LCDC:
		g.SetControl(v)
	case addr.STAT:
		g.stat = g.stat&^statWritable | v&statWritable
	case addr.SCY:
		g.scy = v
	case addr.SCX:
		g.scx = v
	case addr.LY:
		// read only
	case addr.LYC:
		g.lyc = v
		if g.Enabled() {
			g.checkCoincidence()
		}
	case addr.BGP:
		g.bgp = v
	case addr.OBP0:
		g.obp0 = v
	case addr.OBP1:
		g.obp1 = v
	case addr.WY:
		g.wy = v
	case addr.WX:
		g.wx = v
	}

	if !g.color {
		return
	}
	switch address {
	case addr.VBK:
		g.vramBank = int(v & 0x01)
	case addr.BCPS:
		g.bgPalettes.writeIndex(v)
	case addr.BCPD:
		g.bgPalettes.writeData(v)
	case addr.OCPS:
		g.objPalettes.writeIndex(v)
	case addr.OCPD:
		g.objPalettes.writeData(v)
	}
}

// ReadVRAM reads address (8000-9FFF) from the selected VRAM bank.
func (g *GPU) ReadVRAM(address uint16) uint8 {
	return g.vram[g.vramBank][(address-addr.VRAMStart)&(vramBankSize-1)]
}

func (g *GPU) WriteVRAM(address uint16, v uint8) {
	g.vram[g.vramBank][(address-addr.VRAMStart)&(vramBankSize-1)] = v
}

// ReadOAM reads address (FE00-FE9F) of object attribute memory.
func (g *GPU) ReadOAM(address uint16) uint8 {
	return g.oam.read((address - addr.OAMStart) % oamSize)
}

func (g *GPU) WriteOAM(address uint16, v uint8) {
	g.oam.write((address-addr.OAMStart)%oamSize, v)
}

func (g *GPU) Mode() GpuMode {
	return g.mode
}

func (g *GPU) Scanline() uint8 {
	return g.ly
}

// Frame returns the last completed frame.
func (g *GPU) Frame() *FrameBuffer {
	return g.front
}

// FrameCount is the number of frames completed since reset.
func (g *GPU) FrameCount() uint64 {
	return g.frameCount
}

// OAM exposes sprite memory for inspection tools.
func (g *GPU) OAM() *OAM {
	return &g.oam
}

// SpriteHeight is 8 or 16 depending on LCDC bit 2.
func (g *GPU) SpriteHeight() int {
	if bit.IsSet(2, g.lcdc) {
		return 16
	}
	return 8
}

// GPUState is the serializable state of the GPU.
type GPUState struct {
	VRAM       [2][vramBankSize]byte
	VRAMBank   int
	OAM        [oamSize]byte
	LCDC, STAT uint8
	SCY, SCX   uint8
	LY, LYC    uint8
	BGP        uint8
	OBP0, OBP1 uint8
	WY, WX     uint8
	BGPalette  [64]byte
	BGIndex    uint8
	ObjPalette [64]byte
	ObjIndex   uint8
	Mode       GpuMode
	ModeClock  int
	WindowLine int
	FrameCount uint64
}

func (g *GPU) Snapshot() GPUState {
	return GPUState{
		VRAM:       g.vram,
		VRAMBank:   g.vramBank,
		OAM:        g.oam.data,
		LCDC:       g.lcdc,
		STAT:       g.stat,
		SCY:        g.scy,
		SCX:        g.scx,
		LY:         g.ly,
		LYC:        g.lyc,
		BGP:        g.bgp,
		OBP0:       g.obp0,
		OBP1:       g.obp1,
		WY:         g.wy,
		WX:         g.wx,
		BGPalette:  g.bgPalettes.data,
		BGIndex:    g.bgPalettes.index,
		ObjPalette: g.objPalettes.data,
		ObjIndex:   g.objPalettes.index,
		Mode:       g.mode,
		ModeClock:  g.modeClock,
		WindowLine: g.windowLine,
		FrameCount: g.frameCount,
	}
}

// Restore loads s. Registered HBlank and VBlank handlers are kept.
func (g *GPU) Restore(s GPUState) {
	g.vram = s.VRAM
	g.vramBank = s.VRAMBank
	g.oam.data = s.OAM
	g.lcdc = s.LCDC
	g.stat = s.STAT
	g.scy, g.scx = s.SCY, s.SCX
	g.ly, g.lyc = s.LY, s.LYC
	g.bgp = s.BGP
	g.obp0, g.obp1 = s.OBP0, s.OBP1
	g.wy, g.wx = s.WY, s.WX
	g.bgPalettes.data = s.BGPalette
	g.bgPalettes.index = s.BGIndex
	g.objPalettes.data = s.ObjPalette
	g.objPalettes.index = s.ObjIndex
	g.mode = s.Mode
	g.modeClock = s.ModeClock
	g.windowLine = s.WindowLine
	g.frameCount = s.FrameCount
}
