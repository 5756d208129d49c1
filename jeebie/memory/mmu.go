package memory

import (
	"fmt"
	"log/slog"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/video"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM0
	regionWRAMN
	regionEcho
	regionHigh
)

const wramBankSize = 0x1000

// InterruptRegisters is the IE/IF pair, held by the CPU register file.
type InterruptRegisters interface {
	IE() uint8
	SetIE(v uint8)
	IF() uint8
	SetIF(v uint8)
}

// SerialPort is the device behind SB/SC.
type SerialPort interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// AudioUnit owns the sound registers at 0xFF10-0xFF3F.
type AudioUnit interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// Devices are the components the bus routes to. The MMU borrows them, the
// machine owns them. Serial and Audio may be nil.
type Devices struct {
	Cartridge  *Cartridge
	GPU        *video.GPU
	Timer      *Timer
	Joypad     *Joypad
	Serial     SerialPort
	Audio      AudioUnit
	Interrupts InterruptRegisters
}

// MMU routes every address of the 16 bit space to exactly one backing
// region. It owns work RAM, high RAM and the DMA engine.
type MMU struct {
	dev       Devices
	color     bool
	regionMap [256]memRegion

	wram     [8][wramBankSize]byte
	wramBank uint8
	hram     [0x7F]byte

	dma    *DMA
	logger *slog.Logger
}

// Option configures the MMU.
type Option func(*MMU)

// WithLogger sets the logger used for unexpected accesses.
func WithLogger(l *slog.Logger) Option {
	return func(m *MMU) { m.logger = l }
}

// New creates the bus. Color mode enables the WRAM bank and VRAM DMA registers.
func New(dev Devices, color bool, opts ...Option) *MMU {
	if dev.Cartridge == nil {
		dev.Cartridge = NewEmptyCartridge()
	}
	m := &MMU{
		dev:      dev,
		color:    color,
		wramBank: 1,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.dma = newDMA(m, dev.GPU)
	initRegionMap(m)
	return m
}

func initRegionMap(m *MMU) {
	for i := range m.regionMap {
		switch {
		case i < 0x80:
			m.regionMap[i] = regionROM
		case i < 0xA0:
			m.regionMap[i] = regionVRAM
		case i < 0xC0:
			m.regionMap[i] = regionExtRAM
		case i < 0xD0:
			m.regionMap[i] = regionWRAM0
		case i < 0xE0:
			m.regionMap[i] = regionWRAMN
		case i < 0xFE:
			m.regionMap[i] = regionEcho
		default:
			m.regionMap[i] = regionHigh
		}
	}
}

// DMA returns the DMA engine so the machine can wire it to HBlank events.
func (m *MMU) DMA() *DMA {
	return m.dma
}

// Cartridge returns the inserted cartridge.
func (m *MMU) Cartridge() *Cartridge {
	return m.dev.Cartridge
}

// switchBank is the WRAM bank mapped at 0xD000.
func (m *MMU) switchBank() uint8 {
	if !m.color {
		return 1
	}
	return m.wramBank
}

// Read returns the byte at address.
func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		return m.dev.Cartridge.Read(address)
	case regionVRAM:
		return m.dev.GPU.ReadVRAM(address)
	case regionWRAM0:
		return m.wram[0][address&0x0FFF]
	case regionWRAMN:
		return m.wram[m.switchBank()][address&0x0FFF]
	case regionEcho:
		return m.Read(address - 0x2000)
	}

	switch {
	case address <= addr.OAMEnd:
		return m.dev.GPU.ReadOAM(address)
	case address < addr.IOStart:
		return 0
	}
	return m.readIO(address)
}

// Write stores value at address.
func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		m.dev.Cartridge.Write(address, value)
		return
	case regionVRAM:
		m.dev.GPU.WriteVRAM(address, value)
		return
	case regionWRAM0:
		m.wram[0][address&0x0FFF] = value
		return
	case regionWRAMN:
		m.wram[m.switchBank()][address&0x0FFF] = value
		return
	case regionEcho:
		m.Write(address-0x2000, value)
		return
	}

	switch {
	case address <= addr.OAMEnd:
		m.dev.GPU.WriteOAM(address, value)
	case address < addr.IOStart:
		// unusable
	default:
		m.writeIO(address, value)
	}
}

func isGraphicsRegister(address uint16) bool {
	switch {
	case address >= addr.LCDC && address <= addr.WX && address != addr.DMA:
		return true
	case address == addr.VBK:
		return true
	case address >= addr.BCPS && address <= addr.OCPD:
		return true
	}
	return false
}

func (m *MMU) readIO(address uint16) byte {
	switch {
	case address == addr.P1:
		if m.dev.Joypad == nil {
			return 0xFF
		}
		return m.dev.Joypad.Read()
	case address == addr.SB || address == addr.SC:
		if m.dev.Serial == nil {
			return 0
		}
		return m.dev.Serial.Read(address)
	case address >= addr.DIV && address <= addr.TAC:
		return m.dev.Timer.Read(address)
	case address == addr.IF:
		return m.dev.Interrupts.IF()
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.dev.Audio == nil {
			return 0
		}
		return m.dev.Audio.ReadRegister(address)
	case isGraphicsRegister(address):
		return m.dev.GPU.ReadRegister(address)
	case address == addr.DMA:
		return m.dma.Read(address)
	case address >= addr.HDMA1 && address <= addr.HDMA5:
		if !m.color {
			return 0
		}
		return m.dma.Read(address)
	case address == addr.SVBK:
		if !m.color {
			return 0
		}
		return m.wramBank
	case address == addr.IE:
		return m.dev.Interrupts.IE()
	case address >= addr.HRAMStart:
		return m.hram[address-addr.HRAMStart]
	}
	return 0
}

func (m *MMU) writeIO(address uint16, value byte) {
	switch {
	case address == addr.P1:
		if m.dev.Joypad != nil {
			m.dev.Joypad.Write(value)
		}
	case address == addr.SB || address == addr.SC:
		if m.dev.Serial != nil {
			m.dev.Serial.Write(address, value)
		}
	case address >= addr.DIV && address <= addr.TAC:
		m.dev.Timer.Write(address, value)
	case address == addr.IF:
		m.dev.Interrupts.SetIF(value)
	case address >= addr.AudioStart && address <= addr.AudioEnd:
		if m.dev.Audio != nil {
			m.dev.Audio.WriteRegister(address, value)
		}
	case isGraphicsRegister(address):
		m.dev.GPU.WriteRegister(address, value)
	case address == addr.DMA:
		m.dma.Write(address, value)
	case address >= addr.HDMA1 && address <= addr.HDMA5:
		if m.color {
			m.dma.Write(address, value)
		}
	case address == addr.SVBK:
		if m.color {
			m.wramBank = value & 0x07
			if m.wramBank == 0 {
				m.wramBank = 1
			}
		}
	case address == addr.IE:
		m.dev.Interrupts.SetIE(value)
	case address >= addr.HRAMStart:
		m.hram[address-addr.HRAMStart] = value
	default:
		m.logger.Debug("write to unmapped io register",
			"address", fmt.Sprintf("0x%04X", address),
			"value", fmt.Sprintf("0x%02X", value))
	}
}

// MMUState is the bus-owned memory for snapshots.
type MMUState struct {
	WRAM     [8][wramBankSize]byte
	WRAMBank uint8
	HRAM     [0x7F]byte
	DMA      DMAState
}

func (m *MMU) Snapshot() MMUState {
	return MMUState{WRAM: m.wram, WRAMBank: m.wramBank, HRAM: m.hram, DMA: m.dma.snapshot()}
}

func (m *MMU) Restore(s MMUState) {
	m.wram = s.WRAM
	m.wramBank = s.WRAMBank
	if m.wramBank == 0 {
		m.wramBank = 1
	}
	m.hram = s.HRAM
	m.dma.restore(s.DMA)
}
