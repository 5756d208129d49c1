package memory

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

const (
	titleAddress         = 0x134
	titleLength          = 15
	cgbFlagAddress       = 0x143
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
	headerEnd            = 0x150
)

var (
	// ErrROMTooSmall is returned for images shorter than the header.
	ErrROMTooSmall = errors.New("cartridge: rom image smaller than header")
	// ErrUnsupportedCartridge is returned for unknown cartridge type bytes.
	ErrUnsupportedCartridge = errors.New("cartridge: unsupported cartridge type")
)

// Capabilities are the features derived from the cartridge header.
type Capabilities struct {
	MBC             MBCKind
	HasRAM          bool
	HasBattery      bool
	HasTimer        bool
	HasRumble       bool
	ExternalRAMSize int
	Color           bool
}

// Header holds the parsed cartridge header fields.
type Header struct {
	Title    string
	CartType uint8
	ROMSize  uint8
	RAMSize  uint8
}

// Cartridge owns the ROM image, its external RAM and the bank controller.
type Cartridge struct {
	rom    []byte
	header Header
	caps   Capabilities
	mbc    BankController
	ram    *ExternalRAM
}

// CartridgeOption configures cartridge loading.
type CartridgeOption func(*cartridgeConfig)

type cartridgeConfig struct {
	clock Clock
	color *bool
}

// WithClock sets the time source for MBC3 timers.
func WithClock(c Clock) CartridgeOption {
	return func(cfg *cartridgeConfig) { cfg.clock = c }
}

// WithColorMode overrides the color flag read from the header.
func WithColorMode(color bool) CartridgeOption {
	return func(cfg *cartridgeConfig) { cfg.color = &color }
}

type cartType struct {
	mbc                         MBCKind
	ram, battery, timer, rumble bool
}

var cartTypes = map[uint8]cartType{
	0x00: {mbc: MBCNone},
	0x01: {mbc: MBC1},
	0x02: {mbc: MBC1, ram: true},
	0x03: {mbc: MBC1, ram: true, battery: true},
	0x05: {mbc: MBC2, ram: true},
	0x06: {mbc: MBC2, ram: true, battery: true},
	0x08: {mbc: MBCNone, ram: true},
	0x09: {mbc: MBCNone, ram: true, battery: true},
	0x0F: {mbc: MBC3, timer: true, battery: true},
	0x10: {mbc: MBC3, timer: true, ram: true, battery: true},
	0x11: {mbc: MBC3},
	0x12: {mbc: MBC3, ram: true},
	0x13: {mbc: MBC3, ram: true, battery: true},
	0x19: {mbc: MBC5},
	0x1A: {mbc: MBC5, ram: true},
	0x1B: {mbc: MBC5, ram: true, battery: true},
	0x1C: {mbc: MBC5, rumble: true},
	0x1D: {mbc: MBC5, rumble: true, ram: true},
	0x1E: {mbc: MBC5, rumble: true, ram: true, battery: true},
}

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 0x800,
	0x02: 0x2000,
	0x03: 0x8000,
	0x04: 0x20000,
	0x05: 0x10000,
}

// NewCartridge parses the header of rom and selects its bank controller.
func NewCartridge(rom []byte, opts ...CartridgeOption) (*Cartridge, error) {
	if len(rom) < headerEnd {
		return nil, ErrROMTooSmall
	}

	cfg := cartridgeConfig{clock: SystemClock}
	for _, opt := range opts {
		opt(&cfg)
	}

	header := Header{
		Title:    cleanTitle(rom[titleAddress : titleAddress+titleLength]),
		CartType: rom[cartridgeTypeAddress],
		ROMSize:  rom[romSizeAddress],
		RAMSize:  rom[ramSizeAddress],
	}

	kind, ok := cartTypes[header.CartType]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedCartridge, header.CartType)
	}

	flag := rom[cgbFlagAddress]
	caps := Capabilities{
		MBC:        kind.mbc,
		HasRAM:     kind.ram,
		HasBattery: kind.battery,
		HasTimer:   kind.timer,
		HasRumble:  kind.rumble,
		Color:      flag == 0x80 || flag == 0xC0,
	}
	if cfg.color != nil {
		caps.Color = *cfg.color
	}
	if kind.ram {
		caps.ExternalRAMSize = ramSizes[header.RAMSize]
	}
	if kind.mbc == MBC2 {
		caps.ExternalRAMSize = mbc2RAMSize
	}

	return &Cartridge{
		rom:    rom,
		header: header,
		caps:   caps,
		mbc:    newBankController(kind.mbc, cfg.clock),
		ram:    newExternalRAM(caps.ExternalRAMSize),
	}, nil
}

// NewEmptyCartridge returns a 32KiB ROM-only cartridge filled with zeros,
// which executes as a stream of NOPs.
func NewEmptyCartridge() *Cartridge {
	return &Cartridge{
		rom:    make([]byte, 2*romBankSize),
		header: Header{Title: "(Untitled)"},
		mbc:    newBankController(MBCNone, nil),
		ram:    newExternalRAM(0),
	}
}

func (c *Cartridge) view() romView {
	return romView{rom: c.rom, hasTimer: c.caps.HasTimer}
}

// Read reads through the bank controller, for 0x0000-0x7FFF and 0xA000-0xBFFF.
func (c *Cartridge) Read(address uint16) byte {
	return c.mbc.read(c.view(), c.ram, address)
}

// Write goes to the bank controller registers or external RAM.
func (c *Cartridge) Write(address uint16, value byte) {
	c.mbc.write(c.view(), c.ram, address, value)
}

// ReadROM reads a raw ROM byte, ignoring banking. Out of range reads return 0xFF.
func (c *Cartridge) ReadROM(offset int) byte {
	if offset < 0 || offset >= len(c.rom) {
		return 0xFF
	}
	return c.rom[offset]
}

// ROMRange returns a copy of length raw ROM bytes from offset.
func (c *Cartridge) ROMRange(offset, length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = c.ReadROM(offset + i)
	}
	return out
}

func (c *Cartridge) Header() Header {
	return c.header
}

func (c *Cartridge) Capabilities() Capabilities {
	return c.caps
}

// RAM exposes the external storage, for battery saves.
func (c *Cartridge) RAM() *ExternalRAM {
	return c.ram
}

// LoadRAM restores battery backed RAM.
func (c *Cartridge) LoadRAM(r io.Reader) error {
	return c.ram.Load(r)
}

// SaveRAM writes battery backed RAM.
func (c *Cartridge) SaveRAM(w io.Writer) error {
	return c.ram.Save(w)
}

// CartridgeState is the mutable part of a cartridge for snapshots.
type CartridgeState struct {
	MBC       BankControllerState
	RAM       []byte
	RAMActive bool
}

func (c *Cartridge) Snapshot() CartridgeState {
	return CartridgeState{
		MBC:       c.mbc.snapshot(),
		RAM:       append([]byte(nil), c.ram.data...),
		RAMActive: c.ram.active,
	}
}

func (c *Cartridge) Restore(s CartridgeState) {
	c.mbc.restore(s.MBC)
	copy(c.ram.data, s.RAM)
	c.ram.active = s.RAMActive
}

// cleanTitle turns the raw header title into printable text.
func cleanTitle(raw []byte) string {
	runes := make([]rune, 0, len(raw))
	for _, b := range raw {
		r := rune(b)
		switch {
		case r == 0:
			r = ' '
		case r > unicode.MaxASCII || !unicode.IsPrint(r):
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
