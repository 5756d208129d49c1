package addr

// memory map boundaries
const (
	ROMBank0Start   uint16 = 0x0000
	ROMBankNStart   uint16 = 0x4000
	VRAMStart       uint16 = 0x8000
	ExtRAMStart     uint16 = 0xA000
	WRAMBank0Start  uint16 = 0xC000
	WRAMBankNStart  uint16 = 0xD000
	EchoStart       uint16 = 0xE000
	OAMStart        uint16 = 0xFE00
	OAMEnd          uint16 = 0xFE9F
	UnusableStart   uint16 = 0xFEA0
	IOStart         uint16 = 0xFF00
	HRAMStart       uint16 = 0xFF80
	HRAMEnd         uint16 = 0xFFFE
	CartHeaderTitle uint16 = 0x0134
)

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// BG Palette register.
	BGP uint16 = 0xFF47
	// Object Palette 0 register.
	OBP0 uint16 = 0xFF48
	// Object Palette 1 register.
	OBP1 uint16 = 0xFF49
	// Window Y Position register.
	WY uint16 = 0xFF4A
	// Window X Position register.
	WX uint16 = 0xFF4B
	// VBK selects the VRAM bank (color mode only).
	VBK uint16 = 0xFF4F
	// BCPS/BCPD index and data for background color palettes.
	BCPS uint16 = 0xFF68
	BCPD uint16 = 0xFF69
	// OCPS/OCPD index and data for object color palettes.
	OCPS uint16 = 0xFF6A
	OCPD uint16 = 0xFF6B
)

// dma registers
const (
	// DMA starts an OAM transfer from value*0x100.
	DMA uint16 = 0xFF46
	// HDMA1/HDMA2 hold the VRAM DMA source (high, low).
	HDMA1 uint16 = 0xFF51
	HDMA2 uint16 = 0xFF52
	// HDMA3/HDMA4 hold the VRAM DMA destination (high, low).
	HDMA3 uint16 = 0xFF53
	HDMA4 uint16 = 0xFF54
	// HDMA5 holds length and mode, writing it starts or aborts a transfer.
	HDMA5 uint16 = 0xFF55
)

// misc color mode registers
const (
	// KEY1 is the speed switch register.
	KEY1 uint16 = 0xFF4D
	// SVBK selects the switchable work RAM bank.
	SVBK uint16 = 0xFF70
)

// Audio registers, owned by the audio collaborator.
const (
	AudioStart uint16 = 0xFF10
	AudioEnd   uint16 = 0xFF3F

	NR10 uint16 = 0xFF10 // ch1 sweep
	NR11 uint16 = 0xFF11 // ch1 length & duty
	NR12 uint16 = 0xFF12 // ch1 envelope
	NR13 uint16 = 0xFF13 // ch1 period low
	NR14 uint16 = 0xFF14 // ch1 period high & control

	NR21 uint16 = 0xFF16
	NR22 uint16 = 0xFF17
	NR23 uint16 = 0xFF18
	NR24 uint16 = 0xFF19

	NR30 uint16 = 0xFF1A // ch3 DAC enable
	NR31 uint16 = 0xFF1B
	NR32 uint16 = 0xFF1C
	NR33 uint16 = 0xFF1D
	NR34 uint16 = 0xFF1E

	NR41 uint16 = 0xFF20
	NR42 uint16 = 0xFF21
	NR43 uint16 = 0xFF22
	NR44 uint16 = 0xFF23

	NR50 uint16 = 0xFF24 // master volume
	NR51 uint16 = 0xFF25 // panning
	NR52 uint16 = 0xFF26 // power and channel status

	WaveRAMStart uint16 = 0xFF30
	WaveRAMEnd   uint16 = 0xFF3F
)

// tile data and tile maps, relative to the start of VRAM
const (
	TileData0 uint16 = 0x0000
	TileData2 uint16 = 0x1000
	TileMap0  uint16 = 0x1800
	TileMap1  uint16 = 0x1C00
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// joypad
const (
	// P1 is used to read the Joypad state.
	P1 uint16 = 0xFF00
)

// serial I/O
const (
	// SB holds the byte being shifted out.
	SB uint16 = 0xFF01
	// SC starts a transfer when bits 7 and 0 are set.
	SC uint16 = 0xFF02
)

// timers
const (
	// DIV is the divider register. Incremented 16384 times/s, writing to it resets it.
	DIV uint16 = 0xFF04
	// TIMA is the timer counter register. Generates an interrupt when it overflows.
	TIMA uint16 = 0xFF05
	// TMA is the timer modulo register. When TIMA overflows, this data will be loaded.
	TMA uint16 = 0xFF06
	// TAC is the timer control register. Used to start/stop and control the timer clock.
	TAC uint16 = 0xFF07
)

// Interrupt is a single interrupt source, encoded as its bit in IE/IF.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the GPU has completed a frame.
	VBlankInterrupt Interrupt = 1
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt Interrupt = 1 << 1
	// TimerInterrupt is fired when TIMA overflows.
	TimerInterrupt Interrupt = 1 << 2
	// SerialInterrupt is fired when a serial transfer has completed.
	SerialInterrupt Interrupt = 1 << 3
	// JoypadInterrupt is fired when a button goes from released to pressed.
	JoypadInterrupt Interrupt = 1 << 4
)

// Interrupts lists every source in servicing priority order.
var Interrupts = [5]Interrupt{
	VBlankInterrupt,
	LCDSTATInterrupt,
	TimerInterrupt,
	SerialInterrupt,
	JoypadInterrupt,
}

// Vector returns the fixed handler address for the interrupt.
func (i Interrupt) Vector() uint16 {
	switch i {
	case VBlankInterrupt:
		return 0x40
	case LCDSTATInterrupt:
		return 0x48
	case TimerInterrupt:
		return 0x50
	case SerialInterrupt:
		return 0x58
	case JoypadInterrupt:
		return 0x60
	}
	return 0
}

func (i Interrupt) String() string {
	switch i {
	case VBlankInterrupt:
		return "vblank"
	case LCDSTATInterrupt:
		return "lcdstat"
	case TimerInterrupt:
		return "timer"
	case SerialInterrupt:
		return "serial"
	case JoypadInterrupt:
		return "joypad"
	}
	return "unknown"
}
