package memory

import "time"

// MBCKind selects one of the supported bank controller schemes. It is
// picked once from the cartridge header.
type MBCKind uint8

const (
	MBCNone MBCKind = iota
	MBC1
	MBC2
	MBC3
	MBC5
)

func (k MBCKind) String() string {
	switch k {
	case MBC1:
		return "MBC1"
	case MBC2:
		return "MBC2"
	case MBC3:
		return "MBC3"
	case MBC5:
		return "MBC5"
	}
	return "none"
}

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
	mbc2RAMSize = 0x200
)

// romView is the read-only cartridge data handed to the bank controller on
// every access.
type romView struct {
	rom      []byte
	hasTimer bool
}

func (v romView) at(bank int, offset uint16) byte {
	if len(v.rom) == 0 {
		return 0xFF
	}
	return v.rom[(bank*romBankSize+int(offset))%len(v.rom)]
}

// BankController maps the ROM and RAM windows for every MBC variant. The
// variant-specific fields are only meaningful for their own kind.
type BankController struct {
	kind MBCKind

	// romBank is the bank visible at 0x4000-0x7FFF. For MBC1 it holds the
	// low 5 bits and bank2 the upper 2.
	romBank uint16
	bank2   uint8
	ramBank uint8
	mode    uint8

	clock Clock
	rtc   rtc
}

func newBankController(kind MBCKind, clock Clock) BankController {
	b := BankController{kind: kind, clock: clock}
	b.reset()
	return b
}

// Kind returns the variant tag.
func (b *BankController) Kind() MBCKind {
	return b.kind
}

func (b *BankController) reset() {
	b.romBank = 1
	b.bank2 = 0
	b.ramBank = 0
	b.mode = 0
	b.rtc.reset(b.now())
}

func (b *BankController) now() time.Time {
	if b.clock == nil {
		return time.Unix(0, 0)
	}
	return b.clock.Now()
}

func (b *BankController) switchableBank() int {
	switch b.kind {
	case MBCNone:
		return 1
	case MBC1:
		return int(b.bank2)<<5 | int(b.romBank)
	default:
		return int(b.romBank)
	}
}

// read serves 0x0000-0x7FFF and 0xA000-0xBFFF.
func (b *BankController) read(view romView, ram *ExternalRAM, address uint16) byte {
	switch {
	case address < 0x4000:
		return view.at(0, address)
	case address < 0x8000:
		return view.at(b.switchableBank(), address-0x4000)
	case address >= 0xA000 && address < 0xC000:
		return b.readRAM(view, ram, address-0xA000)
	}
	return 0
}

func (b *BankController) readRAM(view romView, ram *ExternalRAM, offset uint16) byte {
	switch b.kind {
	case MBC2:
		if !ram.Active() {
			return 0
		}
		return ram.read(int(offset)%mbc2RAMSize) | 0xF0
	case MBC3:
		if b.ramBank >= 0x08 && b.ramBank <= 0x0C {
			if !ram.Active() || !view.hasTimer {
				return 0
			}
			return b.rtc.read(b.ramBank - 0x08)
		}
	}
	return ram.read(b.ramOffset(offset))
}

func (b *BankController) ramOffset(offset uint16) int {
	bank := int(b.ramBank)
	if b.kind == MBC1 {
		bank = 0
		if b.mode == 1 {
			bank = int(b.bank2)
		}
	}
	return bank*ramBankSize + int(offset)
}

// write handles bank register writes in the ROM range and RAM writes.
func (b *BankController) write(view romView, ram *ExternalRAM, address uint16, value byte) {
	if address >= 0xA000 && address < 0xC000 {
		b.writeRAM(view, ram, address-0xA000, value)
		return
	}
	if address >= 0x8000 {
		return
	}

	switch b.kind {
	case MBC1:
		b.writeMBC1(ram, address, value)
	case MBC2:
		b.writeMBC2(ram, address, value)
	case MBC3:
		b.writeMBC3(ram, address, value)
	case MBC5:
		b.writeMBC5(ram, address, value)
	}
}

func (b *BankController) writeRAM(view romView, ram *ExternalRAM, offset uint16, value byte) {
	switch b.kind {
	case MBC2:
		ram.write(int(offset)%mbc2RAMSize, value&0x0F)
		return
	case MBC3:
		if b.ramBank >= 0x08 && b.ramBank <= 0x0C {
			if ram.Active() && view.hasTimer {
				b.rtc.write(b.ramBank-0x08, value, b.now())
			}
			return
		}
	}
	ram.write(b.ramOffset(offset), value)
}

func (b *BankController) writeMBC1(ram *ExternalRAM, address uint16, value byte) {
	switch {
	case address < 0x2000:
		ram.setActive(value&0x0F == 0x0A)
	case address < 0x4000:
		b.romBank = uint16(value & 0x1F)
		if b.romBank == 0 {
			b.romBank = 1
		}
	case address < 0x6000:
		b.bank2 = value & 0x03
	default:
		b.mode = value & 0x01
	}
}

// writeMBC2 decodes on address bit 8: clear enables RAM, set selects a bank.
func (b *BankController) writeMBC2(ram *ExternalRAM, address uint16, value byte) {
	if address >= 0x4000 {
		return
	}
	if address&0x0100 == 0 {
		ram.setActive(value&0x0F == 0x0A)
		return
	}
	b.romBank = uint16(value & 0x0F)
	if b.romBank == 0 {
		b.romBank = 1
	}
}

func (b *BankController) writeMBC3(ram *ExternalRAM, address uint16, value byte) {
	switch {
	case address < 0x2000:
		ram.setActive(value&0x0F == 0x0A)
	case address < 0x4000:
		b.romBank = uint16(value & 0x7F)
		if b.romBank == 0 {
			b.romBank = 1
		}
	case address < 0x6000:
		b.ramBank = value & 0x0F
	default:
		b.rtc.writeLatch(value, b.now())
	}
}

func (b *BankController) writeMBC5(ram *ExternalRAM, address uint16, value byte) {
	switch {
	case address < 0x2000:
		ram.setActive(value&0x0F == 0x0A)
	case address < 0x3000:
		b.romBank = b.romBank&0x100 | uint16(value)
	case address < 0x4000:
		b.romBank = b.romBank&0xFF | uint16(value&0x01)<<8
	case address < 0x6000:
		b.ramBank = value & 0x0F
	}
}

// BankControllerState is the bank controller's part of a snapshot.
type BankControllerState struct {
	Kind       MBCKind
	ROMBank    uint16
	Bank2      uint8
	RAMBank    uint8
	Mode       uint8
	RTCLive    [5]uint8
	RTCLatched [5]uint8
	RTCArmed   bool
	RTCLast    int64
}

func (b *BankController) snapshot() BankControllerState {
	return BankControllerState{
		Kind:       b.kind,
		ROMBank:    b.romBank,
		Bank2:      b.bank2,
		RAMBank:    b.ramBank,
		Mode:       b.mode,
		RTCLive:    b.rtc.live,
		RTCLatched: b.rtc.latched,
		RTCArmed:   b.rtc.latchArm,
		RTCLast:    b.rtc.last,
	}
}

func (b *BankController) restore(s BankControllerState) {
	b.kind = s.Kind
	b.romBank = s.ROMBank
	b.bank2 = s.Bank2
	b.ramBank = s.RAMBank
	b.mode = s.Mode
	b.rtc = rtc{live: s.RTCLive, latched: s.RTCLatched, latchArm: s.RTCArmed, last: s.RTCLast}
}
