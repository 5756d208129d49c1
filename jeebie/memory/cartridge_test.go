package memory

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCartridge_Header(t *testing.T) {
	tests := []struct {
		name     string
		cartType uint8
		ramSize  uint8
		want     Capabilities
	}{
		{"rom only", 0x00, 0, Capabilities{MBC: MBCNone}},
		{"mbc1 ram battery", 0x03, 0x02, Capabilities{MBC: MBC1, HasRAM: true, HasBattery: true, ExternalRAMSize: 0x2000}},
		{"mbc2", 0x05, 0, Capabilities{MBC: MBC2, HasRAM: true, ExternalRAMSize: mbc2RAMSize}},
		{"mbc3 timer", 0x10, 0x03, Capabilities{MBC: MBC3, HasRAM: true, HasBattery: true, HasTimer: true, ExternalRAMSize: 0x8000}},
		{"mbc5 rumble", 0x1C, 0x03, Capabilities{MBC: MBC5, HasRumble: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCartridge(makeROM(tt.cartType, tt.ramSize, 2))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Capabilities())
			assert.Equal(t, tt.want.MBC, c.mbc.Kind())
			assert.Equal(t, "TESTCART", c.Header().Title)
			assert.Equal(t, tt.cartType, c.Header().CartType)
		})
	}
}

func TestNewCartridge_Errors(t *testing.T) {
	_, err := NewCartridge(make([]byte, 0x100))
	assert.ErrorIs(t, err, ErrROMTooSmall)

	_, err = NewCartridge(makeROM(0xFC, 0, 2))
	assert.ErrorIs(t, err, ErrUnsupportedCartridge)
	assert.Contains(t, err.Error(), "0xFC")
}

func TestNewCartridge_ColorFlag(t *testing.T) {
	rom := makeROM(0x00, 0, 2)
	rom[cgbFlagAddress] = 0x80

	c, err := NewCartridge(rom)
	require.NoError(t, err)
	assert.True(t, c.Capabilities().Color)

	c, err = NewCartridge(rom, WithColorMode(false))
	require.NoError(t, err)
	assert.False(t, c.Capabilities().Color)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "(Untitled)", cleanTitle(make([]byte, titleLength)))
	assert.Equal(t, "TETRIS", cleanTitle([]byte("TETRIS\x00\x00\x00")))
	assert.Equal(t, "A?B", cleanTitle([]byte{'A', 0x01, 'B'}))
}

func TestEmptyCartridge(t *testing.T) {
	c := NewEmptyCartridge()
	assert.Equal(t, uint8(0), c.Read(0x0100))
	assert.Equal(t, uint8(0), c.Read(0x7FFF))
	assert.Equal(t, "(Untitled)", c.Header().Title)
}

func TestCartridge_ROMRange(t *testing.T) {
	c := newTestCartridge(t, 0x00, 0, 2)
	assert.Equal(t, []byte{0, 1, 1}, c.ROMRange(romBankSize-1, 3))
	assert.Equal(t, []byte{1, 0xFF}, c.ROMRange(2*romBankSize-1, 2))
}

func TestCartridge_SaveLoadRAM(t *testing.T) {
	c := newTestCartridge(t, 0x03, 0x02, 2)
	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x12)
	c.Write(0xBFFF, 0x34)

	var buf bytes.Buffer
	require.NoError(t, c.SaveRAM(&buf))
	assert.Equal(t, 0x2000, buf.Len())
	assert.False(t, c.RAM().Dirty())

	other := newTestCartridge(t, 0x03, 0x02, 2)
	require.NoError(t, other.LoadRAM(&buf))
	other.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0x12), other.Read(0xA000))
	assert.Equal(t, uint8(0x34), other.Read(0xBFFF))

	// short save files are accepted
	short := newTestCartridge(t, 0x03, 0x02, 2)
	require.NoError(t, short.LoadRAM(bytes.NewReader([]byte{0x77})))
	short.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0x77), short.Read(0xA000))
}
