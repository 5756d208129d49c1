package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/jeebie-core/jeebie/addr"
)

const identityPalette = 0xE4

func fillTile(g *GPU, base uint16, low, high uint8) {
	for row := range 8 {
		g.WriteVRAM(base+uint16(row*2), low)
		g.WriteVRAM(base+uint16(row*2)+1, high)
	}
}

func renderFrame(g *GPU) *FrameBuffer {
	g.Tick(FrameCycles)
	return g.Frame()
}

func TestTileRow_Pixel(t *testing.T) {
	row := TileRow{Low: 0xA5, High: 0xC3}

	assert.Equal(t, uint8(3), row.Pixel(0, false))
	assert.Equal(t, uint8(2), row.Pixel(1, false))
	assert.Equal(t, uint8(1), row.Pixel(2, false))
	assert.Equal(t, uint8(0), row.Pixel(3, false))
	assert.Equal(t, uint8(3), row.Pixel(7, false))
	assert.Equal(t, uint8(3), row.Pixel(0, true))
	assert.Equal(t, uint8(2), row.Pixel(6, true))
}

func TestRender_Background(t *testing.T) {
	tests := []struct {
		name     string
		lcdc     uint8
		tileBase uint16
		tileID   uint8
		scx      uint8
		want     [4]GBColor
	}{
		{
			name:     "unsigned addressing",
			lcdc:     0x91,
			tileBase: 0x8010,
			tileID:   1,
			want:     [4]GBColor{DarkGreyColor, LightGreyColor, DarkGreyColor, LightGreyColor},
		},
		{
			name:     "signed addressing",
			lcdc:     0x81,
			tileBase: 0x8FF0,
			tileID:   0xFF,
			want:     [4]GBColor{DarkGreyColor, LightGreyColor, DarkGreyColor, LightGreyColor},
		},
		{
			name:     "horizontal scroll",
			lcdc:     0x91,
			tileBase: 0x8010,
			tileID:   1,
			scx:      1,
			want:     [4]GBColor{LightGreyColor, DarkGreyColor, LightGreyColor, DarkGreyColor},
		},
		{
			name:     "background disabled",
			lcdc:     0x90,
			tileBase: 0x8010,
			tileID:   1,
			want:     [4]GBColor{WhiteColor, WhiteColor, WhiteColor, WhiteColor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGPU(false)
			g.WriteRegister(addr.BGP, identityPalette)
			g.WriteRegister(addr.LCDC, tt.lcdc)
			g.WriteRegister(addr.SCX, tt.scx)
			// alternating color indexes 2 and 1
			fillTile(g, tt.tileBase, 0x55, 0xAA)
			for i := range 32 * 32 {
				g.WriteVRAM(0x9800+uint16(i), tt.tileID)
			}

			fb := renderFrame(g)
			for x, want := range tt.want {
				assert.Equal(t, want, fb.GetPixel(x, 0), "pixel %d", x)
			}
			assert.Equal(t, tt.want[0], fb.GetPixel(0, 143))
		})
	}
}

func TestRender_Window(t *testing.T) {
	g, _ := newTestGPU(false)
	g.WriteRegister(addr.BGP, identityPalette)
	// window on, map at 9C00, unsigned tiles
	g.WriteRegister(addr.LCDC, 0xF1)
	g.WriteRegister(addr.WY, 10)
	g.WriteRegister(addr.WX, 7+20)
	fillTile(g, 0x8010, 0xFF, 0xFF)
	for i := range 32 * 32 {
		g.WriteVRAM(0x9C00+uint16(i), 1)
	}

	fb := renderFrame(g)
	assert.Equal(t, WhiteColor, fb.GetPixel(25, 9))
	assert.Equal(t, WhiteColor, fb.GetPixel(19, 10))
	assert.Equal(t, BlackColor, fb.GetPixel(20, 10))
	assert.Equal(t, BlackColor, fb.GetPixel(159, 143))
}

func TestRender_Sprites(t *testing.T) {
	setup := func(flags uint8) *GPU {
		g, _ := newTestGPU(false)
		g.WriteRegister(addr.BGP, identityPalette)
		g.WriteRegister(addr.OBP0, identityPalette)
		g.WriteRegister(addr.OBP1, 0x1B)
		g.WriteRegister(addr.LCDC, 0x93)
		// background: left half of tile 1 is color 1, right half color 0
		fillTile(g, 0x8010, 0xF0, 0x00)
		for i := range 32 * 32 {
			g.WriteVRAM(0x9800+uint16(i), 1)
		}
		// sprite tile 2 is solid color 3
		fillTile(g, 0x8020, 0xFF, 0xFF)
		g.WriteOAM(0xFE00, 16)
		g.WriteOAM(0xFE01, 8)
		g.WriteOAM(0xFE02, 2)
		g.WriteOAM(0xFE03, flags)
		return g
	}

	t.Run("drawn over background", func(t *testing.T) {
		fb := renderFrame(setup(0))
		for x := range 8 {
			assert.Equal(t, BlackColor, fb.GetPixel(x, 0), "pixel %d", x)
		}
		assert.Equal(t, LightGreyColor, fb.GetPixel(8, 0))
		assert.Equal(t, LightGreyColor, fb.GetPixel(0, 8))
	})

	t.Run("behind non zero background", func(t *testing.T) {
		fb := renderFrame(setup(0x80))
		assert.Equal(t, LightGreyColor, fb.GetPixel(0, 0))
		assert.Equal(t, BlackColor, fb.GetPixel(4, 0))
	})

	t.Run("second palette", func(t *testing.T) {
		fb := renderFrame(setup(0x10))
		assert.Equal(t, WhiteColor, fb.GetPixel(0, 0))
	})

	t.Run("sprites disabled", func(t *testing.T) {
		g := setup(0)
		g.WriteRegister(addr.LCDC, 0x91)
		fb := renderFrame(g)
		assert.Equal(t, LightGreyColor, fb.GetPixel(0, 0))
	})
}

func TestRender_ColorBackground(t *testing.T) {
	g, _ := newTestGPU(true)
	// palette 2 color 1 is pure green
	g.WriteRegister(addr.BCPS, 0x80|(2*8+2))
	g.WriteRegister(addr.BCPD, 0xE0)
	g.WriteRegister(addr.BCPD, 0x03)

	// tile 1 in bank 1 is solid color 1
	g.WriteRegister(addr.VBK, 1)
	fillTile(g, 0x8010, 0xFF, 0x00)
	for i := range 32 * 32 {
		// attributes: palette 2, bank 1
		g.WriteVRAM(0x9800+uint16(i), 0x0A)
	}
	g.WriteRegister(addr.VBK, 0)
	for i := range 32 * 32 {
		g.WriteVRAM(0x9800+uint16(i), 1)
	}

	fb := renderFrame(g)
	assert.Equal(t, GBColor(0x00FF00FF), fb.GetPixel(0, 0))
	assert.Equal(t, GBColor(0x00FF00FF), fb.GetPixel(159, 143))
}

func TestRender_OverlappingSprites(t *testing.T) {
	tests := []struct {
		name      string
		low, high uint8
		want      [8]GBColor
	}{
		{
			name: "transparent front sprite",
			want: [8]GBColor{BlackColor, BlackColor, BlackColor, BlackColor, BlackColor, BlackColor, BlackColor, BlackColor},
		},
		{
			name: "front sprite opaque on the left",
			low:  0xF0,
			want: [8]GBColor{LightGreyColor, LightGreyColor, LightGreyColor, LightGreyColor, BlackColor, BlackColor, BlackColor, BlackColor},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := newTestGPU(false)
			g.WriteRegister(addr.BGP, identityPalette)
			g.WriteRegister(addr.OBP0, identityPalette)
			g.WriteRegister(addr.LCDC, 0x93)
			fillTile(g, 0x8020, 0xFF, 0xFF)
			fillTile(g, 0x8030, tt.low, tt.high)
			// sprite 0 wins every pixel it draws, sprite 1 sits underneath
			for i, tile := range []uint8{3, 2} {
				base := 0xFE00 + uint16(i*4)
				g.WriteOAM(base, 16)
				g.WriteOAM(base+1, 8)
				g.WriteOAM(base+2, tile)
				g.WriteOAM(base+3, 0)
			}

			fb := renderFrame(g)
			for x, want := range tt.want {
				assert.Equal(t, want, fb.GetPixel(x, 0), "pixel %d", x)
			}
		})
	}
}
