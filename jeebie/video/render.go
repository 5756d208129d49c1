package video

import (
	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// tile attributes, color mode only
const (
	attrPalette  = 0x07
	attrBank     = 3
	attrFlipX    = 5
	attrFlipY    = 6
	attrPriority = 7
)

// tileRow fetches row (0-7) of tile index from bank, honoring the LCDC
// addressing mode for background and window tiles.
func (g *GPU) tileRow(bank int, index uint8, row int) TileRow {
	var base int
	if bit.IsSet(4, g.lcdc) {
		base = int(index) * 16
	} else {
		base = int(addr.TileData2) + int(int8(index))*16
	}
	offset := base + row*2
	return TileRow{Low: g.vram[bank][offset], High: g.vram[bank][offset+1]}
}

func (g *GPU) renderScanline() {
	y := int(g.ly)
	if y >= visibleLines {
		return
	}

	g.renderBackground(y)
	g.renderWindow(y)
	if bit.IsSet(1, g.lcdc) {
		g.renderSprites(y)
	}
}

// drawTilePixel fetches one pixel of the tile map entry at mapOffset and
// records its color index for sprite priority.
func (g *GPU) drawTilePixel(x, y int, mapOffset int, tx, ty int) {
	index := g.vram[0][mapOffset]
	var attrs uint8
	if g.color {
		attrs = g.vram[1][mapOffset]
	}

	row := ty
	if bit.IsSet(attrFlipY, attrs) {
		row = 7 - row
	}
	tile := g.tileRow(int(bit.Value(attrBank, attrs)), index, row)
	ci := tile.Pixel(tx, bit.IsSet(attrFlipX, attrs))

	g.bgIndex[x] = ci
	g.bgPriority[x] = bit.IsSet(attrPriority, attrs)
	if g.color {
		g.back.SetPixel(x, y, g.bgPalettes.color(attrs&attrPalette, ci))
	} else {
		g.back.SetPixel(x, y, dmgColor(g.bgp, ci))
	}
}

func (g *GPU) renderBackground(y int) {
	// monochrome hardware blanks background and window when LCDC bit 0 is clear
	if !g.color && !bit.IsSet(0, g.lcdc) {
		for x := range FramebufferWidth {
			g.bgIndex[x] = 0
			g.bgPriority[x] = false
			g.back.SetPixel(x, y, WhiteColor)
		}
		return
	}

	mapBase := int(addr.TileMap0)
	if bit.IsSet(3, g.lcdc) {
		mapBase = int(addr.TileMap1)
	}
	py := (y + int(g.scy)) & 0xFF
	for x := range FramebufferWidth {
		px := (x + int(g.scx)) & 0xFF
		offset := mapBase + (py/8)*32 + px/8
		g.drawTilePixel(x, y, offset, px%8, py%8)
	}
}

func (g *GPU) renderWindow(y int) {
	if !bit.IsSet(5, g.lcdc) || y < int(g.wy) || g.wx > 166 {
		return
	}
	if !g.color && !bit.IsSet(0, g.lcdc) {
		return
	}

	mapBase := int(addr.TileMap0)
	if bit.IsSet(6, g.lcdc) {
		mapBase = int(addr.TileMap1)
	}
	startX := int(g.wx) - 7
	wy := g.windowLine
	for x := max(startX, 0); x < FramebufferWidth; x++ {
		wx := x - startX
		offset := mapBase + (wy/8)*32 + wx/8
		g.drawTilePixel(x, y, offset, wx%8, wy%8)
	}
	g.windowLine++
}

func (g *GPU) renderSprites(y int) {
	height := g.SpriteHeight()
	sprites := g.oam.ScanLine(y, height, g.color, func(s *Sprite) uint8 {
		tile := g.spriteRow(s, y, height)
		var mask uint8
		for px := range 8 {
			if tile.Pixel(px, s.FlipX) != 0 {
				mask |= 1 << (7 - px)
			}
		}
		return mask
	})

	for i := range sprites {
		s := &sprites[i]
		if s.PixelMask == 0 {
			continue
		}

		tile := g.spriteRow(s, y, height)
		for px := range 8 {
			x := s.X + px
			if x < 0 || x >= FramebufferWidth || !s.Owns(px) {
				continue
			}
			ci := tile.Pixel(px, s.FlipX)
			if ci == 0 {
				continue
			}
			if g.behindBackground(x, s) {
				continue
			}
			g.back.SetPixel(x, y, g.spriteColor(s, ci))
		}
	}
}

// spriteRow fetches the row of s drawn on scanline y. Sprites always use
// unsigned addressing from 8000, and tall sprites ignore bit 0 of the tile.
func (g *GPU) spriteRow(s *Sprite, y, height int) TileRow {
	row := y - s.Y
	if s.FlipY {
		row = height - 1 - row
	}
	tileIndex := s.TileIndex
	if height == 16 {
		tileIndex &= 0xFE
	}
	bank := 0
	if g.color {
		bank = s.Bank
	}
	offset := int(tileIndex)*16 + row*2
	return TileRow{Low: g.vram[bank][offset], High: g.vram[bank][offset+1]}
}

// behindBackground reports whether the background pixel at x covers s.
// Color mode with LCDC bit 0 clear always draws sprites on top.
func (g *GPU) behindBackground(x int, s *Sprite) bool {
	if g.bgIndex[x] == 0 {
		return false
	}
	if g.color && !bit.IsSet(0, g.lcdc) {
		return false
	}
	return s.BehindBG || g.bgPriority[x]
}

func (g *GPU) spriteColor(s *Sprite, ci uint8) GBColor {
	if g.color {
		return g.objPalettes.color(s.Palette, ci)
	}
	if s.PaletteOBP1 {
		return dmgColor(g.obp1, ci)
	}
	return dmgColor(g.obp0, ci)
}
