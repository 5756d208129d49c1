package debug

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
)

// OAMSpriteCount is the number of entries in object attribute memory.
const OAMSpriteCount = 40

const (
	oamEntrySize   = 4
	spriteYOffset  = 16
	spriteXOffset  = 8
	spritesPerLine = 10
)

// SpriteInfo is one OAM entry in screen coordinates.
type SpriteInfo struct {
	Index      int
	Y, X       int
	TileIndex  uint8
	Attributes uint8
	// IsVisible is set when the sprite covers the scanline it was read on.
	IsVisible bool
}

type SpriteAttributes struct {
	BackgroundPriority bool
	FlipY              bool
	FlipX              bool
	DMGPalette         int
	Bank               int
	ColorPalette       int
}

type OAMData struct {
	Sprites       []SpriteInfo
	CurrentLine   int
	ActiveSprites int
	SpriteHeight  int
}

func oamEntry(index int) uint16 {
	return addr.OAMStart + uint16(index*oamEntrySize)
}

// ExtractOAMData reads all 40 entries through reader. Sprites overlapping
// currentLine are flagged, without the ten per line limit.
func ExtractOAMData(reader MemoryReader, currentLine, spriteHeight int) *OAMData {
	data := &OAMData{
		Sprites:      make([]SpriteInfo, 0, OAMSpriteCount),
		CurrentLine:  currentLine,
		SpriteHeight: spriteHeight,
	}

	for i := range OAMSpriteCount {
		at := oamEntry(i)
		top := int(reader.Read(at)) - spriteYOffset
		visible := currentLine >= top && currentLine < top+spriteHeight
		if visible {
			data.ActiveSprites++
		}
		data.Sprites = append(data.Sprites, SpriteInfo{
			Index:      i,
			Y:          top,
			X:          int(reader.Read(at+1)) - spriteXOffset,
			TileIndex:  reader.Read(at + 2),
			Attributes: reader.Read(at + 3),
			IsVisible:  visible,
		})
	}
	return data
}

func (s *SpriteInfo) DecodeAttributes() SpriteAttributes {
	flags := s.Attributes
	return SpriteAttributes{
		BackgroundPriority: bit.IsSet(7, flags),
		FlipY:              bit.IsSet(6, flags),
		FlipX:              bit.IsSet(5, flags),
		DMGPalette:         int(bit.Value(4, flags)),
		Bank:               int(bit.Value(3, flags)),
		ColorPalette:       int(flags & 0x07),
	}
}

func (s *SpriteInfo) String() string {
	state := "OFF"
	if s.IsVisible {
		state = "ACTIVE"
	}
	return fmt.Sprintf("Sprite %2d: Y=%3d X=%3d  Tile=0x%02X Flags=0x%02X [%s]",
		s.Index, s.Y, s.X, s.TileIndex, s.Attributes, state)
}

// GetVisibleSprites returns the flagged sprites in OAM order.
func (data *OAMData) GetVisibleSprites() []SpriteInfo {
	var out []SpriteInfo
	for _, s := range data.Sprites {
		if s.IsVisible {
			out = append(out, s)
		}
	}
	return out
}

func (data *OAMData) FormatSummary() string {
	return fmt.Sprintf("Current Line: %d | Active Sprites: %d/%d | Height: %dpx",
		data.CurrentLine, data.ActiveSprites, spritesPerLine, data.SpriteHeight)
}
