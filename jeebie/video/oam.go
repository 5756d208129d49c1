package video

import "github.com/valerio/jeebie-core/jeebie/bit"

const (
	spriteCount       = 40
	maxSpritesPerLine = 10
	oamSize           = spriteCount * 4
)

// Sprite is one decoded OAM entry, with hardware offsets removed.
type Sprite struct {
	Y, X      int
	TileIndex uint8
	Flags     uint8
	OAMIndex  int
	Height    int

	PaletteOBP1 bool
	FlipX       bool
	FlipY       bool
	BehindBG    bool

	// color only
	Palette uint8
	Bank    int

	// bit 7 is the leftmost pixel; set where this sprite won priority
	PixelMask uint8
}

func (s *Sprite) parseFlags() {
	s.PaletteOBP1 = bit.IsSet(4, s.Flags)
	s.FlipX = bit.IsSet(5, s.Flags)
	s.FlipY = bit.IsSet(6, s.Flags)
	s.BehindBG = bit.IsSet(7, s.Flags)
	s.Palette = s.Flags & 0x07
	s.Bank = int(bit.Value(3, s.Flags))
}

// Owns reports whether this sprite draws pixel x (0-7) of itself.
func (s *Sprite) Owns(x int) bool {
	if x < 0 || x > 7 {
		return false
	}
	return s.PixelMask&(1<<(7-x)) != 0
}

// OAM is object attribute memory: 40 entries of Y, X, tile, flags.
type OAM struct {
	data     [oamSize]byte
	priority SpritePriorityBuffer
	line     [maxSpritesPerLine]Sprite
}

func (o *OAM) read(offset uint16) uint8 {
	return o.data[offset]
}

func (o *OAM) write(offset uint16, v uint8) {
	o.data[offset] = v
}

func (o *OAM) sprite(index, height int) Sprite {
	base := index * 4
	s := Sprite{
		Y:         int(o.data[base]) - 16,
		X:         int(o.data[base+1]) - 8,
		TileIndex: o.data[base+2],
		Flags:     o.data[base+3],
		OAMIndex:  index,
		Height:    height,
	}
	s.parseFlags()
	return s
}

// Sprite returns entry index (0-39), or nil when out of range.
func (o *OAM) Sprite(index, height int) *Sprite {
	if index < 0 || index >= spriteCount {
		return nil
	}
	s := o.sprite(index, height)
	return &s
}

// ScanLine selects the sprites overlapping scanline: the first 10 found
// walking OAM from entry 0, with per pixel ownership already resolved.
// opaque returns the sprite's non-transparent pixels in PixelMask layout;
// only those are claimed, so a sprite shows through another's transparent
// pixels. A nil opaque treats every pixel as drawn.
func (o *OAM) ScanLine(scanline, height int, oamOrder bool, opaque func(*Sprite) uint8) []Sprite {
	sprites := o.line[:0]
	o.priority.Clear(oamOrder)

	for i := 0; i < spriteCount && len(sprites) < maxSpritesPerLine; i++ {
		y := int(o.data[i*4]) - 16
		if scanline < y || scanline >= y+height {
			continue
		}
		s := o.sprite(i, height)
		sprites = append(sprites, s)
		drawn := uint8(0xFF)
		if opaque != nil {
			drawn = opaque(&s)
		}
		for px := range 8 {
			if drawn&(1<<(7-px)) != 0 {
				o.priority.TryClaimPixel(s.X+px, s.OAMIndex, s.X)
			}
		}
	}

	for i := range sprites {
		var mask uint8
		for px := range 8 {
			if o.priority.GetOwner(sprites[i].X+px) == sprites[i].OAMIndex {
				mask |= 1 << (7 - px)
			}
		}
		sprites[i].PixelMask = mask
	}
	return sprites
}
