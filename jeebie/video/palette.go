package video

var dmgShades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

// dmgColor maps a 2 bit color index through a BGP/OBP style palette register.
func dmgColor(palette uint8, index uint8) GBColor {
	return dmgShades[(palette>>(index*2))&0x03]
}

// colorPalettes is one bank of color palette RAM: 8 palettes of 4 RGB555
// colors, little endian. Writes go through an index register whose bit 7
// enables auto increment.
type colorPalettes struct {
	data  [64]byte
	index uint8
}

func (p *colorPalettes) reset() {
	for i := range p.data {
		p.data[i] = 0xFF
	}
	p.index = 0
}

func (p *colorPalettes) readIndex() uint8 {
	return p.index | 0x40
}

func (p *colorPalettes) writeIndex(v uint8) {
	p.index = v & 0xBF
}

func (p *colorPalettes) readData() uint8 {
	return p.data[p.index&0x3F]
}

func (p *colorPalettes) writeData(v uint8) {
	p.data[p.index&0x3F] = v
	if p.index&0x80 != 0 {
		p.index = 0x80 | (p.index+1)&0x3F
	}
}

// color decodes color index of palette into RGBA, expanding 5 bit channels.
func (p *colorPalettes) color(palette, index uint8) GBColor {
	offset := (palette&0x07)*8 + index*2
	raw := uint16(p.data[offset]) | uint16(p.data[offset+1])<<8
	r := uint32(raw & 0x1F)
	g := uint32(raw>>5) & 0x1F
	b := uint32(raw>>10) & 0x1F
	r, g, b = r<<3|r>>2, g<<3|g>>2, b<<3|b>>2
	return GBColor(r<<24 | g<<16 | b<<8 | 0xFF)
}
