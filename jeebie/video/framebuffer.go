package video

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
)

// GBColor is an RGBA8888 pixel value.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// RGBA splits the color into its channels.
func (c GBColor) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// FrameBuffer is a 160x144 image, one GBColor per pixel.
type FrameBuffer struct {
	buffer [FramebufferWidth * FramebufferHeight]uint32
}

func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Fill(WhiteColor)
	return fb
}

func (fb *FrameBuffer) GetPixel(x, y int) GBColor {
	return GBColor(fb.buffer[y*FramebufferWidth+x])
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*FramebufferWidth+x] = uint32(color)
}

// Fill sets every pixel to color.
func (fb *FrameBuffer) Fill(color GBColor) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToSlice exposes the pixels row by row.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer[:]
}
