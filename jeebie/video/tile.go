package video

// TileRow is one 8 pixel row of a tile in the 2bpp planar format: the low
// byte holds bit 0 of every pixel and the high byte bit 1, with bit 7 the
// leftmost pixel.
type TileRow struct {
	Low  byte
	High byte
}

// Pixel returns the color index (0-3) of pixel x, 0 being the leftmost.
func (t TileRow) Pixel(x int, flipX bool) uint8 {
	shift := uint(7 - x)
	if flipX {
		shift = uint(x)
	}
	return (t.Low>>shift)&1 | ((t.High>>shift)&1)<<1
}
