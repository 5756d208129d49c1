package render

import "github.com/valerio/jeebie-core/jeebie/video"

// PixelToShade maps a pixel to one of four shades, 0 darkest. Palette
// colors map exactly; anything else is bucketed by luminance.
func PixelToShade(pixel uint32) int {
	switch video.GBColor(pixel) {
	case video.BlackColor:
		return 0
	case video.DarkGreyColor:
		return 1
	case video.LightGreyColor:
		return 2
	case video.WhiteColor:
		return 3
	}

	r, g, b, _ := video.GBColor(pixel).RGBA()
	// Rec. 601 weights, scaled by 1000
	luma := (299*int(r) + 587*int(g) + 114*int(b)) / 1000
	return min(luma/64, 3)
}

// GetHalfBlockChar picks the block character drawing two stacked pixels in
// one cell. Equal shades use a full block.
func GetHalfBlockChar(topShade, bottomShade int) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == 3:
		return '▄'
	default:
		return '▀'
	}
}
