package video

// SpritePriorityBuffer tracks which sprite owns each pixel of a scanline.
//
// In monochrome mode the sprite with the lower X wins a pixel, and equal X
// falls back to the lower OAM index:
//
//	Pixels:     0  1  2  3  4  5  6  7  8  9 10 11 12 13 14 15 16 17
//	Sprite 0:                  [-----A-----]                    (X=5, OAM=0)
//	Sprite 1:                           [-----B-----]           (X=10, OAM=1)
//	Result:                    [-----A-----]--B-----]
//
// In color mode only the OAM index matters.
//
// Ownership is resolved while sprites are selected so the renderer never has
// to sort them.
type SpritePriorityBuffer struct {
	// -1 means unowned
	ownerIndex [FramebufferWidth]int
	ownerX     [FramebufferWidth]int
	oamOrder   bool
}

// Clear resets the buffer for a new scanline.
func (s *SpritePriorityBuffer) Clear(oamOrder bool) {
	s.oamOrder = oamOrder
	for i := range FramebufferWidth {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

// TryClaimPixel claims pixelX for the sprite if it beats the current owner.
func (s *SpritePriorityBuffer) TryClaimPixel(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return false
	}

	current := s.ownerIndex[pixelX]
	wins := current == -1
	if !wins && !s.oamOrder {
		currentX := s.ownerX[pixelX]
		wins = spriteX < currentX || (spriteX == currentX && spriteIndex < current)
	}
	if !wins && s.oamOrder {
		wins = spriteIndex < current
	}
	if wins {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
	}
	return wins
}

// GetOwner returns the OAM index owning pixelX, or -1.
func (s *SpritePriorityBuffer) GetOwner(pixelX int) int {
	if pixelX < 0 || pixelX >= FramebufferWidth {
		return -1
	}
	return s.ownerIndex[pixelX]
}
