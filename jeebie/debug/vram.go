package debug

import (
	"fmt"

	"github.com/valerio/jeebie-core/jeebie/addr"
	"github.com/valerio/jeebie-core/jeebie/bit"
	"github.com/valerio/jeebie-core/jeebie/video"
)

const (
	VRAMBaseAddr     = 0x8000
	TileDataSize     = 16
	TilePixelWidth   = 8
	TilePixelHeight  = 8
	TilePatternCount = 384
	TilesPerRow      = 16
	TileRows         = 24
)

// TilePattern holds the 2 bit color indices of one tile.
type TilePattern struct {
	Index  int
	Pixels [TilePixelHeight][TilePixelWidth]uint8
}

type TilemapInfo struct {
	BackgroundActive bool
	WindowActive     bool
	BackgroundMap    uint16
	WindowMap        uint16
	SignedTileData   bool
	LCDCValue        uint8
}

type VRAMData struct {
	TilePatterns []TilePattern
	TilemapInfo  TilemapInfo
}

// ExtractVRAMData decodes every tile in the current VRAM bank along with
// the tile map selection from LCDC.
func ExtractVRAMData(reader MemoryReader) *VRAMData {
	data := &VRAMData{TilePatterns: make([]TilePattern, TilePatternCount)}

	for i := range TilePatternCount {
		base := uint16(VRAMBaseAddr + i*TileDataSize)
		pattern := TilePattern{Index: i}
		for y := range TilePixelHeight {
			row := video.TileRow{
				Low:  reader.Read(base + uint16(y*2)),
				High: reader.Read(base + uint16(y*2) + 1),
			}
			for x := range TilePixelWidth {
				pattern.Pixels[y][x] = row.Pixel(x, false)
			}
		}
		data.TilePatterns[i] = pattern
	}

	data.TilemapInfo = extractTilemapInfo(reader.Read(addr.LCDC))
	return data
}

func extractTilemapInfo(lcdc uint8) TilemapInfo {
	info := TilemapInfo{
		BackgroundActive: bit.IsSet(0, lcdc),
		WindowActive:     bit.IsSet(5, lcdc),
		BackgroundMap:    VRAMBaseAddr + addr.TileMap0,
		WindowMap:        VRAMBaseAddr + addr.TileMap0,
		SignedTileData:   !bit.IsSet(4, lcdc),
		LCDCValue:        lcdc,
	}
	if bit.IsSet(3, lcdc) {
		info.BackgroundMap = VRAMBaseAddr + addr.TileMap1
	}
	if bit.IsSet(6, lcdc) {
		info.WindowMap = VRAMBaseAddr + addr.TileMap1
	}
	return info
}

func (data *VRAMData) GetTileGrid() [][]TilePattern {
	grid := make([][]TilePattern, TileRows)
	for row := range TileRows {
		grid[row] = data.TilePatterns[row*TilesPerRow : (row+1)*TilesPerRow]
	}
	return grid
}

func (info *TilemapInfo) FormatSummary() string {
	bgStatus := "INACTIVE"
	if info.BackgroundActive {
		bgStatus = "ACTIVE"
	}
	winStatus := "INACTIVE"
	if info.WindowActive {
		winStatus = "ACTIVE"
	}
	return fmt.Sprintf("Background Map: 0x%04X [%s] | Window Map: 0x%04X [%s] | LCDC: 0x%02X",
		info.BackgroundMap, bgStatus, info.WindowMap, winStatus, info.LCDCValue)
}
