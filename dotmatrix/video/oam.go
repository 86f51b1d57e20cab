package video

import (
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
)

// maxSpritesPerLine is the hardware limit on sprites influencing one scanline.
const maxSpritesPerLine = 10

// Sprite is one decoded OAM entry. Stored coordinates keep the hardware
// offsets: y is screen row + 16, x is screen column + 8.
type Sprite struct {
	y         uint8
	x         uint8
	tileIndex uint8
	bgOverObj bool
	xFlip     bool
	yFlip     bool
	palette   bool // false: OBP0, true: OBP1
}

func newSprite(y, x, tileIndex, flags uint8) Sprite {
	return Sprite{
		y:         y,
		x:         x,
		tileIndex: tileIndex,
		bgOverObj: bit.IsSet(7, flags),
		yFlip:     bit.IsSet(6, flags),
		xFlip:     bit.IsSet(5, flags),
		palette:   bit.IsSet(4, flags),
	}
}

// visible reports whether this sprite covers the given scanline. Sprites
// pushed fully above the screen (y < 16) or parked at x == 0 never match.
func (s Sprite) visible(ly uint8) bool {
	if s.y < 16 || s.x == 0 {
		return false
	}
	top := int(s.y) - 16
	return int(ly) >= top && int(ly) < top+8
}

// scanOAM walks the 40 OAM slots in order and keeps the first ten sprites
// visible on the given line, mirroring the hardware's OAM-scan mode.
func scanOAM(mmu *memory.MMU, ly uint8) []Sprite {
	var result []Sprite
	for i := uint16(0); i < 40; i++ {
		address := addr.OAMStart + i*4
		sprite := newSprite(
			mmu.Read(address),
			mmu.Read(address+1),
			mmu.Read(address+2),
			mmu.Read(address+3),
		)
		if sprite.visible(ly) {
			result = append(result, sprite)
		}
		if len(result) == maxSpritesPerLine {
			break
		}
	}
	return result
}
