package video

import (
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
)

type fifoState uint8

const (
	fifoBgWindow fifoState = iota
	fifoSprite
)

type overlapKind uint8

const (
	overlapNone overlapKind = iota
	overlapWindow
	overlapSprite
)

// fifo is the pixel queue between the fetcher and the screen. It pops one
// pixel per dot while more than 8 pixels are queued, so a sprite fetch
// always has a full tile's worth of background to merge into. Window and
// sprite overlap checks run against the pixel about to leave the queue.
type fifo struct {
	mmu     *memory.MMU
	fetcher fetcher

	state   fifoState
	x, y    uint8
	queue   []Pixel
	sprites []Sprite
}

func newFifo(mmu *memory.MMU) fifo {
	return fifo{
		mmu:     mmu,
		fetcher: newFetcher(mmu),
		queue:   make([]Pixel, 0, 16),
	}
}

// init points the FIFO at the start of a new scanline.
func (f *fifo) init(y uint8) {
	f.x = 0
	f.y = y
	f.queue = f.queue[:0]
	f.sprites = nil
	f.state = fifoBgWindow
	f.fetcher.init(f.typeAt(f.x), f.x, y)
}

// setSprites installs the line's OAM-scan selection.
func (f *fifo) setSprites(sprites []Sprite) {
	f.sprites = sprites
}

// clear drops all queued pixels and the sprite selection.
func (f *fifo) clear() {
	f.queue = f.queue[:0]
	f.sprites = nil
}

// tick advances the FIFO by one dot, returning a pixel when one is emitted.
func (f *fifo) tick() (Pixel, bool) {
	switch f.state {
	case fifoBgWindow:
		var out Pixel
		emitted := false
		if len(f.queue) > 8 {
			switch f.overlap(f.queue[0].ptype, f.x) {
			case overlapWindow:
				// restart fetching as window from this position
				f.queue = f.queue[:0]
				f.fetcher.init(WindowPixel, f.x, f.y)
				return Pixel{}, false
			case overlapSprite:
				sprite, _ := f.spriteAt(f.x)
				f.state = fifoSprite
				f.fetcher.init(SpritePixel, f.x, f.y)
				f.fetcher.oamX = sprite.x
				f.fetcher.oamY = sprite.y
				f.fetcher.xFlip = sprite.xFlip
				f.fetcher.yFlip = sprite.yFlip
				f.fetcher.palette = sprite.palette
				f.fetcher.bgOverObj = sprite.bgOverObj
				f.fetcher.tileAddr = addr.TileData0 + uint16(sprite.tileIndex)*16
				return Pixel{}, false
			}
			out = f.queue[0]
			f.queue = f.queue[1:]
			f.x++
			emitted = true
		}
		if len(f.fetcher.buffer) > 0 {
			if len(f.queue) <= 8 {
				f.queue = append(f.queue, f.fetcher.buffer...)
				next := f.x + uint8(len(f.queue))
				f.fetcher.init(f.typeAt(next), next, f.y)
			}
		} else {
			f.fetcher.tick()
		}
		return out, emitted
	case fifoSprite:
		if len(f.fetcher.buffer) > 0 {
			f.mergeSprite(f.fetcher.buffer)
			f.state = fifoBgWindow
			next := f.x + uint8(len(f.queue))
			f.fetcher.init(f.typeAt(next), next, f.y)
		} else {
			f.fetcher.tick()
		}
		return Pixel{}, false
	}

	return Pixel{}, false
}

// mergeSprite overlays fetched sprite pixels onto the front of the queue.
// Transparent sprite pixels, and background-priority sprite pixels over a
// nonzero color, leave the existing color but still claim the pixel's type,
// so a second sprite at the same position does not fetch again.
func (f *fifo) mergeSprite(buffer []Pixel) {
	for i, px := range buffer {
		if px.bgOverObj {
			if f.queue[i].color == 0 {
				f.queue[i] = px
			} else {
				f.queue[i].ptype = SpritePixel
			}
		} else {
			if px.color != 0 {
				f.queue[i] = px
			} else {
				f.queue[i].ptype = SpritePixel
			}
		}
	}
}

// overlap decides whether the pixel leaving the queue at x must be replaced
// by a window restart or a sprite fetch first.
func (f *fifo) overlap(ptype PixelType, x uint8) overlapKind {
	switch ptype {
	case BGPixel:
		if f.windowAt(x) {
			return overlapWindow
		}
		if f.spriteVisibleAt(x) {
			return overlapSprite
		}
	case WindowPixel:
		if f.spriteVisibleAt(x) {
			return overlapSprite
		}
	}
	return overlapNone
}

// windowAt reports whether the window covers screen position x on this line.
func (f *fifo) windowAt(x uint8) bool {
	lcdc := f.mmu.Read(addr.LCDC)
	if !bit.IsSet(5, lcdc) {
		return false
	}
	wy := f.mmu.Read(addr.WY)
	wx := f.mmu.Read(addr.WX)
	return x >= wx-7 && f.y > wy
}

// spriteVisibleAt reports whether one of the line's sprites covers x.
func (f *fifo) spriteVisibleAt(x uint8) bool {
	if !bit.IsSet(1, f.mmu.Read(addr.LCDC)) {
		return false
	}
	_, ok := f.spriteAt(x)
	return ok
}

func (f *fifo) spriteAt(x uint8) (Sprite, bool) {
	for _, sprite := range f.sprites {
		if x >= sprite.x-8 && x < sprite.x {
			return sprite, true
		}
	}
	return Sprite{}, false
}

// typeAt picks the layer the fetcher should produce at screen position x.
func (f *fifo) typeAt(x uint8) PixelType {
	if f.windowAt(x) {
		return WindowPixel
	}
	return BGPixel
}
