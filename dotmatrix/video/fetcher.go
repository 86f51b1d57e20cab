package video

import (
	"fmt"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
)

// PixelType tags which layer produced a pixel.
type PixelType uint8

const (
	BGPixel PixelType = iota
	WindowPixel
	SpritePixel
)

// Pixel is one entry of the pixel FIFO. color is the palette-mapped 2-bit
// shade; palette and bgOverObj carry the attributes of the sprite that
// produced the pixel, and a sprite merge reads bgOverObj to pick priority.
type Pixel struct {
	ptype     PixelType
	color     uint8
	palette   bool
	bgOverObj bool
}

type fetcherState uint8

const (
	fetchTile fetcherState = iota
	fetchTileDataLow
	fetchTileDataHigh
)

// fetcher is the three-step tile pipeline feeding the FIFO. Each step takes
// two dots: one working, one idle. After the high data byte is read it
// emits up to 8 pixels into buffer and starts over.
type fetcher struct {
	mmu *memory.MMU

	state  fetcherState
	cycles uint8

	ptype        PixelType
	scanX, scanY uint8

	// scroll/window registers latched while fetching the tile number
	scx, scy uint8
	wx, wy   uint8

	// sprite attributes, set by the FIFO before a sprite fetch
	oamX, oamY uint8
	xFlip      bool
	yFlip      bool
	palette    bool
	bgOverObj  bool

	tileAddr uint16
	dataLow  uint8
	dataHigh uint8
	buffer   []Pixel
}

func newFetcher(mmu *memory.MMU) fetcher {
	return fetcher{mmu: mmu}
}

// init latches the screen coordinates and resets the pipeline for a new tile.
func (f *fetcher) init(ptype PixelType, x, y uint8) {
	f.ptype = ptype
	f.scanX = x
	f.scanY = y

	f.scx, f.scy = 0, 0
	f.wx, f.wy = 0, 0
	f.oamX, f.oamY = 0, 0
	f.xFlip = false
	f.yFlip = false
	f.palette = false
	f.bgOverObj = false

	f.state = fetchTile
	f.cycles = 0
	f.tileAddr = 0
	f.dataLow = 0
	f.dataHigh = 0
	f.buffer = nil
}

// tick advances the pipeline by one dot. Every other dot is idle.
func (f *fetcher) tick() {
	if f.cycles == 1 {
		f.cycles = 0
		return
	}
	f.cycles++

	switch f.state {
	case fetchTile:
		f.tileAddr = f.fetchTileAddr()
		f.state = fetchTileDataLow
	case fetchTileDataLow:
		f.dataLow = f.mmu.Read(f.tileAddr + f.tileY()*2)
		f.state = fetchTileDataHigh
	case fetchTileDataHigh:
		f.dataHigh = f.mmu.Read(f.tileAddr + f.tileY()*2 + 1)
		f.buffer = f.buildBuffer()
		f.state = fetchTile
	}
}

// fetchTileAddr resolves the address of the tile's first data byte. For BG
// and Window this walks the tile map; sprites carry their tile address in
// directly from OAM.
func (f *fetcher) fetchTileAddr() uint16 {
	lcdc := f.mmu.Read(addr.LCDC)

	switch f.ptype {
	case BGPixel:
		f.scy = f.mmu.Read(addr.SCY)
		f.scx = f.mmu.Read(addr.SCX)
		mapX := (uint16(f.scanX) + uint16(f.scx)) % 256 / 8
		mapY := (uint16(f.scanY) + uint16(f.scy)) % 256 / 8
		mapBase := addr.TileMap0
		if bit.IsSet(3, lcdc) {
			mapBase = addr.TileMap1
		}
		tile := f.mmu.Read(mapBase + mapY*32 + mapX)
		return tileDataAddr(tile, bit.IsSet(4, lcdc))
	case WindowPixel:
		f.wy = f.mmu.Read(addr.WY)
		f.wx = f.mmu.Read(addr.WX)
		mapX := (uint16(f.scanX) - uint16(f.wx-7)) % 256 / 8
		mapY := (uint16(f.scanY) - uint16(f.wy)) % 256 / 8
		mapBase := addr.TileMap0
		if bit.IsSet(6, lcdc) {
			mapBase = addr.TileMap1
		}
		tile := f.mmu.Read(mapBase + mapY*32 + mapX)
		return tileDataAddr(tile, bit.IsSet(4, lcdc))
	case SpritePixel:
		// set by the FIFO from the OAM entry
		return f.tileAddr
	}

	panic(fmt.Sprintf("fetcher: unknown pixel type %d", f.ptype))
}

// tileDataAddr maps a tile number to its data address: unsigned from
// 0x8000, or signed around 0x9000.
func tileDataAddr(tile uint8, unsigned bool) uint16 {
	if unsigned {
		return addr.TileData0 + uint16(tile)*16
	}
	return uint16(int(addr.TileData2) + int(int8(tile))*16)
}

// tileY is the row within the tile for the current scanline.
func (f *fetcher) tileY() uint16 {
	switch f.ptype {
	case BGPixel:
		return (uint16(f.scanY) + uint16(f.scy)) % 8
	case WindowPixel:
		return (uint16(f.scanY) - uint16(f.wy)) % 8
	case SpritePixel:
		y := (uint16(f.scanY) - uint16(f.oamY-16)) % 8
		if f.yFlip {
			y = 7 - y
		}
		return y
	}

	panic(fmt.Sprintf("fetcher: unknown pixel type %d", f.ptype))
}

// buildBuffer decodes the two data bytes into pixels. The first pixels of a
// tile that fall left of the current screen position are dropped so the
// emitted run lines up with scanX.
func (f *fetcher) buildBuffer() []Pixel {
	pixelBit := func(i uint8) uint8 { return 7 - i }

	var start uint8
	switch f.ptype {
	case BGPixel:
		start = uint8((uint16(f.scanX) + uint16(f.scx)) % 8)
	case WindowPixel:
		start = uint8((uint16(f.scanX) - uint16(f.wx-7)) % 8)
	case SpritePixel:
		if f.xFlip {
			pixelBit = func(i uint8) uint8 { return i }
		}
		start = uint8((uint16(f.scanX) - uint16(f.oamX-8)) % 8)
	}

	buffer := make([]Pixel, 0, 8)
	for i := start; i < 8; i++ {
		b := pixelBit(i)
		value := bit.GetBitValue(b, f.dataLow) | bit.GetBitValue(b, f.dataHigh)<<1
		buffer = append(buffer, Pixel{
			ptype:     f.ptype,
			color:     f.colorIndex(value),
			palette:   f.palette,
			bgOverObj: f.bgOverObj,
		})
	}
	return buffer
}

// colorIndex runs a 2-bit color value through the layer's palette register.
func (f *fetcher) colorIndex(value uint8) uint8 {
	if value > 3 {
		panic(fmt.Sprintf("fetcher: color value out of range: %d", value))
	}

	var palette uint8
	switch f.ptype {
	case BGPixel, WindowPixel:
		palette = f.mmu.Read(addr.BGP)
	case SpritePixel:
		if f.palette {
			palette = f.mmu.Read(addr.OBP1)
		} else {
			palette = f.mmu.Read(addr.OBP0)
		}
	}

	return palette >> (value * 2) & 0x03
}
