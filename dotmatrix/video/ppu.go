package video

import (
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
)

// Mode represents the PPU's current rendering stage.
// These values match the STAT register bits 1-0.
type Mode uint8

const (
	// HBlankMode (Mode 0): horizontal blank, fills the line out to dot 455
	HBlankMode Mode = 0
	// VBlankMode (Mode 1): vertical blank, lines 144-153
	VBlankMode Mode = 1
	// OAMScanMode (Mode 2): sprite selection for the upcoming line
	OAMScanMode Mode = 2
	// DrawingMode (Mode 3): pixels are pushed out through the FIFO
	DrawingMode Mode = 3
)

const (
	oamScanDots   = 80
	dotsPerLine   = 456
	linesPerFrame = 154
	visibleLines  = 144

	// DotsPerFrame is the length of one full frame in PPU dots.
	DotsPerFrame = dotsPerLine * linesPerFrame
)

// PPU is the pixel processing unit. It owns the pixel pipeline and the
// framebuffer; everything else (VRAM, OAM, IO registers) is read through
// the MMU. Tick advances exactly one dot.
type PPU struct {
	mmu   *memory.MMU
	fifo  fifo
	frame *FrameBuffer

	mode     Mode
	cycles   uint16
	ly       uint8
	lyBuffer []uint32
}

// New creates a PPU bound to the given bus, starting at the top of the
// frame in OAM scan.
func New(mmu *memory.MMU) *PPU {
	p := &PPU{
		mmu:      mmu,
		fifo:     newFifo(mmu),
		frame:    NewFrameBuffer(),
		lyBuffer: make([]uint32, 0, FramebufferWidth),
	}
	p.setMode(OAMScanMode)
	return p
}

// GetFrameBuffer returns the frame under construction; it is complete and
// stable between the VBlank interrupt and the next OAM scan of line 0.
func (p *PPU) GetFrameBuffer() *FrameBuffer {
	return p.frame
}

// Mode returns the current rendering stage.
func (p *PPU) Mode() Mode {
	return p.mode
}

// LY returns the current scanline.
func (p *PPU) LY() uint8 {
	return p.ly
}

// Tick advances the PPU by one dot.
func (p *PPU) Tick() {
	switch p.mode {
	case OAMScanMode:
		if p.cycles == 0 {
			p.fifo.init(p.ly)
			p.fifo.setSprites(scanOAM(p.mmu, p.ly))
		}
		if p.cycles == oamScanDots-1 {
			p.setMode(DrawingMode)
		}
		p.cycles++
	case DrawingMode:
		if px, ok := p.fifo.tick(); ok {
			p.lyBuffer = append(p.lyBuffer, uint32(ByteToColor(px.color)))
			if len(p.lyBuffer) == FramebufferWidth {
				p.setMode(HBlankMode)
			}
		}
		p.cycles++
	case HBlankMode:
		if p.cycles == dotsPerLine-1 {
			if p.ly == visibleLines-1 {
				p.setMode(VBlankMode)
			} else {
				p.setMode(OAMScanMode)
			}
			p.setLY(p.ly + 1)
			p.cycles = 0
		} else {
			p.cycles++
		}
	case VBlankMode:
		if p.cycles == dotsPerLine-1 {
			if p.ly == linesPerFrame-1 {
				p.setMode(OAMScanMode)
				p.setLY(0)
			} else {
				p.setLY(p.ly + 1)
			}
			p.cycles = 0
		} else {
			p.cycles++
		}
	}
}

// setMode switches the rendering stage, applies the stage's entry actions,
// and mirrors the mode into the low two bits of STAT.
func (p *PPU) setMode(mode Mode) {
	switch mode {
	case OAMScanMode:
		p.lyBuffer = p.lyBuffer[:0]
	case HBlankMode:
		// latch the finished line into the frame and drop the pipeline state
		row := int(p.ly) * FramebufferWidth
		copy(p.frame.buffer[row:row+FramebufferWidth], p.lyBuffer)
		p.lyBuffer = p.lyBuffer[:0]
		p.fifo.clear()
	case VBlankMode:
		p.mmu.RequestInterrupt(addr.VBlankInterrupt)
	}

	p.mode = mode
	stat := p.mmu.Read(addr.STAT)
	p.mmu.Write(addr.STAT, stat&0xFC|uint8(mode))
}

// setLY updates the current scanline and mirrors it into the LY register.
func (p *PPU) setLY(ly uint8) {
	p.ly = ly
	p.mmu.Write(addr.LY, ly)
}
