package video

import "fmt"

// GBColor is an ARGB color as produced by the DMG palette.
type GBColor uint32

const (
	FramebufferWidth  = 160
	FramebufferHeight = 144
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

// The four shades of the DMG panel.
const (
	WhiteColor     GBColor = 0xE0F8D0
	LightGreyColor GBColor = 0x88C070
	DarkGreyColor  GBColor = 0x346856
	BlackColor     GBColor = 0x081820
)

// ByteToColor maps a 2-bit palette index to its screen color.
func ByteToColor(value byte) GBColor {
	switch value {
	case 0:
		return WhiteColor
	case 1:
		return LightGreyColor
	case 2:
		return DarkGreyColor
	case 3:
		return BlackColor
	}

	panic(fmt.Sprintf("palette index out of range: %d", value))
}

// FrameBuffer holds one completed 160x144 frame.
type FrameBuffer struct {
	width  uint
	height uint
	buffer []uint32
}

func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferSize),
	}
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y uint, color GBColor) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// ToSlice returns the backing pixel slice, row-major.
func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Clear resets the framebuffer to the lightest shade.
func (fb *FrameBuffer) Clear() {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(WhiteColor)
	}
}
