package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"
)

func TestPixelToShade(t *testing.T) {
	assert.Equal(t, 0, PixelToShade(uint32(video.BlackColor)))
	assert.Equal(t, 1, PixelToShade(uint32(video.DarkGreyColor)))
	assert.Equal(t, 2, PixelToShade(uint32(video.LightGreyColor)))
	assert.Equal(t, 3, PixelToShade(uint32(video.WhiteColor)))
}

func TestFrameToHalfBlocks(t *testing.T) {
	frame := make([]uint32, video.FramebufferSize)
	for i := range frame {
		frame[i] = uint32(video.WhiteColor)
	}
	// darken the top-left pixel only
	frame[0] = uint32(video.BlackColor)

	lines := FrameToHalfBlocks(frame, video.FramebufferWidth, video.FramebufferHeight)
	assert.Len(t, lines, video.FramebufferHeight/2)

	runes := []rune(lines[0])
	assert.Len(t, runes, video.FramebufferWidth)
	assert.Equal(t, '▀', runes[0])
	assert.Equal(t, '█', runes[1])

	t.Run("short buffer yields nothing", func(t *testing.T) {
		assert.Nil(t, FrameToHalfBlocks(frame[:10], video.FramebufferWidth, video.FramebufferHeight))
	})
}
