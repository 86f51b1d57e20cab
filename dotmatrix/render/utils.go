package render

import "github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"

// PixelToShade converts a framebuffer pixel to a shade level (0-3, dark to light).
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
	default:
		return 0
	}
}

// HalfBlockChar picks the character for a cell covering two vertically
// stacked pixels.
func HalfBlockChar(topShade, bottomShade int) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == 3 && bottomShade != 3:
		return '▄'
	case topShade != 3 && bottomShade == 3:
		return '▀'
	default:
		return '▀'
	}
}

// FrameToHalfBlocks converts a frame buffer to a half-block text
// representation, one string per text row (72 rows for 144 pixel rows).
func FrameToHalfBlocks(frame []uint32, width, height int) []string {
	if len(frame) < width*height {
		return nil
	}

	lines := make([]string, 0, height/2)
	for y := 0; y < height; y += 2 {
		line := make([]rune, width)
		for x := 0; x < width; x++ {
			top := PixelToShade(frame[y*width+x])
			bottom := top
			if y+1 < height {
				bottom = PixelToShade(frame[(y+1)*width+x])
			}
			line[x] = HalfBlockChar(top, bottom)
		}
		lines = append(lines, string(line))
	}
	return lines
}
