//go:build sdl2

package render

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"
)

// SDL2Renderer presents frames in a native window.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2).
type SDL2Renderer struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	emulator *dotmatrix.Emulator
	scale    int
}

func NewSDL2Renderer(emu *dotmatrix.Emulator, scale int) (*SDL2Renderer, error) {
	if scale <= 0 {
		scale = 3
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("initializing SDL2: %w", err)
	}

	window, err := sdl.CreateWindow(
		"dotmatrix",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(video.FramebufferWidth*scale), int32(video.FramebufferHeight*scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth, video.FramebufferHeight,
	)
	if err != nil {
		return nil, fmt.Errorf("creating texture: %w", err)
	}

	return &SDL2Renderer{
		window:   window,
		renderer: renderer,
		texture:  texture,
		emulator: emu,
		scale:    scale,
	}, nil
}

// Run drives the emulator frame by frame until the window is closed.
func (s *SDL2Renderer) Run() error {
	defer s.cleanup()

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch ev := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if ev.Keysym.Sym == sdl.K_ESCAPE {
					running = false
				}
			}
		}

		s.emulator.RunUntilFrame()

		frame := s.emulator.GetCurrentFrame().ToSlice()
		if err := s.texture.Update(nil, unsafe.Pointer(&frame[0]), video.FramebufferWidth*4); err != nil {
			return fmt.Errorf("updating texture: %w", err)
		}
		if err := s.renderer.Clear(); err != nil {
			return err
		}
		if err := s.renderer.Copy(s.texture, nil, nil); err != nil {
			return err
		}
		s.renderer.Present()
	}

	return s.emulator.SaveSAV()
}

func (s *SDL2Renderer) cleanup() {
	s.texture.Destroy()
	s.renderer.Destroy()
	s.window.Destroy()
	sdl.Quit()
}
