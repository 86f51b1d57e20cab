package render

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/timing"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"
)

// shadeColors maps shade levels (dark to light) onto terminal colors.
var shadeColors = [4]tcell.Color{
	tcell.NewHexColor(0x081820),
	tcell.NewHexColor(0x346856),
	tcell.NewHexColor(0x88C070),
	tcell.NewHexColor(0xE0F8D0),
}

// TerminalRenderer presents frames in the terminal using half-block cells,
// two pixel rows per text row.
type TerminalRenderer struct {
	screen   tcell.Screen
	emulator *dotmatrix.Emulator
	running  bool
}

func NewTerminalRenderer(emu *dotmatrix.Emulator) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %w", err)
	}

	return &TerminalRenderer{
		screen:   screen,
		emulator: emu,
		running:  true,
	}, nil
}

// Run drives the emulator frame by frame until the user quits.
func (t *TerminalRenderer) Run() error {
	defer t.screen.Fini()

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	t.screen.Clear()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go t.handleInput()

	ticker := time.NewTicker(timing.FrameDuration())
	defer ticker.Stop()

	for t.running {
		select {
		case <-ticker.C:
			t.emulator.RunUntilFrame()
			t.render()
			t.screen.Show()
		case <-signals:
			t.running = false
		}
	}

	return t.emulator.SaveSAV()
}

func (t *TerminalRenderer) handleInput() {
	for t.running {
		ev := t.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				t.running = false
				return
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

func (t *TerminalRenderer) render() {
	frame := t.emulator.GetCurrentFrame().ToSlice()

	for y := 0; y < video.FramebufferHeight; y += 2 {
		for x := 0; x < video.FramebufferWidth; x++ {
			top := PixelToShade(frame[y*video.FramebufferWidth+x])
			bottom := PixelToShade(frame[(y+1)*video.FramebufferWidth+x])
			style := tcell.StyleDefault.
				Foreground(shadeColors[top]).
				Background(shadeColors[bottom])
			t.screen.SetContent(x, y/2, '▀', nil, style)
		}
	}
}
