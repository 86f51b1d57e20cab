package dotmatrix

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/timing"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/video"
)

// Ticker is the seam for the CPU core: one call executes whatever work the
// implementation pairs with a single PPU dot. The emulator drives the PPU
// itself; an attached Ticker runs in lockstep with it.
type Ticker interface {
	Tick()
}

// Emulator composes the bus, the cartridge, and the PPU, and owns the
// frame-by-frame run loop.
type Emulator struct {
	mmu  *memory.MMU
	ppu  *video.PPU
	cpu  Ticker
	cart memory.Cartridge

	limiter timing.Limiter
	savPath string

	frameCount uint64
}

// New creates an emulator around an already constructed cartridge.
func New(cart memory.Cartridge) *Emulator {
	mmu := memory.NewWithCartridge(cart)
	return &Emulator{
		mmu:     mmu,
		ppu:     video.New(mmu),
		cart:    cart,
		limiter: timing.NewNoOpLimiter(),
	}
}

// NewWithFile loads a ROM image from disk and builds an emulator for it.
// A .sav file next to the ROM, if present, is loaded into cartridge RAM.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}

	cart, err := memory.NewCartridge(data)
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded ROM data", "path", path, "size", len(data))

	e := New(cart)
	e.savPath = savPathFor(path)
	if sav, err := os.ReadFile(e.savPath); err == nil {
		cart.LoadSAV(sav)
		slog.Debug("Loaded battery save", "path", e.savPath, "size", len(sav))
	}

	return e, nil
}

func savPathFor(romPath string) string {
	if i := strings.LastIndex(romPath, "."); i > 0 {
		return romPath[:i] + ".sav"
	}
	return romPath + ".sav"
}

// LoadBootROM installs a 256-byte boot ROM, mapped until the guest writes
// 0xFF50.
func (e *Emulator) LoadBootROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading boot rom: %w", err)
	}
	return e.mmu.LoadBootROM(data)
}

// SetCPU attaches a CPU core to run in lockstep with the PPU.
func (e *Emulator) SetCPU(cpu Ticker) {
	e.cpu = cpu
}

// SetFrameLimiter replaces the frame pacing strategy.
func (e *Emulator) SetFrameLimiter(limiter timing.Limiter) {
	e.limiter = limiter
}

// MMU exposes the bus, e.g. for a CPU implementation or tests.
func (e *Emulator) MMU() *memory.MMU {
	return e.mmu
}

// RunUntilFrame advances the machine by exactly one frame worth of dots,
// then waits for the frame limiter.
func (e *Emulator) RunUntilFrame() {
	for i := 0; i < video.DotsPerFrame; i++ {
		if e.cpu != nil {
			e.cpu.Tick()
		}
		e.ppu.Tick()
	}
	e.frameCount++
	e.limiter.WaitForNextFrame()
}

// GetCurrentFrame returns the most recently completed framebuffer.
func (e *Emulator) GetCurrentFrame() *video.FrameBuffer {
	return e.ppu.GetFrameBuffer()
}

// GetFrameCount returns the number of completed frames.
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// SaveSAV writes the battery-backed cartridge contents next to the ROM.
// It is a no-op when the cartridge's save blob is empty (cartridges without
// RAM, except MBC3, whose blob always carries the RTC epoch) or when no ROM
// path is known.
func (e *Emulator) SaveSAV() error {
	if e.savPath == "" {
		return nil
	}
	sav := e.cart.SaveSAV()
	if len(sav) == 0 {
		return nil
	}
	if err := os.WriteFile(e.savPath, sav, 0644); err != nil {
		return fmt.Errorf("writing save file: %w", err)
	}
	slog.Debug("Wrote battery save", "path", e.savPath, "size", len(sav))
	return nil
}
