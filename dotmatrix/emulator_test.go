package dotmatrix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestROM(t *testing.T, dir string) string {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x147] = 0x03 // MBC1+RAM+BATTERY
	rom[0x149] = 0x02 // 8KB RAM
	path := filepath.Join(dir, "test.gb")
	require.NoError(t, os.WriteFile(path, rom, 0644))
	return path
}

func TestNewWithFile(t *testing.T) {
	t.Run("loads a rom", func(t *testing.T) {
		path := writeTestROM(t, t.TempDir())
		emu, err := NewWithFile(path)
		require.NoError(t, err)
		assert.NotNil(t, emu.GetCurrentFrame())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewWithFile(filepath.Join(t.TempDir(), "nope.gb"))
		assert.Error(t, err)
	})

	t.Run("invalid rom", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "short.gb")
		require.NoError(t, os.WriteFile(path, make([]byte, 0x100), 0644))
		_, err := NewWithFile(path)
		assert.Error(t, err)
	})
}

func TestRunUntilFrame(t *testing.T) {
	path := writeTestROM(t, t.TempDir())
	emu, err := NewWithFile(path)
	require.NoError(t, err)

	cpuTicks := 0
	emu.SetCPU(tickerFunc(func() { cpuTicks++ }))

	emu.RunUntilFrame()
	assert.Equal(t, uint64(1), emu.GetFrameCount())
	assert.Equal(t, 70224, cpuTicks)

	emu.RunUntilFrame()
	assert.Equal(t, uint64(2), emu.GetFrameCount())
}

type tickerFunc func()

func (f tickerFunc) Tick() { f() }

func TestSaveSAV(t *testing.T) {
	dir := t.TempDir()
	path := writeTestROM(t, dir)

	emu, err := NewWithFile(path)
	require.NoError(t, err)

	// enable cartridge RAM and leave a mark through the bus
	emu.MMU().Write(0x0000, 0x0A)
	emu.MMU().Write(0xA000, 0x42)
	require.NoError(t, emu.SaveSAV())

	savPath := filepath.Join(dir, "test.sav")
	sav, err := os.ReadFile(savPath)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), sav[0])

	// a new emulator picks the save back up
	emu2, err := NewWithFile(path)
	require.NoError(t, err)
	emu2.MMU().Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0x42), emu2.MMU().Read(0xA000))
}
