package memory

import (
	"fmt"
	"log/slog"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/bit"
)

type memRegion uint8

const (
	regionROM memRegion = iota
	regionVRAM
	regionExtRAM
	regionWRAM
	regionEcho
	regionOAM
	regionIO
)

// bootROMSize is the size of the DMG boot ROM overlay at 0x0000-0x00FF.
const bootROMSize = 0x100

// MMU is the flat 16-bit bus every device sees. It routes reads and writes
// to the cartridge, VRAM, and the work/OAM/IO/HRAM block, and overlays the
// boot ROM until the guest writes BOOT (0xFF50).
type MMU struct {
	cart       Cartridge
	memory     []byte
	boot       [bootROMSize]byte
	bootLoaded bool
	regionMap  [256]memRegion
}

// New creates a memory unit with no cartridge loaded. Reads from cartridge
// space return open bus until one is attached.
func New() *MMU {
	m := &MMU{
		memory: make([]byte, 0x10000),
	}
	m.initRegionMap()
	return m
}

// NewWithCartridge creates a memory unit with the given cartridge attached.
func NewWithCartridge(cart Cartridge) *MMU {
	m := New()
	m.cart = cart
	return m
}

func (m *MMU) initRegionMap() {
	// ROM: 0x0000-0x7FFF
	for i := 0x00; i <= 0x7F; i++ {
		m.regionMap[i] = regionROM
	}
	// VRAM: 0x8000-0x9FFF
	for i := 0x80; i <= 0x9F; i++ {
		m.regionMap[i] = regionVRAM
	}
	// External RAM: 0xA000-0xBFFF
	for i := 0xA0; i <= 0xBF; i++ {
		m.regionMap[i] = regionExtRAM
	}
	// Work RAM: 0xC000-0xDFFF
	for i := 0xC0; i <= 0xDF; i++ {
		m.regionMap[i] = regionWRAM
	}
	// Echo RAM: 0xE000-0xFDFF
	for i := 0xE0; i <= 0xFD; i++ {
		m.regionMap[i] = regionEcho
	}
	// OAM and the unused area behind it: 0xFE00-0xFEFF
	m.regionMap[0xFE] = regionOAM
	// IO + HRAM: 0xFF00-0xFFFF
	m.regionMap[0xFF] = regionIO
}

// LoadBootROM installs the 256-byte boot ROM overlay.
func (m *MMU) LoadBootROM(data []byte) error {
	if len(data) < bootROMSize {
		return fmt.Errorf("boot rom too short: %d bytes", len(data))
	}
	copy(m.boot[:], data[:bootROMSize])
	m.bootLoaded = true
	return nil
}

// IsBoot reports whether the boot ROM is still mapped at 0x0000-0x00FF.
func (m *MMU) IsBoot() bool {
	return m.bootLoaded && m.memory[addr.BOOT] == 0
}

// RequestInterrupt sets the interrupt flag (IF register) of the chosen interrupt to 1.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	var bitPos uint8
	switch interrupt {
	case addr.VBlankInterrupt:
		bitPos = 0
	case addr.LCDSTATInterrupt:
		bitPos = 1
	case addr.TimerInterrupt:
		bitPos = 2
	case addr.SerialInterrupt:
		bitPos = 3
	case addr.JoypadInterrupt:
		bitPos = 4
	default:
		panic(fmt.Sprintf("unknown interrupt: 0x%02X", uint8(interrupt)))
	}

	m.Write(addr.IF, bit.Set(bitPos, m.Read(addr.IF)))
}

// ReadBit reads the bit at the given index of the byte at the given address.
func (m *MMU) ReadBit(index uint8, address uint16) bool {
	return bit.IsSet(index, m.Read(address))
}

// SetBit sets or resets the bit at the given index of the byte at the given address.
func (m *MMU) SetBit(index uint8, address uint16, set bool) {
	value := m.Read(address)
	if set {
		value = bit.Set(index, value)
	} else {
		value = bit.Reset(index, value)
	}
	m.Write(address, value)
}

func (m *MMU) Read(address uint16) byte {
	switch m.regionMap[address>>8] {
	case regionROM:
		if address < bootROMSize && m.IsBoot() {
			return m.boot[address]
		}
		if m.cart == nil {
			slog.Warn("Reading from ROM with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.cart.Read(address)
	case regionExtRAM:
		if m.cart == nil {
			slog.Warn("Reading from external RAM with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return 0xFF
		}
		return m.cart.Read(address)
	case regionVRAM, regionWRAM, regionOAM, regionIO:
		return m.memory[address]
	case regionEcho:
		return m.memory[address-0x2000]
	default:
		panic(fmt.Sprintf("attempted read at unmapped address: 0x%04X", address))
	}
}

func (m *MMU) Write(address uint16, value byte) {
	switch m.regionMap[address>>8] {
	case regionROM, regionExtRAM:
		if m.cart == nil {
			slog.Warn("Writing to cartridge space with no cartridge", "addr", fmt.Sprintf("0x%04X", address))
			return
		}
		m.cart.Write(address, value)
	case regionVRAM, regionWRAM, regionOAM, regionIO:
		m.memory[address] = value
	case regionEcho:
		m.memory[address-0x2000] = value
	default:
		panic(fmt.Sprintf("attempted write at unmapped address: 0x%04X", address))
	}
}
