package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	titleAddress         = 0x134
	titleEnd             = 0x143
	titleEndGBC          = 0x13E
	cgbFlagAddress       = 0x143
	cartridgeTypeAddress = 0x147
	romSizeAddress       = 0x148
	ramSizeAddress       = 0x149
)

// headerSize is the minimum ROM image length: entry point plus the full
// cartridge header (0x0100-0x014F).
const headerSize = 0x150

// romBankSize is the size of one switchable ROM bank.
const romBankSize = 0x4000

// ramBankSize is the size of one external RAM bank.
const ramBankSize = 0x2000

var (
	// ErrHeaderTruncated is returned when a ROM image is too short to
	// contain a cartridge header.
	ErrHeaderTruncated = errors.New("rom image shorter than 0x150 bytes")
	// ErrUnsupportedCartridge is returned when the cartridge type byte
	// (0x147) selects hardware this emulator does not implement.
	ErrUnsupportedCartridge = errors.New("unsupported cartridge type")
	// ErrInvalidRAMSizeCode is returned when the RAM size byte (0x149) is
	// not one of the codes a licensed cartridge can carry.
	ErrInvalidRAMSizeCode = errors.New("invalid RAM size code")
)

// Cartridge is a memory mapped cartridge: fixed and banked ROM, optional
// banked external RAM, and whatever banking hardware the type byte selects.
// Reads and writes arrive through the same 16-bit bus the CPU sees.
type Cartridge interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)

	// SaveSAV returns the battery-backed contents as an opaque blob.
	SaveSAV() []byte
	// LoadSAV restores a blob previously produced by SaveSAV.
	LoadSAV(data []byte)

	// SaveStatus encodes all mutable banking registers for save states.
	// ROM and RAM contents are not included.
	SaveStatus() []byte
	// LoadStatus restores registers from a SaveStatus blob of the same variant.
	LoadStatus(data []byte) error
}

// Header holds the cartridge metadata this emulator consumes.
type Header struct {
	Title    string
	GBC      bool
	Type     uint8
	TypeName string
	RAMSize  int
}

// ParseHeader extracts the header fields from a ROM image.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < headerSize {
		return Header{}, ErrHeaderTruncated
	}

	ramSize, err := ramSizeBytes(rom[ramSizeAddress])
	if err != nil {
		return Header{}, err
	}

	gbc := rom[cgbFlagAddress] == 0x80 || rom[cgbFlagAddress] == 0xC0

	end := titleEnd
	if gbc {
		end = titleEndGBC
	}
	title := make([]byte, 0, end-titleAddress+1)
	for _, b := range rom[titleAddress : end+1] {
		if b == 0 {
			break
		}
		title = append(title, b)
	}

	return Header{
		Title:    string(title),
		GBC:      gbc,
		Type:     rom[cartridgeTypeAddress],
		TypeName: cartridgeTypeName(rom[cartridgeTypeAddress]),
		RAMSize:  ramSize,
	}, nil
}

// NewCartridge builds the banking hardware selected by the ROM header.
// The returned cartridge owns the ROM bytes and a freshly allocated RAM.
func NewCartridge(rom []byte) (Cartridge, error) {
	return newCartridge(rom, time.Now)
}

// newCartridge is the clock-injectable constructor behind NewCartridge; the
// RTC of an MBC3 reads wall time only through the provided clock.
func newCartridge(rom []byte, clock Clock) (Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	var cart Cartridge
	switch header.Type {
	case 0x00:
		cart = NewROMOnly(rom)
	case 0x01, 0x02, 0x03:
		cart = NewMBC1(rom, make([]uint8, header.RAMSize))
	case 0x05, 0x06:
		cart = NewMBC2(rom)
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		cart = NewMBC3(rom, make([]uint8, header.RAMSize), clock)
	case 0x19, 0x1A, 0x1B:
		cart = NewMBC5(rom, make([]uint8, header.RAMSize))
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnsupportedCartridge, header.Type)
	}

	slog.Debug("Loaded cartridge",
		"title", header.Title,
		"type", header.TypeName,
		"rom_size", len(rom),
		"ram_size", header.RAMSize)

	return cart, nil
}

func ramSizeBytes(code uint8) (int, error) {
	switch code {
	case 0x00:
		return 0, nil
	case 0x02:
		return 8 * 1024, nil
	case 0x03:
		return 32 * 1024, nil
	case 0x04:
		return 128 * 1024, nil
	case 0x05:
		return 64 * 1024, nil
	default:
		return 0, fmt.Errorf("%w: 0x%02X", ErrInvalidRAMSizeCode, code)
	}
}

func cartridgeTypeName(code uint8) string {
	switch code {
	case 0x00:
		return "ROM ONLY"
	case 0x01:
		return "MBC1"
	case 0x02:
		return "MBC1+RAM"
	case 0x03:
		return "MBC1+RAM+BATTERY"
	case 0x05:
		return "MBC2"
	case 0x06:
		return "MBC2+BATTERY"
	case 0x0F:
		return "MBC3+TIMER+BATTERY"
	case 0x10:
		return "MBC3+TIMER+RAM+BATTERY"
	case 0x11:
		return "MBC3"
	case 0x12:
		return "MBC3+RAM"
	case 0x13:
		return "MBC3+RAM+BATTERY"
	case 0x19:
		return "MBC5"
	case 0x1A:
		return "MBC5+RAM"
	case 0x1B:
		return "MBC5+RAM+BATTERY"
	default:
		return fmt.Sprintf("UNKNOWN (0x%02X)", code)
	}
}
