package memory

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Clock supplies wall time to the MBC3 RTC. Production code uses time.Now;
// tests substitute a fixed or stepped clock.
type Clock func() time.Time

// RTC is the real-time clock embedded in MBC3 cartridges. It counts seconds
// since an epoch and exposes five registers (S, M, H, DL, DH) that change
// only when the guest latches or writes them.
type RTC struct {
	s, m, h, dl, dh uint8
	zero            uint64 // epoch, seconds
	now             Clock
}

// NewRTC creates a clock anchored at the current time.
func NewRTC(now Clock) *RTC {
	return &RTC{
		zero: uint64(now().Unix()),
		now:  now,
	}
}

// Latch recomputes the registers from the seconds elapsed since the epoch.
// The day counter carries into DH bit 0 at 256 days and sets the overflow
// flag (bit 3) at 512.
func (r *RTC) Latch() {
	duration := uint64(r.now().Unix()) - r.zero
	r.s = uint8(duration % 60)
	r.m = uint8(duration / 60 % 60)
	r.h = uint8(duration / 3600 % 24)
	day := duration / 86400
	r.dl = uint8(day & 0xFF)
	if day >= 0x100 {
		r.dh |= 0x01
	}
	if day >= 0x200 {
		r.dh |= 0x08
	}
}

// Read returns the register selected by a RAM bank number in 0x08-0x0C.
func (r *RTC) Read(reg uint8) uint8 {
	switch reg {
	case 0x08:
		return r.s
	case 0x09:
		return r.m
	case 0x0A:
		return r.h
	case 0x0B:
		return r.dl
	case 0x0C:
		return r.dh
	default:
		panic(fmt.Sprintf("rtc read of invalid register: 0x%02X", reg))
	}
}

// Write stores into the register selected by a RAM bank number in 0x08-0x0C.
func (r *RTC) Write(reg, value uint8) {
	switch reg {
	case 0x08:
		r.s = value
	case 0x09:
		r.m = value
	case 0x0A:
		r.h = value
	case 0x0B:
		r.dl = value
	case 0x0C:
		r.dh = value
	default:
		panic(fmt.Sprintf("rtc write of invalid register: 0x%02X", reg))
	}
}

// saveEpoch encodes the epoch as 8 big-endian bytes; only the epoch is
// persisted, register values are recomputed at the next latch.
func (r *RTC) saveEpoch() []byte {
	epoch := make([]byte, 8)
	binary.BigEndian.PutUint64(epoch, r.zero)
	return epoch
}

func (r *RTC) loadEpoch(data []byte) {
	r.zero = binary.BigEndian.Uint64(data)
}

// MBC3 adds a 7-bit ROM bank register and the RTC. RAM bank values
// 0x00-0x03 select external RAM at 0xA000-0xBFFF; values 0x08-0x0C map the
// clock registers into the same window.
type MBC3 struct {
	rom []uint8
	ram []uint8
	rtc *RTC

	romBank        uint8
	ramBank        uint8
	ramEnable      bool
	lastLatchWrite uint8
	romBanks       int
}

// NewMBC3 creates a new MBC3 controller. RAM may be empty.
func NewMBC3(rom, ram []uint8, clock Clock) *MBC3 {
	return &MBC3{
		rom:            rom,
		ram:            ram,
		rtc:            NewRTC(clock),
		romBank:        0x01,
		lastLatchWrite: 0x01,
		romBanks:       len(rom) / romBankSize,
	}
}

func (m *MBC3) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr >= 0x4000 && addr <= 0x7FFF:
		bank := int(m.romBank) & (m.romBanks - 1)
		return m.rom[bank*romBankSize+int(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable {
			return 0x00
		}
		if m.ramBank <= 0x03 {
			if len(m.ram) == 0 {
				return 0x00
			}
			return m.ram[int(m.ramBank)*ramBankSize+int(addr-0xA000)]
		}
		return m.rtc.Read(m.ramBank)
	default:
		panic(fmt.Sprintf("mbc3 read out of range: 0x%04X", addr))
	}
}

func (m *MBC3) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnable = value&0x0F == 0x0A
	case addr >= 0x2000 && addr <= 0x3FFF:
		m.romBank = value & 0x7F
		if m.romBank == 0 {
			m.romBank = 1
		}
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.ramBank = value
	case addr >= 0x6000 && addr <= 0x7FFF:
		// latch on a 0x00 -> 0x01 transition only
		if m.lastLatchWrite == 0x00 && value == 0x01 {
			m.rtc.Latch()
		}
		m.lastLatchWrite = value
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable {
			return
		}
		if m.ramBank <= 0x03 {
			if len(m.ram) > 0 {
				m.ram[int(m.ramBank)*ramBankSize+int(addr-0xA000)] = value
			}
			return
		}
		m.rtc.Write(m.ramBank, value)
	default:
		panic(fmt.Sprintf("mbc3 write out of range: 0x%04X", addr))
	}
}

// SaveSAV prepends the 8-byte RTC epoch to the RAM contents.
func (m *MBC3) SaveSAV() []byte {
	sav := m.rtc.saveEpoch()
	return append(sav, m.ram...)
}

// LoadSAV splits the blob at offset 8: epoch first, then RAM.
func (m *MBC3) LoadSAV(data []byte) {
	if len(data) < 8 {
		return
	}
	m.rtc.loadEpoch(data[:8])
	copy(m.ram, data[8:])
}

// MBC5 uses a straight 9-bit ROM bank register with no remapping quirks;
// bank 0 is selectable in the switchable window.
type MBC5 struct {
	rom []uint8
	ram []uint8

	romBankLo uint8
	romBankHi uint8 // 1 bit
	ramBank   uint8
	ramEnable bool
	romBanks  int
}

// NewMBC5 creates a new MBC5 controller. RAM may be empty.
func NewMBC5(rom, ram []uint8) *MBC5 {
	return &MBC5{
		rom:       rom,
		ram:       ram,
		romBankLo: 0x01,
		romBanks:  len(rom) / romBankSize,
	}
}

func (m *MBC5) romBank() int {
	return int(m.romBankHi)<<8 | int(m.romBankLo)
}

func (m *MBC5) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x3FFF:
		return m.rom[addr]
	case addr >= 0x4000 && addr <= 0x7FFF:
		bank := m.romBank() & (m.romBanks - 1)
		return m.rom[bank*romBankSize+int(addr-0x4000)]
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable || len(m.ram) == 0 {
			return 0x00
		}
		return m.ram[int(m.ramBank&0x0F)*ramBankSize+int(addr-0xA000)]
	default:
		panic(fmt.Sprintf("mbc5 read out of range: 0x%04X", addr))
	}
}

func (m *MBC5) Write(addr uint16, value uint8) {
	switch {
	case addr <= 0x1FFF:
		m.ramEnable = value&0x0F == 0x0A
	case addr >= 0x2000 && addr <= 0x2FFF:
		m.romBankLo = value
	case addr >= 0x3000 && addr <= 0x3FFF:
		m.romBankHi = value & 0x01
	case addr >= 0x4000 && addr <= 0x5FFF:
		m.ramBank = value
	case addr >= 0x6000 && addr <= 0x7FFF:
		// no registers here
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnable || len(m.ram) == 0 {
			return
		}
		m.ram[int(m.ramBank&0x0F)*ramBankSize+int(addr-0xA000)] = value
	default:
		panic(fmt.Sprintf("mbc5 write out of range: 0x%04X", addr))
	}
}

func (m *MBC5) SaveSAV() []byte {
	sav := make([]byte, len(m.ram))
	copy(sav, m.ram)
	return sav
}

func (m *MBC5) LoadSAV(data []byte) {
	copy(m.ram, data)
}
