package memory

import (
	"testing"
	"time"
)

// testClock is a manually advanced Clock.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestMBC3(banks int, ramSize int) (*MBC3, *testClock) {
	clock := newTestClock()
	return NewMBC3(buildROM(0x10, 0x03, banks), make([]uint8, ramSize), clock.Now), clock
}

func latch(m *MBC3) {
	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01)
}

func TestMBC3Banking(t *testing.T) {
	t.Run("ROM bank 0 maps to 1", func(t *testing.T) {
		mbc, _ := newTestMBC3(8, 0)
		mbc.Write(0x2000, 0x00)
		if got := mbc.Read(0x4000); got != 1 {
			t.Errorf("Read(0x4000) = 0x%02X; want 0x01", got)
		}
	})

	t.Run("7 bit bank register", func(t *testing.T) {
		mbc, _ := newTestMBC3(8, 0)
		mbc.Write(0x2000, 0x85) // bit 7 ignored -> bank 5
		if got := mbc.Read(0x4000); got != 5 {
			t.Errorf("Read(0x4000) = 0x%02X; want 0x05", got)
		}
	})

	t.Run("RAM banking", func(t *testing.T) {
		mbc, _ := newTestMBC3(8, 32*1024)
		mbc.Write(0x0000, 0x0A)
		for bank := uint8(0); bank < 4; bank++ {
			mbc.Write(0x4000, bank)
			mbc.Write(0xA000, 0x30+bank)
		}
		for bank := uint8(0); bank < 4; bank++ {
			mbc.Write(0x4000, bank)
			if got := mbc.Read(0xA000); got != 0x30+bank {
				t.Errorf("bank %d: Read(0xA000) = 0x%02X; want 0x%02X", bank, got, 0x30+bank)
			}
		}
	})

	t.Run("disabled ram reads zero", func(t *testing.T) {
		mbc, _ := newTestMBC3(8, 32*1024)
		if got := mbc.Read(0xA000); got != 0x00 {
			t.Errorf("Read(0xA000) = 0x%02X; want 0x00", got)
		}
	})
}

func TestMBC3RTC(t *testing.T) {
	t.Run("latch computes registers from elapsed time", func(t *testing.T) {
		mbc, clock := newTestMBC3(8, 32*1024)
		clock.Advance(3661 * time.Second) // 1h 1m 1s

		mbc.Write(0x0000, 0x0A)
		latch(mbc)

		want := map[uint8]uint8{
			0x08: 1, // S
			0x09: 1, // M
			0x0A: 1, // H
			0x0B: 0, // DL
			0x0C: 0, // DH
		}
		for reg, value := range want {
			mbc.Write(0x4000, reg)
			if got := mbc.Read(0xA000); got != value {
				t.Errorf("RTC register 0x%02X = %d; want %d", reg, got, value)
			}
		}
	})

	t.Run("registers are stable between latches", func(t *testing.T) {
		mbc, clock := newTestMBC3(8, 0)
		clock.Advance(10 * time.Second)

		mbc.Write(0x0000, 0x0A)
		mbc.Write(0x4000, 0x08)
		latch(mbc)
		if got := mbc.Read(0xA000); got != 10 {
			t.Errorf("S after latch = %d; want 10", got)
		}

		clock.Advance(25 * time.Second)
		if got := mbc.Read(0xA000); got != 10 {
			t.Errorf("S without latch = %d; want 10", got)
		}

		latch(mbc)
		if got := mbc.Read(0xA000); got != 35 {
			t.Errorf("S after second latch = %d; want 35", got)
		}
	})

	t.Run("latch needs a zero to one transition", func(t *testing.T) {
		mbc, clock := newTestMBC3(8, 0)
		clock.Advance(42 * time.Second)

		mbc.Write(0x0000, 0x0A)
		mbc.Write(0x4000, 0x08)

		// no preceding 0x00 write: ignored
		mbc.Write(0x6000, 0x01)
		if got := mbc.Read(0xA000); got != 0 {
			t.Errorf("S after lone 0x01 write = %d; want 0", got)
		}

		// anything other than 0x00 does not arm the latch
		mbc.Write(0x6000, 0x02)
		mbc.Write(0x6000, 0x01)
		if got := mbc.Read(0xA000); got != 0 {
			t.Errorf("S after 0x02,0x01 writes = %d; want 0", got)
		}

		latch(mbc)
		if got := mbc.Read(0xA000); got != 42 {
			t.Errorf("S after 0x00,0x01 writes = %d; want 42", got)
		}
	})

	t.Run("day counter carries", func(t *testing.T) {
		mbc, clock := newTestMBC3(8, 0)
		clock.Advance(0x105 * 24 * time.Hour)

		mbc.Write(0x0000, 0x0A)
		latch(mbc)

		mbc.Write(0x4000, 0x0B)
		if got := mbc.Read(0xA000); got != 0x05 {
			t.Errorf("DL = 0x%02X; want 0x05", got)
		}
		mbc.Write(0x4000, 0x0C)
		if got := mbc.Read(0xA000); got != 0x01 {
			t.Errorf("DH = 0x%02X; want 0x01", got)
		}
	})

	t.Run("day counter overflow flag", func(t *testing.T) {
		mbc, clock := newTestMBC3(8, 0)
		clock.Advance(0x210 * 24 * time.Hour)

		mbc.Write(0x0000, 0x0A)
		latch(mbc)

		mbc.Write(0x4000, 0x0C)
		if got := mbc.Read(0xA000); got != 0x09 {
			t.Errorf("DH = 0x%02X; want 0x09", got)
		}
	})

	t.Run("registers are guest writable", func(t *testing.T) {
		mbc, _ := newTestMBC3(8, 0)
		mbc.Write(0x0000, 0x0A)
		mbc.Write(0x4000, 0x09)
		mbc.Write(0xA000, 0x2A)
		if got := mbc.Read(0xA000); got != 0x2A {
			t.Errorf("M after write = 0x%02X; want 0x2A", got)
		}
	})
}
