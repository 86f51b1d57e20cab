package video

import (
	"testing"

	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/addr"
	"github.com/dotmatrix-emu/dotmatrix/dotmatrix/memory"
)

func TestSpriteVisible(t *testing.T) {
	tests := []struct {
		name    string
		y, x    uint8
		ly      uint8
		visible bool
	}{
		{"top left corner", 16, 8, 0, true},
		{"last covered line", 16, 8, 7, true},
		{"line below", 16, 8, 8, false},
		{"above the screen", 15, 8, 0, false},
		{"hidden at x zero", 16, 0, 0, false},
		{"mid screen", 80, 80, 70, true},
		{"mid screen, line above", 80, 80, 63, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSprite(tt.y, tt.x, 0, 0)
			if got := s.visible(tt.ly); got != tt.visible {
				t.Errorf("visible(%d) = %v; want %v", tt.ly, got, tt.visible)
			}
		})
	}
}

func TestSpriteFlags(t *testing.T) {
	s := newSprite(16, 8, 0, 0b1111_0000)
	if !s.bgOverObj || !s.yFlip || !s.xFlip || !s.palette {
		t.Errorf("flags not decoded: %+v", s)
	}

	s = newSprite(16, 8, 0, 0b0010_0000)
	if s.bgOverObj || s.yFlip || !s.xFlip || s.palette {
		t.Errorf("flags not decoded: %+v", s)
	}
}

func TestScanOAM(t *testing.T) {
	writeSprite := func(mmu *memory.MMU, slot int, y, x uint8) {
		base := addr.OAMStart + uint16(slot)*4
		mmu.Write(base, y)
		mmu.Write(base+1, x)
	}

	t.Run("selects only covering sprites", func(t *testing.T) {
		mmu := memory.New()
		writeSprite(mmu, 0, 16, 8)  // lines 0-7
		writeSprite(mmu, 1, 32, 8)  // lines 16-23
		writeSprite(mmu, 2, 18, 16) // lines 2-9

		got := scanOAM(mmu, 4)
		if len(got) != 2 {
			t.Fatalf("len = %d; want 2", len(got))
		}
		if got[0].x != 8 || got[1].x != 16 {
			t.Errorf("wrong sprites selected: %+v", got)
		}
	})

	t.Run("stops after ten sprites", func(t *testing.T) {
		mmu := memory.New()
		for slot := 0; slot < 40; slot++ {
			writeSprite(mmu, slot, 16, uint8(8+slot))
		}

		got := scanOAM(mmu, 0)
		if len(got) != 10 {
			t.Fatalf("len = %d; want 10", len(got))
		}
		// selection follows OAM order
		if got[9].x != 17 {
			t.Errorf("last selected sprite x = %d; want 17", got[9].x)
		}
	})
}
