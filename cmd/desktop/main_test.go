package main

import (
	"testing"

	"hackvm/pkg/cpu"
)

func TestLayoutMatchesScreenPlusHUD(t *testing.T) {
	g := &Game{mach: cpu.New()}
	w, h := g.Layout(1920, 1080)
	if w != cpu.ScreenWidth || h != cpu.ScreenHeight+hudHeight {
		t.Errorf("Layout = %dx%d, want %dx%d", w, h, cpu.ScreenWidth, cpu.ScreenHeight+hudHeight)
	}
}

// Every special key must map into the Hack non-ASCII key range and no two
// keys may share a code.
func TestSpecialKeyCodes(t *testing.T) {
	seen := map[uint16]bool{}
	for key, code := range specialKeys {
		if code < 128 || code > 152 {
			t.Errorf("%v: code %d outside the Hack special-key range", key, code)
		}
		if seen[code] {
			t.Errorf("code %d assigned twice", code)
		}
		seen[code] = true
	}
}
