package asm

import (
	"fmt"
	"strings"
)

// FormatHack renders machine words in the textual .hack format: one 16-bit
// binary string per line.
func FormatHack(words []uint16) string {
	var b strings.Builder
	for _, w := range words {
		fmt.Fprintf(&b, "%016b\n", w)
	}
	return b.String()
}

// ParseHack reads the textual .hack format back into machine words.
func ParseHack(text string) ([]uint16, error) {
	words := make([]uint16, 0)
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) != 16 {
			return nil, fmt.Errorf("line %d: expected 16 binary digits, got %d", i+1, len(line))
		}
		var w uint16
		for _, r := range line {
			switch r {
			case '0':
				w <<= 1
			case '1':
				w = w<<1 | 1
			default:
				return nil, fmt.Errorf("line %d: invalid digit %q", i+1, r)
			}
		}
		words = append(words, w)
	}
	return words, nil
}
