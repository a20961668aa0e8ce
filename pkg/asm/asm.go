package asm

import (
	"fmt"
	"strconv"
	"strings"
)

// compCodes maps C-instruction computation mnemonics to their a+c bit
// patterns (7 bits).
var compCodes = map[string]uint16{
	"0":   0b0101010,
	"1":   0b0111111,
	"-1":  0b0111010,
	"D":   0b0001100,
	"A":   0b0110000,
	"!D":  0b0001101,
	"!A":  0b0110001,
	"-D":  0b0001111,
	"-A":  0b0110011,
	"D+1": 0b0011111,
	"A+1": 0b0110111,
	"D-1": 0b0001110,
	"A-1": 0b0110010,
	"D+A": 0b0000010,
	"A+D": 0b0000010,
	"D-A": 0b0010011,
	"A-D": 0b0000111,
	"D&A": 0b0000000,
	"A&D": 0b0000000,
	"D|A": 0b0010101,
	"A|D": 0b0010101,
	"M":   0b1110000,
	"!M":  0b1110001,
	"-M":  0b1110011,
	"M+1": 0b1110111,
	"M-1": 0b1110010,
	"D+M": 0b1000010,
	"M+D": 0b1000010,
	"D-M": 0b1010011,
	"M-D": 0b1000111,
	"D&M": 0b1000000,
	"M&D": 0b1000000,
	"D|M": 0b1010101,
	"M|D": 0b1010101,
}

var destCodes = map[string]uint16{
	"":    0b000,
	"M":   0b001,
	"D":   0b010,
	"MD":  0b011,
	"DM":  0b011,
	"A":   0b100,
	"AM":  0b101,
	"AD":  0b110,
	"AMD": 0b111,
}

var jumpCodes = map[string]uint16{
	"":    0b000,
	"JGT": 0b001,
	"JEQ": 0b010,
	"JGE": 0b011,
	"JLT": 0b100,
	"JNE": 0b101,
	"JLE": 0b110,
	"JMP": 0b111,
}

// predefined holds the symbols every Hack program starts with.
var predefined = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 16384,
	"KBD":    24576,
}

func init() {
	for i := uint16(0); i <= 15; i++ {
		predefined[fmt.Sprintf("R%d", i)] = i
	}
}

const firstVariable = 16

type Assembler struct {
	symbols map[string]uint16
	nextVar uint16
}

func NewAssembler() *Assembler {
	a := &Assembler{
		symbols: make(map[string]uint16, len(predefined)+32),
		nextVar: firstVariable,
	}
	for k, v := range predefined {
		a.symbols[k] = v
	}
	return a
}

// Assemble translates Hack assembly source to machine words.
func Assemble(source string) ([]uint16, error) {
	return NewAssembler().Assemble(source)
}

// Assemble runs the standard two passes: pass 1 binds label pseudo-commands to
// ROM addresses, pass 2 encodes instructions and allocates variables from
// RAM 16 upward.
func (a *Assembler) Assemble(source string) ([]uint16, error) {
	lines := strings.Split(source, "\n")

	if err := a.pass1(lines); err != nil {
		return nil, err
	}
	return a.pass2(lines)
}

func (a *Assembler) pass1(lines []string) error {
	var address uint16

	for i, raw := range lines {
		lineNo := i + 1
		line := cleanLine(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "(") {
			if !strings.HasSuffix(line, ")") {
				return fmt.Errorf("unterminated label on line %d", lineNo)
			}
			label := line[1 : len(line)-1]
			if label == "" {
				return fmt.Errorf("empty label on line %d", lineNo)
			}
			if _, exists := a.symbols[label]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", label, lineNo)
			}
			a.symbols[label] = address
			continue
		}
		if address == 0x7FFF {
			return fmt.Errorf("program too large near line %d", lineNo)
		}
		address++
	}
	return nil
}

func (a *Assembler) pass2(lines []string) ([]uint16, error) {
	program := make([]uint16, 0)

	for i, raw := range lines {
		lineNo := i + 1
		line := cleanLine(raw)
		if line == "" || strings.HasPrefix(line, "(") {
			continue
		}

		if strings.HasPrefix(line, "@") {
			value, err := a.resolve(line[1:], lineNo)
			if err != nil {
				return nil, err
			}
			program = append(program, value)
			continue
		}

		word, err := encodeC(line, lineNo)
		if err != nil {
			return nil, err
		}
		program = append(program, word)
	}
	return program, nil
}

// resolve turns the operand of an A-instruction into a 15-bit value: a
// literal, a known symbol, or a fresh variable slot.
func (a *Assembler) resolve(operand string, lineNo int) (uint16, error) {
	if operand == "" {
		return 0, fmt.Errorf("empty @ operand on line %d", lineNo)
	}
	if operand[0] >= '0' && operand[0] <= '9' {
		value, err := strconv.ParseUint(operand, 10, 32)
		if err != nil || value > 0x7FFF {
			return 0, fmt.Errorf("invalid address '%s' on line %d", operand, lineNo)
		}
		return uint16(value), nil
	}
	if addr, ok := a.symbols[operand]; ok {
		return addr, nil
	}
	if a.nextVar > 0x3FFF {
		return 0, fmt.Errorf("out of variable space on line %d", lineNo)
	}
	addr := a.nextVar
	a.symbols[operand] = addr
	a.nextVar++
	return addr, nil
}

// encodeC encodes dest=comp;jump. dest and jump are optional.
func encodeC(line string, lineNo int) (uint16, error) {
	dest, rest := "", line
	if eq := strings.IndexByte(rest, '='); eq >= 0 {
		dest = rest[:eq]
		rest = rest[eq+1:]
	}
	comp, jump := rest, ""
	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		comp = rest[:semi]
		jump = rest[semi+1:]
	}

	c, ok := compCodes[comp]
	if !ok {
		return 0, fmt.Errorf("unknown computation '%s' on line %d", comp, lineNo)
	}
	d, ok := destCodes[dest]
	if !ok {
		return 0, fmt.Errorf("unknown destination '%s' on line %d", dest, lineNo)
	}
	j, ok := jumpCodes[jump]
	if !ok {
		return 0, fmt.Errorf("unknown jump '%s' on line %d", jump, lineNo)
	}
	return 0b111<<13 | c<<6 | d<<3 | j, nil
}

// cleanLine strips comments and all whitespace; Hack assembly tokens never
// contain spaces.
func cleanLine(raw string) string {
	line := raw
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.Join(strings.Fields(line), "")
}
