package cpu

import "fmt"

// Memory map constants.
const (
	ScreenBase   = 16384 // 512×256 monochrome bitmap, 16 pixels per word
	ScreenWords  = 8192
	KeyboardAddr = 24576
	RAMSize      = 32768
	ROMSize      = 32768
)

// Computer is an emulated Hack machine: a 16-bit Harvard architecture with
// separate instruction ROM and data RAM, two registers and a program counter.
type Computer struct {
	ROM [ROMSize]uint16
	RAM [RAMSize]uint16

	A  uint16
	D  uint16
	PC uint16

	// Halted is set when the program enters the conventional end-of-program
	// idiom, an unconditional jump to the instruction's own address.
	Halted bool
}

func New() *Computer {
	return &Computer{}
}

// LoadProgram copies machine words into ROM starting at address 0 and resets
// the execution state.
func (c *Computer) LoadProgram(words []uint16) error {
	if len(words) > len(c.ROM) {
		return fmt.Errorf("program of %d words exceeds ROM size %d", len(words), len(c.ROM))
	}
	for i := range c.ROM {
		c.ROM[i] = 0
	}
	copy(c.ROM[:], words)
	c.A = 0
	c.D = 0
	c.PC = 0
	c.Halted = false
	return nil
}

// Step executes one instruction. Stepping a halted machine is a no-op.
func (c *Computer) Step() {
	if c.Halted {
		return
	}
	instr := c.ROM[c.PC]

	// A-instruction: top bit clear, the rest is a 15-bit constant.
	if instr&0x8000 == 0 {
		c.A = instr
		c.PC++
		return
	}

	comp := instr >> 6 & 0x7F
	dest := instr >> 3 & 0x7
	jump := instr & 0x7

	out := c.alu(comp)

	if dest&0b001 != 0 {
		c.writeRAM(c.A, out)
	}
	if dest&0b010 != 0 {
		c.D = out
	}
	if dest&0b100 != 0 {
		c.A = out
	}

	if c.jumpTaken(jump, out) {
		target := c.A
		// An unconditional jump back into a tight self-loop is the Hack
		// end-of-program idiom: either jumping to the jump itself, or to the
		// A-instruction just before it that reloads the same address.
		if jump == 0b111 && (target == c.PC || (target == c.PC-1 && c.ROM[target] == target)) {
			c.Halted = true
		}
		c.PC = target
		return
	}
	c.PC++
}

// Run steps the machine until it halts or maxSteps instructions have
// executed. It returns the number of steps taken.
func (c *Computer) Run(maxSteps int) int {
	steps := 0
	for steps < maxSteps && !c.Halted {
		c.Step()
		steps++
	}
	return steps
}

// SetKey stores a Hack key code in the keyboard register; 0 means no key.
func (c *Computer) SetKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

func (c *Computer) writeRAM(addr, value uint16) {
	if int(addr) < len(c.RAM) {
		c.RAM[addr] = value
	}
}

func (c *Computer) readRAM(addr uint16) uint16 {
	if int(addr) < len(c.RAM) {
		return c.RAM[addr]
	}
	return 0
}

// jumpTaken evaluates the jump bits (j1=LT, j2=EQ, j3=GT) against the signed
// ALU output.
func (c *Computer) jumpTaken(jump, out uint16) bool {
	if jump == 0 {
		return false
	}
	signed := int16(out)
	switch {
	case signed < 0:
		return jump&0b100 != 0
	case signed == 0:
		return jump&0b010 != 0
	default:
		return jump&0b001 != 0
	}
}

// alu evaluates a comp bit pattern. The a bit (bit 6) selects between A and
// M as the second operand; the six c bits select the function.
func (c *Computer) alu(comp uint16) uint16 {
	x := c.D
	y := c.A
	if comp&0b1000000 != 0 {
		y = c.readRAM(c.A)
	}

	switch comp & 0b0111111 {
	case 0b101010:
		return 0
	case 0b111111:
		return 1
	case 0b111010:
		return 0xFFFF
	case 0b001100:
		return x
	case 0b110000:
		return y
	case 0b001101:
		return ^x
	case 0b110001:
		return ^y
	case 0b001111:
		return -x
	case 0b110011:
		return -y
	case 0b011111:
		return x + 1
	case 0b110111:
		return y + 1
	case 0b001110:
		return x - 1
	case 0b110010:
		return y - 1
	case 0b000010:
		return x + y
	case 0b010011:
		return x - y
	case 0b000111:
		return y - x
	case 0b000000:
		return x & y
	case 0b010101:
		return x | y
	}
	return 0
}
