package main

import (
	"fmt"
	"log"
	"os"

	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
)

// maxSteps bounds headless runs; Hack programs signal completion by spinning
// in place, so an unbounded run would never return for a buggy program either.
const maxSteps = 50_000_000

// Runs a VM program (or pre-assembled .asm) to completion without a display
// and prints the resulting stack, for quick checks from the terminal.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: console <file.vm | directory | file.asm> [screenshot.png]")
	}

	words, err := utils.LoadProgram(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	mach := cpu.New()
	if err := mach.LoadProgram(words); err != nil {
		log.Fatal(err)
	}

	steps := mach.Run(maxSteps)
	if !mach.Halted {
		fmt.Printf("still running after %d steps\n", steps)
	} else {
		fmt.Printf("halted after %d steps\n", steps)
	}

	sp := mach.RAM[0]
	fmt.Printf("SP=%d\n", sp)
	for addr := uint16(256); addr < sp && addr < 280; addr++ {
		fmt.Printf("  stack[%d] = %d\n", addr, int16(mach.RAM[addr]))
	}

	if len(os.Args) > 2 {
		if err := mach.SaveScreenshot(os.Args[2]); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", os.Args[2])
	}
}
