//go:build !js

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hackvm/pkg/asm"
	"hackvm/pkg/cpu"
	"hackvm/pkg/utils"
)

func main() {
	inPath := flag.String("in", "", "input .vm file, directory of .vm files, or .asm file")
	outPath := flag.String("out", "", "output .hack file path (default: input with .hack extension)")
	runProgram := flag.Bool("run", false, "run the assembled program on the emulated machine")
	runHackPath := flag.String("run-hack", "", "run an existing .hack file")
	maxSteps := flag.Int("steps", 50_000_000, "instruction budget when running")
	flag.Parse()

	if *runProgram && *runHackPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-hack, not both")
		os.Exit(2)
	}

	var words []uint16
	if *inPath != "" {
		var err error
		words, err = utils.LoadProgram(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to build %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}
		if err := os.WriteFile(output, []byte(asm.FormatHack(words)), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %q: %v\n", output, err)
			os.Exit(1)
		}
		fmt.Printf("assembled %d words -> %s\n", len(words), output)
	}

	if *inPath == "" && *runHackPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to translate/assemble, or -run-hack <file> to run an existing binary")
		flag.Usage()
		os.Exit(2)
	}

	switch {
	case *runHackPath != "":
		data, err := os.ReadFile(*runHackPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %q: %v\n", *runHackPath, err)
			os.Exit(1)
		}
		words, err = asm.ParseHack(string(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad .hack file %q: %v\n", *runHackPath, err)
			os.Exit(1)
		}
	case !*runProgram:
		return
	}

	if err := runWords(words, *maxSteps); err != nil {
		fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
		os.Exit(1)
	}
}

func defaultOutputPath(inPath string) string {
	ext := filepath.Ext(inPath)
	if ext == "" {
		return filepath.Join(inPath, filepath.Base(filepath.Clean(inPath))+".hack")
	}
	return strings.TrimSuffix(inPath, ext) + ".hack"
}

func runWords(words []uint16, maxSteps int) error {
	mach := cpu.New()
	if err := mach.LoadProgram(words); err != nil {
		return err
	}
	steps := mach.Run(maxSteps)

	sp := mach.RAM[0]
	top := int16(0)
	if sp > 256 && int(sp) < len(mach.RAM) {
		top = int16(mach.RAM[sp-1])
	}
	fmt.Printf(
		"run complete: steps=%d halted=%t PC=%d SP=%d top=%d\n",
		steps, mach.Halted, mach.PC, sp, top,
	)
	return nil
}
