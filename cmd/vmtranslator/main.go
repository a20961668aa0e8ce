package main

import (
	"fmt"
	"os"

	"hackvm/pkg/translator"
	"hackvm/pkg/utils"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: vmtranslator <file.vm | directory> [output.asm]")
		os.Exit(1)
	}

	modules, outPath, bootstrap, err := utils.CollectModules(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	// Single-file programs only get the bootstrap if they carry their own
	// Sys.init; directory programs always do.
	if !bootstrap && len(modules) == 1 && translator.DefinesSysInit(modules[0].Source) {
		bootstrap = true
	}

	assembly, err := translator.Translate(modules, bootstrap)
	if err != nil {
		// No output file is written on error; a partial translation is never valid.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, []byte(assembly), 0644); err != nil {
		fmt.Fprintln(os.Stderr, "write error:", err)
		os.Exit(1)
	}
	fmt.Println("wrote", outPath)
}
