package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hackvm/pkg/asm"
	"hackvm/pkg/translator"
)

// CollectModules gathers the VM modules named by path: one .vm file, or every
// .vm file directly inside a directory in sorted order. It also derives the
// default output path and whether directory-style bootstrap applies.
func CollectModules(path string) (modules []translator.Module, outPath string, bootstrap bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", false, err
	}

	if !info.IsDir() {
		if filepath.Ext(path) != ".vm" {
			return nil, "", false, fmt.Errorf("input file must have a .vm extension: %s", path)
		}
		mod, err := readModule(path)
		if err != nil {
			return nil, "", false, err
		}
		out := strings.TrimSuffix(path, ".vm") + ".asm"
		return []translator.Module{mod}, out, false, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, "", false, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".vm" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, "", false, fmt.Errorf("no .vm files in %s", path)
	}
	sort.Strings(names)

	for _, name := range names {
		mod, err := readModule(filepath.Join(path, name))
		if err != nil {
			return nil, "", false, err
		}
		modules = append(modules, mod)
	}
	out := filepath.Join(path, filepath.Base(filepath.Clean(path))+".asm")
	return modules, out, true, nil
}

// LoadProgram produces machine words from path, which may be a pre-assembled
// .asm file, a single .vm file, or a directory of .vm files.
func LoadProgram(path string) ([]uint16, error) {
	if filepath.Ext(path) == ".asm" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return asm.Assemble(string(data))
	}

	modules, _, bootstrap, err := CollectModules(path)
	if err != nil {
		return nil, err
	}
	if !bootstrap && len(modules) == 1 && translator.DefinesSysInit(modules[0].Source) {
		bootstrap = true
	}
	assembly, err := translator.Translate(modules, bootstrap)
	if err != nil {
		return nil, err
	}
	return asm.Assemble(assembly)
}

func readModule(path string) (translator.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return translator.Module{}, err
	}
	return translator.Module{
		Name:   ModuleName(path),
		Source: string(data),
	}, nil
}

// ModuleName is the file base without its extension; it scopes the module's
// static slots in the emitted assembly.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
