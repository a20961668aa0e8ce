package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestModuleName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"Foo.vm", "Foo"},
		{"/tmp/project/Main.vm", "Main"},
		{"Sys", "Sys"},
	}
	for _, tt := range tests {
		if got := ModuleName(tt.path); got != tt.want {
			t.Errorf("ModuleName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCollectModules_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Simple.vm")
	writeFile(t, path, "push constant 1\n")

	modules, out, bootstrap, err := CollectModules(path)
	if err != nil {
		t.Fatalf("CollectModules failed: %v", err)
	}
	if len(modules) != 1 || modules[0].Name != "Simple" {
		t.Errorf("modules: got %+v", modules)
	}
	if bootstrap {
		t.Error("single-file input should not force the bootstrap")
	}
	if want := filepath.Join(dir, "Simple.asm"); out != want {
		t.Errorf("output path: expected %s, got %s", want, out)
	}
}

func TestCollectModules_Directory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Prog")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "Sys.vm"), "function Sys.init 0\n")
	writeFile(t, filepath.Join(dir, "Main.vm"), "function Main.main 0\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	modules, out, bootstrap, err := CollectModules(dir)
	if err != nil {
		t.Fatalf("CollectModules failed: %v", err)
	}
	if !bootstrap {
		t.Error("directory input should enable the bootstrap")
	}
	if len(modules) != 2 || modules[0].Name != "Main" || modules[1].Name != "Sys" {
		t.Errorf("expected sorted modules [Main Sys], got %+v", modules)
	}
	if want := filepath.Join(dir, "Prog.asm"); out != want {
		t.Errorf("output path: expected %s, got %s", want, out)
	}
}

func TestCollectModules_Errors(t *testing.T) {
	if _, _, _, err := CollectModules(filepath.Join(t.TempDir(), "missing.vm")); err == nil {
		t.Error("expected error for a missing file")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "wrong.txt")
	writeFile(t, path, "x")
	if _, _, _, err := CollectModules(path); err == nil {
		t.Error("expected error for a non-.vm file")
	}
	if _, _, _, err := CollectModules(dir); err == nil {
		t.Error("expected error for a directory with no .vm files")
	}
}

func TestLoadProgram_TranslatesAndAssembles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Add.vm")
	writeFile(t, path, "push constant 2\npush constant 3\nadd\nlabel END\ngoto END\n")

	words, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("expected machine words")
	}
}

func TestLoadProgram_AsmPassthrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.asm")
	writeFile(t, path, "@5\nD=A\n")

	words, err := LoadProgram(path)
	if err != nil {
		t.Fatalf("LoadProgram failed: %v", err)
	}
	if len(words) != 2 || words[0] != 5 {
		t.Errorf("unexpected words %v", words)
	}
}
