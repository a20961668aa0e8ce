package translator

import (
	"errors"
	"strings"
	"testing"

	"hackvm/pkg/vm"
)

// assertContains checks that the generated assembly contains the expected substring.
func assertContains(t *testing.T, code, expected string) {
	t.Helper()
	if !strings.Contains(code, expected) {
		t.Errorf("Expected assembly to contain %q, but it didn't.\nAssembly:\n%s", expected, code)
	}
}

// write translates source as one module named Test and returns the assembly.
func write(t *testing.T, source string) string {
	t.Helper()
	out, err := Translate([]Module{{Name: "Test", Source: source}}, false)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	return out
}

// writeErr translates source expecting a semantic error.
func writeErr(t *testing.T, source string) *SemanticError {
	t.Helper()
	_, err := Translate([]Module{{Name: "Test", Source: source}}, false)
	if err == nil {
		t.Fatal("expected a translation error, got none")
	}
	var sem *SemanticError
	if !errors.As(err, &sem) {
		t.Fatalf("expected *SemanticError, got %T: %v", err, err)
	}
	return sem
}

func TestWrite_PushConstant(t *testing.T) {
	code := write(t, "push constant 7")
	assertContains(t, code, "@7")
	assertContains(t, code, "D=A")
	assertContains(t, code, "M=M+1")
}

func TestWrite_Segments(t *testing.T) {
	code := write(t, "push local 2\npop argument 3\npush this 0\npop that 1")
	assertContains(t, code, "@LCL")
	assertContains(t, code, "@ARG")
	assertContains(t, code, "@THIS")
	assertContains(t, code, "@THAT")
	assertContains(t, code, "A=D+M") // push addressing
	assertContains(t, code, "@R13")  // pop target scratch
}

func TestWrite_TempAddressing(t *testing.T) {
	code := write(t, "push temp 0\npush temp 7")
	assertContains(t, code, "@5")
	assertContains(t, code, "@12")
}

func TestWrite_Pointer(t *testing.T) {
	code := write(t, "pop pointer 0\npop pointer 1")
	assertContains(t, code, "@THIS\nM=D")
	assertContains(t, code, "@THAT\nM=D")
}

func TestWrite_StaticIsModuleScoped(t *testing.T) {
	out, err := Translate([]Module{
		{Name: "Foo", Source: "push static 3"},
		{Name: "Bar", Source: "pop static 3"},
	}, false)
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	assertContains(t, out, "@Foo.3")
	assertContains(t, out, "@Bar.3")
}

func TestWrite_LabelScoping(t *testing.T) {
	code := write(t, `function Test.f 0
label L
goto L
function Test.g 0
label L
if-goto L
`)
	assertContains(t, code, "(Test.f$L)")
	assertContains(t, code, "(Test.g$L)")
	assertContains(t, code, "@Test.f$L\n0;JMP")
	assertContains(t, code, "@Test.g$L\nD;JNE")
}

func TestWrite_LabelOutsideFunctionIsBare(t *testing.T) {
	code := write(t, "label TOP\ngoto TOP")
	assertContains(t, code, "(TOP)")
	assertContains(t, code, "@TOP\n0;JMP")
}

// Two comparisons, even from identical source lines, must never share an
// internally generated label.
func TestWrite_UniqueCompareLabels(t *testing.T) {
	code := write(t, "eq\neq\ngt\nlt")
	seen := map[string]bool{}
	for _, line := range strings.Split(code, "\n") {
		if strings.HasPrefix(line, "(JUMP_") || strings.HasPrefix(line, "(CONTINUE_") {
			if seen[line] {
				t.Fatalf("duplicate generated label %s\nAssembly:\n%s", line, code)
			}
			seen[line] = true
		}
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct branch labels, found %d", len(seen))
	}
}

func TestWrite_CallFrame(t *testing.T) {
	code := write(t, "call Test.f 2")
	// Saved frame order and the ARG rebase: SP - 5 - numArgs.
	for _, want := range []string{"@LCL", "@ARG", "@THIS", "@THAT", "@5\nD=D-A\n@2\nD=D-A\n@ARG\nM=D"} {
		assertContains(t, code, want)
	}
	assertContains(t, code, "@Test.f\n0;JMP")
	assertContains(t, code, "(RETURN_Test.f_0)")
}

func TestWrite_FunctionInitializesLocals(t *testing.T) {
	code := write(t, "function Test.f 3")
	assertContains(t, code, "(Test.f)")
	if got := strings.Count(code, "@0\nD=A"); got != 3 {
		t.Errorf("expected 3 zero-initialized locals, found %d", got)
	}
}

func TestWrite_SemanticErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		msg    string
	}{
		{"return outside function", "return", "return outside"},
		{"pop constant", "pop constant 5", "cannot pop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sem := writeErr(t, tt.source)
			if !strings.Contains(sem.Msg, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, sem.Msg)
			}
		})
	}
}

// Out-of-range indexes are caught in the parse stage for text input, and in
// the generator for directly constructed commands.
func TestWriteCommand_IndexRange(t *testing.T) {
	w := NewCodeWriter()
	w.SetModule("Test")

	if err := w.WriteCommand(vm.Command{Type: vm.CmdPush, Segment: "temp", Index: 7}); err != nil {
		t.Errorf("push temp 7 should be valid: %v", err)
	}
	if err := w.WriteCommand(vm.Command{Type: vm.CmdPush, Segment: "temp", Index: 8}); err == nil {
		t.Error("push temp 8 should be rejected")
	}
	if err := w.WriteCommand(vm.Command{Type: vm.CmdPush, Segment: "pointer", Index: 2}); err == nil {
		t.Error("push pointer 2 should be rejected")
	}
	if err := w.WriteCommand(vm.Command{Type: vm.CmdPop, Segment: "bogus", Index: 0}); err == nil {
		t.Error("undefined segment should be rejected")
	}
}

func TestWrite_Bootstrap(t *testing.T) {
	w := NewCodeWriter()
	w.WriteBootstrap()
	code := w.String()
	assertContains(t, code, "@256")
	assertContains(t, code, "@SP\nM=D")
	assertContains(t, code, "@Sys.init\n0;JMP")
}

func TestTranslate_ParseErrorAbortsWholeProgram(t *testing.T) {
	_, err := Translate([]Module{
		{Name: "Good", Source: "push constant 1"},
		{Name: "Bad", Source: "push junk 1"},
	}, false)
	if err == nil {
		t.Fatal("expected error from malformed module")
	}
	var syn *vm.SyntaxError
	if !errors.As(err, &syn) {
		t.Fatalf("expected *vm.SyntaxError, got %T", err)
	}
	if syn.File != "Bad" {
		t.Errorf("error should name the failing module, got %q", syn.File)
	}
}
