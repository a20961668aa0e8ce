package translator

import (
	"fmt"
	"strings"

	"hackvm/pkg/vm"
)

// Hack register conventions used by the calling convention.
const (
	regFrame  = "R14" // frame walker during return
	regReturn = "R15" // saved return address during return
	regPop    = "R13" // scratch for pop target addresses
	tempBase  = 5     // temp segment lives at R5..R12
)

// segmentBase maps the indirect segments to the register holding their base.
var segmentBase = map[string]string{
	"local":    "LCL",
	"argument": "ARG",
	"this":     "THIS",
	"that":     "THAT",
}

// SemanticError reports a command the generator cannot lower: an index outside
// its segment's range, a pop of constant, or a return outside any function.
// Translation of the whole program stops.
type SemanticError struct {
	File string
	Line int
	Text string
	Msg  string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("%s:%d: %s (in %q)", e.File, e.Line, e.Msg, e.Text)
}

// Module is one input unit: a name (used to scope static slots) and its VM
// source text.
type Module struct {
	Name   string
	Source string
}

// CodeWriter lowers VM commands to Hack assembly. One CodeWriter translates a
// whole program: the label counter and function scope it carries must span
// every input module, so modules are fed to a single instance in order. Not
// safe for concurrent use.
type CodeWriter struct {
	out        strings.Builder
	module     string
	fn         string // enclosing function, "" before the first function command
	labelCount int    // monotonic; never reset mid-program
}

func NewCodeWriter() *CodeWriter {
	return &CodeWriter{}
}

// SetModule marks the start of a new input module. Static references emitted
// afterwards use name as their scope, so the same static index in two modules
// never aliases.
func (w *CodeWriter) SetModule(name string) {
	w.module = name
}

// String returns the assembly accumulated so far.
func (w *CodeWriter) String() string {
	return w.out.String()
}

func (w *CodeWriter) line(format string, args ...any) {
	fmt.Fprintf(&w.out, format+"\n", args...)
}

func (w *CodeWriter) comment(format string, args ...any) {
	w.line("// "+format, args...)
}

// nextLabelID hands out a program-wide unique serial, one per emitted branch
// construct. Every construct draws from the same counter, so two comparisons
// generated from identical source lines still get distinct labels.
func (w *CodeWriter) nextLabelID() int {
	id := w.labelCount
	w.labelCount++
	return id
}

// scoped mangles a VM label with the enclosing function name, keeping label L
// in function f distinct from label L in function g.
func (w *CodeWriter) scoped(label string) string {
	if w.fn == "" {
		return label
	}
	return w.fn + "$" + label
}

// WriteBootstrap emits the program prologue: SP=256 followed by call Sys.init 0.
// It reuses the standard call lowering, so Sys.init returns through a real frame.
func (w *CodeWriter) WriteBootstrap() {
	w.comment("bootstrap")
	w.line("@256")
	w.line("D=A")
	w.line("@SP")
	w.line("M=D")
	w.writeCall("Sys.init", 0)
}

// WriteCommand appends the assembly implementing c.
func (w *CodeWriter) WriteCommand(c vm.Command) error {
	switch c.Type {
	case vm.CmdArithmetic:
		w.writeArithmetic(c)
	case vm.CmdPush:
		return w.writePush(c)
	case vm.CmdPop:
		return w.writePop(c)
	case vm.CmdLabel:
		w.line("(%s)", w.scoped(c.Label))
	case vm.CmdGoto:
		w.comment("goto %s", c.Label)
		w.line("@%s", w.scoped(c.Label))
		w.line("0;JMP")
	case vm.CmdIf:
		w.comment("if-goto %s", c.Label)
		w.popD()
		w.line("@%s", w.scoped(c.Label))
		w.line("D;JNE")
	case vm.CmdFunction:
		w.writeFunction(c)
	case vm.CmdCall:
		w.comment("call %s %d", c.Label, c.Count)
		w.writeCall(c.Label, c.Count)
	case vm.CmdReturn:
		if w.fn == "" {
			return w.semErr(c, "return outside any function")
		}
		w.writeReturn()
	default:
		return w.semErr(c, "unknown command type")
	}
	return nil
}

func (w *CodeWriter) semErr(c vm.Command, msg string) error {
	return &SemanticError{File: w.module, Line: c.Line, Text: c.Text, Msg: msg}
}

// pushD pushes D onto the stack.
func (w *CodeWriter) pushD() {
	w.line("@SP")
	w.line("A=M")
	w.line("M=D")
	w.line("@SP")
	w.line("M=M+1")
}

// popD pops the stack top into D.
func (w *CodeWriter) popD() {
	w.line("@SP")
	w.line("AM=M-1")
	w.line("D=M")
}

func (w *CodeWriter) writeArithmetic(c vm.Command) {
	w.comment("%s", c.Op)
	switch c.Op {
	case "add", "sub", "and", "or":
		w.popD()
		w.line("A=A-1")
		switch c.Op {
		case "add":
			w.line("M=D+M")
		case "sub":
			w.line("M=M-D")
		case "and":
			w.line("M=D&M")
		case "or":
			w.line("M=D|M")
		}
	case "neg", "not":
		w.line("@SP")
		w.line("A=M-1")
		if c.Op == "neg" {
			w.line("M=-M")
		} else {
			w.line("M=!M")
		}
	case "eq", "gt", "lt":
		w.writeCompare(c.Op)
	}
}

// writeCompare pops two words, compares them as signed values and pushes -1
// (true) or 0 (false). The branch labels are unique per emission.
func (w *CodeWriter) writeCompare(op string) {
	jump := map[string]string{"eq": "JEQ", "gt": "JGT", "lt": "JLT"}[op]
	id := w.nextLabelID()
	isTrue := fmt.Sprintf("JUMP_%d", id)
	done := fmt.Sprintf("CONTINUE_%d", id)
	w.popD()
	w.line("A=A-1")
	w.line("D=M-D")
	w.line("@%s", isTrue)
	w.line("D;%s", jump)
	w.line("@SP")
	w.line("A=M-1")
	w.line("M=0")
	w.line("@%s", done)
	w.line("0;JMP")
	w.line("(%s)", isTrue)
	w.line("@SP")
	w.line("A=M-1")
	w.line("M=-1")
	w.line("(%s)", done)
}

func (w *CodeWriter) writePush(c vm.Command) error {
	w.comment("push %s %d", c.Segment, c.Index)
	switch c.Segment {
	case "constant":
		w.line("@%d", c.Index)
		w.line("D=A")
	case "local", "argument", "this", "that":
		w.line("@%d", c.Index)
		w.line("D=A")
		w.line("@%s", segmentBase[c.Segment])
		w.line("A=D+M")
		w.line("D=M")
	case "static":
		if c.Index > maxStatic {
			return w.semErr(c, fmt.Sprintf("static index %d out of range", c.Index))
		}
		w.line("@%s.%d", w.module, c.Index)
		w.line("D=M")
	case "temp":
		if c.Index > maxTemp {
			return w.semErr(c, fmt.Sprintf("temp index %d out of range", c.Index))
		}
		w.line("@%d", tempBase+c.Index)
		w.line("D=M")
	case "pointer":
		reg, err := pointerReg(c.Index)
		if err != nil {
			return w.semErr(c, err.Error())
		}
		w.line("@%s", reg)
		w.line("D=M")
	default:
		return w.semErr(c, "undefined segment "+c.Segment)
	}
	w.pushD()
	return nil
}

func (w *CodeWriter) writePop(c vm.Command) error {
	w.comment("pop %s %d", c.Segment, c.Index)
	switch c.Segment {
	case "constant":
		return w.semErr(c, "cannot pop to constant segment")
	case "local", "argument", "this", "that":
		// Target address goes through R13; D is clobbered by the pop itself.
		w.line("@%d", c.Index)
		w.line("D=A")
		w.line("@%s", segmentBase[c.Segment])
		w.line("D=D+M")
		w.line("@%s", regPop)
		w.line("M=D")
		w.popD()
		w.line("@%s", regPop)
		w.line("A=M")
		w.line("M=D")
	case "static":
		if c.Index > maxStatic {
			return w.semErr(c, fmt.Sprintf("static index %d out of range", c.Index))
		}
		w.popD()
		w.line("@%s.%d", w.module, c.Index)
		w.line("M=D")
	case "temp":
		if c.Index > maxTemp {
			return w.semErr(c, fmt.Sprintf("temp index %d out of range", c.Index))
		}
		w.popD()
		w.line("@%d", tempBase+c.Index)
		w.line("M=D")
	case "pointer":
		reg, err := pointerReg(c.Index)
		if err != nil {
			return w.semErr(c, err.Error())
		}
		w.popD()
		w.line("@%s", reg)
		w.line("M=D")
	default:
		return w.semErr(c, "undefined segment "+c.Segment)
	}
	return nil
}

const (
	maxTemp   = 7
	maxStatic = 239
)

func pointerReg(index int) (string, error) {
	switch index {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	}
	return "", fmt.Errorf("pointer index %d out of range", index)
}

// writeFunction emits the entry marker for a function and zero-initializes its
// locals. The function scope stays in effect until the next function command.
func (w *CodeWriter) writeFunction(c vm.Command) {
	w.fn = c.Label
	w.comment("function %s %d", c.Label, c.Count)
	w.line("(%s)", c.Label)
	for i := 0; i < c.Count; i++ {
		w.line("@0")
		w.line("D=A")
		w.pushD()
	}
}

// writeCall emits the caller half of the ABI: push the return address and the
// four frame registers, rebase ARG and LCL, jump, then place the return label.
func (w *CodeWriter) writeCall(fn string, numArgs int) {
	ret := fmt.Sprintf("RETURN_%s_%d", fn, w.nextLabelID())
	w.line("@%s", ret)
	w.line("D=A")
	w.pushD()
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		w.line("@%s", reg)
		w.line("D=M")
		w.pushD()
	}
	// ARG = SP - 5 - numArgs (5 = return address + the four saved registers).
	w.line("@SP")
	w.line("D=M")
	w.line("@5")
	w.line("D=D-A")
	w.line("@%d", numArgs)
	w.line("D=D-A")
	w.line("@ARG")
	w.line("M=D")
	w.line("@SP")
	w.line("D=M")
	w.line("@LCL")
	w.line("M=D")
	w.line("@%s", fn)
	w.line("0;JMP")
	w.line("(%s)", ret)
}

// writeReturn tears down the current frame. The return address is copied out
// before the result overwrites the argument area, which is what keeps the
// zero-argument case correct (there the return address sits exactly where the
// result lands).
func (w *CodeWriter) writeReturn() {
	w.comment("return")
	w.line("@LCL")
	w.line("D=M")
	w.line("@%s", regFrame)
	w.line("M=D")
	w.line("@5")
	w.line("A=D-A")
	w.line("D=M")
	w.line("@%s", regReturn)
	w.line("M=D")
	// Result to *ARG, then SP = ARG + 1.
	w.popD()
	w.line("@ARG")
	w.line("A=M")
	w.line("M=D")
	w.line("D=A+1")
	w.line("@SP")
	w.line("M=D")
	// Restore THAT, THIS, ARG, LCL walking the frame pointer down.
	for _, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		w.line("@%s", regFrame)
		w.line("AM=M-1")
		w.line("D=M")
		w.line("@%s", reg)
		w.line("M=D")
	}
	w.line("@%s", regReturn)
	w.line("A=M")
	w.line("0;JMP")
}
