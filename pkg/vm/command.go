package vm

import "fmt"

// CommandType identifies the kind of a VM command.
type CommandType int

const (
	CmdArithmetic CommandType = iota
	CmdPush
	CmdPop
	CmdLabel
	CmdGoto
	CmdIf
	CmdFunction
	CmdCall
	CmdReturn
)

func (t CommandType) String() string {
	switch t {
	case CmdArithmetic:
		return "arithmetic"
	case CmdPush:
		return "push"
	case CmdPop:
		return "pop"
	case CmdLabel:
		return "label"
	case CmdGoto:
		return "goto"
	case CmdIf:
		return "if-goto"
	case CmdFunction:
		return "function"
	case CmdCall:
		return "call"
	case CmdReturn:
		return "return"
	}
	return "unknown"
}

// Command is one parsed VM instruction. Values are immutable once built;
// only the fields relevant to Type are set.
type Command struct {
	Type    CommandType
	Op      string // arithmetic operator (add, sub, neg, eq, gt, lt, and, or, not)
	Segment string // push/pop memory segment
	Index   int    // push/pop index
	Label   string // label/goto/if-goto target, or function/call name
	Count   int    // numLocals for function, numArgs for call

	Line int    // 1-based line in the source module
	Text string // raw source text after comment stripping
}

// SyntaxError reports a malformed VM instruction line. The parse stops at the
// first one; there is no recovery.
type SyntaxError struct {
	File string
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: syntax error: %s (in %q)", e.File, e.Line, e.Msg, e.Text)
}
