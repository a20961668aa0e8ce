package vm

import (
	"strconv"
	"strings"
)

var arithmeticOps = map[string]bool{
	"add": true,
	"sub": true,
	"neg": true,
	"eq":  true,
	"gt":  true,
	"lt":  true,
	"and": true,
	"or":  true,
	"not": true,
}

var segments = map[string]bool{
	"constant": true,
	"local":    true,
	"argument": true,
	"this":     true,
	"that":     true,
	"static":   true,
	"pointer":  true,
	"temp":     true,
}

// segmentMax holds the largest valid index per bounded segment. Segments not
// listed accept any non-negative index.
var segmentMax = map[string]int{
	"constant": 32767,
	"static":   239,
	"pointer":  1,
	"temp":     7,
}

// Parser walks VM source text one command at a time, in the manner of
// bufio.Scanner. A fresh Parser over the same text yields the same sequence.
type Parser struct {
	file  string
	lines []string
	pos   int
	cmd   Command
	err   error
}

// NewParser returns a parser over one module's source text. file is used in
// error messages only.
func NewParser(file, source string) *Parser {
	return &Parser{
		file:  file,
		lines: strings.Split(source, "\n"),
	}
}

// Scan advances to the next command. It returns false at end of input or on
// the first malformed line; Err distinguishes the two.
func (p *Parser) Scan() bool {
	if p.err != nil {
		return false
	}
	for p.pos < len(p.lines) {
		lineNo := p.pos + 1
		line := stripComment(p.lines[p.pos])
		p.pos++
		if line == "" {
			continue
		}
		cmd, err := parseCommand(line, lineNo)
		if err != nil {
			err.File = p.file
			p.err = err
			return false
		}
		p.cmd = cmd
		return true
	}
	return false
}

// Command returns the command produced by the last successful Scan.
func (p *Parser) Command() Command {
	return p.cmd
}

// Err returns the first syntax error hit, or nil if the input was exhausted.
func (p *Parser) Err() error {
	return p.err
}

// Parse is the eager form: it returns every command in source, or the first
// syntax error.
func Parse(file, source string) ([]Command, error) {
	p := NewParser(file, source)
	var cmds []Command
	for p.Scan() {
		cmds = append(cmds, p.Command())
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return cmds, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseCommand(line string, lineNo int) (Command, *SyntaxError) {
	fail := func(msg string) (Command, *SyntaxError) {
		return Command{}, &SyntaxError{Line: lineNo, Text: line, Msg: msg}
	}

	fields := strings.Fields(line)
	cmd := Command{Line: lineNo, Text: line}

	switch op := fields[0]; {
	case arithmeticOps[op]:
		if len(fields) != 1 {
			return fail(op + " takes no operands")
		}
		cmd.Type = CmdArithmetic
		cmd.Op = op

	case op == "push" || op == "pop":
		if len(fields) != 3 {
			return fail(op + " expects a segment and an index")
		}
		seg := fields[1]
		if !segments[seg] {
			return fail("unknown segment " + strconv.Quote(seg))
		}
		index, err := strconv.Atoi(fields[2])
		if err != nil || index < 0 {
			return fail("index must be a non-negative integer")
		}
		if max, bounded := segmentMax[seg]; bounded && index > max {
			return fail("index " + fields[2] + " out of range for segment " + seg)
		}
		if op == "push" {
			cmd.Type = CmdPush
		} else {
			cmd.Type = CmdPop
		}
		cmd.Segment = seg
		cmd.Index = index

	case op == "label" || op == "goto" || op == "if-goto":
		if len(fields) != 2 {
			return fail(op + " expects one label")
		}
		if !isIdentifier(fields[1]) {
			return fail("invalid label " + strconv.Quote(fields[1]))
		}
		switch op {
		case "label":
			cmd.Type = CmdLabel
		case "goto":
			cmd.Type = CmdGoto
		default:
			cmd.Type = CmdIf
		}
		cmd.Label = fields[1]

	case op == "function" || op == "call":
		if len(fields) != 3 {
			return fail(op + " expects a name and a count")
		}
		if !isIdentifier(fields[1]) {
			return fail("invalid function name " + strconv.Quote(fields[1]))
		}
		count, err := strconv.Atoi(fields[2])
		if err != nil || count < 0 {
			return fail("count must be a non-negative integer")
		}
		if op == "function" {
			cmd.Type = CmdFunction
		} else {
			cmd.Type = CmdCall
		}
		cmd.Label = fields[1]
		cmd.Count = count

	case op == "return":
		if len(fields) != 1 {
			return fail("return takes no operands")
		}
		cmd.Type = CmdReturn

	default:
		return fail("unknown command " + strconv.Quote(op))
	}

	return cmd, nil
}

// isIdentifier reports whether s is a valid VM label or function name:
// a letter, underscore, dot or colon followed by those plus digits.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '.', r == ':':
			continue
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}
