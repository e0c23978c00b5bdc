// Package asm assembles Muri-style source into Nga image cells.
//
// One directive per line:
//
//	: name      define label at the current address
//	i xxxxxxxx  four two-letter mnemonics packed into one cell ('..' is nop)
//	r name      cell holding the address of a label
//	d number    literal cell (decimal, 0x hex, or 'c for a character)
//	s text      one cell per byte of text followed by a NUL cell
//
// Lines starting with '#' and blank lines are ignored. Labels may be used
// before they are defined.
package asm

import (
	"bufio"
	"strconv"
	"strings"

	"retro/internal/code"
	"retro/internal/diag"
)

type Program struct {
	Cells  []int64
	Labels map[string]int64
}

type fixup struct {
	addr  int
	label string
	pos   diag.Pos
}

type assembler struct {
	cells  []int64
	labels map[string]int64
	fixups []fixup
	errs   diag.List
}

// Assemble translates src. path is used only to label diagnostics.
func Assemble(path, src string) (*Program, error) {
	a := &assembler{labels: map[string]int64{}}
	a.errs.Path = path

	sc := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		a.line(line, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	a.resolve()
	if err := a.errs.Err(); err != nil {
		return nil, err
	}
	return &Program{Cells: a.cells, Labels: a.labels}, nil
}

func (a *assembler) line(n int, raw string) {
	text := strings.TrimLeft(raw, " \t")
	if text == "" || text[0] == '#' {
		return
	}
	col := len(raw) - len(text) + 1
	pos := diag.Pos{Line: n, Col: col}

	if len(text) < 2 || (text[1] != ' ' && text[1] != '\t') {
		a.errs.Add(diag.Errorf(pos, "syntax", "expected a directive followed by a space, got %q", text))
		return
	}
	arg := text[2:]
	argPos := diag.Pos{Line: n, Col: col + 2}

	switch text[0] {
	case ':':
		a.label(argPos, strings.TrimSpace(arg))
	case 'i':
		a.instr(argPos, strings.TrimSpace(arg))
	case 'r':
		name := strings.TrimSpace(arg)
		a.fixups = append(a.fixups, fixup{addr: len(a.cells), label: name, pos: argPos})
		a.cells = append(a.cells, 0)
	case 'd':
		v, err := parseNumber(strings.TrimSpace(arg))
		if err != nil {
			a.errs.Add(diag.Errorf(argPos, "number", "%v", err))
			return
		}
		a.cells = append(a.cells, v)
	case 's':
		for i := 0; i < len(arg); i++ {
			a.cells = append(a.cells, int64(arg[i]))
		}
		a.cells = append(a.cells, 0)
	default:
		a.errs.Add(diag.Errorf(pos, "directive", "unknown directive %q", text[0]))
	}
}

func (a *assembler) label(pos diag.Pos, name string) {
	if name == "" || strings.ContainsAny(name, " \t") {
		a.errs.Add(diag.Errorf(pos, "label", "invalid label %q", name))
		return
	}
	if _, ok := a.labels[name]; ok {
		a.errs.Add(diag.Errorf(pos, "label", "label %q already defined", name))
		return
	}
	a.labels[name] = int64(len(a.cells))
}

func (a *assembler) instr(pos diag.Pos, ops string) {
	if len(ops) != 2*code.Lanes {
		a.errs.Add(diag.Errorf(pos, "instr", "expected %d mnemonics, got %q", code.Lanes, ops))
		return
	}
	var lanes [code.Lanes]code.Opcode
	for i := range lanes {
		m := ops[2*i : 2*i+2]
		op, ok := code.LookupMnemonic(m)
		if !ok {
			a.errs.Add(diag.Errorf(diag.Pos{Line: pos.Line, Col: pos.Col + 2*i}, "instr", "unknown mnemonic %q", m))
			return
		}
		lanes[i] = op
	}
	a.cells = append(a.cells, code.Pack(lanes[:]...))
}

func (a *assembler) resolve() {
	for _, f := range a.fixups {
		v, ok := a.labels[f.label]
		if !ok {
			a.errs.Add(diag.Errorf(f.pos, "label", "undefined label %q", f.label))
			continue
		}
		a.cells[f.addr] = v
	}
}

func parseNumber(s string) (int64, error) {
	if len(s) == 2 && s[0] == '\'' {
		return int64(s[1]), nil
	}
	return strconv.ParseInt(s, 0, 64)
}
