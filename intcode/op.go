package intcode

import (
	"fmt"
	"strings"
)

// Op represents an Intcode opcode.
type Op byte

const (
	ADD Op = 1
	MUL Op = 2
	IN  Op = 3
	OUT Op = 4
	JT  Op = 5
	JF  Op = 6
	LT  Op = 7
	EQ  Op = 8
	ARB Op = 9
	HLT Op = 99
)

var opStrings = map[Op]string{
	ADD: "ADD",
	MUL: "MUL",
	IN:  "IN",
	OUT: "OUT",
	JT:  "JT",
	JF:  "JF",
	LT:  "LT",
	EQ:  "EQ",
	ARB: "ARB",
	HLT: "HLT",
}

func (op Op) String() string {
	if s, ok := opStrings[op]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", byte(op))
}

// Valid reports whether op is part of the instruction set.
func (op Op) Valid() bool {
	_, ok := opStrings[op]
	return ok
}

// Params reports the number of parameters that follow the opcode.
func (op Op) Params() int {
	switch op {
	case ADD, MUL, LT, EQ:
		return 3
	case JT, JF:
		return 2
	case IN, OUT, ARB:
		return 1
	default:
		return 0
	}
}

// Len reports the length of the instruction in memory cells.
func (op Op) Len() int { return op.Params() + 1 }

// Writes reports the index of the parameter op writes through,
// or -1 if op writes nothing.
func (op Op) Writes() int {
	switch op {
	case ADD, MUL, LT, EQ:
		return 2
	case IN:
		return 0
	default:
		return -1
	}
}

// Mode is a parameter addressing mode.
type Mode byte

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}

// Param is an instruction parameter: a raw cell value and its mode.
type Param struct {
	Value int64
	Mode  Mode
}

func (p Param) String() string {
	switch p.Mode {
	case Immediate:
		return fmt.Sprintf("#%d", p.Value)
	case Relative:
		if p.Value < 0 {
			return fmt.Sprintf("[rb%d]", p.Value)
		}
		return fmt.Sprintf("[rb+%d]", p.Value)
	default:
		return fmt.Sprintf("[%d]", p.Value)
	}
}

// Instr is a decoded instruction.
type Instr struct {
	Op     Op
	Params [3]Param
}

func (in Instr) String() string {
	var b strings.Builder
	b.WriteString(in.Op.String())
	for _, p := range in.Params[:in.Op.Params()] {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	return b.String()
}

// decode splits an instruction cell into its opcode and modes.
// It panics with a FaultCode if the cell is not a valid instruction.
func decode(cell int64) (Op, [3]Mode) {
	var modes [3]Mode
	if cell < 0 {
		panic(IllegalOpcode)
	}
	op := Op(cell % 100)
	if !op.Valid() {
		panic(IllegalOpcode)
	}
	m := cell / 100
	for i := range modes {
		d := m % 10
		if d > 2 {
			panic(IllegalMode)
		}
		modes[i] = Mode(d)
		m /= 10
	}
	if m != 0 {
		panic(IllegalMode)
	}
	return op, modes
}
