// Package intcode provides an implementation of an Intcode computer, called
// Machine, that can be used to execute Intcode programs.
//
// A Machine has a single growable memory of signed integers. Reads and writes
// beyond the end of memory grow it with zero cells, always leaving at least
// three cells of padding so that a complete instruction can be decoded at any
// address that has been touched.
package intcode

import "fmt"

// pad is the number of zero cells kept beyond the highest touched address.
const pad = 3

// MaxAddr is the highest address a program may touch or jump to.
// Memory is at most MaxAddr+1+pad cells (about 128MiB).
const MaxAddr = 1<<24 - 1

// Machine is an implementation of an Intcode computer.
type Machine struct {
	// Mem is the working memory. Callers may read and patch it directly
	// between calls to Run; indices within the loaded image are always valid.
	Mem []int64

	PC   int   // address of the next instruction
	Base int64 // relative base

	halted bool
	image  []int64
}

// NewMachine returns an Intcode machine loaded with a copy of image.
// The caller's slice is not retained.
func NewMachine(image []int64) *Machine {
	m := &Machine{image: append([]int64(nil), image...)}
	m.Reset()
	return m
}

// Reset restores memory to the image the machine was created with
// and clears the program counter, relative base and halted flag.
func (m *Machine) Reset() {
	m.Mem = make([]int64, len(m.image)+pad)
	copy(m.Mem, m.image)
	m.PC = 0
	m.Base = 0
	m.halted = false
}

// Halted reports whether the machine has executed a HLT instruction.
func (m *Machine) Halted() bool { return m.halted }

// Image returns the program the machine was created with.
// The returned slice must not be modified.
func (m *Machine) Image() []int64 { return m.image }

// Run executes instructions until the machine halts or h returns Break in
// response to an output. Run returns a Fault if the program is malformed or
// h violates the Handler contract. Calling Run on a halted machine does nothing.
func (m *Machine) Run(h Handler) error {
	for !m.halted {
		a, err := m.Step(h)
		if err != nil {
			return err
		}
		if a == ActionBreak {
			return nil
		}
	}
	return nil
}

// Step executes the instruction at m.PC. It reports ActionBreak if that
// instruction was an output and h asked to suspend execution.
// A halted machine does nothing and returns ActionContinue.
func (m *Machine) Step(h Handler) (a Action, err error) {
	if m.halted {
		return ActionContinue, nil
	}
	pc := m.PC
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(FaultCode); ok {
				var cell int64
				if pc >= 0 && pc < len(m.Mem) {
					cell = m.Mem[pc]
				}
				m.PC = pc
				a, err = ActionContinue, Fault{Code: code, PC: pc, Cell: cell}
			} else {
				panic(e)
			}
		}
	}()
	return m.exec(m.decode(pc), h), nil
}

// Decode decodes the instruction at addr without executing it.
// Memory is not grown; cells past its end read as zero.
func (m *Machine) Decode(addr int) (in Instr, err error) {
	cell := func(a int) int64 {
		if a >= 0 && a < len(m.Mem) {
			return m.Mem[a]
		}
		return 0
	}
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(FaultCode); ok {
				err = Fault{Code: code, PC: addr, Cell: cell(addr)}
			} else {
				panic(e)
			}
		}
	}()
	if addr < 0 {
		panic(NegativeAddress)
	}
	op, modes := decode(cell(addr))
	in.Op = op
	for i := range in.Params {
		in.Params[i] = Param{Value: cell(addr + 1 + i), Mode: modes[i]}
	}
	return in, nil
}

func (m *Machine) decode(pc int) Instr {
	if pc < 0 {
		panic(NegativeAddress)
	}
	if pc > MaxAddr {
		panic(AddressRange)
	}
	m.grow(pc + 3)
	op, modes := decode(m.Mem[pc])
	in := Instr{Op: op}
	for i := range in.Params {
		in.Params[i] = Param{Value: m.Mem[pc+1+i], Mode: modes[i]}
	}
	return in
}

func (m *Machine) exec(in Instr, h Handler) Action {
	p := &in.Params
	switch in.Op {
	case ADD:
		m.write(p[2], m.read(p[0])+m.read(p[1]))
	case MUL:
		m.write(p[2], m.read(p[0])*m.read(p[1]))
	case IN:
		r := h.IO(Event{Kind: InputRequested})
		if r.Kind != InputValue {
			panic(BadResponse)
		}
		m.write(p[0], r.Value)
	case OUT:
		r := h.IO(Event{Kind: OutputProduced, Value: m.read(p[0])})
		m.PC += in.Op.Len()
		switch r.Kind {
		case ContinueKind:
			return ActionContinue
		case BreakKind:
			return ActionBreak
		default:
			panic(BadResponse)
		}
	case JT, JF:
		v, dest := m.read(p[0]), m.read(p[1])
		if (v != 0) == (in.Op == JT) {
			m.jump(dest)
			return ActionContinue
		}
	case LT:
		m.write(p[2], boolCell(m.read(p[0]) < m.read(p[1])))
	case EQ:
		m.write(p[2], boolCell(m.read(p[0]) == m.read(p[1])))
	case ARB:
		m.Base += m.read(p[0])
	case HLT:
		m.halted = true
		return ActionContinue
	default:
		panic(fmt.Errorf("internal error: %v not implemented", in.Op))
	}
	m.PC += in.Op.Len()
	return ActionContinue
}

// addr resolves a position or relative parameter to a memory index,
// growing memory so that the index is valid.
func (m *Machine) addr(p Param) int {
	var a int64
	switch p.Mode {
	case Position:
		a = p.Value
	case Relative:
		a = m.Base + p.Value
	default:
		panic(fmt.Errorf("internal error: addr of %v parameter", p.Mode))
	}
	if a < 0 {
		panic(NegativeAddress)
	}
	if a > MaxAddr {
		panic(AddressRange)
	}
	m.grow(int(a))
	return int(a)
}

func (m *Machine) read(p Param) int64 {
	if p.Mode == Immediate {
		return p.Value
	}
	a := m.addr(p)
	return m.Mem[a]
}

func (m *Machine) write(p Param, v int64) {
	if p.Mode == Immediate {
		panic(ImmediateWrite)
	}
	a := m.addr(p)
	m.Mem[a] = v
}

func (m *Machine) jump(dest int64) {
	if dest < 0 {
		panic(NegativeAddress)
	}
	if dest > MaxAddr {
		panic(AddressRange)
	}
	m.PC = int(dest)
}

// grow extends memory with zero cells so that addr and the pad cells
// that follow it are valid. Memory never shrinks.
func (m *Machine) grow(addr int) {
	if addr < len(m.Mem) {
		return
	}
	if addr > MaxAddr+pad {
		panic(AddressRange)
	}
	n := addr - len(m.Mem) + 1 + pad
	m.Mem = append(m.Mem, make([]int64, n)...)
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Fault is returned by Run and Step when execution cannot continue.
type Fault struct {
	Code FaultCode
	PC   int   // address of the faulting instruction
	Cell int64 // instruction cell at PC
}

func (f Fault) Error() string {
	return fmt.Sprintf("%s executing %d at pc %d", f.Code, f.Cell, f.PC)
}

// FaultCode signifies the type of condition that stopped execution.
type FaultCode byte

const (
	IllegalOpcode   FaultCode = 0x01
	IllegalMode     FaultCode = 0x02
	ImmediateWrite  FaultCode = 0x03
	NegativeAddress FaultCode = 0x04
	BadResponse     FaultCode = 0x05
	AddressRange    FaultCode = 0x06
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		IllegalOpcode:   "illegal opcode",
		IllegalMode:     "illegal parameter mode",
		ImmediateWrite:  "write to immediate parameter",
		NegativeAddress: "negative address",
		BadResponse:     "bad handler response",
		AddressRange:    "address out of range",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
