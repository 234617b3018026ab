package intcode

import "testing"

func TestOpLen(t *testing.T) {
	for op, want := range map[Op]int{
		ADD: 4, MUL: 4, IN: 2, OUT: 2, JT: 3, JF: 3, LT: 4, EQ: 4, ARB: 2, HLT: 1,
	} {
		if got := op.Len(); got != want {
			t.Errorf("%v.Len() = %d, want %d", op, got, want)
		}
		if !op.Valid() {
			t.Errorf("%v.Valid() = false", op)
		}
	}
	for _, op := range []Op{0, 10, 11, 98, 100, 255} {
		if op.Valid() {
			t.Errorf("Op(%d).Valid() = true", byte(op))
		}
	}
}

func TestDecode(t *testing.T) {
	for _, c := range []struct {
		cell  int64
		op    Op
		modes [3]Mode
		fault FaultCode
	}{
		{cell: 1, op: ADD},
		{cell: 1002, op: MUL, modes: [3]Mode{Position, Immediate, Position}},
		{cell: 21101, op: ADD, modes: [3]Mode{Immediate, Immediate, Relative}},
		{cell: 203, op: IN, modes: [3]Mode{Relative}},
		{cell: 99, op: HLT},
		{cell: 12, fault: IllegalOpcode},
		{cell: -101, fault: IllegalOpcode},
		{cell: 304, fault: IllegalMode},
		{cell: 2901, fault: IllegalMode},
		{cell: 100004, fault: IllegalMode},
	} {
		op, modes, fault := decodeCell(c.cell)
		if fault != c.fault {
			t.Errorf("decode(%d) faulted with %v, want %v", c.cell, fault, c.fault)
			continue
		}
		if fault != 0 {
			continue
		}
		if op != c.op || modes != c.modes {
			t.Errorf("decode(%d) = %v %v, want %v %v", c.cell, op, modes, c.op, c.modes)
		}
	}
}

func decodeCell(cell int64) (op Op, modes [3]Mode, fault FaultCode) {
	defer func() {
		if e := recover(); e != nil {
			fault = e.(FaultCode)
		}
	}()
	op, modes = decode(cell)
	return
}

func TestInstrString(t *testing.T) {
	m := NewMachine([]int64{21101, 4, -5, 10, 204, -1, 106, 0, 3, 99})
	for _, c := range []struct {
		addr int
		want string
	}{
		{0, "ADD #4 #-5 [rb+10]"},
		{4, "OUT [rb-1]"},
		{6, "JF #0 [3]"},
		{9, "HLT"},
	} {
		in, err := m.Decode(c.addr)
		if err != nil {
			t.Errorf("Decode(%d): %v", c.addr, err)
			continue
		}
		if got := in.String(); got != c.want {
			t.Errorf("Decode(%d) = %q, want %q", c.addr, got, c.want)
		}
	}
	if _, err := m.Decode(2); err != (Fault{Code: IllegalOpcode, PC: 2, Cell: -5}) {
		t.Errorf("Decode(2) error = %v, want illegal opcode", err)
	}
}
