package host

import (
	"image"
	"testing"

	"github.com/nf/icvm/intcode"
)

// paintProg reads a panel into 100+i and outputs a color and a turn for
// each of the given pairs, then halts.
func paintProg(pairs ...[2]int64) []int64 {
	var prog []int64
	for i, p := range pairs {
		prog = append(prog, 3, int64(100+i), 104, p[0], 104, p[1])
	}
	return append(prog, 99)
}

func TestRobot(t *testing.T) {
	prog := paintProg(
		[2]int64{1, 0}, [2]int64{0, 0}, [2]int64{1, 0}, [2]int64{1, 0},
		[2]int64{0, 1}, [2]int64{1, 0}, [2]int64{1, 0},
	)
	r := NewRobot(0)
	m := intcode.NewMachine(prog)
	if err := m.Run(r); err != nil {
		t.Fatal(err)
	}
	if g := r.Painted(); g != 6 {
		t.Errorf("Painted() = %d, want 6", g)
	}
	// The fifth input is read back on the first panel, painted white.
	for i, w := range []int64{0, 0, 0, 0, 1, 0, 0} {
		if g := m.Mem[100+i]; g != w {
			t.Errorf("input %d = %d, want %d", i, g, w)
		}
	}
	if pos, dir := r.Pos(); pos != image.Pt(0, -1) || dir != 3 {
		t.Errorf("Pos() = %v, %d; want (0,-1), 3", pos, dir)
	}
	want := "" +
		"  #\n" +
		"  #\n" +
		"## \n"
	if g := r.Text(); g != want {
		t.Errorf("Text() =\n%s\nwant\n%s", g, want)
	}

	r.Reset()
	if r.Painted() != 0 || r.Text() != "" {
		t.Errorf("Reset left %d panels painted", r.Painted())
	}
}

func TestRobotStart(t *testing.T) {
	r := NewRobot(1)
	m := intcode.NewMachine(paintProg([2]int64{0, 1}))
	if err := m.Run(r); err != nil {
		t.Fatal(err)
	}
	if g := m.Mem[100]; g != 1 {
		t.Errorf("first input = %d, want 1", g)
	}
	if g := r.Painted(); g != 1 {
		t.Errorf("Painted() = %d, want 1", g)
	}
}

func TestRobotBadTurn(t *testing.T) {
	m := intcode.NewMachine(paintProg([2]int64{1, 7}))
	err := m.Run(NewRobot(0))
	if f, ok := err.(intcode.Fault); !ok || f.Code != intcode.BadResponse {
		t.Errorf("got error %v, want bad handler response", err)
	}
}
