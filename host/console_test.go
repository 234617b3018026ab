package host

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nf/icvm/intcode"
)

func TestScript(t *testing.T) {
	// Double each of two inputs.
	prog := []int64{3, 0, 102, 2, 0, 0, 4, 0, 3, 0, 102, 2, 0, 0, 4, 0, 99}
	s := NewScript(4, 21)
	m := intcode.NewMachine(prog)
	if err := m.Run(s); err != nil {
		t.Fatal(err)
	}
	if g, w := s.Output(), []int64{8, 42}; !equal(g, w) {
		t.Errorf("output %v, want %v", g, w)
	}
	if v, ok := s.Last(); !ok || v != 42 {
		t.Errorf("Last() = %d, %v; want 42, true", v, ok)
	}

	m.Reset()
	s.Reset()
	s.BreakOnOutput = true
	s.Feed(1, 2)
	if err := m.Run(s); err != nil {
		t.Fatal(err)
	}
	if g, w := s.Output(), []int64{2}; !equal(g, w) {
		t.Errorf("after break: output %v, want %v", g, w)
	}
	if s.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", s.Pending())
	}

	m.Reset()
	s.Reset()
	err := m.Run(s)
	var f intcode.Fault
	if !errors.As(err, &f) || f.Code != intcode.BadResponse {
		t.Errorf("run with no input: got error %v, want bad response", err)
	}
}

func TestStream(t *testing.T) {
	add := []int64{3, 0, 3, 1, 1, 0, 1, 0, 4, 0, 99}
	for _, c := range []struct {
		in, out string
		err     error
	}{
		{in: "3, 4", out: "7\n"},
		{in: "-10\n3\n", out: "-7\n"},
		{in: "5", err: io.EOF},
	} {
		var out strings.Builder
		s := NewStream(strings.NewReader(c.in), &out)
		err := intcode.NewMachine(add).Run(s)
		if c.err != nil {
			if err == nil || s.Err() != c.err {
				t.Errorf("input %q: got errors %v, %v; want fault and %v", c.in, err, s.Err(), c.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("input %q: %v", c.in, err)
			continue
		}
		if g := out.String(); g != c.out {
			t.Errorf("input %q: output %q, want %q", c.in, g, c.out)
		}
	}
}

func TestStreamBadInput(t *testing.T) {
	s := NewStream(strings.NewReader("x"), io.Discard)
	if err := intcode.NewMachine([]int64{3, 0, 99}).Run(s); err == nil {
		t.Fatal("Run succeeded, want error")
	}
	if s.Err() == nil {
		t.Error("Err() = nil, want parse error")
	}
}

func TestConsole(t *testing.T) {
	// Echo three characters, then output a number.
	prog := []int64{3, 0, 4, 0, 3, 0, 4, 0, 3, 0, 4, 0, 104, 1000, 99}
	var out strings.Builder
	c := NewConsole(strings.NewReader("hi\nignored\n"), &out)
	if err := intcode.NewMachine(prog).Run(c); err != nil {
		t.Fatal(err)
	}
	if g, w := out.String(), "hi\n1000\n"; g != w {
		t.Errorf("output %q, want %q", g, w)
	}

	out.Reset()
	c = NewConsole(strings.NewReader(""), &out)
	c.Queue("ok")
	if err := intcode.NewMachine(prog).Run(c); err != nil {
		t.Fatal(err)
	}
	if g, w := out.String(), "ok\n1000\n"; g != w {
		t.Errorf("queued output %q, want %q", g, w)
	}
}

func TestConsoleEOF(t *testing.T) {
	c := NewConsole(strings.NewReader("a"), io.Discard)
	err := intcode.NewMachine([]int64{3, 0, 3, 0, 3, 0, 99}).Run(c)
	if err == nil {
		t.Fatal("Run succeeded, want error")
	}
	if c.Err() != io.EOF {
		t.Errorf("Err() = %v, want EOF", c.Err())
	}
}

func equal(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
