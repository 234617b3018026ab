// Package host implements devices that drive Intcode machines: the I/O
// policies connected to a machine through its Handler, and a Runner that
// executes a machine under developer and debugger control.
package host

import "github.com/nf/icvm/intcode"

// Resetter is implemented by handlers that hold state that must be
// cleared when the machine they serve is reset.
type Resetter interface {
	Reset()
}

// Script is a Handler that answers input requests from a queue of values
// and records all output.
//
// When the queue is empty Script returns an invalid response,
// so that Run fails with a BadResponse fault.
type Script struct {
	// BreakOnOutput makes Script suspend the machine after each output.
	BreakOnOutput bool

	in  []int64
	out []int64
}

// NewScript returns a Script that will supply the given inputs in order.
func NewScript(in ...int64) *Script {
	return &Script{in: append([]int64(nil), in...)}
}

// Feed appends values to the input queue.
func (s *Script) Feed(v ...int64) { s.in = append(s.in, v...) }

// Pending reports the number of queued inputs.
func (s *Script) Pending() int { return len(s.in) }

// Output returns the values output so far.
func (s *Script) Output() []int64 { return s.out }

// Last returns the most recent output value, and false if there was none.
func (s *Script) Last() (int64, bool) {
	if len(s.out) == 0 {
		return 0, false
	}
	return s.out[len(s.out)-1], true
}

// Reset discards queued input and recorded output.
func (s *Script) Reset() {
	s.in = s.in[:0]
	s.out = s.out[:0]
}

func (s *Script) IO(e intcode.Event) intcode.Response {
	switch e.Kind {
	case intcode.InputRequested:
		if len(s.in) == 0 {
			return intcode.Response{}
		}
		v := s.in[0]
		s.in = s.in[1:]
		return intcode.Input(v)
	case intcode.OutputProduced:
		s.out = append(s.out, e.Value)
		if s.BreakOnOutput {
			return intcode.Break
		}
		return intcode.Continue
	}
	return intcode.Response{}
}
