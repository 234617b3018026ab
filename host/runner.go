package host

import (
	"errors"
	"log"

	"github.com/nf/icvm/intcode"
)

// StateKind describes why a StateFunc was called.
type StateKind int

const (
	ClearState StateKind = iota // execution resumed
	QuietState                  // periodic update while running
	BreakState                  // stopped at the break address
	DebugState                  // passed the debug address, or stepped
	PauseState                  // paused by request
	HaltState                   // halted or faulted
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case QuietState:
		return "quiet"
	case BreakState:
		return "break"
	case DebugState:
		return "debug"
	case PauseState:
		return "pause"
	case HaltState:
		return "halt"
	}
	return "unknown"
}

// StateFunc is called from the goroutine executing the machine,
// so it may safely inspect m for the duration of the call.
type StateFunc func(m *intcode.Machine, k StateKind)

// quietSteps is the number of instructions executed between QuietState calls.
const quietSteps = 1 << 16

// Runner executes a machine and its handler, optionally under the control
// of a debugger. In developer mode a halted or faulted machine waits for
// a new program (Swap) or a reset instead of returning.
type Runner struct {
	// OnLoad, if set, is called after the machine is loaded or reset,
	// before it executes any instructions.
	OnLoad func(*intcode.Machine)

	dev   bool
	state StateFunc

	swap  chan []int64
	debug chan debugCmd
}

type debugCmd struct {
	cmd  string
	addr int
}

// NewRunner returns a Runner. The state function may be nil.
func NewRunner(devMode bool, state StateFunc) *Runner {
	if state == nil {
		state = func(*intcode.Machine, StateKind) {}
	}
	return &Runner{
		dev:   devMode,
		state: state,
		swap:  make(chan []int64),
		debug: make(chan debugCmd),
	}
}

// Swap replaces the running program with image and restarts it.
// It blocks until the running machine accepts the new program.
func (r *Runner) Swap(image []int64) {
	if !r.dev {
		panic("Swap called while not running in dev mode")
	}
	r.swap <- image
}

// Debug sends a debugger command to the running machine.
// The commands are:
//
//	break, b  stop before executing the instruction at addr (addr < 0 clears)
//	debug, d  report state each time the instruction at addr is reached
//	step, s   execute one instruction while paused
//	cont, c   resume execution
//	pause, p  pause execution
//	reset, r  reset the machine to its loaded program
//	exit      stop the machine; Run returns
//
// Unknown commands are logged and ignored.
func (r *Runner) Debug(cmd string, addr int) {
	r.debug <- debugCmd{cmd, addr}
}

// Run executes m with h until it halts. Outside developer mode Run also
// returns if h breaks execution or m faults.
func (r *Runner) Run(m *intcode.Machine, h intcode.Handler) error {
	var (
		brk, dbg = -1, -1
		paused   bool
		stopped  bool // halted or faulted
		resumed  bool // ignore brk for one instruction
		steps    int
	)
	load := func() {
		if rs, ok := h.(Resetter); ok {
			rs.Reset()
		}
		if r.OnLoad != nil {
			r.OnLoad(m)
		}
		stopped = false
		r.state(m, ClearState)
	}
	swap := func(image []int64) {
		*m = *intcode.NewMachine(image)
		paused = false
		load()
	}
	if r.OnLoad != nil {
		r.OnLoad(m)
	}
	exec := func() error {
		a, err := m.Step(h)
		switch {
		case err != nil:
			if !r.dev {
				return err
			}
			log.Printf("exec: %v", err)
			stopped = true
			r.state(m, HaltState)
		case m.Halted():
			stopped = true
			r.state(m, HaltState)
		case a == intcode.ActionBreak:
			if !r.dev {
				return errBreak
			}
			paused = true
			r.state(m, PauseState)
		}
		return nil
	}
	handle := func(c debugCmd) (exit bool) {
		switch c.cmd {
		case "break", "b":
			brk = c.addr
		case "debug", "d":
			dbg = c.addr
		case "step", "s":
			if paused && !stopped {
				if err := exec(); err != nil {
					log.Printf("exec: %v", err)
				}
				if !stopped {
					r.state(m, DebugState)
				}
			}
		case "cont", "c":
			if paused {
				paused, resumed = false, true
				r.state(m, ClearState)
			}
		case "pause", "p":
			if !paused && !stopped {
				paused = true
				r.state(m, PauseState)
			}
		case "reset", "r":
			m.Reset()
			load()
		case "exit":
			return true
		default:
			log.Printf("unknown debug command %q", c.cmd)
		}
		return false
	}
	for {
		if stopped || paused {
			if stopped && !r.dev {
				return nil
			}
			select {
			case image := <-r.swap:
				swap(image)
			case c := <-r.debug:
				if handle(c) {
					return nil
				}
			}
			continue
		}

		select {
		case image := <-r.swap:
			swap(image)
			continue
		case c := <-r.debug:
			if handle(c) {
				return nil
			}
			continue
		default:
		}

		if m.PC == brk && !resumed {
			paused = true
			r.state(m, BreakState)
			continue
		}
		resumed = false
		if m.PC == dbg {
			r.state(m, DebugState)
		}
		if err := exec(); err == errBreak {
			return nil
		} else if err != nil {
			return err
		}
		if steps++; steps%quietSteps == 0 {
			r.state(m, QuietState)
		}
	}
}

// errBreak is used internally to return from Run when the handler
// breaks execution outside developer mode.
var errBreak = errors.New("break")
