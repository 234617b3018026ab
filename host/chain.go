package host

import (
	"errors"
	"fmt"

	"github.com/nf/icvm/intcode"
)

// Chain connects copies of one program in series, each stage's output
// becoming the next stage's input. Every stage first receives its phase
// setting as input.
//
// Stages exchange one value at a time: each machine is run until it
// produces an output (or halts) and is then suspended while the next
// stage runs. In feedback mode the output of the last stage is fed back
// to the first until the last stage halts.
type Chain struct {
	Feedback bool

	stages []stage
}

type stage struct {
	m *intcode.Machine
	s *Script
}

// ErrStalled is returned by Chain.Run when a full round of the chain
// produced no output.
var ErrStalled = errors.New("chain stalled")

// NewChain returns a chain of len(phases) independent machines
// each loaded with image.
func NewChain(image []int64, phases ...int64) *Chain {
	c := &Chain{stages: make([]stage, len(phases))}
	for i, p := range phases {
		c.stages[i] = stage{
			m: intcode.NewMachine(image),
			s: &Script{BreakOnOutput: true},
		}
		c.stages[i].s.Feed(p)
	}
	return c
}

// Run feeds signal to the first stage and returns the last value output
// by the last stage.
func (c *Chain) Run(signal int64) (int64, error) {
	if len(c.stages) == 0 {
		return signal, nil
	}
	var (
		result int64
		ok     bool
		last   = &c.stages[len(c.stages)-1]
	)
	for {
		progress := false
		for i := range c.stages {
			st := &c.stages[i]
			if st.m.Halted() {
				continue
			}
			st.s.Feed(signal)
			n := len(st.s.Output())
			if err := st.m.Run(st.s); err != nil {
				return 0, fmt.Errorf("stage %d: %w", i, err)
			}
			if len(st.s.Output()) > n {
				signal, _ = st.s.Last()
				progress = true
				if st == last {
					result, ok = signal, true
				}
			}
		}
		if !c.Feedback || last.m.Halted() {
			break
		}
		if !progress {
			return 0, ErrStalled
		}
	}
	if !ok {
		return 0, fmt.Errorf("stage %d: no output", len(c.stages)-1)
	}
	return result, nil
}

// MaxSignal runs a chain for every ordering of phases, starting each with
// a signal of zero, and returns the largest result and the phase order
// that produced it.
func MaxSignal(image []int64, phases []int64, feedback bool) (int64, []int64, error) {
	var (
		best  int64
		order []int64
		err   error
	)
	permute(append([]int64(nil), phases...), func(p []int64) bool {
		c := NewChain(image, p...)
		c.Feedback = feedback
		var v int64
		v, err = c.Run(0)
		if err != nil {
			err = fmt.Errorf("phases %v: %w", p, err)
			return false
		}
		if order == nil || v > best {
			best, order = v, append([]int64(nil), p...)
		}
		return true
	})
	if err != nil {
		return 0, nil, err
	}
	return best, order, nil
}

// permute calls f with every permutation of p (Heap's algorithm)
// until f returns false.
func permute(p []int64, f func([]int64) bool) {
	var (
		c  = make([]int, len(p))
		i  = 0
		ok = f(p)
	)
	for ok && i < len(p) {
		if c[i] < i {
			if i%2 == 0 {
				p[0], p[i] = p[i], p[0]
			} else {
				p[c[i]], p[i] = p[i], p[c[i]]
			}
			ok = f(p)
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
}
