package host

import (
	"errors"
	"fmt"
	"image"

	"github.com/nf/icvm/intcode"
)

// Query asks a program one question at a time. Each question resets the
// machine, supplies the inputs and returns the first output.
type Query struct {
	// OnReset, if set, is called after each reset, before the
	// program runs.
	OnReset func(*intcode.Machine)

	m *intcode.Machine
	s *Script
}

// NewQuery returns a Query for the program prog.
func NewQuery(prog []int64) *Query {
	s := NewScript()
	s.BreakOnOutput = true
	return &Query{m: intcode.NewMachine(prog), s: s}
}

// ErrNoAnswer is returned by Ask when the program halts without output.
var ErrNoAnswer = errors.New("program halted without output")

// Ask runs the program from the start with the given inputs
// and returns its first output.
func (q *Query) Ask(in ...int64) (int64, error) {
	q.m.Reset()
	if q.OnReset != nil {
		q.OnReset(q.m)
	}
	q.s.Reset()
	q.s.Feed(in...)
	if err := q.m.Run(q.s); err != nil {
		return 0, err
	}
	v, ok := q.s.Last()
	if !ok {
		return 0, ErrNoAnswer
	}
	return v, nil
}

// Scan asks (x, y) for every point in r and returns the points
// that answered non-zero.
func (q *Query) Scan(r image.Rectangle) (map[image.Point]bool, error) {
	hits := map[image.Point]bool{}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v, err := q.Ask(int64(x), int64(y))
			if err != nil {
				return nil, fmt.Errorf("(%d, %d): %w", x, y, err)
			}
			if v != 0 {
				hits[image.Pt(x, y)] = true
			}
		}
	}
	return hits, nil
}
