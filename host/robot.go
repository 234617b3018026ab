package host

import (
	"fmt"
	"image"
	"strings"

	"github.com/nf/icvm/intcode"
)

// Robot is a Handler for programs that steer a painting robot across a
// grid of black (0) and white (1) panels. Input requests read the color
// under the robot. Output alternates between a color to paint and a turn
// (0 left, 1 right), after which the robot moves forward one panel.
type Robot struct {
	start   int64
	panels  map[image.Point]int64
	painted map[image.Point]bool
	pos     image.Point
	dir     int // index into headings
	turn    bool
}

// Up, right, down and left, with y increasing downward.
var headings = [4]image.Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// NewRobot returns a Robot facing up on a panel of color start.
func NewRobot(start int64) *Robot {
	r := &Robot{start: start}
	r.Reset()
	return r
}

// Reset clears the grid and returns the robot to the origin.
func (r *Robot) Reset() {
	r.panels = map[image.Point]int64{{}: r.start}
	r.painted = map[image.Point]bool{}
	r.pos, r.dir, r.turn = image.Point{}, 0, false
}

func (r *Robot) IO(e intcode.Event) intcode.Response {
	switch e.Kind {
	case intcode.InputRequested:
		return intcode.Input(r.panels[r.pos])
	case intcode.OutputProduced:
		if !r.turn {
			r.panels[r.pos] = e.Value
			r.painted[r.pos] = true
			r.turn = true
			return intcode.Continue
		}
		switch e.Value {
		case 0:
			r.dir = (r.dir + 3) % 4
		case 1:
			r.dir = (r.dir + 1) % 4
		default:
			// Not a turn; leave the robot where it is.
			return intcode.Response{}
		}
		r.pos = r.pos.Add(headings[r.dir])
		r.turn = false
		return intcode.Continue
	}
	return intcode.Response{}
}

// Painted returns the number of panels painted at least once.
func (r *Robot) Painted() int { return len(r.painted) }

// Pos returns the robot's position and heading (0 up, 1 right, 2 down, 3 left).
func (r *Robot) Pos() (image.Point, int) { return r.pos, r.dir }

// Text renders the white panels as '#' and everything else as ' '.
func (r *Robot) Text() string {
	var b image.Rectangle
	first := true
	for p, c := range r.panels {
		if c != 1 {
			continue
		}
		cell := image.Rectangle{p, p.Add(image.Pt(1, 1))}
		if first {
			b, first = cell, false
		} else {
			b = b.Union(cell)
		}
	}
	var s strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if r.panels[image.Pt(x, y)] == 1 {
				s.WriteByte('#')
			} else {
				s.WriteByte(' ')
			}
		}
		s.WriteByte('\n')
	}
	return s.String()
}

func (r *Robot) String() string {
	return fmt.Sprintf("robot at %v heading %v, %d panels painted", r.pos, headings[r.dir], r.Painted())
}
