package host

import (
	"image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nf/icvm/intcode"
)

// Tile is the content of one screen cell.
type Tile int64

const (
	Empty Tile = iota
	Wall
	Block
	Paddle
	Ball
)

var tileRunes = [...]rune{' ', '#', '=', '-', 'o'}

func (t Tile) Rune() rune {
	if t >= 0 && int(t) < len(tileRunes) {
		return tileRunes[t]
	}
	return '?'
}

var palette = [...]color.RGBA{
	Empty:  {0x10, 0x10, 0x18, 0xff},
	Wall:   {0x80, 0x80, 0x90, 0xff},
	Block:  {0x30, 0xa0, 0xe0, 0xff},
	Paddle: {0xf0, 0xf0, 0xf0, 0xff},
	Ball:   {0xf0, 0xc0, 0x30, 0xff},
}

func (t Tile) Color() color.RGBA {
	if t >= 0 && int(t) < len(palette) {
		return palette[t]
	}
	return color.RGBA{0xff, 0x00, 0xff, 0xff}
}

// Joystick holds the position of a three-way joystick:
// -1 (left), 0 (neutral) or 1 (right).
// It is safe to use from multiple goroutines.
type Joystick struct {
	v atomic.Int64
}

func (j *Joystick) Set(v int64) {
	switch {
	case v < 0:
		v = -1
	case v > 0:
		v = 1
	}
	j.v.Store(v)
}

func (j *Joystick) Get() int64 { return j.v.Load() }

// Screen is a Handler for programs that draw tiles. Output is consumed in
// triples (x, y, tile); the triple (-1, 0, v) sets the score instead.
// Input requests read the joystick or, if Auto is set, steer the paddle
// toward the ball.
//
// Screen may be read from other goroutines while the machine runs.
type Screen struct {
	Joystick Joystick
	Auto     bool
	Delay    time.Duration // pause before answering each input request

	// Ready receives after the screen is drawn or reset. Signals do not
	// queue, so a single reader sees at most one per batch of changes.
	Ready <-chan bool

	mu      sync.Mutex
	tiles   map[image.Point]Tile
	bounds  image.Rectangle
	score   int64
	ball    image.Point
	paddle  image.Point
	pending [3]int64
	n       int
	ops     int
	ready   chan bool
}

// NewScreen returns an empty Screen.
func NewScreen() *Screen {
	s := &Screen{tiles: map[image.Point]Tile{}, ready: make(chan bool, 1)}
	s.Ready = s.ready
	return s
}

func (s *Screen) IO(e intcode.Event) intcode.Response {
	switch e.Kind {
	case intcode.InputRequested:
		if s.Delay > 0 {
			time.Sleep(s.Delay)
		}
		if s.Auto {
			s.mu.Lock()
			d := s.ball.X - s.paddle.X
			s.mu.Unlock()
			s.Joystick.Set(int64(d))
		}
		return intcode.Input(s.Joystick.Get())
	case intcode.OutputProduced:
		s.mu.Lock()
		s.pending[s.n] = e.Value
		s.n++
		if s.n == len(s.pending) {
			s.n = 0
			s.draw(s.pending[0], s.pending[1], Tile(s.pending[2]))
		}
		s.mu.Unlock()
		return intcode.Continue
	}
	return intcode.Response{}
}

func (s *Screen) draw(x, y int64, t Tile) {
	if x == -1 && y == 0 {
		s.score = int64(t)
	} else {
		p := image.Pt(int(x), int(y))
		s.tiles[p] = t
		r := image.Rectangle{p, p.Add(image.Pt(1, 1))}
		if len(s.tiles) == 1 {
			s.bounds = r
		} else {
			s.bounds = s.bounds.Union(r)
		}
		switch t {
		case Ball:
			s.ball = p
		case Paddle:
			s.paddle = p
		}
	}
	s.ops++
	s.signal()
}

func (s *Screen) signal() {
	select {
	case s.ready <- true:
	default:
	}
}

// Reset clears the screen, score and joystick.
func (s *Screen) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tiles = map[image.Point]Tile{}
	s.bounds = image.Rectangle{}
	s.score = 0
	s.ball, s.paddle = image.Point{}, image.Point{}
	s.n = 0
	s.ops++
	s.signal()
	s.Joystick.Set(0)
}

// Score returns the last score drawn.
func (s *Screen) Score() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Ops returns the number of draw operations performed.
func (s *Screen) Ops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops
}

// Tile returns the tile at p.
func (s *Screen) Tile(p image.Point) Tile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiles[p]
}

// Count returns the number of cells showing t.
func (s *Screen) Count(t Tile) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.tiles {
		if v == t {
			n++
		}
	}
	return n
}

// Bounds returns the smallest rectangle containing every drawn cell.
func (s *Screen) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// Image renders the screen with one pixel per cell.
// The image origin is the top-left drawn cell.
func (s *Screen) Image() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	size := s.bounds.Size()
	if size.X == 0 || size.Y == 0 {
		size = image.Pt(1, 1)
	}
	m := newImage(size, Empty.Color())
	for p, t := range s.tiles {
		q := p.Sub(s.bounds.Min)
		m.SetRGBA(q.X, q.Y, t.Color())
	}
	return m
}

// Text renders the screen as lines of text, one rune per cell.
func (s *Screen) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for y := s.bounds.Min.Y; y < s.bounds.Max.Y; y++ {
		for x := s.bounds.Min.X; x < s.bounds.Max.X; x++ {
			b.WriteRune(s.tiles[image.Pt(x, y)].Rune())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func newImage(size image.Point, c color.RGBA) *image.RGBA {
	m := image.NewRGBA(image.Rectangle{Max: size})
	for b := m.Pix; len(b) >= 4; b = b[4:] {
		b[0] = c.R
		b[1] = c.G
		b[2] = c.B
		b[3] = c.A
	}
	return m
}
