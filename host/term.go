package host

import (
	"fmt"
	"image"
	"time"

	"github.com/gdamore/tcell/v2"
)

var tileStyles = [...]tcell.Style{
	Empty:  tcell.StyleDefault,
	Wall:   tcell.StyleDefault.Foreground(tcell.ColorGray),
	Block:  tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue),
	Paddle: tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
	Ball:   tcell.StyleDefault.Foreground(tcell.ColorGold),
}

// Term displays a Screen in a terminal and drives its joystick from the
// keyboard (left and right arrow keys, or a and d; space centers).
type Term struct {
	scr *Screen
	ops int
}

func NewTerm(s *Screen) *Term { return &Term{scr: s, ops: -1} }

// Run takes over the terminal until exit is closed or the user presses
// Escape, q or Ctrl-C. It reports whether the user asked to quit.
func (t *Term) Run(exit <-chan bool) (quit bool, err error) {
	ts, err := tcell.NewScreen()
	if err != nil {
		return false, err
	}
	if err := ts.Init(); err != nil {
		return false, err
	}
	defer ts.Fini()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go ts.ChannelEvents(events, done)

	// At most one redraw per tick.
	tick := time.NewTicker(time.Second / 30)
	defer tick.Stop()
	ready := t.scr.Ready
	t.draw(ts)
	for {
		select {
		case <-exit:
			t.draw(ts)
			return false, nil
		case <-ready:
			t.draw(ts)
			ready = nil
		case <-tick.C:
			ready = t.scr.Ready
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if t.key(ev) {
					return true, nil
				}
			case *tcell.EventResize:
				t.ops = -1
				ts.Sync()
				t.draw(ts)
			}
		}
	}
}

func (t *Term) key(ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		t.scr.Joystick.Set(-1)
	case tcell.KeyRight:
		t.scr.Joystick.Set(1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'a':
			t.scr.Joystick.Set(-1)
		case 'd':
			t.scr.Joystick.Set(1)
		case ' ':
			t.scr.Joystick.Set(0)
		}
	}
	return false
}

func (t *Term) draw(ts tcell.Screen) {
	ops := t.scr.Ops()
	if ops == t.ops {
		return
	}
	t.ops = ops
	ts.Clear()
	b := t.scr.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			tile := t.scr.Tile(image.Pt(x, y))
			style := tcell.StyleDefault
			if tile >= 0 && int(tile) < len(tileStyles) {
				style = tileStyles[tile]
			}
			ts.SetContent(x-b.Min.X, y-b.Min.Y, tile.Rune(), nil, style)
		}
	}
	status := fmt.Sprintf("score %d  blocks %d", t.scr.Score(), t.scr.Count(Block))
	for i, r := range status {
		ts.SetContent(i, b.Dy()+1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	ts.Show()
}
