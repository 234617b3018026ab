package host

import (
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// cellPx is the size of one screen cell in window pixels.
const cellPx = 12

// GUI displays a Screen in a window and drives its joystick from the
// keyboard (left and right arrow keys, or A and D).
type GUI struct {
	scr *Screen

	ops   int
	dirty bool
	buf   screen.Buffer
	tex   screen.Texture
	size  image.Point
}

func NewGUI(s *Screen) *GUI { return &GUI{scr: s, ops: -1} }

// Run opens the window and processes events until exit is closed or the
// window is closed. It must be called from the main goroutine.
func (g *GUI) Run(exit <-chan bool) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  "icvm",
			Width:  40 * cellPx,
			Height: 25 * cellPx,
		})
		if err != nil {
			runErr = err
			return
		}
		defer w.Release()
		defer g.release()

		type update struct{}
		done := make(chan struct{})
		defer close(done)
		go func() {
			// At most one update per tick.
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			ready := g.scr.Ready
			w.Send(update{})
			for {
				select {
				case <-ready:
					w.Send(update{})
					ready = nil
				case <-t.C:
					ready = g.scr.Ready
				case <-done:
					return
				case <-exit:
					w.Send(lifecycle.Event{To: lifecycle.StageDead})
					return
				}
			}
		}()

		var sz size.Event
		for {
			switch e := w.NextEvent().(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				g.publish(w, sz)

			case key.Event:
				g.key(e)

			case paint.Event:
				g.publish(w, sz)

			case update:
				if err := g.update(s); err != nil {
					runErr = err
					return
				}
				if g.dirty {
					g.publish(w, sz)
				}

			case error:
				log.Print(e)
			}
		}
	})
	return runErr
}

// publish scales the current frame into the window.
func (g *GUI) publish(w screen.Window, sz size.Event) {
	if g.tex == nil {
		return
	}
	if g.dirty {
		g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
		g.dirty = false
	}
	w.Scale(sz.Bounds(), g.tex, g.tex.Bounds(), draw.Src, nil)
	w.Publish()
}

func (g *GUI) key(e key.Event) {
	var v int64
	switch e.Code {
	case key.CodeLeftArrow, key.CodeA:
		v = -1
	case key.CodeRightArrow, key.CodeD:
		v = 1
	default:
		return
	}
	if e.Direction == key.DirRelease {
		v = 0
	}
	g.scr.Joystick.Set(v)
}

// update copies the screen into the window buffer if it has changed.
func (g *GUI) update(s screen.Screen) (err error) {
	ops := g.scr.Ops()
	if ops == g.ops {
		return nil
	}
	g.ops = ops
	m := g.scr.Image()
	dim := m.Bounds().Size().Mul(cellPx)
	if g.tex == nil || g.size != dim {
		g.release()
		g.size = dim
		if g.buf, err = s.NewBuffer(dim); err != nil {
			return
		}
		if g.tex, err = s.NewTexture(dim); err != nil {
			return
		}
	}
	draw.NearestNeighbor.Scale(g.buf.RGBA(), g.buf.Bounds(), m, m.Bounds(), draw.Src, nil)
	g.dirty = true
	return nil
}

func (g *GUI) release() {
	if g.tex != nil {
		g.tex.Release()
		g.tex = nil
	}
	if g.buf != nil {
		g.buf.Release()
		g.buf = nil
	}
}
