package main

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/icvm/host"
	"github.com/nf/icvm/intcode"
)

type debugger struct {
	run *host.Runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu       sync.Mutex
	dbg, brk *location
	watches  []location
}

var debugCommands = []string{
	"break", "debug", "watch", "unwatch",
	"step", "cont", "pause", "reset", "exit",
}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if t == "" || strings.Contains(t, " ") {
			return nil
		}
		for _, c := range debugCommands {
			if strings.HasPrefix(c, t) && c != t {
				entries = append(entries, c)
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := strings.TrimSpace(d.input.GetText())
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		d.command(cmd)
	})
	return d
}

func (d *debugger) command(cmd string) {
	cmd, arg, hasArg := strings.Cut(cmd, " ")
	switch cmd {
	case "b", "break", "d", "debug":
		if !hasArg {
			d.run.Debug(cmd, -1)
			d.mu.Lock()
			if cmd[0] == 'b' {
				d.brk = nil
			} else {
				d.dbg = nil
			}
			d.mu.Unlock()
			log.Printf("cleared %s", cmd)
			return
		}
		l, ok := parseLocation(arg)
		if !ok || l.rel {
			log.Printf("invalid address %q", arg)
			return
		}
		d.run.Debug(cmd, l.addr)
		d.mu.Lock()
		if cmd[0] == 'b' {
			d.brk = &l
		} else {
			d.dbg = &l
		}
		d.mu.Unlock()
		log.Printf("set %s %d", cmd, l.addr)
	case "w", "watch":
		l, ok := parseLocation(arg)
		if !ok {
			log.Printf("invalid location %q", arg)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, l)
		d.mu.Unlock()
		log.Printf("watching %v", l)
	case "u", "unwatch":
		d.mu.Lock()
		d.watches = nil
		d.mu.Unlock()
		log.Print("cleared watches")
	default:
		d.run.Debug(cmd, 0)
	}
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) StateFunc(m *intcode.Machine, k host.StateKind) {
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != host.ClearState && k != host.QuietState {
		state = stateMsg(m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case host.DebugState, host.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case host.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != host.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(m *intcode.Machine, k host.StateKind) string {
	instr := "???"
	if in, err := m.Decode(m.PC); err == nil {
		instr = in.String()
	} else if m.PC >= 0 && m.PC < len(m.Mem) {
		instr = fmt.Sprintf("??? (%d)", m.Mem[m.PC])
	}
	kind := "       "
	switch k {
	case host.BreakState:
		kind = "[break]"
	case host.DebugState:
		kind = "[debug]"
	case host.PauseState:
		kind = "[pause]"
	case host.HaltState:
		kind = "[HALT!]"
	}
	return fmt.Sprintf("%6d %s %s\nrb: %d\nmem: %d cells\n",
		m.PC, kind, instr, m.Base, len(m.Mem))
}

func (d *debugger) watchContent(m *intcode.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if l := d.brk; l != nil {
		fmt.Fprintf(&b, "[%d] brk!\n", l.addr)
	}
	if l := d.dbg; l != nil {
		fmt.Fprintf(&b, "[%d] dbg?\n", l.addr)
	}
	for _, l := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		addr := l.resolve(m)
		if l.rel {
			fmt.Fprintf(&b, "%v [%d] ", l, addr)
		} else {
			fmt.Fprintf(&b, "[%d] ", addr)
		}
		fmt.Fprintf(&b, "%d", peek(m, addr))
	}
	return b.String()
}
