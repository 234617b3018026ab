package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/icvm/host"
	"github.com/nf/icvm/intcode"
)

func devMode(o options, debug bool, progFile string) error {
	if o.mode == "scan" || o.chain != nil {
		return fmt.Errorf("-dev and -debug run a single machine; not supported with -chain or -mode scan")
	}
	progFile = filepath.Clean(progFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(progFile)); err != nil {
		return err
	}

	var (
		state host.StateFunc
		in    io.Reader = os.Stdin
		out   io.Writer = os.Stdout
		dbg   *debugger
	)
	if debug {
		// The debugger owns the terminal, so the program's
		// input is limited to -in and its output goes to the log.
		dbg = newDebugger()
		state = dbg.StateFunc
		in = strings.NewReader("")
		out = dbg.log
	}
	runner := host.NewRunner(true, state)
	runner.OnLoad = o.patch.apply
	if dbg != nil {
		dbg.run = runner
		log.SetPrefix("")
		log.SetOutput(dbg.log)
		go func() {
			if err := dbg.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("icvm: ")
			runner.Debug("exit", 0)
		}()
	}

	image, err := readProgram(progFile)
	if err != nil {
		return err
	}
	log.Printf("dev: start %s (%d cells)", filepath.Base(progFile), len(image))

	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				image, err := readProgram(progFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				log.Printf("dev: reset (%d cells)", len(image))
				runner.Swap(image)
			case ev := <-watcher.Event:
				if ev.Name == progFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()

	m := intcode.NewMachine(image)
	switch o.mode {
	case "screen":
	case "robot":
		rb, err := newRobot(o)
		if err != nil {
			return err
		}
		// The Runner resets the robot along with the machine.
		return runner.Run(m, rb)
	default:
		return runner.Run(m, newHandler(o, in, out))
	}

	scr := host.NewScreen()
	scr.Auto = o.auto
	scr.Delay = time.Second / 60
	feedScreen(scr, o.in)
	if !o.gui && dbg != nil {
		// The debugger owns the terminal; the screen can only play itself.
		scr.Auto = true
		return runner.Run(m, scr)
	}
	exit := make(chan bool)
	go func() {
		if err := runner.Run(m, scr); err != nil {
			log.Printf("dev: %v", err)
		}
		close(exit)
	}()
	if !o.gui {
		if _, err := host.NewTerm(scr).Run(exit); err != nil {
			return fmt.Errorf("term: %v", err)
		}
		return nil
	}
	if err := host.NewGUI(scr).Run(exit); err != nil {
		return fmt.Errorf("gui: %v", err)
	}
	return nil
}
