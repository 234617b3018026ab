// Command icvm executes Intcode programs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/nf/icvm/host"
	"github.com/nf/icvm/intcode"
)

type options struct {
	mode     string // int, ascii, screen, robot or scan
	in       string
	patch    patch
	gui      bool
	auto     bool
	chain    []int64
	feedback bool
	search   bool
}

func main() {
	log.SetPrefix("icvm: ")
	log.SetFlags(0)

	var (
		cliFlag   = flag.Bool("cli", false, "disable GUI features")
		devFlag   = flag.Bool("dev", false, "enable developer mode (reload and re-run the program when it changes)")
		debugFlag = flag.Bool("debug", false, "enable debugger (implies -dev)")

		modeFlag  = flag.String("mode", "int", "I/O `mode`: int, ascii, screen, robot or scan")
		inFlag    = flag.String("in", "", "input to supply before reading stdin (comma-separated integers; in ascii mode, lines separated by ';'; in robot mode, the starting panel color; in scan mode, the width and height)")
		patchFlag = flag.String("patch", "", "overwrite memory before running (comma-separated `addr=value` pairs)")
		autoFlag  = flag.Bool("auto", false, "in screen mode, steer the paddle automatically")

		chainFlag    = flag.String("chain", "", "run a chain of machines with the given comma-separated `phases`")
		feedbackFlag = flag.Bool("feedback", false, "with -chain, feed the last stage's output back to the first")
		searchFlag   = flag.Bool("search", false, "with -chain, try every ordering of the phases and report the best")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.ic>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-cli] <-dev | -debug> [flags] <program.ic>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -chain <phases> [-feedback] [-search] <program.ic>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	o := options{
		mode:     *modeFlag,
		in:       *inFlag,
		gui:      !*cliFlag,
		auto:     *autoFlag,
		feedback: *feedbackFlag,
		search:   *searchFlag,
	}
	switch o.mode {
	case "int", "ascii", "screen", "robot", "scan":
	default:
		log.Fatalf("unknown mode %q", o.mode)
	}
	var err error
	if o.patch, err = parsePatch(*patchFlag); err != nil {
		log.Fatal(err)
	}
	if *chainFlag != "" {
		if o.chain, err = intcode.ParseImage(*chainFlag); err != nil {
			log.Fatalf("parsing phases: %v", err)
		}
	}

	if *devFlag || *debugFlag {
		if err := devMode(o, *debugFlag, flag.Arg(0)); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err = run(o, flag.Arg(0))

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func readProgram(name string) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := intcode.ReadImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", name, err)
	}
	return prog, nil
}

func run(o options, progFile string) error {
	prog, err := readProgram(progFile)
	if err != nil {
		return err
	}
	if o.chain != nil {
		return runChain(os.Stdout, prog, o)
	}

	r := host.NewRunner(false, nil)
	r.OnLoad = o.patch.apply
	m := intcode.NewMachine(prog)
	switch o.mode {
	case "screen":
		return runScreen(r, m, o)
	case "robot":
		return runRobot(os.Stdout, r, m, o)
	case "scan":
		return runScan(os.Stdout, prog, o)
	}
	h := newHandler(o, os.Stdin, os.Stdout)
	return handlerError(r.Run(m, h), h)
}

// handlerError reports the I/O error behind a fault caused by h
// failing to supply input, or any other error h recorded.
func handlerError(err error, h intcode.Handler) error {
	e, ok := h.(interface{ Err() error })
	if !ok || e.Err() == nil {
		return err
	}
	var f intcode.Fault
	switch {
	case errors.As(err, &f) && f.Code == intcode.BadResponse:
		if e.Err() == io.EOF {
			return fmt.Errorf("end of input at pc %d", f.PC)
		}
		return fmt.Errorf("input at pc %d: %w", f.PC, e.Err())
	case err == nil && e.Err() != io.EOF:
		return e.Err()
	}
	return err
}

// newHandler returns the handler for the int and ascii modes. Input given
// with -in is supplied before anything read from in.
func newHandler(o options, in io.Reader, out io.Writer) intcode.Handler {
	switch o.mode {
	case "ascii":
		c := host.NewConsole(in, out)
		if o.in != "" {
			for _, line := range strings.Split(o.in, ";") {
				c.Queue(line)
			}
		}
		return c
	default:
		if o.in != "" {
			in = io.MultiReader(strings.NewReader(o.in+"\n"), in)
		}
		return host.NewStream(in, out)
	}
}

func runChain(w io.Writer, prog []int64, o options) error {
	if o.search {
		best, order, err := host.MaxSignal(prog, o.chain, o.feedback)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d %s\n", best, formatInts(order))
		return nil
	}
	c := host.NewChain(prog, o.chain...)
	c.Feedback = o.feedback
	v, err := c.Run(0)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, v)
	return nil
}

func runScreen(r *host.Runner, m *intcode.Machine, o options) error {
	scr := host.NewScreen()
	scr.Auto = o.auto
	feedScreen(scr, o.in)
	if !o.gui && o.auto {
		err := r.Run(m, scr)
		fmt.Print(scr.Text())
		fmt.Printf("score %d\n", scr.Score())
		return err
	}

	scr.Delay = time.Second / 60
	var (
		exit    = make(chan bool)
		execErr error
	)
	go func() {
		execErr = r.Run(m, scr)
		close(exit)
	}()
	if o.gui {
		// The GUI must run on the main goroutine; it returns when
		// the program halts or the window is closed.
		if err := host.NewGUI(scr).Run(exit); err != nil {
			return fmt.Errorf("gui: %v", err)
		}
	} else {
		quit, err := host.NewTerm(scr).Run(exit)
		if err != nil {
			return fmt.Errorf("term: %v", err)
		}
		if quit {
			return nil
		}
	}
	select {
	case <-exit:
		fmt.Printf("score %d\n", scr.Score())
		return execErr
	default:
		return nil
	}
}

// newRobot returns a robot starting on the panel color given by -in.
func newRobot(o options) (*host.Robot, error) {
	var start int64
	if o.in != "" {
		v, err := intcode.ParseImage(o.in)
		if err != nil || len(v) != 1 {
			return nil, fmt.Errorf("robot: invalid starting color %q", o.in)
		}
		start = v[0]
	}
	return host.NewRobot(start), nil
}

func runRobot(w io.Writer, r *host.Runner, m *intcode.Machine, o options) error {
	rb, err := newRobot(o)
	if err != nil {
		return err
	}
	if err := r.Run(m, rb); err != nil {
		return err
	}
	fmt.Fprint(w, rb.Text())
	fmt.Fprintf(w, "%d panels painted\n", rb.Painted())
	return nil
}

// runScan asks the program about every point of a grid, resetting it
// before each question, and prints the points that answered non-zero.
func runScan(w io.Writer, img []int64, o options) error {
	size := []int64{50, 50}
	if o.in != "" {
		v, err := intcode.ParseImage(o.in)
		if err != nil || len(v) != 2 || v[0] <= 0 || v[1] <= 0 {
			return fmt.Errorf("scan: invalid size %q, want width,height", o.in)
		}
		size = v
	}
	q := host.NewQuery(img)
	q.OnReset = o.patch.apply
	r := image.Rect(0, 0, int(size[0]), int(size[1]))
	hits, err := q.Scan(r)
	if err != nil {
		return err
	}
	var b strings.Builder
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if hits[image.Pt(x, y)] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
	fmt.Fprintf(w, "%d points\n", len(hits))
	return nil
}

// feedScreen sets the screen's initial joystick position from -in.
func feedScreen(scr *host.Screen, in string) {
	if in == "" {
		return
	}
	v, err := strconv.ParseInt(strings.TrimSpace(in), 10, 64)
	if err != nil {
		log.Printf("screen: ignoring input %q: %v", in, err)
		return
	}
	scr.Joystick.Set(v)
}

func formatInts(v []int64) string {
	s := make([]string, len(v))
	for i, n := range v {
		s[i] = strconv.FormatInt(n, 10)
	}
	return strings.Join(s, ",")
}
