package host

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"unicode"

	"github.com/nf/icvm/intcode"
)

// Stream is a Handler that reads decimal integers from an input stream
// and writes each output value on its own line.
//
// Input values may be separated by commas or whitespace. At the end of
// input Stream returns an invalid response and Err reports io.EOF.
type Stream struct {
	in  *bufio.Reader
	out io.Writer
	err error
}

// NewStream returns a Stream that reads from r and writes to w.
func NewStream(r io.Reader, w io.Writer) *Stream {
	return &Stream{in: bufio.NewReader(r), out: w}
}

// Err returns the first error encountered reading or writing.
func (s *Stream) Err() error { return s.err }

func (s *Stream) IO(e intcode.Event) intcode.Response {
	switch e.Kind {
	case intcode.InputRequested:
		v, err := s.next()
		if err != nil {
			s.setErr(err)
			return intcode.Response{}
		}
		return intcode.Input(v)
	case intcode.OutputProduced:
		if _, err := fmt.Fprintln(s.out, e.Value); err != nil {
			s.setErr(err)
		}
		return intcode.Continue
	}
	return intcode.Response{}
}

func (s *Stream) next() (int64, error) {
	var b strings.Builder
	for {
		r, _, err := s.in.ReadRune()
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				break
			}
			return 0, err
		}
		if r == ',' || unicode.IsSpace(r) {
			if b.Len() > 0 {
				break
			}
			continue
		}
		b.WriteRune(r)
	}
	v, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad integer: %v", err)
	}
	return v, nil
}

func (s *Stream) setErr(err error) {
	if s.err == nil {
		s.err = err
	}
}

// Console is a Handler for programs that speak ASCII. Input lines are
// supplied one character at a time, including the terminating newline.
// Output values in the ASCII range are written as characters; any other
// value is written as a decimal number on its own line.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	err error

	line []byte
}

// NewConsole returns a Console that reads lines from r and writes to w.
// Lines may be queued ahead of the reader with Queue.
func NewConsole(r io.Reader, w io.Writer) *Console {
	return &Console{in: bufio.NewReader(r), out: w}
}

// Err returns the first error encountered reading or writing.
func (c *Console) Err() error { return c.err }

// Queue supplies a line of input ahead of anything read from the reader.
func (c *Console) Queue(line string) {
	c.line = append(c.line, line...)
	c.line = append(c.line, '\n')
}

func (c *Console) IO(e intcode.Event) intcode.Response {
	switch e.Kind {
	case intcode.InputRequested:
		if len(c.line) == 0 {
			line, err := c.in.ReadString('\n')
			if err != nil && (err != io.EOF || line == "") {
				c.setErr(err)
				return intcode.Response{}
			}
			c.line = append(c.line, strings.TrimRight(line, "\r\n")...)
			c.line = append(c.line, '\n')
		}
		b := c.line[0]
		c.line = c.line[1:]
		return intcode.Input(int64(b))
	case intcode.OutputProduced:
		var err error
		if v := e.Value; v >= 0 && v < 0x80 {
			_, err = c.out.Write([]byte{byte(v)})
		} else {
			_, err = fmt.Fprintf(c.out, "%d\n", v)
		}
		if err != nil {
			c.setErr(err)
		}
		return intcode.Continue
	}
	return intcode.Response{}
}

func (c *Console) setErr(err error) {
	if c.err == nil {
		c.err = err
		if err != io.EOF {
			log.Printf("console: %v", err)
		}
	}
}
