package intcode

import "fmt"

// Handler provides access to the host connected to an Intcode machine.
// IO is called once for every IN and OUT instruction, in program order.
//
// For an InputRequested event IO must return an InputValue response.
// For an OutputProduced event IO must return Continue or Break.
// Any other response halts the current Run with a BadResponse fault.
type Handler interface {
	IO(Event) Response
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(Event) Response

func (f HandlerFunc) IO(e Event) Response { return f(e) }

// EventKind distinguishes input requests from produced output.
type EventKind byte

const (
	InputRequested EventKind = iota + 1
	OutputProduced
)

// Event is delivered to a Handler by an IN or OUT instruction.
// Value is only meaningful for OutputProduced.
type Event struct {
	Kind  EventKind
	Value int64
}

func (e Event) String() string {
	switch e.Kind {
	case InputRequested:
		return "input"
	case OutputProduced:
		return fmt.Sprintf("output(%d)", e.Value)
	}
	return fmt.Sprintf("event(%d)", byte(e.Kind))
}

// Action tells a Machine whether to keep executing after an output.
type Action byte

const (
	ActionContinue Action = iota
	ActionBreak
)

// ResponseKind distinguishes the replies a Handler may give.
// The zero value is not a valid reply.
type ResponseKind byte

const (
	InputValue ResponseKind = iota + 1
	ContinueKind
	BreakKind
)

// Response is a Handler's reply to an Event.
type Response struct {
	Kind  ResponseKind
	Value int64
}

var (
	// Continue resumes execution after an output.
	Continue = Response{Kind: ContinueKind}

	// Break suspends Run directly after the output instruction.
	// A later call to Run resumes at the following instruction.
	Break = Response{Kind: BreakKind}
)

// Input returns the response to an input request that supplies v.
func Input(v int64) Response { return Response{Kind: InputValue, Value: v} }

// Funcs returns a Handler that answers input requests by calling in
// and output events by calling out. A nil out discards output and continues.
func Funcs(in func() int64, out func(int64) Action) Handler {
	return HandlerFunc(func(e Event) Response {
		switch e.Kind {
		case InputRequested:
			if in == nil {
				return Response{}
			}
			return Input(in())
		case OutputProduced:
			if out != nil && out(e.Value) == ActionBreak {
				return Break
			}
			return Continue
		}
		return Response{}
	})
}

// Nop is a Handler that rejects input and ignores output.
var Nop Handler = Funcs(nil, nil)
