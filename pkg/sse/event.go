// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// decoder for the Cosmo chat wire protocol. It turns raw response-body
// chunks, split at arbitrary byte boundaries, into an ordered sequence
// of protocol events.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// EventKind discriminates the three protocol event variants.
type EventKind int

const (
	// EventToken carries one content token of the streamed answer.
	EventToken EventKind = iota

	// EventDone signals the terminal sentinel: no further tokens will arrive.
	EventDone

	// EventError carries a server-reported failure embedded in the stream.
	EventError
)

// Event is one decoded protocol event, the payload of a single complete
// frame. Exactly one of Token or Err is meaningful, selected by Kind.
type Event struct {
	Kind  EventKind
	Token string
	Err   string
}

// String returns the kind name, mostly for log output.
func (k EventKind) String() string {
	switch k {
	case EventToken:
		return "token"
	case EventDone:
		return "done"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
