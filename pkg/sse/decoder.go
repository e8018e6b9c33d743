package sse

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// doneSentinel is the terminal payload signaling the end of a stream.
const doneSentinel = "[DONE]"

// ErrTruncatedStream indicates the transport ended while unresolved frame
// bytes were still buffered and no terminal sentinel had been seen.
var ErrTruncatedStream = errors.New("sse: stream truncated mid-frame")

// Decoder reassembles complete protocol frames from raw byte chunks.
//
// Each Decoder owns its buffer exclusively: one Decoder per stream, never
// shared. Chunks may split frames, lines, or even multi-byte UTF-8
// sequences anywhere; the decoder only slices the buffer at blank-line
// frame terminators, and since 0x0A never occurs inside a multi-byte UTF-8
// sequence a split rune is always held back until its frame completes.
type Decoder struct {
	buf  []byte
	done bool
}

// NewDecoder returns a Decoder with an empty buffer.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the buffer and returns every event decoded from
// the complete frames now available, in order. Bytes after the last frame
// terminator stay buffered for the next call.
//
// Feed never fails: frames that are empty, comments, or unparseable JSON
// are skipped so that one malformed frame cannot abort a healthy stream.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.buf = append(d.buf, chunk...)

	var events []Event
	for {
		idx := bytes.Index(d.buf, []byte("\n\n"))
		if idx < 0 {
			break
		}

		frame := string(d.buf[:idx])
		d.buf = d.buf[idx+2:]

		if ev, ok := d.decodeFrame(frame); ok {
			events = append(events, ev)
		}
	}

	return events
}

// Finalize reports whether the stream ended cleanly. A non-empty residual
// buffer means the transport cut off mid-frame; that is surfaced as
// ErrTruncatedStream unless the terminal sentinel was already observed.
func (d *Decoder) Finalize() error {
	if d.done {
		return nil
	}
	if len(bytes.TrimSpace(d.buf)) > 0 {
		return ErrTruncatedStream
	}
	return nil
}

// decodeFrame parses one complete frame into an event. The boolean is
// false when the frame should be skipped (keep-alive, comment, malformed).
func (d *Decoder) decodeFrame(frame string) (Event, bool) {
	var data strings.Builder
	hasData := false

	for _, line := range strings.Split(frame, "\n") {
		line = strings.TrimSuffix(line, "\r")

		// Lines starting with ':' are comments per the SSE spec.
		if strings.HasPrefix(line, ":") {
			continue
		}

		value, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		// Strip a single leading space after the colon, per spec.
		value = strings.TrimPrefix(value, " ")

		if hasData {
			// Multiple data fields are joined with "\n".
			data.WriteString("\n")
		}
		data.WriteString(value)
		hasData = true
	}

	if !hasData {
		return Event{}, false
	}

	payload := data.String()
	if payload == doneSentinel {
		d.done = true
		return Event{Kind: EventDone}, true
	}

	var body struct {
		Token *string `json:"token"`
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		return Event{}, false
	}

	switch {
	case body.Error != nil:
		return Event{Kind: EventError, Err: *body.Error}, true
	case body.Token != nil:
		return Event{Kind: EventToken, Token: *body.Token}, true
	default:
		return Event{}, false
	}
}
