// Package stream implements the streaming chat client for the Cosmo API.
//
// One call to Client.Ask issues one POST /api/chat exchange and bridges the
// SSE-style response stream to caller callbacks: OnToken once per content
// token in arrival order, then exactly one of OnDone or OnError. The
// returned Session exposes cancellation.
//
// The client performs no retries and enforces no timeout of its own; a
// caller wanting a deadline races Session.Cancel against its own timer.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/sse"
)

// ErrEmptyStream indicates the server reported success but closed the
// stream without emitting a single event.
var ErrEmptyStream = errors.New("stream: response carried no events")

// readBufferSize is the transport read granularity. Each read hands one
// chunk to the frame decoder before the next read is issued, so tokens are
// delivered strictly in arrival order.
const readBufferSize = 4 * 1024

// Callbacks receive the decoded stream. Nil callbacks are skipped.
type Callbacks struct {
	// OnToken is invoked once per content token; concatenating all tokens
	// in call order reconstructs the full message text.
	OnToken func(token string)

	// OnDone is invoked exactly once when the terminal sentinel arrives.
	OnDone func()

	// OnError is invoked exactly once on transport, protocol, or
	// truncation failure. Never invoked for cancellation.
	OnError func(err error)
}

// chatRequest is the outgoing wire payload. NResults bounds how much
// stored context (prior turns and retrieved chunks) the server considers.
type chatRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode"`
	NResults int    `json:"n_results"`
}

// Client issues streaming chat requests against a Cosmo server.
// Sessions created by the same client are fully independent; each owns its
// own decoder and buffer.
type Client struct {
	target     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger. Defaults to a nop logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a Client for the given server URL.
func NewClient(target string, opts ...Option) *Client {
	c := &Client{
		target: strings.TrimRight(target, "/"),
		// No Timeout: answers stream for as long as the model generates.
		httpClient: &http.Client{},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask starts one streaming exchange and returns its Session immediately,
// before any bytes arrive, so the caller can cancel at any point. The
// exchange itself runs on a dedicated goroutine.
func (c *Client) Ask(question, mode string, nResults int, cb Callbacks) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSession(cancel)

	go c.run(ctx, s, question, mode, nResults, cb)

	return s
}

func (c *Client) run(ctx context.Context, s *Session, question, mode string, nResults int, cb Callbacks) {
	// Release the request context once the session is over, whichever way
	// it ended.
	defer s.cancel()

	body, err := json.Marshal(chatRequest{
		Question: question,
		Mode:     mode,
		NResults: nResults,
	})
	if err != nil {
		c.fail(s, cb, fmt.Errorf("marshaling chat request: %w", err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target+"/api/chat", bytes.NewReader(body))
	if err != nil {
		c.fail(s, cb, fmt.Errorf("creating chat request: %w", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("starting chat stream",
		"session", s.id,
		"mode", mode,
		"n_results", nResults,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled before or during the request: terminal state is
			// already set, and the caller gets no callback.
			return
		}
		c.fail(s, cb, fmt.Errorf("sending chat request: %w", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.fail(s, cb, decodeErrorBody(resp))
		return
	}

	c.consume(ctx, s, resp.Body, cb)
}

// consume reads the response body one chunk at a time, feeding each chunk
// to the session's frame decoder and dispatching the decoded events.
func (c *Client) consume(ctx context.Context, s *Session, body io.Reader, cb Callbacks) {
	dec := sse.NewDecoder()
	buf := make([]byte, readBufferSize)
	sawEvent := false

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				sawEvent = true
				switch ev.Kind {
				case sse.EventToken:
					if !c.emitToken(s, cb, ev.Token) {
						return
					}
				case sse.EventDone:
					c.finish(s, cb)
					return
				case sse.EventError:
					c.fail(s, cb, errors.New(ev.Err))
					return
				}
			}
		}

		if readErr == nil {
			continue
		}
		if !errors.Is(readErr, io.EOF) {
			if ctx.Err() != nil {
				return
			}
			c.fail(s, cb, fmt.Errorf("reading chat stream: %w", readErr))
			return
		}

		// End of stream without a terminal marker.
		if err := dec.Finalize(); err != nil {
			c.fail(s, cb, err)
			return
		}
		if !sawEvent {
			c.fail(s, cb, ErrEmptyStream)
			return
		}
		c.finish(s, cb)
		return
	}
}

// emitToken delivers one token unless the session already left the active
// state (e.g. the caller cancelled between reads).
func (c *Client) emitToken(s *Session, cb Callbacks, token string) bool {
	if s.State() != StateActive {
		return false
	}
	if cb.OnToken != nil {
		cb.OnToken(token)
	}
	return true
}

func (c *Client) finish(s *Session, cb Callbacks) {
	if !s.transition(StateDone) {
		return
	}
	c.logger.Debug("chat stream complete", "session", s.id)
	if cb.OnDone != nil {
		cb.OnDone()
	}
}

func (c *Client) fail(s *Session, cb Callbacks, err error) {
	if !s.transition(StateErrored) {
		return
	}
	c.logger.Debug("chat stream failed", "session", s.id, "error", err)
	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// decodeErrorBody surfaces the server's embedded error message verbatim
// when present, with a generic fallback for unparseable bodies.
func decodeErrorBody(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return errors.New(payload.Error)
	}
	return fmt.Errorf("server returned status %d", resp.StatusCode)
}
