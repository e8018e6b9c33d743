package stream_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cosmohq/cosmo/pkg/sse"
	"github.com/cosmohq/cosmo/pkg/stream"
)

// recorder collects callback invocations for assertions. Callbacks fire on
// the session goroutine, so access is guarded.
type recorder struct {
	mu     sync.Mutex
	tokens []string
	dones  int
	errs   []error
}

func (r *recorder) callbacks() stream.Callbacks {
	return stream.Callbacks{
		OnToken: func(token string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.tokens = append(r.tokens, token)
		},
		OnDone: func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.dones++
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
	}
}

func (r *recorder) snapshot() (tokens []string, dones int, errs []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...), r.dones, append([]error(nil), r.errs...)
}

// tokenFrame encodes one token as a wire frame.
func tokenFrame(token string) string {
	payload, err := json.Marshal(map[string]string{"token": token})
	Expect(err).NotTo(HaveOccurred())
	return fmt.Sprintf("data: %s\n\n", payload)
}

var _ = Describe("Client", func() {
	var (
		server *httptest.Server
		rec    *recorder
	)

	BeforeEach(func() {
		rec = &recorder{}
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
			server = nil
		}
	})

	// sseHandler streams the given frames with a flush between each.
	sseHandler := func(frames ...string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher, ok := w.(http.Flusher)
			Expect(ok).To(BeTrue())

			for _, frame := range frames {
				fmt.Fprint(w, frame)
				flusher.Flush()
			}
		}
	}

	Context("with a well-formed token stream", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler(
				tokenFrame("Hello"),
				tokenFrame(", world"),
				"data: [DONE]\n\n",
			))
		})

		It("delivers tokens in order then exactly one OnDone", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("what is useState?", "quick", 4, rec.callbacks())

			Eventually(session.Done()).Should(BeClosed())

			tokens, dones, errs := rec.snapshot()
			Expect(tokens).To(Equal([]string{"Hello", ", world"}))
			Expect(strings.Join(tokens, "")).To(Equal("Hello, world"))
			Expect(dones).To(Equal(1))
			Expect(errs).To(BeEmpty())
			Expect(session.State()).To(Equal(stream.StateDone))
		})

		It("sends the question, mode, and history bound on the wire", func() {
			var got struct {
				Question string `json:"question"`
				Mode     string `json:"mode"`
				NResults int    `json:"n_results"`
			}
			server.Close()
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))
				Expect(r.URL.Path).To(Equal("/api/chat"))
				Expect(json.NewDecoder(r.Body).Decode(&got)).To(Succeed())
				fmt.Fprint(w, "data: [DONE]\n\n")
			}))

			client := stream.NewClient(server.URL)
			session := client.Ask("why hooks?", "deep", 8, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			Expect(got.Question).To(Equal("why hooks?"))
			Expect(got.Mode).To(Equal("deep"))
			Expect(got.NResults).To(Equal(8))
		})
	})

	Context("when frames arrive split across network chunks", func() {
		BeforeEach(func() {
			// A single frame carved into three writes.
			server = httptest.NewServer(sseHandler(
				"data: {\"tok",
				"en\": \"Hél",
				"lo\"}\n\ndata: [DONE]\n\n",
			))
		})

		It("reassembles the token intact", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			tokens, dones, _ := rec.snapshot()
			Expect(tokens).To(Equal([]string{"Héllo"}))
			Expect(dones).To(Equal(1))
		})
	})

	Context("when the server returns a non-success status", func() {
		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, `{"error": "Quiz not found"}`)
			}))
		})

		It("surfaces the embedded error message verbatim", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			tokens, dones, errs := rec.snapshot()
			Expect(tokens).To(BeEmpty())
			Expect(dones).To(BeZero())
			Expect(errs).To(HaveLen(1))
			Expect(errs[0].Error()).To(Equal("Quiz not found"))
			Expect(session.State()).To(Equal(stream.StateErrored))
		})
	})

	Context("when the error body is unparseable", func() {
		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				fmt.Fprint(w, "upstream exploded")
			}))
		})

		It("falls back to a generic status message", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			_, _, errs := rec.snapshot()
			Expect(errs).To(HaveLen(1))
			Expect(errs[0].Error()).To(ContainSubstring("502"))
		})
	})

	Context("when the stream carries an embedded error event", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler(
				tokenFrame("partial"),
				"data: {\"error\": \"model unavailable\"}\n\n",
			))
		})

		It("invokes OnError once after the delivered tokens", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			tokens, dones, errs := rec.snapshot()
			Expect(tokens).To(Equal([]string{"partial"}))
			Expect(dones).To(BeZero())
			Expect(errs).To(HaveLen(1))
			Expect(errs[0].Error()).To(Equal("model unavailable"))
		})
	})

	Context("when the stream is cut off mid-frame", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler(
				tokenFrame("start"),
				"data: {\"token\": \"never finis",
			))
		})

		It("reports a truncation error", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			tokens, _, errs := rec.snapshot()
			Expect(tokens).To(Equal([]string{"start"}))
			Expect(errs).To(HaveLen(1))
			Expect(errs[0]).To(MatchError(sse.ErrTruncatedStream))
			Expect(session.State()).To(Equal(stream.StateErrored))
		})
	})

	Context("when the stream ends cleanly without a terminal marker", func() {
		BeforeEach(func() {
			server = httptest.NewServer(sseHandler(
				tokenFrame("all"),
				tokenFrame(" good"),
			))
		})

		It("treats the session as complete", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			tokens, dones, errs := rec.snapshot()
			Expect(tokens).To(Equal([]string{"all", " good"}))
			Expect(dones).To(Equal(1))
			Expect(errs).To(BeEmpty())
		})
	})

	Context("when the server closes without sending anything", func() {
		BeforeEach(func() {
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
			}))
		})

		It("reports an empty-stream transport anomaly", func() {
			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			_, dones, errs := rec.snapshot()
			Expect(dones).To(BeZero())
			Expect(errs).To(HaveLen(1))
			Expect(errs[0]).To(MatchError(stream.ErrEmptyStream))
		})
	})

	Context("cancellation", func() {
		It("cancelling before any chunk arrives invokes no callbacks", func() {
			release := make(chan struct{})
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Hold the response open until the client gives up.
				select {
				case <-r.Context().Done():
				case <-release:
				}
			}))
			defer close(release)

			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			session.Cancel()

			Expect(session.State()).To(Equal(stream.StateCancelled))
			Eventually(session.Done()).Should(BeClosed())

			Consistently(func() int {
				tokens, dones, errs := rec.snapshot()
				return len(tokens) + dones + len(errs)
			}, 150*time.Millisecond).Should(BeZero())
		})

		It("is idempotent and a no-op after completion", func() {
			server = httptest.NewServer(sseHandler("data: [DONE]\n\n"))

			client := stream.NewClient(server.URL)
			session := client.Ask("q", "quick", 4, rec.callbacks())
			Eventually(session.Done()).Should(BeClosed())

			session.Cancel()
			session.Cancel()

			_, dones, errs := rec.snapshot()
			Expect(dones).To(Equal(1))
			Expect(errs).To(BeEmpty())
			Expect(session.State()).To(Equal(stream.StateDone))
		})

		It("two sessions from one client do not interfere", func() {
			server = httptest.NewServer(sseHandler(
				tokenFrame("x"),
				"data: [DONE]\n\n",
			))

			client := stream.NewClient(server.URL)
			other := &recorder{}

			s1 := client.Ask("q1", "quick", 4, rec.callbacks())
			s2 := client.Ask("q2", "quick", 4, other.callbacks())

			Eventually(s1.Done()).Should(BeClosed())
			Eventually(s2.Done()).Should(BeClosed())

			t1, d1, _ := rec.snapshot()
			t2, d2, _ := other.snapshot()
			Expect(t1).To(Equal([]string{"x"}))
			Expect(t2).To(Equal([]string{"x"}))
			Expect(d1).To(Equal(1))
			Expect(d2).To(Equal(1))
			Expect(s1.ID()).NotTo(Equal(s2.ID()))
		})
	})
})
