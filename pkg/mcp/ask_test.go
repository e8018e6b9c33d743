package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cosmohq/cosmo/pkg/api"
	cosmologger "github.com/cosmohq/cosmo/pkg/logger"
	"github.com/cosmohq/cosmo/pkg/stream"
)

// newBackend serves the minimal cosmo API surface the MCP tools touch.
func newBackend() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Question string `json:"question"`
			Mode     string `json:"mode"`
		}
		Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())

		w.Header().Set("Content-Type", "text/event-stream")
		if req.Question == "break" {
			w.Write([]byte("data: {\"error\": \"model exploded\"}\n\n"))
			return
		}
		w.Write([]byte("data: {\"token\": \"Hooks keep \"}\n\n"))
		w.Write([]byte("data: {\"token\": \"state [2] in functions [1].\"}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	})

	mux.HandleFunc("GET /api/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.Stats{
			TotalChunks:    49,
			TotalDocuments: 2,
			Sources: map[string]api.SourceInfo{
				"react-handbook.pdf": {Type: "pdf", Chunks: 42},
				"hooks-notes.md":     {Type: "markdown", Chunks: 7},
			},
		})
	})

	return httptest.NewServer(mux)
}

var _ = Describe("ask_docs tool", func() {
	var (
		backend *httptest.Server
		server  *Server
		ctx     context.Context
	)

	BeforeEach(func() {
		backend = newBackend()

		var err error
		server, err = NewServer(Config{
			Asker:  stream.NewClient(backend.URL),
			API:    api.NewClient(backend.URL),
			Logger: cosmologger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		ctx = context.TODO()
	})

	AfterEach(func() {
		backend.Close()
	})

	It("streams an answer and extracts citations", func() {
		result, output, err := server.handleAsk(ctx, &sdkmcp.CallToolRequest{}, AskInput{
			Question: "What do hooks do?",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeFalse())

		Expect(output.Question).To(Equal("What do hooks do?"))
		Expect(output.Mode).To(Equal("quick"))
		Expect(output.Answer).To(Equal("Hooks keep state [2] in functions [1]."))
		Expect(output.Citations).To(Equal([]int{2, 1}))
	})

	It("mirrors the structured output into a text content block", func() {
		result, output, err := server.handleAsk(ctx, &sdkmcp.CallToolRequest{}, AskInput{
			Question: "What do hooks do?",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Content).To(HaveLen(1))

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		Expect(ok).To(BeTrue())

		var decoded AskOutput
		Expect(json.Unmarshal([]byte(text.Text), &decoded)).To(Succeed())
		Expect(decoded).To(Equal(output))
	})

	It("honors an explicit mode override", func() {
		_, output, err := server.handleAsk(ctx, &sdkmcp.CallToolRequest{}, AskInput{
			Question: "What do hooks do?",
			Mode:     "detailed",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(output.Mode).To(Equal("detailed"))
	})

	It("rejects an empty question", func() {
		result, _, err := server.handleAsk(ctx, &sdkmcp.CallToolRequest{}, AskInput{
			Question: "   ",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		Expect(ok).To(BeTrue())
		Expect(text.Text).To(Equal("question is required"))
	})

	It("surfaces stream errors as tool errors", func() {
		result, _, err := server.handleAsk(ctx, &sdkmcp.CallToolRequest{}, AskInput{
			Question: "break",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		Expect(ok).To(BeTrue())
		Expect(text.Text).To(ContainSubstring("model exploded"))
	})
})

var _ = Describe("knowledge_stats tool", func() {
	var (
		backend *httptest.Server
		server  *Server
		ctx     context.Context
	)

	BeforeEach(func() {
		backend = newBackend()

		var err error
		server, err = NewServer(Config{
			Asker:  stream.NewClient(backend.URL),
			API:    api.NewClient(backend.URL),
			Logger: cosmologger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		ctx = context.TODO()
	})

	AfterEach(func() {
		backend.Close()
	})

	It("reports knowledge base totals and sources", func() {
		result, output, err := server.handleStats(ctx, &sdkmcp.CallToolRequest{}, StatsInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeFalse())

		Expect(output.TotalDocuments).To(Equal(2))
		Expect(output.TotalChunks).To(Equal(49))
		Expect(output.Sources).To(HaveKey("react-handbook.pdf"))
		Expect(output.Sources["hooks-notes.md"].Chunks).To(Equal(7))
	})

	It("surfaces backend failures as tool errors", func() {
		backend.Close()

		result, _, err := server.handleStats(ctx, &sdkmcp.CallToolRequest{}, StatsInput{})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.IsError).To(BeTrue())

		text, ok := result.Content[0].(*sdkmcp.TextContent)
		Expect(ok).To(BeTrue())
		Expect(text.Text).To(ContainSubstring("Failed to fetch stats"))
	})
})
