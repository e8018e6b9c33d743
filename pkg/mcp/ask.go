package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cosmohq/cosmo/pkg/cliui"
	"github.com/cosmohq/cosmo/pkg/markdown"
	"github.com/cosmohq/cosmo/pkg/stream"
)

var (
	askToolName    = "ask_docs"
	askDescription = "Ask a question against the ingested study documents. Streams the answer from the retrieval backend and returns the full text along with the source citations it references."
)

// AskInput represents the input arguments for the ask_docs tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to ask against the ingested documents"`
	Mode     string `json:"mode,omitempty" jsonschema:"response mode to use (default: the server's configured mode)"`
	NResults int    `json:"n_results,omitempty" jsonschema:"number of retrieval results to ground the answer on (default: the server's configured count)"`
}

// AskOutput represents the output of the ask_docs tool.
type AskOutput struct {
	Question  string `json:"question"`
	Mode      string `json:"mode"`
	Answer    string `json:"answer"`
	Citations []int  `json:"citations"`
}

// handleAsk processes an ask_docs request by streaming a full answer from the
// backend and collecting the tokens into a single response.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	question := strings.TrimSpace(input.Question)
	if question == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "question is required"},
			},
		}, AskOutput{}, nil
	}

	mode := input.Mode
	if mode == "" {
		mode = s.config.Mode
	}

	nResults := input.NResults
	if nResults <= 0 {
		nResults = s.config.NResults
	}

	logger.Debug("MCP ask request",
		"question", question,
		"mode", mode,
		"nResults", nResults,
	)

	var (
		mu      sync.Mutex
		answer  strings.Builder
		askErr  error
	)

	session := s.config.Asker.Ask(question, mode, nResults, stream.Callbacks{
		OnToken: func(token string) {
			mu.Lock()
			answer.WriteString(token)
			mu.Unlock()
		},
		OnError: func(err error) {
			mu.Lock()
			askErr = err
			mu.Unlock()
		},
	})

	select {
	case <-session.Done():
	case <-ctx.Done():
		session.Cancel()
		<-session.Done()
	}

	mu.Lock()
	text := answer.String()
	err := askErr
	mu.Unlock()

	if err != nil {
		logger.Error("ask stream failed", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to answer question: %v", err)},
			},
		}, AskOutput{}, nil
	}

	output := AskOutput{
		Question:  question,
		Mode:      mode,
		Answer:    text,
		Citations: cliui.Citations(markdown.Parse(text)),
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal ask output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
