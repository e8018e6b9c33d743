package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cosmohq/cosmo/pkg/api"
)

var (
	statsToolName    = "knowledge_stats"
	statsDescription = "Report what the retrieval backend currently knows: total documents, total chunks, and a per-source breakdown of the ingested files."
)

// StatsInput represents the input arguments for the knowledge_stats tool.
// The tool takes no arguments.
type StatsInput struct{}

// StatsOutput represents the output of the knowledge_stats tool.
type StatsOutput struct {
	TotalDocuments int                       `json:"total_documents"`
	TotalChunks    int                       `json:"total_chunks"`
	Sources        map[string]api.SourceInfo `json:"sources"`
}

// handleStats processes a knowledge_stats request.
func (s *Server) handleStats(ctx context.Context, req *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, StatsOutput, error) {
	logger := s.config.Logger

	stats, err := s.config.API.Stats(ctx)
	if err != nil {
		logger.Error("failed to fetch stats", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to fetch stats: %v", err)},
			},
		}, StatsOutput{}, nil
	}

	output := StatsOutput{
		TotalDocuments: stats.TotalDocuments,
		TotalChunks:    stats.TotalChunks,
		Sources:        stats.Sources,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal stats output", "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize stats: %v", err)},
			},
		}, StatsOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
