package stub

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cosmohq/cosmo/pkg/api"
)

type errorResponse struct {
	Error string `json:"error"`
}

type chatRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode"`
	NResults int    `json:"n_results"`
}

// handleChat streams a canned answer as token events, then the done marker.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "question is required"})
	}
	if req.Mode == "" {
		req.Mode = "quick"
	}

	s.mu.Lock()
	s.history++
	s.mu.Unlock()

	s.logger.Debug("chat request", "question", req.Question, "mode", req.Mode, "n_results", req.NResults)

	tokens := tokenize(cannedAnswer(req.Question))

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		for _, token := range tokens {
			payload, err := json.Marshal(map[string]string{"token": token})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			if err := w.Flush(); err != nil {
				return
			}
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		w.Flush()
	})

	return nil
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	s.mu.Lock()
	chunks, documents := s.totals()
	s.mu.Unlock()

	return c.JSON(fiber.Map{
		"status":          "ok",
		"total_chunks":    chunks,
		"total_documents": documents,
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks, documents := s.totals()
	return c.JSON(fiber.Map{
		"total_chunks":    chunks,
		"total_documents": documents,
		"sources":         s.sources,
	})
}

func (s *Server) handleClearHistory(c *fiber.Ctx) error {
	s.mu.Lock()
	s.history = 0
	s.mu.Unlock()

	return c.JSON(fiber.Map{"status": "cleared"})
}

// handleIngest accepts a multipart document and pretends to index it:
// one chunk per 500 bytes, matching roughly what chunking would produce.
func (s *Server) handleIngest(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "No file provided"})
	}
	if header.Filename == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Empty filename"})
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	docType := ""
	switch ext {
	case ".pdf":
		docType = "pdf"
	case ".md", ".markdown":
		docType = "markdown"
	default:
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{
			Error: fmt.Sprintf("Unsupported file type: %s. Allowed: .pdf, .md, .markdown", ext),
		})
	}

	force := c.Query("force") == "true"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sources[header.Filename]; exists && !force {
		return c.JSON(fiber.Map{
			"status":         "ok",
			"filename":       header.Filename,
			"chunks_indexed": 0,
		})
	}

	chunks := int(header.Size/500) + 1
	s.sources[header.Filename] = api.SourceInfo{Type: docType, Chunks: chunks}

	s.logger.Info("ingested document", "filename", header.Filename, "chunks", chunks, "force", force)

	return c.JSON(fiber.Map{
		"status":         "ok",
		"filename":       header.Filename,
		"chunks_indexed": chunks,
	})
}

func (s *Server) handleListQuizzes(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := make([]fiber.Map, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		total := 0
		sections := make([]fiber.Map, 0, len(quiz.Sections))
		for _, section := range quiz.Sections {
			total += len(section.Questions)
			sections = append(sections, fiber.Map{
				"type":  section.Type,
				"count": len(section.Questions),
			})
		}
		summaries = append(summaries, fiber.Map{
			"file":            quiz.ID + ".json",
			"id":              quiz.ID,
			"title":           quiz.Title,
			"scope":           quiz.Scope,
			"total_questions": total,
			"sections":        sections,
		})
	}

	return c.JSON(fiber.Map{"quizzes": summaries})
}

func (s *Server) handleGetQuiz(c *fiber.Ctx) error {
	id := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, quiz := range s.quizzes {
		if quiz.ID == id {
			return c.JSON(quiz)
		}
	}

	return c.Status(fiber.StatusNotFound).JSON(errorResponse{
		Error: fmt.Sprintf("Quiz '%s' not found", id),
	})
}

func (s *Server) handleMethodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(errorResponse{Error: "method not allowed"})
}
