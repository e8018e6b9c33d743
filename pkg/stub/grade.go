package stub

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cosmohq/cosmo/pkg/api"
)

// handleEvaluate grades an answer by string comparison: an exact
// case-insensitive match is correct, meaningful word overlap with the
// reference answer is partial, anything else is incorrect.
func (s *Server) handleEvaluate(c *fiber.Ctx) error {
	var req api.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.UserAnswer) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "user_answer is required"})
	}

	score, feedback := grade(req.UserAnswer, req.ModelAnswer)
	return c.JSON(api.Evaluation{Score: score, Feedback: feedback})
}

func grade(userAnswer, modelAnswer string) (score, feedback string) {
	user := normalize(userAnswer)
	model := normalize(modelAnswer)

	if user == model {
		return "correct", "Exactly right."
	}

	if overlap(user, model) >= 0.5 {
		return "partial", "Close: you have part of it. Reference answer: " + modelAnswer
	}

	return "incorrect", "Not quite. Reference answer: " + modelAnswer
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// overlap returns the fraction of reference answer words present in the
// user's answer.
func overlap(user, model string) float64 {
	modelWords := strings.Fields(model)
	if len(modelWords) == 0 {
		return 0
	}

	userWords := make(map[string]bool)
	for _, w := range strings.Fields(user) {
		userWords[w] = true
	}

	matched := 0
	for _, w := range modelWords {
		if userWords[w] {
			matched++
		}
	}

	return float64(matched) / float64(len(modelWords))
}
