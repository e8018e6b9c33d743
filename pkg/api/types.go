package api

import "encoding/json"

// Section type markers used by quiz documents.
const (
	SectionTrueFalse      = "true_false"
	SectionMultipleChoice = "multiple_choice"
	SectionShortAnswer    = "short_answer"
)

// Health is the response of GET /api/health.
type Health struct {
	Status         string `json:"status"`
	TotalChunks    int    `json:"total_chunks"`
	TotalDocuments int    `json:"total_documents"`
}

// Stats is the response of GET /api/stats.
type Stats struct {
	TotalChunks    int                   `json:"total_chunks"`
	TotalDocuments int                   `json:"total_documents"`
	Sources        map[string]SourceInfo `json:"sources"`
}

// SourceInfo describes one indexed document.
type SourceInfo struct {
	Type   string `json:"type"`
	Chunks int    `json:"chunks"`
}

// QuizSummary is one entry of GET /api/quizzes.
type QuizSummary struct {
	File           string           `json:"file"`
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Scope          string           `json:"scope"`
	TotalQuestions int              `json:"total_questions"`
	Sections       []SectionSummary `json:"sections"`
}

// SectionSummary is the per-section question count in a quiz summary.
type SectionSummary struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Quiz is the full quiz document of GET /api/quizzes/{id}.
type Quiz struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Scope    string    `json:"scope"`
	Sections []Section `json:"sections"`
}

// Section groups questions of one type: "true_false", "multiple_choice",
// or "short_answer".
type Section struct {
	Type      string     `json:"type"`
	Questions []Question `json:"questions"`
}

// Question is a single quiz question. The answer field's JSON type depends
// on the section: a boolean for true/false, an option index for multiple
// choice, free text for short answer. It is kept raw and decoded on demand.
type Question struct {
	ID       string          `json:"id,omitempty"`
	Question string          `json:"question"`
	Options  []string        `json:"options,omitempty"`
	Answer   json.RawMessage `json:"answer,omitempty"`
}

// ModelAnswer renders the reference answer as display text for the given
// section type. Unknown or missing answers come back empty.
func (q *Question) ModelAnswer(sectionType string) string {
	switch sectionType {
	case SectionTrueFalse:
		var b bool
		if err := json.Unmarshal(q.Answer, &b); err == nil {
			if b {
				return "True"
			}
			return "False"
		}
	case SectionMultipleChoice:
		var idx int
		if err := json.Unmarshal(q.Answer, &idx); err == nil && idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
	case SectionShortAnswer:
		var s string
		if err := json.Unmarshal(q.Answer, &s); err == nil {
			return s
		}
	}
	return ""
}

// UploadResult is the response of a successful document upload.
type UploadResult struct {
	Status        string `json:"status"`
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
}

// EvaluateRequest submits a quiz answer for grading.
type EvaluateRequest struct {
	Question    string `json:"question"`
	UserAnswer  string `json:"user_answer"`
	ModelAnswer string `json:"model_answer"`
	Mode        string `json:"mode"`
}

// Evaluation is the graded result: Score is one of "correct", "partial",
// or "incorrect".
type Evaluation struct {
	Score    string `json:"score"`
	Feedback string `json:"feedback"`
}
