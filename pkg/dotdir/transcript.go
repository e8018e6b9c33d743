package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	transcriptFile = "transcript.json"
)

// Transcript is the persisted record of the most recent chat session.
// The chat REPL saves it on exit so `cosmo history` can replay the
// conversation without hitting the server.
type Transcript struct {
	// Mode is the answer mode the session ran in.
	Mode string `json:"mode"`

	// SavedAt is when the transcript was written.
	SavedAt time.Time `json:"saved_at"`

	// Messages is the conversation in chronological order, oldest first.
	Messages []TranscriptMessage `json:"messages"`
}

// TranscriptMessage is a single question or answer in the transcript.
type TranscriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LoadTranscript loads the saved transcript from a target .cosmo/transcript.json.
// Returns nil, nil if no transcript exists.
// If overrideDir is non-empty, it is used instead of the default ~/.cosmo/ location.
func (m *Manager) LoadTranscript(overrideDir string) (*Transcript, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, transcriptFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading transcript: %w", err)
	}

	transcript := &Transcript{}
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("parsing transcript: %w", err)
	}

	return transcript, nil
}

// SaveTranscript persists the transcript to a target .cosmo/transcript.json.
func (m *Manager) SaveTranscript(transcript *Transcript, overrideDir string) error {
	if transcript == nil {
		return errors.New("cannot save nil transcript")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling transcript: %w", err)
	}

	path := filepath.Join(dir, transcriptFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}

	return nil
}

// ClearTranscript removes the transcript file.
// If overrideDir is non-empty, it is used instead of the default ~/.cosmo/ location.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearTranscript(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, transcriptFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing transcript: %w", err)
	}

	return nil
}
