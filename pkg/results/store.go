// Package results persists graded quiz attempts to a local SQLite database
// so progress survives across sessions.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Attempt is one completed quiz run.
type Attempt struct {
	ID        string
	QuizID    string
	QuizTitle string
	Mode      string
	Correct   int
	Partial   int
	Incorrect int
	Total     int
	TakenAt   time.Time
	Answers   []Answer
}

// Answer is one graded question within an attempt.
type Answer struct {
	Question   string
	UserAnswer string
	Score      string
	Feedback   string
}

// Percent returns the attempt score as a percentage, counting partial
// credit as half a point.
func (a *Attempt) Percent() float64 {
	if a.Total == 0 {
		return 0
	}
	return (float64(a.Correct) + float64(a.Partial)/2) / float64(a.Total) * 100
}

// Store is a SQLite-backed attempt store.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the attempts database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		quiz_id TEXT NOT NULL,
		quiz_title TEXT NOT NULL,
		mode TEXT NOT NULL,
		correct INTEGER NOT NULL,
		partial INTEGER NOT NULL,
		incorrect INTEGER NOT NULL,
		total INTEGER NOT NULL,
		taken_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS answers (
		attempt_id TEXT NOT NULL REFERENCES attempts(id),
		position INTEGER NOT NULL,
		question TEXT NOT NULL,
		user_answer TEXT NOT NULL,
		score TEXT NOT NULL,
		feedback TEXT NOT NULL,
		PRIMARY KEY (attempt_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_quiz_id ON attempts(quiz_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record persists a completed attempt and its graded answers.
// A missing ID or timestamp is filled in.
func (s *Store) Record(ctx context.Context, attempt *Attempt) error {
	if attempt == nil {
		return fmt.Errorf("cannot record nil attempt")
	}
	if attempt.QuizID == "" {
		return fmt.Errorf("attempt has no quiz id")
	}

	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.TakenAt.IsZero() {
		attempt.TakenAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, quiz_id, quiz_title, mode, correct, partial, incorrect, total, taken_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID, attempt.QuizID, attempt.QuizTitle, attempt.Mode,
		attempt.Correct, attempt.Partial, attempt.Incorrect, attempt.Total,
		attempt.TakenAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attempt: %w", err)
	}

	for i, answer := range attempt.Answers {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO answers (attempt_id, position, question, user_answer, score, feedback)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			attempt.ID, i, answer.Question, answer.UserAnswer, answer.Score, answer.Feedback,
		)
		if err != nil {
			return fmt.Errorf("failed to insert answer %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// List returns attempts newest-first. A non-empty quizID filters to one quiz;
// limit <= 0 means no limit. Answers are not loaded; use Get for the full record.
func (s *Store) List(ctx context.Context, quizID string, limit int) ([]Attempt, error) {
	query := `SELECT id, quiz_id, quiz_title, mode, correct, partial, incorrect, total, taken_at
	          FROM attempts`
	args := []any{}

	if quizID != "" {
		query += ` WHERE quiz_id = ?`
		args = append(args, quizID)
	}
	query += ` ORDER BY taken_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		err := rows.Scan(&a.ID, &a.QuizID, &a.QuizTitle, &a.Mode,
			&a.Correct, &a.Partial, &a.Incorrect, &a.Total, &a.TakenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// Get retrieves a single attempt with its graded answers.
func (s *Store) Get(ctx context.Context, id string) (*Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, quiz_id, quiz_title, mode, correct, partial, incorrect, total, taken_at
		 FROM attempts WHERE id = ?`, id)

	var a Attempt
	err := row.Scan(&a.ID, &a.QuizID, &a.QuizTitle, &a.Mode,
		&a.Correct, &a.Partial, &a.Incorrect, &a.Total, &a.TakenAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attempt %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan attempt: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question, user_answer, score, feedback
		 FROM answers WHERE attempt_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ans Answer
		if err := rows.Scan(&ans.Question, &ans.UserAnswer, &ans.Score, &ans.Feedback); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		a.Answers = append(a.Answers, ans)
	}

	return &a, rows.Err()
}
