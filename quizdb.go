package quizbuilder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a quiz does not exist
var ErrNotFound = errors.New("not found")

// DB stores generated quizzes and source passages in SQLite
type DB struct {
	db *sql.DB
}

// QuizSummary is a row of the quiz listing
type QuizSummary struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Requested int       `json:"requested"`
	Accepted  int       `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenDB opens the database and makes sure the schema exists
func OpenDB(ctx context.Context, dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{db: db}
	if err := d.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (d *DB) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			requested INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			quiz_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			text TEXT NOT NULL,
			choices TEXT NOT NULL,
			answer TEXT NOT NULL,
			explanation TEXT,
			PRIMARY KEY (quiz_id, question_num),
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
		`CREATE TABLE IF NOT EXISTS passages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			text TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS passages_source ON passages(source)`,
	}

	for _, query := range queries {
		if _, err := d.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// SaveQuiz stores a quiz and its questions in one transaction
func (d *DB) SaveQuiz(ctx context.Context, quiz *Quiz) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO quizzes (id, topic, requested, created_at) VALUES (?, ?, ?, ?)",
		quiz.ID, quiz.Topic, quiz.Requested, quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	for i, q := range quiz.Questions {
		choicesJSON, err := ChoicesToJSON(q.Choices)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO questions (quiz_id, question_num, text, choices, answer, explanation) VALUES (?, ?, ?, ?, ?, ?)",
			quiz.ID, i, q.Question, choicesJSON, q.Answer, q.Explanation,
		)
		if err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit quiz: %w", err)
	}
	return nil
}

// GetQuiz loads a quiz with its questions in generation order
func (d *DB) GetQuiz(ctx context.Context, id string) (*Quiz, error) {
	quiz := &Quiz{}
	err := d.db.QueryRowContext(ctx,
		"SELECT id, topic, requested, created_at FROM quizzes WHERE id = ?",
		id,
	).Scan(&quiz.ID, &quiz.Topic, &quiz.Requested, &quiz.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("quiz %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT text, choices, answer, explanation FROM questions WHERE quiz_id = ? ORDER BY question_num",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	quiz.Questions = []QuizQuestion{}
	for rows.Next() {
		var q QuizQuestion
		var choicesJSON string
		var explanation sql.NullString
		if err := rows.Scan(&q.Question, &choicesJSON, &q.Answer, &explanation); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		q.Explanation = explanation.String
		if q.Choices, err = JSONToChoices(choicesJSON); err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return quiz, nil
}

// ListQuizzes returns quizzes newest first, optionally limited by count
func (d *DB) ListQuizzes(ctx context.Context, limit int) ([]QuizSummary, error) {
	query := `SELECT q.id, q.topic, q.requested, q.created_at, COUNT(qs.question_num)
		FROM quizzes q LEFT JOIN questions qs ON qs.quiz_id = q.id
		GROUP BY q.id ORDER BY q.created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []QuizSummary
	for rows.Next() {
		var s QuizSummary
		if err := rows.Scan(&s.ID, &s.Topic, &s.Requested, &s.CreatedAt, &s.Accepted); err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}

	return quizzes, nil
}

// AddPassages stores passages under a source name so they can be retrieved later
func (d *DB) AddPassages(ctx context.Context, source string, passages []Passage) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range passages {
		if _, err := tx.ExecContext(ctx, "INSERT INTO passages (source, text) VALUES (?, ?)", source, p.Text); err != nil {
			return fmt.Errorf("failed to store passage: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit passages: %w", err)
	}
	return nil
}

// Passages returns every passage stored under source, in insertion order
func (d *DB) Passages(ctx context.Context, source string) ([]Passage, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT text FROM passages WHERE source = ? ORDER BY id", source)
	if err != nil {
		return nil, fmt.Errorf("failed to get passages: %w", err)
	}
	defer rows.Close()

	var passages []Passage
	for rows.Next() {
		p := Passage{Source: source}
		if err := rows.Scan(&p.Text); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		passages = append(passages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating passages: %w", err)
	}
	return passages, nil
}

// Retriever serves the passages stored under source, ranked like PassageRetriever
func (d *DB) Retriever(source string, limit int) Retriever {
	return RetrieverFunc(func(ctx context.Context, query string) ([]Passage, error) {
		passages, err := d.Passages(ctx, source)
		if err != nil {
			return nil, err
		}
		return NewPassageRetriever(passages, limit).Retrieve(ctx, query)
	})
}

// ChoicesToJSON encodes choices for the questions table
func ChoicesToJSON(choices []Choice) (string, error) {
	data, err := json.Marshal(choices)
	if err != nil {
		return "", fmt.Errorf("failed to marshal choices: %w", err)
	}
	return string(data), nil
}

// JSONToChoices decodes choices read from the questions table
func JSONToChoices(choicesJSON string) ([]Choice, error) {
	var choices []Choice
	if err := json.Unmarshal([]byte(choicesJSON), &choices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal choices: %w", err)
	}
	return choices, nil
}
