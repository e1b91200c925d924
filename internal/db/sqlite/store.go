// Package sqlite implements question.Store on a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

const driverName = "sqlite3_trivia"

// SQLite's built-in lower() folds ASCII only; unicode_lower matches the other stores.
func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
}

type Store struct {
	db *sql.DB
}

var _ question.Store = (*Store)(nil)

// Open opens (or creates) the database at path and bootstraps the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = "trivia.db"
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	// one writer keeps inserts and deletes serialized
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &Store{db: db}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY,
			type TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			category INTEGER NOT NULL,
			difficulty INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) UpsertCategory(ctx context.Context, c question.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, type) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET type = excluded.type`, c.ID, c.Type)
	return err
}

func (s *Store) ListCategories(ctx context.Context) ([]question.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, type FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]question.Category, 0)
	for rows.Next() {
		var c question.Category
		if err := rows.Scan(&c.ID, &c.Type); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id int) (question.Category, error) {
	var c question.Category
	err := s.db.QueryRowContext(ctx, `SELECT id, type FROM categories WHERE id = ?`, id).Scan(&c.ID, &c.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return question.Category{}, question.ErrRecordNotFound
	}
	return c, err
}

const questionColumns = `SELECT id, question, answer, category, difficulty FROM questions`

func (s *Store) ListQuestions(ctx context.Context) ([]question.Question, error) {
	return s.queryQuestions(ctx, questionColumns+` ORDER BY id`)
}

func (s *Store) GetQuestion(ctx context.Context, id int) (question.Question, error) {
	var q question.Question
	err := s.db.QueryRowContext(ctx, questionColumns+` WHERE id = ?`, id).
		Scan(&q.ID, &q.Question, &q.Answer, &q.Category, &q.Difficulty)
	if errors.Is(err, sql.ErrNoRows) {
		return question.Question{}, question.ErrRecordNotFound
	}
	return q, err
}

func (s *Store) QuestionsByCategory(ctx context.Context, categoryID int) ([]question.Question, error) {
	return s.queryQuestions(ctx, questionColumns+` WHERE category = ? ORDER BY id`, categoryID)
}

// SearchQuestions uses instr so % and _ in the term match literally.
func (s *Store) SearchQuestions(ctx context.Context, term string) ([]question.Question, error) {
	return s.queryQuestions(ctx, questionColumns+` WHERE instr(unicode_lower(question), unicode_lower(?)) > 0 ORDER BY id`, term)
}

func (s *Store) InsertQuestion(ctx context.Context, q question.Question) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO questions (question, answer, category, difficulty) VALUES (?, ?, ?, ?)`,
		q.Question, q.Answer, q.Category, q.Difficulty)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]question.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]question.Question, 0)
	for rows.Next() {
		var q question.Question
		if err := rows.Scan(&q.ID, &q.Question, &q.Answer, &q.Category, &q.Difficulty); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
