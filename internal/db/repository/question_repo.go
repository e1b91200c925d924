package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/trivia-api/internal/db/queries"
	"github.com/gokatarajesh/trivia-api/internal/question"
)

type questionStore interface {
	ListCategories(ctx context.Context) ([]queries.Category, error)
	GetCategory(ctx context.Context, id int32) (queries.Category, error)
	UpsertCategory(ctx context.Context, arg queries.UpsertCategoryParams) error
	ListQuestions(ctx context.Context) ([]queries.Question, error)
	GetQuestion(ctx context.Context, id int32) (queries.Question, error)
	ListQuestionsByCategory(ctx context.Context, category int32) ([]queries.Question, error)
	SearchQuestions(ctx context.Context, term string) ([]queries.Question, error)
	InsertQuestion(ctx context.Context, arg queries.InsertQuestionParams) (int32, error)
	DeleteQuestion(ctx context.Context, id int32) (int64, error)
}

// QuestionRepository exposes the Postgres query set as a question.Store.
type QuestionRepository struct {
	store questionStore
}

var _ question.Store = (*QuestionRepository)(nil)

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// ListCategories returns categories ordered by id.
func (r *QuestionRepository) ListCategories(ctx context.Context) ([]question.Category, error) {
	rows, err := r.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]question.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCategory(row))
	}
	return out, nil
}

// GetCategory maps a missing row to question.ErrRecordNotFound.
func (r *QuestionRepository) GetCategory(ctx context.Context, id int) (question.Category, error) {
	key, ok := toInt32(id)
	if !ok {
		return question.Category{}, question.ErrRecordNotFound
	}
	row, err := r.store.GetCategory(ctx, key)
	if err != nil {
		return question.Category{}, notFound(err)
	}
	return toCategory(row), nil
}

// UpsertCategory is used by the seeder; categories are not created through the API.
func (r *QuestionRepository) UpsertCategory(ctx context.Context, c question.Category) error {
	id, ok := toInt32(c.ID)
	if !ok {
		return fmt.Errorf("category id %d out of range: %w", c.ID, question.ErrUnprocessable)
	}
	return r.store.UpsertCategory(ctx, queries.UpsertCategoryParams{ID: id, Type: c.Type})
}

func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]question.Question, error) {
	rows, err := r.store.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return toQuestions(rows), nil
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, id int) (question.Question, error) {
	key, ok := toInt32(id)
	if !ok {
		return question.Question{}, question.ErrRecordNotFound
	}
	row, err := r.store.GetQuestion(ctx, key)
	if err != nil {
		return question.Question{}, notFound(err)
	}
	return toQuestion(row), nil
}

func (r *QuestionRepository) QuestionsByCategory(ctx context.Context, categoryID int) ([]question.Question, error) {
	key, ok := toInt32(categoryID)
	if !ok {
		return []question.Question{}, nil
	}
	rows, err := r.store.ListQuestionsByCategory(ctx, key)
	if err != nil {
		return nil, err
	}
	return toQuestions(rows), nil
}

func (r *QuestionRepository) SearchQuestions(ctx context.Context, term string) ([]question.Question, error) {
	rows, err := r.store.SearchQuestions(ctx, term)
	if err != nil {
		return nil, err
	}
	return toQuestions(rows), nil
}

// InsertQuestion stores q and returns the id assigned by the questions_id_seq sequence.
func (r *QuestionRepository) InsertQuestion(ctx context.Context, q question.Question) (int, error) {
	category, ok := toInt32(q.Category)
	if !ok {
		return 0, fmt.Errorf("category %d out of range: %w", q.Category, question.ErrUnprocessable)
	}
	difficulty, ok := toInt32(q.Difficulty)
	if !ok {
		return 0, fmt.Errorf("difficulty %d out of range: %w", q.Difficulty, question.ErrUnprocessable)
	}
	id, err := r.store.InsertQuestion(ctx, queries.InsertQuestionParams{
		Question:   q.Question,
		Answer:     q.Answer,
		Category:   category,
		Difficulty: difficulty,
	})
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func (r *QuestionRepository) DeleteQuestion(ctx context.Context, id int) (bool, error) {
	key, ok := toInt32(id)
	if !ok {
		return false, nil
	}
	affected, err := r.store.DeleteQuestion(ctx, key)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// toInt32 reports false for values the int4 columns cannot hold.
func toInt32(v int) (int32, bool) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return question.ErrRecordNotFound
	}
	return err
}

func toCategory(row queries.Category) question.Category {
	return question.Category{ID: int(row.ID), Type: row.Type}
}

func toQuestion(row queries.Question) question.Question {
	return question.Question{
		ID:         int(row.ID),
		Question:   row.Question,
		Answer:     row.Answer,
		Category:   int(row.Category),
		Difficulty: int(row.Difficulty),
	}
}

func toQuestions(rows []queries.Question) []question.Question {
	out := make([]question.Question, 0, len(rows))
	for _, row := range rows {
		out = append(out, toQuestion(row))
	}
	return out
}
