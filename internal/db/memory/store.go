// Package memory provides a process-local question bank used for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

// Store keeps categories and questions in maps guarded by a RWMutex.
type Store struct {
	mu         sync.RWMutex
	categories map[int]question.Category
	questions  map[int]question.Question
	nextID     int
}

var _ question.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		categories: make(map[int]question.Category),
		questions:  make(map[int]question.Question),
		nextID:     1,
	}
}

// UpsertCategory inserts or renames a category.
func (s *Store) UpsertCategory(_ context.Context, c question.Category) error {
	if c.ID < 1 {
		return fmt.Errorf("category id must be positive, got %d", c.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[c.ID] = c
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]question.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]question.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id int) (question.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return question.Category{}, question.ErrRecordNotFound
	}
	return c, nil
}

func (s *Store) ListQuestions(_ context.Context) ([]question.Question, error) {
	return s.filter(func(question.Question) bool { return true }), nil
}

func (s *Store) GetQuestion(_ context.Context, id int) (question.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[id]
	if !ok {
		return question.Question{}, question.ErrRecordNotFound
	}
	return q, nil
}

func (s *Store) QuestionsByCategory(_ context.Context, categoryID int) ([]question.Question, error) {
	return s.filter(func(q question.Question) bool { return q.Category == categoryID }), nil
}

func (s *Store) SearchQuestions(_ context.Context, term string) ([]question.Question, error) {
	needle := strings.ToLower(term)
	return s.filter(func(q question.Question) bool {
		return strings.Contains(strings.ToLower(q.Question), needle)
	}), nil
}

// InsertQuestion assigns the next id; the id on q is ignored.
func (s *Store) InsertQuestion(_ context.Context, q question.Question) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q.ID = s.nextID
	s.nextID++
	s.questions[q.ID] = q
	return q.ID, nil
}

func (s *Store) DeleteQuestion(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.questions[id]; !ok {
		return false, nil
	}
	delete(s.questions, id)
	return true, nil
}

func (s *Store) filter(keep func(question.Question) bool) []question.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]question.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if keep(q) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
