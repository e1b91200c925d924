package question

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Service implements listing, search, creation and deletion over a Store.
type Service struct {
	store    Store
	events   Events
	pageSize int
	logger   zerolog.Logger
}

type ServiceOptions struct {
	PageSize int
	// Events is optional; nil disables mutation notifications.
	Events Events
}

func NewService(store Store, opts ServiceOptions, logger zerolog.Logger) *Service {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = QuestionsPerPage
	}
	return &Service{
		store:    store,
		events:   opts.Events,
		pageSize: pageSize,
		logger:   logger.With().Str("component", "question_service").Logger(),
	}
}

// Categories returns every category in ascending id order.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w: %w", ErrStoreUnavailable, err)
	}
	return categories, nil
}

// ListQuestions returns the requested 1-based page of questions ordered by id.
// An empty page is reported as ErrNotFound.
func (s *Service) ListQuestions(ctx context.Context, page int) (QuestionPage, error) {
	if page < 1 {
		return QuestionPage{}, fmt.Errorf("page %d: %w", page, ErrBadRequest)
	}

	all, err := s.store.ListQuestions(ctx)
	if err != nil {
		return QuestionPage{}, fmt.Errorf("list questions: %w: %w", ErrStoreUnavailable, err)
	}
	sortByID(all)

	current := paginate(all, page, s.pageSize)
	if len(current) == 0 {
		return QuestionPage{}, fmt.Errorf("page %d: %w", page, ErrNotFound)
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return QuestionPage{}, err
	}

	return QuestionPage{
		Questions:      current,
		TotalQuestions: len(all),
		Categories:     categories,
	}, nil
}

func paginate(all []Question, page, size int) []Question {
	if page-1 > len(all)/size {
		return nil
	}
	start := (page - 1) * size
	if start >= len(all) {
		return nil
	}
	end := min(start+size, len(all))
	out := make([]Question, end-start)
	copy(out, all[start:end])
	return out
}

// Search returns every question whose text contains the term, ignoring case.
// A nil request, an omitted term and a blank term are all rejected with ErrBadRequest.
func (s *Service) Search(ctx context.Context, req *SearchRequest) (SearchResult, error) {
	if req == nil {
		return SearchResult{}, fmt.Errorf("search: missing request body: %w", ErrBadRequest)
	}
	if req.Term == nil || strings.TrimSpace(*req.Term) == "" {
		return SearchResult{}, fmt.Errorf("search: missing search term: %w", ErrBadRequest)
	}

	matches, err := s.store.SearchQuestions(ctx, *req.Term)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search questions: %w: %w", ErrStoreUnavailable, err)
	}
	sortByID(matches)

	return SearchResult{Questions: matches, TotalQuestions: len(matches)}, nil
}

// QuestionsByCategory lists all questions of a category. Zero matches is a valid empty result.
func (s *Service) QuestionsByCategory(ctx context.Context, categoryID int) (CategoryQuestions, error) {
	if categoryID < 1 {
		return CategoryQuestions{}, fmt.Errorf("category %d: %w", categoryID, ErrBadRequest)
	}

	qs, err := s.store.QuestionsByCategory(ctx, categoryID)
	if err != nil {
		return CategoryQuestions{}, fmt.Errorf("questions in category %d: %w: %w", categoryID, ErrNotFound, err)
	}
	if qs == nil {
		qs = []Question{}
	}
	sortByID(qs)

	return CategoryQuestions{
		Questions:       qs,
		TotalQuestions:  len(qs),
		CurrentCategory: categoryID,
	}, nil
}

// Create validates and stores a new question, returning its id.
func (s *Service) Create(ctx context.Context, in NewQuestion) (int, error) {
	q, err := s.validate(ctx, in)
	if err != nil {
		return 0, err
	}

	id, err := s.store.InsertQuestion(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w: %w", ErrUnprocessable, err)
	}
	q.ID = id

	if s.events != nil {
		if err := s.events.QuestionCreated(ctx, q); err != nil {
			s.logger.Warn().Err(err).Int("question_id", id).Msg("publish question created failed")
		}
	}
	return id, nil
}

func (s *Service) validate(ctx context.Context, in NewQuestion) (Question, error) {
	text := strings.TrimSpace(in.Question)
	answer := strings.TrimSpace(in.Answer)

	var missing []string
	if text == "" {
		missing = append(missing, "question")
	}
	if answer == "" {
		missing = append(missing, "answer")
	}
	if in.Category == nil {
		missing = append(missing, "category")
	}
	if in.Difficulty == nil {
		missing = append(missing, "difficulty")
	}
	if len(missing) > 0 {
		return Question{}, fmt.Errorf("missing fields %s: %w", strings.Join(missing, ", "), ErrUnprocessable)
	}

	if _, err := s.store.GetCategory(ctx, *in.Category); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return Question{}, fmt.Errorf("unknown category %d: %w", *in.Category, ErrUnprocessable)
		}
		return Question{}, fmt.Errorf("lookup category %d: %w: %w", *in.Category, ErrUnprocessable, err)
	}

	return Question{
		Question:   text,
		Answer:     answer,
		Category:   *in.Category,
		Difficulty: *in.Difficulty,
	}, nil
}

// Delete permanently removes a question. A missing id matches both ErrUnprocessable and ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int) (int, error) {
	if _, err := s.store.GetQuestion(ctx, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return 0, fmt.Errorf("delete question %d: %w: %w", id, ErrUnprocessable, ErrNotFound)
		}
		return 0, fmt.Errorf("lookup question %d: %w: %w", id, ErrUnprocessable, err)
	}

	deleted, err := s.store.DeleteQuestion(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete question %d: %w: %w", id, ErrUnprocessable, err)
	}
	if !deleted {
		// lost a concurrent delete
		return 0, fmt.Errorf("delete question %d: %w: %w", id, ErrUnprocessable, ErrNotFound)
	}

	if s.events != nil {
		if err := s.events.QuestionDeleted(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int("question_id", id).Msg("publish question deleted failed")
		}
	}
	return id, nil
}
