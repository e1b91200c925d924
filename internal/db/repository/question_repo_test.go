package repository

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gokatarajesh/trivia-api/internal/db/queries"
	"github.com/gokatarajesh/trivia-api/internal/question"
)

type mockQuestionStore struct {
	mock.Mock
}

func (m *mockQuestionStore) ListCategories(ctx context.Context) ([]queries.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]queries.Category), args.Error(1)
}

func (m *mockQuestionStore) GetCategory(ctx context.Context, id int32) (queries.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.Category), args.Error(1)
}

func (m *mockQuestionStore) UpsertCategory(ctx context.Context, arg queries.UpsertCategoryParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockQuestionStore) ListQuestions(ctx context.Context) ([]queries.Question, error) {
	args := m.Called(ctx)
	return args.Get(0).([]queries.Question), args.Error(1)
}

func (m *mockQuestionStore) GetQuestion(ctx context.Context, id int32) (queries.Question, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.Question), args.Error(1)
}

func (m *mockQuestionStore) ListQuestionsByCategory(ctx context.Context, category int32) ([]queries.Question, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]queries.Question), args.Error(1)
}

func (m *mockQuestionStore) SearchQuestions(ctx context.Context, term string) ([]queries.Question, error) {
	args := m.Called(ctx, term)
	return args.Get(0).([]queries.Question), args.Error(1)
}

func (m *mockQuestionStore) InsertQuestion(ctx context.Context, arg queries.InsertQuestionParams) (int32, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(int32), args.Error(1)
}

func (m *mockQuestionStore) DeleteQuestion(ctx context.Context, id int32) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func TestQuestionRepository_ListCategories(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	store.On("ListCategories", mock.Anything).Return([]queries.Category{
		{ID: 1, Type: "Science"},
		{ID: 2, Type: "Art"},
	}, nil)

	got, err := repo.ListCategories(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []question.Category{{ID: 1, Type: "Science"}, {ID: 2, Type: "Art"}}, got)
	store.AssertExpectations(t)
}

func TestQuestionRepository_GetCategoryNoRows(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	store.On("GetCategory", mock.Anything, int32(42)).Return(queries.Category{}, pgx.ErrNoRows)

	_, err := repo.GetCategory(context.Background(), 42)
	assert.ErrorIs(t, err, question.ErrRecordNotFound)
	store.AssertExpectations(t)
}

func TestQuestionRepository_GetQuestion(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	store.On("GetQuestion", mock.Anything, int32(5)).Return(queries.Question{
		ID: 5, Question: "Q", Answer: "A", Category: 3, Difficulty: 2,
	}, nil)
	store.On("GetQuestion", mock.Anything, int32(6)).Return(queries.Question{}, pgx.ErrNoRows)

	got, err := repo.GetQuestion(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, question.Question{ID: 5, Question: "Q", Answer: "A", Category: 3, Difficulty: 2}, got)

	_, err = repo.GetQuestion(context.Background(), 6)
	assert.ErrorIs(t, err, question.ErrRecordNotFound)
	store.AssertExpectations(t)
}

func TestQuestionRepository_StoreErrorPassesThrough(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	boom := errors.New("connection refused")
	store.On("GetQuestion", mock.Anything, int32(1)).Return(queries.Question{}, boom)
	store.On("SearchQuestions", mock.Anything, "title").Return([]queries.Question(nil), boom)

	_, err := repo.GetQuestion(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, question.ErrRecordNotFound)

	_, err = repo.SearchQuestions(context.Background(), "title")
	assert.ErrorIs(t, err, boom)
	store.AssertExpectations(t)
}

func TestQuestionRepository_InsertQuestion(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	params := queries.InsertQuestionParams{Question: "Q", Answer: "A", Category: 1, Difficulty: 4}
	store.On("InsertQuestion", mock.Anything, params).Return(int32(24), nil)

	id, err := repo.InsertQuestion(context.Background(), question.Question{Question: "Q", Answer: "A", Category: 1, Difficulty: 4})
	assert.NoError(t, err)
	assert.Equal(t, 24, id)
	store.AssertExpectations(t)
}

func TestQuestionRepository_DeleteQuestion(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	store.On("DeleteQuestion", mock.Anything, int32(7)).Return(int64(1), nil)
	store.On("DeleteQuestion", mock.Anything, int32(8)).Return(int64(0), nil)

	deleted, err := repo.DeleteQuestion(context.Background(), 7)
	assert.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteQuestion(context.Background(), 8)
	assert.NoError(t, err)
	assert.False(t, deleted)
	store.AssertExpectations(t)
}

func TestQuestionRepository_QuestionsByCategory(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	store.On("ListQuestionsByCategory", mock.Anything, int32(2)).Return([]queries.Question(nil), nil)

	got, err := repo.QuestionsByCategory(context.Background(), 2)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	store.AssertExpectations(t)
}

func TestQuestionRepository_UpsertCategory(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)

	store.On("UpsertCategory", mock.Anything, queries.UpsertCategoryParams{ID: 6, Type: "Sports"}).Return(nil)

	err := repo.UpsertCategory(context.Background(), question.Category{ID: 6, Type: "Sports"})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestQuestionRepository_OutOfRangeIDsNeverReachTheStore(t *testing.T) {
	store := new(mockQuestionStore)
	repo := NewQuestionRepository(store)
	ctx := context.Background()
	wide := math.MaxUint32 + 2 // truncates to 1 as int32

	_, err := repo.GetQuestion(ctx, wide)
	assert.ErrorIs(t, err, question.ErrRecordNotFound)

	_, err = repo.GetCategory(ctx, wide)
	assert.ErrorIs(t, err, question.ErrRecordNotFound)

	deleted, err := repo.DeleteQuestion(ctx, wide)
	assert.NoError(t, err)
	assert.False(t, deleted)

	qs, err := repo.QuestionsByCategory(ctx, wide)
	assert.NoError(t, err)
	assert.Empty(t, qs)

	_, err = repo.InsertQuestion(ctx, question.Question{Question: "q", Answer: "a", Category: 1, Difficulty: wide})
	assert.ErrorIs(t, err, question.ErrUnprocessable)

	err = repo.UpsertCategory(ctx, question.Category{ID: wide, Type: "Overflow"})
	assert.ErrorIs(t, err, question.ErrUnprocessable)

	store.AssertNotCalled(t, "GetQuestion", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "GetCategory", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteQuestion", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ListQuestionsByCategory", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "InsertQuestion", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpsertCategory", mock.Anything, mock.Anything)
}

func TestServiceDeleteWithWideIDLeavesOtherRowsAlone(t *testing.T) {
	store := new(mockQuestionStore)
	svc := question.NewService(NewQuestionRepository(store), question.ServiceOptions{}, zerolog.Nop())

	_, err := svc.Delete(context.Background(), math.MaxUint32+2)
	assert.ErrorIs(t, err, question.ErrUnprocessable)
	assert.ErrorIs(t, err, question.ErrNotFound)
	store.AssertNotCalled(t, "DeleteQuestion", mock.Anything, mock.Anything)
}
