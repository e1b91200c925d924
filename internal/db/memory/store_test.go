package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/trivia-api/internal/question"
)

func TestStoreAssignsUniqueIDsConcurrently(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	const n = 50
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.InsertQuestion(ctx, question.Question{Question: "q", Answer: "a", Category: 1, Difficulty: 1})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestStoreConcurrentDeleteHasOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id, err := store.InsertQuestion(ctx, question.Question{Question: "q", Answer: "a", Category: 1, Difficulty: 1})
	require.NoError(t, err)

	results := make(chan bool, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.DeleteQuestion(ctx, id)
			assert.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	id, err := store.InsertQuestion(ctx, question.Question{Question: "original", Answer: "a", Category: 1, Difficulty: 1})
	require.NoError(t, err)

	list, err := store.ListQuestions(ctx)
	require.NoError(t, err)
	list[0].Question = "mutated"

	q, err := store.GetQuestion(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "original", q.Question)
}

func TestStoreCategoryLookup(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	assert.Error(t, store.UpsertCategory(ctx, question.Category{ID: 0, Type: "bad"}))
	require.NoError(t, store.UpsertCategory(ctx, question.Category{ID: 3, Type: "Geography"}))
	require.NoError(t, store.UpsertCategory(ctx, question.Category{ID: 1, Type: "Science"}))

	cats, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []question.Category{{ID: 1, Type: "Science"}, {ID: 3, Type: "Geography"}}, cats)

	_, err = store.GetCategory(ctx, 2)
	assert.ErrorIs(t, err, question.ErrRecordNotFound)
}
