package question

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Rand picks an index in [0, n). It must be safe for concurrent use.
type Rand interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a concurrency-safe Rand seeded with seed.
func NewRand(seed int64) Rand {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Selector draws quiz questions the player has not seen yet.
type Selector struct {
	store Store
	rand  Rand
}

// NewSelector builds a Selector. A nil rnd falls back to a time-seeded source.
func NewSelector(store Store, rnd Rand) *Selector {
	if rnd == nil {
		rnd = NewRand(time.Now().UnixNano())
	}
	return &Selector{store: store, rand: rnd}
}

// Next returns a uniformly random question from the pool that is not in
// req.PreviousQuestions, or ErrNoMoreQuestions once the pool is exhausted.
func (s *Selector) Next(ctx context.Context, req QuizRequest) (Question, error) {
	if req.CategoryID < 0 {
		return Question{}, fmt.Errorf("quiz category %d: %w", req.CategoryID, ErrBadRequest)
	}

	pool, err := s.pool(ctx, req.CategoryID)
	if err != nil {
		return Question{}, fmt.Errorf("quiz pool: %w: %w", ErrStoreUnavailable, err)
	}

	eligible := unseen(pool, req.PreviousQuestions)
	if len(eligible) == 0 {
		return Question{}, ErrNoMoreQuestions
	}
	return eligible[s.rand.Intn(len(eligible))], nil
}

func (s *Selector) pool(ctx context.Context, categoryID int) ([]Question, error) {
	if categoryID == 0 {
		return s.store.ListQuestions(ctx)
	}
	return s.store.QuestionsByCategory(ctx, categoryID)
}

// unseen returns pool minus previous, ordered by id so draws are reproducible for a given Rand.
func unseen(pool []Question, previous []int) []Question {
	seen := make(map[int]struct{}, len(previous))
	for _, id := range previous {
		seen[id] = struct{}{}
	}
	out := make([]Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := seen[q.ID]; !ok {
			out = append(out, q)
		}
	}
	sortByID(out)
	return out
}
