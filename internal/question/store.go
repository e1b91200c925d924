package question

import "context"

// Store is the persistence boundary consumed by Service and Selector.
// Listing methods return questions in ascending id order.
type Store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int) (Category, error)

	ListQuestions(ctx context.Context) ([]Question, error)
	GetQuestion(ctx context.Context, id int) (Question, error)
	QuestionsByCategory(ctx context.Context, categoryID int) ([]Question, error)
	SearchQuestions(ctx context.Context, term string) ([]Question, error)
	InsertQuestion(ctx context.Context, q Question) (int, error)
	// DeleteQuestion reports false when no row was removed.
	DeleteQuestion(ctx context.Context, id int) (bool, error)
}

// Events receives notifications about bank mutations. Implementations must not block for long.
type Events interface {
	QuestionCreated(ctx context.Context, q Question) error
	QuestionDeleted(ctx context.Context, id int) error
}
