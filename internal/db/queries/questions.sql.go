package queries

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const listCategories = `
SELECT id, type FROM categories
ORDER BY id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Type); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `
SELECT id, type FROM categories
WHERE id = $1
`

func (q *Queries) GetCategory(ctx context.Context, id int32) (Category, error) {
	row := q.db.QueryRow(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Type)
	return i, err
}

const upsertCategory = `
INSERT INTO categories (id, type)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type
`

type UpsertCategoryParams struct {
	ID   int32
	Type string
}

func (q *Queries) UpsertCategory(ctx context.Context, arg UpsertCategoryParams) error {
	_, err := q.db.Exec(ctx, upsertCategory, arg.ID, arg.Type)
	return err
}

const listQuestions = `
SELECT id, question, answer, category, difficulty FROM questions
ORDER BY id
`

func (q *Queries) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestions)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

const getQuestion = `
SELECT id, question, answer, category, difficulty FROM questions
WHERE id = $1
`

func (q *Queries) GetQuestion(ctx context.Context, id int32) (Question, error) {
	row := q.db.QueryRow(ctx, getQuestion, id)
	var i Question
	err := row.Scan(&i.ID, &i.Question, &i.Answer, &i.Category, &i.Difficulty)
	return i, err
}

const listQuestionsByCategory = `
SELECT id, question, answer, category, difficulty FROM questions
WHERE category = $1
ORDER BY id
`

func (q *Queries) ListQuestionsByCategory(ctx context.Context, category int32) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestionsByCategory, category)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

// strpos avoids LIKE wildcard escaping for terms containing % or _.
const searchQuestions = `
SELECT id, question, answer, category, difficulty FROM questions
WHERE strpos(lower(question), lower($1::text)) > 0
ORDER BY id
`

func (q *Queries) SearchQuestions(ctx context.Context, term string) ([]Question, error) {
	rows, err := q.db.Query(ctx, searchQuestions, term)
	if err != nil {
		return nil, err
	}
	return scanQuestions(rows)
}

const insertQuestion = `
INSERT INTO questions (question, answer, category, difficulty)
VALUES ($1, $2, $3, $4)
RETURNING id
`

type InsertQuestionParams struct {
	Question   string
	Answer     string
	Category   int32
	Difficulty int32
}

func (q *Queries) InsertQuestion(ctx context.Context, arg InsertQuestionParams) (int32, error) {
	row := q.db.QueryRow(ctx, insertQuestion, arg.Question, arg.Answer, arg.Category, arg.Difficulty)
	var id int32
	err := row.Scan(&id)
	return id, err
}

const deleteQuestion = `
DELETE FROM questions
WHERE id = $1
`

func (q *Queries) DeleteQuestion(ctx context.Context, id int32) (int64, error) {
	result, err := q.db.Exec(ctx, deleteQuestion, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanQuestions(rows pgx.Rows) ([]Question, error) {
	defer rows.Close()
	var items []Question
	for rows.Next() {
		var i Question
		if err := rows.Scan(&i.ID, &i.Question, &i.Answer, &i.Category, &i.Difficulty); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
