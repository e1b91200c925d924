package question

import "sort"

// QuestionsPerPage is the default page size for paginated listings.
const QuestionsPerPage = 10

// Category is a seeded, read-only grouping of questions.
type Category struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

// Question is the public view of a stored question.
type Question struct {
	ID         int    `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Category   int    `json:"category"`
	Difficulty int    `json:"difficulty"`
}

// NewQuestion carries creation input. Nil pointers mark absent fields.
type NewQuestion struct {
	Question   string
	Answer     string
	Category   *int
	Difficulty *int
}

// QuestionPage is one page of the ordered question list.
type QuestionPage struct {
	Questions      []Question
	TotalQuestions int
	Categories     []Category
}

// SearchRequest is the body of a search call; a nil Term means the term was omitted.
type SearchRequest struct {
	Term *string
}

// SearchResult holds every question matching a search term.
type SearchResult struct {
	Questions      []Question
	TotalQuestions int
}

// CategoryQuestions holds all questions of one category.
type CategoryQuestions struct {
	Questions       []Question
	TotalQuestions  int
	CurrentCategory int
}

// QuizRequest asks for the next unseen question. CategoryID 0 means all categories.
type QuizRequest struct {
	PreviousQuestions []int
	CategoryID        int
}

// CategoryMap renders categories as an id -> type label map.
func CategoryMap(categories []Category) map[int]string {
	out := make(map[int]string, len(categories))
	for _, c := range categories {
		out[c.ID] = c.Type
	}
	return out
}

func sortByID(qs []Question) {
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
}
