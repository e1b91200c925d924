package question_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/trivia-api/internal/db/memory"
	"github.com/gokatarajesh/trivia-api/internal/metrics"
	"github.com/gokatarajesh/trivia-api/internal/question"
)

func newTestRouter(t *testing.T, store *memory.Store) http.Handler {
	t.Helper()
	svc := question.NewService(store, question.ServiceOptions{}, zerolog.Nop())
	sel := question.NewSelector(store, &fixedRand{})
	h := question.NewHTTPHandler(svc, sel, metrics.New(prometheus.NewRegistry()), zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /categories", h.HandleCategories)
	mux.HandleFunc("GET /categories/{id}/questions", h.HandleCategoryQuestions)
	mux.HandleFunc("GET /questions", h.HandleListQuestions)
	mux.HandleFunc("POST /questions", h.HandleCreateQuestion)
	mux.HandleFunc("DELETE /questions/{id}", h.HandleDeleteQuestion)
	mux.HandleFunc("POST /questions/search", h.HandleSearch)
	mux.HandleFunc("POST /quizzes", h.HandleQuiz)
	return mux
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHTTPCategories(t *testing.T) {
	router := newTestRouter(t, seededStore(t, 0))

	rec, body := do(t, router, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	cats := body["categories"].(map[string]interface{})
	assert.Equal(t, "Science", cats["1"])
	assert.Len(t, cats, 6)
}

func TestHTTPListQuestions(t *testing.T) {
	router := newTestRouter(t, seededStore(t, 15))

	rec, body := do(t, router, http.MethodGet, "/questions?page=2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["questions"], 5)
	assert.Equal(t, 15.0, body["total_questions"])
	assert.Nil(t, body["current_category"])

	rec, body = do(t, router, http.MethodGet, "/questions?page=abc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["questions"], 10)

	rec, body = do(t, router, http.MethodGet, "/questions?page=1000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "resource not found", body["message"])

	for _, page := range []string{"0", "-3"} {
		rec, body = do(t, router, http.MethodGet, "/questions?page="+page, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, page)
		assert.Equal(t, false, body["success"], page)
	}
}

func TestHTTPCreateAndDelete(t *testing.T) {
	router := newTestRouter(t, seededStore(t, 2))

	rec, body := do(t, router, http.MethodPost, "/questions",
		`{"question":"Heaviest organ?","answer":"The Liver","category":"1","difficulty":4}`)
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, 3.0, body["created"])

	rec, body = do(t, router, http.MethodDelete, "/questions/3", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, body["deleted"])

	rec, body = do(t, router, http.MethodDelete, "/questions/3", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "unprocessable", body["message"])
}

func TestHTTPCreateValidation(t *testing.T) {
	router := newTestRouter(t, seededStore(t, 0))

	rec, _ := do(t, router, http.MethodPost, "/questions", `{"question":"q","answer":"a","category":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/questions", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/questions", `{"question":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/questions", `{"question":"q","answer":"a","category":"science","difficulty":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPSearch(t *testing.T) {
	router := newTestRouter(t, seededStore(t, 12))

	rec, body := do(t, router, http.MethodPost, "/questions/search", `{"searchTerm":"number 1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	// "number 1", "number 10", "number 11", "number 12"
	assert.Equal(t, 4.0, body["total_questions"])

	for _, payload := range []string{"", "null", `{}`, `{"searchTerm":""}`} {
		rec, _ = do(t, router, http.MethodPost, "/questions/search", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload %q", payload)
	}
}

func TestHTTPCategoryQuestions(t *testing.T) {
	router := newTestRouter(t, seededStore(t, 12))

	rec, body := do(t, router, http.MethodGet, "/categories/2/questions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, body["current_category"])
	assert.Equal(t, 2.0, body["total_questions"])

	rec, body = do(t, router, http.MethodGet, "/categories/77/questions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["questions"])

	rec, _ = do(t, router, http.MethodGet, "/categories/abc/questions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPQuiz(t *testing.T) {
	router := newTestRouter(t, storeWithCategory(t, 5, 3))

	rec, body := do(t, router, http.MethodPost, "/quizzes",
		`{"previous_questions":[1,2],"quiz_category":{"id":"5","type":"Entertainment"}}`)
	require.Equal(t, http.StatusOK, rec.Code, body)
	q := body["question"].(map[string]interface{})
	assert.Equal(t, 3.0, q["id"])

	rec, body = do(t, router, http.MethodPost, "/quizzes",
		`{"previous_questions":[1,2,3],"quiz_category":{"id":0,"type":"click"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["question"])
	assert.Equal(t, true, body["exhausted"])

	rec, _ = do(t, router, http.MethodPost, "/quizzes", `{"previous_questions":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/quizzes", `{"quiz_category":{"id":-3}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
