package question

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-api/internal/logging"
	"github.com/gokatarajesh/trivia-api/internal/metrics"
	httperrors "github.com/gokatarajesh/trivia-api/pkg/http/errors"
)

// HTTPHandler exposes the question bank and quiz draw over REST.
type HTTPHandler struct {
	svc      *Service
	selector *Selector
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewHTTPHandler constructs the question bank HTTP handler. m may be nil.
func NewHTTPHandler(svc *Service, selector *Selector, m *metrics.Metrics, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:      svc,
		selector: selector,
		metrics:  m,
		logger:   logger.With().Str("component", "question_http").Logger(),
	}
}

// flexInt decodes a JSON number or a numeric string; web forms post ids as strings.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("expected an integer, got " + string(b))
	}
	*f = flexInt(n)
	return nil
}

func (f *flexInt) intPtr() *int {
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

type createQuestionRequest struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Category   *flexInt `json:"category"`
	Difficulty *flexInt `json:"difficulty"`
}

type searchRequest struct {
	SearchTerm *string `json:"searchTerm"`
}

type quizRequest struct {
	PreviousQuestions []flexInt `json:"previous_questions"`
	QuizCategory      *struct {
		ID   flexInt `json:"id"`
		Type string  `json:"type"`
	} `json:"quiz_category"`
}

// HandleCategories responds to GET /categories.
func (h *HTTPHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": CategoryMap(categories),
	})
}

// HandleListQuestions responds to GET /questions?page=N. A missing or
// non-numeric page means 1; a page below 1 is an empty page, so 404.
func (h *HTTPHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("page")))
	if err != nil {
		page = 1
	}
	if page < 1 {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "resource not found")
		return
	}

	result, err := h.svc.ListQuestions(r.Context(), page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"questions":        result.Questions,
		"total_questions":  result.TotalQuestions,
		"categories":       CategoryMap(result.Categories),
		"current_category": nil,
	})
}

// HandleCreateQuestion responds to POST /questions.
func (h *HTTPHandler) HandleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req *createQuestionRequest
	if err := decodeBody(r, &req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req == nil {
		httperrors.RespondUnprocessable(w, httperrors.ErrCodeMissingField, "question, answer, category and difficulty are required")
		return
	}

	id, err := h.svc.Create(r.Context(), NewQuestion{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   req.Category.intPtr(),
		Difficulty: req.Difficulty.intPtr(),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"created": id,
	})
}

// HandleDeleteQuestion responds to DELETE /questions/{id}.
func (h *HTTPHandler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "resource not found")
		return
	}

	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

// HandleSearch responds to POST /questions/search.
func (h *HTTPHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var body *searchRequest
	if err := decodeBody(r, &body); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	var req *SearchRequest
	if body != nil {
		req = &SearchRequest{Term: body.SearchTerm}
	}

	result, err := h.svc.Search(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"questions":        result.Questions,
		"total_questions":  result.TotalQuestions,
		"current_category": nil,
	})
}

// HandleCategoryQuestions responds to GET /categories/{id}/questions.
func (h *HTTPHandler) HandleCategoryQuestions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "resource not found")
		return
	}

	result, err := h.svc.QuestionsByCategory(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"questions":        result.Questions,
		"total_questions":  result.TotalQuestions,
		"current_category": result.CurrentCategory,
	})
}

// HandleQuiz responds to POST /quizzes with the next unseen question.
// An exhausted pool answers 200 with a null question and exhausted=true.
func (h *HTTPHandler) HandleQuiz(w http.ResponseWriter, r *http.Request) {
	var body *quizRequest
	if err := decodeBody(r, &body); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if body == nil || body.QuizCategory == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "quiz_category is required", "quiz_category")
		return
	}

	previous := make([]int, 0, len(body.PreviousQuestions))
	for _, id := range body.PreviousQuestions {
		previous = append(previous, int(id))
	}

	q, err := h.selector.Next(r.Context(), QuizRequest{
		PreviousQuestions: previous,
		CategoryID:        int(body.QuizCategory.ID),
	})
	switch {
	case errors.Is(err, ErrNoMoreQuestions):
		h.metrics.QuizDraw(metrics.OutcomeExhausted)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":   true,
			"question":  nil,
			"exhausted": true,
		})
	case err != nil:
		h.metrics.QuizDraw(metrics.OutcomeError)
		h.writeServiceError(w, r, err)
	default:
		h.metrics.QuizDraw(metrics.OutcomeServed)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":  true,
			"question": q,
		})
	}
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "bad request")
	case errors.Is(err, ErrUnprocessable):
		httperrors.RespondUnprocessable(w, httperrors.ErrCodeUnprocessable, "unprocessable")
	case errors.Is(err, ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "resource not found")
	case errors.Is(err, ErrStoreUnavailable):
		reqLogger := logging.FromContext(r.Context())
		reqLogger.Error().Err(err).Msg("store unavailable")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "service unavailable")
	default:
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected service error")
		httperrors.RespondInternalError(w, "internal server error")
	}
}

// decodeBody decodes JSON into dst, leaving it untouched for an empty body.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
