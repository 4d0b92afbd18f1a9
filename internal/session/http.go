package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/brainbolt/quiz-engine/internal/auth"
	"github.com/brainbolt/quiz-engine/internal/logging"
	httperrors "github.com/brainbolt/quiz-engine/pkg/http/errors"
)

// SubmitRequest is the POST /v1/quiz/answer payload.
type SubmitRequest struct {
	SessionID      string `json:"session_id"`
	QuestionID     string `json:"question_id"`
	Answer         string `json:"answer"`
	StateVersion   int64  `json:"state_version"`
	IdempotencyKey string `json:"idempotency_key"`
}

// HTTPHandlers exposes the session engine over REST.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for quiz endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{service: service, logger: logger}
}

// NextQuestion handles GET /v1/quiz/next
func (h *HTTPHandlers) NextQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	view, err := h.service.NextQuestion(r.Context(), userID, r.URL.Query().Get("session_id"))
	if err != nil {
		if errors.Is(err, ErrNoQuestionAvailable) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeNoQuestionAvailable, "No question available at your difficulty")
			return
		}
		logger := h.requestLogger(r)
		logger.Error().Err(err).Msg("next question failed")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Try again shortly")
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// SubmitAnswer handles POST /v1/quiz/answer
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuestionID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_id is required", "question_id")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), userID, req.SessionID, req.QuestionID, req.Answer, req.StateVersion, req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeQuestionNotFound, "Question not found")
			return
		}
		logger := h.requestLogger(r)
		logger.Error().Err(err).Msg("submit answer failed")
		// Safe for the client to retry: the idempotency key dedups.
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeSubmitFailed, "Submission failed, retry with the same idempotency key")
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// Metrics handles GET /v1/quiz/metrics
func (h *HTTPHandlers) Metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	view, err := h.service.Metrics(r.Context(), userID)
	if err != nil {
		logger := h.requestLogger(r)
		logger.Error().Err(err).Msg("metrics query failed")
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeMetricsFailed, "Metrics unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, view)
}

// requestLogger prefers the user-scoped logger injected by the auth
// middleware, falling back to the handler logger.
func (h *HTTPHandlers) requestLogger(r *http.Request) zerolog.Logger {
	if l := logging.FromContext(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return h.logger
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
