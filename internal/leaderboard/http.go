package leaderboard

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/brainbolt/quiz-engine/pkg/http/errors"
)

// HTTPHandler serves the read-only leaderboard surface.
type HTTPHandler struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandler creates the leaderboard HTTP handler.
func NewHTTPHandler(service *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// HandleScore handles GET /v1/leaderboards/score
func (h *HTTPHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	entries, err := h.service.TopByScore(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("score leaderboard query failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeLeaderboardFetchFailed, "Leaderboard unavailable")
		return
	}
	h.respond(w, entries)
}

// HandleStreak handles GET /v1/leaderboards/streak
func (h *HTTPHandler) HandleStreak(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	entries, err := h.service.TopByStreak(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("streak leaderboard query failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeLeaderboardFetchFailed, "Leaderboard unavailable")
		return
	}
	h.respond(w, entries)
}

func (h *HTTPHandler) respond(w http.ResponseWriter, entries []Entry) {
	w.Header().Set("Content-Type", "application/json")
	if entries == nil {
		entries = []Entry{}
	}
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"entries": entries}); err != nil {
		h.logger.Warn().Err(err).Msg("failed to encode leaderboard response")
	}
}
