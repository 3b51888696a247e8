package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"telegram-bingo-bot/internal/domain"
	"telegram-bingo-bot/internal/domain/model"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Snapshot(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to load stats")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to load statistics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":  stats.TotalUsers,
		"active_users": stats.ActiveUsers,
		"generated_at": stats.TakenAt.UTC().Format(time.RFC3339),
	})
}

type stageBroadcastRequest struct {
	Text    string `json:"text"`
	Image   string `json:"image"`
	Buttons []struct {
		Text     string `json:"text"`
		URL      string `json:"url"`
		WebApp   string `json:"webApp"`
		Callback string `json:"callback"`
	} `json:"buttons"`
}

// handleStageBroadcast lets the panel stage a broadcast directly;
// the admin still confirms delivery from the chat.
func (s *Server) handleStageBroadcast(w http.ResponseWriter, r *http.Request) {
	var req stageBroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	draft := &model.Broadcast{Text: req.Text, ImageRef: req.Image}
	for _, btn := range req.Buttons {
		draft.Buttons = append(draft.Buttons, model.Button{
			Label:         btn.Text,
			URL:           btn.URL,
			WebAppURL:     btn.WebApp,
			CallbackToken: btn.Callback,
		})
	}

	id, err := s.broadcastUC.Stage(r.Context(), draft)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyBroadcast) || errors.Is(err, domain.ErrInvalidButton) {
			writeError(w, http.StatusBadRequest, "invalid_broadcast", err.Error())
			return
		}
		s.log.Error().Err(err).Msg("Failed to stage broadcast")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to stage broadcast")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
