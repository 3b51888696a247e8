package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"telegram-bingo-bot/internal/config"
	"telegram-bingo-bot/internal/usecase"
)

// Server is the admin-facing HTTP surface: image uploads for the
// broadcast composer, panel API, health, and metrics.
type Server struct {
	statsUC     usecase.StatsUseCase
	broadcastUC usecase.BroadcastUseCase
	auth        *AuthManager
	cfg         *config.HTTPConfig
	log         *zerolog.Logger
}

func NewServer(
	statsUC usecase.StatsUseCase,
	broadcastUC usecase.BroadcastUseCase,
	auth *AuthManager,
	cfg *config.HTTPConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		statsUC:     statsUC,
		broadcastUC: broadcastUC,
		auth:        auth,
		cfg:         cfg,
		log:         logger,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/upload", s.handleUpload)
	r.Post("/api/v1/auth/login", s.handleLogin)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.cfg.UploadDir))))

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/api/v1/stats", s.handleStats)
		r.Post("/api/v1/broadcasts", s.handleStageBroadcast)
	})

	return r
}

// requireAdmin rejects requests without a valid session token.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.cfg.AdminSecret) == 0 {
			s.log.Error().Msg("Admin secret is not configured")
			writeError(w, http.StatusForbidden, "forbidden", "Admin API is not configured")
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid session token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type loginRequest struct {
	Secret string `json:"secret"`
}

// handleLogin trades the shared admin secret for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if len(s.cfg.AdminSecret) == 0 ||
		subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.cfg.AdminSecret)) != 1 {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin secret")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to mint session token")
		writeError(w, http.StatusInternalServerError, "internal", "Failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
