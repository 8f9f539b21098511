// Package trigger exposes a small HTTP surface for kicking off ingestion
// runs remotely, guarded by an admin password or a cron bearer token.
package trigger

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/sgtmajorsays/springest/internal/config"
)

// Runner is the ingestion entry point the server launches. It runs in
// its own goroutine; errors are logged, not surfaced to the caller.
type Runner func() error

type Server struct {
	cfg     *config.RunConfig
	run     Runner
	running atomic.Bool
}

func NewServer(cfg *config.RunConfig, run Runner) *Server {
	return &Server{cfg: cfg, run: run}
}

// Handler routes POST /ingest. Everything else is 404/405.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ingest", s.handleIngest)
	return mux
}

// ListenAndServe blocks serving the trigger endpoint on cfg.TriggerAddr.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.cfg.TriggerAddr).Msg("trigger server listening")
	return http.ListenAndServe(s.cfg.TriggerAddr, s.Handler())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "ingestion already running"})
		return
	}

	go func() {
		defer s.running.Store(false)
		if err := s.run(); err != nil {
			log.Error().Err(err).Msg("triggered ingestion run failed")
		}
	}()
	writeJSON(w, http.StatusOK, map[string]string{"message": "started"})
}

// authorized accepts either a cron bearer token or the admin password in
// the request body. Unset credentials never match.
func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.CronSecret != "" {
		if tok, ok := bearerToken(r); ok && tok == s.cfg.CronSecret {
			return true
		}
	}
	if s.cfg.AdminPassword == "" {
		return false
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return false
	}
	return body.Password == s.cfg.AdminPassword
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimPrefix(h, prefix), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("trigger response write failed")
	}
}
