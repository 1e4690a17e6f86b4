package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jellyjams/internal/config"
	"jellyjams/internal/history"
	"jellyjams/internal/logging"
)

type apiServer struct {
	bind   string
	token  string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

// statusResponse is the /api/status payload.
type statusResponse struct {
	Running      bool           `json:"running"`
	PassActive   bool           `json:"pass_active"`
	ScheduleMode string         `json:"schedule_mode"`
	NextRun      string         `json:"next_run,omitempty"`
	LastPass     *passResponse  `json:"last_pass,omitempty"`
}

// passResponse is the serialized form of a recorded pass.
type passResponse struct {
	ID            string             `json:"id"`
	Status        string             `json:"status"`
	StartedAt     string             `json:"started_at"`
	FinishedAt    string             `json:"finished_at,omitempty"`
	PlaylistCount int                `json:"playlist_count"`
	TrackCount    int                `json:"track_count"`
	ErrorMessage  string             `json:"error_message,omitempty"`
	Playlists     []playlistResponse `json:"playlists,omitempty"`
}

type playlistResponse struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Owner       string `json:"owner,omitempty"`
	TrackCount  int    `json:"track_count"`
	CoverSource string `json:"cover_source,omitempty"`
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:   bind,
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", authMiddleware(srv.token, srv.handleGenerate))
	mux.HandleFunc("/api/status", authMiddleware(srv.token, srv.handleStatus))
	mux.HandleFunc("/api/passes", authMiddleware(srv.token, srv.handlePasses))
	mux.HandleFunc("/api/passes/", authMiddleware(srv.token, srv.handlePass))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := s.daemon.TriggerAsync("api"); err != nil {
		if errors.Is(err, ErrPassActive) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	payload := statusResponse{
		Running:      status.Running,
		PassActive:   status.PassActive,
		ScheduleMode: status.ScheduleMode,
	}
	if !status.NextRun.IsZero() {
		payload.NextRun = status.NextRun.Format(time.RFC3339)
	}
	if s.daemon.history != nil {
		if last, err := s.daemon.history.LatestPass(r.Context()); err == nil && last != nil {
			resp := toPassResponse(last, nil)
			payload.LastPass = &resp
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handlePasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 20
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	var passes []*history.Pass
	if s.daemon.history != nil {
		var err error
		passes, err = s.daemon.history.RecentPasses(r.Context(), limit)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	payload := make([]passResponse, 0, len(passes))
	for _, pass := range passes {
		payload = append(payload, toPassResponse(pass, nil))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"passes": payload})
}

func (s *apiServer) handlePass(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	passID := strings.TrimPrefix(r.URL.Path, "/api/passes/")
	if passID == "" || strings.Contains(passID, "/") {
		s.writeError(w, http.StatusNotFound, "pass not found")
		return
	}
	if s.daemon.history == nil {
		s.writeError(w, http.StatusNotFound, "pass not found")
		return
	}
	pass, err := s.daemon.history.GetPass(r.Context(), passID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if pass == nil {
		s.writeError(w, http.StatusNotFound, "pass not found")
		return
	}
	records, err := s.daemon.history.PlaylistsForPass(r.Context(), passID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, toPassResponse(pass, records))
}

func toPassResponse(pass *history.Pass, records []*history.PlaylistRecord) passResponse {
	resp := passResponse{
		ID:            pass.ID,
		Status:        string(pass.Status),
		StartedAt:     pass.StartedAt.Format(time.RFC3339),
		PlaylistCount: pass.PlaylistCount,
		TrackCount:    pass.TrackCount,
		ErrorMessage:  pass.ErrorMessage,
	}
	if !pass.FinishedAt.IsZero() {
		resp.FinishedAt = pass.FinishedAt.Format(time.RFC3339)
	}
	for _, rec := range records {
		resp.Playlists = append(resp.Playlists, playlistResponse{
			Name:        rec.Name,
			Type:        rec.Type,
			Owner:       rec.Owner,
			TrackCount:  rec.TrackCount,
			CoverSource: rec.CoverSource,
		})
	}
	return resp
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
