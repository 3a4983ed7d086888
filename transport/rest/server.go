package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type presenceStats interface {
	WaitingCount(ctx context.Context) (int64, error)
	PlayingUsers(ctx context.Context) ([]int64, error)
}

// Server exposes the operational read side: liveness and queue stats.
type Server struct {
	logger   *slog.Logger
	presence presenceStats
}

func New(logger *slog.Logger, presence presenceStats) *Server {
	return &Server{
		logger:   logger,
		presence: presence,
	}
}

// Start - starts the HTTP server.
func (that *Server) Start(port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", that.handlePing)
	mux.HandleFunc("/stats", that.handleStats)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type statsResponse struct {
	Waiting int64 `json:"waiting"`
	Playing int   `json:"playing"`
}

func (that *Server) handleStats(w http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "handleStats")

	waiting, err := that.presence.WaitingCount(req.Context())
	if err != nil {
		log.Error("failed to count waiting users", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	playing, err := that.presence.PlayingUsers(req.Context())
	if err != nil {
		log.Error("failed to list playing users", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(statsResponse{Waiting: waiting, Playing: len(playing)}); err != nil {
		log.Error("failed to encode stats", "error", err)
	}
}
