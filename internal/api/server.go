package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"presence-relay/internal/config"
	"presence-relay/internal/presence"
	"presence-relay/internal/ws"
	"sync"
	"time"
)

// Roster exposes the current presence snapshot.
type Roster interface {
	Snapshot() []presence.RosterEntry
}

type Server struct {
	Config           *config.Config
	WebsocketManager *ws.Manager
	Roster           Roster
	logger           *slog.Logger
}

func NewServer(config *config.Config, wsManager *ws.Manager, roster Roster, logger *slog.Logger) *Server {
	return &Server{
		Config:           config,
		WebsocketManager: wsManager,
		Roster:           roster,
		logger:           logger,
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("API server is started.")); err != nil {
		s.logger.Error(fmt.Sprintf("Error writing response: %v", err))
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /roster", s.rosterHandler())
	mux.HandleFunc("GET "+s.Config.WSPath, s.wsHandler())
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    net.JoinHostPort(s.Config.APIServerHost, s.Config.APIServerPort),
		Handler: s.routes(),
	}

	go func() {
		s.logger.Info("API server is running", "port", s.Config.APIServerPort, "ws_path", s.Config.WSPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed to listen and serve", "error", err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("API server failed to shutdown", "error", err)
		}
		s.WebsocketManager.Shutdown()
	}()

	wg.Wait()
	return nil
}
