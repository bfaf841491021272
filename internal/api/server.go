package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julianstephens/habitline/internal/logger"
	"github.com/julianstephens/habitline/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// Server runs the HTTP API and drives tracker ticks while it is up
type Server struct {
	tracker      *tracker.Tracker
	httpServer   *http.Server
	tickInterval time.Duration
}

func NewServer(addr string, t *tracker.Tracker, auth *Auth, corsOrigins []string, tickInterval time.Duration) *Server {
	return &Server{
		tracker: t,
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(NewHandler(t), auth, corsOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		},
		tickInterval: tickInterval,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	tickCtx, stopTicks := context.WithCancel(ctx)
	defer stopTicks()
	go RunTicker(tickCtx, s.tracker, s.tickInterval)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return s.tracker.Flush(shutdownCtx)
}

// RunTicker calls Tick every interval until ctx is done
func RunTicker(ctx context.Context, t *tracker.Tracker, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := t.Tick(); len(done) > 0 {
				logger.Debug("Tick finalized timers", "habits", done)
			}
		}
	}
}
