package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/invsched/api/runs"
	"github.com/kilianp07/invsched/api/solve"
)

// Handler returns the HTTP API: POST /api/solve and GET /api/runs.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/solve", solve.NewHandler(s, s.apiToken))
	mux.Handle("/api/runs", runs.NewHandler(s.journal, s.apiToken))
	return mux
}

// ServeAPI serves Handler on addr until ctx is canceled.
func (s *Service) ServeAPI(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
