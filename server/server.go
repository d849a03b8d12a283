package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/heartlive/models"
)

const shutdownTimeout = 5 * time.Second

// Server is the presentation layer over a Monitor: pages, charts, JSON API and websocket push.
type Server struct {
	log     *slog.Logger
	monitor *models.Monitor
	hub     *Hub

	unsubscribe func()
}

// New subscribes a websocket hub to the monitor's aggregator.
func New(log *slog.Logger, monitor *models.Monitor) *Server {
	log = log.With("component", "server")
	hub := NewHub(log)
	return &Server{
		log:         log,
		monitor:     monitor,
		hub:         hub,
		unsubscribe: monitor.Aggregator().Subscribe(hub.Broadcast),
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(loggingMiddleware(s.log))

	r.HandleFunc("/", s.indexHandler).Methods(http.MethodGet)
	r.HandleFunc("/history", s.historyHandler).Methods(http.MethodGet)
	r.HandleFunc("/charts/history", s.historyChartHandler).Methods(http.MethodGet)
	r.HandleFunc("/charts/zones", s.zoneChartHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.wsHandler).Methods(http.MethodGet)

	// Registered on the root router so a wrong method is a 405, not a 404.
	r.HandleFunc("/api/state", s.stateHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/history", s.historyAPIHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.statusHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/authorize", s.authorizeHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/monitor/start", s.startHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/monitor/stop", s.stopHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/readings", s.readingHandler).Methods(http.MethodPost)

	recoveryLog := slog.NewLogLogger(s.log.Handler(), slog.LevelError)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLog))(r)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.log.Info("server stopped")
	return err
}

// Close detaches the websocket hub from the aggregator.
func (s *Server) Close() {
	s.unsubscribe()
}
