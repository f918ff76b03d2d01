// Package editor serves the manual-editing interface over HTTP. It is a
// peer of the pipeline: both write canonical records through the shared
// cache store, and the run lock keeps them from doing so at the same time.
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"crate/internal/config"
	"crate/internal/logging"
	"crate/internal/store"
)

// Server owns the editing HTTP surface over one cache store.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger

	lock     *flock.Flock
	listener net.Listener
	server   *http.Server
}

// New builds an editor server. The bind address comes from the editor
// configuration section.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	srv := &Server{
		cfg:    cfg,
		store:  st,
		logger: logging.WithComponent(logger, "editor"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/releases", srv.handleReleases)
	mux.HandleFunc("/api/releases/", srv.handleRelease)
	mux.HandleFunc("/api/skips", srv.handleSkips)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the routed mux for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start acquires the run lock, snapshots the database, and begins serving.
// The lock is mandatory: a batch run in flight owns the cache, and editing
// it mid-run would race the reconciler.
func (s *Server) Start(ctx context.Context) error {
	lock := flock.New(s.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("cache at %s is locked by another crate process", s.cfg.DatabasePath())
	}
	s.lock = lock

	backup, err := s.store.Backup(ctx, s.cfg.Paths.BackupDir)
	if err != nil {
		s.release()
		return fmt.Errorf("backup before editing: %w", err)
	}
	s.logger.Info("database backed up", logging.String("path", backup))

	bind := strings.TrimSpace(s.cfg.Editor.Bind)
	if bind == "" {
		bind = "127.0.0.1:5173"
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		s.release()
		return fmt.Errorf("editor listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("editor server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("editor listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and releases the run lock.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	s.release()
}

func (s *Server) release() {
	if s.lock != nil {
		_ = s.lock.Unlock()
		s.lock = nil
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid release id %q", raw)
	}
	return id, nil
}
