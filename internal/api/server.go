package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/flock"

	"mediaextract/internal/config"
	"mediaextract/internal/logging"
)

// writeMargin is added to the pipeline budget so a request that uses its full
// budget can still deliver its error response.
const writeMargin = 30 * time.Second

// ginModeFor keeps gin's route dump and debug warnings out of the output unless
// debug logging was asked for.
func ginModeFor(level string) string {
	if strings.EqualFold(strings.TrimSpace(level), "debug") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

// ErrAlreadyRunning reports that another server holds the instance lock.
var ErrAlreadyRunning = errors.New("another mediaextract server is already running")

// Server owns the HTTP listener and the single-instance lock.
type Server struct {
	bind            string
	shutdownTimeout time.Duration
	logger          *slog.Logger

	lockPath string
	lock     *flock.Flock

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	serveErr chan error
}

// NewServer builds a server for runner using the [server] config section.
func NewServer(cfg *config.Config, runner Runner, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server requires config")
	}
	bind := strings.TrimSpace(cfg.Server.Bind)
	if bind == "" {
		return nil, errors.New("server.bind is empty")
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(ginModeFor(cfg.Logging.Level))
	}
	handler := NewRouter(runner, Options{
		APIKey:         cfg.Server.APIKey,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		CORSOrigins:    cfg.Server.CORSOrigins,
	}, logger)

	s := &Server{
		bind:            bind,
		shutdownTimeout: cfg.ShutdownTimeout(),
		logger:          logging.NewComponentLogger(logger, "server"),
		lockPath:        cfg.Server.LockPath,
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      cfg.RequestBudget() + writeMargin,
			IdleTimeout:       60 * time.Second,
		},
	}
	if s.lockPath != "" {
		s.lock = flock.New(s.lockPath)
	}
	return s, nil
}

// Start acquires the instance lock and begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("server already started")
	}

	if s.lock != nil {
		if err := os.MkdirAll(filepath.Dir(s.lockPath), 0o755); err != nil {
			return fmt.Errorf("create lock directory: %w", err)
		}
		ok, err := s.lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, s.lockPath)
		}
	}

	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		s.unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.serveErr = make(chan error, 1)
	s.server.BaseContext = func(net.Listener) context.Context { return context.WithoutCancel(ctx) }

	go func() {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
			s.serveErr <- err
		}
		close(s.serveErr)
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", s.lockPath),
	)
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// LockPath returns the instance lock file path.
func (s *Server) LockPath() string {
	return s.lockPath
}

// Errors delivers a fatal serve error, then closes.
func (s *Server) Errors() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Shutdown drains in-flight requests within the configured timeout and
// releases the instance lock.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	err := s.server.Shutdown(shutdownCtx)
	s.listener = nil
	s.unlock()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("api server stopped")
	return nil
}

func (s *Server) unlock() {
	if s.lock == nil {
		return
	}
	if err := s.lock.Unlock(); err != nil {
		s.logger.Warn("release lock failed", logging.Error(err))
	}
}
