package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/zishang520/socket.io/v2/socket"

	"github.com/vk/stladder/internal/api"
	"github.com/vk/stladder/internal/config"
	"github.com/vk/stladder/internal/ctxlog"
	"github.com/vk/stladder/internal/translator"
)

// convertFunc matches api.Convert.
type convertFunc func(ctx context.Context, req api.ConversionRequest, base translator.Options) api.ConversionResponse

// Server serves the translation API.
type Server struct {
	ctx        context.Context
	cfg        config.Server
	base       translator.Options
	convert    convertFunc
	io         *socket.Server
	handler    http.Handler
	httpServer *http.Server
}

// New builds the handler tree. ctx carries the logger and bounds every
// translation started by the server.
func New(ctx context.Context, cfg config.Server, base translator.Options) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = config.Defaults().Server.MaxUploadBytes
	}
	s := &Server{
		ctx:     ctx,
		cfg:     cfg,
		base:    base,
		convert: api.Convert,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.convertHandler)
	mux.HandleFunc("POST /api/upload-convert", s.uploadHandler)
	mux.HandleFunc("GET /health", s.healthHandler)

	s.io = s.newSocketIO()
	mux.Handle("/socket.io/", s.io.ServeHandler(nil))

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	s.handler = s.recoverer(s.requestLogger(c.Handler(mux)))
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks until ctx is cancelled or the listener fails, then
// shuts the server down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	logger := ctxlog.FromContext(s.ctx)
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🪜 Translation server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("Translation server failed unexpectedly", "error", err)
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops the socket.io server and gracefully closes the listener.
func (s *Server) Shutdown() error {
	logger := ctxlog.FromContext(s.ctx)
	logger.Debug("Closing translation server...")

	s.io.Close(nil)
	if s.httpServer == nil {
		logger.Debug("Translation server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("🪜 Shutting down translation server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Translation server shutdown failed", "error", err)
		return err
	}
	logger.Debug("Translation server shut down gracefully.")
	return nil
}
