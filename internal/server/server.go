// Package server is the HTTP adapter over the workflow core: request parsing,
// response shaping and status-code translation live here, nothing else.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/knagata/kadai/internal/task"
)

// Server hosts the JSON API.
type Server struct {
	svc     *task.Service
	log     zerolog.Logger
	origins map[string]struct{}
	server  *http.Server
}

// New creates a server listening on port. allowedOrigins is the CORS
// allowlist for browser clients.
func New(port int, allowedOrigins []string, svc *task.Service, log zerolog.Logger) *Server {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	s := &Server{
		svc:     svc,
		log:     log,
		origins: origins,
	}
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.registerRoutes(),
	}
	return s
}

// Start runs the server in a goroutine; startup failures go to errChan.
func (s *Server) Start(wg *sync.WaitGroup, errChan chan<- error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.log.Info().Str("addr", s.server.Addr).Msg("api server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("api server error: %w", err)
		}
	}()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.registerRoutes()
}
