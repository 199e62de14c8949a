package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultReadHeaderTimeout bounds how long a client may take to send headers.
	DefaultReadHeaderTimeout = 5 * time.Second
	// DefaultWriteTimeout bounds a full response when none is configured.
	DefaultWriteTimeout = 10 * time.Second
)

// Server wraps the http.Server with sensible defaults.
type Server struct {
	inner *http.Server
}

// New constructs a server listening on the provided port. writeTimeout must
// cover the slowest upstream call a handler makes; zero uses the default.
func New(port int, handler http.Handler, writeTimeout time.Duration) *Server {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      writeTimeout,
		},
	}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Serve accepts connections on ln instead of the configured port.
func (s *Server) Serve(ln net.Listener) error {
	return s.inner.Serve(ln)
}

// Shutdown gracefully terminates the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
