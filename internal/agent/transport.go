package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/http/middleware"
)

const EndpointPath = "/mcp"

type CleanupFunc func(ctx context.Context) error

// Handler exposes s as stateless streamable HTTP at [EndpointPath], plus a
// liveness route.
func Handler(s *server.MCPServer, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logger),
		middleware.CorrelationID(),
		middleware.Logging(logger),
	)

	r.Handle(EndpointPath, server.NewStreamableHTTPServer(s,
		server.WithStateLess(true),
		server.WithEndpointPath(EndpointPath),
	))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck
		io.WriteString(w, `{"status":"ok"}`)
	})

	return r
}

// ServeHTTP listens on cfg.Port and returns a func that stops the server.
func ServeHTTP(ctx context.Context, cfg config.Agent, s *server.MCPServer, logger *slog.Logger) (CleanupFunc, error) {
	srv := &http.Server{
		Handler:           Handler(s, logger),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", cfg.Port, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("agent server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	logger.Info("agent server listening",
		slog.String("addr", ln.Addr().String()),
		slog.String("endpoint", EndpointPath))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

// ServeStdio serves s over in and out until ctx is done or in is closed.
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer, logger *slog.Logger) error {
	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
