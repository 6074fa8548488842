package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/product-management/internal/config"
	"github.com/tuanvumaihuynh/product-management/internal/health"
	"github.com/tuanvumaihuynh/product-management/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-management/internal/http/metric"
	"github.com/tuanvumaihuynh/product-management/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-management/internal/http/swagger"
	"github.com/tuanvumaihuynh/product-management/internal/service"
)

var tracer = otel.Tracer("internal/http")

// Service is the REST façade over the product operations.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics
	probe    *health.ProbeRunner

	rateLimiter *middleware.RateLimiter

	productSvc service.ProductService
}

type CleanupFunc func(ctx context.Context) error

type Option func(*Service)

// WithRateLimit enables per-client rate limiting on the /api routes.
func WithRateLimit(limiter middleware.Limiter, cfg config.RateLimit) Option {
	return func(s *Service) {
		s.rateLimiter = middleware.NewRateLimiter(limiter, cfg.Requests, cfg.Window, cfg.FailOpen, s.logger, s.metrics)
	}
}

func New(
	cfg config.HTTP,
	log *slog.Logger,
	productSvc service.ProductService,
	probe *health.ProbeRunner,
	opts ...Option,
) *Service {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if probe == nil {
		probe = health.NewProbeRunner(time.Second)
	}

	s := &Service{
		cfg:        cfg,
		logger:     log.With(slog.String("service", "http")),
		registry:   reg,
		metrics:    metric.New(reg),
		probe:      probe,
		productSvc: productSvc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the full router: middlewares, operational endpoints and the product API.
func (s *Service) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(r); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	s.RegisterHandlers(r)
	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.cfg.RequestTimeout + 5*time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	r.NotFound(s.routeError(http.StatusNotFound, "Route not found"))
	r.MethodNotAllowed(s.routeError(http.StatusMethodNotAllowed, "Method not allowed"))

	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}))

	r.Route("/api", func(r chi.Router) {
		if s.rateLimiter != nil {
			r.Use(s.rateLimiter.Middleware())
		}
		if s.cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(s.cfg.RequestTimeout))
		}

		newProductHandler(s).register(r)
	})
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    float64   `json:"uptime"`
}

func (s *Service) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    s.probe.Uptime().Seconds(),
	})
}

type readyResponse struct {
	Status string               `json:"status"`
	Checks []health.CheckResult `json:"checks"`
}

func (s *Service) ready(w http.ResponseWriter, r *http.Request) {
	ok, checks := s.probe.Ready(r.Context())
	if ok {
		s.writeJSON(w, r, http.StatusOK, readyResponse{Status: "ready", Checks: checks})
		return
	}

	s.logger.WarnContext(r.Context(), "readiness check failed", slog.Any("checks", checks))
	s.writeJSON(w, r, http.StatusServiceUnavailable, readyResponse{Status: "not_ready", Checks: checks})
}

type routeErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
	Path       string `json:"path"`
}

func (s *Service) routeError(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, r, status, routeErrorResponse{
			Success:    false,
			Error:      msg,
			StatusCode: status,
			Path:       r.URL.Path,
		})
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	s.writeJSON(w, r, res.StatusCode, res)
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "error encoding response",
			slog.Any("error", err))
	}
}
