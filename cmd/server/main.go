package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Simplici0/freightcost/internal/config"
	"github.com/Simplici0/freightcost/internal/db"
	"github.com/Simplici0/freightcost/internal/intake"
	"github.com/Simplici0/freightcost/internal/migrations"
	"github.com/Simplici0/freightcost/internal/obs"
	"github.com/Simplici0/freightcost/internal/pricing"
	"github.com/Simplici0/freightcost/internal/ratestore"
	"github.com/Simplici0/freightcost/internal/ratetable"
	"github.com/Simplici0/freightcost/internal/seed"
	"github.com/Simplici0/freightcost/web"
)

const (
	healthTimeout   = 500 * time.Millisecond
	shutdownTimeout = 10 * time.Second
)

type server struct {
	log       zerolog.Logger
	db        *sql.DB
	auth      *authService
	store     *ratestore.Store
	overrides config.RateOverrides
	validator *intake.Validator
	currency  string

	// current is swapped whole when an admin edits the rate table.
	current atomic.Pointer[pricing.Engine]

	registry     *prometheus.Registry
	quoteMetrics *obs.QuoteMetrics
	httpMetrics  *obs.HTTPMetrics

	corsOrigins []string
	apiRate     limiter.Rate
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("json", "info")
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel)
	for _, warning := range cfg.Warnings {
		logger.Warn().Msg(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		logger.Fatal().Err(err).Msg("failed to run database migrations")
	}
	if version, err := migrations.Version(database); err == nil {
		logger.Info().Int64("schema_version", version).Msg("database migrated")
	}

	stats, err := seed.Run(ctx, database, ratetable.Default())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to seed rate table")
	}
	logger.Info().Int("inserts", stats.Inserts).Int("updates", stats.Updates).Msg("rate table seeded")

	hash, err := adminPasswordHash(cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare admin credentials")
	}
	auth := newAuthService(cfg.AdminEmail, hash, cfg.SessionSecret, !cfg.IsDev())

	srv, err := newServer(ctx, cfg, database, logger, auth)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Str("env", cfg.AppEnv).Msg("server starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, logger zerolog.Logger, auth *authService) (*server, error) {
	apiRate, err := limiter.NewRateFromFormatted(cfg.APIRateLimit)
	if err != nil {
		return nil, fmt.Errorf("parse API_RATE_LIMIT %q: %w", cfg.APIRateLimit, err)
	}

	s := &server{
		log:         logger,
		db:          database,
		auth:        auth,
		store:       ratestore.New(database),
		overrides:   cfg.Rates,
		validator:   intake.NewValidator(),
		currency:    cfg.Currency,
		corsOrigins: allowedOrigins(cfg),
		apiRate:     apiRate,
	}

	if cfg.MetricsEnabled {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.quoteMetrics = obs.NewQuoteMetrics(s.registry)
		s.httpMetrics = obs.NewHTTPMetrics(s.registry)
	}

	if err := s.reloadRates(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.httpMetrics != nil {
		r.Use(s.httpMetrics.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: s.log}.Middleware)

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/health", s.handleHealth)
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	r.Get("/", s.handleHome)
	r.Post("/quote", s.handleQuote)
	r.Post("/quote/text", s.handleQuoteText)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)
	r.Group(func(admin chi.Router) {
		admin.Use(s.auth.requireAdmin)
		admin.Get("/admin/rates", s.handleAdminRatesForm)
		admin.Post("/admin/rates", s.handleAdminRatesSubmit)
		admin.Post("/admin/trucks/{code}", s.handleAdminTruckUpdate)
	})

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		limit := stdlib.NewMiddleware(
			limiter.New(memory.NewStore(), s.apiRate),
			stdlib.WithLimitReachedHandler(handleLimitReached),
		)
		v.Use(limit.Handler)
		v.Get("/trucks", s.handleAPITrucks)
		v.Post("/quotes", s.handleAPIQuote)
	})

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

// engine returns the pricing engine for the rate table currently in force.
func (s *server) engine() *pricing.Engine {
	return s.current.Load()
}

// reloadRates rebuilds the engine from storage with the environment
// overrides applied on top.
func (s *server) reloadRates(ctx context.Context) error {
	table, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rate table: %w", err)
	}

	if !s.overrides.Empty() {
		table, err = table.WithSettings(s.overrides.Apply(table.Settings()))
		if err != nil {
			return fmt.Errorf("apply rate overrides: %w", err)
		}
	}

	s.current.Store(pricing.NewEngine(table))
	return nil
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.log.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.ParseFS(web.FS, "templates/layout.html", "templates/"+page)
	if err != nil {
		s.log.Error().Err(err).Str("page", page).Msg("parse template")
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.log.Error().Err(err).Str("page", page).Msg("render template")
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
