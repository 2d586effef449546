package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/brigade/fieldops/internal/config"
	"github.com/brigade/fieldops/internal/domain/assessment"
	"github.com/brigade/fieldops/internal/platform/auth"
	"github.com/brigade/fieldops/internal/platform/db"
	"github.com/brigade/fieldops/internal/platform/middleware"
	platformredis "github.com/brigade/fieldops/internal/platform/redis"
	"github.com/brigade/fieldops/internal/triage"
	"github.com/brigade/fieldops/migrations"
)

const version = "0.3.0"

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the assessment API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, migrate)
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving (postgres only)")
	return cmd
}

// store is the selected assessment backend together with its health probe.
type store struct {
	repo       assessment.Repository
	healthPath string
	health     echo.HandlerFunc
	close      func()
}

func openStore(ctx context.Context, cfg *config.Config, migrate bool, logger zerolog.Logger) (*store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to database")
		if migrate {
			n, err := db.NewMigrator(pool, migrations.FS).Up(ctx)
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Int("applied", n).Msg("migrations applied")
		}
		return &store{
			repo:       assessment.NewRepoPG(pool),
			healthPath: "/health/db",
			health:     db.PoolHandler(pool),
			close:      pool.Close,
		}, nil

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info().Dur("ttl", cfg.RedisTTL).Msg("connected to redis")
		return &store{
			repo:       assessment.NewRepoRedis(client.Client, cfg.RedisTTL),
			healthPath: "/health/redis",
			health:     db.HealthHandler(client.Health, nil),
			close:      func() { _ = client.Close() },
		}, nil

	case config.StoreMemory:
		logger.Warn().Msg("using in-memory store; assessments are lost on restart")
		return &store{repo: assessment.NewMemoryRepository(), close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

func loadProtocol(path string) (triage.Protocol, error) {
	if path == "" {
		return triage.DefaultProtocol(), nil
	}
	return triage.LoadProtocol(path)
}

// newServer builds the echo instance. reg may be nil when metrics are disabled.
func newServer(cfg *config.Config, st *store, svc *assessment.Service, reg *prometheus.Registry, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	if reg != nil {
		e.Use(middleware.NewHTTPMetrics(reg).Middleware())
	}
	e.Use(middleware.Recovery(logger))
	var hsts time.Duration
	if !cfg.IsDev() {
		hsts = middleware.HSTSMaxAge
	}
	e.Use(middleware.SecurityHeaders(hsts))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
			"store":   cfg.StoreBackend,
		})
	})
	if st.health != nil {
		e.GET(st.healthPath, st.health)
	}
	if reg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		SigningKey: []byte(cfg.AuthSigningKey),
	}
	authMW := auth.JWTMiddleware(jwtCfg)
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(jwtCfg)
	}

	rl := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		KeyFunc:           middleware.ByUser(auth.UserIDKey),
	}
	if rl.RequestsPerSecond <= 0 || rl.BurstSize <= 0 {
		def := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond, rl.BurstSize = def.RequestsPerSecond, def.BurstSize
	}

	apiV1 := e.Group("/api/v1", authMW, middleware.RateLimit(rl))
	assessment.NewHandler(svc).RegisterRoutes(apiV1)

	return e
}

func runServer(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	if cfg.IsDev() {
		logger.Warn().Msg("ENV=development: requests without a token are served as admin")
	}

	protocol, err := loadProtocol(cfg.ProtocolFile)
	if err != nil {
		return fmt.Errorf("load protocol: %w", err)
	}
	logger.Info().Str("protocol", protocol.Name).Int("body_areas", len(protocol.BodyAreas)).Msg("protocol loaded")

	st, err := openStore(ctx, cfg, migrate, logger)
	if err != nil {
		return err
	}
	defer st.close()

	var reg *prometheus.Registry
	opts := []assessment.ServiceOption{}
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, assessment.WithMetrics(assessment.NewMetrics(reg)))
	}
	svc := assessment.NewService(st.repo, protocol, logger, opts...)

	e := newServer(cfg, st, svc, reg, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("store", cfg.StoreBackend).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
