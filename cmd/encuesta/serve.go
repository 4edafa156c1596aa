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

	"github.com/kinesiogame/encuesta/internal/adapters/cache"
	"github.com/kinesiogame/encuesta/internal/adapters/database"
	"github.com/kinesiogame/encuesta/internal/adapters/definition"
	"github.com/kinesiogame/encuesta/internal/adapters/journal"
	"github.com/kinesiogame/encuesta/internal/api/handlers"
	"github.com/kinesiogame/encuesta/internal/api/routes"
	"github.com/kinesiogame/encuesta/internal/application/services"
	"github.com/kinesiogame/encuesta/internal/domain/providers"
	"github.com/kinesiogame/encuesta/internal/infrastructure/clients/postgres"
	redisclient "github.com/kinesiogame/encuesta/internal/infrastructure/clients/redis"
	"github.com/kinesiogame/encuesta/internal/infrastructure/observability"
	"github.com/kinesiogame/encuesta/internal/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the survey HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg := a.cfg

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	def, err := definition.Load(cfg.Survey.DefinitionPath)
	if err != nil {
		return err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	submissionJournal := journal.NewJSONLJournal(cfg.Survey.JournalPath())
	log.Info().Str("path", submissionJournal.Path()).Int("items", def.ItemCount()).Msg("Submission journal ready")

	sheetsForwarder := newSheetsForwarder(&cfg.Sheets)
	if cfg.Sheets.Enabled() {
		log.Info().Str("spreadsheet_id", cfg.Sheets.SpreadsheetID).Str("tab", cfg.Sheets.Tab).Msg("Google Sheets forwarding enabled")
	} else {
		log.Info().Msg("Google Sheets forwarding disabled (GSHEET_ID not set)")
	}
	forwarders := []providers.SubmissionForwarder{sheetsForwarder}

	// Optional PostgreSQL mirror
	if cfg.Database.Enabled {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Warn().Err(err).Msg("PostgreSQL mirror disabled")
		} else {
			defer pgClient.Close()
			mirror := database.NewSubmissionMirrorAdapter(pgClient)
			if err := mirror.EnsureSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("Failed to ensure survey_responses table")
			}
			forwarders = append(forwarders, mirror)
			log.Info().Msg("PostgreSQL mirror enabled")
		}
	}

	// Optional shared rate limit counters
	var cacheProvider providers.CacheProvider
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, rate limiting in process")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis rate limit store enabled")
		}
	}

	service := services.NewSubmissionService(
		services.NewSubmissionValidator(def.ItemCount()),
		submissionJournal,
		forwarders...,
	)
	service.SetMetrics(metrics)

	var limiter *handlers.SubmissionRateLimiter
	if cfg.Survey.RateLimitPerHour > 0 {
		limiter = handlers.NewSubmissionRateLimiter(cfg.Survey.RateLimitPerHour, cacheProvider)
	}

	router := routes.NewRouter(
		handlers.NewLandingHandler(renderer, cfg.Survey.PublicURL),
		handlers.NewSurveyHandler(service, renderer, def, limiter),
		handlers.NewFaviconHandler(web.Favicon()),
		handlers.NewDebugHandler(sheetsForwarder),
		web.Static(),
		metrics,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}
