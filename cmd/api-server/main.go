// cmd/api-server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scholarship-tracker/internal/api"
	"scholarship-tracker/internal/common/auth"
	"scholarship-tracker/internal/common/bootstrap"
	"scholarship-tracker/internal/common/camunda"
	"scholarship-tracker/internal/common/config"
	"scholarship-tracker/internal/common/llm"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/observability"
	"scholarship-tracker/internal/documents"
	"scholarship-tracker/internal/genai"
	"scholarship-tracker/internal/mentors"
	"scholarship-tracker/internal/notifications"
	"scholarship-tracker/internal/profile"
	"scholarship-tracker/internal/scholarships"
	"scholarship-tracker/internal/search"
	"scholarship-tracker/internal/tasks"
	"scholarship-tracker/pkg/catalog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting api server...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New("api-server")
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init backing services with retry ---
	pg, err := bootstrap.Postgres(ctx, cfg.Database.Postgres, zapLog)
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	redis, err := bootstrap.Redis(ctx, cfg.Database.Redis, zapLog)
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()

	esClient, err := bootstrap.Elasticsearch(cfg.Database.Elasticsearch, zapLog)
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}

	objects, err := bootstrap.Minio(ctx, cfg.Storage.Minio, zapLog)
	if err != nil {
		zapLog.Fatal("minio failed after retries", zap.Error(err))
	}

	ses, _, err := bootstrap.Messaging(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("messaging clients failed", zap.Error(err))
	}

	cat, err := catalog.Load(cfg.Documents.CatalogPath)
	if err != nil {
		zapLog.Fatal("document catalog invalid", zap.Error(err), zap.String("path", cfg.Documents.CatalogPath))
	}

	// --- Domain services ---
	scholarshipSvc := scholarships.NewService(scholarships.NewPostgresStore(pg.DB), obs, log)
	profileSvc := profile.NewService(profile.NewPostgresStore(pg.DB), redis.Client, config.GetSeconds(cfg.Profile.CacheTTL), log)
	taskSvc := tasks.NewService(tasks.NewPostgresStore(pg.DB), log)
	mentorSvc := mentors.NewService(
		mentors.NewPostgresStore(pg.DB),
		notifications.NewAppointmentNotifier(ses, cfg.Integrations.AWS.SES.FromEmail, cfg.Notifications.AppointmentEmail, log),
		log,
	)

	searchSvc := search.NewService(esClient, log)
	if err := searchSvc.EnsureIndex(ctx); err != nil {
		zapLog.Fatal("search index setup failed", zap.Error(err))
	}

	docManager := documents.NewManager(
		documents.NewPostgresStore(pg.DB),
		objects,
		cat,
		documents.Limits{
			MaxFileSize:  cfg.Documents.MaxFileSize,
			AllowedTypes: cfg.Documents.AllowedTypes,
			Concurrency:  cfg.Documents.UploadConcurrency,
			PresignTTL:   config.GetSeconds(cfg.Storage.Minio.PresignTTL),
		},
		log,
	)

	generator := genai.NewGenerator(
		llm.NewOpenAIClient(llm.Config{
			APIKey:  cfg.APIs.OpenAI.APIKey,
			BaseURL: cfg.APIs.OpenAI.BaseURL,
			Timeout: config.GetDuration(cfg.APIs.OpenAI.Timeout),
		}),
		genai.Config{
			SOPModel:   cfg.APIs.OpenAI.SOPModel,
			LORModel:   cfg.APIs.OpenAI.LORModel,
			MatchModel: cfg.APIs.OpenAI.MatchModel,
		},
		obs, log,
	)
	pipeline := genai.NewMatchPipeline(generator, scholarshipSvc, log)

	checks := map[string]api.Check{
		"postgres": pg.Ping,
		"redis":    redis.Ping,
		"elasticsearch": func(ctx context.Context) error {
			return esClient.Ping()
		},
		"minio": objects.Ping,
	}

	// Collection writes go to the indexing process when the engine is
	// enabled and are synced inline otherwise.
	var zeebe *camunda.Client
	var publisher search.Publisher
	if cfg.Camunda.Enabled {
		zeebe, err = bootstrap.Zeebe(cfg.Camunda, zapLog)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		publisher = zeebe
		checks["zeebe"] = zeebe.HealthCheck
	}
	scholarshipSvc.WithListener(search.NewReindexer(searchSvc, publisher, log))

	var revocations auth.Revocations
	if cfg.Auth.RevocationEnabled {
		revocations = auth.NewRedisRevocations(redis.Client)
	}
	verifier := auth.NewVerifier(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.Audience, revocations)

	deps := api.Deps{
		Scholarships:       scholarshipSvc,
		Documents:          docManager,
		Tasks:              taskSvc,
		Profiles:           profileSvc,
		Mentors:            mentorSvc,
		Generator:          generator,
		Matches:            pipeline,
		Search:             searchSvc,
		Verifier:           verifier,
		AdminRole:          cfg.Auth.AdminRole,
		CORSOrigins:        cfg.Server.CORSAllowedOrigins,
		MaxUploadBytes:     cfg.Server.MaxUploadBytes,
		ReminderWindowDays: cfg.Notifications.Reminders.WindowDays,
		Checks:             checks,
		Logger:             log,
	}
	if cfg.APIs.RateLimit.Enabled {
		deps.Limiter = genai.NewRateLimiter(redis.Client, cfg.APIs.RateLimit.PerMinute)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewServer(deps).Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, draining requests...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("api server stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("API server stopped gracefully")
}
