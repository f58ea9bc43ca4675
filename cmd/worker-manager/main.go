// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"scholarship-tracker/internal/common/bootstrap"
	"scholarship-tracker/internal/common/camunda"
	"scholarship-tracker/internal/common/config"
	"scholarship-tracker/internal/common/llm"
	"scholarship-tracker/internal/common/logger"
	"scholarship-tracker/internal/common/observability"
	"scholarship-tracker/internal/documents"
	"scholarship-tracker/internal/genai"
	"scholarship-tracker/internal/notifications"
	"scholarship-tracker/internal/profile"
	"scholarship-tracker/internal/scholarships"
	"scholarship-tracker/internal/search"
	"scholarship-tracker/internal/tasks"
	"scholarship-tracker/pkg/catalog"

	// Matching Workers (2)
	gm "scholarship-tracker/internal/workers/matching/generate-matches"
	pm "scholarship-tracker/internal/workers/matching/persist-matches"

	// Search Workers (1)
	is "scholarship-tracker/internal/workers/search/index-scholarships"

	// Notification Workers (1)
	sdr "scholarship-tracker/internal/workers/notifications/send-deadline-reminders"

	// Document Workers (1)
	ru "scholarship-tracker/internal/workers/documents/reconcile-uploads"
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

	zapLog.Info("Starting worker manager...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init backing services with retry ---
	zeebe, err := bootstrap.Zeebe(cfg.Camunda, zapLog)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}

	pg, err := bootstrap.Postgres(ctx, cfg.Database.Postgres, zapLog)
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	esClient, err := bootstrap.Elasticsearch(cfg.Database.Elasticsearch, zapLog)
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}

	redis, err := bootstrap.Redis(ctx, cfg.Database.Redis, zapLog)
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()

	objects, err := bootstrap.Minio(ctx, cfg.Storage.Minio, zapLog)
	if err != nil {
		zapLog.Fatal("minio failed after retries", zap.Error(err))
	}

	ses, sns, err := bootstrap.Messaging(ctx, cfg, zapLog)
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
	searchSvc := search.NewService(esClient, log)
	if err := searchSvc.EnsureIndex(ctx); err != nil {
		zapLog.Fatal("search index setup failed", zap.Error(err))
	}

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

	reminder := notifications.NewReminder(notifications.Config{
		FromEmail:    cfg.Integrations.AWS.SES.FromEmail,
		SMSSenderID:  cfg.Integrations.AWS.SNS.DefaultSMSSenderID,
		WindowDays:   cfg.Notifications.Reminders.WindowDays,
		EmailEnabled: cfg.Notifications.Reminders.Email,
		SMSEnabled:   cfg.Notifications.Reminders.SMS,
	}, profileSvc, taskSvc, ses, sns, log)

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

	zapLog.Info("All domain services initialized")

	// --- START: Register Workers ---
	registry := camunda.NewRegistry(zeebe.GetClient(), log)

	// --- 1. Matching Workers (2) ---
	registry.Start(gm.TaskType, config.GetWorkerConfig(cfg, gm.TaskType),
		gm.NewHandler(gm.LoadConfig(cfg), pipeline, log).Handle)
	registry.Start(pm.TaskType, config.GetWorkerConfig(cfg, pm.TaskType),
		pm.NewHandler(pm.LoadConfig(cfg), scholarshipSvc, log).Handle)

	// --- 2. Search Workers (1) ---
	registry.Start(is.TaskType, config.GetWorkerConfig(cfg, is.TaskType),
		is.NewHandler(is.LoadConfig(cfg), scholarshipSvc, searchSvc, log).Handle)

	// --- 3. Notification Workers (1) ---
	registry.Start(sdr.TaskType, config.GetWorkerConfig(cfg, sdr.TaskType),
		sdr.NewHandler(sdr.LoadConfig(cfg), reminder, log).Handle)

	// --- 4. Document Workers (1) ---
	registry.Start(ru.TaskType, config.GetWorkerConfig(cfg, ru.TaskType),
		ru.NewHandler(ru.LoadConfig(cfg), docManager, log).Handle)

	zapLog.Info("Workers registered", zap.Strings("running", registry.Running()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ready", http.StatusOK
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status, code = "zeebe unavailable", http.StatusServiceUnavailable
		} else if err := pg.Ping(r.Context()); err != nil {
			status, code = "postgres unavailable", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]string{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	metricsServer := &http.Server{Addr: cfg.Server.MetricsAddress, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	registry.Stop(shutdownCtx)
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
