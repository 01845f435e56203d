package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/answerdesk/orchestrator/internal/activities"
	"github.com/answerdesk/orchestrator/internal/agents"
	"github.com/answerdesk/orchestrator/internal/columns"
	"github.com/answerdesk/orchestrator/internal/config"
	"github.com/answerdesk/orchestrator/internal/db"
	"github.com/answerdesk/orchestrator/internal/links"
	"github.com/answerdesk/orchestrator/internal/registry"
	temporallog "github.com/answerdesk/orchestrator/internal/temporal"
	"github.com/answerdesk/orchestrator/internal/tracing"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := tracing.Initialize(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
	}, logger); err != nil {
		logger.Warn("Failed to initialize tracing", zap.Error(err))
	}

	columns.SetLogger(logger)

	// Hot reload for the classifier keyword sets and any future config files.
	if dir := configDir(cfgPath); dir != "" {
		if w, err := config.NewWatcher(dir, logger); err == nil {
			w.OnChange("columns.yaml", func(string) {
				columns.Reload()
				logger.Info("Column keyword configuration reloaded")
			})
			w.Start(ctx)
		} else {
			logger.Warn("Config watcher unavailable", zap.Error(err))
		}
	}

	// Prometheus endpoint.
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := ":" + strconv.Itoa(cfg.Service.MetricsPort)
		logger.Info("Metrics server listening", zap.String("address", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// Optional Redis cache for link probes.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis unreachable, probe caching disabled", zap.Error(err))
			redisClient = nil
		}
		pingCancel()
	}

	// Optional Postgres outcome store.
	var store *db.Store
	if cfg.Database.Enabled {
		store, err = db.NewStore(cfg.Database.Config, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database store", zap.Error(err))
		}
		defer store.Close()
	} else {
		logger.Info("Outcome persistence disabled")
	}

	backend, err := buildAgentBackend(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize agent backend", zap.Error(err))
	}

	prober := links.NewHTTPProber(cfg.Links, redisClient, logger)
	validator := links.NewValidator(prober, logger)

	acts := activities.NewActivities(
		backend.generator,
		backend.checker,
		backend.classifier,
		validator,
		store,
		logger,
	)

	// Wait for Temporal, then dial with retry.
	host := cfg.Temporal.HostPort
	for i := 1; i <= 60; i++ {
		c, err := net.DialTimeout("tcp", host, 2*time.Second)
		if err == nil {
			_ = c.Close()
			break
		}
		logger.Warn("Waiting for Temporal TCP endpoint", zap.String("host", host), zap.Int("attempt", i))
		time.Sleep(1 * time.Second)
	}

	var tClient client.Client
	for attempt := 1; ; attempt++ {
		tClient, err = client.Dial(client.Options{
			HostPort:  host,
			Namespace: cfg.Temporal.Namespace,
			Logger:    temporallog.NewZapAdapter(logger),
		})
		if err == nil {
			break
		}
		delay := time.Duration(attempt) * time.Second
		if delay > 15*time.Second {
			delay = 15 * time.Second
		}
		logger.Warn("Temporal not ready, retrying",
			zap.Int("attempt", attempt),
			zap.String("host", host),
			zap.Error(err),
		)
		time.Sleep(delay)
	}
	defer tClient.Close()

	w := worker.New(tClient, cfg.Temporal.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     cfg.Temporal.ActivitySlots,
		MaxConcurrentWorkflowTaskExecutionSize: cfg.Temporal.WorkflowSlots,
	})
	reg := registry.New(acts, logger)
	reg.RegisterWorkflows(w)
	reg.RegisterActivities(w)

	go func() {
		logger.Info("Temporal worker started", zap.String("queue", cfg.Temporal.TaskQueue))
		if err := w.Run(worker.InterruptCh()); err != nil {
			logger.Error("Temporal worker exited with error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down worker")
	w.Stop()
}

// agentBackend holds the three collaborator roles, possibly served by the
// same client.
type agentBackend struct {
	generator  agents.AnswerGenerator
	checker    agents.AnswerChecker
	classifier agents.ColumnClassifierBackend
}

func buildAgentBackend(cfg *config.Config, logger *zap.Logger) (agentBackend, error) {
	switch cfg.Agents.Backend {
	case "openai":
		b, err := agents.NewOpenAIBackend(cfg.Agents.OpenAI, logger)
		if err != nil {
			return agentBackend{}, err
		}
		logger.Info("Using OpenAI agent backend", zap.String("model", cfg.Agents.OpenAI.Model))
		return agentBackend{generator: b, checker: b, classifier: b}, nil
	default:
		c := agents.NewClient(cfg.Agents.Service, logger)
		logger.Info("Using agent service backend", zap.String("base_url", cfg.Agents.Service.BaseURL))
		return agentBackend{generator: c, checker: c, classifier: c}, nil
	}
}

// configDir resolves the directory to watch for config changes.
func configDir(cfgPath string) string {
	if cfgPath == "" {
		cfgPath = config.DefaultPath
	}
	dir := filepath.Dir(cfgPath)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return ""
	}
	return dir
}
