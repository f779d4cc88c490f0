// Command worker runs the scheduled compliance sweep: every scan interval
// it assesses the open caseload, publishes breach events and records
// metrics.  Deploy alongside the apiserver; both share the same stores.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/socialhomes/CaseClock/internal/application/worklist"
	"github.com/socialhomes/CaseClock/internal/config"
	"github.com/socialhomes/CaseClock/internal/domain/countdown"
	"github.com/socialhomes/CaseClock/internal/domain/deadline"
	"github.com/socialhomes/CaseClock/internal/domain/escalation"
	"github.com/socialhomes/CaseClock/internal/domain/sla"
	"github.com/socialhomes/CaseClock/internal/infrastructure/database/postgres"
	"github.com/socialhomes/CaseClock/internal/infrastructure/database/redis"
	"github.com/socialhomes/CaseClock/internal/infrastructure/messaging/kafka"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/prometheus"
)

const (
	defaultConfigPath = "configs/config.yaml"
	defaultHealthPort = 8081
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	healthPort := flag.Int("health-port", defaultHealthPort, "port for health and metrics endpoints")
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: []string{cfg.Log.Output},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logging: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "caseclock",
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		logger.Fatal("metrics init failed", logging.Err(err))
	}
	metrics := prometheus.NewAppMetrics(collector)

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("postgres init failed", logging.Err(err))
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("schema init failed", logging.Err(err))
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis init failed", logging.Err(err))
	}
	defer redisClient.Close()

	publisher, err := kafka.NewBreachPublisher(cfg.Kafka, logger)
	if err != nil {
		logger.Fatal("kafka init failed", logging.Err(err))
	}
	defer publisher.Close()

	catalogue := deadline.NewCatalogue(cfg.Rules)
	evaluator := sla.NewEvaluator(cfg.Thresholds, catalogue)
	projector := countdown.NewProjector(catalogue, evaluator)
	pipelines := escalation.DefaultRegistry()
	pipelines.ApplyDwell(cfg.Escalation.DefaultDwell, cfg.Escalation.StageDwell)

	service := worklist.NewService(
		catalogue, evaluator, projector, pipelines,
		postgres.NewCaseStore(pool, logger),
		redis.NewCache(redisClient, logger),
		publisher, metrics,
		logging.NewKV(logger),
		worklist.Config{
			AssessmentTTL:  cfg.Worklist.AssessmentTTL,
			BreachDedupTTL: cfg.Worklist.BreachDedupTTL,
		},
	)

	if *once {
		if err := runSweep(ctx, service, cfg.Worker.ScanTimeout, logger); err != nil {
			os.Exit(1)
		}
		return
	}

	go serveHealth(*healthPort, collector, logger)

	logger.Info("sweep loop starting",
		logging.Duration("interval", cfg.Worker.ScanInterval),
		logging.Duration("timeout", cfg.Worker.ScanTimeout),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Worker.ScanInterval)
	defer ticker.Stop()

	// First sweep runs immediately; the ticker paces the rest.
	_ = runSweep(ctx, service, cfg.Worker.ScanTimeout, logger)
	for {
		select {
		case <-ticker.C:
			_ = runSweep(ctx, service, cfg.Worker.ScanTimeout, logger)
		case sig := <-quit:
			logger.Info("signal received", logging.String("signal", sig.String()))
			cancel()
			return
		}
	}
}

// runSweep executes one bounded scan.
func runSweep(ctx context.Context, service worklist.Service, timeout time.Duration, logger logging.Logger) error {
	sweepCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, err := service.Scan(sweepCtx)
	if err != nil {
		logger.Error("sweep failed", logging.Err(err))
		return err
	}
	logger.Info("sweep complete",
		logging.Int("total", report.Total),
		logging.Int("compliant", report.Compliant),
		logging.Int("at_risk", report.AtRisk),
		logging.Int("breached", report.Breached),
		logging.Int("excluded", report.Excluded),
		logging.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
	)
	return nil
}

// serveHealth exposes liveness and metrics for the scheduler's probes.
func serveHealth(port int, collector prometheus.MetricsCollector, logger logging.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", collector.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info("health endpoints listening", logging.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("health listener stopped", logging.Err(err))
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
