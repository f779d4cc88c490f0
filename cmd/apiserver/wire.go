package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

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

// Application bundles the wired service and the infrastructure handles the
// server needs for probes and shutdown.
type Application struct {
	Service   worklist.Service
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Publisher *kafka.BreachPublisher
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector
}

// buildApplication wires configuration into a running service: domain rule
// catalogue, SLA evaluator, countdown projector and escalation registry over
// PostgreSQL, Redis and Kafka.
func buildApplication(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Application, error) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "caseclock",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, err
	}
	metrics := prometheus.NewAppMetrics(collector)

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	store := postgres.NewCaseStore(pool, logger)

	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	cache := redis.NewCache(redisClient, logger)

	publisher, err := kafka.NewBreachPublisher(cfg.Kafka, logger)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, err
	}

	catalogue := deadline.NewCatalogue(cfg.Rules)
	evaluator := sla.NewEvaluator(cfg.Thresholds, catalogue)
	projector := countdown.NewProjector(catalogue, evaluator)
	pipelines := escalation.DefaultRegistry()
	pipelines.ApplyDwell(cfg.Escalation.DefaultDwell, cfg.Escalation.StageDwell)

	service := worklist.NewService(
		catalogue, evaluator, projector, pipelines,
		store, cache, publisher, metrics,
		logging.NewKV(logger.Named("worklist")),
		worklist.Config{
			AssessmentTTL:  cfg.Worklist.AssessmentTTL,
			BreachDedupTTL: cfg.Worklist.BreachDedupTTL,
		},
	)

	return &Application{
		Service:   service,
		Pool:      pool,
		Redis:     redisClient,
		Publisher: publisher,
		Metrics:   metrics,
		Collector: collector,
	}, nil
}

// Close releases every infrastructure handle.
func (a *Application) Close() {
	if a.Publisher != nil {
		_ = a.Publisher.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
