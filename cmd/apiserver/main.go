// Command apiserver runs the CaseClock REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/socialhomes/CaseClock/internal/config"
	"github.com/socialhomes/CaseClock/internal/infrastructure/monitoring/logging"
	httpserver "github.com/socialhomes/CaseClock/internal/interfaces/http"
	"github.com/socialhomes/CaseClock/internal/interfaces/http/handlers"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.New(logging.Options{
		Level:            cfg.Log.Level,
		Format:           cfg.Log.Format,
		OutputPaths:      []string{cfg.Log.Output},
		EnableCaller:     cfg.Log.EnableCaller,
		EnableStacktrace: cfg.Log.EnableStacktrace,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logging: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)

	logger.Info("starting caseclock api server",
		logging.Int("port", cfg.Server.Port),
	)

	ctx := context.Background()
	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", logging.Err(err))
	}
	defer app.Close()

	router := httpserver.NewRouter(httpserver.RouterConfig{
		CaseHandler: handlers.NewCaseHandler(app.Service),
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": app.Pool,
			"redis":    app.Redis,
		}),
		Logger:           logger,
		Metrics:          app.Metrics,
		MetricsCollector: app.Collector,
		Mode:             cfg.Server.Mode,
	})
	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", logging.Err(err))
		}
	}

	if err := server.Stop(ctx); err != nil {
		logger.Error("shutdown failed", logging.Err(err))
	}
	logger.Info("stopped")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}
