package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	xlog "github.com/openmining/omf/internal/log"
	"github.com/openmining/omf/pkg/omf/api"
	"github.com/openmining/omf/pkg/omf/config"
)

// ServerEnv carries the process-level settings read from the environment.
// Service wiring (database, storage, key layout) is handled by the config
// package via the same variables.
type ServerEnv struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
}

func main() {
	portFlag := flag.String("port", "", "HTTP port (overrides PORT)")
	flag.Parse()

	var env ServerEnv
	if err := cleanenv.ReadEnv(&env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}
	if *portFlag != "" {
		env.Port = *portFlag
	}

	xlog.Configure(xlog.Config{Level: env.LogLevel, Service: "omf-server"})
	logger := xlog.Base()
	eventLogger := xlog.WithComponent("events")

	cfg, err := config.Load(
		config.WithEnv(""),
		config.WithPort(env.Port),
		config.WithEnvironment(env.Environment),
		config.WithEventLogger(&eventLogger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	svc, err := cfg.BuildService()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build service")
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("environment", cfg.Environment).
			Str("database", cfg.DatabaseType).
			Str("storage", cfg.DefaultStorageBackend).
			Msg("catalog server listening")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("forced shutdown")
	}

	logger.Info().Msg("server stopped")
}
