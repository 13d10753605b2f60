package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"smart-tasks/internal/config"
	"smart-tasks/internal/greeter"
	"smart-tasks/internal/logging"
	"smart-tasks/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("failed to read config")
	}
	logger, err = logging.ForEnv(logger, cfg.Env, os.Stdout)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("failed to init logger")
	}
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := greeter.NewRouter(logger, cfg.Greeter.Greeting)
	if err = server.Run(ctx, logger, cfg.HTTP, router); err != nil {
		logger.Fatal().
			Err(err).
			Msg("greeter stopped with error")
	}
}
