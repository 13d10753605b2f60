package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"smart-tasks/internal/config"
	"smart-tasks/internal/httpapi"
	"smart-tasks/internal/logging"
	"smart-tasks/internal/notify"
	"smart-tasks/internal/repository"
	"smart-tasks/internal/server"
	"smart-tasks/internal/service"
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
	logger.Info().
		Str("env", cfg.Env).
		Msg("read config")

	db, err := repository.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("failed to init task store")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	taskSvc := service.NewTaskService(logger, taskRepo)
	reportSvc := service.NewReportService(taskSvc)

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("failed to init notifier")
	}

	scheduler := service.NewSchedulerService(time.Local, logger)
	scheduled, err := scheduleReports(cfg.Report, scheduler, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		text, err := reportSvc.Summary(jobCtx, time.Now())
		if err != nil {
			logger.Error().
				Err(err).
				Msg("failed to build summary")
			return
		}
		if err := notifier.Notify(jobCtx, text); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().
				Err(err).
				Msg("failed to send summary")
		}
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Msg("failed to schedule reports")
	}
	if scheduled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Options{
		Logger:         logger,
		Tasks:          taskSvc,
		StrictNotFound: cfg.Tasks.StrictNotFound,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
	})

	if err = server.Run(ctx, logger, cfg.HTTP, router); err != nil {
		logger.Error().
			Err(err).
			Msg("task service stopped with error")
		return
	}
	logger.Info().Msg("shutdown complete")
}

func newNotifier(cfg *config.Config, logger zerolog.Logger) (notify.Notifier, error) {
	if cfg.TelegramEnabled() {
		return notify.NewTelegramNotifier(cfg.Report.TelegramToken, cfg.Report.TelegramChatID, logger)
	}
	return notify.NewLogNotifier(logger), nil
}

// scheduleReports registers the summary job. A daily time wins over the
// interval; neither set means no reports.
func scheduleReports(cfg config.ReportConfig, scheduler *service.SchedulerService, job func()) (bool, error) {
	switch {
	case cfg.DailyAt != "":
		_, err := scheduler.ScheduleDaily(cfg.DailyAt, job)
		return err == nil, err
	case cfg.Interval > 0:
		_, err := scheduler.ScheduleInterval(cfg.Interval, job)
		return err == nil, err
	default:
		return false, nil
	}
}
