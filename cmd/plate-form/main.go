package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"licence-plate-checker/internal/client"
	"licence-plate-checker/internal/config"
	"licence-plate-checker/internal/db"
	"licence-plate-checker/internal/form"
	"licence-plate-checker/internal/logger"
	"licence-plate-checker/internal/repository"
	"licence-plate-checker/internal/service"
	"licence-plate-checker/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	appLogger := logger.NewWithLevel(cfg.Environment, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := []form.Option{
		form.WithLogger(appLogger),
		form.WithFocuser(form.FocuserFunc(func(id string) {
			appLogger.Debug().Str("field", id).Msg("focus moved")
		})),
	}
	if cfg.HistoryEnabled() {
		database, err := db.New(cfg, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect database")
		}
		history := service.NewHistoryService(repository.NewAttemptRepository(database), cfg.Form.HistoryLimit)
		opts = append(opts, form.WithRecorder(history))
	}

	ctrl := form.NewController(cfg.Form.Variant, client.NewValidatorClient(cfg), opts...)
	defer ctrl.Close()

	session := terminal.NewSession(ctrl, terminal.NewSurveyDriver(), appLogger)
	if err := session.Run(ctx); err != nil && !errors.Is(err, terminal.ErrAborted) {
		appLogger.Error().Err(err).Msg("form session failed")
		os.Exit(1)
	}
}
