package main

import (
	"fmt"
	"os"

	"licence-plate-checker/internal/auth"
	"licence-plate-checker/internal/config"
	"licence-plate-checker/internal/db"
	httphandler "licence-plate-checker/internal/http"
	"licence-plate-checker/internal/http/middleware"
	"licence-plate-checker/internal/logger"
	"licence-plate-checker/internal/repository"
	"licence-plate-checker/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewWithLevel(cfg.Environment, cfg.LogLevel)

	var historyService *service.HistoryService
	if cfg.HistoryEnabled() {
		database, err := db.New(cfg, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("failed to connect database")
		}
		historyService = service.NewHistoryService(repository.NewAttemptRepository(database), cfg.Form.HistoryLimit)
	}

	var tokenParser *auth.Parser
	if cfg.Auth.AccessSecret != "" {
		tokenParser = auth.NewParser(cfg.Auth.AccessSecret)
	}

	proxy, err := httphandler.NewValidatorProxy(cfg.Validator, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to build validator proxy")
	}

	handler := httphandler.NewHandler(historyService, proxy, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, cfg.HTTP.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().
		Str("addr", addr).
		Str("validator", cfg.Validator.BaseURL).
		Bool("history", historyService != nil).
		Msg("starting plate dev server")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
