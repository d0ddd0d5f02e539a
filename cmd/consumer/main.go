package main

import (
	"go-webtrack/internal/app"
	"go-webtrack/internal/config"
	"go-webtrack/internal/shared/apperror"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg := config.Load()
	if err := cfg.ValidateMessaging(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	apperror.Init()

	if err := app.RunConsumer(cfg); err != nil {
		logger.Fatal("run consumer failed", zap.Error(err))
	}
}
