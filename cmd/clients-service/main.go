// @title        Censudex Clients Service
// @version      1.0
// @description  Client account lifecycle: registration, lookup, partial update, password change, soft delete and credential verification.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/censudex/clients-service/internal/api"
	"github.com/censudex/clients-service/internal/app"
	"github.com/censudex/clients-service/internal/pkg/config"
	"github.com/censudex/clients-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{Service: api.ServiceName})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Service: api.ServiceName,
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
	})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close resources")
		}
	}()

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		stop()
		_ = a.Close()
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}
