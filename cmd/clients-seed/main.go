// Command clients-seed loads the sample clients into the configured storage.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/censudex/clients-service/internal/app"
	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/pkg/config"
	"github.com/censudex/clients-service/internal/pkg/token"
	"github.com/censudex/clients-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		l := logger.Init(logger.Options{Service: "clients-seed", Pretty: true})
		l.Error().Err(err).Msg("seed failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	log := logger.Init(logger.Options{Service: "clients-seed", Level: cfg.LogLevel, Pretty: true})

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	created, err := app.Seed(ctx, a.Service(), log)
	if err != nil {
		return err
	}
	log.Info().Int("created", created).Msg("seed complete")

	if cfg.JWTSecret == "" {
		return nil
	}
	admin, err := a.Service().VerifyCredentials(ctx, ports.VerifyCredentialsInput{Username: "admin", Password: "Admin123!"})
	if err != nil {
		return fmt.Errorf("verify seeded admin: %w", err)
	}
	signed, err := token.Issue(cfg.JWTSecret, admin.ID, admin.Username, admin.Role, 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Println(signed)
	return nil
}
