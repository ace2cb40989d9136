// Package app wires configuration, storage, the client service and both
// front-ends into one runnable process.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/censudex/clients-service/internal/api"
	"github.com/censudex/clients-service/internal/api/rpc"
	"github.com/censudex/clients-service/internal/core/ports"
	"github.com/censudex/clients-service/internal/core/service"
	"github.com/censudex/clients-service/internal/core/validation"
	"github.com/censudex/clients-service/internal/infrastructure/db/memory"
	mongodb "github.com/censudex/clients-service/internal/infrastructure/db/mongo"
	"github.com/censudex/clients-service/internal/infrastructure/db/postgres"
	rediscache "github.com/censudex/clients-service/internal/infrastructure/db/redis"
	"github.com/censudex/clients-service/internal/infrastructure/security"
	"github.com/censudex/clients-service/internal/pkg/config"
)

const connectTimeout = 10 * time.Second

type App struct {
	cfg       *config.Config
	logger    zerolog.Logger
	validator *validation.Validator
	service   *service.ClientService
	health    map[string]ports.Pinger
	closers   []func() error
}

// New connects to the configured storage (and cache, when enabled) and builds
// the client service. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		health: make(map[string]ports.Pinger),
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		client, err := rediscache.Connect(ctx, rediscache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  connectTimeout,
		})
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.health["redis"] = rediscache.NewPinger(client)
		repo = rediscache.NewCachedClientRepository(repo, client, cfg.Redis.CacheTTL, logger)
		logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("client cache enabled")
	}

	a.validator = validation.New(validation.Options{EmailDomain: cfg.EmailDomain})
	a.service = service.NewClientService(repo, security.NewBcryptCodec(cfg.BcryptCost), a.validator, logger)
	return a, nil
}

func (a *App) openRepository(ctx context.Context) (ports.ClientRepository, error) {
	switch a.cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.Config{
			DSN:          a.cfg.Postgres.DSN(),
			MaxOpenConns: a.cfg.Postgres.MaxConns,
			Timeout:      connectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if a.cfg.Postgres.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				return nil, fmt.Errorf("postgres: %w", err)
			}
		}
		repo := postgres.NewClientRepository(db)
		a.health["postgres"] = repo
		a.logger.Info().Str("host", a.cfg.Postgres.Host).Msg("using postgres storage")
		return repo, nil

	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
			AppName:  api.ServiceName,
			Timeout:  connectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		a.closers = append(a.closers, func() error { return mongodb.Disconnect(client) })
		repo := mongodb.NewClientRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("mongo: %w", err)
		}
		a.health["mongodb"] = repo
		a.logger.Info().Str("database", a.cfg.Mongo.Database).Msg("using mongo storage")
		return repo, nil

	default:
		a.logger.Warn().Msg("using in-memory storage; data is lost on exit")
		repo := memory.NewClientRepository()
		a.health["memory"] = repo
		return repo, nil
	}
}

// Service returns the shared client service.
func (a *App) Service() ports.ClientService {
	return a.service
}

// Run serves HTTP and gRPC until ctx is cancelled or either server fails.
func (a *App) Run(ctx context.Context) error {
	router := api.NewRouter(api.RouterDeps{
		Service:   a.service,
		Validator: a.validator,
		Health:    a.health,
		JWTSecret: a.cfg.JWTSecret,
		Logger:    a.logger,

		HideHealthErrors: a.cfg.IsProduction(),
	})
	httpSrv := &http.Server{
		Addr:              net.JoinHostPort("", a.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcSrv := rpc.NewServer(rpc.Config{
		Address:   net.JoinHostPort("", a.cfg.GRPCPort),
		JWTSecret: a.cfg.JWTSecret,
	}, a.service, a.logger)

	if a.cfg.JWTSecret == "" {
		a.logger.Warn().Msg("JWT_SECRET not set; client endpoints are unauthenticated")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().Str("address", httpSrv.Addr).Msg("starting HTTP server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := grpcSrv.Run(gctx); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Close releases storage and cache connections in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
