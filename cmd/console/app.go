package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AchilleasB/pet-care/console-service/internal/adapters/auth"
	"github.com/AchilleasB/pet-care/console-service/internal/adapters/handler"
	"github.com/AchilleasB/pet-care/console-service/internal/adapters/messaging"
	"github.com/AchilleasB/pet-care/console-service/internal/adapters/metrics"
	"github.com/AchilleasB/pet-care/console-service/internal/adapters/middleware"
	"github.com/AchilleasB/pet-care/console-service/internal/adapters/remote"
	"github.com/AchilleasB/pet-care/console-service/internal/adapters/storage"
	"github.com/AchilleasB/pet-care/console-service/internal/config"
	"github.com/AchilleasB/pet-care/console-service/internal/core/ports"
	"github.com/AchilleasB/pet-care/console-service/internal/core/services"
)

// app holds every wired component of the console core.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger

	kv       ports.KeyValueStore
	remote   *remote.Client
	broker   *messaging.RabbitMQBroker
	recorder *metrics.Recorder

	session       *services.SessionStore
	policy        *services.Policy
	resolver      *services.ViewResolver
	auth          ports.AuthService
	appointments  *services.AppointmentMachine
	prescriptions *services.PrescriptionMachine
	vaccinations  *services.VaccinationMachine

	breakers map[string]handler.BreakerProbe
	closers  []func() error
}

// sessionCredentials breaks the construction cycle between the remote client,
// which needs the session's credential, and the session, which loads its
// caches through the client.
type sessionCredentials struct {
	store *services.SessionStore
}

func (c *sessionCredentials) BearerToken() string {
	if c.store == nil {
		return ""
	}
	return c.store.BearerToken()
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		recorder: metrics.NewRecorder(),
		breakers: make(map[string]handler.BreakerProbe),
	}

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	creds := &sessionCredentials{}
	a.remote = remote.NewClient(cfg.RemoteAPIURL, cfg.RemoteTimeout, creds, logger)
	a.breakers["remote_api"] = a.remote.BreakerState

	var publisher ports.StatusEventPublisher
	if cfg.RabbitMQURL != "" {
		broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.StatusQueueName)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to rabbitmq: %w", err)
		}
		a.broker = broker
		publisher = broker
		a.breakers["rabbitmq"] = broker.BreakerState
		a.closers = append(a.closers, broker.Close)
		logger.Info().Str("queue", cfg.StatusQueueName).Msg("Publishing status events")
	}

	verifier := auth.NewTokenVerifier(cfg.JWTPublicKey)
	a.session = services.NewSessionStore(a.kv, a.remote, verifier, a.recorder, logger)
	creds.store = a.session

	deps := services.MachineDeps{
		Session:   a.session,
		Publisher: publisher,
		Metrics:   a.recorder,
		Logger:    logger,
	}
	a.appointments = services.NewAppointmentMachine(a.remote, deps)
	a.prescriptions = services.NewPrescriptionMachine(a.remote, deps)
	a.vaccinations = services.NewVaccinationMachine(a.remote, deps, cfg.VaccinationLookaheadDays,
		services.VaccinationSource(cfg.VaccinationStatusSource))
	a.session.RegisterCache(a.appointments)
	a.session.RegisterCache(a.prescriptions)
	a.session.RegisterCache(a.vaccinations)

	a.policy = services.NewPolicy(a.session, a.recorder)
	a.resolver = services.NewViewResolver()
	a.auth = services.NewAuthService(a.remote, a.session, a.recorder, logger)
	return a, nil
}

func (a *app) openStore(ctx context.Context) error {
	switch a.cfg.SessionBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddress,
			Password: a.cfg.RedisPassword,
			DB:       0,
		})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		store := storage.NewRedisStore(client, a.cfg.SessionKeyPrefix, 0)
		a.kv = store
		a.breakers["redis"] = store.BreakerState
		a.logger.Info().Str("address", a.cfg.RedisAddress).Msg("Session stored in Redis")

	case config.BackendPostgres:
		db, err := sql.Open("postgres", a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		store := storage.NewSQLStore(db, a.cfg.SessionKeyPrefix)
		if err := store.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure session schema: %w", err)
		}
		a.kv = store
		a.breakers["postgres"] = store.BreakerState
		a.logger.Info().Msg("Session stored in PostgreSQL")

	default:
		a.kv = storage.NewMemoryStore()
		a.logger.Warn().Msg("Session stored in memory; it will not survive a restart")
	}
	return nil
}

func (a *app) routes() handler.RouterConfig {
	return handler.RouterConfig{
		Session:      handler.NewSessionHandler(a.auth, a.session, a.policy, a.resolver),
		Views:        handler.NewViewHandler(a.session, a.policy, a.resolver),
		Appointments: handler.NewAppointmentHandler(a.appointments),
		Records:      handler.NewRecordHandler(a.session, a.policy, a.prescriptions, a.vaccinations),
		Health:       handler.NewHealthHandler(a.kv, a.breakers),
		Guard:        middleware.NewSessionGuard(a.session, a.logger),
		Metrics:      a.recorder.Handler(),
		CORSOrigins:  a.cfg.CORSOrigins,
		Logger:       a.logger,
	}
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close resource")
		}
	}
	a.closers = nil
}
