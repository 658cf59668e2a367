package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/classline/live-api/config"
	"github.com/classline/live-api/internal/adapters/postgres"
	redisadapter "github.com/classline/live-api/internal/adapters/redis"
	"github.com/classline/live-api/internal/adapters/sfuhttp"
	"github.com/classline/live-api/internal/domain/room"
	"github.com/classline/live-api/internal/ports"
	"github.com/classline/live-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions   *service.ClassSessionService
	Tokens     *service.TokenService
	Webhooks   *service.WebhookService
	Reconciler *service.ReconcilerService
	Provider   ports.IdentityProvider
	Registry   ports.ClassRegistry
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	Pool        *pgxpool.Pool
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the adapters and services the broker runs on.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps and config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	sfu := sfuhttp.NewClient(sfuhttp.ClientOptions{
		Endpoint:  cfg.SFU.Endpoint,
		APIKey:    cfg.SFU.APIKey,
		APISecret: cfg.SFU.APISecret,
		Logger:    logger,
	})
	registry := postgres.NewClassRepo(deps.Pool)
	joins := redisadapter.NewJoinStore(deps.RedisClient)

	rooms := service.NewRoomService(service.RoomServiceOptions{SFU: sfu, Logger: logger})
	participants := service.NewParticipantService(service.ParticipantServiceOptions{SFU: sfu, Logger: logger})
	issuer := service.NewTokenIssuer(service.TokenIssuerOptions{
		APIKey:    cfg.SFU.APIKey,
		APISecret: cfg.SFU.APISecret,
		TTL:       cfg.SFU.CapabilityTokenTTL,
	})
	authz := service.NewAuthzService(service.AuthzServiceOptions{Rooms: rooms, Logger: logger})

	sessions := service.NewClassSessionService(service.ClassSessionServiceOptions{
		Registry:     registry,
		Joins:        joins,
		Rooms:        rooms,
		Participants: participants,
		Tokens:       issuer,
		Authz:        authz,
		Limits: room.Limits{
			MaxParticipants: cfg.SFU.RoomMaxParticipants,
			EmptyTimeout:    cfg.SFU.RoomEmptyTimeout,
		},
		Logger: logger,
	})

	tokens := service.NewTokenService(service.TokenServiceOptions{
		Secret: []byte(cfg.Auth.SessionTokenSecret),
		TTL:    cfg.Auth.SessionTokenTTL,
	})

	webhooks := service.NewWebhookService(service.WebhookServiceOptions{
		Registry: registry,
		Joins:    joins,
		Logger:   logger,
	})

	reconciler, err := service.NewReconcilerService(service.ReconcilerServiceOptions{
		Registry: registry,
		Joins:    joins,
		Rooms:    rooms,
		Interval: cfg.Reconciler.Interval,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("build reconciler: %w", err)
	}

	provider := BuildIdentityProvider(AuthConfig{Auth: cfg.Auth, Logger: logger})

	return ServiceContainer{
		Sessions:   sessions,
		Tokens:     tokens,
		Webhooks:   webhooks,
		Reconciler: reconciler,
		Provider:   provider,
		Registry:   registry,
	}, nil
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// backgroundServiceHandle tracks a running background service.
type backgroundServiceHandle struct {
	name string
	done <-chan struct{}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// This function blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, len(enabledServices)+1)

	var httpServer *http.Server
	if enabledServices[config.ServiceModeHTTP] {
		httpServer = StartHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
	}

	var backgrounds []backgroundServiceHandle
	if enabledServices[config.ServiceModeReconciler] {
		done := make(chan struct{})
		go func() {
			defer close(done)
			if runErr := cfg.Services.Reconciler.Run(serviceCtx); runErr != nil {
				select {
				case errCh <- fmt.Errorf("reconciler failed: %w", runErr):
				case <-serviceCtx.Done():
				}
			}
		}()
		logger.InfoContext(serviceCtx, "background service started", "service", "reconciler")
		backgrounds = append(backgrounds, backgroundServiceHandle{name: "reconciler", done: done})
	}

	return waitForShutdown(shutdownConfig{
		ctx:         serviceCtx,
		cancel:      cancel,
		errCh:       errCh,
		httpServer:  httpServer,
		logger:      logger,
		backgrounds: backgrounds,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	ctx         context.Context
	cancel      context.CancelFunc
	errCh       <-chan error
	httpServer  *http.Server
	logger      *slog.Logger
	backgrounds []backgroundServiceHandle
}

// waitForShutdown waits for shutdown signal or service error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		cfg.cancel() // Cancel service context before waiting
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel() // Cancel service context before waiting
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop attempts to gracefully stop all services.
func gracefulStop(cfg shutdownConfig) error {
	if cfg.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
		defer cancel()

		if err := ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		}); err != nil {
			return err
		}
	}

	// Wait for background services to finish
	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}

	return nil
}

// waitForService waits for a service to finish with timeout.
func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info("background service stopped", "service", name)
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("background service did not stop in time", "service", name)
	}
}
