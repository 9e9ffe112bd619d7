// Package app provides the dependency injection container that assembles the
// secret store for the CLI commands and the API server.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	authService "github.com/allisson/bluegreen/internal/auth/service"
	"github.com/allisson/bluegreen/internal/config"
	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
	cryptoUseCase "github.com/allisson/bluegreen/internal/crypto/usecase"
	"github.com/allisson/bluegreen/internal/http"
	"github.com/allisson/bluegreen/internal/metrics"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
)

// Container holds all application dependencies. Components are created on
// first access and memoized, including their initialization error.
type Container struct {
	config *config.Config

	// Infrastructure
	logger      *slog.Logger
	mongoClient *mongo.Client
	db          *sql.DB
	pinger      http.Pinger

	// Repositories
	keyVaultRepo cryptoService.KeyVaultRepository
	secretRepo   secretsUseCase.SecretRepository
	metadataRepo secretsUseCase.MetadataRepository

	// Crypto
	aeadManager cryptoService.AEADManager
	keyManager  cryptoService.KeyManager
	kmsService  cryptoService.KMSService
	kmsKeeper   cryptoDomain.KMSKeeper
	blueKey     *cryptoDomain.MasterKey
	greenKey    *cryptoDomain.MasterKey

	// Use cases
	vaultUseCase  cryptoUseCase.VaultUseCase
	secretUseCase secretsUseCase.SecretUseCase

	// Servers and metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	tokenService    authService.TokenService
	httpServer      *http.Server
	metricsServer   *http.MetricsServer

	mu                  sync.Mutex
	loggerInit          sync.Once
	storesInit          sync.Once
	aeadManagerInit     sync.Once
	keyManagerInit      sync.Once
	kmsServiceInit      sync.Once
	kmsKeeperInit       sync.Once
	masterKeysInit      sync.Once
	vaultUseCaseInit    sync.Once
	secretUseCaseInit   sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	tokenServiceInit    sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// initOnce runs fn on the first call for name and returns its error on every call.
func (c *Container) initOnce(once *sync.Once, name string, fn func() error) error {
	once.Do(func() {
		if err := fn(); err != nil {
			c.mu.Lock()
			c.initErrors[name] = err
			c.mu.Unlock()
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger. It writes to stderr so command output on
// stdout stays parseable.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Pinger returns the store health check used by /ready.
func (c *Container) Pinger() (http.Pinger, error) {
	if err := c.initOnce(&c.storesInit, "stores", c.initStores); err != nil {
		return nil, err
	}
	return c.pinger, nil
}

// MetricsProvider returns the Prometheus-backed provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.initOnce(&c.metricsProviderInit, "metricsProvider", func() error {
		if !c.config.MetricsEnabled {
			return nil
		}
		provider, err := metrics.NewProvider()
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		c.metricsProvider = provider
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the use case instruments, a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.initOnce(&c.businessMetricsInit, "businessMetrics", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		c.businessMetrics = bm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// Shutdown releases every initialized resource. Servers are stopped by
// their runner, not here.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.kmsKeeper != nil {
		if err := c.kmsKeeper.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	if c.mongoClient != nil {
		if err := c.mongoClient.Disconnect(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("mongodb disconnect: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// mongoPinger checks the primary, the only member the store writes to.
type mongoPinger struct {
	client *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}

type sqlPinger struct {
	db *sql.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// memoryPinger is always ready.
type memoryPinger struct{}

func (memoryPinger) Ping(ctx context.Context) error {
	return nil
}
