package app

import (
	"context"
	"fmt"
	"time"

	authService "github.com/allisson/bluegreen/internal/auth/service"
	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	"github.com/allisson/bluegreen/internal/http"
	secretsHTTP "github.com/allisson/bluegreen/internal/secrets/http"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
)

// SecretUseCase returns the blue/green secret use case, wrapped with metrics
// when they are enabled.
func (c *Container) SecretUseCase(ctx context.Context) (secretsUseCase.SecretUseCase, error) {
	err := c.initOnce(&c.secretUseCaseInit, "secretUseCase", func() error {
		useCase, err := c.initSecretUseCase(ctx)
		if err != nil {
			return err
		}
		c.secretUseCase = useCase
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.secretUseCase, nil
}

func (c *Container) initSecretUseCase(ctx context.Context) (secretsUseCase.SecretUseCase, error) {
	blueKey, greenKey, err := c.MasterKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load master keys: %w", err)
	}

	keyVaultRepo, err := c.KeyVaultRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key vault repository for secret use case: %w", err)
	}
	secretRepo, err := c.SecretRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret repository for secret use case: %w", err)
	}
	metadataRepo, err := c.MetadataRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata repository for secret use case: %w", err)
	}
	vaultUseCase, err := c.VaultUseCase()
	if err != nil {
		return nil, err
	}

	factory := secretsUseCase.NewLocalProviderFactory(
		keyVaultRepo,
		c.config.MongoKeyVaultDatabase,
		c.KeyManager(),
		c.AEADManager(),
	)
	bindings, err := secretsUseCase.NewBindings(blueKey, greenKey, factory)
	if err != nil {
		return nil, err
	}

	useCase := secretsUseCase.NewSecretUseCase(bindings, secretRepo, metadataRepo, vaultUseCase)

	if !c.config.MetricsEnabled {
		return useCase, nil
	}
	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}
	return secretsUseCase.NewSecretUseCaseWithMetrics(useCase, businessMetrics), nil
}

// DefaultAlgorithm returns the configured algorithm for writes that name none.
func (c *Container) DefaultAlgorithm() (cryptoDomain.Algorithm, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.DefaultAlgorithm)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrConfiguration, err.Error())
	}
	return alg, nil
}

// TokenService returns the API token service.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// HTTPServer returns the API server with its routes set up. ctx bounds the
// server's background workers.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	err := c.initOnce(&c.httpServerInit, "httpServer", func() error {
		server, err := c.initHTTPServer(ctx)
		if err != nil {
			return err
		}
		c.httpServer = server
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	if c.config.APITokenHash == "" {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "API_TOKEN_HASH is required, run generate-api-token")
	}

	logger := c.Logger()

	useCase, err := c.SecretUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get secret use case for http server: %w", err)
	}
	alg, err := c.DefaultAlgorithm()
	if err != nil {
		return nil, err
	}
	pinger, err := c.Pinger()
	if err != nil {
		return nil, err
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(pinger, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(
		ctx,
		c.config,
		secretsHTTP.NewSecretHandler(useCase, alg, logger),
		c.TokenService(),
		provider,
	)
	return server, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.initOnce(&c.metricsServerInit, "metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil || provider == nil {
			return err
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// ShutdownContext bounds graceful shutdown by SHUTDOWN_TIMEOUT.
func (c *Container) ShutdownContext() (context.Context, context.CancelFunc) {
	timeout := c.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}
