package usecase

import (
	"context"
	"time"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/metrics"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics struct {
	next    SecretUseCase
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics(useCase SecretUseCase, m metrics.BusinessMetrics) SecretUseCase {
	return &secretUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *secretUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "secrets", operation, status)
	s.metrics.RecordDuration(ctx, "secrets", operation, time.Since(start), status)
}

func (s *secretUseCaseWithMetrics) Write(
	ctx context.Context,
	secretID string,
	plaintext []byte,
	alg cryptoDomain.Algorithm,
) error {
	start := time.Now()
	err := s.next.Write(ctx, secretID, plaintext, alg)
	s.record(ctx, "secret_write", start, err)
	return err
}

func (s *secretUseCaseWithMetrics) Read(ctx context.Context, secretID string) (*secretsDomain.Secret, error) {
	start := time.Now()
	secret, err := s.next.Read(ctx, secretID)
	s.record(ctx, "secret_read", start, err)
	return secret, err
}

func (s *secretUseCaseWithMetrics) Rotate(
	ctx context.Context,
	newMasterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) (int64, error) {
	start := time.Now()
	count, err := s.next.Rotate(ctx, newMasterKey, alg)
	s.record(ctx, "secret_rotate", start, err)
	if count > 0 {
		// Rotation never changes the active color, so the target is its flip.
		if active, activeErr := s.next.GetActive(ctx); activeErr == nil {
			s.metrics.RecordRotation(ctx, active.Flip().String(), count)
		}
	}
	return count, err
}

func (s *secretUseCaseWithMetrics) Activate(ctx context.Context, color secretsDomain.Color) error {
	start := time.Now()
	err := s.next.Activate(ctx, color)
	s.record(ctx, "color_activate", start, err)
	return err
}

func (s *secretUseCaseWithMetrics) GetActive(ctx context.Context) (secretsDomain.Color, error) {
	start := time.Now()
	color, err := s.next.GetActive(ctx)
	s.record(ctx, "color_get_active", start, err)
	return color, err
}

func (s *secretUseCaseWithMetrics) Info(ctx context.Context) (*secretsDomain.Info, error) {
	start := time.Now()
	info, err := s.next.Info(ctx)
	s.record(ctx, "info", start, err)
	return info, err
}

func (s *secretUseCaseWithMetrics) Initialize(ctx context.Context) error {
	start := time.Now()
	err := s.next.Initialize(ctx)
	s.record(ctx, "initialize", start, err)
	return err
}
