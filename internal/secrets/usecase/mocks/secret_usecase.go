// Package mocks provides mock implementations of the secrets use case for
// HTTP handler and CLI command tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

// MockSecretUseCase is a mock implementation of SecretUseCase for testing.
type MockSecretUseCase struct {
	mock.Mock
}

// NewMockSecretUseCase creates a mock that asserts its expectations on cleanup.
func NewMockSecretUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSecretUseCase {
	m := &MockSecretUseCase{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSecretUseCase) Write(
	ctx context.Context,
	secretID string,
	plaintext []byte,
	alg cryptoDomain.Algorithm,
) error {
	args := m.Called(ctx, secretID, plaintext, alg)
	return args.Error(0)
}

func (m *MockSecretUseCase) Read(ctx context.Context, secretID string) (*secretsDomain.Secret, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Secret), args.Error(1)
}

func (m *MockSecretUseCase) Rotate(
	ctx context.Context,
	newMasterKey *cryptoDomain.MasterKey,
	alg cryptoDomain.Algorithm,
) (int64, error) {
	args := m.Called(ctx, newMasterKey, alg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSecretUseCase) Activate(ctx context.Context, color secretsDomain.Color) error {
	args := m.Called(ctx, color)
	return args.Error(0)
}

func (m *MockSecretUseCase) GetActive(ctx context.Context) (secretsDomain.Color, error) {
	args := m.Called(ctx)
	return args.Get(0).(secretsDomain.Color), args.Error(1)
}

func (m *MockSecretUseCase) Info(ctx context.Context) (*secretsDomain.Info, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.Info), args.Error(1)
}

func (m *MockSecretUseCase) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
