package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type driverError struct {
	Code int
}

func (e *driverError) Error() string { return "driver failure" }

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrPrecondition,
		ErrIntegrity,
		ErrUnavailable,
		ErrConfiguration,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.False(t, Is(a, b), "%v must not match %v", a, b)
			}
		}
	}
}

func TestWrap(t *testing.T) {
	t.Run("KeepsChain", func(t *testing.T) {
		domainErr := Wrap(ErrIntegrity, "decryption failed")
		wrapped := Wrap(domainErr, "failed to read secret \"db\" from GREEN")

		assert.Equal(t, "failed to read secret \"db\" from GREEN: decryption failed: integrity check failed", wrapped.Error())
		assert.True(t, Is(wrapped, domainErr))
		assert.True(t, Is(wrapped, ErrIntegrity))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})
}

func TestWrapf(t *testing.T) {
	t.Run("FormatsMessage", func(t *testing.T) {
		wrapped := Wrapf(ErrUnavailable, "failed to count %s secrets", "BLUE")

		assert.Equal(t, "failed to count BLUE secrets: store unavailable", wrapped.Error())
		assert.True(t, Is(wrapped, ErrUnavailable))
	})

	t.Run("Nil", func(t *testing.T) {
		assert.NoError(t, Wrapf(nil, "failed %d", 1))
	})
}

func TestNew(t *testing.T) {
	err := New("metadata missing")
	require.Error(t, err)
	assert.Equal(t, "metadata missing", err.Error())
	assert.False(t, Is(err, ErrPrecondition))
}

func TestAs(t *testing.T) {
	wrapped := Wrap(&driverError{Code: 11000}, "failed to insert data key")

	var target *driverError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, 11000, target.Code)

	assert.False(t, As(errors.New("other"), &target))
}
