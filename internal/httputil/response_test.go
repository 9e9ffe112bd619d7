package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	secretsDomain "github.com/allisson/bluegreen/internal/secrets/domain"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/secrets/x", nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"secret not found", secretsDomain.ErrSecretNotFound, http.StatusNotFound, "not_found"},
		{"conflict", secretsDomain.ErrSecretExists, http.StatusConflict, "conflict"},
		{"invalid color", secretsDomain.ErrInvalidColor, http.StatusUnprocessableEntity, "invalid_input"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"no active color", secretsDomain.ErrMetadataMissing, http.StatusPreconditionFailed, "precondition_failed"},
		{"wrong key", cryptoDomain.ErrDecryptionFailed, http.StatusInternalServerError, "integrity_error"},
		{"store down", apperrors.Wrap(apperrors.ErrUnavailable, "ping"), http.StatusServiceUnavailable, "unavailable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error)
			assert.True(t, c.IsAborted())
		})
	}

	t.Run("internal details stay hidden", func(t *testing.T) {
		c, w := newTestContext()
		HandleErrorGin(c, errors.New("dial tcp 10.0.0.1:27017"), nil)
		assert.NotContains(t, w.Body.String(), "10.0.0.1")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext()
		HandleErrorGin(c, nil, logger)
		assert.False(t, c.IsAborted())
		assert.Empty(t, w.Body.String())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "bad_request", body.Error)
	assert.Equal(t, "unexpected EOF", body.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext()

	HandleValidationErrorGin(c, errors.New("value: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w).Error)
}
