// Package http provides the HTTP handlers of the secret API. Every write goes
// to both colors; reads come from the active color.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"
	"go.mongodb.org/mongo-driver/v2/bson"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
	"github.com/allisson/bluegreen/internal/httputil"
	"github.com/allisson/bluegreen/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
	customValidation "github.com/allisson/bluegreen/internal/validation"
)

// SecretHandler handles HTTP requests for secret operations.
type SecretHandler struct {
	secretUseCase    secretsUseCase.SecretUseCase
	defaultAlgorithm cryptoDomain.Algorithm
	logger           *slog.Logger
}

// NewSecretHandler creates a handler. defaultAlgorithm applies to writes that
// do not name an algorithm.
func NewSecretHandler(
	secretUseCase secretsUseCase.SecretUseCase,
	defaultAlgorithm cryptoDomain.Algorithm,
	logger *slog.Logger,
) *SecretHandler {
	return &SecretHandler{
		secretUseCase:    secretUseCase,
		defaultAlgorithm: defaultAlgorithm,
		logger:           logger,
	}
}

// PutHandler stores a value under the id from the URL.
// PUT /v1/secrets/:id - Returns 200 OK with the id.
func (h *SecretHandler) PutHandler(c *gin.Context) {
	id := c.Param("id")
	if err := validation.Validate(id, validation.Required, customValidation.SecretID); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if h.write(c, id) {
		c.JSON(http.StatusOK, dto.WriteSecretResponse{ID: id})
	}
}

// CreateHandler stores a value under a newly generated ObjectID hex id.
// POST /v1/secrets - Returns 201 Created with the id.
func (h *SecretHandler) CreateHandler(c *gin.Context) {
	id := bson.NewObjectID().Hex()

	if h.write(c, id) {
		c.JSON(http.StatusCreated, dto.WriteSecretResponse{ID: id})
	}
}

// write binds the body and runs the dual write. It reports whether the
// response is still to be written.
func (h *SecretHandler) write(c *gin.Context, id string) bool {
	var req dto.WriteSecretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}

	alg := h.defaultAlgorithm
	if req.Algorithm != "" {
		// Validate already checked the name.
		alg, _ = cryptoDomain.ParseAlgorithm(req.Algorithm)
	}

	plaintext, err := req.Plaintext()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return false
	}
	defer cryptoDomain.Zero(plaintext)

	if err := h.secretUseCase.Write(c.Request.Context(), id, plaintext, alg); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return false
	}
	return true
}

// GetHandler decrypts a secret from the active color.
// GET /v1/secrets/:id - Returns 200 OK with the plaintext value.
func (h *SecretHandler) GetHandler(c *gin.Context) {
	id := c.Param("id")
	if err := validation.Validate(id, validation.Required, customValidation.SecretID); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	secret, err := h.secretUseCase.Read(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer cryptoDomain.Zero(secret.Plaintext)

	c.JSON(http.StatusOK, dto.MapSecretToResponse(secret))
}

// InfoHandler reports the active color and per-color counts.
// GET /v1/info - Returns 200 OK.
func (h *SecretHandler) InfoHandler(c *gin.Context) {
	info, err := h.secretUseCase.Info(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapInfoToResponse(info))
}
