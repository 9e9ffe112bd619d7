package http

import (
	"crypto/subtle"
	"log/slog"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/bluegreen/internal/auth/service"
	apperrors "github.com/allisson/bluegreen/internal/errors"
	"github.com/allisson/bluegreen/internal/httputil"
)

const bearerPrefix = "bearer "

// tokenFingerprintKey stores the caller's token fingerprint in the gin context
// for the rate limiter.
const tokenFingerprintKey = "token_fingerprint"

// AuthenticationMiddleware requires "Authorization: Bearer <token>" matching
// tokenHash. The first successful Argon2id verification is cached as a SHA-256
// fingerprint so later requests skip the expensive hash.
func AuthenticationMiddleware(
	tokenService authService.TokenService,
	tokenHash string,
	logger *slog.Logger,
) gin.HandlerFunc {
	var (
		mu       sync.RWMutex
		verified string
	)

	isVerified := func(fingerprint string) bool {
		mu.RLock()
		defer mu.RUnlock()
		return verified != "" && subtle.ConstantTimeCompare([]byte(verified), []byte(fingerprint)) == 1
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		fingerprint := tokenService.Fingerprint(plainToken)
		if !isVerified(fingerprint) {
			if !tokenService.CompareToken(plainToken, tokenHash) {
				logger.Debug("authentication failed: token mismatch")
				httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
				return
			}
			mu.Lock()
			verified = fingerprint
			mu.Unlock()
		}

		c.Set(tokenFingerprintKey, fingerprint)
		c.Next()
	}
}
