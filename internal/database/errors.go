package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/v2/mongo"

	apperrors "github.com/allisson/bluegreen/internal/errors"
)

// IsDuplicateKey reports whether err is a unique constraint violation raised by
// PostgreSQL (23505), MySQL (1062) or MongoDB (E11000).
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}

	return mongo.IsDuplicateKeyError(err)
}

// IsUnavailable reports whether err means the store could not be reached.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// Classify wraps err with message, adding apperrors.ErrUnavailable to the chain
// for connectivity failures.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if IsUnavailable(err) {
		return fmt.Errorf("%s: %w: %w", message, apperrors.ErrUnavailable, err)
	}
	return apperrors.Wrap(err, message)
}
