package pkg

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/classifieds/internal/domain"
)

// MapDBError converts GORM errors to domain errors. what names the missing
// entity in the not-found message, e.g. "listing".
func MapDBError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewAppError(domain.CodeNotFound, what+" not found", err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, what+" already exists", err)
	}
	if isConnectionError(err) {
		return domain.NewAppError(domain.CodeUnavailable, "data source unavailable", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isConnectionError reports failures to reach the database at all, as
// opposed to errors in a statement it executed.
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "failed to connect")
}

// isDuplicateKeyError detects unique constraint violations by message, since
// the pure-Go SQLite driver does not translate them to gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
