package data

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jerseyretro/storefront/internal/errors"
)

// IsUnavailable reports whether err means the database could not be reached,
// as opposed to a query or constraint failure.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded)
}

// listError marks connectivity failures as upstream errors so callers can degrade to empty results.
func listError(err error, what string) error {
	if IsUnavailable(err) {
		return apperrors.Upstream(err, "database unavailable")
	}
	return fmt.Errorf("failed to list %s: %w", what, err)
}
