package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// wrapConnectionError adds a hint for the common failure modes and wraps
// flywaysum.ErrConnectionFailed. Cancellation passes through unchanged.
func wrapConnectionError(err error, host string, port uint16, database string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	msg := strings.ToLower(err.Error())
	target := describeTarget(host, port, database)

	var hint string
	switch {
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "actively refused"):
		hint = fmt.Sprintf("PostgreSQL is not accepting connections (check: pg_isready -h %s -p %d)", host, port)
	case strings.Contains(msg, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", host)
	case strings.Contains(msg, "password authentication failed"):
		hint = "wrong user or password (check the connection string or PGPASSWORD)"
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist", database)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		hint = "server did not answer in time"
	case strings.Contains(msg, "ssl") || strings.Contains(msg, "tls"):
		hint = "SSL negotiation failed (check sslmode in the connection string)"
	}

	if hint == "" {
		return fmt.Errorf("%w: %s: %w", flywaysum.ErrConnectionFailed, target, err)
	}
	return fmt.Errorf("%w: %s: %s: %w", flywaysum.ErrConnectionFailed, target, hint, err)
}
