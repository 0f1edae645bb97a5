package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// SQLSTATE classes whose every code is transient.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
var transientSQLStateClasses = []string{
	"08", // connection exception
	"53", // insufficient resources
	"57", // operator intervention
}

// Individual transient SQLSTATE codes outside those classes.
var transientSQLStates = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
}

var transientSyscallErrors = []error{
	syscall.ECONNREFUSED,
	syscall.ECONNRESET,
	syscall.ENETUNREACH,
	syscall.EHOSTUNREACH,
}

// Lower-case message fragments for errors that reach us without a type,
// typically from the pgx dialer.
var transientMessages = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"the database system is starting up",
}

// PostgreSQLErrorClassifier treats connection-level failures and a few
// server-side contention errors as transient.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient reports whether err is worth retrying. Cancellation never is.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}

	if isTransientNetworkError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range transientMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

func isTransientSQLState(code string) bool {
	for _, class := range transientSQLStateClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	_, ok := transientSQLStates[code]
	return ok
}

func isTransientNetworkError(err error) bool {
	for _, target := range transientSyscallErrors {
		if errors.Is(err, target) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

var _ flywaysum.ErrorClassifier = (*PostgreSQLErrorClassifier)(nil)
