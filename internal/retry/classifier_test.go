package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgreSQLErrorClassifier_SQLState(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		code        string
		isTransient bool
	}{
		{"08000", true},  // connection_exception
		{"08001", true},  // sqlclient_unable_to_establish_sqlconnection
		{"08006", true},  // connection_failure
		{"53300", true},  // too_many_connections
		{"57P01", true},  // admin_shutdown
		{"57P03", true},  // cannot_connect_now
		{"40001", true},  // serialization_failure
		{"40P01", true},  // deadlock_detected
		{"55P03", true},  // lock_not_available
		{"42P01", false}, // undefined_table
		{"42501", false}, // insufficient_privilege
		{"28P01", false}, // invalid_password
		{"3D000", false}, // invalid_catalog_name
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := &pgconn.PgError{Code: tt.code, Message: "too many connections"}
			if got := classifier.IsTransient(err); got != tt.isTransient {
				t.Errorf("IsTransient(%s) = %v, want %v", tt.code, got, tt.isTransient)
			}
		})
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "dial tcp: timed out" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestPostgreSQLErrorClassifier_Network(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{"connection refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"connection reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"network unreachable", &net.OpError{Op: "dial", Err: syscall.ENETUNREACH}, true},
		{"host unreachable", &net.OpError{Op: "dial", Err: syscall.EHOSTUNREACH}, true},
		{"net.Error timeout", &net.OpError{Op: "dial", Err: timeoutError{}}, true},
		{"temporary DNS failure", &net.DNSError{Err: "server misbehaving", Name: "db", IsTemporary: true}, true},
		{"DNS timeout", &net.DNSError{Err: "timeout", Name: "db", IsTimeout: true}, true},
		{"unknown host", &net.DNSError{Err: "no such host", Name: "db", IsNotFound: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.isTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.isTransient)
			}
		})
	}
}

func TestPostgreSQLErrorClassifier_Messages(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		msg         string
		isTransient bool
	}{
		{"dial tcp 127.0.0.1:5432: connect: connection refused", true},
		{"read: connection reset by peer", true},
		{"write: broken pipe", true},
		{"FATAL: sorry, too many connections for role", true},
		{"server closed the connection unexpectedly", true},
		{"unexpected EOF", true},
		{"FATAL: the database system is starting up", true},
		{"password authentication failed for user \"flyway\"", false},
		{"relation \"flyway_schema_history\" does not exist", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := classifier.IsTransient(errors.New(tt.msg)); got != tt.isTransient {
				t.Errorf("IsTransient(%q) = %v, want %v", tt.msg, got, tt.isTransient)
			}
		})
	}
}

func TestPostgreSQLErrorClassifier_WrappedAndSpecial(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	wrapped := fmt.Errorf("connect: %w", &pgconn.PgError{Code: "57P03"})
	if !classifier.IsTransient(wrapped) {
		t.Error("Wrapped transient PgError should be transient")
	}

	wrappedFatal := fmt.Errorf("query: %w", &pgconn.PgError{Code: "42P01", Message: "connection refused"})
	if classifier.IsTransient(wrappedFatal) {
		t.Error("PgError code takes precedence over message text")
	}

	if classifier.IsTransient(nil) {
		t.Error("nil is not transient")
	}
	if classifier.IsTransient(fmt.Errorf("connection refused: %w", context.Canceled)) {
		t.Error("Cancellation is never transient")
	}
}
