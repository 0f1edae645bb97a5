package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/flywaysum/internal/retry"
	"github.com/vvka-141/flywaysum/pkg/flywaysum"
)

// Pool settings for short read-only sessions against the history table.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 0
	DefaultMaxConnIdleTime = time.Minute
)

// Connector opens a pgx pool with automatic retry on transient failures.
type Connector struct {
	connString    string
	logger        flywaysum.Logger
	retryExecutor *retry.Executor
}

// NewConnector creates a Connector using the default retry policy:
// DefaultRetryMaxAttempts retries with exponential backoff from
// DefaultRetryInitialDelay up to DefaultRetryMaxDelay.
func NewConnector(connString string, logger flywaysum.Logger) *Connector {
	strategy := retry.NewExponentialBackoff(flywaysum.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(flywaysum.DefaultRetryInitialDelay),
		retry.WithMaxDelay(flywaysum.DefaultRetryMaxDelay),
	)
	return NewConnectorWithRetry(connString, logger, retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy))
}

// NewConnectorWithRetry creates a Connector with a custom retry executor.
func NewConnectorWithRetry(connString string, logger flywaysum.Logger, executor *retry.Executor) *Connector {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if executor == nil {
		panic("executor cannot be nil")
	}
	executor = executor.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("connection attempt %d failed, retrying in %s: %v", attempt+1, delay.Round(time.Millisecond), err)
	})
	return &Connector{connString: connString, logger: logger, retryExecutor: executor}
}

// Connect parses the connection string and returns a pinged pool.
// An unparsable string wraps flywaysum.ErrInvalidConfig; anything that
// fails after that wraps flywaysum.ErrConnectionFailed.
func (c *Connector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	if c.connString == "" {
		return nil, fmt.Errorf("%w: no connection string (use --connection, %s or %s)",
			flywaysum.ErrInvalidConfig, "FLYWAYSUM_CONNECTION", "DATABASE_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(c.connString)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection string: %v", flywaysum.ErrInvalidConfig, err)
	}
	c.configurePool(poolConfig)

	target := describeTarget(poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port, poolConfig.ConnConfig.Database)
	c.logger.Verbose("connecting to %s", target)

	var pool *pgxpool.Pool
	err = c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, wrapConnectionError(err, poolConfig.ConnConfig.Host, poolConfig.ConnConfig.Port, poolConfig.ConnConfig.Database)
	}
	return pool, nil
}

func (c *Connector) configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		c.logger.Verbose("server notice: %s", notice.Message)
	}
}

func describeTarget(host string, port uint16, database string) string {
	return fmt.Sprintf("%s:%d/%s", host, port, database)
}
