// Package retry retries operations that fail with transient errors, waiting
// with exponential backoff between attempts.
//
// It is used to reach the PostgreSQL server holding flyway_schema_history:
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(flywaysum.DefaultRetryMaxAttempts),
//	)
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Executor values are immutable; WithOnRetry returns a configured copy.
package retry
