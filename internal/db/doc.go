// Package db connects to PostgreSQL and reads Flyway's schema history.
package db
