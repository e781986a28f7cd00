package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ordinator/ordinator/internal/repository"
)

// DB wraps a SQL database connection for all PostgreSQL operations
type DB struct {
	*sql.DB
}

// New creates a new PostgreSQL database connection
func New(connString string) (*DB, error) {
	sqldb, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqldb}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Health checks database connectivity
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Database implements repository.Database over a single PostgreSQL
// connection.
type Database struct {
	db    *DB
	audit *ObjectiveAuditRepository
}

// NewDatabase opens a connection and wires every repository over it.
func NewDatabase(connString string) (*Database, error) {
	db, err := New(connString)
	if err != nil {
		return nil, err
	}
	return &Database{db: db, audit: NewObjectiveAuditRepository(db.DB)}, nil
}

// ObjectiveAuditRepository returns the wired audit repository.
func (d *Database) ObjectiveAuditRepository() repository.ObjectiveAuditRepository {
	return d.audit
}

// Close closes the underlying connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Health checks database connectivity.
func (d *Database) Health(ctx context.Context) error {
	return d.db.Health(ctx)
}
