// Package client wires the local SQLite store: it opens the database,
// runs the embedded goose migrations, and exposes the repository set.
package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/OleoMar/alphawave/internal/client/migrations"
	"github.com/OleoMar/alphawave/internal/client/repositories/kv"
	"github.com/OleoMar/alphawave/internal/client/repositories/users"
)

// Repositories groups the data access objects over one database handle.
type Repositories struct {
	Users users.Repository
	KV    kv.Store
}

// RunMigrations applies the embedded migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn and brings the schema up to
// date. The caller owns the returned handle.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// NewRepositories constructs the repository set over db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Users: users.NewSQLiteRepository(db),
		KV:    kv.NewSQLiteStore(db),
	}
}
