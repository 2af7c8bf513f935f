package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/UnknownOlympus/hermes/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of pgxpool.Pool used by the repository.
// It allows pgxmock to stand in during tests.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is the offline candidate store: a durable, branch-scoped cache
// of previously-resolved and previously-verified addresses.
type Repository struct {
	db    Database
	log   *slog.Logger
	ready sync.Map // branchID -> struct{}, guards runtime initialization
}

type Interface interface {
	EnsureRuntimeReady(ctx context.Context, branchID string) error
	UpsertVerifiedCandidate(ctx context.Context, record models.OfflineCandidateRecord) error
	LookupByFingerprint(ctx context.Context, branchID, addressFingerprint string) (*models.OfflineCandidateRecord, error)
	LookupByText(ctx context.Context, branchID, query string, limit int) ([]models.OfflineCandidateRecord, error)
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// NewDatabase creates a pgx connection pool for the given connection
// parameters and verifies it with a ping.
func NewDatabase(host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
