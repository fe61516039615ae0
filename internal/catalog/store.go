package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store loads the full service-code table from its backing source.
type Store interface {
	Load(ctx context.Context) ([]ServiceCode, error)
}

// PostgresStore reads the service_codes table from Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pgx pool to the given DSN.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse catalog DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect catalog database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Load fetches every row of service_codes. Transient database errors are
// retried a few times before giving up; callers fall back to the compiled-in
// subset on failure.
func (s *PostgresStore) Load(ctx context.Context) ([]ServiceCode, error) {
	var codes []ServiceCode

	err := retry.Do(
		func() error {
			rows, err := s.pool.Query(ctx,
				`SELECT code, poste, service, description FROM service_codes`)
			if err != nil {
				return fmt.Errorf("query service_codes: %w", err)
			}
			defer rows.Close()

			codes = codes[:0]
			for rows.Next() {
				var (
					sc   ServiceCode
					post *string
				)
				if err := rows.Scan(&sc.Code, &post, &sc.Marker, &sc.Description); err != nil {
					return fmt.Errorf("scan service_codes row: %w", err)
				}
				if post != nil {
					sc.PostCode = *post
				}
				codes = append(codes, sc)
			}
			return rows.Err()
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
	)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Verify interface
var _ Store = (*PostgresStore)(nil)
