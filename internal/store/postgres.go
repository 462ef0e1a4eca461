package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortlink/internal/shortener"
)

const linkColumns = `handle::text, code, long_url, created_at`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed link store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the short_links table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("apply postgres schema: %w", err)
	}

	return nil
}

func (p *PostgresStore) Create(ctx context.Context, code shortener.Code, longURL string) (*shortener.ShortLink, error) {
	query := `
		INSERT INTO short_links (code, long_url)
		VALUES ($1, $2)
		ON CONFLICT (code) DO NOTHING
		RETURNING ` + linkColumns

	link, err := scanLink(p.pool.QueryRow(ctx, query, string(code), longURL))
	if errors.Is(err, shortener.ErrNotFound) {
		// ON CONFLICT skipped the insert, so nothing was returned.
		return nil, shortener.ErrDuplicateKey
	}

	return link, err
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	query := `SELECT ` + linkColumns + ` FROM short_links WHERE code = $1`

	return scanLink(p.pool.QueryRow(ctx, query, string(code)))
}

func (p *PostgresStore) List(ctx context.Context) ([]*shortener.ShortLink, error) {
	query := `SELECT ` + linkColumns + ` FROM short_links ORDER BY created_at DESC, seq DESC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*shortener.ShortLink, error) {
		return scanLink(row)
	})
}

func (p *PostgresStore) DeleteByHandle(ctx context.Context, handle shortener.Handle) (*shortener.ShortLink, error) {
	query := `DELETE FROM short_links WHERE handle = $1 RETURNING ` + linkColumns

	return scanLink(p.pool.QueryRow(ctx, query, string(handle)))
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func scanLink(row pgx.Row) (*shortener.ShortLink, error) {
	var link shortener.ShortLink

	err := row.Scan(&link.Handle, &link.Code, &link.LongURL, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	link.CreatedAt = link.CreatedAt.UTC()

	return &link, nil
}
