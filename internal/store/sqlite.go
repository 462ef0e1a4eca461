package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteStore is a SQLite implementation of shortener.Repository.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Serialize writers; SQLite allows one at a time anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, code shortener.Code, longURL string) (*shortener.ShortLink, error) {
	link := &shortener.ShortLink{
		Handle:    shortener.Handle(uuid.NewString()),
		Code:      code,
		LongURL:   longURL,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO short_links (handle, code, long_url, created_at) VALUES (?, ?, ?, ?)`,
		string(link.Handle), string(link.Code), link.LongURL, link.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, shortener.ErrDuplicateKey
		}

		return nil, fmt.Errorf("insert short link: %w", err)
	}

	return link, nil
}

func (s *SQLiteStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT handle, code, long_url, created_at FROM short_links WHERE code = ?`, string(code))

	return scanSQLiteLink(row)
}

func (s *SQLiteStore) List(ctx context.Context) ([]*shortener.ShortLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT handle, code, long_url, created_at FROM short_links ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list short links: %w", err)
	}
	defer rows.Close()

	links := make([]*shortener.ShortLink, 0)

	for rows.Next() {
		link, err := scanSQLiteLink(rows)
		if err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (s *SQLiteStore) DeleteByHandle(ctx context.Context, handle shortener.Handle) (*shortener.ShortLink, error) {
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM short_links WHERE handle = ? RETURNING handle, code, long_url, created_at`, string(handle))

	return scanSQLiteLink(row)
}

// Ping checks that the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database handle.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteLink(row rowScanner) (*shortener.ShortLink, error) {
	var (
		link      shortener.ShortLink
		handle    string
		code      string
		createdAt int64
	)

	if err := row.Scan(&handle, &code, &link.LongURL, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, fmt.Errorf("scan short link: %w", err)
	}

	link.Handle = shortener.Handle(handle)
	link.Code = shortener.Code(code)
	link.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &link, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
