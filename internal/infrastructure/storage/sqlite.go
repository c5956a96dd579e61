package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zeero-shorts/zeero/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			key TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			filename TEXT NOT NULL,
			content_type TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at);`,
		`CREATE TABLE IF NOT EXISTS token_cache (
			address TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// UploadRepository implementation

func (s *SQLiteStore) SaveUpload(ctx context.Context, up *domain.Upload) error {
	query := `INSERT INTO uploads (key, url, filename, content_type, size_bytes, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		up.Key, up.URL, up.Filename, up.ContentType, up.SizeBytes, up.CreatedAt)
	return err
}

func (s *SQLiteStore) ListUploads(ctx context.Context, limit int) ([]*domain.Upload, error) {
	query := `SELECT key, url, filename, content_type, size_bytes, created_at
			  FROM uploads ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []*domain.Upload
	for rows.Next() {
		var up domain.Upload
		if err := rows.Scan(&up.Key, &up.URL, &up.Filename, &up.ContentType, &up.SizeBytes, &up.CreatedAt); err != nil {
			return nil, err
		}
		uploads = append(uploads, &up)
	}
	return uploads, rows.Err()
}

// TokenCache implementation

func (s *SQLiteStore) GetToken(ctx context.Context, address string, maxAge time.Duration) (*domain.Token, error) {
	query := `SELECT payload, fetched_at FROM token_cache WHERE address = ?`
	row := s.db.QueryRowContext(ctx, query, strings.ToLower(address))

	var payload string
	var fetchedAt time.Time
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if time.Since(fetchedAt) > maxAge {
		return nil, nil
	}

	var token domain.Token
	if err := json.Unmarshal([]byte(payload), &token); err != nil {
		return nil, fmt.Errorf("failed to decode cached token: %w", err)
	}
	return &token, nil
}

func (s *SQLiteStore) PutToken(ctx context.Context, token *domain.Token) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}

	query := `INSERT OR REPLACE INTO token_cache (address, payload, fetched_at) VALUES (?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query, strings.ToLower(token.Address), string(payload), time.Now())
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
