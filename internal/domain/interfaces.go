package domain

import (
	"context"
	"io"
	"time"
)

// ListPage is one page of an upstream explore list, already normalized.
type ListPage struct {
	Tokens      []Token
	Cursor      string // empty when the source is exhausted
	HasNextPage bool
}

// CoinSource provides the three paginated explore lists.
type CoinSource interface {
	ListCoins(ctx context.Context, category FeedCategory, count int, after string) (*ListPage, error)
}

// UploadRepository defines storage operations for the upload ledger.
type UploadRepository interface {
	SaveUpload(ctx context.Context, up *Upload) error
	ListUploads(ctx context.Context, limit int) ([]*Upload, error)
}

// TokenCache caches token lookups by lowercased address.
// GetToken returns (nil, nil) on a miss or an expired entry.
type TokenCache interface {
	GetToken(ctx context.Context, address string, maxAge time.Duration) (*Token, error)
	PutToken(ctx context.Context, token *Token) error
}

// ObjectStore uploads media objects and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType, filename string, body io.Reader, size int64) (string, error)
}
