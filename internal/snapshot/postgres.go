package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores documents in the cached_documents table, one row per
// (season_id, kind). The payload column is json (not jsonb) so the stored
// bytes are returned exactly as written.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store backed by pool. The pool must have the
// cached_document_* prepared statements registered (see package db).
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Put(ctx context.Context, doc Document) error {
	// Single-statement upsert: the row is replaced atomically.
	_, err := p.pool.Exec(ctx, "cached_document_put", doc.SeasonID, string(doc.Kind), doc.Payload)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", doc.Path(), err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, seasonID string, kind Kind) (Document, error) {
	doc := Document{SeasonID: seasonID, Kind: kind}
	var payload string
	err := p.pool.QueryRow(ctx, "cached_document_get", seasonID, string(kind)).Scan(&payload, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", doc.Path(), err)
	}
	doc.Payload = []byte(payload)
	return doc, nil
}
