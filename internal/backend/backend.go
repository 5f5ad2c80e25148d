// Package backend opens the storage backends selected in config and hands
// them out behind the store, snapshot and recompute interfaces. Shared by
// cmd/api and cmd/leaguectl.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"

	"github.com/albapepper/league-data/internal/config"
	"github.com/albapepper/league-data/internal/db"
	"github.com/albapepper/league-data/internal/recompute"
	"github.com/albapepper/league-data/internal/snapshot"
	"github.com/albapepper/league-data/internal/store"
)

// ErrReadOnlySource is returned by Sink when records come from a JSON file.
var ErrReadOnlySource = errors.New("record source is read-only")

// Backends holds every opened connection and the views built on them.
// DB and Firestore are nil unless a selected backend needs them.
type Backends struct {
	DB        *db.Pool
	Firestore *firestore.Client

	Source    store.Source
	Documents snapshot.Store
	Jobs      recompute.JobStore

	sink store.Sink
}

// Open connects to whatever cfg selects. On error every connection opened
// so far is closed.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *Backends, err error) {
	b := &Backends{}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	if cfg.NeedsDatabase() {
		logger.Info("Connecting to database...")
		b.DB, err = db.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	}
	if cfg.NeedsFirestore() {
		b.Firestore, err = firestore.NewClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, fmt.Errorf("create firestore client: %w", err)
		}
		logger.Info("Firestore client ready", "project", cfg.FirestoreProjectID)
	}

	switch cfg.StoreBackend {
	case config.BackendJSON:
		f, err := store.OpenJSONFile(cfg.DataFile)
		if err != nil {
			return nil, err
		}
		b.Source = f
	case config.BackendPostgres:
		pg := store.NewPostgres(b.DB.Pool)
		b.Source, b.sink = pg, pg
	case config.BackendFirestore:
		fs := store.NewFirestore(b.Firestore)
		b.Source, b.sink = fs, fs
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	var docs snapshot.Store
	switch cfg.CacheBackend {
	case config.BackendMemory:
		docs = snapshot.NewMemory()
	case config.BackendFile:
		docs = snapshot.NewFileStore(cfg.CacheDir)
	case config.BackendPostgres:
		docs = snapshot.NewPostgres(b.DB.Pool)
	case config.BackendFirestore:
		docs = snapshot.NewFirestore(b.Firestore)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	if cfg.MirrorEnabled() {
		bucket, err := snapshot.NewBucket(ctx, snapshot.BucketConfig{
			Endpoint:        cfg.MirrorEndpoint,
			Region:          cfg.MirrorRegion,
			AccessKeyID:     cfg.MirrorAccessKeyID,
			SecretAccessKey: cfg.MirrorSecretKey,
			Bucket:          cfg.MirrorBucket,
			Prefix:          cfg.MirrorPrefix,
			PublicBaseURL:   cfg.MirrorPublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("open document mirror: %w", err)
		}
		docs = snapshot.NewMirrored(docs, bucket)
		logger.Info("Cached documents mirrored", "bucket", cfg.MirrorBucket, "prefix", cfg.MirrorPrefix)
	}
	b.Documents = docs

	switch cfg.JobBackend {
	case config.BackendPostgres:
		b.Jobs = recompute.NewPostgresJobStore(b.DB.Pool)
	default:
		b.Jobs = recompute.NewMemoryJobStore()
	}

	logger.Info("Backends ready",
		"records", cfg.StoreBackend,
		"cache", cfg.CacheBackend,
		"jobs", cfg.JobBackend,
		"mirror", cfg.MirrorEnabled())
	return b, nil
}

// Sink returns the writable record store, or ErrReadOnlySource for a JSON
// file source.
func (b *Backends) Sink() (store.Sink, error) {
	if b.sink == nil {
		return nil, ErrReadOnlySource
	}
	return b.sink, nil
}

// ActiveSeasonID resolves the active season's ID.
func (b *Backends) ActiveSeasonID(ctx context.Context) (string, error) {
	season, err := b.Source.ActiveSeason(ctx)
	if err != nil {
		return "", err
	}
	return season.ID, nil
}

// Close releases every open connection.
func (b *Backends) Close() {
	if b.Firestore != nil {
		b.Firestore.Close()
	}
	if b.DB != nil {
		b.DB.Close()
	}
}
