// Package listener provides a Postgres LISTEN/NOTIFY consumer that turns
// upload-completion events into recompute jobs. It holds a dedicated pgx
// connection (not from the pool) listening on the upload channel.
//
// An upload pipeline that finishes writing game results runs
//
//	SELECT pg_notify('league_upload', '{"season_id": "2026"}');
//
// and the affected season is queued for recompute.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/albapepper/league-data/internal/recompute"
)

const (
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// UploadEvent is the JSON payload from pg_notify on the upload channel. An
// empty SeasonID means the active season.
type UploadEvent struct {
	SeasonID  string `json:"season_id"`
	Source    string `json:"source,omitempty"`
	Timestamp int64  `json:"ts,omitempty"`
}

// Submitter queues a recompute. *recompute.Dispatcher satisfies it.
type Submitter interface {
	Submit(ctx context.Context, seasonID, trigger string) (recompute.Job, error)
}

// ActiveSeasonFunc resolves the active season ID.
type ActiveSeasonFunc func(ctx context.Context) (string, error)

// Start opens a dedicated connection and listens on channel. It reconnects
// automatically on connection loss. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, dbURL, channel string, submit Submitter, active ActiveSeasonFunc, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, channel, submit, active, logger)
		if ctx.Err() != nil {
			logger.Info("Upload listener stopped (context cancelled)")
			return
		}

		logger.Error("Upload listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL, channel string, submit Submitter, active ActiveSeasonFunc, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize())
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Upload listener connected", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		// Submit only queues, so handling inline does not stall the loop.
		if _, err := Handle(ctx, notification.Payload, submit, active, logger); err != nil {
			logger.Warn("Upload event not processed", "payload", notification.Payload, "error", err)
		}
	}
}

// Handle parses one notification payload and queues its season. A bare
// season ID (not JSON) is accepted too.
func Handle(ctx context.Context, payload string, submit Submitter, active ActiveSeasonFunc, logger *slog.Logger) (recompute.Job, error) {
	event, err := ParseEvent(payload)
	if err != nil {
		return recompute.Job{}, err
	}

	seasonID := event.SeasonID
	if seasonID == "" {
		if active == nil {
			return recompute.Job{}, fmt.Errorf("upload event without season and no active season resolver")
		}
		seasonID, err = active(ctx)
		if err != nil {
			return recompute.Job{}, fmt.Errorf("resolve active season: %w", err)
		}
	}

	logger.Info("Upload event received", "season", seasonID, "source", event.Source)
	job, err := submit.Submit(ctx, seasonID, "listener")
	if err != nil {
		return recompute.Job{}, fmt.Errorf("submit recompute: %w", err)
	}
	return job, nil
}

// ParseEvent decodes a notification payload.
func ParseEvent(payload string) (UploadEvent, error) {
	if payload == "" {
		return UploadEvent{}, nil
	}
	if payload[0] != '{' {
		return UploadEvent{SeasonID: payload}, nil
	}
	var event UploadEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return UploadEvent{}, fmt.Errorf("parse upload event: %w", err)
	}
	return event, nil
}
