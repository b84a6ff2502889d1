package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS video_requests (
	id            UUID PRIMARY KEY,
	request_url   TEXT NOT NULL,
	video_id      TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	manifest_type TEXT NOT NULL,
	passthrough   BOOLEAN NOT NULL DEFAULT FALSE,
	stream_count  INTEGER NOT NULL DEFAULT 0,
	dropped_count INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_video_requests_created_at ON video_requests (created_at DESC);
`

const defaultListLimit = 50

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the tables used by the repository
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordVideoRequest stores one resolved request
func (r *Repository) RecordVideoRequest(ctx context.Context, req *models.VideoRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	query := `
		INSERT INTO video_requests (id, request_url, video_id, title, manifest_type, passthrough, stream_count, dropped_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
		RETURNING created_at
	`

	var createdAt *time.Time
	if !req.CreatedAt.IsZero() {
		createdAt = &req.CreatedAt
	}

	err := r.db.Pool.QueryRow(ctx, query,
		req.ID, req.RequestURL, req.VideoID, req.Title, req.ManifestType,
		req.Passthrough, req.StreamCount, req.DroppedCount, createdAt,
	).Scan(&req.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record video request: %w", err)
	}

	return nil
}

// ListVideoRequests returns the most recent requests, newest first
func (r *Repository) ListVideoRequests(ctx context.Context, limit, offset int) ([]*models.VideoRequest, error) {
	limit, offset = pageBounds(limit, offset)

	query := `
		SELECT id, request_url, video_id, title, manifest_type, passthrough,
		       stream_count, dropped_count, created_at
		FROM video_requests
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list video requests: %w", err)
	}

	requests, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[models.VideoRequest])
	if err != nil {
		return nil, fmt.Errorf("failed to scan video requests: %w", err)
	}

	return requests, nil
}

// GetHistoryStats aggregates all recorded requests. Empty results are
// assembled requests that produced no streams.
func (r *Repository) GetHistoryStats(ctx context.Context) (*models.HistoryStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE passthrough),
			COUNT(*) FILTER (WHERE NOT passthrough AND stream_count = 0),
			COALESCE(AVG(stream_count) FILTER (WHERE NOT passthrough), 0),
			COALESCE(AVG(dropped_count) FILTER (WHERE NOT passthrough), 0)
		FROM video_requests
	`

	var stats models.HistoryStats
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&stats.Total, &stats.Passthrough, &stats.Empty,
		&stats.AverageStreams, &stats.AverageDropped,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get history stats: %w", err)
	}

	return &stats, nil
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
