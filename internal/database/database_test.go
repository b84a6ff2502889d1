package database

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/config"
	"github.com/therealutkarshpriyadarshi/ytmanifest/pkg/models"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "ytmanifest",
		Password: "secret",
		DBName:   "ytmanifest",
		SSLMode:  "disable",
		MaxConns: 10,
		MinConns: 2,
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(5432), cfg.ConnConfig.Port)
	assert.Equal(t, "ytmanifest", cfg.ConnConfig.Database)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, int32(2), cfg.MinConns)
}

func TestPageBounds(t *testing.T) {
	tests := []struct {
		limit, offset     int
		wantLimit, wantOf int
	}{
		{0, 0, defaultListLimit, 0},
		{10, 20, 10, 20},
		{1000, -5, defaultListLimit, 0},
	}

	for _, tt := range tests {
		limit, offset := pageBounds(tt.limit, tt.offset)
		assert.Equal(t, tt.wantLimit, limit)
		assert.Equal(t, tt.wantOf, offset)
	}
}

// Runs against a real database when TEST_DATABASE_URL is set
func TestRepository_VideoRequests(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("Skipping integration test - requires database connection")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	repo := NewRepository(&DB{Pool: pool})
	require.NoError(t, repo.EnsureSchema(ctx))

	req := &models.VideoRequest{
		RequestURL:   "https://www.youtube.com/watch?v=abc",
		VideoID:      "abc",
		Title:        "Sample",
		ManifestType: models.ManifestTypeMPD,
		StreamCount:  3,
		DroppedCount: 2,
	}
	require.NoError(t, repo.RecordVideoRequest(ctx, req))
	assert.NotEmpty(t, req.ID)
	assert.False(t, req.CreatedAt.IsZero())

	requests, err := repo.ListVideoRequests(ctx, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, requests)
	assert.Equal(t, req.ID, requests[0].ID)
	assert.Equal(t, 3, requests[0].StreamCount)
}
