package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/config"
	"github.com/therealutkarshpriyadarshi/ytmanifest/internal/logging"
)

const defaultPresignExpiry = time.Hour

// Storage keeps rendered manifests in an S3 compatible bucket
type Storage struct {
	client        *minio.Client
	bucketName    string
	prefix        string
	presignExpiry time.Duration
	logger        *logging.Logger
}

// New creates a new storage client
func New(ctx context.Context, cfg config.StorageConfig, logger *logging.Logger) (*Storage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = defaultPresignExpiry
	}

	if logger == nil {
		logger = logging.NewNop()
	}

	return &Storage{
		client:        client,
		bucketName:    cfg.BucketName,
		prefix:        cfg.Prefix,
		presignExpiry: expiry,
		logger:        logger.WithComponent("storage"),
	}, nil
}

func (s *Storage) objectName(name string) string {
	return path.Join(s.prefix, path.Base(name))
}

// Put uploads a rendered manifest and returns a presigned URL for it
func (s *Storage) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if contentType == "" {
		contentType = getContentType(name)
	}

	objectName := s.objectName(name)
	start := time.Now()
	_, err := s.client.PutObject(ctx, s.bucketName, objectName, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "no-cache",
	})
	s.logger.LogStorageOperation("put", s.bucketName, objectName, int64(len(body)), time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.GetURL(ctx, objectName)
}

// GetURL returns a presigned URL for an object
func (s *Storage) GetURL(ctx context.Context, objectName string) (string, error) {
	url, err := s.client.PresignedGetObject(ctx, s.bucketName, objectName, s.presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate URL: %w", err)
	}

	return url.String(), nil
}

// getContentType returns the content type based on file extension
func getContentType(filePath string) string {
	switch filepath.Ext(filePath) {
	case ".mpd":
		return "application/dash+xml"
	case ".m3u8":
		return "application/vnd.apple.mpegurl"
	case ".vtt":
		return "text/vtt"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
