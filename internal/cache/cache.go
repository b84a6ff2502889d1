package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client *redis.Client
}

// NewCache creates a new cache instance
func NewCache(host string, port int, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// NewCacheWithClient wraps an existing client
func NewCacheWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

func urlKey(prefix, rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return prefix + hex.EncodeToString(sum[:])
}

// Extraction Cache Operations

// SetExtraction caches the raw info document extracted for url
func (c *Cache) SetExtraction(ctx context.Context, rawURL string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, urlKey("extraction:", rawURL), data, ttl).Err()
}

// GetExtraction retrieves a cached info document
func (c *Cache) GetExtraction(ctx context.Context, rawURL string) ([]byte, error) {
	data, err := c.client.Get(ctx, urlKey("extraction:", rawURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get extraction from cache: %w", err)
	}
	return data, nil
}

// Rate Limiting Operations

// CheckRateLimit checks if a rate limit has been exceeded
func (c *Cache) CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	rateLimitKey := fmt.Sprintf("ratelimit:%s", key)

	// Increment counter
	count, err := c.client.Incr(ctx, rateLimitKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		if err := c.client.Expire(ctx, rateLimitKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry: %w", err)
		}
	}

	return count <= limit, nil
}

// Health check
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// ManifestStore keeps rendered documents in Redis for a limited time
type ManifestStore struct {
	cache   *Cache
	baseURL string
	ttl     time.Duration
}

// NewManifestStore creates a store whose documents are served under baseURL
func NewManifestStore(cache *Cache, baseURL string, ttl time.Duration) *ManifestStore {
	return &ManifestStore{cache: cache, baseURL: baseURL, ttl: ttl}
}

func manifestKey(name string) string {
	return fmt.Sprintf("manifest:%s", name)
}

// Put stores a document and returns its URL
func (s *ManifestStore) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	key := manifestKey(name)

	pipe := s.cache.client.TxPipeline()
	pipe.HSet(ctx, key, "content_type", contentType, "body", body)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to store manifest: %w", err)
	}

	return url.JoinPath(s.baseURL, name)
}

// GetManifest returns a stored document and its content type. A missing
// or expired document yields a nil body and no error.
func (s *ManifestStore) GetManifest(ctx context.Context, name string) ([]byte, string, error) {
	values, err := s.cache.client.HGetAll(ctx, manifestKey(name)).Result()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get manifest from cache: %w", err)
	}
	body, ok := values["body"]
	if !ok {
		return nil, "", nil // Cache miss
	}
	return []byte(body), values["content_type"], nil
}
