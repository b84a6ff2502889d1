package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Content types of rendered documents
const (
	ContentTypeMPD = "application/dash+xml"
	ContentTypeM3U = "application/vnd.apple.mpegurl"
)

// Store persists a rendered document and returns the URL it is served from
type Store interface {
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
}

// FileStore writes documents into a directory
type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore creates a store rooted at dir. Returned URLs are baseURL
// joined with the document name, or file:// URLs when baseURL is empty.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest directory: %w", err)
	}
	return &FileStore{dir: abs, baseURL: baseURL}, nil
}

// Put atomically replaces dir/name with body
func (s *FileStore) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.Base(name))

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0644))
	if err != nil {
		return "", fmt.Errorf("create pending manifest file: %w", err)
	}
	defer pendingFile.Cleanup()

	if _, err := pendingFile.Write(body); err != nil {
		return "", fmt.Errorf("write manifest data: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("atomically replace manifest file: %w", err)
	}

	if s.baseURL == "" {
		return (&url.URL{Scheme: "file", Path: path}).String(), nil
	}
	return url.JoinPath(s.baseURL, filepath.Base(name))
}

// GetManifest reads a stored document back. It returns nil when the
// document does not exist.
func (s *FileStore) GetManifest(ctx context.Context, name string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	body, err := os.ReadFile(filepath.Join(s.dir, filepath.Base(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read manifest: %w", err)
	}
	return body, contentTypeOf(name), nil
}

func contentTypeOf(name string) string {
	switch filepath.Ext(name) {
	case ".mpd":
		return ContentTypeMPD
	case ".m3u8":
		return ContentTypeM3U
	default:
		return "application/octet-stream"
	}
}
