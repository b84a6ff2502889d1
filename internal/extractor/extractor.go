// Package extractor runs the external media extraction engine and returns
// its info document.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrExtraction is returned when the engine fails or produces no usable
// info document
var ErrExtraction = errors.New("extraction failed")

// Extractor wraps the yt-dlp binary
type Extractor struct {
	path      string
	timeout   time.Duration
	extraArgs []string
}

// Options are per-call extraction options
type Options struct {
	Format        string
	Cookies       string
	NoPlaylist    bool
	ExtractorArgs []string
}

// NewExtractor creates a new extractor. A zero timeout means the caller's
// context alone bounds the run.
func NewExtractor(path string, timeout time.Duration, extraArgs ...string) *Extractor {
	if path == "" {
		path = "yt-dlp"
	}
	return &Extractor{
		path:      path,
		timeout:   timeout,
		extraArgs: extraArgs,
	}
}

func (e *Extractor) args(url string, opts Options) []string {
	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--no-warnings",
	}
	if opts.NoPlaylist {
		args = append(args, "--no-playlist")
	}
	if opts.Format != "" {
		args = append(args, "--format", opts.Format)
	}
	if opts.Cookies != "" {
		args = append(args, "--cookies", opts.Cookies)
	}
	for _, ea := range opts.ExtractorArgs {
		args = append(args, "--extractor-args", ea)
	}
	args = append(args, e.extraArgs...)
	return append(args, "--", url)
}

// Extract runs the engine on url and returns the raw info document
func (e *Extractor) Extract(ctx context.Context, url string, opts Options) ([]byte, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, e.path, e.args(url, opts)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrExtraction, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v, stderr: %s", ErrExtraction, err, strings.TrimSpace(stderr.String()))
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if !json.Valid(out) {
		return nil, fmt.Errorf("%w: engine output is not a JSON document", ErrExtraction)
	}

	return out, nil
}

// Version returns the engine version string
func (e *Extractor) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, e.path, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get extractor version: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
