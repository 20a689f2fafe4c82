package adapter

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	m "splice.dev/pkg/splice/internal/model"
)

// ArtifactFetcher downloads binary artifacts from an ordered list of
// mirrors.
type ArtifactFetcher interface {
	// Fetch tries each mirror in order and stops at the first success. When
	// every mirror fails the error is a *model.FetchError that wraps
	// model.ErrArtifactFetchFailed.
	Fetch(ctx context.Context, coordinate m.Coordinate, mirrors []m.MirrorConfig) (m.FetchResult, error)
}

// HTTPArtifactFetcher fetches artifacts over HTTP using the Maven repository
// layout and caches them on disk.
type HTTPArtifactFetcher struct {
	client   *http.Client
	cacheDir m.Path
	timeout  time.Duration
}

// NewHTTPArtifactFetcher constructs a fetcher with a default 30s per-attempt
// timeout.
func NewHTTPArtifactFetcher(cacheDir m.Path) *HTTPArtifactFetcher {
	return &HTTPArtifactFetcher{
		client:   http.DefaultClient,
		cacheDir: cacheDir,
		timeout:  30 * time.Second,
	}
}

// WithTimeout sets the per-mirror attempt timeout.
func (f *HTTPArtifactFetcher) WithTimeout(timeout time.Duration) *HTTPArtifactFetcher {
	if timeout > 0 {
		f.timeout = timeout
	}

	return f
}

// WithClient replaces the HTTP client.
func (f *HTTPArtifactFetcher) WithClient(client *http.Client) *HTTPArtifactFetcher {
	if client != nil {
		f.client = client
	}

	return f
}

// CachePath returns where the artifact is stored locally.
func (f *HTTPArtifactFetcher) CachePath(coordinate m.Coordinate) m.Path {
	return m.Path(filepath.Join(string(f.cacheDir), filepath.FromSlash(coordinate.RelPath())))
}

// Fetch returns the cached artifact when present, otherwise downloads it
// from the first mirror that serves it.
func (f *HTTPArtifactFetcher) Fetch(ctx context.Context, coordinate m.Coordinate, mirrors []m.MirrorConfig) (m.FetchResult, error) {
	start := time.Now()
	target := f.CachePath(coordinate)

	if _, err := os.Stat(string(target)); err == nil {
		sum, err := HashFile(target)
		if err != nil {
			return m.FetchResult{}, fmt.Errorf("hash cached %s: %w", target, err)
		}

		slog.Debug("artifact cache hit", "coordinate", coordinate.String(), "path", target)

		return m.FetchResult{
			Coordinate: coordinate,
			Path:       target,
			SHA256:     sum,
			Cached:     true,
			Elapsed:    time.Since(start),
		}, nil
	}

	var failures []m.MirrorFailure

	for _, mirror := range mirrors {
		if err := ctx.Err(); err != nil {
			failures = append(failures, m.MirrorFailure{Mirror: mirror.URL, Err: err})
			break
		}

		sum, err := f.attempt(ctx, coordinate, mirror, target)
		if err != nil {
			slog.Warn("mirror failed", "coordinate", coordinate.String(), "mirror", mirror.URL, "error", err)
			failures = append(failures, m.MirrorFailure{Mirror: mirror.URL, Err: err})

			continue
		}

		slog.Info("artifact fetched", "coordinate", coordinate.String(), "mirror", mirror.URL, "path", target)

		return m.FetchResult{
			Coordinate: coordinate,
			Path:       target,
			Mirror:     mirror.URL,
			SHA256:     sum,
			Failures:   failures,
			Elapsed:    time.Since(start),
		}, nil
	}

	if len(mirrors) == 0 {
		failures = append(failures, m.MirrorFailure{Mirror: "-", Err: errors.New("no mirrors configured")})
	}

	return m.FetchResult{}, &m.FetchError{Coordinate: coordinate, Failures: failures}
}

// ArtifactURL joins a mirror base URL with the artifact's repository path.
func ArtifactURL(mirror m.MirrorConfig, coordinate m.Coordinate) string {
	return strings.TrimRight(mirror.URL, "/") + "/" + coordinate.RelPath()
}

func (f *HTTPArtifactFetcher) attempt(ctx context.Context, coordinate m.Coordinate, mirror m.MirrorConfig, target m.Path) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ArtifactURL(mirror, coordinate), nil)
	if err != nil {
		return "", err
	}

	if mirror.Username != "" {
		req.SetBasicAuth(mirror.Username, mirror.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	return download(resp.Body, target)
}

// download streams body into a temporary sibling of target and renames it
// into place. A partial transfer never lands at target.
func download(body io.Reader, target m.Path) (string, error) {
	dir := filepath.Dir(string(target))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	h := sha256.New()

	if _, err := io.Copy(io.MultiWriter(tmp, h), body); err != nil {
		_ = tmp.Close()
		return "", err
	}

	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), string(target)); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
