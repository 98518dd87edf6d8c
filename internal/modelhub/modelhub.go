// Package modelhub resolves hf://<org>/<repo>/<file> model references to
// local paths, downloading through the Hugging Face Hub cache on first use.
// Concurrent requests for the same file share one download.
package modelhub

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gomlx/go-huggingface/hub"
	"golang.org/x/sync/singleflight"
)

// Scheme prefixes model references served from the Hub.
const Scheme = "hf://"

// EnvCacheDir and EnvToken are read when the caller leaves them empty.
const (
	EnvCacheDir = "HF_HUB_CACHE"
	EnvToken    = "HF_TOKEN"
)

// Ref is a parsed hf:// reference.
type Ref struct {
	Repo string // org/repo
	File string // path inside the repo
}

func (r Ref) String() string { return Scheme + r.Repo + "/" + r.File }

// IsRef reports whether s uses the hf:// scheme.
func IsRef(s string) bool { return strings.HasPrefix(s, Scheme) }

// ParseRef splits hf://org/repo/path/to/file.
func ParseRef(s string) (Ref, error) {
	if !IsRef(s) {
		return Ref{}, fmt.Errorf("modelhub: %q is not an %s reference", s, Scheme)
	}
	parts := strings.SplitN(strings.TrimPrefix(s, Scheme), "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" || strings.HasSuffix(parts[2], "/") {
		return Ref{}, fmt.Errorf("modelhub: %q must look like %sorg/repo/file", s, Scheme)
	}
	return Ref{Repo: parts[0] + "/" + parts[1], File: parts[2]}, nil
}

// DownloadFunc fetches one file of a repo into cacheDir and returns its path.
type DownloadFunc func(repo, file, cacheDir, token string) (string, error)

// Hub resolves references against one cache directory.
type Hub struct {
	cacheDir string
	token    string
	download DownloadFunc
	log      *slog.Logger
	group    singleflight.Group
}

// Option configures a Hub.
type Option func(*Hub)

// WithCacheDir overrides the cache directory.
func WithCacheDir(dir string) Option { return func(h *Hub) { h.cacheDir = dir } }

// WithToken sets the Hub access token for gated repos.
func WithToken(token string) Option { return func(h *Hub) { h.token = token } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(h *Hub) { h.log = l } }

// WithDownloader replaces the Hub client, mainly for tests.
func WithDownloader(fn DownloadFunc) Option { return func(h *Hub) { h.download = fn } }

// New returns a Hub. Empty cache dir and token fall back to HF_HUB_CACHE,
// HF_TOKEN and finally ~/.cache/huggingface/hub.
func New(opts ...Option) *Hub {
	h := &Hub{download: hubDownload}
	for _, o := range opts {
		o(h)
	}
	if h.cacheDir == "" {
		h.cacheDir = os.Getenv(EnvCacheDir)
	}
	if h.cacheDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			h.cacheDir = filepath.Join(home, ".cache", "huggingface", "hub")
		}
	}
	if h.token == "" {
		h.token = os.Getenv(EnvToken)
	}
	if h.log == nil {
		h.log = slog.Default()
	}
	h.log = h.log.WithGroup("modelhub")
	return h
}

// CacheDir returns the directory downloads land in.
func (h *Hub) CacheDir() string { return h.cacheDir }

// Resolve returns a local path for ref. Anything that is not an hf://
// reference is returned unchanged. The download itself cannot be
// interrupted; a cancelled ctx only stops the wait.
func (h *Hub) Resolve(ctx context.Context, ref string) (string, error) {
	if !IsRef(ref) {
		return ref, nil
	}
	r, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	ch := h.group.DoChan(r.String(), func() (any, error) {
		start := time.Now()
		path, err := h.download(r.Repo, r.File, h.cacheDir, h.token)
		if err != nil {
			return "", fmt.Errorf("modelhub: download %s: %w", r, err)
		}
		h.log.Info("model file ready", "ref", r.String(), "path", path, "elapsed", time.Since(start))
		return path, nil
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func hubDownload(repo, file, cacheDir, token string) (string, error) {
	r := hub.New(repo)
	if cacheDir != "" {
		r = r.WithCacheDir(cacheDir)
	}
	if token != "" {
		r = r.WithAuth(token)
	}
	return r.DownloadFile(file)
}
