package candle

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
)

const (
	DefaultLibraryVersion = "v0.1.0"
	DefaultLibraryRepo    = "kawai-network/candle"
)

// libraryName returns the release asset stem for this platform.
func libraryName() (string, error) {
	switch runtime.GOOS + "/" + runtime.GOARCH {
	case "darwin/arm64", "darwin/amd64", "linux/amd64", "linux/arm64", "windows/amd64", "windows/arm64":
		return fmt.Sprintf("libcandle_binding-%s-%s", runtime.GOOS, runtime.GOARCH), nil
	}
	return "", fmt.Errorf("candle: unsupported platform %s/%s", runtime.GOOS, runtime.GOARCH)
}

func libraryExtension() string {
	switch runtime.GOOS {
	case "darwin":
		return "dylib"
	case "windows":
		return "dll"
	default:
		return "so"
	}
}

// DownloadLibrary fetches the basic binding release into cacheDir
// (default ~/.cache/go-candle/libs/<version>) and returns the library path.
// A library already in the cache is reused.
func DownloadLibrary(ctx context.Context, version, cacheDir string) (string, error) {
	if version == "" {
		version = DefaultLibraryVersion
	}
	name, err := libraryName()
	if err != nil {
		return "", err
	}
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("candle: user home dir: %w", err)
		}
		cacheDir = filepath.Join(home, ".cache", "go-candle", "libs", version)
	}

	lib := fmt.Sprintf("%s-basic.%s", name, libraryExtension())
	dest := filepath.Join(cacheDir, lib)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("candle: create cache dir: %w", err)
	}

	url := fmt.Sprintf("https://github.com/%s/releases/download/%s/%s.gz", DefaultLibraryRepo, version, lib)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("candle: download library: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("candle: download library %s: HTTP %d", url, resp.StatusCode)
	}

	if err := writeGunzipped(resp.Body, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// writeGunzipped decompresses r into dest through a temp file in the same
// directory, so a partial download never looks like a cached library.
func writeGunzipped(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("candle: gzip: %w", err)
	}
	defer gz.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".candle-lib-*")
	if err != nil {
		return fmt.Errorf("candle: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, gz); err != nil {
		tmp.Close()
		return fmt.Errorf("candle: decompress library: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return fmt.Errorf("candle: set permissions: %w", err)
	}
	return os.Rename(tmp.Name(), dest)
}
