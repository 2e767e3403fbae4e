// Package fetch retrieves remote resources (genetic code tables, FASTA
// inputs) into a local cache directory.
//
// A reference is remote when it starts with http://, https:// or www. The
// cached file is named after the URL's final path segment; if that file
// already exists it is used as-is and the network is not touched.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

// DefaultTimeout bounds a single download when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent with every request.
const UserAgent = "pal2nal/1 (+https://github.com/backmassage/pal2nal)"

// Error represents a failed retrieval.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures Resolve.
type Options struct {
	CacheDir string
	Timeout  time.Duration
	Client   *http.Client
}

// IsRemote reports whether ref names a network resource.
func IsRemote(ref string) bool {
	ref = strings.TrimSpace(ref)
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "www")
}

// Normalize returns the URL for a remote reference, adding https:// to bare
// www hosts.
func Normalize(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "www") {
		return "https://" + ref
	}
	return ref
}

// CachePath returns where a remote reference is stored under cacheDir.
func CachePath(ref, cacheDir string) (string, error) {
	u, err := url.Parse(Normalize(ref))
	if err != nil || u.Host == "" {
		return "", &Error{URL: ref, Message: "invalid URL", Cause: err}
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." || name == ".." {
		return "", &Error{URL: ref, Message: "URL has no file name"}
	}
	if cacheDir == "" {
		cacheDir = "."
	}
	return filepath.Join(cacheDir, name), nil
}

// Resolve returns a local path for ref. Local references are returned
// unchanged. Remote references are downloaded into opts.CacheDir unless the
// cached file already exists.
func Resolve(ctx context.Context, ref string, opts Options) (string, error) {
	if !IsRemote(ref) {
		return ref, nil
	}

	dest, err := CachePath(ref, opts.CacheDir)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(dest); err == nil && fi.Mode().IsRegular() {
		return dest, nil
	}

	if err := download(ctx, Normalize(ref), dest, opts); err != nil {
		return "", err
	}
	return dest, nil
}

func download(ctx context.Context, rawURL, dest string, opts Options) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &Error{URL: rawURL, Message: "failed to create cache directory", Cause: err}
	}
	pf, err := renameio.NewPendingFile(dest, renameio.WithPermissions(0o644))
	if err != nil {
		return &Error{URL: rawURL, Message: "failed to create temp file", Cause: err}
	}
	defer pf.Cleanup()

	if _, err := io.Copy(pf, resp.Body); err != nil {
		return &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return &Error{URL: rawURL, Message: "failed to store cache file", Cause: err}
	}
	return nil
}
