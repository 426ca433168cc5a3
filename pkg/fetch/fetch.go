// Package fetch defines the remote-reference fetch contract. Actual
// cloning is an external collaborator behind the Fetcher interface;
// what lives here is the concurrency discipline around it: a
// per-reference file lock on a shared cache directory, held
// across the fetch and released on every exit path, plus a per-call
// timeout. The lock uses github.com/gofrs/flock, the ecosystem
// file-locking library, rather than a hand-rolled lockfile protocol.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/teemtee/fmf/pkg/fmferrors"
)

// Reference identifies a remote metadata tree: a repository URL, an
// optional ref (branch, tag or commit), a path inside the repository
// where the tree root lives, and an optional node name to select
// after the tree is built.
type Reference struct {
	URL  string
	Ref  string
	Path string
	Name string
}

// String renders the reference in url@ref:path form for messages and
// cache keying.
func (r Reference) String() string {
	out := r.URL
	if r.Ref != "" {
		out += "@" + r.Ref
	}
	if r.Path != "" {
		out += ":" + r.Path
	}
	return out
}

// Fetcher materializes a remote reference into destination, a
// directory the caller owns. Implementations typically clone or pull
// a git repository; this module never does so itself.
type Fetcher interface {
	Fetch(ctx context.Context, ref Reference, destination string) error
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, ref Reference, destination string) error

func (f FetcherFunc) Fetch(ctx context.Context, ref Reference, destination string) error {
	return f(ctx, ref, destination)
}

// Locked wraps a Fetcher with the cache-directory locking discipline:
// concurrent callers fetching the same reference serialize on a file
// lock keyed by url+ref+path, and each call is bounded by Timeout.
type Locked struct {
	Fetcher  Fetcher
	CacheDir string

	// Timeout bounds one Fetch call, lock acquisition included. Zero
	// means no bound beyond the caller's own context.
	Timeout time.Duration
}

// Fetch acquires the reference's lock, runs the wrapped fetcher into
// the reference's cache directory, and returns that directory. The
// lock is released on every exit path.
func (l Locked) Fetch(ctx context.Context, ref Reference) (string, error) {
	if l.Fetcher == nil {
		return "", fmferrors.NewGeneral("no fetcher configured for remote reference '%s'", ref)
	}

	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	destination := filepath.Join(l.CacheDir, cacheKey(ref))
	if err := os.MkdirAll(l.CacheDir, 0o755); err != nil {
		return "", fmferrors.NewFile(l.CacheDir, err, "failed to create cache directory")
	}

	lock := flock.New(destination + ".lock")
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return "", fmferrors.NewGeneral("failed to lock cache for '%s': %s", ref, err)
	}
	if !locked {
		return "", fmferrors.NewGeneral("failed to lock cache for '%s'", ref)
	}
	defer lock.Unlock()

	if err := l.Fetcher.Fetch(ctx, ref, destination); err != nil {
		return "", fmferrors.NewGeneral("failed to fetch '%s': %s", ref, err)
	}
	return destination, nil
}

// cacheKey derives a stable directory name for a reference. The hash
// keeps the name filesystem-safe regardless of what the URL contains.
func cacheKey(ref Reference) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%s", ref.URL, ref.Ref, ref.Path)))
	return hex.EncodeToString(sum[:16])
}

// DefaultCacheDir returns the per-user cache directory used when the
// caller does not configure one.
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmferrors.NewGeneral("failed to locate user cache directory: %s", err)
	}
	return filepath.Join(base, "fmf"), nil
}

// Clean removes the cache directory and everything under it.
func Clean(cacheDir string) error {
	if err := os.RemoveAll(cacheDir); err != nil {
		return fmferrors.NewFile(cacheDir, err, "failed to remove cache directory")
	}
	return nil
}
