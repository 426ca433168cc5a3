package fetch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemtee/fmf/pkg/fetch"
)

func TestLockedFetchRunsFetcherInCacheDir(t *testing.T) {
	cache := t.TempDir()
	var got string

	locked := fetch.Locked{
		CacheDir: cache,
		Fetcher: fetch.FetcherFunc(func(ctx context.Context, ref fetch.Reference, destination string) error {
			got = destination
			return os.MkdirAll(destination, 0o755)
		}),
	}

	ref := fetch.Reference{URL: "https://example.com/repo.git", Ref: "main", Path: "/tests"}
	dir, err := locked.Fetch(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, got, dir)
	assert.Equal(t, cache, filepath.Dir(dir))
}

func TestLockedFetchSameReferenceSameDirectory(t *testing.T) {
	cache := t.TempDir()
	noop := fetch.FetcherFunc(func(context.Context, fetch.Reference, string) error { return nil })
	locked := fetch.Locked{CacheDir: cache, Fetcher: noop}

	ref := fetch.Reference{URL: "https://example.com/repo.git", Ref: "main"}
	first, err := locked.Fetch(context.Background(), ref)
	require.NoError(t, err)
	second, err := locked.Fetch(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := locked.Fetch(context.Background(), fetch.Reference{URL: "https://example.com/repo.git", Ref: "devel"})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestLockedFetchReleasesLockOnError(t *testing.T) {
	cache := t.TempDir()
	boom := fetch.FetcherFunc(func(context.Context, fetch.Reference, string) error {
		return errors.New("network down")
	})
	locked := fetch.Locked{CacheDir: cache, Fetcher: boom}

	ref := fetch.Reference{URL: "https://example.com/repo.git"}
	_, err := locked.Fetch(context.Background(), ref)
	require.Error(t, err)

	// A failed fetch must not leave the reference locked: a retry
	// with a working fetcher succeeds promptly.
	locked.Fetcher = fetch.FetcherFunc(func(context.Context, fetch.Reference, string) error { return nil })
	locked.Timeout = 2 * time.Second
	_, err = locked.Fetch(context.Background(), ref)
	require.NoError(t, err)
}

func TestLockedFetchWithoutFetcherFails(t *testing.T) {
	locked := fetch.Locked{CacheDir: t.TempDir()}
	_, err := locked.Fetch(context.Background(), fetch.Reference{URL: "https://example.com"})
	require.Error(t, err)
}

func TestCleanRemovesCacheDir(t *testing.T) {
	cache := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(filepath.Join(cache, "entry"), 0o755))

	require.NoError(t, fetch.Clean(cache))
	_, err := os.Stat(cache)
	assert.True(t, os.IsNotExist(err))
}

func TestReferenceString(t *testing.T) {
	ref := fetch.Reference{URL: "https://example.com/repo.git", Ref: "main", Path: "/tests"}
	assert.Equal(t, "https://example.com/repo.git@main:/tests", ref.String())
	assert.Equal(t, "https://example.com/repo.git", fetch.Reference{URL: "https://example.com/repo.git"}.String())
}
