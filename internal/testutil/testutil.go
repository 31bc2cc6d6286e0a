// Package testutil builds release archives and fake fetchers for tests.
package testutil

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/meigma/ovmf/internal/archive"
)

// Tarball returns an uncompressed tar stream with every file under the
// {tag}-bin/ top-level directory, as upstream lays out releases. Keys use
// forward slashes, e.g. "x64/code.fd".
func Tarball(t testing.TB, tag string, files map[string][]byte) []byte {
	t.Helper()

	root := tag + "-bin/"
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: root, Typeflag: tar.TypeDir, Mode: 0o755}))
	dirs := map[string]bool{}
	for _, name := range names {
		if i := strings.LastIndexByte(name, '/'); i > 0 && !dirs[name[:i]] {
			dirs[name[:i]] = true
			require.NoError(t, tw.WriteHeader(&tar.Header{Name: root + name[:i] + "/", Typeflag: tar.TypeDir, Mode: 0o755}))
		}
		content := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     root + name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// Compress wraps data with the given codec.
func Compress(t testing.TB, c archive.Compression, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch c {
	case archive.CompressionXZ:
		w, err = xz.NewWriter(&buf)
	case archive.CompressionZstd:
		w, err = zstd.NewWriter(&buf)
	case archive.CompressionGzip:
		w = gzip.NewWriter(&buf)
	default:
		t.Fatalf("unknown compression %v", c)
	}
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// Archive builds a compressed release archive for tag.
func Archive(t testing.TB, c archive.Compression, tag string, files map[string][]byte) []byte {
	t.Helper()
	return Compress(t, c, Tarball(t, tag, files))
}

// SHA256 returns the lowercase hex sha256 of data.
func SHA256(data []byte) string {
	return digest.SHA256.FromBytes(data).Encoded()
}

// Fetcher serves fixed archives by URL and records every call.
type Fetcher struct {
	mu      sync.Mutex
	archive map[string][]byte
	calls   []string
	err     error
}

// NewFetcher returns a Fetcher that serves nothing.
func NewFetcher() *Fetcher {
	return &Fetcher{archive: make(map[string][]byte)}
}

// Serve registers data at url.
func (f *Fetcher) Serve(url string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archive[url] = data
}

// Fail makes every subsequent Fetch return err.
func (f *Fetcher) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Fetch returns the data registered at url, truncated to limit.
func (f *Fetcher) Fetch(_ context.Context, url string, limit int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.archive[url]
	if !ok {
		return nil, errNotFound(url)
	}
	if limit > 0 && int64(len(data)) > limit {
		data = data[:limit]
	}
	return bytes.Clone(data), nil
}

// Calls returns the URLs fetched so far.
func (f *Fetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type errNotFound string

func (e errNotFound) Error() string {
	return "not found: " + string(e)
}
