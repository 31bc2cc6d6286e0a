package ovmf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/ovmf/http"
	"github.com/meigma/ovmf/internal/archive"
)

const defaultDirPerm = 0o755

// Cache fetches releases into a local directory, one subdirectory per tag.
//
// A release directory is trusted once present: Get never re-verifies it.
// Population is not coordinated across processes; two callers racing on the
// same uncached tag may both download, and the loser's final rename fails
// with ErrRename.
type Cache struct {
	root             string
	baseURL          string
	userAgent        string
	maxDownloadBytes int64
	maxUnpackedBytes uint64
	compression      Compression
	fetcher          Fetcher
	logger           *slog.Logger
}

// New creates a Cache rooted at root. The directory is created lazily by
// Get; New performs no I/O.
func New(root string, opts ...Option) (*Cache, error) {
	if root == "" {
		return nil, errors.New("ovmf: cache root is empty")
	}
	c := &Cache{
		root:             root,
		baseURL:          DefaultBaseURL,
		userAgent:        http.DefaultUserAgent,
		maxDownloadBytes: DefaultMaxDownloadBytes,
		maxUnpackedBytes: archive.DefaultMaxUnpackedSize,
		compression:      CompressionXZ,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.fetcher == nil {
		c.fetcher = http.NewFetcher(http.WithUserAgent(c.userAgent))
	}
	return c, nil
}

// log returns the logger, falling back to a discard logger if nil.
func (c *Cache) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// ArchiveURL returns the URL Get downloads rel from.
func (c *Cache) ArchiveURL(rel Release) string {
	return archiveURL(c.baseURL, rel.Tag, c.compression)
}

// Has reports whether rel is already present in the cache. Tags that Get
// would reject are never present.
func (c *Cache) Has(rel Release) bool {
	if checkTag(rel.Tag) != nil {
		return false
	}
	_, err := os.Stat(CacheDir(c.root, rel.Tag))
	return err == nil
}

// Get returns the cached release, downloading, verifying and unpacking it
// first if its directory does not exist yet.
//
// The archive is fetched into memory (truncated at the configured maximum
// download size), checked against rel.SHA256, decompressed, and unpacked
// into a temporary directory under the cache root. Its {tag}-bin directory
// is then renamed into place; nothing appears at the release path before
// that rename. The temporary directory is removed on every path.
func (c *Cache) Get(ctx context.Context, rel Release) (*Prebuilt, error) {
	if err := checkTag(rel.Tag); err != nil {
		return nil, err
	}
	log := c.log().With("tag", rel.Tag)

	if err := os.MkdirAll(c.root, defaultDirPerm); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCreateCacheDir, c.root, err)
	}

	target := CacheDir(c.root, rel.Tag)
	if _, err := os.Stat(target); err == nil {
		log.Debug("cache hit", "dir", target)
		return &Prebuilt{tag: rel.Tag, dir: target}, nil
	}

	url := c.ArchiveURL(rel)
	log.Debug("downloading archive", "url", url, "limit", c.maxDownloadBytes)
	data, err := c.fetcher.Fetch(ctx, url, c.maxDownloadBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDownload, url, err)
	}

	actual := digest.SHA256.FromBytes(data).Encoded()
	if actual != rel.SHA256 {
		log.Debug("digest mismatch", "actual", actual, "expected", rel.SHA256, "bytes", len(data))
		return nil, &HashMismatchError{Actual: actual, Expected: rel.SHA256}
	}

	tarball, err := archive.Decompress(c.compression, data, c.maxUnpackedBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompression, err)
	}

	tmp, err := os.MkdirTemp(c.root, ".tmp-"+rel.Tag+"-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateTempDir, err)
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			log.Warn("remove temp dir", "dir", tmp, "error", err)
		}
	}()

	log.Debug("unpacking archive", "dir", tmp, "bytes", len(tarball))
	if err := archive.Extract(bytes.NewReader(tarball), tmp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnpack, err)
	}

	staged := filepath.Join(tmp, rel.Tag+"-bin")
	if err := os.Rename(staged, target); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRename, err)
	}
	log.Debug("release cached", "dir", target)

	return &Prebuilt{tag: rel.Tag, dir: target}, nil
}

// checkTag rejects tags that are not a single path element, since the tag
// names a directory under the cache root.
func checkTag(tag string) error {
	if tag == "" || tag == "." || tag == ".." || strings.ContainsAny(tag, `/\`) {
		return fmt.Errorf("%w: tag %q is not a valid directory name", ErrInvalidRelease, tag)
	}
	return nil
}
