package ovmf

import (
	"errors"
	"log/slog"
)

// Defaults for a Cache.
const (
	DefaultBaseURL                = "https://github.com/rust-osdev/ovmf-prebuilt/releases/download"
	DefaultMaxDownloadBytes int64 = 8 << 20 // 8 MiB
)

// Option configures a Cache.
type Option func(*Cache) error

// WithBaseURL sets the URL releases are downloaded from. Archives are
// expected at {base}/{tag}/{tag}-bin.tar.xz.
func WithBaseURL(base string) Option {
	return func(c *Cache) error {
		if base == "" {
			return errors.New("ovmf: base URL is empty")
		}
		c.baseURL = base
		return nil
	}
}

// WithUserAgent sets the User-Agent of the default fetcher.
// It has no effect when WithFetcher is used.
func WithUserAgent(ua string) Option {
	return func(c *Cache) error {
		c.userAgent = ua
		return nil
	}
}

// WithMaxDownloadBytes caps how much of an archive is read. Larger archives
// are truncated at the cap, which then fails digest verification.
func WithMaxDownloadBytes(n int64) Option {
	return func(c *Cache) error {
		if n <= 0 {
			return errors.New("ovmf: max download bytes must be > 0")
		}
		c.maxDownloadBytes = n
		return nil
	}
}

// WithMaxUnpackedBytes caps the decompressed tarball size.
// Use 0 to disable the limit.
func WithMaxUnpackedBytes(n uint64) Option {
	return func(c *Cache) error {
		c.maxUnpackedBytes = n
		return nil
	}
}

// WithCompression selects the archive codec, for mirrors that repack
// releases. The URL suffix follows the codec. Defaults to CompressionXZ.
func WithCompression(comp Compression) Option {
	return func(c *Cache) error {
		c.compression = comp
		return nil
	}
}

// WithFetcher replaces the network layer.
func WithFetcher(f Fetcher) Option {
	return func(c *Cache) error {
		if f == nil {
			return errors.New("ovmf: fetcher is nil")
		}
		c.fetcher = f
		return nil
	}
}

// WithLogger sets the logger for cache operations.
// By default, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		c.logger = logger
		return nil
	}
}
