// Package config loads the ovmf-prebuilt command's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/meigma/ovmf"
)

// Config is the on-disk configuration. Every field is optional; zero
// values leave the library defaults in place.
type Config struct {
	// CacheDir is the cache root. The command falls back to the user cache
	// directory when empty.
	CacheDir string `yaml:"cache_dir"`

	// BaseURL overrides where release archives are downloaded from.
	BaseURL string `yaml:"base_url"`

	// UserAgent overrides the HTTP User-Agent.
	UserAgent string `yaml:"user_agent"`

	// MaxDownload caps archive size, as a human size such as "8 MiB".
	MaxDownload string `yaml:"max_download"`

	// MaxUnpacked caps the decompressed tarball size, e.g. "512 MiB".
	MaxUnpacked string `yaml:"max_unpacked"`

	// Compression is the archive codec: xz (default), zstd or gzip.
	Compression string `yaml:"compression"`

	// Releases adds releases to the built-in table, e.g. ones published to
	// a private mirror.
	Releases []Release `yaml:"releases"`
}

// Release is one entry of the releases table.
type Release struct {
	Tag    string `yaml:"tag"`
	SHA256 string `yaml:"sha256"`
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-supplied
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for i, r := range cfg.Releases {
		if err := r.release().Validate(); err != nil {
			return nil, fmt.Errorf("releases[%d]: %w", i, err)
		}
	}
	return &cfg, nil
}

// Options translates the configuration into cache options.
func (c *Config) Options() ([]ovmf.Option, error) {
	var opts []ovmf.Option
	if c.BaseURL != "" {
		opts = append(opts, ovmf.WithBaseURL(c.BaseURL))
	}
	if c.UserAgent != "" {
		opts = append(opts, ovmf.WithUserAgent(c.UserAgent))
	}
	if c.MaxDownload != "" {
		n, err := ParseSize(c.MaxDownload)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ovmf.WithMaxDownloadBytes(n))
	}
	if c.MaxUnpacked != "" {
		n, err := ParseSize(c.MaxUnpacked)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ovmf.WithMaxUnpackedBytes(uint64(n)))
	}
	if c.Compression != "" {
		comp, ok := ovmf.ParseCompression(c.Compression)
		if !ok {
			return nil, fmt.Errorf("unknown compression %q", c.Compression)
		}
		opts = append(opts, ovmf.WithCompression(comp))
	}
	return opts, nil
}

// KnownReleases returns the built-in releases followed by configured ones.
// A configured release replaces a built-in release with the same tag.
func (c *Config) KnownReleases() []ovmf.Release {
	out := ovmf.KnownReleases()
	for _, r := range c.Releases {
		replaced := false
		for i := range out {
			if out[i].Tag == r.Tag {
				out[i] = r.release()
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, r.release())
		}
	}
	return out
}

// Lookup finds a release by tag in KnownReleases.
func (c *Config) Lookup(tag string) (ovmf.Release, bool) {
	for _, r := range c.KnownReleases() {
		if r.Tag == tag {
			return r, true
		}
	}
	return ovmf.Release{}, false
}

// ParseSize parses a human size such as "8 MiB" or "16MB" into bytes.
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if n == 0 || n > math.MaxInt64 {
		return 0, fmt.Errorf("invalid size %q: out of range", s)
	}
	return int64(n), nil
}

func (r Release) release() ovmf.Release {
	return ovmf.Release{Tag: r.Tag, SHA256: r.SHA256}
}
