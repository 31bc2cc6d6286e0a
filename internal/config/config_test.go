package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ovmf"
	"github.com/meigma/ovmf/internal/archive"
	"github.com/meigma/ovmf/internal/testutil"
)

const mirrorDigest = "1111111111111111111111111111111111111111111111111111111111111111"

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
cache_dir: /var/cache/ovmf
base_url: https://mirror.example/ovmf
user_agent: builder/2
max_download: 16 MiB
max_unpacked: 512 MiB
compression: zstd
releases:
  - tag: edk2-stable202502-r1
    sha256: ` + mirrorDigest + `
`))
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/ovmf", cfg.CacheDir)
	assert.Equal(t, "16 MiB", cfg.MaxDownload)
	assert.Equal(t, "512 MiB", cfg.MaxUnpacked)
	require.Len(t, cfg.Releases, 1)

	opts, err := cfg.Options()
	require.NoError(t, err)
	c, err := ovmf.New(t.TempDir(), opts...)
	require.NoError(t, err)
	assert.Equal(t,
		"https://mirror.example/ovmf/edk2-stable202502-r1/edk2-stable202502-r1-bin.tar.zst",
		c.ArchiveURL(cfg.Releases[0].release()))

	rel, ok := cfg.Lookup("edk2-stable202502-r1")
	require.True(t, ok)
	assert.Equal(t, mirrorDigest, rel.SHA256)

	_, ok = cfg.Lookup(ovmf.Latest.Tag)
	assert.True(t, ok, "built-in releases stay visible")
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	cfg, err := Parse(nil)
	require.NoError(t, err)
	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Empty(t, opts)
	assert.Equal(t, ovmf.KnownReleases(), cfg.KnownReleases())
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown key":   "cache_directory: /tmp\n",
		"bad digest":    "releases:\n  - tag: edk2-stable202502-r1\n    sha256: nothex\n",
		"bad tag":       "releases:\n  - tag: stable202502\n    sha256: " + mirrorDigest + "\n",
		"not a mapping": "- 1\n- 2\n",
	}
	for name, doc := range tests {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestOptionsRejectsBadValues(t *testing.T) {
	t.Parallel()

	_, err := (&Config{MaxDownload: "lots"}).Options()
	require.Error(t, err)
	_, err = (&Config{MaxUnpacked: "0"}).Options()
	require.Error(t, err)
	_, err = (&Config{Compression: "bzip2"}).Options()
	require.Error(t, err)
}

func TestOptionsMaxUnpacked(t *testing.T) {
	t.Parallel()

	const tag = "edk2-stable202502-r1"
	data := testutil.Archive(t, ovmf.CompressionXZ, tag, map[string][]byte{
		"x64/code.fd": bytes.Repeat([]byte{0xff}, 8<<10),
	})
	rel := ovmf.Release{Tag: tag, SHA256: testutil.SHA256(data)}

	opts, err := (&Config{MaxUnpacked: "4 KiB"}).Options()
	require.NoError(t, err)
	fetcher := testutil.NewFetcher()
	c, err := ovmf.New(t.TempDir(), append(opts, ovmf.WithFetcher(fetcher))...)
	require.NoError(t, err)
	fetcher.Serve(c.ArchiveURL(rel), data)

	_, err = c.Get(context.Background(), rel)
	require.ErrorIs(t, err, ovmf.ErrDecompression)
	require.ErrorIs(t, err, archive.ErrTooLarge)
}

func TestKnownReleasesOverride(t *testing.T) {
	t.Parallel()

	cfg := &Config{Releases: []Release{{Tag: ovmf.Latest.Tag, SHA256: mirrorDigest}}}
	releases := cfg.KnownReleases()
	assert.Len(t, releases, len(ovmf.KnownReleases()))

	rel, ok := cfg.Lookup(ovmf.Latest.Tag)
	require.True(t, ok)
	assert.Equal(t, mirrorDigest, rel.SHA256)
}

func TestParseSize(t *testing.T) {
	t.Parallel()

	n, err := ParseSize("8 MiB")
	require.NoError(t, err)
	assert.Equal(t, int64(8<<20), n)

	n, err = ParseSize("1kB")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)

	_, err = ParseSize("0")
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ovmf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_download: 4 MiB\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "4 MiB", cfg.MaxDownload)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
