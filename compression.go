package ovmf

import "github.com/meigma/ovmf/internal/archive"

// Compression identifies the codec a release tarball is published with.
type Compression = archive.Compression

// Compression constants.
const (
	CompressionXZ   = archive.CompressionXZ
	CompressionZstd = archive.CompressionZstd
	CompressionGzip = archive.CompressionGzip
)

// ParseCompression maps "xz", "zstd" or "gzip" to a Compression.
func ParseCompression(s string) (Compression, bool) {
	return archive.ParseCompression(s)
}
