// Package archive decompresses and unpacks release tarballs.
package archive

// Compression identifies the codec wrapping a release tarball.
type Compression uint8

const (
	// CompressionXZ is the codec upstream publishes releases with.
	CompressionXZ Compression = iota
	CompressionZstd
	CompressionGzip
)

func (c Compression) String() string {
	switch c {
	case CompressionXZ:
		return "xz"
	case CompressionZstd:
		return "zstd"
	case CompressionGzip:
		return "gzip"
	default:
		return "unknown"
	}
}

// Ext returns the file extension of a tarball compressed with c.
func (c Compression) Ext() string {
	switch c {
	case CompressionXZ:
		return ".tar.xz"
	case CompressionZstd:
		return ".tar.zst"
	case CompressionGzip:
		return ".tar.gz"
	default:
		return ".tar"
	}
}

// ParseCompression accepts the names returned by String.
func ParseCompression(s string) (Compression, bool) {
	switch s {
	case "xz", "":
		return CompressionXZ, true
	case "zstd", "zst":
		return CompressionZstd, true
	case "gzip", "gz":
		return CompressionGzip, true
	default:
		return 0, false
	}
}
