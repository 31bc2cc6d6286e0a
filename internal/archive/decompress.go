package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// DefaultMaxUnpackedSize bounds the decompressed tarball (256MB).
const DefaultMaxUnpackedSize = 256 << 20

// ErrTooLarge is returned when decompressed output exceeds the limit.
var ErrTooLarge = errors.New("archive: decompressed size exceeds limit")

// Decompress fully decodes data with codec c, reading at most maxSize bytes
// of output. A maxSize of 0 disables the limit.
func Decompress(c Compression, data []byte, maxSize uint64) ([]byte, error) {
	r, release, err := newReader(c, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer release()

	return readAllWithLimit(r, maxSize)
}

func newReader(c Compression, r io.Reader) (io.Reader, func(), error) {
	switch c {
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("xz: %w", err)
		}
		return xr, func() {}, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(r,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(DefaultMaxUnpackedSize),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return dec, dec.Close, nil
	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gr, func() { _ = gr.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown compression %d", c)
	}
}

func readAllWithLimit(r io.Reader, maxSize uint64) ([]byte, error) {
	if maxSize == 0 {
		return io.ReadAll(r)
	}
	if maxSize > uint64(math.MaxInt64-1) {
		return nil, ErrTooLarge
	}
	limit := int64(maxSize) + 1 //nolint:gosec // checked above
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) > maxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}
