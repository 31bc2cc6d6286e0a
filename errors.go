package ovmf

import (
	"errors"
	"fmt"
)

// Sentinel errors for cache population. Each corresponds to one stage of
// [Cache.Get]; the returned error wraps both the sentinel and the underlying
// cause, so errors.Is works for either.
var (
	// ErrCreateCacheDir is returned when the cache root cannot be created.
	ErrCreateCacheDir = errors.New("ovmf: create cache dir failed")

	// ErrDownload is returned when the release archive cannot be fetched.
	ErrDownload = errors.New("ovmf: download failed")

	// ErrHashMismatch is returned when the downloaded archive does not match
	// the release digest. The concrete error is a *HashMismatchError.
	ErrHashMismatch = errors.New("ovmf: hash mismatch")

	// ErrDecompression is returned when the archive cannot be decompressed.
	ErrDecompression = errors.New("ovmf: decompression failed")

	// ErrCreateTempDir is returned when the staging directory cannot be created.
	ErrCreateTempDir = errors.New("ovmf: create temp dir failed")

	// ErrUnpack is returned when the tar stream cannot be extracted.
	ErrUnpack = errors.New("ovmf: unpack failed")

	// ErrRename is returned when the staged release cannot be moved into place.
	ErrRename = errors.New("ovmf: rename failed")

	// ErrMalformedTag is returned by [ParseTag] for tags that do not follow
	// the edk2-<base>-r<number> convention.
	ErrMalformedTag = errors.New("ovmf: malformed tag")

	// ErrInvalidRelease is returned by [Release.Validate], and by [Cache.Get]
	// for tags that cannot name a cache directory.
	ErrInvalidRelease = errors.New("ovmf: invalid release")
)

// HashMismatchError reports the digest computed over a downloaded archive
// alongside the digest the release expected.
type HashMismatchError struct {
	Actual   string
	Expected string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("ovmf: hash mismatch: got %s, want %s", e.Actual, e.Expected)
}

// Is reports whether target is [ErrHashMismatch].
func (e *HashMismatchError) Is(target error) bool {
	return target == ErrHashMismatch
}
