package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// ErrUnsafePath is returned for entries that would land outside the
// extraction root.
var ErrUnsafePath = errors.New("archive: entry escapes extraction root")

// Extract unpacks the tar stream r into dest, which must already exist.
// Regular files, directories, relative symlinks and hardlinks to earlier
// entries are supported; pax global headers are skipped; any other entry
// type is an error.
func Extract(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		if err := extractEntry(tr, hdr, dest); err != nil {
			return err
		}
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, dest string) error {
	if hdr.Typeflag == tar.TypeXGlobalHeader {
		return nil
	}
	if filepath.IsAbs(hdr.Name) || hasDotDot(hdr.Name) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, hdr.Name)
	}
	target, err := securejoin.SecureJoin(dest, hdr.Name)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsafePath, hdr.Name, err)
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, defaultDirPerm); err != nil {
			return fmt.Errorf("mkdir %s: %w", hdr.Name, err)
		}
	case tar.TypeReg:
		return writeFile(tr, target, hdr)
	case tar.TypeSymlink:
		return writeSymlink(target, hdr, dest)
	case tar.TypeLink:
		return writeHardlink(target, hdr, dest)
	default:
		return fmt.Errorf("unsupported tar entry %q (type %q)", hdr.Name, hdr.Typeflag)
	}
	return nil
}

func writeFile(r io.Reader, target string, hdr *tar.Header) error {
	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerm); err != nil {
		return fmt.Errorf("mkdir for %s: %w", hdr.Name, err)
	}
	perm := hdr.FileInfo().Mode().Perm()
	if perm == 0 {
		perm = defaultFilePerm
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm) //nolint:gosec // target is confined by securejoin
	if err != nil {
		return fmt.Errorf("create %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(f, r); err != nil { //nolint:gosec // decompressed size is bounded by the caller
		f.Close()
		return fmt.Errorf("write %s: %w", hdr.Name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", hdr.Name, err)
	}
	return nil
}

func writeSymlink(target string, hdr *tar.Header, dest string) error {
	link := hdr.Linkname
	if filepath.IsAbs(link) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, hdr.Name, link)
	}
	resolved := filepath.Join(filepath.Dir(target), link)
	if !within(dest, resolved) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrUnsafePath, hdr.Name, link)
	}
	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerm); err != nil {
		return fmt.Errorf("mkdir for %s: %w", hdr.Name, err)
	}
	if err := os.Symlink(link, target); err != nil {
		return fmt.Errorf("symlink %s: %w", hdr.Name, err)
	}
	return nil
}

// writeHardlink links target to an earlier entry. Linknames are relative to
// the archive root.
func writeHardlink(target string, hdr *tar.Header, dest string) error {
	link := hdr.Linkname
	if link == "" || filepath.IsAbs(link) || hasDotDot(link) {
		return fmt.Errorf("%w: hardlink %s -> %s", ErrUnsafePath, hdr.Name, link)
	}
	source, err := securejoin.SecureJoin(dest, link)
	if err != nil {
		return fmt.Errorf("%w: hardlink %s -> %s: %w", ErrUnsafePath, hdr.Name, link, err)
	}
	info, err := os.Lstat(source)
	if err != nil {
		return fmt.Errorf("hardlink %s: %w", hdr.Name, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("hardlink %s: %s is not a regular file", hdr.Name, link)
	}
	if err := os.MkdirAll(filepath.Dir(target), defaultDirPerm); err != nil {
		return fmt.Errorf("mkdir for %s: %w", hdr.Name, err)
	}
	if err := os.Link(source, target); err != nil {
		return fmt.Errorf("hardlink %s: %w", hdr.Name, err)
	}
	return nil
}

func hasDotDot(name string) bool {
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

func within(root, path string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}
