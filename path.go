package ovmf

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// CacheDir returns the directory a release with the given tag occupies
// under root. It performs no I/O.
func CacheDir(root, tag string) string {
	return filepath.Join(root, tag)
}

// ArtifactPath returns the path of one artifact within an unpacked release
// directory. It performs no I/O; whether the file exists depends on what
// the upstream archive ships for that architecture.
func ArtifactPath(releaseDir string, arch Arch, ft FileType) string {
	return filepath.Join(releaseDir, arch.DirName(), ft.FileName())
}

// Prebuilt is an unpacked release in the cache. Its directory is immutable
// once present.
type Prebuilt struct {
	tag string
	dir string
}

// Tag returns the release tag.
func (p *Prebuilt) Tag() string {
	return p.tag
}

// Dir returns the release directory.
func (p *Prebuilt) Dir() string {
	return p.dir
}

// Path returns the path of an artifact in this release. Callers detect a
// missing artifact when opening it.
func (p *Prebuilt) Path(arch Arch, ft FileType) string {
	return ArtifactPath(p.dir, arch, ft)
}

// Artifact is an artifact found on disk by [Prebuilt.Artifacts].
type Artifact struct {
	Arch     Arch
	FileType FileType
	Path     string
	Size     int64
}

// Artifacts lists the known artifacts present in this release, ordered by
// architecture then file type.
func (p *Prebuilt) Artifacts() ([]Artifact, error) {
	var out []Artifact
	for _, arch := range Arches() {
		for _, ft := range FileTypes() {
			path := p.Path(arch, ft)
			info, err := os.Stat(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, err
			}
			if !info.Mode().IsRegular() {
				continue
			}
			out = append(out, Artifact{Arch: arch, FileType: ft, Path: path, Size: info.Size()})
		}
	}
	return out, nil
}
