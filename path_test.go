package ovmf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactPath(t *testing.T) {
	t.Parallel()

	dir := CacheDir("ovmf-cache", "edk2-stable202308-r1")
	assert.Equal(t, filepath.FromSlash("ovmf-cache/edk2-stable202308-r1"), dir)
	assert.Equal(t, filepath.FromSlash("ovmf-cache/edk2-stable202308-r1/x64/code.fd"), ArtifactPath(dir, X64, Code))
	assert.Equal(t, ArtifactPath(dir, X64, Code), ArtifactPath(dir, X64, Code))
}

func TestArtifactPathAllCombinations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arch Arch
		ft   FileType
		want string
	}{
		{Ia32, Code, "r/ia32/code.fd"},
		{Ia32, Vars, "r/ia32/vars.fd"},
		{X64, Shell, "r/x64/shell.efi"},
		{Aarch64, Vars, "r/aarch64/vars.fd"},
		{Riscv64, Code, "r/riscv64/code.fd"},
		{Riscv64, Shell, "r/riscv64/shell.efi"},
	}
	for _, tt := range tests {
		assert.Equal(t, filepath.FromSlash(tt.want), ArtifactPath("r", tt.arch, tt.ft))
	}
}

func TestParseArchAndFileType(t *testing.T) {
	t.Parallel()

	for _, a := range Arches() {
		got, err := ParseArch(a.DirName())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	for _, f := range FileTypes() {
		got, err := ParseFileType(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
		got, err = ParseFileType(f.FileName())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseArch("x86_64")
	require.Error(t, err)
	_, err = ParseFileType("code.bin")
	require.Error(t, err)
}

func TestPrebuiltArtifacts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("x64/vars.fd", "vv")
	write("x64/code.fd", "cccc")
	write("aarch64/shell.efi", "s")
	write("x64/unrelated.txt", "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ia32", "code.fd"), 0o755))

	p := &Prebuilt{tag: "t", dir: dir}
	got, err := p.Artifacts()
	require.NoError(t, err)

	want := []Artifact{
		{Arch: X64, FileType: Code, Path: filepath.Join(dir, "x64", "code.fd"), Size: 4},
		{Arch: X64, FileType: Vars, Path: filepath.Join(dir, "x64", "vars.fd"), Size: 2},
		{Arch: Aarch64, FileType: Shell, Path: filepath.Join(dir, "aarch64", "shell.efi"), Size: 1},
	}
	assert.Equal(t, want, got)
}
