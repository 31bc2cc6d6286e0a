package ovmf

import "fmt"

// Arch is a CPU architecture firmware is built for.
type Arch uint8

const (
	Ia32 Arch = iota
	X64
	Aarch64
	Riscv64
)

// Arches returns every supported architecture.
func Arches() []Arch {
	return []Arch{Ia32, X64, Aarch64, Riscv64}
}

// DirName returns the directory holding this architecture's artifacts
// within a release.
func (a Arch) DirName() string {
	switch a {
	case Ia32:
		return "ia32"
	case X64:
		return "x64"
	case Aarch64:
		return "aarch64"
	case Riscv64:
		return "riscv64"
	default:
		return "unknown"
	}
}

func (a Arch) String() string {
	return a.DirName()
}

// ParseArch maps a directory name such as "x64" back to its Arch.
func ParseArch(s string) (Arch, error) {
	for _, a := range Arches() {
		if a.DirName() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown architecture %q", s)
}

// FileType is one kind of artifact shipped per architecture.
type FileType uint8

const (
	// Code is the firmware code image.
	Code FileType = iota
	// Vars is the firmware variable store template.
	Vars
	// Shell is the UEFI shell application.
	Shell
)

// FileTypes returns every artifact kind.
func FileTypes() []FileType {
	return []FileType{Code, Vars, Shell}
}

// FileName returns the artifact's file name within an architecture directory.
func (f FileType) FileName() string {
	switch f {
	case Code:
		return "code.fd"
	case Vars:
		return "vars.fd"
	case Shell:
		return "shell.efi"
	default:
		return "unknown"
	}
}

func (f FileType) String() string {
	switch f {
	case Code:
		return "code"
	case Vars:
		return "vars"
	case Shell:
		return "shell"
	default:
		return "unknown"
	}
}

// ParseFileType accepts either the short name ("code") or the file name
// ("code.fd").
func ParseFileType(s string) (FileType, error) {
	for _, f := range FileTypes() {
		if f.String() == s || f.FileName() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown file type %q", s)
}
