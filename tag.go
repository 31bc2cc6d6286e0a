package ovmf

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	tagPrefix  = "edk2-"
	releaseSep = "-r"
)

// Tag is a parsed release tag. Upstream publishes each edk2 stable tag one
// or more times; Number counts those rebuilds.
type Tag struct {
	Release string // full tag, e.g. edk2-stable202211-r2
	Base    string // edk2 tag, e.g. edk2-stable202211
	Number  int    // rebuild number, e.g. 2
}

// ParseTag splits a release tag of the form edk2-<name>-r<number>.
func ParseTag(s string) (Tag, error) {
	idx := strings.LastIndex(s, releaseSep)
	if idx < 0 {
		return Tag{}, fmt.Errorf("%w: %q: missing %q suffix", ErrMalformedTag, s, releaseSep)
	}
	base, num := s[:idx], s[idx+len(releaseSep):]

	if !strings.HasPrefix(base, tagPrefix) || len(base) == len(tagPrefix) {
		return Tag{}, fmt.Errorf("%w: %q: base %q must start with %q", ErrMalformedTag, s, base, tagPrefix)
	}
	if num == "" || !isDigits(num) {
		return Tag{}, fmt.Errorf("%w: %q: release number %q is not numeric", ErrMalformedTag, s, num)
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return Tag{}, fmt.Errorf("%w: %q: %w", ErrMalformedTag, s, err)
	}

	return Tag{Release: s, Base: base, Number: n}, nil
}

func (t Tag) String() string {
	return t.Release
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
