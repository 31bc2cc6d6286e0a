package ovmf

import (
	"fmt"

	"github.com/opencontainers/go-digest"
)

// Release identifies one upstream prebuilt release: the tag it was published
// under and the sha256 of its archive, as lowercase hex.
type Release struct {
	Tag    string
	SHA256 string
}

// Known upstream releases. Adding a release is a table edit.
var (
	EDK2Stable202211R1 = Release{
		Tag:    "edk2-stable202211-r1",
		SHA256: "b085cfe18fd674bf70a31af1dc3e991bcd25cb882981c6d3523d81260f1e0d12",
	}
	EDK2Stable202302R1 = Release{
		Tag:    "edk2-stable202302-r1",
		SHA256: "1d9a30afbf6a07c6580ca67629ea68c01e8449ef93c2e40482081f04b6f06ddb",
	}
	EDK2Stable202305R1 = Release{
		Tag:    "edk2-stable202305-r1",
		SHA256: "644a5a5aee748cd3d06e403a1b2c6bce934f8325122d3ecd365f2bc99d9d2016",
	}
	EDK2Stable202308R1 = Release{
		Tag:    "edk2-stable202308-r1",
		SHA256: "e75df3424e1c8edf9a6c14027a5a9dd16201d66cde0ad86766ccdc58aeebcccf",
	}
	EDK2Stable202311R1 = Release{
		Tag:    "edk2-stable202311-r1",
		SHA256: "2587ddd6b0134ecee122f9772aa8e40cd3765f3c1b7b453a56543f29f1e184eb",
	}
	EDK2Stable202311R2 = Release{
		Tag:    "edk2-stable202311-r2",
		SHA256: "4a7d01b7dc6b0fdbf3a0e17dacd364b772fb5b712aaf64ecf328273584185ca0",
	}
	EDK2Stable202402R1 = Release{
		Tag:    "edk2-stable202402-r1",
		SHA256: "91f3148ef146794241c77810a49cfa3e925c83eb55c5cc90f34718cc1b10e9eb",
	}

	// Latest is the newest release in the table.
	Latest = EDK2Stable202402R1
)

// knownReleases is ordered oldest first.
var knownReleases = []Release{
	EDK2Stable202211R1,
	EDK2Stable202302R1,
	EDK2Stable202305R1,
	EDK2Stable202308R1,
	EDK2Stable202311R1,
	EDK2Stable202311R2,
	EDK2Stable202402R1,
}

// KnownReleases returns the built-in release table, oldest first.
// The returned slice is a copy.
func KnownReleases() []Release {
	out := make([]Release, len(knownReleases))
	copy(out, knownReleases)
	return out
}

// LookupRelease returns the built-in release with the given tag.
func LookupRelease(tag string) (Release, bool) {
	for _, r := range knownReleases {
		if r.Tag == tag {
			return r, true
		}
	}
	return Release{}, false
}

// Validate checks that the tag follows the upstream naming convention and
// that SHA256 is a well-formed lowercase sha256 hex digest. It is intended
// for releases that do not come from the built-in table.
func (r Release) Validate() error {
	if _, err := ParseTag(r.Tag); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRelease, err)
	}
	if err := digest.NewDigestFromEncoded(digest.SHA256, r.SHA256).Validate(); err != nil {
		return fmt.Errorf("%w: sha256 %q: %w", ErrInvalidRelease, r.SHA256, err)
	}
	return nil
}

func (r Release) String() string {
	return r.Tag
}
