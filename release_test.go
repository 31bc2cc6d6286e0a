package ovmf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownReleasesAreValid(t *testing.T) {
	t.Parallel()

	releases := KnownReleases()
	require.NotEmpty(t, releases)
	seen := map[string]bool{}
	for _, r := range releases {
		require.NoError(t, r.Validate(), r.Tag)
		assert.False(t, seen[r.Tag], "duplicate tag %s", r.Tag)
		seen[r.Tag] = true

		got, ok := LookupRelease(r.Tag)
		require.True(t, ok)
		assert.Equal(t, r, got)
	}
	assert.Equal(t, releases[len(releases)-1], Latest)
}

func TestKnownReleasesReturnsCopy(t *testing.T) {
	t.Parallel()

	releases := KnownReleases()
	releases[0].Tag = "mutated"
	assert.NotEqual(t, "mutated", KnownReleases()[0].Tag)
}

func TestLookupReleaseUnknown(t *testing.T) {
	t.Parallel()

	_, ok := LookupRelease("edk2-stable199901-r1")
	assert.False(t, ok)
}

func TestReleaseValidate(t *testing.T) {
	t.Parallel()

	good := Release{Tag: "edk2-stable202308-r1", SHA256: "e75df3424e1c8edf9a6c14027a5a9dd16201d66cde0ad86766ccdc58aeebcccf"}
	require.NoError(t, good.Validate())

	tests := []Release{
		{Tag: "stable202308-r1", SHA256: good.SHA256},
		{Tag: good.Tag, SHA256: ""},
		{Tag: good.Tag, SHA256: "E75DF3424E1C8EDF9A6C14027A5A9DD16201D66CDE0AD86766CCDC58AEEBCCCF"},
		{Tag: good.Tag, SHA256: "abc"},
	}
	for _, r := range tests {
		assert.ErrorIs(t, r.Validate(), ErrInvalidRelease, "%+v", r)
	}
}

func TestKnownReleaseTable(t *testing.T) {
	t.Parallel()

	want := []Release{
		{Tag: "edk2-stable202211-r1", SHA256: "b085cfe18fd674bf70a31af1dc3e991bcd25cb882981c6d3523d81260f1e0d12"},
		{Tag: "edk2-stable202302-r1", SHA256: "1d9a30afbf6a07c6580ca67629ea68c01e8449ef93c2e40482081f04b6f06ddb"},
		{Tag: "edk2-stable202305-r1", SHA256: "644a5a5aee748cd3d06e403a1b2c6bce934f8325122d3ecd365f2bc99d9d2016"},
		{Tag: "edk2-stable202308-r1", SHA256: "e75df3424e1c8edf9a6c14027a5a9dd16201d66cde0ad86766ccdc58aeebcccf"},
		{Tag: "edk2-stable202311-r1", SHA256: "2587ddd6b0134ecee122f9772aa8e40cd3765f3c1b7b453a56543f29f1e184eb"},
		{Tag: "edk2-stable202311-r2", SHA256: "4a7d01b7dc6b0fdbf3a0e17dacd364b772fb5b712aaf64ecf328273584185ca0"},
		{Tag: "edk2-stable202402-r1", SHA256: "91f3148ef146794241c77810a49cfa3e925c83eb55c5cc90f34718cc1b10e9eb"},
	}
	assert.Equal(t, want, KnownReleases())
	assert.Equal(t, EDK2Stable202402R1, Latest)

	rel, ok := LookupRelease("edk2-stable202308-r1")
	require.True(t, ok)
	assert.Equal(t, EDK2Stable202308R1, rel)
	assert.Equal(t, "e75df3424e1c8edf9a6c14027a5a9dd16201d66cde0ad86766ccdc58aeebcccf", rel.SHA256)
}
