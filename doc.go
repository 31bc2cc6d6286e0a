// Package ovmf downloads prebuilt OVMF firmware releases and caches them on
// local disk.
//
// Releases are published upstream as {tag}-bin.tar.xz archives. A [Cache]
// downloads a release once, verifies its sha256 against the [Release]
// table, and unpacks it into {root}/{tag}. Later calls return the cached
// directory without touching the network.
//
// # Quick Start
//
//	c, err := ovmf.New("target/ovmf")
//	if err != nil {
//	    return err
//	}
//	prebuilt, err := c.Get(ctx, ovmf.Latest)
//	if err != nil {
//	    return err
//	}
//	code := prebuilt.Path(ovmf.X64, ovmf.Code) // target/ovmf/<tag>/x64/code.fd
//
// # Cache Layout
//
// Each release occupies {root}/{tag}/{arch}/{file}, for example
// target/ovmf/edk2-stable202402-r1/x64/vars.fd. A release directory is
// created by a single rename from a temporary directory in the same root,
// so it is either complete or absent. Entries are never modified or
// re-verified once present.
//
// Not every architecture ships every file; [Prebuilt.Path] does not check
// existence. Use [Prebuilt.Artifacts] to list what a release contains.
package ovmf
