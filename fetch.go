package ovmf

import (
	"context"
	"strings"
)

// Fetcher retrieves a remote resource into memory. Implementations must not
// return more than limit bytes when limit > 0; anything beyond the limit is
// dropped rather than reported.
//
// The default Fetcher is an [github.com/meigma/ovmf/http.Fetcher].
type Fetcher interface {
	Fetch(ctx context.Context, url string, limit int64) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string, limit int64) ([]byte, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	return f(ctx, url, limit)
}

// archiveURL builds {base}/{tag}/{tag}-bin{ext}.
func archiveURL(base, tag string, c Compression) string {
	return strings.TrimRight(base, "/") + "/" + tag + "/" + tag + "-bin" + c.Ext()
}
