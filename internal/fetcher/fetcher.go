package fetcher

import (
	"context"

	"github.com/IshaanNene/flathunt/internal/types"
)

// Fetcher is the interface for all request fetcher implementations.
//
// A non-2xx status is not an error: it is returned as a Response and the
// caller decides. Errors are reserved for transport failures.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error
}
