package domain

import (
	"context"
	"encoding/json"
	"net/url"
)

// FixtureStore returns the raw bytes of a mock dataset.
type FixtureStore interface {
	Load(ctx context.Context, file string) ([]byte, error)
}

// FixtureWriter is implemented by stores the seeder can populate.
type FixtureWriter interface {
	Put(ctx context.Context, file string, payload []byte) error
}

type UpstreamClient interface {
	// Get issues one GET against endpoint with params merged into its query
	// and returns the JSON body verbatim.
	Get(ctx context.Context, dataset, endpoint string, params url.Values) (json.RawMessage, error)
}
