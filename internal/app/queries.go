package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"review_proxy/internal/domain"
)

// QueryService picks the data source for every read: fixtures in mock mode,
// the upstream API otherwise.
type QueryService struct {
	mock      bool
	fixtures  domain.FixtureStore
	upstream  domain.UpstreamClient
	endpoints map[string]string // dataset name -> upstream URL
}

func NewQueryService(mock bool, f domain.FixtureStore, u domain.UpstreamClient, endpoints map[string]string) *QueryService {
	eps := make(map[string]string, len(endpoints))
	for k, v := range endpoints {
		eps[k] = v
	}
	return &QueryService{mock: mock, fixtures: f, upstream: u, endpoints: eps}
}

func (s *QueryService) Mock() bool { return s.mock }

// Dataset returns a whole dataset, unfiltered. Mock fixtures are returned byte
// for byte.
func (s *QueryService) Dataset(ctx context.Context, ds domain.Dataset) (json.RawMessage, error) {
	if !s.mock {
		return s.Forward(ctx, ds, nil)
	}
	raw, err := s.load(ctx, ds)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", domain.ErrFixture, ds.File)
	}
	return json.RawMessage(raw), nil
}

// Reviews returns one page of the dataset's records for q.SKU. In live mode
// the query is forwarded and the upstream body comes back unmodified.
func (s *QueryService) Reviews(ctx context.Context, ds domain.Dataset, q domain.ReviewQuery) (any, error) {
	if !s.mock {
		params := url.Values{}
		params.Set("skuCode", q.SKU)
		params.Set("page", strconv.Itoa(q.Page))
		params.Set("limit", strconv.Itoa(q.Limit))
		return s.Forward(ctx, ds, params)
	}
	recs, err := s.Resolve(ctx, ds, q.SKU)
	if err != nil {
		return nil, err
	}
	return Paginate(recs, q.Page, q.Limit), nil
}

// Product looks up a single device by SKU.
func (s *QueryService) Product(ctx context.Context, sku string) (any, error) {
	if !s.mock {
		return s.Forward(ctx, domain.Devices, url.Values{"skuCode": {sku}})
	}
	recs, err := s.Resolve(ctx, domain.Devices, sku)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("product %q: %w", sku, domain.ErrNotFound)
	}
	return recs[0], nil
}

// Resolve loads the dataset fixture and keeps the records matching sku.
// An empty sku returns every record.
func (s *QueryService) Resolve(ctx context.Context, ds domain.Dataset, sku string) ([]domain.Record, error) {
	raw, err := s.load(ctx, ds)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(raw, ds.Envelope)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ds.File, err)
	}
	return filterBySKU(recs, sku), nil
}

// Forward performs the single upstream GET for ds.
func (s *QueryService) Forward(ctx context.Context, ds domain.Dataset, params url.Values) (json.RawMessage, error) {
	endpoint := s.endpoints[ds.Name]
	if endpoint == "" {
		return nil, fmt.Errorf("%w: no upstream URL configured for %s", domain.ErrUpstream, ds.Name)
	}
	return s.upstream.Get(ctx, ds.Name, endpoint, params)
}

func (s *QueryService) load(ctx context.Context, ds domain.Dataset) ([]byte, error) {
	raw, err := s.fixtures.Load(ctx, ds.File)
	if err != nil {
		// %v on purpose: a missing fixture must not surface as ErrNotFound
		return nil, fmt.Errorf("%w: load %s: %v", domain.ErrFixture, ds.File, err)
	}
	return raw, nil
}
