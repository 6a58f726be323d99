package app

import (
	"bytes"
	"encoding/json"
	"fmt"

	"review_proxy/internal/domain"
)

// decodeRecords accepts either a bare JSON array or an object carrying the
// array under envelope.
func decodeRecords(raw []byte, envelope string) ([]domain.Record, error) {
	body := bytes.TrimSpace(raw)
	if envelope != "" && len(body) > 0 && body[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrFixture, err)
		}
		inner, ok := obj[envelope]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q key", domain.ErrFixture, envelope)
		}
		body = inner
	}

	var recs []domain.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFixture, err)
	}
	return recs, nil
}

// filterBySKU keeps records whose skuCode equals sku exactly. Order is kept.
func filterBySKU(recs []domain.Record, sku string) []domain.Record {
	if sku == "" {
		return recs
	}
	out := make([]domain.Record, 0, len(recs))
	for _, r := range recs {
		if domain.SKU(r) == sku {
			out = append(out, r)
		}
	}
	return out
}
