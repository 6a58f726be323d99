package domain

import "encoding/json"

// Record is a single review or product object. Only skuCode is read; the
// rest of the payload is passed through untouched.
type Record = json.RawMessage

type skuOnly struct {
	SkuCode *string `json:"skuCode"`
}

// SKU returns the record's skuCode, or "" when the field is absent or not a string.
func SKU(r Record) string {
	var s skuOnly
	if err := json.Unmarshal(r, &s); err != nil || s.SkuCode == nil {
		return ""
	}
	return *s.SkuCode
}

// ReviewQuery is the validated query of a filtered endpoint.
type ReviewQuery struct {
	SKU   string
	Page  int
	Limit int
}
