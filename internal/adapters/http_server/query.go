package httpserver

import (
	"net/url"
	"strconv"
	"strings"

	"review_proxy/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// queryError is a rejected query; msg is sent to the client as is.
type queryError struct{ msg string }

func (e *queryError) Error() string { return e.msg }
func (e *queryError) Unwrap() error { return domain.ErrBadRequest }

func parseSKU(v url.Values) (string, error) {
	sku := v.Get("skuCode")
	if sku == "" {
		return "", &queryError{msg: "Missing skuCode"}
	}
	return sku, nil
}

// parseReviewQuery validates skuCode and reads page/limit. Any integer is
// accepted for page/limit; the paginator owns the policy for values below 1.
func parseReviewQuery(v url.Values) (domain.ReviewQuery, error) {
	sku, err := parseSKU(v)
	if err != nil {
		return domain.ReviewQuery{}, err
	}
	q := domain.ReviewQuery{SKU: sku, Page: defaultPage, Limit: defaultLimit}

	if q.Page, err = intParam(v, "page", defaultPage); err != nil {
		return domain.ReviewQuery{}, &queryError{msg: "Invalid page"}
	}
	if q.Limit, err = intParam(v, "limit", defaultLimit); err != nil {
		return domain.ReviewQuery{}, &queryError{msg: "Invalid limit"}
	}
	return q, nil
}

func intParam(v url.Values, key string, def int) (int, error) {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
