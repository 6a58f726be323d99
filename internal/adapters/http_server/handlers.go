// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"review_proxy/internal/app"
	"review_proxy/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("ok"))
	})

	// whole datasets
	s.mux.Get("/getDeviceReviews", h.dataset(domain.Devices, "device reviews"))
	s.mux.Get("/getProducts", h.dataset(domain.Devices, "products"))
	s.mux.Get("/productReviews", h.dataset(domain.ProductReviews, "product reviews"))

	// single product
	s.mux.Get("/getProductBySku", h.productBySku)

	// paginated by skuCode
	s.mux.Get("/getFeaturedReviews", h.reviews(domain.FeaturedReviews, "featured reviews"))
	s.mux.Get("/getDeviceReviewsWithImages", h.reviews(domain.ImageReviews, "image reviews"))
	s.mux.Get("/getReviewsWithImages", h.reviews(domain.ImageReviews, "image reviews"))
	s.mux.Get("/getReviewList", h.reviews(domain.ReviewList, "review list"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Error: msg}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

// fail maps a service error onto the response. Only a product miss becomes a
// 404; every other failure is reported as a fetch failure for resource.
func fail(w http.ResponseWriter, r *http.Request, ds domain.Dataset, resource string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	log.Error().Err(err).
		Str("dataset", ds.Name).
		Str("sku", r.URL.Query().Get("skuCode")).
		Bool("upstream", errors.Is(err, domain.ErrUpstream)).
		Msg("fetch failed")
	writeError(w, http.StatusInternalServerError, "Failed to fetch "+resource)
}

func badRequest(w http.ResponseWriter, err error) {
	var qe *queryError
	if errors.As(err, &qe) {
		writeError(w, http.StatusBadRequest, qe.msg)
		return
	}
	writeError(w, http.StatusBadRequest, "Bad request")
}

// calcETagAndBody returns raw JSON untouched; other values are marshaled once.
func calcETagAndBody(v any) (string, []byte, error) {
	var body []byte
	if raw, ok := v.(json.RawMessage); ok {
		body = raw
	} else {
		b, err := json.Marshal(v)
		if err != nil {
			return "", nil, err
		}
		body = b
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

// etagMatch reports whether an If-None-Match header (a list or "*") covers
// etag. Comparison is weak: W/ prefixes are ignored on both sides.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, r *http.Request, ds domain.Dataset, resource string, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		fail(w, r, ds, resource, err)
		return
	}
	// If client already has this version, short-circuit.
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("dataset", ds.Name).Msg("failed to write body")
	}
}

func (h *Handlers) dataset(ds domain.Dataset, resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := h.Q.Dataset(r.Context(), ds)
		if err != nil {
			fail(w, r, ds, resource, err)
			return
		}
		writeJSON(w, r, ds, resource, out)
	}
}

func (h *Handlers) reviews(ds domain.Dataset, resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseReviewQuery(r.URL.Query())
		if err != nil {
			badRequest(w, err)
			return
		}
		out, err := h.Q.Reviews(r.Context(), ds, q)
		if err != nil {
			fail(w, r, ds, resource, err)
			return
		}
		writeJSON(w, r, ds, resource, out)
	}
}

func (h *Handlers) productBySku(w http.ResponseWriter, r *http.Request) {
	sku, err := parseSKU(r.URL.Query())
	if err != nil {
		badRequest(w, err)
		return
	}
	out, err := h.Q.Product(r.Context(), sku)
	if err != nil {
		fail(w, r, domain.Devices, "product", err)
		return
	}
	writeJSON(w, r, domain.Devices, "product", out)
}
