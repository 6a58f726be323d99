package httpserver_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"review_proxy/internal/adapters/fixtures"
	server "review_proxy/internal/adapters/http_server"
	"review_proxy/internal/adapters/upstream"
	"review_proxy/internal/app"
)

var mockFiles = map[string]string{
	"devices.json":         `[{"skuCode":"A1","name":"Phone"},{"skuCode":"B2","name":"Tablet"}]`,
	"featuredReviews.json": `{"featuredReviews":[{"skuCode":"A1","id":1},{"skuCode":"A1","id":2},{"skuCode":"B2","id":3},{"skuCode":"A1","id":4}]}`,
	"imageReviews.json":    `[{"skuCode":"A1","id":5,"images":["x.png"]}]`,
	"reviewList.json":      `[{"skuCode":"B2","id":6}]`,
	"productReviews.json":  `{"broken":`,
}

type pageBody struct {
	TotalItems  int               `json:"totalItems"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	Data        []json.RawMessage `json:"data"`
}

func newMockServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	for name, body := range mockFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	q := app.NewQueryService(true, fixtures.New(dir), upstream.New(time.Second, 0), nil)
	return serve(t, q)
}

func newLiveServer(t *testing.T, endpoints map[string]string) *httptest.Server {
	t.Helper()
	return newLiveServerWithTimeouts(t, endpoints, 5*time.Second, time.Second)
}

func newLiveServerWithTimeouts(t *testing.T, endpoints map[string]string, request, upstreamTimeout time.Duration) *httptest.Server {
	t.Helper()
	q := app.NewQueryService(false, fixtures.New(t.TempDir()), upstream.New(upstreamTimeout, 0), endpoints)
	return serveWithTimeout(t, q, request)
}

func serve(t *testing.T, q *app.QueryService) *httptest.Server {
	return serveWithTimeout(t, q, 5*time.Second)
}

func serveWithTimeout(t *testing.T, q *app.QueryService, request time.Duration) *httptest.Server {
	srv := server.New(server.Options{RequestTimeout: request})
	srv.MountHandlers(&server.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, hdr map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(b)
}

func TestFilteredEndpoints_MissingSKU(t *testing.T) {
	ts := newMockServer(t)
	for _, path := range []string{
		"/getFeaturedReviews",
		"/getDeviceReviewsWithImages",
		"/getReviewsWithImages",
		"/getReviewList",
		"/getProductBySku",
		"/getReviewList?skuCode=&page=1",
	} {
		res, body := get(t, ts.URL+path, nil)
		require.Equal(t, http.StatusBadRequest, res.StatusCode, path)
		require.JSONEq(t, `{"error":"Missing skuCode"}`, body, path)
	}
}

func TestFeaturedReviews_MockPagination(t *testing.T) {
	ts := newMockServer(t)

	res, body := get(t, ts.URL+"/getFeaturedReviews?skuCode=A1&page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.JSONEq(t,
		`{"totalItems":3,"totalPages":2,"currentPage":1,"data":[{"skuCode":"A1","id":1},{"skuCode":"A1","id":2}]}`,
		body)

	_, body = get(t, ts.URL+"/getFeaturedReviews?skuCode=A1&page=9&limit=2", nil)
	require.JSONEq(t, `{"totalItems":3,"totalPages":2,"currentPage":9,"data":[]}`, body)
}

func TestReviews_DefaultsAndDegenerateLimit(t *testing.T) {
	ts := newMockServer(t)

	var pg pageBody
	_, body := get(t, ts.URL+"/getReviewsWithImages?skuCode=A1", nil)
	require.NoError(t, json.Unmarshal([]byte(body), &pg))
	require.Equal(t, 1, pg.CurrentPage)
	require.Len(t, pg.Data, 1)

	_, body = get(t, ts.URL+"/getFeaturedReviews?skuCode=A1&limit=0&page=-2", nil)
	require.JSONEq(t,
		`{"totalItems":3,"totalPages":1,"currentPage":1,"data":[{"skuCode":"A1","id":1},{"skuCode":"A1","id":2},{"skuCode":"A1","id":4}]}`,
		body)
}

func TestReviews_InvalidNumbers(t *testing.T) {
	ts := newMockServer(t)

	res, body := get(t, ts.URL+"/getReviewList?skuCode=B2&page=two", nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.JSONEq(t, `{"error":"Invalid page"}`, body)

	res, body = get(t, ts.URL+"/getReviewList?skuCode=B2&limit=1.5", nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.JSONEq(t, `{"error":"Invalid limit"}`, body)
}

func TestProductBySku_Mock(t *testing.T) {
	ts := newMockServer(t)

	res, body := get(t, ts.URL+"/getProductBySku?skuCode=B2", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"skuCode":"B2","name":"Tablet"}`, body)

	res, body = get(t, ts.URL+"/getProductBySku?skuCode=ZZ", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.JSONEq(t, `{"error":"Product not found"}`, body)
}

func TestDatasetEndpoints_Mock(t *testing.T) {
	ts := newMockServer(t)

	for _, path := range []string{"/getDeviceReviews", "/getProducts"} {
		res, body := get(t, ts.URL+path, nil)
		require.Equal(t, http.StatusOK, res.StatusCode, path)
		require.Equal(t, mockFiles["devices.json"], body, path)
	}

	res, body := get(t, ts.URL+"/productReviews", nil)
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.JSONEq(t, `{"error":"Failed to fetch product reviews"}`, body)
}

func TestETag_NotModified(t *testing.T) {
	ts := newMockServer(t)

	res, _ := get(t, ts.URL+"/getReviewList?skuCode=B2", nil)
	etag := res.Header.Get("ETag")
	require.NotEmpty(t, etag)

	res, body := get(t, ts.URL+"/getReviewList?skuCode=B2", map[string]string{"If-None-Match": etag})
	require.Equal(t, http.StatusNotModified, res.StatusCode)
	require.Empty(t, body)

	for _, inm := range []string{`"other", ` + etag, "*", strings.TrimPrefix(etag, "W/")} {
		res, _ = get(t, ts.URL+"/getReviewList?skuCode=B2", map[string]string{"If-None-Match": inm})
		require.Equal(t, http.StatusNotModified, res.StatusCode, inm)
	}

	res, _ = get(t, ts.URL+"/getReviewList?skuCode=B2", map[string]string{"If-None-Match": `W/"stale", "older"`})
	require.Equal(t, http.StatusOK, res.StatusCode)
}

// hangingUpstream blocks every request until the caller gives up.
func hangingUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(up.Close)
	return up
}

func TestLive_HungUpstreamIsFetchFailure(t *testing.T) {
	up := hangingUpstream(t)
	ts := newLiveServerWithTimeouts(t, map[string]string{"featuredReviews": up.URL}, 2*time.Second, 200*time.Millisecond)

	res, body := get(t, ts.URL+"/getFeaturedReviews?skuCode=A1", nil)
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.JSONEq(t, `{"error":"Failed to fetch featured reviews"}`, body)
}

func TestRequestTimeout_JSONBody(t *testing.T) {
	up := hangingUpstream(t)
	ts := newLiveServerWithTimeouts(t, map[string]string{"devices": up.URL}, 200*time.Millisecond, 2*time.Second)

	res, body := get(t, ts.URL+"/getDeviceReviews", nil)
	require.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	require.Equal(t, "application/json", res.Header.Get("Content-Type"))
	require.JSONEq(t, `{"error":"timeout"}`, body)
}

func TestLive_PassesThroughUpstream(t *testing.T) {
	const upstreamBody = `{"items":[{"skuCode":"A1"}],"next":null}`
	var gotQuery string
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(upstreamBody))
	}))
	defer up.Close()

	ts := newLiveServer(t, map[string]string{"featuredReviews": up.URL + "/featured"})

	res, body := get(t, ts.URL+"/getFeaturedReviews?skuCode=A1&page=2&limit=3", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, upstreamBody, body)
	require.Equal(t, "limit=3&page=2&skuCode=A1", gotQuery)
}

func TestLive_UpstreamFailures(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	downURL := down.URL
	down.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	ts := newLiveServer(t, map[string]string{
		"devices":      downURL,
		"reviewList":   failing.URL,
		"imageReviews": failing.URL,
	})

	cases := []struct{ path, msg string }{
		{"/getDeviceReviews", "Failed to fetch device reviews"},
		{"/getProductBySku?skuCode=A1", "Failed to fetch product"},
		{"/getReviewList?skuCode=A1", "Failed to fetch review list"},
		{"/getDeviceReviewsWithImages?skuCode=A1", "Failed to fetch image reviews"},
		{"/getFeaturedReviews?skuCode=A1", "Failed to fetch featured reviews"}, // no URL configured
	}
	for _, tc := range cases {
		res, body := get(t, ts.URL+tc.path, nil)
		require.Equal(t, http.StatusInternalServerError, res.StatusCode, tc.path)
		require.JSONEq(t, `{"error":"`+tc.msg+`"}`, body, tc.path)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newMockServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/getReviewList", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://frontend.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	require.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	ts := newMockServer(t)
	res, body := get(t, ts.URL+"/healthz", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "ok", body)
}
