package upstream_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"review_proxy/internal/adapters/upstream"
	"review_proxy/internal/domain"
)

func TestClient_Get_ForwardsParamsAndReturnsBodyVerbatim(t *testing.T) {
	const body = "{\"totalItems\": 1,\n \"data\": [{\"skuCode\":\"A1\"}]}\n"
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer ts.Close()

	cl := upstream.New(time.Second, 0)
	params := map[string][]string{"skuCode": {"A1"}, "page": {"2"}, "limit": {"5"}}
	got, err := cl.Get(context.Background(), "featuredReviews", ts.URL+"/reviews?apiKey=k&page=9", params)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(got) != body {
		t.Fatalf("body changed: %q", got)
	}
	if gotQuery != "apiKey=k&limit=5&page=2&skuCode=A1" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestClient_Get_SingleAttemptOnServerError(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := upstream.New(time.Second, 100).Get(context.Background(), "devices", ts.URL, nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly one call, got %d", n)
	}
}

func TestClient_Get_404IsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := upstream.New(time.Second, 0).Get(context.Background(), "devices", ts.URL, nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream for 404, got %v", err)
	}
}

func TestClient_Get_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := upstream.New(time.Second, 0).Get(context.Background(), "devices", url, nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClient_Get_NonJSONBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer ts.Close()

	_, err := upstream.New(time.Second, 0).Get(context.Background(), "devices", ts.URL, nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestClient_Get_BadURL(t *testing.T) {
	_, err := upstream.New(time.Second, 0).Get(context.Background(), "devices", "ftp://example.com/x", nil)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
