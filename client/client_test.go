package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultClient_UserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := DefaultClient()
	_, _ = c.GetBody(context.Background(), server.URL)

	if gotUA != "docsproxy" {
		t.Errorf("default User-Agent = %q, want %q", gotUA, "docsproxy")
	}
}

func TestClient_WithUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := DefaultClient().WithUserAgent("custom-agent/2.0")
	_, _ = c.GetBody(context.Background(), server.URL)

	if gotUA != "custom-agent/2.0" {
		t.Errorf("User-Agent = %q, want %q", gotUA, "custom-agent/2.0")
	}
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		_, _ = w.Write([]byte(`{"results":[{"version":"3.4.0"}]}`))
	}))
	defer server.Close()

	var resp struct {
		Results []struct {
			Version string `json:"version"`
		} `json:"results"`
	}
	if err := DefaultClient().GetJSON(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Version != "3.4.0" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestClient_GetXML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<metadata><version>1.0</version></metadata>`))
	}))
	defer server.Close()

	var resp struct {
		Version string `xml:"version"`
	}
	if err := DefaultClient().GetXML(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("GetXML failed: %v", err)
	}
	if resp.Version != "1.0" {
		t.Errorf("Version = %q, want %q", resp.Version, "1.0")
	}
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(WithBaseDelay(time.Millisecond))
	_, err := c.GetBody(context.Background(), server.URL)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if !httpErr.IsNotFound() {
		t.Errorf("IsNotFound() = false for status %d", httpErr.StatusCode)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := NewClient(WithBaseDelay(time.Millisecond), WithMaxRetries(3))
	body, err := c.GetBody(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetBody failed: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("body = %q, want %q", body, "ok")
	}
	if n := atomic.LoadInt32(&attempts); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestClient_GivesUpAfterMaxRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(WithBaseDelay(time.Millisecond), WithMaxRetries(2))
	_, err := c.GetBody(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if n := atomic.LoadInt32(&attempts); n != 3 {
		t.Errorf("attempts = %d, want 3", n)
	}
}

func TestClient_ZeroRetriesRunsOnce(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	c := NewClient(WithBaseDelay(time.Millisecond), WithMaxRetries(0))
	_, err := c.GetBody(ctx, server.URL)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("err = %v, want HTTPError 503", err)
	}
	if n := atomic.LoadInt32(&attempts); n != 1 {
		t.Errorf("attempts = %d, want 1", n)
	}
}

func TestClient_Head(t *testing.T) {
	tests := []struct {
		status int
	}{
		{http.StatusOK},
		{http.StatusNotFound},
		{http.StatusForbidden},
	}
	for _, tt := range tests {
		var gotMethod, gotUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotUA = r.Header.Get("User-Agent")
			w.WriteHeader(tt.status)
		}))

		c := NewClient(WithMaxRetries(0)).WithUserAgent("head-test/1.0")
		status, err := c.Head(context.Background(), server.URL)
		server.Close()

		if err != nil {
			t.Errorf("Head failed: %v", err)
		}
		if status != tt.status {
			t.Errorf("Head status = %d, want %d", status, tt.status)
		}
		if gotMethod != http.MethodHead {
			t.Errorf("method = %q, want HEAD", gotMethod)
		}
		if gotUA != "head-test/1.0" {
			t.Errorf("Head User-Agent = %q, want %q", gotUA, "head-test/1.0")
		}
	}
}

type countingLimiter struct{ n int32 }

func (l *countingLimiter) Wait(ctx context.Context) error {
	atomic.AddInt32(&l.n, 1)
	return ctx.Err()
}

func TestClient_RateLimiter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	rl := &countingLimiter{}
	c := NewClient(WithRateLimiter(rl))
	if _, err := c.GetBody(context.Background(), server.URL); err != nil {
		t.Fatalf("GetBody failed: %v", err)
	}
	if n := atomic.LoadInt32(&rl.n); n != 1 {
		t.Errorf("limiter waits = %d, want 1", n)
	}
}
