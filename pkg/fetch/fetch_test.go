// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/answersearch/answersearch-gw/pkg/observability/logging"
)

const articlePage = `<html><body><article>
<h1>Go</h1>
<p>Go is a statically typed, compiled programming language designed at
Google. It is syntactically similar to C, but with memory safety and
garbage collection.</p>
<p>Go was publicly announced in November 2009, and version 1.0 was
released in March 2012.</p>
</article></body></html>`

func newTestFetcher(timeout time.Duration) *Fetcher {
	return New(timeout, 1<<20, logging.Discard())
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articlePage))
	}))
	defer server.Close()

	out := newTestFetcher(5 * time.Second).Fetch(context.Background(), server.URL)
	if !out.Succeeded() {
		t.Fatalf("expected success, got reason=%s detail=%s", out.Reason, out.Detail)
	}
	if !strings.Contains(out.Text, "statically typed") {
		t.Errorf("expected extracted text, got %q", out.Text)
	}
	if out.URL != server.URL {
		t.Errorf("expected outcome URL %q, got %q", server.URL, out.URL)
	}
}

func TestFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	out := newTestFetcher(5 * time.Second).Fetch(context.Background(), server.URL)
	if out.Reason != ReasonHTTPError {
		t.Fatalf("expected http_error, got %q", out.Reason)
	}
	if !strings.Contains(out.Detail, "404") {
		t.Errorf("expected status in detail, got %q", out.Detail)
	}
}

func TestFetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	start := time.Now()
	out := newTestFetcher(50 * time.Millisecond).Fetch(context.Background(), server.URL)
	if out.Reason != ReasonTimeout {
		t.Fatalf("expected timeout, got %q (%s)", out.Reason, out.Detail)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("fetch did not respect its timeout, took %v", elapsed)
	}
}

func TestFetch_ParentContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := newTestFetcher(10 * time.Second).Fetch(ctx, server.URL)
	if out.Reason != ReasonTimeout {
		t.Fatalf("expected timeout from parent deadline, got %q", out.Reason)
	}
}

func TestFetch_UnsupportedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	out := newTestFetcher(5 * time.Second).Fetch(context.Background(), server.URL)
	if out.Reason != ReasonUnsupportedContent {
		t.Fatalf("expected unsupported_content, got %q", out.Reason)
	}
}

func TestFetch_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><script>spa();</script></body></html>"))
	}))
	defer server.Close()

	out := newTestFetcher(5 * time.Second).Fetch(context.Background(), server.URL)
	if out.Reason != ReasonNoContent {
		t.Fatalf("expected no_content, got %q", out.Reason)
	}
}

func TestFetch_NetworkError(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	out := newTestFetcher(5 * time.Second).Fetch(context.Background(), url)
	if out.Reason != ReasonNetworkError {
		t.Fatalf("expected network_error, got %q", out.Reason)
	}
}

func TestTextLike(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"text/plain", true},
		{"", true},
		{"application/pdf", false},
		{"image/png", false},
		{"application/json", false},
	}
	for _, tt := range tests {
		if got := textLike(tt.contentType); got != tt.want {
			t.Errorf("textLike(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
