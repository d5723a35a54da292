// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSerperProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("X-API-KEY") != "test-key" {
			t.Errorf("expected API key header, got %q", r.Header.Get("X-API-KEY"))
		}

		var req serperSearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Query != "capital of France" {
			t.Errorf("expected query 'capital of France', got %q", req.Query)
		}

		resp := serperSearchResponse{}
		resp.Organic = []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		}{
			{Title: "Paris", Link: "https://en.wikipedia.org/wiki/Paris", Snippet: "Capital of France"},
			{Title: "France", Link: "https://en.wikipedia.org/wiki/France", Snippet: "Country in Europe"},
			{Title: "Paris facts", Link: "https://example.com/paris", Snippet: "Facts about Paris"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := &SerperProvider{
		apiKey:     "test-key",
		httpClient: &http.Client{Transport: &rewriteTransport{targetURL: server.URL}},
	}

	results, err := provider.Search(context.Background(), "capital of France", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results (capped), got %d", len(results))
	}
	if results[0].URL != "https://en.wikipedia.org/wiki/Paris" {
		t.Errorf("expected first URL to be Paris wiki, got %q", results[0].URL)
	}
	for i, r := range results {
		if r.Rank != i {
			t.Errorf("expected rank %d, got %d", i, r.Rank)
		}
	}
}

func TestSerperProvider_Search_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	provider := &SerperProvider{
		apiKey:     "test-key",
		httpClient: &http.Client{Transport: &rewriteTransport{targetURL: server.URL}},
	}

	if _, err := provider.Search(context.Background(), "anything", 5); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestBraveProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Subscription-Token") != "test-key" {
			t.Errorf("expected API key header, got %q", r.Header.Get("X-Subscription-Token"))
		}
		if r.URL.Query().Get("q") != "golang testing" {
			t.Errorf("expected query 'golang testing', got %q", r.URL.Query().Get("q"))
		}

		resp := braveSearchResponse{}
		resp.Web.Results = []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		}{
			{Title: "Go Testing", URL: "https://golang.org/testing", Description: "Testing in Go"},
			{Title: "Go Docs", URL: "https://golang.org/doc", Description: "Go documentation"},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := &BraveProvider{
		apiKey:     "test-key",
		httpClient: &http.Client{Transport: &rewriteTransport{targetURL: server.URL}},
	}

	results, err := provider.Search(context.Background(), "golang testing", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Go Testing" {
		t.Errorf("expected title 'Go Testing', got %q", results[0].Title)
	}
	if results[1].Rank != 1 {
		t.Errorf("expected rank 1, got %d", results[1].Rank)
	}
}

func TestTavilyProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req tavilySearchRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.APIKey != "test-key" {
			t.Errorf("expected api_key 'test-key', got %q", req.APIKey)
		}

		resp := tavilySearchResponse{
			Results: []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Content string `json:"content"`
			}{
				{Title: "AI News", URL: "https://example.com/ai", Content: "Latest AI developments"},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := &TavilyProvider{
		apiKey:     "test-key",
		httpClient: &http.Client{Transport: &rewriteTransport{targetURL: server.URL}},
	}

	results, err := provider.Search(context.Background(), "AI news", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Snippet != "Latest AI developments" {
		t.Errorf("expected snippet 'Latest AI developments', got %q", results[0].Snippet)
	}
}

func TestProvidersRegistry(t *testing.T) {
	for _, name := range []string{"serper", "brave", "tavily"} {
		p, err := Providers.New(context.Background(), name, map[string]string{"api_key": "k"})
		if err != nil {
			t.Errorf("provider %q: unexpected error: %v", name, err)
		}
		if p == nil {
			t.Errorf("provider %q: nil instance", name)
		}
	}

	if _, err := Providers.New(context.Background(), "serper", nil); err == nil {
		t.Error("expected error when api_key missing")
	}
	if _, err := Providers.New(context.Background(), "unknown", nil); err == nil {
		t.Error("expected error for unregistered provider")
	}
}

// rewriteTransport rewrites requests to point at a test server.
type rewriteTransport struct {
	base      http.RoundTripper
	targetURL string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = "http"
	req.URL.Host = t.targetURL[len("http://"):]
	transport := t.base
	if transport == nil {
		transport = http.DefaultTransport
	}
	return transport.RoundTrip(req)
}
