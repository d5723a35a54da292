// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

func init() {
	Providers.Register("serper", func(_ context.Context, params map[string]string) (Provider, error) {
		apiKey := params["api_key"]
		if apiKey == "" {
			return nil, fmt.Errorf("serper: api_key parameter is required")
		}
		return NewSerperProvider(apiKey), nil
	})
}

// SerperProvider performs web searches using the Serper.dev Google Search API.
type SerperProvider struct {
	apiKey     string
	httpClient *http.Client
}

// NewSerperProvider creates a new Serper provider.
func NewSerperProvider(apiKey string) *SerperProvider {
	return &SerperProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

// Search queries the Serper API and returns organic results.
func (s *SerperProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	reqBody := serperSearchRequest{
		Query: query,
		Num:   maxResults,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://google.serper.dev/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper search request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper search returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result serperSearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var results []SearchResult
	for i, r := range result.Organic {
		if i >= maxResults {
			break
		}
		results = append(results, SearchResult{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
			Rank:    i,
		})
	}

	return results, nil
}

type serperSearchRequest struct {
	Query string `json:"q"`
	Num   int    `json:"num"`
}

type serperSearchResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}
