// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package websearch

import (
	"context"

	"github.com/answersearch/answersearch-gw/pkg/provider"
)

// SearchResult represents a single web search result. Rank preserves the
// provider's relevance order and is carried downstream so context assembly
// stays deterministic regardless of fetch timing.
type SearchResult struct {
	URL     string
	Title   string
	Snippet string
	Rank    int
}

// Provider performs web searches against an external API.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Providers is the registry of web search implementations. Serper, Brave
// and Tavily register themselves via init().
var Providers = provider.NewRegistry[Provider]("web_search")
