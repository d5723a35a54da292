// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract pulls the main readable text out of a fetched page.
// Trafilatura does the heavy lifting; readability and a bare HTML text
// walk act as fallbacks for pages trafilatura gives up on.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ErrNoContent indicates no meaningful text could be recovered from the
// page (non-article markup, JS-only rendering, empty body).
var ErrNoContent = errors.New("no meaningful text extracted")

// Text returns the best-effort main-text extraction of body, or
// ErrNoContent when every strategy comes up empty.
func Text(body []byte, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{
		OriginalURL:   parsedURL,
		ExcludeTables: true,
	})
	if err == nil && strings.TrimSpace(result.ContentText) != "" {
		return strings.TrimSpace(result.ContentText), nil
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return strings.TrimSpace(article.TextContent), nil
	}

	if text := plainText(body); text != "" {
		return text, nil
	}

	return "", ErrNoContent
}

// plainText strips markup and returns the visible text content. Script
// and style elements are skipped entirely.
func plainText(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	textFromNode(doc, &sb)
	return strings.TrimSpace(sb.String())
}

func textFromNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}

	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textFromNode(c, sb)
	}
}
