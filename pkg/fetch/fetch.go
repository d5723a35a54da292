// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package fetch retrieves candidate pages and hands their bodies to the
// extractor. Every way a fetch can go wrong is an enumerated Outcome,
// not an error return: the aggregator consumes outcomes uniformly and
// never aborts on a single bad source.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/answersearch/answersearch-gw/pkg/extract"
	"github.com/answersearch/answersearch-gw/pkg/observability/logging"
)

const userAgent = "answersearch-gw/1.0"

// Reason classifies why a fetch produced no usable text.
type Reason string

const (
	ReasonTimeout            Reason = "timeout"
	ReasonHTTPError          Reason = "http_error"
	ReasonNetworkError       Reason = "network_error"
	ReasonUnsupportedContent Reason = "unsupported_content"
	ReasonNoContent          Reason = "no_content"
)

// Outcome is the result of one fetch-and-extract attempt. Reason is
// empty on success, in which case Text holds the extracted content.
type Outcome struct {
	URL    string
	Text   string
	Reason Reason
	Detail string
}

// Succeeded reports whether the fetch produced usable text.
func (o Outcome) Succeeded() bool { return o.Reason == "" }

// Fetcher performs page fetches with a per-page timeout and body size cap.
type Fetcher struct {
	client       *http.Client
	pageTimeout  time.Duration
	maxBodyBytes int64
	logger       *logging.Logger
}

// New creates a Fetcher. The HTTP client carries no timeout of its own;
// cancellation comes from the request context so the aggregator deadline
// applies too.
func New(pageTimeout time.Duration, maxBodyBytes int64, logger *logging.Logger) *Fetcher {
	return &Fetcher{
		client:       &http.Client{},
		pageTimeout:  pageTimeout,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Fetch retrieves url once and extracts its main text. It never returns
// an error; every failure mode is folded into the Outcome.
func (f *Fetcher) Fetch(ctx context.Context, url string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, f.pageTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{URL: url, Reason: ReasonNetworkError, Detail: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Outcome{URL: url, Reason: ReasonTimeout, Detail: "request timed out"}
		}
		return Outcome{URL: url, Reason: ReasonNetworkError, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Outcome{URL: url, Reason: ReasonHTTPError, Detail: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	if ct := resp.Header.Get("Content-Type"); !textLike(ct) {
		return Outcome{URL: url, Reason: ReasonUnsupportedContent, Detail: fmt.Sprintf("content type %q", ct)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Outcome{URL: url, Reason: ReasonTimeout, Detail: "body read timed out"}
		}
		return Outcome{URL: url, Reason: ReasonNetworkError, Detail: fmt.Sprintf("read body: %v", err)}
	}

	text, err := extract.Text(body, url)
	if err != nil {
		return Outcome{URL: url, Reason: ReasonNoContent, Detail: err.Error()}
	}

	f.logger.Debug("page fetched", "url", url, "chars", len(text))
	return Outcome{URL: url, Text: text}
}

// textLike reports whether the content type is worth handing to the
// extractor. Anything else (PDFs, images, archives) is an immediate
// unsupported_content outcome.
func textLike(contentType string) bool {
	if contentType == "" {
		return true // some origins omit the header; let the extractor decide
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") ||
		strings.Contains(ct, "text/plain") ||
		strings.Contains(ct, "application/xhtml")
}
