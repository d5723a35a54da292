// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package aggregate fans out one fetch per search result, collects
// whatever resolves before the deadline, and assembles the retrieved
// context in rank order.
package aggregate

import (
	"context"
	"strings"
	"time"

	"github.com/answersearch/answersearch-gw/pkg/fetch"
	"github.com/answersearch/answersearch-gw/pkg/observability/logging"
	"github.com/answersearch/answersearch-gw/pkg/websearch"
)

// Fetcher is the single-URL fetch-and-extract operation the aggregator
// fans out. *fetch.Fetcher satisfies it; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Outcome
}

// Progress is invoked once per resolved (or abandoned) fetch, in
// completion order. It runs on the aggregator's goroutine, so the client
// sees source events strictly ordered even though fetches race.
type Progress func(outcome fetch.Outcome)

// SourceText is one successful extraction tagged with its origin.
type SourceText struct {
	URL  string
	Text string
}

// Document is the retrieved context handed to generation: successful
// extractions in original rank order, truncated to the character budget.
// Immutable once built.
type Document struct {
	Sources   []SourceText
	Attempted int
	Failed    int
}

// Empty reports whether no source survived.
func (d Document) Empty() bool { return len(d.Sources) == 0 }

// Render flattens the document into prompt text, each source prefixed
// with its URL.
func (d Document) Render() string {
	var sb strings.Builder
	for _, s := range d.Sources {
		sb.WriteString("Source: ")
		sb.WriteString(s.URL)
		sb.WriteString("\n")
		sb.WriteString(s.Text)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

// Options bound the fan-out and the document size.
type Options struct {
	Deadline       time.Duration // overall bound on the whole fan-out
	MaxSourceChars int           // per-source clamp before assembly
	MaxTotalChars  int           // total context budget
}

// Aggregator coordinates concurrent page fetches for one request.
type Aggregator struct {
	fetcher Fetcher
	opts    Options
	logger  *logging.Logger
}

// New creates an Aggregator.
func New(fetcher Fetcher, opts Options, logger *logging.Logger) *Aggregator {
	return &Aggregator{fetcher: fetcher, opts: opts, logger: logger}
}

type indexedOutcome struct {
	index   int
	outcome fetch.Outcome
}

// Aggregate dispatches one fetch per result concurrently and waits until
// every fetch resolves or the deadline expires, whichever comes first.
// Unresolved fetches are abandoned as timeouts: their context is
// cancelled and their eventual result discarded. A document with zero
// sources is a valid, non-error outcome.
func (a *Aggregator) Aggregate(ctx context.Context, results []websearch.SearchResult, progress Progress) Document {
	if len(results) == 0 {
		return Document{}
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Deadline)
	defer cancel()

	// Buffered to capacity: abandoned fetches can still deliver after
	// the deadline without leaking their goroutine.
	completed := make(chan indexedOutcome, len(results))
	for i, r := range results {
		go func(i int, url string) {
			completed <- indexedOutcome{index: i, outcome: a.fetcher.Fetch(ctx, url)}
		}(i, r.URL)
	}

	outcomes := make([]fetch.Outcome, len(results))
	resolved := make([]bool, len(results))
	pending := len(results)

	for pending > 0 {
		select {
		case c := <-completed:
			outcomes[c.index] = c.outcome
			resolved[c.index] = true
			pending--
			if progress != nil {
				progress(c.outcome)
			}
		case <-ctx.Done():
			for i, r := range results {
				if resolved[i] {
					continue
				}
				outcomes[i] = fetch.Outcome{URL: r.URL, Reason: fetch.ReasonTimeout, Detail: "aggregate deadline"}
				resolved[i] = true
				if progress != nil {
					progress(outcomes[i])
				}
			}
			pending = 0
		}
	}

	return a.assemble(results, outcomes)
}

// assemble builds the document in rank order, independent of the order
// fetches completed in.
func (a *Aggregator) assemble(results []websearch.SearchResult, outcomes []fetch.Outcome) Document {
	doc := Document{Attempted: len(results)}
	budget := a.opts.MaxTotalChars

	for i := range results {
		out := outcomes[i]
		if !out.Succeeded() {
			doc.Failed++
			a.logger.Debug("source skipped", "url", out.URL, "reason", out.Reason, "detail", out.Detail)
			continue
		}
		if budget <= 0 {
			continue
		}

		text := out.Text
		if a.opts.MaxSourceChars > 0 && len(text) > a.opts.MaxSourceChars {
			text = text[:a.opts.MaxSourceChars]
		}
		if len(text) > budget {
			text = text[:budget]
		}
		budget -= len(text)
		doc.Sources = append(doc.Sources, SourceText{URL: out.URL, Text: text})
	}

	a.logger.Info("context assembled",
		"attempted", doc.Attempted,
		"failed", doc.Failed,
		"sources", len(doc.Sources))
	return doc
}
