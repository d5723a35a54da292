// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine sequences the answer pipeline: search, concurrent page
// fetches, then streamed generation. One controller goroutine per
// request owns the event channel; every failure either degrades the
// pipeline or terminates the sequence with an explicit error event.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/answersearch/answersearch-gw/pkg/core/aggregate"
	"github.com/answersearch/answersearch-gw/pkg/core/api"
	"github.com/answersearch/answersearch-gw/pkg/core/schema"
	"github.com/answersearch/answersearch-gw/pkg/fetch"
	"github.com/answersearch/answersearch-gw/pkg/observability/logging"
	"github.com/answersearch/answersearch-gw/pkg/observability/metrics"
	"github.com/answersearch/answersearch-gw/pkg/websearch"
)

// Pipeline stage names, surfaced in status events and metrics labels.
const (
	StageSearch   = "search"
	StageFetch    = "fetch"
	StageGenerate = "generate"
)

// Searcher is the search provider dependency.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.SearchResult, error)
}

// Options bound one request's pipeline.
type Options struct {
	Model         string
	MaxResults    int
	MaxTokens     int
	Temperature   float64
	SearchTimeout time.Duration
}

// Engine orchestrates the answer pipeline. Stateless across requests;
// safe for concurrent use.
type Engine struct {
	searcher   Searcher
	aggregator *aggregate.Aggregator
	streamer   api.ChatStreamer
	opts       Options
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// New creates an Engine.
func New(searcher Searcher, aggregator *aggregate.Aggregator, streamer api.ChatStreamer, opts Options, logger *logging.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		searcher:   searcher,
		aggregator: aggregator,
		streamer:   streamer,
		opts:       opts,
		logger:     logger,
		metrics:    m,
	}
}

// ProcessQueryStream runs the pipeline for one query. The returned
// channel delivers events in emission order and is closed exactly once,
// after a terminal Done or Error event, or silently when ctx is
// cancelled (client disconnect).
func (e *Engine) ProcessQueryStream(ctx context.Context, query string) <-chan schema.StreamEvent {
	events := make(chan schema.StreamEvent, 16)
	go e.run(ctx, query, events)
	return events
}

func (e *Engine) run(ctx context.Context, query string, events chan<- schema.StreamEvent) {
	defer close(events)

	e.metrics.RequestsTotal.Inc()

	// emit returns false when the client has gone away; the pipeline
	// unwinds at its current suspension point.
	emit := func(ev schema.StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	// Searching
	if !emit(schema.StatusEvent(StageSearch, "searching the web for: "+query)) {
		return
	}
	results := e.search(ctx, query, emit)

	// Fetching
	if !emit(schema.StatusEvent(StageFetch, fmt.Sprintf("fetching %d sources", len(results)))) {
		return
	}
	fetchStart := time.Now()
	clientGone := false
	doc := e.aggregator.Aggregate(ctx, results, func(out fetch.Outcome) {
		label := "success"
		if !out.Succeeded() {
			label = string(out.Reason)
		}
		e.metrics.SourceOutcomes.WithLabelValues(label).Inc()
		if !emit(schema.SourceEvent(out.URL, out.Succeeded(), string(out.Reason))) {
			clientGone = true
		}
	})
	e.metrics.StageDuration.WithLabelValues(StageFetch).Observe(time.Since(fetchStart).Seconds())
	if clientGone || ctx.Err() != nil {
		return
	}

	// Generating
	if !emit(schema.StatusEvent(StageGenerate, "generating answer")) {
		return
	}
	e.generate(ctx, query, doc, emit)
}

// search runs the search stage. Provider failure and zero results both
// degrade to an empty result set rather than aborting the request.
func (e *Engine) search(ctx context.Context, query string, emit func(schema.StreamEvent) bool) []websearch.SearchResult {
	start := time.Now()
	sctx, cancel := context.WithTimeout(ctx, e.opts.SearchTimeout)
	defer cancel()

	results, err := e.searcher.Search(sctx, query, e.opts.MaxResults)
	e.metrics.StageDuration.WithLabelValues(StageSearch).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		e.metrics.SearchFailures.Inc()
		e.logger.Warn("search failed, continuing without context", "error", err)
		emit(schema.ErrorEvent(schema.ErrKindSearchUnavailable, fmt.Sprintf("web search unavailable: %v", err)))
		return nil
	case len(results) == 0:
		e.metrics.SearchFailures.Inc()
		e.logger.Info("search returned no results", "query", query)
		emit(schema.StatusEvent(StageSearch, "no web results found"))
		return nil
	}

	e.logger.Info("search completed", "query", query, "results", len(results))
	return results
}

// generate streams the model answer. Connect failure and mid-stream
// interruption are distinguished by whether any token made it out; in
// both cases the client gets an explicit terminal error event.
func (e *Engine) generate(ctx context.Context, query string, doc aggregate.Document, emit func(schema.StreamEvent) bool) {
	start := time.Now()
	defer func() {
		e.metrics.StageDuration.WithLabelValues(StageGenerate).Observe(time.Since(start).Seconds())
	}()

	req := &api.CompletionRequest{
		Model:       e.opts.Model,
		Messages:    buildMessages(query, doc),
		MaxTokens:   e.opts.MaxTokens,
		Temperature: e.opts.Temperature,
	}

	chunks, err := e.streamer.StreamCompletion(ctx, req)
	if err != nil {
		e.metrics.RequestsFailed.Inc()
		e.logger.Error("generation connect failed", "error", err)
		emit(schema.ErrorEvent(schema.ErrKindGenerationUnavailable, fmt.Sprintf("generation unavailable: %v", err)))
		return
	}

	tokens := 0
	finished := false
	for chunk := range chunks {
		switch {
		case chunk.Err != nil:
			e.metrics.RequestsFailed.Inc()
			kind := schema.ErrKindGenerationInterrupted
			if tokens == 0 {
				kind = schema.ErrKindGenerationUnavailable
			}
			e.logger.Error("generation stream broke", "error", chunk.Err, "tokens_delivered", tokens)
			emit(schema.ErrorEvent(kind, chunk.Err.Error()))
			return
		case chunk.Done:
			finished = true
		case chunk.Content != "":
			tokens++
			e.metrics.TokensRelayed.Inc()
			if !emit(schema.TokenEvent(chunk.Content)) {
				return
			}
		}
	}

	if ctx.Err() != nil {
		return
	}
	if !finished {
		e.metrics.RequestsFailed.Inc()
		kind := schema.ErrKindGenerationInterrupted
		if tokens == 0 {
			kind = schema.ErrKindGenerationUnavailable
		}
		emit(schema.ErrorEvent(kind, "generation stream ended unexpectedly"))
		return
	}

	e.logger.Info("request completed", "tokens", tokens, "sources", len(doc.Sources))
	emit(schema.DoneEvent())
}
