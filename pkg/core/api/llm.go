// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import "context"

// ChatStreamer is the generation backend: one streaming completion per
// call, tokens relayed as they arrive.
type ChatStreamer interface {
	// StreamCompletion opens a streaming completion. The returned channel
	// is closed after the final chunk; a chunk with Err set is always the
	// last one delivered.
	StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan StreamChunk, error)
}

// CompletionRequest represents a request to the LLM
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamChunk is one unit of the relayed token stream. Exactly one of
// the three conditions holds per chunk: Content carries a token delta,
// Done marks normal completion, Err marks a broken stream.
type StreamChunk struct {
	Content string
	Done    bool
	Err     error
}
