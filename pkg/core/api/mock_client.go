// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"strings"
)

// MockChatStreamer is a scripted ChatStreamer for testing. With no
// script it echoes a predictable response token by token; a script can
// inject connect failures or mid-stream breaks.
type MockChatStreamer struct {
	// Tokens replaces the generated output when non-nil.
	Tokens []string
	// ConnectErr is returned from StreamCompletion before any token.
	ConnectErr error
	// BreakAfter, when > 0, delivers that many tokens and then an error
	// chunk, simulating a provider dropping the stream mid-response.
	BreakAfter int
}

// NewMockChatStreamer creates a mock with default echo behaviour.
func NewMockChatStreamer() *MockChatStreamer {
	return &MockChatStreamer{}
}

// StreamCompletion implements ChatStreamer.
func (m *MockChatStreamer) StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan StreamChunk, error) {
	if m.ConnectErr != nil {
		return nil, m.ConnectErr
	}

	tokens := m.Tokens
	if tokens == nil {
		userMessage := ""
		for _, msg := range req.Messages {
			if msg.Role == "user" {
				userMessage = msg.Content
				break
			}
		}
		for _, word := range strings.Fields(fmt.Sprintf("Mock streaming response to: %s", userMessage)) {
			tokens = append(tokens, word+" ")
		}
	}

	chunks := make(chan StreamChunk, 10)

	go func() {
		defer close(chunks)

		for i, tok := range tokens {
			if m.BreakAfter > 0 && i == m.BreakAfter {
				select {
				case chunks <- StreamChunk{Err: fmt.Errorf("provider closed the stream")}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case chunks <- StreamChunk{Content: tok}:
			case <-ctx.Done():
				return
			}
		}
		if m.BreakAfter > 0 && m.BreakAfter >= len(tokens) {
			select {
			case chunks <- StreamChunk{Err: fmt.Errorf("provider closed the stream")}:
			case <-ctx.Done():
			}
			return
		}

		select {
		case chunks <- StreamChunk{Done: true}:
		case <-ctx.Done():
		}
	}()

	return chunks, nil
}
