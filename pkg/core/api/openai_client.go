// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements ChatStreamer using the official OpenAI Go SDK.
// Supports OpenAI, Groq, Ollama, vLLM and other OpenAI-compatible backends.
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client. The baseURL
// parameter allows connecting to compatible backends; empty means
// api.openai.com.
func NewOpenAIClient(baseURL, apiKey string) *OpenAIClient {
	opts := []option.RequestOption{}

	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// Local backends like Ollama do not require authentication
		opts = append(opts, option.WithAPIKey("dummy"))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
	}
}

// StreamCompletion implements ChatStreamer. It relays content deltas the
// moment the SDK yields them; no buffering beyond the small channel the
// transport requires.
func (c *OpenAIClient) StreamCompletion(ctx context.Context, req *CompletionRequest) (<-chan StreamChunk, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: convertMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)

	chunks := make(chan StreamChunk, 10)

	go func() {
		defer close(chunks)
		defer stream.Close()

		finished := false
		for stream.Next() {
			chunk := stream.Current()
			for _, choice := range chunk.Choices {
				if choice.Delta.Content != "" {
					select {
					case chunks <- StreamChunk{Content: choice.Delta.Content}:
					case <-ctx.Done():
						return
					}
				}
				if choice.FinishReason != "" {
					finished = true
				}
			}
		}

		if err := stream.Err(); err != nil && !errors.Is(err, io.EOF) {
			select {
			case chunks <- StreamChunk{Err: fmt.Errorf("generation stream: %w", err)}:
			case <-ctx.Done():
			}
			return
		}

		if finished {
			select {
			case chunks <- StreamChunk{Done: true}:
			case <-ctx.Done():
			}
		}
	}()

	return chunks, nil
}

func convertMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			result = append(result, openai.SystemMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}
