// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the wire types shared by the engine and the
// HTTP adapter: the answer request body and the stream events pushed to
// the client.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventType discriminates StreamEvent variants.
type EventType string

const (
	EventStatus EventType = "status"
	EventSource EventType = "source"
	EventToken  EventType = "token"
	EventDone   EventType = "done"
	EventError  EventType = "error"
)

// Error kinds carried by error events.
const (
	ErrKindInvalidRequest        = "invalid_request"
	ErrKindSearchUnavailable     = "search_unavailable"
	ErrKindGenerationUnavailable = "generation_unavailable"
	ErrKindGenerationInterrupted = "generation_interrupted"
)

// StreamEvent is the unit pushed to the client channel. Events are
// ordered, append-only and never revised; exactly one Done or Error
// terminates every sequence.
type StreamEvent struct {
	Type    EventType     `json:"type"`
	Stage   string        `json:"stage,omitempty"`
	Message string        `json:"message,omitempty"`
	Source  *SourceResult `json:"source,omitempty"`
	Token   string        `json:"token,omitempty"`
	Error   *ErrorInfo    `json:"error,omitempty"`
}

// SourceResult reports the outcome of one page fetch, in completion order.
type SourceResult struct {
	URL       string `json:"url"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

// ErrorInfo carries the failure taxonomy kind and a human-readable message.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StatusEvent announces a pipeline stage transition.
func StatusEvent(stage, message string) StreamEvent {
	return StreamEvent{Type: EventStatus, Stage: stage, Message: message}
}

// SourceEvent reports a resolved (or abandoned) fetch.
func SourceEvent(url string, succeeded bool, reason string) StreamEvent {
	return StreamEvent{Type: EventSource, Source: &SourceResult{URL: url, Succeeded: succeeded, Reason: reason}}
}

// TokenEvent relays one generated token.
func TokenEvent(text string) StreamEvent {
	return StreamEvent{Type: EventToken, Token: text}
}

// DoneEvent terminates a successful sequence.
func DoneEvent() StreamEvent {
	return StreamEvent{Type: EventDone}
}

// ErrorEvent reports a failure. Terminal except for search_unavailable,
// which the pipeline surfaces and then degrades past.
func ErrorEvent(kind, message string) StreamEvent {
	return StreamEvent{Type: EventError, Error: &ErrorInfo{Kind: kind, Message: message}}
}

// Terminal reports whether this event ends the sequence.
func (e StreamEvent) Terminal() bool {
	switch e.Type {
	case EventDone:
		return true
	case EventError:
		return e.Error != nil && e.Error.Kind != ErrKindSearchUnavailable
	}
	return false
}

// MarshalSSE renders the event as a Server-Sent Events frame.
func (e StreamEvent) MarshalSSE() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", e.Type, data)), nil
}

// AnswerRequest is the inbound request body.
type AnswerRequest struct {
	Query string `json:"query"`
}

// Validate rejects malformed requests before the pipeline starts.
func (r *AnswerRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("query must not be empty")
	}
	return nil
}
