// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

// Package events carries connection lifecycle events over an
// in-process Watermill pub/sub.
//
// Connection handlers publish an event whenever a connection is
// accepted or removed; a router subscription applies the matching
// graph mutation. Keeping the graph update behind the bus decouples
// the HTTP handlers from the in-memory cache and gives mutations a
// single, ordered application point.
package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Topics for connection lifecycle events.
const (
	TopicConnectionAccepted = "connections.accepted"
	TopicConnectionRemoved  = "connections.removed"
)

// ConnectionEvent is the payload for both lifecycle topics.
type ConnectionEvent struct {
	UserA      int64     `json:"user_a"`
	UserB      int64     `json:"user_b"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Marshal encodes the event payload.
func (e *ConnectionEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalConnectionEvent decodes a message payload.
func UnmarshalConnectionEvent(msg *message.Message) (*ConnectionEvent, error) {
	var e ConnectionEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("decode connection event: %w", err)
	}
	return &e, nil
}
