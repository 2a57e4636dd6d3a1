// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/syncgraph/syncgraph/internal/metrics"
)

// Bus is the in-process event bus. Both ends of the gochannel pub/sub
// live in this process; events are not persisted and a restart simply
// rebuilds the graph from the database.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the bus.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = NewLoggerAdapter()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

// Subscriber exposes the subscribe side for the router.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close shuts the bus down; pending deliveries are dropped.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func (b *Bus) publish(topic string, e *ConnectionEvent) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	payload, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// PublishConnectionAccepted announces a newly accepted connection.
func (b *Bus) PublishConnectionAccepted(userA, userB int64) error {
	return b.publish(TopicConnectionAccepted, &ConnectionEvent{UserA: userA, UserB: userB})
}

// PublishConnectionRemoved announces a removed connection.
func (b *Bus) PublishConnectionRemoved(userA, userB int64) error {
	return b.publish(TopicConnectionRemoved, &ConnectionEvent{UserA: userA, UserB: userB})
}
