// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/syncgraph/syncgraph/internal/logging"
	"github.com/syncgraph/syncgraph/internal/metrics"
)

// GraphMutator is the graph store surface the router drives.
type GraphMutator interface {
	AddEdge(a, b int64)
	RemoveEdge(a, b int64)
}

// NewGraphRouter builds a Watermill router that applies connection
// lifecycle events to the graph store. Both mutations are idempotent,
// so redelivery is harmless.
func NewGraphRouter(bus *Bus, g GraphMutator, logger watermill.LoggerAdapter) (*message.Router, error) {
	if logger == nil {
		logger = NewLoggerAdapter()
	}

	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, fmt.Errorf("create event router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	router.AddNoPublisherHandler(
		"graph-add-edge",
		TopicConnectionAccepted,
		bus.Subscriber(),
		func(msg *message.Message) error {
			return applyEvent(msg, TopicConnectionAccepted, g.AddEdge)
		},
	)

	router.AddNoPublisherHandler(
		"graph-remove-edge",
		TopicConnectionRemoved,
		bus.Subscriber(),
		func(msg *message.Message) error {
			return applyEvent(msg, TopicConnectionRemoved, g.RemoveEdge)
		},
	)

	return router, nil
}

func applyEvent(msg *message.Message, topic string, apply func(a, b int64)) error {
	e, err := UnmarshalConnectionEvent(msg)
	if err != nil {
		// A malformed payload never becomes valid; drop it instead of
		// letting redelivery loop.
		metrics.EventsProcessed.WithLabelValues(topic, "malformed").Inc()
		logging.Error().Err(err).Str("topic", topic).Msg("Dropping malformed connection event")
		return nil
	}

	apply(e.UserA, e.UserB)
	metrics.EventsProcessed.WithLabelValues(topic, "ok").Inc()
	return nil
}
