// Syncgraph - Developer Network Connection Recommendations
// Copyright 2026 Syncgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/syncgraph/syncgraph

package services

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// RouterService runs a watermill message router under supervision.
type RouterService struct {
	router *message.Router
}

// NewRouterService wraps the given router.
func NewRouterService(router *message.Router) *RouterService {
	return &RouterService{router: router}
}

// Serve implements suture.Service. Run blocks until the context is
// canceled and closes the router on the way out.
func (s *RouterService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil {
		return fmt.Errorf("event router failed: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (s *RouterService) String() string {
	return "event-router"
}
