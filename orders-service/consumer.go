package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"microshop/bus"
	"microshop/orders-service/domain"
)

type userCache interface {
	Put(ctx context.Context, id string, u domain.User)
}

// processEvent applies one consumed user event to the reference cache. An
// unconditional overwrite keeps application idempotent under at-least-once
// delivery: a re-delivered event writes the same snapshot again. A returned
// error marks the message unrecoverable so the bus dead-letters it.
func processEvent(ctx context.Context, cache userCache, routingKey string, body []byte) error {
	var u domain.User
	if err := json.Unmarshal(body, &u); err != nil {
		return fmt.Errorf("parse user event: %w", err)
	}
	if u.ID == "" {
		return errors.New("user event missing id")
	}
	cache.Put(ctx, u.ID, u)
	log.WithFields(log.Fields{"routing_key": routingKey, "user": u.ID}).Debug("cached user snapshot")
	return nil
}

// runConsumer binds the durable queue to the user event keys and feeds
// deliveries through processEvent until ctx is cancelled.
func runConsumer(ctx context.Context, b *bus.Bus, queue string, routingKeys []string, cache userCache) {
	err := b.Consume(ctx, queue, routingKeys, func(routingKey string, body []byte) error {
		return processEvent(ctx, cache, routingKey, body)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("event consumer stopped")
	}
}
