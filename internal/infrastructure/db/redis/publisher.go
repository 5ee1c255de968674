package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

const channelPrefix = "portal:notifications:"

// NotificationPublisher fans notifications out over Redis pub/sub.
// Channel format: portal:notifications:<session_id>
type NotificationPublisher struct {
	client publisher
}

type publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

var _ ports.NotificationSink = (*NotificationPublisher)(nil)

func NewNotificationPublisher(client *redis.Client) *NotificationPublisher {
	return &NotificationPublisher{client: client}
}

func (p *NotificationPublisher) Deliver(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := p.client.Publish(ctx, Channel(n.SessionID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Channel returns the pub/sub channel for a session.
func Channel(sessionID string) string {
	return channelPrefix + sessionID
}
