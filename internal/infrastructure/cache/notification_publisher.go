package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/propcore/backend/internal/domain/notification"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultNotificationChannelPrefix = "propcore:notifications:"

// notificationMessage is the wire format pushed to subscribers
type notificationMessage struct {
	ID            string `json:"id"`
	OrgID         string `json:"org_id"`
	Kind          string `json:"kind"`
	RecipientType string `json:"recipient_type"`
	RecipientID   string `json:"recipient_id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	CreatedAt     int64  `json:"created_at"`
}

// RedisNotificationPublisher publishes stored notifications on a per-organization
// Redis Pub/Sub channel for live delivery to connected clients
type RedisNotificationPublisher struct {
	client        *redis.Client
	channelPrefix string
	logger        *zap.Logger
}

// NewRedisNotificationPublisher creates a publisher on an existing client
func NewRedisNotificationPublisher(client *redis.Client, logger *zap.Logger) *RedisNotificationPublisher {
	return &RedisNotificationPublisher{
		client:        client,
		channelPrefix: defaultNotificationChannelPrefix,
		logger:        logger,
	}
}

// Channel returns the channel of an organization
func (p *RedisNotificationPublisher) Channel(orgID string) string {
	return p.channelPrefix + orgID
}

// Publish sends n to its organization's channel
func (p *RedisNotificationPublisher) Publish(ctx context.Context, n *notification.Notification) error {
	data, err := json.Marshal(notificationMessage{
		ID:            n.ID.String(),
		OrgID:         n.OrgID.String(),
		Kind:          string(n.Kind),
		RecipientType: string(n.RecipientType),
		RecipientID:   n.RecipientID.String(),
		Title:         n.Title,
		Body:          n.Body,
		CreatedAt:     n.CreatedAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	channel := p.Channel(n.OrgID.String())
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	p.logger.Debug("published notification",
		zap.String("channel", channel),
		zap.String("kind", string(n.Kind)),
	)
	return nil
}

// LogNotificationPublisher stands in for Redis when it is unavailable
type LogNotificationPublisher struct {
	logger *zap.Logger
}

// NewLogNotificationPublisher creates a publisher that only logs
func NewLogNotificationPublisher(logger *zap.Logger) *LogNotificationPublisher {
	return &LogNotificationPublisher{logger: logger}
}

// Publish logs the notification
func (p *LogNotificationPublisher) Publish(_ context.Context, n *notification.Notification) error {
	p.logger.Info("notification",
		zap.String("org_id", n.OrgID.String()),
		zap.String("kind", string(n.Kind)),
		zap.String("recipient_id", n.RecipientID.String()),
		zap.Time("created_at", n.CreatedAt.Truncate(time.Second)),
	)
	return nil
}

var (
	_ notification.Publisher = (*RedisNotificationPublisher)(nil)
	_ notification.Publisher = (*LogNotificationPublisher)(nil)
)
