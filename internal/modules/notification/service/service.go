package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/proofofgrind/internal/modules/tier"
	"github.com/redis/go-redis/v9"
)

const (
	EventTierUp             = "tier_up"
	EventLeaderboardUpdated = "leaderboard_updated"

	LeaderboardChannel = "leaderboard_updates"
)

// UserChannel is the pub/sub channel carrying events for one address.
func UserChannel(address string) string {
	return fmt.Sprintf("grinder_events:%s", address)
}

type Event struct {
	Type      string         `json:"type"`
	Address   string         `json:"address,omitempty"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type NotificationService interface {
	PublishTierUp(ctx context.Context, address string, from, to tier.Tier, totalGrinds uint64) error
	PublishLeaderboard(ctx context.Context, top []string) error
}

type notificationService struct {
	redisClient *redis.Client
}

// NewNotificationService publishes over Redis. A nil client makes every
// publish a no-op.
func NewNotificationService(redisClient *redis.Client) NotificationService {
	return &notificationService{redisClient: redisClient}
}

func (s *notificationService) PublishTierUp(ctx context.Context, address string, from, to tier.Tier, totalGrinds uint64) error {
	return s.publish(ctx, UserChannel(address), Event{
		Type:    EventTierUp,
		Address: address,
		Message: fmt.Sprintf("Tier up! %s -> %s after %d grinds", from, to, totalGrinds),
		Data: map[string]any{
			"from":         from.String(),
			"to":           to.String(),
			"total_grinds": totalGrinds,
		},
		CreatedAt: time.Now().UTC(),
	})
}

func (s *notificationService) PublishLeaderboard(ctx context.Context, top []string) error {
	return s.publish(ctx, LeaderboardChannel, Event{
		Type:      EventLeaderboardUpdated,
		Message:   "Leaderboard updated",
		Data:      map[string]any{"top": top},
		CreatedAt: time.Now().UTC(),
	})
}

func (s *notificationService) publish(ctx context.Context, channel string, event Event) error {
	if s.redisClient == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	if err := s.redisClient.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}
	return nil
}
