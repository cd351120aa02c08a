package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProjectsChannel = "heng:events:projects"
	GalleryChannel  = "heng:events:gallery"
	MediaChannel    = "heng:events:media"

	// Recent events are also kept in a capped list so late subscribers can
	// catch up: heng:events:recent:{channel}
	recentKeyPrefix = "heng:events:recent:"
	recentLimit     = 100
	recentTTL       = 24 * time.Hour
)

type Event struct {
	Type      string                 `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// Publisher fans change notifications out over Redis pub/sub. A Publisher
// with a nil client drops every event.
type Publisher struct {
	client *redis.Client
	now    func() time.Time
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, now: time.Now}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil
}

func (p *Publisher) PublishEvent(ctx context.Context, channel, eventType string, payload map[string]interface{}) error {
	if !p.Enabled() {
		return nil
	}

	data, err := json.Marshal(Event{Type: eventType, Payload: payload, Timestamp: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	recentKey := RecentKey(channel)
	pipe := p.client.Pipeline()
	pipe.Publish(ctx, channel, data)
	pipe.LPush(ctx, recentKey, data)
	pipe.LTrim(ctx, recentKey, 0, recentLimit-1)
	pipe.Expire(ctx, recentKey, recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Recent returns up to limit events from a channel, newest first.
func (p *Publisher) Recent(ctx context.Context, channel string, limit int64) ([]Event, error) {
	if !p.Enabled() {
		return []Event{}, nil
	}
	raw, err := p.client.LRange(ctx, RecentKey(channel), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent events: %w", err)
	}
	events := make([]Event, 0, len(raw))
	for _, item := range raw {
		var e Event
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (p *Publisher) Ping(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}
	return p.client.Ping(ctx).Err()
}

func RecentKey(channel string) string {
	return recentKeyPrefix + channel
}

// Event payloads
func ProjectCreatedPayload(id string) map[string]interface{} {
	return map[string]interface{}{"id": id}
}

func ProjectUpdatedPayload(id string) map[string]interface{} {
	return map[string]interface{}{"id": id}
}

func ProjectDeletedPayload(id string) map[string]interface{} {
	return map[string]interface{}{"id": id}
}

func MediaUploadedPayload(name, url string, size int64) map[string]interface{} {
	return map[string]interface{}{
		"name": name,
		"url":  url,
		"size": size,
	}
}

func GallerySavedPayload(count int, version string) map[string]interface{} {
	return map[string]interface{}{
		"count":   count,
		"version": version,
	}
}

const (
	EventProjectCreated = "project.created"
	EventProjectUpdated = "project.updated"
	EventProjectDeleted = "project.deleted"
	EventMediaUploaded  = "media.uploaded"
	EventGallerySaved   = "gallery.saved"
)
