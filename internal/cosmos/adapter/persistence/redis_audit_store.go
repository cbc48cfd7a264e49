package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/shared/eventbus"
	"cosmos-admin/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// RedisAuditStore appends audit events to a Redis Stream.
type RedisAuditStore struct {
	client redis.Cmdable
	stream string
	maxLen int64
	logger logger.Logger
}

// NewRedisAuditStore creates a store writing to stream, trimmed to about maxLen entries.
func NewRedisAuditStore(client redis.Cmdable, stream string, maxLen int64, log logger.Logger) *RedisAuditStore {
	if log == nil {
		log = logger.Default()
	}
	return &RedisAuditStore{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: log.WithComponent("audit"),
	}
}

// Append stores one event and returns the stream entry id.
func (r *RedisAuditStore) Append(ctx context.Context, event *model.AuditEvent) (string, error) {
	values, err := streamValues(event)
	if err != nil {
		return "", err
	}

	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: r.maxLen > 0,
		Values: values,
	}).Result()
	if err != nil {
		r.logger.WithFields(map[string]interface{}{
			"stream":     r.stream,
			"event_type": event.Type,
			"error":      err.Error(),
		}).Error("Failed to store audit event in Redis")
		return "", err
	}

	r.logger.WithFields(map[string]interface{}{
		"stream":     r.stream,
		"event_type": event.Type,
		"entry_id":   id,
	}).Debug("Audit event stored in Redis")
	return id, nil
}

// Handle lets the store subscribe to an event bus.
func (r *RedisAuditStore) Handle(ctx context.Context, event eventbus.Event) error {
	audit, ok := event.Data().(*model.AuditEvent)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", event.Data())
	}
	_, err := r.Append(ctx, audit)
	return err
}

// streamValues flattens an event into stream fields.
func streamValues(event *model.AuditEvent) (map[string]interface{}, error) {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize audit details: %w", err)
	}
	return map[string]interface{}{
		"type":         event.Type,
		"databaseId":   event.DatabaseID,
		"collectionId": event.CollectionID,
		"resourceId":   event.ResourceID,
		"subject":      event.Subject,
		"details":      string(details),
		"occurredAt":   event.OccurredAt.UnixNano(),
	}, nil
}
