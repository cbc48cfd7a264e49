package persistence

import (
	"context"
	"testing"
	"time"

	"cosmos-admin/internal/cosmos/domain/model"
	"cosmos-admin/internal/shared/eventbus"
	"cosmos-admin/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamValues(t *testing.T) {
	event := model.NewAuditEvent(model.EventOfferReplaced, "Contoso", "Orders").
		WithDetail("before", 400).
		WithDetail("after", 500)
	event.ResourceID = "Xq2c"

	values, err := streamValues(event)
	require.NoError(t, err)
	assert.Equal(t, "offer.replaced", values["type"])
	assert.Equal(t, "Contoso", values["databaseId"])
	assert.Equal(t, "Orders", values["collectionId"])
	assert.Equal(t, "Xq2c", values["resourceId"])
	assert.JSONEq(t, `{"before":400,"after":500}`, values["details"].(string))
	assert.Equal(t, event.OccurredAt.UnixNano(), values["occurredAt"])
}

func TestHandle_RejectsForeignPayload(t *testing.T) {
	store := NewRedisAuditStore(nil, "cosmos-admin:audit", 100, logger.NewLoggerWithConfig("error", "text"))
	err := store.Handle(context.Background(), eventbus.NewBasicEventWithSource("database.created", "not an audit event", "test"))
	assert.Error(t, err)
}

func TestAppend_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := NewRedisAuditStore(client, "cosmos-admin:audit", 100, logger.NewLoggerWithConfig("error", "text"))
	_, err := store.Append(context.Background(), model.NewAuditEvent(model.EventDatabaseCreated, "Contoso", ""))
	assert.Error(t, err)
}
