package di

import (
	"context"
	"io"
	"testing"
	"time"

	"cosmos-admin/internal/cosmos/config"
	"cosmos-admin/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer(cfg *config.Config) *Container {
	return NewContainer(cfg, logger.NewLoggerWithOutput("error", "text", io.Discard))
}

func TestContainer_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	c := newTestContainer(config.DefaultConfig())
	require.NoError(t, c.Initialize(ctx))

	require.NotNil(t, c.Admin)
	assert.Nil(t, c.Bus)
	assert.Nil(t, c.Redis)
	assert.NoError(t, c.HealthCheck(ctx))

	db, err := c.Admin.Databases.Create(ctx, "Contoso")
	require.NoError(t, err)
	assert.Equal(t, "Contoso", db.ID)

	client := c.Client
	require.NoError(t, c.Close())
	assert.Nil(t, c.Client)
	assert.Nil(t, c.Admin)

	_, err = client.ReadDatabases(ctx)
	assert.Error(t, err)
}

func TestContainer_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = "cassandra"
	c := newTestContainer(cfg)

	err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cassandra")
	assert.Nil(t, c.Admin)
}

func TestContainer_AuditFailureClosesClient(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Audit.RedisURL = "not a redis url"
	c := newTestContainer(cfg)

	err := c.Initialize(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
	assert.Nil(t, c.Client)
	assert.Nil(t, c.Admin)
}

func TestContainer_CleanupHonoursContext(t *testing.T) {
	c := newTestContainer(config.DefaultConfig())
	require.NoError(t, c.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.Cleanup(ctx))
	assert.NotNil(t, c.Client)
	assert.NoError(t, c.Close())
}

func TestBusConfig_FollowsAuditRetries(t *testing.T) {
	cfg := config.DefaultConfig().Audit
	cfg.Retries = 4
	cfg.RetryDelay = 250 * time.Millisecond

	bus := busConfig(cfg)
	assert.Equal(t, 4, bus.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, bus.RetryDelay)
}
