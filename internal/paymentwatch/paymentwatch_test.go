package paymentwatch

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() {
		_ = client.Close()
	})
	require.NoError(t, client.Ping(ctx).Err())

	return client
}

func TestKey_RoundTrip(t *testing.T) {
	id := uuid.New()

	assert.Equal(t, "checkOrderPayment_"+id.String(), Key(id))

	parsed, ok := ParseKey(Key(id))
	assert.True(t, ok)
	assert.Equal(t, id, parsed)

	_, ok = ParseKey("session_" + id.String())
	assert.False(t, ok)
	_, ok = ParseKey(KeyPrefix + "not-a-uuid")
	assert.False(t, ok)
}

func TestTracker_WatchAndClear(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	tracker := NewTracker(client, zerolog.Nop())
	orderID := uuid.New()

	require.NoError(t, tracker.Watch(ctx, orderID, time.Minute))

	ttl, err := client.TTL(ctx, Key(orderID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	require.NoError(t, tracker.Clear(ctx, orderID))

	exists, err := client.Exists(ctx, Key(orderID)).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestListener_FiresOnExpiry(t *testing.T) {
	client := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listener := NewListener(client, zerolog.Nop())
	require.NoError(t, listener.EnableNotifications(ctx))

	expired := make(chan uuid.UUID, 2)
	done := make(chan error, 1)
	go func() {
		done <- listener.Run(ctx, func(_ context.Context, id uuid.UUID) error {
			expired <- id
			return nil
		})
	}()

	// Give the subscription time to register.
	time.Sleep(500 * time.Millisecond)

	tracker := NewTracker(client, zerolog.Nop())
	watched := uuid.New()
	cleared := uuid.New()
	require.NoError(t, tracker.Watch(ctx, watched, time.Second))
	require.NoError(t, tracker.Watch(ctx, cleared, time.Second))
	require.NoError(t, tracker.Clear(ctx, cleared))
	require.NoError(t, client.Set(ctx, "unrelated", "x", time.Second).Err())

	select {
	case id := <-expired:
		assert.Equal(t, watched, id)
	case <-ctx.Done():
		t.Fatal("expiry event not received")
	}

	select {
	case id := <-expired:
		t.Fatalf("unexpected expiry for %s", id)
	case <-time.After(2 * time.Second):
	}

	cancel()
	assert.NoError(t, <-done)
}
