package docstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifier_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() {
		require.NoError(t, redisClient.Close())
	}()

	notifier := NewRedisNotifier(redisClient)

	events, closeEvents, err := notifier.Subscribe(ctx, CollectionBlogs)
	require.NoError(t, err)

	sent := Event{Collection: CollectionBlogs, ID: "b1", Op: OpCreated}
	require.NoError(t, notifier.Publish(ctx, sent))

	select {
	case received := <-events:
		assert.Equal(t, sent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change event")
	}

	// a change in another collection never reaches this stream
	require.NoError(t, notifier.Publish(ctx, Event{
		Collection: CollectionComments, ID: "c1", Op: OpCreated,
	}))
	select {
	case event := <-events:
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, closeEvents())
	_, open := <-events
	assert.False(t, open)

	// idempotent close
	require.NoError(t, closeEvents())
}

func TestRedisNotifier_Publish(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	defer func() {
		require.NoError(t, redisClient.Close())
	}()

	notifier := NewRedisNotifier(redisClient)

	event := Event{Collection: CollectionBlogs, ID: "b1", Op: OpDeleted}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish(changesChannel(CollectionBlogs), payload).SetVal(1)
	require.NoError(t, notifier.Publish(context.Background(), event))
	require.NoError(t, mock.ExpectationsWereMet())
}
