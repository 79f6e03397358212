package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const changesChannelPrefix = "blogsync||changes||"

const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// Event describes one remote document change, fanned out to every open
// subscription on the affected collection.
type Event struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         string `json:"op"`
}

// Notifier carries change events between writers and live queries.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a stream of events for one collection and a
	// close func; the stream is closed after the close func returns.
	Subscribe(ctx context.Context, collection string) (<-chan Event, func() error, error)
}

type RedisNotifier struct {
	redisClient *redis.Client
}

func NewRedisNotifier(redisClient *redis.Client) *RedisNotifier {
	return &RedisNotifier{
		redisClient: redisClient,
	}
}

func changesChannel(collection string) string {
	return changesChannelPrefix + collection
}

func (n *RedisNotifier) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	cmd := n.redisClient.Publish(ctx, changesChannel(event.Collection), payload)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}

	return nil
}

func (n *RedisNotifier) Subscribe(
	ctx context.Context,
	collection string,
) (<-chan Event, func() error, error) {
	pubsub := n.redisClient.Subscribe(ctx, changesChannel(collection))

	// wait for the subscription confirmation, so no event published
	// after Subscribe returns is ever missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("confirm subscription: %w", err)
	}

	events := make(chan Event)
	done := make(chan struct{})

	go func() {
		defer close(events)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Errorf("notifier: bad change event on %s: %s", msg.Channel, err)
					continue
				}
				select {
				case events <- event:
				case <-done:
					return
				}
			}
		}
	}()

	var closeOnce sync.Once
	closeFn := func() error {
		var err error
		closeOnce.Do(func() {
			close(done)
			err = pubsub.Close()
		})
		return err
	}

	return events, closeFn, nil
}
