package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/go-redis/redis/v8"
)

const channelPrefix = "product.images.status."

// ChannelFor returns the pub/sub channel name for one product's room.
func ChannelFor(productID string) string {
	return channelPrefix + productID
}

// RedisFeed implements Feed over Redis pub/sub. The product service
// publishes a JSON StatusEvent to the product's channel on every status
// transition.
type RedisFeed struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisFeed(client *redis.Client, log *slog.Logger) *RedisFeed {
	return &RedisFeed{client: client, log: log}
}

func (f *RedisFeed) Subscribe(ctx context.Context, productID string) (Subscription, error) {
	pubsub := f.client.Subscribe(ctx, ChannelFor(productID))
	// Force the SUBSCRIBE onto the wire so a publish right after this
	// call is not lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan StatusEvent, 8),
	}
	go sub.pump(ctx, productID, f.log)
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan StatusEvent

	closeOnce sync.Once
	closeErr  error
}

func (s *redisSubscription) Events() <-chan StatusEvent { return s.events }

func (s *redisSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.pubsub.Close()
	})
	return s.closeErr
}

func (s *redisSubscription) pump(ctx context.Context, productID string, log *slog.Logger) {
	defer close(s.events)
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev StatusEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.LogAttrs(ctx, slog.LevelWarn, "status_event_malformed",
					slog.String("product_id", productID),
					slog.String("payload", msg.Payload),
					slog.Any("err", err),
				)
				continue
			}
			select {
			case s.events <- ev:
			case <-ctx.Done():
				_ = s.Close()
				return
			}
		}
	}
}
