package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"botspoof-chat/internal/domain"
)

// RedisFeed implementa Feed y Publisher sobre un canal Pub/Sub de Redis.
// Cada inserción exitosa en el log persistente se publica aquí, de modo que
// todo suscriptor ve también las filas escritas por otros procesos.
type RedisFeed struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewRedisFeed(client *redis.Client, channel string, logger *zap.Logger) *RedisFeed {
	if channel == "" {
		channel = "messages:insert"
	}
	return &RedisFeed{client: client, channel: channel, logger: logger}
}

func (f *RedisFeed) PublishInsert(ctx context.Context, msg domain.Message) error {
	payload, err := json.Marshal(Event{Table: TableMessages, Type: TypeInsert, Row: msg})
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, fn func(Event)) (Subscription, error) {
	pubsub := f.client.Subscribe(ctx, f.channel)

	// Receive confirma la suscripción antes de devolver el handle; sin esto
	// una inserción inmediata posterior podría perderse.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for m := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				f.logger.Warn("realtime payload invalid", zap.Error(err))
				continue
			}
			fn(ev)
		}
	}()

	return &redisSubscription{pubsub: pubsub, done: done}, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) Unsubscribe() {
	s.once.Do(func() {
		_ = s.pubsub.Close()
		<-s.done
	})
}
