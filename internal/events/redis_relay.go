package events

import (
	"context"
	"encoding/json"
	"time"

	"voice-bridge/internal/observability"
)

// RedisPublisher is the subset of the Redis client used by the relay.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) (int64, error)
}

// RedisRelay forwards broker events to a Redis pub/sub channel so dashboards in other
// processes can follow calls.
type RedisRelay struct {
	client  RedisPublisher
	channel string
	logger  *observability.Logger
}

func NewRedisRelay(client RedisPublisher, channel string, logger *observability.Logger) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

// Run subscribes to broker and publishes each event until ctx is done or the broker
// closes. Publish failures are logged and the event is dropped.
func (r *RedisRelay) Run(ctx context.Context, broker *Broker) {
	events, cancel := broker.Subscribe(256)
	defer cancel()

	ctx = observability.WithFields(ctx, observability.Field{Key: "channel", Value: r.channel})
	r.logger.Info(ctx, "redis event relay started")
	defer r.logger.Info(ctx, "redis event relay stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			r.forward(ctx, e)
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		r.logger.Error(ctx, "failed to encode event", err)
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if _, err := r.client.Publish(pubCtx, r.channel, payload); err != nil {
		r.logger.Error(ctx, "failed to publish event to redis", err)
	}
}
