// Package infra_redis_relay shares accepted record updates between service
// instances over a Redis pub/sub channel.
package infra_redis_relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"github.com/humanbelnik/lootsplit/internal/model"
	"go.uber.org/zap"
)

type envelope struct {
	Origin string            `json:"origin"`
	Event  model.RecordEvent `json:"event"`
}

type Driver struct {
	client   *redis.Client
	channel  string
	instance string
	logger   *zap.Logger
}

func New(client *redis.Client, channel string, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		client:   client,
		channel:  channel,
		instance: uuid.NewString(),
		logger:   logger,
	}
}

func (d *Driver) Publish(ctx context.Context, event model.RecordEvent) error {
	msg, err := json.Marshal(envelope{Origin: d.instance, Event: event})
	if err != nil {
		return err
	}
	return d.client.WithContext(ctx).Publish(d.channel, msg).Err()
}

// Listen subscribes to the channel and calls handle for every event published
// by another instance until ctx is done. It returns once the subscription is
// confirmed.
func (d *Driver) Listen(ctx context.Context, handle func(model.RecordEvent)) error {
	pubsub := d.client.Subscribe(d.channel)
	if _, err := pubsub.Receive(); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", d.channel, err)
	}

	go func() {
		defer pubsub.Close()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				d.dispatch(msg.Payload, handle)
			}
		}
	}()

	d.logger.Info("relay listening", zap.String("channel", d.channel), zap.String("instance", d.instance))
	return nil
}

func (d *Driver) dispatch(raw string, handle func(model.RecordEvent)) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		d.logger.Warn("dropping malformed relay message", zap.Error(err))
		return
	}
	if env.Origin == d.instance {
		return
	}
	handle(env.Event)
}
