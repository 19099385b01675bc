package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/chachabrian/uniride-backend/internal/carpool"
	"github.com/redis/go-redis/v9"
)

// RideUpdatesChannel carries every carpool.Event between API instances.
const RideUpdatesChannel = "ride:updates"

// NewRedisClient connects to redisURL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisPublisher fans ride events out over Redis pub/sub so every instance's
// hub can relay them.
type RedisPublisher struct {
	client *redis.Client
}

var _ carpool.Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish publishes ride update to Redis pub/sub
func (p *RedisPublisher) Publish(ctx context.Context, event carpool.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, RideUpdatesChannel, data).Err()
}

// RelayRideUpdates forwards events from the Redis channel to to until ctx is
// done.
func RelayRideUpdates(ctx context.Context, client *redis.Client, to carpool.Publisher) error {
	sub := client.Subscribe(ctx, RideUpdatesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", RideUpdatesChannel, err)
	}
	log.Printf("Relaying %s to websocket clients", RideUpdatesChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			relay(ctx, msg.Payload, to)
		}
	}
}

func relay(ctx context.Context, payload string, to carpool.Publisher) {
	var event carpool.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		log.Printf("Error unmarshaling ride update: %v", err)
		return
	}
	if err := to.Publish(ctx, event); err != nil {
		log.Printf("Failed to relay %s for ride %d: %v", event.Type, event.RideID, err)
	}
}
