// Package pubsub bridges chat fan-out across service instances through Redis.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"rental-market/internal/models"
)

const channelPrefix = "chat:room:"

// Deliverer hands a message to locally connected subscribers.
type Deliverer interface {
	Deliver(msg models.Message) int
}

// RedisRelay publishes persisted messages on a per-room channel and relays
// everything it receives to the local hub, so every instance reaches its own sockets.
type RedisRelay struct {
	client *redis.Client
	local  Deliverer
	logger *zap.Logger
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func NewRedisRelay(client *redis.Client, local Deliverer, logger *zap.Logger) *RedisRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRelay{client: client, local: local, logger: logger}
}

// RoomChannel names the Redis channel for roomID.
func RoomChannel(roomID int) string {
	return channelPrefix + strconv.Itoa(roomID)
}

// Publish sends msg to every instance, this one included.
func (r *RedisRelay) Publish(ctx context.Context, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, RoomChannel(msg.RoomID), payload).Err(); err != nil {
		r.logger.Warn("redis publish failed", zap.Int("room_id", msg.RoomID), zap.Error(err))
		return err
	}
	return nil
}

// Run relays room channel traffic to the local hub until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(m.Channel, m.Payload)
		}
	}
}

func (r *RedisRelay) handle(channel, payload string) {
	msg, err := decodeMessage(channel, payload)
	if err != nil {
		r.logger.Warn("dropping relay payload", zap.String("channel", channel), zap.Error(err))
		return
	}
	r.local.Deliver(msg)
}

func decodeMessage(channel, payload string) (models.Message, error) {
	roomID, err := strconv.Atoi(strings.TrimPrefix(channel, channelPrefix))
	if err != nil {
		return models.Message{}, fmt.Errorf("bad channel %q", channel)
	}
	var msg models.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return models.Message{}, err
	}
	if msg.RoomID != roomID {
		return models.Message{}, fmt.Errorf("room mismatch: channel %d, message %d", roomID, msg.RoomID)
	}
	return msg, nil
}
