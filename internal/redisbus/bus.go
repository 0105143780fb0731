package redisbus

import (
	"context"
	"encoding/json"
	"fmt"

	"hilo-casino/internal/resultpush"

	"github.com/redis/go-redis/v9"
)

const (
	KeyRoundsChannel = "hilo:rounds:%s"
	KeyRecentRounds  = "hilo:recent:%s"
)

// Bus fans settled rounds out to Redis subscribers and keeps a short
// per-room list of the newest results.
type Bus struct {
	client      *redis.Client
	recentLimit int64
}

func New(ctx context.Context, addr, password string, db, recentLimit int) (*Bus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewWithClient(client, recentLimit), nil
}

func NewWithClient(client *redis.Client, recentLimit int) *Bus {
	if recentLimit <= 0 {
		recentLimit = 100
	}
	return &Bus{client: client, recentLimit: int64(recentLimit)}
}

func (b *Bus) Close() error {
	return b.client.Close()
}

func (b *Bus) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Bus) Name() string { return "redis" }

func (b *Bus) Deliver(ctx context.Context, rec resultpush.RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal round: %w", err)
	}
	recentKey := fmt.Sprintf(KeyRecentRounds, rec.RoomID)
	pipe := b.client.TxPipeline()
	pipe.LPush(ctx, recentKey, data)
	pipe.LTrim(ctx, recentKey, 0, b.recentLimit-1)
	pipe.Publish(ctx, fmt.Sprintf(KeyRoundsChannel, rec.RoomID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push round: %w", err)
	}
	return nil
}

// Recent returns up to limit rounds for roomID, newest first.
func (b *Bus) Recent(ctx context.Context, roomID string, limit, offset int) ([]resultpush.RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	start := int64(offset)
	raw, err := b.client.LRange(ctx, fmt.Sprintf(KeyRecentRounds, roomID), start, start+int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent rounds: %w", err)
	}
	out := make([]resultpush.RoundRecord, 0, len(raw))
	for _, item := range raw {
		var rec resultpush.RoundRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Subscribe streams rounds published for roomID until ctx ends.
func (b *Bus) Subscribe(ctx context.Context, roomID string) (<-chan resultpush.RoundRecord, error) {
	sub := b.client.Subscribe(ctx, fmt.Sprintf(KeyRoundsChannel, roomID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe rounds: %w", err)
	}
	out := make(chan resultpush.RoundRecord, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var rec resultpush.RoundRecord
				if err := json.Unmarshal([]byte(msg.Payload), &rec); err != nil {
					continue
				}
				select {
				case out <- rec:
				default:
				}
			}
		}
	}()
	return out, nil
}
