package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/vovakirdan/chatroomai/internal/core"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Log implements core.MessageLog with one Redis list per room.
type Log struct {
	client *goredis.Client
	prefix string
}

var _ core.MessageLog = (*Log)(nil)

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Log, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Log{client: rdb, prefix: opts.Prefix}, nil
}

func (l *Log) key(room string) string {
	return l.prefix + "room:" + room + ":log"
}

func (l *Log) Append(ctx context.Context, room string, entry core.LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal log entry: %w", err)
	}
	if err := l.client.RPush(ctx, l.key(room), data).Err(); err != nil {
		return fmt.Errorf("rpush log entry: %w", err)
	}
	return nil
}

func (l *Log) Len(ctx context.Context, room string) (int, error) {
	n, err := l.client.LLen(ctx, l.key(room)).Result()
	if err != nil {
		return 0, fmt.Errorf("llen room log: %w", err)
	}
	return int(n), nil
}

func (l *Log) Tail(ctx context.Context, room string, k int) ([]core.LogEntry, error) {
	entries := make([]core.LogEntry, 0, max(k, 0))
	if k <= 0 {
		return entries, nil
	}

	raw, err := l.client.LRange(ctx, l.key(room), int64(-k), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange room log: %w", err)
	}
	for _, item := range raw {
		var e core.LogEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *Log) Clear(ctx context.Context, room string) error {
	if err := l.client.Del(ctx, l.key(room)).Err(); err != nil {
		return fmt.Errorf("clear room log: %w", err)
	}
	return nil
}

// Drop forgets the room. An empty list does not exist in Redis, so it is the same as Clear.
func (l *Log) Drop(ctx context.Context, room string) error {
	return l.Clear(ctx, room)
}

func (l *Log) Close() error {
	return l.client.Close()
}
