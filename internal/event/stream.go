package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const alertStreamPrefix = "teamlens:alerts:"

// StreamSink publishes alerts to a per-team Redis Stream so reporting
// front-ends can consume them outside the core.
type StreamSink struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewStreamSink connects to Redis and returns a ready sink.
func NewStreamSink(redisURL string, logger *zap.Logger) (*StreamSink, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &StreamSink{rdb: rdb, logger: logger}, nil
}

// Emit implements Sink by appending the alert to the team's stream.
func (s *StreamSink) Emit(ctx context.Context, a Alert) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}

	stream := alertStreamPrefix + a.TeamID
	_, err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish alert to %s: %w", stream, err)
	}

	s.logger.Debug("alert published",
		zap.String("team", a.TeamID),
		zap.String("severity", string(a.Severity)),
		zap.String("metric", a.Metric))
	return nil
}

// Subscribe listens for alerts on a team's stream. Cancel the context to
// stop; the returned channel closes afterwards.
func (s *StreamSink) Subscribe(ctx context.Context, teamID string) <-chan Alert {
	ch := make(chan Alert, 16)
	stream := alertStreamPrefix + teamID

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			results, err := s.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{stream, lastID},
				Count:   10,
				Block:   time.Second * 2,
			}).Result()
			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					return
				}
				continue
			}

			for _, r := range results {
				for _, msg := range r.Messages {
					lastID = msg.ID
					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var a Alert
					if json.Unmarshal([]byte(data), &a) == nil {
						ch <- a
					}
				}
			}
		}
	}()

	return ch
}

// Close shuts down the Redis connection.
func (s *StreamSink) Close() error {
	return s.rdb.Close()
}
