package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	MemberCreated     = "member.created"
	MemberDeleted     = "member.deleted"
	MemberBulkDeleted = "member.bulk_deleted"
	PaymentRecorded   = "payment.recorded"
	UserLogin         = "user.login"
)

// Event is an audit record describing a state change
type Event struct {
	Type      string
	ActorID   string
	SubjectID string
	Data      map[string]any
}

// Publisher delivers audit events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher discards every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// streamAdder is the part of *redis.Client used for publishing
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisPublisher appends events to a Redis stream with XADD
type RedisPublisher struct {
	client streamAdder
	stream string
	now    func() time.Time
}

// NewRedisPublisher creates a publisher writing to the given stream
func NewRedisPublisher(client streamAdder, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream, now: time.Now}
}

// Publish adds the event to the stream. Nested data is flattened into "data.<key>" fields.
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	values := map[string]any{
		"type":        event.Type,
		"actor_id":    event.ActorID,
		"subject_id":  event.SubjectID,
		"occurred_at": p.now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range event.Data {
		values["data."+k] = fmt.Sprint(v)
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{Stream: p.stream, Values: values}).Err(); err != nil {
		return fmt.Errorf("failed to XADD to stream %s: %w", p.stream, err)
	}
	return nil
}

// NewRedisClient connects to Redis and verifies the connection with PING
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// Emit publishes best-effort: failures are logged and never returned
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish audit event", "type", event.Type, "error", err)
	}
}
