package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestIdempotencyStore_Key(t *testing.T) {
	s := NewIdempotencyStore(nil, 0)
	if got := s.key("reward", "abc-123"); got != "idem:reward:abc-123" {
		t.Fatalf("unexpected key: %s", got)
	}
	if s.ttl != 24*time.Hour {
		t.Fatalf("expected default ttl, got %s", s.ttl)
	}
}

func TestIdempotencyStore_ClosedClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	_ = client.Close()
	s := NewIdempotencyStore(client, time.Minute)

	if _, reserved, err := s.Reserve(context.Background(), "reward", "k", "v"); err == nil || reserved {
		t.Fatalf("expected reserve error on closed client, reserved=%v err=%v", reserved, err)
	}
	if err := s.Release(context.Background(), "reward", "k"); err == nil {
		t.Fatalf("expected release error on closed client")
	}
}

func TestConnect_RequiresAddress(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); err == nil {
		t.Fatalf("expected error for empty address")
	}
}
