package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/loanticker/internal/domain"
)

func TestSnapshotStore_LoadMissing(t *testing.T) {
	client, _ := newTestRedisClient(t)
	defer client.Close()

	store := NewSnapshotStore(client, "loanticker:")
	if _, err := store.Load(context.Background(), "thbLoans"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	store := NewSnapshotStore(client, "loanticker:")
	ctx := context.Background()

	if err := store.Save(ctx, "thbLoans", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := mr.Get("loanticker:thbLoans")
	if err != nil || raw != `[{"id":1}]` {
		t.Fatalf("expected prefixed key, got %q err=%v", raw, err)
	}
	if ttl := mr.TTL("loanticker:thbLoans"); ttl != 0 {
		t.Fatalf("expected no expiry, got %v", ttl)
	}

	got, err := store.Load(ctx, "thbLoans")
	if err != nil || string(got) != `[{"id":1}]` {
		t.Fatalf("unexpected load result %q err=%v", got, err)
	}
}

func TestSnapshotStore_PingFailsWhenServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	store := NewSnapshotStore(client, "")
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	mr.Close()
	if err := store.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error after server shutdown")
	}
}
