package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"backend-arquest/internal/stream"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type failingStorage struct {
	data    []byte
	loadErr error
	saveErr error
	saves   int
}

func (s *failingStorage) Load(context.Context, string) ([]byte, error) {
	return s.data, s.loadErr
}

func (s *failingStorage) Save(context.Context, string, []byte) error {
	s.saves++
	return s.saveErr
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestCacheUnknownIsFalse(t *testing.T) {
	c := NewCache(context.Background(), "p1", NewMemoryStorage(), nil)
	defer c.Close()

	if c.IsCoinLocked("c1") {
		t.Fatalf("expected unknown coin to be unlocked")
	}
	if c.IsMonsterCaptured("m1") {
		t.Fatalf("expected unknown monster to be uncaptured")
	}
	if _, ok := c.CachedLock("c1"); ok {
		t.Fatalf("expected no cached value")
	}
}

func TestCacheSyncOverridesOptimisticWrite(t *testing.T) {
	ctx := context.Background()
	c := NewCache(ctx, "p1", NewMemoryStorage(), nil)
	defer c.Close()

	c.SetLocked(ctx, "c1", true)
	c.SetCaptured(ctx, "m1", true)
	if !c.IsCoinLocked("c1") || !c.IsMonsterCaptured("m1") {
		t.Fatalf("expected optimistic writes to be visible")
	}

	c.SyncFromRemoteState(ctx, map[string]bool{"c1": false}, map[string]bool{})
	if c.IsCoinLocked("c1") {
		t.Fatalf("expected remote sync to win over optimistic lock")
	}
	if _, ok := c.CachedCapture("m1"); ok {
		t.Fatalf("expected sync to drop captures absent from the snapshot")
	}
}

func TestCachePersistsAcrossReload(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	first := NewCache(ctx, "p1", storage, nil)
	first.SetLocked(ctx, "c1", true)
	first.SetCaptured(ctx, "m2", true)
	first.Close()

	second := NewCache(ctx, "p1", storage, nil)
	defer second.Close()
	if !second.IsCoinLocked("c1") || !second.IsMonsterCaptured("m2") {
		t.Fatalf("expected reload to restore cached state, got %+v", second.Snapshot())
	}

	other := NewCache(ctx, "p2", storage, nil)
	defer other.Close()
	if other.IsCoinLocked("c1") {
		t.Fatalf("expected caches to be scoped per player")
	}
}

func TestCacheCorruptStorageDegradesToEmpty(t *testing.T) {
	storage := &failingStorage{data: []byte("{not json")}
	c := NewCache(context.Background(), "p1", storage, nil)
	defer c.Close()

	snap := c.Snapshot()
	if len(snap.Locks) != 0 || len(snap.Captures) != 0 {
		t.Fatalf("expected empty state, got %+v", snap)
	}
}

func TestCacheLoadErrorDegradesToEmpty(t *testing.T) {
	storage := &failingStorage{loadErr: errors.New("boom")}
	c := NewCache(context.Background(), "p1", storage, nil)
	defer c.Close()

	if c.IsCoinLocked("c1") {
		t.Fatalf("expected empty state")
	}
}

func TestCacheSaveErrorIsSwallowed(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{saveErr: errors.New("disk full")}
	c := NewCache(ctx, "p1", storage, nil)
	defer c.Close()

	c.SetLocked(ctx, "c1", true)
	if storage.saves != 1 {
		t.Fatalf("expected one save attempt, got %d", storage.saves)
	}
	if !c.IsCoinLocked("c1") {
		t.Fatalf("expected in-memory state to keep the write")
	}
}

func TestCachePeersApplyBroadcasts(t *testing.T) {
	ctx := context.Background()
	hub := stream.NewHub(nil)
	defer hub.Close()
	storage := NewMemoryStorage()

	a := NewCache(ctx, "p1", storage, hub)
	defer a.Close()
	b := NewCache(ctx, "p1", storage, hub)
	defer b.Close()

	a.SetLocked(ctx, "c1", true)
	waitFor(t, func() bool { return b.IsCoinLocked("c1") })

	b.SetCaptured(ctx, "m1", true)
	waitFor(t, func() bool { return a.IsMonsterCaptured("m1") })

	a.SyncFromRemoteState(ctx, map[string]bool{}, map[string]bool{"m1": false})
	waitFor(t, func() bool {
		_, locked := b.CachedLock("c1")
		return !locked && !b.IsMonsterCaptured("m1")
	})
}

func TestCacheIgnoresOwnEvents(t *testing.T) {
	ctx := context.Background()
	hub := stream.NewHub(nil)
	defer hub.Close()

	c := NewCache(ctx, "p1", NewMemoryStorage(), hub)
	defer c.Close()

	c.SetLocked(ctx, "c1", true)
	// a stale echo of our own earlier write must not undo a later one
	payload, _ := json.Marshal(Event{View: c.View(), Player: "p1", Kind: eventLocked, ID: "c1", Value: false})
	hub.Publish("p1", payload)

	time.Sleep(20 * time.Millisecond)
	if !c.IsCoinLocked("c1") {
		t.Fatalf("expected own event to be ignored")
	}
}

func TestCacheUndecodableEventReloadsStorage(t *testing.T) {
	ctx := context.Background()
	hub := stream.NewHub(nil)
	defer hub.Close()
	storage := NewMemoryStorage()

	c := NewCache(ctx, "p1", storage, hub)
	defer c.Close()

	writer := NewCache(ctx, "p1", storage, nil)
	writer.SetLocked(ctx, "c9", true)
	writer.Close()

	hub.Publish("p1", []byte("garbage"))
	waitFor(t, func() bool { return c.IsCoinLocked("c9") })
}

func TestRedisStorageRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	storage := NewRedisStorage(client)
	ctx := context.Background()

	data, err := storage.Load(ctx, "missing")
	if err != nil || data != nil {
		t.Fatalf("expected nil data for missing key, got %q %v", data, err)
	}

	c := NewCache(ctx, "p1", storage, nil)
	c.SetLocked(ctx, "c1", true)
	c.Close()

	raw, err := mr.Get(storageKey("p1"))
	if err != nil {
		t.Fatalf("expected document in redis: %v", err)
	}
	var doc document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !doc.LockedCoins["c1"] {
		t.Fatalf("expected c1 locked in stored document, got %s", raw)
	}

	reloaded := NewCache(ctx, "p1", storage, nil)
	defer reloaded.Close()
	if !reloaded.IsCoinLocked("c1") {
		t.Fatalf("expected reload from redis")
	}
}

func TestRedisStorageUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	ctx := context.Background()
	c := NewCache(ctx, "p1", NewRedisStorage(client), nil)
	defer c.Close()
	c.SetLocked(ctx, "c1", true)
	if !c.IsCoinLocked("c1") {
		t.Fatalf("expected cache to keep working without storage")
	}
}
