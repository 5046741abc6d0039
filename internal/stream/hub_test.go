package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("player-1")
	defer hub.Unregister(client)

	payload := []byte("hello")
	hub.Broadcast("player-1", payload)

	select {
	case msg := <-client.Send:
		if string(msg) != "hello" {
			t.Fatalf("unexpected message")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("timeout waiting for message")
	}
}

func TestHubBroadcastIsolatesChannels(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Register("player-a")
	b := hub.Register("player-b")
	defer hub.Unregister(a)
	defer hub.Unregister(b)

	hub.Broadcast("player-a", []byte("only-a"))

	select {
	case <-b.Send:
		t.Fatalf("message leaked to another channel")
	default:
	}
	if msg := <-a.Send; string(msg) != "only-a" {
		t.Fatalf("unexpected message")
	}
}

func TestHubHelpers(t *testing.T) {
	ch := redisChannel("abc")
	if ch == "" {
		t.Fatalf("expected channel")
	}
	if channelFromRedis(ch) != "abc" {
		t.Fatalf("unexpected channel")
	}
	if channelFromRedis("bad") != "" {
		t.Fatalf("expected empty channel")
	}
	if channelFromRedis("tracking:abc:broadcast") != "" {
		t.Fatalf("expected foreign prefix to be rejected")
	}
}

func TestUnregisterCloses(t *testing.T) {
	hub := NewHub(nil)
	client := hub.Register("player-2")
	hub.Unregister(client)
	_, ok := <-client.Send
	if ok {
		t.Fatalf("expected channel closed")
	}
	// a second unregister is harmless
	hub.Unregister(client)
	hub.Broadcast("player-2", []byte("after"))
}

func TestHubSubscribe(t *testing.T) {
	hub := NewHub(nil)
	ch, cancel := hub.Subscribe("player-3")
	hub.Publish("player-3", []byte("evt"))
	if msg := <-ch; string(msg) != "evt" {
		t.Fatalf("unexpected message")
	}
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed subscription")
	}
}

func TestHubRedisRelayAcrossHubs(t *testing.T) {
	s := miniredis.RunT(t)
	clientA := redis.NewClient(&redis.Options{Addr: s.Addr()})
	clientB := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer clientA.Close()
	defer clientB.Close()

	hubA := NewHub(clientA)
	hubB := NewHub(clientB)
	defer hubA.Close()
	defer hubB.Close()
	waitReady(t, hubA)
	waitReady(t, hubB)

	local := hubA.Register("player-redis")
	remote := hubB.Register("player-redis")
	defer hubA.Unregister(local)
	defer hubB.Unregister(remote)

	hubA.Broadcast("player-redis", []byte("ping"))

	for name, c := range map[string]*Client{"local": local, "remote": remote} {
		select {
		case msg := <-c.Send:
			if string(msg) != "ping" {
				t.Fatalf("%s: unexpected message %q", name, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s: timeout waiting for broadcast", name)
		}
	}

	// the origin hub does not deliver its own relayed copy a second time
	select {
	case msg := <-local.Send:
		t.Fatalf("duplicate delivery: %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRedisIgnoresGarbage(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub(client)
	defer hub.Close()
	waitReady(t, hub)

	c := hub.Register("player-x")
	defer hub.Unregister(c)

	if err := client.Publish(context.Background(), redisChannel("player-x"), "not-json").Err(); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected delivery: %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRedisPublishError(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	server.Close()
	defer client.Close()

	hub := NewHub(client)
	defer hub.Close()
	clientNode := hub.Register("player-bad")
	defer hub.Unregister(clientNode)

	hub.Broadcast("player-bad", []byte("ping"))
	if msg := <-clientNode.Send; string(msg) != "ping" {
		t.Fatalf("local delivery must not depend on redis")
	}
}

func waitReady(t *testing.T, h *Hub) {
	t.Helper()
	select {
	case <-h.ready:
	case <-time.After(2 * time.Second):
		t.Fatalf("hub never subscribed")
	}
}
