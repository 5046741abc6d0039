package stream

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix = "interaction:"
	channelSuffix = ":broadcast"
)

// Hub fans payloads out to every client registered on a channel. With Redis
// configured, broadcasts are relayed to hubs in other processes as well.
type Hub struct {
	redis   *redis.Client
	origin  string
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	ready  chan struct{}
	cancel context.CancelFunc
}

type Client struct {
	Channel string
	Send    chan []byte
}

type envelope struct {
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		redis:   redisClient,
		origin:  uuid.NewString(),
		clients: map[string]map[*Client]struct{}{},
		ready:   make(chan struct{}),
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go h.subscribeRedis(ctx)
	} else {
		close(h.ready)
	}
	return h
}

// Close stops the Redis relay. Registered clients are left to their owners.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Hub) Register(channel string) *Client {
	client := &Client{
		Channel: channel,
		Send:    make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[channel] == nil {
		h.clients[channel] = map[*Client]struct{}{}
	}
	h.clients[channel][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channelClients, ok := h.clients[client.Channel]
	if !ok {
		return
	}
	if _, ok := channelClients[client]; !ok {
		return
	}
	delete(channelClients, client)
	if len(channelClients) == 0 {
		delete(h.clients, client.Channel)
	}
	close(client.Send)
}

// Broadcast delivers payload to local clients and publishes it for other
// processes. Slow clients miss messages rather than blocking the sender.
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.deliver(channel, payload)

	if h.redis != nil {
		msg, err := json.Marshal(envelope{Origin: h.origin, Payload: payload})
		if err != nil {
			log.Printf("hub envelope error: %v", err)
			return
		}
		if err := h.redis.Publish(context.Background(), redisChannel(channel), msg).Err(); err != nil {
			log.Printf("redis publish error: %v", err)
		}
	}
}

// Subscribe registers a client and hands back its receive side plus a cancel
// function, so the hub can serve as a plain publish/subscribe bus.
func (h *Hub) Subscribe(channel string) (<-chan []byte, func()) {
	client := h.Register(channel)
	return client.Send, func() { h.Unregister(client) }
}

func (h *Hub) Publish(channel string, payload []byte) {
	h.Broadcast(channel, payload)
}

func (h *Hub) deliver(channel string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[channel] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.redis.PSubscribe(ctx, channelPrefix+"*"+channelSuffix)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("redis subscribe error: %v", err)
		close(h.ready)
		return
	}
	close(h.ready)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("redis relay decode error: %v", err)
				continue
			}
			if env.Origin == h.origin {
				continue
			}
			h.deliver(channelFromRedis(msg.Channel), env.Payload)
		}
	}
}

func redisChannel(channel string) string {
	return channelPrefix + channel + channelSuffix
}

func channelFromRedis(ch string) string {
	// interaction:{channel}:broadcast
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
