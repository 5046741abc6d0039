// Package interaction keeps a player's coin-lock and monster-capture state
// locally so views can render it before, and between, remote fetches.
package interaction

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Bus carries cache events between views of the same player.
type Bus interface {
	Publish(channel string, payload []byte)
	Subscribe(channel string) (<-chan []byte, func())
}

type document struct {
	LockedCoins      map[string]bool `json:"lockedCoins"`
	CapturedMonsters map[string]bool `json:"capturedMonsters"`
}

func emptyDocument() document {
	return document{LockedCoins: map[string]bool{}, CapturedMonsters: map[string]bool{}}
}

const (
	eventLocked   = "locked"
	eventCaptured = "captured"
	eventSync     = "sync"
)

// Event is what a cache broadcasts after every write.
type Event struct {
	View     string          `json:"view"`
	Player   string          `json:"player"`
	Kind     string          `json:"kind"`
	ID       string          `json:"id,omitempty"`
	Value    bool            `json:"value"`
	Locks    map[string]bool `json:"locks,omitempty"`
	Captures map[string]bool `json:"captures,omitempty"`
}

// Cache is one view's mirror of a player's interaction state. Several caches
// for the same player share a Storage and stay in step through the Bus; none
// of them is a write path to the ledger.
type Cache struct {
	player  string
	view    string
	storage Storage
	bus     Bus

	mu  sync.RWMutex
	doc document

	unsubscribe func()
	done        chan struct{}
}

// NewCache hydrates a cache from storage and starts listening for peer views.
// A failed or corrupt load leaves the cache empty.
func NewCache(ctx context.Context, playerID string, storage Storage, bus Bus) *Cache {
	c := &Cache{
		player:  playerID,
		view:    uuid.NewString(),
		storage: storage,
		bus:     bus,
		doc:     emptyDocument(),
		done:    make(chan struct{}),
	}
	c.doc = c.load(ctx)

	if bus != nil {
		events, unsubscribe := bus.Subscribe(playerID)
		c.unsubscribe = unsubscribe
		go c.listen(events)
	} else {
		close(c.done)
	}
	return c
}

func storageKey(playerID string) string {
	return "arquest:interaction:" + playerID
}

func (c *Cache) load(ctx context.Context) document {
	if c.storage == nil {
		return emptyDocument()
	}
	data, err := c.storage.Load(ctx, storageKey(c.player))
	if err != nil {
		log.Printf("interaction cache load failed for %s: %v", c.player, err)
		return emptyDocument()
	}
	if len(data) == 0 {
		return emptyDocument()
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("interaction cache corrupt for %s: %v", c.player, err)
		return emptyDocument()
	}
	if doc.LockedCoins == nil {
		doc.LockedCoins = map[string]bool{}
	}
	if doc.CapturedMonsters == nil {
		doc.CapturedMonsters = map[string]bool{}
	}
	return doc
}

// View identifies this cache instance in broadcast events.
func (c *Cache) View() string {
	return c.view
}

// Close stops listening for peer events.
func (c *Cache) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	<-c.done
}

// SetLocked records a coin's lock state after the ledger accepted the change.
func (c *Cache) SetLocked(ctx context.Context, id string, locked bool) {
	c.write(ctx, Event{Kind: eventLocked, ID: id, Value: locked})
}

// SetCaptured records a monster's capture state after the ledger accepted it.
func (c *Cache) SetCaptured(ctx context.Context, id string, captured bool) {
	c.write(ctx, Event{Kind: eventCaptured, ID: id, Value: captured})
}

// SyncFromRemoteState replaces both maps with the latest ledger snapshot. It is
// the only operation that drops entries.
func (c *Cache) SyncFromRemoteState(ctx context.Context, locks, captures map[string]bool) {
	c.write(ctx, Event{Kind: eventSync, Locks: cloneMap(locks), Captures: cloneMap(captures)})
}

func (c *Cache) IsCoinLocked(id string) bool {
	v, _ := c.CachedLock(id)
	return v
}

func (c *Cache) IsMonsterCaptured(id string) bool {
	v, _ := c.CachedCapture(id)
	return v
}

// CachedLock returns the cached lock state and whether one is recorded.
func (c *Cache) CachedLock(id string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.doc.LockedCoins[id]
	return v, ok
}

// CachedCapture returns the cached capture state and whether one is recorded.
func (c *Cache) CachedCapture(id string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.doc.CapturedMonsters[id]
	return v, ok
}

// Snapshot returns a copy of the cached state.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{Locks: cloneMap(c.doc.LockedCoins), Captures: cloneMap(c.doc.CapturedMonsters)}
}

func (c *Cache) write(ctx context.Context, ev Event) {
	ev.View = c.view
	ev.Player = c.player

	c.mu.Lock()
	c.apply(ev)
	data, err := json.Marshal(c.doc)
	c.mu.Unlock()
	if err != nil {
		log.Printf("interaction cache encode failed for %s: %v", c.player, err)
		return
	}

	if c.storage != nil {
		if err := c.storage.Save(ctx, storageKey(c.player), data); err != nil {
			log.Printf("interaction cache save failed for %s: %v", c.player, err)
		}
	}
	if c.bus != nil {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Printf("interaction cache event encode failed for %s: %v", c.player, err)
			return
		}
		c.bus.Publish(c.player, payload)
	}
}

// apply must be called with the write lock held.
func (c *Cache) apply(ev Event) {
	switch ev.Kind {
	case eventLocked:
		c.doc.LockedCoins[ev.ID] = ev.Value
	case eventCaptured:
		c.doc.CapturedMonsters[ev.ID] = ev.Value
	case eventSync:
		c.doc = document{LockedCoins: cloneMap(ev.Locks), CapturedMonsters: cloneMap(ev.Captures)}
	}
}

func (c *Cache) listen(events <-chan []byte) {
	defer close(c.done)
	for payload := range events {
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil || ev.Kind == "" {
			// not an event we understand; fall back to what storage holds
			doc := c.load(context.Background())
			c.mu.Lock()
			c.doc = doc
			c.mu.Unlock()
			continue
		}
		if ev.View == c.view {
			continue
		}
		c.mu.Lock()
		c.apply(ev)
		c.mu.Unlock()
	}
}

func cloneMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
