package catalog

import (
	"sync"
	"time"
)

// État d'une entrée au moment du lookup.
type EntryState int

const (
	StateMiss EntryState = iota
	StateFresh
	StateStale
)

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

type inflightCall struct {
	done chan struct{}
	val  interface{}
	err  error
}

// MemCache est la couche de mémoïsation process-local de la couche catalogue :
// TTL fraîche/périmée, dé-duplication des fetchs en vol pour un même
// fingerprint, éviction par capacité (la plus ancienne insertion d'abord).
// Le cache n'est pas partagé entre instances : deux instances peuvent servir
// des fraîcheurs différentes pour la même clé, c'est assumé.
type MemCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	order    []string // ordre d'insertion, pour l'éviction
	inflight map[string]*inflightCall

	fresh      time.Duration
	stale      time.Duration
	maxEntries int
}

func NewMemCache(fresh, stale time.Duration, maxEntries int) *MemCache {
	return &MemCache{
		entries:    make(map[string]*cacheEntry),
		inflight:   make(map[string]*inflightCall),
		fresh:      fresh,
		stale:      stale,
		maxEntries: maxEntries,
	}
}

// Get retourne la valeur et son état. Une entrée plus vieille que le seuil
// périmé est un miss et est retirée.
func (c *MemCache) Get(key string) (interface{}, EntryState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, StateMiss
	}

	age := time.Since(entry.storedAt)
	switch {
	case age < c.fresh:
		return entry.value, StateFresh
	case age < c.stale:
		return entry.value, StateStale
	default:
		c.removeLocked(key)
		return nil, StateMiss
	}
}

// Set insère ou rafraîchit une entrée. Une ré-insertion repart en queue de
// l'ordre d'éviction.
func (c *MemCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeFromOrderLocked(key)
	}
	c.entries[key] = &cacheEntry{value: value, storedAt: time.Now()}
	c.order = append(c.order, key)

	for len(c.entries) > c.maxEntries {
		oldest := c.order[0]
		c.removeLocked(oldest)
	}
}

// Do dé-duplique les fetchs concurrents : si un fetch est déjà en vol pour
// cette clé, l'appelant attend son résultat au lieu de requêter le store.
func (c *MemCache) Do(key string, fetch func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-call.done
		return call.val, call.err
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.val, call.err = fetch()

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return call.val, call.err
}

// DeleteFunc retire toutes les entrées dont la clé satisfait le prédicat
// (invalidation après écriture vendeur).
func (c *MemCache) DeleteFunc(match func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if match(key) {
			c.removeLocked(key)
		}
	}
}

func (c *MemCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemCache) removeLocked(key string) {
	delete(c.entries, key)
	c.removeFromOrderLocked(key)
}

func (c *MemCache) removeFromOrderLocked(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
