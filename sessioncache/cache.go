// Package sessioncache keeps the current session of every table in memory so
// that all views of a table stay consistent after a mutation, without a list
// reload. Writes are last-writer-wins.
package sessioncache

import (
	"sync"

	"github.com/yeremiapane/venue-app/models"
)

// Listener receives the table and its new session (nil when removed).
type Listener func(tableUUID string, session *models.TableSession)

type Cache struct {
	mu        sync.RWMutex
	sessions  map[string]*models.TableSession
	listeners map[int]Listener
	nextID    int
}

func New() *Cache {
	return &Cache{
		sessions:  make(map[string]*models.TableSession),
		listeners: make(map[int]Listener),
	}
}

// UpdateSession stores session as the current session of tableUUID and
// notifies subscribers. A nil session clears the entry.
func (c *Cache) UpdateSession(tableUUID string, session *models.TableSession) {
	c.mu.Lock()
	if session == nil {
		delete(c.sessions, tableUUID)
	} else {
		c.sessions[tableUUID] = session
	}
	listeners := c.snapshotListenersLocked()
	c.mu.Unlock()

	for _, l := range listeners {
		l(tableUUID, session)
	}
}

func (c *Cache) Remove(tableUUID string) {
	c.UpdateSession(tableUUID, nil)
}

// Session returns the cached session of tableUUID, or nil.
func (c *Cache) Session(tableUUID string) *models.TableSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessions[tableUUID]
}

// Snapshot returns a copy of the table -> session map.
func (c *Cache) Snapshot() map[string]*models.TableSession {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*models.TableSession, len(c.sessions))
	for k, v := range c.sessions {
		out[k] = v
	}
	return out
}

// Load replaces the cache content from a table list, e.g. after the first fetch.
// Tables missing from the list are cleared.
func (c *Cache) Load(tables []models.Table) {
	listed := make(map[string]bool, len(tables))
	for _, t := range tables {
		listed[t.UUID] = true
	}

	c.mu.RLock()
	var gone []string
	for tableUUID := range c.sessions {
		if !listed[tableUUID] {
			gone = append(gone, tableUUID)
		}
	}
	c.mu.RUnlock()

	for _, tableUUID := range gone {
		c.UpdateSession(tableUUID, nil)
	}
	for _, t := range tables {
		c.UpdateSession(t.UUID, t.CurrentSession)
	}
}

// Subscribe registers l and returns a function that unregisters it.
func (c *Cache) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners, id)
		})
	}
}

func (c *Cache) snapshotListenersLocked() []Listener {
	out := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		out = append(out, l)
	}
	return out
}
