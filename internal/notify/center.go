// Package notify keeps per-owner in-app notifications and fans changes out
// to subscribers.
package notify

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

type Notification struct {
	ID         string    `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Kind       Kind      `json:"type"`
	IsRead     bool      `json:"is_read"`
	ActionURL  string    `json:"action_url,omitempty"`
	ActionText string    `json:"action_text,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Listener receives the owner's notifications, newest first, after every change.
type Listener func(owner int64, items []Notification)

type Center struct {
	mu        sync.RWMutex
	items     map[int64][]Notification
	listeners map[int]Listener
	nextID    int
	now       func() time.Time
}

func NewCenter() *Center {
	return &Center{
		items:     make(map[int64][]Notification),
		listeners: make(map[int]Listener),
		now:       time.Now,
	}
}

// Add stores n for its owner as unread and returns it with ID and CreatedAt set.
func (c *Center) Add(n Notification) Notification {
	n.ID = uuid.NewString()
	n.IsRead = false
	if n.Kind == "" {
		n.Kind = KindInfo
	}

	c.mu.Lock()
	n.CreatedAt = c.now()
	c.items[n.OwnerID] = slices.Insert(c.items[n.OwnerID], 0, n)
	c.mu.Unlock()

	c.publish(n.OwnerID)
	return n
}

func (c *Center) List(owner int64) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot(owner)
}

func (c *Center) UnreadCount(owner int64) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	unread := 0
	for _, n := range c.items[owner] {
		if !n.IsRead {
			unread++
		}
	}
	return unread
}

func (c *Center) MarkRead(owner int64, id string) error {
	c.mu.Lock()
	i := c.index(owner, id)
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.items[owner][i].IsRead = true
	c.mu.Unlock()

	c.publish(owner)
	return nil
}

func (c *Center) MarkAllRead(owner int64) {
	c.mu.Lock()
	for i := range c.items[owner] {
		c.items[owner][i].IsRead = true
	}
	c.mu.Unlock()

	c.publish(owner)
}

func (c *Center) Remove(owner int64, id string) error {
	c.mu.Lock()
	i := c.index(owner, id)
	if i < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.items[owner] = slices.Delete(c.items[owner], i, i+1)
	c.mu.Unlock()

	c.publish(owner)
	return nil
}

func (c *Center) Clear(owner int64) {
	c.mu.Lock()
	delete(c.items, owner)
	c.mu.Unlock()

	c.publish(owner)
}

// Subscribe registers l and returns a function that removes it.
func (c *Center) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// listeners are called without the lock held so they may call back into c.
func (c *Center) publish(owner int64) {
	c.mu.RLock()
	items := c.snapshot(owner)
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.RUnlock()

	for _, l := range listeners {
		l(owner, items)
	}
}

func (c *Center) snapshot(owner int64) []Notification {
	return append([]Notification{}, c.items[owner]...)
}

func (c *Center) index(owner int64, id string) int {
	return slices.IndexFunc(c.items[owner], func(n Notification) bool { return n.ID == id })
}
