package cache

import (
	"time"

	"fundocs-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionEntry is what the gate needs to authorize a request without
// touching the database.
type SessionEntry struct {
	Session *entity.UserSession
	User    *entity.User
}

type SessionCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionCache(ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SessionCache{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *SessionCache) Save(sessionID string, entry *SessionEntry) {
	ttl := cache.DefaultExpiration
	// never outlive the session itself
	if entry.Session != nil {
		if left := time.Until(entry.Session.ExpiresAt); left <= 0 {
			return
		} else if left < c.ttl {
			ttl = left
		}
	}
	c.cache.Set(sessionID, entry, ttl)
}

func (c *SessionCache) Get(sessionID string) (*SessionEntry, bool) {
	if x, found := c.cache.Get(sessionID); found {
		return x.(*SessionEntry), true
	}
	return nil, false
}

func (c *SessionCache) Delete(sessionID string) {
	c.cache.Delete(sessionID)
}

// DeleteUser drops every cached session belonging to userID.
func (c *SessionCache) DeleteUser(userID string) {
	for key, item := range c.cache.Items() {
		if entry, ok := item.Object.(*SessionEntry); ok && entry.User != nil && entry.User.Id.String() == userID {
			c.cache.Delete(key)
		}
	}
}
