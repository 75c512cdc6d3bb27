package store

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

type activationEntry struct {
	code      string
	expiresAt time.Time
}

// ActivationCache holds short-lived email verification codes in memory.
// A janitor goroutine drops expired entries once a minute.
type ActivationCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]activationEntry
}

func NewActivationCache() *ActivationCache {
	c := &ActivationCache{
		entries: make(map[uuid.UUID]activationEntry),
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		for {
			<-ticker.C
			c.mu.Lock()
			for k, v := range c.entries {
				if time.Now().After(v.expiresAt) {
					delete(c.entries, k)
				}
			}
			c.mu.Unlock()
		}
	}()
	return c
}

// Set issues a fresh 6-digit code for the user, replacing any previous
// one, and returns it.
func (c *ActivationCache) Set(userID uuid.UUID, ttl time.Duration) string {
	code := fmt.Sprintf("%06d", rand.Intn(1000000))
	c.mu.Lock()
	c.entries[userID] = activationEntry{
		code:      code,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
	return code
}

// Check reports whether code matches the live entry for the user and
// consumes the entry on success.
func (c *ActivationCache) Check(userID uuid.UUID, code string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[userID]
	if !ok || time.Now().After(e.expiresAt) || e.code != code {
		return false
	}
	delete(c.entries, userID)
	return true
}
