// Package cache stores completion responses so identical prompts are not
// re-sent to the backend. Keys are derived from provider, model, and the
// exact prompt bytes, which keeps cached replays idempotent.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key for a completion call
func Key(provider, model, system, user string) string {
	hash := sha256.Sum256([]byte(provider + "\x00" + model + "\x00" + system + "\x00" + user))
	return "lexanno:v1:" + hex.EncodeToString(hash[:])
}
