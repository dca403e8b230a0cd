// Package cache keeps synthesized audio lookups in Redis so identical text is
// not sent to the TTS engine twice.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "tts"

type ttsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTTSCache creates a Redis-backed cache mapping (language, text) to an audio filename
func NewTTSCache(client *redis.Client, ttl time.Duration) *ttsCache {
	return &ttsCache{
		client: client,
		ttl:    ttl,
	}
}

// Key builds the cache key for a text in a language.
// Text is trimmed and lowercased before hashing.
func Key(language, text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, language, hex.EncodeToString(sum[:]))
}

// Get returns the cached filename, or false if the key is absent
func (c *ttsCache) Get(ctx context.Context, key string) (string, bool, error) {
	filename, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read tts cache: %w", err)
	}
	return filename, true, nil
}

// Set stores a filename under key with the configured TTL
func (c *ttsCache) Set(ctx context.Context, key, filename string) error {
	if err := c.client.Set(ctx, key, filename, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write tts cache: %w", err)
	}
	return nil
}

// Delete removes a key
func (c *ttsCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete tts cache entry: %w", err)
	}
	return nil
}
