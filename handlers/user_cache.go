package handlers

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// UserCache handles caching of authenticated user lookups
type UserCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	localCache sync.Map // In-memory cache for frequently authenticated users
}

// cachedUser is the stored cache entry for a user
type cachedUser struct {
	User     *User     `json:"user"`
	CachedAt time.Time `json:"cachedAt"`
}

// UserCacheConfig holds cache configuration
type UserCacheConfig struct {
	RedisAddr  string
	RedisPass  string
	RedisDB    int
	KeyPrefix  string
	DefaultTTL time.Duration
}

// DefaultUserCacheConfig returns default configuration
func DefaultUserCacheConfig() UserCacheConfig {
	return UserCacheConfig{
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisPass:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:    0,
		KeyPrefix:  "ch:user:",
		DefaultTTL: 5 * time.Minute,
	}
}

// Global user cache instance
var (
	globalUserCache *UserCache
	userCacheOnce   sync.Once
)

// InitUserCache creates the global user cache with the given configuration
func InitUserCache(config UserCacheConfig) *UserCache {
	userCacheOnce.Do(func() {
		globalUserCache = NewUserCache(config)
	})
	return globalUserCache
}

// GetUserCache returns the global user cache instance
func GetUserCache() *UserCache {
	userCacheOnce.Do(func() {
		globalUserCache = NewUserCache(DefaultUserCacheConfig())
	})
	return globalUserCache
}

// NewUserCache creates a new user cache. Without a Redis address the cache
// runs on local memory only.
func NewUserCache(config UserCacheConfig) *UserCache {
	cache := &UserCache{
		prefix:     config.KeyPrefix,
		defaultTTL: config.DefaultTTL,
	}

	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPass,
			DB:       config.RedisDB,
		})

		// Test connection
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			LogWarn("User cache: Redis connection failed, using local cache only", "error", err)
		}
		cache.client = client
	}

	return cache
}

// getCacheKey generates a cache key for a username
func (c *UserCache) getCacheKey(username string) string {
	return c.prefix + username
}

// Get retrieves a user from cache
func (c *UserCache) Get(username string) (*User, bool) {
	// Check local cache first
	if cached, ok := c.localCache.Load(username); ok {
		entry := cached.(*cachedUser)
		if time.Since(entry.CachedAt) < c.defaultTTL {
			return entry.User, true
		}
		c.localCache.Delete(username)
	}

	// Try Redis
	if c.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		key := c.getCacheKey(username)
		data, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			var entry cachedUser
			if err := json.Unmarshal(data, &entry); err == nil && entry.User != nil {
				// Store in local cache
				c.localCache.Store(username, &entry)
				return entry.User, true
			}
		}
	}

	return nil, false
}

// Set stores a user in cache
func (c *UserCache) Set(username string, user *User) error {
	entry := &cachedUser{User: user, CachedAt: time.Now()}

	// Store in local cache
	c.localCache.Store(username, entry)

	// Store in Redis
	if c.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		key := c.getCacheKey(username)
		return c.client.Set(ctx, key, data, c.defaultTTL).Err()
	}

	return nil
}

// Invalidate removes a user from cache, for example after a role or
// password change
func (c *UserCache) Invalidate(username string) {
	c.localCache.Delete(username)

	if c.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		c.client.Del(ctx, c.getCacheKey(username))
	}
}

// Close closes the cache connection
func (c *UserCache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
