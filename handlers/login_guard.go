package handlers

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginGuardConfig holds login throttling settings
type LoginGuardConfig struct {
	Enabled        bool
	MaxAttempts    int           // per-user attempts inside the window
	WindowDuration time.Duration // attempt counting window
	LockDuration   time.Duration // user lock time after too many failures
	IPMaxAttempts  int
	IPLockDuration time.Duration
	RedisAddr      string
	RedisPass      string
}

// guardEntry represents a cached attempt count
type guardEntry struct {
	Count     int
	ExpiresAt time.Time
}

// LoginGuard tracks failed login attempts and locks abusive users and addresses
type LoginGuard struct {
	redis        *redis.Client
	config       LoginGuardConfig
	localCache   sync.Map // fallback when Redis is unavailable
	keyPrefix    string
	redisEnabled bool
}

// Singleton instance
var (
	loginGuard     *LoginGuard
	loginGuardOnce sync.Once
)

// GetLoginGuard returns the singleton instance
func GetLoginGuard() *LoginGuard {
	return loginGuard
}

// DefaultLoginGuardConfig returns the default configuration
func DefaultLoginGuardConfig() LoginGuardConfig {
	return LoginGuardConfig{
		Enabled:        true,
		MaxAttempts:    5,
		WindowDuration: 5 * time.Minute,
		LockDuration:   15 * time.Minute,
		IPMaxAttempts:  20,
		IPLockDuration: 30 * time.Minute,
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
	}
}

// InitLoginGuard initializes the login guard
func InitLoginGuard(config LoginGuardConfig) *LoginGuard {
	loginGuardOnce.Do(func() {
		guard := &LoginGuard{
			config:    config,
			keyPrefix: "ch:guard:",
		}

		if config.RedisAddr != "" {
			client := redis.NewClient(&redis.Options{
				Addr:     config.RedisAddr,
				Password: config.RedisPass,
				DB:       0,
			})

			// Test connection
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				LogWarn("LoginGuard: Redis connection failed, using local cache only", "error", err)
			} else {
				guard.redisEnabled = true
				LogInfo("LoginGuard: Redis connected successfully")
			}
			guard.redis = client
		}

		loginGuard = guard

		// Start local cache cleanup goroutine
		go guard.cleanupLocalCache()
	})
	return loginGuard
}

// cleanupLocalCache periodically cleans up expired entries
func (g *LoginGuard) cleanupLocalCache() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		g.localCache.Range(func(key, value interface{}) bool {
			if entry, ok := value.(guardEntry); ok {
				if now.After(entry.ExpiresAt) {
					g.localCache.Delete(key)
				}
			}
			return true
		})
	}
}

// CheckAttempt checks whether a login attempt is allowed
// Returns: (allowed bool, reason string, remainingAttempts int)
func (g *LoginGuard) CheckAttempt(ctx context.Context, ip, username string) (bool, string, int) {
	if !g.config.Enabled {
		return true, "", g.config.MaxAttempts
	}

	if locked, until := g.isLocked(ctx, "locked:ip:"+ip); locked {
		return false, fmt.Sprintf("Too many login attempts. Locked until %s", until.Format("15:04:05")), 0
	}

	if username != "" {
		if locked, until := g.isLocked(ctx, "locked:user:"+username); locked {
			return false, fmt.Sprintf("Account locked until %s", until.Format("15:04:05")), 0
		}
	}

	ipAttempts := g.getAttemptCount(ctx, "ip:"+ip)
	if ipAttempts >= g.config.IPMaxAttempts {
		g.lock(ctx, "locked:ip:"+ip, g.config.IPLockDuration)
		return false, "Too many login attempts from this address", 0
	}

	if username != "" {
		userAttempts := g.getAttemptCount(ctx, "user:"+username)
		if userAttempts >= g.config.MaxAttempts {
			g.lock(ctx, "locked:user:"+username, g.config.LockDuration)
			return false, "Account locked after too many failed logins", 0
		}
		return true, "", g.config.MaxAttempts - userAttempts
	}

	return true, "", g.config.MaxAttempts - ipAttempts
}

// RecordFailedAttempt records a failed login attempt
func (g *LoginGuard) RecordFailedAttempt(ctx context.Context, ip, username string) {
	if !g.config.Enabled {
		return
	}

	g.incrementAttempt(ctx, "ip:"+ip, g.config.WindowDuration)

	if username != "" {
		g.incrementAttempt(ctx, "user:"+username, g.config.WindowDuration)

		if g.getAttemptCount(ctx, "user:"+username) >= g.config.MaxAttempts {
			g.lock(ctx, "locked:user:"+username, g.config.LockDuration)
		}
	}

	if g.getAttemptCount(ctx, "ip:"+ip) >= g.config.IPMaxAttempts {
		g.lock(ctx, "locked:ip:"+ip, g.config.IPLockDuration)
	}
}

// RecordSuccessfulLogin resets counters on successful login
func (g *LoginGuard) RecordSuccessfulLogin(ctx context.Context, ip, username string) {
	if !g.config.Enabled {
		return
	}

	if g.redisEnabled {
		g.redis.Del(ctx, g.keyPrefix+"ip:"+ip, g.keyPrefix+"user:"+username)
	}

	g.localCache.Delete("ip:" + ip)
	g.localCache.Delete("user:" + username)
}

// isLocked checks whether a lock key is active
func (g *LoginGuard) isLocked(ctx context.Context, keySuffix string) (bool, time.Time) {
	if g.redisEnabled {
		ttl, err := g.redis.TTL(ctx, g.keyPrefix+keySuffix).Result()
		if err == nil && ttl > 0 {
			return true, time.Now().Add(ttl)
		}
	}

	if entry, ok := g.localCache.Load(keySuffix); ok {
		if e, ok := entry.(guardEntry); ok && time.Now().Before(e.ExpiresAt) {
			return true, e.ExpiresAt
		}
	}

	return false, time.Time{}
}

// lock marks a user or address as locked for the given duration
func (g *LoginGuard) lock(ctx context.Context, keySuffix string, expiry time.Duration) {
	if g.redisEnabled {
		g.redis.Set(ctx, g.keyPrefix+keySuffix, "1", expiry)
	}

	g.localCache.Store(keySuffix, guardEntry{
		Count:     1,
		ExpiresAt: time.Now().Add(expiry),
	})
}

// getAttemptCount gets the current attempt count for a key
func (g *LoginGuard) getAttemptCount(ctx context.Context, keySuffix string) int {
	if g.redisEnabled {
		count, err := g.redis.Get(ctx, g.keyPrefix+keySuffix).Int()
		if err == nil {
			return count
		}
	}

	if entry, ok := g.localCache.Load(keySuffix); ok {
		if e, ok := entry.(guardEntry); ok && time.Now().Before(e.ExpiresAt) {
			return e.Count
		}
	}

	return 0
}

// incrementAttempt increments the attempt counter
func (g *LoginGuard) incrementAttempt(ctx context.Context, keySuffix string, ttl time.Duration) {
	if g.redisEnabled {
		pipe := g.redis.Pipeline()
		pipe.Incr(ctx, g.keyPrefix+keySuffix)
		pipe.Expire(ctx, g.keyPrefix+keySuffix, ttl)
		_, _ = pipe.Exec(ctx)
	}

	count := 1
	if entry, ok := g.localCache.Load(keySuffix); ok {
		if e, ok := entry.(guardEntry); ok && time.Now().Before(e.ExpiresAt) {
			count = e.Count + 1
		}
	}
	g.localCache.Store(keySuffix, guardEntry{
		Count:     count,
		ExpiresAt: time.Now().Add(ttl),
	})
}
