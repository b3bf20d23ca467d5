package ratelimit

import (
	"time"
)

// Config holds poll throttling configuration.
type Config struct {
	// RedisAddr is the Redis server address (e.g., "localhost:6379")
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional)
	RedisPassword string

	// Limit is the number of polls a user may make per Window
	Limit int

	// Window is the sliding window length
	Window time.Duration

	// KeyPrefix is the prefix for Redis keys (default: "poll:")
	KeyPrefix string
}

// DefaultConfig allows two polls per second on average, which leaves room
// for a client polling the chat list and one room every few seconds.
func DefaultConfig() Config {
	return Config{
		RedisAddr: "localhost:6379",
		Limit:     120,
		Window:    time.Minute,
		KeyPrefix: "poll:",
	}
}

// Option is a function that modifies Config.
type Option func(*Config)

// WithRedis sets the Redis server address and password.
func WithRedis(addr, password string) Option {
	return func(c *Config) {
		c.RedisAddr = addr
		c.RedisPassword = password
	}
}

// WithLimit sets the per-user budget.
func WithLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.Limit = limit
		c.Window = window
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}
