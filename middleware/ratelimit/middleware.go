package ratelimit

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"meetup_chat/models"
	"meetup_chat/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// PollThrottle caps how often one user may hit the polling endpoints.
type PollThrottle struct {
	config  Config
	client  *redis.Client
	limiter Allower
}

func New(opts ...Option) *PollThrottle {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &PollThrottle{config: config}
}

// Start connects to Redis.
func (p *PollThrottle) Start(ctx context.Context) error {
	p.client = redis.NewClient(&redis.Options{
		Addr:         p.config.RedisAddr,
		Password:     p.config.RedisPassword,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", p.config.RedisAddr, err)
	}

	p.limiter = NewLimiter(p.client, p.config.KeyPrefix)
	log.Printf("[poll] Throttling polls to %d per %s (redis %s)", p.config.Limit, p.config.Window, p.config.RedisAddr)
	return nil
}

// Stop closes the Redis connection.
func (p *PollThrottle) Stop(_ context.Context) error {
	if p.client == nil {
		return nil
	}
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}

// Handler returns the fiber middleware. Start must have succeeded.
func (p *PollThrottle) Handler() fiber.Handler {
	return NewHandler(p.limiter, p.config.Limit, p.config.Window)
}

// NewHandler throttles per authenticated user, falling back to the client IP.
// A limiter error lets the request through: a missed poll tick is worse than
// a briefly unthrottled one.
func NewHandler(limiter Allower, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if userID, ok := utils.CurrentUserID(c); ok {
			key = "user:" + strconv.FormatUint(uint64(userID), 10)
		}

		result, err := limiter.Allow(c.UserContext(), key, limit, window)
		if err != nil {
			log.Printf("[poll] Rate limit check failed for %s: %v", key, err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			message := "Polling too fast, slow down"
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse(message, models.ErrorDetail{
				Code:    "RATE_LIMITED",
				Message: message,
			}))
		}
		return c.Next()
	}
}
