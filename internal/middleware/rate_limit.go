package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/DimasAnjayMabar/agusplastik-backend/internal/apperror"
)

var ErrTooManyAttempts = apperror.New(fiber.StatusTooManyRequests, apperror.KindAuthorization, "RATE_LIMITED",
	"Terlalu banyak percobaan login, coba lagi nanti")

// NewLoginLimiter builds a limiter from a formatted rate such as "10-M".
// A nil client keeps counters in process memory.
func NewLoginLimiter(formatted string, client *redis.Client) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	var store limiter.Store
	if client != nil {
		store, err = sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "login_limiter"})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStore()
	}
	return limiter.New(store, rate), nil
}

// LoginRateLimit throttles login attempts per client IP and login endpoint.
func LoginRateLimit(l *limiter.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + c.Params("role")
		lc, err := l.Get(c.UserContext(), key)
		if err != nil {
			// fail open: a broken limiter store must not block logins
			log.Error().Err(err).Str("key", key).Msg("rate limit check failed")
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(lc.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))
		if lc.Reached {
			log.Warn().Str("ip", c.IP()).Int64("limit", lc.Limit).Msg("login rate limit exceeded")
			return ErrTooManyAttempts
		}
		return c.Next()
	}
}
