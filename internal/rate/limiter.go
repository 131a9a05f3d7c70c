package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds limiter tuning parameters. The same budget applies to login
// attempts and recovery OTP attempts; each kind keeps its own counters.
type Config struct {
	MaxAttempts  int
	Cooldown     time.Duration
	ThrottleByIP bool
}

// Limiter enforces per-identifier and per-IP failed-attempt budgets using
// Redis counters with a cooldown TTL. Missing keys count as zero so the
// limiter never reveals account existence.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// CheckLogin reports whether the identifier+IP pair is still within the
// login attempt budget.
func (l *Limiter) CheckLogin(ctx context.Context, identifier, ip string) error {
	return l.check(ctx, loginUserKey(identifier), loginIPKey(ip), ip)
}

// IncrementLogin records a failed login attempt for the identifier+IP pair.
func (l *Limiter) IncrementLogin(ctx context.Context, identifier, ip string) error {
	return l.increment(ctx, loginUserKey(identifier), loginIPKey(ip), ip)
}

// ResetLogin clears the failed-login counters after a successful login or
// password reset.
func (l *Limiter) ResetLogin(ctx context.Context, identifier, ip string) error {
	return l.reset(ctx, loginUserKey(identifier), loginIPKey(ip), ip)
}

// CheckOTP reports whether the identifier+IP pair is still within the
// recovery OTP attempt budget.
func (l *Limiter) CheckOTP(ctx context.Context, identifier, ip string) error {
	return l.check(ctx, otpUserKey(identifier), otpIPKey(ip), ip)
}

// IncrementOTP records a failed recovery OTP attempt.
func (l *Limiter) IncrementOTP(ctx context.Context, identifier, ip string) error {
	return l.increment(ctx, otpUserKey(identifier), otpIPKey(ip), ip)
}

// ResetOTP clears the OTP counters after a successful verification.
func (l *Limiter) ResetOTP(ctx context.Context, identifier, ip string) error {
	return l.reset(ctx, otpUserKey(identifier), otpIPKey(ip), ip)
}

func (l *Limiter) check(ctx context.Context, userKey, ipKey, ip string) error {
	if err := l.checkCounter(ctx, userKey); err != nil {
		return err
	}
	if l.config.ThrottleByIP && ip != "" {
		if err := l.checkCounter(ctx, ipKey); err != nil {
			return err
		}
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, userKey, ipKey, ip string) error {
	count, err := l.incrementWithTTL(ctx, userKey)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	if l.config.ThrottleByIP && ip != "" {
		count, err = l.incrementWithTTL(ctx, ipKey)
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}

	return nil
}

func (l *Limiter) reset(ctx context.Context, userKey, ipKey, ip string) error {
	keys := []string{userKey}
	if l.config.ThrottleByIP && ip != "" {
		keys = append(keys, ipKey)
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.config.Cooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return incr.Val(), nil
}

func loginUserKey(identifier string) string { return "ag:rl:login:u:" + identifier }
func loginIPKey(ip string) string           { return "ag:rl:login:ip:" + ip }
func otpUserKey(identifier string) string   { return "ag:rl:otp:u:" + identifier }
func otpIPKey(ip string) string             { return "ag:rl:otp:ip:" + ip }
