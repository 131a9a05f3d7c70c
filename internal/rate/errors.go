package rate

import "errors"

var (
	// ErrRateLimited signals that the attempt budget is exhausted for the
	// current cooldown window.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps transport failures talking to Redis.
	ErrRedisUnavailable = errors.New("rate limiter redis unavailable")
)
