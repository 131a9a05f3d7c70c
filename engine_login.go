package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kesparza-dev/authgate/internal/rate"
)

// Login authenticates an email+password pair and issues a first-stage
// session token. Unknown accounts and wrong passwords return the same
// [ErrInvalidCredentials] and both count against the failed-attempt budget,
// so callers learn nothing about account existence.
//
// The returned token carries mfa=false; [Engine.VerifyMFA] exchanges it for
// a fully authenticated one.
func (e *Engine) Login(ctx context.Context, email, plainPassword string) (*LoginResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if !isValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if len(plainPassword) < e.config.Password.MinLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, e.config.Password.MinLength)
	}

	ip := clientIPFromContext(ctx)

	if err := e.rateLimiter.CheckLogin(ctx, email, ip); err != nil {
		return nil, e.loginLimiterError(ctx, email, err)
	}

	record, err := e.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, e.loginRejected(ctx, email, ip, "unknown identifier")
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, EventLogin, email, StatusFailed, "store error")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.passwordHash.Verify(plainPassword, record.PasswordHash)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, EventLogin, email, StatusFailed, "corrupt password hash")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, e.loginRejected(ctx, email, ip, "password mismatch")
	}

	if err := e.rateLimiter.ResetLogin(ctx, email, ip); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, EventLogin, email, StatusFailed, "limiter reset failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	token, err := e.jwtManager.Issue(record.Email, record.Username, false)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, EventLogin, email, StatusFailed, "token issue failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, EventLogin, email, StatusSuccess, "password accepted, awaiting otp")

	return &LoginResult{
		Token:       token,
		Username:    record.Username,
		RequiresMFA: record.MFASecret != "",
	}, nil
}

// loginRejected records a failed attempt against the limiter and returns the
// uniform credentials error. If the increment itself trips the budget the
// rate-limit error wins.
func (e *Engine) loginRejected(ctx context.Context, email, ip, reason string) error {
	if err := e.rateLimiter.IncrementLogin(ctx, email, ip); err != nil {
		if limErr := e.loginLimiterError(ctx, email, err); !errors.Is(limErr, ErrStoreUnavailable) {
			return limErr
		}
	}

	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, EventLogin, email, StatusFailed, reason)
	return ErrInvalidCredentials
}

func (e *Engine) loginLimiterError(ctx context.Context, email string, err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		e.metricInc(MetricLoginRateLimited)
		e.emitAudit(ctx, EventLogin, email, StatusFailed, "rate limited")
		return ErrLoginRateLimited
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
