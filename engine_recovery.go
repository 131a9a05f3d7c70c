package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kesparza-dev/authgate/internal"
	"github.com/kesparza-dev/authgate/internal/rate"
)

// RequestPasswordReset acknowledges a recovery request. The response is
// identical for known and unknown accounts; only the audit trail records
// which case occurred. Recovery proceeds with the account's enrolled TOTP
// secret, so there is nothing to deliver out of band.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if !isValidEmail(email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}

	_, err := e.store.Get(ctx, email)
	switch {
	case err == nil:
		e.emitAudit(ctx, EventRequestPasswordReset, email, StatusSuccess, "recovery initiated")
	case errors.Is(err, ErrUserNotFound):
		e.emitAudit(ctx, EventRequestPasswordReset, email, StatusFailed, "unknown identifier")
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// VerifyRecoveryOTP checks a TOTP code for a recovery flow and, on success,
// mints a single-use recovery token bound to the account. The token expires
// after the configured TTL and is consumed by [Engine.ResetPassword].
func (e *Engine) VerifyRecoveryOTP(ctx context.Context, email, code string) (*RecoveryResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if !isValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: otp code is required", ErrValidation)
	}

	ip := clientIPFromContext(ctx)

	if err := e.rateLimiter.CheckOTP(ctx, email, ip); err != nil {
		return nil, e.otpLimiterError(ctx, email, err)
	}

	record, err := e.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricRecoveryOTPFailure)
			e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "unknown identifier")
			return nil, ErrUserNotFound
		}
		e.metricInc(MetricRecoveryOTPFailure)
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "store error")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.totp.VerifyCode(record.MFASecret, code, time.Now())
	if err != nil {
		e.metricInc(MetricRecoveryOTPFailure)
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "corrupt mfa secret")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		if err := e.rateLimiter.IncrementOTP(ctx, email, ip); err != nil {
			if limErr := e.otpLimiterError(ctx, email, err); !errors.Is(limErr, ErrStoreUnavailable) {
				return nil, limErr
			}
		}
		e.metricInc(MetricRecoveryOTPFailure)
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "otp mismatch")
		return nil, ErrMFACodeInvalid
	}

	id, err := internal.NewRecoveryID()
	if err != nil {
		e.metricInc(MetricRecoveryOTPFailure)
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "token generation failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	secret, err := internal.NewRecoverySecret()
	if err != nil {
		e.metricInc(MetricRecoveryOTPFailure)
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "token generation failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ttl := e.config.Recovery.TokenTTL
	tokenRecord := &recoveryTokenRecord{
		Email:      email,
		SecretHash: internal.HashRecoverySecret(secret),
		ExpiresAt:  time.Now().Add(ttl).Unix(),
	}
	if err := e.recoveryStore.Save(ctx, id, tokenRecord, ttl); err != nil {
		e.metricInc(MetricRecoveryOTPFailure)
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "token save failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := e.rateLimiter.ResetOTP(ctx, email, ip); err != nil {
		e.metricInc(MetricRecoveryOTPFailure)
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "limiter reset failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricRecoveryOTPSuccess)
	e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusSuccess, "recovery token issued")

	return &RecoveryResult{
		RecoveryToken: internal.EncodeRecoveryToken(id, secret),
	}, nil
}

// ResetPassword replaces the account password. It requires a fresh TOTP
// code plus the recovery token from [Engine.VerifyRecoveryOTP]. The OTP is
// checked before the token is consumed, so a wrong code does not burn the
// token; consuming it is what makes the token single-use. Consumption
// happens before the password write: if the backend fails after that point
// the token is spent and the caller must restart recovery at
// [Engine.RequestPasswordReset]. Consuming first keeps the token single-use
// even when the write's outcome is unknown.
func (e *Engine) ResetPassword(ctx context.Context, email, code, recoveryToken, newPassword string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))

	if !isValidEmail(email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: otp code is required", ErrValidation)
	}
	if recoveryToken == "" {
		return fmt.Errorf("%w: recovery token is required", ErrValidation)
	}
	if len(newPassword) < e.config.Password.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, e.config.Password.MinLength)
	}

	record, err := e.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "unknown identifier")
			return ErrUserNotFound
		}
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "store error")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.totp.VerifyCode(record.MFASecret, code, time.Now())
	if err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "corrupt mfa secret")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "otp mismatch")
		return ErrMFACodeInvalid
	}

	id, secret, err := internal.DecodeRecoveryToken(recoveryToken)
	if err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "malformed recovery token")
		return ErrRecoveryTokenInvalid
	}

	consumed, err := e.recoveryStore.Consume(ctx, id, internal.HashRecoverySecret(secret), e.config.Recovery.MaxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, errRecoveryNotFound),
			errors.Is(err, errRecoverySecretMismatch),
			errors.Is(err, errRecoveryAttemptsExceeded):
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "recovery token rejected")
			return ErrRecoveryTokenInvalid
		default:
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "store error")
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}

	if consumed.Email != email {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "recovery token account mismatch")
		return ErrRecoveryTokenInvalid
	}

	// Past this point the token is spent; failures still get an event.
	hash, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "password hash failed")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	record.PasswordHash = hash
	record.UpdatedAt = time.Now().UTC()
	if err := e.store.Update(ctx, record); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "account removed mid-reset")
			return ErrUserNotFound
		}
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "store error")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ip := clientIPFromContext(ctx)
	if err := e.rateLimiter.ResetLogin(ctx, email, ip); err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "limiter reset failed")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := e.rateLimiter.ResetOTP(ctx, email, ip); err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, EventResetPassword, email, StatusFailed, "limiter reset failed")
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, EventResetPassword, email, StatusSuccess, "password replaced")

	return nil
}

func (e *Engine) otpLimiterError(ctx context.Context, email string, err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		e.emitAudit(ctx, EventVerifyRecoveryOTP, email, StatusFailed, "rate limited")
		return ErrOTPRateLimited
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
