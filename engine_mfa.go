package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// VerifyMFA checks a TOTP code against the account's enrolled secret and,
// on success, issues a fresh session token with the mfa claim set.
// Verification is stateless: a code stays valid for its whole time window,
// including after a successful check.
func (e *Engine) VerifyMFA(ctx context.Context, email, code string) (*MFAResult, error) {
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

	record, err := e.store.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricMFAFailure)
			e.emitAudit(ctx, EventVerifyOTP, email, StatusFailed, "unknown identifier")
			return nil, ErrUserNotFound
		}
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, EventVerifyOTP, email, StatusFailed, "store error")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	ok, err := e.totp.VerifyCode(record.MFASecret, code, time.Now())
	if err != nil {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, EventVerifyOTP, email, StatusFailed, "corrupt mfa secret")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, EventVerifyOTP, email, StatusFailed, "otp mismatch")
		return nil, ErrMFACodeInvalid
	}

	token, err := e.jwtManager.Issue(record.Email, record.Username, true)
	if err != nil {
		e.metricInc(MetricMFAFailure)
		e.emitAudit(ctx, EventVerifyOTP, email, StatusFailed, "token issue failed")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricMFASuccess)
	e.emitAudit(ctx, EventVerifyOTP, email, StatusSuccess, "otp accepted")

	return &MFAResult{Token: token}, nil
}
