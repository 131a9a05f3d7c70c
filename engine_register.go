package authgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const maxUsernameLength = 64

// Register creates an account: the password is hashed with Argon2id, a TOTP
// secret is generated and the account document is stored atomically. The
// raw secret is returned only inside the provisioning URI; it is never
// exposed again.
func (e *Engine) Register(ctx context.Context, email, username, plainPassword string) (*RegisterResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if err := e.validateRegisterInput(email, username, plainPassword); err != nil {
		return nil, err
	}

	hash, err := e.passwordHash.Hash(plainPassword)
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	secret, err := e.totp.GenerateSecret()
	if err != nil {
		e.metricInc(MetricRegisterFailure)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := time.Now().UTC()
	record := UserRecord{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		MFASecret:    secret,
		CreatedAt:    now,
	}

	if err := e.store.Create(ctx, record); err != nil {
		if errors.Is(err, ErrAccountExists) {
			e.metricInc(MetricRegisterConflict)
			e.emitAudit(ctx, EventRegister, email, StatusFailed, "account already exists")
			return nil, ErrAccountExists
		}
		e.metricInc(MetricRegisterFailure)
		e.emitAudit(ctx, EventRegister, email, StatusFailed, "store error")
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, EventRegister, email, StatusSuccess, "account created")

	return &RegisterResult{
		Email:           email,
		Username:        username,
		ProvisioningURI: e.totp.ProvisionURI(secret, username, email),
	}, nil
}

func (e *Engine) validateRegisterInput(email, username, plainPassword string) error {
	if !isValidEmail(email) {
		return fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username too long", ErrValidation)
	}
	if len(plainPassword) < e.config.Password.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, e.config.Password.MinLength)
	}
	return nil
}
