package authgate

import "errors"

var (
	// ErrEngineNotReady is returned when a flow is invoked on an engine
	// that was not fully constructed through the builder.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrValidation covers malformed or missing input. It is always
	// detected and returned before any credential store access.
	ErrValidation = errors.New("invalid request")

	// ErrInvalidCredentials is returned for both unknown identifiers and
	// password mismatches so that callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned by post-authentication flows (MFA
	// verification, password reset) when no account exists for the
	// identifier. CredentialStore implementations return it from Get and
	// Update when the document is absent.
	ErrUserNotFound = errors.New("user not found")

	// ErrAccountExists is returned by Register and by CredentialStore.Create
	// when the identifier already maps to an account.
	ErrAccountExists = errors.New("account already exists")

	// ErrMFACodeInvalid is returned when a submitted TOTP code does not
	// match any code inside the accepted time window, or is malformed.
	ErrMFACodeInvalid = errors.New("invalid otp code")

	// ErrTokenMalformed is returned when the Authorization header is
	// missing, not a bearer token, or the token cannot be parsed.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenExpired is returned when the session token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignatureInvalid is returned when the token signature does
	// not verify against the configured key.
	ErrTokenSignatureInvalid = errors.New("token signature invalid")

	// ErrRecoveryTokenInvalid is returned when a recovery token is unknown,
	// expired, already consumed, or bound to a different account.
	ErrRecoveryTokenInvalid = errors.New("invalid recovery token")

	// ErrLoginRateLimited is returned when the identifier or client IP has
	// exhausted its failed-login budget.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrOTPRateLimited is returned when recovery OTP attempts are exhausted.
	ErrOTPRateLimited = errors.New("otp attempts rate limited")

	// ErrStoreUnavailable wraps unexpected credential store or Redis
	// failures. The underlying cause is reported to the operator log only,
	// never to the caller.
	ErrStoreUnavailable = errors.New("backend unavailable")
)
