package authgate

import (
	"errors"
	"strings"
	"time"
)

// Config holds all engine tuning parameters. Populate it once before Build;
// the engine clones it and treats it as immutable afterwards.
type Config struct {
	JWT      JWTConfig
	TOTP     TOTPConfig
	Password PasswordConfig
	Recovery RecoveryConfig
	Login    LoginConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// JWTConfig configures the session token issuer/verifier.
type JWTConfig struct {
	SessionTTL    time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	Secret        []byte // hs256 signing secret
	PrivateKey    []byte // ed25519
	PublicKey     []byte // ed25519
	Issuer        string
	Leeway        time.Duration
}

// TOTPConfig configures MFA secret generation and code verification.
// Skew is the number of adjacent 30-second steps accepted on each side of
// the current one; the default of 1 yields a 90-second effective window.
type TOTPConfig struct {
	Issuer       string
	Digits       int
	Period       int
	Algorithm    string // SHA1 (default), SHA256, SHA512
	Skew         int
	SecretLength int // raw secret bytes before base32 encoding
}

// PasswordConfig carries the Argon2id cost parameters and the minimum
// accepted plaintext length.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// RecoveryConfig bounds the single-use recovery tokens issued after a
// successful recovery OTP check.
type RecoveryConfig struct {
	TokenTTL    time.Duration
	MaxAttempts int
}

// LoginConfig tunes the failed-attempt limiter shared by login and
// recovery OTP verification. ThrottleByIP additionally counts attempts per
// client IP when one is attached to the context.
type LoginConfig struct {
	MaxAttempts  int
	Cooldown     time.Duration
	ThrottleByIP bool
}

// AuditConfig controls the asynchronous event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration. Callers must still set
// the JWT secret (or key pair) and the TOTP issuer.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			SessionTTL:    time.Hour,
			SigningMethod: "hs256",
			Leeway:        0,
		},
		TOTP: TOTPConfig{
			Digits:       6,
			Period:       30,
			Algorithm:    "SHA1",
			Skew:         1,
			SecretLength: 20,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		Recovery: RecoveryConfig{
			TokenTTL:    15 * time.Minute,
			MaxAttempts: 5,
		},
		Login: LoginConfig{
			MaxAttempts:  5,
			Cooldown:     15 * time.Minute,
			ThrottleByIP: true,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the configuration for internal consistency. Build calls
// it; it is exported so callers can validate ahead of time.
func (c *Config) Validate() error {
	if c.JWT.SessionTTL <= 0 {
		return errors.New("JWT SessionTTL must be > 0")
	}
	switch c.JWT.SigningMethod {
	case "hs256":
		if len(c.JWT.Secret) < 32 {
			return errors.New("hs256 requires a secret of >= 32 bytes")
		}
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 || len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires PrivateKey and PublicKey")
		}
	default:
		return errors.New("unsupported JWT signing method")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be between 0 and 2m")
	}

	if c.TOTP.Issuer == "" {
		return errors.New("TOTP Issuer is required")
	}
	if c.TOTP.Digits != 6 && c.TOTP.Digits != 8 {
		return errors.New("TOTP Digits must be 6 or 8")
	}
	if c.TOTP.Period < 15 {
		return errors.New("TOTP Period must be >= 15 seconds")
	}
	if c.TOTP.Skew < 0 {
		return errors.New("TOTP Skew must be >= 0")
	}
	if c.TOTP.SecretLength < 16 {
		return errors.New("TOTP SecretLength must be >= 16 bytes")
	}
	switch strings.ToUpper(c.TOTP.Algorithm) {
	case "", "SHA1", "SHA256", "SHA512":
	default:
		return errors.New("TOTP Algorithm must be SHA1, SHA256, or SHA512")
	}

	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 8 {
		return errors.New("Password MinLength must be >= 8")
	}

	if c.Recovery.TokenTTL <= 0 {
		return errors.New("Recovery TokenTTL must be > 0")
	}
	if c.Recovery.TokenTTL > time.Hour {
		return errors.New("Recovery TokenTTL must be <= 1h")
	}
	if c.Recovery.MaxAttempts <= 0 {
		return errors.New("Recovery MaxAttempts must be > 0")
	}

	if c.Login.MaxAttempts <= 0 {
		return errors.New("Login MaxAttempts must be > 0")
	}
	if c.Login.Cooldown <= 0 {
		return errors.New("Login Cooldown must be > 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
