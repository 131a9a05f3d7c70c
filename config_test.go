package authgate

import (
	"testing"
	"time"
)

func TestDefaultConfigValidatesWithSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.TOTP.Issuer = "authgate-test"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.JWT.SessionTTL != time.Hour {
		t.Fatalf("unexpected default session TTL %v", cfg.JWT.SessionTTL)
	}
	if cfg.TOTP.Digits != 6 || cfg.TOTP.Period != 30 || cfg.TOTP.Skew != 1 {
		t.Fatalf("unexpected TOTP defaults: %+v", cfg.TOTP)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	valid := func() Config {
		cfg := DefaultConfig()
		cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
		cfg.TOTP.Issuer = "authgate-test"
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero session ttl", func(c *Config) { c.JWT.SessionTTL = 0 }},
		{"short hs256 secret", func(c *Config) { c.JWT.Secret = []byte("short") }},
		{"unknown signing method", func(c *Config) { c.JWT.SigningMethod = "rs256" }},
		{"ed25519 without keys", func(c *Config) { c.JWT.SigningMethod = "ed25519" }},
		{"excessive leeway", func(c *Config) { c.JWT.Leeway = time.Hour }},
		{"missing totp issuer", func(c *Config) { c.TOTP.Issuer = "" }},
		{"odd totp digits", func(c *Config) { c.TOTP.Digits = 7 }},
		{"short totp period", func(c *Config) { c.TOTP.Period = 5 }},
		{"negative skew", func(c *Config) { c.TOTP.Skew = -1 }},
		{"short totp secret", func(c *Config) { c.TOTP.SecretLength = 8 }},
		{"bad totp algorithm", func(c *Config) { c.TOTP.Algorithm = "MD5" }},
		{"low argon2 memory", func(c *Config) { c.Password.Memory = 1024 }},
		{"short min password", func(c *Config) { c.Password.MinLength = 4 }},
		{"zero recovery ttl", func(c *Config) { c.Recovery.TokenTTL = 0 }},
		{"huge recovery ttl", func(c *Config) { c.Recovery.TokenTTL = 2 * time.Hour }},
		{"zero recovery attempts", func(c *Config) { c.Recovery.MaxAttempts = 0 }},
		{"zero login attempts", func(c *Config) { c.Login.MaxAttempts = 0 }},
		{"zero cooldown", func(c *Config) { c.Login.Cooldown = 0 }},
		{"audit without buffer", func(c *Config) { c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCloneConfigDetachesKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")

	clone := cloneConfig(cfg)
	cfg.JWT.Secret[0] = 'X'

	if clone.JWT.Secret[0] == 'X' {
		t.Fatal("clone shares the secret backing array")
	}
}
