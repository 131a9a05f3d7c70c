package authgate

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/kesparza-dev/authgate/internal/rate"
	"github.com/kesparza-dev/authgate/jwt"
	"github.com/kesparza-dev/authgate/password"
)

// Builder assembles an Engine. Redis and a credential store are required;
// everything else falls back to [DefaultConfig].
type Builder struct {
	config      Config
	configSet   bool
	redisClient redis.UniversalClient
	store       CredentialStore
	auditSink   AuditSink
	err         error
}

// New starts a builder chain.
func New() *Builder {
	return &Builder{}
}

// WithConfig replaces the default configuration. The builder clones it;
// later mutations by the caller have no effect.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	b.configSet = true
	return b
}

// WithRedis sets the Redis client used for rate limiting and recovery
// tokens. The engine never closes it.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redisClient = client
	return b
}

// WithCredentialStore sets the account document store.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the destination for audit events. Without one, enabled
// auditing discards events through [NoOpSink].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the engine together.
func (b *Builder) Build() (*Engine, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.redisClient == nil {
		return nil, errors.New("authgate: redis client is required")
	}
	if b.store == nil {
		return nil, errors.New("authgate: credential store is required")
	}

	cfg := b.config
	if !b.configSet {
		cfg = DefaultConfig()
		cfg.Metrics.Enabled = b.config.Metrics.Enabled
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	jwtManager, err := jwt.NewManager(jwt.Config{
		SessionTTL:    cfg.JWT.SessionTTL,
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		Secret:        cfg.JWT.Secret,
		PrivateKey:    cfg.JWT.PrivateKey,
		PublicKey:     cfg.JWT.PublicKey,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:        cfg,
		store:         b.store,
		passwordHash:  hasher,
		totp:          newTOTPManager(cfg.TOTP),
		jwtManager:    jwtManager,
		recoveryStore: newRecoveryTokenStore(b.redisClient),
		rateLimiter: rate.New(b.redisClient, rate.Config{
			MaxAttempts:  cfg.Login.MaxAttempts,
			Cooldown:     cfg.Login.Cooldown,
			ThrottleByIP: cfg.Login.ThrottleByIP,
		}),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	return engine, nil
}
