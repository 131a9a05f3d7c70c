package authgate

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kesparza-dev/authgate/internal/metrics"
	"github.com/kesparza-dev/authgate/internal/rate"
	"github.com/kesparza-dev/authgate/jwt"
	"github.com/kesparza-dev/authgate/password"
)

// Engine runs the authentication flows: registration, password+TOTP login,
// bearer session validation and the password recovery chain. Construct it
// through [Builder]; a zero Engine is not usable.
//
// All exported methods are safe for concurrent use.
type Engine struct {
	config Config

	store         CredentialStore
	passwordHash  *password.Hasher
	totp          *totpManager
	jwtManager    *jwt.Manager
	recoveryStore *recoveryTokenStore
	rateLimiter   *rate.Limiter
	audit         *auditDispatcher
	metrics       *Metrics
}

// Close shuts the audit dispatcher down, draining buffered events. It does
// not close the Redis client or the credential store; those belong to the
// caller.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// Metrics returns the engine's counters. It is nil-safe and always returns
// a usable handle; with metrics disabled all reads are zero.
func (e *Engine) Metrics() *Metrics {
	if e == nil {
		return nil
	}
	return e.metrics
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// VerifyToken validates a bearer Authorization header value and returns the
// session claims. The scheme check happens before any parsing; "bearer" is
// matched case-insensitively per RFC 7235.
func (e *Engine) VerifyToken(authorization string) (*Claims, error) {
	if e == nil || e.jwtManager == nil {
		return nil, ErrEngineNotReady
	}

	const prefix = "bearer "
	trimmed := strings.TrimSpace(authorization)
	if len(trimmed) <= len(prefix) || !strings.EqualFold(trimmed[:len(prefix)], prefix) {
		e.metricInc(metrics.MetricTokenVerifyFailure)
		return nil, ErrTokenMalformed
	}

	tokenStr := strings.TrimSpace(trimmed[len(prefix):])
	claims, err := e.jwtManager.Parse(tokenStr)
	if err != nil {
		e.metricInc(metrics.MetricTokenVerifyFailure)
		switch {
		case errors.Is(err, jwt.ErrExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}

	e.metricInc(metrics.MetricTokenVerifySuccess)
	return claims, nil
}

// LogRequest emits one http-request audit record. HTTP adapters call it
// after the response is written; it never blocks the caller.
func (e *Engine) LogRequest(ctx context.Context, method, path string, status int, latency time.Duration) {
	if e == nil {
		return
	}

	e.audit.Emit(ctx, AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: EventHTTPRequest,
		Status:    StatusSuccess,
		Message:   method + " " + path,
		IP:        clientIPFromContext(ctx),
		Metadata: map[string]string{
			"status":     strconv.Itoa(status),
			"latency":    latency.String(),
			"user_agent": userAgentFromContext(ctx),
		},
	})
}

func (e *Engine) emitAudit(ctx context.Context, eventType, subject, status, message string) {
	e.audit.Emit(ctx, AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Subject:   subject,
		Status:    status,
		Message:   message,
		IP:        clientIPFromContext(ctx),
	})
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}
