// Package authgate is an embeddable authentication engine for password +
// TOTP multi-factor login flows.
//
// The engine owns credential verification, MFA secret provisioning and
// verification, session token issuance, and the MFA-gated password recovery
// flow. Persistence of user accounts is delegated to a [CredentialStore]
// implementation supplied by the caller; short-lived security state
// (recovery tokens, attempt counters) lives in Redis.
//
// Construction goes through the builder:
//
//	engine, err := authgate.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithCredentialStore(store).
//		WithAuditSink(sink).
//		Build()
//
// Every flow emits exactly one structured audit event per terminal outcome
// through an asynchronous dispatcher; event delivery never blocks or fails
// a caller-visible operation.
package authgate
