package authgate

import (
	"context"
	"encoding/base32"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JWT.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.JWT.Issuer = "authgate-test"
	cfg.TOTP.Issuer = "authgate-test"
	// Keep hashing cheap in tests.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Login.MaxAttempts = 3
	cfg.Login.Cooldown = time.Minute
	return cfg
}

func newTestEngine(t *testing.T, rdb *redis.Client, store CredentialStore, cfg Config) *Engine {
	t.Helper()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithCredentialStore(store).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

// mockCredentialStore counts calls so tests can assert that validation
// failures never reach the store.
type mockCredentialStore struct {
	mu      sync.Mutex
	users   map[string]UserRecord
	gets    int
	creates int
	updates int
}

func newMockStore() *mockCredentialStore {
	return &mockCredentialStore{users: make(map[string]UserRecord)}
}

func (s *mockCredentialStore) Get(ctx context.Context, email string) (UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gets++
	record, ok := s.users[email]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return record, nil
}

func (s *mockCredentialStore) Create(ctx context.Context, record UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creates++
	if _, exists := s.users[record.Email]; exists {
		return ErrAccountExists
	}
	s.users[record.Email] = record
	return nil
}

func (s *mockCredentialStore) Update(ctx context.Context, record UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.updates++
	if _, exists := s.users[record.Email]; !exists {
		return ErrUserNotFound
	}
	s.users[record.Email] = record
	return nil
}

func (s *mockCredentialStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets + s.creates + s.updates
}

func (s *mockCredentialStore) record(t *testing.T, email string) UserRecord {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.users[email]
	if !ok {
		t.Fatalf("no stored record for %q", email)
	}
	return record
}

// totpCodeAt computes the valid code for a base32 secret at the given time,
// matching the engine's defaults (6 digits, 30s period, SHA1).
func totpCodeAt(t *testing.T, secretBase32 string, at time.Time) string {
	t.Helper()

	secret, err := base32.StdEncoding.WithPadding(base32.NoPadding).
		DecodeString(strings.ToUpper(secretBase32))
	if err != nil {
		t.Fatalf("decode totp secret failed: %v", err)
	}

	code, err := hotpCode(secret, at.Unix()/30, 6, "SHA1")
	if err != nil {
		t.Fatalf("hotpCode failed: %v", err)
	}
	return code
}

// registerTestUser creates an account through the engine and returns its
// TOTP secret.
func registerTestUser(t *testing.T, engine *Engine, store *mockCredentialStore, email, username, pass string) string {
	t.Helper()

	if _, err := engine.Register(context.Background(), email, username, pass); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return store.record(t, email).MFASecret
}
