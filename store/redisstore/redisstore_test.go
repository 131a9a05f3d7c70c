package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authgate "github.com/kesparza-dev/authgate"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func testRecord() authgate.UserRecord {
	return authgate.UserRecord{
		Email:        "a@x.com",
		Username:     "alice",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		MFASecret:    "JBSWY3DPEHPK3PXP",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord()
	require.NoError(t, store.Create(ctx, record))

	got, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, record.Email, got.Email)
	assert.Equal(t, record.Username, got.Username)
	assert.Equal(t, record.PasswordHash, got.PasswordHash)
	assert.Equal(t, record.MFASecret, got.MFASecret)
	assert.True(t, record.CreatedAt.Equal(got.CreatedAt))
}

func TestCreateIsCreateIfAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, testRecord()))

	second := testRecord()
	second.Username = "mallory"
	err := store.Create(ctx, second)
	assert.ErrorIs(t, err, authgate.ErrAccountExists)

	got, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username, "losing create must not overwrite")
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, authgate.ErrUserNotFound)
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord()
	require.NoError(t, store.Create(ctx, record))

	record.PasswordHash = "$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$bmV3aGFzaA"
	record.UpdatedAt = time.Now().UTC()
	require.NoError(t, store.Update(ctx, record))

	got, err := store.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, record.PasswordHash, got.PasswordHash)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestUpdateMissing(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(context.Background(), testRecord())
	assert.ErrorIs(t, err, authgate.ErrUserNotFound)
}
