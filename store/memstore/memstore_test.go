package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	authgate "github.com/kesparza-dev/authgate"
)

func TestCreateGetUpdate(t *testing.T) {
	store := New()
	ctx := context.Background()

	record := authgate.UserRecord{Email: "a@x.com", Username: "alice", PasswordHash: "h1"}
	if err := store.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Create(ctx, record); !errors.Is(err, authgate.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	got, err := store.Get(ctx, "a@x.com")
	if err != nil || got.Username != "alice" {
		t.Fatalf("Get failed: %+v %v", got, err)
	}

	record.PasswordHash = "h2"
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ = store.Get(ctx, "a@x.com")
	if got.PasswordHash != "h2" {
		t.Fatalf("update not visible: %+v", got)
	}

	if _, err := store.Get(ctx, "ghost@x.com"); !errors.Is(err, authgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := store.Update(ctx, authgate.UserRecord{Email: "ghost@x.com"}); !errors.Is(err, authgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 account, got %d", store.Len())
	}
}

func TestConcurrentCreateIsAtomic(t *testing.T) {
	store := New()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	created := make(chan string, workers)

	for i := 0; i < workers; i++ {
		username := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Create(ctx, authgate.UserRecord{Email: "a@x.com", Username: username})
			if err == nil {
				created <- username
			} else if !errors.Is(err, authgate.ErrAccountExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	close(created)

	winners := 0
	var winner string
	for username := range created {
		winners++
		winner = username
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning create, got %d", winners)
	}

	got, err := store.Get(ctx, "a@x.com")
	if err != nil || got.Username != winner {
		t.Fatalf("stored record does not match winner: %+v %v", got, err)
	}
}
