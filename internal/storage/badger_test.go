// ABOUTME: Tests for Badger storage implementation
// ABOUTME: Runs the shared repository contract against on-disk and in-memory stores

package storage

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v3"
)

func testBadger(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open badger: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func (b *BadgerStore) putRaw(_ context.Context, userID, id string, body []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(userID, id), body)
	})
}

func TestBadgerStore_Repository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) rawRepository {
		return testBadger(t)
	})
}

func TestInMemoryBadgerStore_Repository(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) rawRepository {
		store, err := NewInMemoryBadgerStore()
		if err != nil {
			t.Fatalf("failed to open in-memory badger: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		return store
	})
}

func TestBadgerStore_UserIDsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	store := testBadger(t)

	if _, err := store.CreateField(ctx, "farmer", "a", triangle[0], triangle); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreateField(ctx, "farmer/extra", "b", triangle[0], triangle); err != nil {
		t.Fatalf("create: %v", err)
	}

	fields, err := store.ListFields(ctx, "farmer")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "a" {
		t.Errorf("expected only farmer's field, got %+v", fields)
	}
}

func TestBadgerStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	created, err := store.CreateField(ctx, testUser, "orchard", triangle[0], triangle)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewBadgerStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetField(ctx, testUser, created.ID)
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Name != "orchard" {
		t.Errorf("expected 'orchard', got %q", got.Name)
	}
}
